// Package httputil provides the HTTP client used to fetch build artifacts
// from a staging server.
//
// # Client
//
// [Client] performs GET requests with a fixed timeout, a depscan User-Agent
// and automatic retries:
//
//	c := httputil.NewClient()
//	page, err := c.Get(ctx, "https://staging.example.com/quarkus/?C=M;O=D")
//	err = c.Download(ctx, url, "/tmp/licenses.zip")
//
// # Retry
//
// [Retry] re-runs an operation for transient failures only: network errors
// and 5xx responses are wrapped in [RetryableError]; 404 and other 4xx
// statuses fail immediately. The delay doubles after each attempt.
//
// Defaults:
//
//   - Request timeout: 30 seconds
//   - Attempts: 3
//   - Initial backoff: 1 second
package httputil
