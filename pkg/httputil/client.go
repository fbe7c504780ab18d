package httputil

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/matzehuels/depscan/pkg/buildinfo"
	"github.com/matzehuels/depscan/pkg/errors"
	"github.com/matzehuels/depscan/pkg/observability"
)

const httpTimeout = 30 * time.Second

// maxBodySize bounds in-memory responses from Get.
const maxBodySize = 64 << 20

// Client fetches resources over HTTP with retries.
type Client struct {
	http    *http.Client
	headers map[string]string
	policy  Policy
}

// NewClient returns a client with the default timeout and retry policy.
func NewClient() *Client {
	return &Client{
		http:    &http.Client{Timeout: httpTimeout},
		headers: map[string]string{"User-Agent": buildinfo.UserAgent()},
		policy:  DefaultPolicy,
	}
}

// Get returns the body of url.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	var data []byte
	err := c.policy.Do(ctx, func() error {
		body, err := c.doRequest(ctx, url)
		if err != nil {
			return err
		}
		defer body.Close()
		data, err = io.ReadAll(io.LimitReader(body, maxBodySize))
		if err != nil {
			return &RetryableError{Err: errors.Wrap(errors.ErrCodeNetwork, err, "failed to read %s", url)}
		}
		return nil
	})
	return data, err
}

// Download stores the body of url at dst. The file is written to a
// temporary name first and only renamed into place once complete.
func (c *Client) Download(ctx context.Context, url, dst string) error {
	return c.policy.Do(ctx, func() error {
		body, err := c.doRequest(ctx, url)
		if err != nil {
			return err
		}
		defer body.Close()

		tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*")
		if err != nil {
			return errors.Wrap(errors.ErrCodeIO, err, "failed to create %s", dst)
		}
		defer os.Remove(tmp.Name())
		defer tmp.Close()

		if _, err := io.Copy(tmp, body); err != nil {
			return &RetryableError{Err: errors.Wrap(errors.ErrCodeNetwork, err, "failed to download %s", url)}
		}
		if err := tmp.Close(); err != nil {
			return errors.Wrap(errors.ErrCodeIO, err, "failed to write %s", dst)
		}
		if err := os.Rename(tmp.Name(), dst); err != nil {
			return errors.Wrap(errors.ErrCodeIO, err, "failed to write %s", dst)
		}
		return nil
	})
}

func (c *Client) doRequest(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid URL %s", rawURL)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	host, path := req.URL.Host, req.URL.Path
	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &RetryableError{Err: errors.Wrap(errors.ErrCodeNetwork, err, "GET %s", rawURL)}
	}
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(rawURL, resp.StatusCode); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

func checkStatus(rawURL string, code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return errors.New(errors.ErrCodeNotFound, "%s not found", rawURL)
	case code >= 500:
		return &RetryableError{Err: errors.New(errors.ErrCodeNetwork, "GET %s: status %d", rawURL, code)}
	default:
		return errors.New(errors.ErrCodeNetwork, "GET %s: status %d", rawURL, code)
	}
}
