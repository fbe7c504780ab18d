// Package observability provides hooks for metrics, tracing and logging of
// analysis runs.
//
// Libraries emit events through the registered hooks; main (or a test)
// registers implementations at startup. The defaults are no-ops, so nothing is
// recorded unless a consumer opts in:
//
//	observability.SetAnalysisHooks(&myHooks{})
//
//	observability.Analysis().OnStageStart(ctx, "quarkusCommunityDepAnalyzer", "discover")
//	// ... run the stage ...
//	observability.Analysis().OnStageComplete(ctx, "quarkusCommunityDepAnalyzer", "discover", d, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Analysis Hooks
// =============================================================================

// AnalysisHooks receives events from analyzer runs.
type AnalysisHooks interface {
	// Stage events, e.g. "unpack", "discover", "scaffold", "bom-check".
	OnStageStart(ctx context.Context, analyzer, stage string)
	OnStageComplete(ctx context.Context, analyzer, stage string, duration time.Duration, err error)

	// OnCommand records one external build-tool invocation.
	OnCommand(ctx context.Context, command string, lines int, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from HTTP downloads.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, host, path string)
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopAnalysisHooks is a no-op implementation of AnalysisHooks.
type NoopAnalysisHooks struct{}

func (NoopAnalysisHooks) OnStageStart(context.Context, string, string) {}
func (NoopAnalysisHooks) OnStageComplete(context.Context, string, string, time.Duration, error) {
}
func (NoopAnalysisHooks) OnCommand(context.Context, string, int, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	analysisHooks AnalysisHooks = NoopAnalysisHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	httpHooks     HTTPHooks     = NoopHTTPHooks{}
	hooksMu       sync.RWMutex
)

// SetAnalysisHooks registers custom analysis hooks. Nil is ignored.
func SetAnalysisHooks(h AnalysisHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		analysisHooks = h
	}
}

// SetCacheHooks registers custom cache hooks. Nil is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks. Nil is ignored.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Analysis returns the registered analysis hooks.
func Analysis() AnalysisHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return analysisHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Stage reports the start of stage and returns a function that reports its
// completion with the elapsed time:
//
//	done := observability.Stage(ctx, name, "discover")
//	err := discover()
//	done(err)
func Stage(ctx context.Context, analyzer, stage string) func(error) {
	h := Analysis()
	start := time.Now()
	h.OnStageStart(ctx, analyzer, stage)
	return func(err error) {
		h.OnStageComplete(ctx, analyzer, stage, time.Since(start), err)
	}
}

// Reset restores all hooks to their no-op defaults.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	analysisHooks = NoopAnalysisHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
