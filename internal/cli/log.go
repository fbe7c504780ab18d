// Package cli implements the depscan command-line interface.
//
// # Commands
//
// The main commands are:
//   - run: Trigger the add-ons enabled in a build configuration
//   - analyze: Report the community dependencies of a repository archive
//   - bom-check: List vendor BOM entries missing from a repository
//   - post-build: Compare the reports of the two latest staged builds
//   - parse-tree: Classify saved dependency-tree output
//   - cache: Manage the extension scan cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context so analyzers log with the command's level.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/depscan/pkg/observability"
)

// newLogger creates a logger writing to w with "15:04:05.00" timestamps.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs the completion of an operation with its elapsed time.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time, e.g. "Checked BOM references (1.234s)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached by withLogger, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// stageLogger reports analyzer stages and build-tool invocations at debug
// level. Failures are left to the caller, which logs or returns them.
type stageLogger struct {
	logger *log.Logger
}

func (s stageLogger) OnStageStart(_ context.Context, analyzer, stage string) {
	s.logger.Debug("Stage started", "addon", analyzer, "stage", stage)
}

func (s stageLogger) OnStageComplete(_ context.Context, analyzer, stage string, d time.Duration, err error) {
	if err != nil {
		return
	}
	s.logger.Debug("Stage complete", "addon", analyzer, "stage", stage, "took", d.Round(time.Millisecond))
}

func (s stageLogger) OnCommand(_ context.Context, command string, lines int, d time.Duration, err error) {
	s.logger.Debug("Command finished", "command", command, "lines", lines, "took", d.Round(time.Millisecond), "failed", err != nil)
}

var _ observability.AnalysisHooks = stageLogger{}
