// Package cli implements the mavgraph command-line interface.
//
// Every command takes a report file and the same focus flags, builds the
// canonical graph through pkg/pipeline and prints it in its own way:
//   - build: summary or JSON of the canonical graph
//   - dot: Graphviz source or rendered SVG
//   - layout: node boxes and edge routes, cached
//   - highlight: the neighbourhood of a node or edge selection
//   - watch: rebuild on every change of the report
//   - cache: inspect or clear the layout cache
//
// Settings come from a TOML file (--config, or the XDG default). Loggers
// travel through context.Context; --verbose enables debug output.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a logger with "15:04:05.00" timestamps.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs a stage together with its elapsed time, e.g.
// "Built bank:k0/M[B0] (12ms)".
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the command logger, or log.Default() outside
// a command.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
