package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mavgraph/pkg/observability"
)

// logHooks reports pipeline and cache events at debug level.
type logHooks struct {
	logger *log.Logger
}

func registerHooks(l *log.Logger) {
	h := logHooks{logger: l}
	observability.SetPipelineHooks(h)
	observability.SetCacheHooks(h)
}

func (h logHooks) OnBuildStart(_ context.Context, focus string) {
	h.logger.Debug("build start", "focus", focus)
}

func (h logHooks) OnBuildComplete(_ context.Context, focus string, nodes, edges, diagnostics int, d time.Duration) {
	h.logger.Debug("build done", "focus", focus, "nodes", nodes, "edges", edges, "diagnostics", diagnostics, "took", d.Round(time.Microsecond))
}

func (h logHooks) OnLayoutStart(_ context.Context, engine string, nodes int) {
	h.logger.Debug("layout start", "engine", engine, "nodes", nodes)
}

func (h logHooks) OnLayoutComplete(_ context.Context, engine string, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("layout failed", "engine", engine, "err", err)
		return
	}
	h.logger.Debug("layout done", "engine", engine, "took", d.Round(time.Millisecond))
}

func (h logHooks) OnStale(_ context.Context, gen uint64) {
	h.logger.Debug("discarded stale rebuild", "generation", gen)
}

func (h logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}
