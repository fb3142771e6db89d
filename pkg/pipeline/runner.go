package pipeline

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/mavgraph/pkg/cache"
	"github.com/matzehuels/mavgraph/pkg/canon"
	"github.com/matzehuels/mavgraph/pkg/errors"
	"github.com/matzehuels/mavgraph/pkg/layout"
	"github.com/matzehuels/mavgraph/pkg/mav"
	"github.com/matzehuels/mavgraph/pkg/observability"
)

// Runner executes pipeline runs with layout caching. It holds no per-run
// state and is safe for concurrent use; concurrent runs that need the same
// layout share one computation.
type Runner struct {
	Cache    cache.Cache
	Keyer    cache.Keyer
	Layouter layout.Layouter
	Logger   *log.Logger

	flight singleflight.Group
}

// NewRunner creates a runner. A nil cache disables caching; a nil layouter
// uses Graphviz.
func NewRunner(c cache.Cache, l layout.Layouter, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if l == nil {
		l = layout.NewGraphviz()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:    c,
		Keyer:    cache.NewDefaultKeyer(),
		Layouter: l,
		Logger:   logger,
	}
}

// ExecuteFile reads a report file and runs the pipeline on it.
func (r *Runner) ExecuteFile(ctx context.Context, path string, opts Options) (*Result, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeFileNotFound, "report %s not found", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	return r.Execute(ctx, data, opts)
}

// Execute runs parse -> build -> layout on report bytes.
func (r *Runner) Execute(ctx context.Context, report []byte, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	res := &Result{
		BuildID:    uuid.NewString(),
		ReportHash: r.Keyer.ReportKey(report),
	}
	logger := opts.Logger.With("build", res.BuildID[:8])

	doc, err := mav.Parse(report)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	res.Document = doc

	start := time.Now()
	g := r.build(ctx, doc, opts)
	res.Stats.BuildTime = time.Since(start)
	res.Diagnostics = g.Diagnostics()
	res.Request = layout.FromGraph(g, opts.Spacing)
	res.Graph = g.WithoutDummies()
	res.Stats.NodeCount = res.Graph.NodeCount()
	res.Stats.EdgeCount = res.Graph.EdgeCount()

	logger.Info("built graph",
		"focus", opts.Canon.Focus,
		"nodes", res.Stats.NodeCount,
		"edges", res.Stats.EdgeCount,
		"diagnostics", len(res.Diagnostics),
		"duration", res.Stats.BuildTime)

	if opts.SkipLayout || g.Empty() {
		return res, nil
	}

	start = time.Now()
	l, hit, err := r.LayoutWithCacheInfo(ctx, res.ReportHash, res.Request, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	res.Layout = l.WithoutDummies()
	res.Stats.LayoutTime = time.Since(start)
	res.CacheInfo.LayoutHit = hit

	logger.Info("computed layout",
		"width", l.Width,
		"height", l.Height,
		"cached", hit,
		"duration", res.Stats.LayoutTime)
	return res, nil
}

// Build canonicalizes doc for opts. Diagnostics go to the options logger.
func (r *Runner) Build(ctx context.Context, doc *mav.Document, opts Options) (*canon.Graph, error) {
	r.applyLogger(&opts)
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return r.build(ctx, doc, opts), nil
}

func (r *Runner) build(ctx context.Context, doc *mav.Document, opts Options) *canon.Graph {
	focus := opts.Canon.Focus.String()
	hooks := observability.Pipeline()
	hooks.OnBuildStart(ctx, focus)
	start := time.Now()
	g := canon.Build(doc, opts.Canon)
	hooks.OnBuildComplete(ctx, focus, g.NodeCount(), g.EdgeCount(), len(g.Diagnostics()), time.Since(start))
	return g
}

type layoutOutcome struct {
	result *layout.Result
	hit    bool
}

// LayoutWithCacheInfo places req, consulting the cache first. It reports
// whether the result came from the cache. Concurrent calls with the same
// key run the layouter once.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, reportHash string, req *layout.Request, opts Options) (*layout.Result, bool, error) {
	r.applyLogger(&opts)
	if err := opts.Validate(); err != nil {
		return nil, false, err
	}
	key := r.Keyer.LayoutKey(reportHash, opts.LayoutKeyOpts())
	v, err, shared := r.flight.Do(key, func() (any, error) {
		return r.layout(ctx, key, req, opts)
	})
	if err != nil {
		return nil, false, err
	}
	out := v.(layoutOutcome)
	if shared {
		opts.Logger.Debug("shared layout", "key", key[:15])
	}
	return out.result, out.hit, nil
}

func (r *Runner) layout(ctx context.Context, key string, req *layout.Request, opts Options) (layoutOutcome, error) {
	ch := observability.Cache()
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var cached layout.Result
			if err := json.Unmarshal(data, &cached); err == nil {
				ch.OnCacheHit(ctx, "layout")
				return layoutOutcome{result: &cached, hit: true}, nil
			}
		}
		ch.OnCacheMiss(ctx, "layout")
	}

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, opts.Engine, len(req.Nodes))
	start := time.Now()
	res, err := r.Layouter.Layout(ctx, req)
	hooks.OnLayoutComplete(ctx, opts.Engine, time.Since(start), err)
	if err != nil {
		return layoutOutcome{}, err
	}

	if data, err := json.Marshal(res); err == nil {
		if err := r.Cache.Set(ctx, key, data, opts.LayoutTTL); err != nil {
			opts.Logger.Warn("cache write failed", "err", err)
		} else {
			ch.OnCacheSet(ctx, "layout", len(data))
		}
	}
	return layoutOutcome{result: res}, nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func fmtSpacing(vs ...float64) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return "/" + strings.Join(parts, "/")
}
