// Package pipeline runs the report -> canonical graph -> layout pipeline
// shared by every mavgraph command.
//
// # Architecture
//
// A [Runner] executes one build:
//
//  1. Parse: decode the report JSON into a [mav.Document]
//  2. Build: canonicalize it for the focus ([canon.Build])
//  3. Layout: place the graph through a [layout.Layouter], with results
//     cached by report hash, focus and options
//  4. Filter: drop placement-only dummy edges from graph and layout
//
// A [Scheduler] sits in front of the Runner when requests arrive faster
// than builds finish (file watching, interactive refocus). It debounces
// submissions, tags each with a generation and applies only the result of
// the latest one.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), layout.NewGraphviz(), logger)
//	res, err := runner.ExecuteFile(ctx, "report.json", pipeline.Options{
//	    Canon: canon.DefaultOptions(canon.BankFocus("k0", "M", "B0")),
//	})
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mavgraph/pkg/cache"
	"github.com/matzehuels/mavgraph/pkg/canon"
	"github.com/matzehuels/mavgraph/pkg/diag"
	"github.com/matzehuels/mavgraph/pkg/layout"
	"github.com/matzehuels/mavgraph/pkg/mav"
)

// =============================================================================
// Defaults
// =============================================================================

const (
	// DefaultEngine is the Graphviz layout engine.
	DefaultEngine = "dot"

	// DefaultLayoutTTL is how long cached layouts stay valid.
	DefaultLayoutTTL = 7 * 24 * time.Hour
)

// =============================================================================
// Options
// =============================================================================

// Options configures one pipeline run.
type Options struct {
	// Canon holds the focus and canonicalization lists.
	Canon canon.Options

	// Spacing defaults to layout.DefaultSpacing for the focus.
	Spacing layout.Spacing

	// Engine is recorded in the layout cache key.
	Engine string

	// SkipLayout stops after the build.
	SkipLayout bool

	// Refresh ignores cached layouts (new results are still stored).
	Refresh bool

	// LayoutTTL defaults to DefaultLayoutTTL.
	LayoutTTL time.Duration

	Logger *log.Logger
}

// Validate checks the focus and fills defaults.
func (o *Options) Validate() error {
	if err := o.Canon.Focus.Validate(); err != nil {
		return err
	}
	if o.Spacing == (layout.Spacing{}) {
		o.Spacing = layout.DefaultSpacing(o.Canon.Focus.BankPort())
	}
	if o.Engine == "" {
		o.Engine = DefaultEngine
	}
	if o.LayoutTTL == 0 {
		o.LayoutTTL = DefaultLayoutTTL
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if o.Canon.Logger == nil {
		o.Canon.Logger = o.Logger
	}
	return nil
}

// LayoutKeyOpts returns the option part of the layout cache key.
func (o Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	sp := o.Spacing
	return cache.LayoutKeyOpts{
		Focus:            o.Canon.Focus.String(),
		ExcludedFields:   o.Canon.ExcludedFields,
		ReservedChannels: o.Canon.ReservedChannels,
		Instructions:     o.Canon.Instructions.String(),
		Engine:           o.Engine,
		Spacing:          string(sp.Direction) + fmtSpacing(sp.NodeSep, sp.RankSep, sp.EdgeSep),
	}
}

// =============================================================================
// Result
// =============================================================================

// Result is the output of a pipeline run.
type Result struct {
	// BuildID identifies the run in logs.
	BuildID string

	// ReportHash is the content hash of the report bytes.
	ReportHash string

	// Document is the decoded report.
	Document *mav.Document

	// Graph is the canonical graph without dummy edges.
	Graph *canon.Graph

	// Request is the layout request, dummy edges included.
	Request *layout.Request

	// Layout is nil when the layout stage was skipped. Dummy routes are
	// removed.
	Layout *layout.Result

	Diagnostics []diag.Diagnostic
	Stats       Stats
	CacheInfo   CacheInfo
}

// Stats holds sizes and timings of a run.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	BuildTime  time.Duration
	LayoutTime time.Duration
}

// CacheInfo tracks which stages hit the cache.
type CacheInfo struct {
	LayoutHit bool
}
