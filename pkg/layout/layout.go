package layout

import (
	"context"

	"github.com/matzehuels/mavgraph/pkg/canon"
)

// Direction is the rank direction of a layout.
type Direction string

const (
	TopToBottom Direction = "TB"
	LeftToRight Direction = "LR"
)

// Spacing holds the graph-level layout attributes, in layout units.
type Spacing struct {
	Direction Direction
	NodeSep   float64
	RankSep   float64
	// EdgeSep is the minimum gap between parallel edges. Engines without
	// an equivalent setting ignore it.
	EdgeSep float64
}

// DefaultSpacing returns the viewer's spacing: top to bottom for the
// general graph, left to right with wider ranks for bank/port views.
func DefaultSpacing(bankPort bool) Spacing {
	if bankPort {
		return Spacing{Direction: LeftToRight, NodeSep: 25, RankSep: 50, EdgeSep: 15}
	}
	return Spacing{Direction: TopToBottom, NodeSep: 25, RankSep: 35, EdgeSep: 15}
}

// NodeSpec is one node or cluster of a request.
type NodeSpec struct {
	ID      string      `json:"id"`
	Label   string      `json:"label"`
	Shape   canon.Shape `json:"shape"`
	Width   float64     `json:"width"`
	Height  float64     `json:"height"`
	Parent  string      `json:"parent,omitempty"`
	Cluster bool        `json:"cluster,omitempty"`
}

// EdgeSpec is one render edge of a request.
type EdgeSpec struct {
	ID       string `json:"id"`
	From     string `json:"from"`
	To       string `json:"to"`
	Reversed bool   `json:"reversed,omitempty"` // arrowhead at From
	Dummy    bool   `json:"dummy,omitempty"`
}

// Request is the input of a Layouter. Nodes are ordered parents first.
type Request struct {
	Spacing Spacing    `json:"spacing"`
	Nodes   []NodeSpec `json:"nodes"`
	Edges   []EdgeSpec `json:"edges"`
}

// Clusters returns the set of cluster ids.
func (r *Request) Clusters() map[string]bool {
	out := make(map[string]bool)
	for _, n := range r.Nodes {
		if n.Cluster {
			out[n.ID] = true
		}
	}
	return out
}

// FromGraph converts a canonical graph into a layout request, dummy edges
// included.
func FromGraph(g *canon.Graph, sp Spacing) *Request {
	req := &Request{Spacing: sp}
	for _, n := range g.Nodes() {
		req.Nodes = append(req.Nodes, NodeSpec{
			ID:      n.ID,
			Label:   n.Label,
			Shape:   n.Shape,
			Width:   n.Width,
			Height:  n.Height,
			Parent:  n.Parent,
			Cluster: n.Cluster,
		})
	}
	for _, e := range g.Edges() {
		req.Edges = append(req.Edges, EdgeSpec{
			ID:       e.ID,
			From:     e.RenderFrom,
			To:       e.RenderTo,
			Reversed: e.Arrow == canon.ArrowReversed,
			Dummy:    e.Dummy,
		})
	}
	return req
}

// Point is a position in layout units.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Box is a placed node or cluster: top-left corner and extent.
type Box struct {
	ID      string  `json:"id"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Cluster bool    `json:"cluster,omitempty"`
}

// Center returns the centre of b.
func (b Box) Center() Point {
	return Point{X: b.X + b.Width/2, Y: b.Y + b.Height/2}
}

// Route is the spline of a placed edge.
type Route struct {
	ID     string  `json:"id"`
	Points []Point `json:"points"`
	End    *Point  `json:"end,omitempty"` // arrowhead tip, when reported
	Dummy  bool    `json:"dummy,omitempty"`
}

// Result is the output of a Layouter, in request order.
type Result struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Nodes  []Box   `json:"nodes"`
	Edges  []Route `json:"edges"`
}

// Node returns the box of id.
func (r *Result) Node(id string) (Box, bool) {
	for _, b := range r.Nodes {
		if b.ID == id {
			return b, true
		}
	}
	return Box{}, false
}

// WithoutDummies drops the routes of placement-only edges.
func (r *Result) WithoutDummies() *Result {
	out := *r
	out.Edges = nil
	for _, e := range r.Edges {
		if !e.Dummy {
			out.Edges = append(out.Edges, e)
		}
	}
	return &out
}

// Layouter places a request.
type Layouter interface {
	Layout(ctx context.Context, req *Request) (*Result, error)
}
