// Package highlight computes the neighbourhood to emphasize when a node or
// edge of a canonical graph is selected, and tracks the selection across
// graph rebuilds.
//
// Association runs over render edges. A focused node pulls in every edge
// touching it and the far endpoints (one hop). In bank/port mode a second
// hop reconstructs instruction -> arbiter -> port chains: from an
// instruction or interface the walk continues along edges leaving a first
// hop node, from a port along edges entering one. A focused edge
// associates only its two endpoints.
package highlight

import (
	"github.com/matzehuels/mavgraph/pkg/canon"
	"github.com/matzehuels/mavgraph/pkg/mav"
)

// Result is the read-only outcome of a highlight query.
type Result struct {
	Focus string
	Nodes []string // associated nodes, focus first
	Edges []string // associated edge ids in graph order
	// Styled is Nodes without kernel, component and memtype clusters,
	// which are never restyled.
	Styled      []string
	Description canon.Description
}

// Contains reports whether node id is associated.
func (r Result) Contains(id string) bool {
	for _, n := range r.Nodes {
		if n == id {
			return true
		}
	}
	return false
}

// HasEdge reports whether edge id is associated.
func (r Result) HasEdge(id string) bool {
	for _, e := range r.Edges {
		if e == id {
			return true
		}
	}
	return false
}

type collector struct {
	g     *canon.Graph
	nodes []string
	seen  map[string]bool
	edges map[string]bool
}

func (c *collector) addNode(id string) {
	if !c.seen[id] {
		c.seen[id] = true
		c.nodes = append(c.nodes, id)
	}
}

func (c *collector) result(focus string) Result {
	r := Result{Focus: focus, Nodes: c.nodes}
	for _, e := range c.g.Edges() {
		if c.edges[e.ID] {
			r.Edges = append(r.Edges, e.ID)
		}
	}
	for _, id := range c.nodes {
		if n, ok := c.g.Node(id); ok && restyled(n.Kind) {
			r.Styled = append(r.Styled, id)
		}
	}
	r.Description, _ = c.g.Describe(focus)
	return r
}

func restyled(k mav.Kind) bool {
	switch k {
	case mav.KindKernel, mav.KindComponent, mav.KindMemType:
		return false
	}
	return true
}

// Node returns the association of node id. The second result is false
// when the graph has no such node.
func Node(g *canon.Graph, id string) (Result, bool) {
	focus, ok := g.Node(id)
	if !ok {
		return Result{}, false
	}
	c := &collector{g: g, seen: make(map[string]bool), edges: make(map[string]bool)}
	c.addNode(id)

	for _, e := range g.Incident(id) {
		if e.Dummy {
			continue
		}
		c.edges[e.ID] = true
		c.addNode(e.RenderFrom)
		c.addNode(e.RenderTo)
	}

	if g.BankPort() && focus.Kind != mav.KindArbitration {
		accessor := focus.Kind.IsAccessor()
		port := focus.Kind == mav.KindPort
		if accessor || port {
			first := make(map[string]bool, len(c.nodes))
			for _, n := range c.nodes {
				first[n] = true
			}
			for _, e := range g.Edges() {
				if e.Dummy {
					continue
				}
				if (accessor && first[e.RenderFrom]) || (port && first[e.RenderTo]) {
					c.edges[e.ID] = true
					c.addNode(e.RenderFrom)
					c.addNode(e.RenderTo)
				}
			}
		}
	}
	return c.result(id), true
}

// Edge returns the association of edge id: its two endpoints.
func Edge(g *canon.Graph, id string) (Result, bool) {
	e, ok := g.Edge(id)
	if !ok {
		return Result{}, false
	}
	c := &collector{g: g, seen: make(map[string]bool), edges: map[string]bool{id: true}}
	c.addNode(e.RenderFrom)
	c.addNode(e.RenderTo)
	return c.result(id), true
}
