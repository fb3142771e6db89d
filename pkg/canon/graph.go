package canon

import (
	"strconv"

	"github.com/matzehuels/mavgraph/pkg/catalog"
	"github.com/matzehuels/mavgraph/pkg/diag"
	"github.com/matzehuels/mavgraph/pkg/mav"
)

// Synthetic containment roots.
const (
	RootContainer    = "container"
	RootGlobalMemory = "glbmem"
)

// NodeID returns the canonical id of raw node id.
func NodeID(raw int) string { return "_" + strconv.Itoa(raw) }

// Node is a canonical node: a merge representative retained for the focus,
// or a synthetic grouping node.
type Node struct {
	ID    string
	RawID int // -1 for synthetic nodes
	Kind  mav.Kind
	Type  string
	Name  string

	Label         string
	Shape         Shape
	Width, Height float64

	Parent    string // containing cluster, "" for roots
	Cluster   bool   // contains other nodes
	Synthetic bool   // container, glbmem and copies nodes
	Global    bool   // memory system inside "Global Memory"

	Count       int
	Represented []int
}

// Edge is a canonical edge. Logical endpoints keep the producer/consumer
// direction of the data; render endpoints are what the layout sees.
type Edge struct {
	ID          string
	LogicalFrom string
	LogicalTo   string
	RenderFrom  string
	RenderTo    string
	Direction   Direction
	Arrow       Arrow
	Links       []int // input positions of the raw links this edge stands for
	Dummy       bool  // placement-only edge, removed after layout
}

// Graph is the immutable result of a build.
type Graph struct {
	focus    Focus
	nodes    []Node
	edges    []Edge
	nodeIdx  map[string]int
	edgeIdx  map[string]int
	children map[string][]string
	incident map[string][]int

	ctx     *catalog.Context
	hidden  map[string]bool
	details map[string][]mav.Record
	diags   *diag.Collector
}

func newGraph(focus Focus, nodes []Node, edges []Edge) *Graph {
	g := &Graph{
		focus:    focus,
		nodes:    nodes,
		edges:    edges,
		nodeIdx:  make(map[string]int, len(nodes)),
		edgeIdx:  make(map[string]int, len(edges)),
		children: make(map[string][]string),
		incident: make(map[string][]int),
		details:  make(map[string][]mav.Record),
	}
	for i, n := range nodes {
		g.nodeIdx[n.ID] = i
		if n.Parent != "" {
			g.children[n.Parent] = append(g.children[n.Parent], n.ID)
		}
	}
	for i, e := range edges {
		g.edgeIdx[e.ID] = i
		g.incident[e.RenderFrom] = append(g.incident[e.RenderFrom], i)
		if e.RenderTo != e.RenderFrom {
			g.incident[e.RenderTo] = append(g.incident[e.RenderTo], i)
		}
	}
	return g
}

// Focus returns the focus the graph was built for.
func (g *Graph) Focus() Focus { return g.focus }

// BankPort reports whether bank/port rules apply to the graph.
func (g *Graph) BankPort() bool { return g.focus.BankPort() }

// Empty reports whether the graph has no nodes.
func (g *Graph) Empty() bool { return len(g.nodes) == 0 }

// NodeCount returns the number of nodes, synthetic ones included.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges, dummies included.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Nodes returns all nodes, parents before children.
func (g *Graph) Nodes() []Node { return append([]Node(nil), g.nodes...) }

// Edges returns all edges in input link order, dummy edges last.
func (g *Graph) Edges() []Edge { return append([]Edge(nil), g.edges...) }

// Node looks up a node by canonical id.
func (g *Graph) Node(id string) (Node, bool) {
	i, ok := g.nodeIdx[id]
	if !ok {
		return Node{}, false
	}
	return g.nodes[i], true
}

// Edge looks up an edge by id.
func (g *Graph) Edge(id string) (Edge, bool) {
	i, ok := g.edgeIdx[id]
	if !ok {
		return Edge{}, false
	}
	return g.edges[i], true
}

// Children returns the nodes directly contained in cluster id.
func (g *Graph) Children(id string) []string {
	return append([]string(nil), g.children[id]...)
}

// Roots returns the nodes without a parent.
func (g *Graph) Roots() []string {
	var out []string
	for _, n := range g.nodes {
		if n.Parent == "" {
			out = append(out, n.ID)
		}
	}
	return out
}

// Incident returns the edges whose render endpoints include id.
func (g *Graph) Incident(id string) []Edge {
	pos := g.incident[id]
	out := make([]Edge, len(pos))
	for i, p := range pos {
		out[i] = g.edges[p]
	}
	return out
}

// Diagnostics returns the diagnostics raised while building the graph.
func (g *Graph) Diagnostics() []diag.Diagnostic { return g.diags.Items() }

// WithoutDummies returns a copy of g without placement-only edges.
func (g *Graph) WithoutDummies() *Graph {
	edges := make([]Edge, 0, len(g.edges))
	for _, e := range g.edges {
		if !e.Dummy {
			edges = append(edges, e)
		}
	}
	out := newGraph(g.focus, g.nodes, edges)
	out.ctx, out.hidden, out.details, out.diags = g.ctx, g.hidden, g.details, g.diags
	return out
}

// Description is the detail payload of a node or edge.
type Description struct {
	ID          string
	Records     []mav.Record // as found in the report
	Shown       []mav.Record // Records without hidden keys
	Location    mav.Location
	HasLocation bool
}

// Describe returns the detail records and best debug location of a node
// or edge id.
func (g *Graph) Describe(id string) (Description, bool) {
	d := Description{ID: id}
	if recs, ok := g.details[id]; ok {
		d.Records = recs
	} else if n, ok := g.Node(id); ok {
		if n.RawID >= 0 && g.ctx != nil {
			if e, ok := g.ctx.Catalog.Get(n.RawID); ok {
				d.Records = e.Details
				d.Location, d.HasLocation = e.Location()
			}
		}
	} else if _, ok := g.Edge(id); !ok {
		return Description{}, false
	}
	for _, r := range d.Records {
		d.Shown = append(d.Shown, r.Without(g.hidden))
	}
	return d, true
}
