package canon

import (
	"fmt"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/matzehuels/mavgraph/pkg/catalog"
	"github.com/matzehuels/mavgraph/pkg/diag"
	"github.com/matzehuels/mavgraph/pkg/errors"
	"github.com/matzehuels/mavgraph/pkg/mav"
)

// Build canonicalizes doc for opts.Focus. It never fails: a fatal input
// error yields an empty graph carrying an error diagnostic.
func Build(doc *mav.Document, opts Options) *Graph {
	opts = opts.withDefaults()
	c := diag.NewCollector(opts.Logger)
	if doc == nil {
		c.Fail(errors.New(errors.ErrCodeInvalidInput, "no report"))
		return emptyGraph(opts, c)
	}
	ctx, err := catalog.NewContext(doc, c)
	if err != nil {
		c.Fail(err)
		return emptyGraph(opts, c)
	}
	return BuildContext(ctx, opts)
}

// BuildContext runs deduplication, subset selection, edge orientation and
// assembly over an existing context. Diagnostics go to ctx.Diag.
func BuildContext(ctx *catalog.Context, opts Options) *Graph {
	opts = opts.withDefaults()
	merge := Dedupe(ctx, opts)
	sel := Select(ctx, opts.Focus)
	return assemble(ctx, opts, merge, sel)
}

func emptyGraph(opts Options, c *diag.Collector) *Graph {
	g := newGraph(opts.Focus, nil, nil)
	g.hidden = set(opts.HiddenDetails)
	g.diags = c
	return g
}

type assembler struct {
	ctx   *catalog.Context
	opts  Options
	merge *Merge
	sel   *Selection

	keep    map[int]bool
	parents map[int]string
	nodes   []Node
	edges   []Edge
	details map[string][]mav.Record
}

func assemble(ctx *catalog.Context, opts Options, merge *Merge, sel *Selection) *Graph {
	a := &assembler{
		ctx:     ctx,
		opts:    opts,
		merge:   merge,
		sel:     sel,
		keep:    make(map[int]bool),
		parents: make(map[int]string),
		details: make(map[string][]mav.Record),
	}
	order := ctx.Catalog.Order()
	for _, id := range order {
		if sel.Contains(id) {
			a.keep[merge.Canonical(id)] = true
		}
	}

	clusters := make(map[string]bool)
	for _, id := range order {
		if a.keep[id] {
			p := a.parentOf(id)
			a.parents[id] = p
			clusters[p] = true
		}
	}

	copies := a.copiesNodes(clusters)
	a.nodes = append(a.nodes, a.roots(clusters)...)
	diamondPorts := a.diamondPorts()
	for _, id := range order {
		if !a.keep[id] {
			continue
		}
		e, _ := ctx.Catalog.Get(id)
		nid := NodeID(id)
		hint := sizeFor(e, merge.Count(id), clusters[nid], diamondPorts)
		a.nodes = append(a.nodes, Node{
			ID:          nid,
			RawID:       id,
			Kind:        e.Kind,
			Type:        e.Type,
			Name:        e.Name,
			Label:       hint.label,
			Shape:       hint.shape,
			Width:       hint.width,
			Height:      hint.height,
			Parent:      a.parents[id],
			Cluster:     clusters[nid],
			Global:      e.Global,
			Count:       merge.Count(id),
			Represented: merge.Represented(id),
		})
		a.nodes = append(a.nodes, copies[id]...)
	}

	a.linkEdges()
	a.dummyEdges(copies)

	g := newGraph(opts.Focus, a.nodes, a.edges)
	g.ctx = ctx
	g.hidden = set(opts.HiddenDetails)
	g.diags = ctx.Diag
	for id, recs := range a.details {
		g.details[id] = recs
	}
	if err := validateContainment(g); err != nil {
		ctx.Diag.Fail(err)
	}
	return g
}

// parentOf returns the cluster id of a retained node: "glbmem" for the
// global memory container, otherwise the nearest retained ancestor, or
// "container" when there is none.
func (a *assembler) parentOf(id int) string {
	e, _ := a.ctx.Catalog.Get(id)
	if e.Name == catalog.GlobalMemoryName {
		return RootGlobalMemory
	}
	for p, ok := a.ctx.Catalog.Parent(id); ok; p, ok = a.ctx.Catalog.Parent(p.ID) {
		if a.keep[p.ID] {
			return NodeID(p.ID)
		}
	}
	return RootContainer
}

func (a *assembler) roots(used map[string]bool) []Node {
	var out []Node
	for _, id := range []string{RootContainer, RootGlobalMemory} {
		if used[id] {
			out = append(out, Node{ID: id, RawID: -1, Cluster: true, Synthetic: true, Count: 1})
		}
	}
	return out
}

// diamondPorts is true in the replicate view of a RAM.
func (a *assembler) diamondPorts() bool {
	if !a.opts.Focus.Replicates || a.sel.MemorySystem < 0 {
		return false
	}
	return a.ctx.Catalog.Kind(a.sel.MemorySystem) != mav.KindROMSys
}

// copiesNodes creates the copies summary of every retained replicate in
// the replicate view, keyed by replicate raw id. The replicate becomes a
// cluster.
func (a *assembler) copiesNodes(clusters map[string]bool) map[int][]Node {
	out := make(map[int][]Node)
	if !a.opts.Focus.Replicates {
		return out
	}
	for _, id := range a.ctx.Catalog.Order() {
		e, _ := a.ctx.Catalog.Get(id)
		if !a.keep[id] || e.Kind != mav.KindReplicate || e.Copies == nil || e.Copies.Num <= 0 {
			continue
		}
		parent := NodeID(id)
		n := Node{
			ID:        parent + "_copies",
			RawID:     -1,
			Kind:      mav.KindCopies,
			Type:      mav.KindCopies.String(),
			Name:      e.Name + " copies",
			Label:     fmt.Sprintf("%d copies", e.Copies.Num),
			Shape:     ShapeRect,
			Width:     CopiesWidth,
			Height:    CopiesHeight,
			Parent:    parent,
			Synthetic: true,
			Count:     1,
		}
		clusters[parent] = true
		a.details[n.ID] = e.Copies.Details
		out[id] = append(out[id], n)
	}
	return out
}

type edgeKey struct{ from, to int }

// linkEdges turns raw links into canonical edges. Links are redirected to
// their representatives, dropped unless both ends are retained, and
// parallel links with the same logical endpoints collapse into one edge.
func (a *assembler) linkEdges() {
	type group struct {
		key     edgeKey
		links   []int
		reverse bool
		details []mav.Record
	}
	var groups []*group
	byKey := make(map[edgeKey]*group)
	for _, l := range a.ctx.Links.Links() {
		k := edgeKey{a.merge.Canonical(l.From), a.merge.Canonical(l.To)}
		if !a.keep[k.from] || !a.keep[k.to] {
			continue
		}
		g, ok := byKey[k]
		if !ok {
			g = &group{key: k}
			byKey[k] = g
			groups = append(groups, g)
		}
		g.links = append(g.links, l.Index)
		g.reverse = g.reverse || l.Reverse
		if g.details == nil {
			g.details = l.Details
		}
	}

	bankPort := a.opts.Focus.BankPort()
	for _, g := range groups {
		o := Orient(a.ctx.Catalog, g.key.from, g.key.to, g.reverse, bankPort)
		from, to := NodeID(g.key.from), NodeID(g.key.to)
		e := Edge{
			ID:          from + "->" + to,
			LogicalFrom: from,
			LogicalTo:   to,
			RenderFrom:  from,
			RenderTo:    to,
			Direction:   o.Direction,
			Arrow:       o.Arrow,
			Links:       g.links,
		}
		if o.Direction == Reversed {
			e.RenderFrom, e.RenderTo = to, from
		}
		if g.details != nil {
			a.details[e.ID] = g.details
		}
		a.edges = append(a.edges, e)
	}
}

// dummyEdges ties every port of a replicate to its copies node so the
// layout centres the summary among the ports.
func (a *assembler) dummyEdges(copies map[int][]Node) {
	for _, id := range a.ctx.Catalog.Order() {
		cs, ok := copies[id]
		if !ok {
			continue
		}
		r, _ := a.ctx.Catalog.Get(id)
		for _, c := range cs {
			for _, pid := range r.Children {
				if !a.keep[pid] {
					continue
				}
				from := NodeID(pid)
				a.edges = append(a.edges, Edge{
					ID:          from + "->" + c.ID,
					LogicalFrom: from,
					LogicalTo:   c.ID,
					RenderFrom:  from,
					RenderTo:    c.ID,
					Dummy:       true,
				})
			}
		}
	}
}

// validateContainment checks that the parent relation is a forest.
func validateContainment(g *Graph) error {
	dg := simple.NewDirectedGraph()
	for i := range g.nodes {
		dg.AddNode(simple.Node(int64(i)))
	}
	for i, n := range g.nodes {
		if n.Parent == "" {
			continue
		}
		p, ok := g.nodeIdx[n.Parent]
		if !ok {
			return errors.New(errors.ErrCodeInternal, "node %s has unknown parent %s", n.ID, n.Parent)
		}
		if p == i {
			return errors.New(errors.ErrCodeInternal, "node %s contains itself", n.ID)
		}
		dg.SetEdge(dg.NewEdge(simple.Node(int64(p)), simple.Node(int64(i))))
	}
	if _, err := topo.Sort(dg); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "containment is not a tree")
	}
	return nil
}
