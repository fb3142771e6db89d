package canon

import (
	"fmt"
	"sort"
	"testing"

	"pgregory.net/rapid"

	"github.com/matzehuels/mavgraph/pkg/mav"
)

const (
	propKernel = 1
	propMemory = 2
	propBlock  = 3
	firstInst  = 10
	firstMem   = 100
	numMems    = 3
)

// genReport draws a kernel whose single basic block holds instructions
// from a small content pool, each linked to a random subset of three
// memory systems in a random role.
func genReport(t *rapid.T) *mav.Document {
	n := rapid.IntRange(1, 10).Draw(t, "instructions")
	var insts []mav.RawNode
	var links []mav.RawLink
	for i := 0; i < n; i++ {
		id := firstInst + i
		name := rapid.SampledFrom([]string{"Load", "Store"}).Draw(t, "name")
		width := rapid.SampledFrom([]string{"32", "64"}).Draw(t, "width")
		line := rapid.IntRange(1, 2).Draw(t, "line")
		insts = append(insts, located(detailed(node(id, "inst", name), "Width", width, "Reference", fmt.Sprint(id)), "k.cpp", line))
		for m := firstMem; m < firstMem+numMems; m++ {
			switch rapid.IntRange(0, 2).Draw(t, "role") {
			case 1:
				links = append(links, link(m, id))
			case 2:
				links = append(links, link(id, m))
			}
		}
	}
	return reportWith(insts, links)
}

func reportWith(insts []mav.RawNode, links []mav.RawLink) *mav.Document {
	var mems []mav.RawNode
	for m := firstMem; m < firstMem+numMems; m++ {
		mems = append(mems, node(m, "memsys", fmt.Sprintf("mem%d", m)))
	}
	return &mav.Document{
		Nodes: []mav.RawNode{
			node(propKernel, "kernel", "k0",
				node(propMemory, "memtype", "Local Memory", mems...),
				node(propBlock, "bb", "k0.B0", insts...),
			),
		},
		Links: links,
	}
}

// shape summarizes a graph up to id relabeling: one entry per node
// (label, count, neighbourhood) and per edge.
func shape(g *Graph) []string {
	desc := func(id string) string {
		n, _ := g.Node(id)
		d, _ := g.Describe(id)
		content := ""
		if len(d.Records) > 0 {
			content = d.Records[0].Value("Width")
		}
		return fmt.Sprintf("%s#%d/%s@%d", n.Label, n.Count, content, d.Location.Line)
	}
	var out []string
	for _, n := range g.Nodes() {
		var nbrs []string
		for _, e := range g.Edges() {
			switch n.ID {
			case e.LogicalFrom:
				nbrs = append(nbrs, "out:"+desc(e.LogicalTo))
			case e.LogicalTo:
				nbrs = append(nbrs, "in:"+desc(e.LogicalFrom))
			}
		}
		sort.Strings(nbrs)
		out = append(out, fmt.Sprintf("node %s parent=%s %v", desc(n.ID), n.Parent, nbrs))
	}
	for _, e := range g.Edges() {
		out = append(out, fmt.Sprintf("edge %s -> %s %s/%s links=%d", desc(e.LogicalFrom), desc(e.LogicalTo), e.Direction, e.Arrow, len(e.Links)))
	}
	sort.Strings(out)
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestPropertyEquivalenceRelation(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		doc := genReport(t)
		ctx := mustContext(doc)
		ids := ctx.Catalog.Subtree(propBlock)[1:]
		eq := func(a, b int) bool { return Equivalent(ctx, Options{}, a, b) }
		for _, a := range ids {
			if !eq(a, a) {
				t.Fatalf("not reflexive on %d", a)
			}
			for _, b := range ids {
				if eq(a, b) != eq(b, a) {
					t.Fatalf("not symmetric on %d, %d", a, b)
				}
				for _, c := range ids {
					if eq(a, b) && eq(b, c) && !eq(a, c) {
						t.Fatalf("not transitive on %d, %d, %d", a, b, c)
					}
				}
			}
		}

		// The merge agrees with the predicate.
		m := Dedupe(ctx, Options{})
		for _, a := range ids {
			for _, b := range ids {
				if (m.Canonical(a) == m.Canonical(b)) != eq(a, b) {
					t.Fatalf("merge of %d and %d disagrees with Equivalent", a, b)
				}
			}
		}
	})
}

func TestPropertyOrderIndependence(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		doc := genReport(t)
		block := doc.Nodes[0].Children[1]

		insts := rapid.Permutation(block.Children).Draw(t, "node order")
		links := rapid.Permutation(doc.Links).Draw(t, "link order")
		shuffled := reportWith(insts, links)

		a := shape(Build(doc, Options{}))
		b := shape(Build(shuffled, Options{}))
		if !equalStrings(a, b) {
			t.Fatalf("shuffled build differs:\n%v\n%v", a, b)
		}
	})
}

func TestPropertyIdempotence(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		first := Build(genReport(t), Options{})

		// Expand every canonical instruction back into Count raw copies,
		// each wired like the representative.
		var insts []mav.RawNode
		var links []mav.RawLink
		next := firstInst
		for _, n := range first.Nodes() {
			if n.Kind != mav.KindInstruction {
				continue
			}
			d, _ := first.Describe(n.ID)
			for c := 0; c < n.Count; c++ {
				id := next
				next++
				raw := node(id, "inst", n.Name)
				raw.Details = d.Records
				if d.HasLocation {
					raw.Debug = [][]mav.Location{{d.Location}}
				}
				insts = append(insts, raw)
				for _, e := range first.Edges() {
					from, _ := first.Node(e.LogicalFrom)
					to, _ := first.Node(e.LogicalTo)
					switch n.ID {
					case e.LogicalFrom:
						links = append(links, link(id, to.RawID))
					case e.LogicalTo:
						links = append(links, link(from.RawID, id))
					}
				}
			}
		}
		second := Build(reportWith(insts, links), Options{})

		a, b := shape(first), shape(second)
		if !equalStrings(a, b) {
			t.Fatalf("rebuild from canonical output differs:\n%v\n%v", a, b)
		}
	})
}

func TestPropertyConnectivity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		doc := genReport(t)
		g := Build(doc, Options{})
		for _, e := range g.Edges() {
			from, _ := g.Node(e.LogicalFrom)
			to, _ := g.Node(e.LogicalTo)
			members := func(ids []int) map[int]bool {
				m := make(map[int]bool)
				for _, id := range ids {
					m[id] = true
				}
				return m
			}
			fromSet, toSet := members(from.Represented), members(to.Represented)
			if len(e.Links) == 0 {
				t.Fatalf("edge %s stands for no link", e.ID)
			}
			for _, i := range e.Links {
				l := doc.Links[i]
				if !fromSet[l.From] || !toSet[l.To] {
					t.Fatalf("edge %s claims link %d (%d -> %d) outside its groups", e.ID, i, l.From, l.To)
				}
			}
		}
	})
}

// In bank mode every retained node is the memory system, one of its banks,
// a logical port of a listed bank, an arbiter next to such a port, or an
// accessor next to such a port or arbiter. Conversely every accessor one
// hop from a retained port is retained.
func TestPropertyBankSubsetSoundness(t *testing.T) {
	ports := []int{6, 7, 13, 14}
	accessors := []int{21, 22, 23}
	rapid.Check(t, func(t *rapid.T) {
		var links []mav.RawLink
		for _, p := range ports {
			switch rapid.IntRange(0, 2).Draw(t, "port wiring") {
			case 1:
				links = append(links, link(p, 30))
			case 2:
				links = append(links, link(p, rapid.SampledFrom(accessors).Draw(t, "accessor")))
			}
		}
		for _, a := range accessors {
			if rapid.Bool().Draw(t, "arb wiring") {
				links = append(links, link(30, a))
			}
		}
		banks := rapid.SampledFrom([][]string{nil, {"B0"}, {"B1"}, {"B0", "B1"}}).Draw(t, "banks")

		ctx := mustContext(bankReport(links...))
		sel := Select(ctx, BankFocus("k0", "M", banks...))

		listed := map[string]bool{}
		for _, b := range banks {
			listed[b] = true
		}
		portOK := func(id int) bool {
			bank, _ := ctx.Catalog.Ancestor(id, 2)
			return listed[bank.Name]
		}
		retainedPortNear := func(id int) bool {
			for _, n := range ctx.Links.Neighbors(id) {
				if ctx.Catalog.Kind(n) == mav.KindPort && sel.Contains(n) {
					return true
				}
			}
			return false
		}

		for _, id := range sel.IDs() {
			e, _ := ctx.Catalog.Get(id)
			ok := false
			switch e.Kind {
			case mav.KindMemSys:
				ok = id == 3
			case mav.KindBank:
				ok = e.ParentID == 3
			case mav.KindPort:
				ok = portOK(id)
			case mav.KindArbitration:
				ok = retainedPortNear(id)
			case mav.KindInstruction, mav.KindInterface:
				ok = retainedPortNear(id)
				for _, n := range ctx.Links.Neighbors(id) {
					if ctx.Catalog.Kind(n) == mav.KindArbitration && sel.Contains(n) && retainedPortNear(n) {
						ok = true
					}
				}
			}
			if !ok {
				t.Fatalf("node %d (%s) retained outside the hop rules", id, e.Kind)
			}
		}

		for _, p := range ports {
			if !sel.Contains(p) {
				continue
			}
			for _, n := range ctx.Links.Neighbors(p) {
				if k := ctx.Catalog.Kind(n); (k.IsAccessor() || k == mav.KindArbitration) && !sel.Contains(n) {
					t.Fatalf("neighbour %d of retained port %d missing", n, p)
				}
			}
		}
	})
}
