package catalog

import (
	"github.com/matzehuels/mavgraph/pkg/diag"
	"github.com/matzehuels/mavgraph/pkg/errors"
	"github.com/matzehuels/mavgraph/pkg/mav"
)

// Link is an indexed raw link. Index is the link's position in the input
// list and stays stable even when earlier links were dropped.
type Link struct {
	Index   int
	From    int
	To      int
	Reverse bool
	Details []mav.Record
}

// IsSelfLoop reports whether the link starts and ends at the same node.
func (l Link) IsSelfLoop() bool { return l.From == l.To }

// Other returns the endpoint of l that is not id. For self-loops it
// returns id.
func (l Link) Other(id int) int {
	if l.From == id {
		return l.To
	}
	return l.From
}

// Index maps node ids to their incident links.
type Index struct {
	links  []Link
	byNode map[int][]int
}

// NewIndex indexes links against cat. Links referring to ids missing from
// the catalog are dropped with a diagnostic.
func NewIndex(cat *Catalog, raw []mav.RawLink, c *diag.Collector) *Index {
	x := &Index{byNode: make(map[int][]int)}
	for i, rl := range raw {
		if !cat.Has(rl.From) || !cat.Has(rl.To) {
			missing := rl.From
			if cat.Has(rl.From) {
				missing = rl.To
			}
			c.Warnf(errors.ErrCodeMalformedReference, missing, "link %d (%d -> %d) refers to unknown node, dropped", i, rl.From, rl.To)
			continue
		}
		pos := len(x.links)
		x.links = append(x.links, Link{Index: i, From: rl.From, To: rl.To, Reverse: rl.Reverse, Details: rl.Details})
		x.byNode[rl.From] = append(x.byNode[rl.From], pos)
		if rl.To != rl.From {
			x.byNode[rl.To] = append(x.byNode[rl.To], pos)
		}
	}
	return x
}

// Links returns every kept link in input order.
func (x *Index) Links() []Link { return append([]Link(nil), x.links...) }

// Len returns the number of kept links.
func (x *Index) Len() int { return len(x.links) }

// Incident returns the links touching id in insertion order. A self-loop
// appears once.
func (x *Index) Incident(id int) []Link {
	pos := x.byNode[id]
	out := make([]Link, len(pos))
	for i, p := range pos {
		out[i] = x.links[p]
	}
	return out
}

// Degree returns the number of links touching id.
func (x *Index) Degree(id int) int { return len(x.byNode[id]) }

// Neighbors returns the distinct far endpoints of id's links in
// insertion order.
func (x *Index) Neighbors(id int) []int {
	var out []int
	seen := make(map[int]bool)
	for _, p := range x.byNode[id] {
		o := x.links[p].Other(id)
		if !seen[o] {
			seen[o] = true
			out = append(out, o)
		}
	}
	return out
}
