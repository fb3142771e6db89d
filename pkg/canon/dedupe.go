package canon

import (
	"github.com/matzehuels/mavgraph/pkg/catalog"
	"github.com/matzehuels/mavgraph/pkg/errors"
	"github.com/matzehuels/mavgraph/pkg/mav"
)

// Merge is the outcome of deduplication: every raw id maps to the
// representative it was folded into. Unmerged ids map to themselves.
type Merge struct {
	redirect map[int]int
	members  map[int][]int
}

// Canonical returns the representative of id.
func (m *Merge) Canonical(id int) int {
	if c, ok := m.redirect[id]; ok {
		return c
	}
	return id
}

// Visible reports whether id survived deduplication as a representative.
func (m *Merge) Visible(id int) bool { return m.Canonical(id) == id }

// Count returns the multiplicity of representative id (1 for unmerged ids).
func (m *Merge) Count(id int) int {
	if ms, ok := m.members[id]; ok {
		return len(ms)
	}
	return 1
}

// Represented returns the raw ids folded into representative id,
// representative first.
func (m *Merge) Represented(id int) []int {
	if ms, ok := m.members[id]; ok {
		return append([]int(nil), ms...)
	}
	return []int{id}
}

// Merged returns the number of raw nodes folded away.
func (m *Merge) Merged() int { return len(m.redirect) }

func (m *Merge) fold(rep, id int) {
	if _, ok := m.members[rep]; !ok {
		m.members[rep] = []int{rep}
	}
	m.members[rep] = append(m.members[rep], id)
	m.redirect[id] = rep
}

// Dedupe merges equivalent channel-like nodes and, when enabled,
// equivalent instructions. Channels are merged first so instruction
// topology is compared through the channel redirection.
func Dedupe(ctx *catalog.Context, opts Options) *Merge {
	opts = opts.withDefaults()
	d := newDeduper(ctx, opts)
	d.mergeChannels()
	if opts.mergeInstructions() {
		d.mergeInstructions()
	}
	return d.merge
}

type deduper struct {
	ctx      *catalog.Context
	excluded map[string]bool
	reserved map[string]bool
	merge    *Merge
}

func newDeduper(ctx *catalog.Context, opts Options) *deduper {
	return &deduper{
		ctx:      ctx,
		excluded: set(opts.ExcludedFields),
		reserved: set(opts.ReservedChannels),
		merge:    &Merge{redirect: make(map[int]int), members: make(map[int][]int)},
	}
}

// =============================================================================
// Shallow node equivalence
// =============================================================================

// sameContent compares kind, name, detail record and first debug location.
// Link topology is not considered.
func (d *deduper) sameContent(a, b *catalog.Entry) bool {
	if a.Kind != b.Kind || a.Type != b.Type || a.Name != b.Name {
		return false
	}
	ra, okA := a.Detail()
	rb, okB := b.Detail()
	if okA != okB || (okA && !mav.EqualExcept(ra, rb, d.excluded)) {
		return false
	}
	la, okA := a.Location()
	lb, okB := b.Location()
	return okA == okB && la == lb
}

// =============================================================================
// Channel merge
// =============================================================================

type channel struct {
	entry       *catalog.Entry
	read, write *catalog.Entry
	readLink    int
	writeLink   int
}

// channelEnds returns the single outgoing (read) and incoming (write) link
// of a channel-like node.
func (d *deduper) channelEnds(e *catalog.Entry) (channel, bool) {
	links := d.ctx.Links.Incident(e.ID)
	if len(links) != 2 {
		return channel{}, false
	}
	ch := channel{entry: e, readLink: -1, writeLink: -1}
	for _, l := range links {
		switch {
		case l.IsSelfLoop():
			return channel{}, false
		case l.From == e.ID && ch.readLink < 0:
			ch.readLink = l.Index
			ch.read, _ = d.ctx.Catalog.Get(l.To)
		case l.To == e.ID && ch.writeLink < 0:
			ch.writeLink = l.Index
			ch.write, _ = d.ctx.Catalog.Get(l.From)
		default:
			return channel{}, false
		}
	}
	return ch, ch.read != nil && ch.write != nil
}

func (d *deduper) mergeChannels() {
	var reps []channel
	for _, id := range d.ctx.Catalog.Order() {
		e, _ := d.ctx.Catalog.Get(id)
		if !e.Kind.IsChannelLike() || d.reserved[e.Name] {
			continue
		}
		ch, ok := d.channelEnds(e)
		if !ok {
			continue
		}
		merged := false
		for _, rep := range reps {
			if rep.entry.Kind == e.Kind && rep.entry.Name == e.Name &&
				d.sameContent(rep.read, ch.read) && d.sameContent(rep.write, ch.write) {
				d.merge.fold(rep.entry.ID, e.ID)
				merged = true
				break
			}
		}
		if !merged {
			reps = append(reps, ch)
		}
	}
}

// =============================================================================
// Instruction merge
// =============================================================================

type role uint8

const (
	roleOut role = iota
	roleIn
	roleSelf
)

type incidence struct {
	role  role
	other int
}

// topology returns the set of (role, other endpoint) pairs of id's links,
// with endpoints resolved through the channel redirection.
func (d *deduper) topology(id int) map[incidence]bool {
	sig := make(map[incidence]bool)
	for _, l := range d.ctx.Links.Incident(id) {
		switch {
		case l.IsSelfLoop():
			sig[incidence{role: roleSelf}] = true
		case l.From == id:
			sig[incidence{role: roleOut, other: d.merge.Canonical(l.To)}] = true
		default:
			sig[incidence{role: roleIn, other: d.merge.Canonical(l.From)}] = true
		}
	}
	return sig
}

// compareTopology reports whether the two signatures are equal, and
// whether they overlap without being equal.
func compareTopology(a, b map[incidence]bool) (equal, partial bool) {
	shared := 0
	for k := range a {
		if b[k] {
			shared++
		}
	}
	equal = shared == len(a) && shared == len(b)
	return equal, !equal && shared > 0
}

type instruction struct {
	entry *catalog.Entry
	topo  map[incidence]bool
}

func (d *deduper) mergeInstructions() {
	groups := make(map[int][]instruction)
	var roots []instruction
	for _, id := range d.ctx.Catalog.Order() {
		e, _ := d.ctx.Catalog.Get(id)
		if e.Kind != mav.KindInstruction {
			continue
		}
		cand := instruction{entry: e, topo: d.topology(id)}

		reps := roots
		if e.HasParent {
			reps = groups[e.ParentID]
		}
		merged := false
		for _, rep := range reps {
			if !d.sameContent(rep.entry, e) {
				continue
			}
			equal, partial := compareTopology(rep.topo, cand.topo)
			if equal {
				d.merge.fold(rep.entry.ID, e.ID)
				merged = true
				break
			}
			if partial {
				d.ctx.Diag.Warnf(errors.ErrCodeAmbiguousMerge, e.ID,
					"instruction %q matches %d except for part of its links, kept separate", e.Name, rep.entry.ID)
			}
		}
		if merged {
			continue
		}
		if e.HasParent {
			groups[e.ParentID] = append(groups[e.ParentID], cand)
		} else {
			roots = append(roots, cand)
		}
	}
}

// Equivalent reports whether instructions a and b would be merged under
// opts: same container and content, and equal link topology after channel
// merging.
func Equivalent(ctx *catalog.Context, opts Options, a, b int) bool {
	opts = opts.withDefaults()
	d := newDeduper(ctx, opts)
	d.mergeChannels()
	ea, okA := ctx.Catalog.Get(a)
	eb, okB := ctx.Catalog.Get(b)
	if !okA || !okB || ea.Kind != mav.KindInstruction || eb.Kind != mav.KindInstruction {
		return false
	}
	if ea.HasParent != eb.HasParent || ea.ParentID != eb.ParentID {
		return false
	}
	if !d.sameContent(ea, eb) {
		return false
	}
	equal, _ := compareTopology(d.topology(a), d.topology(b))
	return equal
}
