package canon

import (
	"github.com/matzehuels/mavgraph/pkg/catalog"
	"github.com/matzehuels/mavgraph/pkg/mav"
)

// Selection is the set of raw node ids retained for a focus.
type Selection struct {
	ids   map[int]bool
	order []int

	// MemorySystem is the focused memory system in bank mode.
	MemorySystem int
	// FocusBank is the focused bank of a replicate view.
	FocusBank int
	// ExpandedBanks are the banks whose ports were expanded.
	ExpandedBanks map[int]bool
}

// Contains reports whether id is retained.
func (s *Selection) Contains(id int) bool { return s.ids[id] }

// Len returns the number of retained ids.
func (s *Selection) Len() int { return len(s.ids) }

// IDs returns the retained ids in the order they were added.
func (s *Selection) IDs() []int { return append([]int(nil), s.order...) }

func (s *Selection) add(id int) bool {
	if s.ids[id] {
		return false
	}
	s.ids[id] = true
	s.order = append(s.order, id)
	return true
}

func newSelection() *Selection {
	return &Selection{ids: make(map[int]bool), MemorySystem: -1, FocusBank: -1, ExpandedBanks: make(map[int]bool)}
}

// Select computes the nodes retained for focus. A focus that names a
// missing component or memory system yields an empty selection.
func Select(ctx *catalog.Context, focus Focus) *Selection {
	switch focus.Mode {
	case ModeComponent:
		return selectComponent(ctx, focus.Component)
	case ModeBank:
		return selectBank(ctx, focus)
	}
	s := newSelection()
	for _, id := range ctx.Catalog.Order() {
		s.add(id)
	}
	return s
}

// =============================================================================
// Component focus
// =============================================================================

// findComponent returns the first function-like node named name.
func findComponent(cat *catalog.Catalog, name string) (*catalog.Entry, bool) {
	for _, id := range cat.Order() {
		e, _ := cat.Get(id)
		if e.Kind.IsFunctionLike() && e.Name == name {
			return e, true
		}
	}
	return nil, false
}

func selectComponent(ctx *catalog.Context, name string) *Selection {
	s := newSelection()
	cat := ctx.Catalog
	target, ok := findComponent(cat, name)
	if !ok {
		return s
	}

	subtree := cat.Subtree(target.ID)
	for _, id := range subtree {
		s.add(id)
	}

	var extra []int
	for _, id := range subtree {
		for _, other := range ctx.Links.Neighbors(id) {
			if s.Contains(other) {
				continue
			}
			switch cat.Kind(other) {
			case mav.KindMemSys, mav.KindROMSys, mav.KindInterface, mav.KindChannel, mav.KindPipe:
				extra = append(extra, other)
			}
		}
	}

	for _, id := range cat.Order() {
		e, _ := cat.Get(id)
		switch e.Kind {
		case mav.KindInterface:
			if v, ok := e.DetailValue("Component"); ok && v == name {
				extra = append(extra, id)
			}
		case mav.KindStream:
			if streamTarget(ctx, e) == name {
				extra = append(extra, id)
			}
		}
	}

	for _, id := range extra {
		if !s.add(id) {
			continue
		}
		for p, ok := cat.Parent(id); ok; p, ok = cat.Parent(p.ID) {
			s.add(p.ID)
		}
	}
	return s
}

// streamTarget resolves the function a stream feeds: the far endpoint of
// its single link, then that endpoint's basic block, then the block's
// function. It returns "" when the chain is broken.
func streamTarget(ctx *catalog.Context, stream *catalog.Entry) string {
	links := ctx.Links.Incident(stream.ID)
	if len(links) != 1 {
		return ""
	}
	far := links[0].Other(stream.ID)
	fn, ok := ctx.Catalog.Ancestor(far, 2)
	if !ok {
		return ""
	}
	return fn.Name
}

// =============================================================================
// Bank focus
// =============================================================================

// memorySystemKernel returns the kernel owning a memory system: two levels
// up, three when the memory system sits in a memory group.
func memorySystemKernel(cat *catalog.Catalog, memsys int) (*catalog.Entry, bool) {
	parent, ok := cat.Parent(memsys)
	if !ok {
		return nil, false
	}
	if parent.Kind == mav.KindMemGroup {
		return cat.Ancestor(memsys, 3)
	}
	return cat.Ancestor(memsys, 2)
}

// FindMemorySystem locates the memory system named memsys under kernel.
func FindMemorySystem(cat *catalog.Catalog, kernel, memsys string) (*catalog.Entry, bool) {
	for _, id := range cat.MemorySystems() {
		e, _ := cat.Get(id)
		if e.Name != memsys {
			continue
		}
		if k, ok := memorySystemKernel(cat, id); ok && k.Name == kernel {
			return e, true
		}
	}
	return nil, false
}

func selectBank(ctx *catalog.Context, focus Focus) *Selection {
	s := newSelection()
	cat := ctx.Catalog
	ms, ok := FindMemorySystem(cat, focus.Component, focus.MemorySystem)
	if !ok {
		return s
	}
	s.MemorySystem = ms.ID

	listed := make(map[string]bool, len(focus.Banks))
	for _, b := range focus.Banks {
		listed[b] = true
	}

	if focus.Replicates {
		for _, bid := range ms.Children {
			b, _ := cat.Get(bid)
			if b.Kind != mav.KindBank || b.Name != focus.Bank {
				continue
			}
			s.FocusBank = b.ID
			s.ExpandedBanks[b.ID] = true
			s.add(b.ID)
			for _, rid := range b.Children {
				s.add(rid)
				r, _ := cat.Get(rid)
				for _, pid := range r.Children {
					expandPort(ctx, s, pid)
				}
			}
			break
		}
		return s
	}

	s.add(ms.ID)
	for _, bid := range ms.Children {
		b, _ := cat.Get(bid)
		s.add(b.ID)
		if b.Kind != mav.KindBank || !listed[b.Name] {
			continue
		}
		s.ExpandedBanks[b.ID] = true
		for _, pid := range logicalPorts(cat, b) {
			expandPort(ctx, s, pid)
		}
	}
	return s
}

// logicalPorts returns every port of a bank's first replicate plus the
// non-write ports of the remaining replicates.
func logicalPorts(cat *catalog.Catalog, bank *catalog.Entry) []int {
	var ports []int
	for i, rid := range bank.Children {
		r, _ := cat.Get(rid)
		for _, pid := range r.Children {
			p, _ := cat.Get(pid)
			if i == 0 || p.Name != "W" {
				ports = append(ports, pid)
			}
		}
	}
	return ports
}

// expandPort retains a port and its accessors: an arbitration neighbour
// together with that arbiter's instruction and interface neighbours, or a
// directly connected instruction or interface.
func expandPort(ctx *catalog.Context, s *Selection, port int) {
	s.add(port)
	cat := ctx.Catalog
	for _, n := range ctx.Links.Neighbors(port) {
		switch k := cat.Kind(n); {
		case k == mav.KindArbitration:
			s.add(n)
			for _, m := range ctx.Links.Neighbors(n) {
				if cat.Kind(m).IsAccessor() {
					s.add(m)
				}
			}
		case k.IsAccessor():
			s.add(n)
		}
	}
}
