package catalog

import (
	"testing"

	"github.com/matzehuels/mavgraph/pkg/diag"
	"github.com/matzehuels/mavgraph/pkg/errors"
	"github.com/matzehuels/mavgraph/pkg/mav"
)

func testDoc() *mav.Document {
	return &mav.Document{
		Nodes: []mav.RawNode{
			{ID: 1, Type: "kernel", Name: "k0", Children: []mav.RawNode{
				{ID: 2, Type: "memtype", Name: "Local Memory", Children: []mav.RawNode{
					{ID: 3, Type: "memsys", Name: "buf"},
				}},
				{ID: 4, Type: "bb", Name: "k0.B0", Children: []mav.RawNode{
					{ID: 5, Type: "inst", Name: "Load"},
				}},
			}},
			{ID: 6, Type: "memtype", Name: "Global Memory", Children: []mav.RawNode{
				{ID: 7, Type: "memsys", Name: "DDR"},
			}},
			{ID: 8, Type: "widget", Name: "odd", Details: []mav.Record{mav.NewRecord("a", "1"), mav.NewRecord("b", "2")}},
		},
		Links: []mav.RawLink{
			{From: 3, To: 5},
			{From: 5, To: 42},
			{From: 4, To: 4},
			{From: 7, To: 5},
		},
	}
}

func TestBuild(t *testing.T) {
	c := diag.NewCollector(nil)
	cat, err := Build(testDoc().Nodes, c)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if cat.Len() != 8 {
		t.Errorf("Len() = %d, want 8", cat.Len())
	}
	wantOrder := []int{1, 2, 3, 4, 5, 6, 7, 8}
	for i, id := range cat.Order() {
		if id != wantOrder[i] {
			t.Fatalf("Order() = %v, want %v", cat.Order(), wantOrder)
		}
	}

	p, ok := cat.Parent(5)
	if !ok || p.ID != 4 {
		t.Errorf("Parent(5) = %v, %v", p, ok)
	}
	if _, ok := cat.Parent(1); ok {
		t.Error("root should have no parent")
	}
	if k, ok := cat.Ancestor(3, 2); !ok || k.ID != 1 {
		t.Errorf("Ancestor(3, 2) = %v, %v", k, ok)
	}
	if !cat.IsAncestor(1, 5) || cat.IsAncestor(5, 1) {
		t.Error("IsAncestor wrong")
	}

	ms := cat.MemorySystems()
	if len(ms) != 2 || ms[0] != 3 || ms[1] != 7 {
		t.Errorf("MemorySystems() = %v", ms)
	}
	if e, _ := cat.Get(7); !e.Global {
		t.Error("DDR should be global")
	}
	if e, _ := cat.Get(3); e.Global {
		t.Error("buf should not be global")
	}

	if e, _ := cat.Get(8); e.Kind != mav.KindUnknown || e.Type != "widget" {
		t.Errorf("unknown node = %+v", e)
	}
	if c.Count(errors.ErrCodeUnknownNodeType) != 1 {
		t.Error("expected one UNKNOWN_NODE_TYPE diagnostic")
	}
	if c.Count(errors.ErrCodeInconsistentDetails) != 1 {
		t.Error("expected one INCONSISTENT_DETAILS diagnostic")
	}
	if v, ok := mustGet(t, cat, 8).DetailValue("a"); !ok || v != "1" {
		t.Errorf("first record should win, got %q", v)
	}

	sub := cat.Subtree(1)
	if len(sub) != 5 {
		t.Errorf("Subtree(1) = %v", sub)
	}
}

func TestBuildDuplicateID(t *testing.T) {
	nodes := []mav.RawNode{
		{ID: 1, Type: "kernel", Name: "k", Children: []mav.RawNode{{ID: 1, Type: "bb", Name: "b"}}},
	}
	_, err := Build(nodes, nil)
	if !errors.Is(err, errors.ErrCodeDuplicateID) {
		t.Fatalf("expected DUPLICATE_ID, got %v", err)
	}
}

func TestIndex(t *testing.T) {
	c := diag.NewCollector(nil)
	ctx, err := NewContext(testDoc(), c)
	if err != nil {
		t.Fatal(err)
	}
	x := ctx.Links

	if x.Len() != 3 {
		t.Fatalf("Len() = %d, want 3 (one malformed link dropped)", x.Len())
	}
	if c.Count(errors.ErrCodeMalformedReference) != 1 {
		t.Error("expected one MALFORMED_REFERENCE diagnostic")
	}

	inc := x.Incident(5)
	if len(inc) != 2 || inc[0].Index != 0 || inc[1].Index != 3 {
		t.Errorf("Incident(5) = %+v", inc)
	}
	if x.Degree(4) != 1 {
		t.Errorf("self-loop indexed %d times", x.Degree(4))
	}
	if l := x.Incident(4)[0]; !l.IsSelfLoop() || l.Other(4) != 4 {
		t.Errorf("self-loop = %+v", l)
	}
	if n := x.Neighbors(5); len(n) != 2 || n[0] != 3 || n[1] != 7 {
		t.Errorf("Neighbors(5) = %v", n)
	}
	if len(x.Incident(99)) != 0 {
		t.Error("unknown id should have no links")
	}
}

func TestEntryLocation(t *testing.T) {
	e := &Entry{Debug: [][]mav.Location{{{Filename: "a.cpp", Line: 3}, {Filename: "b.cpp", Line: 9}}}}
	loc, ok := e.Location()
	if !ok || loc.Filename != "a.cpp" || loc.Line != 3 {
		t.Errorf("Location() = %+v, %v", loc, ok)
	}
	if _, ok := (&Entry{Debug: [][]mav.Location{{}}}).Location(); ok {
		t.Error("empty alternative list should have no location")
	}
}

func mustGet(t *testing.T, cat *Catalog, id int) *Entry {
	t.Helper()
	e, ok := cat.Get(id)
	if !ok {
		t.Fatalf("missing entry %d", id)
	}
	return e
}
