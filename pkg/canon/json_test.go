package canon

import (
	"bytes"
	"testing"

	"github.com/goccy/go-json"

	"github.com/matzehuels/mavgraph/pkg/mav"
)

func TestGraphJSON(t *testing.T) {
	g := Build(kernelReport(), Options{})

	var buf bytes.Buffer
	if err := WriteJSON(&buf, g); err != nil {
		t.Fatal(err)
	}
	var out graphJSON
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatal(err)
	}

	if out.Focus != "all" {
		t.Errorf("focus = %q", out.Focus)
	}
	if len(out.Nodes) != g.NodeCount() || len(out.Edges) != g.EdgeCount() {
		t.Fatalf("%d nodes, %d edges", len(out.Nodes), len(out.Edges))
	}
	if out.Nodes[0].Kind != RootContainer || !out.Nodes[0].Synthetic {
		t.Errorf("first node = %+v", out.Nodes[0])
	}

	nodes := make(map[string]nodeJSON)
	for _, n := range out.Nodes {
		nodes[n.ID] = n
	}
	if p := nodes["_20"].Parent; p != RootGlobalMemory {
		t.Errorf("global memory parent = %q", p)
	}
	if n := nodes["_5"]; n.Count != 3 || n.Kind != "inst" {
		t.Errorf("merged load = %+v", n)
	}
	if n := nodes["_21"]; !n.Global || n.RawID == nil || *n.RawID != 21 {
		t.Errorf("global memory system = %+v", n)
	}
	if nodes["_3"].Global {
		t.Error("local memory system marked global")
	}
	if raw := nodes[RootContainer].RawID; raw != nil {
		t.Errorf("synthetic root raw id = %d", *raw)
	}

	var found bool
	for _, e := range out.Edges {
		if e.ID == "_3->_5" {
			found = true
			if e.From != "_3" || e.Direction != "reversed" || e.Arrow != "reversed" {
				t.Errorf("memsys edge = %+v", e)
			}
		}
	}
	if !found {
		t.Error("memsys edge missing")
	}
}

func TestGraphJSONRawIDZero(t *testing.T) {
	doc := &mav.Document{Nodes: []mav.RawNode{node(0, "kernel", "k0", node(1, "bb", "k0.B0"))}}

	data, err := json.Marshal(Build(doc, Options{}))
	if err != nil {
		t.Fatal(err)
	}
	var out graphJSON
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}

	var real, synthetic int
	for _, n := range out.Nodes {
		switch {
		case n.ID == "_0":
			if n.RawID == nil || *n.RawID != 0 {
				t.Errorf("node _0 raw id = %v", n.RawID)
			}
			real++
		case n.Synthetic:
			if n.RawID != nil {
				t.Errorf("synthetic %s has raw id %d", n.ID, *n.RawID)
			}
			synthetic++
		}
	}
	if real != 1 || synthetic == 0 {
		t.Errorf("found %d real, %d synthetic nodes", real, synthetic)
	}
}
