package canon

import (
	"github.com/matzehuels/mavgraph/pkg/catalog"
	"github.com/matzehuels/mavgraph/pkg/diag"
	"github.com/matzehuels/mavgraph/pkg/mav"
)

func node(id int, typ, name string, children ...mav.RawNode) mav.RawNode {
	return mav.RawNode{ID: id, Type: typ, Name: name, Children: children}
}

func detailed(n mav.RawNode, kv ...string) mav.RawNode {
	n.Details = []mav.Record{mav.NewRecord(kv...)}
	return n
}

func located(n mav.RawNode, file string, line int) mav.RawNode {
	n.Debug = [][]mav.Location{{{Filename: file, Line: line}}}
	return n
}

func link(from, to int) mav.RawLink { return mav.RawLink{From: from, To: to} }

func mustContext(doc *mav.Document) *catalog.Context {
	ctx, err := catalog.NewContext(doc, diag.NewCollector(nil))
	if err != nil {
		panic(err)
	}
	return ctx
}

// kernelReport has one kernel with a basic block of three identical loads
// (differing only in Reference) reading a local memory, a store, and a
// channel pair feeding a second kernel.
//
//	1 kernel k0
//	  2 memtype "Local Memory"
//	    3 memsys buf
//	  4 bb k0.B1
//	    5,6,7 inst "Load"   <- 3
//	    8 inst "Store"      -> 3
//	    9 inst "Write"      -> 30
//	10 kernel k1
//	  11 bb k1.B0
//	    12 inst "Read"      <- 30
//	20 memtype "Global Memory"
//	  21 memsys DDR         <- 12
//	30 channel c0
func kernelReport() *mav.Document {
	load := func(id int, ref string) mav.RawNode {
		return located(detailed(node(id, "inst", "Load"), "Width", "32 bits", "Reference", ref), "gemm.cpp", 12)
	}
	return &mav.Document{
		Nodes: []mav.RawNode{
			node(1, "kernel", "k0",
				node(2, "memtype", "Local Memory",
					detailed(node(3, "memsys", "buf"), "Number of banks", "2", "Total replication", "4"),
				),
				node(4, "bb", "k0.B1",
					load(5, "a"), load(6, "b"), load(7, "c"),
					node(8, "inst", "Store"),
					node(9, "inst", "Channel Write"),
				),
			),
			node(10, "kernel", "k1",
				node(11, "bb", "k1.B0",
					node(12, "inst", "Channel Read"),
				),
			),
			node(20, "memtype", "Global Memory",
				node(21, "memsys", "DDR"),
			),
			node(30, "channel", "c0"),
		},
		Links: []mav.RawLink{
			link(3, 5), link(3, 6), link(3, 7),
			link(8, 3),
			link(9, 30), link(30, 12),
			link(12, 21),
		},
	}
}

// bankReport is a local memory M of kernel k0 with two banks of one
// replicate each, ports R and W, and an arbiter shared by two loads.
//
//	1 kernel k0
//	  2 memtype "Local Memory"
//	    3 memsys M
//	      4 bank B0 > 5 replicate R0 > 6 port R, 7 port W
//	      11 bank B1 > 12 replicate R0 > 13 port R, 14 port W
//	    30 arb ARB
//	  20 bb k0.B1
//	    21 inst Load, 22 inst Load, 23 inst Store
//
// Callers supply the links.
func bankReport(links ...mav.RawLink) *mav.Document {
	return &mav.Document{
		Nodes: []mav.RawNode{
			node(1, "kernel", "k0",
				node(2, "memtype", "Local Memory",
					node(3, "memsys", "M",
						node(4, "bank", "B0", node(5, "replicate", "R0", node(6, "port", "R"), node(7, "port", "W"))),
						node(11, "bank", "B1", node(12, "replicate", "R0", node(13, "port", "R"), node(14, "port", "W"))),
					),
					node(30, "arb", "ARB"),
				),
				node(20, "bb", "k0.B1",
					node(21, "inst", "Load"),
					node(22, "inst", "Load"),
					node(23, "inst", "Store"),
				),
			),
		},
		Links: links,
	}
}
