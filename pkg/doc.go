// Package pkg holds the mavgraph libraries.
//
// mavgraph turns the area/memory report of a high-level synthesis
// compiler into the graphs a report viewer draws. The report is a tree of
// typed nodes (kernels, basic blocks, instructions, memory systems, banks,
// replicates, ports) plus a flat list of data links.
//
// # Data Flow
//
//	report JSON
//	     ↓
//	[mav] decode nodes, links and detail records
//	     ↓
//	[catalog] id index, parent chains, link index
//	     ↓
//	[canon] deduplicate, select the focus, orient and collapse edges
//	     ↓
//	[layout] Graphviz placement of the canonical graph
//	     ↓
//	[highlight] neighbourhood of a node or edge selection
//
// [pipeline] runs these stages with a layout cache ([cache]), lifecycle
// hooks ([observability]) and a debounced scheduler for rebuilds. [config]
// reads the TOML settings and [diag] carries advisory diagnostics.
// Errors carry codes from [errors].
//
// # Focus
//
// A build is always for one focus: the whole graph, one component, the
// banks of one memory system with selected banks expanded to their ports,
// or the replicates of a single bank.
//
//	g := canon.Build(doc, canon.DefaultOptions(canon.BankFocus("k0", "M", "B0")))
package pkg
