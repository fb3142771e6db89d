// Package layout is the boundary between a canonical graph and the layout
// engine that places it.
//
// # Overview
//
// A [Request] is the finished node/edge/cluster model: every node with its
// label, size and outline, the cluster it sits in, and every render edge
// with its arrow and dummy flag. A [Layouter] turns it into a [Result]
// with one box per node and cluster and one route per edge. The result is
// forwarded to the viewer unchanged.
//
// # Usage
//
//	g := canon.Build(doc, canon.Options{Focus: focus})
//	req := layout.FromGraph(g, layout.DefaultSpacing(g.BankPort()))
//	res, err := layout.NewGraphviz().Layout(ctx, req)
//
// # Graphviz
//
// [Graphviz] runs the dot engine in-process through
// [github.com/goccy/go-graphviz] and reads the laid-out DOT back with
// [gonum.org/v1/gonum/graph/formats/dot]. Clusters become
// "subgraph cluster_<id>" blocks; an invisible anchor node inside each
// cluster carries the edges that touch the cluster itself. Coordinates are
// returned in layout units with the origin at the top left.
package layout
