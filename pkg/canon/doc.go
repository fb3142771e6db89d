// Package canon turns a report catalog into the canonical graph handed to
// the layout collaborator.
//
// A build runs four stages over one immutable [catalog.Context]:
//
//  1. [Dedupe] collapses structurally equivalent channels and instructions
//     into representatives with a multiplicity.
//  2. [Select] retains the nodes relevant to a [Focus]: the whole report,
//     one component, or one memory system with a set of banks.
//  3. [Orient] decides the render direction and arrowhead of every edge
//     from a fixed table of (source kind, destination kind) rules.
//  4. [Build] assembles nodes with size hints, the containment tree and
//     the edges into an immutable [Graph].
//
// Build never fails. Problems with the input are reported as diagnostics
// and the result may be partial or empty.
//
// # Example
//
//	doc, _ := mav.ReadFile("mav.json")
//	g := canon.Build(doc, canon.Options{
//	    Focus: canon.ComponentFocus("k0"),
//	})
//	for _, n := range g.Nodes() {
//	    fmt.Println(n.ID, n.Label, n.Count)
//	}
package canon
