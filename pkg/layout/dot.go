package layout

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/mavgraph/pkg/canon"
)

const clusterPrefix = "cluster_"

// ToDOT converts a request to Graphviz DOT. Sizes and spacing are written
// in inches at 72 layout units per inch.
func ToDOT(req *Request) string {
	w := &dotWriter{children: make(map[string][]NodeSpec)}
	known := make(map[string]bool, len(req.Nodes))
	for _, n := range req.Nodes {
		known[n.ID] = true
	}
	var roots []NodeSpec
	for _, n := range req.Nodes {
		if n.Parent == "" || !known[n.Parent] {
			roots = append(roots, n)
			continue
		}
		w.children[n.Parent] = append(w.children[n.Parent], n)
	}

	sp := req.Spacing
	if sp.Direction == "" {
		sp.Direction = TopToBottom
	}
	w.buf.WriteString("digraph G {\n")
	fmt.Fprintf(&w.buf, "  graph [rankdir=%s, compound=true, nodesep=%s, ranksep=%s];\n",
		sp.Direction, inches(sp.NodeSep), inches(sp.RankSep))
	w.buf.WriteString("  node [fixedsize=true, fontsize=8, margin=0];\n")
	for _, n := range roots {
		w.node(n, 1)
	}

	clusters := req.Clusters()
	w.buf.WriteString("\n")
	for _, e := range req.Edges {
		attrs := []string{"id=" + quote(e.ID)}
		if e.Reversed {
			attrs = append(attrs, "dir=back")
		}
		if e.Dummy {
			attrs = append(attrs, "style=invis")
		}
		if clusters[e.From] {
			attrs = append(attrs, "ltail="+quote(clusterPrefix+e.From))
		}
		if clusters[e.To] {
			attrs = append(attrs, "lhead="+quote(clusterPrefix+e.To))
		}
		fmt.Fprintf(&w.buf, "  %s -> %s [%s];\n", quote(e.From), quote(e.To), strings.Join(attrs, ", "))
	}
	w.buf.WriteString("}\n")
	return w.buf.String()
}

type dotWriter struct {
	buf      bytes.Buffer
	children map[string][]NodeSpec
}

func (w *dotWriter) node(n NodeSpec, depth int) {
	indent := strings.Repeat("  ", depth)
	if !n.Cluster {
		fmt.Fprintf(&w.buf, "%s%s [label=%s, shape=%s, width=%s, height=%s];\n",
			indent, quote(n.ID), quote(n.Label), dotShape(n.Shape), inches(n.Width), inches(n.Height))
		return
	}
	fmt.Fprintf(&w.buf, "%ssubgraph %s {\n", indent, quote(clusterPrefix+n.ID))
	fmt.Fprintf(&w.buf, "%s  graph [label=%s, margin=%d];\n", indent, quote(n.Label), canon.ContainerPadding)
	// Anchor for edges that end on the cluster itself.
	fmt.Fprintf(&w.buf, "%s  %s [label=\"\", shape=point, style=invis, width=0.01, height=0.01];\n", indent, quote(n.ID))
	for _, c := range w.children[n.ID] {
		w.node(c, depth+1)
	}
	fmt.Fprintf(&w.buf, "%s}\n", indent)
}

func dotShape(s canon.Shape) string {
	switch s {
	case canon.ShapeCircle:
		return "circle"
	case canon.ShapeDiamond:
		return "diamond"
	}
	return "box"
}

func inches(units float64) string {
	return strconv.FormatFloat(units/72, 'f', 4, 64)
}

var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

func quote(s string) string {
	return `"` + dotEscaper.Replace(s) + `"`
}

// unquote reverses Graphviz quoting, line continuations included.
func unquote(s string) string {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return s
	}
	s = strings.ReplaceAll(s[1:len(s)-1], "\\\n", "")
	return strings.NewReplacer(`\"`, `"`, `\\`, `\`).Replace(s)
}
