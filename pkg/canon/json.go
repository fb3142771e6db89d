package canon

import (
	"io"

	"github.com/goccy/go-json"

	"github.com/matzehuels/mavgraph/pkg/mav"
)

type nodeJSON struct {
	ID          string  `json:"id"`
	RawID       *int    `json:"raw_id,omitempty"` // nil for synthetic nodes
	Kind        string  `json:"kind"`
	Type        string  `json:"type,omitempty"`
	Name        string  `json:"name,omitempty"`
	Label       string  `json:"label"`
	Shape       Shape   `json:"shape,omitempty"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	Parent      string  `json:"parent,omitempty"`
	Cluster     bool    `json:"cluster,omitempty"`
	Synthetic   bool    `json:"synthetic,omitempty"`
	Global      bool    `json:"global,omitempty"`
	Count       int     `json:"count,omitempty"`
	Represented []int   `json:"represented,omitempty"`
}

type edgeJSON struct {
	ID        string `json:"id"`
	From      string `json:"from"`
	To        string `json:"to"`
	Direction string `json:"direction"`
	Arrow     string `json:"arrow"`
	Links     []int  `json:"links,omitempty"`
	Dummy     bool   `json:"dummy,omitempty"`
}

type diagnosticJSON struct {
	Severity string `json:"severity"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Node     *int   `json:"node,omitempty"`
}

type graphJSON struct {
	Focus       string           `json:"focus"`
	Nodes       []nodeJSON       `json:"nodes"`
	Edges       []edgeJSON       `json:"edges"`
	Diagnostics []diagnosticJSON `json:"diagnostics,omitempty"`
}

// MarshalJSON encodes the graph for the viewer: nodes parents first, edges
// with logical endpoints, and the build diagnostics.
func (g *Graph) MarshalJSON() ([]byte, error) {
	out := graphJSON{Focus: g.focus.String(), Nodes: []nodeJSON{}, Edges: []edgeJSON{}}
	for _, n := range g.nodes {
		kind := n.Kind.String()
		if n.Synthetic && n.Kind == mav.KindUnknown {
			kind = n.ID
		}
		var raw *int
		if n.RawID >= 0 {
			id := n.RawID
			raw = &id
		}
		out.Nodes = append(out.Nodes, nodeJSON{
			ID: n.ID, RawID: raw, Kind: kind, Type: n.Type, Name: n.Name,
			Label: n.Label, Shape: n.Shape, Width: n.Width, Height: n.Height,
			Parent: n.Parent, Cluster: n.Cluster, Synthetic: n.Synthetic, Global: n.Global,
			Count: n.Count, Represented: n.Represented,
		})
	}
	for _, e := range g.edges {
		out.Edges = append(out.Edges, edgeJSON{
			ID: e.ID, From: e.LogicalFrom, To: e.LogicalTo,
			Direction: e.Direction.String(), Arrow: e.Arrow.String(),
			Links: e.Links, Dummy: e.Dummy,
		})
	}
	for _, d := range g.Diagnostics() {
		dj := diagnosticJSON{Severity: d.Severity.String(), Code: string(d.Code), Message: d.Message}
		if d.HasNode {
			id := d.NodeID
			dj.Node = &id
		}
		out.Diagnostics = append(out.Diagnostics, dj)
	}
	return json.Marshal(out)
}

// WriteJSON writes the indented JSON encoding of g to w.
func WriteJSON(w io.Writer, g *Graph) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(g)
}
