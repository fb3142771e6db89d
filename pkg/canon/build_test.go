package canon

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/mavgraph/pkg/catalog"
	"github.com/matzehuels/mavgraph/pkg/errors"
	"github.com/matzehuels/mavgraph/pkg/mav"
)

func TestBuildWholeGraph(t *testing.T) {
	g := Build(kernelReport(), DefaultOptions(WholeGraph()))

	require.Equal(t, []string{RootContainer, RootGlobalMemory}, g.Roots())

	tests := []struct {
		id      string
		label   string
		parent  string
		cluster bool
		shape   Shape
		width   float64
	}{
		{"_1", "kernel k0", RootContainer, true, ShapeRect, NodeWidth},
		{"_2", "Local Memory", "_1", true, ShapeRect, NodeWidth},
		{"_3", "buf [2] (x4)", "_2", false, ShapeRect, 12*5 + 2},
		{"_4", "k0.B1", "_1", true, ShapeRect, NodeWidth},
		{"_5", "LD (x3)", "_4", false, ShapeCircle, 1},
		{"_8", "ST", "_4", false, ShapeCircle, 1},
		{"_9", "WR", "_4", false, ShapeCircle, 1},
		{"_20", "Global Memory", RootGlobalMemory, true, ShapeRect, NodeWidth},
		{"_21", "DDR", "_20", false, ShapeRect, 3*5 + 10},
		{"_30", "c0", RootContainer, false, ShapeRect, 2*4 + 2},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			n, ok := g.Node(tt.id)
			require.True(t, ok)
			require.Equal(t, tt.label, n.Label)
			require.Equal(t, tt.parent, n.Parent)
			require.Equal(t, tt.cluster, n.Cluster)
			require.Equal(t, tt.shape, n.Shape)
			require.Equal(t, tt.width, n.Width)
		})
	}

	_, ok := g.Node("_6")
	require.False(t, ok, "merged copy must not be a node")

	// Parents come before their children.
	seen := map[string]bool{"": true}
	for _, n := range g.Nodes() {
		require.True(t, seen[n.Parent], "%s listed before its parent %s", n.ID, n.Parent)
		seen[n.ID] = true
	}
}

func TestBuildEdgesNeverDangle(t *testing.T) {
	for _, focus := range []Focus{WholeGraph(), ComponentFocus("k0"), ComponentFocus("k1"), BankFocus("k0", "buf")} {
		g := Build(kernelReport(), Options{Focus: focus})
		for _, e := range g.Edges() {
			_, okFrom := g.Node(e.RenderFrom)
			_, okTo := g.Node(e.RenderTo)
			require.True(t, okFrom && okTo, "%s: edge %s dangles", focus.Mode, e.ID)
		}
	}
}

func TestBuildComponentFocus(t *testing.T) {
	g := Build(kernelReport(), Options{Focus: ComponentFocus("k0")})
	_, ok := g.Node("_12")
	require.False(t, ok, "reader in k1 is out of focus")
	_, ok = g.Edge("_30->_12")
	require.False(t, ok, "edge to a dropped node must be pruned")
	e, ok := g.Edge("_9->_30")
	require.True(t, ok)
	require.Equal(t, Forward, e.Direction)
}

func TestBuildReplicateView(t *testing.T) {
	doc := bankReport(link(6, 30), link(30, 21), link(30, 22))
	doc.Nodes[0].Children[0].Children[0].Children[0].Children[0].Copies = &mav.Copies{
		Num:     4,
		Details: []mav.Record{mav.NewRecord("Copies", "4")},
	}
	g := Build(doc, Options{Focus: ReplicateFocus("k0", "M", "B0")})

	_, ok := g.Node("_3")
	require.False(t, ok, "memory system is not drawn in the replicate view")

	copies, ok := g.Node("_5_copies")
	require.True(t, ok)
	require.Equal(t, "_5", copies.Parent)
	require.Equal(t, "4 copies", copies.Label)
	require.Equal(t, float64(CopiesWidth), copies.Width)
	require.Equal(t, float64(CopiesHeight), copies.Height)

	port, _ := g.Node("_6")
	require.Equal(t, ShapeDiamond, port.Shape)
	require.Equal(t, "_5", port.Parent)

	var dummies []string
	for _, e := range g.Edges() {
		if e.Dummy {
			dummies = append(dummies, e.ID)
		}
	}
	require.Equal(t, []string{"_6->_5_copies", "_7->_5_copies"}, dummies)

	clean := g.WithoutDummies()
	require.Equal(t, g.EdgeCount()-2, clean.EdgeCount())
	_, ok = clean.Node("_5_copies")
	require.True(t, ok, "copies node survives dummy removal")

	d, ok := g.Describe("_5_copies")
	require.True(t, ok)
	require.Equal(t, "4", d.Records[0].Value("Copies"))

	arbToInst, ok := g.Edge("_30->_21")
	require.True(t, ok)
	require.Equal(t, "_21", arbToInst.RenderFrom)
	require.Equal(t, ArrowNormal, arbToInst.Arrow)
}

func TestBuildDuplicateIDYieldsEmptyGraph(t *testing.T) {
	var buf bytes.Buffer
	doc := &mav.Document{Nodes: []mav.RawNode{node(1, "kernel", "k0"), node(1, "kernel", "k1")}}
	g := Build(doc, Options{Logger: log.New(&buf)})

	require.True(t, g.Empty())
	diags := g.Diagnostics()
	require.Len(t, diags, 1)
	require.Equal(t, errors.ErrCodeDuplicateID, diags[0].Code)
	require.True(t, strings.Contains(buf.String(), "appears more than once"))
}

func TestBuildMissingFocusIsEmpty(t *testing.T) {
	g := Build(kernelReport(), Options{Focus: ComponentFocus("nope")})
	require.True(t, g.Empty())
	require.Empty(t, g.Edges())
	require.Empty(t, g.Diagnostics())
}

func TestBuildNilDocument(t *testing.T) {
	g := Build(nil, Options{})
	require.True(t, g.Empty())
	require.Equal(t, errors.ErrCodeInvalidInput, g.Diagnostics()[0].Code)
}

func TestDescribe(t *testing.T) {
	doc := kernelReport()
	doc.Nodes[0].Children[1].Children[0].Details[0] = mav.NewRecord("type", "table", "Width", "32 bits", "Reference", "a", "Loops To", "4")
	doc.Links[0].Details = []mav.Record{mav.NewRecord("Latency", "3")}
	g := Build(doc, Options{Instructions: MergeNever})

	d, ok := g.Describe("_5")
	require.True(t, ok)
	require.True(t, d.HasLocation)
	require.Equal(t, mav.Location{Filename: "gemm.cpp", Line: 12}, d.Location)
	require.Len(t, d.Records[0].Fields, 4)
	var shown []string
	for _, f := range d.Shown[0].Fields {
		shown = append(shown, f.Key)
	}
	require.Equal(t, []string{"Width", "Reference"}, shown)

	e, ok := g.Describe("_3->_5")
	require.True(t, ok)
	require.Equal(t, "3", e.Records[0].Value("Latency"))
	require.False(t, e.HasLocation)

	_, ok = g.Describe("_404")
	require.False(t, ok)
}

func TestSizeHints(t *testing.T) {
	tests := []struct {
		typ    string
		name   string
		count  int
		want   string
		width  float64
		height float64
	}{
		{"inst", "Store", 1, "ST", 1, 1},
		{"inst", "Channel Read", 5, "RD (x5)", 1, 1},
		{"inst", "Call", 1, "Call", 1, 1},
		{"channel", "a_very_long_channel_name", 1, "a_ver..._name", 13*4 + 2, NodeHeight},
		{"pipe", "a_very_long_channel_name", 2, "a_ver..._name (x2)", 18*4 + 2, NodeHeight},
		{"stream", "exactly_13_ch", 1, "exactly_13_ch", 13*4 + 2, NodeHeight},
		{"interface", "arg0", 1, "arg0", 4*4 + 2, NodeHeight},
		{"bb", "k0.B3", 1, "k0.B3", 5*5 + 2, NodeHeight},
		{"channel", "größe_kanal", 1, "größe_kanal", 11*4 + 2, NodeHeight},
		{"bb", "k0.Bö", 1, "k0.Bö", 5*5 + 2, NodeHeight},
		{"port", "R", 1, "R", PortRadius, PortRadius},
		{"mystery", "odd", 1, "odd", NodeWidth, NodeHeight},
	}
	for _, tt := range tests {
		t.Run(tt.typ+"/"+tt.name, func(t *testing.T) {
			k, _ := mav.ParseKind(tt.typ)
			h := sizeFor(&catalog.Entry{Kind: k, Type: tt.typ, Name: tt.name}, tt.count, false, false)
			require.Equal(t, tt.want, h.label)
			require.Equal(t, tt.width, h.width)
			require.Equal(t, tt.height, h.height)
		})
	}

	end := sizeFor(&catalog.Entry{Kind: mav.KindInstruction, Name: "loop end"}, 1, false, false)
	require.Equal(t, ShapeDiamond, end.shape)

	rom := sizeFor(&catalog.Entry{Kind: mav.KindROMSys, Name: "lut", Details: []mav.Record{
		mav.NewRecord("Number of banks", "1 (banked on bit 0)", "Total replication", "1"),
	}}, 1, false, false)
	require.Equal(t, "lut [1]", rom.label)
	require.Equal(t, float64(7*5+10), rom.width)
}
