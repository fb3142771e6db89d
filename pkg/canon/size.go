package canon

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/matzehuels/mavgraph/pkg/catalog"
	"github.com/matzehuels/mavgraph/pkg/mav"
)

// Shape is the outline a node is drawn with.
type Shape string

const (
	ShapeRect    Shape = "rect"
	ShapeCircle  Shape = "circle"
	ShapeDiamond Shape = "diamond"
)

// Size hints in layout units.
const (
	NodeWidth        = 20
	NodeHeight       = 5
	PortRadius       = 2
	ContainerPadding = 15
	CopiesWidth      = 125
	CopiesHeight     = 250

	maxChannelLabel = 13
)

// sizeHint is the label, outline and extent of a node.
type sizeHint struct {
	label         string
	shape         Shape
	width, height float64
}

var firstNumber = regexp.MustCompile(`\d+`)

// instructionLabel abbreviates memory access instructions.
func instructionLabel(name string) string {
	switch {
	case strings.Contains(name, "Load"):
		return "LD"
	case strings.Contains(name, "Store"):
		return "ST"
	case strings.Contains(name, "Read"):
		return "RD"
	case strings.Contains(name, "Write"):
		return "WR"
	}
	return name
}

// shortenName turns long names into the form "abcde...vwxyz".
func shortenName(name string) string {
	r := []rune(name)
	if len(r) <= maxChannelLabel {
		return name
	}
	return string(r[:5]) + "..." + string(r[len(r)-5:])
}

func withCount(label string, count int) string {
	if count > 1 {
		return fmt.Sprintf("%s (x%d)", label, count)
	}
	return label
}

// memorySystemLabel appends the bank count and the replication factor.
func memorySystemLabel(e *catalog.Entry) string {
	label := e.Name
	if v, ok := e.DetailValue("Number of banks"); ok {
		if n := firstNumber.FindString(v); n != "" {
			label += " [" + n + "]"
		}
	}
	if v, ok := e.DetailValue("Total replication"); ok {
		if n := firstNumber.FindString(v); n != "" {
			if r, err := strconv.Atoi(n); err == nil && r > 1 {
				label += " (x" + n + ")"
			}
		}
	}
	return label
}

// sizeFor computes the hint of a catalog node. cluster is true when the
// node contains other retained nodes. diamondPorts selects the replicate
// view port outline.
func sizeFor(e *catalog.Entry, count int, cluster, diamondPorts bool) sizeHint {
	switch e.Kind {
	case mav.KindInstruction:
		shape := ShapeCircle
		if e.Name == "end" || e.Name == "loop end" {
			shape = ShapeDiamond
		}
		return sizeHint{label: withCount(instructionLabel(e.Name), count), shape: shape, width: 1, height: 1}

	case mav.KindChannel, mav.KindPipe, mav.KindStream, mav.KindInterface:
		label := withCount(shortenName(e.Name), count)
		return sizeHint{label: label, shape: ShapeRect, width: float64(utf8.RuneCountInString(label)*4 + 2), height: NodeHeight}

	case mav.KindMemSys, mav.KindROMSys:
		label := memorySystemLabel(e)
		padding := 2
		if utf8.RuneCountInString(label) < 8 {
			padding = 10
		}
		return sizeHint{label: label, shape: ShapeRect, width: float64(utf8.RuneCountInString(label)*5 + padding), height: NodeHeight}

	case mav.KindPort:
		shape := ShapeCircle
		if diamondPorts {
			shape = ShapeDiamond
		}
		return sizeHint{label: e.Name, shape: shape, width: PortRadius, height: PortRadius}

	case mav.KindBasicBlock:
		if !cluster {
			return sizeHint{label: e.Name, shape: ShapeRect, width: float64(utf8.RuneCountInString(e.Name)*5 + 2), height: NodeHeight}
		}

	case mav.KindKernel, mav.KindComponent, mav.KindTask:
		if cluster {
			return sizeHint{label: e.Type + " " + e.Name, shape: ShapeRect, width: NodeWidth, height: NodeHeight}
		}
	}
	return sizeHint{label: e.Name, shape: ShapeRect, width: NodeWidth, height: NodeHeight}
}
