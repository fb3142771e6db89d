package canon

import (
	"strconv"

	"github.com/matzehuels/mavgraph/pkg/catalog"
	"github.com/matzehuels/mavgraph/pkg/mav"
)

// Direction is the render direction of an edge relative to its logical
// producer/consumer direction.
type Direction int

const (
	Forward Direction = iota
	Reversed
)

func (d Direction) String() string {
	if d == Reversed {
		return "reversed"
	}
	return "forward"
}

// Arrow is the arrowhead style. ArrowReversed draws the head at the render
// source so the picture still points from producer to consumer.
type Arrow int

const (
	ArrowNormal Arrow = iota
	ArrowReversed
)

func (a Arrow) String() string {
	if a == ArrowReversed {
		return "reversed"
	}
	return "normal"
}

// Orientation is the rendering decision for one logical edge. A self-loop
// keeps Direction Forward and is marked by Arrow ArrowReversed only.
type Orientation struct {
	Direction Direction
	Arrow     Arrow
}

// Orient decides how the logical edge from -> to is rendered. Endpoints
// are canonical raw ids. reverse carries the link's explicit flag.
// bankPort selects the bank/port table instead of the general one.
func Orient(cat *catalog.Catalog, from, to int, reverse, bankPort bool) Orientation {
	src, _ := cat.Get(from)
	dst, _ := cat.Get(to)
	if src == nil || dst == nil {
		return Orientation{}
	}
	if bankPort {
		return orientBankPort(src.Kind, dst.Kind)
	}
	return orientGeneral(src, dst, reverse)
}

// orientBankPort draws ports and arbiters as sources pointing at their
// accessors.
func orientBankPort(src, dst mav.Kind) Orientation {
	switch {
	case dst == mav.KindInstruction && (src == mav.KindArbitration || src == mav.KindPort),
		dst == mav.KindArbitration && src == mav.KindPort:
		return Orientation{Direction: Reversed, Arrow: ArrowNormal}
	}
	return Orientation{}
}

func orientGeneral(src, dst *catalog.Entry, reverse bool) Orientation {
	flipped := Orientation{Direction: Reversed, Arrow: ArrowReversed}
	switch {
	case dst.Kind == mav.KindInstruction && src.Kind.IsMemorySystem():
		return flipped
	case loopsTo(dst, src.ID):
		return flipped
	case dst.Kind == mav.KindInstruction && (src.Kind == mav.KindChannel || src.Kind == mav.KindPipe):
		return flipped
	case src.ID == dst.ID:
		return Orientation{Direction: Forward, Arrow: ArrowReversed}
	case reverse:
		return flipped
	}
	return Orientation{}
}

// loopsTo reports whether e's "Loops To" detail names id.
func loopsTo(e *catalog.Entry, id int) bool {
	v, ok := e.DetailValue("Loops To")
	return ok && v == strconv.Itoa(id)
}
