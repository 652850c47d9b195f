package dnd

import (
	"math"

	"github.com/vango-dev/dragsort/pkg/dom"
)

// Slot is an insertion point: Position relative to Reference, inside
// Container. An empty container yields Reference == Container and
// Position == dom.AfterBegin.
type Slot struct {
	Container *dom.Element
	Reference *dom.Element
	Position  dom.Position
}

// Insert moves el into the slot.
func (s *Slot) Insert(el *dom.Element) error {
	return s.Reference.InsertAdjacent(s.Position, el)
}

// Equal reports whether s and o name the same insertion point.
func (s *Slot) Equal(o *Slot) bool {
	if s == nil || o == nil {
		return s == o
	}
	return *s == *o
}

// ResolveSlot returns the slot indicated by a page-coordinate pointer, or
// nil when the pointer is outside every container. The first container in
// order whose box contains the pointer wins. Children for which skip
// returns true are not candidates.
func ResolveSlot(pointer dom.Point, containers []*dom.Element, host Host, skip func(*dom.Element) bool) *Slot {
	var container *dom.Element
	for _, c := range containers {
		if pageBox(host, c).Contains(pointer) {
			container = c
			break
		}
	}
	if container == nil {
		return nil
	}

	var (
		nearest *dom.Element
		center  dom.Point
		best    = math.Inf(1)
	)
	for _, child := range container.Children() {
		if skip != nil && skip(child) {
			continue
		}
		c := pageBox(host, child).Center()
		if d := pointer.DistanceTo(c); d < best {
			nearest, center, best = child, c, d
		}
	}
	if nearest == nil {
		return &Slot{Container: container, Reference: container, Position: dom.AfterBegin}
	}

	pos := dom.BeforeBegin
	switch {
	case pointer.Y > center.Y:
		pos = dom.AfterEnd
	case pointer.Y == center.Y && pointer.X > center.X:
		pos = dom.AfterEnd
	}
	return &Slot{Container: container, Reference: nearest, Position: pos}
}
