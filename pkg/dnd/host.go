package dnd

import (
	"github.com/vango-dev/dragsort/pkg/dom"
	"golang.org/x/net/html"
)

// StyleSource reads resolved styles and live form values of nodes.
type StyleSource interface {
	// StyleProperties lists the computed property names of n.
	StyleProperties(n *html.Node) []string

	// StyleValue returns one computed property. Errors are skipped by
	// CloneStyled.
	StyleValue(n *html.Node, prop string) (string, error)

	// FormValue returns the current value of a form control.
	FormValue(n *html.Node) (string, bool)
}

// Host supplies the layout primitives a drag needs. *layout.Engine
// implements it.
type Host interface {
	StyleSource

	// BoundingBox returns el's box relative to the viewport.
	BoundingBox(el *dom.Element) dom.Rect

	// ScrollOffset returns the current page scroll.
	ScrollOffset() dom.Point
}

// pageBox returns el's box in page coordinates.
func pageBox(h Host, el *dom.Element) dom.Rect {
	return h.BoundingBox(el).Offset(h.ScrollOffset())
}
