// Package dnd makes document elements draggable between container regions.
//
// A Draggable owns the interaction for one element: pressing its anchor
// starts a drag, a styled clone (the proxy) follows the pointer, the slot
// under the pointer is recomputed on every move, and releasing splices the
// element into that slot or leaves it where it was.
//
//	d, err := dnd.New(dnd.Options{
//	    Element:       card,
//	    Anchor:        handle,
//	    Containers:    columns,
//	    DraggingClass: "is-dragging",
//	    HoveringClass: "is-hovered",
//	    Host:          layout.New(doc),
//	})
//
// # Signals
//
// Sessions dispatch bubbling events on their element, each with the
// *Draggable as Detail:
//
//   - drag-started: the anchor was pressed
//   - drag-dragging: the pointer moved during a drag
//   - drag-completed: the drag ended and the element changed position
//   - drag-canceled: the drag ended without a position change
//
// # Slots
//
// The pointer selects the first configured container whose box contains
// it. Inside that container the element child whose center is nearest the
// pointer becomes the reference; the element is inserted before it when the
// pointer is above the center and after it when below, with the x axis
// deciding only on an exact vertical tie. An empty container takes the
// element as its first child.
//
// A Group builds one Draggable per matched element and shares the
// container set, placeholder and class names across them.
package dnd
