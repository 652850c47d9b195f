package dom

import "golang.org/x/net/html"

// Mouse event types delivered by hosts.
const (
	EventMouseDown = "mousedown"
	EventMouseMove = "mousemove"
	EventMouseUp   = "mouseup"
	EventMouseOver = "mouseover"
	EventMouseOut  = "mouseout"
)

// Mouse buttons, as in MouseEvent.button.
const (
	ButtonPrimary   = 0
	ButtonAuxiliary = 1
	ButtonSecondary = 2
)

// Event is a notification dispatched through the document.
type Event struct {
	Type string

	// Target is the element the event was dispatched on, nil for events
	// dispatched on the document itself.
	Target *Element

	// CurrentTarget is the element whose listener is running, nil while
	// document listeners run.
	CurrentTarget *Element

	// PageX and PageY are the pointer position relative to the document.
	PageX float64
	PageY float64

	Button  int
	Bubbles bool

	// Detail carries the payload of custom events.
	Detail any

	defaultPrevented bool
	stopped          bool
}

// NewMouseEvent creates a bubbling mouse event at a page position.
func NewMouseEvent(typ string, pageX, pageY float64, button int) *Event {
	return &Event{
		Type:    typ,
		PageX:   pageX,
		PageY:   pageY,
		Button:  button,
		Bubbles: true,
	}
}

// NewCustomEvent creates a bubbling event carrying detail.
func NewCustomEvent(typ string, detail any) *Event {
	return &Event{Type: typ, Bubbles: true, Detail: detail}
}

// Page returns the pointer position.
func (ev *Event) Page() Point {
	return Point{X: ev.PageX, Y: ev.PageY}
}

// PreventDefault marks the event's default action as canceled.
func (ev *Event) PreventDefault() {
	ev.defaultPrevented = true
}

// DefaultPrevented reports whether PreventDefault was called.
func (ev *Event) DefaultPrevented() bool {
	return ev.defaultPrevented
}

// StopPropagation stops the event after the current target's listeners.
func (ev *Event) StopPropagation() {
	ev.stopped = true
}

// ListenerFunc handles an event.
type ListenerFunc func(ev *Event)

// Listener is a registered event handler. Keep the handle to remove it.
type Listener struct {
	Type    string
	fn      ListenerFunc
	removed bool
}

// AddEventListener registers fn for events of typ dispatched on e or
// bubbling through it.
func (e *Element) AddEventListener(typ string, fn ListenerFunc) *Listener {
	l := &Listener{Type: typ, fn: fn}
	e.doc.listeners[e.node] = append(e.doc.listeners[e.node], l)
	return l
}

// RemoveEventListener removes a listener added to e. Unknown or already
// removed handles are ignored.
func (e *Element) RemoveEventListener(l *Listener) {
	if l == nil {
		return
	}
	list := removeListener(e.doc.listeners[e.node], l)
	if len(list) == 0 {
		delete(e.doc.listeners, e.node)
		return
	}
	e.doc.listeners[e.node] = list
}

// AddEventListener registers fn on the document. It receives events
// dispatched on the document and bubbling events from attached elements.
func (d *Document) AddEventListener(typ string, fn ListenerFunc) *Listener {
	l := &Listener{Type: typ, fn: fn}
	d.docListeners = append(d.docListeners, l)
	return l
}

// RemoveEventListener removes a document listener.
func (d *Document) RemoveEventListener(l *Listener) {
	if l == nil {
		return
	}
	d.docListeners = removeListener(d.docListeners, l)
}

func removeListener(list []*Listener, l *Listener) []*Listener {
	for i, cur := range list {
		if cur == l {
			l.removed = true
			return append(list[:i:i], list[i+1:]...)
		}
	}
	return list
}

// Dispatch delivers ev to e and, if it bubbles, to e's ancestors and the
// document. It returns false if a listener called PreventDefault.
func (e *Element) Dispatch(ev *Event) bool {
	ev.Target = e
	d := e.doc

	path := []*html.Node{e.node}
	top := e.node
	for n := e.node.Parent; n != nil; n = n.Parent {
		top = n
		if n.Type == html.ElementNode {
			path = append(path, n)
		}
	}

	for i, n := range path {
		if i > 0 && !ev.Bubbles {
			break
		}
		ev.CurrentTarget = d.Wrap(n)
		invoke(d.listeners[n], ev)
		if ev.stopped {
			ev.CurrentTarget = nil
			return !ev.defaultPrevented
		}
	}

	ev.CurrentTarget = nil
	if ev.Bubbles && top == d.root {
		invoke(d.docListeners, ev)
	}
	return !ev.defaultPrevented
}

// Dispatch delivers ev to document listeners only.
func (d *Document) Dispatch(ev *Event) bool {
	ev.Target = nil
	ev.CurrentTarget = nil
	invoke(d.docListeners, ev)
	return !ev.defaultPrevented
}

// invoke runs the listeners registered for ev.Type. The list is snapshotted
// so listeners may add or remove listeners while running; removed ones are
// skipped.
func invoke(list []*Listener, ev *Event) {
	if len(list) == 0 {
		return
	}
	snapshot := make([]*Listener, len(list))
	copy(snapshot, list)
	for _, l := range snapshot {
		if l.removed || l.Type != ev.Type {
			continue
		}
		l.fn(ev)
	}
}
