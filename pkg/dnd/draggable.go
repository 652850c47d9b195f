package dnd

import (
	"log/slog"
	"strconv"

	"github.com/vango-dev/dragsort/pkg/dom"
)

// Options configures a Draggable. Options are copied by New.
type Options struct {
	// Element is the node made draggable. It must be inside one of the
	// containers.
	Element *dom.Element

	// Anchor starts a drag when pressed. Defaults to Element.
	Anchor *dom.Element

	// Containers are the drop regions, in priority order. Defaults to the
	// element's parent.
	Containers []*dom.Element

	// Placeholder marks the prospective drop slot while dragging.
	Placeholder *dom.Element

	// PlaceholderMarkup is parsed when Placeholder is nil; its first
	// element becomes the placeholder.
	PlaceholderMarkup string

	// DraggingClass is added to the proxy.
	DraggingClass string

	// HoveringClass is added to the container under the pointer.
	HoveringClass string

	// Host provides bounding boxes, scroll and computed styles.
	Host Host

	Logger *slog.Logger
}

// Draggable is the drag session of one element. It is idle until its
// anchor is pressed and returns to idle on release; it stays reusable
// until unbound.
//
// A Draggable is not safe for concurrent use. Events for its document must
// be dispatched from a single goroutine.
type Draggable struct {
	doc           *dom.Document
	element       *dom.Element
	anchor        *dom.Element
	containers    []*dom.Element
	placeholder   *dom.Element
	draggingClass string
	hoveringClass string
	host          Host
	logger        *slog.Logger

	bound     bool
	anchorL   []*dom.Listener
	documentL []*dom.Listener

	anchorCursor savedStyle

	// Drag state. proxy != nil iff dragging.
	dragging     bool
	proxy        *dom.Element
	offset       dom.Point
	pointer      dom.Point
	slot         *Slot
	hovered      *dom.Element
	display      savedStyle
	bodyCursor   savedStyle
	originParent *dom.Element
	originIndex  int
}

// savedStyle remembers one inline style property for restoration.
type savedStyle struct {
	value string
	set   bool
}

func saveStyle(el *dom.Element, prop string) savedStyle {
	if el == nil || !el.HasStyle(prop) {
		return savedStyle{}
	}
	return savedStyle{value: el.Style(prop), set: true}
}

func (s savedStyle) restore(el *dom.Element, prop string) {
	if el == nil || saveStyle(el, prop) == s {
		return
	}
	if s.set {
		el.SetStyle(prop, s.value)
		return
	}
	el.RemoveStyle(prop)
}

// New validates opts and returns a bound Draggable.
func New(opts Options) (*Draggable, error) {
	d, err := newDraggable(opts)
	if err != nil {
		return nil, err
	}
	d.Bind()
	return d, nil
}

func newDraggable(opts Options) (*Draggable, error) {
	el := opts.Element
	if el == nil {
		return nil, configError("E200", "element is nil")
	}
	if !el.IsConnected() {
		return nil, configError("E200", "element %s is not attached to the document", el)
	}
	doc := el.Document()

	anchor := opts.Anchor
	if anchor == nil {
		anchor = el
	}
	if anchor.Document() != doc {
		return nil, configError("E208", "anchor %s belongs to another document", anchor)
	}
	if !anchor.IsConnected() {
		return nil, configError("E201", "anchor %s is not attached to the document", anchor)
	}

	containers := opts.Containers
	if len(containers) == 0 {
		if p := el.Parent(); p != nil {
			containers = []*dom.Element{p}
		}
	}
	if len(containers) == 0 {
		return nil, configError("E205", "element %s has no parent element", el)
	}
	containers = append([]*dom.Element(nil), containers...)
	for i, c := range containers {
		if c == nil {
			return nil, configError("E202", "container %d is nil", i)
		}
		if c.Document() != doc {
			return nil, configError("E208", "container %s belongs to another document", c)
		}
		if !c.IsConnected() {
			return nil, configError("E202", "container %s is not attached to the document", c)
		}
	}

	inside := false
	for _, c := range containers {
		if c.Contains(el) {
			inside = true
			break
		}
	}
	if !inside {
		return nil, configError("E203", "element %s is not inside any of %d containers", el, len(containers))
	}
	if !el.Contains(anchor) {
		return nil, configError("E204", "anchor %s is not inside element %s", anchor, el)
	}

	if opts.Host == nil {
		return nil, configError("E207", "no host for element %s", el)
	}

	placeholder, err := resolvePlaceholder(doc, opts.Placeholder, opts.PlaceholderMarkup)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Draggable{
		doc:           doc,
		element:       el,
		anchor:        anchor,
		containers:    containers,
		placeholder:   placeholder,
		draggingClass: opts.DraggingClass,
		hoveringClass: opts.HoveringClass,
		host:          opts.Host,
		logger:        logger.With("component", "dnd", "element", el.String()),
		anchorCursor:  saveStyle(anchor, "cursor"),
		originIndex:   -1,
	}, nil
}

func resolvePlaceholder(doc *dom.Document, el *dom.Element, markup string) (*dom.Element, error) {
	if el != nil {
		if el.Document() != doc {
			return nil, configError("E208", "placeholder %s belongs to another document", el)
		}
		return el, nil
	}
	if markup == "" {
		return nil, nil
	}
	elems, err := doc.ParseFragment(markup)
	if err != nil {
		return nil, configError("E210", "%v", err)
	}
	if len(elems) == 0 {
		return nil, nil
	}
	return elems[0], nil
}

// Bind attaches the session's listeners. Binding a bound session is a
// no-op.
func (d *Draggable) Bind() {
	if d.bound {
		return
	}
	d.anchorL = []*dom.Listener{
		d.anchor.AddEventListener(dom.EventMouseDown, d.onPress),
		d.anchor.AddEventListener(dom.EventMouseOver, d.onAnchorOver),
		d.anchor.AddEventListener(dom.EventMouseOut, d.onAnchorOut),
	}
	d.documentL = []*dom.Listener{
		d.doc.AddEventListener(dom.EventMouseMove, d.onMove),
		d.doc.AddEventListener(dom.EventMouseUp, d.onRelease),
	}
	d.bound = true
}

// Unbind releases any drag in progress, restoring the document to its idle
// state, and then detaches every listener. Unbinding an unbound session is
// a no-op apart from that release.
func (d *Draggable) Unbind() {
	d.release()
	for _, l := range d.anchorL {
		d.anchor.RemoveEventListener(l)
	}
	for _, l := range d.documentL {
		d.doc.RemoveEventListener(l)
	}
	d.anchorL, d.documentL = nil, nil
	d.bound = false
}

// Destroy is Unbind.
func (d *Draggable) Destroy() {
	d.Unbind()
}

// IsBound reports whether the session's listeners are attached.
func (d *Draggable) IsBound() bool { return d.bound }

// IsDragging reports whether a drag is in progress.
func (d *Draggable) IsDragging() bool { return d.dragging }

// Element returns the draggable element.
func (d *Draggable) Element() *dom.Element { return d.element }

// Anchor returns the element that starts a drag.
func (d *Draggable) Anchor() *dom.Element { return d.anchor }

// Containers returns a copy of the drop regions.
func (d *Draggable) Containers() []*dom.Element {
	return append([]*dom.Element(nil), d.containers...)
}

// Placeholder returns the slot marker, or nil.
func (d *Draggable) Placeholder() *dom.Element { return d.placeholder }

// Proxy returns the clone following the pointer, nil when idle.
func (d *Draggable) Proxy() *dom.Element { return d.proxy }

// Slot returns the current drop target, nil when a release would cancel.
func (d *Draggable) Slot() *Slot { return d.slot }

// Hovered returns the container under the pointer during a drag.
func (d *Draggable) Hovered() *dom.Element { return d.hovered }

// Pointer returns the last pointer position seen during the drag.
func (d *Draggable) Pointer() dom.Point { return d.pointer }

func (d *Draggable) onAnchorOver(*dom.Event) {
	if d.dragging {
		return
	}
	d.anchor.SetStyle("cursor", CursorGrab)
}

func (d *Draggable) onAnchorOut(*dom.Event) {
	if d.dragging {
		return
	}
	d.anchorCursor.restore(d.anchor, "cursor")
}

func (d *Draggable) onPress(ev *dom.Event) {
	if d.dragging || ev.Button != dom.ButtonPrimary {
		return
	}
	ev.PreventDefault()

	box := pageBox(d.host, d.element)
	d.pointer = ev.Page()
	d.offset = d.pointer.Sub(dom.Point{X: box.X, Y: box.Y})
	d.originParent = d.element.Parent()
	d.originIndex = d.element.Index()

	d.proxy = d.makeProxy(box)
	d.dragging = true

	d.display = saveStyle(d.element, "display")
	d.element.SetStyle("display", "none")

	body := d.doc.Body()
	d.bodyCursor = saveStyle(body, "cursor")
	if body != nil {
		body.SetStyle("cursor", CursorGrabbing)
	}

	d.logger.Debug("drag started", "x", d.pointer.X, "y", d.pointer.Y)
	d.element.Dispatch(dom.NewCustomEvent(EventStarted, d))
}

func (d *Draggable) makeProxy(box dom.Rect) *dom.Element {
	n := cloneNode(d.element.Node(), d.host, func(prop string, err error) {
		d.logger.Debug("style not copied", "property", prop, "error", err)
	})
	proxy := d.doc.Wrap(n)
	proxy.SetStyle("position", "absolute")
	proxy.SetStyle("top", px(box.Y))
	proxy.SetStyle("left", px(box.X))
	proxy.AddClass(d.draggingClass)
	if body := d.doc.Body(); body != nil {
		if err := body.AppendChild(proxy); err != nil {
			d.logger.Warn("proxy not attached", "error", err)
		}
	}
	return proxy
}

func (d *Draggable) onMove(ev *dom.Event) {
	if !d.dragging {
		return
	}

	d.pointer = ev.Page()
	at := d.pointer.Sub(d.offset)
	d.proxy.SetStyle("top", px(at.Y))
	d.proxy.SetStyle("left", px(at.X))

	d.slot = ResolveSlot(d.pointer, d.containers, d.host, d.isTransient)

	var next *dom.Element
	if d.slot != nil {
		next = d.slot.Container
	}
	if next != d.hovered {
		if d.hovered != nil {
			d.hovered.RemoveClass(d.hoveringClass)
		}
		if next != nil {
			next.AddClass(d.hoveringClass)
		}
		d.hovered = next
	}

	if d.placeholder != nil {
		if d.slot == nil {
			d.placeholder.Remove()
		} else if err := d.slot.Insert(d.placeholder); err != nil {
			d.logger.Warn("placeholder not moved", "error", err)
		}
	}

	d.element.Dispatch(dom.NewCustomEvent(EventDragging, d))
}

// isTransient reports whether el is one of the session's own nodes, which
// never count as drop candidates.
func (d *Draggable) isTransient(el *dom.Element) bool {
	return el == d.element || el == d.proxy || (d.placeholder != nil && el == d.placeholder)
}

func (d *Draggable) onRelease(*dom.Event) {
	d.release()
}

// release ends a drag. It is safe to call when idle: the DOM is reset to
// the idle baseline and no signal is sent.
func (d *Draggable) release() {
	wasDragging := d.dragging
	slot := d.slot

	d.dragging = false
	if d.proxy != nil {
		d.proxy.Discard()
		d.proxy = nil
	}
	d.offset = dom.Point{}
	d.slot = nil

	moved := false
	if slot != nil {
		if d.placeholder != nil {
			d.placeholder.Remove()
		}
		if err := slot.Insert(d.element); err != nil {
			d.logger.Warn("drop failed", "error", err)
		} else {
			moved = d.element.Parent() != d.originParent || d.element.Index() != d.originIndex
		}
	} else if d.placeholder != nil && wasDragging {
		d.placeholder.Remove()
	}

	if d.hovered != nil {
		d.hovered.RemoveClass(d.hoveringClass)
		d.hovered = nil
	}

	if wasDragging {
		d.bodyCursor.restore(d.doc.Body(), "cursor")
		d.display.restore(d.element, "display")
	}
	d.anchorCursor.restore(d.anchor, "cursor")
	d.originParent, d.originIndex = nil, -1

	if !wasDragging {
		return
	}
	if moved {
		d.logger.Debug("drag completed", "container", slot.Container.String(), "index", d.element.Index())
		d.element.Dispatch(dom.NewCustomEvent(EventCompleted, d))
		return
	}
	d.logger.Debug("drag canceled")
	d.element.Dispatch(dom.NewCustomEvent(EventCanceled, d))
}

func px(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}
