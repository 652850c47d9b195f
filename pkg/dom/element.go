package dom

import (
	"bytes"
	"errors"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Tree mutation errors.
var (
	ErrNoParent       = errors.New("dom: reference element has no parent")
	ErrHierarchy      = errors.New("dom: cannot insert an element into its own subtree")
	ErrForeignElement = errors.New("dom: element belongs to another document")
)

// Position names an insertion point relative to an element, as in
// insertAdjacentElement.
type Position uint8

const (
	BeforeBegin Position = iota // before the element, as its previous sibling
	AfterBegin                  // inside the element, as its first child
	BeforeEnd                   // inside the element, as its last child
	AfterEnd                    // after the element, as its next sibling
)

// String returns the insertAdjacentElement keyword for the position.
func (p Position) String() string {
	switch p {
	case BeforeBegin:
		return "beforebegin"
	case AfterBegin:
		return "afterbegin"
	case BeforeEnd:
		return "beforeend"
	case AfterEnd:
		return "afterend"
	default:
		return "unknown"
	}
}

// Element is a handle to an element node of a Document.
type Element struct {
	node *html.Node
	doc  *Document
}

// Node returns the underlying html node. Mutating it directly bypasses
// Document.Version.
func (e *Element) Node() *html.Node {
	return e.node
}

// Document returns the owning document.
func (e *Element) Document() *Document {
	return e.doc
}

// TagName returns the lower-case tag name.
func (e *Element) TagName() string {
	return e.node.Data
}

// ID returns the id attribute, or "".
func (e *Element) ID() string {
	v, _ := attr(e.node, "id")
	return v
}

// String describes the element for logs, e.g. "div#card-1.card".
func (e *Element) String() string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	b.WriteString(e.node.Data)
	if id := e.ID(); id != "" {
		b.WriteString("#")
		b.WriteString(id)
	}
	for _, c := range e.Classes() {
		b.WriteString(".")
		b.WriteString(c)
	}
	return b.String()
}

// =============================================================================
// Tree
// =============================================================================

// Parent returns the parent element, or nil when detached or at the root.
func (e *Element) Parent() *Element {
	return e.doc.Wrap(e.node.Parent)
}

// Children returns the element children in order.
func (e *Element) Children() []*Element {
	var out []*Element
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, e.doc.Wrap(c))
		}
	}
	return out
}

// Index returns the position of e among its parent's element children,
// or -1 when e has no parent.
func (e *Element) Index() int {
	if e.node.Parent == nil {
		return -1
	}
	i := 0
	for c := e.node.Parent.FirstChild; c != nil; c = c.NextSibling {
		if c == e.node {
			return i
		}
		if c.Type == html.ElementNode {
			i++
		}
	}
	return -1
}

// Contains reports whether other is e or one of its descendants.
func (e *Element) Contains(other *Element) bool {
	if other == nil {
		return false
	}
	for n := other.node; n != nil; n = n.Parent {
		if n == e.node {
			return true
		}
	}
	return false
}

// IsConnected reports whether e is attached to its document.
func (e *Element) IsConnected() bool {
	n := e.node
	for n.Parent != nil {
		n = n.Parent
	}
	return n == e.doc.root
}

// InsertAdjacent moves el to the given position relative to e, detaching it
// from its current location first.
func (e *Element) InsertAdjacent(pos Position, el *Element) error {
	if el.doc != e.doc {
		return ErrForeignElement
	}
	if el == e {
		return nil
	}

	var parent, before *html.Node
	switch pos {
	case BeforeBegin, AfterEnd:
		parent = e.node.Parent
		if parent == nil {
			return ErrNoParent
		}
	default:
		parent = e.node
	}
	if isAncestor(el.node, parent) {
		return ErrHierarchy
	}

	detach(el.node)

	switch pos {
	case BeforeBegin:
		before = e.node
	case AfterBegin:
		before = e.node.FirstChild
	case BeforeEnd:
		before = nil
	case AfterEnd:
		before = e.node.NextSibling
	}
	parent.InsertBefore(el.node, before)
	e.doc.touch()
	return nil
}

// AppendChild moves el to the end of e's children.
func (e *Element) AppendChild(el *Element) error {
	return e.InsertAdjacent(BeforeEnd, el)
}

// Remove detaches e from the tree. Removing a detached element is a no-op.
func (e *Element) Remove() {
	if e.node.Parent == nil {
		return
	}
	detach(e.node)
	e.doc.touch()
}

// Discard removes e and drops the document's handles, listeners and form
// values for its subtree. e must not be used afterwards.
func (e *Element) Discard() {
	e.Remove()
	d := e.doc
	forget := func(n *html.Node) {
		delete(d.elements, n)
		delete(d.listeners, n)
		delete(d.values, n)
	}
	forget(e.node)
	walkElements(e.node, forget)
}

func detach(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

func isAncestor(candidate, n *html.Node) bool {
	for ; n != nil; n = n.Parent {
		if n == candidate {
			return true
		}
	}
	return false
}

// =============================================================================
// Attributes
// =============================================================================

// Attr returns the value of an attribute.
func (e *Element) Attr(key string) (string, bool) {
	return attr(e.node, strings.ToLower(key))
}

// Attrs returns a copy of the element's attributes.
func (e *Element) Attrs() []html.Attribute {
	out := make([]html.Attribute, len(e.node.Attr))
	copy(out, e.node.Attr)
	return out
}

// SetAttr sets an attribute, replacing an existing value.
func (e *Element) SetAttr(key, val string) {
	key = strings.ToLower(key)
	for i, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == key {
			e.node.Attr[i].Val = val
			e.doc.touch()
			return
		}
	}
	e.node.Attr = append(e.node.Attr, html.Attribute{Key: key, Val: val})
	e.doc.touch()
}

// RemoveAttr removes an attribute if present.
func (e *Element) RemoveAttr(key string) {
	key = strings.ToLower(key)
	for i, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == key {
			e.node.Attr = append(e.node.Attr[:i], e.node.Attr[i+1:]...)
			e.doc.touch()
			return
		}
	}
}

// =============================================================================
// Class list
// =============================================================================

// Classes returns the class names in attribute order.
func (e *Element) Classes() []string {
	v, _ := attr(e.node, "class")
	return strings.Fields(v)
}

// HasClass reports whether the element carries the class.
func (e *Element) HasClass(name string) bool {
	for _, c := range e.Classes() {
		if c == name {
			return true
		}
	}
	return false
}

// AddClass adds a class. Empty names are ignored.
func (e *Element) AddClass(name string) {
	if name == "" || e.HasClass(name) {
		return
	}
	e.SetAttr("class", strings.Join(append(e.Classes(), name), " "))
}

// RemoveClass removes a class. Empty names are ignored.
func (e *Element) RemoveClass(name string) {
	if name == "" || !e.HasClass(name) {
		return
	}
	classes := e.Classes()
	kept := classes[:0]
	for _, c := range classes {
		if c != name {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		e.RemoveAttr("class")
		return
	}
	e.SetAttr("class", strings.Join(kept, " "))
}

// =============================================================================
// Inline style
// =============================================================================

// Style returns the inline value of a style property, or "".
func (e *Element) Style(prop string) string {
	v, _ := e.lookupStyle(prop)
	return v
}

// HasStyle reports whether an inline declaration for prop exists.
func (e *Element) HasStyle(prop string) bool {
	_, ok := e.lookupStyle(prop)
	return ok
}

func (e *Element) lookupStyle(prop string) (string, bool) {
	prop = strings.ToLower(prop)
	v, _ := attr(e.node, "style")
	for _, d := range ParseStyle(v) {
		if d.Property == prop {
			return d.Value, true
		}
	}
	return "", false
}

// InlineStyle returns the inline declarations in order.
func (e *Element) InlineStyle() []Declaration {
	v, _ := attr(e.node, "style")
	return ParseStyle(v)
}

// SetStyle sets an inline style property. An empty value removes it.
func (e *Element) SetStyle(prop, val string) {
	if val == "" {
		e.RemoveStyle(prop)
		return
	}
	prop = strings.ToLower(prop)
	decls := e.InlineStyle()
	for i := range decls {
		if decls[i].Property == prop {
			decls[i].Value = val
			e.SetAttr("style", FormatStyle(decls))
			return
		}
	}
	e.SetAttr("style", FormatStyle(append(decls, Declaration{Property: prop, Value: val})))
}

// RemoveStyle removes an inline style property.
func (e *Element) RemoveStyle(prop string) {
	prop = strings.ToLower(prop)
	decls := e.InlineStyle()
	kept := decls[:0]
	found := false
	for _, d := range decls {
		if d.Property == prop {
			found = true
			continue
		}
		kept = append(kept, d)
	}
	if !found {
		return
	}
	if len(kept) == 0 {
		e.RemoveAttr("style")
		return
	}
	e.SetAttr("style", FormatStyle(kept))
}

// =============================================================================
// Content and form values
// =============================================================================

// TextContent returns the concatenated text of e's subtree.
func (e *Element) TextContent() string {
	var b strings.Builder
	collectText(e.node, &b)
	return b.String()
}

func collectText(n *html.Node, b *strings.Builder) {
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b)
	}
}

// Value returns the live value of a form control: the last SetValue, or the
// value implied by markup. Non-controls return "".
func (e *Element) Value() string {
	if v, ok := e.doc.values[e.node]; ok {
		return v
	}
	switch e.node.DataAtom {
	case atom.Input, atom.Button:
		v, _ := attr(e.node, "value")
		return v
	case atom.Textarea:
		return e.TextContent()
	case atom.Option:
		if v, ok := attr(e.node, "value"); ok {
			return v
		}
		return strings.TrimSpace(e.TextContent())
	case atom.Select:
		var first, selected *html.Node
		walkElements(e.node, func(n *html.Node) {
			if n.DataAtom != atom.Option {
				return
			}
			if first == nil {
				first = n
			}
			if _, ok := attr(n, "selected"); ok && selected == nil {
				selected = n
			}
		})
		if selected == nil {
			selected = first
		}
		if selected == nil {
			return ""
		}
		return e.doc.Wrap(selected).Value()
	}
	return ""
}

// SetValue sets the live value of a form control without touching markup.
func (e *Element) SetValue(v string) {
	e.doc.values[e.node] = v
	e.doc.touch()
}

// HasValue reports whether the element is a form control that carries a value.
func (e *Element) HasValue() bool {
	switch e.node.DataAtom {
	case atom.Input, atom.Textarea, atom.Select, atom.Button, atom.Option:
		return true
	}
	return false
}

// OuterHTML renders the element and its subtree.
func (e *Element) OuterHTML() string {
	var buf bytes.Buffer
	if err := html.Render(&buf, e.node); err != nil {
		return ""
	}
	return buf.String()
}

// QuerySelectorAll returns descendants of e matching sel.
func (e *Element) QuerySelectorAll(sel string) ([]*Element, error) {
	return e.doc.queryAll(e.node, sel, true)
}

// QuerySelector returns the first descendant of e matching sel, or nil.
func (e *Element) QuerySelector(sel string) (*Element, error) {
	els, err := e.QuerySelectorAll(sel)
	if err != nil || len(els) == 0 {
		return nil, err
	}
	return els[0], nil
}

func walkElements(n *html.Node, fn func(*html.Node)) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			fn(c)
			walkElements(c, fn)
		}
	}
}
