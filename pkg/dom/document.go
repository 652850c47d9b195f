package dom

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document errors.
var (
	ErrNoBody          = errors.New("dom: document has no body")
	ErrInvalidSelector = errors.New("dom: invalid selector")
)

// Document is a live HTML document.
type Document struct {
	root *html.Node
	body *html.Node

	elements     map[*html.Node]*Element
	listeners    map[*html.Node][]*Listener
	docListeners []*Listener
	values       map[*html.Node]string

	version uint64
}

// Parse parses an HTML page into a Document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("dom: parse: %w", err)
	}
	d := &Document{
		root:      root,
		elements:  make(map[*html.Node]*Element),
		listeners: make(map[*html.Node][]*Listener),
		values:    make(map[*html.Node]string),
	}
	d.body = findElement(root, func(n *html.Node) bool { return n.DataAtom == atom.Body })
	if d.body == nil {
		return nil, ErrNoBody
	}
	return d, nil
}

// ParseString parses an HTML page held in a string.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// MustParseString is like ParseString but panics on error. Intended for
// tests and static fixtures.
func MustParseString(s string) *Document {
	d, err := ParseString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Root returns the document node.
func (d *Document) Root() *html.Node {
	return d.root
}

// Body returns the <body> element.
func (d *Document) Body() *Element {
	return d.Wrap(d.body)
}

// Version returns a counter that increases on every tree, attribute,
// class or style mutation made through this package.
func (d *Document) Version() uint64 {
	return d.version
}

func (d *Document) touch() {
	d.version++
}

// Wrap returns the element handle for n. Non-element nodes yield nil.
func (d *Document) Wrap(n *html.Node) *Element {
	if n == nil || n.Type != html.ElementNode {
		return nil
	}
	if el, ok := d.elements[n]; ok {
		return el
	}
	el := &Element{node: n, doc: d}
	d.elements[n] = el
	return el
}

// CreateElement creates a detached element with the given tag name.
func (d *Document) CreateElement(tag string) *Element {
	tag = strings.ToLower(tag)
	return d.Wrap(&html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	})
}

// ParseFragment parses markup in a <body> context and returns its top-level
// elements, detached from the document. Text and comments are dropped.
func (d *Document) ParseFragment(markup string) ([]*Element, error) {
	context := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(markup), context)
	if err != nil {
		return nil, fmt.Errorf("dom: parse fragment: %w", err)
	}
	var out []*Element
	for _, n := range nodes {
		if n.Type == html.ElementNode {
			out = append(out, d.Wrap(n))
		}
	}
	return out, nil
}

// GetElementByID returns the first attached element with the given id.
func (d *Document) GetElementByID(id string) *Element {
	if id == "" {
		return nil
	}
	return d.Wrap(findElement(d.root, func(n *html.Node) bool {
		v, ok := attr(n, "id")
		return ok && v == id
	}))
}

// QuerySelectorAll returns every attached element matching sel, in document order.
func (d *Document) QuerySelectorAll(sel string) ([]*Element, error) {
	return d.queryAll(d.root, sel, false)
}

// QuerySelector returns the first attached element matching sel, or nil.
func (d *Document) QuerySelector(sel string) (*Element, error) {
	els, err := d.QuerySelectorAll(sel)
	if err != nil || len(els) == 0 {
		return nil, err
	}
	return els[0], nil
}

func (d *Document) queryAll(scope *html.Node, sel string, excludeScope bool) ([]*Element, error) {
	compiled, err := cascadia.Compile(sel)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidSelector, sel, err)
	}
	var out []*Element
	for _, n := range compiled.MatchAll(scope) {
		if excludeScope && n == scope {
			continue
		}
		out = append(out, d.Wrap(n))
	}
	return out, nil
}

// Render writes the whole document as HTML.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

// String renders the document as HTML.
func (d *Document) String() string {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}

// findElement returns the first element in n's subtree (n included) for
// which match returns true, in document order.
func findElement(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, match); found != nil {
			return found
		}
	}
	return nil
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}
