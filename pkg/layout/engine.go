package layout

import (
	"log/slog"

	"github.com/vango-dev/dragsort/pkg/dom"
	"golang.org/x/net/html"
)

// Layout constants.
const (
	// DefaultViewportWidth is the width of the initial containing block.
	DefaultViewportWidth = 1024

	// LineHeight is the height of a line of inline content.
	LineHeight = 20

	// CharWidth is the advance of one rune of text.
	CharWidth = 8
)

// Option configures an Engine.
type Option func(*Engine)

// WithViewportWidth sets the width of the initial containing block.
func WithViewportWidth(width float64) Option {
	return func(e *Engine) {
		if width > 0 {
			e.viewport = width
		}
	}
}

// WithLogger sets the engine's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// Engine lays out one document.
type Engine struct {
	doc      *dom.Document
	viewport float64
	scroll   dom.Point
	logger   *slog.Logger

	boxes   map[*html.Node]dom.Rect // page coordinates
	styles  map[*html.Node]map[string]string
	version uint64
	valid   bool
}

// New creates a layout engine for doc.
func New(doc *dom.Document, opts ...Option) *Engine {
	e := &Engine{
		doc:      doc,
		viewport: DefaultViewportWidth,
		logger:   slog.Default().With("component", "layout"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Document returns the document being laid out.
func (e *Engine) Document() *dom.Document {
	return e.doc
}

// ViewportWidth returns the width of the initial containing block.
func (e *Engine) ViewportWidth() float64 {
	return e.viewport
}

// SetViewportWidth changes the layout width. Non-positive widths are ignored.
func (e *Engine) SetViewportWidth(width float64) {
	if width <= 0 || width == e.viewport {
		return
	}
	e.viewport = width
	e.valid = false
}

// ScrollOffset returns the current page scroll.
func (e *Engine) ScrollOffset() dom.Point {
	return e.scroll
}

// ScrollTo sets the page scroll. Negative components are clamped to zero.
func (e *Engine) ScrollTo(p dom.Point) {
	e.scroll = dom.Point{X: max(p.X, 0), Y: max(p.Y, 0)}
}

// PageBox returns el's box in page coordinates. ok is false for elements
// that are detached or not rendered.
func (e *Engine) PageBox(el *dom.Element) (r dom.Rect, ok bool) {
	if el == nil {
		return dom.Rect{}, false
	}
	e.ensure()
	r, ok = e.boxes[el.Node()]
	return r, ok
}

// BoundingBox returns el's box relative to the viewport, like
// getBoundingClientRect. Elements without a box yield the zero Rect.
func (e *Engine) BoundingBox(el *dom.Element) dom.Rect {
	r, ok := e.PageBox(el)
	if !ok {
		return dom.Rect{}
	}
	return r.Offset(dom.Point{X: -e.scroll.X, Y: -e.scroll.Y})
}

// ElementFromPoint returns the topmost rendered element containing the page
// point p, or nil. Later elements in document order paint over earlier ones.
func (e *Engine) ElementFromPoint(p dom.Point) *dom.Element {
	e.ensure()
	var hit *html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			r, ok := e.boxes[c]
			if !ok {
				continue
			}
			if r.Contains(p) {
				hit = c
			}
			walk(c)
		}
	}
	walk(e.doc.Root())
	return e.doc.Wrap(hit)
}

// Invalidate drops cached geometry and styles. Edits made directly on the
// underlying html.Node skip the document version and need it.
func (e *Engine) Invalidate() {
	e.valid = false
}

func (e *Engine) ensure() {
	if e.valid && e.version == e.doc.Version() {
		return
	}
	e.boxes = make(map[*html.Node]dom.Rect)
	e.styles = make(map[*html.Node]map[string]string)
	for c := e.doc.Root().FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			e.layoutBlock(c, 0, 0, e.viewport)
		}
	}
	e.version = e.doc.Version()
	e.valid = true
	e.logger.Debug("layout computed", "boxes", len(e.boxes), "version", e.version)
}
