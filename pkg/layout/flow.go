package layout

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/vango-dev/dragsort/pkg/dom"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// inlineTags are rendered inline unless their style says otherwise.
var inlineTags = map[atom.Atom]bool{
	atom.A:        true,
	atom.Abbr:     true,
	atom.B:        true,
	atom.Button:   true,
	atom.Code:     true,
	atom.Em:       true,
	atom.I:        true,
	atom.Img:      true,
	atom.Input:    true,
	atom.Kbd:      true,
	atom.Label:    true,
	atom.Mark:     true,
	atom.Select:   true,
	atom.Small:    true,
	atom.Span:     true,
	atom.Strong:   true,
	atom.Sub:      true,
	atom.Sup:      true,
	atom.Textarea: true,
	atom.U:        true,
}

// hiddenTags never render.
var hiddenTags = map[atom.Atom]bool{
	atom.Head:     true,
	atom.Script:   true,
	atom.Style:    true,
	atom.Template: true,
	atom.Title:    true,
	atom.Meta:     true,
	atom.Link:     true,
}

// styleOf returns the inline declarations of n as a map.
func styleOf(n *html.Node) map[string]string {
	out := make(map[string]string)
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == "style" {
			for _, d := range dom.ParseStyle(a.Val) {
				out[d.Property] = d.Value
			}
		}
	}
	return out
}

// displayOf resolves the display value of n.
func displayOf(n *html.Node, st map[string]string) string {
	if hiddenTags[n.DataAtom] {
		return "none"
	}
	if d, ok := st["display"]; ok {
		return strings.ToLower(d)
	}
	if inlineTags[n.DataAtom] {
		return "inline"
	}
	return "block"
}

func isInlineLevel(display string) bool {
	return display == "inline" || display == "inline-block"
}

func isRow(display string, st map[string]string) bool {
	if display != "flex" && display != "inline-flex" {
		return false
	}
	return !strings.HasPrefix(strings.ToLower(st["flex-direction"]), "column")
}

// px parses a pixel length ("12px", "12", "0").
func px(v string) (float64, bool) {
	v = strings.TrimSpace(strings.ToLower(v))
	if v == "" {
		return 0, false
	}
	v = strings.TrimSuffix(v, "px")
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func pxOr(v string, def float64) float64 {
	if f, ok := px(v); ok {
		return f
	}
	return def
}

func textWidth(s string) float64 {
	collapsed := strings.Join(strings.Fields(s), " ")
	return float64(utf8.RuneCountInString(collapsed)) * CharWidth
}

func isBlankText(n *html.Node) bool {
	return n.Type == html.TextNode && strings.TrimSpace(n.Data) == ""
}

// layoutBlock lays out a block-level box with its top-left corner at (x, y)
// and returns it.
func (e *Engine) layoutBlock(n *html.Node, x, y, avail float64) dom.Rect {
	st := styleOf(n)
	display := displayOf(n, st)
	if display == "none" {
		return dom.Rect{}
	}

	pad := pxOr(st["padding"], 0)
	width := pxOr(st["width"], avail)
	contentW := max(width-2*pad, 0)

	var contentH float64
	if isRow(display, st) {
		contentH = e.layoutRow(n, x+pad, y+pad, contentW)
	} else {
		contentH = e.layoutColumn(n, x+pad, y+pad, contentW)
	}

	height := pxOr(st["height"], contentH+2*pad)
	r := dom.Rect{X: x, Y: y, Width: width, Height: height}
	e.boxes[n] = r
	return r
}

// layoutColumn places n's children in normal flow and returns the content height.
func (e *Engine) layoutColumn(n *html.Node, x, y, width float64) float64 {
	cursorY := y
	lineX, lineH := x, 0.0

	flush := func() {
		if lineH > 0 {
			cursorY += lineH
		}
		lineX, lineH = x, 0
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			if isBlankText(c) {
				continue
			}
			lineX += textWidth(c.Data)
			lineH = max(lineH, LineHeight)

		case html.ElementNode:
			st := styleOf(c)
			display := displayOf(c, st)
			switch {
			case display == "none":
			case strings.EqualFold(st["position"], "absolute"):
				e.layoutAbsolute(c, st)
			case isInlineLevel(display):
				r := e.layoutInline(c, lineX, cursorY)
				lineX += r.Width
				lineH = max(lineH, r.Height)
			default:
				flush()
				r := e.layoutBlock(c, x, cursorY, width)
				cursorY += r.Height
			}
		}
	}
	flush()
	return cursorY - y
}

// layoutRow places n's element children side by side and returns the
// tallest child's height.
func (e *Engine) layoutRow(n *html.Node, x, y, width float64) float64 {
	type item struct {
		node  *html.Node
		width float64
		fixed bool
	}
	var items []item
	fixedSum, flexible := 0.0, 0

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		st := styleOf(c)
		if displayOf(c, st) == "none" {
			continue
		}
		if strings.EqualFold(st["position"], "absolute") {
			e.layoutAbsolute(c, st)
			continue
		}
		if w, ok := px(st["width"]); ok {
			items = append(items, item{node: c, width: w, fixed: true})
			fixedSum += w
			continue
		}
		items = append(items, item{node: c})
		flexible++
	}

	share := 0.0
	if flexible > 0 {
		share = max(width-fixedSum, 0) / float64(flexible)
	}

	cursorX, height := x, 0.0
	for _, it := range items {
		w := it.width
		if !it.fixed {
			w = share
		}
		r := e.layoutBlock(it.node, cursorX, y, w)
		cursorX += r.Width
		height = max(height, r.Height)
	}
	return height
}

// layoutInline lays out an inline box at (x, y) and returns it.
func (e *Engine) layoutInline(n *html.Node, x, y float64) dom.Rect {
	st := styleOf(n)
	pad := pxOr(st["padding"], 0)

	contentW := 0.0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			if !isBlankText(c) {
				contentW += textWidth(c.Data)
			}
		case html.ElementNode:
			cst := styleOf(c)
			if displayOf(c, cst) == "none" {
				continue
			}
			r := e.layoutInline(c, x+pad+contentW, y+pad)
			contentW += r.Width
		}
	}

	r := dom.Rect{
		X:      x,
		Y:      y,
		Width:  pxOr(st["width"], contentW+2*pad),
		Height: pxOr(st["height"], LineHeight+2*pad),
	}
	e.boxes[n] = r
	return r
}

// layoutAbsolute places an absolutely positioned element at its left/top
// page coordinates.
func (e *Engine) layoutAbsolute(n *html.Node, st map[string]string) dom.Rect {
	x := pxOr(st["left"], 0)
	y := pxOr(st["top"], 0)
	if isInlineLevel(displayOf(n, st)) {
		if _, ok := px(st["width"]); !ok {
			return e.layoutInline(n, x, y)
		}
	}
	return e.layoutBlock(n, x, y, e.viewport)
}
