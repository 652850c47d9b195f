package layout

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/vango-dev/dragsort/pkg/dom"
	"golang.org/x/net/html"
)

// Style lookup errors.
var (
	ErrNotElement      = errors.New("layout: node is not an element")
	ErrUnknownProperty = errors.New("layout: unknown style property")
)

// inherited lists inherited properties and their initial values.
var inherited = map[string]string{
	"color":       "rgb(0, 0, 0)",
	"cursor":      "auto",
	"font-family": "sans-serif",
	"font-size":   "16px",
	"font-style":  "normal",
	"font-weight": "400",
	"line-height": strconv.Itoa(LineHeight) + "px",
	"text-align":  "start",
	"visibility":  "visible",
}

// ComputedStyle returns the resolved style of el sorted by property name.
func (e *Engine) ComputedStyle(el *dom.Element) []dom.Declaration {
	if el == nil {
		return nil
	}
	values := e.computed(el.Node())
	out := make([]dom.Declaration, 0, len(values))
	for _, prop := range sortedKeys(values) {
		out = append(out, dom.Declaration{Property: prop, Value: values[prop]})
	}
	return out
}

// StyleProperties returns the computed property names of n.
func (e *Engine) StyleProperties(n *html.Node) []string {
	if n == nil || n.Type != html.ElementNode {
		return nil
	}
	return sortedKeys(e.computed(n))
}

// StyleValue returns one computed property of n.
func (e *Engine) StyleValue(n *html.Node, prop string) (string, error) {
	if n == nil || n.Type != html.ElementNode {
		return "", ErrNotElement
	}
	v, ok := e.computed(n)[prop]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownProperty, prop)
	}
	return v, nil
}

// FormValue returns the live value of a form control.
func (e *Engine) FormValue(n *html.Node) (string, bool) {
	el := e.doc.Wrap(n)
	if el == nil || !el.HasValue() {
		return "", false
	}
	return el.Value(), true
}

func (e *Engine) computed(n *html.Node) map[string]string {
	e.ensure()
	if cached, ok := e.styles[n]; ok {
		return cached
	}

	out := make(map[string]string, len(inherited)+8)
	for prop, initial := range inherited {
		out[prop] = initial
	}

	// Ancestors first so nearer declarations win.
	var chain []*html.Node
	for p := n; p != nil; p = p.Parent {
		if p.Type == html.ElementNode {
			chain = append(chain, p)
		}
	}
	for i := len(chain) - 1; i > 0; i-- {
		for prop, v := range styleOf(chain[i]) {
			if _, ok := inherited[prop]; ok {
				out[prop] = v
			}
		}
	}

	st := styleOf(n)
	for prop, v := range st {
		out[prop] = v
	}
	out["display"] = displayOf(n, st)
	if _, ok := out["position"]; !ok {
		out["position"] = "static"
	}
	out["box-sizing"] = "border-box"
	if r, ok := e.boxes[n]; ok {
		out["width"] = formatPx(r.Width)
		out["height"] = formatPx(r.Height)
	} else {
		out["width"] = "auto"
		out["height"] = "auto"
	}

	e.styles[n] = out
	return out
}

func formatPx(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
