package dnd

import (
	"errors"
	"strings"
	"testing"

	"github.com/vango-dev/dragsort/pkg/dom"
	"golang.org/x/net/html"
)

// fakeStyles is a StyleSource over a synthetic tree.
type fakeStyles struct {
	decls  map[*html.Node][]dom.Declaration
	values map[*html.Node]string
	broken string
}

func (s *fakeStyles) StyleProperties(n *html.Node) []string {
	var out []string
	for _, d := range s.decls[n] {
		out = append(out, d.Property)
	}
	if s.broken != "" {
		out = append(out, s.broken)
	}
	return out
}

func (s *fakeStyles) StyleValue(n *html.Node, prop string) (string, error) {
	if prop == s.broken {
		return "", errors.New("unreadable")
	}
	for _, d := range s.decls[n] {
		if d.Property == prop {
			return d.Value, nil
		}
	}
	return "", errors.New("unknown")
}

func (s *fakeStyles) FormValue(n *html.Node) (string, bool) {
	v, ok := s.values[n]
	return v, ok
}

const clonePage = `<body><div id="card" class="card" style="color: red" data-k="v">` +
	`<span id="t">Title</span> text<!-- note -->` +
	`<input id="in" value="old">` +
	`<textarea id="ta">old</textarea>` +
	`<select id="sel"><option value="1" selected>One</option><option>Two</option></select>` +
	`</div></body>`

func getAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func find(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := find(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func TestCloneStyled(t *testing.T) {
	doc := dom.MustParseString(clonePage)
	card := doc.GetElementByID("card")
	styles := &fakeStyles{
		decls: map[*html.Node][]dom.Declaration{
			card.Node(): {
				{Property: "color", Value: "blue"},
				{Property: "width", Value: "10px"},
			},
			doc.GetElementByID("t").Node(): {
				{Property: "font-weight", Value: "700"},
			},
		},
		values: map[*html.Node]string{
			doc.GetElementByID("in").Node():  "new",
			doc.GetElementByID("ta").Node():  "typed",
			doc.GetElementByID("sel").Node(): "Two",
		},
		broken: "filter",
	}

	var skipped []string
	clone := cloneNode(card.Node(), styles, func(prop string, err error) {
		skipped = append(skipped, prop)
	})

	if clone.Parent != nil {
		t.Error("clone should be detached")
	}
	if _, ok := getAttr(clone, "id"); ok {
		t.Error("clone kept id")
	}
	if v, _ := getAttr(clone, "class"); v != "card" {
		t.Errorf("class = %q", v)
	}
	if v, _ := getAttr(clone, "data-k"); v != "v" {
		t.Errorf("data-k = %q", v)
	}
	if v, _ := getAttr(clone, "style"); v != "color: blue; width: 10px;" {
		t.Errorf("style = %q", v)
	}
	if len(skipped) == 0 || skipped[0] != "filter" {
		t.Errorf("skipped = %v, want the unreadable property", skipped)
	}

	span := find(clone, "span")
	if _, ok := getAttr(span, "id"); ok {
		t.Error("descendant kept id")
	}
	if v, _ := getAttr(span, "style"); v != "font-weight: 700;" {
		t.Errorf("span style = %q", v)
	}
	if span.FirstChild == nil || span.FirstChild.Data != "Title" {
		t.Error("text not copied")
	}

	for c := clone.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.CommentNode {
			t.Error("comments should not be copied")
		}
	}

	if v, _ := getAttr(find(clone, "input"), "value"); v != "new" {
		t.Errorf("input value = %q, want new", v)
	}
	if ta := find(clone, "textarea"); ta.FirstChild == nil || ta.FirstChild.Data != "typed" || ta.FirstChild.NextSibling != nil {
		t.Error("textarea value not copied")
	}
	var selected []string
	eachOption(find(clone, "select"), func(opt *html.Node) {
		if _, ok := getAttr(opt, "selected"); ok {
			selected = append(selected, optionValue(opt))
		}
	})
	if strings.Join(selected, ",") != "Two" {
		t.Errorf("selected options = %v, want [Two]", selected)
	}

	if card.ID() != "card" || card.Style("color") != "red" {
		t.Error("source element modified")
	}
	if v, _ := getAttr(doc.GetElementByID("in").Node(), "value"); v != "old" {
		t.Error("source input modified")
	}
}

func TestCloneStyledWithoutStyles(t *testing.T) {
	doc := dom.MustParseString(clonePage)
	clone := CloneStyled(doc.GetElementByID("card").Node(), nil)

	if v, _ := getAttr(clone, "style"); v != "color: red" {
		t.Errorf("style = %q, want the original attribute", v)
	}
	if _, ok := getAttr(clone, "id"); ok {
		t.Error("clone kept id")
	}
	if CloneStyled(nil, nil) != nil {
		t.Error("CloneStyled(nil) should be nil")
	}
}

func TestCloneWithLayoutEngine(t *testing.T) {
	f := newFixture(t)
	clone := CloneStyled(f.el("a1").Node(), f.host)

	el := f.doc.Wrap(clone)
	if el.Style("height") != "100px" || el.Style("width") != "200px" {
		t.Errorf("clone size = %s x %s", el.Style("width"), el.Style("height"))
	}
	if el.Style("display") != "block" {
		t.Errorf("clone display = %q", el.Style("display"))
	}
	span, _ := el.QuerySelector("span")
	if span == nil || span.Style("cursor") != "pointer" || span.Style("display") != "inline" {
		t.Errorf("span clone style = %v", span)
	}
}
