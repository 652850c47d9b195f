package dnd

import (
	"strings"

	"github.com/vango-dev/dragsort/pkg/dom"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// CloneStyled deep-copies src. Every cloned element carries its computed
// style from styles as an inline style attribute, has no id, and holds the
// live value of form controls in its markup. Properties whose value cannot
// be read are left out. A nil styles copies attributes verbatim.
func CloneStyled(src *html.Node, styles StyleSource) *html.Node {
	return cloneNode(src, styles, nil)
}

func cloneNode(src *html.Node, styles StyleSource, onSkip func(prop string, err error)) *html.Node {
	if src == nil {
		return nil
	}
	dst := &html.Node{
		Type:      src.Type,
		DataAtom:  src.DataAtom,
		Data:      src.Data,
		Namespace: src.Namespace,
	}
	if src.Type != html.ElementNode {
		dst.Attr = append([]html.Attribute(nil), src.Attr...)
		return dst
	}

	for _, a := range src.Attr {
		if a.Namespace == "" && a.Key == "id" {
			continue
		}
		if styles != nil && a.Namespace == "" && a.Key == "style" {
			continue
		}
		dst.Attr = append(dst.Attr, a)
	}
	if styles != nil {
		var decls []dom.Declaration
		for _, prop := range styles.StyleProperties(src) {
			v, err := styles.StyleValue(src, prop)
			if err != nil {
				if onSkip != nil {
					onSkip(prop, err)
				}
				continue
			}
			decls = append(decls, dom.Declaration{Property: prop, Value: v})
		}
		if len(decls) > 0 {
			setAttr(dst, "style", dom.FormatStyle(decls))
		}
	}

	for c := src.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode || c.Type == html.TextNode {
			dst.AppendChild(cloneNode(c, styles, onSkip))
		}
	}

	if styles != nil {
		if v, ok := styles.FormValue(src); ok {
			writeFormValue(dst, v)
		}
	}
	return dst
}

// writeFormValue stores v in n's markup so the clone renders it.
func writeFormValue(n *html.Node, v string) {
	switch n.DataAtom {
	case atom.Input:
		setAttr(n, "value", v)
	case atom.Textarea:
		for c := n.FirstChild; c != nil; {
			next := c.NextSibling
			n.RemoveChild(c)
			c = next
		}
		n.AppendChild(&html.Node{Type: html.TextNode, Data: v})
	case atom.Select:
		selected := false
		eachOption(n, func(opt *html.Node) {
			if !selected && optionValue(opt) == v {
				setAttr(opt, "selected", "")
				selected = true
				return
			}
			removeAttr(opt, "selected")
		})
	}
}

func eachOption(n *html.Node, fn func(*html.Node)) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if c.DataAtom == atom.Option {
			fn(c)
			continue
		}
		eachOption(c, fn)
	}
}

func optionValue(opt *html.Node) string {
	for _, a := range opt.Attr {
		if a.Namespace == "" && a.Key == "value" {
			return a.Val
		}
	}
	var b strings.Builder
	for c := opt.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return strings.TrimSpace(b.String())
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func removeAttr(n *html.Node, key string) {
	out := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			continue
		}
		out = append(out, a)
	}
	n.Attr = out
}
