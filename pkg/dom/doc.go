// Package dom provides the live document that drags operate on.
//
// A Document wraps a golang.org/x/net/html node tree and adds the pieces of
// the browser DOM that interaction code relies on: stable element handles,
// a class list, inline style declarations, live form values, CSS selector
// queries and synchronous event dispatch with bubbling.
//
// # Elements
//
// Element handles are cached per node, so the same *html.Node always yields
// the same *Element and handles can be compared with ==:
//
//	doc, _ := dom.ParseString(`<ul id="list"><li>a</li><li>b</li></ul>`)
//	list := doc.GetElementByID("list")
//	first := list.Children()[0]
//	list.InsertAdjacent(dom.BeforeEnd, first) // move "a" to the end
//
// Mutations must go through Element methods; they bump Document.Version,
// which layout engines use to invalidate cached geometry.
//
// # Events
//
// Listeners are registered per element or on the document and return a
// *Listener handle used for removal. Dispatch runs to completion on the
// caller's goroutine: target first, then ancestors, then document listeners
// when the event bubbles and the target is attached.
//
// A Document is not safe for concurrent use.
package dom
