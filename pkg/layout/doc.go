// Package layout computes geometry and computed styles for a dom.Document.
//
// It is the host side of drag interaction: a deliberately small layout
// model that answers the questions a browser would answer through
// getBoundingClientRect, window.scrollX/Y and getComputedStyle.
//
// # Model
//
//   - Block elements stack vertically and fill the available width.
//   - display:flex (row direction) lays element children side by side;
//     explicit px widths are honored and the remaining width is shared.
//   - Text and inline elements form lines LineHeight px tall, CharWidth px
//     per rune of collapsed text.
//   - padding (single px value) insets the content box; width and height
//     (px) override the measured size; sizes include padding.
//   - display:none removes an element and its subtree from layout.
//   - position:absolute places an element at its left/top page coordinates
//     without affecting siblings.
//
// Results are cached until the document's Version changes.
package layout
