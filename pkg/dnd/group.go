package dnd

import (
	"log/slog"

	"github.com/vango-dev/dragsort/pkg/dom"
)

// GroupOptions configures a Group. Selectors take precedence over the
// corresponding element lists.
type GroupOptions struct {
	// ElementSelector or Elements pick the draggable elements.
	ElementSelector string
	Elements        []*dom.Element

	// AnchorSelector is queried inside each element. Elements without a
	// match are their own anchor.
	AnchorSelector string

	// ContainerSelector or Containers pick the shared drop regions. When
	// both are empty every element uses its own parent.
	ContainerSelector string
	Containers        []*dom.Element

	Placeholder       *dom.Element
	PlaceholderMarkup string

	DraggingClass string
	HoveringClass string

	Host   Host
	Logger *slog.Logger
}

// Group is a set of Draggables sharing containers, placeholder and class
// names.
type Group struct {
	doc      *dom.Document
	sessions []*Draggable
	logger   *slog.Logger
}

// NewGroup resolves the selection in doc and builds one bound Draggable per
// element. If any member fails validation, the members already built are
// unbound and the error is returned.
func NewGroup(doc *dom.Document, opts GroupOptions) (*Group, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	elements := opts.Elements
	if opts.ElementSelector != "" {
		found, err := doc.QuerySelectorAll(opts.ElementSelector)
		if err != nil {
			return nil, configError("E206", "element selector %q: %v", opts.ElementSelector, err)
		}
		elements = found
	}
	if len(elements) == 0 {
		if opts.ElementSelector != "" {
			return nil, configError("E209", "selector %q matched nothing", opts.ElementSelector)
		}
		return nil, configError("E209", "no elements given")
	}

	containers := opts.Containers
	if opts.ContainerSelector != "" {
		found, err := doc.QuerySelectorAll(opts.ContainerSelector)
		if err != nil {
			return nil, configError("E206", "container selector %q: %v", opts.ContainerSelector, err)
		}
		if len(found) == 0 {
			return nil, configError("E205", "container selector %q matched nothing", opts.ContainerSelector)
		}
		containers = found
	}

	placeholder, err := resolvePlaceholder(doc, opts.Placeholder, opts.PlaceholderMarkup)
	if err != nil {
		return nil, err
	}

	g := &Group{
		doc:    doc,
		logger: logger.With("component", "dnd.group"),
	}
	for _, el := range elements {
		anchor := el
		if opts.AnchorSelector != "" && el != nil {
			a, err := el.QuerySelector(opts.AnchorSelector)
			if err != nil {
				g.Unbind()
				return nil, configError("E206", "anchor selector %q: %v", opts.AnchorSelector, err)
			}
			if a != nil {
				anchor = a
			}
		}

		d, err := New(Options{
			Element:       el,
			Anchor:        anchor,
			Containers:    containers,
			Placeholder:   placeholder,
			DraggingClass: opts.DraggingClass,
			HoveringClass: opts.HoveringClass,
			Host:          opts.Host,
			Logger:        logger,
		})
		if err != nil {
			g.Unbind()
			return nil, err
		}
		g.sessions = append(g.sessions, d)
	}

	g.logger.Debug("group bound", "sessions", len(g.sessions), "containers", len(containers))
	return g, nil
}

// Bind binds every member.
func (g *Group) Bind() {
	for _, d := range g.sessions {
		d.Bind()
	}
}

// Unbind unbinds every member, releasing a drag in progress.
func (g *Group) Unbind() {
	for _, d := range g.sessions {
		d.Unbind()
	}
}

// Destroy is Unbind.
func (g *Group) Destroy() {
	g.Unbind()
}

// Sessions returns the members in selection order.
func (g *Group) Sessions() []*Draggable {
	return append([]*Draggable(nil), g.sessions...)
}

// Len returns the number of members.
func (g *Group) Len() int {
	return len(g.sessions)
}

// Dragging returns the member currently dragging, or nil.
func (g *Group) Dragging() *Draggable {
	for _, d := range g.sessions {
		if d.IsDragging() {
			return d
		}
	}
	return nil
}

// Session returns the member for el, or nil.
func (g *Group) Session(el *dom.Element) *Draggable {
	for _, d := range g.sessions {
		if d.Element() == el {
			return d
		}
	}
	return nil
}
