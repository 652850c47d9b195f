package server

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/dragsort/pkg/dnd"
	"github.com/vango-dev/dragsort/pkg/dom"
	"github.com/vango-dev/dragsort/pkg/layout"
	"github.com/vango-dev/dragsort/pkg/protocol"
)

// BoardOptions configures a Board.
type BoardOptions struct {
	ID     string
	Config BoardConfig

	// ViewportWidth and Scroll seed the layout engine.
	ViewportWidth float64
	Scroll        dom.Point

	// Metrics receives drag counters. Nil uses unregistered collectors.
	Metrics *Metrics

	TracerProvider trace.TracerProvider

	// Send delivers outgoing frames. Nil drops them.
	Send func(*protocol.Frame) error

	Logger *slog.Logger
}

// Board is one client's live copy of the page. It is not safe for
// concurrent use.
type Board struct {
	id        string
	doc       *dom.Document
	engine    *layout.Engine
	group     *dnd.Group
	metrics   *Metrics
	tracer    *dragTracer
	send      func(*protocol.Frame) error
	listeners []*dom.Listener
	seq       uint64
	closed    bool
	logger    *slog.Logger
}

// NewBoard parses the page and binds a drag group over it.
func NewBoard(opts BoardOptions) (*Board, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "board", "board", opts.ID)

	page := opts.Config.Page
	if page == "" {
		page = DemoPage
	}
	doc, err := dom.ParseString(page)
	if err != nil {
		return nil, fmt.Errorf("parse board page: %w", err)
	}

	layoutOpts := []layout.Option{layout.WithLogger(logger)}
	if opts.ViewportWidth > 0 {
		layoutOpts = append(layoutOpts, layout.WithViewportWidth(opts.ViewportWidth))
	}
	engine := layout.New(doc, layoutOpts...)
	engine.ScrollTo(opts.Scroll)

	group, err := dnd.NewGroup(doc, dnd.GroupOptions{
		ElementSelector:   opts.Config.Elements,
		AnchorSelector:    opts.Config.Anchors,
		ContainerSelector: opts.Config.Containers,
		PlaceholderMarkup: opts.Config.Placeholder,
		DraggingClass:     opts.Config.DraggingClass,
		HoveringClass:     opts.Config.HoveringClass,
		Host:              engine,
		Logger:            logger,
	})
	if err != nil {
		return nil, err
	}

	metrics := opts.Metrics
	if metrics == nil {
		metrics = NewMetrics(prometheus.NewRegistry())
	}

	b := &Board{
		id:      opts.ID,
		doc:     doc,
		engine:  engine,
		group:   group,
		metrics: metrics,
		tracer:  newDragTracer(opts.TracerProvider, opts.ID),
		send:    opts.Send,
		logger:  logger,
	}
	for _, name := range []string{dnd.EventStarted, dnd.EventDragging, dnd.EventCompleted, dnd.EventCanceled} {
		b.listeners = append(b.listeners, doc.AddEventListener(name, b.onSignal))
	}

	logger.Debug("board ready", "draggables", group.Len())
	return b, nil
}

// ID returns the board id.
func (b *Board) ID() string { return b.id }

// Document returns the board's document.
func (b *Board) Document() *dom.Document { return b.doc }

// Engine returns the board's layout engine.
func (b *Board) Engine() *layout.Engine { return b.engine }

// Group returns the board's drag group.
func (b *Board) Group() *dnd.Group { return b.group }

// Closed reports whether Close has been called.
func (b *Board) Closed() bool { return b.closed }

// HandleEvent dispatches a client event into the document. A returned
// *protocol.ErrorMessage is meant for the client; the event may still have
// been dispatched.
func (b *Board) HandleEvent(ev *protocol.Event) error {
	if b.closed {
		return protocol.NewError(protocol.ErrBoardClosed, "board is closed")
	}

	start := time.Now()
	defer func() {
		b.metrics.eventDuration.WithLabelValues(ev.Type.String()).Observe(time.Since(start).Seconds())
	}()

	switch {
	case ev.Type.IsPointer():
		if ev.Pointer == nil {
			return protocol.NewError(protocol.ErrInvalidEvent, "pointer event without payload")
		}
		p := ev.Pointer
		mev := dom.NewMouseEvent(ev.Type.String(), float64(p.PageX), float64(p.PageY), int(p.Button))
		target, err := b.target(ev.Target, mev.Page())
		if target != nil {
			target.Dispatch(mev)
		} else {
			b.doc.Dispatch(mev)
		}
		return err

	case ev.Type == protocol.EventScroll:
		if ev.Viewport == nil {
			return protocol.NewError(protocol.ErrInvalidEvent, "scroll event without payload")
		}
		b.engine.ScrollTo(dom.Point{X: float64(ev.Viewport.X), Y: float64(ev.Viewport.Y)})

	case ev.Type == protocol.EventResize:
		if ev.Viewport == nil {
			return protocol.NewError(protocol.ErrInvalidEvent, "resize event without payload")
		}
		b.engine.SetViewportWidth(float64(ev.Viewport.X))
	}
	return nil
}

// target resolves the element an event is dispatched on: the element with
// the given id, or the topmost element under the pointer.
func (b *Board) target(id string, page dom.Point) (*dom.Element, error) {
	var err error
	if id != "" {
		if el := b.doc.GetElementByID(id); el != nil {
			return el, nil
		}
		err = protocol.NewError(protocol.ErrTargetUnknown, "no element #"+id)
	}
	return b.engine.ElementFromPoint(page), err
}

// Snapshot returns the markup of the document body.
func (b *Board) Snapshot() string {
	body := b.doc.Body()
	if body == nil {
		return ""
	}
	return body.OuterHTML()
}

// Close destroys the group, releasing any drag in progress, and stops
// emitting frames.
func (b *Board) Close() {
	if b.closed {
		return
	}
	b.closed = true
	b.group.Destroy()
	b.tracer.abort()
	for _, l := range b.listeners {
		b.doc.RemoveEventListener(l)
	}
	b.listeners = nil
	b.logger.Debug("board closed")
}

func (b *Board) onSignal(ev *dom.Event) {
	d, ok := ev.Detail.(*dnd.Draggable)
	if !ok {
		return
	}

	pointer := d.Pointer()
	sig := &protocol.Signal{
		Name:    ev.Type,
		Element: d.Element().ID(),
		Index:   -1,
		X:       int64(pointer.X),
		Y:       int64(pointer.Y),
	}

	finished := false
	switch ev.Type {
	case dnd.EventStarted:
		b.metrics.dragsStarted.Inc()
		b.tracer.start(d)
	case dnd.EventDragging:
		b.metrics.moves.Inc()
		if h := d.Hovered(); h != nil {
			sig.Container = h.ID()
		}
	case dnd.EventCompleted, dnd.EventCanceled:
		outcome := "completed"
		if ev.Type == dnd.EventCanceled {
			outcome = "canceled"
			b.metrics.dragsCanceled.Inc()
		} else {
			b.metrics.dragsCompleted.Inc()
		}
		if parent := d.Element().Parent(); parent != nil {
			sig.Container = parent.ID()
			sig.Index = int64(d.Element().Index())
		}
		b.tracer.end(d, outcome, sig.Container, int(sig.Index))
		finished = true
	}

	if ev.Type != dnd.EventDragging {
		b.logger.Debug("drag signal", "signal", ev.Type, "element", sig.Element,
			"container", sig.Container, "index", sig.Index)
	}

	b.seq++
	sig.Seq = b.seq
	b.emit(protocol.FrameSignal, 0, protocol.EncodeSignal(sig))

	if finished {
		b.seq++
		b.emit(protocol.FrameSnapshot, protocol.FlagFinal, protocol.EncodeSnapshot(&protocol.Snapshot{
			Seq:  b.seq,
			HTML: b.Snapshot(),
		}))
	}
}

// emit sends one frame. FlagFinal marks the snapshot that closes a drag.
func (b *Board) emit(ft protocol.FrameType, flags protocol.FrameFlags, payload []byte) {
	if b.closed || b.send == nil {
		return
	}
	if len(payload) > protocol.MaxPayloadSize {
		b.logger.Warn("frame too large, skipped", "type", ft, "size", len(payload))
		return
	}
	f := protocol.NewFrame(ft, payload)
	f.Flags = flags
	if err := b.send(f); err != nil {
		b.logger.Debug("send failed", "type", ft, "error", err)
	}
}
