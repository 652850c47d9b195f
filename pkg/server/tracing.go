package server

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/dragsort/pkg/dnd"
)

// TracerName is the instrumentation name of drag spans.
const TracerName = "github.com/vango-dev/dragsort/pkg/server"

// dragTracer keeps one span per drag in progress on a board.
type dragTracer struct {
	tracer trace.Tracer
	board  string
	spans  map[*dnd.Draggable]trace.Span
}

func newDragTracer(tp trace.TracerProvider, boardID string) *dragTracer {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &dragTracer{
		tracer: tp.Tracer(TracerName),
		board:  boardID,
		spans:  make(map[*dnd.Draggable]trace.Span),
	}
}

// start opens the span for d.
func (t *dragTracer) start(d *dnd.Draggable) {
	if old, ok := t.spans[d]; ok {
		old.End()
	}
	_, span := t.tracer.Start(context.Background(), "dnd.drag",
		trace.WithAttributes(
			attribute.String("dragsort.board", t.board),
			attribute.String("dragsort.element", d.Element().ID()),
		),
	)
	t.spans[d] = span
}

// end closes the span for d with the drag outcome.
func (t *dragTracer) end(d *dnd.Draggable, outcome, container string, index int) {
	span, ok := t.spans[d]
	if !ok {
		return
	}
	delete(t.spans, d)
	span.SetAttributes(
		attribute.String("dragsort.outcome", outcome),
		attribute.String("dragsort.container", container),
		attribute.Int("dragsort.index", index),
	)
	span.End()
}

// abort ends every open span. Used when a board closes.
func (t *dragTracer) abort() {
	for d, span := range t.spans {
		span.SetAttributes(attribute.String("dragsort.outcome", "aborted"))
		span.End()
		delete(t.spans, d)
	}
}
