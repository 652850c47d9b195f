package server

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/vango-dev/dragsort/pkg/protocol"
)

type recordingProvider struct {
	noop.TracerProvider
	tracer *recordingTracer
}

func (p *recordingProvider) Tracer(string, ...trace.TracerOption) trace.Tracer {
	return p.tracer
}

type recordingTracer struct {
	noop.Tracer
	spans []*recordingSpan
}

func (t *recordingTracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	cfg := trace.NewSpanStartConfig(opts...)
	s := &recordingSpan{name: name, attrs: cfg.Attributes()}
	t.spans = append(t.spans, s)
	return trace.ContextWithSpan(ctx, s), s
}

type recordingSpan struct {
	noop.Span
	name  string
	attrs []attribute.KeyValue
	ended bool
}

func (s *recordingSpan) SetAttributes(kv ...attribute.KeyValue) {
	s.attrs = append(s.attrs, kv...)
}

func (s *recordingSpan) End(...trace.SpanEndOption) {
	s.ended = true
}

func (s *recordingSpan) attr(key string) attribute.Value {
	for _, kv := range s.attrs {
		if string(kv.Key) == key {
			return kv.Value
		}
	}
	return attribute.Value{}
}

func tracedBoard(t *testing.T) (*Board, *recordingTracer) {
	t.Helper()
	tracer := &recordingTracer{}
	b, err := NewBoard(BoardOptions{
		ID:             "traced",
		Config:         DefaultConfig().Board,
		TracerProvider: &recordingProvider{tracer: tracer},
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(b.Close)
	return b, tracer
}

func TestDragSpan(t *testing.T) {
	b, tracer := tracedBoard(t)

	pointer(t, b, protocol.EventMouseDown, "card-2", 50, 90)
	if len(tracer.spans) != 1 {
		t.Fatalf("spans = %d, want 1", len(tracer.spans))
	}
	span := tracer.spans[0]
	if span.name != "dnd.drag" || span.ended {
		t.Fatalf("span = %+v", span)
	}
	if got := span.attr("dragsort.element").AsString(); got != "card-2" {
		t.Errorf("element attr = %q", got)
	}
	if got := span.attr("dragsort.board").AsString(); got != "traced" {
		t.Errorf("board attr = %q", got)
	}

	pointer(t, b, protocol.EventMouseMove, "", 700, 50)
	pointer(t, b, protocol.EventMouseUp, "", 700, 50)

	if !span.ended {
		t.Fatal("span should end with the drag")
	}
	if got := span.attr("dragsort.outcome").AsString(); got != "completed" {
		t.Errorf("outcome = %q", got)
	}
	if got := span.attr("dragsort.container").AsString(); got != "done" {
		t.Errorf("container = %q", got)
	}
	if got := span.attr("dragsort.index").AsInt64(); got != 0 {
		t.Errorf("index = %d", got)
	}
}

func TestDragSpanCanceled(t *testing.T) {
	b, tracer := tracedBoard(t)

	pointer(t, b, protocol.EventMouseDown, "card-1", 50, 30)
	pointer(t, b, protocol.EventMouseUp, "", 50, 30)

	if len(tracer.spans) != 1 || !tracer.spans[0].ended {
		t.Fatalf("spans = %+v", tracer.spans)
	}
	if got := tracer.spans[0].attr("dragsort.outcome").AsString(); got != "canceled" {
		t.Errorf("outcome = %q", got)
	}
}

func TestDragTracerAbort(t *testing.T) {
	b, tracer := tracedBoard(t)
	pointer(t, b, protocol.EventMouseDown, "card-1", 50, 30)

	// abort ends whatever is still open.
	b.tracer.abort()
	if !tracer.spans[0].ended {
		t.Error("abort should end open spans")
	}
	if got := tracer.spans[0].attr("dragsort.outcome").AsString(); got != "aborted" {
		t.Errorf("outcome = %q", got)
	}
	if len(b.tracer.spans) != 0 {
		t.Errorf("open spans = %d", len(b.tracer.spans))
	}
}
