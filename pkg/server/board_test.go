package server

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/vango-dev/dragsort/internal/errors"
	"github.com/vango-dev/dragsort/pkg/dnd"
	"github.com/vango-dev/dragsort/pkg/dom"
	"github.com/vango-dev/dragsort/pkg/protocol"
)

// Demo board geometry at the default viewport:
//
//	todo  x 0-300    card-1 y 8-68, card-2 y 68-128, card-3 y 128-188
//	doing x 300-600  card-4 y 8-68
//	done  x 600-900  empty
//
// All columns are 400 tall.

type frameLog struct {
	frames []*protocol.Frame
}

func (l *frameLog) send(f *protocol.Frame) error {
	l.frames = append(l.frames, f)
	return nil
}

func (l *frameLog) signals(t *testing.T) []*protocol.Signal {
	t.Helper()
	var out []*protocol.Signal
	for _, f := range l.frames {
		if f.Type != protocol.FrameSignal {
			continue
		}
		sig, err := protocol.DecodeSignal(f.Payload)
		if err != nil {
			t.Fatalf("DecodeSignal() error = %v", err)
		}
		out = append(out, sig)
	}
	return out
}

func (l *frameLog) names(t *testing.T) []string {
	t.Helper()
	var out []string
	for _, s := range l.signals(t) {
		out = append(out, s.Name)
	}
	return out
}

func newTestBoard(t *testing.T, log *frameLog) *Board {
	t.Helper()
	b, err := NewBoard(BoardOptions{
		ID:      "test",
		Config:  DefaultConfig().Board,
		Metrics: NewMetrics(prometheus.NewRegistry()),
		Send:    log.send,
	})
	if err != nil {
		t.Fatalf("NewBoard() error = %v", err)
	}
	t.Cleanup(b.Close)
	return b
}

func pointer(t *testing.T, b *Board, typ protocol.EventType, target string, x, y int64) error {
	t.Helper()
	return b.HandleEvent(protocol.NewPointerEvent(0, typ, target, x, y))
}

func TestBoardDragAcrossColumns(t *testing.T) {
	log := &frameLog{}
	b := newTestBoard(t, log)

	if b.Group().Len() != 4 {
		t.Fatalf("Group().Len() = %d, want 4", b.Group().Len())
	}

	if err := pointer(t, b, protocol.EventMouseDown, "card-1", 50, 30); err != nil {
		t.Fatal(err)
	}
	if err := pointer(t, b, protocol.EventMouseMove, "", 700, 100); err != nil {
		t.Fatal(err)
	}
	if err := pointer(t, b, protocol.EventMouseUp, "", 700, 100); err != nil {
		t.Fatal(err)
	}

	want := []string{dnd.EventStarted, dnd.EventDragging, dnd.EventCompleted}
	if got := log.names(t); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("signals = %v, want %v", got, want)
	}

	sigs := log.signals(t)
	if sigs[1].Container != "done" || sigs[1].X != 700 || sigs[1].Y != 100 {
		t.Errorf("dragging signal = %+v", sigs[1])
	}
	if sigs[2].Element != "card-1" || sigs[2].Container != "done" || sigs[2].Index != 0 {
		t.Errorf("completed signal = %+v", sigs[2])
	}
	for i, s := range sigs {
		if s.Seq != uint64(i+1) {
			t.Errorf("signal %d seq = %d", i, s.Seq)
		}
	}

	last := log.frames[len(log.frames)-1]
	if last.Type != protocol.FrameSnapshot {
		t.Fatalf("last frame = %s, want snapshot", last.Type)
	}
	for _, f := range log.frames {
		if final := f.Flags.Has(protocol.FlagFinal); final != (f == last) {
			t.Errorf("%s frame final = %v", f.Type, final)
		}
	}
	snap, err := protocol.DecodeSnapshot(last.Payload)
	if err != nil {
		t.Fatal(err)
	}
	if snap.Seq != 4 {
		t.Errorf("snapshot seq = %d, want 4", snap.Seq)
	}
	done := strings.Index(snap.HTML, `id="done"`)
	card := strings.Index(snap.HTML, `id="card-1"`)
	if done < 0 || card < done {
		t.Errorf("card-1 should render inside #done:\n%s", snap.HTML)
	}
	if snap.HTML != b.Snapshot() {
		t.Error("snapshot frame differs from Snapshot()")
	}

	if got := testutil.ToFloat64(b.metrics.dragsStarted); got != 1 {
		t.Errorf("drags_started_total = %v", got)
	}
	if got := testutil.ToFloat64(b.metrics.dragsCompleted); got != 1 {
		t.Errorf("drags_completed_total = %v", got)
	}
	if got := testutil.ToFloat64(b.metrics.moves); got != 1 {
		t.Errorf("moves_total = %v", got)
	}
}

func TestBoardPressByHitTest(t *testing.T) {
	log := &frameLog{}
	b := newTestBoard(t, log)

	// No target id: the board finds card-2 under the pointer.
	if err := pointer(t, b, protocol.EventMouseDown, "", 100, 90); err != nil {
		t.Fatal(err)
	}
	d := b.Group().Dragging()
	if d == nil || d.Element().ID() != "card-2" {
		t.Fatalf("Dragging() = %v, want card-2", d)
	}
}

func TestBoardReleaseInPlaceCancels(t *testing.T) {
	log := &frameLog{}
	b := newTestBoard(t, log)

	pointer(t, b, protocol.EventMouseDown, "card-4", 350, 30)
	pointer(t, b, protocol.EventMouseUp, "card-4", 350, 30)

	sigs := log.signals(t)
	if len(sigs) != 2 || sigs[1].Name != dnd.EventCanceled {
		t.Fatalf("signals = %v", log.names(t))
	}
	if sigs[1].Container != "doing" || sigs[1].Index != 0 {
		t.Errorf("canceled signal = %+v", sigs[1])
	}
	if got := testutil.ToFloat64(b.metrics.dragsCanceled); got != 1 {
		t.Errorf("drags_canceled_total = %v", got)
	}
	if log.frames[len(log.frames)-1].Type != protocol.FrameSnapshot {
		t.Error("canceled drag should be followed by a snapshot")
	}
}

func TestBoardUnknownTarget(t *testing.T) {
	log := &frameLog{}
	b := newTestBoard(t, log)

	err := pointer(t, b, protocol.EventMouseMove, "nope", 10, 10)
	var em *protocol.ErrorMessage
	if !stderrors.As(err, &em) || em.Code != protocol.ErrTargetUnknown {
		t.Fatalf("err = %v, want target unknown", err)
	}

	// The press still reaches card-1 through hit-testing.
	pointer(t, b, protocol.EventMouseDown, "nope", 50, 30)
	if d := b.Group().Dragging(); d == nil || d.Element().ID() != "card-1" {
		t.Errorf("Dragging() = %v, want card-1", d)
	}
}

func TestBoardViewportEvents(t *testing.T) {
	b := newTestBoard(t, &frameLog{})

	err := b.HandleEvent(&protocol.Event{
		Type:     protocol.EventScroll,
		Viewport: &protocol.ViewportPayload{X: 0, Y: 120},
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := b.Engine().ScrollOffset(); got != (dom.Point{Y: 120}) {
		t.Errorf("ScrollOffset() = %+v", got)
	}

	err = b.HandleEvent(&protocol.Event{
		Type:     protocol.EventResize,
		Viewport: &protocol.ViewportPayload{X: 640, Y: 480},
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := b.Engine().ViewportWidth(); got != 640 {
		t.Errorf("ViewportWidth() = %v, want 640", got)
	}

	err = b.HandleEvent(&protocol.Event{Type: protocol.EventScroll})
	var em *protocol.ErrorMessage
	if !stderrors.As(err, &em) || em.Code != protocol.ErrInvalidEvent {
		t.Errorf("scroll without payload err = %v", err)
	}
}

func TestBoardCloseReleasesDrag(t *testing.T) {
	log := &frameLog{}
	b := newTestBoard(t, log)

	pointer(t, b, protocol.EventMouseDown, "card-1", 50, 30)
	pointer(t, b, protocol.EventMouseMove, "", 700, 100)
	sent := len(log.frames)

	b.Close()
	if !b.Closed() {
		t.Fatal("Closed() = false")
	}
	if len(log.frames) != sent {
		t.Errorf("closed board sent %d more frames", len(log.frames)-sent)
	}
	if got := testutil.ToFloat64(b.metrics.dragsCompleted); got != 1 {
		t.Errorf("close should release the drag at its slot, completed = %v", got)
	}
	if parent := b.Document().GetElementByID("card-1").Parent(); parent.ID() != "done" {
		t.Errorf("card-1 parent = %s, want done", parent.ID())
	}

	err := pointer(t, b, protocol.EventMouseDown, "card-2", 50, 90)
	var em *protocol.ErrorMessage
	if !stderrors.As(err, &em) || em.Code != protocol.ErrBoardClosed {
		t.Errorf("event after close err = %v", err)
	}
	b.Close()
}

func TestNewBoardErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  BoardConfig
		code string
	}{
		{"bad selector", BoardConfig{Elements: "[["}, "E206"},
		{"no match", BoardConfig{Elements: ".missing"}, "E209"},
		{"no containers", BoardConfig{Elements: "[data-draggable]", Containers: ".missing"}, "E205"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBoard(BoardOptions{ID: "x", Config: tt.cfg})
			if !stderrors.Is(err, dnd.ErrInvalidConfig) {
				t.Fatalf("err = %v, want ErrInvalidConfig", err)
			}
			if errors.Code(err) != tt.code {
				t.Errorf("code = %q, want %s", errors.Code(err), tt.code)
			}
		})
	}
}

func TestBoardPlaceholderAndClasses(t *testing.T) {
	log := &frameLog{}
	cfg := DefaultConfig().Board
	cfg.Placeholder = `<div class="drop-here"></div>`
	b, err := NewBoard(BoardOptions{ID: "p", Config: cfg, Send: log.send})
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	pointer(t, b, protocol.EventMouseDown, "card-1", 50, 30)
	pointer(t, b, protocol.EventMouseMove, "", 450, 50)

	ph := b.Group().Dragging().Placeholder()
	if ph == nil || ph.Parent() == nil || ph.Parent().ID() != "doing" {
		t.Fatalf("placeholder should sit in #doing, got %v", ph)
	}
	if !b.Document().GetElementByID("doing").HasClass("hovering") {
		t.Error("#doing should carry the hovering class")
	}
	if proxy := b.Group().Dragging().Proxy(); proxy == nil || !proxy.HasClass("dragging") {
		t.Error("proxy should carry the dragging class")
	}
}
