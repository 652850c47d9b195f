package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/vango-dev/dragsort/pkg/dnd"
	"github.com/vango-dev/dragsort/pkg/protocol"
)

func newTestServer(t *testing.T, cfg *Config) (*Server, *httptest.Server) {
	t.Helper()
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func writeFrame(t *testing.T, conn *websocket.Conn, ft protocol.FrameType, payload []byte) {
	t.Helper()
	if err := conn.WriteMessage(websocket.BinaryMessage, protocol.NewFrame(ft, payload).Encode()); err != nil {
		t.Fatalf("WriteMessage() error = %v", err)
	}
}

func readFrame(t *testing.T, conn *websocket.Conn) *protocol.Frame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}
	f, err := protocol.DecodeFrame(msg)
	if err != nil {
		t.Fatalf("DecodeFrame() error = %v", err)
	}
	return f
}

func handshake(t *testing.T, conn *websocket.Conn, hello *protocol.Hello) *protocol.Welcome {
	t.Helper()
	writeFrame(t, conn, protocol.FrameHandshake, protocol.EncodeHello(hello))
	f := readFrame(t, conn)
	if f.Type != protocol.FrameHandshake {
		t.Fatalf("first frame = %s, want handshake", f.Type)
	}
	w, err := protocol.DecodeWelcome(f.Payload)
	if err != nil {
		t.Fatalf("DecodeWelcome() error = %v", err)
	}
	return w
}

func sendPointer(t *testing.T, conn *websocket.Conn, seq uint64, typ protocol.EventType, target string, x, y int64) {
	t.Helper()
	payload, err := protocol.EncodeEvent(protocol.NewPointerEvent(seq, typ, target, x, y))
	if err != nil {
		t.Fatal(err)
	}
	writeFrame(t, conn, protocol.FrameEvent, payload)
}

func TestWebSocketDrag(t *testing.T) {
	s, ts := newTestServer(t, nil)
	conn := dial(t, ts)

	w := handshake(t, conn, &protocol.Hello{Version: protocol.CurrentVersion, ViewportWidth: 1024})
	if w.Status != protocol.HandshakeOK || w.BoardID == "" {
		t.Fatalf("welcome = %+v", w)
	}
	if s.ActiveBoards() != 1 {
		t.Errorf("ActiveBoards() = %d, want 1", s.ActiveBoards())
	}

	sendPointer(t, conn, 1, protocol.EventMouseDown, "card-3", 50, 150)
	sendPointer(t, conn, 2, protocol.EventMouseMove, "", 450, 10)
	sendPointer(t, conn, 3, protocol.EventMouseUp, "", 450, 10)

	var names []string
	var completed *protocol.Signal
	for len(names) < 3 {
		f := readFrame(t, conn)
		if f.Type != protocol.FrameSignal {
			t.Fatalf("frame = %s, want signal", f.Type)
		}
		sig, err := protocol.DecodeSignal(f.Payload)
		if err != nil {
			t.Fatal(err)
		}
		names = append(names, sig.Name)
		if sig.Name == dnd.EventCompleted {
			completed = sig
		}
	}
	if strings.Join(names, ",") != "drag-started,drag-dragging,drag-completed" {
		t.Fatalf("signals = %v", names)
	}
	if completed.Element != "card-3" || completed.Container != "doing" || completed.Index != 0 {
		t.Errorf("completed = %+v", completed)
	}

	f := readFrame(t, conn)
	if f.Type != protocol.FrameSnapshot {
		t.Fatalf("frame = %s, want snapshot", f.Type)
	}
	snap, err := protocol.DecodeSnapshot(f.Payload)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Index(snap.HTML, `id="card-3"`) > strings.Index(snap.HTML, `id="card-4"`) {
		t.Error("card-3 should precede card-4 after the drop")
	}

	if got := testutil.ToFloat64(s.metrics.dragsCompleted); got != 1 {
		t.Errorf("drags_completed_total = %v", got)
	}
}

func TestWebSocketPingPong(t *testing.T) {
	_, ts := newTestServer(t, nil)
	conn := dial(t, ts)
	handshake(t, conn, &protocol.Hello{Version: protocol.CurrentVersion})

	writeFrame(t, conn, protocol.FrameControl, protocol.EncodeControl(protocol.NewPing(42)))
	f := readFrame(t, conn)
	ctl, err := protocol.DecodeControl(f.Payload)
	if err != nil {
		t.Fatal(err)
	}
	if ctl.Type != protocol.ControlPong || ctl.Timestamp != 42 {
		t.Errorf("control = %+v, want pong 42", ctl)
	}
}

func TestWebSocketProtocolErrors(t *testing.T) {
	s, ts := newTestServer(t, nil)
	conn := dial(t, ts)
	handshake(t, conn, &protocol.Hello{Version: protocol.CurrentVersion})

	tests := []struct {
		name   string
		send   func()
		code   protocol.ErrorCode
		reason string
	}{
		{
			name:   "bad frame type",
			send:   func() { conn.WriteMessage(websocket.BinaryMessage, []byte{0x7f, 0, 0, 0}) },
			code:   protocol.ErrInvalidFrame,
			reason: "frame",
		},
		{
			name:   "text message",
			send:   func() { conn.WriteMessage(websocket.TextMessage, []byte("hi")) },
			code:   protocol.ErrInvalidFrame,
			reason: "text",
		},
		{
			name:   "truncated event",
			send:   func() { writeFrame(t, conn, protocol.FrameEvent, []byte{0x01}) },
			code:   protocol.ErrInvalidEvent,
			reason: "event",
		},
		{
			name:   "unknown target",
			send:   func() { sendPointer(t, conn, 1, protocol.EventMouseMove, "ghost", 5, 5) },
			code:   protocol.ErrTargetUnknown,
			reason: "target",
		},
		{
			name:   "server-only frame",
			send:   func() { writeFrame(t, conn, protocol.FrameSnapshot, nil) },
			code:   protocol.ErrInvalidFrame,
			reason: "unexpected",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.send()
			f := readFrame(t, conn)
			if f.Type != protocol.FrameError {
				t.Fatalf("frame = %s, want error", f.Type)
			}
			em, err := protocol.DecodeErrorMessage(f.Payload)
			if err != nil {
				t.Fatal(err)
			}
			if em.Code != tt.code {
				t.Errorf("code = %s, want %s", em.Code, tt.code)
			}
			if got := testutil.ToFloat64(s.metrics.protocolErrors.WithLabelValues(tt.reason)); got != 1 {
				t.Errorf("protocol_errors_total{reason=%q} = %v, want 1", tt.reason, got)
			}
		})
	}

	// The connection survives protocol errors.
	writeFrame(t, conn, protocol.FrameControl, protocol.EncodeControl(protocol.NewPing(7)))
	if f := readFrame(t, conn); f.Type != protocol.FrameControl {
		t.Errorf("frame after errors = %s, want control", f.Type)
	}
}

func TestHandshakeRejected(t *testing.T) {
	tests := []struct {
		name   string
		send   func(*websocket.Conn)
		status protocol.HandshakeStatus
	}{
		{
			name: "version mismatch",
			send: func(c *websocket.Conn) {
				writeFrame(t, c, protocol.FrameHandshake,
					protocol.EncodeHello(&protocol.Hello{Version: protocol.Version{Major: 9}}))
			},
			status: protocol.HandshakeVersionMismatch,
		},
		{
			name: "event before hello",
			send: func(c *websocket.Conn) {
				sendPointer(t, c, 1, protocol.EventMouseDown, "card-1", 1, 1)
			},
			status: protocol.HandshakeInvalidFormat,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, ts := newTestServer(t, nil)
			conn := dial(t, ts)
			tt.send(conn)

			f := readFrame(t, conn)
			w, err := protocol.DecodeWelcome(f.Payload)
			if err != nil {
				t.Fatal(err)
			}
			if w.Status != tt.status {
				t.Errorf("status = %s, want %s", w.Status, tt.status)
			}
			if s.ActiveBoards() != 0 {
				t.Errorf("ActiveBoards() = %d, want 0", s.ActiveBoards())
			}
			if got := testutil.ToFloat64(s.metrics.protocolErrors.WithLabelValues("handshake")); got != 1 {
				t.Errorf("handshake errors = %v", got)
			}
		})
	}
}

func TestCrossOriginRejected(t *testing.T) {
	_, ts := newTestServer(t, nil)
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	header := http.Header{"Origin": []string{"http://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	if err == nil {
		t.Fatal("cross-origin dial should fail")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Errorf("response = %v, want 403", resp)
	}
}

func TestHTTPRoutes(t *testing.T) {
	_, ts := newTestServer(t, nil)

	get := func(path string) (*http.Response, string) {
		t.Helper()
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return resp, string(body)
	}

	resp, body := get("/")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, `id="card-1"`) {
		t.Errorf("GET / = %d %q", resp.StatusCode, body)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}

	if !strings.Contains(body, `<script src="/_dragsort/client.js"`) {
		t.Error("page should load the client script")
	}

	resp, body = get(ClientPath)
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "WebSocket") {
		t.Errorf("GET %s = %d", ClientPath, resp.StatusCode)
	}

	resp, body = get("/healthz")
	var health struct {
		Status string `json:"status"`
		Boards int    `json:"boards"`
	}
	if err := json.Unmarshal([]byte(body), &health); err != nil || health.Status != "ok" {
		t.Errorf("GET /healthz = %d %q", resp.StatusCode, body)
	}

	_, body = get("/metrics")
	for _, name := range []string{"dragsort_active_boards", "dragsort_drags_started_total"} {
		if !strings.Contains(body, name) {
			t.Errorf("/metrics missing %s", name)
		}
	}

	resp, _ = get("/nope")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("GET /nope = %d", resp.StatusCode)
	}
}

func TestNewNilConfig(t *testing.T) {
	s, err := New(nil)
	if err != nil {
		t.Fatalf("New(nil) error = %v", err)
	}
	cfg := s.Config()
	if cfg.Logger == nil || cfg.Registry == nil {
		t.Error("nil config should get a logger and a registry")
	}
	if cfg.Board.Page != DemoPage {
		t.Error("nil config should serve the demo page")
	}
	if cfg.Address != DefaultConfig().Address {
		t.Errorf("Address = %q", cfg.Address)
	}

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("GET /metrics = %d", rec.Code)
	}
}

func TestNewRejectsBadBoard(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Board.Elements = ".absent"
	_, err := New(cfg)
	if !stderrors.Is(err, dnd.ErrInvalidConfig) {
		t.Errorf("New() err = %v, want ErrInvalidConfig", err)
	}
}

func TestShutdownClosesBoards(t *testing.T) {
	s, ts := newTestServer(t, nil)
	conn := dial(t, ts)
	handshake(t, conn, &protocol.Hello{Version: protocol.CurrentVersion})

	if err := s.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	f := readFrame(t, conn)
	ctl, err := protocol.DecodeControl(f.Payload)
	if err != nil {
		t.Fatal(err)
	}
	if ctl.Type != protocol.ControlClose || ctl.Reason != protocol.CloseServerShutdown {
		t.Errorf("control = %+v, want close/server shutdown", ctl)
	}

	deadline := time.Now().Add(2 * time.Second)
	for s.ActiveBoards() != 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if s.ActiveBoards() != 0 {
		t.Errorf("ActiveBoards() = %d after shutdown", s.ActiveBoards())
	}
}

func TestSameOriginCheck(t *testing.T) {
	tests := []struct {
		origin string
		host   string
		want   bool
	}{
		{"", "example.com", true},
		{"http://example.com", "example.com", true},
		{"http://example.com:8080", "example.com:8080", true},
		{"http://evil.com", "example.com", false},
		{"://bad", "example.com", false},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/ws", nil)
		r.Host = tt.host
		if tt.origin != "" {
			r.Header.Set("Origin", tt.origin)
		}
		if got := SameOriginCheck(r); got != tt.want {
			t.Errorf("SameOriginCheck(%q, %q) = %v, want %v", tt.origin, tt.host, got, tt.want)
		}
	}

	allow := AllowOrigins("http://app.example")
	r := httptest.NewRequest(http.MethodGet, "/ws", nil)
	r.Host = "api.example"
	r.Header.Set("Origin", "http://app.example")
	if !allow(r) {
		t.Error("AllowOrigins should accept a listed origin")
	}
}
