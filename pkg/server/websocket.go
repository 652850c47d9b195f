package server

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/vango-dev/dragsort/pkg/dom"
	"github.com/vango-dev/dragsort/pkg/protocol"
)

// wsConn serializes writes to a WebSocket and closes it once.
type wsConn struct {
	conn         *websocket.Conn
	writeTimeout time.Duration

	writeMu   sync.Mutex
	closeOnce sync.Once
	done      chan struct{}
}

func newWSConn(conn *websocket.Conn, writeTimeout time.Duration) *wsConn {
	return &wsConn{
		conn:         conn,
		writeTimeout: writeTimeout,
		done:         make(chan struct{}),
	}
}

// send writes one frame as a binary message.
func (c *wsConn) send(f *protocol.Frame) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	select {
	case <-c.done:
		return websocket.ErrCloseSent
	default:
	}
	c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	return c.conn.WriteMessage(websocket.BinaryMessage, f.Encode())
}

// close sends a Close control frame, then closes the socket.
func (c *wsConn) close(reason protocol.CloseReason, message string) {
	c.closeOnce.Do(func() {
		_ = c.send(protocol.NewFrame(protocol.FrameControl,
			protocol.EncodeControl(protocol.NewClose(reason, message))))
		c.writeMu.Lock()
		close(c.done)
		c.writeMu.Unlock()
		c.conn.Close()
	})
}

// shutdown closes the connection on server shutdown. The read loop sees
// the closed socket and tears the board down.
func (c *wsConn) shutdown() {
	c.close(protocol.CloseServerShutdown, "server shutting down")
}

// handleWebSocket upgrades the request and runs one board until the
// connection ends.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	logger := s.logger.With("request_id", middleware.GetReqID(r.Context()))

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied with an HTTP error.
		logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	conn.SetReadLimit(s.config.MaxMessageSize)
	c := newWSConn(conn, s.config.WriteTimeout)

	hello, err := s.handshake(c)
	if err != nil {
		logger.Info("handshake rejected", "error", err)
		c.close(protocol.CloseError, err.Error())
		return
	}

	viewport := s.config.ViewportWidth
	if hello.ViewportWidth > 0 {
		viewport = float64(hello.ViewportWidth)
	}

	id := newBoardID()
	board, err := NewBoard(BoardOptions{
		ID:             id,
		Config:         s.config.Board,
		ViewportWidth:  viewport,
		Scroll:         dom.Point{X: float64(hello.ScrollX), Y: float64(hello.ScrollY)},
		Metrics:        s.metrics,
		TracerProvider: s.config.TracerProvider,
		Send:           c.send,
		Logger:         s.config.Logger,
	})
	if err != nil {
		logger.Error("board setup failed", "error", err)
		s.sendWelcome(c, protocol.HandshakeInternalError, "")
		c.close(protocol.CloseError, "board setup failed")
		return
	}

	s.track(c)
	defer func() {
		board.Close()
		s.untrack(c)
		c.close(protocol.CloseNormal, "")
		logger.Info("board disconnected", "board", id)
	}()

	if err := s.sendWelcome(c, protocol.HandshakeOK, id); err != nil {
		logger.Warn("welcome failed", "error", err)
		return
	}
	logger.Info("board connected", "board", id, "viewport", board.Engine().ViewportWidth())

	go s.pingLoop(c)
	s.readLoop(c, board)
}

// handshake reads the client's Hello. Rejections are answered with a
// Welcome carrying the failure status.
func (s *Server) handshake(c *wsConn) (*protocol.Hello, error) {
	c.conn.SetReadDeadline(time.Now().Add(s.config.HandshakeTimeout))
	mt, msg, err := c.conn.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("read hello: %w", err)
	}

	fail := func(status protocol.HandshakeStatus, err error) (*protocol.Hello, error) {
		s.metrics.protocolErrors.WithLabelValues("handshake").Inc()
		s.sendWelcome(c, status, "")
		return nil, err
	}

	if mt != websocket.BinaryMessage {
		return fail(protocol.HandshakeInvalidFormat, stderrors.New("hello is not a binary message"))
	}
	frame, err := protocol.DecodeFrame(msg)
	if err != nil {
		return fail(protocol.HandshakeInvalidFormat, fmt.Errorf("decode hello frame: %w", err))
	}
	if frame.Type != protocol.FrameHandshake {
		return fail(protocol.HandshakeInvalidFormat, fmt.Errorf("expected handshake frame, got %s", frame.Type))
	}
	hello, err := protocol.DecodeHello(frame.Payload)
	if err != nil {
		return fail(protocol.HandshakeInvalidFormat, fmt.Errorf("decode hello: %w", err))
	}
	if !hello.Version.Compatible() {
		return fail(protocol.HandshakeVersionMismatch,
			fmt.Errorf("client protocol %d.%d is not compatible", hello.Version.Major, hello.Version.Minor))
	}
	return hello, nil
}

func (s *Server) sendWelcome(c *wsConn, status protocol.HandshakeStatus, boardID string) error {
	return c.send(protocol.NewFrame(protocol.FrameHandshake, protocol.EncodeWelcome(&protocol.Welcome{
		Status:     status,
		BoardID:    boardID,
		ServerTime: uint64(time.Now().UnixMilli()),
	})))
}

// readLoop handles frames in arrival order until the connection ends.
func (s *Server) readLoop(c *wsConn, board *Board) {
	for {
		c.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
		mt, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				board.logger.Warn("read error", "error", err)
			}
			return
		}

		if mt != websocket.BinaryMessage {
			s.reject(c, board, "text", protocol.ErrInvalidFrame, "binary frames only")
			continue
		}

		frame, err := protocol.DecodeFrame(msg)
		if err != nil {
			s.reject(c, board, "frame", protocol.ErrInvalidFrame, err.Error())
			continue
		}

		switch frame.Type {
		case protocol.FrameEvent:
			ev, err := protocol.DecodeEvent(frame.Payload)
			if err != nil {
				s.reject(c, board, "event", protocol.ErrInvalidEvent, err.Error())
				continue
			}
			if err := board.HandleEvent(ev); err != nil {
				var em *protocol.ErrorMessage
				if stderrors.As(err, &em) {
					s.reject(c, board, "target", em.Code, em.Message)
				} else {
					s.reject(c, board, "event", protocol.ErrServerError, err.Error())
				}
			}

		case protocol.FrameControl:
			ctl, err := protocol.DecodeControl(frame.Payload)
			if err != nil {
				s.reject(c, board, "control", protocol.ErrInvalidFrame, err.Error())
				continue
			}
			switch ctl.Type {
			case protocol.ControlPing:
				c.send(protocol.NewFrame(protocol.FrameControl,
					protocol.EncodeControl(protocol.NewPong(ctl.Timestamp))))
			case protocol.ControlClose:
				board.logger.Debug("client closed", "reason", ctl.Reason, "message", ctl.Message)
				return
			}

		default:
			s.reject(c, board, "unexpected", protocol.ErrInvalidFrame,
				"unexpected frame type "+frame.Type.String())
		}
	}
}

// reject counts a protocol error and reports it to the client.
func (s *Server) reject(c *wsConn, board *Board, reason string, code protocol.ErrorCode, message string) {
	s.metrics.protocolErrors.WithLabelValues(reason).Inc()
	board.logger.Debug("protocol error", "reason", reason, "code", code, "message", message)
	c.send(protocol.NewFrame(protocol.FrameError,
		protocol.EncodeErrorMessage(protocol.NewError(code, message))))
}

// pingLoop pings the client until the connection closes.
func (s *Server) pingLoop(c *wsConn) {
	ticker := time.NewTicker(s.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			ping := protocol.NewPing(uint64(time.Now().UnixMilli()))
			if err := c.send(protocol.NewFrame(protocol.FrameControl, protocol.EncodeControl(ping))); err != nil {
				return
			}
		}
	}
}
