package api

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nerrad567/pinhub-core/internal/infrastructure/config"
	"github.com/nerrad567/pinhub-core/internal/infrastructure/logging"
	"github.com/nerrad567/pinhub-core/internal/session"
)

// WebSocket transport errors.
var (
	// ErrTransportClosed indicates a send on a closed transport.
	ErrTransportClosed = errors.New("api: transport closed")

	// ErrSendBufferFull indicates the client is too slow to drain its
	// outbound buffer; the frame is dropped.
	ErrSendBufferFull = errors.New("api: send buffer full")
)

// defaultSendBuffer is the outbound frame buffer size used when the
// config leaves it unset.
const defaultSendBuffer = 64

// upgrader configures the WebSocket upgrader.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		// Origin checking is handled by CORS middleware
		return true
	},
}

// wsTransport adapts a WebSocket connection to the session.Transport
// interface. Outbound frames pass through a buffered channel drained by
// writePump; a slow client drops frames rather than stalling delivery.
type wsTransport struct {
	conn      *websocket.Conn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
	logger    *logging.Logger
}

func newWSTransport(conn *websocket.Conn, buffer int, logger *logging.Logger) *wsTransport {
	if buffer <= 0 {
		buffer = defaultSendBuffer
	}
	return &wsTransport{
		conn:   conn,
		send:   make(chan []byte, buffer),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Send queues a binary frame for delivery. Never blocks: a closed
// transport or a full buffer returns an error and the frame is dropped.
func (t *wsTransport) Send(frame []byte) error {
	select {
	case <-t.done:
		return ErrTransportClosed
	default:
	}

	select {
	case t.send <- frame:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// Close tears the transport down. Safe to call more than once; the
// registry calls it when a newer hardware transport displaces this one.
func (t *wsTransport) Close() error {
	t.closeOnce.Do(func() {
		close(t.done)
		//nolint:errcheck // Best-effort close of the underlying connection
		t.conn.Close()
	})
	return nil
}

// writePump drains the send buffer onto the connection and keeps the
// client alive with protocol-level pings. Exits when the transport
// closes or a write fails.
func (t *wsTransport) writePump(cfg config.WebSocketConfig) {
	pingInterval := time.Duration(cfg.PingInterval) * time.Second
	writeWait := time.Duration(cfg.PongTimeout) * time.Second
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		//nolint:errcheck // Transport teardown is idempotent
		t.Close()
	}()

	for {
		select {
		case frame := <-t.send:
			//nolint:errcheck // Best-effort deadline; write error caught below
			t.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := t.conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			//nolint:errcheck // Best-effort deadline; ping error caught below
			t.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := t.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-t.done:
			//nolint:errcheck // Best-effort close message
			t.conn.WriteMessage(websocket.CloseMessage, nil)
			return
		}
	}
}

// handleHardwareWS attaches a hardware transport. At most one hardware
// transport is live per user; a reconnect displaces the previous one.
func (s *Server) handleHardwareWS(w http.ResponseWriter, r *http.Request) {
	s.serveWS(w, r, session.Hardware)
}

// handleAppWS attaches an app transport. Users may hold several at once.
func (s *Server) handleAppWS(w http.ResponseWriter, r *http.Request) {
	s.serveWS(w, r, session.App)
}

// serveWS authenticates the token, upgrades the connection and registers
// the resulting transport with the session registry.
func (s *Server) serveWS(w http.ResponseWriter, r *http.Request, kind session.Kind) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeUnauthorized(w, "token query parameter is required")
		return
	}

	user, projectID, err := s.profiles.ResolveToken(token)
	if err != nil {
		writeUnauthorized(w, "invalid token")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	t := newWSTransport(conn, s.wsCfg.SendBuffer, s.logger)
	s.sessions.Register(user.ID, kind, t)
	s.logger.Info("transport attached",
		"user_id", user.ID,
		"project_id", projectID,
		"kind", kind.String(),
	)

	go t.writePump(s.wsCfg)
	go s.readLoop(user.ID, t)
}

// readLoop drains inbound messages until the connection drops, then
// detaches the transport. Inbound frames are not interpreted; the live
// transports exist to receive pushed state.
func (s *Server) readLoop(userID string, t *wsTransport) {
	defer func() {
		s.sessions.Unregister(userID, t)
		//nolint:errcheck // Transport teardown is idempotent
		t.Close()
		s.logger.Info("transport detached", "user_id", userID)
	}()

	t.conn.SetReadLimit(int64(s.wsCfg.MaxMessageSize))
	pingInterval := time.Duration(s.wsCfg.PingInterval) * time.Second
	pongWait := time.Duration(s.wsCfg.PongTimeout) * time.Second
	//nolint:errcheck // Best-effort deadline on connection setup
	t.conn.SetReadDeadline(time.Now().Add(pingInterval + pongWait))
	t.conn.SetPongHandler(func(string) error {
		return t.conn.SetReadDeadline(time.Now().Add(pingInterval + pongWait))
	})

	for {
		if _, _, err := t.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("websocket read error", "user_id", userID, "error", err)
			}
			return
		}
		// Any client message resets the read deadline.
		//nolint:errcheck // Best-effort deadline reset
		t.conn.SetReadDeadline(time.Now().Add(pingInterval + pongWait))
	}
}
