package ws

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"roomchat/internal/session"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type Options struct {
	MaxMessageSize int64
	PingInterval   time.Duration
}

func (o Options) pongWait() time.Duration {
	return o.PingInterval * 10 / 9
}

type Server struct {
	ctx         context.Context
	hub         *Hub
	coordinator *session.Coordinator
	upgrader    *websocket.Upgrader
	opts        Options
	log         *slog.Logger
}

// NewServer returns the websocket endpoint. Connections are closed when ctx
// is done, since hijacked connections outlive http.Server.Shutdown.
func NewServer(ctx context.Context, hub *Hub, coordinator *session.Coordinator, opts Options, log *slog.Logger) *Server {
	return &Server{
		ctx:         ctx,
		hub:         hub,
		coordinator: coordinator,
		upgrader: &websocket.Upgrader{
			Subprotocols: Subprotocols,
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins for now
			},
		},
		opts: opts,
		log:  log,
	}
}

func (s *Server) HandleConnections(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("error upgrading to websocket", "remote_addr", r.RemoteAddr, "error", err)
		return
	}

	if s.opts.MaxMessageSize > 0 {
		conn.SetReadLimit(s.opts.MaxMessageSize)
	}
	if s.opts.PingInterval > 0 {
		wait := s.opts.pongWait()
		_ = conn.SetReadDeadline(time.Now().Add(wait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wait))
		})
	}

	connID := uuid.NewString()
	codec := CodecFor(conn.Subprotocol())
	log := s.log.With("remote_addr", r.RemoteAddr)
	log.Debug("connection opened", "conn_id", connID, "protocol", codec.Name())

	c := NewConnection(s.hub, conn, connID, s.coordinator.NewSession(connID), codec, s.opts.PingInterval, log)
	err = c.Handle(s.ctx)
	switch {
	case err == nil, isExpectedCloseError(err):
		log.Debug("connection closed", "conn_id", connID)
	default:
		log.Warn("connection closed with error", "conn_id", connID, "error", err)
	}
}

// isExpectedCloseError reports errors that merely mean the peer went away.
func isExpectedCloseError(err error) bool {
	if websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseNoStatusReceived,
		websocket.CloseAbnormalClosure) {
		return true
	}
	return errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed)
}
