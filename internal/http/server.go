package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"roomchat/internal/api"
	"roomchat/internal/ws"
)

type Server struct {
	server *http.Server
	log    *slog.Logger
	wg     sync.WaitGroup
}

func NewServer(apiHandlers *api.API, wsServer *ws.Server, staticDir string, addr string, log *slog.Logger) *Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/", NewFileServerHandler(staticDir))

	mux.HandleFunc("GET /healthz", apiHandlers.HealthHandler)
	mux.HandleFunc("GET /api/rooms/{room}", apiHandlers.RoomHandler)

	// WebSocket endpoint
	mux.HandleFunc("GET /ws", wsServer.HandleConnections)

	if addr == "" {
		addr = ":3000"
	}

	return &Server{
		server: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		log: log,
	}
}

func (s *Server) Addr() string {
	return s.server.Addr
}

func (s *Server) Start() error {
	s.log.Info("server started", "addr", s.server.Addr)
	s.wg.Add(1)
	defer s.wg.Done()

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	defer s.wg.Wait()
	return s.server.Shutdown(ctx)
}
