package gateway

import (
	"embed"
	"net/http"

	"persona/internal/agent"
	"persona/internal/session"
)

//go:embed web/index.html
var webFS embed.FS

type Server struct {
	runner   agent.Runner
	sessions *session.Manager
	mux      *http.ServeMux
}

func NewServer(runner agent.Runner, sessions *session.Manager) *Server {
	s := &Server{
		runner:   runner,
		sessions: sessions,
		mux:      http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("POST /v1/chat", s.handleChat)
	s.mux.HandleFunc("GET /v1/sessions", s.handleListSessions)
	s.mux.HandleFunc("GET /v1/sessions/{id}", s.handleGetSession)
	s.mux.HandleFunc("GET /healthz", s.handleHealthz)
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s.mux)
}
