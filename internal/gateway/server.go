// Package gateway exposes the engine to browser clients: one websocket per
// session streams aggregated specs out and accepts action invocations in.
package gateway

import (
	"net/http"

	"genui/internal/orchestrator"
	"genui/internal/registry"
)

type Server struct {
	engine *orchestrator.Engine
	reg    *registry.Registry
}

func New(engine *orchestrator.Engine, reg *registry.Registry) *Server {
	return &Server{engine: engine, reg: reg}
}

func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws/session", s.HandleSessionWS)
	return mux
}
