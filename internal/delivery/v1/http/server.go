package http

import (
	"context"
	"net/http"

	"github.com/DRSN-tech/pukkaprice-backend/internal/cfg"
)

// maxHeaderBytes ограничивает заголовки. Тело multipart ограничивается отдельно, в ProductHandler.
const maxHeaderBytes = 64 << 10

// Server — HTTP-сервер каталога. IdleTimeout берётся из KEEP_ALIVE.
type Server struct {
	httpServer *http.Server
}

func NewServer(handler http.Handler, cfg *cfg.HTTPConfig) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           handler,
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
			MaxHeaderBytes:    maxHeaderBytes,
		},
	}
}

func (s *Server) Run() error {
	return s.httpServer.ListenAndServe()
}

// Stop перестаёт принимать соединения и ждёт завершения активных запросов,
// в том числе загрузок изображений.
func (s *Server) Stop(ctx context.Context) error {
	s.httpServer.SetKeepAlivesEnabled(false)
	return s.httpServer.Shutdown(ctx)
}
