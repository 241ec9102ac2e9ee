// Package api exposes the conversion service over HTTP.
package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"markdownd/internal/config"
	"markdownd/internal/converter"
	"markdownd/internal/monitoring"
)

const (
	serviceName    = "markdownd"
	serviceVersion = "0.2.0"
)

// FileConverter is satisfied by converter.Adapter.
type FileConverter interface {
	Convert(ctx context.Context, r io.Reader, filename string) (*converter.Result, int64, error)
}

// URLConverter is satisfied by urlconv.Service.
type URLConverter interface {
	Convert(ctx context.Context, url string) (*converter.Result, error)
}

// Server holds the dependencies for the HTTP server.
type Server struct {
	config     *config.Config
	router     http.Handler
	httpServer *http.Server
	files      FileConverter
	urls       URLConverter
	metrics    *monitoring.Metrics
	logger     *zap.Logger
}

func NewServer(cfg *config.Config, files FileConverter, urls URLConverter, m *monitoring.Metrics, l *zap.Logger) *Server {
	if l == nil {
		l = zap.NewNop()
	}
	s := &Server{
		config:  cfg,
		files:   files,
		urls:    urls,
		metrics: m,
		logger:  l,
	}
	s.router = s.setupRouter()
	return s
}

func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Server.Port),
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 120 * time.Second,
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
