package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"stockify/internal/config"
	"stockify/internal/handlers"
	"stockify/internal/middleware"
	"stockify/internal/observability/metrics"
)

type HTTPServer struct {
	engine *gin.Engine
	server *http.Server
	log    zerolog.Logger
	cfg    *config.AppConfig
}

// NewEngine builds the router with the global middleware chain. Errors is
// the innermost global middleware so every other layer sees the final
// status.
func NewEngine(cfg *config.AppConfig, log zerolog.Logger, m *metrics.Metrics, handlerSet handlers.HandlerSet) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.RedirectTrailingSlash = true
	engine.RedirectFixedPath = true
	engine.MaxMultipartMemory = cfg.Storage.MaxUploadBytes

	engine.Use(
		middleware.RequestID(),
		middleware.Logger(log),
		middleware.Recovery(log),
		middleware.Metrics(m),
		middleware.CORS(cfg.AllowCORSOrigins),
		middleware.Timeout(cfg.HTTP.RequestTimeout),
		middleware.Errors(log),
	)

	handlerSet.Register(engine)
	return engine
}

func NewHTTPServer(cfg *config.AppConfig, log zerolog.Logger, m *metrics.Metrics, handlerSet handlers.HandlerSet) *HTTPServer {
	engine := NewEngine(cfg, log, m, handlerSet)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	return &HTTPServer{
		engine: engine,
		server: srv,
		log:    log,
		cfg:    cfg,
	}
}

func (s *HTTPServer) Start() error {
	s.log.Info().
		Str("addr", s.server.Addr).
		Msg("http server starting")

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("listen and serve: %w", err)
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("http server shutting down")
	return s.server.Shutdown(ctx)
}
