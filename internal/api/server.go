package api

import (
	"context"
	"errors"
	"net/http"

	"CryptoSignals/internal/metrics"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
)

// Server is the HTTP front of the signal engine.
type Server struct {
	echo *echo.Echo
	addr string
	log  zerolog.Logger
}

// NewServer wires the middleware stack and routes for h.
func NewServer(addr string, h *Handler, m *metrics.Recorder, log zerolog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(Recover(log))
	e.Use(RequestLogging(log, m))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))

	h.RegisterRoutes(e)
	if m != nil {
		e.GET("/metrics", echo.WrapHandler(m.Handler()))
	}

	return &Server{echo: e, addr: addr, log: log.With().Str("component", "api").Logger()}
}

// Echo exposes the router, mainly for tests.
func (s *Server) Echo() *echo.Echo { return s.echo }

// Start serves in the background until Stop is called.
func (s *Server) Start() {
	go func() {
		s.log.Info().Str("addr", s.addr).Msg("http server listening")
		if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error().Err(err).Msg("http server stopped")
		}
	}()
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
