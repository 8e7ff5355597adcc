package api

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"CryptoSignals/internal/metrics"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Recover turns handler panics into a 500 JSON body.
func Recover(log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					perr, ok := r.(error)
					if !ok {
						perr = fmt.Errorf("%v", r)
					}
					log.Error().Err(perr).Bytes("stack", debug.Stack()).Msg("panic in handler")
					err = c.JSON(http.StatusInternalServerError, map[string]any{
						"status":  http.StatusInternalServerError,
						"message": "Internal Server Error",
					})
				}
			}()
			return next(c)
		}
	}
}

// RequestLogging logs each request and records it in m when set.
func RequestLogging(log zerolog.Logger, m *metrics.Recorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			took := time.Since(start)
			status := c.Response().Status
			if m != nil {
				m.RecordHTTPRequest(c.Path(), req.Method, status, took)
			}
			log.Debug().
				Str("method", req.Method).
				Str("uri", req.RequestURI).
				Str("remote", c.RealIP()).
				Int("status", status).
				Dur("took", took).
				Msg("request")
			return nil
		}
	}
}
