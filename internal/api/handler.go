package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"CryptoSignals/internal/store"
	"CryptoSignals/internal/tracker"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// ScanTrigger starts an on-demand scan cycle. It reports false when the request
// was folded into a cycle already in flight.
type ScanTrigger interface {
	Trigger() bool
}

// TestSender pushes a test notification to the mobile topics.
type TestSender interface {
	Enabled() bool
	SendTest(ctx context.Context) error
	Topics() []string
}

// HistoryQuery is the query string of GET /history.
type HistoryQuery struct {
	Limit int `query:"limit" default:"50" validate:"min=1,max=50"`
}

// Handler serves the read model and the scan trigger.
type Handler struct {
	Store   *store.Store
	Tracker *tracker.Tracker
	Scans   ScanTrigger
	Push    TestSender
	Now     func() time.Time

	// WSPollInterval is how often a websocket client checks the store version.
	WSPollInterval time.Duration

	log zerolog.Logger
}

// NewHandler creates a Handler. scans and push may be nil.
func NewHandler(st *store.Store, tr *tracker.Tracker, scans ScanTrigger, push TestSender, log zerolog.Logger) *Handler {
	return &Handler{
		Store:          st,
		Tracker:        tr,
		Scans:          scans,
		Push:           push,
		Now:            time.Now,
		WSPollInterval: DefaultWSPollInterval,
		log:            log.With().Str("component", "api").Logger(),
	}
}

// RegisterRoutes mounts every endpoint on e.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Root)
	e.GET("/signals", h.Signals)
	e.GET("/history", h.History)
	e.GET("/active", h.Active)
	e.GET("/status", h.Status)
	e.POST("/scan", h.Scan)
	e.GET("/android/signals", h.AndroidSignals)
	e.POST("/test-notification", h.TestNotification)
	e.GET("/ws", h.Live)
}

// Root is the liveness endpoint.
func (h *Handler) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"message": "Crypto Signals Backend is Running"})
}

// Signals returns the latest cycle's ranked admissions.
func (h *Handler) Signals(c echo.Context) error {
	signals := h.Store.Latest()
	return c.JSON(http.StatusOK, map[string]any{
		"count":   len(signals),
		"signals": signals,
	})
}

// History returns the most recent admissions, oldest first.
func (h *Handler) History(c echo.Context) error {
	var q HistoryQuery
	if errs := ReadAndValidateRequest(c, &q); errs != nil {
		return c.JSON(http.StatusBadRequest, errs)
	}
	history := h.Store.History(q.Limit)
	return c.JSON(http.StatusOK, map[string]any{
		"count":   len(history),
		"history": history,
	})
}

// Active returns the tracked signals.
func (h *Handler) Active(c echo.Context) error {
	active := h.Tracker.List()
	return c.JSON(http.StatusOK, map[string]any{
		"count":  len(active),
		"active": active,
	})
}

// Status reports the last cycle summary and whether a scan is running.
func (h *Handler) Status(c echo.Context) error {
	body := map[string]any{"active": h.Tracker.Len()}
	if last, ok := h.Store.LastCycle(); ok {
		body["last_cycle"] = last
	}
	return c.JSON(http.StatusOK, body)
}

// Scan triggers a cycle in the background.
func (h *Handler) Scan(c echo.Context) error {
	if h.Scans == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"message": "scanner is not running"})
	}
	started := h.Scans.Trigger()
	return c.JSON(http.StatusAccepted, map[string]any{
		"message": "Scan started in background",
		"queued":  !started,
	})
}

// TestNotification sends a test push to every language topic.
func (h *Handler) TestNotification(c echo.Context) error {
	if h.Push == nil || !h.Push.Enabled() {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status":  "error",
			"message": "FCM is NOT enabled. Check the Firebase credentials file.",
		})
	}
	if err := h.Push.SendTest(c.Request().Context()); err != nil {
		h.log.Error().Err(err).Msg("test notification failed")
		return c.JSON(http.StatusBadGateway, map[string]string{
			"status":  "error",
			"message": err.Error(),
		})
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "success",
		"message": fmt.Sprintf("Test notifications sent to %s", strings.Join(h.Push.Topics(), " and ")),
	})
}

// AndroidSignals returns the latest signals shaped for the mobile client.
func (h *Handler) AndroidSignals(c echo.Context) error {
	signals := h.Store.Latest()
	now := h.Now()
	data := make([]AndroidSignal, 0, len(signals))
	for i := range signals {
		data = append(data, NewAndroidSignal(&signals[i], now))
	}
	return c.JSON(http.StatusOK, map[string]any{
		"status": "success",
		"data":   data,
	})
}
