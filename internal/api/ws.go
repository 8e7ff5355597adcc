package api

import (
	"net/http"
	"time"

	"CryptoSignals/internal/model"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// DefaultWSPollInterval is how often a feed checks for a newer store version.
const DefaultWSPollInterval = 2 * time.Second

const wsWriteTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// FeedMessage is pushed to websocket clients whenever the signal list changes.
type FeedMessage struct {
	Version uint64               `json:"version"`
	Signals []model.ScoredSignal `json:"signals"`
}

// Live upgrades to a websocket, sends the current signals, then pushes the list
// again every time a cycle publishes a new one.
func (h *Handler) Live(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.log.Error().Err(err).Msg("websocket upgrade failed")
		return nil
	}
	defer conn.Close()

	h.log.Debug().Str("remote", c.RealIP()).Msg("websocket client connected")

	// drain reads so close frames are processed
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	version := h.Store.Version()
	if err := h.push(conn, version); err != nil {
		return nil
	}

	interval := h.WSPollInterval
	if interval <= 0 {
		interval = DefaultWSPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-closed:
			h.log.Debug().Str("remote", c.RealIP()).Msg("websocket client disconnected")
			return nil
		case <-ticker.C:
			v := h.Store.Version()
			if v == version {
				continue
			}
			version = v
			if err := h.push(conn, version); err != nil {
				h.log.Debug().Err(err).Msg("websocket write failed")
				return nil
			}
		}
	}
}

func (h *Handler) push(conn *websocket.Conn, version uint64) error {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return conn.WriteJSON(FeedMessage{Version: version, Signals: h.Store.Latest()})
}
