package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"CryptoSignals/internal/metrics"
	"CryptoSignals/internal/model"
	"CryptoSignals/internal/scanner"
	"CryptoSignals/internal/store"
	"CryptoSignals/internal/tracker"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type fakeTrigger struct {
	started bool
	calls   int
}

func (f *fakeTrigger) Trigger() bool {
	f.calls++
	return f.started
}

type fakePush struct {
	enabled bool
	err     error
	sent    int
}

func (f *fakePush) Enabled() bool { return f.enabled }
func (f *fakePush) SendTest(context.Context) error {
	f.sent++
	return f.err
}
func (f *fakePush) Topics() []string { return []string{"signals_en", "signals_ar"} }

func signal(symbol string, score int, at time.Time) *model.ScoredSignal {
	return &model.ScoredSignal{
		Symbol:    symbol,
		Price:     100,
		Score:     score,
		Status:    model.StatusMedium,
		Reasons:   []string{"Strong Uptrend"},
		Timestamp: at,
		TradeSetup: model.TradeSetup{
			EntryLow: 100, EntryHigh: 100.4, EntryZone: "100.0000 - 100.4000",
			StopLoss: 96, Target1: 103, Target2: 106, RiskRewardRatio: "1:1.5",
		},
	}
}

func newTestHandler(t *testing.T) (*Handler, *echo.Echo) {
	t.Helper()
	h := NewHandler(store.New(0), tracker.New(), &fakeTrigger{started: true}, &fakePush{}, zerolog.Nop())
	h.Now = func() time.Time { return testNow }
	e := echo.New()
	h.RegisterRoutes(e)
	return h, e
}

func do(t *testing.T, e *echo.Echo, method, target string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	var body map[string]any
	if strings.HasPrefix(strings.TrimSpace(rec.Body.String()), "{") {
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode %s: %v", target, err)
		}
	}
	return rec, body
}

func TestRoot(t *testing.T) {
	_, e := newTestHandler(t)
	rec, body := do(t, e, http.MethodGet, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body["message"] != "Crypto Signals Backend is Running" {
		t.Errorf("message = %v", body["message"])
	}
}

func TestSignalsAndHistory(t *testing.T) {
	h, e := newTestHandler(t)

	_, body := do(t, e, http.MethodGet, "/signals")
	if body["count"] != float64(0) {
		t.Errorf("empty count = %v", body["count"])
	}

	h.Store.Publish(&scanner.CycleResult{Ranked: []*model.ScoredSignal{signal("ETH/USDT", 70, testNow)}})
	h.Store.Publish(&scanner.CycleResult{Ranked: []*model.ScoredSignal{
		signal("SOL/USDT", 85, testNow), signal("XRP/USDT", 60, testNow),
	}})

	_, body = do(t, e, http.MethodGet, "/signals")
	if body["count"] != float64(2) {
		t.Fatalf("signals count = %v", body["count"])
	}
	first := body["signals"].([]any)[0].(map[string]any)
	if first["symbol"] != "SOL/USDT" {
		t.Errorf("first signal = %v", first["symbol"])
	}

	_, body = do(t, e, http.MethodGet, "/history")
	if body["count"] != float64(3) {
		t.Errorf("history count = %v", body["count"])
	}

	_, body = do(t, e, http.MethodGet, "/history?limit=1")
	hist := body["history"].([]any)
	if len(hist) != 1 || hist[0].(map[string]any)["symbol"] != "XRP/USDT" {
		t.Errorf("limited history = %v", hist)
	}
}

func TestHistoryValidation(t *testing.T) {
	_, e := newTestHandler(t)

	tests := []struct {
		name string
		url  string
		code string
	}{
		{"above max", "/history?limit=51", "ERR_MAX"},
		{"negative", "/history?limit=-3", "ERR_MIN"},
		{"not a number", "/history?limit=abc", "ERR_UNKNOWN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d", rec.Code)
			}
			var errs []ValidationError
			if err := json.Unmarshal(rec.Body.Bytes(), &errs); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(errs) != 1 || errs[0].Code != tt.code {
				t.Errorf("errors = %+v, want code %s", errs, tt.code)
			}
		})
	}
}

func TestActive(t *testing.T) {
	h, e := newTestHandler(t)
	if _, err := h.Tracker.Admit(signal("ETH/USDT", 70, testNow), testNow); err != nil {
		t.Fatal(err)
	}
	_, body := do(t, e, http.MethodGet, "/active")
	if body["count"] != float64(1) {
		t.Fatalf("count = %v", body["count"])
	}
	got := body["active"].([]any)[0].(map[string]any)
	if got["symbol"] != "ETH/USDT" || got["stop_loss"] != float64(96) {
		t.Errorf("active = %v", got)
	}
}

func TestScan(t *testing.T) {
	tests := []struct {
		name    string
		started bool
		queued  bool
	}{
		{"starts cycle", true, false},
		{"coalesced", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, e := newTestHandler(t)
			trig := &fakeTrigger{started: tt.started}
			h.Scans = trig

			rec, body := do(t, e, http.MethodPost, "/scan")
			if rec.Code != http.StatusAccepted {
				t.Fatalf("status = %d", rec.Code)
			}
			if body["message"] != "Scan started in background" {
				t.Errorf("message = %v", body["message"])
			}
			if body["queued"] != tt.queued {
				t.Errorf("queued = %v, want %v", body["queued"], tt.queued)
			}
			if trig.calls != 1 {
				t.Errorf("trigger calls = %d", trig.calls)
			}
		})
	}
}

func TestTestNotification(t *testing.T) {
	tests := []struct {
		name   string
		push   *fakePush
		code   int
		status string
	}{
		{"disabled", &fakePush{}, http.StatusServiceUnavailable, "error"},
		{"send fails", &fakePush{enabled: true, err: errors.New("quota")}, http.StatusBadGateway, "error"},
		{"sent", &fakePush{enabled: true}, http.StatusOK, "success"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, e := newTestHandler(t)
			h.Push = tt.push
			rec, body := do(t, e, http.MethodPost, "/test-notification")
			if rec.Code != tt.code {
				t.Fatalf("status = %d, want %d", rec.Code, tt.code)
			}
			if body["status"] != tt.status {
				t.Errorf("status field = %v", body["status"])
			}
		})
	}

	h, e := newTestHandler(t)
	h.Push = &fakePush{enabled: true}
	_, body := do(t, e, http.MethodPost, "/test-notification")
	if body["message"] != "Test notifications sent to signals_en and signals_ar" {
		t.Errorf("message = %v", body["message"])
	}
}

func TestAndroidSignals(t *testing.T) {
	h, e := newTestHandler(t)
	strong := signal("SOL/USDT", 85, testNow.Add(-3*time.Hour))
	strong.Price = 142.356
	h.Store.Publish(&scanner.CycleResult{Ranked: []*model.ScoredSignal{strong, signal("ETH/USDT", 70, testNow)}})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/android/signals", nil))
	var resp struct {
		Status string          `json:"status"`
		Data   []AndroidSignal `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "success" || len(resp.Data) != 2 {
		t.Fatalf("resp = %+v", resp)
	}

	want := AndroidSignal{
		ID:         "SOL/USDT-2024-05-01T09:00:00Z",
		Coin:       "SOL",
		Pair:       "SOL/USDT",
		Price:      "$142.36",
		ImageURL:   "https://lcw.nyc3.cdn.digitaloceanspaces.com/production/currencies/64/sol.png",
		ScoreValue: 85,
		ScoreColor: "#00C853",
		StatusText: "MEDIUM",
		Entry:      "100.0000 - 100.4000",
		Targets:    "TP1: 103.00 | TP2: 106.00",
		StopLoss:   "Exit: 96.00",
		TimeAgo:    "3h ago",
	}
	if resp.Data[0] != want {
		t.Errorf("got  %+v\nwant %+v", resp.Data[0], want)
	}
	if resp.Data[1].ScoreColor != "#FFAB00" || resp.Data[1].TimeAgo != "Just now" {
		t.Errorf("second = %+v", resp.Data[1])
	}
}

func TestTimeAgo(t *testing.T) {
	tests := []struct {
		age  time.Duration
		want string
	}{
		{-time.Minute, "Just now"},
		{30 * time.Second, "Just now"},
		{time.Minute, "1m ago"},
		{59 * time.Minute, "59m ago"},
		{time.Hour, "1h ago"},
		{23*time.Hour + 59*time.Minute, "23h ago"},
		{24 * time.Hour, "1d ago"},
		{80 * time.Hour, "3d ago"},
	}
	for _, tt := range tests {
		if got := TimeAgo(testNow.Add(-tt.age), testNow); got != tt.want {
			t.Errorf("TimeAgo(%v) = %q, want %q", tt.age, got, tt.want)
		}
	}
}

func TestStatus(t *testing.T) {
	h, e := newTestHandler(t)
	_, body := do(t, e, http.MethodGet, "/status")
	if _, ok := body["last_cycle"]; ok {
		t.Error("last_cycle present before any cycle")
	}
	h.Store.Publish(&scanner.CycleResult{Scanned: 4, Trend: model.TrendBullish})
	_, body = do(t, e, http.MethodGet, "/status")
	last, ok := body["last_cycle"].(map[string]any)
	if !ok || last["scanned"] != float64(4) {
		t.Errorf("last_cycle = %v", body["last_cycle"])
	}
}

func TestServerMetricsAndRecover(t *testing.T) {
	h, _ := newTestHandler(t)
	m := metrics.New(nil)
	srv := NewServer(":0", h, m, zerolog.Nop())
	srv.Echo().GET("/boom", func(echo.Context) error { panic("boom") })

	rec := httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("panic status = %d", rec.Code)
	}

	srv.Echo().ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/signals", nil))

	rec = httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `cryptosignals_http_requests_total{method="GET",route="/signals",status="200"} 1`) {
		t.Errorf("request not recorded:\n%s", rec.Body.String())
	}
}

func TestLiveFeed(t *testing.T) {
	h, e := newTestHandler(t)
	h.WSPollInterval = 10 * time.Millisecond
	srv := httptest.NewServer(e)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var msg FeedMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("initial read: %v", err)
	}
	if msg.Version != 0 || len(msg.Signals) != 0 {
		t.Errorf("initial = %+v", msg)
	}

	h.Store.Publish(&scanner.CycleResult{Ranked: []*model.ScoredSignal{signal("ETH/USDT", 70, testNow)}})

	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("update read: %v", err)
	}
	if msg.Version != 1 || len(msg.Signals) != 1 || msg.Signals[0].Symbol != "ETH/USDT" {
		t.Errorf("update = %+v", msg)
	}
}
