package collector

import (
	"context"
	"hash/fnv"
	"math/rand"
	"sync"
	"time"

	"CryptoSignals/internal/model"

	"github.com/rs/zerolog"
)

// SimulatedFetcher generates a healthy synthetic uptrend for development and offline runs.
// The series is seeded per symbol so repeated calls are stable within a process.
type SimulatedFetcher struct {
	BasePrice float64
	Now       func() time.Time
}

func (m *SimulatedFetcher) Name() string { return "simulated" }

func (m *SimulatedFetcher) FetchCandles(_ context.Context, symbol, timeframe string, limit int) ([]model.OHLCV, error) {
	step, err := time.ParseDuration(timeframeDuration(timeframe))
	if err != nil {
		step = time.Hour
	}
	now := time.Now
	if m.Now != nil {
		now = m.Now
	}
	base := m.BasePrice
	if base <= 0 {
		base = 50000
	}
	return generateBars(symbol, base, limit, step, now()), nil
}

func generateBars(symbol string, basePrice float64, count int, step time.Duration, end time.Time) []model.OHLCV {
	h := fnv.New64a()
	_, _ = h.Write([]byte(symbol))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	prices := make([]float64, count)
	p := basePrice
	for i := 0; i < count; i++ {
		// small drift keeps RSI in a healthy band
		p += rng.NormFloat64()*20 + 5
		prices[i] = p
	}
	if count > 1 {
		prices[count-1] = prices[count-2] * 1.002
	}

	bars := make([]model.OHLCV, count)
	for i, c := range prices {
		bars[i] = model.OHLCV{
			Time:   end.Add(-time.Duration(count-1-i) * step),
			Open:   c,
			High:   c * 1.005,
			Low:    c * 0.995,
			Close:  c,
			Volume: 1000 + float64(i)*10,
		}
	}
	return bars
}

// timeframeDuration maps exchange intervals ("1h", "4h", "1d") to Go durations.
func timeframeDuration(tf string) string {
	if len(tf) > 1 && tf[len(tf)-1] == 'd' {
		switch tf {
		case "1d":
			return "24h"
		case "3d":
			return "72h"
		}
	}
	return tf
}

// FallbackFetcher serves from Primary until it fails once, then switches to Fallback
// for the rest of the process lifetime.
type FallbackFetcher struct {
	Primary  Fetcher
	Fallback Fetcher

	log        zerolog.Logger
	mu         sync.Mutex
	simulating bool
}

// NewFallbackFetcher wraps primary with a sticky fallback.
func NewFallbackFetcher(primary, fallback Fetcher, log zerolog.Logger) *FallbackFetcher {
	return &FallbackFetcher{Primary: primary, Fallback: fallback, log: log}
}

func (f *FallbackFetcher) Name() string {
	if f.Simulating() {
		return f.Fallback.Name()
	}
	return f.Primary.Name()
}

// Simulating reports whether the fallback has taken over.
func (f *FallbackFetcher) Simulating() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.simulating
}

func (f *FallbackFetcher) FetchCandles(ctx context.Context, symbol, timeframe string, limit int) ([]model.OHLCV, error) {
	if !f.Simulating() {
		bars, err := f.Primary.FetchCandles(ctx, symbol, timeframe, limit)
		if err == nil {
			return bars, nil
		}
		if ctx.Err() != nil {
			return nil, err
		}
		f.mu.Lock()
		if !f.simulating {
			f.simulating = true
			f.log.Warn().Err(err).Str("symbol", symbol).Str("fallback", f.Fallback.Name()).
				Msg("primary data source failed, switching to fallback")
		}
		f.mu.Unlock()
	}
	return f.Fallback.FetchCandles(ctx, symbol, timeframe, limit)
}
