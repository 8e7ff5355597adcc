package collector

import (
	"context"

	"CryptoSignals/internal/model"
)

// Fetcher defines the interface for fetching candle history.
// Candles are returned oldest first; the last one is the latest (possibly still open) bar.
type Fetcher interface {
	FetchCandles(ctx context.Context, symbol, timeframe string, limit int) ([]model.OHLCV, error)
	Name() string
}
