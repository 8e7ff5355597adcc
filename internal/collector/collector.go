package collector

import (
	"context"
	"errors"
	"fmt"
	"math"

	"CryptoSignals/internal/calculator"
	"CryptoSignals/internal/model"

	"github.com/rs/zerolog"
)

// ErrDataUnavailable is returned when no usable candles could be obtained for a symbol.
var ErrDataUnavailable = errors.New("market data unavailable")

const (
	DefaultTimeframe = "1h"
	DefaultLookback  = 500
)

// Collector orchestrates data fetching and indicator computation.
type Collector struct {
	Fetcher   Fetcher
	Timeframe string
	Lookback  int
	log       zerolog.Logger
}

// NewCollector creates a new Collector. Empty timeframe and non-positive lookback
// fall back to 1h and 500 candles.
func NewCollector(fetcher Fetcher, timeframe string, lookback int, log zerolog.Logger) *Collector {
	if timeframe == "" {
		timeframe = DefaultTimeframe
	}
	if lookback <= 0 {
		lookback = DefaultLookback
	}
	return &Collector{
		Fetcher:   fetcher,
		Timeframe: timeframe,
		Lookback:  lookback,
		log:       log.With().Str("component", "collector").Logger(),
	}
}

// Snapshot fetches the configured candle window and computes the indicator
// snapshot for the latest candle.
func (c *Collector) Snapshot(ctx context.Context, symbol string) (*model.IndicatorSnapshot, error) {
	bars, err := c.Fetcher.FetchCandles(ctx, symbol, c.Timeframe, c.Lookback)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDataUnavailable, symbol, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: %s: empty series", ErrDataUnavailable, symbol)
	}

	lastBar := bars[len(bars)-1]
	raw := model.RawIndicators{
		Symbol:    symbol,
		Timestamp: lastBar.Time,
		Bars:      len(bars),
		Close:     lastBar.Close,
		Volume:    lastBar.Volume,
		ADX:       math.NaN(),
		ATR:       math.NaN(),
	}

	raw.EMA20 = c.emaOrClose(bars, 20, symbol)
	raw.EMA50 = c.emaOrClose(bars, 50, symbol)
	raw.EMA200 = c.emaOrClose(bars, 200, symbol)

	if rsi, err := calculator.CalculateRSI(bars, 14); err != nil {
		c.log.Debug().Err(err).Str("symbol", symbol).Msg("RSI unavailable, defaulting to 50")
		raw.RSI = 50
	} else {
		raw.RSI = rsi
	}

	if adx, err := calculator.CalculateADX(bars, 14); err == nil {
		raw.ADX = adx
	}
	if atr, err := calculator.CalculateATR(bars, 14); err == nil {
		raw.ATR = atr
	}

	if avg, err := calculator.CalculateAvgVolume(bars, 20); err != nil {
		raw.AvgVolume20 = lastBar.Volume
	} else {
		raw.AvgVolume20 = avg
	}

	snap, err := model.NewIndicatorSnapshot(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDataUnavailable, err)
	}
	return snap, nil
}

func (c *Collector) emaOrClose(bars []model.OHLCV, period int, symbol string) float64 {
	ema, err := calculator.CalculateEMA(bars, period)
	if err != nil {
		c.log.Debug().Err(err).Str("symbol", symbol).Int("period", period).Msg("EMA unavailable, using close")
		return bars[len(bars)-1].Close
	}
	return ema
}
