package model

import "time"

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// MarketTrend is the overall market direction derived from the benchmark symbol.
type MarketTrend string

const (
	TrendBullish MarketTrend = "BULLISH"
	TrendBearish MarketTrend = "BEARISH"
	TrendNeutral MarketTrend = "NEUTRAL"
)
