package model

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidSnapshot is returned when raw indicator values cannot form a snapshot.
var ErrInvalidSnapshot = errors.New("invalid indicator snapshot")

const (
	// DefaultADX is used when ADX could not be computed.
	DefaultADX = 25.0
	// DefaultATRRatio is the share of the close used as ATR when ATR could not be computed.
	DefaultATRRatio = 0.02
)

// RawIndicators holds indicator values as they come out of the calculator.
// ADX and ATR may be NaN when the series was too short to compute them.
type RawIndicators struct {
	Symbol      string
	Timestamp   time.Time
	Bars        int
	Close       float64
	EMA20       float64
	EMA50       float64
	EMA200      float64
	RSI         float64
	ADX         float64
	ATR         float64
	Volume      float64
	AvgVolume20 float64
}

// IndicatorSnapshot is the latest-candle view of one symbol for one scan cycle.
// Values are immutable once built by NewIndicatorSnapshot.
type IndicatorSnapshot struct {
	Symbol      string    `json:"symbol"`
	Timestamp   time.Time `json:"timestamp"`
	Bars        int       `json:"bars"`
	Close       float64   `json:"close"`
	EMA20       float64   `json:"ema20"`
	EMA50       float64   `json:"ema50"`
	EMA200      float64   `json:"ema200"`
	RSI         float64   `json:"rsi"`
	ADX         float64   `json:"adx"`
	ATR         float64   `json:"atr"`
	Volume      float64   `json:"volume"`
	AvgVolume20 float64   `json:"avg_volume_20"`
}

// NewIndicatorSnapshot applies the fallback policy for missing values and validates the rest:
//   - ADX missing (NaN/Inf) defaults to 25 (neutral trend strength)
//   - ATR missing (NaN/Inf) defaults to 2% of the close
//
// Every other field must be finite and Close must be positive.
func NewIndicatorSnapshot(raw RawIndicators) (*IndicatorSnapshot, error) {
	if !finite(raw.Close) || raw.Close <= 0 {
		return nil, fmt.Errorf("%w: %s close=%v", ErrInvalidSnapshot, raw.Symbol, raw.Close)
	}
	fields := []struct {
		name string
		v    float64
	}{
		{"ema20", raw.EMA20},
		{"ema50", raw.EMA50},
		{"ema200", raw.EMA200},
		{"rsi", raw.RSI},
		{"volume", raw.Volume},
		{"avg_volume_20", raw.AvgVolume20},
	}
	for _, f := range fields {
		if !finite(f.v) {
			return nil, fmt.Errorf("%w: %s %s=%v", ErrInvalidSnapshot, raw.Symbol, f.name, f.v)
		}
	}

	adx := raw.ADX
	if !finite(adx) {
		adx = DefaultADX
	}
	atr := raw.ATR
	if !finite(atr) {
		atr = raw.Close * DefaultATRRatio
	}

	return &IndicatorSnapshot{
		Symbol:      raw.Symbol,
		Timestamp:   raw.Timestamp,
		Bars:        raw.Bars,
		Close:       raw.Close,
		EMA20:       raw.EMA20,
		EMA50:       raw.EMA50,
		EMA200:      raw.EMA200,
		RSI:         raw.RSI,
		ADX:         adx,
		ATR:         atr,
		Volume:      raw.Volume,
		AvgVolume20: raw.AvgVolume20,
	}, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
