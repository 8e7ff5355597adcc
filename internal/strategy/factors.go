package strategy

import (
	"fmt"

	"CryptoSignals/internal/model"
)

// factorScore is the contribution of one scoring component.
// Reason is empty when the component did not fire.
type factorScore struct {
	Points int
	Reason string
}

// scoreTrend scores the EMA stack.
// Max: +40
func scoreTrend(s *model.IndicatorSnapshot) factorScore {
	switch {
	case s.Close > s.EMA20 && s.EMA20 > s.EMA50 && s.EMA50 > s.EMA200:
		return factorScore{40, "Strong Uptrend (Price > EMA20 > EMA50 > EMA200)"}
	case s.Close > s.EMA200 && s.EMA20 > s.EMA50:
		return factorScore{30, "Moderate Uptrend (Above EMA200, Golden Cross)"}
	case s.Close > s.EMA200:
		return factorScore{10, "Above EMA200 (Long term bullish)"}
	default:
		return factorScore{}
	}
}

// scoreMomentum scores RSI(14). 65 < rsi <= 70 is deliberately neutral.
// Range: -10 .. +20
func scoreMomentum(s *model.IndicatorSnapshot) factorScore {
	rsi := s.RSI
	switch {
	case rsi >= 45 && rsi <= 65:
		return factorScore{20, fmt.Sprintf("Healthy Momentum (RSI: %.1f)", rsi)}
	case rsi >= 30 && rsi < 45:
		return factorScore{10, fmt.Sprintf("Oversold/Recovery (RSI: %.1f)", rsi)}
	case rsi > 70:
		return factorScore{-10, fmt.Sprintf("Overbought (RSI: %.1f) - Risk of pullback", rsi)}
	default:
		return factorScore{}
	}
}

// scoreVolume rewards a volume spike above 1.5x the 20-bar average.
// Max: +10
func scoreVolume(s *model.IndicatorSnapshot) factorScore {
	if s.Volume > s.AvgVolume20*1.5 {
		return factorScore{10, "High Volume Spike"}
	}
	return factorScore{}
}

// scoreTrendStrength scores ADX(14).
// Range: -10 .. +10
func scoreTrendStrength(s *model.IndicatorSnapshot) factorScore {
	adx := s.ADX
	switch {
	case adx > 25:
		return factorScore{10, fmt.Sprintf("Strong Trend Strength (ADX: %.1f)", adx)}
	case adx < 20:
		return factorScore{-10, fmt.Sprintf("Weak/Choppy Market (ADX: %.1f)", adx)}
	default:
		return factorScore{}
	}
}
