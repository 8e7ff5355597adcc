package strategy

import (
	"fmt"

	"CryptoSignals/internal/model"
)

// MinBars is the history needed before a snapshot is scored (EMA200 warm-up).
const MinBars = 200

// Tiers maps a score to its status, highest first.
var Tiers = []struct {
	MinScore int
	Status   model.Status
}{
	{80, model.StatusStrong},
	{50, model.StatusMedium},
}

// mapStatus maps a total score to a Status.
func mapStatus(score int) model.Status {
	for _, t := range Tiers {
		if score >= t.MinScore {
			return t.Status
		}
	}
	return model.StatusWeak
}

// ATR multiples for the trade setup.
const (
	stopLossATR = 2.0
	target1ATR  = 1.5
	target2ATR  = 3.0
	entryATR    = 0.2
)

// Evaluate scores a snapshot and derives its trade setup.
// Returns nil when the snapshot is missing or backed by fewer than MinBars candles.
func Evaluate(snap *model.IndicatorSnapshot) *model.ScoredSignal {
	if snap == nil || snap.Bars < MinBars {
		return nil
	}

	factors := []factorScore{
		scoreTrend(snap),
		scoreMomentum(snap),
		scoreVolume(snap),
		scoreTrendStrength(snap),
	}

	score := 0
	reasons := make([]string, 0, len(factors))
	for _, f := range factors {
		score += f.Points
		if f.Reason != "" {
			reasons = append(reasons, f.Reason)
		}
	}

	return &model.ScoredSignal{
		Symbol:     snap.Symbol,
		Price:      snap.Close,
		Score:      score,
		Status:     mapStatus(score),
		RSI:        snap.RSI,
		ADX:        snap.ADX,
		Reasons:    reasons,
		Timestamp:  snap.Timestamp,
		TradeSetup: tradeSetup(snap.Close, snap.ATR),
	}
}

func tradeSetup(close, atr float64) model.TradeSetup {
	setup := model.TradeSetup{
		EntryLow:  close,
		EntryHigh: close + atr*entryATR,
		StopLoss:  close - atr*stopLossATR,
		Target1:   close + atr*target1ATR,
		Target2:   close + atr*target2ATR,
	}
	setup.EntryZone = fmt.Sprintf("%.4f - %.4f", setup.EntryLow, setup.EntryHigh)

	risk := close - setup.StopLoss
	reward := setup.Target2 - close
	if risk > 0 {
		setup.RiskRewardRatio = fmt.Sprintf("1:%.1f", reward/risk)
	} else {
		setup.RiskRewardRatio = model.RiskRewardUnavailable
	}
	return setup
}
