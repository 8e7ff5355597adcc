package strategy

import (
	"math"
	"strings"
	"testing"
	"time"

	"CryptoSignals/internal/model"
)

func baseSnapshot() *model.IndicatorSnapshot {
	return &model.IndicatorSnapshot{
		Symbol:      "ETH/USDT",
		Timestamp:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Bars:        500,
		Close:       100,
		EMA20:       105,
		EMA50:       102,
		EMA200:      98,
		RSI:         55,
		ADX:         30,
		ATR:         2,
		Volume:      1500,
		AvgVolume20: 900,
	}
}

func TestEvaluate_ModerateUptrend(t *testing.T) {
	sig := Evaluate(baseSnapshot())
	if sig == nil {
		t.Fatal("expected non-nil signal")
	}
	if sig.Score != 70 {
		t.Errorf("expected score 70, got %d", sig.Score)
	}
	if sig.Status != model.StatusMedium {
		t.Errorf("expected MEDIUM, got %s", sig.Status)
	}
	ts := sig.TradeSetup
	if ts.StopLoss != 96 || ts.Target1 != 103 || ts.Target2 != 106 {
		t.Errorf("unexpected setup: %+v", ts)
	}
	if ts.RiskRewardRatio != "1:1.5" {
		t.Errorf("expected 1:1.5, got %s", ts.RiskRewardRatio)
	}
	if ts.EntryZone != "100.0000 - 100.4000" {
		t.Errorf("unexpected entry zone %q", ts.EntryZone)
	}
	if len(sig.Reasons) != 4 {
		t.Fatalf("expected 4 reasons, got %v", sig.Reasons)
	}
	prefixes := []string{"Moderate Uptrend", "Healthy Momentum", "High Volume Spike", "Strong Trend Strength"}
	for i, p := range prefixes {
		if !strings.HasPrefix(sig.Reasons[i], p) {
			t.Errorf("reason %d = %q, want prefix %q", i, sig.Reasons[i], p)
		}
	}
	if !(ts.Target2 > ts.Target1 && ts.Target1 > sig.Price && sig.Price > ts.StopLoss) {
		t.Error("expected target2 > target1 > price > stopLoss")
	}
}

func TestEvaluate_Components(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *model.IndicatorSnapshot)
		score  int
		reason string
	}{
		{"strong uptrend", func(s *model.IndicatorSnapshot) { s.Close, s.EMA20, s.EMA50, s.EMA200 = 110, 105, 102, 98 }, 80, "Strong Uptrend"},
		{"above ema200 only", func(s *model.IndicatorSnapshot) { s.EMA20, s.EMA50 = 99, 101 }, 50, "Above EMA200"},
		{"below ema200", func(s *model.IndicatorSnapshot) { s.EMA200 = 120 }, 40, ""},
		{"oversold", func(s *model.IndicatorSnapshot) { s.RSI = 35 }, 60, "Oversold/Recovery"},
		{"rsi 30 boundary", func(s *model.IndicatorSnapshot) { s.RSI = 30 }, 60, "Oversold/Recovery"},
		{"rsi 65 boundary", func(s *model.IndicatorSnapshot) { s.RSI = 65 }, 70, "Healthy Momentum"},
		{"rsi dead zone", func(s *model.IndicatorSnapshot) { s.RSI = 68 }, 50, ""},
		{"overbought", func(s *model.IndicatorSnapshot) { s.RSI = 75 }, 40, "Overbought"},
		{"no volume spike", func(s *model.IndicatorSnapshot) { s.Volume = 1350 }, 60, ""},
		{"adx neutral", func(s *model.IndicatorSnapshot) { s.ADX = 22 }, 60, ""},
		{"choppy", func(s *model.IndicatorSnapshot) { s.ADX = 15 }, 50, "Weak/Choppy Market"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := baseSnapshot()
			tt.mutate(snap)
			sig := Evaluate(snap)
			if sig.Score != tt.score {
				t.Errorf("expected score %d, got %d (%v)", tt.score, sig.Score, sig.Reasons)
			}
			if tt.reason == "" {
				return
			}
			found := false
			for _, r := range sig.Reasons {
				if strings.HasPrefix(r, tt.reason) {
					found = true
				}
			}
			if !found {
				t.Errorf("expected reason %q in %v", tt.reason, sig.Reasons)
			}
		})
	}
}

func TestMapStatus(t *testing.T) {
	tests := []struct {
		score int
		want  model.Status
	}{
		{100, model.StatusStrong},
		{80, model.StatusStrong},
		{79, model.StatusMedium},
		{50, model.StatusMedium},
		{49, model.StatusWeak},
		{-20, model.StatusWeak},
	}
	for _, tt := range tests {
		if got := mapStatus(tt.score); got != tt.want {
			t.Errorf("mapStatus(%d) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestEvaluate_DegenerateRisk(t *testing.T) {
	for _, atr := range []float64{0, -1} {
		snap := baseSnapshot()
		snap.ATR = atr
		sig := Evaluate(snap)
		if sig.TradeSetup.RiskRewardRatio != model.RiskRewardUnavailable {
			t.Errorf("atr=%v: expected N/A, got %s", atr, sig.TradeSetup.RiskRewardRatio)
		}
		if math.IsNaN(sig.TradeSetup.StopLoss) || math.IsInf(sig.TradeSetup.StopLoss, 0) {
			t.Errorf("atr=%v: stop loss not finite", atr)
		}
	}
}

func TestEvaluate_InsufficientHistory(t *testing.T) {
	if Evaluate(nil) != nil {
		t.Error("expected nil for nil snapshot")
	}
	snap := baseSnapshot()
	snap.Bars = 199
	if Evaluate(snap) != nil {
		t.Error("expected nil for fewer than 200 bars")
	}
	snap.Bars = 200
	if Evaluate(snap) == nil {
		t.Error("expected a signal at exactly 200 bars")
	}
}

func TestEvaluate_Deterministic(t *testing.T) {
	a := Evaluate(baseSnapshot())
	b := Evaluate(baseSnapshot())
	if a.Score != b.Score || a.TradeSetup != b.TradeSetup || strings.Join(a.Reasons, "|") != strings.Join(b.Reasons, "|") {
		t.Error("expected identical output for identical input")
	}
}

func TestClassifyMarket(t *testing.T) {
	tests := []struct {
		name string
		snap *model.IndicatorSnapshot
		want model.MarketTrend
	}{
		{"nil", nil, model.TrendNeutral},
		{"bullish", &model.IndicatorSnapshot{Bars: 500, Close: 110, EMA200: 100}, model.TrendBullish},
		{"bearish", &model.IndicatorSnapshot{Bars: 500, Close: 90, EMA200: 100}, model.TrendBearish},
		{"equal", &model.IndicatorSnapshot{Bars: 500, Close: 100, EMA200: 100}, model.TrendNeutral},
		{"not warmed up", &model.IndicatorSnapshot{Bars: 50, Close: 90, EMA200: 100}, model.TrendNeutral},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyMarket(tt.snap); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestAdmissionRule_Allows(t *testing.T) {
	rule := DefaultAdmissionRule()
	tests := []struct {
		name   string
		symbol string
		score  int
		trend  model.MarketTrend
		want   bool
	}{
		{"bearish rejects 85", "ETH/USDT", 85, model.TrendBearish, false},
		{"bearish admits 91", "ETH/USDT", 91, model.TrendBearish, true},
		{"bearish admits 90", "ETH/USDT", 90, model.TrendBearish, true},
		{"bullish admits 30", "ETH/USDT", 30, model.TrendBullish, true},
		{"neutral admits 45", "ETH/USDT", 45, model.TrendNeutral, true},
		{"below min", "ETH/USDT", 29, model.TrendBullish, false},
		{"bearish benchmark rejects 40", "BTC/USDT", 40, model.TrendBearish, false},
		{"bearish benchmark admits 92", "BTC/USDT", 92, model.TrendBearish, true},
		{"benchmark still needs min", "BTC/USDT", 20, model.TrendBullish, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := &model.ScoredSignal{Symbol: tt.symbol, Score: tt.score}
			if got := rule.Allows(sig, tt.trend); got != tt.want {
				t.Errorf("Allows(%d, %s) = %v, want %v", tt.score, tt.trend, got, tt.want)
			}
		})
	}
	if rule.Allows(nil, model.TrendBullish) {
		t.Error("nil signal must not be admitted")
	}
}
