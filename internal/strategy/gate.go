package strategy

import "CryptoSignals/internal/model"

// ClassifyMarket derives the market trend from the benchmark snapshot.
// A missing or not yet warmed-up benchmark is NEUTRAL.
func ClassifyMarket(benchmark *model.IndicatorSnapshot) model.MarketTrend {
	if benchmark == nil || benchmark.Bars < MinBars {
		return model.TrendNeutral
	}
	switch {
	case benchmark.Close > benchmark.EMA200:
		return model.TrendBullish
	case benchmark.Close < benchmark.EMA200:
		return model.TrendBearish
	default:
		return model.TrendNeutral
	}
}

// Defaults for AdmissionRule.
const (
	DefaultMinScore        = 30
	DefaultBearishMinScore = 90
	DefaultBenchmark       = "BTC/USDT"
)

// AdmissionRule decides whether a scored signal becomes active.
type AdmissionRule struct {
	MinScore        int
	BearishMinScore int
	Benchmark       string
}

// DefaultAdmissionRule returns the standard thresholds.
func DefaultAdmissionRule() AdmissionRule {
	return AdmissionRule{
		MinScore:        DefaultMinScore,
		BearishMinScore: DefaultBearishMinScore,
		Benchmark:       DefaultBenchmark,
	}
}

// Allows reports whether sig may be admitted under the given market trend.
// The benchmark itself is gated like any other symbol.
func (r AdmissionRule) Allows(sig *model.ScoredSignal, trend model.MarketTrend) bool {
	if sig == nil || sig.Score < r.MinScore {
		return false
	}
	return trend != model.TrendBearish || sig.Score >= r.BearishMinScore
}
