package model

import "time"

// Status is the strength tier of a scored signal.
type Status string

const (
	StatusStrong Status = "STRONG"
	StatusMedium Status = "MEDIUM"
	StatusWeak   Status = "WEAK"
)

// RiskRewardUnavailable is the ratio shown when the setup has no positive risk.
const RiskRewardUnavailable = "N/A"

// TradeSetup is the ATR-based entry, stop and targets of a signal.
type TradeSetup struct {
	EntryLow        float64 `json:"entry_low"`
	EntryHigh       float64 `json:"entry_high"`
	EntryZone       string  `json:"entry_zone"`
	StopLoss        float64 `json:"stop_loss"`
	Target1         float64 `json:"target_1"`
	Target2         float64 `json:"target_2"`
	RiskRewardRatio string  `json:"risk_reward_ratio"`
}

// ScoredSignal is the output of the scorer for one snapshot.
type ScoredSignal struct {
	Symbol     string     `json:"symbol"`
	Price      float64    `json:"price"`
	Score      int        `json:"score"`
	Status     Status     `json:"status"`
	RSI        float64    `json:"rsi"`
	ADX        float64    `json:"adx"`
	Reasons    []string   `json:"reasons"`
	Timestamp  time.Time  `json:"timestamp"`
	TradeSetup TradeSetup `json:"trade_setup"`
}

// ActiveSignal is the lifecycle state of an admitted signal. It is owned by the tracker.
type ActiveSignal struct {
	Symbol              string    `json:"symbol"`
	Score               int       `json:"score"`
	EntryPrice          float64   `json:"entry_price"`
	StopLoss            float64   `json:"stop_loss"`
	Target1             float64   `json:"target_1"`
	Target2             float64   `json:"target_2"`
	MaxGainPct          float64   `json:"max_gain_pct"`
	TP1Hit              bool      `json:"tp1_hit"`
	TP2Hit              bool      `json:"tp2_hit"`
	LastReportedGainPct float64   `json:"last_reported_gain_pct"`
	OpenedAt            time.Time `json:"opened_at"`
}
