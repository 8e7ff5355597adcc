package api

import (
	"fmt"
	"strings"
	"time"

	"CryptoSignals/internal/model"
)

const (
	iconURLPattern = "https://lcw.nyc3.cdn.digitaloceanspaces.com/production/currencies/64/%s.png"
	colorStrong    = "#00C853"
	colorDefault   = "#FFAB00"
)

// AndroidSignal is a signal pre-formatted for the mobile list view.
type AndroidSignal struct {
	ID         string `json:"id"`
	Coin       string `json:"coin"`
	Pair       string `json:"pair"`
	Price      string `json:"price"`
	ImageURL   string `json:"image_url"`
	ScoreValue int    `json:"score_value"`
	ScoreColor string `json:"score_color"`
	StatusText string `json:"status_text"`
	Entry      string `json:"entry"`
	Targets    string `json:"targets"`
	StopLoss   string `json:"stop_loss"`
	TimeAgo    string `json:"time_ago"`
}

// NewAndroidSignal formats sig relative to now.
func NewAndroidSignal(sig *model.ScoredSignal, now time.Time) AndroidSignal {
	coin, _, _ := strings.Cut(sig.Symbol, "/")
	color := colorDefault
	if sig.Score >= 80 {
		color = colorStrong
	}
	ts := sig.TradeSetup
	return AndroidSignal{
		ID:         fmt.Sprintf("%s-%s", sig.Symbol, sig.Timestamp.UTC().Format(time.RFC3339)),
		Coin:       coin,
		Pair:       sig.Symbol,
		Price:      fmt.Sprintf("$%.2f", sig.Price),
		ImageURL:   fmt.Sprintf(iconURLPattern, strings.ToLower(coin)),
		ScoreValue: sig.Score,
		ScoreColor: color,
		StatusText: string(sig.Status),
		Entry:      ts.EntryZone,
		Targets:    fmt.Sprintf("TP1: %.2f | TP2: %.2f", ts.Target1, ts.Target2),
		StopLoss:   fmt.Sprintf("Exit: %.2f", ts.StopLoss),
		TimeAgo:    TimeAgo(sig.Timestamp, now),
	}
}

// TimeAgo renders the age of t as "Just now", "Nm ago", "Nh ago" or "Nd ago".
func TimeAgo(t, now time.Time) string {
	minutes := int(now.Sub(t).Minutes())
	switch {
	case minutes < 1:
		return "Just now"
	case minutes < 60:
		return fmt.Sprintf("%dm ago", minutes)
	case minutes < 1440:
		return fmt.Sprintf("%dh ago", minutes/60)
	default:
		return fmt.Sprintf("%dd ago", minutes/1440)
	}
}
