package store

import (
	"fmt"
	"testing"
	"time"

	"CryptoSignals/internal/model"
	"CryptoSignals/internal/scanner"
)

func cycle(scores ...int) *scanner.CycleResult {
	res := &scanner.CycleResult{
		StartedAt:  time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		FinishedAt: time.Date(2024, 5, 1, 0, 1, 0, 0, time.UTC),
		Trend:      model.TrendBullish,
	}
	for i, s := range scores {
		res.Ranked = append(res.Ranked, &model.ScoredSignal{
			Symbol:  fmt.Sprintf("C%d/USDT", s*100+i),
			Score:   s,
			Reasons: []string{"Strong Uptrend"},
		})
	}
	res.Scanned = len(scores)
	return res
}

func TestStore_PublishAndLatest(t *testing.T) {
	s := New(0)
	if s.Version() != 0 || len(s.Latest()) != 0 {
		t.Fatal("expected empty store")
	}
	if _, ok := s.LastCycle(); ok {
		t.Fatal("expected no cycle yet")
	}

	s.Publish(cycle(80, 60))
	if s.Version() != 1 {
		t.Errorf("expected version 1, got %d", s.Version())
	}
	latest := s.Latest()
	if len(latest) != 2 || latest[0].Score != 80 {
		t.Fatalf("unexpected latest: %+v", latest)
	}
	sum, ok := s.LastCycle()
	if !ok || sum.NewSignals != 2 || sum.Trend != model.TrendBullish {
		t.Errorf("unexpected summary: %+v", sum)
	}

	s.Publish(cycle())
	if len(s.Latest()) != 0 {
		t.Error("latest must reflect the most recent cycle only")
	}
	if len(s.History(0)) != 2 {
		t.Error("history must keep earlier admissions")
	}
}

func TestStore_HistoryBounded(t *testing.T) {
	s := New(5)
	for i := 0; i < 4; i++ {
		s.Publish(cycle(40+i, 30+i))
	}
	h := s.History(0)
	if len(h) != 5 {
		t.Fatalf("expected 5 entries, got %d", len(h))
	}
	// the newest admission is last
	if h[len(h)-1].Score != 33 {
		t.Errorf("expected newest entry last, got %d", h[len(h)-1].Score)
	}
	if got := s.History(2); len(got) != 2 || got[1].Score != 33 {
		t.Errorf("unexpected limited history: %+v", got)
	}
	if got := s.History(100); len(got) != 5 {
		t.Errorf("limit above size should return all, got %d", len(got))
	}
}

func TestStore_ReturnsCopies(t *testing.T) {
	s := New(10)
	s.Publish(cycle(70))

	latest := s.Latest()
	latest[0].Score = 0
	latest[0].Reasons[0] = "mutated"

	again := s.Latest()
	if again[0].Score != 70 || again[0].Reasons[0] != "Strong Uptrend" {
		t.Error("Latest must return independent copies")
	}
	h := s.History(0)
	h[0].Reasons[0] = "mutated"
	if s.History(0)[0].Reasons[0] != "Strong Uptrend" {
		t.Error("History must return independent copies")
	}
}
