package store

import (
	"sync"
	"time"

	"CryptoSignals/internal/model"
	"CryptoSignals/internal/scanner"
)

// DefaultHistorySize is the number of past admissions kept.
const DefaultHistorySize = 50

// CycleSummary describes the most recent scan cycle.
type CycleSummary struct {
	StartedAt  time.Time               `json:"started_at"`
	FinishedAt time.Time               `json:"finished_at"`
	Trend      model.MarketTrend       `json:"trend"`
	Scanned    int                     `json:"scanned"`
	NewSignals int                     `json:"new_signals"`
	Events     int                     `json:"events"`
	Skipped    []scanner.SkippedSymbol `json:"skipped"`
}

// Store is the read model served to the API. All reads return copies.
type Store struct {
	mu        sync.RWMutex
	latest    []model.ScoredSignal
	history   []model.ScoredSignal
	maxHist   int
	lastCycle *CycleSummary
	version   uint64
}

// New creates a Store keeping up to historySize admissions.
func New(historySize int) *Store {
	if historySize <= 0 {
		historySize = DefaultHistorySize
	}
	return &Store{maxHist: historySize}
}

// Publish replaces the latest ranked list with the cycle's admissions and appends them
// to the history, dropping the oldest entries beyond the history size.
func (s *Store) Publish(res *scanner.CycleResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.latest = make([]model.ScoredSignal, 0, len(res.Ranked))
	for _, sig := range res.Ranked {
		s.latest = append(s.latest, cloneSignal(sig))
		s.history = append(s.history, cloneSignal(sig))
	}
	if over := len(s.history) - s.maxHist; over > 0 {
		s.history = append([]model.ScoredSignal(nil), s.history[over:]...)
	}

	skipped := make([]scanner.SkippedSymbol, len(res.Skipped))
	copy(skipped, res.Skipped)
	s.lastCycle = &CycleSummary{
		StartedAt:  res.StartedAt,
		FinishedAt: res.FinishedAt,
		Trend:      res.Trend,
		Scanned:    res.Scanned,
		NewSignals: len(res.Ranked),
		Events:     len(res.Events),
		Skipped:    skipped,
	}
	s.version++
}

// Latest returns the most recent ranked admissions, highest score first.
func (s *Store) Latest() []model.ScoredSignal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.ScoredSignal, len(s.latest))
	for i := range s.latest {
		out[i] = cloneSignal(&s.latest[i])
	}
	return out
}

// History returns up to limit past admissions, oldest first. limit <= 0 returns all.
func (s *Store) History(limit int) []model.ScoredSignal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	src := s.history
	if limit > 0 && limit < len(src) {
		src = src[len(src)-limit:]
	}
	out := make([]model.ScoredSignal, len(src))
	for i := range src {
		out[i] = cloneSignal(&src[i])
	}
	return out
}

// LastCycle returns the summary of the most recent cycle.
func (s *Store) LastCycle() (CycleSummary, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastCycle == nil {
		return CycleSummary{}, false
	}
	return *s.lastCycle, true
}

// Version increases with every published cycle.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

func cloneSignal(sig *model.ScoredSignal) model.ScoredSignal {
	c := *sig
	c.Reasons = append([]string(nil), sig.Reasons...)
	return c
}
