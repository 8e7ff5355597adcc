package tracker

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"CryptoSignals/internal/model"
)

// ErrAlreadyActive is returned when admitting a symbol that already has an active signal.
var ErrAlreadyActive = errors.New("signal already active")

// UpdateThresholdPct is the gain below which no periodic update is emitted.
const UpdateThresholdPct = 2.0

// Tracker owns the active signals, at most one per symbol.
// It is safe for concurrent readers; writes are expected from one cycle at a time.
type Tracker struct {
	mu     sync.RWMutex
	active map[string]*model.ActiveSignal
}

// New creates an empty Tracker.
func New() *Tracker {
	return &Tracker{active: make(map[string]*model.ActiveSignal)}
}

// Admit opens an active signal from a scored signal and returns the NEW_SIGNAL event.
func (t *Tracker) Admit(sig *model.ScoredSignal, at time.Time) (*model.NewSignalEvent, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.active[sig.Symbol]; ok {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyActive, sig.Symbol)
	}
	t.active[sig.Symbol] = &model.ActiveSignal{
		Symbol:     sig.Symbol,
		Score:      sig.Score,
		EntryPrice: sig.Price,
		StopLoss:   sig.TradeSetup.StopLoss,
		Target1:    sig.TradeSetup.Target1,
		Target2:    sig.TradeSetup.Target2,
		OpenedAt:   at,
	}

	reasons := make([]string, len(sig.Reasons))
	copy(reasons, sig.Reasons)
	signal := *sig
	signal.Reasons = reasons
	return &model.NewSignalEvent{
		EventMeta: model.NewEventMeta(sig.Symbol, at),
		Signal:    signal,
	}, nil
}

// Advance moves the active signal of symbol against the latest price.
// Checks run in fixed priority (stop loss, TP2, TP1, periodic update) and at most
// one event is emitted. Returns false when nothing fired or the symbol is not active.
func (t *Tracker) Advance(symbol string, price float64, at time.Time) (model.Event, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.active[symbol]
	if !ok {
		return nil, false
	}

	gain := (price - s.EntryPrice) / s.EntryPrice * 100
	if gain > s.MaxGainPct {
		s.MaxGainPct = gain
	}

	switch {
	case price <= s.StopLoss:
		delete(t.active, symbol)
		return &model.ExitEvent{
			EventMeta:  model.NewEventMeta(symbol, at),
			Price:      price,
			StopLoss:   s.StopLoss,
			GainPct:    gain,
			MaxGainPct: s.MaxGainPct,
		}, true

	case price >= s.Target2 && !s.TP2Hit:
		s.TP2Hit = true
		return &model.TP2HitEvent{
			EventMeta: model.NewEventMeta(symbol, at),
			Price:     price,
			Target:    s.Target2,
			GainPct:   gain,
		}, true

	case price >= s.Target1 && !s.TP1Hit:
		s.TP1Hit = true
		return &model.TP1HitEvent{
			EventMeta: model.NewEventMeta(symbol, at),
			Price:     price,
			Target:    s.Target1,
			GainPct:   gain,
		}, true

	case gain >= UpdateThresholdPct && math.Floor(gain) > math.Floor(s.LastReportedGainPct):
		s.LastReportedGainPct = gain
		return &model.PeriodicUpdateEvent{
			EventMeta: model.NewEventMeta(symbol, at),
			Price:     price,
			GainPct:   gain,
		}, true
	}
	return nil, false
}

// Get returns a copy of the active signal for symbol.
func (t *Tracker) Get(symbol string) (model.ActiveSignal, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.active[symbol]
	if !ok {
		return model.ActiveSignal{}, false
	}
	return *s, true
}

// Has reports whether symbol has an active signal.
func (t *Tracker) Has(symbol string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.active[symbol]
	return ok
}

// List returns copies of all active signals sorted by symbol.
func (t *Tracker) List() []model.ActiveSignal {
	t.mu.RLock()
	out := make([]model.ActiveSignal, 0, len(t.active))
	for _, s := range t.active {
		out = append(out, *s)
	}
	t.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// Len returns the number of active signals.
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.active)
}
