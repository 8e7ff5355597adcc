package scanner

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"CryptoSignals/internal/model"
	"CryptoSignals/internal/strategy"
	"CryptoSignals/internal/tracker"

	"github.com/rs/zerolog"
)

// DefaultWorkers bounds concurrent snapshot fetches.
const DefaultWorkers = 5

var errNoSnapshot = errors.New("provider returned no snapshot")

// SnapshotProvider yields the indicator snapshot for a symbol.
type SnapshotProvider interface {
	Snapshot(ctx context.Context, symbol string) (*model.IndicatorSnapshot, error)
}

// SkippedSymbol records a symbol whose snapshot could not be obtained.
type SkippedSymbol struct {
	Symbol string `json:"symbol"`
	Error  string `json:"error"`
}

// CycleResult is the outcome of one scan cycle.
type CycleResult struct {
	StartedAt  time.Time             `json:"started_at"`
	FinishedAt time.Time             `json:"finished_at"`
	Trend      model.MarketTrend     `json:"trend"`
	Ranked     []*model.ScoredSignal `json:"ranked"`
	Events     []model.Event         `json:"-"`
	Skipped    []SkippedSymbol       `json:"skipped"`
	Scanned    int                   `json:"scanned"`
}

// Duration of the cycle.
func (r *CycleResult) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Scanner runs scan cycles over a watchlist. It is not reentrant; callers
// must serialize RunCycle.
type Scanner struct {
	Provider SnapshotProvider
	Tracker  *tracker.Tracker
	Rule     strategy.AdmissionRule
	Workers  int
	Now      func() time.Time

	log zerolog.Logger
}

// New creates a Scanner with the default admission rule and worker count.
func New(provider SnapshotProvider, tr *tracker.Tracker, log zerolog.Logger) *Scanner {
	return &Scanner{
		Provider: provider,
		Tracker:  tr,
		Rule:     strategy.DefaultAdmissionRule(),
		Workers:  DefaultWorkers,
		Now:      time.Now,
		log:      log.With().Str("component", "scanner").Logger(),
	}
}

type fetchResult struct {
	snap *model.IndicatorSnapshot
	err  error
}

// RunCycle fetches snapshots for the watchlist and benchmark in parallel, classifies
// the market, then advances or admits each symbol in watchlist order.
// Cancellation stops the cycle before the next symbol.
func (s *Scanner) RunCycle(ctx context.Context, watchlist []string) *CycleResult {
	res := &CycleResult{StartedAt: s.Now()}

	snaps := s.fetchAll(ctx, watchlist)

	if bench, ok := snaps[s.Rule.Benchmark]; ok && bench.err == nil {
		res.Trend = strategy.ClassifyMarket(bench.snap)
	} else {
		res.Trend = strategy.ClassifyMarket(nil)
		if ok {
			s.log.Warn().Err(bench.err).Str("benchmark", s.Rule.Benchmark).Msg("benchmark unavailable, market treated as neutral")
		}
	}
	s.log.Info().Str("trend", string(res.Trend)).Int("symbols", len(watchlist)).Msg("scan cycle started")

	for _, symbol := range watchlist {
		if err := ctx.Err(); err != nil {
			s.log.Warn().Err(err).Msg("scan cycle cancelled")
			break
		}

		r := snaps[symbol]
		if r.err != nil {
			s.log.Warn().Err(r.err).Str("symbol", symbol).Msg("skipping symbol")
			res.Skipped = append(res.Skipped, SkippedSymbol{Symbol: symbol, Error: r.err.Error()})
			continue
		}
		res.Scanned++
		at := s.Now()

		if s.Tracker.Has(symbol) {
			if ev, ok := s.Tracker.Advance(symbol, r.snap.Close, at); ok {
				s.log.Info().Str("symbol", symbol).Str("kind", string(ev.Kind())).Float64("price", r.snap.Close).Msg("lifecycle event")
				res.Events = append(res.Events, ev)
			}
			continue
		}

		sig := strategy.Evaluate(r.snap)
		if sig == nil {
			s.log.Debug().Str("symbol", symbol).Int("bars", r.snap.Bars).Msg("insufficient history")
			continue
		}
		if !s.Rule.Allows(sig, res.Trend) {
			continue
		}
		ev, err := s.Tracker.Admit(sig, at)
		if err != nil {
			s.log.Error().Err(err).Str("symbol", symbol).Msg("admission failed")
			continue
		}
		s.log.Info().Str("symbol", symbol).Int("score", sig.Score).Str("status", string(sig.Status)).Msg("new signal")
		res.Events = append(res.Events, ev)
		res.Ranked = append(res.Ranked, sig)
	}

	sort.SliceStable(res.Ranked, func(i, j int) bool { return res.Ranked[i].Score > res.Ranked[j].Score })
	res.FinishedAt = s.Now()

	s.log.Info().
		Int("scanned", res.Scanned).
		Int("skipped", len(res.Skipped)).
		Int("new", len(res.Ranked)).
		Int("events", len(res.Events)).
		Dur("took", res.Duration()).
		Msg("scan cycle finished")
	return res
}

// fetchAll retrieves every distinct symbol of the watchlist plus the benchmark,
// at most Workers at a time.
func (s *Scanner) fetchAll(ctx context.Context, watchlist []string) map[string]fetchResult {
	symbols := make([]string, 0, len(watchlist)+1)
	seen := make(map[string]bool, len(watchlist)+1)
	for _, sym := range append([]string{s.Rule.Benchmark}, watchlist...) {
		if sym == "" || seen[sym] {
			continue
		}
		seen[sym] = true
		symbols = append(symbols, sym)
	}

	workers := s.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		out = make(map[string]fetchResult, len(symbols))
	)
	sem := make(chan struct{}, workers)

	for _, sym := range symbols {
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			var r fetchResult
			if err := ctx.Err(); err != nil {
				r.err = err
			} else {
				r.snap, r.err = s.Provider.Snapshot(ctx, symbol)
				if r.err == nil && r.snap == nil {
					r.err = errNoSnapshot
				}
			}

			mu.Lock()
			out[symbol] = r
			mu.Unlock()
		}(sym)
	}
	wg.Wait()
	return out
}
