package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"CryptoSignals/internal/metrics"
	"CryptoSignals/internal/notifier"
	"CryptoSignals/internal/recorder"
	"CryptoSignals/internal/scanner"
	"CryptoSignals/internal/store"
	"CryptoSignals/internal/tracker"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// DefaultScanCron runs a scan every 20 minutes.
const DefaultScanCron = "0 */20 * * * *"

// CycleRunner runs one scan cycle.
type CycleRunner interface {
	RunCycle(ctx context.Context, watchlist []string) *scanner.CycleResult
}

// Scheduler owns the scan loop: cron and on-demand triggers, the single-flight guard,
// and the post-cycle fan-out to store, metrics, journal and dispatchers.
type Scheduler struct {
	Cron       *cron.Cron
	Scanner    CycleRunner
	Tracker    *tracker.Tracker
	Store      *store.Store
	Dispatcher notifier.Dispatcher
	Recorder   recorder.Recorder
	Metrics    *metrics.Recorder
	Watchlist  []string
	Ctx        context.Context

	log     zerolog.Logger
	running atomic.Bool
	pending atomic.Bool
	wg      sync.WaitGroup
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, sc CycleRunner, tr *tracker.Tracker, st *store.Store,
	d notifier.Dispatcher, rec recorder.Recorder, m *metrics.Recorder, watchlist []string, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		Cron:       cron.New(cron.WithSeconds()),
		Scanner:    sc,
		Tracker:    tr,
		Store:      st,
		Dispatcher: d,
		Recorder:   rec,
		Metrics:    m,
		Watchlist:  watchlist,
		Ctx:        ctx,
		log:        log.With().Str("component", "scheduler").Logger(),
	}
}

// Register adds the recurring scan job.
func (s *Scheduler) Register(scanCron string) error {
	if scanCron == "" {
		scanCron = DefaultScanCron
	}
	if _, err := s.Cron.AddFunc(scanCron, func() { s.Trigger() }); err != nil {
		return fmt.Errorf("register scan task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info().Int("symbols", len(s.Watchlist)).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for an in-flight cycle to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.wg.Wait()
	s.log.Info().Msg("scheduler stopped")
}

// Trigger requests a scan cycle. It returns true when a new cycle was started and
// false when one is already running; in that case at most one follow-up cycle is
// queued, however many triggers arrive meanwhile.
func (s *Scheduler) Trigger() bool {
	if s.start() {
		return true
	}
	s.pending.Store(true)
	// the loop may have released the guard before it could see pending
	if s.start() {
		return true
	}
	s.Metrics.RecordCoalesced()
	s.log.Debug().Msg("scan already running, trigger coalesced")
	return false
}

// start takes the guard and launches the loop. Any queued request is served by
// the cycle about to run.
func (s *Scheduler) start() bool {
	if !s.running.CompareAndSwap(false, true) {
		return false
	}
	s.pending.Store(false)
	s.wg.Add(1)
	go s.loop()
	return true
}

// Running reports whether a cycle is in flight.
func (s *Scheduler) Running() bool {
	return s.running.Load()
}

// Wait blocks until no cycle is running or queued.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

func (s *Scheduler) loop() {
	defer s.wg.Done()
	for {
		s.runCycle()
		if s.pending.CompareAndSwap(true, false) {
			continue
		}
		s.running.Store(false)
		// a trigger may have been coalesced between the check above and the release
		if s.pending.Load() && s.running.CompareAndSwap(false, true) {
			s.pending.Store(false)
			continue
		}
		return
	}
}

func (s *Scheduler) runCycle() {
	if s.Ctx.Err() != nil {
		return
	}
	res := s.Scanner.RunCycle(s.Ctx, s.Watchlist)

	s.Store.Publish(res)
	s.Metrics.RecordCycle(res.Duration(), len(res.Skipped), res.Events, s.Tracker.Len())

	for _, ev := range res.Events {
		if err := s.Recorder.RecordEvent(ev); err != nil {
			s.log.Error().Err(err).Str("kind", string(ev.Kind())).Str("symbol", ev.Meta().Symbol).Msg("record event")
		}
	}
	if err := s.Recorder.RecordCycle(&recorder.CycleRecord{
		StartedAt:  res.StartedAt,
		FinishedAt: res.FinishedAt,
		Trend:      res.Trend,
		Scanned:    res.Scanned,
		Skipped:    len(res.Skipped),
		NewSignals: len(res.Ranked),
		Events:     len(res.Events),
	}); err != nil {
		s.log.Error().Err(err).Msg("record cycle")
	}

	// state is already committed; delivery failures are only logged
	for _, ev := range res.Events {
		if err := s.Dispatcher.Dispatch(s.Ctx, ev); err != nil {
			s.log.Error().Err(err).Str("kind", string(ev.Kind())).Str("symbol", ev.Meta().Symbol).Msg("dispatch event")
		}
	}
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	cmd := strings.Fields(command)
	if len(cmd) == 0 {
		return helpText
	}
	// "/signals@MyBot" in group chats
	name, _, _ := strings.Cut(strings.ToLower(cmd[0]), "@")

	switch name {
	case "/signals":
		return notifier.FormatSignalList("Latest Signals", s.Store.Latest())
	case "/history":
		return notifier.FormatSignalList("Signal History", s.Store.History(10))
	case "/active":
		return notifier.FormatActiveList(s.Tracker.List())
	case "/scan":
		if s.Trigger() {
			return "🔄 Scan started"
		}
		return "⏳ Scan already running, another one is queued"
	case "/status":
		return s.status()
	default:
		return helpText
	}
}

const helpText = "Available commands:\n• /signals\n• /active\n• /history\n• /scan\n• /status"

func (s *Scheduler) status() string {
	var b strings.Builder
	b.WriteString("📡 <b>Status</b>\n\n")
	b.WriteString(fmt.Sprintf("Watchlist: %d symbols\n", len(s.Watchlist)))
	b.WriteString(fmt.Sprintf("Active signals: %d\n", s.Tracker.Len()))
	b.WriteString(fmt.Sprintf("Scan running: %v\n", s.Running()))
	if sum, ok := s.Store.LastCycle(); ok {
		b.WriteString(fmt.Sprintf("Last scan: %s (%s)\n", sum.FinishedAt.Format("2006-01-02 15:04"), sum.FinishedAt.Sub(sum.StartedAt).Round(time.Second)))
		b.WriteString(fmt.Sprintf("Market: %s | scanned %d | skipped %d | new %d\n", sum.Trend, sum.Scanned, len(sum.Skipped), sum.NewSignals))
	} else {
		b.WriteString("Last scan: never\n")
	}
	return b.String()
}
