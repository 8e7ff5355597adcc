package recorder

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	"CryptoSignals/internal/model"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists the event journal to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log zerolog.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, log zerolog.Logger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets dashboards read while the bot writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: log.With().Str("component", "recorder").Logger()}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS signal_events (
			id          TEXT PRIMARY KEY,
			timestamp   INTEGER NOT NULL,
			kind        TEXT NOT NULL,
			symbol      TEXT NOT NULL,
			price       REAL,
			gain_pct    REAL,
			score       INTEGER,
			payload     TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_ts ON signal_events(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_events_symbol ON signal_events(symbol, timestamp)`,

		`CREATE TABLE IF NOT EXISTS cycles (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			started_at  INTEGER NOT NULL,
			finished_at INTEGER NOT NULL,
			trend       TEXT,
			scanned     INTEGER,
			skipped     INTEGER,
			new_signals INTEGER,
			events      INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cycles_ts ON cycles(started_at)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordEvent(ev model.Event) error {
	payload, err := json.Marshal(model.NewEnvelope(ev))
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	var (
		price float64
		score sql.NullInt64
	)
	gain, hasGain := model.GainPct(ev)
	switch e := ev.(type) {
	case *model.NewSignalEvent:
		price = e.Signal.Price
		score = sql.NullInt64{Int64: int64(e.Signal.Score), Valid: true}
	case *model.TP1HitEvent:
		price = e.Price
	case *model.TP2HitEvent:
		price = e.Price
	case *model.ExitEvent:
		price = e.Price
	case *model.PeriodicUpdateEvent:
		price = e.Price
	}
	gainPct := sql.NullFloat64{Float64: gain, Valid: hasGain}

	r.mu.Lock()
	defer r.mu.Unlock()

	meta := ev.Meta()
	_, err = r.db.Exec(`INSERT INTO signal_events
		(id, timestamp, kind, symbol, price, gain_pct, score, payload)
		VALUES (?,?,?,?,?,?,?,?)`,
		meta.ID, meta.At.Unix(), string(ev.Kind()), meta.Symbol,
		price, gainPct, score, string(payload),
	)
	return err
}

func (r *SQLiteRecorder) RecordCycle(rec *CycleRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO cycles
		(started_at, finished_at, trend, scanned, skipped, new_signals, events)
		VALUES (?,?,?,?,?,?,?)`,
		rec.StartedAt.Unix(), rec.FinishedAt.Unix(), string(rec.Trend),
		rec.Scanned, rec.Skipped, rec.NewSignals, rec.Events,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
