package recorder

import (
	"time"

	"CryptoSignals/internal/model"
)

// CycleRecord summarizes one scan cycle for the journal.
type CycleRecord struct {
	StartedAt  time.Time
	FinishedAt time.Time
	Trend      model.MarketTrend
	Scanned    int
	Skipped    int
	NewSignals int
	Events     int
}

// Recorder journals lifecycle events and cycles for later analysis.
// It is write-only; engine state is never restored from it.
type Recorder interface {
	RecordEvent(ev model.Event) error
	RecordCycle(rec *CycleRecord) error
	Close() error
}
