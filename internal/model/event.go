package model

import (
	"time"

	"github.com/google/uuid"
)

// EventKind tags a lifecycle event.
type EventKind string

const (
	KindNewSignal      EventKind = "NEW_SIGNAL"
	KindTP1Hit         EventKind = "TP1_HIT"
	KindTP2Hit         EventKind = "TP2_HIT"
	KindExit           EventKind = "EXIT"
	KindPeriodicUpdate EventKind = "PERIODIC_UPDATE"
)

// EventMeta is shared by every lifecycle event.
type EventMeta struct {
	ID     string    `json:"id"`
	Symbol string    `json:"symbol"`
	At     time.Time `json:"at"`
}

// NewEventMeta stamps a fresh event id.
func NewEventMeta(symbol string, at time.Time) EventMeta {
	return EventMeta{ID: uuid.NewString(), Symbol: symbol, At: at}
}

// Event is one observable lifecycle transition. The set of implementations is closed;
// consumers switch over the concrete types.
type Event interface {
	Kind() EventKind
	Meta() EventMeta
	sealed()
}

// NewSignalEvent reports an admission.
type NewSignalEvent struct {
	EventMeta
	Signal ScoredSignal `json:"signal"`
}

// TP1HitEvent reports the first target being reached.
type TP1HitEvent struct {
	EventMeta
	Price   float64 `json:"price"`
	Target  float64 `json:"target"`
	GainPct float64 `json:"gain_pct"`
}

// TP2HitEvent reports the second target being reached.
type TP2HitEvent struct {
	EventMeta
	Price   float64 `json:"price"`
	Target  float64 `json:"target"`
	GainPct float64 `json:"gain_pct"`
}

// ExitEvent reports the stop loss being reached; the active signal is gone afterwards.
type ExitEvent struct {
	EventMeta
	Price      float64 `json:"price"`
	StopLoss   float64 `json:"stop_loss"`
	GainPct    float64 `json:"gain_pct"`
	MaxGainPct float64 `json:"max_gain_pct"`
}

// PeriodicUpdateEvent reports a new whole-percent gain level.
type PeriodicUpdateEvent struct {
	EventMeta
	Price   float64 `json:"price"`
	GainPct float64 `json:"gain_pct"`
}

func (e *NewSignalEvent) Kind() EventKind      { return KindNewSignal }
func (e *TP1HitEvent) Kind() EventKind         { return KindTP1Hit }
func (e *TP2HitEvent) Kind() EventKind         { return KindTP2Hit }
func (e *ExitEvent) Kind() EventKind           { return KindExit }
func (e *PeriodicUpdateEvent) Kind() EventKind { return KindPeriodicUpdate }

func (e *NewSignalEvent) Meta() EventMeta      { return e.EventMeta }
func (e *TP1HitEvent) Meta() EventMeta         { return e.EventMeta }
func (e *TP2HitEvent) Meta() EventMeta         { return e.EventMeta }
func (e *ExitEvent) Meta() EventMeta           { return e.EventMeta }
func (e *PeriodicUpdateEvent) Meta() EventMeta { return e.EventMeta }

func (*NewSignalEvent) sealed()      {}
func (*TP1HitEvent) sealed()         {}
func (*TP2HitEvent) sealed()         {}
func (*ExitEvent) sealed()           {}
func (*PeriodicUpdateEvent) sealed() {}

// Envelope is the wire form of an event (Kafka, journal, websocket).
type Envelope struct {
	ID      string    `json:"id"`
	Kind    EventKind `json:"kind"`
	Symbol  string    `json:"symbol"`
	At      time.Time `json:"at"`
	Payload Event     `json:"payload"`
}

// NewEnvelope wraps an event for serialization.
func NewEnvelope(ev Event) Envelope {
	m := ev.Meta()
	return Envelope{ID: m.ID, Kind: ev.Kind(), Symbol: m.Symbol, At: m.At, Payload: ev}
}

// GainPct returns the gain figure carried by the event, if any.
func GainPct(ev Event) (float64, bool) {
	switch e := ev.(type) {
	case *TP1HitEvent:
		return e.GainPct, true
	case *TP2HitEvent:
		return e.GainPct, true
	case *ExitEvent:
		return e.GainPct, true
	case *PeriodicUpdateEvent:
		return e.GainPct, true
	default:
		return 0, false
	}
}
