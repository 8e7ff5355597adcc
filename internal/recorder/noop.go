package recorder

import "CryptoSignals/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordEvent(_ model.Event) error  { return nil }
func (n *NoopRecorder) RecordCycle(_ *CycleRecord) error { return nil }
func (n *NoopRecorder) Close() error                     { return nil }
