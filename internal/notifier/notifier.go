package notifier

import (
	"context"
	"errors"
	"fmt"

	"CryptoSignals/internal/model"

	"github.com/rs/zerolog"
)

// Dispatcher delivers lifecycle events to one channel.
type Dispatcher interface {
	Name() string
	Dispatch(ctx context.Context, ev model.Event) error
}

// Multi fans an event out to every dispatcher. All dispatchers are attempted;
// failures are reported through OnError and joined into the returned error.
type Multi struct {
	Dispatchers []Dispatcher
	OnError     func(name string, err error)
}

func (m *Multi) Name() string { return "multi" }

func (m *Multi) Dispatch(ctx context.Context, ev model.Event) error {
	var errs []error
	for _, d := range m.Dispatchers {
		if err := d.Dispatch(ctx, ev); err != nil {
			if m.OnError != nil {
				m.OnError(d.Name(), err)
			}
			errs = append(errs, fmt.Errorf("%s: %w", d.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// LogNotifier writes one structured log line per event.
type LogNotifier struct {
	log zerolog.Logger
}

func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log.With().Str("component", "notifier").Logger()}
}

func (l *LogNotifier) Name() string { return "log" }

func (l *LogNotifier) Dispatch(_ context.Context, ev model.Event) error {
	msg := Format(ev, LangEN)
	e := l.log.Info().
		Str("kind", string(ev.Kind())).
		Str("symbol", ev.Meta().Symbol).
		Str("id", ev.Meta().ID)
	if gain, ok := model.GainPct(ev); ok {
		e = e.Float64("gain_pct", gain)
	}
	e.Msg(msg.Title)
	return nil
}
