package notifier

import (
	"context"
	"errors"
	"fmt"
	"os"

	"CryptoSignals/internal/model"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
)

// ErrFCMDisabled is returned by SendTest when no Firebase credentials are configured.
var ErrFCMDisabled = errors.New("FCM is not enabled")

// messageSender is the part of *messaging.Client used here.
type messageSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// FCMNotifier publishes bilingual topic messages through Firebase Cloud Messaging.
type FCMNotifier struct {
	client messageSender
	topics map[Lang]string
	log    zerolog.Logger
}

// NewFCMNotifier initializes Firebase from a service account file. A missing path or file
// yields a disabled notifier rather than an error.
func NewFCMNotifier(ctx context.Context, credentialsPath, topicEN, topicAR string, log zerolog.Logger) (*FCMNotifier, error) {
	n := &FCMNotifier{
		topics: map[Lang]string{LangEN: topicEN, LangAR: topicAR},
		log:    log.With().Str("component", "fcm").Logger(),
	}
	if credentialsPath == "" {
		n.log.Warn().Msg("no Firebase credentials configured, FCM notifications will be skipped")
		return n, nil
	}
	if _, err := os.Stat(credentialsPath); err != nil {
		n.log.Warn().Str("path", credentialsPath).Msg("Firebase credentials not found, FCM notifications will be skipped")
		return n, nil
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("initialize firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("get messaging client: %w", err)
	}
	n.client = client
	n.log.Info().Msg("Firebase Cloud Messaging initialized")
	return n, nil
}

func (n *FCMNotifier) Name() string { return "fcm" }

// Enabled reports whether messages are actually sent.
func (n *FCMNotifier) Enabled() bool { return n.client != nil }

// Dispatch sends one topic message per language.
func (n *FCMNotifier) Dispatch(ctx context.Context, ev model.Event) error {
	if !n.Enabled() {
		return nil
	}
	meta := ev.Meta()
	data := map[string]string{
		"id":     meta.ID,
		"kind":   string(ev.Kind()),
		"symbol": meta.Symbol,
	}
	var errs []error
	for _, lang := range Languages {
		if err := n.send(ctx, lang, Format(ev, lang), data); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SendTest sends the test message to every language topic.
func (n *FCMNotifier) SendTest(ctx context.Context) error {
	if !n.Enabled() {
		return ErrFCMDisabled
	}
	var errs []error
	for _, lang := range Languages {
		if err := n.send(ctx, lang, FormatTest(lang), map[string]string{"kind": "TEST"}); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Topics returns the topic names in language order.
func (n *FCMNotifier) Topics() []string {
	out := make([]string, 0, len(Languages))
	for _, lang := range Languages {
		out = append(out, n.topics[lang])
	}
	return out
}

func (n *FCMNotifier) send(ctx context.Context, lang Lang, msg Message, data map[string]string) error {
	topic := n.topics[lang]
	resp, err := n.client.Send(ctx, &messaging.Message{
		Topic: topic,
		Notification: &messaging.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
	})
	if err != nil {
		return fmt.Errorf("send to %s: %w", topic, err)
	}
	n.log.Debug().Str("topic", topic).Str("response", resp).Msg("FCM sent")
	return nil
}
