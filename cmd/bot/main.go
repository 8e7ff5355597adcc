package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"CryptoSignals/internal/api"
	"CryptoSignals/internal/collector"
	"CryptoSignals/internal/config"
	"CryptoSignals/internal/logger"
	"CryptoSignals/internal/metrics"
	"CryptoSignals/internal/notifier"
	"CryptoSignals/internal/recorder"
	"CryptoSignals/internal/scanner"
	"CryptoSignals/internal/scheduler"
	"CryptoSignals/internal/store"
	"CryptoSignals/internal/strategy"
	"CryptoSignals/internal/tracker"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		zlog.Fatal().Err(err).Msg("load config")
	}
	if err := cfg.Validate(); err != nil {
		zlog.Fatal().Err(err).Msg("config validation")
	}

	log, err := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output})
	if err != nil {
		zlog.Fatal().Err(err).Msg("init logger")
	}
	log.Info().Str("config", cfgPath).Int("watchlist", len(cfg.Scan.Watchlist)).Msg("CryptoSignals starting")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New(nil)

	// Init fetcher
	var fetcher collector.Fetcher = collector.NewBinanceFetcher(cfg.DataSource.BaseURL, cfg.Proxy, cfg.DataSource.Timeout)
	if cfg.DataSource.SimulateOnFailure {
		fetcher = collector.NewFallbackFetcher(fetcher, &collector.SimulatedFetcher{}, log)
	}
	log.Info().Str("source", fetcher.Name()).Str("timeframe", cfg.DataSource.Timeframe).Msg("data source ready")

	col := collector.NewCollector(fetcher, cfg.DataSource.Timeframe, cfg.DataSource.Lookback, log)
	tr := tracker.New()
	sc := scanner.New(col, tr, log)
	sc.Workers = cfg.Scan.Workers
	sc.Rule = strategy.AdmissionRule{
		MinScore:        cfg.Scan.MinScore,
		BearishMinScore: cfg.Scan.BearishMinScore,
		Benchmark:       cfg.Scan.Benchmark,
	}
	st := store.New(cfg.Scan.HistorySize)

	// Init dispatchers
	fcm, err := notifier.NewFCMNotifier(ctx, cfg.Firebase.CredentialsPath, cfg.Firebase.TopicEN, cfg.Firebase.TopicAR, log)
	if err != nil {
		log.Fatal().Err(err).Msg("init FCM")
	}
	dispatchers := []notifier.Dispatcher{notifier.NewLogNotifier(log)}
	if fcm.Enabled() {
		dispatchers = append(dispatchers, fcm)
	}

	var tn *notifier.TelegramNotifier
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, log)
		dispatchers = append(dispatchers, tn)
	}

	if len(cfg.Kafka.Brokers) > 0 {
		kp, err := notifier.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			log.Fatal().Err(err).Msg("init kafka publisher")
		}
		defer kp.Close()
		dispatchers = append(dispatchers, kp)
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("kafka publishing enabled")
	}

	dispatch := newDispatcher(dispatchers, m)

	// Init recorder
	rec := newRecorder(cfg.Database.SQLitePath, log)
	defer rec.Close()

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, sc, tr, st, dispatch, rec, m, cfg.Scan.Watchlist, log)
	if err := sched.Register(cfg.Scan.Cron); err != nil {
		log.Fatal().Err(err).Msg("register scan job")
	}
	sched.Start()

	if tn != nil && cfg.Telegram.PollCommands {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Info().Msg("telegram polling started")
	}

	if cfg.Scan.RunOnStart {
		log.Info().Msg("running initial scan")
		sched.Trigger()
	}

	srv := api.NewServer(cfg.HTTP.Addr, api.NewHandler(st, tr, sched, fcm, log), m, log)
	srv.Start()

	log.Info().Msg("CryptoSignals is running. Press Ctrl+C to stop.")
	<-ctx.Done()

	log.Info().Msg("shutdown signal received, stopping...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown")
	}
	sched.Stop()
	log.Info().Msg("CryptoSignals stopped")
}

// newDispatcher fans events out to every dispatcher and counts failures per dispatcher.
// The scheduler logs the joined error, so failures are not logged here.
func newDispatcher(dispatchers []notifier.Dispatcher, m *metrics.Recorder) *notifier.Multi {
	return &notifier.Multi{
		Dispatchers: dispatchers,
		OnError: func(name string, _ error) {
			m.RecordNotifyError(name)
		},
	}
}

func newRecorder(path string, log zerolog.Logger) recorder.Recorder {
	if path == "" {
		return recorder.NewNoopRecorder()
	}
	sr, err := recorder.NewSQLiteRecorder(path, log)
	if err != nil {
		log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
		return recorder.NewNoopRecorder()
	}
	return sr
}
