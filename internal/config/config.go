package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultWatchlist is the top-50 USDT pairs scanned when none is configured.
var DefaultWatchlist = []string{
	"BTC/USDT", "ETH/USDT", "BNB/USDT", "SOL/USDT", "XRP/USDT", "ADA/USDT", "AVAX/USDT", "DOGE/USDT",
	"DOT/USDT", "TRX/USDT", "LINK/USDT", "POL/USDT", "SHIB/USDT", "LTC/USDT", "BCH/USDT", "ATOM/USDT",
	"UNI/USDT", "XLM/USDT", "ETC/USDT", "FIL/USDT", "HBAR/USDT", "APT/USDT", "NEAR/USDT", "VET/USDT",
	"QNT/USDT", "AAVE/USDT", "GRT/USDT", "ALGO/USDT", "STX/USDT", "EOS/USDT", "SAND/USDT", "THETA/USDT",
	"EGLD/USDT", "MANA/USDT", "AXS/USDT", "FTM/USDT", "FLOW/USDT", "XTZ/USDT", "CHZ/USDT", "SUI/USDT",
	"ICP/USDT", "ARB/USDT", "OP/USDT", "LDO/USDT", "RENDER/USDT", "INJ/USDT", "IMX/USDT", "GALA/USDT",
	"SNX/USDT", "CRV/USDT",
}

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken     string `yaml:"bot_token"`
		ChatID       string `yaml:"chat_id"`
		PollCommands bool   `yaml:"poll_commands" default:"true"`
	} `yaml:"telegram"`
	Firebase struct {
		CredentialsPath string `yaml:"credentials_path"`
		TopicEN         string `yaml:"topic_en" default:"signals_en" validate:"required"`
		TopicAR         string `yaml:"topic_ar" default:"signals_ar" validate:"required"`
	} `yaml:"firebase"`
	Kafka struct {
		Brokers []string `yaml:"brokers"`
		Topic   string   `yaml:"topic" default:"crypto-signals"`
	} `yaml:"kafka"`
	DataSource struct {
		BaseURL           string        `yaml:"base_url" default:"https://api.binance.com" validate:"required,url"`
		Timeframe         string        `yaml:"timeframe" default:"1h" validate:"oneof=15m 30m 1h 2h 4h 1d"`
		Lookback          int           `yaml:"lookback" default:"500" validate:"min=200,max=1000"`
		Timeout           time.Duration `yaml:"timeout" default:"30s" validate:"gt=0"`
		SimulateOnFailure bool          `yaml:"simulate_on_failure" default:"true"`
	} `yaml:"data_source"`
	Scan struct {
		Cron            string   `yaml:"cron" default:"0 */20 * * * *" validate:"required"`
		RunOnStart      bool     `yaml:"run_on_start" default:"true"`
		Watchlist       []string `yaml:"watchlist" validate:"dive,required,contains=/"`
		Workers         int      `yaml:"workers" default:"5" validate:"min=1,max=50"`
		MinScore        int      `yaml:"min_score" default:"30"`
		BearishMinScore int      `yaml:"bearish_min_score" default:"90"`
		Benchmark       string   `yaml:"benchmark" default:"BTC/USDT" validate:"required"`
		HistorySize     int      `yaml:"history_size" default:"50" validate:"min=1"`
	} `yaml:"scan"`
	HTTP struct {
		Addr string `yaml:"addr" default:":8000" validate:"required"`
	} `yaml:"http"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Log struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
		Format string `yaml:"format" default:"json" validate:"oneof=json console"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

var validate = validator.New()

// Load reads config from a YAML file, then applies .env and environment variable overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// .env never overrides variables already set in the environment
	_ = godotenv.Load()

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if len(cfg.Scan.Watchlist) == 0 {
		cfg.Scan.Watchlist = append([]string(nil), DefaultWatchlist...)
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("FIREBASE_CREDENTIALS_PATH"); v != "" {
		c.Firebase.CredentialsPath = v
	}
	if v := os.Getenv("BINANCE_BASE_URL"); v != "" {
		c.DataSource.BaseURL = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
	if v := os.Getenv("SCAN_CRON"); v != "" {
		c.Scan.Cron = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		c.HTTP.Addr = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = splitList(v)
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.Database.SQLitePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv("WATCHLIST"); v != "" {
		c.Scan.Watchlist = splitList(v)
	}
	if v := os.Getenv("RUN_ON_START"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("RUN_ON_START: %w", err)
		}
		c.Scan.RunOnStart = b
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks field constraints and cross-field rules.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%s: failed %q validation (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return err
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		return fmt.Errorf("kafka.topic is required when brokers are set")
	}
	if c.Scan.BearishMinScore < c.Scan.MinScore {
		return fmt.Errorf("scan.bearish_min_score must be >= scan.min_score")
	}
	if len(c.Scan.Watchlist) == 0 {
		return fmt.Errorf("scan.watchlist must not be empty")
	}
	return nil
}

// TelegramEnabled reports whether Telegram credentials are configured.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}
