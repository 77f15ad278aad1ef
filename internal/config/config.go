package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds application level configuration loaded from a file, environment and flags.
type Config struct {
	RunAddress      string
	DatabaseURI     string
	JWTSecret       string
	TokenTTL        time.Duration
	ShutdownTimeout time.Duration
	LogLevel        string

	RedisURL       string
	IdempotencyTTL time.Duration

	AMQPURL            string
	NotifyQueue        string
	NotifyWebhookURL   string
	NotifyPollInterval time.Duration
	NotifyBatchSize    int
	NotifyWorkers      int
	NotifyMaxAttempts  int

	AdminLogin    string
	AdminPassword string
}

const (
	defaultRunAddress         = ":8080"
	defaultJWTSecret          = "change-me-in-production"
	defaultTokenTTL           = 24 * time.Hour
	defaultShutdownTimeout    = 10 * time.Second
	defaultLogLevel           = "info"
	defaultIdempotencyTTL     = 24 * time.Hour
	defaultNotifyQueue        = "storefront.orders"
	defaultNotifyPollInterval = 2 * time.Second
	defaultNotifyBatchSize    = 32
	defaultNotifyWorkers      = 4
	defaultNotifyMaxAttempts  = 5
)

// fileConfig mirrors Config in the optional YAML file. Durations are Go duration strings.
type fileConfig struct {
	RunAddress         string `yaml:"run_address"`
	DatabaseURI        string `yaml:"database_uri"`
	JWTSecret          string `yaml:"jwt_secret"`
	TokenTTL           string `yaml:"token_ttl"`
	ShutdownTimeout    string `yaml:"shutdown_timeout"`
	LogLevel           string `yaml:"log_level"`
	RedisURL           string `yaml:"redis_url"`
	IdempotencyTTL     string `yaml:"idempotency_ttl"`
	AMQPURL            string `yaml:"amqp_url"`
	NotifyQueue        string `yaml:"notify_queue"`
	NotifyWebhookURL   string `yaml:"notify_webhook_url"`
	NotifyPollInterval string `yaml:"notify_poll_interval"`
	NotifyBatchSize    int    `yaml:"notify_batch_size"`
	NotifyWorkers      int    `yaml:"notify_workers"`
	NotifyMaxAttempts  int    `yaml:"notify_max_attempts"`
	AdminLogin         string `yaml:"admin_login"`
	AdminPassword      string `yaml:"admin_password"`
}

// Load parses configuration from flags, environment variables and an optional YAML file.
func Load() (*Config, error) {
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func defaults() *Config {
	return &Config{
		RunAddress:         defaultRunAddress,
		JWTSecret:          defaultJWTSecret,
		TokenTTL:           defaultTokenTTL,
		ShutdownTimeout:    defaultShutdownTimeout,
		LogLevel:           defaultLogLevel,
		IdempotencyTTL:     defaultIdempotencyTTL,
		NotifyQueue:        defaultNotifyQueue,
		NotifyPollInterval: defaultNotifyPollInterval,
		NotifyBatchSize:    defaultNotifyBatchSize,
		NotifyWorkers:      defaultNotifyWorkers,
		NotifyMaxAttempts:  defaultNotifyMaxAttempts,
	}
}

func load(args []string, lookup envLookup) (*Config, error) {
	base := defaults()

	path := configPath(args, lookup)
	if path != "" {
		if err := applyFile(base, path); err != nil {
			return nil, err
		}
	}

	cfg := &Config{
		RunAddress:         getString(lookup, "RUN_ADDRESS", base.RunAddress),
		DatabaseURI:        getString(lookup, "DATABASE_URI", base.DatabaseURI),
		JWTSecret:          getString(lookup, "JWT_SECRET", base.JWTSecret),
		TokenTTL:           getDuration(lookup, "TOKEN_TTL", base.TokenTTL),
		ShutdownTimeout:    getDuration(lookup, "SHUTDOWN_TIMEOUT", base.ShutdownTimeout),
		LogLevel:           getString(lookup, "LOG_LEVEL", base.LogLevel),
		RedisURL:           getString(lookup, "REDIS_URL", base.RedisURL),
		IdempotencyTTL:     getDuration(lookup, "IDEMPOTENCY_TTL", base.IdempotencyTTL),
		AMQPURL:            getString(lookup, "AMQP_URL", base.AMQPURL),
		NotifyQueue:        getString(lookup, "NOTIFY_QUEUE", base.NotifyQueue),
		NotifyWebhookURL:   getString(lookup, "NOTIFY_WEBHOOK_URL", base.NotifyWebhookURL),
		NotifyPollInterval: getDuration(lookup, "NOTIFY_POLL_INTERVAL", base.NotifyPollInterval),
		NotifyBatchSize:    getInt(lookup, "NOTIFY_BATCH_SIZE", base.NotifyBatchSize),
		NotifyWorkers:      getInt(lookup, "NOTIFY_WORKERS", base.NotifyWorkers),
		NotifyMaxAttempts:  getInt(lookup, "NOTIFY_MAX_ATTEMPTS", base.NotifyMaxAttempts),
		AdminLogin:         getString(lookup, "ADMIN_LOGIN", base.AdminLogin),
		AdminPassword:      getString(lookup, "ADMIN_PASSWORD", base.AdminPassword),
	}

	fs := flag.NewFlagSet("storefront", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		tokenTTLStr        = cfg.TokenTTL.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
		idempotencyTTLStr  = cfg.IdempotencyTTL.String()
		pollIntervalStr    = cfg.NotifyPollInterval.String()
	)

	fs.String("config", path, "Path to YAML configuration file")
	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", cfg.JWTSecret, "Secret for signing auth tokens")
	fs.StringVar(&tokenTTLStr, "token-ttl", tokenTTLStr, "Lifetime of issued auth tokens")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
	fs.StringVar(&cfg.RedisURL, "redis", cfg.RedisURL, "Redis URL for idempotency keys")
	fs.StringVar(&idempotencyTTLStr, "idempotency-ttl", idempotencyTTLStr, "How long idempotency keys are kept")
	fs.StringVar(&cfg.AMQPURL, "amqp", cfg.AMQPURL, "RabbitMQ URL for order notifications")
	fs.StringVar(&cfg.NotifyQueue, "notify-queue", cfg.NotifyQueue, "Queue receiving order notifications")
	fs.StringVar(&cfg.NotifyWebhookURL, "notify-webhook", cfg.NotifyWebhookURL, "Webhook receiving order notifications")
	fs.StringVar(&pollIntervalStr, "notify-interval", pollIntervalStr, "Interval between notification outbox polls")
	fs.IntVar(&cfg.NotifyBatchSize, "notify-batch", cfg.NotifyBatchSize, "Maximum notifications per poll")
	fs.IntVar(&cfg.NotifyWorkers, "notify-workers", cfg.NotifyWorkers, "Number of concurrent notification workers")
	fs.IntVar(&cfg.NotifyMaxAttempts, "notify-attempts", cfg.NotifyMaxAttempts, "Delivery attempts before a notification fails")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.TokenTTL, err = time.ParseDuration(tokenTTLStr); err != nil {
		return nil, fmt.Errorf("invalid token ttl: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if cfg.IdempotencyTTL, err = time.ParseDuration(idempotencyTTLStr); err != nil {
		return nil, fmt.Errorf("invalid idempotency ttl: %w", err)
	}

	if cfg.NotifyPollInterval, err = time.ParseDuration(pollIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid notify interval: %w", err)
	}

	if secretFile, ok := lookup("JWT_SECRET_FILE"); ok && secretFile != "" {
		content, err := os.ReadFile(secretFile)
		if err != nil {
			return nil, fmt.Errorf("read jwt secret file: %w", err)
		}
		cfg.JWTSecret = strings.TrimSpace(string(content))
	}

	normalize(cfg)

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	if (cfg.AdminLogin == "") != (cfg.AdminPassword == "") {
		return nil, fmt.Errorf("admin login and password must be provided together")
	}

	return cfg, nil
}

func normalize(cfg *Config) {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaultTokenTTL
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.IdempotencyTTL <= 0 {
		cfg.IdempotencyTTL = defaultIdempotencyTTL
	}

	if cfg.NotifyPollInterval <= 0 {
		cfg.NotifyPollInterval = defaultNotifyPollInterval
	}

	if cfg.NotifyBatchSize <= 0 {
		cfg.NotifyBatchSize = defaultNotifyBatchSize
	}

	if cfg.NotifyWorkers <= 0 {
		cfg.NotifyWorkers = defaultNotifyWorkers
	}

	if cfg.NotifyMaxAttempts <= 0 {
		cfg.NotifyMaxAttempts = defaultNotifyMaxAttempts
	}

	if cfg.NotifyQueue == "" {
		cfg.NotifyQueue = defaultNotifyQueue
	}
}

// configPath finds -config/--config among args before the flag set is parsed,
// falling back to CONFIG_FILE.
func configPath(args []string, lookup envLookup) string {
	for i := 0; i < len(args); i++ {
		name := strings.TrimLeft(args[i], "-")
		if !strings.HasPrefix(args[i], "-") {
			continue
		}
		if value, ok := strings.CutPrefix(name, "config="); ok {
			return value
		}
		if name == "config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return getString(lookup, "CONFIG_FILE", "")
}

func applyFile(cfg *Config, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(content, &fc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	setString(&cfg.RunAddress, fc.RunAddress)
	setString(&cfg.DatabaseURI, fc.DatabaseURI)
	setString(&cfg.JWTSecret, fc.JWTSecret)
	setString(&cfg.LogLevel, fc.LogLevel)
	setString(&cfg.RedisURL, fc.RedisURL)
	setString(&cfg.AMQPURL, fc.AMQPURL)
	setString(&cfg.NotifyQueue, fc.NotifyQueue)
	setString(&cfg.NotifyWebhookURL, fc.NotifyWebhookURL)
	setString(&cfg.AdminLogin, fc.AdminLogin)
	setString(&cfg.AdminPassword, fc.AdminPassword)
	setInt(&cfg.NotifyBatchSize, fc.NotifyBatchSize)
	setInt(&cfg.NotifyWorkers, fc.NotifyWorkers)
	setInt(&cfg.NotifyMaxAttempts, fc.NotifyMaxAttempts)

	durations := []struct {
		name  string
		value string
		dst   *time.Duration
	}{
		{"token_ttl", fc.TokenTTL, &cfg.TokenTTL},
		{"shutdown_timeout", fc.ShutdownTimeout, &cfg.ShutdownTimeout},
		{"idempotency_ttl", fc.IdempotencyTTL, &cfg.IdempotencyTTL},
		{"notify_poll_interval", fc.NotifyPollInterval, &cfg.NotifyPollInterval},
	}
	for _, d := range durations {
		if d.value == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.value)
		if err != nil {
			return fmt.Errorf("invalid %s in config file: %w", d.name, err)
		}
		*d.dst = parsed
	}

	return nil
}

func setString(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

func setInt(dst *int, value int) {
	if value != 0 {
		*dst = value
	}
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
