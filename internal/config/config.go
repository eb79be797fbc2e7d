package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress             string
	DatabaseURI            string
	FrontendOrigins        []string
	LogLevel               string
	PaymentWindow          time.Duration
	SweepInterval          time.Duration
	SweepEnabled           bool
	SweepNotifyConcurrency int
	MailWorkers            int
	MailQueueSize          int
	ShutdownTimeout        time.Duration
	AdminLogin             string
	AdminPasswordHash      string
	AdminPassword          string
	AuthSecret             string
	CronSecret             string
	KafkaBrokers           []string
	KafkaTopic             string
	RedisAddress           string
	IdempotencyTTL         time.Duration
	MetricsNamespace       string
	AWSRegion              string

	Mail MailConfig
	Shop ShopConfig
}

// MailConfig describes the SMTP account used for customer emails.
type MailConfig struct {
	SMTPHost     string `split_words:"true" default:"smtp.gmail.com"`
	SMTPPort     int    `split_words:"true" default:"587"`
	Username     string
	Password     string
	From         string
	AdminAddress string `split_words:"true"`
}

// Enabled reports whether credentials are present.
func (m MailConfig) Enabled() bool {
	return m.Username != "" && m.Password != ""
}

// Sender returns the envelope sender address.
func (m MailConfig) Sender() string {
	if m.From != "" {
		return m.From
	}
	return m.Username
}

// ShopConfig carries storefront details rendered into emails and payment instructions.
type ShopConfig struct {
	Name           string `default:"Sweets by Bella"`
	ContactEmail   string `split_words:"true" default:"flawlesscreations@gmail.com"`
	ZelleRecipient string `split_words:"true" default:"flawlesscreations@gmail.com"`
	CashAppTag     string `split_words:"true" default:"$Actuallybellaa"`
}

const (
	defaultRunAddress             = ":8080"
	defaultLogLevel               = "info"
	defaultPaymentWindow          = 5 * time.Minute
	defaultSweepInterval          = time.Minute
	defaultSweepNotifyConcurrency = 4
	defaultMailWorkers            = 2
	defaultMailQueueSize          = 64
	defaultShutdownTimeout        = 10 * time.Second
	defaultAdminLogin             = "admin"
	defaultAuthSecret             = "change-me-in-production"
	defaultKafkaTopic             = "order-events"
	defaultIdempotencyTTL         = 24 * time.Hour
	defaultAWSRegion              = "us-east-1"
)

// Load parses configuration from flags and environment variables.
func Load() (*Config, error) {
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:             getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:            getString(lookup, "DATABASE_URI", ""),
		FrontendOrigins:        getList(lookup, "FRONTEND_URL"),
		LogLevel:               getString(lookup, "LOG_LEVEL", defaultLogLevel),
		PaymentWindow:          getDuration(lookup, "PAYMENT_WINDOW", defaultPaymentWindow),
		SweepInterval:          getDuration(lookup, "SWEEP_INTERVAL", defaultSweepInterval),
		SweepEnabled:           getBool(lookup, "SWEEP_ENABLED", true),
		SweepNotifyConcurrency: getInt(lookup, "SWEEP_NOTIFY_CONCURRENCY", defaultSweepNotifyConcurrency),
		MailWorkers:            getInt(lookup, "MAIL_WORKERS", defaultMailWorkers),
		MailQueueSize:          getInt(lookup, "MAIL_QUEUE_SIZE", defaultMailQueueSize),
		ShutdownTimeout:        getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		AdminLogin:             getString(lookup, "ADMIN_LOGIN", defaultAdminLogin),
		AdminPasswordHash:      getString(lookup, "ADMIN_PASSWORD_HASH", ""),
		AdminPassword:          getString(lookup, "ADMIN_PASSWORD", ""),
		AuthSecret:             getString(lookup, "AUTH_SECRET", defaultAuthSecret),
		CronSecret:             getString(lookup, "CRON_SECRET", ""),
		KafkaBrokers:           getList(lookup, "KAFKA_BROKERS"),
		KafkaTopic:             getString(lookup, "KAFKA_TOPIC", defaultKafkaTopic),
		RedisAddress:           getString(lookup, "REDIS_ADDR", ""),
		IdempotencyTTL:         getDuration(lookup, "IDEMPOTENCY_TTL", defaultIdempotencyTTL),
		MetricsNamespace:       getString(lookup, "METRICS_NAMESPACE", ""),
		AWSRegion:              getString(lookup, "AWS_REGION", defaultAWSRegion),
	}

	fs := flag.NewFlagSet("sweetsbybella", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		paymentWindowStr   = cfg.PaymentWindow.String()
		sweepIntervalStr   = cfg.SweepInterval.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.AuthSecret, "auth-secret", cfg.AuthSecret, "Secret for signing admin tokens")
	fs.StringVar(&paymentWindowStr, "payment-window", paymentWindowStr, "Time a new order waits for payment")
	fs.StringVar(&sweepIntervalStr, "sweep-interval", sweepIntervalStr, "Interval between expiry sweeps")
	fs.BoolVar(&cfg.SweepEnabled, "sweep", cfg.SweepEnabled, "Run the in-process expiry sweeper")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.PaymentWindow, err = time.ParseDuration(paymentWindowStr); err != nil {
		return nil, fmt.Errorf("invalid payment window: %w", err)
	}

	if cfg.SweepInterval, err = time.ParseDuration(sweepIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid sweep interval: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if secretFile, ok := lookup("AUTH_SECRET_FILE"); ok && secretFile != "" {
		content, err := os.ReadFile(secretFile)
		if err != nil {
			return nil, fmt.Errorf("read auth secret file: %w", err)
		}
		cfg.AuthSecret = strings.TrimSpace(string(content))
	}

	if err := envconfig.Process("MAIL", &cfg.Mail); err != nil {
		return nil, fmt.Errorf("mail config: %w", err)
	}

	if err := envconfig.Process("SHOP", &cfg.Shop); err != nil {
		return nil, fmt.Errorf("shop config: %w", err)
	}

	if cfg.PaymentWindow <= 0 {
		cfg.PaymentWindow = defaultPaymentWindow
	}

	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = defaultSweepInterval
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.IdempotencyTTL <= 0 {
		cfg.IdempotencyTTL = defaultIdempotencyTTL
	}

	if cfg.SweepNotifyConcurrency <= 0 {
		cfg.SweepNotifyConcurrency = defaultSweepNotifyConcurrency
	}

	if cfg.MailWorkers <= 0 {
		cfg.MailWorkers = defaultMailWorkers
	}

	if cfg.MailQueueSize <= 0 {
		cfg.MailQueueSize = defaultMailQueueSize
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	return cfg, nil
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

func getBool(lookup envLookup, key string, def bool) bool {
	if v, ok := lookup(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
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

func getList(lookup envLookup, key string) []string {
	v, ok := lookup(key)
	if !ok || v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
