package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DatabaseURL string

	JWTSecret        string
	TokenTTL         time.Duration
	AllowAdminSignup bool

	StoreTimeout       time.Duration
	CheckoutIsolation  string // "" | "serializable" | "repeatable_read"
	MaxMultipartMemory int64

	UploadDir       string
	BackupDir       string
	BackupRetention time.Duration
	BackupHour      int

	KafkaBrokers       string
	KafkaTopic         string
	OutboxPollInterval time.Duration
	OutboxBatch        int

	CORSOrigins []string
	GinMode     string
}

// Load reads .env (if present) and the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function, so tests can pass a map.
func FromEnv(getenv func(string) string) (Config, error) {
	get := func(k, def string) string {
		v := strings.TrimSpace(getenv(k))
		if v == "" {
			return def
		}
		return v
	}

	cfg := Config{
		Port:              get("PORT", "8080"),
		JWTSecret:         get("JWT_SECRET", ""),
		AllowAdminSignup:  parseBool(get("ALLOW_ADMIN_SIGNUP", "false")),
		CheckoutIsolation: strings.ToLower(get("CHECKOUT_ISOLATION", "")),
		UploadDir:         get("UPLOAD_DIR", "./uploads"),
		BackupDir:         get("BACKUP_DIR", ""),
		KafkaBrokers:      get("KAFKA_BROKERS", ""),
		KafkaTopic:        get("KAFKA_TOPIC", "storefront.orders"),
		GinMode:           get("GIN_MODE", "release"),
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET is required")
	}

	cfg.DatabaseURL = get("DATABASE_URL", "")
	if cfg.DatabaseURL == "" {
		host := getenv("DB_HOST")
		if host == "" {
			return Config{}, errors.New("DATABASE_URL or DB_HOST is required")
		}
		cfg.DatabaseURL = fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			host, getenv("DB_USER"), getenv("DB_PASSWORD"), getenv("DB_NAME"), get("DB_PORT", "5432"),
		)
	}

	var err error
	if cfg.TokenTTL, err = time.ParseDuration(get("TOKEN_TTL", "24h")); err != nil {
		return Config{}, fmt.Errorf("TOKEN_TTL: %w", err)
	}
	if cfg.StoreTimeout, err = time.ParseDuration(get("STORE_TIMEOUT", "5s")); err != nil {
		return Config{}, fmt.Errorf("STORE_TIMEOUT: %w", err)
	}
	if cfg.OutboxPollInterval, err = time.ParseDuration(get("OUTBOX_POLL_INTERVAL", "2s")); err != nil {
		return Config{}, fmt.Errorf("OUTBOX_POLL_INTERVAL: %w", err)
	}
	if cfg.BackupRetention, err = time.ParseDuration(get("BACKUP_RETENTION", "96h")); err != nil {
		return Config{}, fmt.Errorf("BACKUP_RETENTION: %w", err)
	}
	if cfg.OutboxBatch, err = strconv.Atoi(get("OUTBOX_BATCH", "100")); err != nil || cfg.OutboxBatch <= 0 {
		return Config{}, fmt.Errorf("OUTBOX_BATCH must be a positive integer")
	}
	if cfg.BackupHour, err = strconv.Atoi(get("BACKUP_HOUR", "2")); err != nil || cfg.BackupHour < 0 || cfg.BackupHour > 23 {
		return Config{}, fmt.Errorf("BACKUP_HOUR must be 0-23")
	}
	mb, err := strconv.ParseInt(get("MAX_UPLOAD_MB", "32"), 10, 64)
	if err != nil || mb <= 0 {
		return Config{}, fmt.Errorf("MAX_UPLOAD_MB must be a positive integer")
	}
	cfg.MaxMultipartMemory = mb << 20

	switch cfg.CheckoutIsolation {
	case "", "serializable", "repeatable_read":
	default:
		return Config{}, fmt.Errorf("CHECKOUT_ISOLATION %q not supported", cfg.CheckoutIsolation)
	}

	for _, o := range strings.Split(get("CORS_ORIGINS", "*"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}
	return cfg, nil
}

func parseBool(v string) bool {
	v = strings.ToLower(v)
	return v == "1" || v == "true" || v == "yes"
}
