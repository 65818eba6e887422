package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(env(map[string]string{
		"JWT_SECRET":   "s",
		"DATABASE_URL": "sqlite://file:dev.db",
	}))
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 5*time.Second, cfg.StoreTimeout)
	assert.Equal(t, int64(32<<20), cfg.MaxMultipartMemory)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, "storefront.orders", cfg.KafkaTopic)
	assert.False(t, cfg.AllowAdminSignup)
	assert.Equal(t, 2, cfg.BackupHour)
}

func TestFromEnvBuildsPostgresDSN(t *testing.T) {
	cfg, err := FromEnv(env(map[string]string{
		"JWT_SECRET":  "s",
		"DB_HOST":     "db",
		"DB_USER":     "shop",
		"DB_PASSWORD": "pw",
		"DB_NAME":     "store",
	}))
	require.NoError(t, err)
	assert.Equal(t, "host=db user=shop password=pw dbname=store port=5432 sslmode=disable", cfg.DatabaseURL)
}

func TestFromEnvErrors(t *testing.T) {
	base := func() map[string]string {
		return map[string]string{"JWT_SECRET": "s", "DATABASE_URL": "postgres://x"}
	}
	cases := map[string]map[string]string{
		"JWT_SECRET":         {"DATABASE_URL": "postgres://x"},
		"DATABASE_URL":       {"JWT_SECRET": "s"},
		"TOKEN_TTL":          {"TOKEN_TTL": "forever"},
		"CHECKOUT_ISOLATION": {"CHECKOUT_ISOLATION": "chaos"},
		"BACKUP_HOUR":        {"BACKUP_HOUR": "24"},
		"MAX_UPLOAD_MB":      {"MAX_UPLOAD_MB": "0"},
	}
	for name, overrides := range cases {
		t.Run(name, func(t *testing.T) {
			m := base()
			if name == "JWT_SECRET" || name == "DATABASE_URL" {
				m = overrides
			} else {
				for k, v := range overrides {
					m[k] = v
				}
			}
			_, err := FromEnv(env(m))
			assert.Error(t, err)
		})
	}
}

func TestFromEnvOverrides(t *testing.T) {
	cfg, err := FromEnv(env(map[string]string{
		"JWT_SECRET":         "s",
		"DATABASE_URL":       "postgres://x",
		"ALLOW_ADMIN_SIGNUP": "TRUE",
		"CHECKOUT_ISOLATION": "Serializable",
		"CORS_ORIGINS":       "https://a.example, https://b.example",
		"KAFKA_BROKERS":      "k1:9092",
	}))
	require.NoError(t, err)
	assert.True(t, cfg.AllowAdminSignup)
	assert.Equal(t, "serializable", cfg.CheckoutIsolation)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, "k1:9092", cfg.KafkaBrokers)
}
