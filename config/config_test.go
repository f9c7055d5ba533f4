package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("JWT_ACCESS_TTL", "")
	cfg := Load()

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, time.Hour, cfg.AccessTTL)
	assert.Equal(t, 30*24*time.Hour, cfg.RefreshTTL)
	assert.Equal(t, "KES", cfg.DefaultCurrency)
	assert.InDelta(t, 0.10, cfg.VendorCommissionRate, 1e-9)
	assert.Equal(t, int64(16*1024*1024), cfg.MaxUploadBytes)
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("DB_MAX_CONNS", "many")
	t.Setenv("JWT_ACCESS_TTL", "soon")
	t.Setenv("VENDOR_COMMISSION_RATE", "ten")
	t.Setenv("COOKIE_SECURE", "maybe")
	cfg := Load()

	assert.Equal(t, int32(10), cfg.DBMaxConns)
	assert.Equal(t, time.Hour, cfg.AccessTTL)
	assert.InDelta(t, 0.10, cfg.VendorCommissionRate, 1e-9)
	assert.False(t, cfg.CookieSecure)
}

func TestDerivedValues(t *testing.T) {
	cfg := &Config{
		DBUser: "u", DBPassword: "p", DBHost: "db", DBPort: "5432", DBName: "kenfuse", DBSSLMode: "disable",
		CORSAllowedOrigins: " https://a.example , ,https://b.example",
		AllowedExtensions:  "PNG,.jpg, pdf",
	}

	assert.Equal(t, "postgres://u:p@db:5432/kenfuse?sslmode=disable", cfg.PostgresDSN())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins())
	assert.Equal(t, []string{"png", "jpg", "pdf"}, cfg.UploadExtensions())
	assert.False(t, cfg.MpesaConfigured())

	cfg.MpesaConsumerKey, cfg.MpesaConsumerSecret, cfg.MpesaShortcode, cfg.MpesaPasskey = "k", "s", "174379", "pk"
	assert.True(t, cfg.MpesaConfigured())
}
