package config

import (
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Port         int
	NatsURL      string
	NatsToken    string
	DatabaseURL  string
	LogLevel     string
	GeminiAPIKey string
	ReportModel  string
	Timezone     string
	AvgTicket    decimal.Decimal
	PhoneRegion  string
	APIToken     string
	MaxUploadMB  int
}

// LoadDotEnv reads .env files into the environment without overriding
// variables that are already set. Missing files are ignored.
func LoadDotEnv(files ...string) {
	_ = godotenv.Load(files...)
}

func Load() Config {
	return Config{
		Port:         envInt("LEADLENS_PORT", 8760),
		NatsURL:      envStr("NATS_URL", ""),
		NatsToken:    envStr("NATS_TOKEN", ""),
		DatabaseURL:  envStr("DATABASE_URL", ""),
		LogLevel:     envStr("LOG_LEVEL", "info"),
		GeminiAPIKey: envStr("GEMINI_API_KEY", ""),
		ReportModel:  envStr("LEADLENS_REPORT_MODEL", "gemini-2.0-flash"),
		Timezone:     envStr("LEADLENS_TIMEZONE", ""),
		AvgTicket:    envDecimal("LEADLENS_AVG_TICKET", decimal.NewFromInt(500)),
		PhoneRegion:  envStr("LEADLENS_PHONE_REGION", "BO"),
		APIToken:     envStr("LEADLENS_API_TOKEN", ""),
		MaxUploadMB:  envInt("LEADLENS_MAX_UPLOAD_MB", 32),
	}
}

// Location resolves Timezone, falling back to time.Local when it is empty or
// unknown.
func (c Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// MaxUploadBytes is the upload limit in bytes.
func (c Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func envDecimal(key string, fallback decimal.Decimal) decimal.Decimal {
	if v := os.Getenv(key); v != "" {
		if d, err := decimal.NewFromString(v); err == nil && !d.IsNegative() {
			return d
		}
	}
	return fallback
}
