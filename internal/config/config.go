package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Application
	AppName string
	AppEnv  string
	AppURL  string
	Port    string

	// Database (optional driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string

	// Security
	JWTSecret string
	JWTExpiry time.Duration

	// Admin account, seeded on startup
	AdminUsername string
	AdminPassword string

	// Reveal schedule. All day-boundary math runs in the fixed offset
	// zone so every viewer sees the same reveal instant.
	RevealTZOffsetHours int
	CountdownTarget     string // YYYY-MM-DD, interpreted at day start in the reveal zone
	WordCycleStart      string // YYYY-MM-DD
	WordCycleLength     int
	BirthdayDate        string // YYYY-MM-DD
	BirthdayWord        string
	WordsPath           string // optional JSON array file overriding the built-in table

	// Render cache
	RenderCacheSize int
	RenderCacheTTL  time.Duration

	// External content documents
	ContentFetchTimeout time.Duration

	// Observability (optional)
	SentryDSN string

	// Storage (S3-compatible: MinIO, AWS S3, Cloudflare R2, etc.)
	S3Region        string
	S3Bucket        string
	S3AccessKey     string
	S3SecretKey     string
	S3Endpoint      string // Optional: for S3-compatible services
	S3PresignExpiry time.Duration
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		// Application
		AppName: envString("APP_NAME", "Giftbox"),
		AppEnv:  envRequired("APP_ENV"), // Required: 'development' or 'production'
		AppURL:  envString("APP_URL", "http://localhost:8090"),
		Port:    envString("PORT", "8090"),

		// Database
		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/giftbox.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"),

		// Security
		JWTSecret: envRequired("JWT_SECRET"),
		JWTExpiry: envDuration("JWT_EXPIRY", 168*time.Hour), // 7 days

		// Admin
		AdminUsername: envString("ADMIN_USERNAME", "admin"),
		AdminPassword: envRequired("ADMIN_PASSWORD"),

		// Reveal schedule
		RevealTZOffsetHours: envInt("REVEAL_TZ_OFFSET_HOURS", 5),
		CountdownTarget:     envString("COUNTDOWN_TARGET", ""),
		WordCycleStart:      envString("WORD_CYCLE_START", ""),
		WordCycleLength:     envInt("WORD_CYCLE_LENGTH", 0), // 0 = length of the word table
		BirthdayDate:        envString("BIRTHDAY_DATE", ""),
		BirthdayWord:        envString("BIRTHDAY_WORD", ""),
		WordsPath:           envString("WORDS_PATH", ""),

		// Render cache: TTL must stay short relative to open-date
		// boundaries; admin mutations invalidate explicitly.
		RenderCacheSize: envInt("RENDER_CACHE_SIZE", 256),
		RenderCacheTTL:  envDuration("RENDER_CACHE_TTL", 10*time.Second),

		ContentFetchTimeout: envDuration("CONTENT_FETCH_TIMEOUT", 10*time.Second),

		// Observability
		SentryDSN: envString("SENTRY_DSN", ""),

		// Storage (S3-compatible - required for media uploads)
		S3Region:        envRequired("S3_REGION"),
		S3Bucket:        envRequired("S3_BUCKET"),
		S3AccessKey:     envRequired("S3_ACCESS_KEY"),
		S3SecretKey:     envRequired("S3_SECRET_KEY"),
		S3Endpoint:      envString("S3_ENDPOINT", ""), // Optional: for non-AWS providers
		S3PresignExpiry: envDuration("S3_PRESIGN_EXPIRY", 168*time.Hour),
	}

	return cfg
}

// RevealLocation returns the fixed-offset zone all unlock and day
// boundary math runs in.
func (c *Config) RevealLocation() *time.Location {
	return time.FixedZone("reveal", c.RevealTZOffsetHours*60*60)
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Sanitized returns a copy of the config with only public/safe fields.
// Secrets and credentials are excluded; safe to place in request context.
func (c *Config) Sanitized() *Config {
	return &Config{
		AppName: c.AppName,
		AppEnv:  c.AppEnv,
		AppURL:  c.AppURL,
		Port:    c.Port,

		RevealTZOffsetHours: c.RevealTZOffsetHours,
		CountdownTarget:     c.CountdownTarget,

		S3Endpoint: c.S3Endpoint,
	}
}
