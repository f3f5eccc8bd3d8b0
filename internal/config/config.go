package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv    string
	Port      string
	LogFormat string
	LogLevel  string

	DatabasePath      string
	VisitorRetention  time.Duration
	ContentFile       string
	WatchContent      bool
	StaticDir         string
	CertificatesDir   string
	ContactRecipient  string
	MaxMailtoLength   int
	SessionTTL        time.Duration
	CookieSecure      bool
	ContactRateLimit  string
	AdminUsername     string
	AdminPassword     string
	AdminPasswordHash string
}

// Load reads configuration from environment variables and an optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:            valueOrDefault(k.String("APP_ENV"), "development"),
		Port:              valueOrDefault(k.String("PORT"), "8080"),
		LogFormat:         valueOrDefault(k.String("LOG_FORMAT"), "console"),
		LogLevel:          valueOrDefault(k.String("LOG_LEVEL"), "info"),
		DatabasePath:      valueOrDefault(k.String("DATABASE_PATH"), "data/portfolio.db"),
		VisitorRetention:  parseDuration(k.String("VISITOR_RETENTION"), "8760h"),
		ContentFile:       strings.TrimSpace(k.String("PORTFOLIO_CONTENT_FILE")),
		WatchContent:      parseBool(k.String("PORTFOLIO_WATCH")),
		StaticDir:         valueOrDefault(k.String("STATIC_DIR"), "./static"),
		CertificatesDir:   valueOrDefault(k.String("CERTIFICATES_DIR"), "./certificates"),
		ContactRecipient:  strings.TrimSpace(k.String("CONTACT_RECIPIENT")),
		MaxMailtoLength:   parseInt(k.String("CONTACT_MAX_MAILTO_LENGTH"), 2048),
		SessionTTL:        parseDuration(k.String("SESSION_TTL"), "30m"),
		CookieSecure:      parseBool(k.String("COOKIE_SECURE")),
		ContactRateLimit:  valueOrDefault(k.String("RATE_LIMIT"), "60-M"),
		AdminUsername:     valueOrDefault(k.String("ADMIN_USERNAME"), "admin"),
		AdminPassword:     k.String("ADMIN_PASSWORD"),
		AdminPasswordHash: strings.TrimSpace(k.String("ADMIN_PASSWORD_HASH")),
	}

	if cfg.MaxMailtoLength < 64 {
		return nil, fmt.Errorf("CONTACT_MAX_MAILTO_LENGTH must be at least 64, got %d", cfg.MaxMailtoLength)
	}
	if cfg.WatchContent && cfg.ContentFile == "" {
		return nil, fmt.Errorf("PORTFOLIO_WATCH requires PORTFOLIO_CONTENT_FILE")
	}
	return cfg, nil
}

// IsDevelopment reports whether the app runs with development defaults.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.AppEnv, "development")
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseInt(value string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
