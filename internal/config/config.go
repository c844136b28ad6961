// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes server timeouts,
// logging, storage selection, mail delivery, the assistant fallback and
// observability settings.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// Storage drivers.
const (
	StoreSQLite = "sqlite"
	StoreMongo  = "mongo"
)

// Mail drivers.
const (
	MailSMTP = "smtp"
	MailLog  = "log"
)

// Welcome email delivery policies.
const (
	DeliveryBestEffort = "best_effort"
	DeliveryRequired   = "required"
)

// Assistant fallback strategies.
const (
	FallbackNone     = "none"
	FallbackExternal = "external"
	FallbackGeneric  = "generic"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "launchmate")
	Environment string  // OTEL_DEPLOYMENT_ENVIRONMENT (e.g. "production")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// StoreConfig selects and configures the subscriber store.
type StoreConfig struct {
	Driver        string // sqlite|mongo
	DBPath        string // SQLite path (also holds tasks and idempotency records)
	MongoURI      string // MONGO_URI
	MongoDatabase string // MONGO_DATABASE
}

// MailConfig configures outbound welcome emails.
type MailConfig struct {
	Driver   string        // smtp|log
	Host     string        // SMTP_HOST
	Port     int           // SMTP_PORT
	Username string        // EMAIL_USER, also the sender address
	Password string        // EMAIL_PASS
	FromName string        // display name of the sender
	Timeout  time.Duration // per-send deadline
	Delivery string        // best_effort|required
}

// AssistantConfig configures the rule table and the no-match fallback.
type AssistantConfig struct {
	Fallback       string        // none|external|generic
	GeminiAPIKey   string        // GEMINI_API_KEY
	GeminiModel    string        // GEMINI_MODEL
	Timeout        time.Duration // deadline for one external call
	RulesPath      string        // optional YAML override of the built-in rules
	MaxPromptRunes int           // per-turn input cap
	SessionIdleTTL time.Duration // idle sessions are evicted after this
}

// CalendarConfig configures the compliance schedule.
type CalendarConfig struct {
	SchedulePath string // optional YAML override of the built-in schedule
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool   // pretty console logs in dev
	SwaggerEnabled bool   // enable Swagger UI route
	APIBasePath    string // base path for API routes

	Store     StoreConfig
	Mail      MailConfig
	Assistant AssistantConfig
	Calendar  CalendarConfig

	// Rate limiting
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)
	// TrustedProxies may set X-Forwarded-For; empty trusts none, so the
	// client IP is the socket peer.
	TrustedProxies []string

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Idempotency
	IdempotencyTTL time.Duration // how long a given Idempotency-Key is valid

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		// Server
		Port:              getenv("PORT", "5000"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 30*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging / Docs
		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:      getbool("LOG_PRETTY", false),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(getenv("API_BASE_PATH", "/api")),

		Store: StoreConfig{
			Driver:        strings.ToLower(getenv("STORE_DRIVER", StoreSQLite)),
			DBPath:        getenv("DB_PATH", "launchmate.db"),
			MongoURI:      getenv("MONGO_URI", ""),
			MongoDatabase: getenv("MONGO_DATABASE", "launchmate"),
		},
		Mail: MailConfig{
			Driver:   strings.ToLower(getenv("MAIL_DRIVER", defaultMailDriver())),
			Host:     getenv("SMTP_HOST", "smtp.gmail.com"),
			Port:     getint("SMTP_PORT", 587),
			Username: getenv("EMAIL_USER", ""),
			Password: getenv("EMAIL_PASS", ""),
			FromName: getenv("MAIL_FROM_NAME", "Team LaunchMate"),
			Timeout:  getdur("MAIL_TIMEOUT", 15*time.Second),
			Delivery: strings.ToLower(getenv("WELCOME_DELIVERY", DeliveryBestEffort)),
		},
		Assistant: AssistantConfig{
			Fallback:       strings.ToLower(getenv("ASSISTANT_FALLBACK", FallbackExternal)),
			GeminiAPIKey:   getenv("GEMINI_API_KEY", ""),
			GeminiModel:    getenv("GEMINI_MODEL", "gemini-2.0-flash"),
			Timeout:        getdur("ASSISTANT_TIMEOUT", 20*time.Second),
			RulesPath:      getenv("ASSISTANT_RULES_PATH", ""),
			MaxPromptRunes: getint("ASSISTANT_MAX_PROMPT_RUNES", 2000),
			SessionIdleTTL: getdur("SESSION_IDLE_TTL", 30*time.Minute),
		},
		Calendar: CalendarConfig{
			SchedulePath: getenv("CALENDAR_SCHEDULE_PATH", ""),
		},

		// Rate limiting
		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),

		TrustedProxies: splitCSV(getenv("TRUSTED_PROXIES", "")),

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		// Idempotency
		IdempotencyTTL: getdur("IDEMPOTENCY_TTL", 24*time.Hour),

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "launchmate"),
			Environment: getenv("OTEL_DEPLOYMENT_ENVIRONMENT", "development"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}
	cfg.Mail.Delivery = strings.ReplaceAll(cfg.Mail.Delivery, "-", "_")

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}

	switch cfg.Store.Driver {
	case StoreSQLite, StoreMongo:
	default:
		return cfg, errors.New("STORE_DRIVER must be one of: sqlite, mongo")
	}
	if strings.TrimSpace(cfg.Store.DBPath) == "" {
		return cfg, errors.New("DB_PATH must not be empty")
	}
	if cfg.Store.Driver == StoreMongo && strings.TrimSpace(cfg.Store.MongoURI) == "" {
		return cfg, errors.New("MONGO_URI is required when STORE_DRIVER=mongo")
	}

	switch cfg.Mail.Driver {
	case MailSMTP, MailLog:
	default:
		return cfg, errors.New("MAIL_DRIVER must be one of: smtp, log")
	}
	if cfg.Mail.Driver == MailSMTP {
		if strings.TrimSpace(cfg.Mail.Username) == "" || cfg.Mail.Password == "" {
			return cfg, errors.New("EMAIL_USER and EMAIL_PASS are required when MAIL_DRIVER=smtp")
		}
		if cfg.Mail.Port <= 0 || cfg.Mail.Port > 65535 {
			return cfg, errors.New("SMTP_PORT must be in 1..65535")
		}
	}
	if cfg.Mail.Timeout <= 0 {
		return cfg, errors.New("MAIL_TIMEOUT must be > 0")
	}
	switch cfg.Mail.Delivery {
	case DeliveryBestEffort, DeliveryRequired:
	default:
		return cfg, errors.New("WELCOME_DELIVERY must be one of: best_effort, required")
	}

	switch cfg.Assistant.Fallback {
	case FallbackNone, FallbackExternal, FallbackGeneric:
	default:
		return cfg, errors.New("ASSISTANT_FALLBACK must be one of: none, external, generic")
	}
	if cfg.Assistant.Timeout <= 0 {
		return cfg, errors.New("ASSISTANT_TIMEOUT must be > 0")
	}
	if cfg.Assistant.MaxPromptRunes < 1 {
		return cfg, errors.New("ASSISTANT_MAX_PROMPT_RUNES must be >= 1")
	}
	if cfg.Assistant.SessionIdleTTL <= 0 {
		return cfg, errors.New("SESSION_IDLE_TTL must be > 0")
	}

	if cfg.RateRPS < 0 {
		return cfg, errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return cfg, errors.New("RATE_BURST must be >= 1")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.IdempotencyTTL <= 0 {
		return cfg, errors.New("IDEMPOTENCY_TTL must be > 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// ---- helpers ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// defaultMailDriver picks SMTP when credentials are present and the logging
// sender otherwise, so a bare local run still accepts subscriptions.
func defaultMailDriver() string {
	if getenv("EMAIL_USER", "") != "" {
		return MailSMTP
	}
	return MailLog
}

// normalizeBasePath ensures leading '/' and strips trailing '/' (except root).
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	return p
}
