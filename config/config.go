package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Auth modes.
const (
	AuthSimulated = "simulated"
	AuthVerified  = "verified"
)

type SMTP struct {
	Host     string
	Port     int `validate:"omitempty,min=1,max=65535"`
	User     string
	Password string
	From     string `validate:"omitempty,email"`
}

func (s SMTP) Enabled() bool { return s.Host != "" }

type Cloudinary struct {
	CloudName    string
	APIKey       string
	APISecret    string
	UploadPreset string
	Folder       string
}

func (c Cloudinary) Enabled() bool {
	return c.CloudName != "" && c.APIKey != "" && c.APISecret != ""
}

// Config is read from the environment, optionally seeded by a .env file.
type Config struct {
	Port        string        `validate:"required,numeric"`
	JWTSecret   string        `validate:"required,min=8"`
	TokenTTL    time.Duration `validate:"gt=0"`
	AuthMode    string        `validate:"required,oneof=simulated verified"`
	LoginDelay  time.Duration `validate:"gte=0"`
	AdminEmails []string      `validate:"dive,email"`

	CatalogPath      string
	DemoAppointments bool
	DatabaseURL      string
	RedisAddr        string
	CountryTTL       time.Duration `validate:"gt=0"`

	Cloudinary Cloudinary
	SMTP       SMTP

	ReportRecipients []string `validate:"dive,email"`
	ReportCron       string   `validate:"required"`
	CountriesCron    string   `validate:"required"`

	LogEnv string `validate:"required"`
	LogDir string

	CORSOrigins    string
	RateLimitRPS   float64 `validate:"gt=0"`
	RateLimitBurst int     `validate:"min=1"`
}

var validate = validator.New()

// Load reads .env (when present) then the process environment.
func Load() (*Config, error) {
	// a missing .env is fine, the environment may already be populated
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function, so tests can pass a map.
func FromEnv(getenv func(string) string) (*Config, error) {
	e := envReader{get: getenv}
	cfg := &Config{
		Port:        e.str("PORT", "8000"),
		JWTSecret:   e.str("JWT_SECRET", ""),
		TokenTTL:    e.duration("TOKEN_TTL", 24*time.Hour),
		AuthMode:    e.str("AUTH_MODE", AuthSimulated),
		LoginDelay:  e.duration("LOGIN_DELAY", 1500*time.Millisecond),
		AdminEmails: e.list("ADMIN_EMAILS"),

		CatalogPath:      e.str("CATALOG_PATH", ""),
		DemoAppointments: e.boolean("DEMO_APPOINTMENTS", false),
		DatabaseURL:      e.str("SUPABASE_DB_URL", e.str("DATABASE_URL", "")),
		RedisAddr:        e.str("REDIS_ADDR", ""),
		CountryTTL:       e.duration("COUNTRIES_CACHE_TTL", time.Hour),

		Cloudinary: Cloudinary{
			CloudName:    e.str("CLOUDINARY_CLOUD_NAME", ""),
			APIKey:       e.str("CLOUDINARY_API_KEY", ""),
			APISecret:    e.str("CLOUDINARY_API_SECRET", ""),
			UploadPreset: e.str("CLOUDINARY_UPLOAD_PRESET", ""),
			Folder:       e.str("CLOUDINARY_FOLDER", "analyses"),
		},
		SMTP: SMTP{
			Host:     e.str("SMTP_HOST", ""),
			Port:     e.integer("SMTP_PORT", 587),
			User:     e.str("EMAIL_USER", ""),
			Password: e.str("EMAIL_PASS", ""),
			From:     e.str("EMAIL_FROM", e.str("EMAIL_USER", "")),
		},

		ReportRecipients: e.list("REPORT_RECIPIENTS"),
		ReportCron:       e.str("REPORT_CRON", "0 6 * * 1"),
		CountriesCron:    e.str("COUNTRIES_CRON", "@every 1h"),

		LogEnv: e.str("LOG_ENV", "dev"),
		LogDir: e.str("LOG_DIR", ""),

		CORSOrigins:    e.str("CORS_ORIGINS", "*"),
		RateLimitRPS:   e.number("RATE_LIMIT_RPS", 1),
		RateLimitBurst: e.integer("RATE_LIMIT_BURST", 5),
	}
	if e.err != nil {
		return nil, e.err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate runs the struct tags and checks both cron expressions.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	for name, spec := range map[string]string{"REPORT_CRON": cfg.ReportCron, "COUNTRIES_CRON": cfg.CountriesCron} {
		if _, err := cron.ParseStandard(spec); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, spec, err)
		}
	}
	return nil
}

// IsAdmin reports whether email is listed in ADMIN_EMAILS.
func (c *Config) IsAdmin(email string) bool {
	for _, a := range c.AdminEmails {
		if strings.EqualFold(a, strings.TrimSpace(email)) {
			return true
		}
	}
	return false
}

type envReader struct {
	get func(string) string
	err error
}

func (e *envReader) str(key, fallback string) string {
	if v := strings.TrimSpace(e.get(key)); v != "" {
		return v
	}
	return fallback
}

func (e *envReader) list(key string) []string {
	var out []string
	for _, part := range strings.Split(e.get(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (e *envReader) integer(key string, fallback int) int {
	v := e.str(key, "")
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.fail(key, err)
		return fallback
	}
	return n
}

func (e *envReader) boolean(key string, fallback bool) bool {
	v := e.str(key, "")
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.fail(key, err)
		return fallback
	}
	return b
}

func (e *envReader) number(key string, fallback float64) float64 {
	v := e.str(key, "")
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		e.fail(key, err)
		return fallback
	}
	return f
}

func (e *envReader) duration(key string, fallback time.Duration) time.Duration {
	v := e.str(key, "")
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.fail(key, err)
		return fallback
	}
	return d
}

func (e *envReader) fail(key string, err error) {
	if e.err == nil {
		e.err = fmt.Errorf("invalid %s: %w", key, err)
	}
}
