package app

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/aussiebroadwan/lostfound/pkg/httpx"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Env       string `env:"ENV" envDefault:"development"` // development, production
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
	Port      int    `env:"PORT" envDefault:"5000"`

	DatabaseFile   string        `env:"DATABASE_FILE" envDefault:"lostfound.db"`
	PepperFile     string        `env:"PEPPER_FILE" envDefault:"pepper"`
	SessionKeyFile string        `env:"SESSION_KEY_FILE" envDefault:"session.key"`
	SessionIssuer  string        `env:"SESSION_ISSUER" envDefault:"lostfound"`
	SessionTTL     time.Duration `env:"SESSION_TTL" envDefault:"168h"`

	// ClientURL is the dashboard origin. Invite links point at it and it is
	// the only origin allowed by CORS.
	ClientURL string        `env:"CLIENT_URL" envDefault:"http://localhost:5173"`
	InviteTTL time.Duration `env:"INVITE_TTL" envDefault:"168h"`

	HousekeepingInterval time.Duration `env:"HOUSEKEEPING_INTERVAL" envDefault:"5m"`
	ShutdownGracePeriod  time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`

	UploadsDir     string `env:"UPLOADS_DIR" envDefault:"uploads"`
	UploadMaxBytes int64  `env:"UPLOAD_MAX_BYTES" envDefault:"10485760"`

	SMTP      SMTPConfig      `envPrefix:"SMTP_"`
	Bootstrap BootstrapConfig `envPrefix:"BOOTSTRAP_ADMIN_"`
	RateLimit RateLimitConfig `envPrefix:"RATE_LIMIT_"`
}

// SMTPConfig enables email delivery when Host is set; otherwise invites are
// only logged.
type SMTPConfig struct {
	Host     string `env:"HOST"`
	Port     int    `env:"PORT" envDefault:"587"`
	User     string `env:"USER"`
	Password string `env:"PASSWORD"`
	From     string `env:"FROM" envDefault:"Lost & Found <no-reply@localhost>"`
}

// BootstrapConfig seeds the first administrator when Email is set.
type BootstrapConfig struct {
	Email    string `env:"EMAIL"`
	Name     string `env:"NAME" envDefault:"Administrator"`
	Password string `env:"PASSWORD"`
}

// RateLimitConfig overrides the router's tiers; unset tiers keep the
// defaults from httpx.
type RateLimitConfig struct {
	Strict   httpx.RateLimit `env:"STRICT"`
	Moderate httpx.RateLimit `env:"MODERATE"`
	Lenient  httpx.RateLimit `env:"LENIENT"`
	Public   httpx.RateLimit `env:"PUBLIC"`
}

// LoadConfig reads .env from the working directory when present and then
// parses the environment. Variables already set win over the file.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return ParseConfig()
}

// ParseConfig parses the process environment only.
func ParseConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch {
	case c.Port <= 0 || c.Port > 65535:
		return fmt.Errorf("PORT %d out of range", c.Port)
	case c.ClientURL == "":
		return errors.New("CLIENT_URL is required")
	case c.InviteTTL <= 0:
		return errors.New("INVITE_TTL must be positive")
	case c.SessionTTL <= 0:
		return errors.New("SESSION_TTL must be positive")
	case c.UploadMaxBytes <= 0:
		return errors.New("UPLOAD_MAX_BYTES must be positive")
	case c.Bootstrap.Email != "" && c.Bootstrap.Password == "":
		return errors.New("BOOTSTRAP_ADMIN_PASSWORD is required with BOOTSTRAP_ADMIN_EMAIL")
	}
	return nil
}

// Production reports whether cookies should be marked Secure.
func (c Config) Production() bool {
	return c.Env == "production"
}
