package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"

	"github.com/gigmarket/account-security/internal/core/domain"
)

type Config struct {
	Port       string        `env:"PORT,        default=8080"`
	Env        string        `env:"ENV,         default=development"`
	LogLevel   string        `env:"LOG_LEVEL,   default=info"`
	LogPretty  bool          `env:"LOG_PRETTY,  default=false"`
	JWTSecret  string        `env:"JWT_SECRET"`
	SessionTTL time.Duration `env:"SESSION_TTL, default=720h"`
	BaseURL    string        `env:"APP_BASE_URL, default=http://localhost:3000"`

	// AllowOAuthProviderSwitch lets a Google-created email sign in with GitHub
	// and vice versa.
	AllowOAuthProviderSwitch bool `env:"ALLOW_OAUTH_PROVIDER_SWITCH, default=false"`

	Mongo  MongoConfig
	Redis  RedisConfig
	Reset  PolicyConfig `env:", prefix=RESET_"`
	Verify PolicyConfig `env:", prefix=VERIFY_"`
	Google OAuthConfig  `env:", prefix=GOOGLE_"`
	GitHub OAuthConfig  `env:", prefix=GITHUB_"`
	Mail   MailConfig
	SMTP   SMTPConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=gigmarket"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// PolicyConfig is one abuse-gate policy.
type PolicyConfig struct {
	Window      time.Duration `env:"WINDOW,       default=10m"`
	MaxAttempts int           `env:"MAX_ATTEMPTS, default=3"`
	Cooldown    time.Duration `env:"COOLDOWN,     default=10m"`
}

type OAuthConfig struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	RedirectURL  string `env:"REDIRECT_URL"`
}

// Enabled reports whether the provider has a client registration.
func (o OAuthConfig) Enabled() bool {
	return o.ClientID != ""
}

type MailConfig struct {
	APIURL string `env:"MAIL_API_URL, default=https://api.resend.com"`
	APIKey string `env:"MAIL_API_KEY"`
	From   string `env:"MAIL_FROM,    default=no-reply@gigmarket.local"`
}

type SMTPConfig struct {
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT, default=587"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values go-envconfig cannot.
func (c *Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if err := c.ResetPolicy().Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.VerifyPolicy().Validate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

func (c *Config) ResetPolicy() domain.CooldownPolicy {
	return c.Reset.policy(domain.ActionPasswordReset)
}

func (c *Config) VerifyPolicy() domain.CooldownPolicy {
	return c.Verify.policy(domain.ActionVerificationResend)
}

func (p PolicyConfig) policy(action string) domain.CooldownPolicy {
	return domain.CooldownPolicy{
		Action:      action,
		Window:      p.Window,
		MaxAttempts: p.MaxAttempts,
		Cooldown:    p.Cooldown,
	}
}
