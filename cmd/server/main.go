// Command server runs the gigmarket account-security API.
//
//	@title						gigmarket account-security API
//	@version					1.0
//	@description				Identity reconciliation, sessions and abuse-gated account emails.
//	@BasePath					/
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/gigmarket/account-security/internal/api"
	"github.com/gigmarket/account-security/internal/api/handler"
	"github.com/gigmarket/account-security/internal/core/domain"
	"github.com/gigmarket/account-security/internal/core/ports"
	"github.com/gigmarket/account-security/internal/core/service"
	"github.com/gigmarket/account-security/internal/infrastructure/config"
	mongodb "github.com/gigmarket/account-security/internal/infrastructure/db/mongo"
	redisdb "github.com/gigmarket/account-security/internal/infrastructure/db/redis"
	"github.com/gigmarket/account-security/internal/infrastructure/email"
	"github.com/gigmarket/account-security/internal/infrastructure/oauth"
	"github.com/gigmarket/account-security/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		bootLog := logger.Init(logger.Options{Service: "account-security"})
		bootLog.Fatal().Err(err).Msg("load config")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
		Service: "account-security",
		Env:     cfg.Env,
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := mongoClient.Disconnect(dctx); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect")
		}
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Warn().Err(err).Msg("redis close")
		}
	}()

	identities := mongodb.NewIdentityRepository(db)
	if err := identities.EnsureIndexes(ctx); err != nil {
		return err
	}

	mailer, err := buildMailer(cfg, log)
	if err != nil {
		return err
	}
	providers, err := buildProviders(ctx, cfg)
	if err != nil {
		return err
	}

	reconciler := service.NewIdentityReconciler(
		identities,
		service.BcryptHasher{},
		service.ReconcileRules{AllowOAuthProviderSwitch: cfg.AllowOAuthProviderSwitch},
		log.With().Str("component", "reconciler").Logger(),
	)
	sessions := service.NewSessionEnricher(identities, cfg.JWTSecret, cfg.SessionTTL, log.With().Str("component", "sessions").Logger())
	gate := service.NewAbuseGate(redisdb.NewCounterStore(rdb), log.With().Str("component", "abuse_gate").Logger())

	accounts := service.NewAccountSecurity(service.AccountSecurityDeps{
		Reconciler: reconciler,
		Sessions:   sessions,
		Gate:       gate,
		Identities: identities,
		Tokens:     redisdb.NewTokenStore(rdb),
		Mailer:     mailer,
		Providers:  providers,
		Policies: service.Policies{
			PasswordReset:      cfg.ResetPolicy(),
			VerificationResend: cfg.VerifyPolicy(),
		},
		BaseURL: cfg.BaseURL,
	}, log)

	e := api.NewRouter(api.RouterDeps{
		Service:      accounts,
		SecureCookie: cfg.Env == "production",
		Log:          log,
		Checks: map[string]handler.PingFunc{
			"mongo": func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) },
			"redis": func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		},
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(sctx)
}

// buildMailer prefers the HTTP email API and falls back to SMTP.
func buildMailer(cfg *config.Config, log zerolog.Logger) (*email.Dispatcher, error) {
	var senders []ports.EmailSender
	if cfg.Mail.APIKey != "" {
		senders = append(senders, email.NewAPISender(email.APIConfig{
			BaseURL: cfg.Mail.APIURL,
			APIKey:  cfg.Mail.APIKey,
			From:    cfg.Mail.From,
		}))
	}
	if cfg.SMTP.Host != "" {
		senders = append(senders, email.NewSMTPSender(email.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.Mail.From,
		}))
	}

	mlog := log.With().Str("component", "mailer").Logger()
	switch len(senders) {
	case 0:
		return nil, errors.New("no email channel configured: set MAIL_API_KEY or SMTP_HOST")
	case 1:
		mlog.Warn().Str("channel", senders[0].Name()).Msg("single email channel, no fallback")
		return email.NewDispatcher(senders[0], nil, mlog), nil
	default:
		return email.NewDispatcher(senders[0], senders[1], mlog), nil
	}
}

func buildProviders(ctx context.Context, cfg *config.Config) (map[domain.Provider]ports.OAuthProvider, error) {
	providers := map[domain.Provider]ports.OAuthProvider{}
	if cfg.Google.Enabled() {
		g, err := oauth.NewGoogle(ctx, oauthConfig(cfg.Google))
		if err != nil {
			return nil, err
		}
		providers[domain.ProviderGoogle] = g
	}
	if cfg.GitHub.Enabled() {
		gh, err := oauth.NewGitHub(oauthConfig(cfg.GitHub))
		if err != nil {
			return nil, err
		}
		providers[domain.ProviderGitHub] = gh
	}
	return providers, nil
}

func oauthConfig(c config.OAuthConfig) oauth.Config {
	return oauth.Config{ClientID: c.ClientID, ClientSecret: c.ClientSecret, RedirectURL: c.RedirectURL}
}
