package bootstrap

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/flowpos/pos-api/config"
	"github.com/flowpos/pos-api/internal/adapters/localidp"
	"github.com/flowpos/pos-api/internal/adapters/oidc"
	redisadapter "github.com/flowpos/pos-api/internal/adapters/redis"
	"github.com/flowpos/pos-api/internal/data"
	"github.com/flowpos/pos-api/internal/observability/statsd"
	"github.com/flowpos/pos-api/internal/ports"
	"github.com/flowpos/pos-api/internal/service"
)

// SessionConfig contains dependencies for building the session arbiter.
type SessionConfig struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Metrics     statsd.Sink
	Logger      *slog.Logger
}

// BuildCredentialVerifier creates the credential verifier selected by the
// configured auth mode.
//
//nolint:ireturn // the caller only needs the port.
func BuildCredentialVerifier(cfg config.AuthConfig, logger *slog.Logger) (ports.CredentialVerifier, error) {
	switch cfg.Mode {
	case config.AuthModeLocal:
		return localidp.NewVerifier(localidp.Config{
			SigningKey: []byte(cfg.Local.SigningKey),
			TokenTTL:   cfg.Local.TokenTTL,
			Accounts: []localidp.Account{{
				PrincipalID: cfg.Local.PrincipalID,
				Email:       cfg.Local.Email,
				Secret:      cfg.Local.Secret,
			}},
		})

	case config.AuthModeOAuth:
		if cfg.OAuth.DiscoveryURL == "" {
			return nil, errors.New("AuthModeOAuth selected but OAUTH_DISCOVERY_URL is empty")
		}
		var cache oidc.TokenCache
		if cfg.OAuth.TokenCachePath != "" {
			cache = &oidc.FileTokenCache{Path: cfg.OAuth.TokenCachePath}
		}
		verifier, err := oidc.NewVerifier(oidc.Config{
			ClientID:     cfg.OAuth.ClientID,
			ClientSecret: cfg.OAuth.ClientSecret,
			Scope:        cfg.OAuth.Scope,
			DiscoveryURL: cfg.OAuth.DiscoveryURL,
			TokenCache:   cache,
		})
		if err != nil {
			return nil, fmt.Errorf("build oidc verifier: %w", err)
		}
		if logger != nil {
			logger.Info("oidc verifier ready", "client_id", cfg.OAuth.ClientID)
		}
		return verifier, nil

	default:
		return nil, fmt.Errorf("unknown auth mode %q", cfg.Mode)
	}
}

// BuildSessionArbiter wires the full resolution pipeline: verifier,
// directory repositories, classifier, context loader, PIN verifier, and the
// Redis-backed session store.
func BuildSessionArbiter(cfg SessionConfig) (*service.SessionArbiter, error) {
	if cfg.Config == nil {
		return nil, errors.New("app config is required")
	}
	if cfg.DB == nil {
		return nil, errors.New("database connection is required")
	}
	if cfg.RedisClient == nil {
		return nil, errors.New("redis client is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	verifier, err := BuildCredentialVerifier(cfg.Config.Auth, logger)
	if err != nil {
		return nil, err
	}

	tenants := data.NewTenantRepo(cfg.DB)
	sessCfg := cfg.Config.Session

	classifier := service.NewClassifier(service.ClassifierOptions{
		Admins:    data.NewAdminRepo(cfg.DB),
		Operators: data.NewOperatorRepo(cfg.DB),
		Members:   data.NewMemberRepo(cfg.DB),
		Timeout:   sessCfg.LookupTimeout,
		Logger:    logger,
	})
	loader := service.NewContextLoader(service.ContextLoaderOptions{
		Tenants:  tenants,
		Verifier: verifier,
		Timeout:  sessCfg.LookupTimeout,
		Logger:   logger,
	})

	return service.NewSessionArbiter(service.SessionArbiterOptions{
		Verifier:    verifier,
		Classifier:  classifier,
		Loader:      loader,
		Pins:        data.NewPinRepo(cfg.DB),
		Tenants:     tenants,
		Store:       redisadapter.NewSessionStore(cfg.RedisClient, sessCfg.TerminalID),
		Permissions: service.NewStaticPermissions(),
		Metrics:     cfg.Metrics,
		Logger:      logger,
		Timeouts: service.Timeouts{
			Readiness: sessCfg.ReadinessTimeout,
			Verify:    sessCfg.VerifyTimeout,
			Lookup:    sessCfg.LookupTimeout,
		},
	}), nil
}

// BuildMetrics creates the StatsD client from observability configuration.
func BuildMetrics(cfg config.ObservabilityConfig, logger *slog.Logger) (*statsd.Client, error) {
	client, err := statsd.NewClient(statsd.Config{
		Enabled: cfg.Metrics.IsEnabled(),
		Address: cfg.Metrics.StatsdAddress,
		Prefix:  "flowpos",
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build statsd client: %w", err)
	}
	return client, nil
}
