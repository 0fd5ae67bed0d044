package main

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/trace"

	"github.com/kartik-turing/repo-scanner-frontend/internal/app"
	"github.com/kartik-turing/repo-scanner-frontend/internal/config"
	"github.com/kartik-turing/repo-scanner-frontend/internal/infra/apiclient"
	"github.com/kartik-turing/repo-scanner-frontend/internal/infra/http/middleware"
	"github.com/kartik-turing/repo-scanner-frontend/internal/infra/postgres"
	"github.com/kartik-turing/repo-scanner-frontend/internal/infra/redis"
	"github.com/kartik-turing/repo-scanner-frontend/pkg/jwt"
	"github.com/kartik-turing/repo-scanner-frontend/pkg/logger"
)

// Infra holds the backend client and the optional stores.
type Infra struct {
	API      *apiclient.Client
	Redis    *redis.Client               // nil when Redis is disabled
	Sessions *redis.SessionStore         // nil when Redis is disabled
	DB       *postgres.DB                // nil when the database is disabled
	Accounts *postgres.AccountRepository // nil when the database is disabled
}

// NewInfra connects to everything the console depends on.
func NewInfra(ctx context.Context, cfg *config.Config, tp trace.TracerProvider, log *logger.Logger) (*Infra, error) {
	api, err := apiclient.New(apiclient.Config{
		BaseURL: cfg.API.BaseURL,
		Token:   cfg.API.Token,
		Timeout: cfg.API.Timeout,
	}, apiclient.WithTracerProvider(tp), apiclient.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("api client: %w", err)
	}
	infra := &Infra{API: api}

	if cfg.Redis.Enabled {
		client, err := redis.New(&cfg.Redis, log)
		if err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
		infra.Redis = client
		infra.Sessions, err = redis.NewSessionStore(client, log)
		if err != nil {
			infra.Close(log)
			return nil, fmt.Errorf("session store: %w", err)
		}
		log.Info("redis connected")
	}

	if cfg.Database.Enabled {
		db, err := postgres.New(&cfg.Database)
		if err != nil {
			infra.Close(log)
			return nil, fmt.Errorf("database: %w", err)
		}
		infra.DB = db
		infra.Accounts = postgres.NewAccountRepository(db)
		if err := infra.Accounts.EnsureSchema(ctx); err != nil {
			infra.Close(log)
			return nil, fmt.Errorf("account schema: %w", err)
		}
		log.Info("database connected")
	}

	return infra, nil
}

// Close releases the store connections.
func (i *Infra) Close(log *logger.Logger) {
	if i.DB != nil {
		closeWithLog(i.DB, "database", log)
	}
	if i.Redis != nil {
		closeWithLog(i.Redis, "redis", log)
	}
}

// NewSessionService builds the session service with revocation and the
// sign-in ledger when their stores are configured.
func NewSessionService(cfg *config.Config, infra *Infra, log *logger.Logger) *app.SessionService {
	tokens := jwt.NewGenerator(jwt.TokenConfig{
		Secret:          cfg.Auth.JWTSecret,
		Issuer:          cfg.Auth.JWTIssuer,
		SessionDuration: cfg.Auth.SessionDuration,
	})

	var opts []app.SessionOption
	if infra.Sessions != nil {
		opts = append(opts, app.WithRevoker(infra.Sessions))
	}
	if infra.Accounts != nil {
		opts = append(opts, app.WithAccounts(infra.Accounts))
	}
	return app.NewSessionService(infra.API, tokens, log, opts...)
}

func newCSRFConfig(cfg *config.Config, log *logger.Logger) middleware.CSRFConfig {
	return middleware.NewCSRFConfig(cfg.Auth, log)
}
