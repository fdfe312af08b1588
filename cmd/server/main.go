package main

import (
	"context"
	"fmt"

	"portfolio-backend/internal/auth"
	"portfolio-backend/internal/config"
	"portfolio-backend/internal/database"
	"portfolio-backend/internal/handlers"
	"portfolio-backend/internal/notify"
	"portfolio-backend/internal/server"

	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	cfg, err := config.Load()
	if err != nil {
		zap.S().Fatalf("failed to load config: %v", err)
	}

	database.Init(cfg.DBDSN)
	database.SeedOwner(cfg.SeedOwnerEmail, cfg.SeedOwnerPassword)

	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	var notifier notify.Notifier = notify.LogNotifier{}
	if cfg.NatsURL != "" {
		n, err := notify.NewNATSNotifier(cfg.NatsURL, cfg.InviteSubject, cfg.ResetSubject)
		if err != nil {
			zap.S().Fatalf("failed to init NATS notifier: %v", err)
		}
		notifier = n
	}

	providers := []auth.IdentityProvider{&auth.FirstPartyProvider{Tokens: tokens}}
	if cfg.OIDCIssuerURL != "" {
		oidcProvider, err := auth.NewOIDCProvider(context.Background(), cfg.OIDCIssuerURL, cfg.OIDCClientID)
		if err != nil {
			zap.S().Fatalf("failed to init OIDC provider: %v", err)
		}
		providers = append(providers, oidcProvider)
	}

	handlers.Init(tokens, notifier, handlers.Options{
		CookieSecure:  cfg.CookieSecure,
		PublicBaseURL: cfg.PublicBaseURL,
		AccessTTL:     cfg.AccessTokenTTL,
		RefreshTTL:    cfg.RefreshTokenTTL,
	})

	r := server.NewRouter(cfg, providers...)

	addr := fmt.Sprintf(":%s", cfg.ServerPort)
	zap.S().Infof("starting server on %s", addr)
	if err := r.Run(addr); err != nil {
		zap.S().Fatalf("server error: %v", err)
	}
}
