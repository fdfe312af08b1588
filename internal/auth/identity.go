package auth

import (
	"context"

	"portfolio-backend/internal/apperrors"
)

// Identity — результат любой стратегии аутентификации: проверенный email
// вызывающего. Резолвер доступа работает только с ним и не знает, как именно
// личность была установлена.
type Identity struct {
	UserID uint
	Email  string
}

// IdentityProvider — общая точка подключения стратегий (first-party JWT,
// сторонний OIDC). Middleware перебирает провайдеров по порядку.
type IdentityProvider interface {
	Verify(ctx context.Context, rawToken string) (*Identity, error)
}

// FirstPartyProvider проверяет собственные access-токены сервиса.
type FirstPartyProvider struct {
	Tokens *TokenService
}

func (p *FirstPartyProvider) Verify(_ context.Context, rawToken string) (*Identity, error) {
	claims, err := p.Tokens.Verify(rawToken, TokenAccess)
	if err != nil {
		return nil, err
	}
	if claims.Email == "" {
		return nil, apperrors.Authentication("token has no email claim")
	}
	return &Identity{UserID: claims.UserID, Email: NormalizeEmail(claims.Email)}, nil
}
