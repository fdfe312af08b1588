package auth

import (
	"context"
	"fmt"

	"portfolio-backend/internal/apperrors"

	"github.com/coreos/go-oidc/v3/oidc"
)

// OIDCProvider проверяет bearer-токены стороннего провайдера.
// Audience сверяем вручную: провайдеры отдают aud и строкой, и массивом.
type OIDCProvider struct {
	verifier *oidc.IDTokenVerifier
	clientID string
}

func NewOIDCProvider(ctx context.Context, issuerURL, clientID string) (*OIDCProvider, error) {
	provider, err := oidc.NewProvider(ctx, issuerURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create OIDC provider: %w", err)
	}

	verifier := provider.Verifier(&oidc.Config{SkipClientIDCheck: true})

	return &OIDCProvider{verifier: verifier, clientID: clientID}, nil
}

func (p *OIDCProvider) Verify(ctx context.Context, rawToken string) (*Identity, error) {
	idToken, err := p.verifier.Verify(ctx, rawToken)
	if err != nil {
		return nil, apperrors.Authentication("invalid token")
	}

	var claims struct {
		Email         string      `json:"email"`
		EmailVerified bool        `json:"email_verified"`
		Audience      interface{} `json:"aud"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, apperrors.Authentication("failed to extract claims from token")
	}

	if !audienceContains(claims.Audience, p.clientID) {
		return nil, apperrors.Authentication("token not valid for this service")
	}
	if claims.Email == "" {
		return nil, apperrors.Authentication("token has no email claim")
	}

	return &Identity{Email: NormalizeEmail(claims.Email)}, nil
}

func audienceContains(aud interface{}, clientID string) bool {
	switch v := aud.(type) {
	case string:
		return v == clientID
	case []interface{}:
		for _, a := range v {
			if s, ok := a.(string); ok && s == clientID {
				return true
			}
		}
	}
	return false
}
