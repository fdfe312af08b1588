package auth

import (
	"time"

	"portfolio-backend/internal/apperrors"
	"portfolio-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenType string

const (
	TokenAccess  TokenType = "access"
	TokenRefresh TokenType = "refresh"
	TokenReset   TokenType = "reset"
)

const ResetTokenTTL = time.Hour

type Claims struct {
	UserID    uint      `json:"user_id"`
	Email     string    `json:"email"`
	TokenType TokenType `json:"type"`
	jwt.RegisteredClaims
}

// TokenService подписывает и проверяет первичные JWT (HS256).
// Issuer/audience фиксируются при создании, чтобы токены нельзя было
// переиспользовать между сервисами.
type TokenService struct {
	secret     []byte
	issuer     string
	audience   string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenService(secret, issuer, audience string, accessTTL, refreshTTL time.Duration) *TokenService {
	return &TokenService{
		secret:     []byte(secret),
		issuer:     issuer,
		audience:   audience,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

func (s *TokenService) Issue(user *models.User, tokenType TokenType, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:    user.ID,
		Email:     user.Email,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Subject:   user.Email,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// IssuePair выпускает пару access+refresh. Вызывается на login/register и на
// каждом успешном refresh (ротация: старый refresh считается использованным).
func (s *TokenService) IssuePair(user *models.User) (access, refresh string, err error) {
	access, err = s.Issue(user, TokenAccess, s.accessTTL)
	if err != nil {
		return "", "", err
	}
	refresh, err = s.Issue(user, TokenRefresh, s.refreshTTL)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func (s *TokenService) Verify(tokenString string, want TokenType) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithAudience(s.audience))

	if err != nil || !token.Valid {
		return nil, apperrors.Authentication("invalid or expired token")
	}
	if claims.TokenType != want {
		return nil, apperrors.Authentication("unexpected token type")
	}
	return claims, nil
}
