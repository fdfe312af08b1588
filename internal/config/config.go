package config

import (
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	DBDSN         string `env:"DB_DSN" env-required:"true"`
	ServerPort    string `env:"SERVER_PORT" env-default:"8080"`
	SessionSecret string `env:"SESSION_SECRET" env-required:"true"`

	// Секрет подписи JWT обязателен: никаких дефолтов-заглушек.
	JWTSecret       string        `env:"JWT_SECRET" env-required:"true"`
	JWTIssuer       string        `env:"JWT_ISSUER" env-default:"portfolio-backend"`
	JWTAudience     string        `env:"JWT_AUDIENCE" env-default:"portfolio-app"`
	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL" env-default:"15m"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL" env-default:"168h"`

	// Сторонний OIDC-провайдер; пустой issuer выключает стратегию.
	OIDCIssuerURL string `env:"OIDC_ISSUER_URL"`
	OIDCClientID  string `env:"OIDC_CLIENT_ID"`

	// NATS для исходящих уведомлений; пустой URL — публикуем только в лог.
	NatsURL           string `env:"NATS_URL"`
	InviteSubject     string `env:"NATS_INVITE_SUBJECT" env-default:"notifications.email.invite"`
	ResetSubject      string `env:"NATS_RESET_SUBJECT" env-default:"notifications.email.password_reset"`
	PublicBaseURL     string `env:"PUBLIC_BASE_URL" env-default:"http://localhost:3000"`
	CookieSecure      bool   `env:"COOKIE_SECURE" env-default:"true"`
	SeedOwnerEmail    string `env:"SEED_OWNER_EMAIL"`
	SeedOwnerPassword string `env:"SEED_OWNER_PASSWORD"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
