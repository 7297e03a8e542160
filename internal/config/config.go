package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	Env  string `validate:"required,oneof=development stage production"`
	Http Http

	Cors CORS `validate:"required"`

	Auth Auth `validate:"required"`

	Postgres Postgres `validate:"required"`

	Paystack Paystack `validate:"required"`

	Email Email `validate:"required"`

	Shipping Shipping
}

type Http struct {
	Host string `validate:"required,hostname|ip"`
	Port string `validate:"required"`
}

type CORS struct {
	AllowedOrigins []string `validate:"required,min=1,dive,url"`
}

type Auth struct {
	JWTSecret string `validate:"required"`
}

type Postgres struct {
	Host     string `validate:"required,hostname|ip"`
	Port     int    `validate:"required,gt=0,lte=65535"`
	DBName   string `validate:"required"`
	User     string `validate:"required"`
	Password string `validate:"required"`

	SSLMode string `validate:"required,oneof=disable require verify-ca verify-full"`

	MaxOpenConns    int           `validate:"gte=1"`
	MaxIdleConns    int           `validate:"gte=0"`
	ConnMaxLifetime time.Duration `validate:"gte=0"`
}

// Paystack holds the payment provider credentials. SecretKey may be empty:
// the adapter then rejects initialize/verify/webhook calls at runtime
// instead of failing startup.
type Paystack struct {
	SecretKey   string
	BaseURL     string        `validate:"required,url"`
	CallbackURL string        `validate:"required,url"`
	Timeout     time.Duration `validate:"gt=0"`
}

// Email holds the transactional mail credentials. APIKey may be empty,
// delivery is best-effort anyway.
type Email struct {
	APIKey  string
	From    string        `validate:"required,email"`
	BaseURL string        `validate:"required,url"`
	Timeout time.Duration `validate:"gt=0"`
}

// Shipping is the flat-rate shipping policy, in kobo. Zero means free
// shipping.
type Shipping struct {
	Fee int64 `validate:"gte=0"`
}

func New() Config {
	return Config{
		Env: env("ENV", "development"),

		Http: Http{
			Host: env("HOST", "localhost"),
			Port: env("PORT", "8080"),
		},

		Cors: CORS{
			AllowedOrigins: strings.Split(env("ALLOWED_CORS_ORIGINS", "http://localhost:3000"), ","),
		},

		Auth: Auth{
			JWTSecret: env("JWT_SECRET", ""),
		},

		Postgres: Postgres{
			Port:     envInt("POSTGRES_PORT", 5432),
			Host:     env("POSTGRES_HOST", "localhost"),
			DBName:   env("POSTGRES_DB", "shop"),
			User:     env("POSTGRES_USER", ""),
			Password: env("POSTGRES_PASSWORD", ""),

			SSLMode: env("POSTGRES_SSL_MODE", "disable"),

			MaxOpenConns:    envInt("POSTGRES_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("POSTGRES_MAX_IDLE_CONNS", 25),
			ConnMaxLifetime: envDuration("POSTGRES_CONN_MAX_LIFETIME", 5*time.Minute),
		},

		Paystack: Paystack{
			SecretKey:   env("PAYSTACK_SECRET_KEY", ""),
			BaseURL:     env("PAYSTACK_BASE_URL", "https://api.paystack.co"),
			CallbackURL: env("PAYSTACK_CALLBACK_URL", "http://localhost:3000/payment/callback"),
			Timeout:     envDuration("PAYSTACK_TIMEOUT", 15*time.Second),
		},

		Email: Email{
			APIKey:  env("SENDGRID_API_KEY", ""),
			From:    env("FROM_EMAIL", "orders@amazingoutfits.example"),
			BaseURL: env("SENDGRID_BASE_URL", "https://api.sendgrid.com"),
			Timeout: envDuration("EMAIL_TIMEOUT", 10*time.Second),
		},

		Shipping: Shipping{
			Fee: envInt64("SHIPPING_FEE", 0),
		},
	}
}

func (c Config) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

func env(key string, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		i, err := strconv.Atoi(value)
		if err == nil {
			return i
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if value, ok := os.LookupEnv(key); ok {
		i, err := strconv.ParseInt(value, 10, 64)
		if err == nil {
			return i
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return fallback
}
