package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr   string     `env:"HTTP_ADDR" envDefault:":8080"`
	DBPath     string     `env:"DB_PATH" envDefault:"data/codexhunt.db"`
	LogLevel   slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	RedisURL   string     `env:"REDIS_URL"`
	TrustProxy bool       `env:"TRUST_PROXY"`

	// RegisterKey gates POST /register. It may be a bcrypt hash.
	RegisterKey string        `env:"REGISTER_KEY,required,notEmpty"`
	SigningKey  string        `env:"SIGNING_KEY,required,notEmpty"`
	TokenTTL    time.Duration `env:"TOKEN_TTL" envDefault:"6h"`

	TwilioAccountSID string        `env:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken  string        `env:"TWILIO_AUTH_TOKEN"`
	TwilioFrom       string        `env:"TWILIO_FROM"`
	SMSCountryCode   string        `env:"SMS_COUNTRY_CODE" envDefault:"91"`
	NotifyTimeout    time.Duration `env:"NOTIFY_TIMEOUT" envDefault:"10s"`

	LoginMaxAttempts int           `env:"LOGIN_MAX_ATTEMPTS" envDefault:"10"`
	LoginWindow      time.Duration `env:"LOGIN_WINDOW" envDefault:"1m"`

	QuestionsPath string `env:"QUESTIONS_PATH"`
	OTelEndpoint  string `env:"OTEL_ENDPOINT"`
	RandomSeed    uint64 `env:"RANDOM_SEED"`
}

// Load reads an optional .env file from the working directory and then parses
// the environment. Variables already set in the environment win over .env.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if cfg.LoginMaxAttempts <= 0 {
		return nil, fmt.Errorf("LOGIN_MAX_ATTEMPTS must be positive, got %d", cfg.LoginMaxAttempts)
	}
	return &cfg, nil
}
