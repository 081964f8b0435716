package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Token        string  `env:"TOKEN"`
	AllowedUsers []int64 `env:"ALLOWED_USERS"`
	HTTPEnabled  bool    `env:"HTTP_ENABLED"       envDefault:"true"`
	HTTPAddr     string  `env:"HTTP_ADDR"          envDefault:":8080"`
	DBPath       string  `env:"DB_PATH"            envDefault:"sessions.sqlite"`

	SummarizerURL     string        `env:"SUMMARIZER_URL"`
	SummarizerTimeout time.Duration `env:"SUMMARIZER_TIMEOUT" envDefault:"120s"`
	FetchTimeout      time.Duration `env:"FETCH_TIMEOUT"      envDefault:"10s"`

	QAAPIKey  string        `env:"QA_API_KEY"`
	QAModel   string        `env:"QA_MODEL"    envDefault:"gemini-2.0-flash"`
	QABaseURL string        `env:"QA_BASE_URL" envDefault:"https://generativelanguage.googleapis.com/v1beta/openai/"`
	QATimeout time.Duration `env:"QA_TIMEOUT"  envDefault:"60s"`

	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"24h"`
}

var ErrNoFrontend = errors.New("TOKEN is empty and HTTP_ENABLED is false")

// LoadConfig reads an optional .env file and then the process environment.
// Variables already present in the environment win over the file.
func LoadConfig() (Config, error) {
	// Missing .env is fine.
	_ = godotenv.Load()

	return Parse()
}

func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) validate() error {
	if c.Token == "" && !c.HTTPEnabled {
		return ErrNoFrontend
	}

	var errs []error
	for name, d := range map[string]time.Duration{
		"SUMMARIZER_TIMEOUT": c.SummarizerTimeout,
		"FETCH_TIMEOUT":      c.FetchTimeout,
		"QA_TIMEOUT":         c.QATimeout,
		"SESSION_TTL":        c.SessionTTL,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %s", name, d))
		}
	}

	return errors.Join(errs...)
}
