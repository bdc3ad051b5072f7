package config

import (
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Port     string `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Answer stream backend
	APIBase         string `env:"API_BASE" envDefault:"http://localhost:4000"`
	DefaultProvider string `env:"DEFAULT_PROVIDER" envDefault:"openai"`

	PostgresURI string `env:"POSTGRES_URI"`
	RedisAddr   string `env:"REDIS_ADDR"`
	RedisURL    string `env:"REDIS_URL"`

	// long-lived credential store namespace and lifetime (0 = no expiry)
	CredentialPrefix string        `env:"CREDENTIAL_PREFIX" envDefault:"buuzzer:cred:"`
	CredentialTTL    time.Duration `env:"CREDENTIAL_TTL" envDefault:"0s"`

	JWTSecret   string `env:"SUPABASE_JWT_SECRET"`
	JWTIssuer   string `env:"SUPABASE_JWT_ISSUER"`
	JWTAudience string `env:"SUPABASE_JWT_AUDIENCE"`

	PreferencesCacheTTL time.Duration `env:"PREFERENCES_CACHE_TTL" envDefault:"10m"`
	HistoryCapacity     int           `env:"HISTORY_CAPACITY" envDefault:"50"`

	STTEnabled    bool   `env:"STT_ENABLED" envDefault:"false"`
	STTLanguage   string `env:"STT_LANGUAGE" envDefault:"en-US"`
	STTEncoding   string `env:"STT_ENCODING" envDefault:"LINEAR16"`
	STTSampleRate int32  `env:"STT_SAMPLE_RATE" envDefault:"16000"`
	STTModel      string `env:"STT_MODEL"`
}

// Load reads an optional .env file, then parses the environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// RedisTarget prefers REDIS_ADDR and falls back to REDIS_URL.
func (c Config) RedisTarget() string {
	if c.RedisAddr != "" {
		return c.RedisAddr
	}
	return c.RedisURL
}
