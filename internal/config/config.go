package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port        string `envconfig:"PORT" default:"8080"`
	Environment string `envconfig:"ENV" default:"development"`

	DBConnectionString string `envconfig:"DATABASE_URL" required:"true"`

	// Key material for verifying the identity provider's session JWTs.
	// HS256 secret or a PEM-encoded RS256 public key.
	JWTKey string `envconfig:"CLERK_JWT_KEY" required:"true"`

	// Cloudinary credentials as a cloudinary:// URL plus the folder that
	// scopes every search expression.
	CloudinaryURL    string `envconfig:"CLOUDINARY_URL" required:"true"`
	CloudinaryFolder string `envconfig:"CLOUDINARY_FOLDER" default:"rhyme_ai_editor"`

	// Redis backs the list-page cache. Empty address disables caching.
	RedisAddr     string        `envconfig:"REDIS_ADDR" default:""`
	PageCacheTTL  time.Duration `envconfig:"PAGE_CACHE_TTL" default:"5m"`

	// Credit accounting. CreditFee is the positive cost debited per
	// applied transformation; StartingCredits seeds new users.
	CreditFee       int `envconfig:"CREDIT_FEE" default:"1"`
	StartingCredits int `envconfig:"STARTING_CREDITS" default:"10"`

	// Listing defaults.
	PageSize int `envconfig:"PAGE_SIZE" default:"9"`

	// Editing sessions.
	DebounceWindow time.Duration `envconfig:"DEBOUNCE_WINDOW" default:"1s"`
	SessionTTL     time.Duration `envconfig:"SESSION_TTL" default:"1h"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
