package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix namespaces every environment variable, e.g. AIDOCTALK_API_BASE_URL.
const EnvPrefix = "AIDOCTALK"

// Config is the application configuration loaded from environment variables.
type Config struct {
	AppEnv string `envconfig:"APP_ENV" default:"development"`

	// Backend HTTP API consumed by the service layer.
	APIBaseURL string `envconfig:"API_BASE_URL" default:"http://localhost:5000/api"`

	// Identity provider (Firebase Auth REST surface).
	FirebaseAPIKey   string `envconfig:"FIREBASE_API_KEY"`
	FirebaseBaseURL  string `envconfig:"FIREBASE_BASE_URL" default:"https://identitytoolkit.googleapis.com/v1"`
	FirebaseTokenURL string `envconfig:"FIREBASE_TOKEN_URL" default:"https://securetoken.googleapis.com/v1"`

	// Payment gateway.
	PaystackPublicKey string        `envconfig:"PAYSTACK_PUBLIC_KEY"`
	CheckoutTimeout   time.Duration `envconfig:"CHECKOUT_TIMEOUT" default:"5m"`

	// MaxMind City database used for the single-shot location lookup.
	// Optional: when empty the locator falls back to its built-in dataset.
	GeoIPDBPath string `envconfig:"GEOIP_DB_PATH"`
	IPEchoURL   string `envconfig:"IP_ECHO_URL" default:"https://checkip.amazonaws.com"`

	// Directory for persisted session state (current screen, user snapshot).
	StateDir string `envconfig:"STATE_DIR" default:".aidoctalk"`

	HTTPTimeout     time.Duration `envconfig:"HTTP_TIMEOUT" default:"15s"`
	AuthLoadTimeout time.Duration `envconfig:"AUTH_LOAD_TIMEOUT" default:"3s"`
}

// Load reads the configuration from the environment and applies defaults.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse environment: %w", err)
	}
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")
	cfg.FirebaseBaseURL = strings.TrimRight(cfg.FirebaseBaseURL, "/")
	cfg.FirebaseTokenURL = strings.TrimRight(cfg.FirebaseTokenURL, "/")
	if cfg.APIBaseURL == "" {
		return nil, fmt.Errorf("config: %s_API_BASE_URL is required", EnvPrefix)
	}
	return &cfg, nil
}

// IsDev reports whether the app runs in the development environment.
func (c *Config) IsDev() bool {
	return strings.EqualFold(c.AppEnv, "development")
}
