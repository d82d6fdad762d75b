package config

import (
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v2"

	"github.com/charleshuang3/posterboard/internal/gormw"
	"github.com/charleshuang3/posterboard/internal/handlers/middleware"
)

var (
	logger = log.With().Str("component", "config").Logger()
)

type AuthConfig struct {
	// PrivateKeyPEM is RSA 256 private key in PEM format.
	PrivateKeyPEM string `yaml:"private_key_pem"`

	// Issuer is the url of this service, baked into every token.
	Issuer string `yaml:"issuer"`

	// Token lifetimes in seconds.
	AccessTokenTTL  int `yaml:"access_token_ttl"`
	RefreshTokenTTL int `yaml:"refresh_token_ttl"`

	// MachineID must be unique per instance writing to the same user table.
	MachineID uint16 `yaml:"machine_id"`
}

func (c *AuthConfig) AccessTokenTTLDuration() time.Duration {
	return time.Duration(c.AccessTokenTTL) * time.Second
}

func (c *AuthConfig) RefreshTokenTTLDuration() time.Duration {
	return time.Duration(c.RefreshTokenTTL) * time.Second
}

func (c *AuthConfig) Validate() {
	if c.PrivateKeyPEM == "" {
		logger.Fatal().Msg("AuthConfig: PrivateKeyPEM is missing")
	}
	if c.Issuer == "" {
		logger.Fatal().Msg("AuthConfig: Issuer is missing")
	}
	if c.AccessTokenTTL <= 0 {
		// 30 minutes by default.
		c.AccessTokenTTL = 30 * 60
	}
	if c.RefreshTokenTTL <= 0 {
		// 30 days by default.
		c.RefreshTokenTTL = 30 * 24 * 60 * 60
	}
}

type Config struct {
	Port      uint                       `yaml:"port"`
	GinMode   string                     `yaml:"gin_mode"`
	Auth      AuthConfig                 `yaml:"auth"`
	DB        gormw.Config               `yaml:"db"`
	RateLimit middleware.RateLimitConfig `yaml:"rate_limit"`
}

func LoadConfig(path string) *Config {
	cfg := &Config{}

	file, err := os.Open(path)
	if err != nil {
		logger.Fatal().Err(err).Msgf("failed to open config file: %s", path)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(cfg); err != nil {
		logger.Fatal().Err(err).Msg("failed to decode config file")
	}

	cfg.validate()

	return cfg
}

func (c *Config) validate() {
	if c.Port == 0 {
		logger.Fatal().Msg("Port is missing")
	}

	if c.GinMode == "" {
		logger.Fatal().Msg("GinMode is missing")
	}

	c.Auth.Validate()
}
