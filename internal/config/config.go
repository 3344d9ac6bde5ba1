package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "contentsafety.yml"
	DefaultDotEnvPath = ".env"

	envEndpoint        = "CONTENT_SAFETY_ENDPOINT"
	envSubscriptionKey = "CONTENT_SAFETY_KEY"
	envAADToken        = "CONTENT_SAFETY_AAD_TOKEN"
	envAPIVersion      = "CONTENT_SAFETY_API_VERSION"
	envTimeout         = "CONTENT_SAFETY_TIMEOUT"
	envRetries         = "CONTENT_SAFETY_RETRIES"
)

// Loader merges configuration coming from files, environment variables, and CLI flags.
// Later sources win: config file, then environment (including .env), then flags.
type Loader struct {
	ConfigPath string
	DotEnvPath string
}

// Config contains the settings needed to build a detection client.
type Config struct {
	Endpoint        string
	SubscriptionKey string
	AADToken        string
	APIVersion      string
	Timeout         time.Duration
	Retries         uint64
}

// Overrides captures values coming from the config file, env vars or CLI flags. Empty fields
// leave the current value alone.
type Overrides struct {
	Endpoint        string  `yaml:"endpoint"`
	SubscriptionKey string  `yaml:"subscriptionKey"`
	AADToken        string  `yaml:"aadToken"`
	APIVersion      string  `yaml:"apiVersion"`
	Timeout         string  `yaml:"timeout"`
	Retries         *uint64 `yaml:"retries"`
}

// Load resolves the final configuration.
func (l Loader) Load(override Overrides) (Config, error) {
	var cfg Config

	dotenv := l.DotEnvPath
	if dotenv == "" {
		dotenv = DefaultDotEnvPath
	}
	// godotenv.Load never overwrites variables that are already set.
	if fileExists(dotenv) {
		if err := godotenv.Load(dotenv); err != nil {
			return cfg, fmt.Errorf("load %s: %w", dotenv, err)
		}
	}

	path := l.ConfigPath
	if path == "" {
		path = DefaultConfigPath
	}
	if fileExists(path) {
		fileOv, err := loadFromFile(path)
		if err != nil {
			return cfg, err
		}
		if err := cfg.apply(fileOv); err != nil {
			return cfg, fmt.Errorf("%s: %w", path, err)
		}
	}

	envOv, err := overridesFromEnv()
	if err != nil {
		return cfg, err
	}
	if err := cfg.apply(envOv); err != nil {
		return cfg, err
	}

	if err := cfg.apply(override); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Validate ensures the config can be used to call the service.
func (c Config) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("no endpoint configured; provide --endpoint or set %s", envEndpoint)
	}
	if c.SubscriptionKey == "" && c.AADToken == "" {
		return fmt.Errorf("no credentials configured; provide --subscription-key or --aad-token, or set %s or %s", envSubscriptionKey, envAADToken)
	}
	if c.Timeout < 0 {
		return errors.New("timeout cannot be negative")
	}
	return nil
}

func (c *Config) apply(ov Overrides) error {
	if ov.Endpoint != "" {
		c.Endpoint = ov.Endpoint
	}
	if ov.SubscriptionKey != "" {
		c.SubscriptionKey = ov.SubscriptionKey
	}
	if ov.AADToken != "" {
		c.AADToken = ov.AADToken
	}
	if ov.APIVersion != "" {
		c.APIVersion = ov.APIVersion
	}
	if ov.Timeout != "" {
		d, err := time.ParseDuration(ov.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout %q: %w", ov.Timeout, err)
		}
		c.Timeout = d
	}
	if ov.Retries != nil {
		c.Retries = *ov.Retries
	}
	return nil
}

func loadFromFile(path string) (Overrides, error) {
	var ov Overrides
	data, err := os.ReadFile(path)
	if err != nil {
		return ov, fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &ov); err != nil {
		return ov, fmt.Errorf("parse %s: %w", path, err)
	}
	return ov, nil
}

func overridesFromEnv() (Overrides, error) {
	ov := Overrides{
		Endpoint:        os.Getenv(envEndpoint),
		SubscriptionKey: os.Getenv(envSubscriptionKey),
		AADToken:        os.Getenv(envAADToken),
		APIVersion:      os.Getenv(envAPIVersion),
		Timeout:         os.Getenv(envTimeout),
	}
	if v := os.Getenv(envRetries); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return ov, fmt.Errorf("invalid %s %q: %w", envRetries, v, err)
		}
		ov.Retries = &n
	}
	return ov, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
