// Package config loads MedAssist configuration from an optional YAML file
// and the environment. File values are expanded against the environment,
// environment variables override file values, and defaults fill the rest.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Sentinel errors for required configuration values. Both indicate a fatal
// deployment problem, never a per-request failure.
var (
	ErrMissingGoogleAPIKey   = errors.New("missing GOOGLE_API_KEY environment variable")
	ErrMissingHospitalClient = errors.New("missing HOSPITAL_CLIENT_ID required for appointment bookings")
)

// Config is the main configuration structure for MedAssist.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	LLM      LLMConfig      `yaml:"llm"`
	Hospital HospitalConfig `yaml:"hospital"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	// AllowedOrigins lists the browser origins permitted to call the API.
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type LLMConfig struct {
	GoogleAPIKey string  `yaml:"google_api_key"`
	Model        string  `yaml:"model"`
	Temperature  float32 `yaml:"temperature"`
	MaxRetries   int     `yaml:"max_retries"`
}

type HospitalConfig struct {
	BaseURL  string        `yaml:"base_url"`
	ClientID string        `yaml:"client_id"`
	Timeout  time.Duration `yaml:"timeout"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
			AllowedOrigins: []string{
				"https://lovable.dev/projects/cfbe1d2e-36a0-4b53-96e5-deefa67b8c41",
			},
		},
		LLM: LLMConfig{
			Model:       "gemini-2.5-flash",
			Temperature: 0.2,
			MaxRetries:  3,
		},
		Hospital: HospitalConfig{
			BaseURL:  "http://34.93.7.250:8001/api",
			ClientID: "444d9283-88fa-4320-a084-1adb97085d41",
			Timeout:  10 * time.Second,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads the YAML file at path, expands environment references in it,
// applies environment variable overrides, and fills defaults. An empty path
// or a missing file yields the default configuration plus environment
// overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		} else {
			expanded := os.ExpandEnv(string(data))
			if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv()
	cfg.fillDefaults()
	return cfg, nil
}

// applyEnv overrides file values with environment variables. The variable
// names mirror the deployment environment of the hosted assistant.
func (c *Config) applyEnv() {
	if v := os.Getenv("GOOGLE_API_KEY"); v != "" {
		c.LLM.GoogleAPIKey = v
	}
	if v := os.Getenv("GEMINI_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("LLM_TEMPERATURE"); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil {
			c.LLM.Temperature = float32(f)
		}
	}
	if v := os.Getenv("HOSPITAL_API_BASE_URL"); v != "" {
		c.Hospital.BaseURL = v
	}
	if v := os.Getenv("HOSPITAL_CLIENT_ID"); v != "" {
		c.Hospital.ClientID = v
	}
	if v := os.Getenv("HTTP_TIMEOUT_SECONDS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			c.Hospital.Timeout = time.Duration(f * float64(time.Second))
		}
	}
	if v := os.Getenv("MEDASSIST_HOST"); v != "" {
		c.Server.Host = v
	}
	if v := os.Getenv("MEDASSIST_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			c.Server.Port = p
		}
	}
}

func (c *Config) fillDefaults() {
	def := Default()
	if c.Server.Port <= 0 {
		c.Server.Port = def.Server.Port
	}
	if c.LLM.Model == "" {
		c.LLM.Model = def.LLM.Model
	}
	if c.LLM.MaxRetries <= 0 {
		c.LLM.MaxRetries = def.LLM.MaxRetries
	}
	if c.Hospital.BaseURL == "" {
		c.Hospital.BaseURL = def.Hospital.BaseURL
	}
	if c.Hospital.Timeout <= 0 {
		c.Hospital.Timeout = def.Hospital.Timeout
	}
	if c.Logging.Level == "" {
		c.Logging.Level = def.Logging.Level
	}
}

// RequireGoogleAPIKey returns the configured Google API key, or an error when
// it is absent. The key is never defaulted.
func (c *Config) RequireGoogleAPIKey() (string, error) {
	if c.LLM.GoogleAPIKey == "" {
		return "", ErrMissingGoogleAPIKey
	}
	return c.LLM.GoogleAPIKey, nil
}

// RequireHospitalClientID returns the configured hospital client identifier,
// or an error when it is absent.
func (c *Config) RequireHospitalClientID() (string, error) {
	if c.Hospital.ClientID == "" {
		return "", ErrMissingHospitalClient
	}
	return c.Hospital.ClientID, nil
}
