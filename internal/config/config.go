package config

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// APIKeyEnv names the environment variable holding the completion API credential.
const APIKeyEnv = "GROQ_API_KEY"

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	LLM struct {
		BaseURL     string `yaml:"base_url"`
		Model       string `yaml:"model"`
		Temperature string `yaml:"temperature"`
		Timeout     string `yaml:"timeout"`
		Strict      bool   `yaml:"strict"`
		// APIKey is never read from YAML.
		APIKey string `yaml:"-"`
	} `yaml:"llm"`
	Quiz struct {
		Mode string `yaml:"mode"`
	} `yaml:"quiz"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	SQLite struct {
		Path string `yaml:"path"`
	} `yaml:"sqlite"`
	CORS struct {
		Origins []string `yaml:"origins"`
	} `yaml:"cors"`
}

// Load reads YAML config from path. A missing file yields an empty config so
// the service can run on defaults; the API key always comes from the environment.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return cfg, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}
	cfg.LLM.APIKey = os.Getenv(APIKeyEnv)
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

// Float parses a decimal string or returns the fallback if empty or invalid.
func Float(raw string, fallback float64) float64 {
	if raw == "" {
		return fallback
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return fallback
}
