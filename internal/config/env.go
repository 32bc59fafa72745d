package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/samdwyer/dungeongrammar/internal/telemetry"
)

// Env holds overrides read from the process environment.
type Env struct {
	OllamaEndpoint string        `env:"DUNGEONGRAMMAR_OLLAMA_ENDPOINT"`
	OllamaModel    string        `env:"DUNGEONGRAMMAR_OLLAMA_MODEL"`
	OllamaTimeout  time.Duration `env:"DUNGEONGRAMMAR_OLLAMA_TIMEOUT"`

	Telemetry        bool   `env:"DUNGEONGRAMMAR_TELEMETRY" envDefault:"false"`
	OTLPEndpoint     string `env:"DUNGEONGRAMMAR_OTLP_ENDPOINT" envDefault:"https://api.honeycomb.io"`
	HoneycombAPIKey  string `env:"HONEYCOMB_DUNGEONGRAMMAR_API_KEY"`
	HoneycombDataset string `env:"HONEYCOMB_DUNGEONGRAMMAR_DATASET" envDefault:"dungeongrammar"`
}

// ParseEnv loads overrides from environment variables.
func ParseEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("parse env: %w", err)
	}
	return e, nil
}

// Apply copies non-empty overrides into c.
func (e Env) Apply(c *Config) {
	if e.OllamaEndpoint != "" {
		c.Ollama.Endpoint = e.OllamaEndpoint
	}
	if e.OllamaModel != "" {
		c.Ollama.Model = e.OllamaModel
	}
	if e.OllamaTimeout > 0 {
		c.Ollama.Timeout = e.OllamaTimeout
	}
}

// TelemetrySettings returns exporter settings derived from the environment.
func (e Env) TelemetrySettings(version string) telemetry.Settings {
	return telemetry.Settings{
		Enabled:  e.Telemetry,
		Endpoint: e.OTLPEndpoint,
		APIKey:   e.HoneycombAPIKey,
		Dataset:  e.HoneycombDataset,
		Version:  version,
	}
}
