package config

import "time"

// Config represents the complete skillset-echo configuration.
type Config struct {
	Service ServiceConfig `yaml:"service"`
	Server  ServerConfig  `yaml:"server"`
	Webhook WebhookConfig `yaml:"webhook"`
	Links   LinksConfig   `yaml:"links"`

	// SourceFile is the absolute path the config was read from.
	// Empty when running on defaults.
	SourceFile string `yaml:"-"`
}

// ServiceConfig defines core service settings.
type ServiceConfig struct {
	Name      string `yaml:"name"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// ServerConfig defines HTTP listener settings.
type ServerConfig struct {
	Listen          string        `yaml:"listen"`
	MaxBodySize     string        `yaml:"max_body_size"` // e.g. "1MB", "65536"
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// ResponseDelay is an artificial pause before test endpoints answer,
	// to mimic a slow skillset backend.
	ResponseDelay time.Duration `yaml:"response_delay"`
}

// WebhookConfig defines request authentication settings.
type WebhookConfig struct {
	// Secret is the shared HMAC secret. Use ${VAR} to read it from the environment.
	Secret string `yaml:"secret"`

	// RequireSignature rejects requests without a signature header.
	// Set to false only for local testing.
	RequireSignature bool `yaml:"require_signature"`
}

// LinksConfig defines how file references are rendered.
type LinksConfig struct {
	Mode   string `yaml:"mode"`   // absolute_uri, custom_scheme, workspace_relative, relative
	Scheme string `yaml:"scheme"` // used by custom_scheme
}

// Defaults returns a Config with sensible defaults.
// There is no default secret; one must be configured.
func Defaults() *Config {
	return &Config{
		Service: ServiceConfig{
			Name:      "skillset-echo",
			LogLevel:  "info",
			LogFormat: "json",
		},
		Server: ServerConfig{
			Listen:          "127.0.0.1:3000",
			MaxBodySize:     "1MB",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		Webhook: WebhookConfig{
			RequireSignature: true,
		},
		Links: LinksConfig{
			Mode:   "absolute_uri",
			Scheme: "vscode",
		},
	}
}
