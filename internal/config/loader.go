package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/mattjoyce/skillset-echo/internal/links"
)

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// placeholderSecrets are values that have shipped as example or fallback
// secrets and must never authenticate real traffic.
var placeholderSecrets = map[string]bool{
	"e269ff8003eb6923fa31eeeaa65b506b88fcd111": true,
	"changeme": true,
	"secret":   true,
}

// Environment variables consulted after the config file is applied.
const (
	EnvConfigPath       = "SKILLSET_ECHO_CONFIG"
	EnvPort             = "PORT"
	EnvWebhookSecret    = "GITHUB_WEBHOOK_SECRET"
	EnvRequireSignature = "REQUIRE_SIGNATURE"
)

// Load reads and parses configuration from a file.
// A .env file next to the config file is loaded first; variables already set
// in the environment win.
func Load(configPath string) (*Config, error) {
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path %q: %w", configPath, err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("config file not found: %s\n"+
			"Hint: Check the path or run with --config flag", absPath)
	}
	if info.IsDir() {
		// Directory provided - look for config.yaml inside
		absPath = filepath.Join(absPath, "config.yaml")
		if _, err := os.Stat(absPath); err != nil {
			return nil, fmt.Errorf("directory provided but config.yaml not found: %s", absPath)
		}
	}

	if err := loadDotEnv(filepath.Join(filepath.Dir(absPath), ".env")); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	cfg := Defaults()
	if err := yaml.Unmarshal([]byte(interpolateEnv(string(data))), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	cfg.SourceFile = absPath

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// LoadDefaults builds a configuration from defaults, ./.env and the
// environment, for running without a config file.
func LoadDefaults() (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	cfg := Defaults()
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Discover finds the config file by checking standard locations.
// Priority order: $SKILLSET_ECHO_CONFIG, ./config.yaml.
// Returns "" when none exists, meaning defaults plus environment.
func Discover() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	if _, err := os.Stat("config.yaml"); err == nil {
		return "config.yaml"
	}
	return ""
}

// Resolve loads configPath, or the discovered config when it is empty.
func Resolve(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = Discover()
	}
	if configPath == "" {
		return LoadDefaults()
	}
	return Load(configPath)
}

func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) error {
	if port := os.Getenv(EnvPort); port != "" {
		host, _, err := net.SplitHostPort(cfg.Server.Listen)
		if err != nil {
			host = ""
		}
		cfg.Server.Listen = net.JoinHostPort(host, port)
	}

	if cfg.Webhook.Secret == "" {
		cfg.Webhook.Secret = os.Getenv(EnvWebhookSecret)
	}

	if v := os.Getenv(EnvRequireSignature); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s must be a boolean (got %q)", EnvRequireSignature, v)
		}
		cfg.Webhook.RequireSignature = b
	}
	return nil
}

// interpolateEnv replaces ${VAR} with the value of VAR.
func interpolateEnv(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]

		if value, exists := os.LookupEnv(varName); exists {
			return value
		}

		// If not found, leave the placeholder (will fail validation if required)
		return match
	})
}

// validate performs basic validation on the configuration.
func validate(cfg *Config) error {
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[strings.ToLower(cfg.Service.LogLevel)] {
		return fmt.Errorf("service.log_level must be one of: debug, info, warn, error (got %q)", cfg.Service.LogLevel)
	}

	switch strings.ToLower(cfg.Service.LogFormat) {
	case "json", "text":
	default:
		return fmt.Errorf("service.log_format must be one of: json, text (got %q)", cfg.Service.LogFormat)
	}

	if _, _, err := net.SplitHostPort(cfg.Server.Listen); err != nil {
		return fmt.Errorf("server.listen: %w", err)
	}

	if _, err := ParseSize(cfg.Server.MaxBodySize); err != nil {
		return fmt.Errorf("server.max_body_size %q: %w", cfg.Server.MaxBodySize, err)
	}

	for name, d := range map[string]int64{
		"read_timeout":     int64(cfg.Server.ReadTimeout),
		"write_timeout":    int64(cfg.Server.WriteTimeout),
		"idle_timeout":     int64(cfg.Server.IdleTimeout),
		"shutdown_timeout": int64(cfg.Server.ShutdownTimeout),
		"response_delay":   int64(cfg.Server.ResponseDelay),
	} {
		if d < 0 {
			return fmt.Errorf("server.%s must not be negative", name)
		}
	}

	secret := cfg.Webhook.Secret
	if matches := envVarPattern.FindStringSubmatch(secret); len(matches) > 1 {
		return fmt.Errorf("webhook.secret: environment variable ${%s} is not set", matches[1])
	}
	if strings.TrimSpace(secret) == "" {
		return fmt.Errorf("webhook.secret is required (set it in config or via $%s)", EnvWebhookSecret)
	}
	if placeholderSecrets[secret] {
		return fmt.Errorf("webhook.secret is a known placeholder value; configure a real secret")
	}

	if _, err := links.NewResolver(links.Mode(cfg.Links.Mode), cfg.Links.Scheme); err != nil {
		return fmt.Errorf("links: %w", err)
	}

	return nil
}

// LinkResolver builds the resolver described by the links section.
func (c *Config) LinkResolver() (links.Resolver, error) {
	return links.NewResolver(links.Mode(c.Links.Mode), c.Links.Scheme)
}
