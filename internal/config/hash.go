package config

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/zeebo/blake3"
	"gopkg.in/yaml.v3"
)

// ComputeBlake3Hash computes the BLAKE3 hash of a file.
func ComputeBlake3Hash(filePath string) (string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	hash := blake3.Sum256(data)
	return hex.EncodeToString(hash[:]), nil
}

// Fingerprint returns a BLAKE3 hash of the effective configuration, after
// defaults, interpolation and environment overrides. The secret is redacted
// first, so the fingerprint can be logged and served.
func (c *Config) Fingerprint() (string, error) {
	redacted := *c
	if redacted.Webhook.Secret != "" {
		redacted.Webhook.Secret = "[redacted]"
	}

	data, err := yaml.Marshal(&redacted)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}

	hash := blake3.Sum256(data)
	return hex.EncodeToString(hash[:]), nil
}
