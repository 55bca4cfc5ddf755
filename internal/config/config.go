// Package config loads server configuration from the environment and,
// optionally, a YAML file.
//
// Environment variables win over file values so deployments can keep
// secrets out of the config file:
//
//	SPOND_USERNAME    Spond account email
//	SPOND_PASSWORD    Spond account password
//	KIDS_CONFIG       JSON array: [{"name":"Oliver","groups":["Fjordvik"]}]
//	MCP_AUTH_TOKEN    bearer token for the HTTP transport ("" disables auth)
//	PORT              HTTP listen port (default 8080)
//	SPOND_MCP_CONFIG  path to a YAML config file
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Kid is one configured family member: a display name and the group
// names they belong to. Group names are free text matched fuzzily
// against Spond group names, so "Fjordvik" is enough for
// "Fjordvik FK G2013".
type Kid struct {
	Name   string   `json:"name" yaml:"name"`
	Groups []string `json:"groups" yaml:"groups"`
}

// Config is the full server configuration.
type Config struct {
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	AuthToken string `yaml:"auth_token"`
	Port      int    `yaml:"port"`
	Kids      []Kid  `yaml:"kids"`
}

// Load builds the configuration from the YAML file named by
// SPOND_MCP_CONFIG (if set) overlaid with environment variables.
// Missing credentials are not an error — API calls will fail later and
// the caller is expected to warn.
func Load() (*Config, error) {
	cfg := &Config{Port: 8080}

	if path := os.Getenv("SPOND_MCP_CONFIG"); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if v := os.Getenv("SPOND_USERNAME"); v != "" {
		cfg.Username = v
	}
	if v := os.Getenv("SPOND_PASSWORD"); v != "" {
		cfg.Password = v
	}
	if v := os.Getenv("MCP_AUTH_TOKEN"); v != "" {
		cfg.AuthToken = v
	}
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("config: invalid PORT %q: %w", v, err)
		}
		cfg.Port = port
	}
	if v := os.Getenv("KIDS_CONFIG"); v != "" {
		var kids []Kid
		if err := json.Unmarshal([]byte(v), &kids); err != nil {
			return nil, fmt.Errorf("config: invalid KIDS_CONFIG: %w", err)
		}
		cfg.Kids = kids
	}

	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}
