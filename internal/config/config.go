// Package config handles configuration loading and management for Surveyor.
// It supports XDG config paths, project-level overrides, and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/viper"
)

// Config holds all configuration for Surveyor.
type Config struct {
	Agent     AgentConfig     `mapstructure:"agent"`
	Git       GitConfig       `mapstructure:"git"`
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// AgentConfig identifies this agent process to the coordination layer.
type AgentConfig struct {
	// ID is the unique agent identifier used in branch names.
	ID string `mapstructure:"id"`
	// Capabilities lists the area categories this agent may claim.
	Capabilities []string `mapstructure:"capabilities"`
	// Priority is the default priority filter for claiming work.
	Priority string `mapstructure:"priority"`
}

// GitConfig holds version-control settings.
type GitConfig struct {
	// IntegrationBranch is where completed work is merged.
	IntegrationBranch string `mapstructure:"integration_branch"`
}

// AnthropicConfig holds Anthropic API settings for area planning.
type AnthropicConfig struct {
	APIKey     string `mapstructure:"api_key"`
	Model      string `mapstructure:"model"`
	UseBedrock bool   `mapstructure:"use_bedrock"`
	AWSRegion  string `mapstructure:"aws_region"`
	AWSProfile string `mapstructure:"aws_profile"`
}

// RateLimitConfig bounds the request rate against the LLM endpoint.
type RateLimitConfig struct {
	// MaxRequestsPerMinute caps requests in any one-minute window.
	MaxRequestsPerMinute int `mapstructure:"max_requests_per_minute"`
	// Cooldown is the minimum spacing between consecutive requests.
	Cooldown time.Duration `mapstructure:"cooldown"`
}

// Load loads configuration from XDG paths, project overrides, and environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (SURVEYOR_*, ANTHROPIC_API_KEY)
// 2. Project config (.surveyor/config.yaml under the project root)
// 3. User config (~/.config/surveyor/config.yaml)
// 4. Built-in defaults
func Load(projectRoot string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir())

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	projectConfig := filepath.Join(projectRoot, ".surveyor", "config.yaml")
	if _, err := os.Stat(projectConfig); err == nil {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading project config: %w", err)
		}
		if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
			return nil, fmt.Errorf("merging project config: %w", err)
		}
	}

	v.SetEnvPrefix("SURVEYOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = os.ExpandEnv(cfg.Anthropic.APIKey)
	if cfg.Agent.ID == "" {
		cfg.Agent.ID = defaultAgentID()
	}

	return cfg, nil
}

// LoadFromPath loads configuration from a specific file (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = os.ExpandEnv(cfg.Anthropic.APIKey)
	if cfg.Agent.ID == "" {
		cfg.Agent.ID = defaultAgentID()
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("agent.priority", "HIGH")
	v.SetDefault("git.integration_branch", "main")
	v.SetDefault("anthropic.model", "claude-sonnet-4-20250514")
	v.SetDefault("rate_limit.max_requests_per_minute", 20)
	v.SetDefault("rate_limit.cooldown", 2*time.Second)
}

func userConfigDir() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, _ := os.UserHomeDir()
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "surveyor")
}

// defaultAgentID derives a stable-enough agent identity when none is
// configured: the hostname, falling back to a random suffix.
func defaultAgentID() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "agent-" + uuid.NewString()[:8]
	}
	return host
}
