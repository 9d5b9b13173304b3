// Package config loads application configuration from a YAML file with
// environment variable overrides. Validation happens at load time; a
// contradictory or incomplete configuration is fatal at startup, never a
// runtime concern.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultIgnoreMarker is the phrase that, found anywhere in a pull request
// description (case-insensitive), excludes the PR from review.
const DefaultIgnoreMarker = "nitpick: ignore"

// Config holds the validated application configuration. It is immutable after
// Load returns and safe for unsynchronized concurrent reads.
type Config struct {
	GitHubToken    string
	GitHubUsername string
	Repositories   []string
	PollInterval   time.Duration
	MaxComments    int
	UserWhitelist  []string
	UserBlacklist  []string
	IgnoreMarker   string
	ExcludePaths   []string
	ListenAddr     string
	ToolTimeout    time.Duration
	RemoteTimeout  time.Duration
	Handlers       map[string][]string
	Debug          bool
}

// fileConfig is the YAML document shape. Durations are strings so the file
// can say "5m" rather than nanosecond counts.
type fileConfig struct {
	Repositories  []string            `yaml:"repositories"`
	PollInterval  string              `yaml:"poll_interval"`
	MaxComments   *int                `yaml:"max_comments"`
	UserWhitelist []string            `yaml:"user_whitelist"`
	UserBlacklist []string            `yaml:"user_blacklist"`
	IgnoreMarker  string              `yaml:"ignore_marker"`
	ExcludePaths  []string            `yaml:"exclude_paths"`
	ListenAddr    string              `yaml:"listen_addr"`
	ToolTimeout   string              `yaml:"tool_timeout"`
	RemoteTimeout string              `yaml:"remote_timeout"`
	Handlers      map[string][]string `yaml:"handlers"`
}

func defaults() *Config {
	return &Config{
		PollInterval:  5 * time.Minute,
		MaxComments:   128,
		IgnoreMarker:  DefaultIgnoreMarker,
		ListenAddr:    "127.0.0.1:8080",
		ToolTimeout:   2 * time.Minute,
		RemoteTimeout: 30 * time.Second,
		Handlers: map[string][]string{
			".py":  {"flake8", "pydocstyle"},
			".rb":  {"rubocop"},
			".js":  {"eslint"},
			".jsx": {"eslint"},
		},
	}
}

// Load reads the YAML file at path (skipped when path is empty and the
// default location is absent), applies NITPICK_* environment overrides, and
// validates the result. NITPICK_GITHUB_TOKEN is required. An empty
// repository list is allowed here; the polling daemon rejects it, the
// single-PR review command does not need one.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path == "" {
		if _, err := os.Stat("nitpick.yaml"); err == nil {
			path = "nitpick.yaml"
		}
	}
	if path != "" {
		if err := applyFile(cfg, path); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	if len(fc.Repositories) > 0 {
		cfg.Repositories = fc.Repositories
	}
	if fc.PollInterval != "" {
		d, err := time.ParseDuration(fc.PollInterval)
		if err != nil {
			return fmt.Errorf("%s: poll_interval: %w", path, err)
		}
		cfg.PollInterval = d
	}
	if fc.MaxComments != nil {
		cfg.MaxComments = *fc.MaxComments
	}
	if len(fc.UserWhitelist) > 0 {
		cfg.UserWhitelist = fc.UserWhitelist
	}
	if len(fc.UserBlacklist) > 0 {
		cfg.UserBlacklist = fc.UserBlacklist
	}
	if fc.IgnoreMarker != "" {
		cfg.IgnoreMarker = fc.IgnoreMarker
	}
	if len(fc.ExcludePaths) > 0 {
		cfg.ExcludePaths = fc.ExcludePaths
	}
	if fc.ListenAddr != "" {
		cfg.ListenAddr = fc.ListenAddr
	}
	if fc.ToolTimeout != "" {
		d, err := time.ParseDuration(fc.ToolTimeout)
		if err != nil {
			return fmt.Errorf("%s: tool_timeout: %w", path, err)
		}
		cfg.ToolTimeout = d
	}
	if fc.RemoteTimeout != "" {
		d, err := time.ParseDuration(fc.RemoteTimeout)
		if err != nil {
			return fmt.Errorf("%s: remote_timeout: %w", path, err)
		}
		cfg.RemoteTimeout = d
	}
	if len(fc.Handlers) > 0 {
		cfg.Handlers = fc.Handlers
	}
	return nil
}

func applyEnv(cfg *Config) error {
	cfg.GitHubToken = os.Getenv("NITPICK_GITHUB_TOKEN")
	cfg.GitHubUsername = os.Getenv("NITPICK_GITHUB_USERNAME")

	if v, ok := os.LookupEnv("NITPICK_POLL_INTERVAL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("NITPICK_POLL_INTERVAL has invalid duration %q: %w", v, err)
		}
		cfg.PollInterval = d
	}

	if v, ok := os.LookupEnv("NITPICK_LISTEN_ADDR"); ok {
		cfg.ListenAddr = v
	}

	if v, ok := os.LookupEnv("NITPICK_REPOSITORIES"); ok && v != "" {
		var repos []string
		for _, r := range strings.Split(v, ",") {
			if r = strings.TrimSpace(r); r != "" {
				repos = append(repos, r)
			}
		}
		cfg.Repositories = repos
	}
	return nil
}

func (c *Config) validate() error {
	if c.GitHubToken == "" {
		return fmt.Errorf("NITPICK_GITHUB_TOKEN is required")
	}
	for _, repo := range c.Repositories {
		parts := strings.Split(repo, "/")
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return fmt.Errorf("repository %q must be owner/name", repo)
		}
	}
	if len(c.UserWhitelist) > 0 && len(c.UserBlacklist) > 0 {
		return fmt.Errorf("user_whitelist and user_blacklist are mutually exclusive")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive")
	}
	if c.MaxComments <= 0 {
		return fmt.Errorf("max_comments must be positive")
	}
	if c.ToolTimeout <= 0 {
		return fmt.Errorf("tool_timeout must be positive")
	}
	if c.RemoteTimeout <= 0 {
		return fmt.Errorf("remote_timeout must be positive")
	}
	return nil
}
