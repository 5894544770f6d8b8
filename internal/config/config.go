package config

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DefaultCacheTTL = 24 * time.Hour
	DefaultMaxDelay = 10 * time.Second
	DefaultRoutines = 5
)

type Config struct {
	Organizations OrganizationConfig `toml:"organizations"`
	GitHub        GitHubConfig       `toml:"github"`
	Cache         CacheConfig        `toml:"cache"`
	Delays        DelayConfig        `toml:"delays"`
}

type OrganizationConfig struct {
	Orgs []string `toml:"orgs"`
}

type GitHubConfig struct {
	Token   string `toml:"token"`
	BaseURL string `toml:"base_url"`
}

type CacheConfig struct {
	TTL string `toml:"ttl"`
}

type DelayConfig struct {
	MaxDelay string `toml:"max_delay"`
	Routines int    `toml:"routines"`
}

// ErrNoConfig means no config file exists at any default location.
var ErrNoConfig = errors.New("no config file found")

// Load reads the config at path, or the first default location when path
// is empty. A missing explicit path is an error; no default file yields an
// empty config.
func Load(path string) (*Config, error) {
	configPath, err := FindConfigPath(path)
	if errors.Is(err, ErrNoConfig) {
		return &Config{}, nil
	}
	if err != nil {
		return nil, err
	}

	return LoadFile(configPath)
}

func FindConfigPath(path string) (string, error) {
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("config file %s: %w", path, err)
		}
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = ""
	}

	configPaths := []string{
		"./config.toml",
		filepath.Join(homeDir, ".config", "ghorg", "config.toml"),
		filepath.Join(homeDir, ".ghorg.toml"),
	}

	for _, p := range configPaths {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", ErrNoConfig
}

func LoadFile(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	if cfg.GitHub.Token == "" {
		cfg.GitHub.Token = os.Getenv("GITHUB_TOKEN")
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if _, err := parseDuration(c.Cache.TTL, DefaultCacheTTL); err != nil {
		return fmt.Errorf("cache.ttl: %w", err)
	}
	if _, err := parseDuration(c.Delays.MaxDelay, DefaultMaxDelay); err != nil {
		return fmt.Errorf("delays.max_delay: %w", err)
	}
	if c.Delays.Routines < 0 {
		return fmt.Errorf("delays.routines: must not be negative")
	}
	return nil
}

func (c *Config) GetOrganizations() []string {
	return c.Organizations.Orgs
}

func (c *Config) GetBaseURL() string {
	return c.GitHub.BaseURL
}

func (c *Config) GetCacheTTL() time.Duration {
	d, _ := parseDuration(c.Cache.TTL, DefaultCacheTTL)
	return d
}

func (c *Config) GetMaxDelay() time.Duration {
	d, _ := parseDuration(c.Delays.MaxDelay, DefaultMaxDelay)
	return d
}

func (c *Config) GetRoutines() int {
	if c.Delays.Routines == 0 {
		return DefaultRoutines
	}
	return c.Delays.Routines
}

func parseDuration(s string, fallback time.Duration) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback, err
	}
	if d < 0 {
		return fallback, fmt.Errorf("duration %q is negative", s)
	}
	return d, nil
}

func runGHAuthToken() (string, error) {
	output, err := exec.Command("gh", "auth", "token").Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(output)), nil
}

// getGitHubCLIAuthToken runs `gh auth token` at most once per process.
// Failures are remembered as well.
var getGitHubCLIAuthToken = sync.OnceValues(runGHAuthToken)

// GetGitHubToken prefers the gh CLI, then the config file, then
// GITHUB_TOKEN. An empty result means unauthenticated requests.
func (c *Config) GetGitHubToken() string {
	token, err := getGitHubCLIAuthToken()
	if err == nil && token != "" {
		return token
	}

	if c.GitHub.Token != "" {
		return c.GitHub.Token
	}

	return os.Getenv("GITHUB_TOKEN")
}
