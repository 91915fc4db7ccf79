// Package config handles the optional user settings file and the immutable
// runtime record every component receives.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// ClientYarn publishes with "yarn publish".
	ClientYarn = "yarn"
	// ClientNPM publishes with "npm publish".
	ClientNPM = "npm"

	// DefaultGitHubAPIURL is the public GitHub REST API root.
	DefaultGitHubAPIURL = "https://api.github.com/"
	// DefaultCommitPrefix prefixes the version in commit messages, tag
	// annotations and release titles.
	DefaultCommitPrefix = "Version "
)

var (
	errUnknownClient = errors.New("registry client must be \"yarn\" or \"npm\"")
	errEmptyNPM      = errors.New("registry npm binary must not be empty")
)

// Config represents the settings file ~/.config/auto-release/config.yml.
type Config struct {
	Registry RegistryConfig `yaml:"registry"`
	GitHub   GitHubConfig   `yaml:"github"`
	GitLab   GitLabConfig   `yaml:"gitlab"`
	Publish  PublishConfig  `yaml:"publish"`
}

// RegistryConfig selects the package manager commands.
type RegistryConfig struct {
	// Client runs the publish command: "yarn" or "npm".
	Client string `yaml:"client"`
	// NPM is the binary used for registry queries.
	NPM string `yaml:"npm"`
}

// GitHubConfig contains GitHub-specific settings.
type GitHubConfig struct {
	// APIURL is the REST API root, e.g. https://github.example.com/api/v3/.
	APIURL string `yaml:"api_url"`
}

// GitLabConfig contains GitLab-specific settings.
type GitLabConfig struct {
	// TokenFile is used when no token file argument is given.
	TokenFile string `yaml:"token_file"`
}

// PublishConfig contains release naming settings.
type PublishConfig struct {
	CommitPrefix string `yaml:"commit_prefix"`
}

// Default returns the settings used when no file exists.
func Default() *Config {
	return &Config{
		Registry: RegistryConfig{Client: ClientYarn, NPM: "npm"},
		GitHub:   GitHubConfig{APIURL: DefaultGitHubAPIURL},
		Publish:  PublishConfig{CommitPrefix: DefaultCommitPrefix},
	}
}

// DefaultPath returns ~/.config/auto-release/config.yml.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "auto-release", "config.yml"), nil
}

// Load reads the settings file from the user's home directory.
// A missing file is not an error.
func Load() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile reads settings from path, filling unset keys with defaults.
func LoadFile(path string) (*Config, error) {
	// #nosec G304 - reading the user's own settings file is intentional
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

func (c *Config) applyDefaults() {
	d := Default()
	if c.Registry.Client == "" {
		c.Registry.Client = d.Registry.Client
	}
	if c.GitHub.APIURL == "" {
		c.GitHub.APIURL = d.GitHub.APIURL
	}
	if c.Publish.CommitPrefix == "" {
		c.Publish.CommitPrefix = d.Publish.CommitPrefix
	}
}

// Validate checks the settings values.
func (c *Config) Validate() error {
	if c.Registry.Client != ClientYarn && c.Registry.Client != ClientNPM {
		return fmt.Errorf("%w, got %q", errUnknownClient, c.Registry.Client)
	}
	if c.Registry.NPM == "" {
		return errEmptyNPM
	}
	return nil
}
