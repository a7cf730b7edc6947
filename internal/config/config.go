// Package config provides lopper's layered configuration: defaults,
// an optional TOML file, environment overrides, and finally CLI flags
// (highest precedence), covering lopper's own run-time knobs: strict
// phandle checking, permissive assist loading, --werror, the assist
// search path, and lop priority bounds.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"
)

// Config is lopper's complete run configuration.
type Config struct {
	Strict     bool `toml:"strict"`
	Permissive bool `toml:"permissive"`
	WError     bool `toml:"werror" env:"LOPPER_WERROR"`

	AssistSearchPath []string `toml:"assist_search_path"`
	OutputFormat     string   `toml:"output_format" env:"LOPPER_OUTPUT_FORMAT"`

	// PriorityMin/PriorityMax are validated to lie within 1..9 with
	// PriorityMin <= PriorityMax. The lop runqueue does not read them:
	// it accepts priorities 1..9 and runs any other value at priority 5.
	PriorityMin int `toml:"priority_min"`
	PriorityMax int `toml:"priority_max"`

	Logging LoggingConfig `toml:"logging"`
	Vault   VaultConfig   `toml:"vault"`

	Profile string `toml:"profile"`
}

// LoggingConfig carries the fields lopper's own log package consults.
type LoggingConfig struct {
	Level       string `toml:"level" env:"LOPPER_LOG_LEVEL"`
	EnableColor bool   `toml:"enable_color"`
}

// VaultConfig carries ambient credentials for the builtin vault
// assist (assist/builtin/vault).
type VaultConfig struct {
	Address string `toml:"address" env:"VAULT_ADDR"`
	Token   string `toml:"token" env:"VAULT_TOKEN"`
}

// Overrides carries CLI-flag values that always win over file/env
// configuration.
type Overrides struct {
	Strict     bool
	Permissive bool
	WError     bool
}

// DefaultConfig returns lopper's built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Strict:           false,
		Permissive:       false,
		WError:           false,
		AssistSearchPath: nil,
		OutputFormat:     "yaml",
		PriorityMin:      1,
		PriorityMax:      9,
		Logging: LoggingConfig{
			Level:       "info",
			EnableColor: true,
		},
		Profile: "default",
	}
}

// DefaultSearchPath returns the candidate config file locations, in
// precedence order: a project-local file first, then a user config
// directory, then a system-wide one.
func DefaultSearchPath() []string {
	var out []string
	if cwd, err := os.Getwd(); err == nil {
		out = append(out, filepath.Join(cwd, "lopper.toml"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		out = append(out, filepath.Join(home, ".config", "lopper", "config.toml"))
	}
	out = append(out, "/etc/lopper/config.toml")
	return out
}

// Load reads the first existing file in searchPath, falling back to
// DefaultConfig if none exist, then layers environment overrides and
// validates the result.
func Load(searchPath []string) (*Config, error) {
	cfg := DefaultConfig()

	for _, path := range searchPath {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
		cfg.Profile = deriveProfile(path)
		break
	}

	if err := (&Loader{envPrefix: "LOPPER_"}).LoadFromEnvironment(cfg); err != nil {
		return nil, fmt.Errorf("applying environment overrides: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}
	return cfg, nil
}

func deriveProfile(path string) string {
	base := filepath.Base(path)
	return base[:len(base)-len(filepath.Ext(base))]
}

// ApplyFlags layers CLI-flag overrides on top of cfg, the highest
// precedence tier: a flag that's set always wins, a flag
// left at its zero value leaves the file/env value alone.
func (c *Config) ApplyFlags(o Overrides) {
	if o.Strict {
		c.Strict = true
	}
	if o.Permissive {
		c.Permissive = true
	}
	if o.WError {
		c.WError = true
	}
}

// Manager owns a live Config plus change hooks, for a long-running
// service mode (a watcher process re-running a pipeline on file
// change) even though the one-shot CLI never calls Watch.
type Manager struct {
	mu     sync.RWMutex
	config *Config
	hooks  []func(*Config)
}

// NewManager wraps an already-loaded Config for hot-reload use.
func NewManager(initial *Config) *Manager {
	return &Manager{config: initial}
}

// Get returns a copy of the current configuration.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cp := *m.config
	return &cp
}

// OnChange registers a callback invoked (in its own goroutine) whenever
// Reload installs a new configuration.
func (m *Manager) OnChange(hook func(*Config)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks = append(m.hooks, hook)
}

// Reload re-runs Load against searchPath and, on success, swaps it in
// and fires every registered change hook.
func (m *Manager) Reload(searchPath []string) error {
	cfg, err := Load(searchPath)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.config = cfg
	hooks := append([]func(*Config){}, m.hooks...)
	m.mu.Unlock()
	for _, h := range hooks {
		go h(cfg)
	}
	return nil
}
