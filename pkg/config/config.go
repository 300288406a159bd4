package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const FileName = "quasar.config.toml"

func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

func LoadFromDir(dir string) (*Config, error) {
	return Load(filepath.Join(dir, FileName))
}

// ApplyEnv overrides logging settings from QUASAR_LOG_ENV and
// QUASAR_LOG_LEVEL when they are set.
func (c *Config) ApplyEnv() error {
	if env := os.Getenv("QUASAR_LOG_ENV"); env != "" {
		c.Log.Env = LogEnv(strings.ToLower(env))
	}
	if level := os.Getenv("QUASAR_LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
	return c.Validate()
}

func (c *Config) Validate() error {
	switch c.Log.Env {
	case LogEnvDev, LogEnvProd:
	case "":
		c.Log.Env = LogEnvDev
	default:
		return fmt.Errorf("invalid log env: %s (must be dev or prod)", c.Log.Env)
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	case "":
		c.Log.Level = "info"
	default:
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}

	if c.Devtools.Port < 0 || c.Devtools.Port > 65535 {
		return fmt.Errorf("invalid devtools port: %d", c.Devtools.Port)
	}

	if c.Devtools.Port == 0 {
		c.Devtools.Port = 4323
	}

	if c.Devtools.Host == "" {
		c.Devtools.Host = "localhost"
	}

	if c.Devtools.Path == "" {
		c.Devtools.Path = "/__quasar"
	}

	if !strings.HasPrefix(c.Devtools.Path, "/") {
		c.Devtools.Path = "/" + c.Devtools.Path
	}

	if c.Followers.Timeout < 0 {
		return fmt.Errorf("invalid followers timeout: %d", c.Followers.Timeout)
	}

	if c.Followers.Timeout == 0 {
		c.Followers.Timeout = 10
	}

	if c.Title == "" {
		c.Title = "Quasar"
	}

	return nil
}

// DevtoolsAddr is the listen address of the inspector server.
func (c *Config) DevtoolsAddr() string {
	return fmt.Sprintf("%s:%d", c.Devtools.Host, c.Devtools.Port)
}

// ResolvePath makes a config-relative path absolute against root.
func ResolvePath(root, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
