package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

// Default returns a configuration with every default applied.
func Default() *AppConfig {
	cfg := &AppConfig{}
	applyDefaults(cfg)
	return cfg
}

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads path, falling back to Default when the file does not exist.
func LoadOrDefault(path string) (*AppConfig, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

// Validate checks values that have no sensible default.
func (c *AppConfig) Validate() error {
	seen := make(map[string]bool)
	for i, n := range c.Networks {
		name := strings.ToLower(strings.TrimSpace(n.Name))
		if name == "" {
			return fmt.Errorf("networks[%d]: name is required", i)
		}
		if seen[name] {
			return fmt.Errorf("networks[%d]: duplicate network %q", i, name)
		}
		seen[name] = true
	}
	if c.Monitor.PollInterval < 0 || c.Monitor.RPCTimeout < 0 {
		return fmt.Errorf("monitor: durations must not be negative")
	}
	return nil
}

func applyDefaults(cfg *AppConfig) {
	// Environment fallbacks for single-user deployments
	if cfg.Telegram.Token == "" {
		cfg.Telegram.Token = os.Getenv("TELEGRAM_BOT_TOKEN")
	}
	if len(cfg.Telegram.AllowedUsers) == 0 {
		if id := os.Getenv("TELEGRAM_USER_ID"); id != "" {
			cfg.Telegram.AllowedUsers = []string{id}
		}
	}
	if cfg.Server.Port == 0 {
		if p, err := strconv.Atoi(os.Getenv("PORT")); err == nil && p > 0 {
			cfg.Server.Port = p
		} else {
			cfg.Server.Port = 8080
		}
	}

	if cfg.Telegram.ParseMode == "" {
		cfg.Telegram.ParseMode = "Markdown"
	}
	if cfg.Telegram.PollTimeout == 0 {
		cfg.Telegram.PollTimeout = 60
	}
	if cfg.Monitor.PollInterval == 0 {
		cfg.Monitor.PollInterval = 5 * time.Second
	}
	if cfg.Monitor.RPCTimeout == 0 {
		cfg.Monitor.RPCTimeout = 15 * time.Second
	}
	if cfg.Notify.Concurrency == 0 {
		cfg.Notify.Concurrency = 8
	}
	if cfg.Notify.RedisChannel == "" {
		cfg.Notify.RedisChannel = "notifwallet"
	}
	if cfg.AMQP.Exchange == "" {
		cfg.AMQP.Exchange = cfg.Notify.AMQPExchange
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}
