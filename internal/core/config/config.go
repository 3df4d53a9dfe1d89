package config

import (
	"time"

	"github.com/wiyan17/Notifwallet-bot/internal/core/domain"
	amqpclient "github.com/wiyan17/Notifwallet-bot/internal/infra/amqp"
	redisclient "github.com/wiyan17/Notifwallet-bot/internal/infra/redis"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server   ServerConfig       `yaml:"server"`
	Telegram TelegramConfig     `yaml:"telegram"`
	Monitor  MonitorConfig      `yaml:"monitor"`
	Networks []NetworkConfig    `yaml:"networks"`
	Alerts   AlertsConfig       `yaml:"alerts"`
	Notify   NotifyConfig       `yaml:"notify"`
	Redis    redisclient.Config `yaml:"redis"`
	AMQP     amqpclient.Config  `yaml:"amqp"`
	Logging  LoggingConfig      `yaml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// TelegramConfig holds bot settings.
type TelegramConfig struct {
	Token        string   `yaml:"token"`
	AllowedUsers []string `yaml:"allowed_users"` // empty = everyone
	ParseMode    string   `yaml:"parse_mode"`    // Markdown, MarkdownV2, HTML or empty
	PollTimeout  int      `yaml:"poll_timeout"`  // long-poll seconds
}

// MonitorConfig holds poll loop settings.
type MonitorConfig struct {
	PollInterval time.Duration `yaml:"poll_interval"`
	RPCTimeout   time.Duration `yaml:"rpc_timeout"`
}

// NetworkConfig describes a network registered at startup.
type NetworkConfig struct {
	Name             string `yaml:"name"`
	DisplayName      string `yaml:"display_name"`
	RPCURL           string `yaml:"rpc_url"`
	ExplorerTxPrefix string `yaml:"explorer_tx_prefix"`
}

// AlertsConfig holds the initial webhook alerting state.
type AlertsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// NotifyConfig holds fan-out settings.
type NotifyConfig struct {
	Concurrency  int    `yaml:"concurrency"`
	RedisChannel string `yaml:"redis_channel"` // channel prefix; redis.url enables publishing
	AMQPExchange string `yaml:"amqp_exchange"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// StartupNetworks returns the configured networks, or the built-in defaults
// when none are configured. Known names fill in missing display names and
// explorer prefixes.
func (c *AppConfig) StartupNetworks() []domain.Network {
	if len(c.Networks) == 0 {
		return append([]domain.Network(nil), domain.DefaultNetworks...)
	}
	out := make([]domain.Network, 0, len(c.Networks))
	for _, n := range c.Networks {
		network := domain.Network{
			Name:             domain.NormalizeNetworkName(n.Name),
			DisplayName:      n.DisplayName,
			RPCURL:           n.RPCURL,
			ExplorerTxPrefix: n.ExplorerTxPrefix,
		}
		if known, ok := domain.KnownNetwork(n.Name); ok {
			if network.DisplayName == "" {
				network.DisplayName = known.DisplayName
			}
			if network.ExplorerTxPrefix == "" {
				network.ExplorerTxPrefix = known.ExplorerTxPrefix
			}
			if network.RPCURL == "" {
				network.RPCURL = known.RPCURL
			}
		}
		out = append(out, network)
	}
	return out
}
