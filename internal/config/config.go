package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Frontends a client can run
const (
	FrontendConsole  = "console"
	FrontendTelegram = "telegram"
)

// ServerConfig holds the chat server the client talks to
type ServerConfig struct {
	URL     string        `yaml:"url"`     // base URL, e.g. https://chat.example.com
	Email   string        `yaml:"email"`   // account used for basic auth
	APIKey  string        `yaml:"api_key"` // account API key
	Timeout time.Duration `yaml:"timeout"` // per-request timeout
}

// ComposeConfig holds where ordinary (non-command) messages go
type ComposeConfig struct {
	To string `yaml:"to"` // recipient of private messages
}

// TelegramConfig holds Telegram-specific settings
type TelegramConfig struct {
	Token string `yaml:"token"` // Bot token from @BotFather
}

// Config holds the zcommand configuration
type Config struct {
	Server    ServerConfig   `yaml:"server"`
	Compose   ComposeConfig  `yaml:"compose"`
	Telegram  TelegramConfig `yaml:"telegram"`
	Frontend  string         `yaml:"frontend"`   // "console" (default) or "telegram"
	Allowlist []int64        `yaml:"allowlist"`  // Telegram user IDs allowed to use the bot
	Listen    string         `yaml:"listen"`     // address for the reference server (-serve)
	PrefsFile string         `yaml:"prefs_file"` // where display settings are kept
	LogFile   string         `yaml:"log_file"`   // path to log file
	Debug     bool           `yaml:"debug"`      // enable debug logging
}

// DefaultTimeout is used when server.timeout is unset
const DefaultTimeout = 10 * time.Second

// DefaultListen is used when listen is unset
const DefaultListen = "127.0.0.1:9991"

// Load reads and parses the config file from the given path
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if cfg.Frontend == "" {
		cfg.Frontend = FrontendConsole
	}
	if cfg.Server.Timeout <= 0 {
		cfg.Server.Timeout = DefaultTimeout
	}
	if cfg.Listen == "" {
		cfg.Listen = DefaultListen
	}

	return &cfg, nil
}

// ValidateClient checks the settings a frontend needs
func (c *Config) ValidateClient() error {
	if c.Server.URL == "" {
		return fmt.Errorf("server.url is required")
	}

	switch c.Frontend {
	case FrontendConsole:
	case FrontendTelegram:
		if c.Telegram.Token == "" {
			return fmt.Errorf("telegram.token is required")
		}
		if len(c.Allowlist) == 0 {
			return fmt.Errorf("allowlist cannot be empty")
		}
	default:
		return fmt.Errorf("unknown frontend %q", c.Frontend)
	}

	return nil
}

// IsAllowed checks if the given Telegram user ID is in the allowlist
func (c *Config) IsAllowed(userID int64) bool {
	for _, allowed := range c.Allowlist {
		if allowed == userID {
			return true
		}
	}
	return false
}
