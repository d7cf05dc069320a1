package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v9"
	"gopkg.in/yaml.v3"
)

type LLM struct {
	BaseURL        string        `yaml:"base_url" env:"BASE_URL"`
	ChatPath       string        `yaml:"chat_path" env:"CHAT_PATH"`
	Model          string        `yaml:"model" env:"MODEL"`
	SystemPrompt   string        `yaml:"system_prompt" env:"SYSTEM_PROMPT"`
	SupportsVision bool          `yaml:"supports_vision" env:"SUPPORTS_VISION"`
	Timeout        time.Duration `yaml:"timeout" env:"TIMEOUT"`
	APIKey         string        `yaml:"api_key" env:"API_KEY"`
}

type Server struct {
	Host string `yaml:"host" env:"HOST"`
	Port int    `yaml:"port" env:"PORT"`
}

type Telegram struct {
	Token          string        `yaml:"token" env:"BOT_TOKEN"`
	AuthorizedIDs  []int64       `yaml:"authorized_ids" env:"AUTHORIZED_USER_IDS" envSeparator:" "`
	WebhookURL     string        `yaml:"webhook_url" env:"WEBHOOK_URL"`
	WebhookSecret  string        `yaml:"webhook_secret" env:"WEBHOOK_SECRET"`
	UpdateInterval time.Duration `yaml:"update_interval" env:"UPDATE_INTERVAL"`
}

type History struct {
	MaxMessages int `yaml:"max_messages" env:"MAX_MESSAGES"`
}

type Log struct {
	Level   string `yaml:"level" env:"LEVEL"`
	NoColor bool   `yaml:"no_color" env:"NO_COLOR"`
}

type Config struct {
	LLM      LLM      `yaml:"llm" envPrefix:"LLM_"`
	Server   Server   `yaml:"server" envPrefix:"SERVER_"`
	Telegram Telegram `yaml:"telegram" envPrefix:"TELEGRAM_"`
	History  History  `yaml:"history" envPrefix:"HISTORY_"`
	Log      Log      `yaml:"log" envPrefix:"LOG_"`
}

func Default() Config {
	return Config{
		LLM: LLM{
			BaseURL:  "http://localhost:1234",
			ChatPath: "/v1/chat/completions",
			Model:    "local-model",
			Timeout:  60 * time.Second,
		},
		Server: Server{
			Host: "0.0.0.0",
			Port: 3978,
		},
		Telegram: Telegram{
			UpdateInterval: time.Second,
		},
		History: History{
			MaxMessages: 20,
		},
		Log: Log{
			Level: "info",
		},
	}
}

// Load builds the configuration from defaults, the YAML file at path (optional) and the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("reading config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parsing config file %s: %w", path, err)
			}
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parsing env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	u, err := url.Parse(c.LLM.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid llm.base_url %q", c.LLM.BaseURL)
	}
	if !strings.HasPrefix(c.LLM.ChatPath, "/") {
		return fmt.Errorf("llm.chat_path must start with /, got %q", c.LLM.ChatPath)
	}
	if strings.TrimSpace(c.LLM.Model) == "" {
		return errors.New("llm.model is required")
	}
	if c.LLM.Timeout <= 0 {
		return fmt.Errorf("llm.timeout must be positive, got %s", c.LLM.Timeout)
	}
	if c.History.MaxMessages <= 0 || c.History.MaxMessages%2 != 0 {
		return fmt.Errorf("history.max_messages must be a positive even number, got %d", c.History.MaxMessages)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d", c.Server.Port)
	}
	if c.Telegram.UpdateInterval < 0 {
		return fmt.Errorf("telegram.update_interval must not be negative, got %s", c.Telegram.UpdateInterval)
	}
	return nil
}

// RequireTelegram checks the settings the bot needs to connect.
func (c *Config) RequireTelegram() error {
	if strings.TrimSpace(c.Telegram.Token) == "" {
		return errors.New("telegram.token (TELEGRAM_BOT_TOKEN) is required")
	}
	if c.Telegram.WebhookURL != "" {
		if _, err := url.ParseRequestURI(c.Telegram.WebhookURL); err != nil {
			return fmt.Errorf("invalid telegram.webhook_url: %w", err)
		}
	}
	return nil
}

func (s Server) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}
