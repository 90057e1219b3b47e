package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/fx"
)

// Delivery selects how Telegram updates reach the bot.
type Delivery string

const (
	DeliveryPolling Delivery = "polling"
	DeliveryWebhook Delivery = "webhook"
)

// Config holds all configuration from environment variables.
type Config struct {
	Token   string `envconfig:"TELEGRAM_API_TOKEN" required:"true"`
	APIKey  string `envconfig:"GEMINI_API_KEY" required:"true"`
	BaseURL string `envconfig:"GEMINI_BASE_URL" default:"https://generativelanguage.googleapis.com/v1beta/openai"`
	Model   string `envconfig:"GEMINI_MODEL" default:"gemini-2.5-pro"`

	Delivery  Delivery `envconfig:"DELIVERY_MODE" default:"polling"`
	PublicURL string   `envconfig:"PUBLIC_URL"` // only used in webhook mode
	Port      string   `envconfig:"PORT" default:"10000"`

	GenerationTimeout time.Duration `envconfig:"GENERATION_TIMEOUT" default:"30s"`
	MaxInFlight       int64         `envconfig:"MAX_IN_FLIGHT" default:"32"`

	// Path to config.toml file
	ConfigFile string `envconfig:"CONFIG_FILE" default:"config.toml"`

	// Prompts loaded from config.toml
	Prompts Prompts
}

// Prompts holds the persona and the fixed user-facing strings.
type Prompts struct {
	Persona  string `toml:"persona"`
	Speaker  string `toml:"speaker"`
	Greeting string `toml:"greeting"`
	Fallback string `toml:"fallback"`
	Failure  string `toml:"failure"`
}

// FileConfig represents the structure of config.toml.
type FileConfig struct {
	Prompts Prompts `toml:"prompts"`
}

// DefaultPrompts provides fallback prompts if config.toml is not found.
var DefaultPrompts = Prompts{
	Persona: `You are RoastBot 9000, a sarcastic, rude, but funny chatbot.
Your mission: roast people, tease them, and deliver hilarious insults, but never cross into hate speech or real offense.
Your tone is confident, sharp, and self-aware, like a stand-up comedian who loves roasting the user.
Keep it short, punchy, and witty.
Respond in the same language the user uses.`,
	Speaker:  "RoastBot 9000",
	Greeting: "🔥 RoastBot 9000 en ligne. Viens te faire griller 😈",
	Fallback: "aucune réponse générée",
	Failure:  "💀 Erreur de RoastBot",
}

// LoadEnv loads the configuration from environment variables.
func (c Config) LoadEnv() (Config, error) {
	cfg := c

	if err := envconfig.Process("", &cfg); err != nil {
		return c, err
	}

	return cfg, nil
}

// LoadFile loads prompts from config.toml file.
func (c *Config) LoadFile() error {
	configPath := c.ConfigFile
	if !filepath.IsAbs(configPath) {
		// Try current directory first, then the executable directory
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			execPath, err := os.Executable()
			if err == nil {
				configPath = filepath.Join(filepath.Dir(execPath), c.ConfigFile)
			}
		}
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		c.Prompts = DefaultPrompts
		return nil
	}

	var fileConfig FileConfig
	if _, err := toml.DecodeFile(configPath, &fileConfig); err != nil {
		return fmt.Errorf("failed to decode %s: %w", configPath, err)
	}

	c.Prompts = fileConfig.Prompts.withDefaults()

	return nil
}

func (p Prompts) withDefaults() Prompts {
	if strings.TrimSpace(p.Persona) == "" {
		p.Persona = DefaultPrompts.Persona
	}
	if strings.TrimSpace(p.Speaker) == "" {
		p.Speaker = DefaultPrompts.Speaker
	}
	if strings.TrimSpace(p.Greeting) == "" {
		p.Greeting = DefaultPrompts.Greeting
	}
	if strings.TrimSpace(p.Fallback) == "" {
		p.Fallback = DefaultPrompts.Fallback
	}
	if strings.TrimSpace(p.Failure) == "" {
		p.Failure = DefaultPrompts.Failure
	}
	return p
}

// Validate checks settings envconfig cannot express on its own.
func (c *Config) Validate() error {
	switch c.Delivery {
	case DeliveryPolling:
	case DeliveryWebhook:
		if strings.TrimSpace(c.PublicURL) == "" {
			return errors.New("PUBLIC_URL is required when DELIVERY_MODE=webhook")
		}
	default:
		return fmt.Errorf("unsupported DELIVERY_MODE %q (want polling or webhook)", c.Delivery)
	}

	if c.GenerationTimeout <= 0 {
		return errors.New("GENERATION_TIMEOUT must be positive")
	}
	if c.MaxInFlight <= 0 {
		return errors.New("MAX_IN_FLIGHT must be positive")
	}

	return nil
}

// WebhookURL returns the callback URL registered with Telegram.
func (c *Config) WebhookURL() string {
	return strings.TrimRight(c.PublicURL, "/") + "/webhook/" + c.Token
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

func NewConfig() (*Config, error) {
	var cfg Config
	loadedCfg, err := cfg.LoadEnv()
	if err != nil {
		return nil, err
	}

	if err := loadedCfg.LoadFile(); err != nil {
		return nil, err
	}

	if err := loadedCfg.Validate(); err != nil {
		return nil, err
	}

	return &loadedCfg, nil
}

func Module() fx.Option {
	return fx.Module(
		"config",
		fx.Provide(
			NewConfig,
		),
	)
}
