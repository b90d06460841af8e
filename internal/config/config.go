package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"ctchen222/tictactoe-engine/internal/game"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel string `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPAddr string `yaml:"http-addr" env:"HTTP_ADDR" env-default:":8080"`
	WebDir   string `yaml:"web-dir" env:"WEB_DIR" env-default:"./web"`

	Game      Game      `yaml:"game"`
	Telemetry Telemetry `yaml:"telemetry"`
	Redis     Redis     `yaml:"redis"`
}

type Game struct {
	// BotDelay paces bot replies so the human sees their own move land first.
	BotDelay      time.Duration `yaml:"bot-delay" env:"BOT_DELAY" env-default:"500ms"`
	BotMark       string        `yaml:"bot-mark" env:"BOT_MARK" env-default:"O"`
	DefaultMode   string        `yaml:"default-mode" env:"DEFAULT_MODE" env-default:"human"`
	SessionTTL    time.Duration `yaml:"session-ttl" env:"SESSION_TTL" env-default:"30m"`
	SweepInterval time.Duration `yaml:"sweep-interval" env:"SWEEP_INTERVAL" env-default:"1m"`
}

type Telemetry struct {
	Enabled        bool   `yaml:"enabled" env:"OTEL_ENABLED" env-default:"false"`
	Endpoint       string `yaml:"endpoint" env:"OTEL_ENDPOINT" env-default:"otel-collector:4317"`
	ServiceName    string `yaml:"service-name" env:"OTEL_SERVICE_NAME" env-default:"tic-tac-toe"`
	ServiceVersion string `yaml:"service-version" env:"OTEL_SERVICE_VERSION" env-default:"v0.2.0"`
	StdoutTraces   bool   `yaml:"stdout-traces" env:"OTEL_STDOUT_TRACES" env-default:"false"`
}

type Redis struct {
	Enabled bool   `yaml:"enabled" env:"REDIS_ENABLED" env-default:"false"`
	Host    string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port    string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Channel string `yaml:"channel" env:"REDIS_CHANNEL" env-default:"channel:events"`
}

// Load reads path when it exists and applies environment overrides.
// An empty path or a missing file falls back to environment and defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := cleanenv.ReadConfig(path, cfg); err != nil {
				return nil, fmt.Errorf("unable to load config file: %w", err)
			}
			return cfg, cfg.validate()
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("unable to stat config file: %w", err)
		}
	}

	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("unable to read environment: %w", err)
	}
	return cfg, cfg.validate()
}

// MustLoad is Load that panics on error.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

func (c *Config) validate() error {
	if c.Game.BotMark != "X" && c.Game.BotMark != "O" {
		return fmt.Errorf("bot-mark must be X or O, got %q", c.Game.BotMark)
	}
	if _, err := game.ParseMode(c.Game.DefaultMode); err != nil {
		return fmt.Errorf("default-mode: %w", err)
	}
	if c.Game.BotDelay < 0 {
		return fmt.Errorf("bot-delay must not be negative, got %s", c.Game.BotDelay)
	}
	return nil
}

func (r *Redis) Addr() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}
