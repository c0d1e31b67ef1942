package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config - all settings of the chart generator
type Config struct {
	Render   RenderConfig   `mapstructure:"render"`
	Graph    GraphConfig    `mapstructure:"graph"`
	Output   OutputConfig   `mapstructure:"output"`
	Log      LogConfig      `mapstructure:"log"`
	Telegram TelegramConfig `mapstructure:"telegram"`
}

type RenderConfig struct {
	DPI      float64 `mapstructure:"dpi"`
	WidthIn  float64 `mapstructure:"width_in"`  // canvas width in inches
	HeightIn float64 `mapstructure:"height_in"` // canvas height in inches
	FontPath string  `mapstructure:"font_path"` // TTF used for every chart, empty = embedded Go font
}

type GraphConfig struct {
	ModelEnabled bool   `mapstructure:"model_enabled"` // start Graphviz and mirror the graph through it
	Seed         uint64 `mapstructure:"seed"`
	Iterations   int    `mapstructure:"iterations"`
}

type OutputConfig struct {
	Dir string `mapstructure:"dir"` // also save PNG files here when set
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Output string `mapstructure:"output"` // "", "stderr" or a file path
}

// TelegramConfig - used by the publish command only
type TelegramConfig struct {
	BotToken      string        `mapstructure:"bot_token"`
	ChatID        string        `mapstructure:"chat_id"`
	RatePerSecond float64       `mapstructure:"rate_per_second"`
	MaxRetries    int           `mapstructure:"max_retries"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

// flagKeys maps command line flag names to config keys.
var flagKeys = map[string]string{
	"dpi":            "render.dpi",
	"font":           "render.font_path",
	"out-dir":        "output.dir",
	"log-level":      "log.level",
	"log-output":     "log.output",
	"chat-id":        "telegram.chat_id",
	"graph-seed":     "graph.seed",
	"no-graph-model": "graph.model_enabled",
}

// LoadConfig from defaults, config file, .env, environment and flags (in increasing priority).
// configFile may be empty, then charts.yaml is looked up in the working directory.
// A missing or unreadable config file is not an error.
func LoadConfig(configFile string, flags *pflag.FlagSet) (*Config, error) {
	godotenv.Load(".env")

	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("charts")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	v.ReadInConfig()

	setupEnvAliases(v)

	if flags != nil {
		if err := bindFlags(v, flags); err != nil {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("render.dpi", 160.0)
	v.SetDefault("render.width_in", 6.0)
	v.SetDefault("render.height_in", 4.0)
	v.SetDefault("render.font_path", "")

	v.SetDefault("graph.model_enabled", true)
	v.SetDefault("graph.seed", 42)
	v.SetDefault("graph.iterations", 50)

	v.SetDefault("output.dir", "")

	v.SetDefault("log.level", "error")
	v.SetDefault("log.output", "")

	v.SetDefault("telegram.bot_token", "")
	v.SetDefault("telegram.chat_id", "")
	v.SetDefault("telegram.rate_per_second", 1.0)
	v.SetDefault("telegram.max_retries", 3)
	v.SetDefault("telegram.timeout", 30*time.Second)
}

func setupEnvAliases(v *viper.Viper) {
	v.BindEnv("render.dpi", "CHARTS_DPI")
	v.BindEnv("render.font_path", "CHARTS_FONT_PATH")
	v.BindEnv("graph.model_enabled", "CHARTS_GRAPH_MODEL")
	v.BindEnv("graph.seed", "CHARTS_GRAPH_SEED")
	v.BindEnv("output.dir", "CHARTS_OUTPUT_DIR")
	v.BindEnv("log.level", "CHARTS_LOG_LEVEL")
	v.BindEnv("log.output", "CHARTS_LOG_OUTPUT")

	v.BindEnv("telegram.bot_token", "TELEGRAM_BOT_TOKEN")
	v.BindEnv("telegram.chat_id", "TELEGRAM_CHAT_ID")
	v.BindEnv("telegram.rate_per_second", "TELEGRAM_RATE_PER_SECOND")
	v.BindEnv("telegram.max_retries", "TELEGRAM_MAX_RETRIES")
	v.BindEnv("telegram.timeout", "TELEGRAM_TIMEOUT")
}

// bindFlags binds only the flags the command actually defines.
// --no-graph-model is inverted, so it is applied by hand when set.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}
		if name == "no-graph-model" {
			if flag.Changed {
				disabled, err := strconv.ParseBool(flag.Value.String())
				if err != nil {
					return fmt.Errorf("invalid --%s: %w", name, err)
				}
				v.Set(key, !disabled)
			}
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind flag --%s: %w", name, err)
		}
	}
	return nil
}

// Validate checks values shared by every command.
func (c *Config) Validate() error {
	if c.Render.DPI <= 0 {
		return fmt.Errorf("render.dpi must be positive, got %v", c.Render.DPI)
	}
	if c.Render.WidthIn <= 0 || c.Render.HeightIn <= 0 {
		return fmt.Errorf("render canvas must be positive, got %vx%v in", c.Render.WidthIn, c.Render.HeightIn)
	}
	if c.Graph.Iterations < 0 {
		return fmt.Errorf("graph.iterations must not be negative, got %d", c.Graph.Iterations)
	}
	return nil
}

// ValidatePublish checks the settings the publish command needs.
func (c *Config) ValidatePublish() error {
	var errs []error
	if strings.TrimSpace(c.Telegram.BotToken) == "" {
		errs = append(errs, errors.New("telegram.bot_token is required (env: TELEGRAM_BOT_TOKEN)"))
	}
	if _, err := c.ChatID(); err != nil {
		errs = append(errs, err)
	}
	if c.Telegram.RatePerSecond <= 0 {
		errs = append(errs, fmt.Errorf("telegram.rate_per_second must be positive, got %v", c.Telegram.RatePerSecond))
	}
	return errors.Join(errs...)
}

// ChatID parses telegram.chat_id; supergroup ids are negative.
func (c *Config) ChatID() (int64, error) {
	raw := strings.TrimSpace(c.Telegram.ChatID)
	if raw == "" {
		return 0, errors.New("telegram.chat_id is required (env: TELEGRAM_CHAT_ID)")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid telegram.chat_id %q: %w", raw, err)
	}
	return id, nil
}
