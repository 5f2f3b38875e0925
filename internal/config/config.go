package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/bikedash/internal/utils"
)

// Global configuration structure.
type Global struct {
	// HTTP dashboard
	ListenAddr         string  `mapstructure:"listen_addr" yaml:"listen_addr" validate:"required,hostname_port"`
	ReadTimeoutSec     int     `mapstructure:"read_timeout_sec" yaml:"read_timeout_sec" validate:"min=1"`
	WriteTimeoutSec    int     `mapstructure:"write_timeout_sec" yaml:"write_timeout_sec" validate:"min=1"`
	ShutdownTimeoutSec int     `mapstructure:"shutdown_timeout_sec" yaml:"shutdown_timeout_sec" validate:"min=1"`
	RateLimitRPS       float64 `mapstructure:"rate_limit_rps" yaml:"rate_limit_rps" validate:"gte=0"` // 0 disables
	RateLimitBurst     int     `mapstructure:"rate_limit_burst" yaml:"rate_limit_burst" validate:"min=1"`

	// Logging
	LogLevel  string `mapstructure:"log_level" yaml:"log_level" validate:"oneof=debug info warn error"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format" validate:"oneof=console json"`

	// Pages
	HeadRows      int     `mapstructure:"head_rows" yaml:"head_rows" validate:"min=1,max=1000"`
	ChartWidthIn  float64 `mapstructure:"chart_width_in" yaml:"chart_width_in" validate:"gt=0,lte=40"`
	ChartHeightIn float64 `mapstructure:"chart_height_in" yaml:"chart_height_in" validate:"gt=0,lte=40"`
}

var defaults = map[string]any{
	"listen_addr":          "127.0.0.1:8080",
	"read_timeout_sec":     15,
	"write_timeout_sec":    30,
	"shutdown_timeout_sec": 10,
	"rate_limit_rps":       20.0,
	"rate_limit_burst":     40,
	"log_level":            "info",
	"log_format":           "console",
	"head_rows":            5,
	"chart_width_in":       8.0,
	"chart_height_in":      5.0,
}

// Keys lists every configuration key in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(defaults))
	for k := range defaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Default returns the built-in configuration.
func Default() *Global {
	return &Global{
		ListenAddr:         defaults["listen_addr"].(string),
		ReadTimeoutSec:     defaults["read_timeout_sec"].(int),
		WriteTimeoutSec:    defaults["write_timeout_sec"].(int),
		ShutdownTimeoutSec: defaults["shutdown_timeout_sec"].(int),
		RateLimitRPS:       defaults["rate_limit_rps"].(float64),
		RateLimitBurst:     defaults["rate_limit_burst"].(int),
		LogLevel:           defaults["log_level"].(string),
		LogFormat:          defaults["log_format"].(string),
		HeadRows:           defaults["head_rows"].(int),
		ChartWidthIn:       defaults["chart_width_in"].(float64),
		ChartHeightIn:      defaults["chart_height_in"].(float64),
	}
}

var validate = validator.New()

// Validate checks field ranges and enumerations.
func (c *Global) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid config: %s fails %q (value %v)", fe.Field(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Set assigns key from its string form, rejecting unknown keys and
// unparsable values. The result is not validated.
func (c *Global) Set(key, val string) error {
	setInt := func(dst *int) error {
		i, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid int for %s: %v", key, val)
		}
		*dst = i
		return nil
	}
	setFloat := func(dst *float64) error {
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return fmt.Errorf("invalid float for %s: %v", key, val)
		}
		*dst = f
		return nil
	}
	switch key {
	case "listen_addr":
		c.ListenAddr = val
	case "log_level":
		c.LogLevel = val
	case "log_format":
		c.LogFormat = val
	case "read_timeout_sec":
		return setInt(&c.ReadTimeoutSec)
	case "write_timeout_sec":
		return setInt(&c.WriteTimeoutSec)
	case "shutdown_timeout_sec":
		return setInt(&c.ShutdownTimeoutSec)
	case "rate_limit_burst":
		return setInt(&c.RateLimitBurst)
	case "head_rows":
		return setInt(&c.HeadRows)
	case "rate_limit_rps":
		return setFloat(&c.RateLimitRPS)
	case "chart_width_in":
		return setFloat(&c.ChartWidthIn)
	case "chart_height_in":
		return setFloat(&c.ChartHeightIn)
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}

func defaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".bikedash", "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.bikedash/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		p, err := defaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env (BIKEDASH_*, including a .env in the working directory) >
// config file > defaults. An explicit cfgFile must exist.
func Load(cfgFile string) (*Global, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	}

	v := viper.New()
	v.SetEnvPrefix("BIKEDASH")
	v.AutomaticEnv()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		v.AddConfigPath(filepath.Join(home, ".bikedash"))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// optional read
		if err := v.ReadInConfig(); err != nil {
			var nf viper.ConfigFileNotFoundError
			if !errors.As(err, &nf) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}
