package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	DatasetPath string `mapstructure:"dataset_path" yaml:"dataset_path"`
	ListenAddr  string `mapstructure:"listen_addr" yaml:"listen_addr"`

	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`

	// Pipeline memo cache; negative disables it.
	CacheSize int `mapstructure:"cache_size" yaml:"cache_size"`

	// Source parsing
	Delimiter          string `mapstructure:"delimiter" yaml:"delimiter"`
	DecimalSeparator   string `mapstructure:"decimal_separator" yaml:"decimal_separator"`
	ThousandsSeparator string `mapstructure:"thousands_separator" yaml:"thousands_separator"`
	MaxRows            int    `mapstructure:"max_rows" yaml:"max_rows"`
	Sheet              string `mapstructure:"sheet" yaml:"sheet"`

	// Dashboard
	ChartTheme string `mapstructure:"chart_theme" yaml:"chart_theme"`
}

// Keys lists every settable configuration key in display order.
var Keys = []string{
	"dataset_path", "listen_addr", "log_level", "log_format", "cache_size",
	"delimiter", "decimal_separator", "thousands_separator", "max_rows", "sheet", "chart_theme",
}

// Dir returns ~/.salesdash.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".salesdash"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.salesdash/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("SALESDASH")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("dataset_path", "")
	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("cache_size", 64)
	v.SetDefault("delimiter", "")
	v.SetDefault("decimal_separator", ".")
	v.SetDefault("thousands_separator", "")
	v.SetDefault("max_rows", 0)
	v.SetDefault("sheet", "")
	v.SetDefault("chart_theme", "light")

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
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

// Validate rejects values no component can use.
func (c *Global) Validate() error {
	for name, sep := range map[string]string{
		"delimiter":           c.Delimiter,
		"decimal_separator":   c.DecimalSeparator,
		"thousands_separator": c.ThousandsSeparator,
	} {
		if len([]rune(sep)) > 1 {
			return fmt.Errorf("%s must be a single character, got %q", name, sep)
		}
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		return fmt.Errorf("log_format must be text or json, got %q", c.LogFormat)
	}
	switch strings.ToLower(c.ChartTheme) {
	case "", "light", "dark":
	default:
		return fmt.Errorf("chart_theme must be light or dark, got %q", c.ChartTheme)
	}
	if c.MaxRows < 0 {
		return fmt.Errorf("max_rows must be >= 0, got %d", c.MaxRows)
	}
	return nil
}

// Set assigns one key from its string form, as used by `config set`.
func (c *Global) Set(key, value string) error {
	switch strings.ToLower(key) {
	case "dataset_path":
		c.DatasetPath = value
	case "listen_addr":
		c.ListenAddr = value
	case "log_level":
		c.LogLevel = value
	case "log_format":
		c.LogFormat = value
	case "cache_size":
		n, err := atoi(key, value)
		if err != nil {
			return err
		}
		c.CacheSize = n
	case "delimiter":
		c.Delimiter = value
	case "decimal_separator":
		c.DecimalSeparator = value
	case "thousands_separator":
		c.ThousandsSeparator = value
	case "max_rows":
		n, err := atoi(key, value)
		if err != nil {
			return err
		}
		c.MaxRows = n
	case "sheet":
		c.Sheet = value
	case "chart_theme":
		c.ChartTheme = value
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return c.Validate()
}

// Get returns the string form of one key.
func (c *Global) Get(key string) (string, error) {
	switch strings.ToLower(key) {
	case "dataset_path":
		return c.DatasetPath, nil
	case "listen_addr":
		return c.ListenAddr, nil
	case "log_level":
		return c.LogLevel, nil
	case "log_format":
		return c.LogFormat, nil
	case "cache_size":
		return fmt.Sprint(c.CacheSize), nil
	case "delimiter":
		return c.Delimiter, nil
	case "decimal_separator":
		return c.DecimalSeparator, nil
	case "thousands_separator":
		return c.ThousandsSeparator, nil
	case "max_rows":
		return fmt.Sprint(c.MaxRows), nil
	case "sheet":
		return c.Sheet, nil
	case "chart_theme":
		return c.ChartTheme, nil
	}
	return "", fmt.Errorf("unknown config key: %s", key)
}

func atoi(key, value string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

// Rune returns the first rune of s, or 0 when s is empty.
func Rune(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}
