package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/pfrederiksen/harvest-reports/internal/logger"
)

const (
	DefaultBaseURL   = "https://wdfw.wa.gov"
	DefaultIndexPath = "/hunting/management/game-harvest"
	DefaultOutputDir = "wdfw_harvest_reports"
	DefaultUserAgent = "harvest-reports/1.0 (github.com/pfrederiksen/harvest-reports)"
	EnvPrefix        = "HARVEST"
)

// Formats accepted for the run summary
var Formats = []string{"text", "json", "markdown"}

// Config holds all settings for a run
type Config struct {
	BaseURL     string        `yaml:"base_url" mapstructure:"base_url"`
	IndexPath   string        `yaml:"index_path" mapstructure:"index_path"`
	OutputDir   string        `yaml:"output_dir" mapstructure:"output_dir"`
	UserAgent   string        `yaml:"user_agent" mapstructure:"user_agent"`
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`
	Concurrency int           `yaml:"concurrency" mapstructure:"concurrency"`
	Format      string        `yaml:"format" mapstructure:"format"`
	Sort        string        `yaml:"sort" mapstructure:"sort"`
	Log         LogConfig     `yaml:"log" mapstructure:"log"`
}

// LogConfig configures logging
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
}

// flagKeys maps command-line flag names to config keys
var flagKeys = map[string]string{
	"base-url":    "base_url",
	"index-path":  "index_path",
	"output-dir":  "output_dir",
	"user-agent":  "user_agent",
	"timeout":     "timeout",
	"concurrency": "concurrency",
	"format":      "format",
	"sort":        "sort",
	"log-level":   "log.level",
}

// Load reads configuration from file, environment and flags.
// configFile may be empty, in which case ./harvest.yaml is used if present.
// flags may be nil.
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// Config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("harvest")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	// Environment
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("base_url", DefaultBaseURL)
	v.SetDefault("index_path", DefaultIndexPath)
	v.SetDefault("output_dir", DefaultOutputDir)
	v.SetDefault("user_agent", DefaultUserAgent)
	v.SetDefault("timeout", 30*time.Second)
	v.SetDefault("concurrency", 1)
	v.SetDefault("format", "text")
	v.SetDefault("sort", "")
	v.SetDefault("log.level", "info")

	// Flags
	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, eris.Wrapf(err, "config: bind flag %s", name)
				}
			}
		}
	}

	// Read config file (optional unless given explicitly)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || configFile != "" {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// IndexURL returns the absolute URL of the harvest index page
func (c *Config) IndexURL() string {
	if strings.HasPrefix(c.IndexPath, "http") {
		return c.IndexPath
	}
	return c.BaseURL + c.IndexPath
}

// Validate checks the configuration for values a run cannot work with
func (c *Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return eris.New("config: base_url is required")
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		return eris.New("config: output_dir is required")
	}
	if c.Concurrency < 1 {
		return eris.Errorf("config: concurrency must be at least 1, got %d", c.Concurrency)
	}
	if c.Timeout <= 0 {
		return eris.Errorf("config: timeout must be positive, got %s", c.Timeout)
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return eris.Wrap(err, "config: log.level")
	}

	format := strings.ToLower(c.Format)
	for _, f := range Formats {
		if format == f {
			return nil
		}
	}
	return eris.Errorf("config: invalid format %q (must be one of %s)", c.Format, strings.Join(Formats, ", "))
}

// YAML renders the effective configuration
func (c *Config) YAML() ([]byte, error) {
	out := struct {
		BaseURL     string    `yaml:"base_url"`
		IndexPath   string    `yaml:"index_path"`
		OutputDir   string    `yaml:"output_dir"`
		UserAgent   string    `yaml:"user_agent"`
		Timeout     string    `yaml:"timeout"`
		Concurrency int       `yaml:"concurrency"`
		Format      string    `yaml:"format"`
		Sort        string    `yaml:"sort,omitempty"`
		Log         LogConfig `yaml:"log"`
	}{
		BaseURL:     c.BaseURL,
		IndexPath:   c.IndexPath,
		OutputDir:   c.OutputDir,
		UserAgent:   c.UserAgent,
		Timeout:     c.Timeout.String(),
		Concurrency: c.Concurrency,
		Format:      c.Format,
		Sort:        c.Sort,
		Log:         c.Log,
	}

	data, err := yaml.Marshal(out)
	if err != nil {
		return nil, eris.Wrap(err, "config: encode yaml")
	}
	return data, nil
}
