package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const (
	DefaultEnvPrefix = "SCRYFALL"

	DefaultAPIBaseURL = "https://api.scryfall.com/"
	DefaultUserAgent  = "scryfall-go/0.1"
	DefaultTimeout    = 30 * time.Second
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "text"
)

var DefaultConfig = Config{
	APIBaseURL: DefaultAPIBaseURL,
	UserAgent:  DefaultUserAgent,
	Timeout:    DefaultTimeout,
	LogLevel:   DefaultLogLevel,
	LogFormat:  DefaultLogFormat,
	DataDir:    defaultDataDir(),
}

type Config struct {
	APIBaseURL string        `json:"api_base_url,omitempty" mapstructure:"api_base_url"`
	UserAgent  string        `json:"user_agent,omitempty"   mapstructure:"user_agent"`
	Timeout    time.Duration `json:"timeout,omitempty"      mapstructure:"timeout"`
	LogLevel   string        `json:"log_level,omitempty"    mapstructure:"log_level"`
	LogFormat  string        `json:"log_format,omitempty"   mapstructure:"log_format"`
	DataDir    string        `json:"data_dir,omitempty"     mapstructure:"data_dir"`
	FixtureDir string        `json:"fixture_dir,omitempty"  mapstructure:"fixture_dir"`
}

// DBPath is the local job store location.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "scryfall.db")
}

// Load reads configuration from SCRYFALL_* environment variables and,
// when file is not empty, from that config file. Environment wins.
func Load(file string) (*Config, error) {
	v := viper.NewWithOptions(
		viper.KeyDelimiter("."),
		viper.EnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_")),
	)

	v.SetEnvPrefix(DefaultEnvPrefix)
	v.AllowEmptyEnv(true)
	v.AutomaticEnv()

	_ = v.BindEnv("api_base_url")
	v.SetDefault("api_base_url", DefaultConfig.APIBaseURL)

	_ = v.BindEnv("user_agent")
	v.SetDefault("user_agent", DefaultConfig.UserAgent)

	_ = v.BindEnv("timeout")
	v.SetDefault("timeout", DefaultConfig.Timeout)

	_ = v.BindEnv("log_level")
	v.SetDefault("log_level", DefaultConfig.LogLevel)

	_ = v.BindEnv("log_format")
	v.SetDefault("log_format", DefaultConfig.LogFormat)

	_ = v.BindEnv("data_dir")
	v.SetDefault("data_dir", DefaultConfig.DataDir)

	// Offline runs resolve bare paths against this directory.
	_ = v.BindEnv("fixture_dir")
	v.SetDefault("fixture_dir", "")

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	decodeHooks := mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
	)

	config := &Config{}
	if err := v.Unmarshal(config, viper.DecodeHook(decodeHooks)); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if !strings.HasSuffix(config.APIBaseURL, "/") {
		config.APIBaseURL += "/"
	}

	return config, nil
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "scryfall")
	}
	return ".scryfall"
}
