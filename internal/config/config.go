package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Bittrex BittrexConfig `mapstructure:"bittrex"`
	Server  ServerConfig  `mapstructure:"server"`
	Log     LogConfig     `mapstructure:"log"`
}

// BittrexConfig contains exchange API configuration. Credentials are read
// once at process start; leaving them empty disables the market and account
// tiers but keeps public market data available.
type BittrexConfig struct {
	APIKey     string `mapstructure:"api_key"`
	APISecret  string `mapstructure:"api_secret"`
	APIHost    string `mapstructure:"api_host"`
	APIVersion string `mapstructure:"api_version"`
}

// ServerConfig contains HTTP facade configuration
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// LogConfig contains logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Output string `mapstructure:"output"` // console, file, both
}

// HasCredentials reports whether both halves of the key pair are configured.
func (c *BittrexConfig) HasCredentials() bool {
	return c.APIKey != "" && c.APISecret != ""
}

// Load loads configuration from an optional YAML file and environment
// variables. Environment variables win over file values. If configPath is
// empty, default locations (./configs, .) are searched.
func Load(configPath ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	setDefaults(v)

	v.SetEnvPrefix("BITTREX")
	v.AutomaticEnv()
	bindEnvVars(v)

	if len(configPath) > 0 && configPath[0] != "" {
		v.SetConfigFile(configPath[0])
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	// The config file is optional; env vars alone are a valid setup.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("bittrex.api_host", "bittrex.com")
	v.SetDefault("bittrex.api_version", "v1.1")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.output", "console")
}

func bindEnvVars(v *viper.Viper) {
	v.BindEnv("bittrex.api_key", "BITTREX_API_KEY")
	v.BindEnv("bittrex.api_secret", "BITTREX_API_SECRET")
	v.BindEnv("bittrex.api_host", "BITTREX_API_HOST")
	v.BindEnv("bittrex.api_version", "BITTREX_API_VERSION")
	v.BindEnv("server.addr", "BITTREX_SERVER_ADDR")
	v.BindEnv("log.level", "LOG_LEVEL")
	v.BindEnv("log.output", "LOG_OUTPUT")
}

func validate(cfg *Config) error {
	// Credentials are deliberately not required here: public endpoints work
	// without them, and the client rejects private calls itself.
	if cfg.Bittrex.APIHost == "" {
		return fmt.Errorf("bittrex.api_host must not be empty")
	}
	if cfg.Bittrex.APIVersion == "" {
		return fmt.Errorf("bittrex.api_version must not be empty")
	}
	if cfg.Server.Addr == "" {
		return fmt.Errorf("server.addr must not be empty")
	}
	return nil
}
