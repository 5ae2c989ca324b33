// Package config handles configuration through viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

type Config struct {
	// X display to connect to; empty means $DISPLAY
	Display string `mapstructure:"display"`

	// Default pointer button for click
	Button uint8 `mapstructure:"button"`

	// Pause between typed characters, milliseconds
	TypeInterval int `mapstructure:"type_interval"`

	Serve ServeConfig `mapstructure:"serve"`
}

// ServeConfig covers the websocket bridge.
type ServeConfig struct {
	Listen string `mapstructure:"listen"`
}

var (
	DefaultConfig = Config{
		Display:      "",
		Button:       1,
		TypeInterval: 12,
		Serve: ServeConfig{
			Listen: "127.0.0.1:8977",
		},
	}

	cfg *Config

	configPathOverride string
)

// SetConfigPath overrides the config file location.
func SetConfigPath(path string) {
	configPathOverride = path
}

// Init reads the configuration: defaults, then the config file if one
// exists, then XSYNTH_* environment variables.
func Init() error {
	viper.SetConfigName("xsynth")
	viper.SetConfigType("toml")

	if configPathOverride != "" {
		viper.SetConfigFile(configPathOverride)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "xsynth"))
		}
		viper.AddConfigPath(".")
	}

	viper.SetEnvPrefix("XSYNTH")
	viper.AutomaticEnv()

	viper.SetDefault("display", DefaultConfig.Display)
	viper.SetDefault("button", DefaultConfig.Button)
	viper.SetDefault("type_interval", DefaultConfig.TypeInterval)
	viper.SetDefault("serve.listen", DefaultConfig.Serve.Listen)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// no config file, defaults apply
	}

	cfg = &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}
	return nil
}

// Get returns the current configuration, defaults when Init has not
// run.
func Get() *Config {
	if cfg == nil {
		return &DefaultConfig
	}
	return cfg
}

// Set replaces the current configuration (tests).
func Set(c *Config) {
	cfg = c
}
