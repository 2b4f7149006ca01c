// Package config loads the client and server configuration from a YAML file, a .env file and
// PRESENTER_ prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "PRESENTER"

type (
	Config struct {
		Logging   LoggingConfig   `mapstructure:"logging"`
		Client    ClientConfig    `mapstructure:"client"`
		Animation AnimationConfig `mapstructure:"animation"`
		Playback  PlaybackConfig  `mapstructure:"playback"`
		Server    ServerConfig    `mapstructure:"server"`
	}

	LoggingConfig struct {
		// debug, info, warn, error
		Level string `mapstructure:"level"`
		// json or console
		Format string `mapstructure:"format"`
	}

	ClientConfig struct {
		ServerURL string `mapstructure:"server_url"`
		TickRate  int    `mapstructure:"tick_rate"`
		Autopass  bool   `mapstructure:"autopass"`
		Tutorial  bool   `mapstructure:"tutorial"`
		RecordDir string `mapstructure:"record_dir"`
	}

	AnimationConfig struct {
		Duration    time.Duration `mapstructure:"duration"`
		StaggerUnit time.Duration `mapstructure:"stagger_unit"`
	}

	PlaybackConfig struct {
		StallTimeout    time.Duration `mapstructure:"stall_timeout"`
		StallPolicy     string        `mapstructure:"stall_policy"`
		DuplicatePolicy string        `mapstructure:"duplicate_policy"`
	}

	ServerConfig struct {
		Address       string        `mapstructure:"address"`
		Recording     string        `mapstructure:"recording"`
		ShuffleWindow int           `mapstructure:"shuffle_window"`
		Redeliver     bool          `mapstructure:"redeliver"`
		SendPeriod    time.Duration `mapstructure:"send_period"`
	}
)

// Load reads the config file (optional if path is empty) on top of the defaults.
// A .env file in the working directory is loaded into the environment first, if present.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file (%s): %w", path, err)
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config (%s): %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the values viper can't.
func (c *Config) Validate() error {
	if c.Client.TickRate <= 0 {
		return fmt.Errorf("%s: must be GT 0", "client.tick_rate")
	}
	if c.Animation.Duration <= 0 {
		return fmt.Errorf("%s: must be GT 0", "animation.duration")
	}
	if c.Animation.StaggerUnit < 0 {
		return fmt.Errorf("%s: must be GTE 0", "animation.stagger_unit")
	}
	if c.Playback.StallTimeout < 0 {
		return fmt.Errorf("%s: must be GTE 0", "playback.stall_timeout")
	}
	if c.Server.ShuffleWindow < 0 {
		return fmt.Errorf("%s: must be GTE 0", "server.shuffle_window")
	}
	if c.Server.SendPeriod < 0 {
		return fmt.Errorf("%s: must be GTE 0", "server.send_period")
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("client.server_url", "ws://127.0.0.1:2412/match")
	v.SetDefault("client.tick_rate", 60)
	v.SetDefault("client.autopass", true)
	v.SetDefault("client.tutorial", false)
	v.SetDefault("client.record_dir", "")

	v.SetDefault("animation.duration", 400*time.Millisecond)
	v.SetDefault("animation.stagger_unit", 150*time.Millisecond)

	v.SetDefault("playback.stall_timeout", 0)
	v.SetDefault("playback.stall_policy", "block")
	v.SetDefault("playback.duplicate_policy", "first")

	v.SetDefault("server.address", ":2412")
	v.SetDefault("server.recording", "")
	v.SetDefault("server.shuffle_window", 0)
	v.SetDefault("server.redeliver", false)
	v.SetDefault("server.send_period", 300*time.Millisecond)
}
