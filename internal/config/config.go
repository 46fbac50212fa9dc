package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	Timer  TimerConfig  `mapstructure:"timer"`
	Remote RemoteConfig `mapstructure:"remote"`
	Local  LocalConfig  `mapstructure:"local"`
	Log    LogConfig    `mapstructure:"log"`
	Sound  SoundConfig  `mapstructure:"sound"`
}

// TimerConfig controls session lengths and the long-break cycle.
type TimerConfig struct {
	WorkMinutes      int `mapstructure:"work_minutes"`
	BreakMinutes     int `mapstructure:"break_minutes"`
	LongBreakMinutes int `mapstructure:"long_break_minutes"`
	// CycleLength is how many completed work sessions earn a long break.
	CycleLength int `mapstructure:"cycle_length"`
}

// RemoteConfig points at the authoritative Postgres store. An empty DSN
// disables the remote entirely; everything then runs on the local fallback.
type RemoteConfig struct {
	DSN     string        `mapstructure:"dsn"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// LocalConfig locates the durable fallback database.
type LocalConfig struct {
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

type SoundConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Load reads config.yaml from the given path, or from the user config dir
// when path is empty. A missing file yields the defaults.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		dir, err := os.UserConfigDir()
		if err != nil {
			return Config{}, err
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join(dir, "tomato"))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default returns the built-in configuration without touching the filesystem.
func Default() Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("timer.work_minutes", 25)
	v.SetDefault("timer.break_minutes", 5)
	v.SetDefault("timer.long_break_minutes", 15)
	v.SetDefault("timer.cycle_length", 4)
	v.SetDefault("remote.dsn", "")
	v.SetDefault("remote.timeout", 2*time.Second)
	v.SetDefault("local.path", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("sound.enabled", true)
}

func (c Config) validate() error {
	if c.Timer.WorkMinutes <= 0 || c.Timer.BreakMinutes <= 0 || c.Timer.LongBreakMinutes <= 0 {
		return fmt.Errorf("timer durations must be positive")
	}
	if c.Timer.CycleLength <= 0 {
		return fmt.Errorf("timer cycle_length must be positive")
	}
	return nil
}

// DefaultDBPath returns ~/.config/tomato/tomato.db.
func DefaultDBPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "tomato", "tomato.db"), nil
}
