package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultSessionTTL      = 30 * time.Minute
	defaultJanitorInterval = time.Minute
	defaultShutdownTimeout = 10 * time.Second
)

// Load reads configuration from YAML files and environment variables,
// validates it, and returns the resulting Config along with the viper
// instance for live reloads.
func Load() (*Config, *viper.Viper, error) {
	// Missing env files are fine; real environments inject variables
	// directly.
	_ = godotenv.Load(".env.local", ".env")

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	v := viper.New()
	v.SetConfigFile(fmt.Sprintf("./configs/%s.yaml", env))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("http.shutdown_timeout", defaultShutdownTimeout)
	v.SetDefault("flow.session_ttl", defaultSessionTTL)
	v.SetDefault("flow.janitor_interval", defaultJanitorInterval)

	if err := v.ReadInConfig(); err != nil {
		return nil, nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.AppEnv = env

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(cfg); err != nil {
		return nil, nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, v, nil
}

// WatchLogLevel re-reads the config file on change and invokes apply with
// the new logger level. Invalid levels are ignored by the caller.
func WatchLogLevel(v *viper.Viper, apply func(level string)) {
	if v == nil || apply == nil {
		return
	}

	v.OnConfigChange(func(_ fsnotify.Event) {
		if level := v.GetString("logger.level"); level != "" {
			apply(level)
		}
	})
	v.WatchConfig()
}
