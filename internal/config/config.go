// Package config loads CLI settings from defaults, an optional YAML file,
// a .env file and SCHOOLSCHEMA_* environment variables, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment key, e.g. SCHOOLSCHEMA_DB_URL
const EnvPrefix = "SCHOOLSCHEMA"

type Config struct {
	Database DatabaseConfig `mapstructure:"db"`
	Log      LogConfig      `mapstructure:"log"`
	KPI      KPIConfig      `mapstructure:"kpi"`
}

type DatabaseConfig struct {
	URL string `mapstructure:"url"`
	// Schema is the PostgreSQL schema or MySQL database to inspect. Empty
	// selects public on PostgreSQL and the URL's database on MySQL.
	Schema string `mapstructure:"schema"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type KPIConfig struct {
	Window time.Duration `mapstructure:"window"`
}

var schemes = []string{"postgres://", "postgresql://", "mysql://", "sqlite://"}

// Load reads the configuration. path may be empty, in which case
// schoolschema.yaml is looked up in the working directory and ignored when
// absent.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	v := viper.New()

	v.SetDefault("db.url", "")
	v.SetDefault("db.schema", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("kpi.window", "720h")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("schoolschema")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the settings every command needs
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return errors.New("invalid config: db.url is required (set --db-url or SCHOOLSCHEMA_DB_URL)")
	}
	if !hasScheme(c.Database.URL) {
		return fmt.Errorf("invalid config: db.url must start with one of %s", strings.Join(schemes, ", "))
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("invalid config: log.format must be json or console, got %q", c.Log.Format)
	}
	if c.KPI.Window <= 0 {
		return fmt.Errorf("invalid config: kpi.window must be positive, got %s", c.KPI.Window)
	}
	return nil
}

func hasScheme(url string) bool {
	for _, s := range schemes {
		if strings.HasPrefix(url, s) {
			return true
		}
	}
	return false
}
