package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/rpattn/productfilter/internal/db"
)

// Catalog sources.
const (
	SourceFile        = "file"
	SourceSpreadsheet = "spreadsheet"
	SourcePostgres    = "postgres"
)

// Config is the server configuration.
type Config struct {
	Server   ServerConfig
	Catalog  CatalogConfig
	Filter   FilterConfig
	Log      LogConfig
	Database db.Config
}

type ServerConfig struct {
	Addr            string
	AllowedOrigins  []string
	ShutdownTimeout time.Duration
}

type CatalogConfig struct {
	// Source is one of file, spreadsheet or postgres.
	Source string
	// Path is the catalog file for the file and spreadsheet sources.
	Path string
	// Enumerated lists spreadsheet columns to load as enumerated properties.
	Enumerated []string
	// SeedPath optionally replaces the postgres catalog at startup.
	SeedPath string
}

type FilterConfig struct {
	StrictOperators bool
}

type LogConfig struct {
	Level string
}

// Load reads config.yaml from configPath. Environment variables prefixed with
// APP_ override file values, e.g. APP_SERVER_ADDR or APP_DATABASE_HOST.
func Load(configPath string) (Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("catalog.source", SourceFile)
	v.SetDefault("catalog.path", "configs/catalog.json")
	v.SetDefault("filter.strict_operators", false)
	v.SetDefault("log.level", "info")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
		logrus.WithField("path", configPath).Info("no config.yaml found, using defaults and env vars")
	} else {
		logrus.WithField("file", v.ConfigFileUsed()).Info("loaded config")
	}

	cfg := Config{
		Server: ServerConfig{
			Addr:            v.GetString("server.addr"),
			AllowedOrigins:  v.GetStringSlice("server.allowed_origins"),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
		},
		Catalog: CatalogConfig{
			Source:     strings.ToLower(v.GetString("catalog.source")),
			Path:       v.GetString("catalog.path"),
			Enumerated: v.GetStringSlice("catalog.enumerated"),
			SeedPath:   v.GetString("catalog.seed_path"),
		},
		Filter: FilterConfig{
			StrictOperators: v.GetBool("filter.strict_operators"),
		},
		Log: LogConfig{
			Level: v.GetString("log.level"),
		},
		Database: loadDBConfig(v),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadDBConfig(v *viper.Viper) db.Config {
	// Start with default
	cfg := db.DefaultConfig()

	// Override defaults if values exist
	if v.IsSet("database.host") {
		cfg.Host = v.GetString("database.host")
	}
	if v.IsSet("database.port") {
		cfg.Port = v.GetInt("database.port")
	}
	if v.IsSet("database.user") {
		cfg.User = v.GetString("database.user")
	}
	if v.IsSet("database.password") {
		cfg.Password = v.GetString("database.password")
	}
	if v.IsSet("database.dbname") {
		cfg.DBName = v.GetString("database.dbname")
	}
	if v.IsSet("database.sslmode") {
		cfg.SSLMode = v.GetString("database.sslmode")
	}
	if v.IsSet("database.max_conns") {
		cfg.MaxConns = v.GetInt32("database.max_conns")
	}

	return cfg
}

// Validate checks that the catalog source is usable.
func (c Config) Validate() error {
	switch c.Catalog.Source {
	case SourceFile, SourceSpreadsheet:
		if strings.TrimSpace(c.Catalog.Path) == "" {
			return fmt.Errorf("catalog.path is required for the %s source", c.Catalog.Source)
		}
	case SourcePostgres:
	default:
		return fmt.Errorf("unknown catalog source %q", c.Catalog.Source)
	}
	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}
	return nil
}
