package config

import (
	"fmt"

	"github.com/rgillard/planlog/internal/db"
	"github.com/spf13/viper"
)

// Config is the full server configuration.
type Config struct {
	HTTPAddr       string
	AllowedOrigins []string
	MigrationsPath string
	Database       db.Config
}

// Default returns the configuration used when no file or env overrides are
// present.
func Default() Config {
	return Config{
		HTTPAddr:       ":4000",
		AllowedOrigins: []string{"http://localhost:5173"},
		MigrationsPath: "./migrations",
		Database:       db.DefaultConfig(),
	}
}

// Load reads config.yaml from configPath, with environment overrides mapped
// through the PLANLOG prefix (e.g. PLANLOG_DATABASE_HOST).
func Load(configPath string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AutomaticEnv()
	v.SetEnvPrefix("PLANLOG")

	v.BindEnv("http.addr")
	v.BindEnv("http.allowed_origins")
	v.BindEnv("migrations.path")
	v.BindEnv("database.host")
	v.BindEnv("database.port")
	v.BindEnv("database.user")
	v.BindEnv("database.password")
	v.BindEnv("database.dbname")
	v.BindEnv("database.sslmode")

	if err := v.ReadInConfig(); err != nil {
		// Config file not found? Just log it, use defaults + env
		fmt.Println("No config.yaml found, using defaults and env vars")
	} else {
		fmt.Println("Loaded config.yaml")
	}

	if v.IsSet("http.addr") {
		cfg.HTTPAddr = v.GetString("http.addr")
	}
	if v.IsSet("http.allowed_origins") {
		cfg.AllowedOrigins = v.GetStringSlice("http.allowed_origins")
	}
	if v.IsSet("migrations.path") {
		cfg.MigrationsPath = v.GetString("migrations.path")
	}
	if v.IsSet("database.host") {
		cfg.Database.Host = v.GetString("database.host")
	}
	if v.IsSet("database.port") {
		cfg.Database.Port = v.GetInt("database.port")
	}
	if v.IsSet("database.user") {
		cfg.Database.User = v.GetString("database.user")
	}
	if v.IsSet("database.password") {
		cfg.Database.Password = v.GetString("database.password")
	}
	if v.IsSet("database.dbname") {
		cfg.Database.DBName = v.GetString("database.dbname")
	}
	if v.IsSet("database.sslmode") {
		cfg.Database.SSLMode = v.GetString("database.sslmode")
	}

	return cfg, nil
}
