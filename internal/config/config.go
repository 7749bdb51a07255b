package config

import (
	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Database
		Global
		Logging
		Integrity
		Pagination
	}

	HTTP struct {
		Port int32
		Host string
	}
	Database struct {
		Path string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Logging struct {
		Mode string // "dev" or "prod"
	}
	Integrity struct {
		Enabled  bool
		Schedule string // Cron format: "0 * * * *" = hourly
		Repair   bool   // Fix one-sided references instead of only reporting them
	}
	Pagination struct {
		DefaultPageSize int
		MaxPageSize     int
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8190)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("log_mode", "dev")

	// Integrity audit defaults
	v.SetDefault("integrity_check_enabled", true)
	v.SetDefault("integrity_check_schedule", "0 * * * *") // Hourly at :00
	v.SetDefault("integrity_check_repair", false)

	// Pagination defaults
	v.SetDefault("default_page_size", 20)
	v.SetDefault("max_page_size", 100)

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Logging: Logging{
			Mode: v.GetString("LOG_MODE"),
		},
		Integrity: Integrity{
			Enabled:  v.GetBool("INTEGRITY_CHECK_ENABLED"),
			Schedule: v.GetString("INTEGRITY_CHECK_SCHEDULE"),
			Repair:   v.GetBool("INTEGRITY_CHECK_REPAIR"),
		},
		Pagination: Pagination{
			DefaultPageSize: v.GetInt("DEFAULT_PAGE_SIZE"),
			MaxPageSize:     v.GetInt("MAX_PAGE_SIZE"),
		},
	}
}
