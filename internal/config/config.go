package config

import (
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	XRPL      XRPLConfig
	Scheduler SchedulerConfig
	LogLevel  string
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port         string
	AllowedHosts []string
}

// MongoDBConfig holds MongoDB-specific configuration
type MongoDBConfig struct {
	URI      string
	Database string
}

// XRPLConfig holds XRP Ledger JSON-RPC configuration
type XRPLConfig struct {
	RPCURL string
}

// SchedulerConfig holds draw scheduler configuration
type SchedulerConfig struct {
	// Spec is a cron expression (with seconds field) controlling how often
	// due draws are opened and closed.
	Spec    string
	Enabled bool
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// It's okay if config file is not found, we'll use environment variables
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// setDefaults sets default values for configuration
func setDefaults() {
	viper.SetDefault("Server.Port", "4000")
	viper.SetDefault("Server.AllowedHosts", []string{"localhost:3000"})
	viper.SetDefault("MongoDB.URI", "mongodb://localhost:27017")
	viper.SetDefault("MongoDB.Database", "xrpl-lottery")
	viper.SetDefault("XRPL.RPCURL", "https://s1.ripple.com:51234/")
	viper.SetDefault("Scheduler.Spec", "*/15 * * * * *")
	viper.SetDefault("Scheduler.Enabled", true)
	viper.SetDefault("LogLevel", "info")
}
