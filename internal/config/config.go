package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all configuration for the authority host
type Config struct {
	Server ServerConfig
	Redis  RedisConfig
	Rules  RulesFileConfig
}

// ServerConfig holds the relay server configuration
type ServerConfig struct {
	ListenAddr string
	GMToken    string // shared secret identifying the authoritative participant
}

// RedisConfig holds Redis-specific configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RulesFileConfig points at the rules data file
type RulesFileConfig struct {
	DataPath string // YAML rules tables; empty means built-in defaults
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			ListenAddr: getEnvOrDefault("CHRONICA_LISTEN_ADDR", ":8480"),
			GMToken:    os.Getenv("CHRONICA_GM_TOKEN"),
		},
		Redis: RedisConfig{
			Addr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getEnvAsIntOrDefault("REDIS_DB", 0),
		},
		Rules: RulesFileConfig{
			DataPath: os.Getenv("CHRONICA_RULES_PATH"),
		},
	}

	if cfg.Server.GMToken == "" {
		return nil, fmt.Errorf("CHRONICA_GM_TOKEN is required")
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
