package config

import (
	"os"
	"strconv"
)

// Config is the top-level runtime configuration, sourced from env vars
type Config struct {
	HTTPAddr  string
	MongoURI  string
	MongoDB   string
	RedisAddr string
	RedisDB   int
	AI        *AIConfig
}

// Load reads configuration from the environment with sane defaults.
func Load() *Config {
	return &Config{
		HTTPAddr:  getEnvOrDefault("HTTP_ADDR", ":8080"),
		MongoURI:  getEnvOrDefault("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:   getEnvOrDefault("MONGO_DB", "interview"),
		RedisAddr: getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisDB:   getEnvIntOrDefault("REDIS_DB", 0),
		AI:        DefaultAIConfig(),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}
