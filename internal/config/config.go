package config

import "os"

type Config struct {
	DatabaseURL string
	JWTSecret   string
	Port        string
	RedisHost   string
	RedisPort   string
	LogFile     string
}

func Load() *Config {
	return &Config{
		DatabaseURL: getEnv("DATABASE_URL", "goals.db"),
		JWTSecret:   getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		Port:        getEnv("PORT", "8080"),
		RedisHost:   getEnv("REDIS_HOST", ""),
		RedisPort:   getEnv("REDIS_PORT", "6379"),
		LogFile:     getEnv("LOG_FILE", "./logs/app.log"),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
