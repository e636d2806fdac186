package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"raidcourt/models"

	"github.com/joho/godotenv"
)

// Load reads .env files (missing ones are fine) and then the environment.
func Load(files ...string) (models.Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return models.Config{}, fmt.Errorf("load env file: %w", err)
	}
	return FromEnv()
}

// FromEnv builds the configuration from environment variables with defaults.
func FromEnv() (models.Config, error) {
	cfg := models.Config{
		Port:            getEnv("PORT", "8080"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		CORSOrigin:      getEnv("CORS_ORIGIN", "*"),
		JanitorSchedule: getEnv("JANITOR_SCHEDULE", "@every 1m"),
		PurgeSchedule:   getEnv("PURGE_SCHEDULE", "0 3 * * *"),

		DBHost:     os.Getenv("DB_HOST"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
	}

	var err error
	if cfg.MaxRooms, err = intEnv("MAX_ROOMS", 50); err != nil {
		return cfg, err
	}
	if cfg.RecentResults, err = intEnv("RECENT_RESULTS", 50); err != nil {
		return cfg, err
	}
	if cfg.RedisDB, err = intEnv("REDIS_DB", 0); err != nil {
		return cfg, err
	}
	if cfg.RoomIdleTTL, err = durationEnv("ROOM_IDLE_TTL", 10*time.Minute); err != nil {
		return cfg, err
	}
	if cfg.ResultRetention, err = durationEnv("RESULT_RETENTION", 720*time.Hour); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
