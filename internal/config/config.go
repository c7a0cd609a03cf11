package config

import (
	"os"
	"strconv"

	"cooptrick/internal/logger"

	"github.com/joho/godotenv"
)

// Store backends.
const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
	StoreNATS     = "nats"
)

type Config struct {
	AppPort   string
	LogLevel  string
	LogJSON   bool
	JWTSecret string

	// Document store
	StoreBackend  string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	DatabaseURL   string
	NATSURL       string

	// Game
	MissionCount int
}

// Load reads the config from env (a .env file is honored when present).
func Load() *Config {
	_ = godotenv.Load()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	backend := os.Getenv("STORE_BACKEND")
	if backend == "" {
		backend = StoreMemory
	}
	switch backend {
	case StoreMemory, StoreRedis, StorePostgres, StoreNATS:
	default:
		logger.Fatal("unknown STORE_BACKEND", "backend", backend)
	}

	dbURL := os.Getenv("DATABASE_URL")
	if backend == StorePostgres && dbURL == "" {
		logger.Fatal("DATABASE_URL is not set")
	}

	redisDB := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			redisDB = n
		}
	}

	missionCount := 3
	if v := os.Getenv("MISSION_COUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			missionCount = n
		}
	}

	return &Config{
		AppPort:       port,
		LogLevel:      os.Getenv("LOG_LEVEL"),
		LogJSON:       os.Getenv("LOG_JSON") == "true",
		JWTSecret:     jwtSecret,
		StoreBackend:  backend,
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,
		DatabaseURL:   dbURL,
		NATSURL:       os.Getenv("NATS_URL"),
		MissionCount:  missionCount,
	}
}
