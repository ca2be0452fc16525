package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	Port          string
	DBDriver      string
	DBDSN         string
	LogFile       string
	TemplatesDir  string
	JWTSecret     string
	TokenTTL      time.Duration
	DRPrefix      string
	LowStock      int
	AdminEmail    string
	AdminPassword string
}

const devSecret = "stockbook-dev-secret-change-me"

// Load reads an optional .env file and then the process environment.
func Load() Config {
	_ = godotenv.Load()

	driver := strings.ToLower(getEnv("DB_DRIVER", "sqlite"))
	defaultDSN := "stockbook.db" // sqlite file in project root
	if driver == "pgx" || driver == "postgres" {
		driver = "pgx"
		defaultDSN = "postgres://localhost:5432/stockbook?sslmode=disable"
	}

	cfg := Config{
		Port:          getEnv("PORT", "8080"),
		DBDriver:      driver,
		DBDSN:         getEnv("DB_DSN", defaultDSN),
		LogFile:       getEnv("LOG_FILE", "./stockbook.log"),
		TemplatesDir:  getEnv("TEMPLATES_DIR", "./web/templates"),
		JWTSecret:     getEnv("JWT_SECRET", devSecret),
		TokenTTL:      getDuration("TOKEN_TTL", 12*time.Hour),
		DRPrefix:      getEnv("DR_PREFIX", "DR-ZK"),
		LowStock:      getInt("LOW_STOCK_THRESHOLD", 5),
		AdminEmail:    getEnv("ADMIN_EMAIL", "admin@stockbook.local"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "Admin#2024"),
	}
	if cfg.JWTSecret == devSecret {
		logrus.Warn("[config] JWT_SECRET not set, using development secret")
	}
	logrus.Infof("[config] PORT=%s DB_DRIVER=%s LOG_FILE=%s DR_PREFIX=%s LOW_STOCK_THRESHOLD=%d",
		cfg.Port, cfg.DBDriver, cfg.LogFile, cfg.DRPrefix, cfg.LowStock)
	return cfg
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil || n < 0 {
		return def
	}
	return n
}

func getDuration(key string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil || d <= 0 {
		return def
	}
	return d
}
