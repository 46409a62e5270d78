package utils

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

type Config struct {
	port string

	databasePath string
	storeBackend string

	jwtSecret    string
	enforceOwner bool

	metricCollectionInterval time.Duration
	shutdownTimeout          time.Duration
}

const (
	STORE_BACKEND_SQLITE = "sqlite"
	STORE_BACKEND_MEMORY = "memory"
)

func NewConfig() *Config {
	return &Config{
		port: func() string {
			port := os.Getenv("PORT")
			if port == "" {
				port = "8080"
			}
			slog.Debug("env", "PORT", port)
			return port
		}(),

		databasePath: func() string {
			databasePath := os.Getenv("DATABASE_PATH")
			if databasePath == "" {
				databasePath = "./evtd.db"
			}
			slog.Debug("env", "DATABASE_PATH", databasePath)
			return databasePath
		}(),
		storeBackend: func() string {
			storeBackend := os.Getenv("STORE_BACKEND")
			switch storeBackend {
			case "":
				storeBackend = STORE_BACKEND_SQLITE
			case STORE_BACKEND_SQLITE, STORE_BACKEND_MEMORY:
			default:
				slog.Error("invalid STORE_BACKEND, must be sqlite or memory", "STORE_BACKEND", storeBackend)
				os.Exit(1)
			}
			slog.Debug("env", "STORE_BACKEND", storeBackend)
			return storeBackend
		}(),

		jwtSecret: func() string {
			secret := os.Getenv("JWT_SECRET")
			if secret == "" {
				slog.Warn("JWT_SECRET is not set")
				secret = "secret"
			}
			return secret
		}(),
		enforceOwner: func() bool {
			enforceOwner := os.Getenv("ENFORCE_OWNER")
			if enforceOwner == "" {
				return false
			}
			enabled, err := strconv.ParseBool(enforceOwner)
			if err != nil {
				slog.Error("invalid ENFORCE_OWNER", "error", err)
				os.Exit(1)
			}
			slog.Debug("env", "ENFORCE_OWNER", enabled)
			return enabled
		}(),

		metricCollectionInterval: parseDurationEnv("METRIC_COLLECTION_INTERVAL", "15s"),
		shutdownTimeout:          parseDurationEnv("SHUTDOWN_TIMEOUT", "10s"),
	}
}

func parseDurationEnv(key string, fallback string) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		value = fallback
	}
	duration, err := time.ParseDuration(value)
	if err != nil || duration <= 0 {
		slog.Error("invalid duration", "key", key, "value", value, "error", err)
		os.Exit(1)
	}
	slog.Debug("env", key, value, "duration", duration)
	return duration
}

// Get PORT env, default to 8080
func (c *Config) GetPort() string {
	return c.port
}

// Get DATABASE_PATH env, default to ./evtd.db
func (c *Config) GetDatabasePath() string {
	return c.databasePath
}

// Get STORE_BACKEND env, default to sqlite
func (c *Config) GetStoreBackend() string {
	return c.storeBackend
}

// Get JWT_SECRET env
func (c *Config) GetJWTSecret() string {
	return c.jwtSecret
}

// Get ENFORCE_OWNER env
func (c *Config) GetEnforceOwner() bool {
	return c.enforceOwner
}

// Get METRIC_COLLECTION_INTERVAL env, default to 15s
func (c *Config) GetMetricCollectionInterval() time.Duration {
	return c.metricCollectionInterval
}

// Get SHUTDOWN_TIMEOUT env, default to 10s
func (c *Config) GetShutdownTimeout() time.Duration {
	return c.shutdownTimeout
}
