package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// AppConfig holds the complete application configuration.
type AppConfig struct {
	DataPath            string
	LogDir              string
	ScheduleDir         string
	Workers             int
	Seed                int64 // 0 = time-based seed
	EnableMermaidCharts bool
}

// Load loads the configuration from .env files and environment variables.
func Load() (*AppConfig, error) {
	// 1. Try to load from the executable's directory (highest priority for MCP servers)
	exePath, err := os.Executable()
	exeDir := ""
	if err == nil {
		exeDir = filepath.Dir(exePath)
		envPath := filepath.Join(exeDir, ".env")
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("Loaded configuration from binary directory")
		}
	}

	// 2. Fallback to current working directory (useful for development/go run)
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found in working directory, relying on environment variables or binary-relative .env")
	}

	// 3. Resolve data paths
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		if exeDir != "" {
			dataPath = exeDir
		} else {
			dataPath = "."
		}
	}

	logDir := filepath.Join(dataPath, "logs")
	scheduleDir := getEnv("SCHEDULE_DIR", filepath.Join(dataPath, "schedules"))

	if err := os.MkdirAll(logDir, 0755); err != nil {
		log.Warn().Err(err).Str("path", logDir).Msg("Failed to create log directory")
	}
	if err := os.MkdirAll(scheduleDir, 0755); err != nil {
		log.Warn().Err(err).Str("path", scheduleDir).Msg("Failed to create schedule directory")
	}

	workers, _ := strconv.Atoi(getEnv("SIM_WORKERS", "0"))
	seed, _ := strconv.ParseInt(getEnv("SIM_SEED", "0"), 10, 64)

	cfg := &AppConfig{
		DataPath:            dataPath,
		LogDir:              logDir,
		ScheduleDir:         scheduleDir,
		Workers:             workers,
		Seed:                seed,
		EnableMermaidCharts: getEnvBool("ENABLE_MERMAID_CHARTS", false),
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}
