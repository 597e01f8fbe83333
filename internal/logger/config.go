package logger

import (
	"io"
	"os"
	"strconv"
)

// EnvConfig is the logger configuration read from the environment by the API server.
type EnvConfig struct {
	Level       string
	Format      string
	Output      io.Writer // overrides stdout/file selection when set
	ServiceName string
	Environment string // APP_ENV: local writes to stdout only

	LogFile     string
	LogFileOnly bool

	// Rotation, passed to lumberjack.
	MaxSize    int // MB
	MaxBackups int
	MaxAge     int // days
	Compress   bool
}

// LoadFromEnv reads LOG_*, SERVICE_NAME and APP_ENV.
func LoadFromEnv() *EnvConfig {
	return &EnvConfig{
		Level:       envString("LOG_LEVEL", "info"),
		Format:      envString("LOG_FORMAT", "json"),
		ServiceName: envString("SERVICE_NAME", "memeverse"),
		Environment: envString("APP_ENV", "local"),
		LogFile:     envString("LOG_FILE", "/var/log/memeverse/app.log"),
		LogFileOnly: envBool("LOG_FILE_ONLY", false),
		MaxSize:     envInt("LOG_MAX_SIZE", 100),
		MaxBackups:  envInt("LOG_MAX_BACKUPS", 7),
		MaxAge:      envInt("LOG_MAX_AGE", 30),
		Compress:    envBool("LOG_COMPRESS", true),
	}
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return def
}

func envInt(key string, def int) int {
	if i, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return i
	}
	return def
}
