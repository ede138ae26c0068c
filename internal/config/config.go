package config

import (
	"os"
	"strconv"
	"time"

	"github.com/alexmorgen/vibeforge/internal/logging"
)

// Config holds everything the server needs from the environment. The Gemini
// key may legitimately be empty: generation-dependent features then fail fast
// with a missing-credential error instead of blocking startup.
type Config struct {
	GeminiAPIKey string
	Port         string
	TextModel    string
	ImageModel   string
	CallTimeout  time.Duration
	SQLitePath   string
	LogMode      string
	CORSOrigin   string
	FontPath     string
}

func Load(log *logging.Logger) Config {
	timeoutSeconds := getEnvAsInt("VIBEFORGE_CALL_TIMEOUT", 90, log)
	return Config{
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		Port:         getEnv("PORT", "8080", log),
		TextModel:    getEnv("VIBEFORGE_TEXT_MODEL", "gemini-2.5-flash", log),
		ImageModel:   getEnv("VIBEFORGE_IMAGE_MODEL", "gemini-2.0-flash-preview-image-generation", log),
		CallTimeout:  time.Duration(timeoutSeconds) * time.Second,
		SQLitePath:   getEnv("VIBEFORGE_DB", "vibeforge.db", log),
		LogMode:      getEnv("VIBEFORGE_LOG_MODE", "dev", log),
		CORSOrigin:   getEnv("VIBEFORGE_CORS_ORIGIN", "*", log),
		FontPath:     getEnv("VIBEFORGE_FONT", "", log),
	}
}

func getEnv(key, defaultVal string, log *logging.Logger) string {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsInt(key string, defaultVal int, log *logging.Logger) int {
	valStr, ok := os.LookupEnv(key)
	if !ok {
		return defaultVal
	}
	i, err := strconv.Atoi(valStr)
	if err != nil {
		if log != nil {
			log.Warn("env var is not an int, using default", "env_var", key, "value", valStr, "default", defaultVal)
		}
		return defaultVal
	}
	return i
}
