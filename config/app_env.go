package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"

	"github.com/gazon-app/waitlist/internal/log"
	"github.com/gazon-app/waitlist/pkg/utils"
	"github.com/joho/godotenv"
)

const AppEnvKey = "APP_ENV"

// devEnvironments may run gorm AutoMigrate; the empty value counts as local development.
var devEnvironments = []string{"", "dev", "development", "local", "test", "testing"}

// InitializeEnvFile loads ENV_FILE (comma separated, default ".env") without
// overriding variables already set. SKIP_DOTENV=true turns it off.
func InitializeEnvFile(logger *log.Logger) {
	if utils.GetEnvBool("SKIP_DOTENV", false) {
		logger.Info("Skipping .env file load (SKIP_DOTENV=true)")
		return
	}

	files := strings.Split(utils.GetEnvTrimmedOrDefault("ENV_FILE", ".env"), ",")
	for i := range files {
		files[i] = strings.TrimSpace(files[i])
	}

	err := godotenv.Load(files...)
	switch {
	case err == nil:
		logger.Info("Environment loaded from file", "files", files)
	case errors.Is(err, fs.ErrNotExist):
		logger.Info("No env file found; using process environment", "files", files)
	default:
		logger.Warn("Failed to load env file", "files", files, "error", err)
	}
}

func GetValueFromEnvironmentVariable(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

func GetAppEnv() string {
	return strings.ToLower(utils.GetEnvTrimmed(AppEnvKey))
}

func ValidateAutoMigrateAllowed(appEnv string) error {
	env := strings.ToLower(strings.TrimSpace(appEnv))
	if slices.Contains(devEnvironments, env) {
		return nil
	}
	return fmt.Errorf("--auto-migrate is not allowed when %s=%q; run \"cli migrate\" instead", AppEnvKey, env)
}
