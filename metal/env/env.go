package env

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

type Environment struct {
	App     AppEnvironment     `validate:"required"`
	Api     ApiEnvironment     `validate:"required"`
	DB      DBEnvironment      `validate:"required"`
	Logs    LogsEnvironment    `validate:"required"`
	Sentry  SentryEnvironment  `validate:"required"`
	Gallery GalleryEnvironment `validate:"required"`
	Agent   AgentEnvironment   `validate:"required"`
	Tracing TracingEnvironment `validate:"required"`
}

// SecretsDir is where docker style secret files are mounted.
var SecretsDir = "/run/secrets"

func GetEnvVar(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

// GetEnvOr returns fallback when key is unset or blank.
func GetEnvOr(key, fallback string) string {
	if value := GetEnvVar(key); value != "" {
		return value
	}

	return fallback
}

// GetSecretOrEnv prefers a non-empty secret file over the env var.
func GetSecretOrEnv(secretName string, envVarName string) string {
	content, err := os.ReadFile(filepath.Join(SecretsDir, secretName))

	switch {
	case err == nil && strings.TrimSpace(string(content)) != "":
		return strings.TrimSpace(string(content))
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		slog.Warn("secret file unreadable, using env var", "secret", secretName, "error", err)
	}

	return GetEnvVar(envVarName)
}
