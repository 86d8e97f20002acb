// Package util provides small helpers shared by the StackIt client: log level management,
// path resolution, secret masking, and HTTP client construction.
package util

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/stackit-qa/stackit-client/internal/config"
)

// SetLogLevel configures the logrus log level based on the configuration.
// It sets the log level to DebugLevel if debug mode is enabled, otherwise to InfoLevel.
func SetLogLevel(cfg *config.Config) {
	newLevel := log.InfoLevel
	if cfg != nil && cfg.Debug {
		newLevel = log.DebugLevel
	}
	if currentLevel := log.GetLevel(); currentLevel != newLevel {
		log.SetLevel(newLevel)
		log.Debugf("log level changed from %s to %s", currentLevel, newLevel)
	}
}

// ResolveDir expands a leading tilde (~) to the user's home directory and returns a cleaned path.
func ResolveDir(dir string) (string, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return "", nil
	}
	if !strings.HasPrefix(dir, "~") {
		return filepath.Clean(dir), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve dir: %w", err)
	}
	rest := strings.TrimLeft(strings.TrimPrefix(dir, "~"), "/\\")
	if rest == "" {
		return filepath.Clean(home), nil
	}
	return filepath.Join(home, filepath.FromSlash(strings.ReplaceAll(rest, "\\", "/"))), nil
}

// DefaultCredentialDir returns where the file backend keeps credentials when none is configured:
// $WRITABLE_PATH/credentials, else the user config dir, else ./.stackit.
func DefaultCredentialDir() string {
	if base := WritablePath(); base != "" {
		return filepath.Join(base, "credentials")
	}
	if dir, err := os.UserConfigDir(); err == nil && dir != "" {
		return filepath.Join(dir, "stackit")
	}
	return ".stackit"
}

// WritablePath returns the cleaned WRITABLE_PATH environment variable when it is set.
// It accepts both uppercase and lowercase variants.
func WritablePath() string {
	for _, key := range []string{"WRITABLE_PATH", "writable_path"} {
		if value, ok := os.LookupEnv(key); ok {
			if trimmed := strings.TrimSpace(value); trimmed != "" {
				return filepath.Clean(trimmed)
			}
		}
	}
	return ""
}
