package system

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
)

// TempDirPattern is the os.MkdirTemp pattern used for per-run work directories.
const TempDirPattern = "bridgerun-"

// CreateTempDir creates a fresh directory owned by the current run.
func CreateTempDir() (string, error) {
	dir, err := os.MkdirTemp("", TempDirPattern)
	if err != nil {
		return "", fmt.Errorf("failed creating temp directory: %w", err)
	}
	log.Debug().Str("dir", dir).Msg("Created temp directory")
	return dir, nil
}

// CleanupTempDir removes dir and everything below it. Removing a missing directory is not an error.
func CleanupTempDir(dir string) error {
	if dir == "" {
		return nil
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed removing temp directory %s: %w", dir, err)
	}
	log.Debug().Str("dir", dir).Msg("Removed temp directory")
	return nil
}
