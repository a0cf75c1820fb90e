package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "embed"
)

//go:embed declutter.yaml
var defaultConfigYAML []byte

// DefaultConfig returns the embedded starter configuration.
func DefaultConfig() []byte {
	return defaultConfigYAML
}

// WriteDefaultConfig writes the starter configuration to path, and the JSON
// schema next to it. An existing configuration is kept unless force is set,
// in which case it is first renamed to a timestamped backup.
func WriteDefaultConfig(path string, force bool) error {
	err := writeDefaultFile(path, defaultConfigYAML, force, "config")
	if err != nil {
		return err
	}

	schemaPath := filepath.Join(filepath.Dir(path), "declutter.v1.json")
	slog.Debug("write JSON schema",
		slog.String("path", schemaPath),
	)

	err = os.WriteFile(schemaPath, schemaJSON, 0o600)
	if err != nil {
		return fmt.Errorf("write schema file: %w", err)
	}

	return nil
}

func writeDefaultFile(path string, data []byte, force bool, kind string) error {
	exists := false

	pathInfo, err := os.Stat(path)
	if pathInfo != nil {
		switch {
		case err == nil && pathInfo.Mode().IsRegular():
			exists = true
		case pathInfo.IsDir():
			return fmt.Errorf("%s: path is a directory", path)
		default:
			return fmt.Errorf("%s: unknown file state", path)
		}
	}

	err = os.MkdirAll(filepath.Dir(path), 0o700)
	if err != nil {
		return fmt.Errorf("create directories: %w", err)
	}

	if exists && force {
		backupFile := fmt.Sprintf("%s.%d.old", filepath.Base(path), time.Now().UnixNano())
		backupPath := filepath.Join(filepath.Dir(path), backupFile)
		slog.Info("backing up existing file",
			slog.String("type", kind),
			slog.String("path", backupPath),
		)

		err = os.Rename(path, backupPath)
		if err != nil {
			return fmt.Errorf("rename existing %s file to backup: %w", kind, err)
		}

		exists = false
	}

	if exists {
		slog.Info("file already exists, skipping write",
			slog.String("type", kind),
			slog.String("path", path),
		)

		return nil
	}

	slog.Info("write default file",
		slog.String("type", kind),
		slog.String("path", path),
	)

	err = os.WriteFile(path, data, 0o600)
	if err != nil {
		return fmt.Errorf("write %s file: %w", kind, err)
	}

	return nil
}
