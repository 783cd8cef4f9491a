package main

import (
	"os"
	"path/filepath"

	"github.com/ericogr/titan-arena/internal/config"
	"github.com/ericogr/titan-arena/internal/constants"
	"github.com/ericogr/titan-arena/internal/logging"
	"github.com/ericogr/titan-arena/internal/storage"
)

func loadConfigOrExit(path string) *config.LoadedConfig {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		logging.Fatal("Missing or invalid titan configuration", err, logging.Fields{"config_path": path})
	}
	return cfg
}

// databasePath picks TITAN_DB, then database.path, then the default.
func databasePath(cfg *config.LoadedConfig) string {
	if p := os.Getenv(constants.EnvDatabasePath); p != "" {
		return p
	}
	if cfg.DatabasePath != "" {
		return cfg.DatabasePath
	}
	return constants.DefaultDatabasePath
}

func createRepositoryOrExit(dbPath string) storage.Repository {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logging.Fatal("Failed to create database directory", err, logging.Fields{"dir": dir})
		}
	}
	db, err := storage.OpenAndMigrate(dbPath)
	if err != nil {
		logging.Fatal("Failed to initialize database", err, nil)
	}
	return storage.NewSQLiteRepository(db)
}
