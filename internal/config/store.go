package config

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"task-list/internal/repository"
	"task-list/internal/storage"
	"task-list/internal/storage/file"
	"task-list/internal/storage/sqlite"
	"task-list/internal/validation"
)

// CreateStore creates the storage backend selected by the configuration.
// fs is only used by the file backend.
func CreateStore(ctx context.Context, config *Config, fs afero.Fs, logger *zap.Logger) (storage.Store, error) {
	path := config.GetStoragePath()

	switch config.Storage.Backend {
	case BackendFile:
		return file.New(fs, path,
			file.WithLogger(logger),
			file.WithDirPermissions(os.FileMode(config.Storage.DirPermissions)),
		), nil
	case BackendSQLite:
		if err := os.MkdirAll(config.Storage.Dir, os.FileMode(config.Storage.DirPermissions)); err != nil {
			return nil, fmt.Errorf("failed to create storage directory: %w", err)
		}
		store, err := sqlite.New(ctx, path, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		return store, nil
	default:
		return nil, &ConfigError{Field: "storage.backend", Message: "unknown backend " + config.Storage.Backend}
	}
}

// OpenRepository creates the configured store and loads the task list from it
func OpenRepository(ctx context.Context, config *Config, fs afero.Fs, logger *zap.Logger) (*repository.TaskRepository, error) {
	store, err := CreateStore(ctx, config, fs, logger)
	if err != nil {
		return nil, err
	}

	repo, err := repository.Open(ctx, store,
		repository.WithLogger(logger),
		repository.WithDateLayout(config.Tasks.DateFormat),
		repository.WithValidator(validation.NewTaskValidatorWithLimit(config.Tasks.NameMaxLength)),
	)
	if err != nil {
		store.Close()
		return nil, err
	}
	return repo, nil
}
