// Package sqlite stores the task list in a local sqlite database.
package sqlite

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"task-list/internal/domain"
	"task-list/internal/errors"
	"task-list/internal/logging"
	"task-list/internal/storage/sqlite/migrations"

	_ "modernc.org/sqlite"
)

// Store is a storage.Store backed by a sqlite database.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// New opens (or creates) the database at dbPath and applies pending migrations.
// Use ":memory:" for a throwaway database.
func New(ctx context.Context, dbPath string, logger *zap.Logger) (*Store, error) {
	logger = logging.OrNop(logger)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.NewPersistenceError("open database", err)
	}
	// A single connection keeps ":memory:" databases alive and serializes writers.
	db.SetMaxOpenConns(1)

	ran, err := migrations.RunMigrations(ctx, db)
	if err != nil {
		db.Close()
		return nil, errors.NewPersistenceError("run migrations", err)
	}
	if len(ran) > 0 {
		logger.Debug("applied migrations", zap.Ints("versions", ran), zap.String("path", dbPath))
	}

	return &Store{db: db, logger: logger}, nil
}

// Load returns every task ordered by list position.
func (s *Store) Load(ctx context.Context) ([]domain.Task, error) {
	query := `
	SELECT position, id, status, priority, name, created_at
	FROM tasks
	ORDER BY position ASC`

	rows, err := QueryMultiple(ctx, s.db, query, scanTaskRows, "tasks")
	if err != nil {
		return nil, err
	}

	tasks := make([]domain.Task, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, row.toDomain())
	}
	return tasks, nil
}

// Save replaces the stored collection in a single transaction.
func (s *Store) Save(ctx context.Context, tasks []domain.Task) error {
	err := WithTransaction(ctx, s.db, "save tasks", func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM tasks"); err != nil {
			return err
		}

		stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO tasks (position, id, status, priority, name, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, t := range tasks {
			row := rowFromDomain(int64(i), t)
			if _, err := stmt.ExecContext(ctx, row.Position, row.ID, row.Status, row.Priority, row.Name, row.CreatedAt); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Debug("saved tasks to database", zap.Int("tasks", len(tasks)))
	return nil
}

// KeepsIDs reports that task identifiers are stored alongside the tasks
func (s *Store) KeepsIDs() bool {
	return true
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}
