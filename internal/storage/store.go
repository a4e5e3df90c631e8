// Package storage defines the persistence contract shared by every task backend.
//
// A Store always reads and writes the whole collection. There is no
// incremental update: Save replaces whatever was stored before.
package storage

import (
	"context"

	"task-list/internal/domain"
)

// Store loads and saves the complete, ordered task collection.
type Store interface {
	// Load returns every stored task in stored order. A store that has never
	// been written returns an empty slice and no error.
	Load(ctx context.Context) ([]domain.Task, error)

	// Save replaces the stored collection with tasks, preserving order.
	Save(ctx context.Context, tasks []domain.Task) error

	// Close releases resources held by the store.
	Close() error
}

// IDKeeper is implemented by stores that persist task identifiers. Tasks in
// such a store keep the identifier they were given; tasks in other stores get
// one derived from their content on every load.
type IDKeeper interface {
	KeepsIDs() bool
}
