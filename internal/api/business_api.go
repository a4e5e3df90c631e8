package api

import (
	"context"
	"strings"

	"task-list/internal/domain"
	"task-list/internal/errors"
	"task-list/internal/repository"
	"task-list/internal/views"
)

// MinIDPrefixLength is the shortest abbreviated task id accepted by ResolveID.
const MinIDPrefixLength = 4

// BusinessAPI defines the task list operations shared by the CLI and the HTTP surface
type BusinessAPI interface {
	// ========== Mutations ==========

	// AddTask validates and adds a new open task. An empty priority label uses the default priority.
	AddTask(ctx context.Context, name string, priorityLabel string) (*domain.Task, error)

	// ToggleTask flips a task between Open and Done
	ToggleTask(ctx context.Context, ref string) (*domain.Task, error)

	// CompleteTask marks a task Done
	CompleteTask(ctx context.Context, ref string) (*domain.Task, error)

	// ReopenTask marks a task Open
	ReopenTask(ctx context.Context, ref string) (*domain.Task, error)

	// RemoveTask deletes a task and returns it
	RemoveTask(ctx context.Context, ref string) (*domain.Task, error)

	// ClearCompleted removes every Done task and returns how many were removed
	ClearCompleted(ctx context.Context) (int, error)

	// Flush retries a write that failed earlier
	Flush(ctx context.Context) error

	// ========== Queries ==========

	// GetView returns the filtered, priority-sorted view for a search query
	GetView(ctx context.Context, query string) (*views.View, error)

	// GetProgress returns completion over the whole list
	GetProgress(ctx context.Context) (views.Progress, error)

	// GetTask returns a single task by id or unique id prefix
	GetTask(ctx context.Context, ref string) (*domain.Task, error)

	// ResolveID expands a full id or unique prefix to a task id
	ResolveID(ref string) (string, error)

	// HasUnsavedChanges reports whether memory is ahead of the store
	HasUnsavedChanges() bool
}

// businessAPIImpl implements the BusinessAPI interface
type businessAPIImpl struct {
	repo            *repository.TaskRepository
	defaultPriority domain.Priority
}

// NewBusinessAPI creates a new BusinessAPI instance
func NewBusinessAPI(repo *repository.TaskRepository, defaultPriority domain.Priority) BusinessAPI {
	if !defaultPriority.IsKnown() {
		defaultPriority = domain.PriorityMedium
	}
	return &businessAPIImpl{
		repo:            repo,
		defaultPriority: defaultPriority,
	}
}

// ========== Mutations ==========

func (b *businessAPIImpl) AddTask(ctx context.Context, name string, priorityLabel string) (*domain.Task, error) {
	priority := b.defaultPriority
	if strings.TrimSpace(priorityLabel) != "" {
		priority, _ = domain.ParsePriority(priorityLabel)
	}

	task, err := b.repo.Add(ctx, name, priority)
	return taskOrNil(task, err)
}

func (b *businessAPIImpl) ToggleTask(ctx context.Context, ref string) (*domain.Task, error) {
	id, err := b.ResolveID(ref)
	if err != nil {
		return nil, err
	}
	return taskOrNil(b.repo.Toggle(ctx, id))
}

func (b *businessAPIImpl) CompleteTask(ctx context.Context, ref string) (*domain.Task, error) {
	return b.setStatus(ctx, ref, domain.StatusDone)
}

func (b *businessAPIImpl) ReopenTask(ctx context.Context, ref string) (*domain.Task, error) {
	return b.setStatus(ctx, ref, domain.StatusOpen)
}

func (b *businessAPIImpl) RemoveTask(ctx context.Context, ref string) (*domain.Task, error) {
	id, err := b.ResolveID(ref)
	if err != nil {
		return nil, err
	}
	return taskOrNil(b.repo.Remove(ctx, id))
}

func (b *businessAPIImpl) ClearCompleted(ctx context.Context) (int, error) {
	return b.repo.ClearCompleted(ctx)
}

func (b *businessAPIImpl) Flush(ctx context.Context) error {
	return b.repo.Flush(ctx)
}

// ========== Queries ==========

func (b *businessAPIImpl) GetView(ctx context.Context, query string) (*views.View, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	view := views.Build(b.repo.Tasks(), query)
	return &view, nil
}

func (b *businessAPIImpl) GetProgress(ctx context.Context) (views.Progress, error) {
	if err := ctx.Err(); err != nil {
		return views.Progress{}, err
	}
	return views.ComputeProgress(b.repo.Tasks()), nil
}

func (b *businessAPIImpl) GetTask(ctx context.Context, ref string) (*domain.Task, error) {
	id, err := b.ResolveID(ref)
	if err != nil {
		return nil, err
	}
	task, _ := b.repo.Get(id)
	return &task, nil
}

func (b *businessAPIImpl) ResolveID(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", errors.NewInvalidInputError("id", ref, "task id is required")
	}
	if _, ok := b.repo.Get(ref); ok {
		return ref, nil
	}
	if len(ref) < MinIDPrefixLength {
		return "", errors.NewNotFoundError("task", ref)
	}

	var matches []string
	for _, t := range b.repo.Tasks() {
		if strings.HasPrefix(t.ID, ref) {
			matches = append(matches, t.ID)
		}
	}

	switch len(matches) {
	case 0:
		return "", errors.NewNotFoundError("task", ref)
	case 1:
		return matches[0], nil
	default:
		return "", errors.NewInvalidInputError("id", ref, "prefix matches more than one task").
			WithContext("matches", len(matches))
	}
}

func (b *businessAPIImpl) HasUnsavedChanges() bool {
	return b.repo.Dirty()
}

func (b *businessAPIImpl) setStatus(ctx context.Context, ref string, status domain.Status) (*domain.Task, error) {
	id, err := b.ResolveID(ref)
	if err != nil {
		return nil, err
	}
	return taskOrNil(b.repo.SetStatus(ctx, id, status))
}

// taskOrNil keeps the task when only the write failed, so callers can still
// show what changed in memory.
func taskOrNil(task domain.Task, err error) (*domain.Task, error) {
	if err != nil && !errors.IsPersistence(err) {
		return nil, err
	}
	return &task, err
}
