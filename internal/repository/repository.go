// Package repository owns the in-memory task collection and keeps it in step
// with a storage.Store. Every successful mutation is written through to the
// store before the call returns.
package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"task-list/internal/domain"
	"task-list/internal/errors"
	"task-list/internal/logging"
	"task-list/internal/storage"
	"task-list/internal/validation"
)

// TaskRepository is the single owner of the task list.
// It is not safe for concurrent use.
type TaskRepository struct {
	store      storage.Store
	keepsIDs   bool
	tasks      []domain.Task
	dirty      bool
	now        func() time.Time
	newID      func() string
	dateLayout string
	validator  *validation.TaskValidator
	logger     *zap.Logger
}

// Option configures a TaskRepository.
type Option func(*TaskRepository)

// WithClock replaces the clock used to stamp new tasks.
func WithClock(now func() time.Time) Option {
	return func(r *TaskRepository) {
		r.now = now
	}
}

// WithIDGenerator replaces identifier derivation with a generator.
func WithIDGenerator(newID func() string) Option {
	return func(r *TaskRepository) {
		r.newID = newID
	}
}

// WithLogger sets the repository logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *TaskRepository) {
		r.logger = logging.OrNop(logger)
	}
}

// WithValidator replaces the validator applied to new tasks.
func WithValidator(v *validation.TaskValidator) Option {
	return func(r *TaskRepository) {
		r.validator = v
	}
}

// WithDateLayout sets the layout used to format creation timestamps.
func WithDateLayout(layout string) Option {
	return func(r *TaskRepository) {
		if layout != "" {
			r.dateLayout = layout
		}
	}
}

// Open loads the collection from store and returns a repository over it.
// Loaded tasks without an identifier, or with a duplicate one, are assigned
// an identifier. Unless the store keeps identifiers, it is derived from the
// task's origin and is the same on every load of the same list.
func Open(ctx context.Context, store storage.Store, opts ...Option) (*TaskRepository, error) {
	r := &TaskRepository{
		store:      store,
		now:        time.Now,
		dateLayout: domain.CreatedAtLayout,
		validator:  validation.NewTaskValidator(),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if keeper, ok := store.(storage.IDKeeper); ok {
		r.keepsIDs = keeper.KeepsIDs()
	}

	tasks, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}

	r.tasks = make([]domain.Task, 0, len(tasks))
	for i, t := range tasks {
		if _, taken := r.Get(t.ID); t.ID == "" || taken {
			occurrence, twins := originPosition(tasks, i)
			t.ID = r.assignID(t, occurrence, twins)
		}
		r.tasks = append(r.tasks, t)
	}

	r.logger.Debug("opened task repository", zap.Int("tasks", r.Len()))
	return r, nil
}

// Add validates and appends a new open task, then persists the collection.
// A rejected task causes no mutation and no write. Unless the store keeps
// identifiers, a task with the same name and creation time as an existing
// one is rejected.
func (r *TaskRepository) Add(ctx context.Context, name string, priority domain.Priority) (domain.Task, error) {
	name = strings.TrimSpace(name)
	if err := r.validator.ValidateTaskForCreation(name, priority); err != nil {
		return domain.Task{}, errors.NewValidationError("invalid task", err)
	}

	task := domain.Task{
		Status:    domain.StatusOpen,
		Priority:  priority,
		Name:      name,
		CreatedAt: r.now().Format(r.dateLayout),
	}
	if !r.keepsIDs && r.hasOrigin(task) {
		validationErr := validation.NewValidationError()
		validationErr.AddDuplicateError("name", name, "was already added at "+task.CreatedAt)
		return domain.Task{}, errors.NewValidationError("invalid task", validationErr)
	}
	task.ID = r.assignID(task, 0, 1)
	r.tasks = append(r.tasks, task)

	r.logger.Debug("added task", zap.String("id", task.ID), zap.String("priority", string(priority)))
	return task, r.persist(ctx)
}

// Toggle flips the status of the task with the given id.
func (r *TaskRepository) Toggle(ctx context.Context, id string) (domain.Task, error) {
	i, err := r.indexOf(id)
	if err != nil {
		return domain.Task{}, err
	}

	r.tasks[i].Status = r.tasks[i].Status.Toggled()
	return r.tasks[i], r.persist(ctx)
}

// SetStatus sets an explicit status. The store is only written when the status changes.
func (r *TaskRepository) SetStatus(ctx context.Context, id string, status domain.Status) (domain.Task, error) {
	i, err := r.indexOf(id)
	if err != nil {
		return domain.Task{}, err
	}

	if r.tasks[i].Status == status {
		return r.tasks[i], nil
	}
	r.tasks[i].Status = status
	return r.tasks[i], r.persist(ctx)
}

// Remove deletes the task with the given id and returns it.
func (r *TaskRepository) Remove(ctx context.Context, id string) (domain.Task, error) {
	i, err := r.indexOf(id)
	if err != nil {
		return domain.Task{}, err
	}

	removed := r.tasks[i]
	r.tasks = append(r.tasks[:i], r.tasks[i+1:]...)
	return removed, r.persist(ctx)
}

// ClearCompleted removes every done task and returns how many were removed.
// Nothing is written when no task was done.
func (r *TaskRepository) ClearCompleted(ctx context.Context) (int, error) {
	kept := make([]domain.Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		if !t.IsDone() {
			kept = append(kept, t)
		}
	}

	removed := len(r.tasks) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	r.tasks = kept
	return removed, r.persist(ctx)
}

// Tasks returns a copy of the collection in stored order.
func (r *TaskRepository) Tasks() []domain.Task {
	out := make([]domain.Task, len(r.tasks))
	copy(out, r.tasks)
	return out
}

// Get returns the task with the given id.
func (r *TaskRepository) Get(id string) (domain.Task, bool) {
	for _, t := range r.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return domain.Task{}, false
}

// Len returns the number of tasks.
func (r *TaskRepository) Len() int {
	return len(r.tasks)
}

// Dirty reports whether the last write failed, leaving memory ahead of the store.
func (r *TaskRepository) Dirty() bool {
	return r.dirty
}

// Flush writes the collection if a previous write failed.
func (r *TaskRepository) Flush(ctx context.Context) error {
	if !r.dirty {
		return nil
	}
	return r.persist(ctx)
}

// Close releases the underlying store.
func (r *TaskRepository) Close() error {
	if r.dirty {
		r.logger.Warn("closing repository with unsaved changes", zap.Int("tasks", r.Len()))
	}
	return r.store.Close()
}

// assignID returns a fresh identifier. Stores that keep identifiers get a
// random one. Otherwise it is derived from the task's origin, its position
// among twins and the number of twins.
func (r *TaskRepository) assignID(t domain.Task, occurrence, twins int) string {
	if r.newID != nil {
		return r.newID()
	}
	if r.keepsIDs {
		for {
			id := uuid.NewString()
			if _, taken := r.Get(id); !taken {
				return id
			}
		}
	}

	for {
		id := domain.DeriveID(t.Name, t.CreatedAt, occurrence, twins)
		if _, taken := r.Get(id); !taken {
			return id
		}
		occurrence++
	}
}

func (r *TaskRepository) hasOrigin(t domain.Task) bool {
	for _, existing := range r.tasks {
		if existing.SameOrigin(t) {
			return true
		}
	}
	return false
}

// originPosition counts the tasks sharing the origin of tasks[i] and returns
// how many of them come before it.
func originPosition(tasks []domain.Task, i int) (occurrence, twins int) {
	for j, t := range tasks {
		if !t.SameOrigin(tasks[i]) {
			continue
		}
		if j < i {
			occurrence++
		}
		twins++
	}
	return occurrence, twins
}

func (r *TaskRepository) indexOf(id string) (int, error) {
	for i, t := range r.tasks {
		if t.ID == id {
			return i, nil
		}
	}
	return -1, errors.NewNotFoundError("task", id)
}

func (r *TaskRepository) persist(ctx context.Context) error {
	if err := r.store.Save(ctx, r.Tasks()); err != nil {
		r.dirty = true
		r.logger.Error("failed to save tasks", zap.Error(err))
		if errors.IsPersistence(err) {
			return err
		}
		return errors.NewPersistenceError("save tasks", err)
	}
	r.dirty = false
	return nil
}
