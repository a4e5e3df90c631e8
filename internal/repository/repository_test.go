package repository

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-list/internal/domain"
	"task-list/internal/errors"
	"task-list/internal/storage/file"
	"task-list/internal/validation"
)

// fakeStore records every save and can be told to fail.
type fakeStore struct {
	loaded  []domain.Task
	saved   [][]domain.Task
	saveErr error
	loadErr error
	closed  bool
}

func (f *fakeStore) Load(ctx context.Context) ([]domain.Task, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	out := make([]domain.Task, len(f.loaded))
	copy(out, f.loaded)
	return out, nil
}

func (f *fakeStore) Save(ctx context.Context, tasks []domain.Task) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, tasks)
	return nil
}

func (f *fakeStore) Close() error {
	f.closed = true
	return nil
}

func (f *fakeStore) lastSaved() []domain.Task {
	if len(f.saved) == 0 {
		return nil
	}
	return f.saved[len(f.saved)-1]
}

var fixedNow = time.Date(2024, time.March, 5, 9, 7, 0, 0, time.UTC)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("task-%04d", n)
	}
}

func openTestRepository(t *testing.T, store *fakeStore) *TaskRepository {
	t.Helper()
	repo, err := Open(context.Background(), store,
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(sequentialIDs()),
	)
	require.NoError(t, err)
	return repo
}

func TestOpen(t *testing.T) {
	t.Run("should assign ids to loaded tasks", func(t *testing.T) {
		store := &fakeStore{loaded: []domain.Task{
			{Status: domain.StatusOpen, Priority: domain.PriorityLow, Name: "A", CreatedAt: "01.01.2024 10:00"},
			{ID: "keep", Status: domain.StatusDone, Priority: domain.PriorityHigh, Name: "B", CreatedAt: "01.01.2024 11:00"},
			{ID: "keep", Status: domain.StatusOpen, Priority: domain.PriorityHigh, Name: "C", CreatedAt: "01.01.2024 12:00"},
		}}
		repo := openTestRepository(t, store)

		tasks := repo.Tasks()
		require.Len(t, tasks, 3)
		assert.Equal(t, "task-0001", tasks[0].ID)
		assert.Equal(t, "keep", tasks[1].ID)
		assert.Equal(t, "task-0002", tasks[2].ID)
		assert.Empty(t, store.saved)
	})

	t.Run("should return load errors", func(t *testing.T) {
		loadErr := errors.NewPersistenceError("open task file", stderrors.New("boom"))
		_, err := Open(context.Background(), &fakeStore{loadErr: loadErr})
		assert.True(t, errors.IsPersistence(err))
	})
}

func TestTaskRepository_Add(t *testing.T) {
	ctx := context.Background()

	t.Run("should append an open task and persist", func(t *testing.T) {
		store := &fakeStore{}
		repo := openTestRepository(t, store)

		task, err := repo.Add(ctx, "  Write report  ", domain.PriorityHigh)
		require.NoError(t, err)

		assert.Equal(t, domain.Task{
			ID:        "task-0001",
			Status:    domain.StatusOpen,
			Priority:  domain.PriorityHigh,
			Name:      "Write report",
			CreatedAt: "05.03.2024 09:07",
		}, task)
		assert.Equal(t, 1, repo.Len())
		require.Len(t, store.saved, 1)
		assert.Equal(t, []domain.Task{task}, store.lastSaved())
	})

	t.Run("should use the configured date layout", func(t *testing.T) {
		repo, err := Open(ctx, &fakeStore{},
			WithClock(func() time.Time { return fixedNow }),
			WithDateLayout("2006-01-02"),
		)
		require.NoError(t, err)

		task, err := repo.Add(ctx, "Dated", domain.PriorityLow)
		require.NoError(t, err)
		assert.Equal(t, "2024-03-05", task.CreatedAt)
	})

	rejected := []struct {
		name     string
		taskName string
		priority domain.Priority
	}{
		{name: "should reject an empty name", taskName: "", priority: domain.PriorityHigh},
		{name: "should reject a whitespace name", taskName: "   ", priority: domain.PriorityHigh},
		{name: "should reject the field delimiter", taskName: "a|b", priority: domain.PriorityHigh},
		{name: "should reject a line break", taskName: "a\nb", priority: domain.PriorityHigh},
		{name: "should reject an unknown priority", taskName: "Valid", priority: domain.Priority("Urgent")},
	}
	for _, tt := range rejected {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{}
			repo := openTestRepository(t, store)

			_, err := repo.Add(ctx, tt.taskName, tt.priority)
			require.Error(t, err)
			assert.True(t, errors.IsValidation(err))
			assert.Equal(t, 0, repo.Len())
			assert.Empty(t, store.saved)
		})
	}

	t.Run("should enforce the validator length limit", func(t *testing.T) {
		store := &fakeStore{}
		repo, err := Open(ctx, store, WithValidator(validation.NewTaskValidatorWithLimit(5)))
		require.NoError(t, err)

		_, err = repo.Add(ctx, strings.Repeat("x", 6), domain.PriorityLow)
		assert.True(t, errors.IsValidation(err))
		assert.Empty(t, store.saved)
	})
}

func TestTaskRepository_Toggle(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{}
	repo := openTestRepository(t, store)
	task, err := repo.Add(ctx, "Toggle me", domain.PriorityMedium)
	require.NoError(t, err)

	t.Run("should flip the status", func(t *testing.T) {
		toggled, err := repo.Toggle(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusDone, toggled.Status)
	})

	t.Run("should restore the status when toggled twice", func(t *testing.T) {
		toggled, err := repo.Toggle(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusOpen, toggled.Status)
		assert.Len(t, store.saved, 3)
	})

	t.Run("should be a no-op for an unknown id", func(t *testing.T) {
		before := repo.Tasks()
		_, err := repo.Toggle(ctx, "missing")
		assert.True(t, errors.IsNotFound(err))
		assert.Equal(t, before, repo.Tasks())
		assert.Len(t, store.saved, 3)
	})
}

func TestTaskRepository_SetStatus(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{}
	repo := openTestRepository(t, store)
	task, err := repo.Add(ctx, "Finish", domain.PriorityLow)
	require.NoError(t, err)

	done, err := repo.SetStatus(ctx, task.ID, domain.StatusDone)
	require.NoError(t, err)
	assert.True(t, done.IsDone())
	assert.Len(t, store.saved, 2)

	_, err = repo.SetStatus(ctx, task.ID, domain.StatusDone)
	require.NoError(t, err)
	assert.Len(t, store.saved, 2, "unchanged status should not write")

	_, err = repo.SetStatus(ctx, "missing", domain.StatusOpen)
	assert.True(t, errors.IsNotFound(err))
}

func TestTaskRepository_Remove(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{}
	repo := openTestRepository(t, store)
	first, _ := repo.Add(ctx, "First", domain.PriorityLow)
	second, _ := repo.Add(ctx, "Second", domain.PriorityLow)
	third, _ := repo.Add(ctx, "Third", domain.PriorityLow)

	removed, err := repo.Remove(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, second, removed)
	assert.Equal(t, []domain.Task{first, third}, repo.Tasks())
	assert.Equal(t, []domain.Task{first, third}, store.lastSaved())

	_, err = repo.Remove(ctx, second.ID)
	assert.True(t, errors.IsNotFound(err))
	assert.Len(t, store.saved, 4)
}

func TestTaskRepository_ClearCompleted(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{}
	repo := openTestRepository(t, store)
	a, _ := repo.Add(ctx, "A", domain.PriorityLow)
	b, _ := repo.Add(ctx, "B", domain.PriorityLow)
	c, _ := repo.Add(ctx, "C", domain.PriorityLow)
	_, _ = repo.Toggle(ctx, a.ID)
	_, _ = repo.Toggle(ctx, c.ID)
	writes := len(store.saved)

	removed, err := repo.ClearCompleted(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.Equal(t, []domain.Task{b}, repo.Tasks())
	assert.Len(t, store.saved, writes+1)

	removed, err = repo.ClearCompleted(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
	assert.Len(t, store.saved, writes+1, "nothing to clear should not write")
}

func TestTaskRepository_TasksReturnsCopy(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepository(t, &fakeStore{})
	task, _ := repo.Add(ctx, "Original", domain.PriorityHigh)

	tasks := repo.Tasks()
	tasks[0].Name = "Changed"

	got, ok := repo.Get(task.ID)
	require.True(t, ok)
	assert.Equal(t, "Original", got.Name)

	_, ok = repo.Get("missing")
	assert.False(t, ok)
}

func TestTaskRepository_PersistenceFailure(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{}
	repo := openTestRepository(t, store)
	_, err := repo.Add(ctx, "Saved", domain.PriorityHigh)
	require.NoError(t, err)

	store.saveErr = stderrors.New("disk full")

	t.Run("should keep the mutation and mark the repository dirty", func(t *testing.T) {
		task, err := repo.Add(ctx, "Unsaved", domain.PriorityLow)
		require.Error(t, err)
		assert.True(t, errors.IsPersistence(err))
		assert.Equal(t, "Unsaved", task.Name)
		assert.Equal(t, 2, repo.Len())
		assert.True(t, repo.Dirty())
	})

	t.Run("should keep failing to flush while the store is broken", func(t *testing.T) {
		assert.True(t, errors.IsPersistence(repo.Flush(ctx)))
		assert.True(t, repo.Dirty())
	})

	t.Run("should clear the dirty flag once a flush succeeds", func(t *testing.T) {
		store.saveErr = nil
		require.NoError(t, repo.Flush(ctx))
		assert.False(t, repo.Dirty())
		assert.Len(t, store.lastSaved(), 2)
	})

	t.Run("should not write when flushing a clean repository", func(t *testing.T) {
		writes := len(store.saved)
		require.NoError(t, repo.Flush(ctx))
		assert.Len(t, store.saved, writes)
	})
}

func TestTaskRepository_Close(t *testing.T) {
	store := &fakeStore{}
	repo := openTestRepository(t, store)

	require.NoError(t, repo.Close())
	assert.True(t, store.closed)
}

func TestTaskRepository_Scenario(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()
	store := file.New(fs, "/tasks.txt")
	repo, err := Open(ctx, store, WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)

	report, err := repo.Add(ctx, "Write report", domain.PriorityHigh)
	require.NoError(t, err)
	_, err = repo.Add(ctx, "Clean desk", domain.PriorityLow)
	require.NoError(t, err)
	_, err = repo.Toggle(ctx, report.ID)
	require.NoError(t, err)
	removed, err := repo.ClearCompleted(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	tasks := repo.Tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, "Clean desk", tasks[0].Name)
	assert.Equal(t, domain.PriorityLow, tasks[0].Priority)
	assert.Equal(t, domain.StatusOpen, tasks[0].Status)

	data, err := afero.ReadFile(fs, "/tasks.txt")
	require.NoError(t, err)
	assert.Equal(t, "Open|Low|Clean desk|05.03.2024 09:07\n", string(data))

	reopened, err := Open(ctx, file.New(fs, "/tasks.txt"))
	require.NoError(t, err)
	require.Equal(t, 1, reopened.Len())
	assert.Equal(t, tasks[0], reopened.Tasks()[0])
}

func TestTaskRepository_DerivedIDs(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()
	clock := WithClock(func() time.Time { return fixedNow })

	repo, err := Open(ctx, file.New(fs, "/tasks.txt"), clock)
	require.NoError(t, err)

	first, err := repo.Add(ctx, "Same name", domain.PriorityLow)
	require.NoError(t, err)
	other, err := repo.Add(ctx, "Other", domain.PriorityLow)
	require.NoError(t, err)

	assert.Equal(t, domain.DeriveID("Same name", "05.03.2024 09:07", 0, 1), first.ID)
	assert.NotEqual(t, first.ID, other.ID)

	t.Run("should reject a task with the same name and creation time", func(t *testing.T) {
		_, err := repo.Add(ctx, "Same name", domain.PriorityHigh)
		require.Error(t, err)
		assert.True(t, errors.IsValidation(err))
		assert.Contains(t, errors.GetUserMessage(err), "name was already added at 05.03.2024 09:07")
		assert.Equal(t, 2, repo.Len())
	})

	t.Run("should keep ids stable across loads", func(t *testing.T) {
		reopened, err := Open(ctx, file.New(fs, "/tasks.txt"), clock)
		require.NoError(t, err)
		assert.Equal(t, repo.Tasks(), reopened.Tasks())
	})

	t.Run("should keep an id when the status changes", func(t *testing.T) {
		_, err := repo.Toggle(ctx, other.ID)
		require.NoError(t, err)

		reopened, err := Open(ctx, file.New(fs, "/tasks.txt"), clock)
		require.NoError(t, err)
		got, ok := reopened.Get(other.ID)
		require.True(t, ok)
		assert.True(t, got.IsDone())
	})
}

func TestTaskRepository_LoadedTwins(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()
	line := "Open|Medium|Buy milk|05.03.2024 09:07\n"
	require.NoError(t, afero.WriteFile(fs, "/tasks.txt", []byte(line+line), 0644))

	repo, err := Open(ctx, file.New(fs, "/tasks.txt"))
	require.NoError(t, err)
	require.Equal(t, 2, repo.Len())

	twins := repo.Tasks()
	assert.NotEqual(t, twins[0].ID, twins[1].ID)

	_, err = repo.Remove(ctx, twins[0].ID)
	require.NoError(t, err)

	reopened, err := Open(ctx, file.New(fs, "/tasks.txt"))
	require.NoError(t, err)
	require.Equal(t, 1, reopened.Len())
	survivor := reopened.Tasks()[0]
	assert.NotEqual(t, twins[0].ID, survivor.ID)
	assert.NotEqual(t, twins[1].ID, survivor.ID)

	t.Run("should not remove the survivor when a removed id is retried", func(t *testing.T) {
		_, err := reopened.Remove(ctx, twins[0].ID)
		assert.True(t, errors.IsNotFound(err))
		assert.Equal(t, 1, reopened.Len())

		data, err := afero.ReadFile(fs, "/tasks.txt")
		require.NoError(t, err)
		assert.Equal(t, line, string(data))
	})
}

// keepingStore is a fakeStore that persists identifiers.
type keepingStore struct {
	*fakeStore
}

func (keepingStore) KeepsIDs() bool {
	return true
}

func TestTaskRepository_StoreKeepsIDs(t *testing.T) {
	ctx := context.Background()
	store := keepingStore{fakeStore: &fakeStore{}}

	repo, err := Open(ctx, store, WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)

	first, err := repo.Add(ctx, "Buy milk", domain.PriorityLow)
	require.NoError(t, err)
	second, err := repo.Add(ctx, "Buy milk", domain.PriorityLow)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.NotEqual(t, domain.DeriveID("Buy milk", "05.03.2024 09:07", 0, 1), first.ID)

	_, err = repo.Remove(ctx, first.ID)
	require.NoError(t, err)

	reopened, err := Open(ctx, keepingStore{fakeStore: &fakeStore{loaded: store.lastSaved()}})
	require.NoError(t, err)
	_, err = reopened.Remove(ctx, first.ID)
	assert.True(t, errors.IsNotFound(err))
	assert.Equal(t, 1, reopened.Len())
	_, ok := reopened.Get(second.ID)
	assert.True(t, ok)
}
