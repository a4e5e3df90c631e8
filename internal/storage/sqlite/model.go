package sqlite

import "task-list/internal/domain"

// taskRow is the stored shape of a task, including its list position.
type taskRow struct {
	Position  int64
	ID        string
	Status    string
	Priority  string
	Name      string
	CreatedAt string
}

func (r taskRow) toDomain() domain.Task {
	status, _ := domain.ParseStatus(r.Status)
	priority, _ := domain.ParsePriority(r.Priority)
	return domain.Task{
		ID:        r.ID,
		Status:    status,
		Priority:  priority,
		Name:      r.Name,
		CreatedAt: r.CreatedAt,
	}
}

func rowFromDomain(position int64, t domain.Task) taskRow {
	return taskRow{
		Position:  position,
		ID:        t.ID,
		Status:    string(t.Status),
		Priority:  string(t.Priority),
		Name:      t.Name,
		CreatedAt: t.CreatedAt,
	}
}
