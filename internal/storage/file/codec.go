package file

import (
	"strings"

	"task-list/internal/domain"
)

const (
	fieldDelimiter = "|"
	fieldCount     = 4
)

// EncodeLine renders a task as one stored line without the trailing newline:
// status|priority|name|created_at
func EncodeLine(t domain.Task) string {
	return strings.Join([]string{
		string(t.Status),
		string(t.Priority),
		t.Name,
		t.CreatedAt,
	}, fieldDelimiter)
}

// DecodeLine parses one stored line. It reports ok=false for blank lines and
// for lines that do not split into exactly four fields or carry no name.
// Legacy status and priority labels are normalized; unknown ones are kept verbatim.
func DecodeLine(line string) (domain.Task, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return domain.Task{}, false
	}

	parts := strings.Split(line, fieldDelimiter)
	if len(parts) != fieldCount {
		return domain.Task{}, false
	}

	status, _ := domain.ParseStatus(parts[0])
	priority, _ := domain.ParsePriority(parts[1])
	task := domain.Task{
		Status:    status,
		Priority:  priority,
		Name:      parts[2],
		CreatedAt: parts[3],
	}
	if !task.IsValid() {
		return domain.Task{}, false
	}
	return task, true
}
