package domain

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CreatedAtLayout is the fixed display format of a task's creation timestamp
// (day.month.year hour:minute).
const CreatedAtLayout = "02.01.2006 15:04"

// Status is the completion state of a task.
type Status string

const (
	StatusOpen Status = "Open"
	StatusDone Status = "Done"
)

// legacyStatusLabels maps labels written by older versions of the list file.
var legacyStatusLabels = map[string]Status{
	"offen":    StatusOpen,
	"erledigt": StatusDone,
}

// ParseStatus maps a stored or user supplied label to a Status.
// Unknown labels are reported with ok=false.
func ParseStatus(label string) (Status, bool) {
	value := strings.ToLower(strings.TrimSpace(label))
	switch value {
	case "open":
		return StatusOpen, true
	case "done":
		return StatusDone, true
	}
	if status, ok := legacyStatusLabels[value]; ok {
		return status, true
	}
	return Status(label), false
}

// IsDone reports whether the status marks a completed task.
func (s Status) IsDone() bool {
	return s == StatusDone
}

// Toggled returns the opposite status.
func (s Status) Toggled() Status {
	if s.IsDone() {
		return StatusOpen
	}
	return StatusDone
}

// Priority is the urgency of a task.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// LowestRank is the sort rank of Low and of every unrecognized priority.
const LowestRank = 3

var priorityRanks = map[Priority]int{
	PriorityHigh:   1,
	PriorityMedium: 2,
	PriorityLow:    LowestRank,
}

var legacyPriorityLabels = map[string]Priority{
	"hoch":    PriorityHigh,
	"mittel":  PriorityMedium,
	"niedrig": PriorityLow,
}

// Priorities lists the known priorities from most to least urgent.
func Priorities() []Priority {
	return []Priority{PriorityHigh, PriorityMedium, PriorityLow}
}

// ParsePriority maps a stored or user supplied label to a Priority.
// Matching is case-insensitive. Unknown labels are returned verbatim with ok=false.
func ParsePriority(label string) (Priority, bool) {
	value := strings.ToLower(strings.TrimSpace(label))
	for _, p := range Priorities() {
		if strings.ToLower(string(p)) == value {
			return p, true
		}
	}
	if p, ok := legacyPriorityLabels[value]; ok {
		return p, true
	}
	return Priority(label), false
}

// IsKnown reports whether p is one of High, Medium or Low.
func (p Priority) IsKnown() bool {
	_, ok := priorityRanks[p]
	return ok
}

// Rank returns the sort key of the priority: High=1, Medium=2, Low=3.
// Unrecognized priorities sort last.
func (p Priority) Rank() int {
	if rank, ok := priorityRanks[p]; ok {
		return rank
	}
	return LowestRank
}

// Task represents a single to-do item.
// This is a pure domain model without storage-specific concerns.
type Task struct {
	ID        string   `json:"id"`
	Status    Status   `json:"status"`
	Priority  Priority `json:"priority"`
	Name      string   `json:"name"`
	CreatedAt string   `json:"created_at"`
}

// NewTask creates an open task stamped with the given creation time.
func NewTask(id, name string, priority Priority, now time.Time) Task {
	return Task{
		ID:        id,
		Status:    StatusOpen,
		Priority:  priority,
		Name:      name,
		CreatedAt: now.Format(CreatedAtLayout),
	}
}

// IsDone reports whether the task is completed.
func (t Task) IsDone() bool {
	return t.Status.IsDone()
}

// IsValid checks if the task has the data every stored task must carry.
func (t Task) IsValid() bool {
	return strings.TrimSpace(t.Name) != ""
}

// SameOrigin reports whether two tasks share the fields that never change
// after creation. A list file cannot tell such tasks apart.
func (t Task) SameOrigin(other Task) bool {
	return t.Name == other.Name && t.CreatedAt == other.CreatedAt
}

// idNamespace scopes derived task identifiers.
var idNamespace = uuid.MustParse("6f1c2a4e-9d3b-5e7a-8c21-4b5d6e7f8a90")

// DeriveID returns a stable identifier for a task from the fields that never
// change after creation. twins is the number of tasks sharing that origin and
// occurrence is the task's position among them, so removing one twin gives
// every survivor an identifier that was never handed out for the larger set.
func DeriveID(name, createdAt string, occurrence, twins int) string {
	key := createdAt + "\x00" + name + "\x00" + strconv.Itoa(occurrence) + "/" + strconv.Itoa(twins)
	return uuid.NewSHA1(idNamespace, []byte(key)).String()
}

// ShortID returns the abbreviated identifier shown in listings.
func (t Task) ShortID() string {
	if len(t.ID) <= 8 {
		return t.ID
	}
	return t.ID[:8]
}

// String returns the task name for display purposes.
func (t Task) String() string {
	return t.Name
}
