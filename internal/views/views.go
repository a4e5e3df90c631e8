// Package views derives what is shown from the task collection.
// All functions are pure and never modify their input.
package views

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"task-list/internal/domain"
)

// EmptyState tells a renderer why a view has no rows.
type EmptyState string

const (
	EmptyNone    EmptyState = ""
	EmptyList    EmptyState = "empty_list"
	EmptyNoMatch EmptyState = "no_match"
)

const (
	emptyListMessage = "Your list is empty."
	noMatchMessage   = "No task matches your search."
)

// Message returns the user-facing text for the state, or "" for EmptyNone.
func (s EmptyState) Message() string {
	switch s {
	case EmptyList:
		return emptyListMessage
	case EmptyNoMatch:
		return noMatchMessage
	default:
		return ""
	}
}

// Progress summarizes completion over a set of tasks.
type Progress struct {
	Done     int     `json:"done"`
	Total    int     `json:"total"`
	Fraction float64 `json:"fraction"`
}

// Percent returns the completion rounded down to a whole percentage.
func (p Progress) Percent() int {
	return int(p.Fraction * 100)
}

// String renders the progress line shown under the list.
func (p Progress) String() string {
	return fmt.Sprintf("Progress: %d of %d tasks done (%d%%)", p.Done, p.Total, p.Percent())
}

// View is the derived, display-ready state for one query.
type View struct {
	Query      string        `json:"query"`
	Tasks      []domain.Task `json:"tasks"`
	Progress   Progress      `json:"progress"`
	EmptyState EmptyState    `json:"empty_state,omitempty"`
	Message    string        `json:"message,omitempty"`
}

// FilterBySearch returns the tasks whose name contains query, ignoring case.
// An empty query returns every task in the same order.
func FilterBySearch(tasks []domain.Task, query string) []domain.Task {
	out := make([]domain.Task, 0, len(tasks))
	if query == "" {
		return append(out, tasks...)
	}

	fold := cases.Fold()
	needle := fold.String(query)
	for _, t := range tasks {
		if strings.Contains(fold.String(t.Name), needle) {
			out = append(out, t)
		}
	}
	return out
}

// SortByPriority returns a copy ordered High, Medium, Low. Tasks with the same
// rank keep their relative order; unknown priorities sort with Low.
func SortByPriority(tasks []domain.Task) []domain.Task {
	out := make([]domain.Task, len(tasks))
	copy(out, tasks)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority.Rank() < out[j].Priority.Rank()
	})
	return out
}

// ComputeProgress counts done tasks. Fraction is 0 for an empty list.
func ComputeProgress(tasks []domain.Task) Progress {
	p := Progress{Total: len(tasks)}
	for _, t := range tasks {
		if t.IsDone() {
			p.Done++
		}
	}
	if p.Total > 0 {
		p.Fraction = float64(p.Done) / float64(p.Total)
	}
	return p
}

// Build filters all by query, sorts the result by priority and computes progress
// over the whole collection.
func Build(all []domain.Task, query string) View {
	tasks := SortByPriority(FilterBySearch(all, query))

	state := EmptyNone
	switch {
	case len(all) == 0:
		state = EmptyList
	case len(tasks) == 0:
		state = EmptyNoMatch
	}

	return View{
		Query:      query,
		Tasks:      tasks,
		Progress:   ComputeProgress(all),
		EmptyState: state,
		Message:    state.Message(),
	}
}
