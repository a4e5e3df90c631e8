package cli

import (
	"fmt"
	"io"

	"task-list/internal/domain"
	"task-list/internal/views"
)

func checkbox(t domain.Task) string {
	if t.IsDone() {
		return "[x]"
	}
	return "[ ]"
}

// printTask writes one task as a row and a caption line:
//
//	[ ] Write report
//	    Prio: High | 05.03.2024 09:07 | id 1a2b3c4d
func printTask(w io.Writer, t domain.Task) {
	fmt.Fprintf(w, "%s %s\n", checkbox(t), t.Name)
	fmt.Fprintf(w, "    Prio: %s | %s | id %s\n", t.Priority, t.CreatedAt, t.ShortID())
}

func printView(w io.Writer, view *views.View) {
	if view.EmptyState != views.EmptyNone {
		fmt.Fprintln(w, view.Message)
	}
	for _, t := range view.Tasks {
		printTask(w, t)
	}
	if view.Progress.Total > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, view.Progress.String())
	}
}
