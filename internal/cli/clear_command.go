package cli

import (
	"context"
	"fmt"

	"task-list/internal/api"
)

// ClearCommand handles the clear command
type ClearCommand struct {
	app          *App
	businessAPI  api.BusinessAPI
	errorHandler *ErrorHandler
}

// NewClearCommand creates a new clear command handler
func NewClearCommand(app *App) *ClearCommand {
	return &ClearCommand{
		app:          app,
		businessAPI:  app.businessAPI,
		errorHandler: NewErrorHandler(),
	}
}

// Execute runs the clear command
func (c *ClearCommand) Execute(ctx context.Context, args []string) error {
	removed, err := c.businessAPI.ClearCompleted(ctx)
	if err != nil {
		return c.errorHandler.Handle("clear completed tasks", err)
	}

	switch removed {
	case 0:
		fmt.Fprintln(c.app.out, "No completed tasks to clear.")
	case 1:
		fmt.Fprintln(c.app.out, "Cleared 1 completed task.")
	default:
		fmt.Fprintf(c.app.out, "Cleared %d completed tasks.\n", removed)
	}
	return nil
}
