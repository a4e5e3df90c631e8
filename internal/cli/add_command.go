package cli

import (
	"context"
	"fmt"
	"strings"

	"task-list/internal/api"
	"task-list/internal/errors"
)

// AddCommand handles the add command
type AddCommand struct {
	app          *App
	businessAPI  api.BusinessAPI
	errorHandler *ErrorHandler
	priority     string
}

// NewAddCommand creates a new add command handler. An empty priority uses the configured default.
func NewAddCommand(app *App, priority string) *AddCommand {
	return &AddCommand{
		app:          app,
		businessAPI:  app.businessAPI,
		errorHandler: NewErrorHandler(),
		priority:     priority,
	}
}

// Execute runs the add command
func (c *AddCommand) Execute(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.NewInvalidInputError("command", "add", "usage: tl add [--priority high|medium|low] <name>")
	}

	priority := c.priority
	if priority == "" {
		priority = c.app.config.Tasks.DefaultPriority
	}

	task, err := c.businessAPI.AddTask(ctx, strings.Join(args, " "), priority)
	if err != nil {
		return c.errorHandler.Handle("add task", err)
	}

	fmt.Fprintf(c.app.out, "Added task %s: %s (Prio: %s)\n", task.ShortID(), task.Name, task.Priority)
	return nil
}
