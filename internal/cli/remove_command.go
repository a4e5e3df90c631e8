package cli

import (
	"context"
	"fmt"

	"task-list/internal/api"
	"task-list/internal/errors"
)

// RemoveCommand handles the rm command
type RemoveCommand struct {
	app          *App
	businessAPI  api.BusinessAPI
	errorHandler *ErrorHandler
}

// NewRemoveCommand creates a new rm command handler
func NewRemoveCommand(app *App) *RemoveCommand {
	return &RemoveCommand{
		app:          app,
		businessAPI:  app.businessAPI,
		errorHandler: NewErrorHandler(),
	}
}

// Execute runs the rm command
func (c *RemoveCommand) Execute(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.NewInvalidInputError("command", "rm", "usage: tl rm <id>")
	}

	task, err := c.businessAPI.RemoveTask(ctx, args[0])
	if err != nil {
		if c.errorHandler.IsNotFoundError(err) {
			printNotFound(c.app, args[0])
			return nil
		}
		return c.errorHandler.Handle("remove task", err)
	}

	fmt.Fprintf(c.app.out, "Removed task: %s\n", task.Name)
	return nil
}
