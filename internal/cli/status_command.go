package cli

import (
	"context"
	"fmt"

	"task-list/internal/api"
	"task-list/internal/domain"
	"task-list/internal/errors"
)

// StatusAction selects what a StatusCommand does to a task
type StatusAction string

const (
	ActionToggle   StatusAction = "toggle"
	ActionComplete StatusAction = "done"
	ActionReopen   StatusAction = "reopen"
)

// StatusCommand handles the toggle, done and reopen commands
type StatusCommand struct {
	app          *App
	businessAPI  api.BusinessAPI
	errorHandler *ErrorHandler
	action       StatusAction
}

// NewStatusCommand creates a new status command handler
func NewStatusCommand(app *App, action StatusAction) *StatusCommand {
	return &StatusCommand{
		app:          app,
		businessAPI:  app.businessAPI,
		errorHandler: NewErrorHandler(),
		action:       action,
	}
}

// Execute runs the status command
func (c *StatusCommand) Execute(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.NewInvalidInputError("command", string(c.action), fmt.Sprintf("usage: tl %s <id>", c.action))
	}

	var (
		task *domain.Task
		err  error
	)
	switch c.action {
	case ActionComplete:
		task, err = c.businessAPI.CompleteTask(ctx, args[0])
	case ActionReopen:
		task, err = c.businessAPI.ReopenTask(ctx, args[0])
	default:
		task, err = c.businessAPI.ToggleTask(ctx, args[0])
	}

	if err != nil {
		if c.errorHandler.IsNotFoundError(err) {
			printNotFound(c.app, args[0])
			return nil
		}
		return c.errorHandler.Handle(string(c.action)+" task", err)
	}

	fmt.Fprintf(c.app.out, "%s %s\n", checkbox(*task), task.Name)
	return nil
}

// printNotFound reports an unknown id. Unknown ids are a no-op, not a failure.
func printNotFound(app *App, ref string) {
	fmt.Fprintf(app.out, "No task with id %q.\n", ref)
}
