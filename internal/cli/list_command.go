package cli

import (
	"context"
	"fmt"
	"strings"

	"task-list/internal/api"
	"task-list/internal/views"
)

// ListCommand handles the list command
type ListCommand struct {
	app          *App
	businessAPI  api.BusinessAPI
	errorHandler *ErrorHandler
}

// NewListCommand creates a new list command handler
func NewListCommand(app *App) *ListCommand {
	return &ListCommand{
		app:          app,
		businessAPI:  app.businessAPI,
		errorHandler: NewErrorHandler(),
	}
}

// Execute runs the list command. All arguments together form the search query.
func (c *ListCommand) Execute(ctx context.Context, args []string) error {
	view, err := c.businessAPI.GetView(ctx, strings.Join(args, " "))
	if err != nil {
		return c.errorHandler.Handle("list tasks", err)
	}

	printView(c.app.out, view)
	return nil
}

// ProgressCommand handles the progress command
type ProgressCommand struct {
	app          *App
	businessAPI  api.BusinessAPI
	errorHandler *ErrorHandler
}

// NewProgressCommand creates a new progress command handler
func NewProgressCommand(app *App) *ProgressCommand {
	return &ProgressCommand{
		app:          app,
		businessAPI:  app.businessAPI,
		errorHandler: NewErrorHandler(),
	}
}

// Execute runs the progress command
func (c *ProgressCommand) Execute(ctx context.Context, args []string) error {
	progress, err := c.businessAPI.GetProgress(ctx)
	if err != nil {
		return c.errorHandler.Handle("compute progress", err)
	}

	if progress.Total == 0 {
		fmt.Fprintln(c.app.out, views.EmptyList.Message())
		return nil
	}
	fmt.Fprintln(c.app.out, progress.String())
	return nil
}
