package cli

import (
	"context"
	"fmt"

	"task-list/internal/web"
)

// ServeCommand handles the serve command
type ServeCommand struct {
	app  *App
	addr string
}

// NewServeCommand creates a new serve command handler. An empty addr uses the configured address.
func NewServeCommand(app *App, addr string) *ServeCommand {
	if addr == "" {
		addr = app.config.Server.Addr
	}
	return &ServeCommand{app: app, addr: addr}
}

// Execute serves the HTTP API until ctx is canceled
func (c *ServeCommand) Execute(ctx context.Context, args []string) error {
	server := web.NewServer(c.app.businessAPI, c.app.logger)
	fmt.Fprintf(c.app.out, "Serving task list on http://%s\n", c.addr)
	return server.ListenAndServe(ctx, c.addr)
}
