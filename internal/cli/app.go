package cli

import (
	"io"
	"os"

	"go.uber.org/zap"

	"task-list/internal/api"
	"task-list/internal/config"
	"task-list/internal/logging"
)

// App holds what every command handler needs for one invocation
type App struct {
	businessAPI api.BusinessAPI
	config      *config.Config
	out         io.Writer
	logger      *zap.Logger
}

// NewApp creates a new CLI application instance with dependency injection
func NewApp(businessAPI api.BusinessAPI, cfg *config.Config, out io.Writer, logger *zap.Logger) *App {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	if out == nil {
		out = os.Stdout
	}
	return &App{
		businessAPI: businessAPI,
		config:      cfg,
		out:         out,
		logger:      logging.OrNop(logger),
	}
}
