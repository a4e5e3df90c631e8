package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"task-list/internal/api"
	"task-list/internal/config"
	"task-list/internal/logging"
)

// APIFactory opens the task list described by cfg. The returned close
// function releases the underlying store.
type APIFactory func(ctx context.Context, cfg *config.Config, logger *zap.Logger) (api.BusinessAPI, func() error, error)

// DefaultAPIFactory opens the configured store on fs
func DefaultAPIFactory(fs afero.Fs) APIFactory {
	return func(ctx context.Context, cfg *config.Config, logger *zap.Logger) (api.BusinessAPI, func() error, error) {
		repo, err := config.OpenRepository(ctx, cfg, fs, logger)
		if err != nil {
			return nil, nil, err
		}
		return api.NewBusinessAPI(repo, cfg.GetDefaultPriority()), repo.Close, nil
	}
}

// RootCommand represents the base command when called without any subcommands
type RootCommand struct {
	cmd        *cobra.Command
	factory    APIFactory
	loaderOpts []config.LoaderOption
	config     *config.Config
	app        *App
	closeFn    func() error
}

// NewRootCommand creates the root cobra command with global flags
func NewRootCommand(factory APIFactory, loaderOpts ...config.LoaderOption) *RootCommand {
	root := &RootCommand{
		factory:    factory,
		loaderOpts: loaderOpts,
	}

	root.cmd = &cobra.Command{
		Use:   "tl",
		Short: "A small personal task list",
		Long: `Task List (tl) keeps a single, local list of tasks with a status and a priority.

EXAMPLES:
  tl add "Write report" --priority high   # Add a task
  tl list                                 # Show all tasks, most urgent first
  tl list milk                            # Show tasks whose name contains "milk"
  tl toggle 1a2b                          # Flip a task between Open and Done
  tl clear                                # Remove every Done task
  tl serve                                # Serve the list as a JSON API

Tasks are addressed by the id shown in listings. Any unique prefix of at
least 4 characters is accepted.

CONFIGURATION:
  Configuration follows this priority order:
  command-line flags > environment variables > config file > defaults

  Config file: $XDG_CONFIG_HOME/tl/config.yaml (or --config)

  Environment:
    TL_STORAGE_BACKEND                     file or sqlite (default: file)
    TL_STORAGE_DIR                         Storage directory (default: ~/.tl)
    TL_STORAGE_FILENAME                    tasks.txt / tasks.db by default
    TL_TASKS_DEFAULT_PRIORITY              Priority of new tasks (default: Medium)
    TL_TASKS_DATE_FORMAT                   Creation date layout (default: 02.01.2006 15:04)
    TL_TASKS_NAME_MAX_LENGTH               Maximum task name length (default: 255)
    TL_APPLICATION_TIMEOUT                 Command timeout (default: 30s)
    TL_APPLICATION_VERBOSE                 Verbose logging (default: false)
    TL_SERVER_ADDR                         HTTP listen address (default: 127.0.0.1:8080)
    TL_DEBUG                               Debug logging`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || (cmd.HasParent() && cmd.Parent().Name() == "completion") {
				return nil
			}
			return root.setup(cmd)
		},
	}

	root.addGlobalFlags()
	root.addSubcommands()

	return root
}

// Execute runs the root command and releases the store afterwards
func (r *RootCommand) Execute() error {
	return r.ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with ctx and releases the store afterwards
func (r *RootCommand) ExecuteContext(ctx context.Context) error {
	err := r.cmd.ExecuteContext(ctx)
	if closeErr := r.close(); err == nil {
		err = closeErr
	}
	return err
}

// SetArgs sets the arguments used instead of os.Args
func (r *RootCommand) SetArgs(args []string) {
	r.cmd.SetArgs(args)
}

// SetOutput redirects command output and log output
func (r *RootCommand) SetOutput(out, errOut io.Writer) {
	r.cmd.SetOut(out)
	r.cmd.SetErr(errOut)
}

// addGlobalFlags adds global configuration flags
func (r *RootCommand) addGlobalFlags() {
	flags := r.cmd.PersistentFlags()

	flags.String("config", "", "Config file (default: $XDG_CONFIG_HOME/tl/config.yaml)")

	// Storage configuration
	flags.String("storage-backend", "", "Storage backend: file or sqlite (overrides TL_STORAGE_BACKEND)")
	flags.String("storage-dir", "", "Storage directory (overrides TL_STORAGE_DIR)")
	flags.String("storage-file", "", "Storage filename (overrides TL_STORAGE_FILENAME)")

	// Task configuration
	flags.String("default-priority", "", "Priority of new tasks (overrides TL_TASKS_DEFAULT_PRIORITY)")
	flags.String("date-format", "", "Creation date layout (overrides TL_TASKS_DATE_FORMAT)")
	flags.Int("name-max-length", 0, "Maximum task name length (overrides TL_TASKS_NAME_MAX_LENGTH)")

	// Application configuration
	flags.Duration("app-timeout", 0, "Command timeout (overrides TL_APPLICATION_TIMEOUT)")
	flags.BoolP("verbose", "v", false, "Enable verbose output (overrides TL_APPLICATION_VERBOSE)")
}

// addSubcommands adds all CLI subcommands to the root command
func (r *RootCommand) addSubcommands() {
	addCmd := &cobra.Command{
		Use:   "add [--priority high|medium|low] <name...>",
		Short: "Add a task",
		Long: `Add an open task. All arguments together form the name.

Names may not be empty or contain '|' or line breaks.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			priority, _ := cmd.Flags().GetString("priority")
			return r.run(cmd, NewAddCommand(r.app, priority), args)
		},
	}
	addCmd.Flags().StringP("priority", "p", "", "Task priority: high, medium or low (default from config)")

	toggleCmd := &cobra.Command{
		Use:   "toggle <id>",
		Short: "Flip a task between Open and Done",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, NewStatusCommand(r.app, ActionToggle), args)
		},
	}

	doneCmd := &cobra.Command{
		Use:   "done <id>",
		Short: "Mark a task Done",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, NewStatusCommand(r.app, ActionComplete), args)
		},
	}

	reopenCmd := &cobra.Command{
		Use:   "reopen <id>",
		Short: "Mark a task Open",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, NewStatusCommand(r.app, ActionReopen), args)
		},
	}

	rmCmd := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove", "delete"},
		Short:   "Remove a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, NewRemoveCommand(r.app), args)
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every Done task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, NewClearCommand(r.app), args)
		},
	}

	listCmd := &cobra.Command{
		Use:     "list [query...]",
		Aliases: []string{"ls"},
		Short:   "List tasks, most urgent first",
		Long: `List tasks sorted by priority (High, Medium, Low).

A query keeps only tasks whose name contains it, ignoring case.

Examples:
  tl list           # All tasks
  tl list milk      # Tasks containing "milk"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, NewListCommand(r.app), args)
		},
	}

	progressCmd := &cobra.Command{
		Use:   "progress",
		Short: "Show how many tasks are done",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, NewProgressCommand(r.app), args)
		},
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the task list as a JSON HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			// The server runs until interrupted, so the command timeout does not apply.
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return NewServeCommand(r.app, addr).Execute(ctx, args)
		},
	}
	serveCmd.Flags().String("addr", "", "Listen address (overrides TL_SERVER_ADDR)")

	r.cmd.AddCommand(
		addCmd,
		toggleCmd,
		doneCmd,
		reopenCmd,
		rmCmd,
		clearCmd,
		listCmd,
		progressCmd,
		serveCmd,
	)
}

// Command is implemented by every command handler
type Command interface {
	Execute(ctx context.Context, args []string) error
}

func (r *RootCommand) run(cmd *cobra.Command, handler Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), r.getAppTimeout())
	defer cancel()
	return handler.Execute(ctx, args)
}

// setup loads configuration, applies flag overrides and opens the task list
func (r *RootCommand) setup(cmd *cobra.Command) error {
	overrides, err := overridesFromFlags(cmd.Flags())
	if err != nil {
		return err
	}

	configFile, _ := cmd.Flags().GetString("config")
	opts := append(append([]config.LoaderOption{}, r.loaderOpts...), config.WithConfigFile(configFile))
	cfg, err := config.NewLoader(opts...).LoadWithOverrides(overrides)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	r.config = cfg

	logger := logging.New(logging.Options{
		Verbose: cfg.Application.Verbose,
		Output:  cmd.ErrOrStderr(),
	})

	ctx, cancel := context.WithTimeout(cmd.Context(), r.getAppTimeout())
	defer cancel()

	businessAPI, closeFn, err := r.factory(ctx, cfg, logger)
	if err != nil {
		return NewErrorHandler().Handle("open task list", err)
	}
	r.closeFn = closeFn
	r.app = NewApp(businessAPI, cfg, cmd.OutOrStdout(), logger)

	logger.Debug("task list opened",
		zap.String("backend", cfg.Storage.Backend),
		zap.String("path", cfg.GetStoragePath()))
	return nil
}

func (r *RootCommand) close() error {
	if r.closeFn == nil {
		return nil
	}
	closeFn := r.closeFn
	r.closeFn = nil
	if r.app != nil {
		defer r.app.logger.Sync()
	}
	return closeFn()
}

// getAppTimeout returns the configured application timeout
func (r *RootCommand) getAppTimeout() time.Duration {
	if r.config != nil {
		return r.config.Application.Timeout
	}
	return 30 * time.Second
}

// overridesFromFlags collects the global flags the user actually set
func overridesFromFlags(flags *pflag.FlagSet) (*config.ConfigOverrides, error) {
	overrides := &config.ConfigOverrides{}

	stringFlags := map[string]**string{
		"storage-backend":  &overrides.StorageBackend,
		"storage-dir":      &overrides.StorageDir,
		"storage-file":     &overrides.StorageFilename,
		"default-priority": &overrides.DefaultPriority,
		"date-format":      &overrides.DateFormat,
	}
	for name, target := range stringFlags {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetString(name)
		if err != nil {
			return nil, err
		}
		*target = &value
	}

	if flags.Changed("name-max-length") {
		value, err := flags.GetInt("name-max-length")
		if err != nil {
			return nil, err
		}
		overrides.NameMaxLength = &value
	}
	if flags.Changed("app-timeout") {
		value, err := flags.GetDuration("app-timeout")
		if err != nil {
			return nil, err
		}
		overrides.Timeout = &value
	}
	if flags.Changed("verbose") {
		value, err := flags.GetBool("verbose")
		if err != nil {
			return nil, err
		}
		overrides.Verbose = &value
	}

	return overrides, nil
}
