package config

import (
	"os"
	"path/filepath"
	"time"

	"task-list/internal/domain"
	"task-list/internal/validation"
)

// Storage backends
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Config holds all configuration options for the task list application
type Config struct {
	Storage     StorageConfig     `mapstructure:"storage"`
	Tasks       TasksConfig       `mapstructure:"tasks"`
	Application ApplicationConfig `mapstructure:"application"`
	Server      ServerConfig      `mapstructure:"server"`
}

// StorageConfig holds persistence configuration
type StorageConfig struct {
	Backend        string `mapstructure:"backend"`
	Dir            string `mapstructure:"dir"`
	Filename       string `mapstructure:"filename"`
	DirPermissions uint32 `mapstructure:"dir_permissions"`
}

// TasksConfig holds task creation rules
type TasksConfig struct {
	DefaultPriority string `mapstructure:"default_priority"`
	DateFormat      string `mapstructure:"date_format"`
	NameMaxLength   int    `mapstructure:"name_max_length"`
}

// ApplicationConfig holds application-level configuration
type ApplicationConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
	Verbose bool          `mapstructure:"verbose"`
}

// ServerConfig holds the HTTP surface configuration
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// NewConfig creates a new configuration with sensible defaults
func NewConfig() *Config {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	return &Config{
		Storage: StorageConfig{
			Backend:        BackendFile,
			Dir:            filepath.Join(homeDir, ".tl"),
			Filename:       "",
			DirPermissions: 0755,
		},
		Tasks: TasksConfig{
			DefaultPriority: string(domain.PriorityMedium),
			DateFormat:      domain.CreatedAtLayout,
			NameMaxLength:   validation.DefaultNameMaxLength,
		},
		Application: ApplicationConfig{
			Timeout: 30 * time.Second,
			Verbose: false,
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8080",
		},
	}
}

// GetStorageFilename returns the configured filename, or the backend's default name
func (c *Config) GetStorageFilename() string {
	if c.Storage.Filename != "" {
		return c.Storage.Filename
	}
	if c.Storage.Backend == BackendSQLite {
		return "tasks.db"
	}
	return "tasks.txt"
}

// GetStoragePath returns the full path to the backing file
func (c *Config) GetStoragePath() string {
	return filepath.Join(c.Storage.Dir, c.GetStorageFilename())
}

// GetDefaultPriority returns the priority used when none is given
func (c *Config) GetDefaultPriority() domain.Priority {
	p, _ := domain.ParsePriority(c.Tasks.DefaultPriority)
	return p
}

// Validate validates the configuration and returns any errors
func (c *Config) Validate() error {
	// Validate storage configuration
	if c.Storage.Backend != BackendFile && c.Storage.Backend != BackendSQLite {
		return &ConfigError{Field: "storage.backend", Message: "backend must be one of file, sqlite"}
	}
	if c.Storage.Dir == "" {
		return &ConfigError{Field: "storage.dir", Message: "storage directory cannot be empty"}
	}
	if c.Storage.DirPermissions == 0 || c.Storage.DirPermissions > 0777 {
		return &ConfigError{Field: "storage.dir_permissions", Message: "directory permissions must be between 0001 and 0777"}
	}

	// Validate task configuration
	if !c.GetDefaultPriority().IsKnown() {
		return &ConfigError{Field: "tasks.default_priority", Message: "default priority must be one of High, Medium, Low"}
	}
	if c.Tasks.DateFormat == "" {
		return &ConfigError{Field: "tasks.date_format", Message: "date format cannot be empty"}
	}
	if v := validation.NewValidator(); v.ContainsFieldDelimiter(c.Tasks.DateFormat) || v.ContainsLineBreak(c.Tasks.DateFormat) {
		return &ConfigError{Field: "tasks.date_format", Message: "date format must not contain '" + validation.FieldDelimiter + "' or line breaks"}
	}
	if c.Tasks.NameMaxLength < 1 {
		return &ConfigError{Field: "tasks.name_max_length", Message: "task name maximum length must be at least 1"}
	}

	// Validate application configuration
	if c.Application.Timeout <= 0 {
		return &ConfigError{Field: "application.timeout", Message: "application timeout must be positive"}
	}

	// Validate server configuration
	if c.Server.Addr == "" {
		return &ConfigError{Field: "server.addr", Message: "server address cannot be empty"}
	}

	return nil
}

// ConfigError represents a configuration validation error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
