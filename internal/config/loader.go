package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment variable read by the loader
const EnvPrefix = "TL"

// Loader handles loading configuration from multiple sources
type Loader struct {
	fs         afero.Fs
	configFile string
	explicit   bool
}

// LoaderOption configures a Loader
type LoaderOption func(*Loader)

// WithFs sets the filesystem the config file is read from
func WithFs(fs afero.Fs) LoaderOption {
	return func(l *Loader) {
		l.fs = fs
	}
}

// WithConfigFile sets an explicit config file. A missing explicit file is an error.
func WithConfigFile(path string) LoaderOption {
	return func(l *Loader) {
		if path != "" {
			l.configFile = path
			l.explicit = true
		}
	}
}

// NewLoader creates a new configuration loader
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		fs:         afero.NewOsFs(),
		configFile: DefaultConfigPath(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/tl/config.yaml (or the platform equivalent)
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "tl", "config.yaml")
}

// Load loads configuration using the cascading strategy:
// 1. Start with defaults
// 2. Override with the YAML config file, if present
// 3. Override with TL_ environment variables
// 4. Override with command line flags (LoadWithOverrides)
func (l *Loader) Load() (*Config, error) {
	cfg := NewConfig()

	v := viper.New()
	v.SetFs(l.fs)
	setDefaults(v, cfg)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := l.readConfigFile(v); err != nil {
		return nil, err
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadWithOverrides loads configuration and applies command line overrides
func (l *Loader) LoadWithOverrides(overrides *ConfigOverrides) (*Config, error) {
	config, err := l.Load()
	if err != nil {
		return nil, err
	}

	if overrides != nil {
		overrides.Apply(config)
	}

	// Re-validate after applying overrides
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (l *Loader) readConfigFile(v *viper.Viper) error {
	if l.configFile == "" {
		return nil
	}

	exists, err := afero.Exists(l.fs, l.configFile)
	if err != nil {
		return fmt.Errorf("failed to check config file %s: %w", l.configFile, err)
	}
	if !exists {
		if l.explicit {
			return &ConfigError{Field: "config", Message: "config file not found: " + l.configFile}
		}
		return nil
	}

	v.SetConfigFile(l.configFile)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", l.configFile, err)
	}
	return nil
}

// setDefaults registers every key so AutomaticEnv can resolve it during Unmarshal.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("storage.backend", cfg.Storage.Backend)
	v.SetDefault("storage.dir", cfg.Storage.Dir)
	v.SetDefault("storage.filename", cfg.Storage.Filename)
	v.SetDefault("storage.dir_permissions", cfg.Storage.DirPermissions)

	v.SetDefault("tasks.default_priority", cfg.Tasks.DefaultPriority)
	v.SetDefault("tasks.date_format", cfg.Tasks.DateFormat)
	v.SetDefault("tasks.name_max_length", cfg.Tasks.NameMaxLength)

	v.SetDefault("application.timeout", cfg.Application.Timeout)
	v.SetDefault("application.verbose", cfg.Application.Verbose)

	v.SetDefault("server.addr", cfg.Server.Addr)
}

// ConfigOverrides holds command line flag overrides
type ConfigOverrides struct {
	// Storage overrides
	StorageBackend  *string
	StorageDir      *string
	StorageFilename *string
	DirPermissions  *uint32

	// Task overrides
	DefaultPriority *string
	DateFormat      *string
	NameMaxLength   *int

	// Application overrides
	Timeout *time.Duration
	Verbose *bool

	// Server overrides
	ServerAddr *string
}

// Apply applies command line overrides to the configuration
func (o *ConfigOverrides) Apply(config *Config) {
	// Storage overrides
	if o.StorageBackend != nil {
		config.Storage.Backend = *o.StorageBackend
	}
	if o.StorageDir != nil {
		config.Storage.Dir = *o.StorageDir
	}
	if o.StorageFilename != nil {
		config.Storage.Filename = *o.StorageFilename
	}
	if o.DirPermissions != nil {
		config.Storage.DirPermissions = *o.DirPermissions
	}

	// Task overrides
	if o.DefaultPriority != nil {
		config.Tasks.DefaultPriority = *o.DefaultPriority
	}
	if o.DateFormat != nil {
		config.Tasks.DateFormat = *o.DateFormat
	}
	if o.NameMaxLength != nil {
		config.Tasks.NameMaxLength = *o.NameMaxLength
	}

	// Application overrides
	if o.Timeout != nil {
		config.Application.Timeout = *o.Timeout
	}
	if o.Verbose != nil {
		config.Application.Verbose = *o.Verbose
	}

	// Server overrides
	if o.ServerAddr != nil {
		config.Server.Addr = *o.ServerAddr
	}
}
