package config

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoader_Load(t *testing.T) {
	t.Run("should use defaults without file or environment", func(t *testing.T) {
		cfg, err := NewLoader(WithFs(afero.NewMemMapFs())).Load()
		require.NoError(t, err)
		assert.Equal(t, NewConfig(), cfg)
	})

	t.Run("should read the yaml config file", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		content := `
storage:
  backend: sqlite
  dir: /srv/tl
tasks:
  default_priority: high
  name_max_length: 80
application:
  timeout: 10s
server:
  addr: ":7000"
`
		require.NoError(t, afero.WriteFile(fs, "/etc/tl.yaml", []byte(content), 0o644))

		cfg, err := NewLoader(WithFs(fs), WithConfigFile("/etc/tl.yaml")).Load()
		require.NoError(t, err)
		assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
		assert.Equal(t, "/srv/tl", cfg.Storage.Dir)
		assert.Equal(t, "high", cfg.Tasks.DefaultPriority)
		assert.Equal(t, 80, cfg.Tasks.NameMaxLength)
		assert.Equal(t, 10*time.Second, cfg.Application.Timeout)
		assert.Equal(t, ":7000", cfg.Server.Addr)
		assert.Equal(t, NewConfig().Tasks.DateFormat, cfg.Tasks.DateFormat)
	})

	t.Run("should let the environment override the file", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "/etc/tl.yaml", []byte("storage:\n  dir: /from-file\n"), 0o644))
		t.Setenv("TL_STORAGE_DIR", "/from-env")
		t.Setenv("TL_APPLICATION_VERBOSE", "true")
		t.Setenv("TL_APPLICATION_TIMEOUT", "3s")

		cfg, err := NewLoader(WithFs(fs), WithConfigFile("/etc/tl.yaml")).Load()
		require.NoError(t, err)
		assert.Equal(t, "/from-env", cfg.Storage.Dir)
		assert.True(t, cfg.Application.Verbose)
		assert.Equal(t, 3*time.Second, cfg.Application.Timeout)
	})

	t.Run("should fail for a missing explicit file", func(t *testing.T) {
		_, err := NewLoader(WithFs(afero.NewMemMapFs()), WithConfigFile("/missing.yaml")).Load()
		var configErr *ConfigError
		require.ErrorAs(t, err, &configErr)
		assert.Equal(t, "config", configErr.Field)
	})

	t.Run("should reject invalid values", func(t *testing.T) {
		t.Setenv("TL_STORAGE_BACKEND", "postgres")

		_, err := NewLoader(WithFs(afero.NewMemMapFs())).Load()
		var configErr *ConfigError
		require.ErrorAs(t, err, &configErr)
		assert.Equal(t, "storage.backend", configErr.Field)
	})
}

func TestLoader_LoadWithOverrides(t *testing.T) {
	t.Setenv("TL_SERVER_ADDR", ":1111")
	addr := ":2222"

	cfg, err := NewLoader(WithFs(afero.NewMemMapFs())).LoadWithOverrides(&ConfigOverrides{ServerAddr: &addr})
	require.NoError(t, err)
	assert.Equal(t, ":2222", cfg.Server.Addr)

	empty := ""
	_, err = NewLoader(WithFs(afero.NewMemMapFs())).LoadWithOverrides(&ConfigOverrides{ServerAddr: &empty})
	assert.Error(t, err)
}
