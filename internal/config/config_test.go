package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingOptionalFileUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(viper.New(), filepath.Join(t.TempDir(), "config.yaml"), false)
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	assert.Equal(t, filepath.Join("data", "todo.db"), cfg.StoragePath())
}

func TestLoad_MissingRequiredFileFails(t *testing.T) {
	t.Parallel()

	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "config.yaml"), true)
	require.Error(t, err)
}

func TestLoad_ReadsYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	writeTestFile(t, path, `storage:
  backend: json
  path: tasks.yaml
  busy_timeout: 250ms
log:
  file: ""
display:
  width: 80
`)

	cfg, err := Load(viper.New(), path, true)
	require.NoError(t, err)

	assert.Equal(t, BackendJSON, cfg.Storage.Backend)
	assert.Equal(t, "tasks.yaml", cfg.StoragePath())
	assert.Equal(t, 250*time.Millisecond, cfg.Storage.BusyTimeout)
	assert.Empty(t, cfg.Log.File)
	assert.Equal(t, 80, cfg.Display.Width)
}

func TestLoad_JSONBackendDefaultPath(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.json")
	writeTestFile(t, path, `{"storage": {"backend": "json"}}`)

	cfg, err := Load(viper.New(), path, true)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("data", "todo.json"), cfg.StoragePath())
}

func TestLoad_RejectsUnknownBackend(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	writeTestFile(t, path, "storage:\n  backend: postgres\n")

	_, err := Load(viper.New(), path, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `storage.backend: must be one of the following: "sqlite", "json", "mysql"`)
}

func TestLoad_RejectsUnknownKeys(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	writeTestFile(t, path, "colour: blue\n")

	_, err := Load(viper.New(), path, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: Additional property colour is not allowed")
}

func TestValidateSettings_ReportsEveryField(t *testing.T) {
	t.Parallel()

	err := ValidateSettings(map[string]any{
		"storage": map[string]any{"backend": "csv"},
		"display": map[string]any{"width": 5},
	})
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "invalid config: display.width: "), err.Error())
	assert.Contains(t, err.Error(), "; storage.backend: must be one of the following")

	require.NoError(t, ValidateSettings(map[string]any{"display": map[string]any{"width": 80}}))
}

func TestLoad_MySQLRequiresDSN(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	writeTestFile(t, path, "storage:\n  backend: mysql\n")

	_, err := Load(viper.New(), path, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage.dsn")
}

func TestDecode_OverrideBackend(t *testing.T) {
	t.Parallel()

	v := viper.New()
	SetDefaults(v)
	v.Set("storage.backend", "json")

	cfg, err := Decode(v)
	require.NoError(t, err)
	assert.Equal(t, BackendJSON, cfg.Storage.Backend)
}

func TestBackend_UnmarshalText(t *testing.T) {
	t.Parallel()

	var b Backend
	require.NoError(t, b.UnmarshalText([]byte("mysql")))
	assert.Equal(t, BackendMySQL, b)
	assert.Error(t, b.UnmarshalText([]byte("csv")))
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}
