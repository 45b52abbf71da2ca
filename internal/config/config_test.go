package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/feedlist/internal/config"
	"github.com/rshade/feedlist/internal/rows"
	"github.com/rshade/feedlist/internal/scroll"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

// TestNew tests that defaults validate.
func TestNew(t *testing.T) {
	cfg := config.New()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, config.CurrentVersion, cfg.Version)
	assert.Equal(t, "id", cfg.List.KeyField)
	assert.Equal(t, "top", cfg.List.Anchor)
	assert.Equal(t, config.DefaultPageSize, cfg.Feed.PageSize)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

// TestLoad tests reading a config file over the defaults.
func TestLoad(t *testing.T) {
	t.Setenv(config.EnvLogLevel, "")
	t.Setenv(config.EnvLogFormat, "")
	t.Setenv(config.EnvAnchor, "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, `version: "1.2.0"
list:
  group_by: channel
  order_by: "ts:desc"
  anchor: bottom
  default_groups: [general, random]
feed:
  page_size: 20
  latency: 150ms
logging:
  level: debug
  format: json
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, path, cfg.Path())
	assert.Equal(t, "channel", cfg.List.GroupBy)
	assert.Equal(t, []any{"general", "random"}, cfg.List.DefaultGroups)
	assert.Equal(t, 20, cfg.Feed.PageSize)
	assert.Equal(t, 150*time.Millisecond, cfg.Feed.Latency)
	assert.Equal(t, "debug", cfg.Logging.Level)

	anchor, err := cfg.List.ScrollAnchor()
	require.NoError(t, err)
	assert.Equal(t, scroll.AnchorBottom, anchor)
}

// TestLoad_Missing tests the explicit and default missing-file paths.
func TestLoad_Missing(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.ErrorIs(t, err, config.ErrConfigNotFound)

	t.Setenv(config.EnvHome, t.TempDir())
	t.Setenv(config.EnvConfig, "")
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.DefaultPageSize, cfg.Feed.PageSize)
	assert.Empty(t, cfg.Path())
}

// TestLoad_Malformed tests that YAML syntax errors surface.
func TestLoad_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "list: [unterminated")

	_, err := config.Load(path)
	require.ErrorContains(t, err, "parsing config file")
}

// TestApplyEnv tests environment overrides.
func TestApplyEnv(t *testing.T) {
	t.Setenv(config.EnvLogLevel, "trace")
	t.Setenv(config.EnvLogFormat, "json")
	t.Setenv(config.EnvAnchor, "bottom")

	cfg := config.New()
	cfg.ApplyEnv()

	assert.Equal(t, "trace", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "bottom", cfg.List.Anchor)
}

// TestValidate tests the per-section checks.
func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr error
		errMsg  string
	}{
		{name: "defaults", mutate: func(*config.Config) {}},
		{name: "empty version", mutate: func(c *config.Config) { c.Version = "" }},
		{
			name:    "future major version",
			mutate:  func(c *config.Config) { c.Version = "2.0.0" },
			wantErr: config.ErrIncompatibleVersion,
		},
		{name: "garbage version", mutate: func(c *config.Config) { c.Version = "one" }, errMsg: "invalid config version"},
		{
			name:    "bad anchor",
			mutate:  func(c *config.Config) { c.List.Anchor = "middle" },
			wantErr: config.ErrInvalidAnchor,
		},
		{
			name:    "bad order",
			mutate:  func(c *config.Config) { c.List.OrderBy = "ts:sideways" },
			wantErr: rows.ErrInvalidDirection,
		},
		{
			name:    "negative overscan",
			mutate:  func(c *config.Config) { c.List.Overscan = -1 },
			wantErr: config.ErrNegativeSetting,
		},
		{
			name:    "zero page size",
			mutate:  func(c *config.Config) { c.Feed.PageSize = 0 },
			wantErr: config.ErrInvalidPageSize,
		},
		{
			name:    "bad log format",
			mutate:  func(c *config.Config) { c.Logging.Format = "xml" },
			wantErr: config.ErrInvalidLogFormat,
		},
		{name: "bad log level", mutate: func(c *config.Config) { c.Logging.Level = "loud" }, errMsg: "level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New()
			tt.mutate(cfg)
			err := cfg.Validate()
			switch {
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
			case tt.errMsg != "":
				require.ErrorContains(t, err, tt.errMsg)
			default:
				require.NoError(t, err)
			}
		})
	}

	var nilCfg *config.Config
	require.ErrorIs(t, nilCfg.Validate(), config.ErrNilConfig)
}

// TestSave tests that a saved config loads back.
func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := config.New()
	cfg.List.GroupBy = "channel"

	require.NoError(t, cfg.Save(path))
	assert.Equal(t, path, cfg.Path())

	loaded, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "channel", loaded.List.GroupBy)

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

// TestProjectOptions tests the conversion into projection options.
func TestProjectOptions(t *testing.T) {
	lc := config.DefaultListConfig()
	lc.GroupBy = "g"
	lc.OrderBy = "v:desc"
	lc.Limit = 3

	opts, err := lc.ProjectOptions(nil)
	require.NoError(t, err)
	assert.Equal(t, "g", opts.GroupBy)
	assert.Equal(t, 3, opts.Limit)
	assert.Equal(t, []rows.OrderKey{{Field: "v", Direction: "desc"}}, opts.OrderBy)
	assert.True(t, opts.GroupsInitiallyExpanded)

	lc.OrderBy = ","
	_, err = lc.ProjectOptions(nil)
	require.ErrorIs(t, err, rows.ErrEmptyOrderExpression)
}

// TestToLoggingConfig tests the file/stderr output switch.
func TestToLoggingConfig(t *testing.T) {
	lc := config.LoggingConfig{Level: "info", Format: "json"}
	assert.Equal(t, "stderr", lc.ToLoggingConfig().Output)

	lc.File = "/tmp/feedlist.log"
	got := lc.ToLoggingConfig()
	assert.Equal(t, "file", got.Output)
	assert.Equal(t, "/tmp/feedlist.log", got.File)
}

// TestGlobalConfig tests the singleton accessors.
func TestGlobalConfig(t *testing.T) {
	t.Cleanup(config.ResetGlobalConfigForTest)
	config.ResetGlobalConfigForTest()

	def := config.GetGlobalConfig()
	require.NotNil(t, def)
	assert.Same(t, def, config.GetGlobalConfig())

	custom := config.New()
	config.SetGlobalConfig(custom)
	assert.Same(t, custom, config.GetGlobalConfig())
}

// TestResolvedProjectDir tests that the recorded project dir is cleared by the reset.
func TestResolvedProjectDir(t *testing.T) {
	t.Cleanup(config.ResetGlobalConfigForTest)

	config.SetResolvedProjectDir("/work/.feedlist")
	assert.Equal(t, "/work/.feedlist", config.GetResolvedProjectDir())
	assert.Equal(t, filepath.Join("/work/.feedlist", "config.yaml"), config.ProjectConfigPath("/work/.feedlist"))

	config.ResetGlobalConfigForTest()
	assert.Empty(t, config.GetResolvedProjectDir())
}
