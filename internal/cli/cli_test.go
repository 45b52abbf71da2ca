package cli_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/rshade/feedlist/internal/cli"
	"github.com/rshade/feedlist/internal/config"
)

const channelFeed = `items:
  - {id: 1, title: deploy, channel: ops}
  - {id: 2, title: lunch, channel: social}
  - {id: 3, title: rollback, channel: ops}
`

// setupCLITest isolates the config home, the project lookup and global state.
func setupCLITest(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv(config.EnvHome, home)
	t.Setenv(config.EnvConfig, "")
	t.Setenv(config.EnvProjectDir, "")
	t.Setenv(config.EnvAnchor, "")
	t.Setenv(config.EnvLogLevel, "error")
	t.Chdir(t.TempDir())
	t.Cleanup(config.ResetGlobalConfigForTest)
	return home
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	cmd := cli.NewRootCmd("test")
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func requireExitCode(t *testing.T, err error, code int) {
	t.Helper()
	var exitErr *cli.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, code, exitErr.ExitCode)
}

func TestRootCmd_Help(t *testing.T) {
	setupCLITest(t)

	out, err := runCLI(t, "--help")
	require.NoError(t, err)
	for _, sub := range []string{"view", "rows", "config"} {
		assert.Contains(t, out, sub)
	}
}

func TestRootCmd_MissingExplicitConfig(t *testing.T) {
	setupCLITest(t)
	feedPath := writeFile(t, "feed.yaml", channelFeed)

	_, err := runCLI(t, "--config", filepath.Join(t.TempDir(), "nope.yaml"), "rows", feedPath)
	require.ErrorIs(t, err, config.ErrConfigNotFound)
}

func TestRows_Table(t *testing.T) {
	setupCLITest(t)
	feedPath := writeFile(t, "feed.yaml", channelFeed)

	out, err := runCLI(t, "rows", feedPath, "--group-by", "channel")
	require.NoError(t, err)

	assert.Contains(t, out, "Index")
	assert.Contains(t, out, "header")
	assert.Contains(t, out, "Ops (2 items)")
	assert.Contains(t, out, "rollback")
	assert.Contains(t, out, "footer")
	assert.NotContains(t, out, "Page ")
}

func TestRows_JSONCollapsed(t *testing.T) {
	setupCLITest(t)
	feedPath := writeFile(t, "feed.yaml", channelFeed)

	out, err := runCLI(t, "rows", feedPath, "--group-by", "channel", "--collapse", "ops", "-o", "json")
	require.NoError(t, err)

	var doc struct {
		Rows []struct {
			Kind  string `json:"kind"`
			Group string `json:"group"`
			Text  string `json:"text"`
			Count int    `json:"count"`
		} `json:"rows"`
		Pagination *json.RawMessage `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))

	kinds := make([]string, 0, len(doc.Rows))
	for _, r := range doc.Rows {
		kinds = append(kinds, r.Kind)
	}
	assert.Equal(t, []string{"header", "header", "item", "footer"}, kinds)
	assert.Equal(t, "ops", doc.Rows[0].Group)
	assert.Equal(t, 2, doc.Rows[0].Count)
	assert.Equal(t, "lunch", doc.Rows[2].Text)
	assert.Nil(t, doc.Pagination)
}

func TestRows_YAMLPaginated(t *testing.T) {
	setupCLITest(t)
	feedPath := writeFile(t, "feed.yaml", channelFeed)

	out, err := runCLI(t, "rows", feedPath, "--group-by", "channel", "--page", "2", "--page-size", "3", "-o", "yaml")
	require.NoError(t, err)

	var doc cli.RowsOutput
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	require.Len(t, doc.Rows, 3)
	assert.Equal(t, 3, doc.Rows[0].Index)
	assert.Equal(t, "footer", doc.Rows[0].Kind)
	require.NotNil(t, doc.Pagination)
	assert.Equal(t, 2, doc.Pagination.CurrentPage)
	assert.Equal(t, 3, doc.Pagination.TotalPages)
	assert.Equal(t, 7, doc.Pagination.TotalItems)
	assert.Equal(t, 3, doc.Feed.TotalItems)
}

func TestRows_FeedPagingFromConfig(t *testing.T) {
	setupCLITest(t)
	feedPath := writeFile(t, "feed.yaml", channelFeed)
	cfgPath := writeFile(t, "config.yaml", "feed:\n  page_size: 2\n")

	out, err := runCLI(t, "--config", cfgPath, "rows", feedPath, "-o", "json")
	require.NoError(t, err)

	var doc cli.RowsOutput
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Len(t, doc.Rows, 2)
	assert.Equal(t, 2, doc.Feed.LoadedItems)
	assert.True(t, doc.Feed.HasNext)

	out, err = runCLI(t, "--config", cfgPath, "rows", feedPath, "--all", "-o", "json")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Len(t, doc.Rows, 3)
	assert.False(t, doc.Feed.HasNext)
}

func TestRows_InvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{name: "unsupported format", args: []string{"-o", "xml"}, wantErr: cli.ErrUnsupportedFormat},
		{name: "page without size", args: []string{"--page", "2"}},
		{name: "bad order", args: []string{"--order-by", "time:sideways"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupCLITest(t)
			feedPath := writeFile(t, "feed.yaml", channelFeed)

			_, err := runCLI(t, append([]string{"rows", feedPath}, tt.args...)...)
			requireExitCode(t, err, cli.ExitCodeInvalidInput)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestRows_MissingFeed(t *testing.T) {
	setupCLITest(t)

	_, err := runCLI(t, "rows", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	var exitErr *cli.ExitError
	assert.False(t, errors.As(err, &exitErr))
}

func TestView_Plain(t *testing.T) {
	setupCLITest(t)
	feedPath := writeFile(t, "feed.yaml", channelFeed)

	out, err := runCLI(t, "view", feedPath, "--plain", "--group-by", "channel", "--order-by", "title")
	require.NoError(t, err)
	assert.Contains(t, out, "Ops")
	assert.Less(t, strings.Index(out, "deploy"), strings.Index(out, "rollback"))
	assert.Contains(t, out, "lunch")
}

func TestView_PlainEmpty(t *testing.T) {
	setupCLITest(t)
	feedPath := writeFile(t, "feed.yaml", "items: []\n")

	out, err := runCLI(t, "view", feedPath, "--plain")
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestView_InvalidFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{name: "jump", args: []string{"--jump", "middle"}, wantErr: cli.ErrInvalidJump},
		{name: "anchor", args: []string{"--anchor", "sideways"}, wantErr: config.ErrInvalidAnchor},
		{name: "page size", args: []string{"--page-size", "0"}, wantErr: config.ErrInvalidPageSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupCLITest(t)
			feedPath := writeFile(t, "feed.yaml", channelFeed)

			_, err := runCLI(t, append([]string{"view", feedPath, "--plain"}, tt.args...)...)
			requireExitCode(t, err, cli.ExitCodeInvalidInput)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestConfigInit_Global(t *testing.T) {
	home := setupCLITest(t)
	target := filepath.Join(home, "config.yaml")

	out, err := runCLI(t, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration initialized at "+target)
	_, err = os.Stat(target)
	require.NoError(t, err)

	_, err = runCLI(t, "config", "init")
	require.ErrorIs(t, err, cli.ErrConfigExists)

	_, err = runCLI(t, "config", "init", "--force")
	require.NoError(t, err)

	loaded, err := config.Load(target)
	require.NoError(t, err)
	assert.Equal(t, config.CurrentVersion, loaded.Version)
}

func TestConfigInit_Project(t *testing.T) {
	home := setupCLITest(t)
	projectDir := t.TempDir()

	_, err := runCLI(t, "--project-dir", projectDir, "config", "init")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(projectDir, ".feedlist", "config.yaml"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(home, "config.yaml"))
	assert.True(t, os.IsNotExist(err))

	_, err = runCLI(t, "--project-dir", projectDir, "config", "init", "--global")
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(home, "config.yaml"))
	assert.NoError(t, err)
}

func TestConfigValidate(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		setupCLITest(t)

		out, err := runCLI(t, "config", "validate", "--verbose")
		require.NoError(t, err)
		assert.Contains(t, out, "Configuration is valid")
		assert.Contains(t, out, "(defaults)")
		assert.Contains(t, out, "Anchor: top")
	})

	t.Run("invalid value", func(t *testing.T) {
		setupCLITest(t)
		cfgPath := writeFile(t, "config.yaml", "list:\n  anchor: sideways\n")

		_, err := runCLI(t, "--config", cfgPath, "config", "validate")
		requireExitCode(t, err, cli.ExitCodeInvalidInput)
		assert.ErrorIs(t, err, config.ErrInvalidAnchor)
	})

	t.Run("malformed file", func(t *testing.T) {
		setupCLITest(t)
		cfgPath := writeFile(t, "config.yaml", "list: [unclosed\n")

		out, err := runCLI(t, "--config", cfgPath, "config", "validate")
		requireExitCode(t, err, cli.ExitCodeInvalidInput)
		assert.Contains(t, out, "Warning:")
	})
}
