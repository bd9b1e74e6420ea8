package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "futu-algo")
}

func TestBadConfigPathFails(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"version", "--config", filepath.Join(t.TempDir(), "absent.yml")})

	assert.Error(t, cmd.Execute())
}

func TestAppInitLogLevelOverride(t *testing.T) {
	t.Parallel()

	app := &App{LogLevel: "debug"}
	require.NoError(t, app.Init())
	assert.Equal(t, "sim", app.Config.Broker.Mode)

	app = &App{LogLevel: "shouting"}
	assert.Error(t, app.Init())
}

func TestAppInitLoadsConfigFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: warn\n"), 0o644))

	app := &App{ConfigPath: path}
	require.NoError(t, app.Init())
	assert.Equal(t, "warn", app.Config.Log.Level)
}

func TestSessionModes(t *testing.T) {
	t.Parallel()

	app := &App{}
	require.NoError(t, app.Init())

	s, err := app.Session()
	require.NoError(t, err)
	assert.NotNil(t, s)

	app.Config.Broker.Mode = "futu"
	_, err = app.Session()
	assert.Error(t, err)
}

func TestParseWindow(t *testing.T) {
	t.Parallel()

	from, to, err := parseWindow("2024-01-02", "2024-02-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), from)
	assert.True(t, from.Before(to))

	_, _, err = parseWindow("2024-02-01", "2024-01-02")
	assert.Error(t, err)

	_, _, err = parseWindow("yesterday", "")
	assert.Error(t, err)

	from, to, err = parseWindow("", "")
	require.NoError(t, err)
	assert.True(t, from.IsZero())
	assert.True(t, to.IsZero())
}
