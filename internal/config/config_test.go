package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// allConfigKeys lists every NITPICK_ env var that Load() reads.
var allConfigKeys = []string{
	"NITPICK_GITHUB_TOKEN",
	"NITPICK_GITHUB_USERNAME",
	"NITPICK_REPOSITORIES",
	"NITPICK_POLL_INTERVAL",
	"NITPICK_LISTEN_ADDR",
}

// isolateConfigEnv saves and unsets all NITPICK_ env vars so tests don't
// inherit values from the host environment.
func isolateConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range allConfigKeys {
		if orig, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, orig) })
		} else {
			t.Cleanup(func() { os.Unsetenv(key) })
		}
		os.Unsetenv(key)
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nitpick.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_FileAndDefaults(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("NITPICK_GITHUB_TOKEN", "ghp_test123")

	path := writeConfig(t, `
repositories:
  - octo/widgets
poll_interval: 10m
max_comments: 16
user_blacklist: [dependabot]
exclude_paths: ["vendor/*"]
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, []string{"octo/widgets"}, cfg.Repositories)
	assert.Equal(t, 10*time.Minute, cfg.PollInterval)
	assert.Equal(t, 16, cfg.MaxComments)
	assert.Equal(t, []string{"dependabot"}, cfg.UserBlacklist)
	assert.Equal(t, []string{"vendor/*"}, cfg.ExcludePaths)

	// Untouched fields keep their defaults.
	assert.Equal(t, DefaultIgnoreMarker, cfg.IgnoreMarker)
	assert.Equal(t, "127.0.0.1:8080", cfg.ListenAddr)
	assert.Equal(t, 2*time.Minute, cfg.ToolTimeout)
	assert.Equal(t, 30*time.Second, cfg.RemoteTimeout)
	assert.Equal(t, []string{"flake8", "pydocstyle"}, cfg.Handlers[".py"])
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("NITPICK_GITHUB_TOKEN", "ghp_test123")
	t.Setenv("NITPICK_POLL_INTERVAL", "30s")
	t.Setenv("NITPICK_REPOSITORIES", "octo/widgets, octo/gadgets")

	path := writeConfig(t, `
repositories: [other/repo]
poll_interval: 10m
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.PollInterval)
	assert.Equal(t, []string{"octo/widgets", "octo/gadgets"}, cfg.Repositories)
}

func TestLoad_MissingToken(t *testing.T) {
	isolateConfigEnv(t)
	path := writeConfig(t, "repositories: [octo/widgets]\n")

	_, err := Load(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "NITPICK_GITHUB_TOKEN")
}

func TestLoad_WhitelistAndBlacklistAreExclusive(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("NITPICK_GITHUB_TOKEN", "ghp_test123")
	path := writeConfig(t, `
repositories: [octo/widgets]
user_whitelist: [alice]
user_blacklist: [bob]
`)

	_, err := Load(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")
}

func TestLoad_InvalidRepositoryName(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("NITPICK_GITHUB_TOKEN", "ghp_test123")
	path := writeConfig(t, "repositories: [not-a-full-name]\n")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_NoRepositoriesIsAllowed(t *testing.T) {
	// The review command targets an explicit repo; only the daemon
	// requires a configured repository list.
	isolateConfigEnv(t)
	t.Setenv("NITPICK_GITHUB_TOKEN", "ghp_test123")
	path := writeConfig(t, "poll_interval: 1m\n")

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Empty(t, cfg.Repositories)
}

func TestLoad_RemoteTimeoutFromFile(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("NITPICK_GITHUB_TOKEN", "ghp_test123")
	path := writeConfig(t, `
repositories: [octo/widgets]
remote_timeout: 10s
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, cfg.RemoteTimeout)
}

func TestLoad_InvalidDuration(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("NITPICK_GITHUB_TOKEN", "ghp_test123")
	path := writeConfig(t, `
repositories: [octo/widgets]
poll_interval: soon
`)

	_, err := Load(path)
	assert.Error(t, err)
}
