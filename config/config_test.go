package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func Test_Config_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, "info", cfg.Logging.Level)
	require.Equal(t, 60, cfg.Client.TickRate)
	require.True(t, cfg.Client.Autopass)
	require.Equal(t, 400*time.Millisecond, cfg.Animation.Duration)
	require.Equal(t, 150*time.Millisecond, cfg.Animation.StaggerUnit)
	require.Equal(t, "block", cfg.Playback.StallPolicy)
	require.Equal(t, "first", cfg.Playback.DuplicatePolicy)
	require.Equal(t, ":2412", cfg.Server.Address)
}

func Test_Config_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	path := filepath.Join(dir, "presenter.yaml")
	data := []byte(`
client:
  tick_rate: 30
  autopass: false
animation:
  duration: 1s
playback:
  stall_timeout: 5s
  stall_policy: jump
`)
	require.NoError(t, os.WriteFile(path, data, 0644))
	t.Setenv("PRESENTER_PLAYBACK_DUPLICATE_POLICY", "last")

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, 30, cfg.Client.TickRate)
	require.False(t, cfg.Client.Autopass)
	require.Equal(t, time.Second, cfg.Animation.Duration)
	require.Equal(t, 5*time.Second, cfg.Playback.StallTimeout)
	require.Equal(t, "jump", cfg.Playback.StallPolicy)
	require.Equal(t, "last", cfg.Playback.DuplicatePolicy)
}

func Test_Config_DotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PRESENTER_SERVER_ADDRESS=:9000\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("PRESENTER_SERVER_ADDRESS") })

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, ":9000", cfg.Server.Address)
}

func Test_Config_Invalid(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)

	t.Setenv("PRESENTER_CLIENT_TICK_RATE", "0")
	_, err = Load("")
	require.Error(t, err)
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, added in Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
