package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDefaults(t *testing.T) {
	d := Defaults()

	assert.Equal(t, 5, d.Rounds)
	assert.Equal(t, 10, d.RestartCount)
	assert.Equal(t, 15*time.Second, d.DownTimeout)
	assert.Equal(t, 90*time.Second, d.RecoverTimeout)
	assert.Equal(t, time.Second, d.PollInterval)
	assert.Equal(t, 30*time.Second, d.ConnectTimeout)
	assert.Equal(t, "ModemManager.service", d.Unit)
	assert.Empty(t, d.PingInterface, "pinging binds no interface unless asked")
	assert.NotEmpty(t, d.ControlPath)
	assert.NotEmpty(t, d.FaultToken)
	assert.NotEmpty(t, d.DeviceGlobs)
}

func TestLoadWithoutConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())

	s, err := Load(zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, Defaults().Rounds, s.Rounds)
	assert.Equal(t, Defaults().Unit, s.Unit)
}

func TestLoadReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	content := "connect_timeout: 45s\nping_interface: wwan0\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "modemstress.yaml"), []byte(content), 0644))
	t.Chdir(dir)

	s, err := Load(zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 45*time.Second, s.ConnectTimeout)
	assert.Equal(t, "wwan0", s.PingInterface)
}

func TestLoadMarkerOverrides(t *testing.T) {
	t.Run("empty path", func(t *testing.T) {
		m, err := LoadMarkerOverrides("")
		require.NoError(t, err)
		assert.Empty(t, m.Severe)
		assert.False(t, m.Replace)
	})

	t.Run("missing file", func(t *testing.T) {
		m, err := LoadMarkerOverrides(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)
		assert.Empty(t, m.Severe)
	})

	t.Run("parses yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "markers.yaml")
		content := "severe:\n  - 'firmware crashed'\ninformational:\n  - 'qmi_wwan'\nreplace: true\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		m, err := LoadMarkerOverrides(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"firmware crashed"}, m.Severe)
		assert.Equal(t, []string{"qmi_wwan"}, m.Informational)
		assert.True(t, m.Replace)
	})

	t.Run("rejects bad yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("severe: [unclosed"), 0644))

		_, err := LoadMarkerOverrides(path)
		assert.Error(t, err)
	})
}
