package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", noEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	assert.Equal(t, DefaultMembersCSV, cfg.Paths().Members)
	assert.Equal(t, "light", cfg.Palette().Name)
}

func TestLoadYAMLThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pulse.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
sources:
  members: data/members.csv
  channels: data/channels.csv
  workspace: data/workspace.csv
addr: ":9090"
top_n: 5
theme: dark
`), 0o644))

	t.Setenv("PULSE_TOP_N", "7")
	t.Setenv("PULSE_WATCH", "true")

	cfg, err := Load(path, noEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, "data/members.csv", cfg.Sources.Members)
	assert.Equal(t, "data/workspace.csv", cfg.Sources.Workspace)
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, 7, cfg.TopN, "environment beats the file")
	assert.True(t, cfg.Watch)
	assert.Equal(t, DefaultHistogramBins, cfg.HistogramBins)
	assert.Equal(t, "dark", cfg.Palette().Name)
}

func TestLoadDotenv(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("PULSE_CHANNELS_CSV=from-dotenv.csv\n"), 0o644))
	require.NoError(t, os.Unsetenv("PULSE_CHANNELS_CSV"))
	t.Cleanup(func() { _ = os.Unsetenv("PULSE_CHANNELS_CSV") })

	cfg, err := Load("", envFile)
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv.csv", cfg.Sources.Channels)
}

func TestInvalidIntegerKeepsFallback(t *testing.T) {
	t.Setenv("PULSE_HISTOGRAM_BINS", "lots")

	cfg, err := Load("", noEnvFile(t))
	require.NoError(t, err)
	assert.Equal(t, DefaultHistogramBins, cfg.HistogramBins)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), noEnvFile(t))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("top_n: [oops"), 0o644))
	_, err = Load(bad, noEnvFile(t))
	assert.Error(t, err)

	t.Setenv("PULSE_THEME", "neon")
	_, err = Load("", noEnvFile(t))
	assert.ErrorContains(t, err, "theme")
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.Sources.Workspace = " "
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.TopN = 0
	assert.ErrorContains(t, cfg.Validate(), "top_n")
}
