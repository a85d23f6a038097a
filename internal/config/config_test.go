package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/physic"
)

func TestLoadOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("addr: \":9000\"\nframe_rate: 30Hz\nrig:\n  size: 8\n"), 0644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", c.Addr)
	assert.Equal(t, 30*physic.Hertz, c.FrameRate.Frequency)
	assert.Equal(t, time.Second/30, c.FrameRate.Period())
	assert.Equal(t, 8.0, c.Rig.Size)
	assert.Equal(t, "bounce.db", c.DB, "unset keys keep defaults")
	assert.Equal(t, 1.0, c.Rate)
}

func TestLoadRejectsBadFrameRate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("frame_rate: fast\n"), 0644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	c := Default()
	c.Movie = "demo"
	require.NoError(t, Save(path, c))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, c, got)
}

func TestApplyEnv(t *testing.T) {
	dir := t.TempDir()
	env := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(env, []byte("BOUNCE_DB=from-dotenv.db\nBOUNCE_MOVIE=demo\n"), 0644))
	t.Setenv("BOUNCE_MOVIE", "from-env")
	t.Setenv("BOUNCE_FRAME_RATE", "24Hz")
	t.Setenv("BOUNCE_RATE", "0.5")
	t.Setenv("BOUNCE_DB", "")
	os.Unsetenv("BOUNCE_DB")

	c := Default()
	require.NoError(t, ApplyEnv(c, env, filepath.Join(dir, "missing.env")))
	assert.Equal(t, "from-dotenv.db", c.DB)
	assert.Equal(t, "from-env", c.Movie, "process env wins over .env")
	assert.Equal(t, 24*physic.Hertz, c.FrameRate.Frequency)
	assert.Equal(t, 0.5, c.Rate)
}

func TestLoadIntoKeepsUnsetFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rate: 2\n"), 0644))

	c := Default()
	c.Addr = ":7000"
	require.NoError(t, LoadInto(path, c))
	assert.Equal(t, ":7000", c.Addr)
	assert.Equal(t, 2.0, c.Rate)
}
