package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(home))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return home
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
	assert.NoError(t, c.Validate())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	home := isolate(t)
	p := filepath.Join(home, "cfg.yaml")
	require.NoError(t, os.WriteFile(p, []byte("head_rows: 9\nlog_level: debug\n"), 0o644))
	t.Setenv("BIKEDASH_LOG_LEVEL", "warn")

	c, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, 9, c.HeadRows)
	assert.Equal(t, "warn", c.LogLevel)
	assert.Equal(t, "127.0.0.1:8080", c.ListenAddr)
}

func TestLoad_DotEnv(t *testing.T) {
	home := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(home, ".env"), []byte("BIKEDASH_HEAD_ROWS=12\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("BIKEDASH_HEAD_ROWS") })

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 12, c.HeadRows)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	home := isolate(t)
	_, err := Load(filepath.Join(home, "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidValue(t *testing.T) {
	isolate(t)
	t.Setenv("BIKEDASH_LOG_FORMAT", "xml")
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LogFormat")
}

func TestSaveThenLoad(t *testing.T) {
	home := isolate(t)
	c := Default()
	require.NoError(t, c.Set("head_rows", "7"))
	require.NoError(t, c.Set("chart_width_in", "10.5"))
	require.NoError(t, c.Set("listen_addr", "localhost:9090"))
	require.NoError(t, Save(c, ""))

	_, err := os.Stat(filepath.Join(home, ".bikedash", "config.yaml"))
	require.NoError(t, err)

	got, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, c, got)
}

func TestSet_Errors(t *testing.T) {
	c := Default()
	assert.Error(t, c.Set("head_rows", "many"))
	assert.Error(t, c.Set("chart_height_in", "tall"))
	assert.EqualError(t, c.Set("dataset_path", "x.csv"), "unknown key: dataset_path")
	assert.Equal(t, 5, c.HeadRows)
}

func TestValidate(t *testing.T) {
	c := Default()
	c.HeadRows = 0
	assert.Error(t, c.Validate())

	c = Default()
	c.ListenAddr = "not an address"
	assert.Error(t, c.Validate())

	c = Default()
	c.RateLimitRPS = 0
	assert.NoError(t, c.Validate())
}

func TestKeys(t *testing.T) {
	keys := Keys()
	assert.Len(t, keys, 11)
	assert.Contains(t, keys, "listen_addr")
	assert.NotContains(t, keys, "dataset_path")
}
