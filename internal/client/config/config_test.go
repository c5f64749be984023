package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper(t *testing.T) *viper.Viper {
	t.Helper()
	v := viper.New()
	setDefaults(v, t.TempDir())
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	return v
}

func TestDefaults(t *testing.T) {
	cfg, err := Unmarshal(newViper(t))
	require.NoError(t, err)

	assert.Equal(t, "https://cli.cryptocatslab.ru", cfg.API.URL)
	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
	assert.Equal(t, 3*time.Minute, cfg.Usage.RefreshInterval)
	assert.Equal(t, time.Second, cfg.Usage.DisplayInterval)
	assert.Equal(t, 5*time.Second, cfg.Billing.PollInterval)
	assert.Equal(t, 60, cfg.Billing.MaxAttempts)
	assert.Equal(t, DefaultReturnURL, cfg.Billing.ReturnURL)
	assert.Equal(t, filepath.Join(cfg.Storage.Dir, "logs"), cfg.LogDir())
}

func TestLoadFromFileAndEnv(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("SUDO_USER", "")
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	dir := filepath.Join(home, ".iskra")
	require.NoError(t, os.MkdirAll(dir, 0700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(
		"api:\n  url: http://localhost:8081\nbilling:\n  max_attempts: 3\n"), 0600))

	t.Setenv("ISKRA_LOGGING_LEVEL", "debug")

	cfg, _, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8081", cfg.API.URL)
	assert.Equal(t, 3, cfg.Billing.MaxAttempts)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, dir, cfg.Storage.Dir)
}

func TestValidate(t *testing.T) {
	v := newViper(t)
	v.Set("billing.max_attempts", 0)
	_, err := Unmarshal(v)
	assert.Error(t, err)

	v = newViper(t)
	v.Set("api.url", "")
	_, err = Unmarshal(v)
	assert.Error(t, err)
}
