package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chTempDir(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	chTempDir(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "image_log.db", cfg.Store.Path)
	assert.Equal(t, []string{
		"no_defect", "dent", "scratch", "crack", "glass_shatter", "lamp_broken", "tire_flat",
	}, cfg.Labels.External)
	assert.InDelta(t, 0.25, cfg.Decision.Threshold, 0.001)
	assert.Equal(t, "models/visionqc_multitask.onnx", cfg.Classifier.ModelPath)
	assert.Equal(t, []string{".png", ".jpg", ".jpeg", ".webp"}, cfg.Scan.Extensions)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	chTempDir(t)

	yaml := `
store:
  driver: postgres
  database_url: postgres://qc:qc@localhost/results
labels:
  external:
    - ok
    - chipped
decision:
  threshold: 0.4
log:
  level: debug
  format: console
`
	wd, _ := os.Getwd()
	require.NoError(t, os.WriteFile(filepath.Join(wd, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://qc:qc@localhost/results", cfg.Store.DatabaseURL)
	assert.Equal(t, []string{"ok", "chipped"}, cfg.Labels.External)
	assert.InDelta(t, 0.4, cfg.Decision.Threshold, 0.001)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))
	assert.Error(t, InitLogger(LogConfig{Level: "nonsense", Format: "json"}))
}
