package runtimeconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadFillsDefaults(t *testing.T) {
	path := writeConfig(t, `
buildDir: /var/lib/plcruntime/build
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/plcruntime/build", cfg.BuildDir)
	assert.Equal(t, Defaults().ControlSocketPath, cfg.ControlSocketPath)
	assert.Equal(t, Defaults().DefaultTicktimeNs, cfg.DefaultTicktimeNs)
	assert.Equal(t, Defaults().LogLevel, cfg.LogLevel)
}

func TestLoadOverridesEveryField(t *testing.T) {
	path := writeConfig(t, `
controlSocketPath: /tmp/control.sock
logSocketPath: /tmp/log.sock
buildDir: /tmp/build
pluginConfigPath: /tmp/plugins.cfg
defaultTicktimeNs: 20000000
metricsAddr: "127.0.0.1:9100"
logLevel: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/control.sock", cfg.ControlSocketPath)
	assert.Equal(t, "/tmp/log.sock", cfg.LogSocketPath)
	assert.Equal(t, "/tmp/build", cfg.BuildDir)
	assert.Equal(t, "/tmp/plugins.cfg", cfg.PluginConfigPath)
	assert.EqualValues(t, 20_000_000, cfg.DefaultTicktimeNs)
	assert.Equal(t, "127.0.0.1:9100", cfg.MetricsAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, "not: valid: yaml: [")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidateRejectsZeroTicktime(t *testing.T) {
	cfg := Defaults()
	cfg.DefaultTicktimeNs = 0
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsEmptyBuildDir(t *testing.T) {
	cfg := Defaults()
	cfg.BuildDir = ""
	assert.Error(t, cfg.Validate())
}
