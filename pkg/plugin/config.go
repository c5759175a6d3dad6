package plugin

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sitaram-kernallogicautomation/openplc-runtime-v4/pkg/plctypes"
)

// MaxPlugins is the largest number of entries a configuration file may
// declare, matching plugin_driver.h's MAX_PLUGINS.
const MaxPlugins = 16

// EnsureConfigFile copies defaultPath over path if path does not exist yet,
// mirroring plugin_driver_update_config's auto-provisioning of a fresh
// plugins.conf from plugins_default.conf on first run.
func EnsureConfigFile(path, defaultPath string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}

	src, err := os.Open(defaultPath)
	if err != nil {
		return fmt.Errorf("plugin config %s missing and default %s unavailable: %w", path, defaultPath, err)
	}
	defer src.Close()

	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("creating plugin config %s: %w", path, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("copying default plugin config into %s: %w", path, err)
	}
	return nil
}

// ParseConfig reads a plugin configuration file: comma-separated lines of
// name, path, enabled, type, per_plugin_config_path, and an optional
// venv_path. Lines starting with '#' and blank lines are skipped. At most
// MaxPlugins entries are parsed; further lines are ignored, matching
// parse_plugin_config's max_configs bound.
func ParseConfig(path string) ([]plctypes.PluginConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening plugin config %s: %w", path, err)
	}
	defer f.Close()

	var configs []plctypes.PluginConfig

	scanner := bufio.NewScanner(f)
	for scanner.Scan() && len(configs) < MaxPlugins {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		fields := strings.Split(line, ",")
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
		if len(fields) < 5 {
			continue
		}

		enabled, err := strconv.Atoi(fields[2])
		if err != nil {
			continue
		}
		typeVal, err := strconv.Atoi(fields[3])
		if err != nil {
			continue
		}

		cfg := plctypes.PluginConfig{
			Name:                fields[0],
			Path:                fields[1],
			Enabled:             enabled != 0,
			Type:                pluginTypeFromInt(typeVal),
			PerPluginConfigPath: fields[4],
		}
		if len(fields) >= 6 {
			cfg.VenvPath = fields[5]
		}

		configs = append(configs, cfg)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading plugin config %s: %w", path, err)
	}

	return configs, nil
}

// pluginTypeFromInt maps the configuration column's raw integer to a
// PluginType, following plugin_driver.h's plugin_type_t ordering where 0 is
// the scripted (originally Python) type and 1 is native.
func pluginTypeFromInt(v int) plctypes.PluginType {
	if v == 1 {
		return plctypes.Native
	}
	return plctypes.Scripted
}
