package plugin

import (
	"fmt"

	"github.com/sitaram-kernallogicautomation/openplc-runtime-v4/pkg/image"
	"github.com/sitaram-kernallogicautomation/openplc-runtime-v4/pkg/loader"
	"github.com/sitaram-kernallogicautomation/openplc-runtime-v4/pkg/plctypes"
)

// PluginInstance is one configured plugin plus its resolved binding and
// running state, matching plugin_instance_t.
type PluginInstance struct {
	Config   plctypes.PluginConfig
	Native   *NativeBinding
	Scripted *ScriptedBinding
	Running  bool

	args *RuntimeArgs
}

// Driver hosts every configured plugin and owns the shared, priority-
// inheriting image-table mutex every plugin synchronizes through. It
// mirrors plugin_driver_t and the sweep functions in plugin_driver.c.
type Driver struct {
	Mutex  *PriorityMutex
	Tables *image.Tables

	nativeOpener loader.Opener
	plugins      []*PluginInstance

	LogInfo  LogFunc
	LogDebug LogFunc
	LogWarn  LogFunc
	LogError LogFunc
}

// NewDriver returns a driver ready to have a configuration loaded into it.
// nativeOpener resolves native plugin artifacts; production callers pass
// loader.StdlibOpener{}.
func NewDriver(tables *image.Tables, nativeOpener loader.Opener) *Driver {
	return &Driver{
		Mutex:        NewPriorityMutex(),
		Tables:       tables,
		nativeOpener: nativeOpener,
	}
}

// Plugins returns the currently loaded plugin instances, in configuration
// order.
func (d *Driver) Plugins() []*PluginInstance {
	return d.plugins
}

func (d *Driver) logf(fn LogFunc, format string, args ...any) {
	if fn != nil {
		fn(format, args...)
	}
}

// LoadConfig provisions the configuration file if missing (copying it from
// defaultConfigPath), parses it, and binds every configured plugin's entry
// points. It does not invoke any plugin code; that is Init's job.
func (d *Driver) LoadConfig(configPath, defaultConfigPath string) error {
	if err := EnsureConfigFile(configPath, defaultConfigPath); err != nil {
		return err
	}

	configs, err := ParseConfig(configPath)
	if err != nil {
		return err
	}

	instances := make([]*PluginInstance, 0, len(configs))
	for _, cfg := range configs {
		inst := &PluginInstance{Config: cfg, args: d.runtimeArgsFor(cfg)}

		switch cfg.Type {
		case plctypes.Native:
			nb, err := bindNative(d.nativeOpener, cfg.Path)
			if err != nil {
				return fmt.Errorf("loading native plugin %q: %w", cfg.Name, err)
			}
			inst.Native = nb
		case plctypes.Scripted:
			sb, err := loadScripted(cfg.Path, inst.args)
			if err != nil {
				return fmt.Errorf("loading scripted plugin %q: %w", cfg.Name, err)
			}
			inst.Scripted = sb
		}

		instances = append(instances, inst)
	}

	d.plugins = instances
	return nil
}

func (d *Driver) runtimeArgsFor(cfg plctypes.PluginConfig) *RuntimeArgs {
	return &RuntimeArgs{
		Tables:        d.Tables,
		Lock:          d.Mutex.Lock,
		Unlock:        d.Mutex.Unlock,
		BufferSize:    image.Capacity,
		BitsPerBuffer: 8,
		ConfigPath:    cfg.PerPluginConfigPath,
		LogInfo:       d.LogInfo,
		LogDebug:      d.LogDebug,
		LogWarn:       d.LogWarn,
		LogError:      d.LogError,
	}
}

// Init traverses enabled plugins and invokes their init entry point. Before
// any plugin runs, every NULL image-table slot is filled with a scratch
// cell. A failure aborts the whole call (but is not fatal for the process);
// plugins already initialized before the failing one stay initialized.
func (d *Driver) Init() error {
	if d.Tables != nil {
		d.Tables.FillNullWithScratch()
	}
	for _, inst := range d.plugins {
		if !inst.Config.Enabled {
			d.logf(d.LogInfo, "skipping disabled plugin: %s", inst.Config.Name)
			continue
		}

		var err error
		switch {
		case inst.Native != nil:
			err = inst.Native.Init(inst.args)
		case inst.Scripted != nil:
			err = inst.Scripted.Init(inst.args)
		}
		if err != nil {
			return fmt.Errorf("init failed for plugin %q: %w", inst.Config.Name, err)
		}
	}
	return nil
}

// Start invokes start/start_loop on enabled plugins and marks them running.
func (d *Driver) Start() error {
	for _, inst := range d.plugins {
		if !inst.Config.Enabled {
			continue
		}

		var err error
		switch {
		case inst.Native != nil && inst.Native.Start != nil:
			inst.Native.Start()
		case inst.Scripted != nil:
			err = inst.Scripted.StartLoop()
		}
		if err != nil {
			return fmt.Errorf("start failed for plugin %q: %w", inst.Config.Name, err)
		}
		inst.Running = true
	}
	return nil
}

// CycleStart invokes cycle_start on every enabled, running native plugin, in
// configuration order. Disabled and scripted plugins are skipped.
func (d *Driver) CycleStart() {
	for _, inst := range d.plugins {
		if !inst.Config.Enabled || !inst.Running || inst.Native == nil {
			continue
		}
		if inst.Native.CycleStart != nil {
			inst.Native.CycleStart()
		}
	}
}

// CycleEnd invokes cycle_end on every enabled, running native plugin, in
// configuration order.
func (d *Driver) CycleEnd() {
	for _, inst := range d.plugins {
		if !inst.Config.Enabled || !inst.Running || inst.Native == nil {
			continue
		}
		if inst.Native.CycleEnd != nil {
			inst.Native.CycleEnd()
		}
	}
}

// Stop invokes stop/stop_loop on enabled, running plugins. A per-plugin
// error is logged and does not abort the sweep.
func (d *Driver) Stop() {
	for _, inst := range d.plugins {
		if !inst.Config.Enabled || !inst.Running {
			continue
		}

		var err error
		switch {
		case inst.Native != nil && inst.Native.Stop != nil:
			inst.Native.Stop()
		case inst.Scripted != nil:
			err = inst.Scripted.StopLoop()
		}
		if err != nil {
			d.logf(d.LogError, "stop failed for plugin %q: %v", inst.Config.Name, err)
		}
		inst.Running = false
	}
}

// Restart stops every plugin, cleans it up, reloads the configuration, and
// re-initializes and restarts the driver. If reload fails the driver is left
// stopped, with no plugins loaded.
func (d *Driver) Restart(configPath, defaultConfigPath string) error {
	d.Stop()
	d.cleanupAll()

	if err := d.LoadConfig(configPath, defaultConfigPath); err != nil {
		d.plugins = nil
		return err
	}
	if err := d.Init(); err != nil {
		return err
	}
	return d.Start()
}

func (d *Driver) cleanupAll() {
	for _, inst := range d.plugins {
		var err error
		switch {
		case inst.Native != nil && inst.Native.Cleanup != nil:
			inst.Native.Cleanup()
		case inst.Scripted != nil:
			err = inst.Scripted.Cleanup()
		}
		if err != nil {
			d.logf(d.LogError, "cleanup failed for plugin %q: %v", inst.Config.Name, err)
		}
	}
}

// Destroy stops every plugin, cleans each one up, and drops the driver's
// plugin set. After Destroy returns no further plugin code executes.
func (d *Driver) Destroy() {
	d.Stop()
	d.cleanupAll()
	d.plugins = nil
}
