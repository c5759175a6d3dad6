package plugin

import "github.com/sitaram-kernallogicautomation/openplc-runtime-v4/pkg/image"

// LogFunc is the shape of the four log-level callbacks a plugin receives at
// init, matching plugin_log_info_func_t and its warn/debug/error siblings.
type LogFunc func(format string, args ...any)

// RuntimeArgs is handed to a plugin's init call: the shared image tables,
// lock/unlock functions over the shared mutex, sizing constants, the
// plugin's own config path, and logging callbacks at four levels. It
// corresponds to plugin_runtime_args_t.
type RuntimeArgs struct {
	Tables *image.Tables
	Lock   func()
	Unlock func()

	BufferSize    int
	BitsPerBuffer int

	ConfigPath string

	LogInfo  LogFunc
	LogDebug LogFunc
	LogWarn  LogFunc
	LogError LogFunc
}
