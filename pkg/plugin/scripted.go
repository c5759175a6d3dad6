package plugin

import (
	"fmt"

	"go.starlark.net/starlark"
)

// ScriptedBinding hosts one scripted plugin module inside an embedded
// Starlark interpreter, a pure-Go substitute for an embedded CPython
// runtime. It exposes the same five-method lifecycle as a native plugin
// minus the cycle hooks, since scripted plugins are assumed non-realtime.
type ScriptedBinding struct {
	thread  *starlark.Thread
	globals starlark.StringDict

	logInfo, logDebug, logWarn, logError LogFunc
}

// loadScripted executes a Starlark module and returns a binding over it.
// The module must define a top-level init function; start_loop, stop_loop,
// and cleanup are optional.
func loadScripted(path string, args *RuntimeArgs) (*ScriptedBinding, error) {
	b := &ScriptedBinding{}

	thread := &starlark.Thread{
		Name: path,
		Print: func(_ *starlark.Thread, msg string) {
			if b.logInfo != nil {
				b.logInfo("%s", msg)
			}
		},
	}

	predeclared := starlark.StringDict{
		"log_info":  starlark.NewBuiltin("log_info", b.logBuiltin(&b.logInfo)),
		"log_debug": starlark.NewBuiltin("log_debug", b.logBuiltin(&b.logDebug)),
		"log_warn":  starlark.NewBuiltin("log_warn", b.logBuiltin(&b.logWarn)),
		"log_error": starlark.NewBuiltin("log_error", b.logBuiltin(&b.logError)),
		"io_get":    starlark.NewBuiltin("io_get", ioGetBuiltin(args)),
		"io_set":    starlark.NewBuiltin("io_set", ioSetBuiltin(args)),
	}

	_, prog, err := starlark.SourceProgram(path, nil, predeclared.Has)
	if err != nil {
		return nil, fmt.Errorf("loading scripted plugin %s: %w", path, err)
	}
	// Program.Init, unlike ExecFile, leaves the module globals unfrozen, so
	// the lifecycle functions can keep state in them across calls.
	globals, err := prog.Init(thread, predeclared)
	if err != nil {
		return nil, fmt.Errorf("loading scripted plugin %s: %w", path, err)
	}
	if _, ok := globals["init"]; !ok {
		return nil, fmt.Errorf("scripted plugin %s missing mandatory init", path)
	}

	b.thread = thread
	b.globals = globals
	return b, nil
}

func (b *ScriptedBinding) logBuiltin(slot *LogFunc) func(*starlark.Thread, *starlark.Builtin, starlark.Tuple, []starlark.Tuple) (starlark.Value, error) {
	return func(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var message string
		if err := starlark.UnpackArgs(fn.Name(), args, kwargs, "message", &message); err != nil {
			return nil, err
		}
		if *slot != nil {
			(*slot)("%s", message)
		}
		return starlark.None, nil
	}
}

func (b *ScriptedBinding) call(name string) error {
	fn, ok := b.globals[name]
	if !ok {
		return nil
	}
	starFn, ok := fn.(starlark.Callable)
	if !ok {
		return fmt.Errorf("scripted plugin symbol %q is not callable", name)
	}
	_, err := starlark.Call(b.thread, starFn, nil, nil)
	return err
}

// Init invokes the module's init function, wiring the logging callbacks it
// will use for the rest of its lifetime.
func (b *ScriptedBinding) Init(args *RuntimeArgs) error {
	b.logInfo = args.LogInfo
	b.logDebug = args.LogDebug
	b.logWarn = args.LogWarn
	b.logError = args.LogError
	return b.call("init")
}

// StartLoop invokes start_loop if the module defines it. A scripted
// plugin's start function must return immediately; any long-running work
// happens on the plugin's own goroutine, which this package does not
// manage.
func (b *ScriptedBinding) StartLoop() error { return b.call("start_loop") }

// StopLoop invokes stop_loop if the module defines it.
func (b *ScriptedBinding) StopLoop() error { return b.call("stop_loop") }

// Cleanup invokes cleanup if the module defines it.
func (b *ScriptedBinding) Cleanup() error { return b.call("cleanup") }
