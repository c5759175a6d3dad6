package plugin

import (
	"fmt"

	"github.com/sitaram-kernallogicautomation/openplc-runtime-v4/pkg/loader"
)

// NativeBinding is a native plugin's resolved entry points, matching
// plugin_funct_bundle_t. Init is mandatory; the rest are recorded as nil
// when the artifact does not export them.
type NativeBinding struct {
	Init       func(*RuntimeArgs) error
	Start      func()
	Stop       func()
	CycleStart func()
	CycleEnd   func()
	Cleanup    func()
}

// bindNative opens a native plugin artifact and resolves its entry points.
func bindNative(opener loader.Opener, path string) (*NativeBinding, error) {
	sym, err := opener.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening native plugin %s: %w", path, err)
	}

	initSym, err := sym.Lookup("Init")
	if err != nil {
		return nil, fmt.Errorf("native plugin %s missing mandatory Init: %w", path, err)
	}
	initFn, ok := initSym.(func(*RuntimeArgs) error)
	if !ok {
		return nil, fmt.Errorf("native plugin %s: Init has unexpected signature", path)
	}

	b := &NativeBinding{Init: initFn}

	if v, err := sym.Lookup("Start"); err == nil {
		if f, ok := v.(func()); ok {
			b.Start = f
		}
	}
	if v, err := sym.Lookup("Stop"); err == nil {
		if f, ok := v.(func()); ok {
			b.Stop = f
		}
	}
	if v, err := sym.Lookup("CycleStart"); err == nil {
		if f, ok := v.(func()); ok {
			b.CycleStart = f
		}
	}
	if v, err := sym.Lookup("CycleEnd"); err == nil {
		if f, ok := v.(func()); ok {
			b.CycleEnd = f
		}
	}
	if v, err := sym.Lookup("Cleanup"); err == nil {
		if f, ok := v.(func()); ok {
			b.Cleanup = f
		}
	}

	return b, nil
}
