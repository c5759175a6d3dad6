package loader

import (
	"fmt"
	"os"
	"path/filepath"
	pluginpkg "plugin"
	"sort"

	"github.com/sitaram-kernallogicautomation/openplc-runtime-v4/pkg/image"
)

// Symboler resolves symbols out of an opened artifact. It is satisfied by
// *plugin.Plugin in production and by a fake in tests.
type Symboler interface {
	Lookup(symbolName string) (any, error)
}

// Opener opens a compiled artifact at path and returns a Symboler bound to
// it. It is satisfied by StdlibOpener in production.
type Opener interface {
	Open(path string) (Symboler, error)
}

// StdlibOpener opens artifacts with the standard library's plugin package,
// the language's own dlopen/dlsym equivalent.
type StdlibOpener struct{}

func (StdlibOpener) Open(path string) (Symboler, error) {
	p, err := pluginpkg.Open(path)
	if err != nil {
		return nil, err
	}
	return stdlibSymboler{p}, nil
}

type stdlibSymboler struct {
	p *pluginpkg.Plugin
}

func (s stdlibSymboler) Lookup(symbolName string) (any, error) {
	sym, err := s.p.Lookup(symbolName)
	if err != nil {
		return nil, err
	}
	return sym, nil
}

// LoadErrorKind classifies why Open or DiscoverLatest failed.
type LoadErrorKind int

const (
	NotFound LoadErrorKind = iota
	Malformed
	SymbolMissing
)

// LoadError is returned by Open (including its symbol resolution) and by
// DiscoverLatest. Symbol is populated only when Kind is SymbolMissing.
type LoadError struct {
	Kind   LoadErrorKind
	Symbol string
	Detail string
}

func (e *LoadError) Error() string {
	switch e.Kind {
	case NotFound:
		return fmt.Sprintf("program artifact not found: %s", e.Detail)
	case SymbolMissing:
		return fmt.Sprintf("program artifact missing required symbol %q: %s", e.Symbol, e.Detail)
	default:
		return fmt.Sprintf("program artifact malformed: %s", e.Detail)
	}
}

// Bindings is the program's resolved symbol contract: the set of entry
// points a compiled program artifact must export for the runtime to drive
// its scan cycle.
type Bindings struct {
	ConfigInit        func()
	ConfigRun         func(tick uint64)
	GlueVars          func()
	UpdateTime        func()
	SetBufferPointers func(*image.Tables)
	CommonTicktimeNs  *uint64
	ProgramMD5        func() string

	// Optional debug symbols. Nil when the artifact does not export them.
	SetEndianness func(uint8)
	GetVarCount   func() uint16
	GetVarSize    func(idx uint64) uintptr
	// GetVarBytes returns a slice view of the raw storage backing variable
	// idx, of length GetVarSize(idx). Since the program is itself a Go
	// plugin, returning a byte slice lets the debug endpoint copy values
	// without unsafe.Pointer arithmetic on either side of the boundary.
	GetVarBytes func(idx uint64) []byte
	SetTrace    func(idx uint64, forced bool, value []byte)
}

// Handle is a loaded artifact plus its bound symbol table. Destroying it
// unbinds the symbols; the underlying process memory mapped by plugin.Open
// is never released, since the Go runtime does not support unloading
// plugins, but no further code in this handle's Bindings will be reachable
// once Destroy returns.
type Handle struct {
	Path     string
	Bindings Bindings
}

// Open loads the artifact at path with immediate-binding semantics: it opens
// the artifact and resolves every required symbol before returning, so a
// caller never observes a half-bound handle.
func Open(opener Opener, path string) (*Handle, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, &LoadError{Kind: NotFound, Detail: path}
		}
		return nil, &LoadError{Kind: Malformed, Detail: err.Error()}
	}

	sym, err := opener.Open(path)
	if err != nil {
		return nil, &LoadError{Kind: Malformed, Detail: err.Error()}
	}

	bindings, err := resolve(sym)
	if err != nil {
		return nil, err
	}

	return &Handle{Path: path, Bindings: bindings}, nil
}

func resolve(sym Symboler) (Bindings, error) {
	var b Bindings

	required := func(name string, dst *error, assign func(any) bool) {
		if *dst != nil {
			return
		}
		v, err := sym.Lookup(name)
		if err != nil {
			*dst = &LoadError{Kind: SymbolMissing, Symbol: name, Detail: err.Error()}
			return
		}
		if !assign(v) {
			*dst = &LoadError{Kind: SymbolMissing, Symbol: name, Detail: "symbol has unexpected type"}
		}
	}

	var firstErr error

	required("ConfigInit", &firstErr, func(v any) bool {
		f, ok := v.(func())
		if ok {
			b.ConfigInit = f
		}
		return ok
	})
	required("ConfigRun", &firstErr, func(v any) bool {
		f, ok := v.(func(uint64))
		if ok {
			b.ConfigRun = f
		}
		return ok
	})
	required("GlueVars", &firstErr, func(v any) bool {
		f, ok := v.(func())
		if ok {
			b.GlueVars = f
		}
		return ok
	})
	required("UpdateTime", &firstErr, func(v any) bool {
		f, ok := v.(func())
		if ok {
			b.UpdateTime = f
		}
		return ok
	})
	required("SetBufferPointers", &firstErr, func(v any) bool {
		f, ok := v.(func(*image.Tables))
		if ok {
			b.SetBufferPointers = f
		}
		return ok
	})
	required("CommonTicktimeNs", &firstErr, func(v any) bool {
		p, ok := v.(*uint64)
		if ok {
			b.CommonTicktimeNs = p
		}
		return ok
	})
	required("ProgramMD5", &firstErr, func(v any) bool {
		f, ok := v.(func() string)
		if ok {
			b.ProgramMD5 = f
		}
		return ok
	})

	if firstErr != nil {
		return Bindings{}, firstErr
	}

	// Optional debug symbols: absence or type mismatch just leaves the field
	// nil, it never fails resolution.
	if v, err := sym.Lookup("SetEndianness"); err == nil {
		if f, ok := v.(func(uint8)); ok {
			b.SetEndianness = f
		}
	}
	if v, err := sym.Lookup("GetVarCount"); err == nil {
		if f, ok := v.(func() uint16); ok {
			b.GetVarCount = f
		}
	}
	if v, err := sym.Lookup("GetVarSize"); err == nil {
		if f, ok := v.(func(uint64) uintptr); ok {
			b.GetVarSize = f
		}
	}
	if v, err := sym.Lookup("GetVarBytes"); err == nil {
		if f, ok := v.(func(uint64) []byte); ok {
			b.GetVarBytes = f
		}
	}
	if v, err := sym.Lookup("SetTrace"); err == nil {
		if f, ok := v.(func(uint64, bool, []byte)); ok {
			b.SetTrace = f
		}
	}

	return b, nil
}

// Destroy unbinds a handle. The Go runtime does not support unmapping a
// loaded plugin, so this only clears the Go-side references; it exists to
// give callers a single place to stop calling into a program before the
// image tables are cleared.
func Destroy(h *Handle) {
	h.Bindings = Bindings{}
}

// artifactPattern matches the platform-native compiled program artifact
// name, mirroring the C original's libplc_*.so convention.
const artifactPattern = "libplc_*.so"

// DiscoverLatest scans dir for artifacts matching artifactPattern and
// returns the lexicographically greatest match. The build step is expected
// to name new artifacts with a nanosecond timestamp suffix, so lexicographic
// order matches recency.
func DiscoverLatest(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, artifactPattern))
	if err != nil {
		return "", &LoadError{Kind: Malformed, Detail: err.Error()}
	}
	if len(matches) == 0 {
		return "", &LoadError{Kind: NotFound, Detail: dir}
	}

	sort.Strings(matches)
	return matches[len(matches)-1], nil
}
