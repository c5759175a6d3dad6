package loader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitaram-kernallogicautomation/openplc-runtime-v4/pkg/image"
)

var errNoSuchSymbol = errors.New("no such symbol")

type fakeSymboler map[string]any

func (f fakeSymboler) Lookup(name string) (any, error) {
	v, ok := f[name]
	if !ok {
		return nil, errNoSuchSymbol
	}
	return v, nil
}

type fakeOpener struct {
	sym fakeSymboler
	err error
}

func (f fakeOpener) Open(path string) (Symboler, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.sym, nil
}

func completeSymbols() fakeSymboler {
	tick := uint64(20_000_000)
	return fakeSymboler{
		"ConfigInit":        func() {},
		"ConfigRun":         func(uint64) {},
		"GlueVars":          func() {},
		"UpdateTime":        func() {},
		"SetBufferPointers": func(*image.Tables) {},
		"CommonTicktimeNs":  &tick,
		"ProgramMD5":        func() string { return "deadbeef" },
	}
}

func touchFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("stub"), 0o644))
}

func TestOpenSucceedsWhenAllRequiredSymbolsBind(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "libplc_1.so")
	touchFile(t, path)

	h, err := Open(fakeOpener{sym: completeSymbols()}, path)

	require.NoError(t, err)
	assert.Equal(t, path, h.Path)
	assert.NotNil(t, h.Bindings.ConfigRun)
	assert.Equal(t, "deadbeef", h.Bindings.ProgramMD5())
	assert.Nil(t, h.Bindings.SetEndianness)
}

func TestOpenFailsWhenPathMissing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "does-not-exist.so")

	_, err := Open(fakeOpener{sym: completeSymbols()}, path)

	require.Error(t, err)
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, NotFound, loadErr.Kind)
}

func TestOpenFailsWhenRequiredSymbolMissing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "libplc_2.so")
	touchFile(t, path)

	syms := completeSymbols()
	delete(syms, "GlueVars")

	_, err := Open(fakeOpener{sym: syms}, path)

	require.Error(t, err)
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, SymbolMissing, loadErr.Kind)
	assert.Equal(t, "GlueVars", loadErr.Symbol)
}

func TestOpenBindsOptionalDebugSymbolsWhenPresent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "libplc_3.so")
	touchFile(t, path)

	syms := completeSymbols()
	syms["GetVarCount"] = func() uint16 { return 3 }
	syms["GetVarBytes"] = func(uint64) []byte { return []byte{1, 2} }

	h, err := Open(fakeOpener{sym: syms}, path)

	require.NoError(t, err)
	require.NotNil(t, h.Bindings.GetVarCount)
	assert.Equal(t, uint16(3), h.Bindings.GetVarCount())
	assert.Nil(t, h.Bindings.SetTrace)
}

func TestDestroyClearsBindings(t *testing.T) {
	h := &Handle{Path: "x", Bindings: Bindings{ConfigInit: func() {}}}

	Destroy(h)

	assert.Nil(t, h.Bindings.ConfigInit)
}

func TestDiscoverLatestPicksLexicographicallyGreatest(t *testing.T) {
	dir := t.TempDir()
	touchFile(t, filepath.Join(dir, "libplc_1000000001.so"))
	touchFile(t, filepath.Join(dir, "libplc_1000000099.so"))
	touchFile(t, filepath.Join(dir, "libplc_1000000050.so"))
	touchFile(t, filepath.Join(dir, "notplc.txt"))

	got, err := DiscoverLatest(dir)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "libplc_1000000099.so"), got)
}

func TestDiscoverLatestFailsWhenDirEmpty(t *testing.T) {
	dir := t.TempDir()

	_, err := DiscoverLatest(dir)

	require.Error(t, err)
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, NotFound, loadErr.Kind)
}
