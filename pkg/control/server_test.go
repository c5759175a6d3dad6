package control

import (
	"bufio"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitaram-kernallogicautomation/openplc-runtime-v4/pkg/image"
	"github.com/sitaram-kernallogicautomation/openplc-runtime-v4/pkg/lifecycle"
	"github.com/sitaram-kernallogicautomation/openplc-runtime-v4/pkg/loader"
	"github.com/sitaram-kernallogicautomation/openplc-runtime-v4/pkg/plugin"
)

type fakeSymboler map[string]any

func (f fakeSymboler) Lookup(name string) (any, error) {
	v, ok := f[name]
	if !ok {
		return nil, os.ErrNotExist
	}
	return v, nil
}

type fakeOpener struct{ sym fakeSymboler }

func (f fakeOpener) Open(path string) (loader.Symboler, error) { return f.sym, nil }

const testMD5 = "abcdef1234567890123456789012345678"

func testProgramSymbols() fakeSymboler {
	period := uint64(5_000_000)
	values := [][]byte{{0xAA}, {0xBB, 0xCC}, {0xDD}}
	return fakeSymboler{
		"ConfigInit":        func() {},
		"ConfigRun":         func(uint64) {},
		"GlueVars":          func() {},
		"UpdateTime":        func() {},
		"SetBufferPointers": func(*image.Tables) {},
		"CommonTicktimeNs":  &period,
		"ProgramMD5":        func() string { return testMD5 },
		"GetVarCount":       func() uint16 { return uint16(len(values)) },
		"GetVarSize":        func(idx uint64) uintptr { return uintptr(len(values[idx])) },
		"GetVarBytes":       func(idx uint64) []byte { return values[idx] },
		"SetTrace":          func(idx uint64, forced bool, value []byte) {},
		"SetEndianness":     func(uint8) {},
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "libplc_1.so"), []byte("stub"), 0o644))

	tables := image.New()
	driver := plugin.NewDriver(tables, loader.StdlibOpener{})
	var heartbeat atomic.Int64
	mgr := lifecycle.NewManager(dir, fakeOpener{sym: testProgramSymbols()}, tables, driver, &heartbeat)

	socketPath := filepath.Join(t.TempDir(), "control.sock")
	return &Server{SocketPath: socketPath, Manager: mgr}
}

func startTestServer(t *testing.T, srv *Server) {
	t.Helper()
	stop := make(chan struct{})
	done := make(chan error, 1)
	go func() { done <- srv.Serve(stop) }()
	t.Cleanup(func() {
		close(stop)
		<-done
		srv.Manager.Cleanup()
	})

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(srv.SocketPath); err == nil {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("control socket %s never appeared", srv.SocketPath)
}

type testClient struct {
	conn net.Conn
	r    *bufio.Reader
}

func dial(t *testing.T, path string) *testClient {
	t.Helper()
	conn, err := net.DialTimeout("unix", path, time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return &testClient{conn: conn, r: bufio.NewReader(conn)}
}

func (c *testClient) send(t *testing.T, cmd string) string {
	t.Helper()
	_, err := c.conn.Write([]byte(cmd + "\n"))
	require.NoError(t, err)
	require.NoError(t, c.conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	line, err := c.r.ReadString('\n')
	require.NoError(t, err)
	return line
}

func TestPing(t *testing.T) {
	srv := newTestServer(t)
	startTestServer(t, srv)

	c := dial(t, srv.SocketPath)
	assert.Equal(t, "PING:OK\n", c.send(t, "PING"))
}

func TestStatusStartStop(t *testing.T) {
	srv := newTestServer(t)
	startTestServer(t, srv)

	c := dial(t, srv.SocketPath)
	assert.Equal(t, "STATUS:EMPTY\n", c.send(t, "STATUS"))
	assert.Equal(t, "START:OK\n", c.send(t, "START"))
	assert.Equal(t, "STATUS:RUNNING\n", c.send(t, "STATUS"))
	assert.Equal(t, "START:ERROR_ALREADY_RUNNING\n", c.send(t, "START"))
	assert.Equal(t, "STOP:OK\n", c.send(t, "STOP"))
	assert.Equal(t, "STATUS:STOPPED\n", c.send(t, "STATUS"))
}

func TestUnknownCommand(t *testing.T) {
	srv := newTestServer(t)
	startTestServer(t, srv)

	c := dial(t, srv.SocketPath)
	assert.Equal(t, "COMMAND:ERROR\n", c.send(t, "BOGUS"))
}

func TestStatsWithNoCycles(t *testing.T) {
	srv := newTestServer(t)
	startTestServer(t, srv)

	c := dial(t, srv.SocketPath)
	resp := c.send(t, "STATS")
	assert.Contains(t, resp, `"scan_count":0`)
	assert.Contains(t, resp, `"scan_time_min":null`)
	assert.Contains(t, resp, `"overruns":0`)
	assert.True(t, len(resp) > len("STATS:{"))
}

func TestDebugInfo(t *testing.T) {
	srv := newTestServer(t)
	startTestServer(t, srv)

	c := dial(t, srv.SocketPath)
	require.Equal(t, "START:OK\n", c.send(t, "START"))

	resp := c.send(t, "DEBUG:41")
	assert.Equal(t, "DEBUG:41 00 03\n", resp)
}

func TestDebugGetMD5(t *testing.T) {
	srv := newTestServer(t)
	startTestServer(t, srv)

	c := dial(t, srv.SocketPath)
	require.Equal(t, "START:OK\n", c.send(t, "START"))

	resp := c.send(t, "DEBUG:45 de ad")
	assert.Contains(t, resp, "DEBUG:45 7e ")
	assert.True(t, strings.HasSuffix(resp, "00\n"))
}

func TestDebugGetListOutOfRange(t *testing.T) {
	srv := newTestServer(t)
	startTestServer(t, srv)

	c := dial(t, srv.SocketPath)
	require.Equal(t, "START:OK\n", c.send(t, "START"))

	resp := c.send(t, "DEBUG:44 00 01 ff ff")
	assert.Equal(t, "DEBUG:44 81\n", resp)
}

func TestDebugParsingError(t *testing.T) {
	srv := newTestServer(t)
	startTestServer(t, srv)

	c := dial(t, srv.SocketPath)
	assert.Equal(t, "DEBUG:ERROR_PARSING\n", c.send(t, "DEBUG:zz"))
}

func TestDebugUnknownFunctionCode(t *testing.T) {
	srv := newTestServer(t)
	startTestServer(t, srv)

	c := dial(t, srv.SocketPath)
	assert.Equal(t, "DEBUG:ERROR_PROCESSING\n", c.send(t, "DEBUG:99"))
}
