package lifecycle

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/sitaram-kernallogicautomation/openplc-runtime-v4/pkg/image"
	"github.com/sitaram-kernallogicautomation/openplc-runtime-v4/pkg/loader"
	"github.com/sitaram-kernallogicautomation/openplc-runtime-v4/pkg/plctypes"
	"github.com/sitaram-kernallogicautomation/openplc-runtime-v4/pkg/plugin"
	"github.com/sitaram-kernallogicautomation/openplc-runtime-v4/pkg/scan"
)

// LogFunc matches the logging callback shape used throughout the runtime.
type LogFunc func(format string, args ...any)

// Manager owns the lifecycle state and the program/engine pair that exists
// only while the state is RUNNING.
type Manager struct {
	mu    sync.Mutex
	state plctypes.LifecycleState

	buildDir string
	opener   loader.Opener
	tables   *image.Tables
	driver   *plugin.Driver

	heartbeat *atomic.Int64

	handle *loader.Handle
	engine *scan.Engine
	stopCh chan struct{}
	doneCh chan struct{}

	LogInfo  LogFunc
	LogError LogFunc
}

// NewManager returns a Manager in the EMPTY state. buildDir is scanned for
// compiled artifacts by SetRunning.
func NewManager(buildDir string, opener loader.Opener, tables *image.Tables, driver *plugin.Driver, heartbeat *atomic.Int64) *Manager {
	return &Manager{
		state:     plctypes.Empty,
		buildDir:  buildDir,
		opener:    opener,
		tables:    tables,
		driver:    driver,
		heartbeat: heartbeat,
	}
}

// State returns the current lifecycle state.
func (m *Manager) State() plctypes.LifecycleState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// EngineStats returns the scan engine's timing statistics snapshot, or a
// zero-cycle, invalid snapshot when no engine exists (before the first
// start, and again after SetStopped discards the engine).
func (m *Manager) EngineStats() plctypes.TimingStats {
	m.mu.Lock()
	engine := m.engine
	m.mu.Unlock()

	if engine == nil {
		return plctypes.NewTimingStats()
	}
	return engine.Stats()
}

// Tick returns the scan engine's current cycle counter, or 0 when no engine
// exists (before the first start, and again after SetStopped).
func (m *Manager) Tick() uint64 {
	m.mu.Lock()
	engine := m.engine
	m.mu.Unlock()

	if engine == nil {
		return 0
	}
	return engine.Tick()
}

// ProgramMD5 returns the loaded program's MD5, or "" if none is loaded.
func (m *Manager) ProgramMD5() string {
	m.mu.Lock()
	handle := m.handle
	m.mu.Unlock()

	if handle == nil || handle.Bindings.ProgramMD5 == nil {
		return ""
	}
	return handle.Bindings.ProgramMD5()
}

// Handle returns the currently loaded program handle, or nil.
func (m *Manager) Handle() *loader.Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.handle
}

func (m *Manager) setState(s plctypes.LifecycleState) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
	if m.LogInfo != nil {
		m.LogInfo("PLC State: %s", s)
	}
}

// SetRunning transitions {STOPPED, ERROR, EMPTY} -> RUNNING: discovers the
// latest build artifact, opens and binds it, fills NULL image slots with
// scratch cells, and
// spawns the scan engine goroutine. Re-entering RUNNING is a no-op that
// returns false. A failure to discover an artifact leaves the state EMPTY; a
// failure to open one leaves it ERROR.
func (m *Manager) SetRunning() bool {
	m.mu.Lock()
	if m.state == plctypes.Running {
		m.mu.Unlock()
		return false
	}
	m.mu.Unlock()

	if m.handle == nil {
		path, err := loader.DiscoverLatest(m.buildDir)
		if err != nil {
			m.logError("failed to discover a program artifact in %s: %v", m.buildDir, err)
			m.setState(plctypes.Empty)
			return false
		}

		handle, err := loader.Open(m.opener, path)
		if err != nil {
			m.logError("failed to open program artifact %s: %v", path, err)
			m.setState(plctypes.Error)
			return false
		}
		m.handle = handle
	}

	m.setState(plctypes.Init)

	if err := m.bindProgram(); err != nil {
		m.logError("failed to initialize program: %v", err)
		m.setState(plctypes.Error)
		return false
	}

	engine := scan.NewEngine(m.handle, m.driver, m.heartbeat)
	engine.LogInfo = scan.LogFunc(m.LogInfo)
	engine.LogWarn = scan.LogFunc(m.LogError)

	m.stopCh = make(chan struct{})
	m.doneCh = make(chan struct{})
	m.engine = engine

	go func() {
		defer close(m.doneCh)
		if err := engine.Run(m.stopCh); err != nil {
			m.logError("scan engine exited with error: %v", err)
			m.setState(plctypes.Error)
		}
	}()

	m.setState(plctypes.Running)
	return true
}

func (m *Manager) bindProgram() error {
	b := m.handle.Bindings
	if b.ConfigInit == nil || b.SetBufferPointers == nil || b.GlueVars == nil {
		return fmt.Errorf("program missing required init symbols")
	}
	b.ConfigInit()
	b.SetBufferPointers(m.tables)
	b.GlueVars()
	m.tables.FillNullWithScratch()
	return nil
}

// SetStopped transitions any other state to STOPPED: stops the scan engine
// if one is running, destroys the program handle if one is loaded, and
// clears the image tables. Re-entering STOPPED is a no-op that returns false.
func (m *Manager) SetStopped() bool {
	m.mu.Lock()
	if m.state == plctypes.Stopped {
		m.mu.Unlock()
		return false
	}
	stopCh, doneCh := m.stopCh, m.doneCh
	m.mu.Unlock()

	m.setState(plctypes.Stopped)

	if stopCh != nil {
		close(stopCh)
		<-doneCh
	}

	if m.handle != nil {
		loader.Destroy(m.handle)
		m.handle = nil
	}
	m.engine = nil
	m.tables.Clear()

	return true
}

// Cleanup stops a running program, if any, as part of process shutdown.
func (m *Manager) Cleanup() {
	if m.State() == plctypes.Running {
		m.SetStopped()
	}
}

func (m *Manager) logError(format string, args ...any) {
	if m.LogError != nil {
		m.LogError(format, args...)
	}
}
