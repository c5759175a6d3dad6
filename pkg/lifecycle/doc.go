// Package lifecycle implements the runtime's state machine:
// {EMPTY, INIT, RUNNING, STOPPED, ERROR}, gating the program loader and the
// scan engine.
//
// State transitions run through a mutex-guarded enum where re-entering the
// current state is a no-op, and where SetRunning/SetStopped carry out the
// load/unload side effects inline.
package lifecycle
