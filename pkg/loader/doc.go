// Package loader opens compiled control-program artifacts and binds their
// symbol contract.
//
// It opens the artifact, resolves each required symbol by name, fails
// loudly if any required symbol is missing, and leaves optional symbols
// unbound rather than failing. Binding goes through the Opener interface
// instead of calling
// plugin.Open directly so tests can supply a fake bundle of symbols without
// building a real Go plugin with a matching toolchain.
//
// The loader never executes program code; it only opens the artifact and
// resolves pointers. Running config_init/config_run is the lifecycle
// manager's job.
package loader
