// Package plugin hosts the field-I/O plugin drivers: native plugins bound
// out of compiled artifacts and scripted plugins interpreted by an embedded
// Starlark runtime.
//
// A driver parses a configuration file, resolves each plugin's entry
// points, and drives them through an init/start/cycle_start/cycle_end/
// stop/cleanup lifecycle sweep. The shared image-table mutex the driver
// hands to every plugin is PriorityMutex, this package's best-effort
// approximation of a PTHREAD_PRIO_INHERIT mutex attribute.
package plugin
