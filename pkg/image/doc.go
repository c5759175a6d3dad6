// Package image implements the fixed-capacity I/O image tables shared between
// the control program and the plugin host.
//
// Tables hold pointers into control-program-owned memory, not the values
// themselves; the program allocates the backing storage and binds each slot
// via its glue_vars routine, the image tables only hold indirection. The
// layout is bool_input, byte_input, int_input, dint_input, and lint_input
// tables, their *_output counterparts, and int/dint/lint *_memory tables
// (there is no bool or byte memory table), expressed as typed
// Go pointers since the control program here is itself a Go plugin exposing
// package-level variables rather than an arbitrary-ABI shared object.
//
// This package does not hold the priority-inheriting mutex that guards
// concurrent plugin/program access during a scan cycle; that mutex lives
// above it (see pkg/plugin.PriorityMutex) and is shared by reference. The
// mutex declared here only guards the administrative FillNullWithScratch and
// Clear operations against concurrent callers of those two methods.
package image
