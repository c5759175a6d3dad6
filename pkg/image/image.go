package image

import "sync"

// Capacity is the fixed slot count of every image table.
const Capacity = 1024

// Tables is the shared I/O memory the control program and plugins exchange.
// Every exported field is a fixed-length array of pointers; a nil entry means
// no program variable is currently glued to that slot.
type Tables struct {
	mu sync.Mutex

	BoolIn  [Capacity][8]*bool
	BoolOut [Capacity][8]*bool
	ByteIn  [Capacity]*byte
	ByteOut [Capacity]*byte
	IntIn   [Capacity]*uint16
	IntOut  [Capacity]*uint16
	DintIn  [Capacity]*uint32
	DintOut [Capacity]*uint32
	LintIn  [Capacity]*uint64
	LintOut [Capacity]*uint64
	IntMem  [Capacity]*uint16
	DintMem [Capacity]*uint32
	LintMem [Capacity]*uint64

	scratchBoolIn  [Capacity][8]bool
	scratchBoolOut [Capacity][8]bool
	scratchByteIn  [Capacity]byte
	scratchByteOut [Capacity]byte
	scratchIntIn   [Capacity]uint16
	scratchIntOut  [Capacity]uint16
	scratchDintIn  [Capacity]uint32
	scratchDintOut [Capacity]uint32
	scratchLintIn  [Capacity]uint64
	scratchLintOut [Capacity]uint64
	scratchIntMem  [Capacity]uint16
	scratchDintMem [Capacity]uint32
	scratchLintMem [Capacity]uint64
}

// New returns an empty table set, every slot NULL.
func New() *Tables {
	return &Tables{}
}

// FillNullWithScratch installs a pointer to a zero-initialized scratch cell
// in every currently-NULL slot, so concurrent plugin reads/writes cannot
// dereference a nil pointer. It is idempotent: a slot already bound (by a
// program's glue_vars, or by an earlier call to this method) is left alone.
// It returns the number of slots it filled.
func (t *Tables) FillNullWithScratch() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	filled := 0

	for i := 0; i < Capacity; i++ {
		for b := 0; b < 8; b++ {
			if t.BoolIn[i][b] == nil {
				t.scratchBoolIn[i][b] = false
				t.BoolIn[i][b] = &t.scratchBoolIn[i][b]
				filled++
			}
			if t.BoolOut[i][b] == nil {
				t.scratchBoolOut[i][b] = false
				t.BoolOut[i][b] = &t.scratchBoolOut[i][b]
				filled++
			}
		}

		if t.ByteIn[i] == nil {
			t.scratchByteIn[i] = 0
			t.ByteIn[i] = &t.scratchByteIn[i]
			filled++
		}
		if t.ByteOut[i] == nil {
			t.scratchByteOut[i] = 0
			t.ByteOut[i] = &t.scratchByteOut[i]
			filled++
		}

		if t.IntIn[i] == nil {
			t.scratchIntIn[i] = 0
			t.IntIn[i] = &t.scratchIntIn[i]
			filled++
		}
		if t.IntOut[i] == nil {
			t.scratchIntOut[i] = 0
			t.IntOut[i] = &t.scratchIntOut[i]
			filled++
		}

		if t.DintIn[i] == nil {
			t.scratchDintIn[i] = 0
			t.DintIn[i] = &t.scratchDintIn[i]
			filled++
		}
		if t.DintOut[i] == nil {
			t.scratchDintOut[i] = 0
			t.DintOut[i] = &t.scratchDintOut[i]
			filled++
		}

		if t.LintIn[i] == nil {
			t.scratchLintIn[i] = 0
			t.LintIn[i] = &t.scratchLintIn[i]
			filled++
		}
		if t.LintOut[i] == nil {
			t.scratchLintOut[i] = 0
			t.LintOut[i] = &t.scratchLintOut[i]
			filled++
		}

		if t.IntMem[i] == nil {
			t.scratchIntMem[i] = 0
			t.IntMem[i] = &t.scratchIntMem[i]
			filled++
		}
		if t.DintMem[i] == nil {
			t.scratchDintMem[i] = 0
			t.DintMem[i] = &t.scratchDintMem[i]
			filled++
		}
		if t.LintMem[i] == nil {
			t.scratchLintMem[i] = 0
			t.LintMem[i] = &t.scratchLintMem[i]
			filled++
		}
	}

	return filled
}

// Clear sets every slot in every table back to NULL. Called immediately
// after a program unloads, before the next load's glue_vars binds fresh
// addresses. Scratch cells are left as-is; a subsequent FillNullWithScratch
// will reinitialize whichever ones it reuses.
func (t *Tables) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := 0; i < Capacity; i++ {
		for b := 0; b < 8; b++ {
			t.BoolIn[i][b] = nil
			t.BoolOut[i][b] = nil
		}
		t.ByteIn[i] = nil
		t.ByteOut[i] = nil
		t.IntIn[i] = nil
		t.IntOut[i] = nil
		t.DintIn[i] = nil
		t.DintOut[i] = nil
		t.LintIn[i] = nil
		t.LintOut[i] = nil
		t.IntMem[i] = nil
		t.DintMem[i] = nil
		t.LintMem[i] = nil
	}
}
