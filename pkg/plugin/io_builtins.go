package plugin

import (
	"fmt"

	"go.starlark.net/starlark"

	"github.com/sitaram-kernallogicautomation/openplc-runtime-v4/pkg/image"
)

// ioGetBuiltin and ioSetBuiltin expose the shared image tables to scripted
// plugins as io_get(width, direction, idx, bit=-1) and
// io_set(width, direction, idx, value, bit=-1). width is one of
// "bool"/"byte"/"int"/"dint"/"lint"; direction is "in"/"out"/"mem"; bit is
// only meaningful (and required) for width "bool". Access is bracketed by
// args.Lock/Unlock, the same discipline the scan thread follows, since
// scripted plugin code runs outside the scan goroutine, concurrently with
// the scan cycle.
func ioGetBuiltin(args *RuntimeArgs) func(*starlark.Thread, *starlark.Builtin, starlark.Tuple, []starlark.Tuple) (starlark.Value, error) {
	return func(_ *starlark.Thread, fn *starlark.Builtin, sargs starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var width, direction string
		var idx, bit int
		bit = -1
		if err := starlark.UnpackArgs(fn.Name(), sargs, kwargs,
			"width", &width, "direction", &direction, "idx", &idx, "bit?", &bit); err != nil {
			return nil, err
		}

		if args.Lock != nil {
			args.Lock()
			defer args.Unlock()
		}

		v, err := readSlot(args.Tables, width, direction, idx, bit)
		if err != nil {
			return nil, err
		}
		return starlark.MakeInt64(v), nil
	}
}

func ioSetBuiltin(args *RuntimeArgs) func(*starlark.Thread, *starlark.Builtin, starlark.Tuple, []starlark.Tuple) (starlark.Value, error) {
	return func(_ *starlark.Thread, fn *starlark.Builtin, sargs starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var width, direction string
		var idx, bit int
		var value int64
		bit = -1
		if err := starlark.UnpackArgs(fn.Name(), sargs, kwargs,
			"width", &width, "direction", &direction, "idx", &idx, "value", &value, "bit?", &bit); err != nil {
			return nil, err
		}

		if args.Lock != nil {
			args.Lock()
			defer args.Unlock()
		}

		if err := writeSlot(args.Tables, width, direction, idx, bit, value); err != nil {
			return nil, err
		}
		return starlark.None, nil
	}
}

func readSlot(t *image.Tables, width, direction string, idx, bit int) (int64, error) {
	if idx < 0 || idx >= image.Capacity {
		return 0, fmt.Errorf("io_get: index %d out of range", idx)
	}

	switch width {
	case "bool":
		ptr, err := boolSlot(t, direction, idx, bit)
		if err != nil {
			return 0, err
		}
		if *ptr {
			return 1, nil
		}
		return 0, nil
	case "byte":
		ptr, err := byteSlot(t, direction, idx)
		if err != nil {
			return 0, err
		}
		return int64(*ptr), nil
	case "int":
		ptr, err := intSlot(t, direction, idx)
		if err != nil {
			return 0, err
		}
		return int64(*ptr), nil
	case "dint":
		ptr, err := dintSlot(t, direction, idx)
		if err != nil {
			return 0, err
		}
		return int64(*ptr), nil
	case "lint":
		ptr, err := lintSlot(t, direction, idx)
		if err != nil {
			return 0, err
		}
		return int64(*ptr), nil
	default:
		return 0, fmt.Errorf("io_get: unknown width %q", width)
	}
}

func writeSlot(t *image.Tables, width, direction string, idx, bit int, value int64) error {
	if idx < 0 || idx >= image.Capacity {
		return fmt.Errorf("io_set: index %d out of range", idx)
	}

	switch width {
	case "bool":
		ptr, err := boolSlot(t, direction, idx, bit)
		if err != nil {
			return err
		}
		*ptr = value != 0
	case "byte":
		ptr, err := byteSlot(t, direction, idx)
		if err != nil {
			return err
		}
		*ptr = byte(value)
	case "int":
		ptr, err := intSlot(t, direction, idx)
		if err != nil {
			return err
		}
		*ptr = uint16(value)
	case "dint":
		ptr, err := dintSlot(t, direction, idx)
		if err != nil {
			return err
		}
		*ptr = uint32(value)
	case "lint":
		ptr, err := lintSlot(t, direction, idx)
		if err != nil {
			return err
		}
		*ptr = uint64(value)
	default:
		return fmt.Errorf("io_set: unknown width %q", width)
	}
	return nil
}

func boolSlot(t *image.Tables, direction string, idx, bit int) (*bool, error) {
	if bit < 0 || bit > 7 {
		return nil, fmt.Errorf("bool access requires bit in 0..7, got %d", bit)
	}
	var p *bool
	switch direction {
	case "in":
		p = t.BoolIn[idx][bit]
	case "out":
		p = t.BoolOut[idx][bit]
	default:
		return nil, fmt.Errorf("unknown bool direction %q", direction)
	}
	if p == nil {
		return nil, fmt.Errorf("bool_%s[%d][%d] is unbound", direction, idx, bit)
	}
	return p, nil
}

func byteSlot(t *image.Tables, direction string, idx int) (*byte, error) {
	var p *byte
	switch direction {
	case "in":
		p = t.ByteIn[idx]
	case "out":
		p = t.ByteOut[idx]
	default:
		return nil, fmt.Errorf("unknown byte direction %q", direction)
	}
	if p == nil {
		return nil, fmt.Errorf("byte_%s[%d] is unbound", direction, idx)
	}
	return p, nil
}

func intSlot(t *image.Tables, direction string, idx int) (*uint16, error) {
	var p *uint16
	switch direction {
	case "in":
		p = t.IntIn[idx]
	case "out":
		p = t.IntOut[idx]
	case "mem":
		p = t.IntMem[idx]
	default:
		return nil, fmt.Errorf("unknown int direction %q", direction)
	}
	if p == nil {
		return nil, fmt.Errorf("int_%s[%d] is unbound", direction, idx)
	}
	return p, nil
}

func dintSlot(t *image.Tables, direction string, idx int) (*uint32, error) {
	var p *uint32
	switch direction {
	case "in":
		p = t.DintIn[idx]
	case "out":
		p = t.DintOut[idx]
	case "mem":
		p = t.DintMem[idx]
	default:
		return nil, fmt.Errorf("unknown dint direction %q", direction)
	}
	if p == nil {
		return nil, fmt.Errorf("dint_%s[%d] is unbound", direction, idx)
	}
	return p, nil
}

func lintSlot(t *image.Tables, direction string, idx int) (*uint64, error) {
	var p *uint64
	switch direction {
	case "in":
		p = t.LintIn[idx]
	case "out":
		p = t.LintOut[idx]
	case "mem":
		p = t.LintMem[idx]
	default:
		return nil, fmt.Errorf("unknown lint direction %q", direction)
	}
	if p == nil {
		return nil, fmt.Errorf("lint_%s[%d] is unbound", direction, idx)
	}
	return p, nil
}
