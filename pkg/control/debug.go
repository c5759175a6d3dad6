package control

import (
	"github.com/sitaram-kernallogicautomation/openplc-runtime-v4/pkg/loader"
	"github.com/sitaram-kernallogicautomation/openplc-runtime-v4/pkg/plctypes"
)

// processDebugFrame dispatches one binary debug request per
// debug_handler.c's process_debug_data. It returns nil when no program is
// loaded, the frame is empty, or the function code is unrecognized,
// signaling the caller to report ERROR_PROCESSING.
func processDebugFrame(handle *loader.Handle, tick uint64, data []byte) []byte {
	if handle == nil || len(data) < 1 {
		return nil
	}

	fcode := data[0]
	var field1, field2 uint16
	var flag uint8
	var length uint16
	var value []byte
	var endiannessCheck []byte

	if len(data) >= 3 {
		field1 = uint16(data[1])<<8 | uint16(data[2])
	}
	if len(data) >= 5 {
		field2 = uint16(data[3])<<8 | uint16(data[4])
	}
	if len(data) >= 4 {
		flag = data[3]
	}
	if len(data) >= 6 {
		length = uint16(data[4])<<8 | uint16(data[5])
	}
	if len(data) >= 7 {
		value = data[6:]
	}
	if len(data) >= 2 {
		end := 3
		if end > len(data) {
			end = len(data)
		}
		endiannessCheck = data[1:end]
	}

	switch fcode {
	case plctypes.DebugInfo:
		return debugInfo(handle)
	case plctypes.DebugGet:
		return debugGet(handle, tick, field1, field2)
	case plctypes.DebugGetList:
		indexData := []byte{}
		if len(data) > 3 {
			indexData = data[3:]
		}
		return debugGetList(handle, tick, field1, indexData)
	case plctypes.DebugSet:
		return debugSet(handle, field1, flag, length, value)
	case plctypes.DebugGetMD5:
		return debugGetMD5(handle, endiannessCheck)
	default:
		return nil
	}
}

func varCount(handle *loader.Handle) uint16 {
	if handle.Bindings.GetVarCount == nil {
		return 0
	}
	return handle.Bindings.GetVarCount()
}

func debugInfo(handle *loader.Handle) []byte {
	count := varCount(handle)
	return []byte{plctypes.DebugInfo, byte(count >> 8), byte(count)}
}

func debugSet(handle *loader.Handle, varidx uint16, flag uint8, length uint16, value []byte) []byte {
	if varidx >= varCount(handle) || length > plctypes.MaxDebugFrame-7 {
		return []byte{plctypes.DebugSet, plctypes.DebugStatusOutOfBounds}
	}

	if handle.Bindings.SetTrace != nil {
		v := value
		if int(length) <= len(v) {
			v = v[:length]
		}
		handle.Bindings.SetTrace(uint64(varidx), flag != 0, v)
	}

	return []byte{plctypes.DebugSet, plctypes.DebugStatusOK}
}

// debugHeader builds the common ten-byte header shared by DEBUG_GET and
// DEBUG_GET_LIST responses.
func debugHeader(fcode byte, lastIdx uint16, tick uint64, payloadLen int) []byte {
	h := make([]byte, 10)
	h[0] = fcode
	h[1] = plctypes.DebugStatusOK
	h[2] = byte(lastIdx >> 8)
	h[3] = byte(lastIdx)
	h[4] = byte(tick >> 24)
	h[5] = byte(tick >> 16)
	h[6] = byte(tick >> 8)
	h[7] = byte(tick)
	h[8] = byte(payloadLen >> 8)
	h[9] = byte(payloadLen)
	return h
}

func debugGet(handle *loader.Handle, tick uint64, start, end uint16) []byte {
	count := varCount(handle)
	if start >= count || end >= count || start > end {
		return []byte{plctypes.DebugGet, plctypes.DebugStatusOutOfBounds}
	}

	var payload []byte
	lastIdx := start
	for idx := start; idx <= end; idx++ {
		size := 0
		if handle.Bindings.GetVarSize != nil {
			size = int(handle.Bindings.GetVarSize(uint64(idx)))
		}
		if 10+len(payload)+size > plctypes.MaxDebugFrame {
			break
		}
		if handle.Bindings.GetVarBytes != nil {
			payload = append(payload, handle.Bindings.GetVarBytes(uint64(idx))...)
		}
		lastIdx = idx
	}

	return append(debugHeader(plctypes.DebugGet, lastIdx, tick, len(payload)), payload...)
}

func debugGetList(handle *loader.Handle, tick uint64, n uint16, indexData []byte) []byte {
	if n > plctypes.MaxDebugGetListIndices {
		return []byte{plctypes.DebugGetList, plctypes.DebugStatusOutOfMemory}
	}

	count := varCount(handle)
	indices := make([]uint16, 0, n)
	for i := uint16(0); i < n; i++ {
		if int(i)*2+1 >= len(indexData) {
			break
		}
		indices = append(indices, uint16(indexData[i*2])<<8|uint16(indexData[i*2+1]))
	}

	var payload []byte
	var lastIdx uint16
	for _, idx := range indices {
		if idx >= count {
			return []byte{plctypes.DebugGetList, plctypes.DebugStatusOutOfBounds}
		}
		size := 0
		if handle.Bindings.GetVarSize != nil {
			size = int(handle.Bindings.GetVarSize(uint64(idx)))
		}
		if 10+len(payload)+size > plctypes.MaxDebugFrame {
			break
		}
		if handle.Bindings.GetVarBytes != nil {
			payload = append(payload, handle.Bindings.GetVarBytes(uint64(idx))...)
		}
		lastIdx = idx
	}

	return append(debugHeader(plctypes.DebugGetList, lastIdx, tick, len(payload)), payload...)
}

func debugGetMD5(handle *loader.Handle, endiannessCheck []byte) []byte {
	if len(endiannessCheck) < 2 {
		return []byte{plctypes.DebugGetMD5, plctypes.DebugStatusOutOfBounds}
	}

	check := uint16(endiannessCheck[0])<<8 | uint16(endiannessCheck[1])
	switch check {
	case 0xDEAD:
		if handle.Bindings.SetEndianness != nil {
			handle.Bindings.SetEndianness(0)
		}
	case 0xADDE:
		if handle.Bindings.SetEndianness != nil {
			handle.Bindings.SetEndianness(1)
		}
	default:
		return []byte{plctypes.DebugGetMD5, plctypes.DebugStatusOutOfBounds}
	}

	md5 := ""
	if handle.Bindings.ProgramMD5 != nil {
		md5 = handle.Bindings.ProgramMD5()
	}

	resp := append([]byte{plctypes.DebugGetMD5, plctypes.DebugStatusOK}, []byte(md5)...)
	return append(resp, 0x00)
}
