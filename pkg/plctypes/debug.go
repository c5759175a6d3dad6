package plctypes

// Debug sub-protocol function codes.
const (
	DebugInfo    byte = 0x41
	DebugSet     byte = 0x42
	DebugGet     byte = 0x43
	DebugGetList byte = 0x44
	DebugGetMD5  byte = 0x45
)

// Debug sub-protocol status bytes.
const (
	DebugStatusOK          byte = 0x7E
	DebugStatusOutOfBounds byte = 0x81
	DebugStatusOutOfMemory byte = 0x82
)

// MaxDebugFrame is the largest frame the debug sub-protocol will construct or
// accept, matching the processing buffer size in debug_handler.c.
const MaxDebugFrame = 4096

// MaxDebugGetListIndices is the upper bound on how many indices a single
// DEBUG_GET_LIST request may name before it is rejected with
// DebugStatusOutOfMemory.
const MaxDebugGetListIndices = 256
