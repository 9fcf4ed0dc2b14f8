// Package abi holds the names and sentinel values both sides of the
// guest/host boundary agree on.
package abi

// Import module names.
const (
	ModuleMap     = "map"
	ModuleProgram = "program"
)

// Functions in the "map" module.
const (
	FuncInitProgram = "init_program"
	FuncStoreBytes  = "store_bytes"
	FuncBytesLen    = "get_bytes_len"
	FuncGetBytes    = "get_bytes"
)

// Functions in the "program" module.
const (
	FuncInvokeProgram      = "invoke_program"
	FuncInvokeProgramValue = "invoke_program_value"
	FuncTakeResult         = "take_result"
	FuncSetResult          = "set_result"
)

// Guest exports.
const (
	// ExportAlloc is the guest allocator the host calls to place buffers in
	// guest memory: alloc(size i32) -> ptr i32.
	ExportAlloc = "alloc"

	// ExportInitialize is the reactor initializer emitted by Go and TinyGo.
	ExportInitialize = "_initialize"
)

// Status codes returned by store_bytes and set_result.
const (
	StatusOK     int32 = 0
	StatusFailed int32 = 1
)

// Length sentinels returned by get_bytes_len and invoke_program_value.
// Any negative length is an error; these two are distinguished.
const (
	LengthNotFound  int32 = -1
	LengthHostError int32 = -2
)

// Packed argument header: 8-byte big-endian length followed by a one-byte
// primitive flag.
const (
	ArgLengthSize = 8
	ArgHeaderSize = ArgLengthSize + 1
)

// Primitive flag values.
const (
	FlagObject    byte = 0
	FlagPrimitive byte = 1
)
