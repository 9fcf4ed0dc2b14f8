//go:build wasip1

package host

import "unsafe"

//go:wasmimport map init_program
func hostInitProgram() int64

//go:wasmimport map store_bytes
func hostStoreBytes(owner int64, keyPtr unsafe.Pointer, keyLen uint32, valuePtr unsafe.Pointer, valueLen uint32) int32

//go:wasmimport map get_bytes_len
func hostBytesLen(owner int64, keyPtr unsafe.Pointer, keyLen uint32) int32

//go:wasmimport map get_bytes
func hostGetBytes(owner int64, keyPtr unsafe.Pointer, keyLen uint32, declared int32) int32

//go:wasmimport program invoke_program
func hostInvokeProgram(caller, target int64, methodPtr unsafe.Pointer, methodLen uint32, argsPtr unsafe.Pointer, argsLen uint32) int64

//go:wasmimport program invoke_program_value
func hostInvokeProgramValue(caller, target int64, methodPtr unsafe.Pointer, methodLen uint32, argsPtr unsafe.Pointer, argsLen uint32) int32

//go:wasmimport program take_result
func hostTakeResult(caller int64, declared int32) int32

//go:wasmimport program set_result
func hostSetResult(owner int64, resultPtr unsafe.Pointer, resultLen uint32) int32

var buffers = newBufferTable()

// guestAlloc is called by the host while it serves get_bytes, take_result or
// an inbound call, to place a buffer in this module's memory.
//
//go:wasmexport alloc
func guestAlloc(size uint32) uint32 {
	return uint32(buffers.alloc(size))
}

// Args claims the packed argument buffer the host placed in memory before
// calling an exported method. Entry points call it exactly once.
func Args(ptr, length uint32) ([]byte, bool) {
	if length == 0 {
		return []byte{}, true
	}
	return buffers.claim(uintptr(ptr), int(length))
}

var platform Host = wasmHost{}

type wasmHost struct{}

func (wasmHost) InitProgram() int64 {
	return hostInitProgram()
}

func (wasmHost) StoreBytes(owner int64, key, value []byte) int32 {
	return hostStoreBytes(owner, bytesPtr(key), uint32(len(key)), bytesPtr(value), uint32(len(value)))
}

func (wasmHost) BytesLen(owner int64, key []byte) int32 {
	return hostBytesLen(owner, bytesPtr(key), uint32(len(key)))
}

func (wasmHost) TakeBytes(owner int64, key []byte, declared int32) []byte {
	ptr := hostGetBytes(owner, bytesPtr(key), uint32(len(key)), declared)
	return take(ptr, declared)
}

func (wasmHost) InvokeProgram(caller, target int64, method string, args []byte) int64 {
	return hostInvokeProgram(caller, target,
		unsafe.Pointer(unsafe.StringData(method)), uint32(len(method)),
		bytesPtr(args), uint32(len(args)))
}

func (wasmHost) InvokeProgramValue(caller, target int64, method string, args []byte) int32 {
	return hostInvokeProgramValue(caller, target,
		unsafe.Pointer(unsafe.StringData(method)), uint32(len(method)),
		bytesPtr(args), uint32(len(args)))
}

func (wasmHost) TakeResult(caller int64, declared int32) []byte {
	return take(hostTakeResult(caller, declared), declared)
}

func (wasmHost) SetResult(owner int64, result []byte) int32 {
	return hostSetResult(owner, bytesPtr(result), uint32(len(result)))
}

func bytesPtr(b []byte) unsafe.Pointer {
	return unsafe.Pointer(unsafe.SliceData(b))
}

// take claims the span the host just returned. A zero pointer means the host
// failed to allocate.
func take(ptr int32, declared int32) []byte {
	if ptr == 0 || declared < 0 {
		return nil
	}
	buf, ok := buffers.claim(uintptr(uint32(ptr)), int(declared))
	if !ok {
		return nil
	}
	return buf
}
