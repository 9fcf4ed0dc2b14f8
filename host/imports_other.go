//go:build !wasip1

package host

import "github.com/wippyai/wasm-programs/abi"

// Outside a wasm module there is no host to call. The stub fails every
// operation with the sentinel a real host would use.
var platform Host = unavailable{}

type unavailable struct{}

func (unavailable) InitProgram() int64 { return 0 }

func (unavailable) StoreBytes(int64, []byte, []byte) int32 { return abi.StatusFailed }

func (unavailable) BytesLen(int64, []byte) int32 { return abi.LengthNotFound }

func (unavailable) TakeBytes(int64, []byte, int32) []byte { return nil }

func (unavailable) InvokeProgram(int64, int64, string, []byte) int64 { return 0 }

func (unavailable) InvokeProgramValue(int64, int64, string, []byte) int32 { return abi.LengthHostError }

func (unavailable) TakeResult(int64, int32) []byte { return nil }

func (unavailable) SetResult(int64, []byte) int32 { return abi.StatusFailed }

// Args always fails outside a wasm module.
func Args(ptr, length uint32) ([]byte, bool) {
	return nil, false
}
