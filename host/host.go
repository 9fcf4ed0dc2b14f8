package host

import (
	"github.com/wippyai/wasm-programs/abi"
	"github.com/wippyai/wasm-programs/errors"
	"github.com/wippyai/wasm-programs/handle"
)

// Host is the raw host interface. Each method is one blocking round-trip.
type Host interface {
	// InitProgram returns the handle of the executing program.
	InitProgram() int64

	// StoreBytes persists value under key for owner. 0 means success.
	StoreBytes(owner int64, key, value []byte) int32

	// BytesLen returns the stored length for key, or a negative sentinel.
	BytesLen(owner int64, key []byte) int32

	// TakeBytes asks the host to place exactly declared bytes in guest
	// memory and hands the span to the caller. Each call allocates anew.
	TakeBytes(owner int64, key []byte, declared int32) []byte

	// InvokeProgram calls method on target and returns its raw result.
	InvokeProgram(caller, target int64, method string, args []byte) int64

	// InvokeProgramValue calls method on target and returns the length of
	// the encoded result held for caller, or a negative sentinel.
	InvokeProgramValue(caller, target int64, method string, args []byte) int32

	// TakeResult transfers the pending result of caller's last call.
	TakeResult(caller int64, declared int32) []byte

	// SetResult publishes owner's encoded result for the current call.
	SetResult(owner int64, result []byte) int32
}

// Transit enforces the ownership and sentinel rules over a Host.
type Transit struct {
	host Host
}

// NewTransit wraps h.
func NewTransit(h Host) *Transit {
	return &Transit{host: h}
}

// Host returns the wrapped raw host.
func (t *Transit) Host() Host {
	return t.host
}

// Self returns the executing program's handle.
func (t *Transit) Self() handle.Handle {
	return handle.FromHost(t.host.InitProgram())
}

// Store writes value under key in owner's storage.
func (t *Transit) Store(owner handle.Handle, key, value []byte) error {
	if status := t.host.StoreBytes(owner.Int64(), key, value); status != abi.StatusOK {
		return errors.HostStore(status)
	}
	return nil
}

// Fetch reads the bytes stored under key. The returned slice is owned by the
// caller. The length is checked before the host is asked for the buffer.
func (t *Transit) Fetch(owner handle.Handle, key []byte) ([]byte, error) {
	n := t.host.BytesLen(owner.Int64(), key)
	switch {
	case n == abi.LengthNotFound:
		return nil, errors.NotFound(errors.PhaseStorage, key)
	case n < 0:
		return nil, errors.InvalidByteLength(errors.PhaseStorage, int64(n))
	case n == 0:
		return []byte{}, nil
	}
	return claim(errors.PhaseStorage, t.host.TakeBytes(owner.Int64(), key, n), n)
}

// Invoke calls method on target using the raw 64-bit result protocol.
func (t *Transit) Invoke(caller, target handle.Handle, method string, args []byte) (int64, error) {
	if method == "" {
		return 0, errors.InvalidInput(errors.PhaseInvoke, "method name is empty")
	}
	return t.host.InvokeProgram(caller.Int64(), target.Int64(), method, args), nil
}

// InvokeValue calls method on target and claims the encoded result.
func (t *Transit) InvokeValue(caller, target handle.Handle, method string, args []byte) ([]byte, error) {
	if method == "" {
		return nil, errors.InvalidInput(errors.PhaseInvoke, "method name is empty")
	}
	n := t.host.InvokeProgramValue(caller.Int64(), target.Int64(), method, args)
	if n < 0 {
		return nil, errors.New(errors.PhaseInvoke, errors.KindHostInvoke).
			Value(n).
			Detail("call %s on %s failed with status %d", method, target, n).
			Build()
	}
	if n == 0 {
		return []byte{}, nil
	}
	return claim(errors.PhaseInvoke, t.host.TakeResult(caller.Int64(), n), n)
}

// Return publishes an encoded result for the call owner is serving.
func (t *Transit) Return(owner handle.Handle, encoded []byte) error {
	if status := t.host.SetResult(owner.Int64(), encoded); status != abi.StatusOK {
		return errors.New(errors.PhaseInvoke, errors.KindHostInvoke).
			Value(status).
			Detail("set result returned status %d", status).
			Build()
	}
	return nil
}

func claim(phase errors.Phase, buf []byte, declared int32) ([]byte, error) {
	if len(buf) != int(declared) {
		return nil, errors.New(phase, errors.KindInvalidByteLength).
			Value(len(buf)).
			Detail("host delivered %d bytes, declared %d", len(buf), declared).
			Build()
	}
	return buf, nil
}
