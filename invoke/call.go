package invoke

import (
	"github.com/wippyai/wasm-programs/errors"
	"github.com/wippyai/wasm-programs/handle"
	"github.com/wippyai/wasm-programs/host"
	"github.com/wippyai/wasm-programs/value"
)

// Call invokes method on target and returns its raw 64-bit result.
// It blocks until the callee, including its own nested calls, completes.
func Call(t *host.Transit, caller, target handle.Handle, method string, args ...value.Value) (int64, error) {
	packed, err := Pack(args...)
	if err != nil {
		return 0, err
	}
	return t.Invoke(caller, target, method, packed)
}

// CallValue invokes method on target and decodes the value it returned.
// Callees that finish without calling Return yield their raw result as an
// Integer.
func CallValue(t *host.Transit, caller, target handle.Handle, method string, args ...value.Value) (value.Value, error) {
	packed, err := Pack(args...)
	if err != nil {
		return value.Value{}, err
	}
	raw, err := t.InvokeValue(caller, target, method, packed)
	if err != nil {
		return value.Value{}, err
	}
	v, err := value.Decode(raw)
	if err != nil {
		return value.Value{}, errors.Wrap(errors.PhaseInvoke, errors.KindOf(err), err, "decode result of "+method)
	}
	return v, nil
}

// Return publishes v as the result of the call self is serving.
func Return(t *host.Transit, self handle.Handle, v value.Value) error {
	b, err := value.Encode(v)
	if err != nil {
		return err
	}
	return t.Return(self, b)
}
