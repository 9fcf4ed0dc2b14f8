// Package hosttest provides an in-memory host.Host for tests of guest code.
package hosttest

import (
	"github.com/wippyai/wasm-programs/abi"
	"github.com/wippyai/wasm-programs/handle"
	"github.com/wippyai/wasm-programs/host"
	"github.com/wippyai/wasm-programs/value"
)

// Program is a guest entry point registered with the fake host. It receives
// a transit bound to the same host, its own handle and the packed arguments.
type Program func(t *host.Transit, self handle.Handle, args []byte) int64

// Counters records how many times each import was called.
type Counters struct {
	InitProgram int
	StoreBytes  int
	BytesLen    int
	TakeBytes   int
	Invoke      int
	TakeResult  int
	SetResult   int
}

// Host is an in-memory host. The zero value is not usable; use New.
type Host struct {
	storage  map[handle.Handle]map[string][]byte
	programs map[handle.Handle]map[string]Program
	results  map[handle.Handle][]byte
	pending  map[handle.Handle][]byte

	// LastArgs holds the packed arguments of the most recent invocation.
	LastArgs []byte

	// StoreStatus is returned by StoreBytes when nonzero.
	StoreStatus int32

	// LengthOverride, when set, is returned by BytesLen for every key.
	LengthOverride *int32

	// Deliver, when set, rewrites the span TakeBytes hands over.
	Deliver func(stored []byte) []byte

	Calls Counters

	self  handle.Handle
	stack []handle.Handle
}

var _ host.Host = (*Host)(nil)

// New returns a host whose executing program is self.
func New(self handle.Handle) *Host {
	return &Host{
		storage:  make(map[handle.Handle]map[string][]byte),
		programs: make(map[handle.Handle]map[string]Program),
		results:  make(map[handle.Handle][]byte),
		pending:  make(map[handle.Handle][]byte),
		self:     self,
	}
}

// Transit returns a transit over h.
func (h *Host) Transit() *host.Transit {
	return host.NewTransit(h)
}

// Register installs method on program id.
func (h *Host) Register(id handle.Handle, method string, fn Program) {
	if h.programs[id] == nil {
		h.programs[id] = make(map[string]Program)
	}
	h.programs[id][method] = fn
}

// Stored returns the raw bytes under key for owner.
func (h *Host) Stored(owner handle.Handle, key []byte) ([]byte, bool) {
	v, ok := h.storage[owner][string(key)]
	return v, ok
}

// Keys returns the number of keys stored for owner.
func (h *Host) Keys(owner handle.Handle) int {
	return len(h.storage[owner])
}

func (h *Host) current() handle.Handle {
	if n := len(h.stack); n > 0 {
		return h.stack[n-1]
	}
	return h.self
}

func (h *Host) InitProgram() int64 {
	h.Calls.InitProgram++
	return h.current().Int64()
}

func (h *Host) StoreBytes(owner int64, key, value []byte) int32 {
	h.Calls.StoreBytes++
	if h.StoreStatus != abi.StatusOK {
		return h.StoreStatus
	}
	id := handle.FromHost(owner)
	if h.storage[id] == nil {
		h.storage[id] = make(map[string][]byte)
	}
	h.storage[id][string(key)] = append([]byte(nil), value...)
	return abi.StatusOK
}

func (h *Host) BytesLen(owner int64, key []byte) int32 {
	h.Calls.BytesLen++
	if h.LengthOverride != nil {
		return *h.LengthOverride
	}
	v, ok := h.storage[handle.FromHost(owner)][string(key)]
	if !ok {
		return abi.LengthNotFound
	}
	return int32(len(v))
}

func (h *Host) TakeBytes(owner int64, key []byte, declared int32) []byte {
	h.Calls.TakeBytes++
	v, ok := h.storage[handle.FromHost(owner)][string(key)]
	if !ok || declared < 0 {
		return nil
	}
	if h.Deliver != nil {
		return h.Deliver(append([]byte(nil), v...))
	}
	n := min(int(declared), len(v))
	return append(make([]byte, 0, declared), v[:n]...)
}

func (h *Host) InvokeProgram(caller, target int64, method string, args []byte) int64 {
	h.Calls.Invoke++
	ret, _ := h.run(handle.FromHost(target), method, args)
	return ret
}

func (h *Host) InvokeProgramValue(caller, target int64, method string, args []byte) int32 {
	h.Calls.Invoke++
	ret, ok := h.run(handle.FromHost(target), method, args)
	if !ok {
		return abi.LengthHostError
	}
	id := handle.FromHost(target)
	result, published := h.results[id]
	delete(h.results, id)
	if !published {
		result = value.MustEncode(value.Int(ret))
	}
	h.pending[handle.FromHost(caller)] = result
	return int32(len(result))
}

func (h *Host) TakeResult(caller int64, declared int32) []byte {
	h.Calls.TakeResult++
	id := handle.FromHost(caller)
	result, ok := h.pending[id]
	delete(h.pending, id)
	if !ok || int(declared) != len(result) {
		return nil
	}
	return result
}

func (h *Host) SetResult(owner int64, result []byte) int32 {
	h.Calls.SetResult++
	h.results[handle.FromHost(owner)] = append([]byte(nil), result...)
	return abi.StatusOK
}

func (h *Host) run(target handle.Handle, method string, args []byte) (int64, bool) {
	fn, ok := h.programs[target][method]
	if !ok {
		return 0, false
	}
	h.LastArgs = append([]byte(nil), args...)
	h.stack = append(h.stack, target)
	defer func() { h.stack = h.stack[:len(h.stack)-1] }()
	return fn(host.NewTransit(h), target, append([]byte(nil), args...)), true
}
