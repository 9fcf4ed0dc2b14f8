// Package program is the entry point for guest code. A Context ties the
// executing program's handle to its storage and to cross-program calls.
//
//	//go:wasmexport inc
//	func inc(self int64, ptr, n uint32) int64 {
//		ctx := program.FromHandle(host.Default(), handle.FromHost(self))
//		args, err := ctx.Args(ptr, n)
//		...
//	}
package program

import (
	"github.com/wippyai/wasm-programs/errors"
	"github.com/wippyai/wasm-programs/handle"
	"github.com/wippyai/wasm-programs/host"
	"github.com/wippyai/wasm-programs/invoke"
	"github.com/wippyai/wasm-programs/storage"
	"github.com/wippyai/wasm-programs/value"
)

// Context is a per-call view of one program. It is cheap to build and is
// not meant to outlive the call that created it.
type Context struct {
	transit *host.Transit
	store   *storage.Store
	Self    handle.Handle
}

// Init asks the host which program is executing.
func Init(h host.Host) *Context {
	t := host.NewTransit(h)
	return newContext(t, t.Self())
}

// FromHandle builds a context for a handle the host passed in.
func FromHandle(h host.Host, self handle.Handle) *Context {
	return newContext(host.NewTransit(h), self)
}

func newContext(t *host.Transit, self handle.Handle) *Context {
	return &Context{
		transit: t,
		store:   storage.New(t, self),
		Self:    self,
	}
}

// Storage returns the program's storage.
func (c *Context) Storage() *storage.Store {
	return c.store
}

// Call invokes method on target with the raw 64-bit result protocol.
func (c *Context) Call(target handle.Handle, method string, args ...value.Value) (int64, error) {
	return invoke.Call(c.transit, c.Self, target, method, args...)
}

// CallValue invokes method on target and returns its full result value.
func (c *Context) CallValue(target handle.Handle, method string, args ...value.Value) (value.Value, error) {
	return invoke.CallValue(c.transit, c.Self, target, method, args...)
}

// Return publishes v as the result of the current call.
func (c *Context) Return(v value.Value) error {
	return invoke.Return(c.transit, c.Self, v)
}

// Args claims and unpacks the argument buffer of an exported entry point.
func (c *Context) Args(ptr, length uint32) ([]value.Value, error) {
	buf, ok := host.Args(ptr, length)
	if !ok {
		return nil, errors.InvalidByteLength(errors.PhaseInvoke, int64(length))
	}
	return c.Unpack(buf)
}

// Unpack decodes an already claimed argument buffer.
func (c *Context) Unpack(buf []byte) ([]value.Value, error) {
	args, err := invoke.Unpack(buf)
	if err != nil {
		return nil, err
	}
	return invoke.Values(args), nil
}
