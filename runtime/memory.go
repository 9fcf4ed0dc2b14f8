package runtime

import (
	"context"
	"fmt"
	"slices"

	"github.com/tetratelabs/wazero/api"

	wasmprograms "github.com/wippyai/wasm-programs"
	"github.com/wippyai/wasm-programs/abi"
)

// guestMemory adapts a wazero memory to wasmprograms.Memory.
type guestMemory struct {
	mem api.Memory
}

var (
	_ wasmprograms.Memory      = (*guestMemory)(nil)
	_ wasmprograms.MemorySizer = (*guestMemory)(nil)
	_ wasmprograms.Allocator   = (*guestAllocator)(nil)
)

func wrapMemory(mod api.Module) (*guestMemory, error) {
	mem := mod.Memory()
	if mem == nil {
		return nil, fmt.Errorf("module %q exports no memory", mod.Name())
	}
	return &guestMemory{mem: mem}, nil
}

// Read copies length bytes out of memory. The copy stays valid after the
// guest writes or grows its memory.
func (m *guestMemory) Read(offset uint32, length uint32) ([]byte, error) {
	data, ok := m.mem.Read(offset, length)
	if !ok {
		return nil, fmt.Errorf("memory read out of bounds: offset=%d, length=%d", offset, length)
	}
	return slices.Clone(data), nil
}

func (m *guestMemory) Write(offset uint32, data []byte) error {
	if !m.mem.Write(offset, data) {
		return fmt.Errorf("memory write out of bounds: offset=%d, length=%d", offset, len(data))
	}
	return nil
}

func (m *guestMemory) Size() uint32 {
	return m.mem.Size()
}

// guestAllocator calls the guest's alloc export. The guest takes ownership
// of what it hands out, so Free does nothing.
type guestAllocator struct {
	ctx context.Context
	fn  api.Function
}

func wrapAllocator(ctx context.Context, mod api.Module) (*guestAllocator, error) {
	fn := mod.ExportedFunction(abi.ExportAlloc)
	if fn == nil {
		return nil, fmt.Errorf("module %q does not export %s", mod.Name(), abi.ExportAlloc)
	}
	return &guestAllocator{ctx: ctx, fn: fn}, nil
}

// Alloc ignores align; the guest allocator returns byte-aligned spans.
func (a *guestAllocator) Alloc(size, _ uint32) (uint32, error) {
	results, err := a.fn.Call(a.ctx, uint64(size))
	if err != nil {
		return 0, fmt.Errorf("allocation failed: %w", err)
	}
	if len(results) == 0 {
		return 0, fmt.Errorf("allocation returned no result")
	}
	ptr := api.DecodeU32(results[0])
	if ptr == 0 {
		return 0, fmt.Errorf("allocation of %d bytes returned null", size)
	}
	return ptr, nil
}

func (a *guestAllocator) Free(_, _, _ uint32) {}

// place copies data into freshly allocated guest memory and returns its
// pointer. Empty data is passed as a zero pointer.
func place(ctx context.Context, mod api.Module, data []byte) (uint32, error) {
	if len(data) == 0 {
		return 0, nil
	}
	mem, err := wrapMemory(mod)
	if err != nil {
		return 0, err
	}
	alloc, err := wrapAllocator(ctx, mod)
	if err != nil {
		return 0, err
	}
	ptr, err := alloc.Alloc(uint32(len(data)), 1)
	if err != nil {
		return 0, err
	}
	if err := mem.Write(ptr, data); err != nil {
		return 0, err
	}
	return ptr, nil
}

// read copies a span the guest passed to a host function.
func read(mod api.Module, ptr, length uint32) ([]byte, error) {
	if length == 0 {
		return []byte{}, nil
	}
	mem, err := wrapMemory(mod)
	if err != nil {
		return nil, err
	}
	return mem.Read(ptr, length)
}
