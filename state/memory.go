package state

import (
	"context"
	"slices"
	"sync"

	"github.com/wippyai/wasm-programs/errors"
	"github.com/wippyai/wasm-programs/handle"
)

// Memory is a Backend kept in process memory.
type Memory struct {
	kv       map[handle.Handle]map[string][]byte
	programs map[handle.Handle][]byte
	next     handle.Handle
	mu       sync.RWMutex
}

var _ Backend = (*Memory)(nil)

// NewMemory returns an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{
		kv:       make(map[handle.Handle]map[string][]byte),
		programs: make(map[handle.Handle][]byte),
		next:     1,
	}
}

// Get returns a copy of the value stored under key for owner.
func (m *Memory) Get(_ context.Context, owner handle.Handle, key []byte) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.kv[owner][string(key)]
	if !ok {
		return nil, errors.NotFound(errors.PhaseStorage, key)
	}
	return slices.Clone(v), nil
}

// Put stores a copy of value under key for owner.
func (m *Memory) Put(_ context.Context, owner handle.Handle, key, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.kv[owner] == nil {
		m.kv[owner] = make(map[string][]byte)
	}
	m.kv[owner][string(key)] = append([]byte{}, value...)
	return nil
}

// PutProgram stores wasm under the next handle.
func (m *Memory) PutProgram(_ context.Context, wasm []byte) (handle.Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.next
	m.next++
	m.programs[id] = slices.Clone(wasm)
	return id, nil
}

// Program returns the module published as id.
func (m *Memory) Program(_ context.Context, id handle.Handle) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	wasm, ok := m.programs[id]
	if !ok {
		return nil, errors.New(errors.PhaseLoad, errors.KindNotFound).
			Value(id).
			Detail("%s not published", id).
			Build()
	}
	return wasm, nil
}

// Programs lists published handles in ascending order.
func (m *Memory) Programs(_ context.Context) ([]handle.Handle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]handle.Handle, 0, len(m.programs))
	for id := range m.programs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

// Close is a no-op.
func (m *Memory) Close() error {
	return nil
}
