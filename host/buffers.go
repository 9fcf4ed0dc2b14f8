package host

// bufferTable keeps guest allocations requested by the host reachable until
// the import that requested them returns and the caller claims the span.
// Entries never outlive the host call that created them. Guest modules are
// single threaded, so the table is not locked.
type bufferTable struct {
	pending map[uintptr][]byte
}

func newBufferTable() *bufferTable {
	return &bufferTable{pending: make(map[uintptr][]byte)}
}

// alloc reserves size bytes and returns their address.
func (t *bufferTable) alloc(size uint32) uintptr {
	// A zero-size slice has no stable address.
	buf := make([]byte, max(size, 1))
	ptr := addressOf(buf)
	t.pending[ptr] = buf[:size]
	return ptr
}

// claim removes the span at ptr and returns it if it is exactly n bytes.
func (t *bufferTable) claim(ptr uintptr, n int) ([]byte, bool) {
	buf, ok := t.pending[ptr]
	if !ok {
		return nil, false
	}
	delete(t.pending, ptr)
	if len(buf) != n {
		return nil, false
	}
	return buf, true
}

// outstanding reports how many spans are allocated but unclaimed.
func (t *bufferTable) outstanding() int {
	return len(t.pending)
}
