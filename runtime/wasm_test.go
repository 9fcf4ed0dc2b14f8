package runtime

// A minimal encoder for the core modules the tests run. Every module gets an
// exported memory and a bump allocator exported as "alloc" whose heap starts
// at heapBase; data segments live below it.

const heapBase = 1024

const (
	tI32 byte = 0x7f
	tI64 byte = 0x7e
)

// Function types every test module declares first.
const (
	typeAlloc uint32 = iota // (i32) -> i32
	typeEntry               // (i64, i32, i32) -> i64
	firstUserType
)

type wasmFunc struct {
	typ    uint32
	locals []byte // encoded local declarations, without the count
	nlocal uint32
	body   []byte // instructions, including the final end
}

type wasmImport struct {
	module, name string
	typ          uint32
}

type wasmExport struct {
	name string
	fn   uint32 // index among defined functions
}

type wasmModule struct {
	types   [][2][]byte
	imports []wasmImport
	funcs   []wasmFunc
	exports []wasmExport
	data    []byte
}

func newModule() *wasmModule {
	m := &wasmModule{
		types: [][2][]byte{
			{{tI32}, {tI32}},
			{{tI64, tI32, tI32}, {tI64}},
		},
	}
	m.funcs = append(m.funcs, wasmFunc{
		typ: typeAlloc,
		// global.get 0; global.get 0; local.get 0; i32.add; global.set 0
		body: []byte{0x23, 0x00, 0x23, 0x00, 0x20, 0x00, 0x6a, 0x24, 0x00, 0x0b},
	})
	m.exports = append(m.exports, wasmExport{name: "alloc", fn: 0})
	return m
}

func (m *wasmModule) addType(params, results []byte) uint32 {
	m.types = append(m.types, [2][]byte{params, results})
	return uint32(len(m.types) - 1)
}

// addImport must be called before any call instruction refers to it.
// It returns the function index of the import.
func (m *wasmModule) addImport(module, name string, params, results []byte) uint32 {
	m.imports = append(m.imports, wasmImport{module: module, name: name, typ: m.addType(params, results)})
	return uint32(len(m.imports) - 1)
}

func (m *wasmModule) export(name string, f wasmFunc) {
	m.funcs = append(m.funcs, f)
	m.exports = append(m.exports, wasmExport{name: name, fn: uint32(len(m.funcs) - 1)})
}

func (m *wasmModule) bytes() []byte {
	out := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

	var types [][]byte
	for _, t := range m.types {
		types = append(types, cat([]byte{0x60}, vecBytes(t[0]), vecBytes(t[1])))
	}
	out = append(out, section(1, vec(types...))...)

	if len(m.imports) > 0 {
		var imports [][]byte
		for _, im := range m.imports {
			imports = append(imports, cat(name(im.module), name(im.name), []byte{0x00}, uleb(im.typ)))
		}
		out = append(out, section(2, vec(imports...))...)
	}

	var funcs [][]byte
	for _, f := range m.funcs {
		funcs = append(funcs, uleb(f.typ))
	}
	out = append(out, section(3, vec(funcs...))...)

	// one page, no maximum
	out = append(out, section(5, vec([]byte{0x00, 0x01}))...)

	// mutable i32 heap pointer
	out = append(out, section(6, vec(cat([]byte{tI32, 0x01, 0x41}, sleb(heapBase), []byte{0x0b})))...)

	exports := [][]byte{cat(name("memory"), []byte{0x02, 0x00})}
	base := uint32(len(m.imports))
	for _, e := range m.exports {
		exports = append(exports, cat(name(e.name), []byte{0x00}, uleb(base+e.fn)))
	}
	out = append(out, section(7, vec(exports...))...)

	var code [][]byte
	for _, f := range m.funcs {
		var locals []byte
		if f.nlocal > 0 {
			locals = cat(uleb(1), uleb(f.nlocal), f.locals)
		} else {
			locals = uleb(0)
		}
		entry := cat(locals, f.body)
		code = append(code, cat(uleb(uint32(len(entry))), entry))
	}
	out = append(out, section(10, vec(code...))...)

	if len(m.data) > 0 {
		segment := cat([]byte{0x00, 0x41, 0x00, 0x0b}, vecBytes(m.data))
		out = append(out, section(11, vec(segment))...)
	}
	return out
}

func section(id byte, payload []byte) []byte {
	return cat([]byte{id}, uleb(uint32(len(payload))), payload)
}

func vec(items ...[]byte) []byte {
	return cat(append([][]byte{uleb(uint32(len(items)))}, items...)...)
}

func vecBytes(b []byte) []byte {
	return cat(uleb(uint32(len(b))), b)
}

func name(s string) []byte {
	return vecBytes([]byte(s))
}

func cat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func uleb(v uint32) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			out = append(out, b|0x80)
			continue
		}
		return append(out, b)
	}
}

func sleb(v int64) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0) {
			return append(out, b)
		}
		out = append(out, b|0x80)
	}
}

// Instruction helpers.

func localGet(i uint32) []byte { return cat([]byte{0x20}, uleb(i)) }
func localSet(i uint32) []byte { return cat([]byte{0x21}, uleb(i)) }
func i32Const(v int32) []byte  { return cat([]byte{0x41}, sleb(int64(v))) }
func i64Const(v int64) []byte  { return cat([]byte{0x42}, sleb(v)) }
func call(fn uint32) []byte    { return cat([]byte{0x10}, uleb(fn)) }
func i64ExtendI32S() []byte    { return []byte{0xac} }
func i64ExtendI32U() []byte    { return []byte{0xad} }
func drop() []byte             { return []byte{0x1a} }
func end() []byte              { return []byte{0x0b} }
func i64Add() []byte           { return []byte{0x7c} }
