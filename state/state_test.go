package state

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/wippyai/wasm-programs/errors"
	"github.com/wippyai/wasm-programs/handle"
)

func backends(t *testing.T) map[string]Backend {
	t.Helper()
	ctx := context.Background()

	mem, err := OpenSQLite(ctx, ":memory:")
	if err != nil {
		t.Fatalf("OpenSQLite(:memory:): %v", err)
	}
	file, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("OpenSQLite(file): %v", err)
	}
	all := map[string]Backend{
		"memory":        NewMemory(),
		"sqlite-memory": mem,
		"sqlite-file":   file,
	}
	t.Cleanup(func() {
		for _, b := range all {
			b.Close()
		}
	})
	return all
}

func TestBackend_PutGet(t *testing.T) {
	ctx := context.Background()

	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if err := b.Put(ctx, 1, []byte("count"), []byte{0x01, 42}); err != nil {
				t.Fatalf("Put: %v", err)
			}
			got, err := b.Get(ctx, 1, []byte("count"))
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if !bytes.Equal(got, []byte{0x01, 42}) {
				t.Errorf("Get = %x", got)
			}

			if err := b.Put(ctx, 1, []byte("count"), []byte{7}); err != nil {
				t.Fatal(err)
			}
			got, _ = b.Get(ctx, 1, []byte("count"))
			if !bytes.Equal(got, []byte{7}) {
				t.Errorf("overwrite Get = %x", got)
			}
		})
	}
}

func TestBackend_NotFound(t *testing.T) {
	ctx := context.Background()

	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := b.Get(ctx, 1, []byte("missing")); !errors.Is(err, errors.ErrNotFound) {
				t.Errorf("Get error = %v, want not_found", err)
			}
			if _, err := b.Program(ctx, 99); !errors.Is(err, errors.ErrNotFound) {
				t.Errorf("Program error = %v, want not_found", err)
			}
		})
	}
}

func TestBackend_OwnerScoping(t *testing.T) {
	ctx := context.Background()

	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_ = b.Put(ctx, 1, []byte("k"), []byte("one"))
			_ = b.Put(ctx, 2, []byte("k"), []byte("two"))

			a, _ := b.Get(ctx, 1, []byte("k"))
			c, _ := b.Get(ctx, 2, []byte("k"))
			if string(a) != "one" || string(c) != "two" {
				t.Errorf("owner 1 = %q, owner 2 = %q", a, c)
			}
		})
	}
}

func TestBackend_BinaryKeysAndEmptyValues(t *testing.T) {
	ctx := context.Background()
	key := []byte{0, 3, 'b', 'a', 'l', 0x01, 0, 0, 0, 0, 0, 0, 0, 1}

	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if err := b.Put(ctx, 1, key, nil); err != nil {
				t.Fatal(err)
			}
			got, err := b.Get(ctx, 1, key)
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if got == nil || len(got) != 0 {
				t.Errorf("Get = %v, want empty non-nil", got)
			}
		})
	}
}

func TestBackend_Programs(t *testing.T) {
	ctx := context.Background()

	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			first, err := b.PutProgram(ctx, []byte("\x00asm-a"))
			if err != nil {
				t.Fatal(err)
			}
			second, err := b.PutProgram(ctx, []byte("\x00asm-b"))
			if err != nil {
				t.Fatal(err)
			}
			if first != 1 || second != 2 {
				t.Errorf("handles = %v, %v, want 1, 2", first, second)
			}

			wasm, err := b.Program(ctx, second)
			if err != nil || string(wasm) != "\x00asm-b" {
				t.Errorf("Program = %q, %v", wasm, err)
			}

			ids, err := b.Programs(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if len(ids) != 2 || ids[0] != first || ids[1] != second {
				t.Errorf("Programs = %v", ids)
			}
		})
	}
}

func TestMemory_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	_ = m.Put(ctx, 1, []byte("k"), []byte{1})

	v, _ := m.Get(ctx, 1, []byte("k"))
	v[0] = 9
	again, _ := m.Get(ctx, 1, []byte("k"))
	if again[0] != 1 {
		t.Error("Get exposes backing storage")
	}
}

func TestSQLite_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.db")

	db, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	_ = db.Put(ctx, handle.Handle(3), []byte("k"), []byte("v"))
	id, _ := db.PutProgram(ctx, []byte("wasm"))
	if err := db.Close(); err != nil {
		t.Fatal(err)
	}

	db, err = OpenSQLite(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	if db.Path() != path {
		t.Errorf("Path = %q", db.Path())
	}
	v, err := db.Get(ctx, 3, []byte("k"))
	if err != nil || string(v) != "v" {
		t.Errorf("Get after reopen = %q, %v", v, err)
	}
	if _, err := db.Program(ctx, id); err != nil {
		t.Errorf("Program after reopen: %v", err)
	}
	next, _ := db.PutProgram(ctx, []byte("wasm2"))
	if next != id+1 {
		t.Errorf("next handle = %v, want %v", next, id+1)
	}
}
