package program_test

import (
	"testing"

	"github.com/wippyai/wasm-programs/errors"
	"github.com/wippyai/wasm-programs/handle"
	"github.com/wippyai/wasm-programs/host"
	"github.com/wippyai/wasm-programs/host/hosttest"
	"github.com/wippyai/wasm-programs/invoke"
	"github.com/wippyai/wasm-programs/program"
	"github.com/wippyai/wasm-programs/value"
)

func TestInit_UsesHostSelf(t *testing.T) {
	h := hosttest.New(handle.Handle(4))
	ctx := program.Init(h)

	if ctx.Self != 4 {
		t.Errorf("Self = %v, want 4", ctx.Self)
	}
	if ctx.Storage().Owner() != 4 {
		t.Errorf("storage owner = %v", ctx.Storage().Owner())
	}
	if h.Calls.InitProgram != 1 {
		t.Errorf("InitProgram calls = %d", h.Calls.InitProgram)
	}
}

// The even program from the examples: it stores a handle to a counter and
// forwards doubled increments to it.
func TestContext_EvenCounter(t *testing.T) {
	const (
		even    = handle.Handle(1)
		counter = handle.Handle(2)
	)
	h := hosttest.New(even)

	h.Register(counter, "inc", func(tr *host.Transit, me handle.Handle, buf []byte) int64 {
		ctx := program.FromHandle(tr.Host(), me)
		args, err := ctx.Unpack(buf)
		if err != nil || len(args) != 2 {
			t.Errorf("counter args = %v, %v", args, err)
			return 0
		}
		amt, _ := args[1].AsInt()
		cur, _ := ctx.Storage().MapInt("counts", args[0])
		if err := ctx.Storage().SetMap("counts", args[0], value.Int(cur+amt)); err != nil {
			t.Errorf("save: %v", err)
		}
		return 0
	})
	h.Register(counter, "value", func(tr *host.Transit, me handle.Handle, buf []byte) int64 {
		ctx := program.FromHandle(tr.Host(), me)
		args, _ := ctx.Unpack(buf)
		n, _ := ctx.Storage().MapInt("counts", args[0])
		return n
	})

	ctx := program.Init(h)
	if err := ctx.Storage().Set("counter", value.ProgramOf(counter)); err != nil {
		t.Fatal(err)
	}

	target, err := ctx.Storage().Program("counter")
	if err != nil {
		t.Fatal(err)
	}
	var whose value.Address
	whose[0] = 0xaa

	for i := 0; i < 3; i++ {
		if _, err := ctx.Call(target, "inc", value.AddressOf(whose), value.Int(2*5)); err != nil {
			t.Fatal(err)
		}
	}

	got, err := ctx.Call(target, "value", value.AddressOf(whose))
	if err != nil {
		t.Fatal(err)
	}
	if got != 30 {
		t.Errorf("value = %d, want 30", got)
	}

	v, err := ctx.CallValue(target, "value", value.AddressOf(whose))
	if err != nil || !value.Equal(v, value.Int(30)) {
		t.Errorf("CallValue = %v, %v", v, err)
	}
}

func TestContext_Return(t *testing.T) {
	h := hosttest.New(1)
	h.Register(2, "who", func(tr *host.Transit, me handle.Handle, _ []byte) int64 {
		if err := program.FromHandle(tr.Host(), me).Return(value.ProgramOf(me)); err != nil {
			t.Errorf("Return: %v", err)
		}
		return 0
	})

	v, err := program.Init(h).CallValue(2, "who")
	if err != nil {
		t.Fatal(err)
	}
	if p, _ := v.AsProgram(); p != 2 {
		t.Errorf("who = %v", v)
	}
}

func TestContext_UnpackRejectsBadBuffer(t *testing.T) {
	ctx := program.Init(hosttest.New(1))
	if _, err := ctx.Unpack([]byte{1, 2, 3}); !errors.Is(err, errors.ErrInvalidEncoding) {
		t.Errorf("Unpack error = %v", err)
	}

	packed, _ := invoke.Pack(value.Text("a"), value.Int(1))
	vals, err := ctx.Unpack(packed)
	if err != nil || len(vals) != 2 {
		t.Errorf("Unpack = %v, %v", vals, err)
	}
}

func TestContext_ArgsOutsideWasm(t *testing.T) {
	ctx := program.Init(hosttest.New(1))
	if _, err := ctx.Args(16, 4); !errors.Is(err, errors.ErrInvalidByteLength) {
		t.Errorf("Args error = %v, want invalid_byte_length", err)
	}
}
