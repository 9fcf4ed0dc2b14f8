package value

import (
	"strings"
	"testing"

	"github.com/wippyai/wasm-programs/errors"
	"github.com/wippyai/wasm-programs/handle"
)

func TestAccessors(t *testing.T) {
	if n, err := Int(9).AsInt(); err != nil || n != 9 {
		t.Errorf("AsInt = %d, %v", n, err)
	}
	if s, err := Text("x").AsText(); err != nil || s != "x" {
		t.Errorf("AsText = %q, %v", s, err)
	}
	if a, err := AddressOf(ones()).AsAddress(); err != nil || a != ones() {
		t.Errorf("AsAddress = %v, %v", a, err)
	}
	if h, err := ProgramOf(3).AsProgram(); err != nil || h != handle.Handle(3) {
		t.Errorf("AsProgram = %v, %v", h, err)
	}
}

func TestAccessors_TypeMismatch(t *testing.T) {
	tests := []struct {
		name string
		call func() error
		want string
	}{
		{"text as int", func() error { _, err := Text("5").AsInt(); return err }, "want integer, got text"},
		{"int as text", func() error { _, err := Int(5).AsText(); return err }, "want text, got integer"},
		{"int as address", func() error { _, err := Int(5).AsAddress(); return err }, "want address, got integer"},
		{"int as program", func() error { _, err := Int(5).AsProgram(); return err }, "want program, got integer"},
		{"zero as int", func() error { _, err := Value{}.AsInt(); return err }, "got invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			if !errors.Is(err, errors.ErrTypeMismatch) {
				t.Fatalf("error = %v, want type_mismatch", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not contain %q", err, tt.want)
			}
		})
	}
}

func TestIsPrimitive(t *testing.T) {
	if !Int(1).IsPrimitive() {
		t.Error("Int should be primitive")
	}
	for _, v := range []Value{Text("a"), AddressOf(Address{}), ProgramOf(1), {}} {
		if v.IsPrimitive() {
			t.Errorf("%v should not be primitive", v)
		}
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		a, b Value
		want bool
	}{
		{Int(1), Int(1), true},
		{Int(1), Int(2), false},
		{Int(1), ProgramOf(1), false},
		{Text("a"), Text("a"), true},
		{Text("a"), Text("b"), false},
		{AddressOf(ones()), AddressOf(ones()), true},
		{AddressOf(ones()), AddressOf(Address{}), false},
		{Value{}, Value{}, true},
	}

	for _, tt := range tests {
		if got := Equal(tt.a, tt.b); got != tt.want {
			t.Errorf("Equal(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestTag_String(t *testing.T) {
	if got := Tag(0x09).String(); got != "tag(0x9)" {
		t.Errorf("Tag(9).String() = %q", got)
	}
	if got := TagAddress.String(); got != "address" {
		t.Errorf("TagAddress.String() = %q", got)
	}
}
