package value

import (
	"bytes"
	"math"
	"testing"

	"github.com/wippyai/wasm-programs/errors"
	"github.com/wippyai/wasm-programs/handle"
)

func ones() Address {
	var a Address
	for i := range a {
		a[i] = 1
	}
	return a
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		v    Value
	}{
		{"int zero", Int(0)},
		{"int positive", Int(42)},
		{"int negative", Int(-1)},
		{"int max", Int(math.MaxInt64)},
		{"int min", Int(math.MinInt64)},
		{"text empty", Text("")},
		{"text ascii", Text("counter")},
		{"text multibyte", Text("héllo, 世界")},
		{"address zero", AddressOf(Address{})},
		{"address ones", AddressOf(ones())},
		{"program", ProgramOf(handle.Handle(7))},
		{"program high bit", ProgramOf(handle.Handle(math.MaxUint64))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := Encode(tt.v)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			if len(b) != EncodedLen(tt.v) {
				t.Errorf("len = %d, EncodedLen = %d", len(b), EncodedLen(tt.v))
			}
			if Tag(b[0]) != tt.v.Tag() {
				t.Errorf("tag byte = %v, want %v", Tag(b[0]), tt.v.Tag())
			}
			got, err := Decode(b)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if !Equal(got, tt.v) {
				t.Errorf("Decode(Encode(v)) = %v, want %v", got, tt.v)
			}
		})
	}
}

func TestEncode_Layout(t *testing.T) {
	b := MustEncode(Int(42))
	want := []byte{0x01, 0, 0, 0, 0, 0, 0, 0, 42}
	if !bytes.Equal(b, want) {
		t.Errorf("Encode(Int(42)) = %x, want %x", b, want)
	}

	b = MustEncode(Text("hi"))
	if !bytes.Equal(b, []byte{0x02, 'h', 'i'}) {
		t.Errorf("Encode(Text(hi)) = %x", b)
	}

	b = MustEncode(ProgramOf(handle.Handle(0x0102)))
	want = []byte{0x04, 0, 0, 0, 0, 0, 0, 0x01, 0x02}
	if !bytes.Equal(b, want) {
		t.Errorf("Encode(Program(0x102)) = %x, want %x", b, want)
	}

	b = MustEncode(AddressOf(ones()))
	if len(b) != 33 || b[0] != 0x03 || b[32] != 1 {
		t.Errorf("Encode(Address) = %x", b)
	}
}

func TestEncode_Deterministic(t *testing.T) {
	v := Text("same")
	a, _ := Encode(v)
	b, _ := Encode(v)
	if !bytes.Equal(a, b) {
		t.Errorf("Encode not deterministic: %x vs %x", a, b)
	}
}

func TestEncode_Invalid(t *testing.T) {
	if _, err := Encode(Value{}); !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("Encode(zero) error = %v, want invalid_input", err)
	}
	if _, err := Encode(Text(string([]byte{0xff}))); !errors.Is(err, errors.ErrInvalidEncoding) {
		t.Errorf("Encode(bad utf8) error = %v, want invalid_encoding", err)
	}
	if _, err := Payload(Value{}); err == nil {
		t.Error("Payload(zero) should fail")
	}
}

func TestMustEncode_PanicsOnZero(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustEncode(zero) did not panic")
		}
	}()
	MustEncode(Value{})
}

func TestAppendEncode(t *testing.T) {
	dst := []byte("prefix")
	out, err := AppendEncode(dst, Int(1))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(out, []byte("prefix")) || len(out) != 6+9 {
		t.Errorf("AppendEncode = %x", out)
	}
}

func TestPayload(t *testing.T) {
	p, err := Payload(Int(5))
	if err != nil {
		t.Fatal(err)
	}
	if len(p) != IntegerSize || p[7] != 5 {
		t.Errorf("Payload(Int(5)) = %x", p)
	}
	p, _ = Payload(Text("abc"))
	if string(p) != "abc" {
		t.Errorf("Payload(Text) = %q", p)
	}
}

func TestDecode_UnknownTag(t *testing.T) {
	for tag := 0; tag < 256; tag++ {
		if Tag(tag).Known() {
			continue
		}
		buf := append([]byte{byte(tag)}, make([]byte, 8)...)
		_, err := Decode(buf)
		if !errors.Is(err, errors.ErrUnknownTag) {
			t.Fatalf("Decode(tag 0x%02x) error = %v, want unknown_tag", tag, err)
		}
	}
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
		want *errors.Error
	}{
		{"empty", nil, errors.ErrMalformedPayload},
		{"int short", []byte{0x01, 0, 0, 0}, errors.ErrMalformedPayload},
		{"int long", append([]byte{0x01}, make([]byte, 9)...), errors.ErrMalformedPayload},
		{"int no payload", []byte{0x01}, errors.ErrMalformedPayload},
		{"address short", append([]byte{0x03}, make([]byte, 31)...), errors.ErrMalformedPayload},
		{"address long", append([]byte{0x03}, make([]byte, 33)...), errors.ErrMalformedPayload},
		{"program short", append([]byte{0x04}, make([]byte, 7)...), errors.ErrMalformedPayload},
		{"text invalid utf8", []byte{0x02, 0xc3, 0x28}, errors.ErrInvalidEncoding},
		{"text truncated rune", []byte{0x02, 0xe4, 0xb8}, errors.ErrInvalidEncoding},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.buf)
			if !errors.Is(err, tt.want) {
				t.Errorf("Decode(%x) error = %v, want %v", tt.buf, err, tt.want.Kind)
			}
		})
	}
}

func TestDecode_TextEmptyPayload(t *testing.T) {
	v, err := Decode([]byte{0x02})
	if err != nil {
		t.Fatal(err)
	}
	if s, _ := v.AsText(); s != "" {
		t.Errorf("got %q, want empty", s)
	}
}

func TestDecode_DoesNotAliasInput(t *testing.T) {
	buf := MustEncode(AddressOf(ones()))
	v, err := Decode(buf)
	if err != nil {
		t.Fatal(err)
	}
	buf[1] = 0xee
	a, _ := v.AsAddress()
	if a[0] != 1 {
		t.Error("decoded address aliases the input buffer")
	}
}
