package value

import (
	"encoding/hex"
	"strconv"

	"github.com/wippyai/wasm-programs/errors"
	"github.com/wippyai/wasm-programs/handle"
)

// Tag is the one-byte discriminant written before every payload.
type Tag byte

const (
	TagInteger Tag = 0x01
	TagText    Tag = 0x02
	TagAddress Tag = 0x03
	TagProgram Tag = 0x04
)

// Fixed payload sizes.
const (
	IntegerSize = 8
	AddressSize = 32
	ProgramSize = 8
)

func (t Tag) String() string {
	switch t {
	case TagInteger:
		return "integer"
	case TagText:
		return "text"
	case TagAddress:
		return "address"
	case TagProgram:
		return "program"
	default:
		return "tag(0x" + strconv.FormatUint(uint64(t), 16) + ")"
	}
}

// Known reports whether t is an assigned tag.
func (t Tag) Known() bool {
	return t >= TagInteger && t <= TagProgram
}

// Address is a fixed 32-byte account or key identifier.
type Address [AddressSize]byte

func (a Address) String() string {
	return hex.EncodeToString(a[:])
}

// ParseAddress decodes a 64 character hex string.
func ParseAddress(s string) (Address, error) {
	var a Address
	raw, err := hex.DecodeString(s)
	if err != nil {
		return a, errors.Wrap(errors.PhaseDecode, errors.KindInvalidInput, err, "address is not hex")
	}
	if len(raw) != AddressSize {
		return a, errors.MalformedPayload(errors.PhaseDecode, "address", AddressSize, len(raw))
	}
	copy(a[:], raw)
	return a, nil
}

// Value is an immutable tagged value. The zero Value has no variant and
// cannot be encoded.
type Value struct {
	text string
	addr Address
	num  int64
	tag  Tag
}

// Int returns an Integer value.
func Int(n int64) Value {
	return Value{tag: TagInteger, num: n}
}

// Text returns a Text value. s must be valid UTF-8 to encode.
func Text(s string) Value {
	return Value{tag: TagText, text: s}
}

// AddressOf returns an Address value.
func AddressOf(a Address) Value {
	return Value{tag: TagAddress, addr: a}
}

// ProgramOf returns a Program value referencing h.
func ProgramOf(h handle.Handle) Value {
	return Value{tag: TagProgram, num: h.Int64()}
}

// Tag returns the variant discriminant, or 0 for the zero Value.
func (v Value) Tag() Tag {
	return v.tag
}

// IsValid reports whether v holds a variant.
func (v Value) IsValid() bool {
	return v.tag.Known()
}

// IsPrimitive reports whether v is an Integer.
func (v Value) IsPrimitive() bool {
	return v.tag == TagInteger
}

// AsInt returns the Integer payload or a type mismatch error.
func (v Value) AsInt() (int64, error) {
	if v.tag != TagInteger {
		return 0, v.mismatch(TagInteger)
	}
	return v.num, nil
}

// AsText returns the Text payload or a type mismatch error.
func (v Value) AsText() (string, error) {
	if v.tag != TagText {
		return "", v.mismatch(TagText)
	}
	return v.text, nil
}

// AsAddress returns the Address payload or a type mismatch error.
func (v Value) AsAddress() (Address, error) {
	if v.tag != TagAddress {
		return Address{}, v.mismatch(TagAddress)
	}
	return v.addr, nil
}

// AsProgram returns the program handle or a type mismatch error.
func (v Value) AsProgram() (handle.Handle, error) {
	if v.tag != TagProgram {
		return handle.Invalid, v.mismatch(TagProgram)
	}
	return handle.FromHost(v.num), nil
}

func (v Value) mismatch(want Tag) error {
	got := "invalid"
	if v.tag != 0 {
		got = v.tag.String()
	}
	return errors.TypeMismatch(errors.PhaseDecode, want.String(), got)
}

// Equal reports whether a and b hold the same variant and payload.
func Equal(a, b Value) bool {
	if a.tag != b.tag {
		return false
	}
	switch a.tag {
	case TagInteger, TagProgram:
		return a.num == b.num
	case TagText:
		return a.text == b.text
	case TagAddress:
		return a.addr == b.addr
	}
	return true
}

// String renders v in the form accepted by Parse.
func (v Value) String() string {
	switch v.tag {
	case TagInteger:
		return "int:" + strconv.FormatInt(v.num, 10)
	case TagText:
		return "text:" + v.text
	case TagAddress:
		return "addr:" + v.addr.String()
	case TagProgram:
		return "program:" + strconv.FormatUint(uint64(v.num), 10)
	}
	return "<invalid>"
}
