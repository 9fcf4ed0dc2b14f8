package value

import (
	"encoding/binary"
	"unicode/utf8"

	"github.com/wippyai/wasm-programs/errors"
)

// EncodedLen returns the number of bytes Encode produces for v, or -1 if v
// has no variant.
func EncodedLen(v Value) int {
	switch v.tag {
	case TagInteger:
		return 1 + IntegerSize
	case TagText:
		return 1 + len(v.text)
	case TagAddress:
		return 1 + AddressSize
	case TagProgram:
		return 1 + ProgramSize
	}
	return -1
}

// Encode returns the tagged encoding of v.
func Encode(v Value) ([]byte, error) {
	n := EncodedLen(v)
	if n < 0 {
		return nil, errors.InvalidInput(errors.PhaseEncode, "value has no variant")
	}
	return AppendEncode(make([]byte, 0, n), v)
}

// MustEncode is Encode for values built by this package's constructors.
// It panics on the zero Value or on Text that is not UTF-8.
func MustEncode(v Value) []byte {
	b, err := Encode(v)
	if err != nil {
		panic(err)
	}
	return b
}

// AppendEncode appends the tagged encoding of v to dst.
func AppendEncode(dst []byte, v Value) ([]byte, error) {
	if !v.IsValid() {
		return dst, errors.InvalidInput(errors.PhaseEncode, "value has no variant")
	}
	dst = append(dst, byte(v.tag))
	return appendPayload(dst, v)
}

// Payload returns the encoding of v without its tag byte.
func Payload(v Value) ([]byte, error) {
	n := EncodedLen(v)
	if n < 0 {
		return nil, errors.InvalidInput(errors.PhaseEncode, "value has no variant")
	}
	return appendPayload(make([]byte, 0, n-1), v)
}

func appendPayload(dst []byte, v Value) ([]byte, error) {
	switch v.tag {
	case TagInteger, TagProgram:
		return binary.BigEndian.AppendUint64(dst, uint64(v.num)), nil
	case TagText:
		if !utf8.ValidString(v.text) {
			return dst, errors.InvalidUTF8(errors.PhaseEncode, []byte(v.text))
		}
		return append(dst, v.text...), nil
	case TagAddress:
		return append(dst, v.addr[:]...), nil
	}
	return dst, errors.InvalidInput(errors.PhaseEncode, "value has no variant")
}

// Decode parses a tagged encoding. The whole buffer must be consumed: fixed
// size variants fail with a malformed payload error if the remaining bytes
// are not exactly the required size.
func Decode(b []byte) (Value, error) {
	if len(b) == 0 {
		return Value{}, errors.MalformedPayload(errors.PhaseDecode, "tag", 1, 0)
	}
	tag, payload := Tag(b[0]), b[1:]

	switch tag {
	case TagInteger:
		if len(payload) != IntegerSize {
			return Value{}, errors.MalformedPayload(errors.PhaseDecode, tag.String(), IntegerSize, len(payload))
		}
		return Int(int64(binary.BigEndian.Uint64(payload))), nil

	case TagText:
		if !utf8.Valid(payload) {
			return Value{}, errors.InvalidUTF8(errors.PhaseDecode, payload)
		}
		return Text(string(payload)), nil

	case TagAddress:
		if len(payload) != AddressSize {
			return Value{}, errors.MalformedPayload(errors.PhaseDecode, tag.String(), AddressSize, len(payload))
		}
		var a Address
		copy(a[:], payload)
		return AddressOf(a), nil

	case TagProgram:
		if len(payload) != ProgramSize {
			return Value{}, errors.MalformedPayload(errors.PhaseDecode, tag.String(), ProgramSize, len(payload))
		}
		return Value{tag: TagProgram, num: int64(binary.BigEndian.Uint64(payload))}, nil
	}

	return Value{}, errors.UnknownTag(errors.PhaseDecode, b[0])
}
