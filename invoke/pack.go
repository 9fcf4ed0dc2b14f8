package invoke

import (
	"encoding/binary"
	"math"

	"github.com/wippyai/wasm-programs/abi"
	"github.com/wippyai/wasm-programs/errors"
	"github.com/wippyai/wasm-programs/value"
)

// Arg is one unpacked argument.
type Arg struct {
	Value     value.Value
	Primitive bool
}

// PackedLen returns the packed size of args, or -1 if any has no variant.
func PackedLen(args ...value.Value) int {
	total := 0
	for _, a := range args {
		n := value.EncodedLen(a)
		if n < 0 {
			return -1
		}
		total += abi.ArgHeaderSize + n
	}
	return total
}

// Pack encodes args in order.
func Pack(args ...value.Value) ([]byte, error) {
	n := PackedLen(args...)
	if n < 0 {
		return nil, errors.InvalidInput(errors.PhaseEncode, "argument has no variant")
	}
	buf := make([]byte, 0, n)
	for _, a := range args {
		var err error
		buf = binary.BigEndian.AppendUint64(buf, uint64(value.EncodedLen(a)))
		buf = append(buf, flagOf(a))
		if buf, err = value.AppendEncode(buf, a); err != nil {
			return nil, err
		}
	}
	return buf, nil
}

// Unpack decodes a packed list, preserving order.
func Unpack(buf []byte) ([]Arg, error) {
	var args []Arg
	for off := 0; off < len(buf); {
		if len(buf)-off < abi.ArgHeaderSize {
			return nil, errors.New(errors.PhaseDecode, errors.KindInvalidEncoding).
				Value(off).
				Detail("argument %d: truncated header at offset %d", len(args), off).
				Build()
		}
		declared := binary.BigEndian.Uint64(buf[off:])
		flag := buf[off+abi.ArgLengthSize]
		off += abi.ArgHeaderSize

		if declared > math.MaxInt32 || int(declared) > len(buf)-off {
			return nil, errors.New(errors.PhaseDecode, errors.KindInvalidByteLength).
				Value(declared).
				Detail("argument %d: declared %d bytes, %d remain", len(args), declared, len(buf)-off).
				Build()
		}
		if flag != abi.FlagObject && flag != abi.FlagPrimitive {
			return nil, errors.InvalidEncoding(errors.PhaseDecode, "invalid primitive flag")
		}

		v, err := value.Decode(buf[off : off+int(declared)])
		if err != nil {
			return nil, err
		}
		if flagOf(v) != flag {
			return nil, errors.New(errors.PhaseDecode, errors.KindInvalidEncoding).
				Detail("argument %d: primitive flag %d does not match %s", len(args), flag, v.Tag()).
				Build()
		}
		off += int(declared)
		args = append(args, Arg{Value: v, Primitive: flag == abi.FlagPrimitive})
	}
	return args, nil
}

// Values strips the flags from args.
func Values(args []Arg) []value.Value {
	out := make([]value.Value, len(args))
	for i, a := range args {
		out[i] = a.Value
	}
	return out
}

func flagOf(v value.Value) byte {
	if v.IsPrimitive() {
		return abi.FlagPrimitive
	}
	return abi.FlagObject
}
