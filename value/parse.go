package value

import (
	"strconv"
	"strings"

	"github.com/wippyai/wasm-programs/errors"
	"github.com/wippyai/wasm-programs/handle"
)

// Parse reads the textual form produced by Value.String:
//
//	int:42  text:hello  addr:<64 hex>  program:7
//
// A bare decimal integer parses as Integer.
func Parse(s string) (Value, error) {
	kind, rest, ok := strings.Cut(s, ":")
	if !ok {
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return Value{}, errors.InvalidInput(errors.PhaseDecode, "value "+strconv.Quote(s)+" has no kind prefix")
		}
		return Int(n), nil
	}

	switch kind {
	case "int", "i":
		n, err := strconv.ParseInt(strings.TrimSpace(rest), 10, 64)
		if err != nil {
			return Value{}, errors.Wrap(errors.PhaseDecode, errors.KindInvalidInput, err, "parse integer")
		}
		return Int(n), nil
	case "text", "s":
		return Text(rest), nil
	case "addr", "a":
		a, err := ParseAddress(strings.TrimSpace(rest))
		if err != nil {
			return Value{}, err
		}
		return AddressOf(a), nil
	case "program", "p":
		h, err := handle.Parse(strings.TrimSpace(rest))
		if err != nil {
			return Value{}, errors.Wrap(errors.PhaseDecode, errors.KindInvalidInput, err, "parse program handle")
		}
		return ProgramOf(h), nil
	}
	return Value{}, errors.InvalidInput(errors.PhaseDecode, "unknown value kind "+strconv.Quote(kind))
}

// ParseList parses a comma separated list of values. Text values cannot
// contain commas in this form.
func ParseList(s string) ([]Value, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]Value, 0, len(parts))
	for _, p := range parts {
		v, err := Parse(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
