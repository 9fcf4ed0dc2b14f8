// Package handle defines the opaque program identifier exchanged with the host.
//
// A Handle references a program the host knows about. It owns nothing: it is
// a lookup key into host-managed program identity and has no lifecycle beyond
// the value itself. Handles cross the boundary as a single 64-bit integer.
package handle

import "strconv"

// Handle is a 64-bit program identifier assigned by the host.
type Handle uint64

// Invalid is the zero handle. Hosts never assign it to a program.
const Invalid Handle = 0

// FromHost reinterprets a host-supplied integer as a handle.
// No validation against the host's program registry is performed.
func FromHost(v int64) Handle {
	return Handle(uint64(v))
}

// Int64 returns the boundary representation of h.
func (h Handle) Int64() int64 {
	return int64(uint64(h))
}

// IsValid reports whether h is non-zero.
func (h Handle) IsValid() bool {
	return h != Invalid
}

func (h Handle) String() string {
	return "program#" + strconv.FormatUint(uint64(h), 10)
}

// Parse parses a decimal handle, optionally prefixed with "program#".
func Parse(s string) (Handle, error) {
	if len(s) > len("program#") && s[:len("program#")] == "program#" {
		s = s[len("program#"):]
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return Invalid, err
	}
	return Handle(v), nil
}
