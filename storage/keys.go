package storage

import (
	"encoding/binary"
	"math"

	"github.com/wippyai/wasm-programs/errors"
	"github.com/wippyai/wasm-programs/value"
)

// NamespaceLenSize is the width of the big-endian namespace length that
// starts every map key.
const NamespaceLenSize = 2

// MaxNamespaceLen is the longest namespace a map key can carry.
const MaxNamespaceLen = math.MaxUint16

// ScalarKey returns the storage key of a named field: its UTF-8 bytes.
func ScalarKey(name string) []byte {
	return []byte(name)
}

// MapKey returns the storage key of entry k in namespace ns:
//
//	[len(ns): 2 bytes BE][ns][tag][payload of k]
//
// The length prefix keeps namespaces from bleeding into key bytes, and the
// tag keeps keys of different variants apart even when their payloads match.
func MapKey(ns string, k value.Value) ([]byte, error) {
	if len(ns) > MaxNamespaceLen {
		return nil, errors.InvalidInput(errors.PhaseEncode, "map namespace longer than 65535 bytes")
	}
	n := value.EncodedLen(k)
	if n < 0 {
		return nil, errors.InvalidInput(errors.PhaseEncode, "map key has no variant")
	}
	key := make([]byte, 0, NamespaceLenSize+len(ns)+n)
	key = binary.BigEndian.AppendUint16(key, uint16(len(ns)))
	key = append(key, ns...)
	return value.AppendEncode(key, k)
}

// SplitMapKey reverses MapKey.
func SplitMapKey(key []byte) (string, value.Value, error) {
	if len(key) < NamespaceLenSize {
		return "", value.Value{}, errors.MalformedPayload(errors.PhaseDecode, "map key header", NamespaceLenSize, len(key))
	}
	n := int(binary.BigEndian.Uint16(key))
	rest := key[NamespaceLenSize:]
	if len(rest) < n {
		return "", value.Value{}, errors.MalformedPayload(errors.PhaseDecode, "map namespace", n, len(rest))
	}
	k, err := value.Decode(rest[n:])
	if err != nil {
		return "", value.Value{}, err
	}
	return string(rest[:n]), k, nil
}
