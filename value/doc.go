// Package value implements the tagged binary value model shared by guest
// programs and their host.
//
// A Value is one of four variants, each with a stable one-byte tag:
//
//	Integer  0x01  int64, 8 bytes big-endian
//	Text     0x02  UTF-8 string, remaining bytes
//	Address  0x03  32 raw bytes
//	Program  0x04  program handle, 8 bytes big-endian
//
// The encoding is [tag][payload]. Decoding an unassigned tag is always an
// error; there is no default variant. Tags are never reused.
//
// Conversions to concrete Go types are fallible:
//
//	n, err := v.AsInt()
//	if errors.Is(err, errors.ErrTypeMismatch) { ... }
package value
