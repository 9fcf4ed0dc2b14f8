// Package invoke marshals cross-program calls.
//
// Arguments travel as a packed list. Each entry is
//
//	[length: 8 bytes BE][primitive: 1 byte][payload: length bytes]
//
// where payload is the full tagged encoding of the argument (tag included)
// and length counts exactly those bytes. The primitive flag is 1 for Integer
// and 0 for every other variant; Unpack rejects a flag that disagrees with
// the decoded payload.
//
// Calls are synchronous. Call uses the raw protocol that returns a single
// int64; CallValue returns a full Value published by the callee with Return.
package invoke
