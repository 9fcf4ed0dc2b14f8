// Package host is the guest side of the host boundary.
//
// Host mirrors the raw imports one method per function. Transit layers the
// safety rules on top of it:
//
//   - every read asks for the length first; a negative length stops the
//     read before any buffer is requested
//   - a buffer handed over by the host is claimed exactly once, by the call
//     that requested it, and is owned by the caller from then on
//   - nonzero write statuses become errors
//
// Inside a wasip1 module Default returns the imported host. Native builds get
// a stub that reports every key missing and every write failed; tests use
// hosttest instead.
package host
