package runtime

import (
	"context"

	"github.com/wippyai/wasm-programs/handle"
)

// frame is one executing call.
type frame struct {
	self   handle.Handle
	caller handle.Handle
	method string

	// result is what the callee published with set_result.
	result    []byte
	published bool

	// pending is the result of this frame's last invoke_program_value,
	// waiting for take_result.
	pending    []byte
	hasPending bool
}

// session is the frame stack of one top-level call.
type session struct {
	frames []*frame
}

type sessionKey struct{}

func sessionFrom(ctx context.Context) *session {
	s, _ := ctx.Value(sessionKey{}).(*session)
	return s
}

func withSession(ctx context.Context, s *session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

func (s *session) push(f *frame) {
	s.frames = append(s.frames, f)
}

func (s *session) pop() {
	s.frames = s.frames[:len(s.frames)-1]
}

func (s *session) depth() int {
	return len(s.frames)
}

// top returns the executing frame, or nil outside a call.
func (s *session) top() *frame {
	if s == nil || len(s.frames) == 0 {
		return nil
	}
	return s.frames[len(s.frames)-1]
}

// current returns the executing frame for ctx if it belongs to owner.
func current(ctx context.Context, owner handle.Handle) (*frame, bool) {
	f := sessionFrom(ctx).top()
	if f == nil || f.self != owner {
		return nil, false
	}
	return f, true
}
