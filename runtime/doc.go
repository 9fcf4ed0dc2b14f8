// Package runtime is a reference host for guest programs built on the
// wasm-programs SDK. It runs each program on wazero, serves the "map" and
// "program" import modules and keeps program state in a state.Backend.
//
// # Quick Start
//
//	ctx := context.Background()
//	rt, err := runtime.New(ctx, state.NewMemory())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rt.Close(ctx)
//
//	id, err := rt.Publish(ctx, wasmBytes)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	n, err := rt.Call(ctx, id, "inc", value.Int(5))
//
// # Entry Points
//
// A callable method is an export with the signature
//
//	(self i64, args_ptr i32, args_len i32) -> i64
//
// The host writes the packed argument list into the callee's memory through
// its "alloc" export before the call. An empty argument list is passed as a
// zero pointer and zero length. A callee can publish a full tagged value with
// set_result; CallValue returns it, and otherwise wraps the raw i64 as an
// integer.
//
// # Isolation
//
// Every call instantiates the target afresh and closes the instance when the
// call returns, so nothing but storage survives between calls. A program can
// only read and write keys under its own handle. Nested calls share one frame
// stack per top-level call, bounded by Config.MaxCallDepth.
//
// # Thread Safety
//
// Runtime is safe for concurrent use. Concurrent top-level calls run on
// separate frame stacks and share the backend.
package runtime
