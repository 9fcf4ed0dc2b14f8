// Package wasmprograms is an SDK for programs that run inside a sandboxed
// WebAssembly module and talk to their host only through numeric handles and
// pointer/length pairs.
//
// Guest programs persist typed values in host storage, call other programs
// synchronously and return typed results. The reference host in runtime runs
// such programs on wazero for tests and local simulation.
//
// # Architecture Overview
//
//	wasmprograms/        Root package with the Memory and Allocator interfaces
//	├── value/           Tagged binary value format
//	├── handle/          Program handles
//	├── abi/             Import names and sentinels shared by guest and host
//	├── host/            Guest-side host imports and the buffer ownership rules
//	│   └── hosttest/    In-memory host for testing guest code natively
//	├── storage/         Key derivation and the typed storage façade
//	├── invoke/          Argument packing and cross-program calls
//	├── program/         Per-call program context for entry points
//	├── errors/          Structured error types
//	├── state/           Host storage backends (memory, SQLite)
//	├── runtime/         Reference host on wazero
//	└── cmd/simulator/   CLI and TUI over the reference host
//
// # Quick Start
//
// A guest entry point, built with GOOS=wasip1 -buildmode=c-shared:
//
//	//go:wasmexport inc
//	func inc(self int64, argsPtr, argsLen uint32) int64 {
//	    ctx := program.FromHandle(host.Default(), handle.FromHost(self))
//	    args, err := ctx.Args(argsPtr, argsLen)
//	    if err != nil || len(args) != 1 {
//	        return 0
//	    }
//	    n, _ := args[0].AsInt()
//	    count, _ := ctx.Storage().Int("count")
//	    _ = ctx.Storage().Set("count", value.Int(count+n))
//	    return count + n
//	}
//
// # Wire Format
//
// Every value is a one-byte tag followed by its payload: 0x01 integer
// (8 bytes big-endian), 0x02 text (UTF-8, rest of buffer), 0x03 address
// (32 bytes), 0x04 program handle (8 bytes big-endian). Storage keys and
// packed argument lists are built from these encodings.
package wasmprograms
