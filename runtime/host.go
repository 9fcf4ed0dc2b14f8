package runtime

import (
	"context"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-programs/abi"
	"github.com/wippyai/wasm-programs/errors"
	"github.com/wippyai/wasm-programs/handle"
)

var (
	i32 = api.ValueTypeI32
	i64 = api.ValueTypeI64
)

type hostFunc struct {
	name    string
	fn      api.GoModuleFunc
	params  []api.ValueType
	results []api.ValueType
}

func (r *Runtime) mapFuncs() []hostFunc {
	return []hostFunc{
		{abi.FuncInitProgram, r.initProgram, nil, []api.ValueType{i64}},
		{abi.FuncStoreBytes, r.storeBytes, []api.ValueType{i64, i32, i32, i32, i32}, []api.ValueType{i32}},
		{abi.FuncBytesLen, r.bytesLen, []api.ValueType{i64, i32, i32}, []api.ValueType{i32}},
		{abi.FuncGetBytes, r.getBytes, []api.ValueType{i64, i32, i32, i32}, []api.ValueType{i32}},
	}
}

func (r *Runtime) programFuncs() []hostFunc {
	invokeParams := []api.ValueType{i64, i64, i32, i32, i32, i32}
	return []hostFunc{
		{abi.FuncInvokeProgram, r.invokeProgram, invokeParams, []api.ValueType{i64}},
		{abi.FuncInvokeProgramValue, r.invokeProgramValue, invokeParams, []api.ValueType{i32}},
		{abi.FuncTakeResult, r.takeResult, []api.ValueType{i64, i32}, []api.ValueType{i32}},
		{abi.FuncSetResult, r.setResult, []api.ValueType{i64, i32, i32}, []api.ValueType{i32}},
	}
}

func (r *Runtime) instantiateHostModules(ctx context.Context) error {
	modules := []struct {
		name  string
		funcs []hostFunc
	}{
		{abi.ModuleMap, r.mapFuncs()},
		{abi.ModuleProgram, r.programFuncs()},
	}
	for _, m := range modules {
		builder := r.wz.NewHostModuleBuilder(m.name)
		for _, f := range m.funcs {
			builder = builder.NewFunctionBuilder().
				WithGoModuleFunction(f.fn, f.params, f.results).
				Export(f.name)
		}
		if _, err := builder.Instantiate(ctx); err != nil {
			return errors.New(errors.PhaseHost, errors.KindInstantiation).
				Cause(err).
				Detail("host module %s", m.name).
				Build()
		}
	}
	return nil
}

// init_program() -> i64
func (r *Runtime) initProgram(ctx context.Context, _ api.Module, stack []uint64) {
	f := sessionFrom(ctx).top()
	if f == nil {
		stack[0] = api.EncodeI64(handle.Invalid.Int64())
		return
	}
	stack[0] = api.EncodeI64(f.self.Int64())
}

// store_bytes(owner i64, key_ptr, key_len, value_ptr, value_len i32) -> i32
func (r *Runtime) storeBytes(ctx context.Context, mod api.Module, stack []uint64) {
	owner := handle.FromHost(int64(stack[0]))
	stack[0] = api.EncodeI32(abi.StatusFailed)

	if _, ok := current(ctx, owner); !ok {
		r.logger.Warn("store_bytes: owner is not the executing program", zap.Stringer("owner", owner))
		return
	}
	key, err := read(mod, api.DecodeU32(stack[1]), api.DecodeU32(stack[2]))
	if err != nil {
		r.logger.Warn("store_bytes: read key", zap.Error(err))
		return
	}
	val, err := read(mod, api.DecodeU32(stack[3]), api.DecodeU32(stack[4]))
	if err != nil {
		r.logger.Warn("store_bytes: read value", zap.Error(err))
		return
	}
	if err := r.backend.Put(ctx, owner, key, val); err != nil {
		r.logger.Warn("store_bytes: backend", zap.Stringer("owner", owner), zap.Error(err))
		return
	}
	stack[0] = api.EncodeI32(abi.StatusOK)
}

// get_bytes_len(owner i64, key_ptr, key_len i32) -> i32
func (r *Runtime) bytesLen(ctx context.Context, mod api.Module, stack []uint64) {
	owner := handle.FromHost(int64(stack[0]))
	val, err := r.lookup(ctx, mod, owner, api.DecodeU32(stack[1]), api.DecodeU32(stack[2]))
	switch {
	case errors.Is(err, errors.ErrNotFound):
		stack[0] = api.EncodeI32(abi.LengthNotFound)
	case err != nil:
		r.logger.Warn("get_bytes_len", zap.Stringer("owner", owner), zap.Error(err))
		stack[0] = api.EncodeI32(abi.LengthHostError)
	default:
		stack[0] = api.EncodeI32(int32(len(val)))
	}
}

// get_bytes(owner i64, key_ptr, key_len, declared i32) -> ptr i32
//
// The stored value must be exactly declared bytes; anything else yields a
// zero pointer and the guest reports the length mismatch.
func (r *Runtime) getBytes(ctx context.Context, mod api.Module, stack []uint64) {
	owner := handle.FromHost(int64(stack[0]))
	declared := api.DecodeI32(stack[3])
	stack[0] = 0

	val, err := r.lookup(ctx, mod, owner, api.DecodeU32(stack[1]), api.DecodeU32(stack[2]))
	if err != nil {
		r.logger.Warn("get_bytes", zap.Stringer("owner", owner), zap.Error(err))
		return
	}
	if declared <= 0 || int(declared) != len(val) {
		r.logger.Warn("get_bytes: declared length does not match",
			zap.Int32("declared", declared),
			zap.Int("stored", len(val)))
		return
	}
	ptr, err := place(ctx, mod, val)
	if err != nil {
		r.logger.Warn("get_bytes: place value", zap.Error(err))
		return
	}
	stack[0] = api.EncodeU32(ptr)
}

func (r *Runtime) lookup(ctx context.Context, mod api.Module, owner handle.Handle, keyPtr, keyLen uint32) ([]byte, error) {
	if _, ok := current(ctx, owner); !ok {
		return nil, errors.InvalidInput(errors.PhaseHost, owner.String()+" is not the executing program")
	}
	key, err := read(mod, keyPtr, keyLen)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseHost, errors.KindInvalidInput, err, "read key")
	}
	return r.backend.Get(ctx, owner, key)
}

// invoke_program(caller, target i64, method_ptr, method_len, args_ptr, args_len i32) -> i64
//
// The raw protocol has no error channel; a failed call returns 0.
func (r *Runtime) invokeProgram(ctx context.Context, mod api.Module, stack []uint64) {
	ret, _, err := r.nested(ctx, mod, stack)
	if err != nil {
		r.logger.Warn("invoke_program failed", zap.Error(err))
		stack[0] = 0
		return
	}
	stack[0] = api.EncodeI64(ret)
}

// invoke_program_value(caller, target i64, method_ptr, method_len, args_ptr, args_len i32) -> i32
//
// Returns the encoded result length and holds the result for take_result.
func (r *Runtime) invokeProgramValue(ctx context.Context, mod api.Module, stack []uint64) {
	caller := handle.FromHost(int64(stack[0]))
	_, result, err := r.nested(ctx, mod, stack)
	if err != nil {
		r.logger.Warn("invoke_program_value failed", zap.Error(err))
		stack[0] = api.EncodeI32(abi.LengthHostError)
		return
	}
	f, _ := current(ctx, caller)
	f.pending, f.hasPending = result, true
	stack[0] = api.EncodeI32(int32(len(result)))
}

func (r *Runtime) nested(ctx context.Context, mod api.Module, stack []uint64) (int64, []byte, error) {
	caller := handle.FromHost(int64(stack[0]))
	target := handle.FromHost(int64(stack[1]))

	if _, ok := current(ctx, caller); !ok {
		return 0, nil, errors.InvalidInput(errors.PhaseInvoke, caller.String()+" is not the executing program")
	}
	method, err := read(mod, api.DecodeU32(stack[2]), api.DecodeU32(stack[3]))
	if err != nil {
		return 0, nil, errors.Wrap(errors.PhaseInvoke, errors.KindInvalidInput, err, "read method")
	}
	args, err := read(mod, api.DecodeU32(stack[4]), api.DecodeU32(stack[5]))
	if err != nil {
		return 0, nil, errors.Wrap(errors.PhaseInvoke, errors.KindInvalidInput, err, "read arguments")
	}
	return r.call(ctx, caller, target, string(method), args)
}

// take_result(caller i64, declared i32) -> ptr i32
func (r *Runtime) takeResult(ctx context.Context, mod api.Module, stack []uint64) {
	caller := handle.FromHost(int64(stack[0]))
	declared := api.DecodeI32(stack[1])
	stack[0] = 0

	f, ok := current(ctx, caller)
	if !ok || !f.hasPending {
		r.logger.Warn("take_result: no pending result", zap.Stringer("caller", caller))
		return
	}
	result := f.pending
	f.pending, f.hasPending = nil, false

	if int(declared) != len(result) {
		r.logger.Warn("take_result: declared length does not match",
			zap.Int32("declared", declared),
			zap.Int("pending", len(result)))
		return
	}
	ptr, err := place(ctx, mod, result)
	if err != nil {
		r.logger.Warn("take_result: place result", zap.Error(err))
		return
	}
	stack[0] = api.EncodeU32(ptr)
}

// set_result(owner i64, ptr, len i32) -> i32
func (r *Runtime) setResult(ctx context.Context, mod api.Module, stack []uint64) {
	owner := handle.FromHost(int64(stack[0]))
	stack[0] = api.EncodeI32(abi.StatusFailed)

	f, ok := current(ctx, owner)
	if !ok {
		r.logger.Warn("set_result: owner is not the executing program", zap.Stringer("owner", owner))
		return
	}
	result, err := read(mod, api.DecodeU32(stack[1]), api.DecodeU32(stack[2]))
	if err != nil {
		r.logger.Warn("set_result: read result", zap.Error(err))
		return
	}
	f.result, f.published = result, true
	stack[0] = api.EncodeI32(abi.StatusOK)
}
