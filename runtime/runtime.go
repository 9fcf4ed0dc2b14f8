package runtime

import (
	"context"
	"crypto/rand"
	"slices"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-programs/abi"
	"github.com/wippyai/wasm-programs/errors"
	"github.com/wippyai/wasm-programs/handle"
	"github.com/wippyai/wasm-programs/invoke"
	"github.com/wippyai/wasm-programs/state"
	"github.com/wippyai/wasm-programs/value"
)

// entryParams and entryResults are the signature every callable export has.
var (
	entryParams  = []api.ValueType{api.ValueTypeI64, api.ValueTypeI32, api.ValueTypeI32}
	entryResults = []api.ValueType{api.ValueTypeI64}
)

// Runtime hosts published programs on a wazero engine. It is safe for
// concurrent calls.
type Runtime struct {
	wz       wazero.Runtime
	backend  state.Backend
	logger   *zap.Logger
	compiled map[handle.Handle]wazero.CompiledModule
	cfg      Config
	mu       sync.Mutex
}

// New creates a runtime over backend and instantiates the host modules.
// The runtime does not own backend; closing the runtime leaves it open.
func New(ctx context.Context, backend state.Backend, opts ...Option) (*Runtime, error) {
	if backend == nil {
		return nil, errors.InvalidInput(errors.PhaseConfig, "backend is nil")
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = Logger()
	}

	runtimeCfg := wazero.NewRuntimeConfig().WithCloseOnContextDone(true)
	if o.cfg.MemoryLimitPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(o.cfg.MemoryLimitPages)
	}

	r := &Runtime{
		wz:       wazero.NewRuntimeWithConfig(ctx, runtimeCfg),
		backend:  backend,
		logger:   o.logger,
		compiled: make(map[handle.Handle]wazero.CompiledModule),
		cfg:      o.cfg.withDefaults(),
	}

	if err := instantiateWASI(ctx, r.wz); err != nil {
		r.wz.Close(ctx)
		return nil, errors.Load("instantiate wasi", err)
	}
	if err := r.instantiateHostModules(ctx); err != nil {
		r.wz.Close(ctx)
		return nil, errors.Load("instantiate host modules", err)
	}
	return r, nil
}

// Close releases compiled programs and the engine.
func (r *Runtime) Close(ctx context.Context) error {
	return r.wz.Close(ctx)
}

// Config returns the effective configuration.
func (r *Runtime) Config() Config {
	return r.cfg
}

// Backend returns the storage backend.
func (r *Runtime) Backend() state.Backend {
	return r.backend
}

// Publish validates wasm, stores it and returns its new handle.
func (r *Runtime) Publish(ctx context.Context, wasm []byte) (handle.Handle, error) {
	compiled, err := r.wz.CompileModule(ctx, wasm)
	if err != nil {
		return handle.Invalid, errors.Load("compile program", err)
	}
	if err := checkImports(compiled); err != nil {
		compiled.Close(ctx)
		return handle.Invalid, err
	}

	id, err := r.backend.PutProgram(ctx, wasm)
	if err != nil {
		compiled.Close(ctx)
		return handle.Invalid, err
	}

	r.mu.Lock()
	r.compiled[id] = compiled
	r.mu.Unlock()

	r.logger.Info("program published",
		zap.Stringer("program", id),
		zap.Int("size", len(wasm)),
		zap.Strings("methods", Methods(compiled)))
	return id, nil
}

// Methods lists the exports of compiled that have the entry point signature.
func Methods(compiled wazero.CompiledModule) []string {
	var names []string
	for name, def := range compiled.ExportedFunctions() {
		if isEntryPoint(def) {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// ProgramMethods lists the callable methods of a published program.
func (r *Runtime) ProgramMethods(ctx context.Context, id handle.Handle) ([]string, error) {
	compiled, err := r.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return Methods(compiled), nil
}

// Call invokes method on target and returns its raw 64-bit result.
func (r *Runtime) Call(ctx context.Context, target handle.Handle, method string, args ...value.Value) (int64, error) {
	packed, err := invoke.Pack(args...)
	if err != nil {
		return 0, err
	}
	ret, _, err := r.call(ctx, handle.Invalid, target, method, packed)
	return ret, err
}

// CallValue invokes method on target and returns its result value. A callee
// that did not publish one returns its raw result as an integer.
func (r *Runtime) CallValue(ctx context.Context, target handle.Handle, method string, args ...value.Value) (value.Value, error) {
	packed, err := invoke.Pack(args...)
	if err != nil {
		return value.Value{}, err
	}
	_, result, err := r.call(ctx, handle.Invalid, target, method, packed)
	if err != nil {
		return value.Value{}, err
	}
	v, err := value.Decode(result)
	if err != nil {
		return value.Value{}, errors.Wrap(errors.PhaseInvoke, errors.KindOf(err), err, "decode result")
	}
	return v, nil
}

// call runs one frame. result is the encoded value the callee published, or
// its raw return wrapped as an integer.
func (r *Runtime) call(ctx context.Context, caller, target handle.Handle, method string, args []byte) (int64, []byte, error) {
	if method == "" {
		return 0, nil, errors.InvalidInput(errors.PhaseInvoke, "method name is empty")
	}
	if !target.IsValid() {
		return 0, nil, errors.InvalidInput(errors.PhaseInvoke, "target handle is invalid")
	}

	s := sessionFrom(ctx)
	if s == nil {
		s = &session{}
		ctx = withSession(ctx, s)
	}
	if s.depth() >= r.cfg.MaxCallDepth {
		return 0, nil, errors.New(errors.PhaseInvoke, errors.KindHostInvoke).
			Value(s.depth()).
			Detail("call %s on %s exceeds max depth %d", method, target, r.cfg.MaxCallDepth).
			Build()
	}

	compiled, err := r.load(ctx, target)
	if err != nil {
		return 0, nil, err
	}

	// The frame is live before _initialize runs so init_program reports target.
	f := &frame{self: target, caller: caller, method: method}
	s.push(f)
	defer s.pop()

	inst, err := r.instantiate(ctx, compiled)
	if err != nil {
		return 0, nil, err
	}
	defer inst.Close(ctx)

	fn := inst.ExportedFunction(method)
	if fn == nil {
		return 0, nil, errors.New(errors.PhaseInvoke, errors.KindNotFound).
			Value(method).
			Detail("%s has no method %q", target, method).
			Build()
	}
	if !isEntryPoint(fn.Definition()) {
		return 0, nil, errors.InvalidInput(errors.PhaseInvoke, "method "+method+" does not have the entry point signature")
	}

	ptr, err := place(ctx, inst, args)
	if err != nil {
		return 0, nil, errors.HostInvoke("write arguments", err)
	}

	r.logger.Debug("call",
		zap.Stringer("caller", caller),
		zap.Stringer("target", target),
		zap.String("method", method),
		zap.Int("args", len(args)),
		zap.Int("depth", s.depth()))

	results, err := fn.Call(ctx, uint64(target.Int64()), api.EncodeU32(ptr), api.EncodeU32(uint32(len(args))))
	if err != nil {
		return 0, nil, errors.HostInvoke("call "+method+" on "+target.String(), err)
	}
	ret := int64(results[0])

	result := f.result
	if !f.published {
		result = value.MustEncode(value.Int(ret))
	}
	return ret, result, nil
}

// load returns the compiled program, compiling it from the backend on first use.
func (r *Runtime) load(ctx context.Context, id handle.Handle) (wazero.CompiledModule, error) {
	r.mu.Lock()
	compiled, ok := r.compiled[id]
	r.mu.Unlock()
	if ok {
		return compiled, nil
	}

	wasm, err := r.backend.Program(ctx, id)
	if err != nil {
		return nil, err
	}
	compiled, err = r.wz.CompileModule(ctx, wasm)
	if err != nil {
		return nil, errors.Load("compile "+id.String(), err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.compiled[id]; ok {
		compiled.Close(ctx)
		return existing, nil
	}
	r.compiled[id] = compiled
	return compiled, nil
}

func (r *Runtime) instantiate(ctx context.Context, compiled wazero.CompiledModule) (api.Module, error) {
	modConfig := wazero.NewModuleConfig().
		WithName(""). // anonymous, so one program can be live in several frames
		WithStartFunctions().
		WithSysWalltime().
		WithSysNanotime().
		WithRandSource(rand.Reader)

	inst, err := r.wz.InstantiateModule(ctx, compiled, modConfig)
	if err != nil {
		return nil, errors.Instantiation(err)
	}
	if init := inst.ExportedFunction(abi.ExportInitialize); init != nil {
		if _, err := init.Call(ctx); err != nil {
			inst.Close(ctx)
			return nil, errors.Instantiation(err)
		}
	}
	return inst, nil
}

func isEntryPoint(def api.FunctionDefinition) bool {
	return slices.Equal(def.ParamTypes(), entryParams) && slices.Equal(def.ResultTypes(), entryResults)
}

// checkImports rejects programs importing from a module the host does not serve.
func checkImports(compiled wazero.CompiledModule) error {
	for _, def := range compiled.ImportedFunctions() {
		mod, name, _ := def.Import()
		switch mod {
		case abi.ModuleMap, abi.ModuleProgram, wasiModule:
		default:
			return errors.New(errors.PhaseLoad, errors.KindLoad).
				Value(mod).
				Detail("unsupported import %s.%s", mod, name).
				Build()
		}
	}
	return nil
}
