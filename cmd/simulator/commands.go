package main

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-programs/handle"
	"github.com/wippyai/wasm-programs/value"
)

func programCreate(ctx context.Context, e *env, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("program create", flag.ContinueOnError)
	fs.SetOutput(stderr)
	wasmFile := fs.String("wasm", "", "Path to program wasm file")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *wasmFile == "" {
		return fmt.Errorf("program create: -wasm is required")
	}

	data, err := os.ReadFile(*wasmFile)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}
	id, err := e.rt.Publish(ctx, data)
	if err != nil {
		return fmt.Errorf("publish %s: %w", *wasmFile, err)
	}
	methods := listMethods(ctx, e, id)

	fmt.Fprintf(e.stdout, "Program: %d\n", id)
	fmt.Fprintf(e.stdout, "Methods: %s\n", strings.Join(methods, ", "))
	return nil
}

// listMethods returns id's callable methods. A program that cannot be loaded
// is logged and reported with no methods.
func listMethods(ctx context.Context, e *env, id handle.Handle) []string {
	methods, err := e.rt.ProgramMethods(ctx, id)
	if err != nil {
		e.logger.Warn("list program methods", zap.Stringer("program", id), zap.Error(err))
		return nil
	}
	return methods
}

func programInvoke(ctx context.Context, e *env, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("program invoke", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		id       = fs.String("id", "", "Program handle")
		function = fs.String("function", "", "Method to call")
		params   = fs.String("params", "", "Comma-separated parameters (int:5,text:hi,addr:..,program:1)")
		full     = fs.Bool("value", false, "Print the full result value instead of the raw integer")
	)
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *id == "" || *function == "" {
		return fmt.Errorf("program invoke: -id and -function are required")
	}

	target, err := handle.Parse(*id)
	if err != nil {
		return fmt.Errorf("program invoke: bad -id: %w", err)
	}
	values, err := value.ParseList(*params)
	if err != nil {
		return fmt.Errorf("program invoke: bad -params: %w", err)
	}

	out, err := call(ctx, e, target, *function, values, *full)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.stdout, "Result: %s\n", out)
	return nil
}

// call runs one invocation and formats its result.
func call(ctx context.Context, e *env, target handle.Handle, method string, args []value.Value, full bool) (string, error) {
	if full {
		v, err := e.rt.CallValue(ctx, target, method, args...)
		if err != nil {
			return "", fmt.Errorf("call %s on %s: %w", method, target, err)
		}
		return v.String(), nil
	}
	ret, err := e.rt.Call(ctx, target, method, args...)
	if err != nil {
		return "", fmt.Errorf("call %s on %s: %w", method, target, err)
	}
	return fmt.Sprintf("%d", ret), nil
}

func programList(ctx context.Context, e *env) error {
	ids, err := e.backend.Programs(ctx)
	if err != nil {
		return fmt.Errorf("list programs: %w", err)
	}
	if len(ids) == 0 {
		fmt.Fprintln(e.stdout, "No programs published.")
		return nil
	}
	for _, id := range ids {
		methods, err := e.rt.ProgramMethods(ctx, id)
		if err != nil {
			fmt.Fprintf(e.stdout, "%d\t(error: %v)\n", id, err)
			continue
		}
		fmt.Fprintf(e.stdout, "%d\t%s\n", id, strings.Join(methods, ", "))
	}
	return nil
}

func keyCommand(args []string, stdout, stderr io.Writer) error {
	if args[0] != "generate" {
		return fmt.Errorf("unknown command %q", "key "+args[0])
	}
	fs := flag.NewFlagSet("key generate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	if err := fs.Parse(args[1:]); err != nil {
		return errUsage
	}

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return fmt.Errorf("generate key: %w", err)
	}
	var addr value.Address
	copy(addr[:], pub)

	fmt.Fprintf(stdout, "Address: %s\n", addr)
	fmt.Fprintf(stdout, "Private key: %s\n", hex.EncodeToString(priv.Seed()))
	return nil
}
