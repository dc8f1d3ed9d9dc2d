// Package builtin implements the standard library of filters spec §4.7
// describes: types and conversions, key/membership tests, collection
// transforms, string operations, path-family filters, generators, math,
// and the `error` builtin. Every entry is keyed by (name, arity) the way
// the parser and validator already key user-defined functions, so a
// local `def length(x): ...;` shadowing a builtin falls out of the
// dispatch order in package eval for free (user functions are looked up
// first).
//
// There is no teacher analogue for a filter-function library; the
// registration idiom here — a package-level map populated from an
// init(), with small helper constructors cutting the boilerplate common
// to whole families of builtins — generalizes the same
// "table of dispatchable handlers" shape the teacher's parser.go uses for
// prefix/infix parse functions (amoghasbhardwaj-Eloquence/parser), just
// keyed by (name, arity) instead of by token type.
package builtin

import (
	"github.com/corazon/jqsafe/ast"
	"github.com/corazon/jqsafe/env"
	"github.com/corazon/jqsafe/fault"
	"github.com/corazon/jqsafe/resource"
	"github.com/corazon/jqsafe/span"
	"github.com/corazon/jqsafe/stream"
	"github.com/corazon/jqsafe/value"
)

// EvalArg evaluates a builtin argument expression (always a filter, never
// a plain value) against input, returning the lazy stream the filter
// it names would produce. Package eval supplies the concrete closure;
// builtin never imports eval (the same cycle-avoidance pattern as
// package assign's Evaluator).
type EvalArg func(expr ast.Expression, input value.Value) stream.Stream

// Fn is one builtin filter's implementation.
type Fn func(in value.Value, args []ast.Expression, fr *env.Frame, tr *resource.Tracker, evalArg EvalArg, sp span.Span) stream.Stream

type key struct {
	name  string
	arity int
}

var registry = map[key]Fn{}

func register(name string, arity int, fn Fn) {
	registry[key{name, arity}] = fn
}

// Lookup returns the builtin named name/arity, if any.
func Lookup(name string, arity int) (Fn, bool) {
	fn, ok := registry[key{name, arity}]
	return fn, ok
}

// Exists reports whether name/arity names a builtin, for package
// validate's static name resolution.
func Exists(name string, arity int) bool {
	_, ok := registry[key{name, arity}]
	return ok
}

func yield(tr *resource.Tracker, emit stream.Emit, sp span.Span, v value.Value) *fault.Fault {
	if err := tr.Emit(sp); err != nil {
		return err
	}
	_, err := emit(v)
	return err
}

// pure registers an arity-0 builtin computed directly from the input,
// producing exactly one output.
func pure(name string, f func(in value.Value, sp span.Span) (value.Value, *fault.Fault)) {
	register(name, 0, func(in value.Value, _ []ast.Expression, _ *env.Frame, tr *resource.Tracker, _ EvalArg, sp span.Span) stream.Stream {
		return func(emit stream.Emit) *fault.Fault {
			out, err := f(in, sp)
			if err != nil {
				return err
			}
			return yield(tr, emit, sp, out)
		}
	})
}

// withArg registers an arity-1 builtin whose argument is evaluated as a
// generator against `.`, fanning out (one output per argument value) the
// way every other jq operator does.
func withArg(name string, f func(in, arg value.Value, sp span.Span) (value.Value, *fault.Fault)) {
	register(name, 1, func(in value.Value, args []ast.Expression, _ *env.Frame, tr *resource.Tracker, evalArg EvalArg, sp span.Span) stream.Stream {
		return func(emit stream.Emit) *fault.Fault {
			return evalArg(args[0], in)(func(av value.Value) (bool, *fault.Fault) {
				out, ferr := f(in, av, sp)
				if ferr != nil {
					return false, ferr
				}
				return true, yield(tr, emit, sp, out)
			})
		}
	})
}

// collectAll runs s to completion, gathering every value it produces.
func collectAll(s stream.Stream) ([]value.Value, *fault.Fault) {
	var out []value.Value
	err := s(func(v value.Value) (bool, *fault.Fault) {
		out = append(out, v)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// firstOf runs s, keeping only its first output and cutting the rest of
// the generator off (see fault.Stop's doc comment).
func firstOf(s stream.Stream) (value.Value, bool, *fault.Fault) {
	var first value.Value
	found := false
	err := s(func(v value.Value) (bool, *fault.Fault) {
		first = v
		found = true
		return false, fault.Stop()
	})
	if err != nil && !err.IsStop() {
		return nil, false, err
	}
	return first, found, nil
}

// elementsOf returns the element sequence map/select/sort/... iterate:
// an array's own elements, or an object's values in key order.
func elementsOf(v value.Value, sp span.Span) ([]value.Value, *fault.Fault) {
	switch vv := v.(type) {
	case value.Array:
		return append([]value.Value(nil), vv...), nil
	case value.Object:
		keys := vv.Keys()
		out := make([]value.Value, len(keys))
		for i, k := range keys {
			out[i] = vv[k]
		}
		return out, nil
	default:
		return nil, fault.Runtime(fault.RuntimeType, sp, "cannot iterate over %s", value.Type(v))
	}
}

// keyOf evaluates f against elem, collecting every output into an array
// — the `[f]` vector real jq uses as a sort/group/min/max key so a
// multi-output key expression still orders and groups deterministically.
func keyOf(evalArg EvalArg, f ast.Expression, elem value.Value) (value.Value, *fault.Fault) {
	vals, err := collectAll(evalArg(f, elem))
	if err != nil {
		return nil, err
	}
	return value.Array(vals), nil
}

func init() {
	registerTypeBuiltins()
	registerKeyBuiltins()
	registerCollectionBuiltins()
	registerEntryBuiltins()
	registerStringBuiltins()
	registerPathBuiltins()
	registerGeneratorBuiltins()
	registerMathBuiltins()
	registerErrorBuiltins()
	registerFormatBuiltins()
}
