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

func rangeStream(from, upto, by float64, tr *resource.Tracker, sp span.Span, emit stream.Emit) *fault.Fault {
	if by == 0 {
		return nil
	}
	if by > 0 {
		for v := from; v < upto; v += by {
			if err := tr.Step(sp); err != nil {
				return err
			}
			if err := yield(tr, emit, sp, value.Number(v)); err != nil {
				return err
			}
		}
		return nil
	}
	for v := from; v > upto; v += by {
		if err := tr.Step(sp); err != nil {
			return err
		}
		if err := yield(tr, emit, sp, value.Number(v)); err != nil {
			return err
		}
	}
	return nil
}

func registerGeneratorBuiltins() {
	register("range", 1, func(in value.Value, args []ast.Expression, _ *env.Frame, tr *resource.Tracker, evalArg EvalArg, sp span.Span) stream.Stream {
		return func(emit stream.Emit) *fault.Fault {
			return evalArg(args[0], in)(func(uv value.Value) (bool, *fault.Fault) {
				n, ok := uv.(value.Number)
				if !ok {
					return false, fault.Runtime(fault.RuntimeType, sp, "range bounds must be numbers")
				}
				err := rangeStream(0, float64(n), 1, tr, sp, emit)
				return true, err
			})
		}
	})

	register("range", 2, func(in value.Value, args []ast.Expression, _ *env.Frame, tr *resource.Tracker, evalArg EvalArg, sp span.Span) stream.Stream {
		return func(emit stream.Emit) *fault.Fault {
			return evalArg(args[0], in)(func(fv value.Value) (bool, *fault.Fault) {
				f, ok := fv.(value.Number)
				if !ok {
					return false, fault.Runtime(fault.RuntimeType, sp, "range bounds must be numbers")
				}
				err := evalArg(args[1], in)(func(uv value.Value) (bool, *fault.Fault) {
					u, ok := uv.(value.Number)
					if !ok {
						return false, fault.Runtime(fault.RuntimeType, sp, "range bounds must be numbers")
					}
					return true, rangeStream(float64(f), float64(u), 1, tr, sp, emit)
				})
				return true, err
			})
		}
	})

	register("range", 3, func(in value.Value, args []ast.Expression, _ *env.Frame, tr *resource.Tracker, evalArg EvalArg, sp span.Span) stream.Stream {
		return func(emit stream.Emit) *fault.Fault {
			return evalArg(args[0], in)(func(fv value.Value) (bool, *fault.Fault) {
				f, ok := fv.(value.Number)
				if !ok {
					return false, fault.Runtime(fault.RuntimeType, sp, "range bounds must be numbers")
				}
				err := evalArg(args[1], in)(func(uv value.Value) (bool, *fault.Fault) {
					u, ok := uv.(value.Number)
					if !ok {
						return false, fault.Runtime(fault.RuntimeType, sp, "range bounds must be numbers")
					}
					err2 := evalArg(args[2], in)(func(bv value.Value) (bool, *fault.Fault) {
						b, ok := bv.(value.Number)
						if !ok {
							return false, fault.Runtime(fault.RuntimeType, sp, "range step must be a number")
						}
						return true, rangeStream(float64(f), float64(u), float64(b), tr, sp, emit)
					})
					return true, err2
				})
				return true, err
			})
		}
	})

	register("limit", 2, func(in value.Value, args []ast.Expression, _ *env.Frame, tr *resource.Tracker, evalArg EvalArg, sp span.Span) stream.Stream {
		return func(emit stream.Emit) *fault.Fault {
			nv, found, err := firstOf(evalArg(args[0], in))
			if err != nil {
				return err
			}
			if !found {
				return nil
			}
			n, ok := nv.(value.Number)
			if !ok {
				return fault.Runtime(fault.RuntimeType, sp, "limit count must be a number")
			}
			count := int(n)
			if count <= 0 {
				return nil
			}
			seen := 0
			err = evalArg(args[1], in)(func(v value.Value) (bool, *fault.Fault) {
				if err := yield(tr, emit, sp, v); err != nil {
					return false, err
				}
				seen++
				if seen >= count {
					return false, fault.Stop()
				}
				return true, nil
			})
			if err != nil && !err.IsStop() {
				return err
			}
			return nil
		}
	})

	register("first", 1, func(in value.Value, args []ast.Expression, _ *env.Frame, tr *resource.Tracker, evalArg EvalArg, sp span.Span) stream.Stream {
		return func(emit stream.Emit) *fault.Fault {
			v, found, err := firstOf(evalArg(args[0], in))
			if err != nil {
				return err
			}
			if !found {
				return nil
			}
			return yield(tr, emit, sp, v)
		}
	})

	register("last", 1, func(in value.Value, args []ast.Expression, _ *env.Frame, tr *resource.Tracker, evalArg EvalArg, sp span.Span) stream.Stream {
		return func(emit stream.Emit) *fault.Fault {
			vals, err := collectAll(evalArg(args[0], in))
			if err != nil {
				return err
			}
			if len(vals) == 0 {
				return nil
			}
			return yield(tr, emit, sp, vals[len(vals)-1])
		}
	})

	register("nth", 2, func(in value.Value, args []ast.Expression, _ *env.Frame, tr *resource.Tracker, evalArg EvalArg, sp span.Span) stream.Stream {
		return func(emit stream.Emit) *fault.Fault {
			nv, found, err := firstOf(evalArg(args[0], in))
			if err != nil {
				return err
			}
			if !found {
				return nil
			}
			n, ok := nv.(value.Number)
			if !ok {
				return fault.Runtime(fault.RuntimeType, sp, "nth index must be a number")
			}
			target := int(n)
			if target < 0 {
				return fault.Runtime(fault.RuntimeIndex, sp, "nth doesn't support negative indices")
			}
			idx := 0
			var found2 bool
			var result value.Value
			err = evalArg(args[1], in)(func(v value.Value) (bool, *fault.Fault) {
				if idx == target {
					result = v
					found2 = true
					return false, fault.Stop()
				}
				idx++
				return true, nil
			})
			if err != nil && !err.IsStop() {
				return err
			}
			if !found2 {
				return nil
			}
			return yield(tr, emit, sp, result)
		}
	})

	register("isempty", 1, func(in value.Value, args []ast.Expression, _ *env.Frame, tr *resource.Tracker, evalArg EvalArg, sp span.Span) stream.Stream {
		return func(emit stream.Emit) *fault.Fault {
			_, found, err := firstOf(evalArg(args[0], in))
			if err != nil {
				return err
			}
			return yield(tr, emit, sp, value.Bool(!found))
		}
	})

	register("all", 1, func(in value.Value, args []ast.Expression, _ *env.Frame, tr *resource.Tracker, evalArg EvalArg, sp span.Span) stream.Stream {
		return func(emit stream.Emit) *fault.Fault {
			elems, err := elementsOf(in, sp)
			if err != nil {
				return err
			}
			for _, e := range elems {
				ok, found, err := firstOf(evalArg(args[0], e))
				if err != nil {
					return err
				}
				if found && !value.Truthy(ok) {
					return yield(tr, emit, sp, value.Bool(false))
				}
			}
			return yield(tr, emit, sp, value.Bool(true))
		}
	})

	register("any", 1, func(in value.Value, args []ast.Expression, _ *env.Frame, tr *resource.Tracker, evalArg EvalArg, sp span.Span) stream.Stream {
		return func(emit stream.Emit) *fault.Fault {
			elems, err := elementsOf(in, sp)
			if err != nil {
				return err
			}
			for _, e := range elems {
				v, found, err := firstOf(evalArg(args[0], e))
				if err != nil {
					return err
				}
				if found && value.Truthy(v) {
					return yield(tr, emit, sp, value.Bool(true))
				}
			}
			return yield(tr, emit, sp, value.Bool(false))
		}
	})

	pure("all", func(in value.Value, sp span.Span) (value.Value, *fault.Fault) {
		elems, err := elementsOf(in, sp)
		if err != nil {
			return nil, err
		}
		for _, e := range elems {
			if !value.Truthy(e) {
				return value.Bool(false), nil
			}
		}
		return value.Bool(true), nil
	})

	pure("any", func(in value.Value, sp span.Span) (value.Value, *fault.Fault) {
		elems, err := elementsOf(in, sp)
		if err != nil {
			return nil, err
		}
		for _, e := range elems {
			if value.Truthy(e) {
				return value.Bool(true), nil
			}
		}
		return value.Bool(false), nil
	})

	register("recurse", 1, func(in value.Value, args []ast.Expression, _ *env.Frame, tr *resource.Tracker, evalArg EvalArg, sp span.Span) stream.Stream {
		return func(emit stream.Emit) *fault.Fault {
			var step func(v value.Value) *fault.Fault
			step = func(v value.Value) *fault.Fault {
				if err := tr.Step(sp); err != nil {
					return err
				}
				if err := yield(tr, emit, sp, v); err != nil {
					return err
				}
				return evalArg(args[0], v)(func(nv value.Value) (bool, *fault.Fault) {
					return true, step(nv)
				})
			}
			return step(in)
		}
	})

	register("while", 2, func(in value.Value, args []ast.Expression, _ *env.Frame, tr *resource.Tracker, evalArg EvalArg, sp span.Span) stream.Stream {
		return func(emit stream.Emit) *fault.Fault {
			var step func(v value.Value) *fault.Fault
			step = func(v value.Value) *fault.Fault {
				if err := tr.Step(sp); err != nil {
					return err
				}
				cv, found, err := firstOf(evalArg(args[0], v))
				if err != nil {
					return err
				}
				if !found || !value.Truthy(cv) {
					return nil
				}
				if err := yield(tr, emit, sp, v); err != nil {
					return err
				}
				return evalArg(args[1], v)(func(nv value.Value) (bool, *fault.Fault) {
					return true, step(nv)
				})
			}
			return step(in)
		}
	})

	register("until", 2, func(in value.Value, args []ast.Expression, _ *env.Frame, tr *resource.Tracker, evalArg EvalArg, sp span.Span) stream.Stream {
		return func(emit stream.Emit) *fault.Fault {
			var step func(v value.Value) *fault.Fault
			step = func(v value.Value) *fault.Fault {
				if err := tr.Step(sp); err != nil {
					return err
				}
				cv, found, err := firstOf(evalArg(args[0], v))
				if err != nil {
					return err
				}
				if found && value.Truthy(cv) {
					return yield(tr, emit, sp, v)
				}
				nv, found2, err := firstOf(evalArg(args[1], v))
				if err != nil {
					return err
				}
				if !found2 {
					return fault.Runtime(fault.RuntimeArity, sp, "until update must produce a value")
				}
				return step(nv)
			}
			return step(in)
		}
	})

	register("repeat", 1, func(in value.Value, args []ast.Expression, _ *env.Frame, tr *resource.Tracker, evalArg EvalArg, sp span.Span) stream.Stream {
		return func(emit stream.Emit) *fault.Fault {
			var step func(v value.Value) *fault.Fault
			step = func(v value.Value) *fault.Fault {
				if err := tr.Step(sp); err != nil {
					return err
				}
				if err := yield(tr, emit, sp, v); err != nil {
					return err
				}
				return evalArg(args[0], v)(func(nv value.Value) (bool, *fault.Fault) {
					return true, step(nv)
				})
			}
			return step(in)
		}
	})

	register("walk", 1, func(in value.Value, args []ast.Expression, fr *env.Frame, tr *resource.Tracker, evalArg EvalArg, sp span.Span) stream.Stream {
		return func(emit stream.Emit) *fault.Fault {
			out, err := walk(in, args[0], tr, evalArg, sp)
			if err != nil {
				return err
			}
			return yield(tr, emit, sp, out)
		}
	})
}

func walk(v value.Value, f ast.Expression, tr *resource.Tracker, evalArg EvalArg, sp span.Span) (value.Value, *fault.Fault) {
	if err := tr.Step(sp); err != nil {
		return nil, err
	}
	var transformed value.Value
	switch vv := v.(type) {
	case value.Array:
		out := make(value.Array, len(vv))
		for i, e := range vv {
			w, err := walk(e, f, tr, evalArg, sp)
			if err != nil {
				return nil, err
			}
			out[i] = w
		}
		transformed = out
	case value.Object:
		out := value.NewObject()
		for _, k := range vv.Keys() {
			w, err := walk(vv[k], f, tr, evalArg, sp)
			if err != nil {
				return nil, err
			}
			out[k] = w
		}
		transformed = out
	default:
		transformed = v
	}
	result, found, err := firstOf(evalArg(f, transformed))
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fault.Runtime(fault.RuntimeArity, sp, "walk's transform must produce a value")
	}
	return result, nil
}
