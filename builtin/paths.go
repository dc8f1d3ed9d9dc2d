package builtin

import (
	"github.com/corazon/jqsafe/ast"
	"github.com/corazon/jqsafe/env"
	"github.com/corazon/jqsafe/fault"
	"github.com/corazon/jqsafe/path"
	"github.com/corazon/jqsafe/resource"
	"github.com/corazon/jqsafe/span"
	"github.com/corazon/jqsafe/stream"
	"github.com/corazon/jqsafe/value"
)

// pathEvalAdapter lets package path's resolver evaluate the non-path
// subexpressions nested inside a path expression (a bracket index, a
// slice bound, a `select(f)` predicate) through this package's own
// EvalArg, so builtin never needs to import package eval either.
func pathEvalAdapter(evalArg EvalArg) path.EvalFn {
	return func(node ast.Expression, in value.Value, _ *env.Frame) stream.Stream {
		return evalArg(node, in)
	}
}

func allPaths(v value.Value, prefix []path.Segment, sp span.Span, emit func([]path.Segment) *fault.Fault) *fault.Fault {
	if len(prefix) > 0 {
		if err := emit(prefix); err != nil {
			return err
		}
	}
	switch vv := v.(type) {
	case value.Array:
		for i, e := range vv {
			next := append(append([]path.Segment(nil), prefix...), path.Segment{Kind: path.Index, IndexVal: i})
			if err := allPaths(e, next, sp, emit); err != nil {
				return err
			}
		}
	case value.Object:
		for _, k := range vv.Keys() {
			next := append(append([]path.Segment(nil), prefix...), path.Segment{Kind: path.Key, KeyName: k})
			if err := allPaths(vv[k], next, sp, emit); err != nil {
				return err
			}
		}
	}
	return nil
}

func registerPathBuiltins() {
	register("paths", 0, func(in value.Value, _ []ast.Expression, _ *env.Frame, tr *resource.Tracker, _ EvalArg, sp span.Span) stream.Stream {
		return func(emit stream.Emit) *fault.Fault {
			return allPaths(in, nil, sp, func(p []path.Segment) *fault.Fault {
				return yield(tr, emit, sp, path.ToValue(p))
			})
		}
	})

	register("path", 1, func(in value.Value, args []ast.Expression, fr *env.Frame, tr *resource.Tracker, evalArg EvalArg, sp span.Span) stream.Stream {
		return func(emit stream.Emit) *fault.Fault {
			return path.Resolve(args[0], fr, in, pathEvalAdapter(evalArg))(func(p []path.Segment) (bool, *fault.Fault) {
				return true, yield(tr, emit, sp, path.ToValue(p))
			})
		}
	})

	withArg("getpath", func(in, arg value.Value, sp span.Span) (value.Value, *fault.Fault) {
		segs, err := path.FromValue(arg)
		if err != nil {
			return nil, err
		}
		return path.Get(in, segs), nil
	})

	register("setpath", 2, func(in value.Value, args []ast.Expression, _ *env.Frame, tr *resource.Tracker, evalArg EvalArg, sp span.Span) stream.Stream {
		return func(emit stream.Emit) *fault.Fault {
			return evalArg(args[0], in)(func(pv value.Value) (bool, *fault.Fault) {
				segs, err := path.FromValue(pv)
				if err != nil {
					return false, err
				}
				err2 := evalArg(args[1], in)(func(nv value.Value) (bool, *fault.Fault) {
					out, uerr := path.Update(in, segs, func(value.Value) (value.Value, *fault.Fault) { return nv, nil })
					if uerr != nil {
						return false, uerr
					}
					return true, yield(tr, emit, sp, out)
				})
				return true, err2
			})
		}
	})

	register("delpaths", 1, func(in value.Value, args []ast.Expression, _ *env.Frame, tr *resource.Tracker, evalArg EvalArg, sp span.Span) stream.Stream {
		return func(emit stream.Emit) *fault.Fault {
			return evalArg(args[0], in)(func(pv value.Value) (bool, *fault.Fault) {
				arr, ok := pv.(value.Array)
				if !ok {
					return false, fault.Runtime(fault.RuntimeType, sp, "delpaths argument must be an array of paths")
				}
				allSegs := make([][]path.Segment, len(arr))
				for i, p := range arr {
					segs, err := path.FromValue(p)
					if err != nil {
						return false, err
					}
					allSegs[i] = segs
				}
				out, uerr := path.DeleteAll(in, allSegs)
				if uerr != nil {
					return false, uerr
				}
				return true, yield(tr, emit, sp, out)
			})
		}
	})
}
