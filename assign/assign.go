// Package assign implements the assignment engine (spec §4.6): `=`,
// `|=`, and the compound operators `+= -= *= /= %= //=`. It composes
// package path's path resolver with the tree-walking evaluator, the same
// way the teacher (amoghasbhardwaj-Eloquence) composes its evaluator out
// of smaller `eval*` helpers — except here the composition crosses a
// package boundary, because package eval must also be able to dispatch
// an `*ast.Assign` node nested anywhere inside a larger filter (e.g.
// inside `map(.x = 1)`).
//
// That mutual need (eval calls into assign, assign needs eval to run
// both sides of `=`) is exactly the shape an import cycle would take if
// assign imported package eval directly. Instead assign declares its own
// Evaluator function type matching eval.Eval's signature structurally,
// and package eval passes its own Eval function as a value at the call
// site. assign never imports eval.
package assign

import (
	"sort"

	"github.com/corazon/jqsafe/ast"
	"github.com/corazon/jqsafe/env"
	"github.com/corazon/jqsafe/fault"
	"github.com/corazon/jqsafe/path"
	"github.com/corazon/jqsafe/resource"
	"github.com/corazon/jqsafe/span"
	"github.com/corazon/jqsafe/stream"
	"github.com/corazon/jqsafe/token"
	"github.com/corazon/jqsafe/value"
)

// Evaluator matches package eval's Eval function. Passed in by the
// caller rather than imported, to avoid an eval<->assign import cycle.
type Evaluator func(node ast.Expression, in value.Value, fr *env.Frame, tr *resource.Tracker) stream.Stream

// Apply returns the Stream implementing n against in. It is the single
// entry point package eval's dispatcher calls for every *ast.Assign node.
func Apply(n *ast.Assign, in value.Value, fr *env.Frame, tr *resource.Tracker, evalFn Evaluator) stream.Stream {
	return func(emit stream.Emit) *fault.Fault {
		pe := pathEvalAdapter(fr, tr, evalFn)
		if n.Operator == token.ASSIGN {
			return applyPlainAssign(n, in, fr, tr, evalFn, pe, emit)
		}
		return applyUpdateAssign(n, in, fr, tr, evalFn, pe, emit)
	}
}

// pathEvalAdapter closes over tr so path.Resolve's EvalFn (which has no
// tr parameter of its own — path resolution itself is never resource
// accounted, only the subexpressions it evaluates are) can still charge
// index expressions, slice bounds, and select predicates against it.
func pathEvalAdapter(fr *env.Frame, tr *resource.Tracker, evalFn Evaluator) path.EvalFn {
	return func(node ast.Expression, in value.Value, _ *env.Frame) stream.Stream {
		return evalFn(node, in, fr, tr)
	}
}

func yield(tr *resource.Tracker, emit stream.Emit, sp span.Span, v value.Value) *fault.Fault {
	if err := tr.Emit(sp); err != nil {
		return err
	}
	_, err := emit(v)
	return err
}

func collectPaths(lhs ast.Expression, fr *env.Frame, in value.Value, pe path.EvalFn) ([][]path.Segment, *fault.Fault) {
	var out [][]path.Segment
	err := path.Resolve(lhs, fr, in, pe)(func(p []path.Segment) (bool, *fault.Fault) {
		out = append(out, append([]path.Segment(nil), p...))
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// firstValue runs s, keeping only the first value it produces and then
// cutting the rest of the generator off via fault.Stop — real jq's `|=`
// and its compound variants only ever use the first value their update
// expression yields.
func firstValue(s stream.Stream) (value.Value, bool, *fault.Fault) {
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

func applyPlainAssign(n *ast.Assign, in value.Value, fr *env.Frame, tr *resource.Tracker, evalFn Evaluator, pe path.EvalFn, emit stream.Emit) *fault.Fault {
	return evalFn(n.RHS, in, fr, tr)(func(rv value.Value) (bool, *fault.Fault) {
		paths, err := collectPaths(n.LHS, fr, in, pe)
		if err != nil {
			return false, err
		}
		updated := in
		for _, p := range paths {
			var uerr *fault.Fault
			updated, uerr = path.Update(updated, p, func(value.Value) (value.Value, *fault.Fault) {
				return rv, nil
			})
			if uerr != nil {
				return false, uerr
			}
		}
		return true, yield(tr, emit, n.Sp, updated)
	})
}

// applyUpdateAssign handles `|=` and the compound arithmetic/alternative
// operators. Paths are resolved once against the original input and
// walked in descending total order (spec §4.6) so a `|=` producing
// `empty` at one array index — a deletion — never shifts the index of a
// path still pending in the same pass.
func applyUpdateAssign(n *ast.Assign, in value.Value, fr *env.Frame, tr *resource.Tracker, evalFn Evaluator, pe path.EvalFn, emit stream.Emit) *fault.Fault {
	paths, err := collectPaths(n.LHS, fr, in, pe)
	if err != nil {
		return err
	}
	sort.Slice(paths, func(i, j int) bool {
		return value.Compare(path.ToValue(paths[i]), path.ToValue(paths[j])) > 0
	})
	updated := in
	for _, p := range paths {
		old := path.Get(updated, p)
		nv, keep, uerr := computeUpdate(n.Operator, old, n.RHS, fr, tr, evalFn, n.Sp)
		if uerr != nil {
			return uerr
		}
		if keep {
			updated, uerr = path.Update(updated, p, func(value.Value) (value.Value, *fault.Fault) {
				return nv, nil
			})
		} else {
			updated, uerr = path.DeleteAll(updated, [][]path.Segment{p})
		}
		if uerr != nil {
			return uerr
		}
	}
	return yield(tr, emit, n.Sp, updated)
}

// computeUpdate evaluates the RHS of a `|=`/compound assignment with old
// bound as `.`, returning (newValue, true) to keep the path with a new
// value or (_, false) to delete it (an update expression producing no
// values deletes that path, matching `|= empty`).
func computeUpdate(op token.Type, old value.Value, rhs ast.Expression, fr *env.Frame, tr *resource.Tracker, evalFn Evaluator, sp span.Span) (value.Value, bool, *fault.Fault) {
	switch op {
	case token.PIPE_EQ:
		rv, found, err := firstValue(evalFn(rhs, old, fr, tr))
		if err != nil {
			return nil, false, err
		}
		return rv, found, nil

	case token.ALT_EQ:
		if value.Truthy(old) {
			return old, true, nil
		}
		rv, found, err := firstValue(evalFn(rhs, old, fr, tr))
		if err != nil {
			return nil, false, err
		}
		return rv, found, nil

	default:
		rv, found, err := firstValue(evalFn(rhs, old, fr, tr))
		if err != nil {
			return nil, false, err
		}
		if !found {
			return nil, false, nil
		}
		nv, ferr := applyCompound(op, old, rv, sp)
		if ferr != nil {
			return nil, false, ferr
		}
		return nv, true, nil
	}
}

func applyCompound(op token.Type, old, rv value.Value, sp span.Span) (value.Value, *fault.Fault) {
	switch op {
	case token.PLUS_EQ:
		return value.Add(old, rv, sp)
	case token.MINUS_EQ:
		return value.Sub(old, rv, sp)
	case token.STAR_EQ:
		return value.Mul(old, rv, sp)
	case token.SLASH_EQ:
		return value.Div(old, rv, sp)
	case token.PERCENT_EQ:
		return value.Mod(old, rv, sp)
	default:
		return nil, fault.Runtime(fault.RuntimeType, sp, "unsupported assignment operator %s", op)
	}
}
