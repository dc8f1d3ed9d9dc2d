package builtin

import (
	"math"

	"github.com/corazon/jqsafe/ast"
	"github.com/corazon/jqsafe/env"
	"github.com/corazon/jqsafe/fault"
	"github.com/corazon/jqsafe/resource"
	"github.com/corazon/jqsafe/span"
	"github.com/corazon/jqsafe/stream"
	"github.com/corazon/jqsafe/value"
)

func asNumber(in value.Value, name string, sp span.Span) (float64, *fault.Fault) {
	n, ok := in.(value.Number)
	if !ok {
		return 0, fault.Runtime(fault.RuntimeType, sp, "%s input must be a number, not %s", name, value.Type(in))
	}
	return float64(n), nil
}

func numFn(name string, f func(float64) float64) {
	pure(name, func(in value.Value, sp span.Span) (value.Value, *fault.Fault) {
		n, err := asNumber(in, name, sp)
		if err != nil {
			return nil, err
		}
		return value.Number(f(n)), nil
	})
}

func registerMathBuiltins() {
	numFn("floor", math.Floor)
	numFn("ceil", math.Ceil)
	numFn("round", math.Round)
	numFn("sqrt", math.Sqrt)

	pure("abs", func(in value.Value, sp span.Span) (value.Value, *fault.Fault) {
		n, err := asNumber(in, "abs", sp)
		if err != nil {
			return nil, err
		}
		return value.Number(math.Abs(n)), nil
	})

	pure("isnan", func(in value.Value, sp span.Span) (value.Value, *fault.Fault) {
		n, err := asNumber(in, "isnan", sp)
		if err != nil {
			return nil, err
		}
		return value.Bool(math.IsNaN(n)), nil
	})

	pure("isfinite", func(in value.Value, sp span.Span) (value.Value, *fault.Fault) {
		n, err := asNumber(in, "isfinite", sp)
		if err != nil {
			return nil, err
		}
		return value.Bool(!math.IsNaN(n) && !math.IsInf(n, 0)), nil
	})

	pure("infinite", func(value.Value, span.Span) (value.Value, *fault.Fault) {
		return value.Number(math.Inf(1)), nil
	})

	pure("min", func(in value.Value, sp span.Span) (value.Value, *fault.Fault) {
		elems, err := elementsOf(in, sp)
		if err != nil {
			return nil, err
		}
		if len(elems) == 0 {
			return value.Null{}, nil
		}
		best := elems[0]
		for _, e := range elems[1:] {
			if value.Compare(e, best) < 0 {
				best = e
			}
		}
		return best, nil
	})

	pure("max", func(in value.Value, sp span.Span) (value.Value, *fault.Fault) {
		elems, err := elementsOf(in, sp)
		if err != nil {
			return nil, err
		}
		if len(elems) == 0 {
			return value.Null{}, nil
		}
		best := elems[0]
		for _, e := range elems[1:] {
			if value.Compare(e, best) >= 0 {
				best = e
			}
		}
		return best, nil
	})

	register("min_by", 1, func(in value.Value, args []ast.Expression, _ *env.Frame, tr *resource.Tracker, evalArg EvalArg, sp span.Span) stream.Stream {
		return func(emit stream.Emit) *fault.Fault {
			out, err := extremeBy(in, args[0], evalArg, sp, true)
			if err != nil {
				return err
			}
			return yield(tr, emit, sp, out)
		}
	})

	register("max_by", 1, func(in value.Value, args []ast.Expression, _ *env.Frame, tr *resource.Tracker, evalArg EvalArg, sp span.Span) stream.Stream {
		return func(emit stream.Emit) *fault.Fault {
			out, err := extremeBy(in, args[0], evalArg, sp, false)
			if err != nil {
				return err
			}
			return yield(tr, emit, sp, out)
		}
	})

	pure("add", func(in value.Value, sp span.Span) (value.Value, *fault.Fault) {
		elems, err := elementsOf(in, sp)
		if err != nil {
			return nil, err
		}
		var acc value.Value = value.Null{}
		for _, e := range elems {
			acc, err = value.Add(acc, e, sp)
			if err != nil {
				return nil, err
			}
		}
		return acc, nil
	})
}

func extremeBy(in value.Value, f ast.Expression, evalArg EvalArg, sp span.Span, wantMin bool) (value.Value, *fault.Fault) {
	elems, err := elementsOf(in, sp)
	if err != nil {
		return nil, err
	}
	if len(elems) == 0 {
		return value.Null{}, nil
	}
	bestElem := elems[0]
	bestKey, err := keyOf(evalArg, f, bestElem)
	if err != nil {
		return nil, err
	}
	for _, e := range elems[1:] {
		k, err := keyOf(evalArg, f, e)
		if err != nil {
			return nil, err
		}
		c := value.Compare(k, bestKey)
		if (wantMin && c < 0) || (!wantMin && c >= 0) {
			bestElem, bestKey = e, k
		}
	}
	return bestElem, nil
}
