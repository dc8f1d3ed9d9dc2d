package builtin

import (
	"sort"

	"github.com/samber/lo"

	"github.com/corazon/jqsafe/ast"
	"github.com/corazon/jqsafe/env"
	"github.com/corazon/jqsafe/fault"
	"github.com/corazon/jqsafe/resource"
	"github.com/corazon/jqsafe/span"
	"github.com/corazon/jqsafe/stream"
	"github.com/corazon/jqsafe/value"
)

// keyPair is one element of in paired with its jq key-expression result,
// built with lo.Map so sort_by/unique_by/group_by share one collection
// step instead of three copies of the same hand-rolled loop.
type keyPair struct {
	k value.Value
	v value.Value
}

func collectKeyPairs(elems []value.Value, f ast.Expression, evalArg EvalArg) ([]keyPair, *fault.Fault) {
	var ferr *fault.Fault
	pairs := lo.Map(elems, func(e value.Value, _ int) keyPair {
		if ferr != nil {
			return keyPair{}
		}
		k, err := keyOf(evalArg, f, e)
		if err != nil {
			ferr = err
			return keyPair{}
		}
		return keyPair{k: k, v: e}
	})
	if ferr != nil {
		return nil, ferr
	}
	return pairs, nil
}

func registerCollectionBuiltins() {
	register("map", 1, func(in value.Value, args []ast.Expression, _ *env.Frame, tr *resource.Tracker, evalArg EvalArg, sp span.Span) stream.Stream {
		return func(emit stream.Emit) *fault.Fault {
			elems, err := elementsOf(in, sp)
			if err != nil {
				return err
			}
			var out value.Array
			for _, e := range elems {
				if err := tr.Step(sp); err != nil {
					return err
				}
				vals, err := collectAll(evalArg(args[0], e))
				if err != nil {
					return err
				}
				out = append(out, vals...)
			}
			return yield(tr, emit, sp, out)
		}
	})

	register("select", 1, func(in value.Value, args []ast.Expression, _ *env.Frame, tr *resource.Tracker, evalArg EvalArg, sp span.Span) stream.Stream {
		return func(emit stream.Emit) *fault.Fault {
			return evalArg(args[0], in)(func(c value.Value) (bool, *fault.Fault) {
				if !value.Truthy(c) {
					return true, nil
				}
				return true, yield(tr, emit, sp, in)
			})
		}
	})

	pure("sort", func(in value.Value, sp span.Span) (value.Value, *fault.Fault) {
		arr, ok := in.(value.Array)
		if !ok {
			return nil, fault.Runtime(fault.RuntimeType, sp, "%s cannot be sorted, as it is not an array", value.Type(in))
		}
		out := append(value.Array(nil), arr...)
		sort.SliceStable(out, func(i, j int) bool { return value.Less(out[i], out[j]) })
		return out, nil
	})

	register("sort_by", 1, func(in value.Value, args []ast.Expression, _ *env.Frame, tr *resource.Tracker, evalArg EvalArg, sp span.Span) stream.Stream {
		return func(emit stream.Emit) *fault.Fault {
			out, err := sortByKey(in, args[0], evalArg, sp)
			if err != nil {
				return err
			}
			return yield(tr, emit, sp, out)
		}
	})

	pure("unique", func(in value.Value, sp span.Span) (value.Value, *fault.Fault) {
		arr, ok := in.(value.Array)
		if !ok {
			return nil, fault.Runtime(fault.RuntimeType, sp, "%s cannot be sorted, as it is not an array", value.Type(in))
		}
		out := append(value.Array(nil), arr...)
		sort.SliceStable(out, func(i, j int) bool { return value.Less(out[i], out[j]) })
		dedup := value.Array{}
		for i, e := range out {
			if i == 0 || !value.Equal(e, out[i-1]) {
				dedup = append(dedup, e)
			}
		}
		return dedup, nil
	})

	register("unique_by", 1, func(in value.Value, args []ast.Expression, _ *env.Frame, tr *resource.Tracker, evalArg EvalArg, sp span.Span) stream.Stream {
		return func(emit stream.Emit) *fault.Fault {
			elems, err := elementsOf(in, sp)
			if err != nil {
				return err
			}
			pairs, err := collectKeyPairs(elems, args[0], evalArg)
			if err != nil {
				return err
			}
			sort.SliceStable(pairs, func(i, j int) bool { return value.Less(pairs[i].k, pairs[j].k) })
			out := value.Array{}
			for i, p := range pairs {
				if i == 0 || !value.Equal(p.k, pairs[i-1].k) {
					out = append(out, p.v)
				}
			}
			return yield(tr, emit, sp, out)
		}
	})

	register("group_by", 1, func(in value.Value, args []ast.Expression, _ *env.Frame, tr *resource.Tracker, evalArg EvalArg, sp span.Span) stream.Stream {
		return func(emit stream.Emit) *fault.Fault {
			elems, err := elementsOf(in, sp)
			if err != nil {
				return err
			}
			pairs, err := collectKeyPairs(elems, args[0], evalArg)
			if err != nil {
				return err
			}
			sort.SliceStable(pairs, func(i, j int) bool { return value.Less(pairs[i].k, pairs[j].k) })
			var out value.Array
			var cur value.Array
			for i, p := range pairs {
				if i > 0 && !value.Equal(p.k, pairs[i-1].k) {
					out = append(out, cur)
					cur = nil
				}
				cur = append(cur, p.v)
			}
			if cur != nil {
				out = append(out, cur)
			}
			return yield(tr, emit, sp, out)
		}
	})

	pure("reverse", func(in value.Value, sp span.Span) (value.Value, *fault.Fault) {
		switch v := in.(type) {
		case value.Array:
			return lo.Reverse(append(value.Array(nil), v...)), nil
		case value.String:
			return value.String(string(lo.Reverse([]rune(string(v))))), nil
		default:
			return nil, fault.Runtime(fault.RuntimeType, sp, "cannot reverse %s", value.Type(in))
		}
	})

	pure("flatten", func(in value.Value, sp span.Span) (value.Value, *fault.Fault) {
		arr, ok := in.(value.Array)
		if !ok {
			return nil, fault.Runtime(fault.RuntimeType, sp, "%s cannot be flattened, as it is not an array", value.Type(in))
		}
		return flattenArray(arr, -1), nil
	})

	withArg("flatten", func(in, arg value.Value, sp span.Span) (value.Value, *fault.Fault) {
		arr, ok := in.(value.Array)
		if !ok {
			return nil, fault.Runtime(fault.RuntimeType, sp, "%s cannot be flattened, as it is not an array", value.Type(in))
		}
		depth, ok := arg.(value.Number)
		if !ok {
			return nil, fault.Runtime(fault.RuntimeType, sp, "flatten depth must be a number")
		}
		if depth < 0 {
			return nil, fault.Runtime(fault.RuntimeType, sp, "flatten depth must not be negative")
		}
		return flattenArray(arr, int(depth)), nil
	})

	pure("transpose", func(in value.Value, sp span.Span) (value.Value, *fault.Fault) {
		rows, ok := in.(value.Array)
		if !ok {
			return nil, fault.Runtime(fault.RuntimeType, sp, "transpose input must be an array of arrays")
		}
		maxLen := 0
		for _, r := range rows {
			ra, ok := r.(value.Array)
			if !ok {
				return nil, fault.Runtime(fault.RuntimeType, sp, "transpose input must be an array of arrays")
			}
			if len(ra) > maxLen {
				maxLen = len(ra)
			}
		}
		out := make(value.Array, maxLen)
		for i := 0; i < maxLen; i++ {
			col := make(value.Array, len(rows))
			for j, r := range rows {
				ra := r.(value.Array)
				if i < len(ra) {
					col[j] = ra[i]
				} else {
					col[j] = value.Null{}
				}
			}
			out[i] = col
		}
		return out, nil
	})

	withArg("bsearch", func(in, arg value.Value, sp span.Span) (value.Value, *fault.Fault) {
		arr, ok := in.(value.Array)
		if !ok {
			return nil, fault.Runtime(fault.RuntimeType, sp, "bsearch input must be an array")
		}
		low, high := 0, len(arr)
		for low < high {
			mid := (low + high) / 2
			if value.Compare(arr[mid], arg) < 0 {
				low = mid + 1
			} else {
				high = mid
			}
		}
		if low < len(arr) && value.Equal(arr[low], arg) {
			return value.Number(low), nil
		}
		return value.Number(-low - 1), nil
	})

	register("combinations", 0, func(in value.Value, _ []ast.Expression, _ *env.Frame, tr *resource.Tracker, _ EvalArg, sp span.Span) stream.Stream {
		return func(emit stream.Emit) *fault.Fault {
			arr, ok := in.(value.Array)
			if !ok {
				return fault.Runtime(fault.RuntimeType, sp, "combinations input must be an array of arrays")
			}
			pools := make([]value.Array, len(arr))
			for i, e := range arr {
				ea, ok := e.(value.Array)
				if !ok {
					return fault.Runtime(fault.RuntimeType, sp, "combinations input must be an array of arrays")
				}
				pools[i] = ea
			}
			return emitCombinations(pools, 0, make(value.Array, len(pools)), tr, sp, emit)
		}
	})

	register("combinations", 1, func(in value.Value, args []ast.Expression, _ *env.Frame, tr *resource.Tracker, evalArg EvalArg, sp span.Span) stream.Stream {
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
				return fault.Runtime(fault.RuntimeType, sp, "combinations count must be a number")
			}
			arr, ok := in.(value.Array)
			if !ok {
				return fault.Runtime(fault.RuntimeType, sp, "combinations input must be an array")
			}
			count := int(n)
			pools := make([]value.Array, count)
			for i := range pools {
				pools[i] = arr
			}
			return emitCombinations(pools, 0, make(value.Array, len(pools)), tr, sp, emit)
		}
	})
}

func sortByKey(in value.Value, f ast.Expression, evalArg EvalArg, sp span.Span) (value.Value, *fault.Fault) {
	elems, err := elementsOf(in, sp)
	if err != nil {
		return nil, err
	}
	pairs, err := collectKeyPairs(elems, f, evalArg)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(pairs, func(i, j int) bool { return value.Less(pairs[i].k, pairs[j].k) })
	out := make(value.Array, len(pairs))
	for i, p := range pairs {
		out[i] = p.v
	}
	return out, nil
}

func flattenArray(arr value.Array, depth int) value.Array {
	var out value.Array
	for _, e := range arr {
		if ea, ok := e.(value.Array); ok && depth != 0 {
			out = append(out, flattenArray(ea, depth-1)...)
			continue
		}
		out = append(out, e)
	}
	return out
}

func emitCombinations(pools []value.Array, idx int, acc value.Array, tr *resource.Tracker, sp span.Span, emit stream.Emit) *fault.Fault {
	if idx == len(pools) {
		out := append(value.Array(nil), acc...)
		return yield(tr, emit, sp, out)
	}
	for _, e := range pools[idx] {
		acc[idx] = e
		if err := emitCombinations(pools, idx+1, acc, tr, sp, emit); err != nil {
			return err
		}
	}
	return nil
}
