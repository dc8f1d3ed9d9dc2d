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

func toEntries(in value.Value, sp span.Span) (value.Value, *fault.Fault) {
	switch v := in.(type) {
	case value.Object:
		keys := v.Keys()
		out := make(value.Array, len(keys))
		for i, k := range keys {
			out[i] = value.Object{"key": value.String(k), "value": v[k]}
		}
		return out, nil
	case value.Array:
		out := make(value.Array, len(v))
		for i, e := range v {
			out[i] = value.Object{"key": value.Number(i), "value": e}
		}
		return out, nil
	default:
		return nil, fault.Runtime(fault.RuntimeType, sp, "%s has no keys", value.Type(in))
	}
}

func entryKeyName(entry value.Object) (string, *fault.Fault) {
	for _, alt := range []string{"key", "k", "name", "Name", "Key", "K"} {
		if v, ok := entry[alt]; ok {
			switch vv := v.(type) {
			case value.String:
				return string(vv), nil
			case value.Number:
				return value.Tostring(vv), nil
			}
		}
	}
	return "", fault.Runtime(fault.RuntimeType, span.None, "from_entries entry has no key/name field")
}

func entryValue(entry value.Object) value.Value {
	for _, alt := range []string{"value", "v", "Value", "V"} {
		if v, ok := entry[alt]; ok {
			return v
		}
	}
	return value.Null{}
}

func fromEntries(in value.Value, sp span.Span) (value.Value, *fault.Fault) {
	arr, ok := in.(value.Array)
	if !ok {
		return nil, fault.Runtime(fault.RuntimeType, sp, "from_entries input must be an array")
	}
	out := value.NewObject()
	for _, e := range arr {
		obj, ok := e.(value.Object)
		if !ok {
			return nil, fault.Runtime(fault.RuntimeType, sp, "from_entries entries must be objects")
		}
		k, ferr := entryKeyName(obj)
		if ferr != nil {
			return nil, ferr
		}
		out[k] = entryValue(obj)
	}
	return out, nil
}

func registerEntryBuiltins() {
	pure("to_entries", toEntries)
	pure("from_entries", fromEntries)

	register("with_entries", 1, func(in value.Value, args []ast.Expression, _ *env.Frame, tr *resource.Tracker, evalArg EvalArg, sp span.Span) stream.Stream {
		return func(emit stream.Emit) *fault.Fault {
			entries, err := toEntries(in, sp)
			if err != nil {
				return err
			}
			var mapped value.Array
			for _, e := range entries.(value.Array) {
				vals, err := collectAll(evalArg(args[0], e))
				if err != nil {
					return err
				}
				mapped = append(mapped, vals...)
			}
			out, err := fromEntries(mapped, sp)
			if err != nil {
				return err
			}
			return yield(tr, emit, sp, out)
		}
	})
}
