package builtin

import (
	"strconv"

	"github.com/corazon/jqsafe/ast"
	"github.com/corazon/jqsafe/env"
	"github.com/corazon/jqsafe/fault"
	"github.com/corazon/jqsafe/resource"
	"github.com/corazon/jqsafe/span"
	"github.com/corazon/jqsafe/stream"
	"github.com/corazon/jqsafe/value"
)

func registerTypeBuiltins() {
	pure("type", func(in value.Value, sp span.Span) (value.Value, *fault.Fault) {
		return value.String(value.Type(in)), nil
	})

	pure("tostring", func(in value.Value, sp span.Span) (value.Value, *fault.Fault) {
		return value.String(value.Tostring(in)), nil
	})

	pure("tonumber", func(in value.Value, sp span.Span) (value.Value, *fault.Fault) {
		switch v := in.(type) {
		case value.Number:
			return v, nil
		case value.String:
			f, err := strconv.ParseFloat(string(v), 64)
			if err != nil {
				return nil, fault.Runtime(fault.RuntimeType, sp, "cannot parse %q as a number", string(v))
			}
			return value.Number(f), nil
		default:
			return nil, fault.Runtime(fault.RuntimeType, sp, "cannot parse %s as a number", value.Type(in))
		}
	})

	pure("toboolean", func(in value.Value, sp span.Span) (value.Value, *fault.Fault) {
		switch v := in.(type) {
		case value.Bool:
			return v, nil
		case value.String:
			switch string(v) {
			case "true":
				return value.Bool(true), nil
			case "false":
				return value.Bool(false), nil
			}
		}
		return nil, fault.Runtime(fault.RuntimeType, sp, "cannot parse %s as a boolean", value.Type(in))
	})

	pure("length", func(in value.Value, sp span.Span) (value.Value, *fault.Fault) {
		switch v := in.(type) {
		case value.Null:
			return value.Number(0), nil
		case value.Bool:
			return nil, fault.Runtime(fault.RuntimeType, sp, "boolean has no length")
		case value.Number:
			if v < 0 {
				return -v, nil
			}
			return v, nil
		case value.String:
			return value.Number(len([]rune(string(v)))), nil
		case value.Array:
			return value.Number(len(v)), nil
		case value.Object:
			return value.Number(len(v)), nil
		}
		return nil, fault.Runtime(fault.RuntimeType, sp, "%s has no length", value.Type(in))
	})

	pure("not", func(in value.Value, sp span.Span) (value.Value, *fault.Fault) {
		return value.Bool(!value.Truthy(in)), nil
	})

	register("empty", 0, func(value.Value, []ast.Expression, *env.Frame, *resource.Tracker, EvalArg, span.Span) stream.Stream {
		return func(stream.Emit) *fault.Fault { return nil }
	})
}
