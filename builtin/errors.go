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

func registerErrorBuiltins() {
	register("error", 0, func(in value.Value, _ []ast.Expression, _ *env.Frame, _ *resource.Tracker, _ EvalArg, sp span.Span) stream.Stream {
		return func(stream.Emit) *fault.Fault {
			if s, ok := in.(value.String); ok {
				return fault.User(sp, string(s))
			}
			return fault.User(sp, value.Tostring(in))
		}
	})

	register("error", 1, func(in value.Value, args []ast.Expression, _ *env.Frame, _ *resource.Tracker, evalArg EvalArg, sp span.Span) stream.Stream {
		return func(stream.Emit) *fault.Fault {
			v, found, err := firstOf(evalArg(args[0], in))
			if err != nil {
				return err
			}
			if !found {
				return nil
			}
			if s, ok := v.(value.String); ok {
				return fault.User(sp, string(s))
			}
			return fault.User(sp, value.Tostring(v))
		}
	})
}
