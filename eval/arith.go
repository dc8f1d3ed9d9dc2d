package eval

import (
	"github.com/corazon/jqsafe/ast"
	"github.com/corazon/jqsafe/env"
	"github.com/corazon/jqsafe/fault"
	"github.com/corazon/jqsafe/resource"
	"github.com/corazon/jqsafe/span"
	"github.com/corazon/jqsafe/token"
	"github.com/corazon/jqsafe/value"
)

func evalBinary(n *ast.Binary, in value.Value, fr *env.Frame, tr *resource.Tracker, emit Emit) *fault.Fault {
	return Eval(n.Left, in, fr, tr)(func(l value.Value) (bool, *fault.Fault) {
		err := Eval(n.Right, in, fr, tr)(func(r value.Value) (bool, *fault.Fault) {
			out, ferr := applyBinary(n.Operator, l, r, n.Sp)
			if ferr != nil {
				return false, ferr
			}
			return true, yield(tr, emit, n.Sp, out)
		})
		return true, err
	})
}

// applyBinary dispatches an arithmetic or comparison operator. The
// arithmetic cases (+ - * / %) delegate to package value so the compound
// assignment operators (`+=`, `-=`, ...) in package assign can reuse the
// exact same semantics without assign importing eval or eval importing
// assign's inverse.
func applyBinary(op token.Type, l, r value.Value, sp span.Span) (value.Value, *fault.Fault) {
	switch op {
	case token.PLUS:
		return value.Add(l, r, sp)
	case token.MINUS:
		return value.Sub(l, r, sp)
	case token.STAR:
		return value.Mul(l, r, sp)
	case token.SLASH:
		return value.Div(l, r, sp)
	case token.PERCENT:
		return value.Mod(l, r, sp)
	case token.EQ:
		return value.Bool(value.Equal(l, r)), nil
	case token.NE:
		return value.Bool(!value.Equal(l, r)), nil
	case token.LT:
		return value.Bool(value.Compare(l, r) < 0), nil
	case token.LE:
		return value.Bool(value.Compare(l, r) <= 0), nil
	case token.GT:
		return value.Bool(value.Compare(l, r) > 0), nil
	case token.GE:
		return value.Bool(value.Compare(l, r) >= 0), nil
	default:
		return nil, fault.Runtime(fault.RuntimeType, sp, "unsupported operator %s", op)
	}
}
