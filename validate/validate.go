// Package validate walks a parsed AST once before evaluation begins,
// rejecting unknown calls, arity mismatches, and forbidden builtins with
// a validate fault distinct from anything evaluation itself could raise.
// The teacher (amoghasbhardwaj-Eloquence) has no separate validation
// pass — it defers everything to the evaluator and returns an
// `*object.Error` at the point of failure. This package exists because a
// sandboxed filter language needs "is this program even legal" answered
// before any input is touched, and the teacher's merged parse/eval error
// handling is generalized here into its own phase.
package validate

import (
	"github.com/corazon/jqsafe/ast"
	"github.com/corazon/jqsafe/builtin"
	"github.com/corazon/jqsafe/fault"
)

// forbidden lists builtins a sandboxed filter may never call: anything
// touching wall-clock time, process environment, or external input
// streams.
var forbidden = map[string]bool{
	"now":     true,
	"input":   true,
	"inputs":  true,
	"env":     true,
	"$ENV":    true,
	"import":  true,
	"include": true,
}

// scope tracks which (name, arity) pairs are in-scope local functions at
// the current point in the walk, and which variable names are bound, so
// a call or variable reference shadowed by a local definition or a bind
// is never checked against the builtin registry or flagged unbound.
type scope struct {
	funcs map[string]map[int]bool
	vars  map[string]bool
	outer *scope
}

func newScope(outer *scope) *scope {
	return &scope{funcs: make(map[string]map[int]bool), vars: make(map[string]bool), outer: outer}
}

func (s *scope) addFunc(name string, arity int) {
	if s.funcs[name] == nil {
		s.funcs[name] = make(map[int]bool)
	}
	s.funcs[name][arity] = true
}

func (s *scope) addVar(name string) { s.vars[name] = true }

func (s *scope) hasFunc(name string, arity int) bool {
	for sc := s; sc != nil; sc = sc.outer {
		if sc.funcs[name] != nil && sc.funcs[name][arity] {
			return true
		}
	}
	return false
}

func (s *scope) hasVar(name string) bool {
	for sc := s; sc != nil; sc = sc.outer {
		if sc.vars[name] {
			return true
		}
	}
	return false
}

// Validate walks expr, returning the first violation found, or nil if
// the program is well-formed.
func Validate(expr ast.Expression) *fault.Fault {
	return validate(expr, newScope(nil))
}

func validate(n ast.Expression, sc *scope) *fault.Fault {
	if n == nil {
		return nil
	}
	switch node := n.(type) {
	case *ast.Identity, *ast.RecurseDefault, *ast.Literal, *ast.Break:
		return nil
	case *ast.VarRef:
		return nil
	case *ast.InterpString:
		for _, part := range node.Parts {
			if part.Expr != nil {
				if err := validate(part.Expr, sc); err != nil {
					return err
				}
			}
		}
		return nil
	case *ast.Field:
		return validate(node.Target, sc)
	case *ast.Index:
		if err := validate(node.Target, sc); err != nil {
			return err
		}
		return validate(node.Index, sc)
	case *ast.Slice:
		if err := validate(node.Target, sc); err != nil {
			return err
		}
		if err := validate(node.From, sc); err != nil {
			return err
		}
		return validate(node.To, sc)
	case *ast.Iterate:
		return validate(node.Target, sc)
	case *ast.ArrayConstruct:
		return validate(node.Body, sc)
	case *ast.ObjectConstruct:
		for _, e := range node.Entries {
			if err := validate(e.Key, sc); err != nil {
				return err
			}
			if err := validate(e.Value, sc); err != nil {
				return err
			}
		}
		return nil
	case *ast.Pipe:
		if err := validate(node.Left, sc); err != nil {
			return err
		}
		return validate(node.Right, sc)
	case *ast.Comma:
		if err := validate(node.Left, sc); err != nil {
			return err
		}
		return validate(node.Right, sc)
	case *ast.Alternative:
		if err := validate(node.Left, sc); err != nil {
			return err
		}
		return validate(node.Right, sc)
	case *ast.Unary:
		return validate(node.Operand, sc)
	case *ast.Binary:
		if err := validate(node.Left, sc); err != nil {
			return err
		}
		return validate(node.Right, sc)
	case *ast.Boolean:
		if err := validate(node.Left, sc); err != nil {
			return err
		}
		return validate(node.Right, sc)
	case *ast.If:
		if err := validate(node.Cond, sc); err != nil {
			return err
		}
		if err := validate(node.Then, sc); err != nil {
			return err
		}
		for _, e := range node.Elifs {
			if err := validate(e.Cond, sc); err != nil {
				return err
			}
			if err := validate(e.Body, sc); err != nil {
				return err
			}
		}
		return validate(node.Else, sc)
	case *ast.Bind:
		if err := validate(node.Source, sc); err != nil {
			return err
		}
		inner := newScope(sc)
		for _, pat := range node.Patterns {
			if err := validatePattern(pat, inner); err != nil {
				return err
			}
		}
		return validate(node.Body, inner)
	case *ast.Call:
		return validateCall(node, sc)
	case *ast.FuncDef:
		inner := newScope(sc)
		inner.addFunc(node.Name, len(node.Params))
		bodyScope := newScope(inner)
		for _, p := range node.Params {
			if len(p) > 0 && p[0] == '$' {
				bodyScope.addVar(p[1:])
			} else {
				bodyScope.addFunc(p, 0)
			}
		}
		if err := validate(node.Body, bodyScope); err != nil {
			return err
		}
		return validate(node.Rest, inner)
	case *ast.Label:
		return validate(node.Body, sc)
	case *ast.Reduce:
		if err := validate(node.Source, sc); err != nil {
			return err
		}
		inner := newScope(sc)
		inner.addVar(node.Var)
		if err := validate(node.Init, sc); err != nil {
			return err
		}
		return validate(node.Update, inner)
	case *ast.Foreach:
		if err := validate(node.Source, sc); err != nil {
			return err
		}
		inner := newScope(sc)
		inner.addVar(node.Var)
		if err := validate(node.Init, sc); err != nil {
			return err
		}
		if err := validate(node.Update, inner); err != nil {
			return err
		}
		return validate(node.Extract, inner)
	case *ast.TryCatch:
		if err := validate(node.Body, sc); err != nil {
			return err
		}
		return validate(node.Handler, sc)
	case *ast.Assign:
		if err := validate(node.LHS, sc); err != nil {
			return err
		}
		return validate(node.RHS, sc)
	default:
		return fault.Validate(n.Span(), "unrecognized AST node %T", n)
	}
}

func validatePattern(pat ast.Pattern, sc *scope) *fault.Fault {
	switch {
	case pat.Var != "":
		sc.addVar(pat.Var)
		return nil
	case pat.Array != nil:
		for _, sub := range pat.Array {
			if err := validatePattern(sub, sc); err != nil {
				return err
			}
		}
		return nil
	default:
		for _, entry := range pat.Object {
			if err := validate(entry.Key, sc); err != nil {
				return err
			}
			if err := validatePattern(entry.Pattern, sc); err != nil {
				return err
			}
		}
		return nil
	}
}

func validateCall(call *ast.Call, sc *scope) *fault.Fault {
	arity := len(call.Args)
	if forbidden[call.Name] {
		return fault.Validate(call.Sp, "%q is not available in this environment", call.Name)
	}
	if sc.hasFunc(call.Name, arity) {
		for _, arg := range call.Args {
			if err := validate(arg, sc); err != nil {
				return err
			}
		}
		return nil
	}
	if !builtin.Exists(call.Name, arity) {
		return fault.Validate(call.Sp, "%s/%d is not defined", call.Name, arity)
	}
	for _, arg := range call.Args {
		if err := validate(arg, sc); err != nil {
			return err
		}
	}
	return nil
}
