// Package eval implements the tree-walking, lazy Cartesian-product
// evaluator: every AST node kind becomes a Stream, composed by plain
// function calls rather than goroutines (there is no concurrency
// anywhere in this module). This generalizes the teacher's
// (amoghasbhardwaj-Eloquence/evaluator) `Eval(node, env) object.Object`
// big-switch dispatcher, with the same `isError`-propagation idiom, from
// a strict single-value evaluator into a lazy multi-value one: every
// `case *ast.Foo:` here returns a Stream instead of computing one value
// directly.
package eval

import (
	"math"
	"strings"

	"github.com/corazon/jqsafe/assign"
	"github.com/corazon/jqsafe/ast"
	"github.com/corazon/jqsafe/builtin"
	"github.com/corazon/jqsafe/env"
	"github.com/corazon/jqsafe/fault"
	"github.com/corazon/jqsafe/resource"
	"github.com/corazon/jqsafe/span"
	"github.com/corazon/jqsafe/stream"
	"github.com/corazon/jqsafe/token"
	"github.com/corazon/jqsafe/value"
)

// Emit and Stream are re-exported from package stream (see its doc
// comment for why the callback types live there instead of here).
type Emit = stream.Emit
type Stream = stream.Stream

// Eval returns the Stream producing every value node yields against in,
// under frame fr, accounted against tr.
func Eval(node ast.Expression, in value.Value, fr *env.Frame, tr *resource.Tracker) Stream {
	return func(emit Emit) *fault.Fault {
		if err := tr.Enter(node.Span()); err != nil {
			return err
		}
		defer tr.Exit()
		if err := tr.Step(node.Span()); err != nil {
			return err
		}
		return dispatch(node, in, fr, tr, emit)
	}
}

func dispatch(node ast.Expression, in value.Value, fr *env.Frame, tr *resource.Tracker, emit Emit) *fault.Fault {
	switch n := node.(type) {
	case *ast.Identity:
		return yield(tr, emit, n.Sp, in)
	case *ast.RecurseDefault:
		return evalRecurse(in, tr, n.Sp, emit)
	case *ast.Literal:
		return yield(tr, emit, n.Sp, literalValue(n))
	case *ast.InterpString:
		return evalInterpString(n, in, fr, tr, emit)
	case *ast.VarRef:
		return evalVarRef(n, fr, tr, emit)
	case *ast.Field:
		return evalField(n, in, fr, tr, emit)
	case *ast.Index:
		return evalIndex(n, in, fr, tr, emit)
	case *ast.Slice:
		return evalSlice(n, in, fr, tr, emit)
	case *ast.Iterate:
		return evalIterate(n, in, fr, tr, emit)
	case *ast.ArrayConstruct:
		return evalArrayConstruct(n, in, fr, tr, emit)
	case *ast.ObjectConstruct:
		return evalObjectConstruct(n, in, fr, tr, emit)
	case *ast.Pipe:
		return evalPipe(n, in, fr, tr, emit)
	case *ast.Comma:
		return evalComma(n, in, fr, tr, emit)
	case *ast.Alternative:
		return evalAlternative(n, in, fr, tr, emit)
	case *ast.Unary:
		return evalUnary(n, in, fr, tr, emit)
	case *ast.Binary:
		return evalBinary(n, in, fr, tr, emit)
	case *ast.Boolean:
		return evalBoolean(n, in, fr, tr, emit)
	case *ast.If:
		return evalIf(n, in, fr, tr, emit)
	case *ast.Bind:
		return evalBind(n, in, fr, tr, emit)
	case *ast.FuncDef:
		return evalFuncDef(n, in, fr, tr, emit)
	case *ast.Call:
		return evalCall(n, in, fr, tr, emit)
	case *ast.Label:
		return evalLabel(n, in, fr, tr, emit)
	case *ast.Break:
		return fault.Break(n.Name, n.Sp)
	case *ast.Reduce:
		return evalReduce(n, in, fr, tr, emit)
	case *ast.Foreach:
		return evalForeach(n, in, fr, tr, emit)
	case *ast.TryCatch:
		return evalTryCatch(n, in, fr, tr, emit)
	case *ast.Assign:
		return assign.Apply(n, in, fr, tr, Eval)(emit)
	default:
		return fault.Runtime(fault.RuntimeType, node.Span(), "cannot evaluate node of type %T", node)
	}
}

// yield accounts one output against tr and forwards it to emit.
func yield(tr *resource.Tracker, emit Emit, sp span.Span, v value.Value) *fault.Fault {
	if err := tr.Emit(sp); err != nil {
		return err
	}
	_, err := emit(v)
	return err
}

func literalValue(n *ast.Literal) value.Value {
	switch n.Kind {
	case ast.LiteralNull:
		return value.Null{}
	case ast.LiteralBool:
		return value.Bool(n.Bool)
	case ast.LiteralNumber:
		return value.Number(n.Num)
	default:
		return value.String(n.Str)
	}
}

func evalRecurse(in value.Value, tr *resource.Tracker, sp span.Span, emit Emit) *fault.Fault {
	if err := yield(tr, emit, sp, in); err != nil {
		return err
	}
	switch v := in.(type) {
	case value.Array:
		for _, e := range v {
			if err := evalRecurse(e, tr, sp, emit); err != nil {
				return err
			}
		}
	case value.Object:
		for _, k := range v.Keys() {
			if err := evalRecurse(v[k], tr, sp, emit); err != nil {
				return err
			}
		}
	}
	return nil
}

func evalInterpString(n *ast.InterpString, in value.Value, fr *env.Frame, tr *resource.Tracker, emit Emit) *fault.Fault {
	return buildParts(n.Parts, n.Format, 0, "", in, fr, tr, n.Sp, emit)
}

// buildParts concatenates an interpolated string's literal and expression
// parts. When format is non-empty (an `@name "..."` construct), every
// interpolated value is passed through value.Format before concatenation,
// the way jq applies `@base64`/`@csv`/etc. only to the interpolated holes,
// never to the surrounding literal text.
func buildParts(parts []ast.InterpPart, format string, i int, acc string, in value.Value, fr *env.Frame, tr *resource.Tracker, sp span.Span, emit Emit) *fault.Fault {
	if i == len(parts) {
		return yield(tr, emit, sp, value.String(acc))
	}
	part := parts[i]
	if part.Expr == nil {
		return buildParts(parts, format, i+1, acc+part.Text, in, fr, tr, sp, emit)
	}
	return Eval(part.Expr, in, fr, tr)(func(v value.Value) (bool, *fault.Fault) {
		rendered := value.Tostring(v)
		if format != "" {
			s, ferr := value.Format(format, v, sp)
			if ferr != nil {
				return false, ferr
			}
			rendered = s
		}
		err := buildParts(parts, format, i+1, acc+rendered, in, fr, tr, sp, emit)
		return true, err
	})
}

func evalVarRef(n *ast.VarRef, fr *env.Frame, tr *resource.Tracker, emit Emit) *fault.Fault {
	v, ok := fr.GetVar(n.Name)
	if !ok {
		return fault.Runtime(fault.RuntimeUnbound, n.Sp, "$%s is not defined", n.Name)
	}
	return yield(tr, emit, n.Sp, v)
}

// applyField implements `.name` on v: null on null, the value (or null if
// absent) on an object, a runtime fault otherwise.
func applyField(v value.Value, name string, sp span.Span) (value.Value, *fault.Fault) {
	switch vv := v.(type) {
	case value.Null:
		return value.Null{}, nil
	case value.Object:
		if r, ok := vv[name]; ok {
			return r, nil
		}
		return value.Null{}, nil
	default:
		return nil, fault.Runtime(fault.RuntimeType, sp, "cannot index %s with %q", value.Type(v), name)
	}
}

func evalField(n *ast.Field, in value.Value, fr *env.Frame, tr *resource.Tracker, emit Emit) *fault.Fault {
	target := n.Target
	if target == nil {
		target = &ast.Identity{Sp: n.Sp}
	}
	return Eval(target, in, fr, tr)(func(v value.Value) (bool, *fault.Fault) {
		out, ferr := applyField(v, n.Name, n.Sp)
		if ferr != nil {
			if n.Optional {
				return true, nil
			}
			return false, ferr
		}
		return true, yield(tr, emit, n.Sp, out)
	})
}

func applyIndex(container, idx value.Value, sp span.Span) (value.Value, *fault.Fault) {
	switch c := container.(type) {
	case value.Null:
		return value.Null{}, nil
	case value.Array:
		num, ok := idx.(value.Number)
		if !ok {
			return nil, fault.Runtime(fault.RuntimeType, sp, "cannot index array with %s", value.Type(idx))
		}
		f := float64(num)
		if f != math.Trunc(f) {
			return nil, fault.Runtime(fault.RuntimeType, sp, "array index %v is not an integer", f)
		}
		i := int(f)
		n := len(c)
		if i < 0 {
			i += n
		}
		if i < 0 || i >= n {
			return value.Null{}, nil
		}
		return c[i], nil
	case value.Object:
		s, ok := idx.(value.String)
		if !ok {
			return nil, fault.Runtime(fault.RuntimeType, sp, "cannot index object with %s", value.Type(idx))
		}
		if v, ok := c[string(s)]; ok {
			return v, nil
		}
		return value.Null{}, nil
	default:
		return nil, fault.Runtime(fault.RuntimeType, sp, "cannot index %s", value.Type(container))
	}
}

func evalIndex(n *ast.Index, in value.Value, fr *env.Frame, tr *resource.Tracker, emit Emit) *fault.Fault {
	return Eval(n.Target, in, fr, tr)(func(container value.Value) (bool, *fault.Fault) {
		err := Eval(n.Index, in, fr, tr)(func(idx value.Value) (bool, *fault.Fault) {
			out, ferr := applyIndex(container, idx, n.Sp)
			if ferr != nil {
				if n.Optional {
					return true, nil
				}
				return false, ferr
			}
			return true, yield(tr, emit, n.Sp, out)
		})
		return true, err
	})
}

// sliceBoundStream evaluates an (optional) slice-bound expression; a nil
// expr yields one value.Null{} meaning "use the default", indistinguishable
// from (and handled identically to) an explicit `null` bound.
func sliceBoundStream(expr ast.Expression, in value.Value, fr *env.Frame, tr *resource.Tracker) Stream {
	if expr == nil {
		return func(emit Emit) *fault.Fault {
			_, err := emit(value.Null{})
			return err
		}
	}
	return Eval(expr, in, fr, tr)
}

func sliceIndex(v value.Value, length, def int, sp span.Span) (int, *fault.Fault) {
	if _, isNull := v.(value.Null); isNull {
		return def, nil
	}
	num, ok := v.(value.Number)
	if !ok {
		return 0, fault.Runtime(fault.RuntimeType, sp, "slice bounds must be numbers")
	}
	i := int(math.Trunc(float64(num)))
	if i < 0 {
		i += length
		if i < 0 {
			i = 0
		}
	}
	if i > length {
		i = length
	}
	return i, nil
}

func applySlice(container, fromV, toV value.Value, sp span.Span) (value.Value, *fault.Fault) {
	switch c := container.(type) {
	case value.Null:
		return value.Null{}, nil
	case value.Array:
		n := len(c)
		start, err := sliceIndex(fromV, n, 0, sp)
		if err != nil {
			return nil, err
		}
		end, err := sliceIndex(toV, n, n, sp)
		if err != nil {
			return nil, err
		}
		if start > end {
			start = end
		}
		out := make(value.Array, end-start)
		copy(out, c[start:end])
		return out, nil
	case value.String:
		runes := []rune(string(c))
		n := len(runes)
		start, err := sliceIndex(fromV, n, 0, sp)
		if err != nil {
			return nil, err
		}
		end, err := sliceIndex(toV, n, n, sp)
		if err != nil {
			return nil, err
		}
		if start > end {
			start = end
		}
		return value.String(string(runes[start:end])), nil
	default:
		return nil, fault.Runtime(fault.RuntimeType, sp, "cannot slice %s", value.Type(container))
	}
}

func evalSlice(n *ast.Slice, in value.Value, fr *env.Frame, tr *resource.Tracker, emit Emit) *fault.Fault {
	return Eval(n.Target, in, fr, tr)(func(container value.Value) (bool, *fault.Fault) {
		err := sliceBoundStream(n.From, in, fr, tr)(func(fromV value.Value) (bool, *fault.Fault) {
			err2 := sliceBoundStream(n.To, in, fr, tr)(func(toV value.Value) (bool, *fault.Fault) {
				out, ferr := applySlice(container, fromV, toV, n.Sp)
				if ferr != nil {
					if n.Optional {
						return true, nil
					}
					return false, ferr
				}
				return true, yield(tr, emit, n.Sp, out)
			})
			return true, err2
		})
		return true, err
	})
}

func evalIterate(n *ast.Iterate, in value.Value, fr *env.Frame, tr *resource.Tracker, emit Emit) *fault.Fault {
	return Eval(n.Target, in, fr, tr)(func(v value.Value) (bool, *fault.Fault) {
		switch vv := v.(type) {
		case value.Array:
			for _, e := range vv {
				if err := yield(tr, emit, n.Sp, e); err != nil {
					return false, err
				}
			}
			return true, nil
		case value.Object:
			for _, k := range vv.Keys() {
				if err := yield(tr, emit, n.Sp, vv[k]); err != nil {
					return false, err
				}
			}
			return true, nil
		case value.Null:
			return true, nil
		default:
			if n.Optional {
				return true, nil
			}
			return false, fault.Runtime(fault.RuntimeType, n.Sp, "cannot iterate over %s", value.Type(v))
		}
	})
}

func evalArrayConstruct(n *ast.ArrayConstruct, in value.Value, fr *env.Frame, tr *resource.Tracker, emit Emit) *fault.Fault {
	if n.Body == nil {
		return yield(tr, emit, n.Sp, value.Array{})
	}
	var elems value.Array
	err := Eval(n.Body, in, fr, tr)(func(v value.Value) (bool, *fault.Fault) {
		elems = append(elems, v)
		return true, nil
	})
	if err != nil {
		return err
	}
	return yield(tr, emit, n.Sp, elems)
}

func cloneObject(o value.Object) value.Object {
	out := make(value.Object, len(o))
	for k, v := range o {
		out[k] = v
	}
	return out
}

// iterEntry drives one object-construct entry's key/value combinations,
// calling onPair once per partial. Shorthand entries (`{foo}`, `{$x}`)
// derive both key and value from the entry's Key node alone.
func iterEntry(entry ast.ObjectEntry, in value.Value, fr *env.Frame, tr *resource.Tracker, onPair func(key string, v value.Value) (bool, *fault.Fault)) *fault.Fault {
	if entry.Value == nil {
		if vr, ok := entry.Key.(*ast.VarRef); ok {
			v, bound := fr.GetVar(vr.Name)
			if !bound {
				return fault.Runtime(fault.RuntimeUnbound, vr.Sp, "$%s is not defined", vr.Name)
			}
			_, err := onPair(vr.Name, v)
			return err
		}
		if lit, ok := entry.Key.(*ast.Literal); ok && lit.Kind == ast.LiteralString {
			v, ferr := applyField(in, lit.Str, lit.Sp)
			if ferr != nil {
				return ferr
			}
			_, err := onPair(lit.Str, v)
			return err
		}
		return Eval(entry.Key, in, fr, tr)(func(kv value.Value) (bool, *fault.Fault) {
			ks, ok := kv.(value.String)
			if !ok {
				return false, fault.Runtime(fault.RuntimeType, entry.Key.Span(), "object keys must be strings")
			}
			fv, ferr := applyField(in, string(ks), entry.Key.Span())
			if ferr != nil {
				return false, ferr
			}
			return onPair(string(ks), fv)
		})
	}
	return Eval(entry.Key, in, fr, tr)(func(kv value.Value) (bool, *fault.Fault) {
		ks, ok := kv.(value.String)
		if !ok {
			return false, fault.Runtime(fault.RuntimeType, entry.Key.Span(), "object keys must be strings")
		}
		err := Eval(entry.Value, in, fr, tr)(func(vv value.Value) (bool, *fault.Fault) {
			return onPair(string(ks), vv)
		})
		return true, err
	})
}

func evalObjectConstruct(n *ast.ObjectConstruct, in value.Value, fr *env.Frame, tr *resource.Tracker, emit Emit) *fault.Fault {
	return buildEntries(n.Entries, 0, value.NewObject(), in, fr, tr, n.Sp, emit)
}

func buildEntries(entries []ast.ObjectEntry, idx int, acc value.Object, in value.Value, fr *env.Frame, tr *resource.Tracker, sp span.Span, emit Emit) *fault.Fault {
	if idx == len(entries) {
		return yield(tr, emit, sp, cloneObject(acc))
	}
	return iterEntry(entries[idx], in, fr, tr, func(k string, v value.Value) (bool, *fault.Fault) {
		next := cloneObject(acc)
		next[k] = v
		err := buildEntries(entries, idx+1, next, in, fr, tr, sp, emit)
		return true, err
	})
}

func evalPipe(n *ast.Pipe, in value.Value, fr *env.Frame, tr *resource.Tracker, emit Emit) *fault.Fault {
	return Eval(n.Left, in, fr, tr)(func(v value.Value) (bool, *fault.Fault) {
		err := Eval(n.Right, v, fr, tr)(emit)
		return true, err
	})
}

func evalComma(n *ast.Comma, in value.Value, fr *env.Frame, tr *resource.Tracker, emit Emit) *fault.Fault {
	if err := Eval(n.Left, in, fr, tr)(emit); err != nil {
		return err
	}
	return Eval(n.Right, in, fr, tr)(emit)
}

// evalAlternative implements `L // R`. Real jq also treats a fault from L
// as "no qualifying values", not as a propagating error (unless the fault
// is a fatal resource cap) — spec.md is silent on this case, so this
// follows jq's documented behavior rather than inventing a stricter one.
func evalAlternative(n *ast.Alternative, in value.Value, fr *env.Frame, tr *resource.Tracker, emit Emit) *fault.Fault {
	any := false
	leftErr := Eval(n.Left, in, fr, tr)(func(v value.Value) (bool, *fault.Fault) {
		if value.Truthy(v) {
			any = true
			err := yield(tr, emit, n.Sp, v)
			return true, err
		}
		return true, nil
	})
	if leftErr != nil {
		if !leftErr.Catchable() {
			return leftErr
		}
		any = false
	}
	if any {
		return nil
	}
	return Eval(n.Right, in, fr, tr)(emit)
}

func evalUnary(n *ast.Unary, in value.Value, fr *env.Frame, tr *resource.Tracker, emit Emit) *fault.Fault {
	return Eval(n.Operand, in, fr, tr)(func(v value.Value) (bool, *fault.Fault) {
		if n.Operator != token.MINUS {
			return false, fault.Runtime(fault.RuntimeType, n.Sp, "unsupported unary operator %s", n.Operator)
		}
		num, ok := v.(value.Number)
		if !ok {
			return false, fault.Runtime(fault.RuntimeType, n.Sp, "cannot negate %s", value.Type(v))
		}
		return true, yield(tr, emit, n.Sp, -num)
	})
}

func evalBoolean(n *ast.Boolean, in value.Value, fr *env.Frame, tr *resource.Tracker, emit Emit) *fault.Fault {
	return Eval(n.Left, in, fr, tr)(func(l value.Value) (bool, *fault.Fault) {
		lt := value.Truthy(l)
		if n.Operator == token.OR {
			if lt {
				return true, yield(tr, emit, n.Sp, value.Bool(true))
			}
			err := Eval(n.Right, in, fr, tr)(func(r value.Value) (bool, *fault.Fault) {
				return true, yield(tr, emit, n.Sp, value.Bool(value.Truthy(r)))
			})
			return true, err
		}
		if !lt {
			return true, yield(tr, emit, n.Sp, value.Bool(false))
		}
		err := Eval(n.Right, in, fr, tr)(func(r value.Value) (bool, *fault.Fault) {
			return true, yield(tr, emit, n.Sp, value.Bool(value.Truthy(r)))
		})
		return true, err
	})
}

func evalIf(n *ast.If, in value.Value, fr *env.Frame, tr *resource.Tracker, emit Emit) *fault.Fault {
	type branch struct {
		cond, body ast.Expression
	}
	branches := make([]branch, 0, len(n.Elifs)+1)
	branches = append(branches, branch{n.Cond, n.Then})
	for _, e := range n.Elifs {
		branches = append(branches, branch{e.Cond, e.Body})
	}
	var tryBranch func(idx int) *fault.Fault
	tryBranch = func(idx int) *fault.Fault {
		if idx == len(branches) {
			if n.Else != nil {
				return Eval(n.Else, in, fr, tr)(emit)
			}
			return yield(tr, emit, n.Sp, in)
		}
		b := branches[idx]
		return Eval(b.cond, in, fr, tr)(func(c value.Value) (bool, *fault.Fault) {
			if value.Truthy(c) {
				return true, Eval(b.body, in, fr, tr)(emit)
			}
			return true, tryBranch(idx + 1)
		})
	}
	return tryBranch(0)
}

func bindPattern(pat ast.Pattern, v value.Value, fr *env.Frame) *fault.Fault {
	if pat.Var != "" {
		fr.SetVar(pat.Var, v)
		return nil
	}
	if pat.Array != nil {
		arr, isArr := v.(value.Array)
		_, isNull := v.(value.Null)
		if !isArr && !isNull {
			return fault.Runtime(fault.RuntimeType, span.None, "cannot destructure %s as an array pattern", value.Type(v))
		}
		for i, sub := range pat.Array {
			elem := value.Value(value.Null{})
			if isArr && i < len(arr) {
				elem = arr[i]
			}
			if err := bindPattern(sub, elem, fr); err != nil {
				return err
			}
		}
		return nil
	}
	obj, isObj := v.(value.Object)
	for _, entry := range pat.Object {
		lit, ok := entry.Key.(*ast.Literal)
		if !ok || lit.Kind != ast.LiteralString {
			return fault.Runtime(fault.RuntimeType, entry.Key.Span(), "unsupported object pattern key")
		}
		val := value.Value(value.Null{})
		if isObj {
			if vv, ok2 := obj[lit.Str]; ok2 {
				val = vv
			}
		}
		if err := bindPattern(entry.Pattern, val, fr); err != nil {
			return err
		}
	}
	return nil
}

func tryPatterns(patterns []ast.Pattern, idx int, v value.Value, in value.Value, fr *env.Frame, tr *resource.Tracker, body ast.Expression, emit Emit) *fault.Fault {
	inner := env.NewEnclosed(fr)
	ferr := bindPattern(patterns[idx], v, inner)
	if ferr != nil {
		if idx+1 < len(patterns) && ferr.Catchable() {
			return tryPatterns(patterns, idx+1, v, in, fr, tr, body, emit)
		}
		return ferr
	}
	return Eval(body, in, inner, tr)(emit)
}

func evalBind(n *ast.Bind, in value.Value, fr *env.Frame, tr *resource.Tracker, emit Emit) *fault.Fault {
	return Eval(n.Source, in, fr, tr)(func(v value.Value) (bool, *fault.Fault) {
		err := tryPatterns(n.Patterns, 0, v, in, fr, tr, n.Body, emit)
		return true, err
	})
}

func evalFuncDef(n *ast.FuncDef, in value.Value, fr *env.Frame, tr *resource.Tracker, emit Emit) *fault.Fault {
	inner := env.NewEnclosed(fr)
	closure := &env.Closure{Params: n.Params, Body: n.Body, Defined: inner}
	inner.SetFunc(n.Name, len(n.Params), closure)
	rest := n.Rest
	if rest == nil {
		rest = &ast.Identity{Sp: n.Sp}
	}
	return Eval(rest, in, inner, tr)(emit)
}

func evalUserCall(c *env.Closure, args []ast.Expression, in value.Value, callerFr *env.Frame, tr *resource.Tracker, emit Emit, sp span.Span) *fault.Fault {
	bodyFrame := env.NewEnclosed(c.Defined)
	var dollarIdx []int
	for i, p := range c.Params {
		if strings.HasPrefix(p, "$") {
			dollarIdx = append(dollarIdx, i)
		} else {
			bodyFrame.SetFunc(p, 0, &env.Closure{Body: args[i], Defined: callerFr})
		}
	}
	var bindNext func(k int) *fault.Fault
	bindNext = func(k int) *fault.Fault {
		if k == len(dollarIdx) {
			return Eval(c.Body, in, bodyFrame, tr)(emit)
		}
		i := dollarIdx[k]
		name := c.Params[i][1:]
		return Eval(args[i], in, callerFr, tr)(func(v value.Value) (bool, *fault.Fault) {
			bodyFrame.SetVar(name, v)
			err := bindNext(k + 1)
			return true, err
		})
	}
	return bindNext(0)
}

func evalCall(n *ast.Call, in value.Value, fr *env.Frame, tr *resource.Tracker, emit Emit) *fault.Fault {
	arity := len(n.Args)
	if c, ok := fr.GetFunc(n.Name, arity); ok {
		return evalUserCall(c, n.Args, in, fr, tr, emit, n.Sp)
	}
	if bfn, ok := builtin.Lookup(n.Name, arity); ok {
		evalArg := func(argExpr ast.Expression, input value.Value) stream.Stream {
			return Eval(argExpr, input, fr, tr)
		}
		return bfn(in, n.Args, fr, tr, evalArg, n.Sp)(emit)
	}
	return fault.Validate(n.Sp, "%s/%d is not defined", n.Name, arity)
}

func evalLabel(n *ast.Label, in value.Value, fr *env.Frame, tr *resource.Tracker, emit Emit) *fault.Fault {
	err := Eval(n.Body, in, fr, tr)(emit)
	if err != nil && err.RuntimeKind() == fault.RuntimeBreak && err.BreakName() == n.Name {
		return nil
	}
	return err
}

func evalReduce(n *ast.Reduce, in value.Value, fr *env.Frame, tr *resource.Tracker, emit Emit) *fault.Fault {
	var initVal value.Value
	count := 0
	if err := Eval(n.Init, in, fr, tr)(func(v value.Value) (bool, *fault.Fault) {
		count++
		if count > 1 {
			return false, fault.Runtime(fault.RuntimeArity, n.Sp, "reduce init must produce exactly one value")
		}
		initVal = v
		return true, nil
	}); err != nil {
		return err
	}
	if count == 0 {
		return fault.Runtime(fault.RuntimeArity, n.Sp, "reduce init must produce exactly one value")
	}
	acc := initVal
	err := Eval(n.Source, in, fr, tr)(func(sv value.Value) (bool, *fault.Fault) {
		if err := tr.Step(n.Sp); err != nil {
			return false, err
		}
		inner := env.NewEnclosed(fr)
		inner.SetVar(n.Var, sv)
		var updCount int
		var newAcc value.Value
		uerr := Eval(n.Update, acc, inner, tr)(func(uv value.Value) (bool, *fault.Fault) {
			updCount++
			newAcc = uv
			return true, nil
		})
		if uerr != nil {
			return false, uerr
		}
		if updCount != 1 {
			return false, fault.Runtime(fault.RuntimeArity, n.Sp, "reduce update must produce exactly one value")
		}
		acc = newAcc
		return true, nil
	})
	if err != nil {
		return err
	}
	return yield(tr, emit, n.Sp, acc)
}

func evalForeach(n *ast.Foreach, in value.Value, fr *env.Frame, tr *resource.Tracker, emit Emit) *fault.Fault {
	var initVal value.Value
	count := 0
	if err := Eval(n.Init, in, fr, tr)(func(v value.Value) (bool, *fault.Fault) {
		count++
		if count > 1 {
			return false, fault.Runtime(fault.RuntimeArity, n.Sp, "foreach init must produce exactly one value")
		}
		initVal = v
		return true, nil
	}); err != nil {
		return err
	}
	if count == 0 {
		return fault.Runtime(fault.RuntimeArity, n.Sp, "foreach init must produce exactly one value")
	}
	acc := initVal
	return Eval(n.Source, in, fr, tr)(func(sv value.Value) (bool, *fault.Fault) {
		if err := tr.Step(n.Sp); err != nil {
			return false, err
		}
		inner := env.NewEnclosed(fr)
		inner.SetVar(n.Var, sv)
		// lastAcc starts at null so an update producing zero values (e.g.
		// `empty`) resets the accumulator for the next source element
		// instead of leaving the nil Value interface in acc, matching
		// jq's own implicit null-reset on an empty update.
		lastAcc := value.Value(value.Null{})
		uerr := Eval(n.Update, acc, inner, tr)(func(uv value.Value) (bool, *fault.Fault) {
			lastAcc = uv
			if n.Extract != nil {
				err := Eval(n.Extract, uv, inner, tr)(emit)
				return true, err
			}
			return true, yield(tr, emit, n.Sp, uv)
		})
		if uerr != nil {
			return false, uerr
		}
		acc = lastAcc
		return true, nil
	})
}

func evalTryCatch(n *ast.TryCatch, in value.Value, fr *env.Frame, tr *resource.Tracker, emit Emit) *fault.Fault {
	err := Eval(n.Body, in, fr, tr)(emit)
	if err == nil {
		return nil
	}
	if !err.Catchable() {
		return err
	}
	if n.Handler == nil {
		return nil
	}
	return Eval(n.Handler, value.String(err.Message()), fr, tr)(emit)
}
