package value

import (
	"math"

	"github.com/corazon/jqsafe/fault"
	"github.com/corazon/jqsafe/span"
)

// Add, Sub, Mul, Div, and Mod implement jq's arithmetic operators over the
// value algebra (spec §4.4). They live here, rather than in package eval,
// so both the binary-operator evaluator and the compound assignment
// operators (`+=`, `-=`, ...) can share one implementation without
// package eval and package assign importing each other.

func Add(l, r Value, sp span.Span) (Value, *fault.Fault) {
	if _, ok := l.(Null); ok {
		return r, nil
	}
	if _, ok := r.(Null); ok {
		return l, nil
	}
	switch lv := l.(type) {
	case Number:
		if rv, ok := r.(Number); ok {
			return lv + rv, nil
		}
	case String:
		if rv, ok := r.(String); ok {
			return lv + rv, nil
		}
	case Array:
		if rv, ok := r.(Array); ok {
			out := make(Array, 0, len(lv)+len(rv))
			out = append(out, lv...)
			out = append(out, rv...)
			return out, nil
		}
	case Object:
		if rv, ok := r.(Object); ok {
			out := cloneFlat(lv)
			for k, v := range rv {
				out[k] = v
			}
			return out, nil
		}
	}
	return nil, fault.Runtime(fault.RuntimeType, sp, "%s and %s cannot be added", Type(l), Type(r))
}

func Sub(l, r Value, sp span.Span) (Value, *fault.Fault) {
	switch lv := l.(type) {
	case Number:
		if rv, ok := r.(Number); ok {
			return lv - rv, nil
		}
	case Array:
		if rv, ok := r.(Array); ok {
			out := Array{}
			for _, e := range lv {
				found := false
				for _, x := range rv {
					if Equal(e, x) {
						found = true
						break
					}
				}
				if !found {
					out = append(out, e)
				}
			}
			return out, nil
		}
	}
	return nil, fault.Runtime(fault.RuntimeType, sp, "%s and %s cannot be subtracted", Type(l), Type(r))
}

// DeepMerge implements the `*` operator's object branch: a recursive
// merge where two object-valued entries at the same key merge instead of
// the right overwriting the left, unlike `+`'s shallow overwrite.
func DeepMerge(l, r Object) Object {
	out := cloneFlat(l)
	for k, rv := range r {
		if lv, ok := out[k]; ok {
			lo, lok := lv.(Object)
			ro, rok := rv.(Object)
			if lok && rok {
				out[k] = DeepMerge(lo, ro)
				continue
			}
		}
		out[k] = rv
	}
	return out
}

func Mul(l, r Value, sp span.Span) (Value, *fault.Fault) {
	switch lv := l.(type) {
	case Number:
		switch rv := r.(type) {
		case Number:
			return lv * rv, nil
		case String:
			return RepeatString(rv, lv), nil
		}
	case String:
		if rv, ok := r.(Number); ok {
			return RepeatString(lv, rv), nil
		}
	case Object:
		if rv, ok := r.(Object); ok {
			return DeepMerge(lv, rv), nil
		}
	}
	if _, ok := l.(Null); ok {
		return Null{}, nil
	}
	if _, ok := r.(Null); ok {
		return Null{}, nil
	}
	return nil, fault.Runtime(fault.RuntimeType, sp, "%s and %s cannot be multiplied", Type(l), Type(r))
}

// RepeatString implements `string * n`: n, truncated toward zero, copies
// of s concatenated, or null when that count is not positive.
func RepeatString(s String, n Number) Value {
	count := int(math.Trunc(float64(n)))
	if count <= 0 {
		return Null{}
	}
	out := make([]byte, 0, len(s)*count)
	for i := 0; i < count; i++ {
		out = append(out, s...)
	}
	return String(out)
}

func Div(l, r Value, sp span.Span) (Value, *fault.Fault) {
	switch lv := l.(type) {
	case Number:
		rv, ok := r.(Number)
		if !ok {
			return nil, fault.Runtime(fault.RuntimeType, sp, "%s and %s cannot be divided", Type(l), Type(r))
		}
		if rv == 0 {
			return nil, fault.Runtime(fault.RuntimeArith, sp, "division by zero")
		}
		return lv / rv, nil
	case String:
		rv, ok := r.(String)
		if !ok {
			return nil, fault.Runtime(fault.RuntimeType, sp, "%s and %s cannot be divided", Type(l), Type(r))
		}
		parts := SplitString(string(lv), string(rv))
		out := make(Array, len(parts))
		for i, p := range parts {
			out[i] = String(p)
		}
		return out, nil
	}
	return nil, fault.Runtime(fault.RuntimeType, sp, "%s and %s cannot be divided", Type(l), Type(r))
}

func Mod(l, r Value, sp span.Span) (Value, *fault.Fault) {
	lv, ok := l.(Number)
	if !ok {
		return nil, fault.Runtime(fault.RuntimeType, sp, "%s and %s cannot be divided", Type(l), Type(r))
	}
	rv, ok := r.(Number)
	if !ok {
		return nil, fault.Runtime(fault.RuntimeType, sp, "%s and %s cannot be divided", Type(l), Type(r))
	}
	ri := int(math.Trunc(float64(rv)))
	if ri == 0 {
		return nil, fault.Runtime(fault.RuntimeArith, sp, "%% by zero")
	}
	li := int(math.Trunc(float64(lv)))
	return Number(li % ri), nil
}

func cloneFlat(o Object) Object {
	out := make(Object, len(o))
	for k, v := range o {
		out[k] = v
	}
	return out
}
