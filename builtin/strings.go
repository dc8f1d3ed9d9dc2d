package builtin

import (
	"strings"

	"github.com/corazon/jqsafe/ast"
	"github.com/corazon/jqsafe/env"
	"github.com/corazon/jqsafe/fault"
	"github.com/corazon/jqsafe/resource"
	"github.com/corazon/jqsafe/span"
	"github.com/corazon/jqsafe/stream"
	"github.com/corazon/jqsafe/value"
)

func registerStringBuiltins() {
	withArg("split", func(in, arg value.Value, sp span.Span) (value.Value, *fault.Fault) {
		s, ok := in.(value.String)
		if !ok {
			return nil, fault.Runtime(fault.RuntimeType, sp, "split input must be a string")
		}
		sep, ok := arg.(value.String)
		if !ok {
			return nil, fault.Runtime(fault.RuntimeType, sp, "split separator must be a string")
		}
		parts := value.SplitString(string(s), string(sep))
		out := make(value.Array, len(parts))
		for i, p := range parts {
			out[i] = value.String(p)
		}
		return out, nil
	})

	register("splits", 1, func(in value.Value, args []ast.Expression, _ *env.Frame, tr *resource.Tracker, evalArg EvalArg, sp span.Span) stream.Stream {
		return func(emit stream.Emit) *fault.Fault {
			fn, _ := Lookup("split", 1)
			return fn(in, args, nil, tr, evalArg, sp)(func(v value.Value) (bool, *fault.Fault) {
				arr, ok := v.(value.Array)
				if !ok {
					return false, fault.Runtime(fault.RuntimeType, sp, "split did not produce an array")
				}
				for _, e := range arr {
					if _, err := emit(e); err != nil {
						return false, err
					}
				}
				return true, nil
			})
		}
	})

	withArg("join", func(in, arg value.Value, sp span.Span) (value.Value, *fault.Fault) {
		arr, ok := in.(value.Array)
		if !ok {
			return nil, fault.Runtime(fault.RuntimeType, sp, "join input must be an array")
		}
		sep, ok := arg.(value.String)
		if !ok {
			return nil, fault.Runtime(fault.RuntimeType, sp, "join separator must be a string")
		}
		var sb strings.Builder
		for i, e := range arr {
			if i > 0 {
				sb.WriteString(string(sep))
			}
			if _, isNull := e.(value.Null); isNull {
				continue
			}
			sb.WriteString(value.Tostring(e))
		}
		return value.String(sb.String()), nil
	})

	withArg("startswith", func(in, arg value.Value, sp span.Span) (value.Value, *fault.Fault) {
		s, ok1 := in.(value.String)
		p, ok2 := arg.(value.String)
		if !ok1 || !ok2 {
			return nil, fault.Runtime(fault.RuntimeType, sp, "startswith requires string arguments")
		}
		return value.Bool(strings.HasPrefix(string(s), string(p))), nil
	})

	withArg("endswith", func(in, arg value.Value, sp span.Span) (value.Value, *fault.Fault) {
		s, ok1 := in.(value.String)
		p, ok2 := arg.(value.String)
		if !ok1 || !ok2 {
			return nil, fault.Runtime(fault.RuntimeType, sp, "endswith requires string arguments")
		}
		return value.Bool(strings.HasSuffix(string(s), string(p))), nil
	})

	withArg("index", func(in, arg value.Value, sp span.Span) (value.Value, *fault.Fault) {
		idx, found, err := firstIndex(in, arg, sp, false)
		if err != nil {
			return nil, err
		}
		if !found {
			return value.Null{}, nil
		}
		return value.Number(idx), nil
	})

	withArg("rindex", func(in, arg value.Value, sp span.Span) (value.Value, *fault.Fault) {
		idx, found, err := firstIndex(in, arg, sp, true)
		if err != nil {
			return nil, err
		}
		if !found {
			return value.Null{}, nil
		}
		return value.Number(idx), nil
	})

	withArg("indices", func(in, arg value.Value, sp span.Span) (value.Value, *fault.Fault) {
		return allIndices(in, arg, sp)
	})

	pure("explode", func(in value.Value, sp span.Span) (value.Value, *fault.Fault) {
		s, ok := in.(value.String)
		if !ok {
			return nil, fault.Runtime(fault.RuntimeType, sp, "explode input must be a string")
		}
		runes := []rune(string(s))
		out := make(value.Array, len(runes))
		for i, r := range runes {
			out[i] = value.Number(r)
		}
		return out, nil
	})

	pure("implode", func(in value.Value, sp span.Span) (value.Value, *fault.Fault) {
		arr, ok := in.(value.Array)
		if !ok {
			return nil, fault.Runtime(fault.RuntimeType, sp, "implode input must be an array")
		}
		runes := make([]rune, len(arr))
		for i, e := range arr {
			n, ok := e.(value.Number)
			if !ok {
				return nil, fault.Runtime(fault.RuntimeType, sp, "implode input must be an array of codepoint numbers")
			}
			runes[i] = rune(int(n))
		}
		return value.String(string(runes)), nil
	})

	withArg("ltrimstr", func(in, arg value.Value, sp span.Span) (value.Value, *fault.Fault) {
		s, ok1 := in.(value.String)
		p, ok2 := arg.(value.String)
		if !ok1 || !ok2 {
			return in, nil
		}
		return value.String(strings.TrimPrefix(string(s), string(p))), nil
	})

	withArg("rtrimstr", func(in, arg value.Value, sp span.Span) (value.Value, *fault.Fault) {
		s, ok1 := in.(value.String)
		p, ok2 := arg.(value.String)
		if !ok1 || !ok2 {
			return in, nil
		}
		return value.String(strings.TrimSuffix(string(s), string(p))), nil
	})

	pure("ascii_upcase", func(in value.Value, sp span.Span) (value.Value, *fault.Fault) {
		s, ok := in.(value.String)
		if !ok {
			return nil, fault.Runtime(fault.RuntimeType, sp, "ascii_upcase input must be a string")
		}
		return value.String(asciiMap(string(s), false)), nil
	})

	pure("ascii_downcase", func(in value.Value, sp span.Span) (value.Value, *fault.Fault) {
		s, ok := in.(value.String)
		if !ok {
			return nil, fault.Runtime(fault.RuntimeType, sp, "ascii_downcase input must be a string")
		}
		return value.String(asciiMap(string(s), true)), nil
	})
}

func asciiMap(s string, lower bool) string {
	b := []byte(s)
	out := make([]byte, len(b))
	for i, c := range b {
		if lower && c >= 'A' && c <= 'Z' {
			out[i] = c + 32
		} else if !lower && c >= 'a' && c <= 'z' {
			out[i] = c - 32
		} else {
			out[i] = c
		}
	}
	return string(out)
}

// firstIndex finds the first (or, if fromEnd, last) occurrence of needle
// in haystack: substring search for two strings, element-equality search
// for an array haystack.
func firstIndex(haystack, needle value.Value, sp span.Span, fromEnd bool) (int, bool, *fault.Fault) {
	switch h := haystack.(type) {
	case value.String:
		n, ok := needle.(value.String)
		if !ok {
			return 0, false, fault.Runtime(fault.RuntimeType, sp, "index/rindex needle must be a string")
		}
		runes := []rune(string(h))
		needleRunes := []rune(string(n))
		if len(needleRunes) == 0 {
			return 0, false, nil
		}
		best := -1
		for i := 0; i+len(needleRunes) <= len(runes); i++ {
			if runesEqual(runes[i:i+len(needleRunes)], needleRunes) {
				best = i
				if !fromEnd {
					return best, true, nil
				}
			}
		}
		return best, best >= 0, nil
	case value.Array:
		best := -1
		for i, e := range h {
			if value.Equal(e, needle) {
				best = i
				if !fromEnd {
					return best, true, nil
				}
			}
		}
		return best, best >= 0, nil
	default:
		return 0, false, fault.Runtime(fault.RuntimeType, sp, "cannot search %s", value.Type(haystack))
	}
}

func allIndices(haystack, needle value.Value, sp span.Span) (value.Value, *fault.Fault) {
	switch h := haystack.(type) {
	case value.String:
		n, ok := needle.(value.String)
		if !ok {
			return nil, fault.Runtime(fault.RuntimeType, sp, "indices needle must be a string")
		}
		runes := []rune(string(h))
		needleRunes := []rune(string(n))
		out := value.Array{}
		if len(needleRunes) == 0 {
			return out, nil
		}
		for i := 0; i+len(needleRunes) <= len(runes); i++ {
			if runesEqual(runes[i:i+len(needleRunes)], needleRunes) {
				out = append(out, value.Number(i))
			}
		}
		return out, nil
	case value.Array:
		out := value.Array{}
		for i, e := range h {
			if value.Equal(e, needle) {
				out = append(out, value.Number(i))
			}
		}
		return out, nil
	case value.Null:
		return value.Null{}, nil
	default:
		return nil, fault.Runtime(fault.RuntimeType, sp, "cannot search %s", value.Type(haystack))
	}
}

func runesEqual(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
