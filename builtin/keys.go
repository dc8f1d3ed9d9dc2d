package builtin

import (
	"strings"

	"github.com/corazon/jqsafe/fault"
	"github.com/corazon/jqsafe/span"
	"github.com/corazon/jqsafe/value"
)

func keysOf(in value.Value, sp span.Span) (value.Value, *fault.Fault) {
	switch v := in.(type) {
	case value.Object:
		keys := v.Keys()
		out := make(value.Array, len(keys))
		for i, k := range keys {
			out[i] = value.String(k)
		}
		return out, nil
	case value.Array:
		out := make(value.Array, len(v))
		for i := range v {
			out[i] = value.Number(i)
		}
		return out, nil
	default:
		return nil, fault.Runtime(fault.RuntimeType, sp, "%s has no keys", value.Type(in))
	}
}

func hasKey(container, k value.Value, sp span.Span) (bool, *fault.Fault) {
	switch c := container.(type) {
	case value.Object:
		s, ok := k.(value.String)
		if !ok {
			return false, fault.Runtime(fault.RuntimeType, sp, "object keys must be strings")
		}
		_, present := c[string(s)]
		return present, nil
	case value.Array:
		n, ok := k.(value.Number)
		if !ok {
			return false, fault.Runtime(fault.RuntimeType, sp, "array indices must be numbers")
		}
		i := int(n)
		return i >= 0 && i < len(c), nil
	default:
		return false, fault.Runtime(fault.RuntimeType, sp, "cannot check whether %s has a key", value.Type(container))
	}
}

// contains implements the recursive structural containment check `a
// contains b`: every scalar must be equal, every substring of b found in
// a, every element of an array b matched by some containing element of
// a, and every key of an object b present in a with a containing value.
func contains(a, b value.Value, sp span.Span) (bool, *fault.Fault) {
	switch bv := b.(type) {
	case value.String:
		av, ok := a.(value.String)
		if !ok {
			return false, fault.Runtime(fault.RuntimeType, sp, "%s and %s cannot have their containment checked", value.Type(a), value.Type(b))
		}
		return strings.Contains(string(av), string(bv)), nil
	case value.Array:
		av, ok := a.(value.Array)
		if !ok {
			return false, fault.Runtime(fault.RuntimeType, sp, "%s and %s cannot have their containment checked", value.Type(a), value.Type(b))
		}
		for _, be := range bv {
			found := false
			for _, ae := range av {
				if ok, err := contains(ae, be, sp); err == nil && ok {
					found = true
					break
				}
			}
			if !found {
				return false, nil
			}
		}
		return true, nil
	case value.Object:
		av, ok := a.(value.Object)
		if !ok {
			return false, fault.Runtime(fault.RuntimeType, sp, "%s and %s cannot have their containment checked", value.Type(a), value.Type(b))
		}
		for k, bval := range bv {
			aval, present := av[k]
			if !present {
				return false, nil
			}
			ok, err := contains(aval, bval, sp)
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
		}
		return true, nil
	default:
		return value.Equal(a, b), nil
	}
}

func registerKeyBuiltins() {
	pure("keys", keysOf)
	pure("keys_unsorted", keysOf)

	withArg("has", func(in, arg value.Value, sp span.Span) (value.Value, *fault.Fault) {
		ok, err := hasKey(in, arg, sp)
		if err != nil {
			return nil, err
		}
		return value.Bool(ok), nil
	})

	withArg("in", func(in, container value.Value, sp span.Span) (value.Value, *fault.Fault) {
		ok, err := hasKey(container, in, sp)
		if err != nil {
			return nil, err
		}
		return value.Bool(ok), nil
	})

	withArg("contains", func(in, arg value.Value, sp span.Span) (value.Value, *fault.Fault) {
		ok, err := contains(in, arg, sp)
		if err != nil {
			return nil, err
		}
		return value.Bool(ok), nil
	})

	withArg("inside", func(in, arg value.Value, sp span.Span) (value.Value, *fault.Fault) {
		ok, err := contains(arg, in, sp)
		if err != nil {
			return nil, err
		}
		return value.Bool(ok), nil
	})
}
