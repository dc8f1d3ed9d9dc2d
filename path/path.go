// Package path resolves the subset of filter syntax valid inside a path
// expression into a lazy sequence of path segments, and implements the
// structural get/update/delete operations the assignment engine and the
// path-family builtins (`path/1`, `paths/0`, `getpath/1`, `setpath/2`,
// `delpaths/1`) share.
//
// There is no teacher analogue (amoghasbhardwaj-Eloquence's "pointer" is
// an environment-variable reference, not a value path); the resolver's
// shape — walk an ast.Expression, dispatch on its concrete type, build up
// state as you go — is borrowed wholesale from the same big-switch idiom
// package eval uses, just over value substructure instead of env
// bindings. To avoid path importing eval (eval already imports path by
// way of package assign), non-path subexpressions reachable inside a path
// expression (an index's bracketed expression, a slice bound, a
// `select(f)` predicate) are evaluated through an injected EvalFn rather
// than a direct call into package eval.
package path

import (
	"math"

	"github.com/corazon/jqsafe/ast"
	"github.com/corazon/jqsafe/env"
	"github.com/corazon/jqsafe/fault"
	"github.com/corazon/jqsafe/span"
	"github.com/corazon/jqsafe/stream"
	"github.com/corazon/jqsafe/value"
)

// SegmentKind distinguishes the three shapes a path element can take.
type SegmentKind int

const (
	Key SegmentKind = iota
	Index
	SliceSeg
)

// Segment is one element of a path: an object key, an array index, or an
// array slice with nullable endpoints (nil means "default", i.e. 0 for
// the start, length for the end).
type Segment struct {
	Kind       SegmentKind
	KeyName    string
	IndexVal   int
	SliceStart *int
	SliceEnd   *int
}

// Emit is called once per path this module's resolver produces.
type Emit func(p []Segment) (cont bool, err *fault.Fault)

// Stream runs path resolution, calling emit once per path in order.
type Stream func(emit Emit) *fault.Fault

// EvalFn evaluates a non-path subexpression (an index's bracket
// expression, a slice bound, a select predicate) against in under fr,
// returning the same lazy value stream package eval itself produces.
type EvalFn func(node ast.Expression, in value.Value, fr *env.Frame) stream.Stream

// Resolve walks n, a path-shaped expression, emitting every path it
// selects into root starting from the empty (root) path.
func Resolve(n ast.Expression, fr *env.Frame, root value.Value, evalFn EvalFn) Stream {
	return func(emit Emit) *fault.Fault {
		return resolve(n, fr, root, nil, evalFn, emit)
	}
}

func appendSeg(prefix []Segment, seg Segment) []Segment {
	out := make([]Segment, len(prefix)+1)
	copy(out, prefix)
	out[len(prefix)] = seg
	return out
}

func resolve(n ast.Expression, fr *env.Frame, root value.Value, prefix []Segment, evalFn EvalFn, emit Emit) *fault.Fault {
	switch node := n.(type) {
	case *ast.Identity:
		_, err := emit(prefix)
		return err

	case *ast.RecurseDefault:
		return resolveRecurse(Get(root, prefix), prefix, emit)

	case *ast.Field:
		target := node.Target
		if target == nil {
			target = &ast.Identity{Sp: node.Sp}
		}
		return resolve(target, fr, root, prefix, evalFn, func(p []Segment) (bool, *fault.Fault) {
			cur := Get(root, p)
			switch cur.(type) {
			case value.Object, value.Null:
			default:
				if node.Optional {
					return true, nil
				}
				return false, fault.Runtime(fault.RuntimeType, node.Sp, "cannot index %s with %q", value.Type(cur), node.Name)
			}
			_, err := emit(appendSeg(p, Segment{Kind: Key, KeyName: node.Name}))
			return true, err
		})

	case *ast.Index:
		return resolve(node.Target, fr, root, prefix, evalFn, func(p []Segment) (bool, *fault.Fault) {
			cur := Get(root, p)
			err := evalFn(node.Index, root, fr)(func(idxVal value.Value) (bool, *fault.Fault) {
				seg, ferr := indexSegment(cur, idxVal, node.Sp)
				if ferr != nil {
					if node.Optional {
						return true, nil
					}
					return false, ferr
				}
				_, err2 := emit(appendSeg(p, seg))
				return true, err2
			})
			return true, err
		})

	case *ast.Slice:
		return resolve(node.Target, fr, root, prefix, evalFn, func(p []Segment) (bool, *fault.Fault) {
			err := boundStream(node.From, root, fr, evalFn)(func(fromV value.Value) (bool, *fault.Fault) {
				err2 := boundStream(node.To, root, fr, evalFn)(func(toV value.Value) (bool, *fault.Fault) {
					start, ferr := sliceBound(fromV, node.Sp)
					if ferr != nil {
						if node.Optional {
							return true, nil
						}
						return false, ferr
					}
					end, ferr := sliceBound(toV, node.Sp)
					if ferr != nil {
						if node.Optional {
							return true, nil
						}
						return false, ferr
					}
					_, err3 := emit(appendSeg(p, Segment{Kind: SliceSeg, SliceStart: start, SliceEnd: end}))
					return true, err3
				})
				return true, err2
			})
			return true, err
		})

	case *ast.Iterate:
		return resolve(node.Target, fr, root, prefix, evalFn, func(p []Segment) (bool, *fault.Fault) {
			cur := Get(root, p)
			switch cv := cur.(type) {
			case value.Array:
				for i := range cv {
					if _, err := emit(appendSeg(p, Segment{Kind: Index, IndexVal: i})); err != nil {
						return false, err
					}
				}
				return true, nil
			case value.Object:
				for _, k := range cv.Keys() {
					if _, err := emit(appendSeg(p, Segment{Kind: Key, KeyName: k})); err != nil {
						return false, err
					}
				}
				return true, nil
			case value.Null:
				return true, nil
			default:
				if node.Optional {
					return true, nil
				}
				return false, fault.Runtime(fault.RuntimeType, node.Sp, "cannot iterate over %s", value.Type(cur))
			}
		})

	case *ast.Pipe:
		return resolve(node.Left, fr, root, prefix, evalFn, func(p []Segment) (bool, *fault.Fault) {
			err := resolve(node.Right, fr, root, p, evalFn, emit)
			return true, err
		})

	case *ast.Comma:
		if err := resolve(node.Left, fr, root, prefix, evalFn, emit); err != nil {
			return err
		}
		return resolve(node.Right, fr, root, prefix, evalFn, emit)

	case *ast.Call:
		return resolveCall(node, fr, root, prefix, evalFn, emit)

	default:
		return fault.Runtime(fault.RuntimeType, n.Span(), "invalid path expression")
	}
}

func resolveCall(node *ast.Call, fr *env.Frame, root value.Value, prefix []Segment, evalFn EvalFn, emit Emit) *fault.Fault {
	switch {
	case node.Name == "select" && len(node.Args) == 1:
		cur := Get(root, prefix)
		return evalFn(node.Args[0], cur, fr)(func(v value.Value) (bool, *fault.Fault) {
			if !value.Truthy(v) {
				return true, nil
			}
			_, err := emit(prefix)
			return true, err
		})
	case node.Name == "empty" && len(node.Args) == 0:
		return nil
	case node.Name == "recurse" && len(node.Args) == 0:
		return resolveRecurse(Get(root, prefix), prefix, emit)
	default:
		return fault.Runtime(fault.RuntimeType, node.Sp, "invalid path expression near attempt to call %s/%d", node.Name, len(node.Args))
	}
}

func resolveRecurse(cur value.Value, prefix []Segment, emit Emit) *fault.Fault {
	if _, err := emit(prefix); err != nil {
		return err
	}
	switch cv := cur.(type) {
	case value.Array:
		for i, e := range cv {
			if err := resolveRecurse(e, appendSeg(prefix, Segment{Kind: Index, IndexVal: i}), emit); err != nil {
				return err
			}
		}
	case value.Object:
		for _, k := range cv.Keys() {
			if err := resolveRecurse(cv[k], appendSeg(prefix, Segment{Kind: Key, KeyName: k}), emit); err != nil {
				return err
			}
		}
	}
	return nil
}

func boundStream(expr ast.Expression, root value.Value, fr *env.Frame, evalFn EvalFn) stream.Stream {
	if expr == nil {
		return func(emit stream.Emit) *fault.Fault {
			_, err := emit(value.Null{})
			return err
		}
	}
	return evalFn(expr, root, fr)
}

func sliceBound(v value.Value, sp span.Span) (*int, *fault.Fault) {
	if _, isNull := v.(value.Null); isNull {
		return nil, nil
	}
	num, ok := v.(value.Number)
	if !ok {
		return nil, fault.Runtime(fault.RuntimeType, sp, "slice bounds must be numbers")
	}
	i := int(math.Trunc(float64(num)))
	return &i, nil
}

func indexSegment(cur value.Value, idxVal value.Value, sp span.Span) (Segment, *fault.Fault) {
	switch iv := idxVal.(type) {
	case value.String:
		return Segment{Kind: Key, KeyName: string(iv)}, nil
	case value.Number:
		return Segment{Kind: Index, IndexVal: int(math.Trunc(float64(iv)))}, nil
	default:
		return Segment{}, fault.Runtime(fault.RuntimeType, sp, "path index must be a string or a number")
	}
}

func normalizeIndex(i, n int) int {
	if i < 0 {
		i += n
	}
	return i
}

func normalizeSlice(start, end *int, n int) (int, int) {
	s, e := 0, n
	if start != nil {
		s = normalizeIndex(*start, n)
		if s < 0 {
			s = 0
		}
		if s > n {
			s = n
		}
	}
	if end != nil {
		e = normalizeIndex(*end, n)
		if e < 0 {
			e = 0
		}
		if e > n {
			e = n
		}
	}
	if s > e {
		s = e
	}
	return s, e
}

func cloneObject(o value.Object) value.Object {
	out := make(value.Object, len(o))
	for k, v := range o {
		out[k] = v
	}
	return out
}

// Get walks segs from root, returning value.Null{} for any missing key or
// out-of-range index along the way.
func Get(root value.Value, segs []Segment) value.Value {
	v := root
	for _, seg := range segs {
		switch seg.Kind {
		case Key:
			obj, ok := v.(value.Object)
			if !ok {
				return value.Null{}
			}
			child, ok := obj[seg.KeyName]
			if !ok {
				return value.Null{}
			}
			v = child
		case Index:
			arr, ok := v.(value.Array)
			if !ok {
				return value.Null{}
			}
			i := normalizeIndex(seg.IndexVal, len(arr))
			if i < 0 || i >= len(arr) {
				return value.Null{}
			}
			v = arr[i]
		case SliceSeg:
			arr, ok := v.(value.Array)
			if !ok {
				return value.Null{}
			}
			start, end := normalizeSlice(seg.SliceStart, seg.SliceEnd, len(arr))
			out := make(value.Array, end-start)
			copy(out, arr[start:end])
			v = out
		}
	}
	return v
}

// Update walks segs from root, replacing the value at the addressed
// location with fn(currentValue). Missing intermediate structure is
// created from null; arrays are padded with null to satisfy a positive
// out-of-range index write. An incompatible parent type (e.g. a string
// key into an array) is a runtime fault.
func Update(root value.Value, segs []Segment, fn func(value.Value) (value.Value, *fault.Fault)) (value.Value, *fault.Fault) {
	if len(segs) == 0 {
		return fn(root)
	}
	seg := segs[0]
	switch seg.Kind {
	case Key:
		var obj value.Object
		switch vv := root.(type) {
		case value.Object:
			obj = cloneObject(vv)
		case value.Null:
			obj = value.NewObject()
		default:
			return nil, fault.Runtime(fault.RuntimeType, span.None, "cannot index %s with %q", value.Type(root), seg.KeyName)
		}
		child, ok := obj[seg.KeyName]
		if !ok {
			child = value.Null{}
		}
		newChild, err := Update(child, segs[1:], fn)
		if err != nil {
			return nil, err
		}
		obj[seg.KeyName] = newChild
		return obj, nil

	case Index:
		var arr value.Array
		switch vv := root.(type) {
		case value.Array:
			arr = append(value.Array{}, vv...)
		case value.Null:
			arr = value.Array{}
		default:
			return nil, fault.Runtime(fault.RuntimeType, span.None, "cannot index %s with a number", value.Type(root))
		}
		i := seg.IndexVal
		n := len(arr)
		if i < 0 {
			i += n
			if i < 0 {
				return nil, fault.Runtime(fault.RuntimeIndex, span.None, "negative array index out of bounds")
			}
		}
		if i >= n {
			pad := make(value.Array, i-n+1)
			for j := range pad {
				pad[j] = value.Null{}
			}
			arr = append(arr, pad...)
		}
		newChild, err := Update(arr[i], segs[1:], fn)
		if err != nil {
			return nil, err
		}
		arr[i] = newChild
		return arr, nil

	case SliceSeg:
		var arr value.Array
		switch vv := root.(type) {
		case value.Array:
			arr = append(value.Array{}, vv...)
		case value.Null:
			arr = value.Array{}
		default:
			return nil, fault.Runtime(fault.RuntimeType, span.None, "cannot slice %s", value.Type(root))
		}
		n := len(arr)
		start, end := normalizeSlice(seg.SliceStart, seg.SliceEnd, n)
		current := append(value.Array{}, arr[start:end]...)
		replacement, err := Update(current, segs[1:], fn)
		if err != nil {
			return nil, err
		}
		replArr, ok := replacement.(value.Array)
		if !ok {
			return nil, fault.Runtime(fault.RuntimeType, span.None, "a slice must be assigned an array")
		}
		out := make(value.Array, 0, n-(end-start)+len(replArr))
		out = append(out, arr[:start]...)
		out = append(out, replArr...)
		out = append(out, arr[end:]...)
		return out, nil

	default:
		return nil, fault.Runtime(fault.RuntimeType, span.None, "unsupported path segment")
	}
}

// DeleteAll removes every location addressed by paths from root in a
// single pass, grouping siblings so array-index deletions never shift
// under a still-pending deletion in the same array.
func DeleteAll(root value.Value, paths [][]Segment) (value.Value, *fault.Fault) {
	out, _, err := deleteNode(root, paths)
	return out, err
}

func deleteNode(v value.Value, paths [][]Segment) (value.Value, bool, *fault.Fault) {
	selfDelete := false
	var rest [][]Segment
	for _, p := range paths {
		if len(p) == 0 {
			selfDelete = true
			continue
		}
		rest = append(rest, p)
	}
	if selfDelete {
		return v, true, nil
	}
	if len(rest) == 0 {
		return v, false, nil
	}
	switch vv := v.(type) {
	case value.Object:
		groups := map[string][][]Segment{}
		for _, p := range rest {
			if p[0].Kind != Key {
				return nil, false, fault.Runtime(fault.RuntimeType, span.None, "cannot delete a non-key path segment from an object")
			}
			groups[p[0].KeyName] = append(groups[p[0].KeyName], p[1:])
		}
		out := cloneObject(vv)
		for k, subs := range groups {
			child, ok := out[k]
			if !ok {
				continue
			}
			newChild, drop, err := deleteNode(child, subs)
			if err != nil {
				return nil, false, err
			}
			if drop {
				delete(out, k)
			} else {
				out[k] = newChild
			}
		}
		return out, false, nil

	case value.Array:
		n := len(vv)
		fullDelete := map[int]bool{}
		bucket := map[int][][]Segment{}
		for _, p := range rest {
			seg := p[0]
			switch seg.Kind {
			case Index:
				i := normalizeIndex(seg.IndexVal, n)
				if i < 0 || i >= n {
					continue
				}
				if len(p) == 1 {
					fullDelete[i] = true
				} else {
					bucket[i] = append(bucket[i], p[1:])
				}
			case SliceSeg:
				start, end := normalizeSlice(seg.SliceStart, seg.SliceEnd, n)
				for i := start; i < end; i++ {
					if len(p) == 1 {
						fullDelete[i] = true
					} else {
						bucket[i] = append(bucket[i], p[1:])
					}
				}
			default:
				return nil, false, fault.Runtime(fault.RuntimeType, span.None, "cannot delete a non-index path segment from an array")
			}
		}
		out := make(value.Array, 0, n)
		for i, e := range vv {
			if fullDelete[i] {
				continue
			}
			if subs, ok := bucket[i]; ok {
				newE, drop, err := deleteNode(e, subs)
				if err != nil {
					return nil, false, err
				}
				if drop {
					continue
				}
				out = append(out, newE)
				continue
			}
			out = append(out, e)
		}
		return out, false, nil

	default:
		return nil, false, fault.Runtime(fault.RuntimeType, span.None, "cannot delete a path into %s", value.Type(v))
	}
}

// ToValue renders a path as the array-of-keys-and-indices representation
// `path/1` and `paths/0` emit to a filter.
func ToValue(segs []Segment) value.Value {
	out := make(value.Array, len(segs))
	for i, seg := range segs {
		switch seg.Kind {
		case Key:
			out[i] = value.String(seg.KeyName)
		case Index:
			out[i] = value.Number(seg.IndexVal)
		case SliceSeg:
			obj := value.NewObject()
			if seg.SliceStart != nil {
				obj["start"] = value.Number(*seg.SliceStart)
			} else {
				obj["start"] = value.Null{}
			}
			if seg.SliceEnd != nil {
				obj["end"] = value.Number(*seg.SliceEnd)
			} else {
				obj["end"] = value.Null{}
			}
			out[i] = obj
		}
	}
	return out
}

// FromValue converts a `setpath`/`getpath`/`delpaths`-style array-of-keys
// representation back into segments, for builtins that accept an
// already-materialized path value rather than a path expression.
func FromValue(v value.Value) ([]Segment, *fault.Fault) {
	arr, ok := v.(value.Array)
	if !ok {
		return nil, fault.Runtime(fault.RuntimeType, span.None, "path must be specified as an array")
	}
	out := make([]Segment, 0, len(arr))
	for _, e := range arr {
		switch ev := e.(type) {
		case value.String:
			out = append(out, Segment{Kind: Key, KeyName: string(ev)})
		case value.Number:
			out = append(out, Segment{Kind: Index, IndexVal: int(math.Trunc(float64(ev)))})
		case value.Object:
			seg := Segment{Kind: SliceSeg}
			if sv, ok := ev["start"]; ok {
				if n, ok := sv.(value.Number); ok {
					i := int(math.Trunc(float64(n)))
					seg.SliceStart = &i
				}
			}
			if ev2, ok := ev["end"]; ok {
				if n, ok := ev2.(value.Number); ok {
					i := int(math.Trunc(float64(n)))
					seg.SliceEnd = &i
				}
			}
			out = append(out, seg)
		default:
			return nil, fault.Runtime(fault.RuntimeType, span.None, "invalid path component %s", value.Type(e))
		}
	}
	return out, nil
}
