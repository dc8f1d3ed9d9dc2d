// Package stream holds the lazy, callback-driven value-producer types
// shared by package eval and package builtin. They were factored out of
// eval into their own package so builtin (which every evaluated Call
// node dispatches into) can declare its registry's function type without
// importing eval, which itself imports builtin to resolve calls — eval
// and builtin would otherwise import each other.
package stream

import (
	"github.com/corazon/jqsafe/fault"
	"github.com/corazon/jqsafe/value"
)

// Emit is called once per value a Stream produces. Returning cont=false
// tells the producer to stop early without running the rest of the stream to exhaustion.
type Emit func(v value.Value) (cont bool, err *fault.Fault)

// Stream runs a lazy computation, calling emit once per produced value,
// in order, until either emit returns cont=false or the computation
// itself raises a fault.
type Stream func(emit Emit) *fault.Fault
