// Package resource bounds evaluation so a filter can never run unbounded:
// every AST node entered, every loop-like builtin iteration, and every
// value produced counts against a cap. There is no teacher analogue
// (amoghasbhardwaj-Eloquence has no resource accounting); the Tracker's
// shape — a small counter struct with increment methods returning an
// error on overflow — follows the same "return, don't panic, on failure"
// idiom the teacher's evaluator uses for every other error path.
package resource

import (
	"github.com/corazon/jqsafe/fault"
	"github.com/corazon/jqsafe/span"
)

// Limits caps the three counters a Tracker enforces. A zero value for a
// field disables that cap.
type Limits struct {
	Steps   int
	Depth   int
	Outputs int
}

// DefaultLimits matches spec §5's table.
var DefaultLimits = Limits{Steps: 100_000, Depth: 200, Outputs: 10_000}

// Tracker accounts for one evaluation's resource consumption.
type Tracker struct {
	Limits  Limits
	steps   int
	depth   int
	outputs int
}

// NewTracker creates a Tracker enforcing limits.
func NewTracker(limits Limits) *Tracker {
	return &Tracker{Limits: limits}
}

// Enter increments depth on entry to a node's evaluation. Callers must
// pair every Enter with a deferred Exit, even on the error path, so Depth
// stays accurate for any fault reported afterward.
func (t *Tracker) Enter(sp span.Span) *fault.Fault {
	t.depth++
	if t.Limits.Depth > 0 && t.depth > t.Limits.Depth {
		return fault.Runtime(fault.RuntimeResource, sp, "maximum evaluation depth (%d) exceeded", t.Limits.Depth)
	}
	return nil
}

// Exit decrements depth on exit from a node's evaluation.
func (t *Tracker) Exit() {
	t.depth--
}

// Step increments the step counter once per AST-node entry and once per
// loop-like builtin iteration (map, reduce, foreach, and similar).
func (t *Tracker) Step(sp span.Span) *fault.Fault {
	t.steps++
	if t.Limits.Steps > 0 && t.steps > t.Limits.Steps {
		return fault.Runtime(fault.RuntimeResource, sp, "maximum step count (%d) exceeded", t.Limits.Steps)
	}
	return nil
}

// Emit increments the output counter once per value a filter produces.
func (t *Tracker) Emit(sp span.Span) *fault.Fault {
	t.outputs++
	if t.Limits.Outputs > 0 && t.outputs > t.Limits.Outputs {
		return fault.Runtime(fault.RuntimeResource, sp, "maximum output count (%d) exceeded", t.Limits.Outputs)
	}
	return nil
}

// Steps, Depth, and Outputs expose the current counters for diagnostics
// and tests.
func (t *Tracker) Steps() int   { return t.steps }
func (t *Tracker) Depth() int   { return t.depth }
func (t *Tracker) Outputs() int { return t.outputs }
