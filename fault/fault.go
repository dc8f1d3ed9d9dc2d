// Package fault defines the error taxonomy surfaced by every stage of the
// pipeline: lex, parse, validate, runtime. Every fault carries a Span
// pointing at the offending source range and, for runtime faults, a
// RuntimeKind distinguishing the seven ways evaluation can go wrong.
//
// Faults are built on github.com/samber/oops so they compose with the rest
// of the Go error ecosystem (errors.Is/errors.As, %w) instead of being a
// bespoke string-matched error type, following the pattern
// github.com/holomush/holomush uses for its own service-layer errors
// (oops.Code(...).Errorf/.Wrap).
package fault

import (
	"github.com/samber/oops"

	"github.com/corazon/jqsafe/span"
)

// Kind classifies which pipeline stage raised a fault.
type Kind string

const (
	KindLex      Kind = "lex"
	KindParse    Kind = "parse"
	KindValidate Kind = "validate"
	KindRuntime  Kind = "runtime"

	// kindStop is never user-visible: it is a private "stop enumerating"
	// signal a Stream consumer raises to cut a generator off after it has
	// what it needs (the first value of an update-assignment's RHS, a
	// `limit`/`first`/`isempty` builtin's early exit). Whoever raises it
	// via Stop must intercept it again immediately via IsStop before the
	// fault could otherwise propagate to a caller that doesn't know what
	// it means.
	kindStop Kind = "stop"
)

// RuntimeKind further classifies a KindRuntime fault. Only meaningful when
// Kind == KindRuntime.
type RuntimeKind string

const (
	RuntimeIndex    RuntimeKind = "index"
	RuntimeType     RuntimeKind = "type"
	RuntimeArity    RuntimeKind = "arity"
	RuntimeArith    RuntimeKind = "arith"
	RuntimeUnbound  RuntimeKind = "unbound"
	RuntimeUser     RuntimeKind = "user"
	RuntimeResource RuntimeKind = "resource"
	RuntimeBreak    RuntimeKind = "break"
)

// Fault is the single error type returned by every package in this module.
type Fault struct {
	kind        Kind
	runtimeKind RuntimeKind
	span        span.Span
	err         error
	breakName   string
}

func (f *Fault) Error() string {
	return f.err.Error()
}

// Unwrap exposes the underlying oops error so errors.Is/errors.As keep working.
func (f *Fault) Unwrap() error {
	return f.err
}

func (f *Fault) Kind() Kind { return f.kind }

// RuntimeKind returns the runtime sub-kind; zero value if Kind() != KindRuntime.
func (f *Fault) RuntimeKind() RuntimeKind { return f.runtimeKind }

func (f *Fault) Span() span.Span { return f.span }

// Catchable reports whether `try/catch` (and the assignment engine's
// implicit error boundaries) may intercept this fault. Only runtime faults
// other than resource exhaustion are catchable; resource faults are fatal
// by design (spec §5: "not catchable by try"), and lex/parse/validate
// faults never reach a running filter in the first place. `break` is its
// own control signal: only a matching `label` unwinds it, never `try`.
func (f *Fault) Catchable() bool {
	return f.kind == KindRuntime && f.runtimeKind != RuntimeResource && f.runtimeKind != RuntimeBreak
}

func build(kind Kind, sp span.Span, format string, args ...any) *Fault {
	err := oops.
		Code(string(kind)).
		With("span", sp.String()).
		Errorf(format, args...)
	return &Fault{kind: kind, span: sp, err: err}
}

func Lex(sp span.Span, format string, args ...any) *Fault {
	return build(KindLex, sp, format, args...)
}

func Parse(sp span.Span, format string, args ...any) *Fault {
	return build(KindParse, sp, format, args...)
}

func Validate(sp span.Span, format string, args ...any) *Fault {
	return build(KindValidate, sp, format, args...)
}

// Runtime builds a runtime fault of the given sub-kind.
func Runtime(rk RuntimeKind, sp span.Span, format string, args ...any) *Fault {
	err := oops.
		Code(string(KindRuntime)).
		With("span", sp.String()).
		With("runtime_kind", string(rk)).
		Errorf(format, args...)
	return &Fault{kind: KindRuntime, runtimeKind: rk, span: sp, err: err}
}

// User builds the fault raised by the `error(msg)` builtin. Its Error()
// text is exactly msg, since `try/catch` binds the handler's input to this
// string verbatim (spec §4.4 "evaluates it with the fault's message string
// as input").
func User(sp span.Span, msg string) *Fault {
	return &Fault{
		kind:        KindRuntime,
		runtimeKind: RuntimeUser,
		span:        sp,
		err:         oops.Code(string(KindRuntime)).With("span", sp.String()).Errorf("%s", msg),
	}
}

// Message returns the raw fault text, stripped of any oops-added
// decoration, for binding into a `catch` handler's input.
func (f *Fault) Message() string {
	return f.err.Error()
}

// Break builds the non-error control signal `break $name` raises. Its
// RuntimeBreak kind makes Catchable() false: try/catch never intercepts a
// break, only a matching `label $name | ...` does, via BreakName. An
// unmatched break still propagates all the way out and surfaces to the
// caller as an ordinary uncaught fault.
func Break(name string, sp span.Span) *Fault {
	err := oops.
		Code(string(KindRuntime)).
		With("span", sp.String()).
		With("runtime_kind", string(RuntimeBreak)).
		Errorf("break: $%s", name)
	return &Fault{kind: KindRuntime, runtimeKind: RuntimeBreak, span: sp, err: err, breakName: name}
}

// BreakName returns the label name a RuntimeBreak fault targets, or "" if
// f is not a break signal.
func (f *Fault) BreakName() string {
	return f.breakName
}

// Stop builds the private early-exit signal described on kindStop.
func Stop() *Fault {
	return &Fault{kind: kindStop}
}

// IsStop reports whether f is the Stop sentinel rather than a real fault.
func (f *Fault) IsStop() bool {
	return f.kind == kindStop
}

var _ error = (*Fault)(nil)
