// Package jq is the module's public entry point, chaining
// lex -> parse -> validate -> evaluate exactly the way the teacher's
// (amoghasbhardwaj-Eloquence) top-level `Run`/`Eval` wrapper chains its
// own lexer -> parser -> evaluator pipeline behind one function, so an
// embedder never touches the inner packages directly.
package jq

import (
	"github.com/corazon/jqsafe/env"
	"github.com/corazon/jqsafe/eval"
	"github.com/corazon/jqsafe/fault"
	"github.com/corazon/jqsafe/parser"
	"github.com/corazon/jqsafe/resource"
	"github.com/corazon/jqsafe/validate"
	"github.com/corazon/jqsafe/value"
)

// Options configures a Run call. The zero value is usable: it applies
// resource.DefaultLimits and binds no named variables.
type Options struct {
	// Limits overrides resource.DefaultLimits when non-zero. A zero
	// Limits (all fields 0) is treated as "use the default", since a
	// real zero-steps/zero-depth budget could never run anything.
	Limits resource.Limits

	// Vars binds `$name` variables visible to the whole filter, the
	// way jq's `--arg`/`--argjson` command-line flags do.
	Vars map[string]value.Value
}

// Run lexes, parses, validates, and evaluates source against input,
// returning every value the filter produces, in order. Errors are
// always *fault.Fault so callers can inspect .Kind()/.RuntimeKind()
// instead of string-matching messages.
func Run(source string, input value.Value, opts Options) ([]value.Value, error) {
	expr, err := parser.ParseProgram(source)
	if err != nil {
		return nil, err
	}

	if err := validate.Validate(expr); err != nil {
		return nil, err
	}

	limits := opts.Limits
	if limits == (resource.Limits{}) {
		limits = resource.DefaultLimits
	}
	tr := resource.NewTracker(limits)

	fr := env.New()
	for name, v := range opts.Vars {
		fr.SetVar(name, v)
	}

	var out []value.Value
	runErr := eval.Eval(expr, input, fr, tr)(func(v value.Value) (bool, *fault.Fault) {
		out = append(out, v)
		return true, nil
	})
	if runErr != nil {
		return nil, runErr
	}
	return out, nil
}
