package builtin

import (
	"github.com/corazon/jqsafe/fault"
	"github.com/corazon/jqsafe/span"
	"github.com/corazon/jqsafe/value"
)

// registerFormatBuiltins wires the bare `@name` form parser.parseFormat
// desugars into a Call (e.g. `@base64` applied to `.` with no string
// literal following it). The same value.Format transforms back
// evalInterpString's `@name "..."` form in package eval.
func registerFormatBuiltins() {
	for _, name := range []string{"text", "json", "html", "uri", "sh", "base64", "base64d", "csv", "tsv"} {
		name := name
		pure("@"+name, func(in value.Value, sp span.Span) (value.Value, *fault.Fault) {
			s, err := value.Format(name, in, sp)
			if err != nil {
				return nil, err
			}
			return value.String(s), nil
		})
	}
}
