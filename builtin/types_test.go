package builtin_test

import (
	"testing"

	"github.com/corazon/jqsafe/jq"
	"github.com/corazon/jqsafe/value"
)

func run(t *testing.T, source string, in value.Value) []value.Value {
	t.Helper()
	out, err := jq.Run(source, in, jq.Options{})
	if err != nil {
		t.Fatalf("Run(%q): %v", source, err)
	}
	return out
}

func TestTypeBuiltin(t *testing.T) {
	cases := []struct {
		in   value.Value
		want value.String
	}{
		{value.Null{}, "null"},
		{value.Bool(true), "boolean"},
		{value.Number(1), "number"},
		{value.String("s"), "string"},
		{value.Array{}, "array"},
		{value.Object{}, "object"},
	}
	for _, c := range cases {
		out := run(t, "type", c.in)
		if len(out) != 1 || out[0] != c.want {
			t.Fatalf("type(%v) = %v, want %v", c.in, out, c.want)
		}
	}
}

func TestLengthVariants(t *testing.T) {
	if out := run(t, "length", value.Null{}); out[0] != value.Number(0) {
		t.Fatalf("null length = %v", out)
	}
	if out := run(t, "length", value.Number(-5)); out[0] != value.Number(5) {
		t.Fatalf("abs length = %v", out)
	}
	if out := run(t, "length", value.String("héllo")); out[0] != value.Number(5) {
		t.Fatalf("rune length = %v", out)
	}
	if out := run(t, "length", value.Array{value.Number(1), value.Number(2)}); out[0] != value.Number(2) {
		t.Fatalf("array length = %v", out)
	}
}

func TestNotNegatesTruthiness(t *testing.T) {
	if out := run(t, "not", value.Bool(false)); out[0] != value.Bool(true) {
		t.Fatalf("not false = %v", out)
	}
	if out := run(t, "not", value.Number(0)); out[0] != value.Bool(false) {
		t.Fatalf("not 0 = %v", out)
	}
}

func TestEmptyProducesNoValues(t *testing.T) {
	out := run(t, "empty", value.Number(1))
	if len(out) != 0 {
		t.Fatalf("got %v", out)
	}
}

func TestTostringIdentityOnStrings(t *testing.T) {
	out := run(t, "tostring", value.String("already"))
	if out[0] != value.String("already") {
		t.Fatalf("got %v", out)
	}
}

func TestTonumberParsesNumericString(t *testing.T) {
	out := run(t, "tonumber", value.String("3.5"))
	if out[0] != value.Number(3.5) {
		t.Fatalf("got %v", out)
	}
}
