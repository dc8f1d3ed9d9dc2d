package jq_test

import (
	"testing"

	"github.com/corazon/jqsafe/jq"
	"github.com/corazon/jqsafe/resource"
	"github.com/corazon/jqsafe/value"
)

func mustRun(t *testing.T, source string, in value.Value, opts jq.Options) []value.Value {
	t.Helper()
	out, err := jq.Run(source, in, opts)
	if err != nil {
		t.Fatalf("Run(%q): %v", source, err)
	}
	return out
}

func TestRunIdentity(t *testing.T) {
	out := mustRun(t, ".", value.Number(1), jq.Options{})
	if len(out) != 1 || out[0] != value.Number(1) {
		t.Fatalf("got %v", out)
	}
}

func TestRunFieldAccess(t *testing.T) {
	in := value.Object{"a": value.Number(2)}
	out := mustRun(t, ".a", in, jq.Options{})
	if len(out) != 1 || out[0] != value.Number(2) {
		t.Fatalf("got %v", out)
	}
}

func TestRunProducesMultipleValues(t *testing.T) {
	out := mustRun(t, ".[]", value.Array{value.Number(1), value.Number(2), value.Number(3)}, jq.Options{})
	if len(out) != 3 {
		t.Fatalf("got %v", out)
	}
}

func TestRunBindsVars(t *testing.T) {
	out := mustRun(t, "$x", value.Null{}, jq.Options{Vars: map[string]value.Value{"x": value.Number(42)}})
	if len(out) != 1 || out[0] != value.Number(42) {
		t.Fatalf("got %v", out)
	}
}

func TestRunParseErrorIsFault(t *testing.T) {
	_, err := jq.Run(".[", value.Null{}, jq.Options{})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestRunValidateErrorRejectsUnknownBuiltin(t *testing.T) {
	_, err := jq.Run("definitely_not_a_builtin", value.Null{}, jq.Options{})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestRunRespectsStepLimit(t *testing.T) {
	_, err := jq.Run("def loop: ., loop; [limit(1000000; loop)]", value.Number(1), jq.Options{
		Limits: resource.Limits{Steps: 10, Depth: 200, Outputs: 1000},
	})
	if err == nil {
		t.Fatal("expected resource error")
	}
}

func TestRunImmutableInput(t *testing.T) {
	in := value.Object{"a": value.Array{value.Number(1)}}
	clone := value.DeepClone(in).(value.Object)
	_, err := jq.Run(".a[0] = 2", in, jq.Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !value.Equal(in, clone) {
		t.Fatalf("input was mutated: %v", in)
	}
}
