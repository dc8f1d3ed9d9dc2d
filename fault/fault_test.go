package fault_test

import (
	"testing"

	"github.com/corazon/jqsafe/fault"
	"github.com/corazon/jqsafe/span"
)

func TestRuntimeFaultIsCatchable(t *testing.T) {
	f := fault.Runtime(fault.RuntimeType, span.None, "bad type")
	if !f.Catchable() {
		t.Fatal("runtime/type fault should be catchable")
	}
	if f.Kind() != fault.KindRuntime || f.RuntimeKind() != fault.RuntimeType {
		t.Fatalf("got kind=%v runtimeKind=%v", f.Kind(), f.RuntimeKind())
	}
}

func TestResourceFaultIsNotCatchable(t *testing.T) {
	f := fault.Runtime(fault.RuntimeResource, span.None, "too many steps")
	if f.Catchable() {
		t.Fatal("resource fault must not be catchable")
	}
}

func TestBreakFaultIsNotCatchable(t *testing.T) {
	f := fault.Break("out", span.None)
	if f.Catchable() {
		t.Fatal("break must not be caught by try/catch")
	}
	if f.BreakName() != "out" {
		t.Fatalf("got %q", f.BreakName())
	}
}

func TestUserFaultMessageIsVerbatim(t *testing.T) {
	f := fault.User(span.None, "custom message")
	if f.Message() != "custom message" {
		t.Fatalf("got %q", f.Message())
	}
}

func TestLexParseValidateFaultsAreNotCatchable(t *testing.T) {
	for _, f := range []*fault.Fault{
		fault.Lex(span.None, "bad token"),
		fault.Parse(span.None, "unexpected token"),
		fault.Validate(span.None, "unknown builtin"),
	} {
		if f.Catchable() {
			t.Fatalf("%v fault should not be catchable", f.Kind())
		}
	}
}
