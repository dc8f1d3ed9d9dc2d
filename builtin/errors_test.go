package builtin_test

import (
	"strings"
	"testing"

	"github.com/corazon/jqsafe/jq"
	"github.com/corazon/jqsafe/value"
)

func TestErrorZeroArgUsesInputAsMessage(t *testing.T) {
	_, err := jq.Run("error", value.String("boom"), jq.Options{})
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("got err %v", err)
	}
}

func TestErrorOneArgUsesArgumentAsMessage(t *testing.T) {
	_, err := jq.Run(`error("nope")`, value.Number(1), jq.Options{})
	if err == nil || !strings.Contains(err.Error(), "nope") {
		t.Fatalf("got err %v", err)
	}
}

func TestErrorIsCatchableByTryCatch(t *testing.T) {
	out, err := jq.Run(`try error("x") catch .`, value.Null{}, jq.Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 || out[0] != value.String("x") {
		t.Fatalf("got %v", out)
	}
}
