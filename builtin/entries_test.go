package builtin_test

import (
	"testing"

	"github.com/corazon/jqsafe/value"
)

func TestToEntriesObject(t *testing.T) {
	out := run(t, "to_entries", value.Object{"a": value.Number(1)})
	want := value.Array{value.Object{"key": value.String("a"), "value": value.Number(1)}}
	if len(out) != 1 || !value.Equal(out[0], want) {
		t.Fatalf("got %v, want %v", out, want)
	}
}

func TestFromEntriesRoundTrip(t *testing.T) {
	in := value.Object{"a": value.Number(1), "b": value.Number(2)}
	out := run(t, "to_entries | from_entries", in)
	if len(out) != 1 || !value.Equal(out[0], in) {
		t.Fatalf("got %v, want %v", out, in)
	}
}

func TestFromEntriesAcceptsKeyAlias(t *testing.T) {
	out := run(t, "from_entries", value.Array{value.Object{"name": value.String("a"), "value": value.Number(1)}})
	want := value.Object{"a": value.Number(1)}
	if len(out) != 1 || !value.Equal(out[0], want) {
		t.Fatalf("got %v, want %v", out, want)
	}
}

func TestWithEntriesTransformsValues(t *testing.T) {
	out := run(t, "with_entries(.value += 1)", value.Object{"a": value.Number(1)})
	want := value.Object{"a": value.Number(2)}
	if len(out) != 1 || !value.Equal(out[0], want) {
		t.Fatalf("got %v, want %v", out, want)
	}
}
