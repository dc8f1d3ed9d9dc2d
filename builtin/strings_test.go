package builtin_test

import (
	"testing"

	"github.com/corazon/jqsafe/value"
)

func TestSplitOnSeparator(t *testing.T) {
	out := run(t, `split(",")`, value.String("a,b,c"))
	want := value.Array{value.String("a"), value.String("b"), value.String("c")}
	if len(out) != 1 || !value.Equal(out[0], want) {
		t.Fatalf("got %v, want %v", out, want)
	}
}

func TestSplitsStreamsEachPart(t *testing.T) {
	out := run(t, `[splits(",")]`, value.String("a,b,c"))
	want := value.Array{value.String("a"), value.String("b"), value.String("c")}
	if len(out) != 1 || !value.Equal(out[0], want) {
		t.Fatalf("got %v, want %v", out, want)
	}
}

func TestJoinSkipsNullElements(t *testing.T) {
	out := run(t, `join(",")`, value.Array{value.String("a"), value.Null{}, value.String("b")})
	if out[0] != value.String("a,,b") {
		t.Fatalf("got %v", out)
	}
}

func TestStartswithEndswith(t *testing.T) {
	if out := run(t, `startswith("he")`, value.String("hello")); out[0] != value.Bool(true) {
		t.Fatalf("startswith got %v", out)
	}
	if out := run(t, `endswith("lo")`, value.String("hello")); out[0] != value.Bool(true) {
		t.Fatalf("endswith got %v", out)
	}
}

func TestIndexRindex(t *testing.T) {
	out := run(t, `index("l")`, value.String("hello"))
	if out[0] != value.Number(2) {
		t.Fatalf("index got %v", out)
	}
	out = run(t, `rindex("l")`, value.String("hello"))
	if out[0] != value.Number(3) {
		t.Fatalf("rindex got %v", out)
	}
}

func TestIndexMissingIsNull(t *testing.T) {
	out := run(t, `index("z")`, value.String("hello"))
	if _, ok := out[0].(value.Null); !ok {
		t.Fatalf("got %v, want null", out)
	}
}

func TestIndicesOnArray(t *testing.T) {
	out := run(t, `indices(2)`, value.Array{value.Number(1), value.Number(2), value.Number(3), value.Number(2)})
	want := value.Array{value.Number(1), value.Number(3)}
	if len(out) != 1 || !value.Equal(out[0], want) {
		t.Fatalf("got %v, want %v", out, want)
	}
}

func TestExplodeImplodeRoundTrip(t *testing.T) {
	out := run(t, `explode | implode`, value.String("hi"))
	if out[0] != value.String("hi") {
		t.Fatalf("got %v", out)
	}
}

func TestLtrimstrNoMatchReturnsInputRtrimstrTrimsSuffix(t *testing.T) {
	out := run(t, `ltrimstr("x")`, value.String("hello"))
	if out[0] != value.String("hello") {
		t.Fatalf("got %v", out)
	}
	out = run(t, `rtrimstr("lo")`, value.String("hello"))
	if out[0] != value.String("hel") {
		t.Fatalf("got %v", out)
	}
}

func TestAsciiUpcaseDowncase(t *testing.T) {
	out := run(t, "ascii_upcase", value.String("Hello!"))
	if out[0] != value.String("HELLO!") {
		t.Fatalf("got %v", out)
	}
	out = run(t, "ascii_downcase", value.String("Hello!"))
	if out[0] != value.String("hello!") {
		t.Fatalf("got %v", out)
	}
}
