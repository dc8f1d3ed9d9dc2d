package builtin_test

import (
	"testing"

	"github.com/corazon/jqsafe/value"
)

func TestFloorCeilRound(t *testing.T) {
	if out := run(t, "floor", value.Number(1.7)); out[0] != value.Number(1) {
		t.Fatalf("floor got %v", out)
	}
	if out := run(t, "ceil", value.Number(1.2)); out[0] != value.Number(2) {
		t.Fatalf("ceil got %v", out)
	}
	if out := run(t, "round", value.Number(1.5)); out[0] != value.Number(2) {
		t.Fatalf("round got %v", out)
	}
}

func TestSqrtAbs(t *testing.T) {
	if out := run(t, "sqrt", value.Number(9)); out[0] != value.Number(3) {
		t.Fatalf("sqrt got %v", out)
	}
	if out := run(t, "abs", value.Number(-4)); out[0] != value.Number(4) {
		t.Fatalf("abs got %v", out)
	}
}

func TestIsnanIsfiniteInfinite(t *testing.T) {
	out := run(t, "infinite", value.Null{})
	inf := out[0].(value.Number)
	if out2 := run(t, "isnan", value.Value(inf)); out2[0] != value.Bool(false) {
		t.Fatalf("isnan got %v", out2)
	}
	if out2 := run(t, "isfinite", value.Number(1)); out2[0] != value.Bool(true) {
		t.Fatalf("isfinite got %v", out2)
	}
	if out2 := run(t, "isfinite", value.Value(inf)); out2[0] != value.Bool(false) {
		t.Fatalf("infinite isfinite got %v", out2)
	}
}

func TestMinMax(t *testing.T) {
	in := value.Array{value.Number(3), value.Number(1), value.Number(2)}
	if out := run(t, "min", in); out[0] != value.Number(1) {
		t.Fatalf("min got %v", out)
	}
	if out := run(t, "max", in); out[0] != value.Number(3) {
		t.Fatalf("max got %v", out)
	}
}

func TestMinByMaxBy(t *testing.T) {
	in := value.Array{
		value.Object{"n": value.Number(3)},
		value.Object{"n": value.Number(1)},
	}
	out := run(t, "min_by(.n)", in)
	want := value.Object{"n": value.Number(1)}
	if len(out) != 1 || !value.Equal(out[0], want) {
		t.Fatalf("got %v, want %v", out, want)
	}
	out = run(t, "max_by(.n)", in)
	want = value.Object{"n": value.Number(3)}
	if len(out) != 1 || !value.Equal(out[0], want) {
		t.Fatalf("got %v, want %v", out, want)
	}
}

func TestAddSumsArray(t *testing.T) {
	out := run(t, "add", value.Array{value.Number(1), value.Number(2), value.Number(3)})
	if out[0] != value.Number(6) {
		t.Fatalf("got %v", out)
	}
}

func TestAddEmptyArrayIsNull(t *testing.T) {
	out := run(t, "add", value.Array{})
	if _, ok := out[0].(value.Null); !ok {
		t.Fatalf("got %v, want null", out)
	}
}
