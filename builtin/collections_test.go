package builtin_test

import (
	"testing"

	"github.com/corazon/jqsafe/value"
)

func TestMapAppliesFilterToEachElement(t *testing.T) {
	out := run(t, "map(. + 1)", value.Array{value.Number(1), value.Number(2)})
	want := value.Array{value.Number(2), value.Number(3)}
	if len(out) != 1 || !value.Equal(out[0], want) {
		t.Fatalf("got %v, want %v", out, want)
	}
}

func TestSelectFiltersTruthy(t *testing.T) {
	out := run(t, "map(select(. > 1))", value.Array{value.Number(1), value.Number(2), value.Number(3)})
	want := value.Array{value.Number(2), value.Number(3)}
	if len(out) != 1 || !value.Equal(out[0], want) {
		t.Fatalf("got %v, want %v", out, want)
	}
}

func TestSortAndSortBy(t *testing.T) {
	out := run(t, "sort", value.Array{value.Number(3), value.Number(1), value.Number(2)})
	want := value.Array{value.Number(1), value.Number(2), value.Number(3)}
	if len(out) != 1 || !value.Equal(out[0], want) {
		t.Fatalf("got %v, want %v", out, want)
	}

	in := value.Array{
		value.Object{"n": value.Number(2)},
		value.Object{"n": value.Number(1)},
	}
	out = run(t, "sort_by(.n)", in)
	want = value.Array{value.Object{"n": value.Number(1)}, value.Object{"n": value.Number(2)}}
	if len(out) != 1 || !value.Equal(out[0], want) {
		t.Fatalf("got %v, want %v", out, want)
	}
}

func TestUniqueAndUniqueBy(t *testing.T) {
	out := run(t, "unique", value.Array{value.Number(1), value.Number(2), value.Number(1)})
	want := value.Array{value.Number(1), value.Number(2)}
	if len(out) != 1 || !value.Equal(out[0], want) {
		t.Fatalf("got %v, want %v", out, want)
	}

	in := value.Array{
		value.Object{"n": value.Number(1), "v": value.String("a")},
		value.Object{"n": value.Number(1), "v": value.String("b")},
	}
	out = run(t, "unique_by(.n)", in)
	if len(out) != 1 || len(out[0].(value.Array)) != 1 {
		t.Fatalf("got %v", out)
	}
}

func TestGroupBy(t *testing.T) {
	in := value.Array{
		value.Object{"n": value.Number(1)},
		value.Object{"n": value.Number(2)},
		value.Object{"n": value.Number(1)},
	}
	out := run(t, "group_by(.n)", in)
	want := value.Array{
		value.Array{value.Object{"n": value.Number(1)}, value.Object{"n": value.Number(1)}},
		value.Array{value.Object{"n": value.Number(2)}},
	}
	if len(out) != 1 || !value.Equal(out[0], want) {
		t.Fatalf("got %v, want %v", out, want)
	}
}

func TestReverseArrayAndString(t *testing.T) {
	out := run(t, "reverse", value.Array{value.Number(1), value.Number(2), value.Number(3)})
	want := value.Array{value.Number(3), value.Number(2), value.Number(1)}
	if len(out) != 1 || !value.Equal(out[0], want) {
		t.Fatalf("got %v, want %v", out, want)
	}
	out = run(t, "reverse", value.String("abc"))
	if out[0] != value.String("cba") {
		t.Fatalf("got %v", out)
	}
}

func TestFlattenDefaultAndDepth(t *testing.T) {
	in := value.Array{value.Number(1), value.Array{value.Number(2), value.Array{value.Number(3)}}}
	out := run(t, "flatten", in)
	want := value.Array{value.Number(1), value.Number(2), value.Number(3)}
	if len(out) != 1 || !value.Equal(out[0], want) {
		t.Fatalf("got %v, want %v", out, want)
	}
	out = run(t, "flatten(1)", in)
	want = value.Array{value.Number(1), value.Number(2), value.Array{value.Number(3)}}
	if len(out) != 1 || !value.Equal(out[0], want) {
		t.Fatalf("got %v, want %v", out, want)
	}
}

func TestTranspose(t *testing.T) {
	in := value.Array{
		value.Array{value.Number(1), value.Number(2)},
		value.Array{value.Number(3)},
	}
	out := run(t, "transpose", in)
	want := value.Array{
		value.Array{value.Number(1), value.Number(3)},
		value.Array{value.Number(2), value.Null{}},
	}
	if len(out) != 1 || !value.Equal(out[0], want) {
		t.Fatalf("got %v, want %v", out, want)
	}
}

func TestBsearchFoundAndNotFound(t *testing.T) {
	in := value.Array{value.Number(1), value.Number(3), value.Number(5)}
	out := run(t, "bsearch(3)", in)
	if out[0] != value.Number(1) {
		t.Fatalf("got %v", out)
	}
	out = run(t, "bsearch(4)", in)
	if out[0] != value.Number(-3) {
		t.Fatalf("got %v", out)
	}
}

func TestCombinationsZeroArg(t *testing.T) {
	in := value.Array{
		value.Array{value.Number(1), value.Number(2)},
		value.Array{value.Number(10)},
	}
	out := run(t, "[combinations]", in)
	want := value.Array{
		value.Array{value.Number(1), value.Number(10)},
		value.Array{value.Number(2), value.Number(10)},
	}
	if len(out) != 1 || !value.Equal(out[0], want) {
		t.Fatalf("got %v, want %v", out, want)
	}
}
