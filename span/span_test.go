package span_test

import (
	"strings"
	"testing"

	"github.com/corazon/jqsafe/span"
)

func TestCoverSpansBothRanges(t *testing.T) {
	a := span.Span{Start: 2, End: 5}
	b := span.Span{Start: 0, End: 3}
	got := span.Cover(a, b)
	want := span.Span{Start: 0, End: 5}
	if got != want {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestStringFormat(t *testing.T) {
	s := span.Span{Start: 1, End: 4}
	if s.String() != "1:4" {
		t.Fatalf("got %q", s.String())
	}
}

func TestFprintRendersCaretUnderSpan(t *testing.T) {
	source := ".a.b"
	var sb strings.Builder
	span.Fprint(&sb, source, span.Span{Start: 2, End: 3})
	out := sb.String()
	if !strings.Contains(out, ".a.b") {
		t.Fatalf("missing source line: %q", out)
	}
	lines := strings.Split(out, "\n")
	if len(lines) < 3 || !strings.Contains(lines[2], "^") {
		t.Fatalf("missing caret line: %q", out)
	}
}

func TestFprintMultilineSourceLocatesCorrectLine(t *testing.T) {
	source := ".a\n.b\n.c"
	var sb strings.Builder
	span.Fprint(&sb, source, span.Span{Start: 4, End: 5})
	out := sb.String()
	if !strings.Contains(out, "line 2") {
		t.Fatalf("expected line 2, got %q", out)
	}
}
