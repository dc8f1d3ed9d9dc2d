package builtin_test

import (
	"testing"

	"github.com/corazon/jqsafe/jq"
	"github.com/corazon/jqsafe/value"
)

func TestFormatBase64RoundTrips(t *testing.T) {
	out := run(t, `@base64`, value.String("hello"))
	if out[0] != value.String("aGVsbG8=") {
		t.Fatalf("got %v", out)
	}
	out = run(t, `@base64 | @base64d`, value.String("hello"))
	if out[0] != value.String("hello") {
		t.Fatalf("got %v", out)
	}
}

func TestFormatCSVQuotesStrings(t *testing.T) {
	out := run(t, `@csv`, value.Array{value.Number(1), value.String("a,b")})
	if out[0] != value.String(`1,"a,b"`) {
		t.Fatalf("got %v", out)
	}
}

func TestFormatTSVEscapesTabs(t *testing.T) {
	out := run(t, `@tsv`, value.Array{value.String("a\tb"), value.Number(2)})
	if out[0] != value.String("a\\tb\t2") {
		t.Fatalf("got %v", out)
	}
}

func TestFormatHTMLEscapesEntities(t *testing.T) {
	out := run(t, `@html`, value.String(`<a href="x">&</a>`))
	if out[0] != value.String("&lt;a href=&quot;x&quot;&gt;&amp;&lt;/a&gt;") {
		t.Fatalf("got %v", out)
	}
}

func TestFormatURIEscapesReserved(t *testing.T) {
	out := run(t, `@uri`, value.String("a b/c"))
	if out[0] != value.String("a%20b%2Fc") {
		t.Fatalf("got %v", out)
	}
}

func TestFormatShQuotesSingleQuotes(t *testing.T) {
	out := run(t, `@sh`, value.String("it's"))
	if out[0] != value.String(`'it'\''s'`) {
		t.Fatalf("got %v", out)
	}
}

func TestFormatAppliesOnlyToInterpolatedHoles(t *testing.T) {
	out := run(t, `@base64 "prefix-\(.)-suffix"`, value.String("x"))
	if out[0] != value.String(`prefix-`+`eA==`+`-suffix`) {
		t.Fatalf("got %v", out)
	}
}

func TestFormatCSVRejectsNestedArray(t *testing.T) {
	_, err := jq.Run(`@csv`, value.Array{value.Array{value.Number(1)}}, jq.Options{})
	if err == nil {
		t.Fatalf("expected error for nested array field")
	}
}
