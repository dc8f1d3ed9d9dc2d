package lexer_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/corazon/jqsafe/lexer"
	"github.com/corazon/jqsafe/token"
)

func lexAll(t *testing.T, input string) []token.Token {
	t.Helper()
	l := lexer.New(input)
	var out []token.Token
	for {
		tok, err := l.NextToken()
		require.Nil(t, err, "NextToken() error on %q: %v", input, err)
		out = append(out, tok)
		if tok.Type == token.EOF {
			return out
		}
	}
}

func types(toks []token.Token) []token.Type {
	out := make([]token.Type, len(toks))
	for i, tok := range toks {
		out[i] = tok.Type
	}
	return out
}

func TestSimplePunctuationAndOperators(t *testing.T) {
	toks := lexAll(t, `.foo[0] | .bar?`)
	got := types(toks)
	want := []token.Type{
		token.DOT, token.IDENT, token.LBRACKET, token.NUMBER, token.RBRACKET,
		token.PIPE, token.DOT, token.IDENT, token.QUESTION, token.EOF,
	}
	require.Equal(t, want, got)
}

func TestRecurseVsDot(t *testing.T) {
	toks := lexAll(t, `..`)
	require.Equal(t, []token.Type{token.DOTDOT, token.EOF}, types(toks))
}

func TestCompoundAssignmentOperators(t *testing.T) {
	cases := []struct {
		src  string
		want token.Type
	}{
		{"=", token.ASSIGN},
		{"|=", token.PIPE_EQ},
		{"+=", token.PLUS_EQ},
		{"-=", token.MINUS_EQ},
		{"*=", token.STAR_EQ},
		{"/=", token.SLASH_EQ},
		{"%=", token.PERCENT_EQ},
		{"//=", token.ALT_EQ},
		{"//", token.ALT},
		{"==", token.EQ},
		{"!=", token.NE},
		{"<=", token.LE},
		{">=", token.GE},
		{"?//", token.QUESTION_SLASH_SLASH},
	}
	for _, tc := range cases {
		toks := lexAll(t, tc.src)
		require.Equal(t, []token.Type{tc.want, token.EOF}, types(toks), "source %q", tc.src)
	}
}

func TestNumberLiterals(t *testing.T) {
	cases := []string{"0", "42", "3.14", "1e10", "1.5e-3", "2E+4"}
	for _, src := range cases {
		toks := lexAll(t, src)
		require.Equal(t, token.NUMBER, toks[0].Type, "source %q", src)
		require.Equal(t, src, toks[0].Literal)
	}
}

func TestNumberExponentBacktrack(t *testing.T) {
	// "1e" with no digits following the 'e' is not a valid exponent; the
	// lexer should emit NUMBER("1") followed by IDENT("e").
	toks := lexAll(t, "1e")
	require.Equal(t, []token.Type{token.NUMBER, token.IDENT, token.EOF}, types(toks))
	require.Equal(t, "1", toks[0].Literal)
	require.Equal(t, "e", toks[1].Literal)
}

func TestPlainString(t *testing.T) {
	toks := lexAll(t, `"hello\nworld"`)
	require.Equal(t, token.STRING, toks[0].Type)
	require.Equal(t, "hello\nworld", toks[0].Literal)
}

func TestStringUnicodeEscape(t *testing.T) {
	toks := lexAll(t, `"\u00e9"`)
	require.Equal(t, token.STRING, toks[0].Type)
	require.Equal(t, "é", toks[0].Literal)
}

func TestStringInterpolationSingle(t *testing.T) {
	toks := lexAll(t, `"a\(1+2)b"`)
	got := types(toks)
	want := []token.Type{
		token.STRING_START, token.NUMBER, token.PLUS, token.NUMBER, token.STRING_END, token.EOF,
	}
	require.Equal(t, want, got)
	require.Equal(t, "a", toks[0].Literal)
	require.Equal(t, "b", toks[4].Literal)
}

func TestStringInterpolationNestedParens(t *testing.T) {
	// The interpolated expression itself contains parens; the lexer must
	// not close the string frame until nesting returns to the frame's
	// starting depth.
	toks := lexAll(t, `"x\((1+2)*3)y"`)
	got := types(toks)
	want := []token.Type{
		token.STRING_START,
		token.LPAREN, token.NUMBER, token.PLUS, token.NUMBER, token.RPAREN,
		token.STAR, token.NUMBER,
		token.STRING_END, token.EOF,
	}
	require.Equal(t, want, got)
}

func TestStringInterpolationMultipleSegments(t *testing.T) {
	toks := lexAll(t, `"\(1)-\(2)"`)
	got := types(toks)
	want := []token.Type{
		token.STRING_START, token.NUMBER, token.STRING_MID, token.NUMBER, token.STRING_END, token.EOF,
	}
	require.Equal(t, want, got)
	require.Equal(t, "", toks[0].Literal)
	require.Equal(t, "-", toks[2].Literal)
	require.Equal(t, "", toks[4].Literal)
}

func TestVariableAndFormat(t *testing.T) {
	toks := lexAll(t, `$x @base64`)
	require.Equal(t, token.VARIABLE, toks[0].Type)
	require.Equal(t, "x", toks[0].Literal)
	require.Equal(t, token.FORMAT, toks[1].Type)
	require.Equal(t, "base64", toks[1].Literal)
}

func TestKeywords(t *testing.T) {
	toks := lexAll(t, `if . then . else . end`)
	want := []token.Type{token.IF, token.DOT, token.THEN, token.DOT, token.ELSE, token.DOT, token.END, token.EOF}
	require.Equal(t, want, types(toks))
}

func TestCommentSkipped(t *testing.T) {
	toks := lexAll(t, "# a comment\n.")
	require.Equal(t, []token.Type{token.DOT, token.EOF}, types(toks))
}

func TestUnterminatedStringIsLexFault(t *testing.T) {
	l := lexer.New(`"abc`)
	for {
		tok, err := l.NextToken()
		if err != nil {
			return
		}
		if tok.Type == token.EOF {
			t.Fatal("expected lex fault for unterminated string, got clean EOF")
		}
	}
}
