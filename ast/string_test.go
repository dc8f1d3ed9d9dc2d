package ast_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/corazon/jqsafe/ast"
	"github.com/corazon/jqsafe/token"
)

func TestLiteralStrings(t *testing.T) {
	assert.Equal(t, "null", (&ast.Literal{Kind: ast.LiteralNull}).String())
	assert.Equal(t, "true", (&ast.Literal{Kind: ast.LiteralBool, Bool: true}).String())
	assert.Equal(t, "42", (&ast.Literal{Kind: ast.LiteralNumber, Num: 42}).String())
	assert.Equal(t, `"hi"`, (&ast.Literal{Kind: ast.LiteralString, Str: "hi"}).String())
}

func TestFieldStringWithAndWithoutTarget(t *testing.T) {
	bare := &ast.Field{Name: "a"}
	assert.Equal(t, ".a", bare.String())

	chained := &ast.Field{Target: &ast.Field{Name: "a"}, Name: "b", Optional: true}
	assert.Equal(t, ".a.b?", chained.String())
}

func TestIndexIterateSliceStrings(t *testing.T) {
	idx := &ast.Index{Index: &ast.Literal{Kind: ast.LiteralNumber, Num: 0}}
	assert.Equal(t, ".[0]", idx.String())

	it := &ast.Iterate{}
	assert.Equal(t, ".[]", it.String())

	sl := &ast.Slice{From: &ast.Literal{Kind: ast.LiteralNumber, Num: 1}}
	assert.Equal(t, ".[1:]", sl.String())
}

func TestBinaryIsParenthesized(t *testing.T) {
	bin := &ast.Binary{
		Operator: token.PLUS,
		Left:     &ast.Identity{},
		Right:    &ast.Literal{Kind: ast.LiteralNumber, Num: 1},
	}
	assert.Equal(t, "(. + 1)", bin.String())
}

func TestPipeAndCommaStrings(t *testing.T) {
	pipe := &ast.Pipe{Left: &ast.Identity{}, Right: &ast.Field{Name: "a"}}
	assert.Equal(t, ". | .a", pipe.String())

	comma := &ast.Comma{Left: &ast.Field{Name: "a"}, Right: &ast.Field{Name: "b"}}
	assert.Equal(t, ".a, .b", comma.String())
}

func TestIfString(t *testing.T) {
	node := &ast.If{
		Cond: &ast.Identity{},
		Then: &ast.Literal{Kind: ast.LiteralString, Str: "yes"},
		Else: &ast.Literal{Kind: ast.LiteralString, Str: "no"},
	}
	assert.Equal(t, `if . then "yes" else "no" end`, node.String())
}

func TestCallStringWithAndWithoutArgs(t *testing.T) {
	bare := &ast.Call{Name: "length"}
	assert.Equal(t, "length", bare.String())

	withArgs := &ast.Call{Name: "addn", Args: []ast.Expression{&ast.Identity{}, &ast.VarRef{Name: "n"}}}
	assert.Equal(t, "addn(.; $n)", withArgs.String())
}

func TestFuncDefString(t *testing.T) {
	node := &ast.FuncDef{
		Name:   "addn",
		Params: []string{"f", "$n"},
		Body:   &ast.Binary{Operator: token.PLUS, Left: &ast.Call{Name: "f"}, Right: &ast.VarRef{Name: "n"}},
	}
	assert.Equal(t, "def addn(f; $n): (f + $n);", node.String())
}

func TestReduceAndForeachStrings(t *testing.T) {
	red := &ast.Reduce{
		Source: &ast.Iterate{},
		Var:    "x",
		Init:   &ast.Literal{Kind: ast.LiteralNumber, Num: 0},
		Update: &ast.Binary{Operator: token.PLUS, Left: &ast.Identity{}, Right: &ast.VarRef{Name: "x"}},
	}
	assert.Equal(t, "reduce .[] as $x (0; (. + $x))", red.String())

	fe := &ast.Foreach{
		Source:  &ast.Iterate{},
		Var:     "x",
		Init:    &ast.Literal{Kind: ast.LiteralNumber, Num: 0},
		Update:  &ast.Binary{Operator: token.PLUS, Left: &ast.Identity{}, Right: &ast.VarRef{Name: "x"}},
		Extract: &ast.Identity{},
	}
	assert.Equal(t, "foreach .[] as $x (0; (. + $x); .)", fe.String())
}

func TestTryCatchString(t *testing.T) {
	bare := &ast.TryCatch{Body: &ast.Call{Name: "error", Args: []ast.Expression{&ast.Literal{Kind: ast.LiteralString, Str: "boom"}}}}
	assert.Equal(t, `try error("boom")`, bare.String())

	withHandler := &ast.TryCatch{Body: &ast.Identity{}, Handler: &ast.Identity{}}
	assert.Equal(t, "try . catch .", withHandler.String())
}

func TestBindAndPatternStrings(t *testing.T) {
	node := &ast.Bind{
		Source:   &ast.Identity{},
		Patterns: []ast.Pattern{{Array: []ast.Pattern{{Var: "a"}, {Var: "b"}}}},
		Body:     &ast.Binary{Operator: token.PLUS, Left: &ast.VarRef{Name: "a"}, Right: &ast.VarRef{Name: "b"}},
	}
	assert.Equal(t, ". as [$a, $b] | ($a + $b)", node.String())
}

func TestInterpStringStringWithFormat(t *testing.T) {
	node := &ast.InterpString{
		Format: "base64",
		Parts:  []ast.InterpPart{{Text: "x="}, {Expr: &ast.Field{Name: "x"}}},
	}
	assert.Equal(t, `@base64 "x=\(.x)"`, node.String())
}
