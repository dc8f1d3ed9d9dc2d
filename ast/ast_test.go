package ast_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/corazon/jqsafe/ast"
	"github.com/corazon/jqsafe/span"
)

// These tests only assert the struct shapes satisfy Expression and report
// the Span they were built with; the parser's own tests exercise actual
// tree construction from source.

func TestSpanAccessors(t *testing.T) {
	sp := span.Span{Start: 3, End: 7}
	nodes := []ast.Expression{
		&ast.Identity{Sp: sp},
		&ast.RecurseDefault{Sp: sp},
		&ast.Literal{Sp: sp, Kind: ast.LiteralNumber, Num: 1},
		&ast.InterpString{Sp: sp},
		&ast.VarRef{Sp: sp, Name: "x"},
		&ast.Field{Sp: sp, Name: "foo"},
		&ast.Index{Sp: sp},
		&ast.Slice{Sp: sp},
		&ast.Iterate{Sp: sp},
		&ast.ArrayConstruct{Sp: sp},
		&ast.ObjectConstruct{Sp: sp},
		&ast.Pipe{Sp: sp},
		&ast.Comma{Sp: sp},
		&ast.Alternative{Sp: sp},
		&ast.Unary{Sp: sp},
		&ast.Binary{Sp: sp},
		&ast.Boolean{Sp: sp},
		&ast.If{Sp: sp},
		&ast.Bind{Sp: sp},
		&ast.Call{Sp: sp, Name: "f"},
		&ast.FuncDef{Sp: sp, Name: "f"},
		&ast.Label{Sp: sp, Name: "out"},
		&ast.Break{Sp: sp, Name: "out"},
		&ast.Reduce{Sp: sp},
		&ast.Foreach{Sp: sp},
		&ast.TryCatch{Sp: sp},
		&ast.Assign{Sp: sp},
	}
	for _, n := range nodes {
		assert.Equal(t, sp, n.Span(), "%T", n)
	}
}

func TestObjectConstructEntries(t *testing.T) {
	entry := ast.ObjectEntry{
		Key:   &ast.Literal{Kind: ast.LiteralString, Str: "a"},
		Value: &ast.Identity{},
	}
	oc := &ast.ObjectConstruct{Entries: []ast.ObjectEntry{entry}}
	assert.Len(t, oc.Entries, 1)
	assert.Equal(t, "a", oc.Entries[0].Key.(*ast.Literal).Str)
}

func TestPatternShapes(t *testing.T) {
	plain := ast.Pattern{Var: "x"}
	assert.Equal(t, "x", plain.Var)

	arr := ast.Pattern{Array: []ast.Pattern{{Var: "a"}, {Var: "b"}}}
	assert.Len(t, arr.Array, 2)

	obj := ast.Pattern{Object: []ast.ObjectPatEntry{
		{Key: &ast.Literal{Kind: ast.LiteralString, Str: "a"}, Pattern: ast.Pattern{Var: "a"}},
	}}
	assert.Len(t, obj.Object, 1)
}

func TestInterpStringParts(t *testing.T) {
	s := &ast.InterpString{
		Parts: []ast.InterpPart{
			{Text: "a"},
			{Expr: &ast.Identity{}},
			{Text: "b"},
		},
	}
	assert.Len(t, s.Parts, 3)
	assert.Nil(t, s.Parts[0].Expr)
	assert.NotNil(t, s.Parts[1].Expr)
}
