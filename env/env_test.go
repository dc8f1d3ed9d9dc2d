package env_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/corazon/jqsafe/env"
	"github.com/corazon/jqsafe/value"
)

func TestVarLookupWalksOuter(t *testing.T) {
	root := env.New()
	root.SetVar("x", value.Number(1))
	child := env.NewEnclosed(root)

	v, ok := child.GetVar("x")
	assert.True(t, ok)
	assert.Equal(t, value.Number(1), v)
}

func TestVarShadowing(t *testing.T) {
	root := env.New()
	root.SetVar("x", value.Number(1))
	child := env.NewEnclosed(root)
	child.SetVar("x", value.Number(2))

	v, ok := child.GetVar("x")
	assert.True(t, ok)
	assert.Equal(t, value.Number(2), v)

	rv, ok := root.GetVar("x")
	assert.True(t, ok)
	assert.Equal(t, value.Number(1), rv)
}

func TestVarUnbound(t *testing.T) {
	root := env.New()
	_, ok := root.GetVar("missing")
	assert.False(t, ok)
}

func TestFuncLookupByNameAndArity(t *testing.T) {
	root := env.New()
	c1 := &env.Closure{Params: nil, Defined: root}
	c2 := &env.Closure{Params: []string{"x"}, Defined: root}
	root.SetFunc("f", 0, c1)
	root.SetFunc("f", 1, c2)

	got0, ok := root.GetFunc("f", 0)
	assert.True(t, ok)
	assert.Same(t, c1, got0)

	got1, ok := root.GetFunc("f", 1)
	assert.True(t, ok)
	assert.Same(t, c1.Defined, got1.Defined)

	_, ok = root.GetFunc("f", 2)
	assert.False(t, ok)
}

func TestFuncShadowingAcrossFrames(t *testing.T) {
	root := env.New()
	outer := &env.Closure{Defined: root}
	root.SetFunc("f", 0, outer)

	child := env.NewEnclosed(root)
	inner := &env.Closure{Defined: child}
	child.SetFunc("f", 0, inner)

	got, ok := child.GetFunc("f", 0)
	assert.True(t, ok)
	assert.Same(t, inner, got)

	got, ok = root.GetFunc("f", 0)
	assert.True(t, ok)
	assert.Same(t, outer, got)
}
