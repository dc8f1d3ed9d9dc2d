package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corazon/jqsafe/ast"
	"github.com/corazon/jqsafe/fault"
	"github.com/corazon/jqsafe/lexer"
	"github.com/corazon/jqsafe/parser"
	"github.com/corazon/jqsafe/validate"
)

func parse(t *testing.T, src string) ast.Expression {
	t.Helper()
	_, err := parser.New(lexer.New(src))
	require.Nil(t, err)
	expr, err := parser.ParseProgram(src)
	require.Nil(t, err)
	return expr
}

func TestIdentityIsValid(t *testing.T) {
	assert.Nil(t, validate.Validate(parse(t, ".")))
}

func TestKnownBuiltinIsValid(t *testing.T) {
	assert.Nil(t, validate.Validate(parse(t, "length")))
	assert.Nil(t, validate.Validate(parse(t, "map(.+1)")))
}

func TestUnknownCallIsRejected(t *testing.T) {
	err := validate.Validate(parse(t, "nosuchfunc"))
	require.NotNil(t, err)
	assert.Equal(t, fault.KindValidate, err.Kind())
}

func TestArityMismatchIsRejected(t *testing.T) {
	err := validate.Validate(parse(t, "length(1)"))
	require.NotNil(t, err)
	assert.Equal(t, fault.KindValidate, err.Kind())
}

func TestForbiddenBuiltinsAreRejected(t *testing.T) {
	for _, src := range []string{"now", "input", "inputs", "env"} {
		err := validate.Validate(parse(t, src))
		require.NotNilf(t, err, "expected %q to be rejected", src)
		assert.Equal(t, fault.KindValidate, err.Kind())
	}
}

func TestLocallyDefinedFunctionIsValid(t *testing.T) {
	expr := parse(t, "def twice(f): f, f; twice(.+1)")
	assert.Nil(t, validate.Validate(expr))
}

func TestLocalFunctionNotVisibleOutsideItsScope(t *testing.T) {
	expr := parse(t, "(def twice(f): f, f; twice(.)), twice(.)")
	err := validate.Validate(expr)
	require.NotNil(t, err)
	assert.Equal(t, fault.KindValidate, err.Kind())
}

func TestFuncParamUsedAsFilterIsValid(t *testing.T) {
	expr := parse(t, "def apply(f): f; apply(length)")
	assert.Nil(t, validate.Validate(expr))
}

func TestBoundVariableIsValid(t *testing.T) {
	expr := parse(t, ". as $x | $x")
	assert.Nil(t, validate.Validate(expr))
}

func TestReduceBindsAccumulatorInUpdateOnly(t *testing.T) {
	expr := parse(t, "reduce .[] as $x (0; . + $x)")
	assert.Nil(t, validate.Validate(expr))
}
