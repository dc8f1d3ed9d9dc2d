package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func execRoot(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRunCommandPrintsOutput(t *testing.T) {
	out, _, err := execRoot(t, `{"a":1}`, "run", ".a")
	require.NoError(t, err)
	require.Equal(t, "1\n", out)
}

func TestRunCommandMultipleOutputs(t *testing.T) {
	out, _, err := execRoot(t, `[1,2,3]`, "run", ".[]")
	require.NoError(t, err)
	require.Equal(t, "1\n2\n3\n", out)
}

func TestRunCommandRequiresFilterArg(t *testing.T) {
	_, _, err := execRoot(t, `null`, "run")
	require.Error(t, err)
}

func TestRunCommandReportsFaultOnStderr(t *testing.T) {
	_, errOut, err := execRoot(t, `null`, "run", ".[")
	require.Error(t, err)
	require.NotEmpty(t, errOut)
}

func TestRunCommandVerboseLogsLifecycleToStderr(t *testing.T) {
	out, errOut, err := execRoot(t, `{"a":1}`, "run", "--verbose", ".a")
	require.NoError(t, err)
	require.Equal(t, "1\n", out)
	require.Contains(t, errOut, "read input")
	require.Contains(t, errOut, "run produced output")
}

func TestRunCommandQuietByDefaultOmitsDebugLogs(t *testing.T) {
	_, errOut, err := execRoot(t, `{"a":1}`, "run", ".a")
	require.NoError(t, err)
	require.NotContains(t, errOut, "read input")
}

func TestRunCommandArgBindsStringVariable(t *testing.T) {
	out, _, err := execRoot(t, `null`, "run", "--arg", "name=world", `"hello \($name)"`)
	require.NoError(t, err)
	require.Equal(t, "\"hello world\"\n", out)
}

func TestRunCommandArgRepeatableBindsMultipleVariables(t *testing.T) {
	out, _, err := execRoot(t, `null`, "run", "--arg", "a=1", "--arg", "b=2", `$a + $b`)
	require.NoError(t, err)
	require.Equal(t, "\"12\"\n", out)
}

func TestRunCommandArgMissingEqualsIsError(t *testing.T) {
	_, _, err := execRoot(t, `null`, "run", "--arg", "noequals", ".")
	require.Error(t, err)
}

func TestRunCommandMaxStepsExceededFaults(t *testing.T) {
	_, errOut, err := execRoot(t, `[1,2,3]`, "run", "--max-steps", "1", "[.[] | . + 1]")
	require.Error(t, err)
	require.NotEmpty(t, errOut)
}

func TestRunCommandMaxOutputsExceededFaults(t *testing.T) {
	_, errOut, err := execRoot(t, `[1,2,3]`, "run", "--max-outputs", "1", ".[]")
	require.Error(t, err)
	require.NotEmpty(t, errOut)
}

func TestRunCommandMaxDepthExceededFaults(t *testing.T) {
	_, errOut, err := execRoot(t, `null`, "run", "--max-depth", "1", "[1,[2,[3]]] | .. ")
	require.Error(t, err)
	require.NotEmpty(t, errOut)
}
