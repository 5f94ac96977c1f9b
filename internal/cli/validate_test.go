package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runValidateCommand(t *testing.T, format string, args ...string) (*bytes.Buffer, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	return buf, cmd.Execute()
}

func TestValidateValidScenarios(t *testing.T) {
	buf, err := runValidateCommand(t, "text", "testdata/scenarios")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "✓ 2 scenario(s) valid")
}

func TestValidateInvalidScenario(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "bad.yaml", "name: bad\ndescription: d\nsteps:\n  - op: resume\n")

	buf, err := runValidateCommand(t, "text", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), "bad.yaml")
	assert.Contains(t, buf.String(), "unknown op")
}

func TestValidateInvalidScenarioJSON(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "bad.cue", `name: "bad", description: "d", steps: []`)

	buf, err := runValidateCommand(t, "json", dir)
	require.Error(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeInvalid, resp.Error.Code)
}

func TestValidateNoFiles(t *testing.T) {
	buf, err := runValidateCommand(t, "text", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), ErrCodeNoFiles)
}

func TestValidateMissingPath(t *testing.T) {
	_, err := runValidateCommand(t, "text", "/nonexistent")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
