package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario_YAML(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/priority_order.yaml")
	require.NoError(t, err)

	assert.Equal(t, "priority_order", s.Name)
	require.Len(t, s.Steps, 6)
	assert.Equal(t, OpSubmit, s.Steps[0].Op)
	assert.Nil(t, s.Steps[0].Priority)
	require.NotNil(t, s.Steps[1].Priority)
	assert.Equal(t, 10, *s.Steps[1].Priority)
	require.NotNil(t, s.Expect)
	assert.Equal(t, []string{"B", "C", "A"}, s.Expect.Order)
}

func TestLoadScenario_CUE(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/halt_outranks.cue")
	require.NoError(t, err)

	assert.Equal(t, "halt_outranks", s.Name)
	require.Len(t, s.Steps, 4)
	require.NotNil(t, s.Steps[0].Priority)
	assert.Equal(t, 0, *s.Steps[0].Priority)
	require.NotNil(t, s.Steps[2].Priority)
	assert.Equal(t, -1, *s.Steps[2].Priority)
	assert.Equal(t, OpHalt, s.Steps[3].Op)
	require.NotNil(t, s.Expect.Pending)
	assert.Equal(t, 2, *s.Expect.Pending)
}

func TestLoadScenario_Invalid(t *testing.T) {
	tests := []struct {
		file    string
		wantErr string
	}{
		{"unknown_field.yaml", "failed to parse YAML"},
		{"unknown_op.yaml", "unknown op"},
		{"both_fail_and_panic.cue", "cannot both fail and panic"},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			_, err := LoadScenario(filepath.Join("testdata/invalid", tt.file))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("testdata/scenarios/does_not_exist.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_NonConcreteCUE(t *testing.T) {
	path := filepath.Join(t.TempDir(), "open.cue")
	content := `
name:        "open"
description: "priority is left open"
steps: [{op: "submit", command: "x", priority: int}]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not concrete")
}

func TestLoadScenarios_Directory(t *testing.T) {
	scenarios, err := LoadScenarios("testdata/scenarios")
	require.NoError(t, err)

	var names []string
	for _, s := range scenarios {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{
		"halt_idle",
		"halt_outranks",
		"handler_error",
		"join_while_paused",
		"pause_resume",
		"priority_order",
	}, names)
}

func TestIsScenarioFile(t *testing.T) {
	assert.True(t, IsScenarioFile("a.yaml"))
	assert.True(t, IsScenarioFile("a.YML"))
	assert.True(t, IsScenarioFile("a.cue"))
	assert.False(t, IsScenarioFile("a.golden"))
	assert.False(t, IsScenarioFile("README"))
}

func TestValidateScenario(t *testing.T) {
	tests := []struct {
		name     string
		scenario Scenario
		wantErr  string
	}{
		{
			name:     "missing name",
			scenario: Scenario{Description: "d", Steps: []Step{{Op: OpStart}}},
			wantErr:  "name is required",
		},
		{
			name:     "missing description",
			scenario: Scenario{Name: "n", Steps: []Step{{Op: OpStart}}},
			wantErr:  "description is required",
		},
		{
			name:     "no steps",
			scenario: Scenario{Name: "n", Description: "d"},
			wantErr:  "steps list is required",
		},
		{
			name:     "submit without command",
			scenario: Scenario{Name: "n", Description: "d", Steps: []Step{{Op: OpSubmit}}},
			wantErr:  "submit requires a command name",
		},
		{
			name:     "priority on start",
			scenario: Scenario{Name: "n", Description: "d", Steps: []Step{{Op: OpStart, Priority: intp(1)}}},
			wantErr:  "start takes no command fields",
		},
		{
			name:     "blocks on halt",
			scenario: Scenario{Name: "n", Description: "d", Steps: []Step{{Op: OpHalt, Blocks: true}}},
			wantErr:  "blocks is only valid on join",
		},
		{
			name:     "missing op",
			scenario: Scenario{Name: "n", Description: "d", Steps: []Step{{}}},
			wantErr:  "op is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateScenario(&tt.scenario)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
