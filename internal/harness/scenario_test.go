package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rigmatch/internal/request"
)

func writeScenario(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadScenario(t *testing.T) {
	path := writeScenario(t, t.TempDir(), "ok.yaml", `
name: ok
kind: demand
inputs:
  - text: "excavator"
  - choice: "contact_message"
expect:
  completed: false
  current_step: location
`)

	sc, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "ok", sc.Name)
	assert.Equal(t, request.KindDemand, sc.Kind)
	require.Len(t, sc.Inputs, 2)
	require.NotNil(t, sc.Inputs[0].Text)
	assert.Equal(t, "excavator", *sc.Inputs[0].Text)
	require.NotNil(t, sc.Inputs[1].Choice)
	assert.Equal(t, "contact_message", *sc.Inputs[1].Choice)
	require.NotNil(t, sc.Expect)
	assert.Equal(t, "location", sc.Expect.CurrentStep)
}

func TestLoadScenarioMissingName(t *testing.T) {
	path := writeScenario(t, t.TempDir(), "bad.yaml", `
kind: demand
inputs: []
`)
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name is required")
}

func TestLoadScenarioUnknownKind(t *testing.T) {
	path := writeScenario(t, t.TempDir(), "bad.yaml", `
name: bad
kind: owner
inputs: []
`)
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown kind "owner"`)
}

func TestLoadScenarioAmbiguousInput(t *testing.T) {
	path := writeScenario(t, t.TempDir(), "bad.yaml", `
name: bad
kind: demand
inputs:
  - text: "excavator"
    choice: "contact_message"
`)
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one of text or choice")
}

func TestLoadScenarioEmptyInput(t *testing.T) {
	path := writeScenario(t, t.TempDir(), "bad.yaml", `
name: bad
kind: demand
inputs:
  - {}
`)
	_, err := LoadScenario(path)
	require.Error(t, err)
}

func TestLoadScenariosSorted(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "b.yaml", "name: second\nkind: supply\n")
	writeScenario(t, dir, "a.yaml", "name: first\nkind: demand\n")
	writeScenario(t, dir, "notes.txt", "not a scenario")

	scenarios, err := LoadScenarios(dir)
	require.NoError(t, err)
	require.Len(t, scenarios, 2)
	assert.Equal(t, "first", scenarios[0].Name)
	assert.Equal(t, "second", scenarios[1].Name)
}

func TestLoadScenariosMissingDir(t *testing.T) {
	_, err := LoadScenarios(filepath.Join(t.TempDir(), "absent"))
	require.Error(t, err)
}
