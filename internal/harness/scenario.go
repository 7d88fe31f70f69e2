package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/rigmatch/internal/request"
)

// Scenario defines one scripted intake conversation.
//
// A scenario drives a single flow from start to wherever its inputs
// lead, records a deterministic transcript, and optionally asserts on
// the final outcome. Transcripts are compared against golden files;
// see golden.go.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description,omitempty"`

	// Kind selects the flow to start.
	Kind request.Kind `yaml:"kind"`

	// Inputs is the scripted user input sequence. Each entry is
	// either free text or a choice token.
	Inputs []Input `yaml:"inputs"`

	// Abandon, if true, abandons the flow after the last input
	// instead of expecting completion.
	Abandon bool `yaml:"abandon,omitempty"`

	// Expect optionally asserts on the final state.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Input is one scripted user input: exactly one of Text or Choice is
// set. Pointers distinguish an absent key from a deliberately empty
// text input.
type Input struct {
	Text   *string `yaml:"text,omitempty"`
	Choice *string `yaml:"choice,omitempty"`
}

// Expect asserts on a scenario's final state.
type Expect struct {
	// Completed asserts the flow reached its terminal step.
	Completed bool `yaml:"completed"`

	// CurrentStep asserts the step the flow is left on (for
	// scenarios that stop mid-flow, e.g. after a rejected input).
	CurrentStep string `yaml:"current_step,omitempty"`

	// Fields asserts collected values by field name, compared via
	// their string form. Subset match: only listed fields are
	// checked.
	Fields map[string]string `yaml:"fields,omitempty"`
}

// LoadScenario reads one scenario from a YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load scenario %s: %w", path, err)
	}

	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}

	if sc.Name == "" {
		return nil, fmt.Errorf("scenario %s: name is required", path)
	}
	if !sc.Kind.Valid() {
		return nil, fmt.Errorf("scenario %s: unknown kind %q", path, sc.Kind)
	}
	for i, in := range sc.Inputs {
		if (in.Text == nil) == (in.Choice == nil) {
			return nil, fmt.Errorf("scenario %s: input %d must set exactly one of text or choice", path, i)
		}
	}

	return &sc, nil
}

// LoadScenarios reads every *.yaml scenario in a directory, sorted by
// file name for deterministic test order.
func LoadScenarios(dir string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("load scenarios: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".yaml") {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		sc, err := LoadScenario(p)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, sc)
	}
	return scenarios, nil
}
