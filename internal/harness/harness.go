// Package harness runs scripted intake conversations and records
// deterministic transcripts for golden-file comparison.
//
// Each scenario runs against a freshly compiled default flow set with
// a fixed token generator, so two runs of the same scenario produce
// byte-identical transcripts.
package harness

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/roach88/rigmatch/internal/compiler"
	"github.com/roach88/rigmatch/internal/engine"
)

// Result captures one scenario execution.
type Result struct {
	// Transcript is the line-based record of the conversation.
	Transcript []string

	// Completed reports whether the flow reached its terminal step.
	Completed bool

	// State is the final flow state (released if the flow completed
	// or was abandoned).
	State *engine.FlowState

	// Fatal is the flow-integrity error that stopped the scenario,
	// if any. Validation errors are not fatal; they appear in the
	// transcript and the scenario continues.
	Fatal error
}

// Run executes a scenario and returns its result. Scripted inputs
// after a fatal error or completion are not consumed; the transcript
// records everything up to that point.
func Run(scenario *Scenario) (*Result, error) {
	graphs, err := compiler.DefaultFlows()
	if err != nil {
		return nil, fmt.Errorf("run scenario %s: %w", scenario.Name, err)
	}

	eng := engine.New(graphs, engine.WithTokenGenerator(engine.NewFixedTokens("flow-1")))
	res := &Result{}

	state, outcome, err := eng.StartFlow(scenario.Kind)
	if err != nil {
		res.Fatal = err
		res.Transcript = append(res.Transcript, "fatal "+err.Error())
		return res, nil
	}
	res.State = state
	res.Transcript = append(res.Transcript,
		fmt.Sprintf("start kind=%s flow=%s step=%s", scenario.Kind, state.Token, state.CurrentStepID))
	res.Transcript = appendOutcome(res.Transcript, state, outcome)

	for _, in := range scenario.Inputs {
		if res.Completed || res.Fatal != nil {
			break
		}

		var outcome engine.Outcome
		var err error
		if in.Text != nil {
			res.Transcript = append(res.Transcript, "input text "+strconv.Quote(*in.Text))
			outcome, err = eng.ProcessText(state, *in.Text)
		} else {
			res.Transcript = append(res.Transcript, "input choice "+*in.Choice)
			outcome, err = eng.ProcessChoice(state, *in.Choice)
		}

		if err != nil {
			res.Fatal = err
			res.Transcript = append(res.Transcript, "fatal "+err.Error())
			break
		}

		res.Transcript = appendOutcome(res.Transcript, state, outcome)
		if outcome.Kind == engine.OutcomeCompleted {
			res.Completed = true
		}
	}

	if scenario.Abandon && !res.Completed && res.Fatal == nil {
		eng.Abandon(state)
		res.Transcript = append(res.Transcript, "abandon flow="+state.Token)
	}

	return res, nil
}

// appendOutcome renders an outcome as transcript lines.
func appendOutcome(lines []string, state *engine.FlowState, outcome engine.Outcome) []string {
	switch outcome.Kind {
	case engine.OutcomeNextPrompt:
		return append(lines, "outcome next_prompt step="+state.CurrentStepID)

	case engine.OutcomeAwaitingChoice:
		return append(lines, fmt.Sprintf("outcome awaiting_choice step=%s tokens=%s",
			state.CurrentStepID, strings.Join(outcome.Tokens, ",")))

	case engine.OutcomeValidationError:
		return append(lines, fmt.Sprintf("outcome validation_error step=%s message=%s",
			state.CurrentStepID, strconv.Quote(outcome.Message)))

	case engine.OutcomeCompleted:
		lines = append(lines, "outcome completed")
		names := make([]string, 0, len(outcome.Collected))
		for name := range outcome.Collected {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			lines = append(lines, fmt.Sprintf("field %s=%s",
				name, strconv.Quote(outcome.Collected[name].String())))
		}
		return lines

	default:
		return append(lines, "outcome unknown")
	}
}

// Verify checks a result against the scenario's expect clause.
// Returns nil when the scenario has no expectations.
func (s *Scenario) Verify(res *Result) error {
	if s.Expect == nil {
		return nil
	}

	if s.Expect.Completed != res.Completed {
		return fmt.Errorf("scenario %s: completed = %v, want %v", s.Name, res.Completed, s.Expect.Completed)
	}

	if s.Expect.CurrentStep != "" {
		if res.State == nil {
			return fmt.Errorf("scenario %s: no flow state to check current step", s.Name)
		}
		if res.State.CurrentStepID != s.Expect.CurrentStep {
			return fmt.Errorf("scenario %s: current step = %q, want %q",
				s.Name, res.State.CurrentStepID, s.Expect.CurrentStep)
		}
	}

	for name, want := range s.Expect.Fields {
		if res.State == nil {
			return fmt.Errorf("scenario %s: no flow state to check fields", s.Name)
		}
		value, ok := res.State.Collected[name]
		if !ok {
			return fmt.Errorf("scenario %s: field %q not collected", s.Name, name)
		}
		if got := value.String(); got != want {
			return fmt.Errorf("scenario %s: field %q = %q, want %q", s.Name, name, got, want)
		}
	}

	return nil
}
