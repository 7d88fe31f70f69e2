package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rigmatch/internal/compiler"
	"github.com/roach88/rigmatch/internal/flow"
	"github.com/roach88/rigmatch/internal/request"
)

func testEngine(t *testing.T) *Engine {
	t.Helper()
	graphs, err := compiler.DefaultFlows()
	require.NoError(t, err)
	return New(graphs, WithTokenGenerator(NewFixedTokens(
		"flow-1", "flow-2", "flow-3", "flow-4",
	)))
}

func TestStartFlowDemand(t *testing.T) {
	eng := testEngine(t)

	state, outcome, err := eng.StartFlow(request.KindDemand)
	require.NoError(t, err)

	assert.Equal(t, "flow-1", state.Token)
	assert.Equal(t, request.KindDemand, state.Kind)
	assert.Equal(t, "equipment_type", state.CurrentStepID)
	assert.Empty(t, state.Collected)
	assert.False(t, state.Released())

	assert.Equal(t, OutcomeNextPrompt, outcome.Kind)
	assert.Contains(t, outcome.Prompt, "equipment")
}

func TestStartFlowUnknownKind(t *testing.T) {
	eng := testEngine(t)

	_, _, err := eng.StartFlow(request.Kind("owner"))
	require.Error(t, err)
	assert.True(t, IsUnknownKind(err))
}

func TestDemandHappyPath(t *testing.T) {
	eng := testEngine(t)
	state, _, err := eng.StartFlow(request.KindDemand)
	require.NoError(t, err)

	inputs := []string{"excavator", "Springfield", "dig foundation", "500", "3 days"}
	for i, input := range inputs {
		outcome, err := eng.ProcessText(state, input)
		require.NoError(t, err, "input %d", i)
		if i < len(inputs)-1 {
			assert.Equal(t, OutcomeNextPrompt, outcome.Kind, "input %d", i)
		} else {
			assert.Equal(t, OutcomeAwaitingChoice, outcome.Kind)
			assert.Equal(t, []string{"contact_message", "contact_call"}, outcome.Tokens)
		}
	}

	outcome, err := eng.ProcessChoice(state, "contact_message")
	require.NoError(t, err)
	require.Equal(t, OutcomeCompleted, outcome.Kind)
	assert.True(t, state.Released())

	// The collected key set is exactly the graph's field list.
	graphs, _ := compiler.DefaultFlows()
	demand, _ := graphs.Graph(request.KindDemand)
	assert.Len(t, outcome.Collected, demand.Len())
	for _, name := range demand.FieldNames() {
		assert.Contains(t, outcome.Collected, name)
	}

	budget, ok := outcome.Collected.Decimal(request.FieldBudget)
	require.True(t, ok)
	assert.Equal(t, 500.0, budget)

	pref, ok := outcome.Collected.Text(request.FieldContactPreference)
	require.True(t, ok)
	assert.Equal(t, "message", pref)
}

func TestSupplyHappyPath(t *testing.T) {
	eng := testEngine(t)
	state, _, err := eng.StartFlow(request.KindSupply)
	require.NoError(t, err)

	for _, input := range []string{"Excavator JCB", "Springfield Region", "7", "49.5"} {
		outcome, err := eng.ProcessText(state, input)
		require.NoError(t, err)
		assert.NotEqual(t, OutcomeValidationError, outcome.Kind)
	}

	outcome, err := eng.ProcessChoice(state, "contact_call")
	require.NoError(t, err)
	require.Equal(t, OutcomeCompleted, outcome.Kind)

	years, ok := outcome.Collected.Int(request.FieldExperienceYears)
	require.True(t, ok)
	assert.Equal(t, int64(7), years)

	price, ok := outcome.Collected.Decimal(request.FieldPricePerHour)
	require.True(t, ok)
	assert.Equal(t, 49.5, price)
}

func TestValidationLeavesStateUnchanged(t *testing.T) {
	eng := testEngine(t)
	state, _, err := eng.StartFlow(request.KindDemand)
	require.NoError(t, err)

	for _, input := range []string{"excavator", "Springfield", "dig foundation"} {
		_, err := eng.ProcessText(state, input)
		require.NoError(t, err)
	}
	require.Equal(t, "budget", state.CurrentStepID)
	collectedBefore := len(state.Collected)

	outcome, err := eng.ProcessText(state, "abc")
	require.NoError(t, err)
	assert.Equal(t, OutcomeValidationError, outcome.Kind)
	assert.Equal(t, "Please enter a number.", outcome.Message)

	// Same step, same fields, not released
	assert.Equal(t, "budget", state.CurrentStepID)
	assert.Len(t, state.Collected, collectedBefore)
	assert.NotContains(t, state.Collected, request.FieldBudget)
	assert.False(t, state.Released())

	// The same step accepts a valid retry
	outcome, err = eng.ProcessText(state, "500")
	require.NoError(t, err)
	assert.Equal(t, OutcomeNextPrompt, outcome.Kind)
	assert.Equal(t, "work_duration", state.CurrentStepID)
}

func TestValidationMessages(t *testing.T) {
	tests := []struct {
		name  string
		kind  request.Kind
		walk  []string // answers up to the step under test
		input string
		want  string
	}{
		{
			name:  "empty text",
			kind:  request.KindDemand,
			input: "   ",
			want:  "Please enter a value.",
		},
		{
			name:  "non-numeric decimal",
			kind:  request.KindDemand,
			walk:  []string{"excavator", "Springfield", "dig foundation"},
			input: "abc",
			want:  "Please enter a number.",
		},
		{
			name:  "negative decimal",
			kind:  request.KindDemand,
			walk:  []string{"excavator", "Springfield", "dig foundation"},
			input: "-1",
			want:  "Please enter a number of at least 0.",
		},
		{
			name:  "fractional integer",
			kind:  request.KindSupply,
			walk:  []string{"Crane 25t", "Capital City"},
			input: "2.5",
			want:  "Please enter a whole number.",
		},
		{
			name:  "negative integer",
			kind:  request.KindSupply,
			walk:  []string{"Crane 25t", "Capital City"},
			input: "-3",
			want:  "Please enter a number of at least 0.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := testEngine(t)
			state, _, err := eng.StartFlow(tt.kind)
			require.NoError(t, err)
			for _, input := range tt.walk {
				_, err := eng.ProcessText(state, input)
				require.NoError(t, err)
			}

			outcome, err := eng.ProcessText(state, tt.input)
			require.NoError(t, err)
			assert.Equal(t, OutcomeValidationError, outcome.Kind)
			assert.Equal(t, tt.want, outcome.Message)
		})
	}
}

func TestTextInputTrimmed(t *testing.T) {
	eng := testEngine(t)
	state, _, err := eng.StartFlow(request.KindDemand)
	require.NoError(t, err)

	_, err = eng.ProcessText(state, "  excavator  ")
	require.NoError(t, err)

	got, ok := state.Collected.Text(request.FieldEquipmentType)
	require.True(t, ok)
	assert.Equal(t, "excavator", got)
}

func TestUnknownChoiceToken(t *testing.T) {
	eng := testEngine(t)
	state, _, err := eng.StartFlow(request.KindDemand)
	require.NoError(t, err)

	for _, input := range []string{"excavator", "Springfield", "dig foundation", "500", "3 days"} {
		_, err := eng.ProcessText(state, input)
		require.NoError(t, err)
	}

	outcome, err := eng.ProcessChoice(state, "contact_fax")
	require.NoError(t, err)
	assert.Equal(t, OutcomeValidationError, outcome.Kind)
	assert.Equal(t, "Please choose one of the offered options.", outcome.Message)
	assert.Equal(t, "contact_preference", state.CurrentStepID)
	assert.False(t, state.Released())

	outcome, err = eng.ProcessChoice(state, "contact_call")
	require.NoError(t, err)
	assert.Equal(t, OutcomeCompleted, outcome.Kind)
}

func TestWrongInputMode(t *testing.T) {
	eng := testEngine(t)
	state, _, err := eng.StartFlow(request.KindDemand)
	require.NoError(t, err)

	// Choice call on a text step
	_, err = eng.ProcessChoice(state, "contact_message")
	require.Error(t, err)
	assert.True(t, IsWrongInputMode(err))
	assert.Equal(t, "equipment_type", state.CurrentStepID)

	// The state survives a wrong-mode call
	for _, input := range []string{"excavator", "Springfield", "dig foundation", "500", "3 days"} {
		_, err := eng.ProcessText(state, input)
		require.NoError(t, err)
	}

	// Text call on a choice step
	_, err = eng.ProcessText(state, "call me")
	require.Error(t, err)
	assert.True(t, IsWrongInputMode(err))
	assert.Equal(t, "contact_preference", state.CurrentStepID)
	assert.NotContains(t, state.Collected, request.FieldContactPreference)
}

func TestReleasedStateRejected(t *testing.T) {
	eng := testEngine(t)
	state, _, err := eng.StartFlow(request.KindSupply)
	require.NoError(t, err)

	for _, input := range []string{"Excavator JCB", "Springfield", "7", "50"} {
		_, err := eng.ProcessText(state, input)
		require.NoError(t, err)
	}
	outcome, err := eng.ProcessChoice(state, "contact_call")
	require.NoError(t, err)
	require.Equal(t, OutcomeCompleted, outcome.Kind)

	_, err = eng.ProcessText(state, "more text")
	require.Error(t, err)
	assert.True(t, IsStateReleased(err))

	_, err = eng.ProcessChoice(state, "contact_call")
	require.Error(t, err)
	assert.True(t, IsStateReleased(err))
}

func TestAbandon(t *testing.T) {
	eng := testEngine(t)
	state, _, err := eng.StartFlow(request.KindDemand)
	require.NoError(t, err)

	_, err = eng.ProcessText(state, "excavator")
	require.NoError(t, err)

	eng.Abandon(state)
	assert.True(t, state.Released())

	_, err = eng.ProcessText(state, "Springfield")
	require.Error(t, err)
	assert.True(t, IsStateReleased(err))

	// Idempotent
	eng.Abandon(state)
	assert.True(t, state.Released())

	// Nil state is a no-op
	eng.Abandon(nil)
}

func TestProcessNilState(t *testing.T) {
	eng := testEngine(t)

	_, err := eng.ProcessText(nil, "excavator")
	require.Error(t, err)
	assert.True(t, IsStateReleased(err))
}

func TestCurrentStep(t *testing.T) {
	eng := testEngine(t)
	state, _, err := eng.StartFlow(request.KindSupply)
	require.NoError(t, err)

	step, ok := eng.CurrentStep(state)
	require.True(t, ok)
	assert.Equal(t, "available_equipment", step.ID)
	assert.False(t, step.IsChoice())

	eng.Abandon(state)
	_, ok = eng.CurrentStep(state)
	assert.False(t, ok)
}

func TestIndependentFlows(t *testing.T) {
	eng := testEngine(t)

	demand, _, err := eng.StartFlow(request.KindDemand)
	require.NoError(t, err)
	supply, _, err := eng.StartFlow(request.KindSupply)
	require.NoError(t, err)

	assert.NotEqual(t, demand.Token, supply.Token)

	_, err = eng.ProcessText(demand, "excavator")
	require.NoError(t, err)

	// The supply flow is untouched by the demand flow's progress.
	assert.Equal(t, "available_equipment", supply.CurrentStepID)
	assert.Empty(t, supply.Collected)
}

func TestStaleStepID(t *testing.T) {
	eng := testEngine(t)
	state, _, err := eng.StartFlow(request.KindDemand)
	require.NoError(t, err)

	state.CurrentStepID = "removed_step"
	_, err = eng.ProcessText(state, "excavator")
	require.Error(t, err)

	var fe *FlowError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, ErrCodeUnknownStep, fe.Code)
}

func TestStartFlowChoiceEntry(t *testing.T) {
	// A graph may open with a choice step; StartFlow then returns the
	// token list immediately.
	g, err := flow.New(request.KindDemand, "pick", []flow.Step{
		{ID: "pick", Field: "contact_preference", Prompt: "Pick one", Type: flow.TypeChoice,
			Options: []flow.ChoiceOption{
				{Token: "a", Value: "first", Next: flow.Terminal},
			}},
	})
	require.NoError(t, err)

	eng := New(flow.Set{request.KindDemand: g}, WithTokenGenerator(NewFixedTokens("flow-1")))
	state, outcome, err := eng.StartFlow(request.KindDemand)
	require.NoError(t, err)
	assert.Equal(t, OutcomeAwaitingChoice, outcome.Kind)
	assert.Equal(t, []string{"a"}, outcome.Tokens)

	done, err := eng.ProcessChoice(state, "a")
	require.NoError(t, err)
	assert.Equal(t, OutcomeCompleted, done.Kind)
}
