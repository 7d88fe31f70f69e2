package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rigmatch/internal/request"
)

// linearSteps is a minimal valid three-step graph used as a base for
// the failure cases below.
func linearSteps() []Step {
	return []Step{
		{ID: "a", Field: "alpha", Prompt: "A?", Type: TypeText, Next: "b"},
		{ID: "b", Field: "beta", Prompt: "B?", Type: TypeDecimal, Next: "c", NonNegative: true},
		{ID: "c", Field: "gamma", Prompt: "C?", Type: TypeChoice, Options: []ChoiceOption{
			{Token: "yes", Value: "y", Next: Terminal},
			{Token: "no", Value: "n", Next: Terminal},
		}},
	}
}

func TestNewValidGraph(t *testing.T) {
	g, err := New(request.KindDemand, "a", linearSteps())
	require.NoError(t, err)

	assert.Equal(t, request.KindDemand, g.Kind())
	assert.Equal(t, "a", g.Entry())
	assert.Equal(t, 3, g.Len())
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, g.FieldNames())

	s, ok := g.Step("b")
	require.True(t, ok)
	assert.Equal(t, "beta", s.Field)
	assert.True(t, s.NonNegative)

	_, ok = g.Step("missing")
	assert.False(t, ok)

	steps := g.Steps()
	require.Len(t, steps, 3)
	assert.Equal(t, "a", steps[0].ID)
	assert.Equal(t, "c", steps[2].ID)
}

func TestStepChoiceAccessors(t *testing.T) {
	g, err := New(request.KindSupply, "a", linearSteps())
	require.NoError(t, err)

	choice, ok := g.Step("c")
	require.True(t, ok)
	assert.True(t, choice.IsChoice())
	assert.Equal(t, []string{"yes", "no"}, choice.Tokens())

	opt, ok := choice.Option("no")
	require.True(t, ok)
	assert.Equal(t, "n", opt.Value)
	assert.Equal(t, Terminal, opt.Next)

	_, ok = choice.Option("maybe")
	assert.False(t, ok)

	text, _ := g.Step("a")
	assert.False(t, text.IsChoice())
	assert.Nil(t, text.Tokens())
}

// assertCode checks that building a graph fails and the error mentions
// the expected validation code.
func assertCode(t *testing.T, code string, entry string, steps []Step) {
	t.Helper()
	_, err := New(request.KindDemand, entry, steps)
	require.Error(t, err)
	assert.Contains(t, err.Error(), code)
}

func TestNewNoSteps(t *testing.T) {
	assertCode(t, ErrNoSteps, "a", nil)
}

func TestNewEntryMissing(t *testing.T) {
	assertCode(t, ErrEntryMissing, "nope", linearSteps())
}

func TestNewDuplicateStep(t *testing.T) {
	steps := linearSteps()
	steps = append(steps, Step{ID: "a", Field: "delta", Type: TypeText, Next: Terminal})
	assertCode(t, ErrDuplicateStep, "a", steps)
}

func TestNewDuplicateField(t *testing.T) {
	steps := linearSteps()
	steps[1].Field = "alpha"
	assertCode(t, ErrDuplicateField, "a", steps)
}

func TestNewUnknownTarget(t *testing.T) {
	steps := linearSteps()
	steps[0].Next = "ghost"
	assertCode(t, ErrUnknownTarget, "a", steps)
}

func TestNewUnknownTargetInOption(t *testing.T) {
	steps := linearSteps()
	steps[2].Options[0].Next = "ghost"
	assertCode(t, ErrUnknownTarget, "a", steps)
}

func TestNewInvalidType(t *testing.T) {
	steps := linearSteps()
	steps[0].Type = ValueType("blob")
	assertCode(t, ErrInvalidType, "a", steps)
}

func TestNewChoiceNoOptions(t *testing.T) {
	steps := linearSteps()
	steps[2].Options = nil
	assertCode(t, ErrChoiceNoOptions, "a", steps)
}

func TestNewChoiceFreeNext(t *testing.T) {
	steps := linearSteps()
	steps[2].Next = "a"
	assertCode(t, ErrChoiceFreeNext, "a", steps)
}

func TestNewDuplicateToken(t *testing.T) {
	steps := linearSteps()
	steps[2].Options[1].Token = "yes"
	assertCode(t, ErrDuplicateToken, "a", steps)
}

func TestNewConstraintMismatch(t *testing.T) {
	steps := linearSteps()
	steps[0].NonNegative = true
	assertCode(t, ErrConstraintMismatch, "a", steps)
}

func TestNewCycle(t *testing.T) {
	steps := []Step{
		{ID: "a", Field: "alpha", Type: TypeText, Next: "b"},
		{ID: "b", Field: "beta", Type: TypeText, Next: "a"},
	}
	assertCode(t, ErrCycle, "a", steps)
}

func TestNewSelfLoop(t *testing.T) {
	steps := []Step{
		{ID: "a", Field: "alpha", Type: TypeText, Next: "a"},
	}
	assertCode(t, ErrCycle, "a", steps)
}

func TestNewUnreachable(t *testing.T) {
	steps := []Step{
		{ID: "a", Field: "alpha", Type: TypeText, Next: Terminal},
		{ID: "b", Field: "beta", Type: TypeText, Next: Terminal},
	}
	assertCode(t, ErrUnreachable, "a", steps)
}

func TestNewCollectsAllErrors(t *testing.T) {
	steps := linearSteps()
	steps[0].Type = ValueType("blob")
	steps[1].Field = "alpha"
	_, err := New(request.KindDemand, "a", steps)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrInvalidType)
	assert.Contains(t, err.Error(), ErrDuplicateField)
}

func TestValidationErrorFormat(t *testing.T) {
	withStep := ValidationError{
		Kind: request.KindDemand, StepID: "budget",
		Code: ErrUnknownTarget, Message: "next step \"ghost\" is not defined",
	}
	assert.Equal(t, `[E204] demand flow, step "budget": next step "ghost" is not defined`, withStep.Error())

	withoutStep := ValidationError{
		Kind: request.KindSupply, Code: ErrNoSteps, Message: "graph has no steps",
	}
	assert.Equal(t, "[E200] supply flow: graph has no steps", withoutStep.Error())
}

func TestSetLookup(t *testing.T) {
	g, err := New(request.KindDemand, "a", linearSteps())
	require.NoError(t, err)

	set := Set{request.KindDemand: g}
	got, ok := set.Graph(request.KindDemand)
	require.True(t, ok)
	assert.Same(t, g, got)

	_, ok = set.Graph(request.KindSupply)
	assert.False(t, ok)
}
