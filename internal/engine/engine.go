// Package engine drives intake conversations through step graphs.
//
// The engine holds no mutable shared state: every call is a function
// of (FlowState, input) and mutates only the passed state, and only on
// success. Validation failures leave the state bitwise unchanged so
// the caller can re-prompt the same step. Flows for different
// conversations may therefore run fully in parallel; a single
// FlowState must be driven by one logical call sequence (the owning
// transport session serializes this).
package engine

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/roach88/rigmatch/internal/flow"
	"github.com/roach88/rigmatch/internal/request"
)

// Engine turns a stream of user inputs into one fully populated field
// map, or fails recoverably at any step.
type Engine struct {
	graphs   flow.Set
	tokenGen TokenGenerator
}

// Option allows configuration of engine parameters.
type Option func(*Engine)

// WithTokenGenerator overrides the flow token generator.
// Tests pass NewFixedTokens for deterministic transcripts.
func WithTokenGenerator(gen TokenGenerator) Option {
	return func(e *Engine) {
		e.tokenGen = gen
	}
}

// New creates an Engine over a validated graph set.
// Graphs are read-only; one Engine is safe for concurrent use across
// any number of distinct flows.
func New(graphs flow.Set, opts ...Option) *Engine {
	e := &Engine{
		graphs:   graphs,
		tokenGen: UUIDv7Tokens{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// StartFlow initializes a flow for the given kind and returns the new
// state plus the entry outcome (the first prompt, or the first choice
// prompt with its tokens if the graph opens with a choice step).
//
// Fails with ErrCodeUnknownKind if no graph is registered for kind.
func (e *Engine) StartFlow(kind request.Kind) (*FlowState, Outcome, error) {
	g, ok := e.graphs.Graph(kind)
	if !ok {
		return nil, Outcome{}, newUnknownKindError(kind)
	}

	state := &FlowState{
		Token:         e.tokenGen.Generate(),
		Kind:          kind,
		CurrentStepID: g.Entry(),
		Collected:     make(request.Fields),
	}

	entry, _ := g.Step(g.Entry()) // entry existence is graph-validated

	slog.Debug("flow started",
		"flow", state.Token,
		"kind", kind,
		"step", entry.ID,
	)

	if entry.Type == flow.TypeChoice {
		return state, awaitingChoice(entry.Prompt, entry.Tokens()), nil
	}
	return state, nextPrompt(entry.Prompt), nil
}

// ProcessText handles free-form input for the current step. Valid only
// when the step's type is text, integer, or decimal.
//
// Parse failure yields OutcomeValidationError with the state unchanged
// (same step, same collected fields) so the caller re-prompts
// identically - no partial mutation on failure. On success the value
// is stored and the flow advances.
//
// Calling ProcessText while the current step is a choice step is a
// fatal ErrCodeWrongInputMode: the caller must use ProcessChoice.
func (e *Engine) ProcessText(state *FlowState, rawInput string) (Outcome, error) {
	g, step, err := e.currentStep(state)
	if err != nil {
		return Outcome{}, err
	}

	if step.Type == flow.TypeChoice {
		return Outcome{}, newWrongInputModeError(state.Kind, step.ID, "a choice token, not free text")
	}

	value, msg := parseValue(step, rawInput)
	if msg != "" {
		slog.Debug("input rejected",
			"flow", state.Token,
			"step", step.ID,
			"reason", msg,
		)
		return validationError(msg), nil
	}

	state.Collected[step.Field] = value
	return e.advance(g, state, step.Next), nil
}

// ProcessChoice handles an enumerated token for the current step.
// Valid only when the step's type is choice.
//
// An unknown token yields OutcomeValidationError with the state
// unchanged. A recognized token stores the option's value under the
// step's field name and advances along the option's next pointer; in
// the shipped graphs choice steps are flow-terminal, so success yields
// OutcomeCompleted.
func (e *Engine) ProcessChoice(state *FlowState, token string) (Outcome, error) {
	g, step, err := e.currentStep(state)
	if err != nil {
		return Outcome{}, err
	}

	if step.Type != flow.TypeChoice {
		return Outcome{}, newWrongInputModeError(state.Kind, step.ID, "free text, not a choice token")
	}

	opt, ok := step.Option(token)
	if !ok {
		slog.Debug("choice rejected",
			"flow", state.Token,
			"step", step.ID,
			"token", token,
		)
		return validationError("Please choose one of the offered options."), nil
	}

	state.Collected[step.Field] = request.ChoiceValue(opt.Value)
	return e.advance(g, state, opt.Next), nil
}

// CurrentStep returns the step the state is waiting on, for transports
// that need to route input to the right call. Returns false for
// released states and stale step IDs.
func (e *Engine) CurrentStep(state *FlowState) (*flow.Step, bool) {
	_, step, err := e.currentStep(state)
	if err != nil {
		return nil, false
	}
	return step, true
}

// Abandon releases the state; no further calls are valid on it.
// Idempotent - abandoning a released state is a no-op.
func (e *Engine) Abandon(state *FlowState) {
	if state == nil || state.released {
		return
	}
	state.released = true
	slog.Debug("flow abandoned",
		"flow", state.Token,
		"kind", state.Kind,
		"step", state.CurrentStepID,
	)
}

// currentStep resolves the state's current step, guarding against
// released states and stale step IDs.
func (e *Engine) currentStep(state *FlowState) (*flow.Graph, *flow.Step, error) {
	if state == nil || state.released {
		var kind request.Kind
		if state != nil {
			kind = state.Kind
		}
		return nil, nil, newStateReleasedError(kind)
	}

	g, ok := e.graphs.Graph(state.Kind)
	if !ok {
		return nil, nil, newUnknownKindError(state.Kind)
	}

	step, ok := g.Step(state.CurrentStepID)
	if !ok {
		return nil, nil, &FlowError{
			Code:    ErrCodeUnknownStep,
			Message: "state points at a step the graph does not define",
			Kind:    state.Kind,
			StepID:  state.CurrentStepID,
		}
	}
	return g, step, nil
}

// advance moves the state along a next pointer and builds the outcome.
// Called only after the current step's value was stored.
func (e *Engine) advance(g *flow.Graph, state *FlowState, next string) Outcome {
	if next == flow.Terminal {
		state.released = true
		slog.Info("flow completed",
			"flow", state.Token,
			"kind", state.Kind,
			"fields", len(state.Collected),
		)
		return completed(state.Collected)
	}

	step, _ := g.Step(next) // target existence is graph-validated
	state.CurrentStepID = step.ID

	slog.Debug("flow advanced",
		"flow", state.Token,
		"kind", state.Kind,
		"step", step.ID,
	)

	if step.Type == flow.TypeChoice {
		return awaitingChoice(step.Prompt, step.Tokens())
	}
	return nextPrompt(step.Prompt)
}

// parseValue parses raw input per the step's value type. Returns the
// parsed value, or a non-empty re-prompt message on rejection.
func parseValue(step *flow.Step, raw string) (request.Value, string) {
	trimmed := strings.TrimSpace(raw)

	switch step.Type {
	case flow.TypeText:
		if trimmed == "" {
			return nil, "Please enter a value."
		}
		return request.TextValue(trimmed), ""

	case flow.TypeInteger:
		n, err := strconv.ParseInt(trimmed, 10, 64)
		if err != nil {
			return nil, "Please enter a whole number."
		}
		if step.NonNegative && n < 0 {
			return nil, "Please enter a number of at least 0."
		}
		return request.IntValue(n), ""

	case flow.TypeDecimal:
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return nil, "Please enter a number."
		}
		if step.NonNegative && f < 0 {
			return nil, "Please enter a number of at least 0."
		}
		return request.DecimalValue(f), ""
	}

	// Choice steps are rejected before parsing.
	return nil, "Please enter a value."
}
