// Package flow defines the step graph data model for guided intake.
//
// A graph is data, not control flow: each request kind's sequence of
// fields is declared once as a table of steps, each carrying a pointer
// to the next step (or a terminal marker). Adding, removing, or
// reordering a field is an edit to the flow definitions, not to engine
// code. The shipped graphs are strictly linear, but choice steps carry
// per-token next pointers so conditional branches are data additions.
package flow

import "github.com/roach88/rigmatch/internal/request"

// ValueType is the kind of input a step accepts.
type ValueType string

const (
	// TypeText accepts any free text.
	TypeText ValueType = "text"

	// TypeInteger accepts a base-10 integer.
	TypeInteger ValueType = "integer"

	// TypeDecimal accepts a decimal number.
	TypeDecimal ValueType = "decimal"

	// TypeChoice accepts only an enumerated token; free text is
	// rejected at the engine layer with a wrong-input-mode error.
	TypeChoice ValueType = "choice"
)

// Valid reports whether t is a known value type.
func (t ValueType) Valid() bool {
	switch t {
	case TypeText, TypeInteger, TypeDecimal, TypeChoice:
		return true
	}
	return false
}

// Terminal is the next-pointer value marking the end of a flow.
const Terminal = ""

// ChoiceOption is one enumerated answer for a choice step.
type ChoiceOption struct {
	// Token is the discrete input the transport sends (button
	// callback data).
	Token string

	// Value is what gets stored under the step's field name.
	Value string

	// Next is the step to advance to, or Terminal.
	Next string
}

// Step is one node in a step graph.
type Step struct {
	// ID uniquely identifies the step within its graph.
	ID string

	// Field is the field name this step populates.
	Field string

	// Prompt is the question shown to the user.
	Prompt string

	// Type determines parsing and which engine call is valid.
	Type ValueType

	// Next is the following step's ID, or Terminal. Unused for
	// choice steps, which resolve next per option.
	Next string

	// NonNegative rejects values below zero. Only meaningful for
	// integer and decimal steps.
	NonNegative bool

	// Options are the enumerated answers for a choice step.
	Options []ChoiceOption
}

// IsChoice reports whether the step accepts only enumerated tokens.
func (s *Step) IsChoice() bool { return s.Type == TypeChoice }

// Option returns the choice option for a token, if any.
func (s *Step) Option(token string) (ChoiceOption, bool) {
	for _, opt := range s.Options {
		if opt.Token == token {
			return opt, true
		}
	}
	return ChoiceOption{}, false
}

// Tokens returns the valid tokens of a choice step in declaration
// order. Returns nil for non-choice steps.
func (s *Step) Tokens() []string {
	if len(s.Options) == 0 {
		return nil
	}
	tokens := make([]string, len(s.Options))
	for i, opt := range s.Options {
		tokens[i] = opt.Token
	}
	return tokens
}

// Graph is an immutable intake flow for one request kind.
//
// Construct with New, which validates the structure. A validated graph
// is never mutated; the engine only reads it, so one Graph is safe to
// share across any number of concurrent flows.
type Graph struct {
	kind  request.Kind
	entry string
	steps map[string]*Step
	order []string // declaration order, for deterministic listing
}

// Kind returns the request kind this graph collects.
func (g *Graph) Kind() request.Kind { return g.kind }

// Entry returns the entry step's ID.
func (g *Graph) Entry() string { return g.entry }

// Step returns the step with the given ID, if it exists.
func (g *Graph) Step(id string) (*Step, bool) {
	s, ok := g.steps[id]
	return s, ok
}

// Len returns the number of steps in the graph.
func (g *Graph) Len() int { return len(g.steps) }

// Steps returns all steps in declaration order.
func (g *Graph) Steps() []*Step {
	out := make([]*Step, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.steps[id])
	}
	return out
}

// FieldNames returns the set of field names the graph collects, in
// declaration order. A completed flow's collected key set equals
// exactly this list.
func (g *Graph) FieldNames() []string {
	names := make([]string, 0, len(g.order))
	for _, id := range g.order {
		names = append(names, g.steps[id].Field)
	}
	return names
}

// Set is the registry of graphs keyed by request kind.
type Set map[request.Kind]*Graph

// Graph returns the graph registered for a kind, if any.
func (s Set) Graph(kind request.Kind) (*Graph, bool) {
	g, ok := s[kind]
	return g, ok
}
