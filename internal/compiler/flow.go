// Package compiler turns CUE flow definitions into validated step
// graphs. Uses the CUE SDK's Go API directly (not CLI subprocess).
package compiler

import (
	_ "embed"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/rigmatch/internal/flow"
	"github.com/roach88/rigmatch/internal/request"
)

//go:embed defs/flows.cue
var defaultDefs []byte

// CompileError reports a problem in a CUE flow definition.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError converts a CUE error into a CompileError with position.
func formatCUEError(err error) error {
	pos := token.NoPos
	if errs := cueerrors.Errors(err); len(errs) > 0 {
		pos = errs[0].Position()
	}
	return &CompileError{
		Field:   "cue",
		Message: cueerrors.Details(err, nil),
		Pos:     pos,
	}
}

// DefaultFlows compiles the flow definitions embedded in the binary:
// the canonical demand and supply intake flows.
func DefaultFlows() (flow.Set, error) {
	return CompileSource(defaultDefs)
}

// CompileSource compiles CUE source into a graph set. Used by the CLI
// to load flow definitions from a file.
func CompileSource(src []byte) (flow.Set, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src)
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return CompileFlows(v)
}

// CompileFlows parses a CUE value holding a `flows` struct into a
// graph set. Each key under `flows` is a request kind; unknown kinds
// are rejected so a typo cannot silently register an unreachable flow.
// Every graph is structurally validated before being returned.
func CompileFlows(v cue.Value) (flow.Set, error) {
	flowsVal := v.LookupPath(cue.ParsePath("flows"))
	if !flowsVal.Exists() {
		return nil, &CompileError{
			Field:   "flows",
			Message: "flows struct is required",
			Pos:     v.Pos(),
		}
	}

	iter, err := flowsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	set := make(flow.Set)
	for iter.Next() {
		kind := request.Kind(iter.Selector().String())
		if !kind.Valid() {
			return nil, &CompileError{
				Field:   "flows",
				Message: fmt.Sprintf("unknown request kind %q", kind),
				Pos:     iter.Value().Pos(),
			}
		}

		g, err := compileFlow(kind, iter.Value())
		if err != nil {
			return nil, err
		}
		set[kind] = g
	}

	if len(set) == 0 {
		return nil, &CompileError{
			Field:   "flows",
			Message: "at least one flow is required",
			Pos:     flowsVal.Pos(),
		}
	}

	return set, nil
}

// compileFlow parses one flow struct and validates it via flow.New.
func compileFlow(kind request.Kind, v cue.Value) (*flow.Graph, error) {
	entry, err := requiredString(v, "entry")
	if err != nil {
		return nil, err
	}

	stepsVal := v.LookupPath(cue.ParsePath("steps"))
	if !stepsVal.Exists() {
		return nil, &CompileError{
			Field:   "steps",
			Message: "steps list is required",
			Pos:     v.Pos(),
		}
	}

	stepIter, err := stepsVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var steps []flow.Step
	for stepIter.Next() {
		s, err := compileStep(stepIter.Value())
		if err != nil {
			return nil, err
		}
		steps = append(steps, s)
	}

	g, err := flow.New(kind, entry, steps)
	if err != nil {
		return nil, fmt.Errorf("compile %s flow: %w", kind, err)
	}
	return g, nil
}

func compileStep(v cue.Value) (flow.Step, error) {
	var s flow.Step
	var err error

	if s.ID, err = requiredString(v, "id"); err != nil {
		return s, err
	}
	if s.Field, err = requiredString(v, "field"); err != nil {
		return s, err
	}
	if s.Prompt, err = requiredString(v, "prompt"); err != nil {
		return s, err
	}

	typ, err := requiredString(v, "type")
	if err != nil {
		return s, err
	}
	s.Type = flow.ValueType(typ)

	if s.Next, err = optionalString(v, "next"); err != nil {
		return s, err
	}

	nn := v.LookupPath(cue.ParsePath("non_negative"))
	if nn.Exists() {
		if s.NonNegative, err = nn.Bool(); err != nil {
			return s, formatCUEError(err)
		}
	}

	optsVal := v.LookupPath(cue.ParsePath("options"))
	if optsVal.Exists() {
		optIter, err := optsVal.List()
		if err != nil {
			return s, formatCUEError(err)
		}
		for optIter.Next() {
			opt, err := compileOption(optIter.Value())
			if err != nil {
				return s, err
			}
			s.Options = append(s.Options, opt)
		}
	}

	return s, nil
}

func compileOption(v cue.Value) (flow.ChoiceOption, error) {
	var opt flow.ChoiceOption
	var err error

	if opt.Token, err = requiredString(v, "token"); err != nil {
		return opt, err
	}
	if opt.Value, err = requiredString(v, "value"); err != nil {
		return opt, err
	}
	if opt.Next, err = optionalString(v, "next"); err != nil {
		return opt, err
	}
	return opt, nil
}

func requiredString(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", &CompileError{
			Field:   field,
			Message: field + " is required",
			Pos:     v.Pos(),
		}
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

func optionalString(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", nil
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}
