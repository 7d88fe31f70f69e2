package flow

import (
	"fmt"

	"github.com/roach88/rigmatch/internal/request"
)

// Validation error codes (E200-E219)
const (
	ErrNoSteps            = "E200" // graph has no steps
	ErrEntryMissing       = "E201" // entry step not defined
	ErrDuplicateStep      = "E202" // duplicate step ID
	ErrDuplicateField     = "E203" // two steps populate the same field
	ErrUnknownTarget      = "E204" // next points at an undefined step
	ErrInvalidType        = "E205" // unknown value type
	ErrChoiceNoOptions    = "E206" // choice step without options
	ErrChoiceFreeNext     = "E207" // choice step with a free-text next
	ErrDuplicateToken     = "E208" // duplicate option token
	ErrCycle              = "E209" // step reachable from itself
	ErrUnreachable        = "E210" // step not reachable from entry
	ErrConstraintMismatch = "E211" // non_negative on a non-numeric step
)

// ValidationError reports one structural problem in a graph.
type ValidationError struct {
	Kind    request.Kind `json:"kind"`
	StepID  string       `json:"step_id,omitempty"`
	Code    string       `json:"code"`
	Message string       `json:"message"`
}

func (e ValidationError) Error() string {
	if e.StepID != "" {
		return fmt.Sprintf("[%s] %s flow, step %q: %s", e.Code, e.Kind, e.StepID, e.Message)
	}
	return fmt.Sprintf("[%s] %s flow: %s", e.Code, e.Kind, e.Message)
}

// New builds a Graph from steps, validating its structure. The steps
// slice is in declaration order; the entry must name one of them.
//
// All structural errors are collected before returning (not fail-fast),
// so a flow author sees every problem at once.
func New(kind request.Kind, entry string, steps []Step) (*Graph, error) {
	errs := validate(kind, entry, steps)
	if len(errs) > 0 {
		return nil, errorList(errs)
	}

	g := &Graph{
		kind:  kind,
		entry: entry,
		steps: make(map[string]*Step, len(steps)),
		order: make([]string, 0, len(steps)),
	}
	for i := range steps {
		s := steps[i]
		g.steps[s.ID] = &s
		g.order = append(g.order, s.ID)
	}
	return g, nil
}

// errorList joins validation errors into a single error value.
func errorList(errs []ValidationError) error {
	joined := make([]error, len(errs))
	for i, e := range errs {
		joined[i] = e
	}
	return fmt.Errorf("invalid flow definition: %w", joinErrors(joined))
}

func joinErrors(errs []error) error {
	if len(errs) == 1 {
		return errs[0]
	}
	// errors.Join formatting is one-per-line which suits CLI output
	return fmt.Errorf("%d problems: %w", len(errs), combine(errs))
}

func combine(errs []error) error {
	err := errs[0]
	for _, e := range errs[1:] {
		err = fmt.Errorf("%w; %w", err, e)
	}
	return err
}

func validate(kind request.Kind, entry string, steps []Step) []ValidationError {
	var errs []ValidationError

	if len(steps) == 0 {
		return append(errs, ValidationError{
			Kind: kind, Code: ErrNoSteps, Message: "graph has no steps",
		})
	}

	byID := make(map[string]*Step, len(steps))
	fields := make(map[string]string, len(steps))
	for i := range steps {
		s := &steps[i]

		if _, dup := byID[s.ID]; dup {
			errs = append(errs, ValidationError{
				Kind: kind, StepID: s.ID, Code: ErrDuplicateStep,
				Message: "step ID declared twice",
			})
			continue
		}
		byID[s.ID] = s

		if prev, dup := fields[s.Field]; dup {
			errs = append(errs, ValidationError{
				Kind: kind, StepID: s.ID, Code: ErrDuplicateField,
				Message: fmt.Sprintf("field %q already populated by step %q", s.Field, prev),
			})
		} else {
			fields[s.Field] = s.ID
		}

		if !s.Type.Valid() {
			errs = append(errs, ValidationError{
				Kind: kind, StepID: s.ID, Code: ErrInvalidType,
				Message: fmt.Sprintf("unknown value type %q", s.Type),
			})
		}

		if s.NonNegative && s.Type != TypeInteger && s.Type != TypeDecimal {
			errs = append(errs, ValidationError{
				Kind: kind, StepID: s.ID, Code: ErrConstraintMismatch,
				Message: "non_negative is only valid on integer and decimal steps",
			})
		}

		if s.Type == TypeChoice {
			if len(s.Options) == 0 {
				errs = append(errs, ValidationError{
					Kind: kind, StepID: s.ID, Code: ErrChoiceNoOptions,
					Message: "choice step needs at least one option",
				})
			}
			if s.Next != Terminal {
				errs = append(errs, ValidationError{
					Kind: kind, StepID: s.ID, Code: ErrChoiceFreeNext,
					Message: "choice step resolves next per option, not via free-text next",
				})
			}
			seen := make(map[string]bool, len(s.Options))
			for _, opt := range s.Options {
				if seen[opt.Token] {
					errs = append(errs, ValidationError{
						Kind: kind, StepID: s.ID, Code: ErrDuplicateToken,
						Message: fmt.Sprintf("option token %q declared twice", opt.Token),
					})
				}
				seen[opt.Token] = true
			}
		}
	}

	if _, ok := byID[entry]; !ok {
		errs = append(errs, ValidationError{
			Kind: kind, Code: ErrEntryMissing,
			Message: fmt.Sprintf("entry step %q is not defined", entry),
		})
	}

	// Check next targets
	for _, s := range byID {
		for _, target := range nextTargets(s) {
			if target == Terminal {
				continue
			}
			if _, ok := byID[target]; !ok {
				errs = append(errs, ValidationError{
					Kind: kind, StepID: s.ID, Code: ErrUnknownTarget,
					Message: fmt.Sprintf("next step %q is not defined", target),
				})
			}
		}
	}

	// Structural checks below assume targets resolve
	if len(errs) > 0 {
		return errs
	}

	errs = append(errs, checkCycles(kind, byID)...)
	errs = append(errs, checkReachable(kind, entry, byID, steps)...)
	return errs
}

// nextTargets returns every step ID a step can advance to.
func nextTargets(s *Step) []string {
	if s.Type == TypeChoice {
		targets := make([]string, len(s.Options))
		for i, opt := range s.Options {
			targets[i] = opt.Next
		}
		return targets
	}
	return []string{s.Next}
}

// checkCycles runs a DFS with colors to find any step reachable from
// itself. A step graph must be a DAG: a flow that can revisit a step
// would never terminate.
func checkCycles(kind request.Kind, byID map[string]*Step) []ValidationError {
	const (
		white = 0 // unvisited
		gray  = 1 // on current path
		black = 2 // finished
	)
	color := make(map[string]int, len(byID))

	var errs []ValidationError
	var visit func(id string)
	visit = func(id string) {
		color[id] = gray
		for _, target := range nextTargets(byID[id]) {
			if target == Terminal {
				continue
			}
			switch color[target] {
			case white:
				visit(target)
			case gray:
				errs = append(errs, ValidationError{
					Kind: kind, StepID: target, Code: ErrCycle,
					Message: "step is reachable from itself",
				})
			}
		}
		color[id] = black
	}

	for id := range byID {
		if color[id] == white {
			visit(id)
		}
	}
	return errs
}

// checkReachable verifies every declared step is reachable from entry.
// Unreachable steps are authoring mistakes: their fields would be
// missing from every completed record.
func checkReachable(kind request.Kind, entry string, byID map[string]*Step, declared []Step) []ValidationError {
	reached := make(map[string]bool, len(byID))
	stack := []string{entry}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if reached[id] {
			continue
		}
		reached[id] = true
		for _, target := range nextTargets(byID[id]) {
			if target != Terminal && !reached[target] {
				stack = append(stack, target)
			}
		}
	}

	var errs []ValidationError
	for _, s := range declared {
		if !reached[s.ID] {
			errs = append(errs, ValidationError{
				Kind: kind, StepID: s.ID, Code: ErrUnreachable,
				Message: "step is not reachable from the entry step",
			})
		}
	}
	return errs
}
