package engine

import "github.com/roach88/rigmatch/internal/request"

// OutcomeKind tags the result of one engine call.
type OutcomeKind int

const (
	// OutcomeNextPrompt means the input was accepted and the flow is
	// waiting on free-form input for the next step.
	OutcomeNextPrompt OutcomeKind = iota

	// OutcomeAwaitingChoice means the flow is waiting on one of an
	// enumerated set of tokens.
	OutcomeAwaitingChoice

	// OutcomeCompleted means the final step was answered; the state is
	// released and Collected holds the full field set.
	OutcomeCompleted

	// OutcomeValidationError means the input was rejected; the state
	// is unchanged and the same step should be re-prompted.
	OutcomeValidationError
)

// String returns the wire name of the outcome kind.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeNextPrompt:
		return "next_prompt"
	case OutcomeAwaitingChoice:
		return "awaiting_choice"
	case OutcomeCompleted:
		return "completed"
	case OutcomeValidationError:
		return "validation_error"
	}
	return "unknown"
}

// Outcome is the tagged result of StartFlow, ProcessText, or
// ProcessChoice. Which fields are set depends on Kind:
//
//   - OutcomeNextPrompt: Prompt
//   - OutcomeAwaitingChoice: Prompt, Tokens
//   - OutcomeCompleted: Collected
//   - OutcomeValidationError: Message
type Outcome struct {
	Kind OutcomeKind

	// Prompt is the question for the step now awaiting input.
	Prompt string

	// Tokens are the valid choice tokens, in declaration order.
	Tokens []string

	// Message is the re-prompt message for a rejected input.
	Message string

	// Collected is the full field map of a completed flow.
	Collected request.Fields
}

func nextPrompt(prompt string) Outcome {
	return Outcome{Kind: OutcomeNextPrompt, Prompt: prompt}
}

func awaitingChoice(prompt string, tokens []string) Outcome {
	return Outcome{Kind: OutcomeAwaitingChoice, Prompt: prompt, Tokens: tokens}
}

func completed(fields request.Fields) Outcome {
	return Outcome{Kind: OutcomeCompleted, Collected: fields}
}

func validationError(msg string) Outcome {
	return Outcome{Kind: OutcomeValidationError, Message: msg}
}
