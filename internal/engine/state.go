package engine

import (
	"sync"

	"github.com/google/uuid"

	"github.com/roach88/rigmatch/internal/request"
)

// FlowState is the transient progress marker for one in-progress
// intake conversation.
//
// A FlowState is owned exclusively by the conversation that created
// it: the engine never shares it, and correctness depends only on the
// caller not issuing concurrent calls against the same state. It is
// spent (released) on completion or abandonment; every later call on
// it fails with ErrCodeStateReleased.
type FlowState struct {
	// Token correlates the conversation in logs. UUIDv7 in
	// production, so tokens sort by start time.
	Token string

	// Kind is the request kind this flow collects.
	Kind request.Kind

	// CurrentStepID is the step awaiting input.
	CurrentStepID string

	// Collected maps field name → value for every step answered so
	// far. Insertion order is irrelevant.
	Collected request.Fields

	released bool
}

// Released reports whether the state has been completed or abandoned.
func (s *FlowState) Released() bool { return s.released }

// TokenGenerator generates flow-state tokens.
// Implemented by UUIDv7Tokens (production) and FixedTokens (tests).
type TokenGenerator interface {
	Generate() string
}

// UUIDv7Tokens generates time-sortable UUIDv7 flow tokens.
//
// UUIDv7 embeds a timestamp in the most significant bits, making
// tokens sortable by creation time, which is helpful when reading
// interleaved conversation logs.
//
// Thread-safety: UUIDv7Tokens is stateless and safe for concurrent use.
type UUIDv7Tokens struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
// Panics if UUID generation fails (should never happen in practice).
func (g UUIDv7Tokens) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedTokens returns predetermined flow tokens for testing. This
// keeps transcripts deterministic for golden file comparison.
//
// Thread-safety: FixedTokens is safe for concurrent use via internal
// mutex.
type FixedTokens struct {
	mu     sync.Mutex
	tokens []string
	idx    int
}

// NewFixedTokens creates a generator that returns tokens in order.
//
// Example:
//
//	gen := NewFixedTokens("flow-1", "flow-2")
//	gen.Generate() // "flow-1"
//	gen.Generate() // "flow-2"
//	gen.Generate() // panic: all tokens exhausted
func NewFixedTokens(tokens ...string) *FixedTokens {
	return &FixedTokens{tokens: tokens}
}

// Generate returns the next predetermined token.
//
// Panics if all tokens have been consumed. Fail-fast to catch test
// misconfiguration (test started more flows than expected).
func (g *FixedTokens) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.tokens) {
		panic("FixedTokens: all tokens exhausted")
	}
	token := g.tokens[g.idx]
	g.idx++
	return token
}
