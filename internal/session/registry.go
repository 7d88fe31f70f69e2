// Package session maps conversation identifiers to in-progress flow
// states on behalf of a transport layer.
//
// The engine itself never stores state between calls; the transport
// owns the session lifetime and must remove entries on completion,
// abandonment, or its own idle timeout. The registry only provides
// the keyed map, guarded for transports that serve many conversations
// from multiple goroutines. Calls against any single FlowState must
// still be serialized by its owning conversation.
package session

import (
	"sync"

	"github.com/roach88/rigmatch/internal/engine"
)

// Registry is a conversation-id → FlowState map.
// The zero value is not usable; call NewRegistry.
type Registry struct {
	mu    sync.Mutex
	flows map[string]*engine.FlowState
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{flows: make(map[string]*engine.FlowState)}
}

// Put stores the state for a conversation, replacing any previous
// entry (starting a new intake implicitly abandons the old one; the
// transport abandons the previous state before replacing it).
func (r *Registry) Put(conversationID string, state *engine.FlowState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flows[conversationID] = state
}

// Get returns the state for a conversation, if one is in progress.
func (r *Registry) Get(conversationID string) (*engine.FlowState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	state, ok := r.flows[conversationID]
	return state, ok
}

// Remove deletes the entry for a conversation and returns the removed
// state, if any. Called on completion and abandonment.
func (r *Registry) Remove(conversationID string) (*engine.FlowState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	state, ok := r.flows[conversationID]
	delete(r.flows, conversationID)
	return state, ok
}

// Len returns the number of in-progress conversations.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.flows)
}
