package groups

import (
	"context"
	"errors"
	"sync"
)

// ErrViewStateNotFound is returned by stores that hold nothing for a viewer.
var ErrViewStateNotFound = errors.New("groups: view state not found")

// InMemoryViewStateStore keeps per-viewer view state in memory.
type InMemoryViewStateStore struct {
	mu     sync.RWMutex
	states map[string]ViewState
}

// NewInMemoryViewStateStore builds an empty store.
func NewInMemoryViewStateStore() *InMemoryViewStateStore {
	return &InMemoryViewStateStore{states: make(map[string]ViewState)}
}

// ViewState returns the stored state, or ErrViewStateNotFound.
func (s *InMemoryViewStateStore) ViewState(_ context.Context, viewer ViewerContext) (ViewState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.states[viewer.UserID]
	if !ok {
		return ViewState{}, ErrViewStateNotFound
	}
	return state.Clone(), nil
}

// SaveViewState replaces the viewer's state.
func (s *InMemoryViewStateStore) SaveViewState(_ context.Context, viewer ViewerContext, state ViewState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[viewer.UserID] = state.Clone()
	return nil
}
