// Package swarmtest provides test utilities for swarm.
package swarmtest

import (
	"context"
	"fmt"
	"sync"

	swarm "github.com/proitservices/swarm-agents"
	"github.com/zoobzio/zyn"
)

// ScriptProvider implements swarm.Provider with a scripted sequence of
// replies. Each call consumes the next entry; once the script is
// exhausted the final entry repeats. Calls are recorded for inspection.
type ScriptProvider struct {
	mu      sync.Mutex
	script  []string
	failAt  map[int]error
	calls   [][]zyn.Message
	callNum int
}

// NewScriptProvider creates a provider that replies with the given
// script in order.
func NewScriptProvider(script ...string) *ScriptProvider {
	return &ScriptProvider{
		script: script,
		failAt: make(map[int]error),
	}
}

// FailAt makes the nth call (1-based) return err instead of a reply.
func (p *ScriptProvider) FailAt(n int, err error) *ScriptProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failAt[n] = err
	return p
}

// Call implements swarm.Provider.
func (p *ScriptProvider) Call(_ context.Context, messages []zyn.Message, _ float32) (*zyn.ProviderResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.callNum++
	recorded := make([]zyn.Message, len(messages))
	copy(recorded, messages)
	p.calls = append(p.calls, recorded)

	if err, ok := p.failAt[p.callNum]; ok {
		return nil, err
	}
	if len(p.script) == 0 {
		return nil, fmt.Errorf("script provider: no replies configured")
	}

	idx := p.callNum - 1
	if idx >= len(p.script) {
		idx = len(p.script) - 1
	}
	content := p.script[idx]
	return &zyn.ProviderResponse{
		Content: content,
		Usage: zyn.TokenUsage{
			Prompt:     10,
			Completion: 20,
			Total:      30,
		},
	}, nil
}

// Name implements swarm.Provider.
func (p *ScriptProvider) Name() string {
	return "script"
}

// Calls returns the recorded message batches, one per provider call.
func (p *ScriptProvider) Calls() [][]zyn.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([][]zyn.Message, len(p.calls))
	copy(out, p.calls)
	return out
}

// CallCount returns the number of provider calls made so far.
func (p *ScriptProvider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.callNum
}

// MockStore implements swarm.Store and counts checkpoints.
type MockStore struct {
	mu          sync.Mutex
	sessions    map[string]*swarm.SharedState
	checkpoints int
	resumeErr   error
	saveErr     error
}

// NewMockStore creates an empty mock store.
func NewMockStore() *MockStore {
	return &MockStore{sessions: make(map[string]*swarm.SharedState)}
}

// WithResumeError makes Resume fail.
func (s *MockStore) WithResumeError(err error) *MockStore {
	s.resumeErr = err
	return s
}

// WithCheckpointError makes Checkpoint fail.
func (s *MockStore) WithCheckpointError(err error) *MockStore {
	s.saveErr = err
	return s
}

// Resume implements swarm.Store.
func (s *MockStore) Resume(_ context.Context, sessionID string) (*swarm.SharedState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.resumeErr != nil {
		return nil, s.resumeErr
	}
	if state, ok := s.sessions[sessionID]; ok {
		return state.Clone(), nil
	}
	return swarm.NewSharedState(), nil
}

// Checkpoint implements swarm.Store.
func (s *MockStore) Checkpoint(_ context.Context, sessionID string, state *swarm.SharedState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.checkpoints++
	s.sessions[sessionID] = state.Clone()
	return nil
}

// Checkpoints returns the number of successful checkpoints.
func (s *MockStore) Checkpoints() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checkpoints
}

// Latest returns the most recent snapshot for the session, if any.
func (s *MockStore) Latest(sessionID string) (*swarm.SharedState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.sessions[sessionID]
	if !ok {
		return nil, false
	}
	return state.Clone(), true
}
