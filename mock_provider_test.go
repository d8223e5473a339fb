package swarm

import (
	"context"
	"fmt"
	"sync"

	"github.com/zoobzio/zyn"
)

// scriptProvider replies with a fixed script, repeating the last entry
// once exhausted. Individual calls can be made to fail.
type scriptProvider struct {
	mu      sync.Mutex
	replies []string
	failAt  map[int]error
	calls   [][]zyn.Message
	n       int
}

func newScriptProvider(replies ...string) *scriptProvider {
	return &scriptProvider{
		replies: replies,
		failAt:  make(map[int]error),
	}
}

func (p *scriptProvider) failOn(call int, err error) *scriptProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failAt[call] = err
	return p
}

func (p *scriptProvider) Call(_ context.Context, messages []zyn.Message, _ float32) (*zyn.ProviderResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.n++
	recorded := make([]zyn.Message, len(messages))
	copy(recorded, messages)
	p.calls = append(p.calls, recorded)

	if err, ok := p.failAt[p.n]; ok {
		return nil, err
	}
	if len(p.replies) == 0 {
		return nil, fmt.Errorf("script provider: no replies configured")
	}

	idx := p.n - 1
	if idx >= len(p.replies) {
		idx = len(p.replies) - 1
	}
	return &zyn.ProviderResponse{
		Content: p.replies[idx],
		Usage: zyn.TokenUsage{
			Prompt:     10,
			Completion: 20,
			Total:      30,
		},
	}, nil
}

func (p *scriptProvider) Name() string {
	return "script"
}

func (p *scriptProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.n
}

func (p *scriptProvider) call(i int) []zyn.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[i]
}

// mustThought builds a thought or fails the test.
func mustThought(t interface{ Fatalf(string, ...any) }, narrative string, relevance float64, seed bool) Thought {
	thought, err := NewThought(narrative, "test thought", nil, nil, relevance, seed)
	if err != nil {
		t.Fatalf("failed to create thought: %v", err)
	}
	return thought
}
