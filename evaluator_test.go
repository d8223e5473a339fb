package swarm

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/zoobzio/capitan"
	capitantesting "github.com/zoobzio/capitan/testing"
)

func TestClassifyResponse(t *testing.T) {
	tests := []struct {
		name     string
		reply    string
		score    float64
		decision Decision
	}{
		{"applicable keyword", "This is directly applicable to the question.", RelevantScore, DecisionInject},
		{"yes keyword", "Yes, it bears on the topic.", RelevantScore, DecisionInject},
		{"relevant keyword", "Clearly RELEVANT to the discussion.", RelevantScore, DecisionInject},
		{"supports keyword", "It supports the main claim.", RelevantScore, DecisionInject},
		{"no keywords", "This has nothing to do with the topic.", IrrelevantScore, DecisionReframe},
		{"mismatch keyword", "There is a mismatch with the core assumptions.", IrrelevantScore, DecisionGenerateNew},
		{"conflict keyword", "It conflicts with the established facts.", IrrelevantScore, DecisionGenerateNew},
		{"contradict keyword", "The claim would contradict the premise.", IrrelevantScore, DecisionGenerateNew},
		{"outdated keyword", "The information looks outdated.", IrrelevantScore, DecisionGenerateNew},
		{"mismatch never downgrades", "Yes, still relevant despite being outdated.", RelevantScore, DecisionInject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, decision := classifyResponse(tt.reply)
			if score != tt.score {
				t.Errorf("expected score %g, got %g", tt.score, score)
			}
			if decision != tt.decision {
				t.Errorf("expected decision %s, got %s", tt.decision, decision)
			}
		})
	}
}

func TestInjectionRequiresStrictlyAboveThreshold(t *testing.T) {
	origRelevant := RelevantScore
	defer func() { RelevantScore = origRelevant }()

	// A score exactly at the threshold stays out of the queue.
	RelevantScore = InjectionThreshold
	if _, decision := classifyResponse("yes"); decision == DecisionInject {
		t.Error("expected no injection at exactly the threshold")
	}

	RelevantScore = InjectionThreshold + 0.01
	if _, decision := classifyResponse("yes"); decision != DecisionInject {
		t.Error("expected injection just above the threshold")
	}
}

func TestAgentEvaluatorBuildsPrompt(t *testing.T) {
	provider := newScriptProvider("Yes, applicable.")
	evaluator := NewAgentEvaluator().WithProvider(provider)
	thought := mustThought(t, "Water boils at 100C at sea level.", 0.65, true)

	verdict, err := evaluator.Evaluate(context.Background(), thought, "Cooking pasta at altitude")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if verdict.Score != RelevantScore || verdict.Decision != DecisionInject {
		t.Errorf("unexpected verdict: %+v", verdict)
	}
	if verdict.Reasoning != "Yes, applicable." {
		t.Errorf("expected raw reply as reasoning, got %q", verdict.Reasoning)
	}

	msgs := provider.call(0)
	if len(msgs) != 2 {
		t.Fatalf("expected system+user messages, got %d", len(msgs))
	}
	if msgs[0].Role != RoleSystem || !strings.Contains(msgs[0].Content, thought.ID) {
		t.Error("expected system message to carry the serialized thought")
	}
	if msgs[1].Role != RoleUser || msgs[1].Content != "Cooking pasta at altitude" {
		t.Errorf("expected evaluation context as user turn, got %+v", msgs[1])
	}
}

func TestAgentEvaluatorEmptyResponse(t *testing.T) {
	provider := newScriptProvider("   \n  ")
	evaluator := NewAgentEvaluator().WithProvider(provider)

	_, err := evaluator.Evaluate(context.Background(), mustThought(t, "content", 0.5, false), "context")
	if !errors.Is(err, ErrNoEvaluation) {
		t.Fatalf("expected ErrNoEvaluation, got %v", err)
	}
}

func TestAgentEvaluatorNoProvider(t *testing.T) {
	evaluator := NewAgentEvaluator()
	_, err := evaluator.Evaluate(context.Background(), mustThought(t, "content", 0.5, false), "context")
	if !errors.Is(err, ErrNoProvider) {
		t.Fatalf("expected ErrNoProvider, got %v", err)
	}
}

func TestSwarmEvaluatorBuildsInjectionQueue(t *testing.T) {
	provider := newScriptProvider("Yes, applicable.")
	swarm := NewSwarmEvaluator(NewAgentEvaluator().WithProvider(provider), nil)

	state := NewSharedState()
	state.Messages = append(state.Messages, Message{Role: RoleUser, Content: "What is boiling?"})
	state.Thoughts = append(state.Thoughts,
		mustThought(t, "first", 0.65, true),
		mustThought(t, "second", 0.68, false),
	)

	delta := swarm.Evaluate(context.Background(), state)

	if len(delta.InjectionQueue) != 2 {
		t.Fatalf("expected 2 queued thoughts, got %d", len(delta.InjectionQueue))
	}
	if len(delta.Thoughts) != 2 {
		t.Fatalf("expected 2 evaluated thoughts, got %d", len(delta.Thoughts))
	}
	for _, thought := range delta.Thoughts {
		if thought.Relevance != RelevantScore {
			t.Errorf("expected score %g, got %g", RelevantScore, thought.Relevance)
		}
		if thought.LastEvaluated == "" {
			t.Error("expected LastEvaluated to be set")
		}
	}
}

func TestSwarmEvaluatorReframes(t *testing.T) {
	provider := newScriptProvider("This has nothing to do with the topic.")
	swarm := NewSwarmEvaluator(NewAgentEvaluator().WithProvider(provider), nil)

	state := NewSharedState()
	state.Messages = append(state.Messages, Message{Role: RoleUser, Content: "A new topic entirely"})
	state.Thoughts = append(state.Thoughts, mustThought(t, "stale idea", 0.65, true))

	delta := swarm.Evaluate(context.Background(), state)

	if len(delta.InjectionQueue) != 0 {
		t.Fatalf("expected empty queue, got %d", len(delta.InjectionQueue))
	}
	if len(delta.Thoughts) != 1 {
		t.Fatalf("expected 1 thought, got %d", len(delta.Thoughts))
	}
	got := delta.Thoughts[0]
	if !strings.Contains(got.Narrative, reframedMarker) {
		t.Errorf("expected re-framed marker in %q", got.Narrative)
	}
	if got.Relevance != IrrelevantScore {
		t.Errorf("expected score %g, got %g", IrrelevantScore, got.Relevance)
	}
	if state.Thoughts[0].Narrative != "stale idea" {
		t.Error("expected original thought untouched")
	}
}

func TestSwarmEvaluatorMismatchTriggersBoundedGeneration(t *testing.T) {
	evalProvider := newScriptProvider("This conflicts with the core context.")
	genProvider := newScriptProvider("Fresh observation. Meta: regenerated scope")
	swarm := NewSwarmEvaluator(
		NewAgentEvaluator().WithProvider(evalProvider),
		NewThoughtGenerator().WithProvider(genProvider),
	)

	state := NewSharedState()
	state.Messages = append(state.Messages, Message{Role: RoleUser, Content: "The topic moved on"})
	state.Thoughts = append(state.Thoughts, mustThought(t, "outgrown idea", 0.65, true))

	delta := swarm.Evaluate(context.Background(), state)

	if len(delta.Thoughts) != 1+MismatchGenerationSteps {
		t.Fatalf("expected %d thoughts, got %d", 1+MismatchGenerationSteps, len(delta.Thoughts))
	}
	if genProvider.callCount() != MismatchGenerationSteps {
		t.Errorf("expected %d generation calls, got %d", MismatchGenerationSteps, genProvider.callCount())
	}
	for _, thought := range delta.Thoughts[1:] {
		if !strings.HasPrefix(thought.ID, GeneratedIDPrefix) {
			t.Errorf("expected generated id, got %q", thought.ID)
		}
		if thought.Relevance != DefaultGeneratedRelevance {
			t.Errorf("expected relevance %g, got %g", DefaultGeneratedRelevance, thought.Relevance)
		}
	}
}

func TestSwarmEvaluatorKeepsSessionLogUnchanged(t *testing.T) {
	evalProvider := newScriptProvider("This conflicts with the core context.")
	genProvider := newScriptProvider("Fresh observation. Meta: regenerated scope")
	swarm := NewSwarmEvaluator(
		NewAgentEvaluator().WithProvider(evalProvider),
		NewThoughtGenerator().WithProvider(genProvider),
	)

	state := NewSharedState()
	state.Messages = append(state.Messages, Message{Role: RoleUser, Content: "The topic moved on"})
	state.Thoughts = append(state.Thoughts, mustThought(t, "outgrown idea", 0.65, true))

	delta := swarm.Evaluate(context.Background(), state)
	if len(delta.Messages) != 0 {
		t.Errorf("expected no messages in the swarm delta, got %d", len(delta.Messages))
	}

	merged, err := swarm.Process(context.Background(), state)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(merged.Messages) != 1 {
		t.Fatalf("conversation log grew during the swarm pass: had 1 message, now %d", len(merged.Messages))
	}
	if len(merged.Thoughts) != 1+MismatchGenerationSteps {
		t.Errorf("expected generated thoughts kept, got %d", len(merged.Thoughts))
	}
}

func TestSwarmEvaluatorMismatchWithoutGenerator(t *testing.T) {
	provider := newScriptProvider("There is a mismatch here.")
	swarm := NewSwarmEvaluator(NewAgentEvaluator().WithProvider(provider), nil)

	state := NewSharedState()
	state.Messages = append(state.Messages, Message{Role: RoleUser, Content: "context"})
	state.Thoughts = append(state.Thoughts, mustThought(t, "idea", 0.65, false))

	delta := swarm.Evaluate(context.Background(), state)
	if len(delta.Thoughts) != 1 {
		t.Fatalf("expected re-framed thought only, got %d", len(delta.Thoughts))
	}
}

func TestSwarmEvaluatorSkipsFailedEvaluations(t *testing.T) {
	provider := newScriptProvider("Yes, applicable.")
	provider.failOn(1, errors.New("provider down"))
	swarm := NewSwarmEvaluator(NewAgentEvaluator().WithProvider(provider), nil)

	state := NewSharedState()
	state.Messages = append(state.Messages, Message{Role: RoleUser, Content: "context"})
	first := mustThought(t, "first", 0.65, true)
	second := mustThought(t, "second", 0.68, false)
	state.Thoughts = append(state.Thoughts, first, second)

	delta := swarm.Evaluate(context.Background(), state)

	if len(delta.Thoughts) != 2 {
		t.Fatalf("expected both thoughts retained, got %d", len(delta.Thoughts))
	}
	if delta.Thoughts[0].LastEvaluated != "" {
		t.Error("expected failed evaluation to leave the thought untouched")
	}
	if delta.Thoughts[1].LastEvaluated == "" {
		t.Error("expected the loop to continue past the failure")
	}
	if len(delta.InjectionQueue) != 1 {
		t.Errorf("expected 1 queued thought, got %d", len(delta.InjectionQueue))
	}
}

func TestSwarmEvaluatorDedupesBeforeEvaluating(t *testing.T) {
	provider := newScriptProvider("Yes, applicable.")
	swarm := NewSwarmEvaluator(NewAgentEvaluator().WithProvider(provider), nil)

	state := NewSharedState()
	state.Messages = append(state.Messages, Message{Role: RoleUser, Content: "context"})
	original := mustThought(t, "idea", 0.65, false)
	stale := original.Clone()
	superseding := original.Clone()
	superseding.LastEvaluated = "2026-08-01T10:00:00Z"
	superseding.Narrative = "idea, revised"
	state.Thoughts = append(state.Thoughts, stale, superseding)

	delta := swarm.Evaluate(context.Background(), state)

	if len(delta.Thoughts) != 1 {
		t.Fatalf("expected duplicates collapsed, got %d", len(delta.Thoughts))
	}
	if provider.callCount() != 1 {
		t.Errorf("expected 1 evaluation call, got %d", provider.callCount())
	}
	if !strings.Contains(delta.Thoughts[0].Narrative, "revised") {
		t.Errorf("expected the superseding copy to be evaluated, got %q", delta.Thoughts[0].Narrative)
	}
}

func TestSwarmEvaluatorProcessRebuildsQueue(t *testing.T) {
	provider := newScriptProvider("This has nothing to do with the topic.")
	swarm := NewSwarmEvaluator(NewAgentEvaluator().WithProvider(provider), nil)

	state := NewSharedState()
	state.Messages = append(state.Messages, Message{Role: RoleUser, Content: "context"})
	state.Thoughts = append(state.Thoughts, mustThought(t, "idea", 0.65, false))
	state.InjectionQueue = append(state.InjectionQueue, mustThought(t, "leftover", 0.9, false))

	merged, err := swarm.Process(context.Background(), state)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(merged.InjectionQueue) != 0 {
		t.Errorf("expected stale queue cleared, got %d entries", len(merged.InjectionQueue))
	}
	if merged.ActiveAgent != AgentMemorySwarm {
		t.Errorf("expected memory_swarm active, got %s", merged.ActiveAgent)
	}
	if len(merged.Thoughts) != 1 {
		t.Errorf("expected working set replaced with evaluated copies, got %d", len(merged.Thoughts))
	}
}

func TestThoughtEvaluatedEvent(t *testing.T) {
	capture := capitantesting.NewEventCapture()
	listener := capitan.Hook(ThoughtEvaluated, capture.Handler())
	defer listener.Close()

	provider := newScriptProvider("Yes, applicable.")
	swarm := NewSwarmEvaluator(NewAgentEvaluator().WithProvider(provider), nil)

	state := NewSharedState()
	state.Messages = append(state.Messages, Message{Role: RoleUser, Content: "context"})
	thought := mustThought(t, "idea", 0.65, false)
	state.Thoughts = append(state.Thoughts, thought)

	swarm.Evaluate(context.Background(), state)

	if !capture.WaitForCount(1, time.Second) {
		t.Fatal("expected ThoughtEvaluated event")
	}
	events := capture.Events()
	if got := getStringField(events[0], FieldThoughtID.Name()); got != thought.ID {
		t.Errorf("expected thought id %q, got %q", thought.ID, got)
	}
	if got := getStringField(events[0], FieldDecision.Name()); got != string(DecisionInject) {
		t.Errorf("expected inject decision, got %q", got)
	}
}

// getStringField extracts a string field value from a captured event.
func getStringField(event capitantesting.CapturedEvent, keyName string) string {
	for _, f := range event.Fields {
		if f.Key().Name() == keyName {
			if v, ok := f.Value().(string); ok {
				return v
			}
		}
	}
	return ""
}
