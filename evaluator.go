package swarm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/pipz"
	"github.com/zoobzio/zyn"
)

// Decision is the outcome class of a single thought evaluation.
type Decision string

const (
	// DecisionInject queues the thought for context injection.
	DecisionInject Decision = "inject"
	// DecisionReframe rewrites the thought against the current context.
	DecisionReframe Decision = "reframe"
	// DecisionGenerateNew flags a mismatch and requests fresh thoughts.
	DecisionGenerateNew Decision = "generate_new"
)

// Verdict is the scored result of evaluating one thought.
type Verdict struct {
	Score     float64
	Decision  Decision
	Reasoning string
}

// ThoughtEvaluator scores a single thought against an evaluation context.
type ThoughtEvaluator interface {
	Evaluate(ctx context.Context, thought Thought, evalContext string) (Verdict, error)
}

// AgentEvaluator evaluates thoughts by handing each one to a memory agent
// backed by a provider. The provider's free-text reply is classified into
// a fixed score and decision by keyword.
type AgentEvaluator struct {
	provider    Provider
	temperature float32
	date        string
}

// NewAgentEvaluator creates a provider-backed evaluator. The provider is
// resolved per call unless one is set with WithProvider.
func NewAgentEvaluator() *AgentEvaluator {
	return &AgentEvaluator{
		temperature: DefaultTemperature,
		date:        time.Now().UTC().Format("2006-01-02"),
	}
}

// WithProvider pins the evaluator to a specific provider.
func (a *AgentEvaluator) WithProvider(p Provider) *AgentEvaluator {
	a.provider = p
	return a
}

// WithTemperature sets the sampling temperature for evaluation calls.
func (a *AgentEvaluator) WithTemperature(temp float32) *AgentEvaluator {
	a.temperature = temp
	return a
}

// Evaluate serializes the thought into the memory agent's system prompt,
// sends the evaluation context as the user turn, and classifies the
// reply. An empty reply yields ErrNoEvaluation.
func (a *AgentEvaluator) Evaluate(ctx context.Context, thought Thought, evalContext string) (Verdict, error) {
	provider, err := ResolveProvider(ctx, a.provider)
	if err != nil {
		return Verdict{}, fmt.Errorf("evaluate thought %s: %w", thought.ID, err)
	}

	payload, err := json.MarshalIndent(thought, "", "  ")
	if err != nil {
		return Verdict{}, fmt.Errorf("evaluate thought %s: %w", thought.ID, err)
	}

	if evalContext == "" {
		evalContext = "No core context available."
	}

	msgs := []zyn.Message{
		{
			Role: RoleSystem,
			Content: fmt.Sprintf(memorySystemPrompt, a.date) +
				"\n\nThought under evaluation:\n" + string(payload),
		},
		{Role: RoleUser, Content: evalContext},
	}

	resp, err := provider.Call(ctx, msgs, a.temperature)
	if err != nil {
		return Verdict{}, fmt.Errorf("evaluate thought %s: %w", thought.ID, err)
	}

	reply := strings.TrimSpace(resp.Content)
	if reply == "" {
		return Verdict{}, fmt.Errorf("evaluate thought %s: %w", thought.ID, ErrNoEvaluation)
	}

	score, decision := classifyResponse(reply)
	return Verdict{Score: score, Decision: decision, Reasoning: reply}, nil
}

// relevantKeywords mark an evaluation reply as applicable; their absence
// scores the thought below the injection threshold.
var relevantKeywords = []string{"applicable", "yes", "relevant", "supports"}

// mismatchKeywords upgrade a reframe into a request for new thoughts.
// They never downgrade an injection.
var mismatchKeywords = []string{"mismatch", "conflict", "contradict", "outdated"}

// classifyResponse maps a free-text evaluation reply to a fixed score and
// decision. Scoring is keyword-driven rather than parsed from the reply
// so that a single vocabulary governs the whole swarm.
func classifyResponse(reply string) (float64, Decision) {
	lower := strings.ToLower(reply)

	score := IrrelevantScore
	for _, kw := range relevantKeywords {
		if strings.Contains(lower, kw) {
			score = RelevantScore
			break
		}
	}

	if score > InjectionThreshold {
		return score, DecisionInject
	}

	decision := DecisionReframe
	for _, kw := range mismatchKeywords {
		if strings.Contains(lower, kw) {
			decision = DecisionGenerateNew
			break
		}
	}
	return score, decision
}

// reframedMarker is appended to a thought's narrative when it is
// re-framed against the current context.
const reframedMarker = " [re-framed]"

// SwarmEvaluator runs the memory_swarm stage: it dedupes the working set,
// evaluates every thought, builds the injection queue, re-frames
// non-applicable thoughts, and triggers bounded generation on mismatch.
// It implements pipz.Chainable[*SharedState].
type SwarmEvaluator struct {
	identity  pipz.Identity
	evaluator ThoughtEvaluator
	generator *ThoughtGenerator
}

// NewSwarmEvaluator wires an evaluator and a generator into a swarm
// stage. The generator may be nil, in which case mismatches only
// re-frame.
func NewSwarmEvaluator(evaluator ThoughtEvaluator, generator *ThoughtGenerator) *SwarmEvaluator {
	return &SwarmEvaluator{
		identity:  pipz.NewIdentity(string(AgentMemorySwarm), "Swarm evaluation stage"),
		evaluator: evaluator,
		generator: generator,
	}
}

// Evaluate processes the full working set and returns the resulting
// delta: every evaluated thought (re-scored, possibly re-framed), any
// thoughts produced by mismatch generation, and the injection queue for
// this pass. A failed evaluation leaves that thought untouched and moves
// on.
func (e *SwarmEvaluator) Evaluate(ctx context.Context, state *SharedState) Delta {
	working := Dedupe(state.Thoughts)
	evalContext := evaluationContext(state)

	seen := make(map[string]bool, len(working))
	for _, t := range working {
		seen[t.ID] = true
	}

	var (
		updated []Thought
		queue   []Thought
	)

	for _, t := range working {
		verdict, err := e.evaluator.Evaluate(ctx, t, evalContext)
		if err != nil {
			capitan.Error(ctx, ThoughtSkipped,
				FieldThoughtID.Field(t.ID),
				FieldError.Field(err),
			)
			updated = append(updated, t)
			continue
		}

		nt := t.Clone()
		nt.Relevance = verdict.Score
		nt.LastEvaluated = time.Now().UTC().Format(time.RFC3339)

		switch verdict.Decision {
		case DecisionInject:
			queue = append(queue, nt)
		case DecisionReframe, DecisionGenerateNew:
			nt.Narrative += reframedMarker
			if evalContext != "" {
				nt.Narrative += " (context: " + truncate(evalContext, 100) + ")"
			}
		}

		capitan.Emit(ctx, ThoughtEvaluated,
			FieldThoughtID.Field(nt.ID),
			FieldSnippet.Field(truncate(nt.Narrative, 100)),
			FieldScore.Field(float32(verdict.Score)),
			FieldDecision.Field(string(verdict.Decision)),
			FieldReasoning.Field(verdict.Reasoning),
		)

		updated = append(updated, nt)

		if verdict.Decision == DecisionGenerateNew {
			for _, g := range e.generateForMismatch(ctx, state) {
				if seen[g.ID] {
					capitan.Emit(ctx, ThoughtSkipped,
						FieldThoughtID.Field(g.ID),
						FieldReason.Field("duplicate of working set"),
					)
					continue
				}
				seen[g.ID] = true
				updated = append(updated, g)
			}
		}
	}

	reason := fmt.Sprintf("evaluated %d thoughts, queued %d for injection", len(updated), len(queue))
	return Delta{
		Thoughts:       updated,
		InjectionQueue: queue,
		ActiveAgent:    AgentMemorySwarm,
		HandoffReason:  &reason,
	}
}

// generateForMismatch runs a short bounded generation cycle and returns
// only the new thoughts; the generation transcript stays out of the
// session log. Failures are reported and swallowed so the evaluation
// loop continues.
func (e *SwarmEvaluator) generateForMismatch(ctx context.Context, state *SharedState) []Thought {
	if e.generator == nil {
		capitan.Emit(ctx, GenerationSkipped,
			FieldReason.Field("no generator configured"),
		)
		return nil
	}
	delta, err := e.generator.Generate(ctx, state, MismatchGenerationSteps)
	if err != nil {
		capitan.Error(ctx, GenerationAborted,
			FieldError.Field(err),
		)
		return nil
	}
	return delta.Thoughts
}

// evaluationContext derives the context thoughts are scored against: the
// latest message, else the current topic.
func evaluationContext(state *SharedState) string {
	if last, ok := state.LastMessage(); ok {
		return truncate(last.Content, EvaluationContextLimit)
	}
	if topic, ok := state.CoreContext["current_topic"].(string); ok {
		return truncate(topic, EvaluationContextLimit)
	}
	return ""
}

// Process implements pipz.Chainable[*SharedState]. The injection queue is
// rebuilt on every pass, so the base state's queue is cleared before the
// delta merges.
func (e *SwarmEvaluator) Process(ctx context.Context, state *SharedState) (*SharedState, error) {
	start := time.Now()
	capitan.Emit(ctx, StageStarted,
		FieldStageName.Field(string(AgentMemorySwarm)),
		FieldAgent.Field(string(AgentMemorySwarm)),
		FieldThoughtCount.Field(len(state.Thoughts)),
	)

	delta := e.Evaluate(ctx, state)
	if err := delta.Validate(); err != nil {
		return state, err
	}

	base := state.Clone()
	base.InjectionQueue = []Thought{}
	base.Thoughts = []Thought{}
	merged := Merge(base, delta)

	capitan.Emit(ctx, StageCompleted,
		FieldStageName.Field(string(AgentMemorySwarm)),
		FieldStageDuration.Field(time.Since(start)),
		FieldThoughtCount.Field(len(merged.Thoughts)),
		FieldQueueSize.Field(len(merged.InjectionQueue)),
	)
	return merged, nil
}

// Identity implements pipz.Chainable[*SharedState].
func (e *SwarmEvaluator) Identity() pipz.Identity {
	return e.identity
}

// Schema implements pipz.Chainable[*SharedState].
func (e *SwarmEvaluator) Schema() pipz.Node {
	return pipz.Node{Identity: e.identity, Type: "memory_swarm"}
}

// Close implements pipz.Chainable[*SharedState].
func (e *SwarmEvaluator) Close() error {
	return nil
}
