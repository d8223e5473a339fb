package swarm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/pipz"
	"github.com/zoobzio/zyn"
)

// ThoughtGenerator produces new atomic thoughts by running a bounded
// sequence of guided prompts against the current context, grounded in the
// prime thoughts when any are loaded. It implements
// pipz.Chainable[*SharedState] so it can run as the thought_generator
// stage, and is also invoked directly by the swarm on mismatch.
type ThoughtGenerator struct {
	identity    pipz.Identity
	provider    Provider
	maxSteps    int
	temperature float32
	date        string
}

// NewThoughtGenerator creates a generator with the default step budget.
// The provider is resolved per call unless one is set with WithProvider.
func NewThoughtGenerator() *ThoughtGenerator {
	return &ThoughtGenerator{
		identity:    pipz.NewIdentity(string(AgentThoughtGenerator), "Guided thought generation stage"),
		maxSteps:    DefaultMaxGuidedSteps,
		temperature: DefaultTemperature,
		date:        time.Now().UTC().Format("2006-01-02"),
	}
}

// WithProvider pins the generator to a specific provider.
func (g *ThoughtGenerator) WithProvider(p Provider) *ThoughtGenerator {
	g.provider = p
	return g
}

// WithMaxSteps sets the step budget used when the generator runs as a
// stage. The guided sequence length remains the hard ceiling.
func (g *ThoughtGenerator) WithMaxSteps(n int) *ThoughtGenerator {
	g.maxSteps = n
	return g
}

// WithTemperature sets the sampling temperature for generation calls.
func (g *ThoughtGenerator) WithTemperature(temp float32) *ThoughtGenerator {
	g.temperature = temp
	return g
}

// Generate runs up to maxSteps guided prompts and returns the new
// messages and thoughts as a delta. It exits early with an empty delta
// when there is neither message history nor core context. The first
// failing step aborts the remainder of the sequence; thoughts produced by
// earlier steps are still returned.
func (g *ThoughtGenerator) Generate(ctx context.Context, state *SharedState, maxSteps int) (Delta, error) {
	if len(state.Messages) == 0 && len(state.CoreContext) == 0 {
		capitan.Emit(ctx, GenerationSkipped,
			FieldReason.Field("no meaningful context available"),
		)
		return Delta{}, nil
	}

	provider, err := ResolveProvider(ctx, g.provider)
	if err != nil {
		return Delta{}, fmt.Errorf("thought generation: %w", err)
	}

	if maxSteps > len(guidedSequence) {
		maxSteps = len(guidedSequence)
	}

	coreContent := g.coreContent(state)
	primes := state.PrimeThoughts()
	primeBlock := primeInspiration(primes)
	primeIDs := make([]string, len(primes))
	for i, p := range primes {
		primeIDs[i] = p.ID
	}

	system := zyn.Message{
		Role:    RoleSystem,
		Content: fmt.Sprintf(generatorSystemPrompt, g.date),
	}

	var (
		newMessages []Message
		newThoughts []Thought
	)

	for step := 1; step <= maxSteps; step++ {
		prompt := fmt.Sprintf(guidedSequence[step-1], coreContent, primeBlock)

		call := append([]zyn.Message{system}, toZynMessages(state.Messages)...)
		call = append(call, zyn.Message{Role: RoleUser, Content: prompt})

		resp, err := provider.Call(ctx, call, g.temperature)
		if err != nil {
			capitan.Error(ctx, GenerationAborted,
				FieldStep.Field(step),
				FieldError.Field(err),
			)
			break
		}

		reply := resp.Content
		capitan.Emit(ctx, GenerationStep,
			FieldStep.Field(step),
			FieldPrompt.Field(prompt),
			FieldReply.Field(reply),
			FieldTokens.Field(resp.Usage.Total),
		)

		narrative, meta := splitMeta(reply)
		thought, err := NewThought(narrative, meta, primeIDs, nil, DefaultGeneratedRelevance, false)
		if err != nil {
			capitan.Error(ctx, GenerationAborted,
				FieldStep.Field(step),
				FieldError.Field(err),
			)
			break
		}

		capitan.Emit(ctx, ThoughtCreated,
			FieldThoughtID.Field(thought.ID),
			FieldScore.Field(float32(thought.Relevance)),
		)

		newThoughts = append(newThoughts, thought)
		newMessages = append(newMessages, Message{Role: RoleAssistant, Content: reply})
	}

	return Delta{Messages: newMessages, Thoughts: newThoughts}, nil
}

// coreContent picks the generation subject: the current topic when the
// core context names one, else the latest message.
func (g *ThoughtGenerator) coreContent(state *SharedState) string {
	if topic, ok := state.CoreContext["current_topic"].(string); ok && topic != "" {
		return topic
	}
	if last, ok := state.LastMessage(); ok {
		return last.Content
	}
	return ""
}

// primeInspiration renders the prime thoughts as a bulleted inspiration
// block, truncating each narrative.
func primeInspiration(primes []Thought) string {
	if len(primes) == 0 {
		return "No prime thoughts loaded."
	}
	lines := make([]string, len(primes))
	for i, p := range primes {
		lines[i] = fmt.Sprintf("- %s: %s...", p.MetaNarrative, truncate(p.Narrative, PrimeNarrativeLimit))
	}
	return strings.Join(lines, "\n")
}

// splitMeta separates a generation reply into narrative and meta
// narrative on the marker, falling back to a default meta when absent.
func splitMeta(reply string) (narrative, meta string) {
	if idx := strings.Index(reply, metaMarker); idx >= 0 {
		return strings.TrimSpace(reply[:idx]), strings.TrimSpace(reply[idx+len(metaMarker):])
	}
	return strings.TrimSpace(reply), defaultMetaNarrative
}

// truncate limits s to n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// Process implements pipz.Chainable[*SharedState], running one generation
// cycle with the configured step budget and merging the delta.
func (g *ThoughtGenerator) Process(ctx context.Context, state *SharedState) (*SharedState, error) {
	start := time.Now()
	capitan.Emit(ctx, StageStarted,
		FieldStageName.Field(string(AgentThoughtGenerator)),
		FieldAgent.Field(string(AgentThoughtGenerator)),
		FieldThoughtCount.Field(len(state.Thoughts)),
		FieldTemperature.Field(g.temperature),
	)

	delta, err := g.Generate(ctx, state, g.maxSteps)
	if err != nil {
		capitan.Error(ctx, StageFailed,
			FieldStageName.Field(string(AgentThoughtGenerator)),
			FieldStageDuration.Field(time.Since(start)),
			FieldError.Field(err),
		)
		return state, err
	}

	delta.ActiveAgent = AgentThoughtGenerator
	reason := fmt.Sprintf("generated %d thoughts", len(delta.Thoughts))
	delta.HandoffReason = &reason
	if err := delta.Validate(); err != nil {
		return state, err
	}
	merged := Merge(state, delta)

	capitan.Emit(ctx, StageCompleted,
		FieldStageName.Field(string(AgentThoughtGenerator)),
		FieldStageDuration.Field(time.Since(start)),
		FieldThoughtCount.Field(len(merged.Thoughts)),
	)
	return merged, nil
}

// Identity implements pipz.Chainable[*SharedState].
func (g *ThoughtGenerator) Identity() pipz.Identity {
	return g.identity
}

// Schema implements pipz.Chainable[*SharedState].
func (g *ThoughtGenerator) Schema() pipz.Node {
	return pipz.Node{Identity: g.identity, Type: "thought_generator"}
}

// Close implements pipz.Chainable[*SharedState].
func (g *ThoughtGenerator) Close() error {
	return nil
}
