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

// Stage is a single-turn conversation agent: it sends the message history
// under its system prompt and appends the reply. The orchestrator and
// summary agents are both stages; the swarm and generator have their own
// chainables. Stage implements pipz.Chainable[*SharedState].
type Stage struct {
	identity     pipz.Identity
	agent        Agent
	systemPrompt string
	provider     Provider
	temperature  float32
	date         string
	steps        int
}

// NewOrchestrator creates the orchestrator stage. It maintains the main
// reasoning line and consumes the injection queue built by the swarm.
func NewOrchestrator() *Stage {
	return newStage(AgentOrchestrator, orchestratorSystemPrompt, "Main reasoning stage")
}

// NewSummary creates the summary stage.
func NewSummary() *Stage {
	return newStage(AgentSummary, summarySystemPrompt, "Condensing stage")
}

func newStage(agent Agent, systemPrompt, desc string) *Stage {
	return &Stage{
		identity:     pipz.NewIdentity(string(agent), desc),
		agent:        agent,
		systemPrompt: systemPrompt,
		temperature:  DefaultTemperature,
		date:         time.Now().UTC().Format("2006-01-02"),
	}
}

// WithProvider pins the stage to a specific provider.
func (s *Stage) WithProvider(p Provider) *Stage {
	s.provider = p
	return s
}

// WithTemperature sets the sampling temperature for this stage.
func (s *Stage) WithTemperature(temp float32) *Stage {
	s.temperature = temp
	return s
}

// Process implements pipz.Chainable[*SharedState]. The injection queue is
// surfaced to the orchestrator as an extra system turn and cleared by the
// merge; a trailing assistant message gets an empty user continuation so
// the provider always answers a user turn.
func (s *Stage) Process(ctx context.Context, state *SharedState) (*SharedState, error) {
	start := time.Now()
	capitan.Emit(ctx, StageStarted,
		FieldStageName.Field(string(s.agent)),
		FieldAgent.Field(string(s.agent)),
		FieldThoughtCount.Field(len(state.Thoughts)),
		FieldTemperature.Field(s.temperature),
	)

	provider, err := ResolveProvider(ctx, s.provider)
	if err != nil {
		return state, s.fail(ctx, start, err)
	}

	msgs := []zyn.Message{
		{Role: RoleSystem, Content: fmt.Sprintf(s.systemPrompt, s.date)},
	}
	var injected string
	if s.agent == AgentOrchestrator && len(state.InjectionQueue) > 0 {
		injected = injectionSummary(state.InjectionQueue)
		msgs = append(msgs, zyn.Message{Role: RoleSystem, Content: injected})
		capitan.Emit(ctx, Handoff,
			FieldFromAgent.Field(string(AgentMemorySwarm)),
			FieldToAgent.Field(string(AgentOrchestrator)),
			FieldInjectedSummary.Field(injected),
			FieldQueueSize.Field(len(state.InjectionQueue)),
		)
	}
	msgs = append(msgs, toZynMessages(state.Messages)...)
	if last, ok := state.LastMessage(); ok && last.Role == RoleAssistant {
		msgs = append(msgs, zyn.Message{Role: RoleUser, Content: ""})
	}

	resp, err := provider.Call(ctx, msgs, s.temperature)
	if err != nil {
		return state, s.fail(ctx, start, err)
	}

	s.steps++
	if s.agent == AgentOrchestrator {
		capitan.Emit(ctx, OrchestratorStep,
			FieldStep.Field(s.steps),
			FieldOutput.Field(resp.Content),
			FieldActiveThoughts.Field(thoughtIDs(state.Thoughts)),
			FieldInjectedSummary.Field(injected),
			FieldTokens.Field(resp.Usage.Total),
		)
	}

	delta := Delta{
		Messages:    []Message{{Role: RoleAssistant, Content: resp.Content}},
		ActiveAgent: s.agent,
	}
	if err := delta.Validate(); err != nil {
		return state, s.fail(ctx, start, err)
	}
	base := state
	if s.agent == AgentOrchestrator && len(state.InjectionQueue) > 0 {
		base = state.Clone()
		base.InjectionQueue = []Thought{}
	}
	merged := Merge(base, delta)

	capitan.Emit(ctx, StageCompleted,
		FieldStageName.Field(string(s.agent)),
		FieldStageDuration.Field(time.Since(start)),
		FieldTokens.Field(resp.Usage.Total),
	)
	return merged, nil
}

func (s *Stage) fail(ctx context.Context, start time.Time, err error) error {
	wrapped := fmt.Errorf("%s stage: %w", s.agent, err)
	capitan.Error(ctx, StageFailed,
		FieldStageName.Field(string(s.agent)),
		FieldStageDuration.Field(time.Since(start)),
		FieldError.Field(wrapped),
	)
	return wrapped
}

// thoughtIDs joins the working set ids for trace events.
func thoughtIDs(thoughts []Thought) string {
	ids := make([]string, len(thoughts))
	for i, t := range thoughts {
		ids[i] = t.ID
	}
	return strings.Join(ids, ",")
}

// injectionSummary renders the queued thoughts as a system turn for the
// orchestrator.
func injectionSummary(queue []Thought) string {
	out := "Relevant thoughts from the swarm:\n"
	for _, t := range queue {
		out += fmt.Sprintf("- [%.2f] %s\n", t.Relevance, t.Narrative)
	}
	return out
}

// Identity implements pipz.Chainable[*SharedState].
func (s *Stage) Identity() pipz.Identity {
	return s.identity
}

// Schema implements pipz.Chainable[*SharedState].
func (s *Stage) Schema() pipz.Node {
	return pipz.Node{Identity: s.identity, Type: "stage"}
}

// Close implements pipz.Chainable[*SharedState].
func (s *Stage) Close() error {
	return nil
}
