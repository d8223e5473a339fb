package swarm

import (
	"context"
	"fmt"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/pipz"
)

// DefaultSessionID is used when a runner is not given a session.
const DefaultSessionID = "default"

// Runner drives one reasoning pass per Run call: it resumes the session,
// seeds the working set on first use, then walks the stage machine
// orchestrator -> memory_swarm [-> thought_generator] -> summary ->
// orchestrator until the router terminates, checkpointing after every
// stage.
type Runner struct {
	store          Store
	router         *Router
	stages         map[Agent]pipz.Chainable[*SharedState]
	provider       Provider
	sessionID      string
	seedsDir       string
	maxTransitions int
	expandSeeds    bool
}

// NewRunner creates a runner with the default stage set over the given
// store.
func NewRunner(store Store) *Runner {
	generator := NewThoughtGenerator()
	return &Runner{
		store:  store,
		router: NewRouter(),
		stages: map[Agent]pipz.Chainable[*SharedState]{
			AgentOrchestrator:     NewOrchestrator(),
			AgentMemorySwarm:      NewSwarmEvaluator(NewAgentEvaluator(), generator),
			AgentThoughtGenerator: generator,
			AgentSummary:          NewSummary(),
		},
		sessionID:      DefaultSessionID,
		maxTransitions: DefaultMaxTransitions,
	}
}

// WithSessionID sets the session this runner resumes and checkpoints.
func (r *Runner) WithSessionID(id string) *Runner {
	r.sessionID = id
	return r
}

// WithSeedsDir sets the directory prime thoughts are loaded from on
// first use of a session.
func (r *Runner) WithSeedsDir(dir string) *Runner {
	r.seedsDir = dir
	return r
}

// WithMaxTransitions bounds the number of stage transitions per run.
func (r *Runner) WithMaxTransitions(n int) *Runner {
	r.maxTransitions = n
	return r
}

// WithExpandSeeds runs one generation cycle before the main loop so the
// swarm starts from an expanded working set.
func (r *Runner) WithExpandSeeds() *Runner {
	r.expandSeeds = true
	return r
}

// WithProvider sets the provider placed on the run context for all
// stages that have none of their own.
func (r *Runner) WithProvider(p Provider) *Runner {
	r.provider = p
	return r
}

// WithStage replaces the chainable for one agent.
func (r *Runner) WithStage(agent Agent, stage pipz.Chainable[*SharedState]) *Runner {
	r.stages[agent] = stage
	return r
}

// Run executes one full pass for the user message and returns the final
// answer. An empty userMessage continues the existing conversation.
func (r *Runner) Run(ctx context.Context, userMessage string) (string, error) {
	if r.provider != nil {
		ctx = WithProvider(ctx, r.provider)
	}

	state, err := r.store.Resume(ctx, r.sessionID)
	if err != nil {
		return "", fmt.Errorf("run session %s: %w", r.sessionID, err)
	}
	if len(state.Messages) > 0 || len(state.Thoughts) > 0 {
		capitan.Emit(ctx, SessionResumed,
			FieldSession.Field(r.sessionID),
			FieldThoughtCount.Field(len(state.Thoughts)),
		)
	}

	if len(state.Thoughts) == 0 {
		if err := r.seed(ctx, state, userMessage); err != nil {
			return "", err
		}
	}

	if userMessage != "" {
		state.Messages = append(state.Messages, Message{Role: RoleUser, Content: userMessage})
	}

	if r.expandSeeds {
		expanded, err := r.stages[AgentThoughtGenerator].Process(ctx, state)
		if err != nil {
			return "", fmt.Errorf("run session %s: %w", r.sessionID, err)
		}
		state = expanded
	}

	r.router.Reset()
	current := AgentOrchestrator
	for transitions := 0; current != AgentTerminal; transitions++ {
		if transitions >= r.maxTransitions {
			return lastAnswer(state), fmt.Errorf("run session %s: %w", r.sessionID, ErrTransitionLimit)
		}

		stage, ok := r.stages[current]
		if !ok {
			return "", fmt.Errorf("run session %s: no stage for agent %q", r.sessionID, current)
		}

		state, err = stage.Process(ctx, state)
		if err != nil {
			return "", fmt.Errorf("run session %s: %w", r.sessionID, err)
		}

		r.checkpoint(ctx, state)

		next := r.router.Next(current, state)
		capitan.Emit(ctx, Handoff,
			FieldFromAgent.Field(string(current)),
			FieldToAgent.Field(string(next)),
			FieldReason.Field(state.LastHandoffReason),
		)
		current = next
	}

	return lastAnswer(state), nil
}

// seed populates an empty working set from the seeds directory, falling
// back to a single bootstrap seed derived from the user message.
func (r *Runner) seed(ctx context.Context, state *SharedState, userMessage string) error {
	if r.seedsDir != "" {
		seeds, err := LoadSeeds(ctx, r.seedsDir)
		if err != nil {
			return fmt.Errorf("run session %s: %w", r.sessionID, err)
		}
		state.Thoughts = append(state.Thoughts, seeds...)
	}
	if len(state.Thoughts) == 0 && userMessage != "" {
		fallback, err := FallbackSeed(userMessage)
		if err != nil {
			return fmt.Errorf("run session %s: %w", r.sessionID, err)
		}
		state.Thoughts = append(state.Thoughts, fallback)
	}
	return nil
}

// checkpoint persists the state, reporting failures without stopping the
// run.
func (r *Runner) checkpoint(ctx context.Context, state *SharedState) {
	if err := r.store.Checkpoint(ctx, r.sessionID, state); err != nil {
		capitan.Error(ctx, SessionCheckpointFailed,
			FieldSession.Field(r.sessionID),
			FieldError.Field(err),
		)
		return
	}
	capitan.Emit(ctx, SessionCheckpointed,
		FieldSession.Field(r.sessionID),
		FieldAgent.Field(string(state.ActiveAgent)),
	)
}

// lastAnswer extracts the final answer from the message history.
func lastAnswer(state *SharedState) string {
	if last, ok := state.LastMessage(); ok {
		return last.Content
	}
	return "No final answer generated (empty message history)."
}

// Close releases all stage resources.
func (r *Runner) Close() error {
	var firstErr error
	for _, stage := range r.stages {
		if err := stage.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
