package swarm

// Message is one role-tagged entry in the session's conversation log.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// SharedState is the per-session aggregate handed between stages. Exactly
// one stage owns the state at a time; stages never mutate it in place but
// return a new value built with Merge.
type SharedState struct {
	// Messages is the append-only conversation log across all stages.
	Messages []Message `json:"messages"`

	// CoreContext is the free-form current-topic map read by generation.
	CoreContext map[string]any `json:"core_context"`

	// Thoughts is the working set. Entries are never physically removed;
	// a superseded copy is discarded by the swarm's dedup-by-id pass.
	Thoughts []Thought `json:"thoughts"`

	// InjectionQueue holds the thoughts selected this cycle as relevant
	// enough to merge downstream. Rebuilt on every swarm pass.
	InjectionQueue []Thought `json:"injection_queue"`

	// ActiveAgent is the last stage to run.
	ActiveAgent Agent `json:"active_agent"`

	// LastHandoffReason is a diagnostic annotation on the most recent
	// transition. Empty when no reason was recorded.
	LastHandoffReason string `json:"last_handoff_reason,omitempty"`
}

// NewSharedState returns an empty state positioned at the orchestrator.
func NewSharedState() *SharedState {
	return &SharedState{
		Messages:       []Message{},
		CoreContext:    map[string]any{},
		Thoughts:       []Thought{},
		InjectionQueue: []Thought{},
		ActiveAgent:    AgentOrchestrator,
	}
}

// LastMessage returns the most recent message, if any.
func (s *SharedState) LastMessage() (Message, bool) {
	if len(s.Messages) == 0 {
		return Message{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}

// PrimeThoughts returns the seed thoughts in working-set order.
func (s *SharedState) PrimeThoughts() []Thought {
	var primes []Thought
	for _, t := range s.Thoughts {
		if t.IsPrime() {
			primes = append(primes, t)
		}
	}
	return primes
}

// Clone returns a deep copy of the state. Required for pipz connectors
// that isolate processors, and used by stores to detach snapshots.
func (s *SharedState) Clone() *SharedState {
	c := &SharedState{
		Messages:          append([]Message(nil), s.Messages...),
		Thoughts:          cloneThoughts(s.Thoughts),
		InjectionQueue:    cloneThoughts(s.InjectionQueue),
		ActiveAgent:       s.ActiveAgent,
		LastHandoffReason: s.LastHandoffReason,
	}
	if s.CoreContext != nil {
		c.CoreContext = make(map[string]any, len(s.CoreContext))
		for k, v := range s.CoreContext {
			c.CoreContext[k] = v
		}
	}
	return c
}

func cloneThoughts(in []Thought) []Thought {
	if in == nil {
		return nil
	}
	out := make([]Thought, len(in))
	for i, t := range in {
		out[i] = t.Clone()
	}
	return out
}

// Delta is a partial state update produced by one stage. List fields are
// appended to the originals during Merge; scalar fields overwrite only
// when present (non-nil map, non-empty agent, non-nil reason).
type Delta struct {
	Messages       []Message
	Thoughts       []Thought
	InjectionQueue []Thought
	CoreContext    map[string]any
	ActiveAgent    Agent
	HandoffReason  *string
}

// Validate rejects a malformed delta at the stage boundary rather than
// letting an unknown agent tag propagate through the state machine.
func (d Delta) Validate() error {
	if d.ActiveAgent != "" && !d.ActiveAgent.Valid() {
		return &ValidationError{
			Field:   "active_agent",
			Message: "unknown agent " + string(d.ActiveAgent),
		}
	}
	return nil
}

// Merge reconciles a stage's delta into the full state. Messages, thoughts
// and the injection queue append in order with no deduplication (that is
// the swarm's job); everything else is last-write-wins. The original is
// never modified; absent delta fields are preserved unchanged.
func Merge(original *SharedState, delta Delta) *SharedState {
	merged := original.Clone()

	merged.Messages = append(merged.Messages, delta.Messages...)
	merged.Thoughts = append(merged.Thoughts, cloneThoughts(delta.Thoughts)...)
	merged.InjectionQueue = append(merged.InjectionQueue, cloneThoughts(delta.InjectionQueue)...)

	if delta.CoreContext != nil {
		merged.CoreContext = make(map[string]any, len(delta.CoreContext))
		for k, v := range delta.CoreContext {
			merged.CoreContext[k] = v
		}
	}
	if delta.ActiveAgent != "" {
		merged.ActiveAgent = delta.ActiveAgent
	}
	if delta.HandoffReason != nil {
		merged.LastHandoffReason = *delta.HandoffReason
	}

	return merged
}
