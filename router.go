package swarm

// Agent identifies a stage of the swarm's state machine.
type Agent string

// The four reasoning stages plus the terminal marker.
const (
	AgentOrchestrator     Agent = "orchestrator"
	AgentMemorySwarm      Agent = "memory_swarm"
	AgentThoughtGenerator Agent = "thought_generator"
	AgentSummary          Agent = "summary"
	AgentTerminal         Agent = "terminal"
)

// Valid reports whether a is one of the known stages.
func (a Agent) Valid() bool {
	switch a {
	case AgentOrchestrator, AgentMemorySwarm, AgentThoughtGenerator, AgentSummary, AgentTerminal:
		return true
	}
	return false
}

// RouteAfterMemorySwarm decides where control goes once a swarm pass has
// finished: back through the generator while the last thought scored below
// RelevanceThreshold, otherwise on to summary. An empty working set also
// goes to summary. The queue check keeps its own branch even though both
// it and the default resolve to summary today.
func RouteAfterMemorySwarm(state *SharedState) Agent {
	if len(state.Thoughts) == 0 {
		return AgentSummary
	}

	last := state.Thoughts[len(state.Thoughts)-1]
	if last.Relevance < RelevanceThreshold {
		return AgentThoughtGenerator
	}

	if len(state.InjectionQueue) > 0 {
		return AgentSummary
	}

	return AgentSummary
}

// Router holds the swarm's transition table. The orchestrator is visited
// twice per run: once on entry, and once after summary, at which point the
// machine exits.
type Router struct {
	orchestratorVisits int
}

// NewRouter returns a router positioned before the first transition.
func NewRouter() *Router {
	return &Router{}
}

// Next returns the stage that follows current given the merged state.
// State-dependent routing only happens after the memory swarm; every other
// edge is unconditional.
func (r *Router) Next(current Agent, state *SharedState) Agent {
	switch current {
	case AgentOrchestrator:
		r.orchestratorVisits++
		if r.orchestratorVisits > 1 {
			return AgentTerminal
		}
		return AgentMemorySwarm
	case AgentMemorySwarm:
		return RouteAfterMemorySwarm(state)
	case AgentThoughtGenerator:
		return AgentMemorySwarm
	case AgentSummary:
		return AgentOrchestrator
	default:
		return AgentTerminal
	}
}

// Reset returns the router to its pre-run position.
func (r *Router) Reset() {
	r.orchestratorVisits = 0
}
