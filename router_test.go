package swarm

import "testing"

func TestRouteAfterMemorySwarmHighScore(t *testing.T) {
	state := NewSharedState()
	state.Thoughts = append(state.Thoughts, mustThought(t, "relevant", 0.9, false))

	if next := RouteAfterMemorySwarm(state); next != AgentSummary {
		t.Errorf("expected summary for score 0.9, got %s", next)
	}
}

func TestRouteAfterMemorySwarmLowScore(t *testing.T) {
	state := NewSharedState()
	state.Thoughts = append(state.Thoughts, mustThought(t, "weak", 0.5, false))

	if next := RouteAfterMemorySwarm(state); next != AgentThoughtGenerator {
		t.Errorf("expected thought_generator for score 0.5, got %s", next)
	}
}

func TestRouteAfterMemorySwarmThresholdBoundary(t *testing.T) {
	state := NewSharedState()
	state.Thoughts = append(state.Thoughts, mustThought(t, "boundary", RelevanceThreshold, false))

	// Exactly at threshold counts as relevant.
	if next := RouteAfterMemorySwarm(state); next != AgentSummary {
		t.Errorf("expected summary at threshold, got %s", next)
	}
}

func TestRouteAfterMemorySwarmEmptyWorkingSet(t *testing.T) {
	if next := RouteAfterMemorySwarm(NewSharedState()); next != AgentSummary {
		t.Errorf("expected summary for empty working set, got %s", next)
	}
}

func TestRouteAfterMemorySwarmChecksLastThought(t *testing.T) {
	state := NewSharedState()
	state.Thoughts = append(state.Thoughts,
		mustThought(t, "old and relevant", 0.9, false),
		mustThought(t, "fresh and weak", 0.42, false),
	)

	if next := RouteAfterMemorySwarm(state); next != AgentThoughtGenerator {
		t.Errorf("expected routing on the most recent thought, got %s", next)
	}
}

func TestRouterSinglePass(t *testing.T) {
	router := NewRouter()
	state := NewSharedState()
	state.Thoughts = append(state.Thoughts, mustThought(t, "relevant", 0.9, false))

	sequence := []Agent{AgentOrchestrator}
	current := AgentOrchestrator
	for current != AgentTerminal {
		current = router.Next(current, state)
		sequence = append(sequence, current)
		if len(sequence) > 10 {
			t.Fatalf("router did not terminate: %v", sequence)
		}
	}

	want := []Agent{AgentOrchestrator, AgentMemorySwarm, AgentSummary, AgentOrchestrator, AgentTerminal}
	if len(sequence) != len(want) {
		t.Fatalf("expected %v, got %v", want, sequence)
	}
	for i := range want {
		if sequence[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, sequence)
		}
	}
}

func TestRouterGeneratorDetour(t *testing.T) {
	router := NewRouter()
	state := NewSharedState()
	state.Thoughts = append(state.Thoughts, mustThought(t, "weak", 0.42, false))

	if next := router.Next(AgentMemorySwarm, state); next != AgentThoughtGenerator {
		t.Fatalf("expected generator detour, got %s", next)
	}
	if next := router.Next(AgentThoughtGenerator, state); next != AgentMemorySwarm {
		t.Fatalf("expected generator to return to memory swarm, got %s", next)
	}
}

func TestRouterReset(t *testing.T) {
	router := NewRouter()
	state := NewSharedState()

	router.Next(AgentOrchestrator, state)
	router.Next(AgentOrchestrator, state)
	if next := router.Next(AgentOrchestrator, state); next != AgentTerminal {
		t.Fatalf("expected terminal after repeated orchestrator visits, got %s", next)
	}

	router.Reset()
	if next := router.Next(AgentOrchestrator, state); next != AgentMemorySwarm {
		t.Errorf("expected fresh pass after reset, got %s", next)
	}
}

func TestAgentValid(t *testing.T) {
	for _, a := range []Agent{AgentOrchestrator, AgentMemorySwarm, AgentThoughtGenerator, AgentSummary, AgentTerminal} {
		if !a.Valid() {
			t.Errorf("expected %s to be valid", a)
		}
	}
	if Agent("bogus").Valid() {
		t.Error("expected bogus agent to be invalid")
	}
}
