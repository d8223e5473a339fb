package swarm

import "github.com/zoobzio/capitan"

// Signal definitions for swarm events.
// Signals follow the pattern: swarm.<entity>.<event>.
var (
	// Thought lifecycle signals.
	ThoughtCreated = capitan.NewSignal(
		"swarm.thought.created",
		"New thought added to the working set",
	)
	ThoughtEvaluated = capitan.NewSignal(
		"swarm.thought.evaluated",
		"Memory swarm scored a thought and chose a decision",
	)
	ThoughtSkipped = capitan.NewSignal(
		"swarm.thought.skipped",
		"Evaluation call produced no usable content for a thought",
	)

	// Stage execution signals.
	StageStarted = capitan.NewSignal(
		"swarm.stage.started",
		"Stage began execution",
	)
	StageCompleted = capitan.NewSignal(
		"swarm.stage.completed",
		"Stage finished successfully",
	)
	StageFailed = capitan.NewSignal(
		"swarm.stage.failed",
		"Stage encountered an error",
	)

	// Orchestrator trace signal.
	OrchestratorStep = capitan.NewSignal(
		"swarm.orchestrator.step",
		"Orchestrator produced one reasoning step",
	)

	// Generation signals.
	GenerationStep = capitan.NewSignal(
		"swarm.generation.step",
		"One guided generation prompt and its reply",
	)
	GenerationSkipped = capitan.NewSignal(
		"swarm.generation.skipped",
		"Generation exited early for lack of context",
	)
	GenerationAborted = capitan.NewSignal(
		"swarm.generation.aborted",
		"A guided step failed; remaining steps abandoned",
	)

	// Routing signals.
	Handoff = capitan.NewSignal(
		"swarm.router.handoff",
		"Control transferred between stages",
	)

	// Seed loading signals.
	SeedLoaded = capitan.NewSignal(
		"swarm.seeds.loaded",
		"Seed thought loaded from disk",
	)
	SeedLoadCompleted = capitan.NewSignal(
		"swarm.seeds.completed",
		"Seed loading pass finished",
	)
	SeedSkipped = capitan.NewSignal(
		"swarm.seeds.skipped",
		"Malformed seed record skipped",
	)

	// Session persistence signals.
	SessionResumed = capitan.NewSignal(
		"swarm.session.resumed",
		"Session state loaded or initialized",
	)
	SessionCheckpointed = capitan.NewSignal(
		"swarm.session.checkpoint",
		"Session snapshot saved",
	)
	SessionCheckpointFailed = capitan.NewSignal(
		"swarm.session.checkpoint_failed",
		"Session snapshot could not be saved",
	)
)

// Field keys for swarm event data.
var (
	// Session and routing metadata.
	FieldSession     = capitan.NewStringKey("session_id")
	FieldAgent       = capitan.NewStringKey("agent")
	FieldFromAgent   = capitan.NewStringKey("from_agent")
	FieldToAgent     = capitan.NewStringKey("to_agent")
	FieldReason      = capitan.NewStringKey("reason")
	FieldStageName   = capitan.NewStringKey("stage_name")
	FieldTemperature = capitan.NewFloat32Key("temperature")

	// Thought metadata.
	FieldThoughtID      = capitan.NewStringKey("thought_id")
	FieldScore          = capitan.NewFloat32Key("relevance_score")
	FieldDecision       = capitan.NewStringKey("decision")
	FieldReasoning      = capitan.NewStringKey("reasoning")
	FieldSnippet        = capitan.NewStringKey("snippet")
	FieldThoughtCount   = capitan.NewIntKey("thought_count")
	FieldQueueSize      = capitan.NewIntKey("queue_size")
	FieldActiveThoughts = capitan.NewStringKey("active_thought_ids")

	// Generation and orchestrator trace metadata.
	FieldStep            = capitan.NewIntKey("step")
	FieldPrompt          = capitan.NewStringKey("prompt")
	FieldReply           = capitan.NewStringKey("reply")
	FieldOutput          = capitan.NewStringKey("output")
	FieldInjectedSummary = capitan.NewStringKey("injected_summary")

	// Seed metadata.
	FieldSeedFile  = capitan.NewStringKey("seed_file")
	FieldSeedCount = capitan.NewIntKey("seed_count")

	// Provider accounting.
	FieldTokens = capitan.NewIntKey("tokens")

	// Timing.
	FieldStageDuration = capitan.NewDurationKey("stage_duration")

	// Error information.
	FieldError = capitan.NewErrorKey("error")
)
