package swarm

// Default tunables for the swarm. These can be overridden per-component
// through builder methods where available, or globally by setting the
// package variables before constructing stages.
var (
	// RelevanceThreshold is the score at or above which a thought is
	// considered relevant by the router after a swarm pass. Distinct from
	// InjectionThreshold and must stay independently tunable.
	RelevanceThreshold = 0.85

	// InjectionThreshold is the score a thought must strictly exceed
	// during evaluation to enter the injection queue.
	InjectionThreshold = 0.70

	// RelevantScore and IrrelevantScore are the two scores the keyword
	// heuristic maps evaluation responses onto.
	RelevantScore   = 0.85
	IrrelevantScore = 0.42

	// DefaultGeneratedRelevance is the starting score for thoughts
	// produced by the guided generation sequence.
	DefaultGeneratedRelevance = 0.68

	// DefaultSeedRelevance is assigned to seed records that carry no
	// relevance score of their own, and to the fallback seed.
	DefaultSeedRelevance = 0.65

	// DefaultMaxGuidedSteps bounds a normal generation cycle. The hard
	// ceiling is the length of the guided prompt sequence.
	DefaultMaxGuidedSteps = 4

	// MismatchGenerationSteps bounds the nested generation the swarm
	// triggers when an evaluation reports a mismatch.
	MismatchGenerationSteps = 2

	// EvaluationContextLimit is the number of characters of the most
	// recent message shared as evaluation context for a swarm pass.
	EvaluationContextLimit = 400

	// PrimeNarrativeLimit truncates each prime narrative when building
	// the inspiration block for generation prompts.
	PrimeNarrativeLimit = 140

	// DefaultMaxTransitions caps state-machine hops per run, guarding the
	// swarm/generator cycle against runaway execution.
	DefaultMaxTransitions = 25

	// DefaultTemperature is used for every provider call; the stages are
	// deterministic by design.
	DefaultTemperature float32 = 0.0
)
