package swarm

import (
	"time"

	"github.com/zoobzio/pipz"
)

// Reliability wrappers for stages. The runner performs no retries of its
// own; callers who want resilience wrap individual stages and install
// them with Runner.WithStage.

// Retry wraps a stage so transient failures are retried immediately up
// to maxAttempts.
//
// Example:
//
//	runner.WithStage(swarm.AgentSummary,
//	    swarm.Retry("reliable-summary", swarm.NewSummary(), 3))
func Retry(name string, stage pipz.Chainable[*SharedState], maxAttempts int) *pipz.Retry[*SharedState] {
	return pipz.NewRetry(pipz.NewIdentity(name, ""), stage, maxAttempts)
}

// Backoff wraps a stage with exponential-backoff retries, for providers
// that need time to recover between attempts.
func Backoff(name string, stage pipz.Chainable[*SharedState], maxAttempts int, baseDelay time.Duration) *pipz.Backoff[*SharedState] {
	return pipz.NewBackoff(pipz.NewIdentity(name, ""), stage, maxAttempts, baseDelay)
}

// Timeout wraps a stage with a hard time limit. When the limit expires
// the provider call is canceled and an error is returned.
//
// Example:
//
//	runner.WithStage(swarm.AgentOrchestrator,
//	    swarm.Timeout("bounded-reasoning", swarm.NewOrchestrator(), 30*time.Second))
func Timeout(name string, stage pipz.Chainable[*SharedState], duration time.Duration) *pipz.Timeout[*SharedState] {
	return pipz.NewTimeout(pipz.NewIdentity(name, ""), stage, duration)
}
