package swarm

import (
	"errors"
	"fmt"
)

// ValidationError reports a field that failed construction-time validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
}

// ErrNoEvaluation is returned by a ThoughtEvaluator when the evaluation
// call produced no usable content. The swarm treats it as non-fatal and
// skips the thought for the current cycle.
var ErrNoEvaluation = errors.New("evaluation call returned no usable content")

// ErrTransitionLimit is returned by Runner.Run when the state machine
// exceeds its transition budget without reaching the terminal state.
var ErrTransitionLimit = errors.New("state machine exceeded transition limit")
