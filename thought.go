package swarm

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Relation is an advisory semantic link between two thoughts. Targets are
// not validated; relations exist for provenance and prompting only.
type Relation struct {
	Type     string `json:"type"`
	TargetID string `json:"target_id"`
	Reason   string `json:"reason"`
}

// Relation types used by the swarm.
const (
	RelationSupports    = "supports"
	RelationContradicts = "contradicts"
	RelationRefines     = "refines"
)

// Thought is the atomic unit of working memory. Seed thoughts carry the
// "prime-" id prefix and are loaded once at session start; generated
// thoughts carry "gen-". An id is never reused: evaluation produces a new
// value with the same id rather than mutating the original, and duplicate
// ids are reconciled by Dedupe, keeping the most recently evaluated copy.
type Thought struct {
	ID            string     `json:"thought_id"`
	Timestamp     string     `json:"thought_timestamp"`
	Origins       []string   `json:"origin_thought_ids"`
	Relations     []Relation `json:"relations"`
	Narrative     string     `json:"narrative"`
	MetaNarrative string     `json:"meta_narrative"`
	Relevance     float64    `json:"relevance_score"`
	IsSeed        bool       `json:"is_seed"`

	// LastEvaluated is an RFC 3339 timestamp set by the swarm on each
	// evaluation pass. Empty until the thought is first evaluated.
	LastEvaluated string `json:"last_evaluated,omitempty"`
}

// Thought id prefixes.
const (
	SeedIDPrefix      = "prime-"
	GeneratedIDPrefix = "gen-"
)

// NewThought builds a fully populated thought with a fresh unique id.
// Narrative fields are trimmed of surrounding whitespace. The relevance
// score must lie in [0,1] or a *ValidationError is returned.
func NewThought(narrative, metaNarrative string, origins []string, relations []Relation, initialRelevance float64, isSeed bool) (Thought, error) {
	if initialRelevance < 0 || initialRelevance > 1 {
		return Thought{}, &ValidationError{
			Field:   "relevance_score",
			Message: fmt.Sprintf("must be in [0,1], got %g", initialRelevance),
		}
	}

	prefix := GeneratedIDPrefix
	if isSeed {
		prefix = SeedIDPrefix
	}

	now := time.Now().UTC()
	id := fmt.Sprintf("%s%s-%s", prefix, now.Format("20060102-150405"), uuid.New().String()[:8])

	if origins == nil {
		origins = []string{}
	}
	if relations == nil {
		relations = []Relation{}
	}

	return Thought{
		ID:            id,
		Timestamp:     now.Format(time.RFC3339),
		Origins:       origins,
		Relations:     relations,
		Narrative:     strings.TrimSpace(narrative),
		MetaNarrative: strings.TrimSpace(metaNarrative),
		Relevance:     initialRelevance,
		IsSeed:        isSeed,
	}, nil
}

// IsPrime reports whether the thought is a seed by id prefix.
func (t Thought) IsPrime() bool {
	return strings.HasPrefix(t.ID, SeedIDPrefix)
}

// Clone returns a deep copy, detaching the provenance slices so the copy
// can be merged or reworked without aliasing the caller's view.
func (t Thought) Clone() Thought {
	c := t
	if t.Origins != nil {
		c.Origins = make([]string, len(t.Origins))
		copy(c.Origins, t.Origins)
	}
	if t.Relations != nil {
		c.Relations = make([]Relation, len(t.Relations))
		copy(c.Relations, t.Relations)
	}
	return c
}

// Dedupe collapses thoughts sharing an id down to the copy with the
// greatest LastEvaluated timestamp; a missing timestamp sorts before any
// set one. Output preserves the order in which ids were first seen. Pure:
// the input slice is never modified, and deduping an already-unique list
// returns an equivalent list.
func Dedupe(thoughts []Thought) []Thought {
	kept := make(map[string]Thought, len(thoughts))
	order := make([]string, 0, len(thoughts))

	for _, t := range thoughts {
		prev, seen := kept[t.ID]
		if !seen {
			kept[t.ID] = t
			order = append(order, t.ID)
			continue
		}
		// RFC 3339 strings compare lexicographically in time order, and
		// the empty string (never evaluated) sorts below all of them.
		if t.LastEvaluated >= prev.LastEvaluated {
			kept[t.ID] = t
		}
	}

	out := make([]Thought, 0, len(order))
	for _, id := range order {
		out = append(out, kept[id])
	}
	return out
}
