package swarm

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/zoobzio/capitan"
)

// SeedFilePattern matches prime thought files within a seeds directory.
const SeedFilePattern = "prime-thought-*.json"

// seedFile is the on-disk shape of a prime thought. The relevance score
// is a pointer so an absent field can fall back to the seed default.
type seedFile struct {
	ID            string   `json:"thought_id"`
	Narrative     string   `json:"narrative"`
	MetaNarrative string   `json:"meta_narrative"`
	Relevance     *float64 `json:"relevance_score"`
	OriginIDs     []string `json:"origin_thought_ids"`
}

// LoadSeeds reads prime thoughts from dir. Malformed or incomplete files
// are skipped with a warning rather than failing the load; a missing
// directory yields zero seeds.
func LoadSeeds(ctx context.Context, dir string) ([]Thought, error) {
	matches, err := filepath.Glob(filepath.Join(dir, SeedFilePattern))
	if err != nil {
		return nil, err
	}

	var seeds []Thought
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			capitan.Error(ctx, SeedSkipped,
				FieldSeedFile.Field(path),
				FieldError.Field(err),
			)
			continue
		}

		var raw seedFile
		if err := json.Unmarshal(data, &raw); err != nil {
			capitan.Error(ctx, SeedSkipped,
				FieldSeedFile.Field(path),
				FieldError.Field(err),
			)
			continue
		}
		if raw.ID == "" || raw.Narrative == "" || raw.MetaNarrative == "" {
			capitan.Error(ctx, SeedSkipped,
				FieldSeedFile.Field(path),
				FieldError.Field(&ValidationError{Field: "thought_id", Message: "seed missing required fields"}),
			)
			continue
		}

		relevance := DefaultSeedRelevance
		if raw.Relevance != nil {
			relevance = *raw.Relevance
		}
		if relevance < 0 || relevance > 1 {
			capitan.Error(ctx, SeedSkipped,
				FieldSeedFile.Field(path),
				FieldError.Field(&ValidationError{Field: "relevance_score", Message: "must be between 0.0 and 1.0"}),
			)
			continue
		}

		origins := raw.OriginIDs
		if origins == nil {
			origins = []string{}
		}
		seeds = append(seeds, Thought{
			ID:            raw.ID,
			Timestamp:     time.Now().UTC().Format(time.RFC3339),
			Origins:       origins,
			Relations:     []Relation{},
			Narrative:     raw.Narrative,
			MetaNarrative: raw.MetaNarrative,
			Relevance:     relevance,
			IsSeed:        true,
		})

		capitan.Emit(ctx, SeedLoaded,
			FieldSeedFile.Field(path),
			FieldThoughtID.Field(raw.ID),
			FieldScore.Field(float32(relevance)),
		)
	}

	capitan.Emit(ctx, SeedLoadCompleted,
		FieldSeedCount.Field(len(seeds)),
	)
	return seeds, nil
}

// FallbackSeed creates the single seed used when a session starts with no
// prime thoughts on disk.
func FallbackSeed(userMessage string) (Thought, error) {
	return NewThought(
		"Initial parsing of query: "+userMessage,
		"Bootstrap seed derived from the first user message",
		nil, nil, DefaultSeedRelevance, true,
	)
}
