package swarm

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/zoobzio/capitan"
)

// Trace log filenames within the tracer directory.
const (
	orchestratorTraceFile = "orchestrator_dialogue.log"
	generatorTraceFile    = "thoughts_generator.log"
	rawTraceDir           = "raw"
)

// Tracer mirrors selected signals into JSON-lines files: the
// orchestrator dialogue, the generator transcript, and one raw file per
// evaluated thought. Tracing is best-effort; write failures never reach
// the reasoning path.
type Tracer struct {
	dir       string
	mu        sync.Mutex
	listeners []*capitan.Listener
}

// NewTracer attaches trace hooks writing under dir. The directory is
// created if needed.
func NewTracer(dir string) (*Tracer, error) {
	if err := os.MkdirAll(filepath.Join(dir, rawTraceDir), 0o755); err != nil {
		return nil, err
	}
	t := &Tracer{dir: dir}

	t.listeners = append(t.listeners,
		capitan.Hook(OrchestratorStep, func(_ context.Context, e *capitan.Event) {
			step, _ := FieldStep.From(e)
			output, _ := FieldOutput.From(e)
			active, _ := FieldActiveThoughts.From(e)
			injected, _ := FieldInjectedSummary.From(e)
			t.appendLine(orchestratorTraceFile, map[string]any{
				"timestamp":          time.Now().UTC().Format(time.RFC3339),
				"step":               step,
				"output":             output,
				"injected_summary":   injected,
				"active_thought_ids": active,
			})
		}),
		capitan.Hook(GenerationStep, func(_ context.Context, e *capitan.Event) {
			step, _ := FieldStep.From(e)
			prompt, _ := FieldPrompt.From(e)
			reply, _ := FieldReply.From(e)
			t.appendLine(generatorTraceFile, map[string]any{
				"timestamp": time.Now().UTC().Format(time.RFC3339),
				"step":      step,
				"prompt":    prompt,
				"reply":     reply,
			})
		}),
		capitan.Hook(ThoughtEvaluated, func(_ context.Context, e *capitan.Event) {
			id, ok := FieldThoughtID.From(e)
			if !ok {
				return
			}
			snippet, _ := FieldSnippet.From(e)
			score, _ := FieldScore.From(e)
			decision, _ := FieldDecision.From(e)
			reasoning, _ := FieldReasoning.From(e)
			t.appendLine(filepath.Join(rawTraceDir, "thought-"+id+".log"), map[string]any{
				"timestamp":       time.Now().UTC().Format(time.RFC3339),
				"thought_id":      id,
				"snippet":         snippet,
				"relevance_score": score,
				"decision":        decision,
				"reasoning":       reasoning,
			})
		}),
	)
	return t, nil
}

// appendLine writes one JSON line to the named trace file. Errors are
// dropped.
func (t *Tracer) appendLine(name string, record map[string]any) {
	line, err := json.Marshal(record)
	if err != nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	f, err := os.OpenFile(filepath.Join(t.dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return
	}
	defer f.Close()
	f.Write(append(line, '\n'))
}

// Close detaches all trace hooks.
func (t *Tracer) Close() error {
	for _, l := range t.listeners {
		l.Close()
	}
	t.listeners = nil
	return nil
}
