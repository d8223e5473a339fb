// Package swarm coordinates a small set of cooperating reasoning stages
// that share a mutable working memory of atomic units called Thoughts.
//
// # Core Types
//
//   - [Thought] - atomic unit of working memory with narrative content,
//     provenance links, and a relevance score
//   - [SharedState] - the per-session aggregate passed between stages
//   - [Delta] - a partial update produced by one stage, merged via [Merge]
//
// # Stages
//
// Control flows through a four-state machine: the orchestrator reasons on
// the conversation, the memory swarm evaluates every Thought for relevance,
// the thought generator decomposes context into new Thoughts through a
// guided prompt sequence, and the summary stage condenses injected context.
//
//   - [NewOrchestrator], [NewSummary] - LLM conversation stages
//   - [SwarmEvaluator] - relevance evaluation, deduplication, injection
//   - [ThoughtGenerator] - bounded guided generation
//   - [Runner] - drives the state machine with per-stage checkpointing
//
// Every stage implements pipz.Chainable[*SharedState] and returns a new
// state; stage outputs are reconciled with [Merge] using list-append for
// messages, thoughts and the injection queue, and last-write-wins for
// everything else.
//
// # External Collaborators
//
// The LLM itself is injected as a [Provider] (global, context or
// stage-level, resolved in that reverse order). Session persistence is an
// opaque [Store] keyed by session id; [MemoryStore] and the Postgres-backed
// [SoyStore] are provided. Structured events are emitted through capitan
// signals and can be written to JSONL trace files with a [Tracer].
package swarm
