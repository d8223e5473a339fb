package swarm

// System prompts for the conversation stages. Each takes the current date
// via fmt.Sprintf.
const (
	orchestratorSystemPrompt = `You are the Orchestrator Agent in the swarm system.
Your role is to maintain the main line of reasoning, coordinate other agents when needed,
and give clear, structured answers to the user.

Current date: %s

Rules:
- If the user asks for a summary, condensed version, or shorter explanation, write your full reasoning first, then end your response with:
  "Now I will ask the Summary Agent to condense this."
- Be concise unless more detail is explicitly requested.
- Use clear numbering or bullets when appropriate.`

	summarySystemPrompt = `You are the Summary Agent in the swarm system.
Your role is to condense and merge incoming thoughts or contexts into a coherent, concise summary.
You focus on clarity, remove redundancy, and preserve key insights.

Current date: %s

Be extremely concise and factual.`

	memorySystemPrompt = `You are a Memory Agent in the swarm.
Hold one Thought, evaluate relevance to core context via CoT.
If applicable (score > 0.7), prepare injection.
Else, re-frame and check for mismatch -> request new Thought.

Current date: %s

Output: Relevance score, decision, and action.`

	generatorSystemPrompt = `You are the Thought Generator Agent in the swarm.
Your role is to create new atomic Thoughts based on core context and mismatches.
Use CoT to ensure factual, reflective Thoughts.

Current date: %s

Output format: Narrative paragraph + meta summary.`
)

// metaMarker splits a generation reply into narrative and meta narrative.
const metaMarker = "Meta:"

// defaultMetaNarrative is used when a reply carries no meta marker.
const defaultMetaNarrative = "Generated from guided reflection step"

// guidedSequence is the fixed ordered set of generation templates used to
// decompose context into new thoughts. Each template takes the core
// content and the prime inspiration block, in that order. The sequence
// length is the hard ceiling on generation steps.
var guidedSequence = []string{
	`Identify the essential facts in the following context and state them as one reflective thought.

Context:
%[1]s

Prime inspirations:
%[2]s

Respond with a short narrative paragraph, then "Meta:" followed by a one-line scope summary.`,

	`Extract the top-level keywords and themes from the following context and relate them to each other in one thought.

Context:
%[1]s

Prime inspirations:
%[2]s

Respond with a short narrative paragraph, then "Meta:" followed by a one-line scope summary.`,

	`Surface the low-level details and qualifiers hidden in the following context that a top-level reading would miss.

Context:
%[1]s

Prime inspirations:
%[2]s

Respond with a short narrative paragraph, then "Meta:" followed by a one-line scope summary.`,

	`Classify the following context: is it a question or a statement? Explain what kind of response it calls for.

Context:
%[1]s

Prime inspirations:
%[2]s

Respond with a short narrative paragraph, then "Meta:" followed by a one-line scope summary.`,

	`Estimate how many reasoning steps a complete treatment of the following context requires, and name them.

Context:
%[1]s

Prime inspirations:
%[2]s

Respond with a short narrative paragraph, then "Meta:" followed by a one-line scope summary.`,

	`Assess whether the following context should be decomposed into smaller sub-problems, and if so, propose the split.

Context:
%[1]s

Prime inspirations:
%[2]s

Respond with a short narrative paragraph, then "Meta:" followed by a one-line scope summary.`,
}

// GuidedSequenceLength is the number of templates in the guided prompt
// sequence and therefore the hard ceiling for any generation cycle.
func GuidedSequenceLength() int {
	return len(guidedSequence)
}
