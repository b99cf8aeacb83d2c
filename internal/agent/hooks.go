package agent

// Capability is a transform stage attached to an agent. A stage opts into any
// of the four transform points by implementing the matching interface below;
// the agent invokes stages in registration order and skips points a stage
// does not implement. Every hook receives the agent's id so one stage can be
// shared across agents while staying context-sensitive.
type Capability interface {
	Name() string
}

// SystemPromptTransformer rewrites the frozen system prompt at construction.
type SystemPromptTransformer interface {
	TransformSystemPrompt(agentID, prompt string) string
}

// ChatLogTransformer rewrites the rendered chat-log transcript before it is
// substituted into the user prompt template.
type ChatLogTransformer interface {
	TransformChatLog(agentID, chatLog string) string
}

// UserPromptTransformer rewrites the fully rendered per-turn user prompt.
type UserPromptTransformer interface {
	TransformUserPrompt(agentID, prompt string) string
}

// ResponseTransformer rewrites the parsed decision.
type ResponseTransformer interface {
	TransformResponse(agentID string, d Decision) Decision
}
