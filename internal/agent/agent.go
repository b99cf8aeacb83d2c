// Package agent implements the persona agent: identity, a frozen system
// prompt, a private mirror of the shared conversation log, request building,
// and response parsing. Agents never make network calls themselves; the
// arena injects a transport.
package agent

import (
	"github.com/agorabot/agora/internal/schema"
)

// Status of an agent within a round. Mutated only by the orchestrator.
type Status string

const (
	StatusIdle     Status = "idle"
	StatusThinking Status = "thinking"
	StatusSpeaking Status = "speaking"
)

// Agent is the runtime wrapper around an AgentProfile.
//
// The context field is a private ordered mirror of the shared message log,
// used to render chat-log prompts without re-deriving them from scratch each
// turn. After any orchestrator mutation to the shared log the mirror must be
// brought back in sync before this agent's next request is built.
type Agent struct {
	profile schema.AgentProfile
	roster  schema.Roster
	prompts schema.ArenaPrompts

	status       Status
	systemPrompt string
	context      []schema.Message
	caps         []Capability
}

// New constructs an agent from its profile plus the full roster (needed for
// speaker-name lookups), the prompt bundle, and an optional initial context.
// The system prompt is computed here and frozen; SystemPromptTransformer
// capabilities run once, in registration order.
func New(profile schema.AgentProfile, roster schema.Roster, prompts schema.ArenaPrompts, initial []schema.Message, caps ...Capability) *Agent {
	a := &Agent{
		profile: profile,
		roster:  roster,
		prompts: prompts,
		status:  StatusIdle,
		caps:    caps,
	}

	sp := buildSystemPrompt(profile, prompts)
	for _, c := range caps {
		if t, ok := c.(SystemPromptTransformer); ok {
			sp = t.TransformSystemPrompt(profile.ID, sp)
		}
	}
	a.systemPrompt = sp

	a.ResetContext(initial)
	return a
}

func (a *Agent) ID() string                    { return a.profile.ID }
func (a *Agent) Name() string                  { return a.profile.Name }
func (a *Agent) Profile() schema.AgentProfile  { return a.profile }
func (a *Agent) SystemPrompt() string          { return a.systemPrompt }
func (a *Agent) Status() Status                { return a.status }
func (a *Agent) SetStatus(s Status)            { a.status = s }

// Context returns a copy of the private mirror.
func (a *Agent) Context() []schema.Message { return schema.CloneLog(a.context) }

// ResetContext replaces the mirror wholesale with a deep copy of messages.
func (a *Agent) ResetContext(messages []schema.Message) {
	a.context = schema.CloneLog(messages)
}

// SyncContext brings the mirror in line with the live shared log. When the
// id sequences match it patches only content/time of changed entries (the
// common streaming case); any identity divergence falls back to ResetContext.
// Calling it twice with the same log is a no-op the second time.
func (a *Agent) SyncContext(messages []schema.Message) {
	if len(messages) != len(a.context) {
		a.ResetContext(messages)
		return
	}
	for i := range messages {
		if messages[i].ID != a.context[i].ID {
			a.ResetContext(messages)
			return
		}
	}
	for i := range messages {
		if messages[i].Content != a.context[i].Content || !messages[i].Time.Equal(a.context[i].Time) {
			a.context[i].Content = messages[i].Content
			a.context[i].Time = messages[i].Time
		}
	}
}

// ObserveMessageAdded appends a copy of m to the mirror.
func (a *Agent) ObserveMessageAdded(m schema.Message) {
	a.context = append(a.context, m.Clone())
}

// ObserveMessageUpdated patches the mirrored entry with m's id.
func (a *Agent) ObserveMessageUpdated(m schema.Message) {
	for i := range a.context {
		if a.context[i].ID == m.ID {
			a.context[i].Content = m.Content
			a.context[i].Time = m.Time
			return
		}
	}
}

// ObserveMessageRemoved drops the mirrored entry with the given id.
func (a *Agent) ObserveMessageRemoved(id string) {
	for i := range a.context {
		if a.context[i].ID == id {
			a.context = append(a.context[:i], a.context[i+1:]...)
			return
		}
	}
}

// BuildChatCompletionRequest produces the two-message request for this
// agent's next turn: the frozen system prompt plus the rendered chat log.
// It reads the agent's own mirror, not the live shared log, so per-agent
// capabilities can diverge from the canonical transcript.
func (a *Agent) BuildChatCompletionRequest(model string, temperature float64, stream bool) schema.ChatRequest {
	chatLog := renderChatLog(a.context, a.roster, a.prompts)
	for _, c := range a.caps {
		if t, ok := c.(ChatLogTransformer); ok {
			chatLog = t.TransformChatLog(a.profile.ID, chatLog)
		}
	}

	user := schema.Render(a.prompts.UserChatLog, map[string]string{"chat_log": chatLog})
	for _, c := range a.caps {
		if t, ok := c.(UserPromptTransformer); ok {
			user = t.TransformUserPrompt(a.profile.ID, user)
		}
	}

	return schema.ChatRequest{
		Model:       model,
		Temperature: temperature,
		Stream:      stream,
		Messages: []schema.ChatMessage{
			{Role: "system", Content: a.systemPrompt},
			{Role: "user", Content: user},
		},
	}
}

// ParseResponse parses raw model output, then applies ResponseTransformer
// capabilities in registration order.
func (a *Agent) ParseResponse(raw string) Decision {
	d := ParseDecision(raw)
	for _, c := range a.caps {
		if t, ok := c.(ResponseTransformer); ok {
			d = t.TransformResponse(a.profile.ID, d)
		}
	}
	return d
}
