package agent

import (
	"strings"

	"github.com/agorabot/agora/internal/schema"
)

// buildSystemPrompt renders the shared base instructions plus the persona
// template, trimmed and space-joined. Computed once per agent.
func buildSystemPrompt(profile schema.AgentProfile, prompts schema.ArenaPrompts) string {
	base := strings.TrimSpace(prompts.AgentSystemBase)
	persona := strings.TrimSpace(schema.Render(prompts.AgentPersona, map[string]string{
		"name":    profile.Name,
		"persona": profile.Persona,
	}))

	switch {
	case base == "":
		return persona
	case persona == "":
		return base
	default:
		return base + " " + persona
	}
}

// renderChatLog flattens the log into "<speaker>: <content>" lines.
func renderChatLog(log []schema.Message, roster schema.Roster, prompts schema.ArenaPrompts) string {
	lines := make([]string, 0, len(log))
	for _, m := range log {
		lines = append(lines, speakerName(m, roster, prompts)+": "+m.Content)
	}
	return strings.Join(lines, "\n")
}

// speakerName resolves a message's display name: nil agent → the configured
// narrator label; unknown agent id → the configured fallback label.
func speakerName(m schema.Message, roster schema.Roster, prompts schema.ArenaPrompts) string {
	if m.AgentID == nil {
		return prompts.SystemName
	}
	if p := roster.FindAgent(*m.AgentID); p != nil {
		return p.Name
	}
	return prompts.UnknownAgent
}
