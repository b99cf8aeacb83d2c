package schema

import "regexp"

// ArenaPrompts is the bundle of named template strings used to build agent
// prompts and narrator messages. Templates use {{var}} substitution; an
// unknown variable renders empty, never an error.
type ArenaPrompts struct {
	SystemName        string `json:"systemName" yaml:"systemName"`               // display label for narrator messages
	UnknownAgent      string `json:"unknownAgent" yaml:"unknownAgent"`           // label when a speaker is not in the roster
	SystemProposition string `json:"systemProposition" yaml:"systemProposition"` // vars: proposition
	AgentSystemBase   string `json:"agentSystemBase" yaml:"agentSystemBase"`     // shared persona instructions
	AgentPersona      string `json:"agentPersona" yaml:"agentPersona"`           // vars: name, persona
	UserChatLog       string `json:"userChatLog" yaml:"userChatLog"`             // vars: chat_log
}

var templateVar = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}`)

// Render substitutes {{var}} tokens in tmpl from vars. It is a literal string
// replace: no nesting, no conditionals. Unknown variables render empty.
func Render(tmpl string, vars map[string]string) string {
	return templateVar.ReplaceAllStringFunc(tmpl, func(tok string) string {
		name := templateVar.FindStringSubmatch(tok)[1]
		return vars[name]
	})
}

// DefaultPrompts returns the built-in prompt bundle. A config file may
// override any field.
func DefaultPrompts() ArenaPrompts {
	return ArenaPrompts{
		SystemName:        "Moderator",
		UnknownAgent:      "Unknown",
		SystemProposition: "Today's proposition: {{proposition}}",
		AgentSystemBase: "You are a participant in a live multi-party debate. " +
			"Read the chat log, then decide whether you have something worth adding. " +
			"Reply with a JSON object: {\"should_respond\": <bool>, \"content\": \"<your reply>\"}. " +
			"Stay silent (should_respond=false) when you have nothing new to say.",
		AgentPersona: "Your name is {{name}}. Your persona: {{persona}}",
		UserChatLog:  "Here is the chat log so far:\n\n{{chat_log}}",
	}
}
