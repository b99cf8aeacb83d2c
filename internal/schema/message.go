// Package schema defines the shared data model of the arena: the message log,
// agent profiles, the chat-completion wire format, and the prompt templates.
package schema

import "time"

// Role of a log entry.
const (
	RoleSystem = "system" // narrator / proposition messages
	RoleAgent  = "agent"  // something a persona said
)

// Message is one entry in the shared conversation log. Ordering is insertion
// order; the log is the canonical transcript of a session.
//
// AgentID is nil for system/narrator messages. Content is mutated in place
// (looked up by ID) while a streaming placeholder accumulates tokens.
type Message struct {
	ID      string         `json:"id"`
	AgentID *string        `json:"agentId"`
	Role    string         `json:"role"`
	Content string         `json:"content"`
	Time    time.Time      `json:"time"`
	Meta    map[string]any `json:"meta,omitempty"`
}

// NewSystemMessage creates a narrator message.
func NewSystemMessage(id, content string) Message {
	return Message{ID: id, Role: RoleSystem, Content: content, Time: time.Now()}
}

// NewAgentMessage creates a message attributed to agentID.
func NewAgentMessage(id, agentID, content string) Message {
	return Message{ID: id, AgentID: &agentID, Role: RoleAgent, Content: content, Time: time.Now()}
}

// Clone returns a deep copy of m.
func (m Message) Clone() Message {
	out := m
	if m.AgentID != nil {
		id := *m.AgentID
		out.AgentID = &id
	}
	if m.Meta != nil {
		meta := make(map[string]any, len(m.Meta))
		for k, v := range m.Meta {
			meta[k] = v
		}
		out.Meta = meta
	}
	return out
}

// CloneLog deep-copies a message log. The arena never aliases a caller's
// slice; every mutation goes through observer callbacks instead.
func CloneLog(log []Message) []Message {
	out := make([]Message, len(log))
	for i, m := range log {
		out[i] = m.Clone()
	}
	return out
}
