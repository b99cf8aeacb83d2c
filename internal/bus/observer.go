package bus

import (
	"github.com/agorabot/agora/internal/agent"
	"github.com/agorabot/agora/internal/arena"
	"github.com/agorabot/agora/internal/schema"
)

// ArenaObservers bridges an orchestrator's callbacks onto the bus.
func ArenaObservers(b *Bus) arena.Observers {
	return arena.Observers{
		OnAgentStatus: func(agentID string, status agent.Status) {
			b.Publish(Event{Type: EventAgentStatus, AgentID: agentID, Status: string(status)})
		},
		OnMessageAdded: func(msg schema.Message) {
			m := msg.Clone()
			b.Publish(Event{Type: EventMessageAdded, MessageID: m.ID, Message: &m})
		},
		OnMessageUpdated: func(msg schema.Message) {
			m := msg.Clone()
			b.Publish(Event{Type: EventMessageUpdated, MessageID: m.ID, Message: &m})
		},
		OnMessageRemoved: func(id string) {
			b.Publish(Event{Type: EventMessageRemoved, MessageID: id})
		},
		OnAgentSpoke: func(m schema.Message) {
			agentID := ""
			if m.AgentID != nil {
				agentID = *m.AgentID
			}
			b.Publish(Event{Type: EventAgentSpoke, AgentID: agentID, MessageID: m.ID})
		},
		OnRoundFinished: func(responded int, errMsg string) {
			b.Publish(Event{Type: EventRoundFinished, Responded: responded, Err: errMsg})
		},
	}
}
