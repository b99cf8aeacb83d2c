package arena

import (
	"github.com/agorabot/agora/internal/agent"
	"github.com/agorabot/agora/internal/schema"
)

// Observers receives side-effect notifications during a round. Every field is
// optional and none of the return values influence control flow; callers use
// them to keep external state (a UI store, the websocket hub) in sync with
// the arena's copy-on-mutate log.
type Observers struct {
	OnAgentStatus    func(agentID string, status agent.Status)
	OnMessageAdded   func(m schema.Message)
	OnMessageUpdated func(m schema.Message)
	OnMessageRemoved func(id string)
	OnAgentSpoke     func(m schema.Message)
	OnRoundFinished  func(responded int, errMsg string)
}
