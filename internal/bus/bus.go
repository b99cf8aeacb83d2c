// Package bus fans arena events out to in-process subscribers: the gateway's
// websocket hub, broadcast channels, and anything else that wants a live view
// of a round without coupling to the orchestrator.
package bus

import (
	"sync"
	"time"

	"github.com/agorabot/agora/internal/schema"
)

// Event types.
const (
	EventAgentStatus    = "agent_status"
	EventMessageAdded   = "message_added"
	EventMessageUpdated = "message_updated"
	EventMessageRemoved = "message_removed"
	EventAgentSpoke     = "agent_spoke"
	EventRoundFinished  = "round_finished"
)

// Event is one arena notification.
type Event struct {
	Type      string          `json:"type"`
	AgentID   string          `json:"agentId,omitempty"`
	Status    string          `json:"status,omitempty"`
	MessageID string          `json:"messageId,omitempty"`
	Message   *schema.Message `json:"message,omitempty"`
	Responded int             `json:"responded,omitempty"`
	Err       string          `json:"error,omitempty"`
	Time      time.Time       `json:"time"`
}

// Bus is an in-process pub/sub of Events backed by buffered Go channels.
// Publish never blocks: a subscriber whose buffer is full loses the event
// rather than stalling the round.
type Bus struct {
	mu   sync.Mutex
	subs map[int]chan Event
	next int
}

// New creates an empty Bus.
func New() *Bus {
	return &Bus{subs: make(map[int]chan Event)}
}

// Subscribe registers a subscriber with the given buffer size and returns its
// channel plus a cancel func. Cancel closes the channel.
func (b *Bus) Subscribe(buf int) (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	ch := make(chan Event, buf)
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish delivers e to every subscriber that has buffer room.
func (b *Bus) Publish(e Event) {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
	}
}
