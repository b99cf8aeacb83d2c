package arena

import (
	"fmt"
	"math/rand"

	"github.com/agorabot/agora/internal/schema"
)

// Picker chooses which agent gets the next turn. It keeps a round-robin
// cursor over an ordering of the roster; with a random source the ordering is
// Fisher–Yates shuffled at construction and again whenever the cursor wraps,
// so long sessions don't repeat one fixed cycle.
type Picker struct {
	agents []schema.AgentProfile
	cursor int
	rng    *rand.Rand
}

// NewPicker builds a picker over the roster. rng may be nil to keep roster
// order (useful for tests). An empty roster is an error.
func NewPicker(agents []schema.AgentProfile, rng *rand.Rand) (*Picker, error) {
	if len(agents) == 0 {
		return nil, fmt.Errorf("arena: cannot pick speakers from an empty roster")
	}
	p := &Picker{
		agents: append([]schema.AgentProfile(nil), agents...),
		rng:    rng,
	}
	p.shuffle()
	return p, nil
}

// PickNext returns the next speaker, skipping avoidID (the most recent actual
// speaker) when the roster has another candidate. After one full lap without
// an eligible candidate it returns the first element regardless: the loop
// must never stall just because one agent remains eligible.
func (p *Picker) PickNext(avoidID string) schema.AgentProfile {
	candidate := p.advance()
	if len(p.agents) == 1 || avoidID == "" {
		return candidate
	}
	for lap := 0; candidate.ID == avoidID && lap < len(p.agents); lap++ {
		candidate = p.advance()
	}
	if candidate.ID == avoidID {
		return p.agents[0]
	}
	return candidate
}

func (p *Picker) advance() schema.AgentProfile {
	if p.cursor >= len(p.agents) {
		p.cursor = 0
		p.shuffle()
	}
	a := p.agents[p.cursor]
	p.cursor++
	return a
}

// shuffle is an in-place Fisher–Yates over the current ordering.
func (p *Picker) shuffle() {
	if p.rng == nil {
		return
	}
	for i := len(p.agents) - 1; i > 0; i-- {
		j := p.rng.Intn(i + 1)
		p.agents[i], p.agents[j] = p.agents[j], p.agents[i]
	}
}
