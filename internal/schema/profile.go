package schema

// AgentProfile is the static identity of one persona. Immutable after the
// roster is loaded.
type AgentProfile struct {
	ID      string `json:"id" yaml:"id"`
	Name    string `json:"name" yaml:"name"`
	Persona string `json:"persona" yaml:"persona"`
	Accent  string `json:"accent,omitempty" yaml:"accent,omitempty"` // display colour hint
}

// Roster is an ordered set of profiles available to speak in a session.
type Roster struct {
	Name   string         `json:"name" yaml:"name"`
	Agents []AgentProfile `json:"agents" yaml:"agents"`
}

// FindAgent returns the profile with the given id, or nil.
func (r Roster) FindAgent(id string) *AgentProfile {
	for i := range r.Agents {
		if r.Agents[i].ID == id {
			return &r.Agents[i]
		}
	}
	return nil
}
