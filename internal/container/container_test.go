package container

import (
	"testing"

	"github.com/agorabot/agora/internal/config"
	"github.com/agorabot/agora/internal/schedule"
	"github.com/agorabot/agora/internal/schema"
)

func TestNewWiresAllServices(t *testing.T) {
	cfg := config.DefaultConfig()
	c, err := New(&cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c.EventBus() == nil || c.Runner() == nil || c.Gateway() == nil ||
		c.Schedule() == nil || c.Channels() == nil {
		t.Fatal("container has unwired services")
	}
}

func TestScheduleJobRunsThroughRunner(t *testing.T) {
	// A config with an unreachable provider still wires; the job surfaces
	// the round error instead of panicking.
	cfg := &config.Config{
		Providers: map[string]config.Provider{
			"local": {Name: "Local", BaseURL: "http://127.0.0.1:1", Models: []string{"m"}},
		},
		Rosters: map[string]schema.Roster{
			"duo": {Name: "Duo", Agents: []schema.AgentProfile{{ID: "a", Name: "A", Persona: "x"}}},
		},
		Prompts: schema.DefaultPrompts(),
	}
	cfg.Schedule.Store = t.TempDir() + "/jobs.json"

	c, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	everyMs := int64(60000)
	job, err := c.Schedule().AddJob("t",
		schedule.Spec{Kind: "every", EveryMs: &everyMs},
		schedule.Payload{Roster: "duo", Proposition: "p", Rounds: 1},
		false)
	if err != nil {
		t.Fatalf("AddJob: %v", err)
	}
	if job.ID == "" {
		t.Fatal("job not persisted")
	}
}
