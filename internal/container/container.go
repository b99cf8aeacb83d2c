// Package container wires core agora services using go.uber.org/dig.
package container

import (
	"context"
	"fmt"

	"go.uber.org/dig"

	"github.com/agorabot/agora/internal/bus"
	"github.com/agorabot/agora/internal/channels"
	"github.com/agorabot/agora/internal/config"
	"github.com/agorabot/agora/internal/gateway"
	"github.com/agorabot/agora/internal/runner"
	"github.com/agorabot/agora/internal/schedule"
)

// Container holds the resolved core service singletons.
// Callers use the typed getter methods; they never need to import dig directly.
type Container struct {
	eventBus *bus.Bus
	runner   *runner.Runner
	gateway  *gateway.Server
	schedule *schedule.Service
	channels *channels.Manager
}

func (c *Container) EventBus() *bus.Bus          { return c.eventBus }
func (c *Container) Runner() *runner.Runner      { return c.runner }
func (c *Container) Gateway() *gateway.Server    { return c.gateway }
func (c *Container) Schedule() *schedule.Service { return c.schedule }
func (c *Container) Channels() *channels.Manager { return c.channels }

// New builds and wires all core services from cfg.
func New(cfg *config.Config) (*Container, error) {
	d := dig.New()

	provide := []any{
		func() *config.Config { return cfg },
		bus.New,
		newRunner,
		newGateway,
		newSchedule,
		channels.NewManager,
	}
	for _, ctor := range provide {
		if err := d.Provide(ctor); err != nil {
			return nil, fmt.Errorf("wire services: %w", err)
		}
	}

	var result *Container
	err := d.Invoke(func(
		eventBus *bus.Bus,
		run *runner.Runner,
		gw *gateway.Server,
		sched *schedule.Service,
		chans *channels.Manager,
	) {
		result = &Container{
			eventBus: eventBus,
			runner:   run,
			gateway:  gw,
			schedule: sched,
			channels: chans,
		}
	})
	if err != nil {
		return nil, fmt.Errorf("wire services: %w", err)
	}
	return result, nil
}

func newRunner(cfg *config.Config, b *bus.Bus) *runner.Runner {
	return runner.New(cfg,
		runner.WithObservers(bus.ArenaObservers(b)),
		runner.WithRequester("gateway"))
}

func newGateway(cfg *config.Config, b *bus.Bus, run *runner.Runner) *gateway.Server {
	return gateway.NewServer(cfg, b, run)
}

// newSchedule binds job execution to the runner and, when a job asks for
// delivery, the channel manager.
func newSchedule(cfg *config.Config, run *runner.Runner, chans *channels.Manager) *schedule.Service {
	svc := schedule.NewService(cfg.ScheduleStorePath())
	svc.SetOnJob(func(ctx context.Context, job schedule.Job) (string, error) {
		out, err := run.Run(ctx, runner.Options{
			Provider:    job.Payload.Provider,
			Roster:      job.Payload.Roster,
			Proposition: job.Payload.Proposition,
			Rounds:      job.Payload.Rounds,
			MaxAgents:   job.Payload.MaxAgents,
		})
		if err != nil {
			return "", err
		}
		if out.Err != "" {
			return "", fmt.Errorf("debate aborted: %s", out.Err)
		}

		_, roster, _ := cfg.Roster(job.Payload.Roster)
		transcript := channels.RenderTranscript(roster, out.Log)
		if job.Payload.Deliver {
			channel, to := "", ""
			if job.Payload.Channel != nil {
				channel = *job.Payload.Channel
			}
			if job.Payload.To != nil {
				to = *job.Payload.To
			}
			if err := chans.Broadcast(ctx, channel, to, transcript); err != nil {
				return transcript, err
			}
		}
		return transcript, nil
	})
	return svc
}
