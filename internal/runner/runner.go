// Package runner wires configuration, transport and the arena into a single
// debate entry point shared by the CLI, the gateway and the scheduler.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/agorabot/agora/internal/agent"
	"github.com/agorabot/agora/internal/arena"
	"github.com/agorabot/agora/internal/config"
	"github.com/agorabot/agora/internal/schema"
	"github.com/agorabot/agora/internal/shared/textutil"
	"github.com/agorabot/agora/internal/transport"
)

// Options selects what to debate and how.
type Options struct {
	Provider    string // provider key; empty resolves per config defaults
	Roster      string // roster key; empty resolves per config defaults
	Proposition string
	Rounds      int     // number of rounds; zero means 1
	MaxAgents   int     // per-round response budget; zero means 5
	Model       string  // empty means the provider's first model
	Temperature float64 // zero means 0.7
	Stream      bool
}

// Outcome is the record of a finished debate.
type Outcome struct {
	Provider    string           `json:"provider"`
	Roster      string           `json:"roster"`
	Model       string           `json:"model"`
	Proposition string           `json:"proposition"`
	Log         []schema.Message `json:"log"`
	Responded   []int            `json:"responded"` // per completed round
	Err         string           `json:"error,omitempty"`
}

// TransportFactory builds the arena transport for a resolved provider.
// The default is transport.Direct; the CLI swaps in transport.Proxy when
// pointed at a gateway.
type TransportFactory func(key string, p config.Provider) arena.Transport

// Runner runs multi-round debates against a loaded config.
type Runner struct {
	cfg          *config.Config
	obs          arena.Observers
	newTransport TransportFactory
	rand         *rand.Rand
	requester    string
}

// Option customises a Runner.
type Option func(*Runner)

// WithTransportFactory overrides how provider transports are built.
func WithTransportFactory(f TransportFactory) Option {
	return func(r *Runner) { r.newTransport = f }
}

// WithObservers attaches arena observers, typically bus.ArenaObservers.
func WithObservers(obs arena.Observers) Option {
	return func(r *Runner) { r.obs = obs }
}

// WithRand overrides the speaking-order source; nil keeps roster order.
func WithRand(rng *rand.Rand) Option {
	return func(r *Runner) { r.rand = rng }
}

// WithRequester tags rounds with who asked for them, for log attribution.
func WithRequester(name string) Option {
	return func(r *Runner) { r.requester = name }
}

// New creates a Runner over cfg.
func New(cfg *config.Config, opts ...Option) *Runner {
	r := &Runner{
		cfg:       cfg,
		requester: "cli",
		newTransport: func(_ string, p config.Provider) arena.Transport {
			return transport.Direct(p)
		},
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Run resolves the provider and roster, seeds the log with the proposition,
// and runs the requested rounds sequentially. A round error stops further
// rounds but the partial outcome is still returned.
func (r *Runner) Run(ctx context.Context, opts Options) (*Outcome, error) {
	if opts.Proposition == "" {
		return nil, fmt.Errorf("proposition is required")
	}

	provKey, prov, ok := r.cfg.Provider(opts.Provider)
	if !ok {
		return nil, fmt.Errorf("no providers configured")
	}
	rosterKey, roster, ok := r.cfg.Roster(opts.Roster)
	if !ok {
		return nil, fmt.Errorf("no rosters configured")
	}

	model := textutil.StringOrDefault(opts.Model, prov.DefaultModel())
	if model == "" {
		return nil, fmt.Errorf("provider %q has no models configured", provKey)
	}
	rounds := opts.Rounds
	if rounds <= 0 {
		rounds = 1
	}
	maxAgents := opts.MaxAgents
	if maxAgents <= 0 {
		maxAgents = 5
	}
	temperature := opts.Temperature
	if temperature == 0 {
		temperature = 0.7
	}

	log := []schema.Message{arena.NewPropositionMessage(r.cfg.Prompts, opts.Proposition)}
	if r.obs.OnMessageAdded != nil {
		r.obs.OnMessageAdded(log[0].Clone())
	}

	agents := make([]*agent.Agent, 0, len(roster.Agents))
	for _, profile := range roster.Agents {
		agents = append(agents, agent.New(profile, roster, r.cfg.Prompts, log))
	}

	orch := arena.NewOrchestrator(r.newTransport(provKey, prov), r.obs)
	out := &Outcome{
		Provider:    provKey,
		Roster:      rosterKey,
		Model:       model,
		Proposition: opts.Proposition,
		Log:         log,
	}

	slog.Info("debate started",
		"provider", provKey, "roster", rosterKey, "model", model, "rounds", rounds)

	for i := 0; i < rounds; i++ {
		if err := ctx.Err(); err != nil {
			out.Err = err.Error()
			break
		}
		res := orch.Run(ctx, arena.Params{
			Model:       model,
			Temperature: temperature,
			MaxAgents:   maxAgents,
			Stream:      opts.Stream,
			Agents:      agents,
			Log:         out.Log,
			Requester:   r.requester,
			Rand:        r.rand,
		})
		out.Log = res.Log
		out.Responded = append(out.Responded, res.Responded)
		if res.Err != "" {
			out.Err = res.Err
			break
		}
	}

	slog.Info("debate finished",
		"messages", len(out.Log), "rounds", len(out.Responded), "err", out.Err)
	return out, nil
}
