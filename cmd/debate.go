package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/agorabot/agora/internal/agent"
	"github.com/agorabot/agora/internal/arena"
	"github.com/agorabot/agora/internal/config"
	"github.com/agorabot/agora/internal/proposition"
	"github.com/agorabot/agora/internal/runner"
	"github.com/agorabot/agora/internal/schema"
	"github.com/agorabot/agora/internal/transport"
)

var (
	debateProvider    string
	debateRoster      string
	debateProposition string
	debatePropURL     string
	debateRounds      int
	debateMaxAgents   int
	debateTemperature float64
	debateModel       string
	debateStream      bool
	debateGatewayURL  string
)

var debateCmd = &cobra.Command{
	Use:   "debate",
	Short: "Run a debate in the terminal",
	RunE:  runDebate,
}

func init() {
	debateCmd.Flags().StringVarP(&debateProvider, "provider", "p", "", "Provider key from config")
	debateCmd.Flags().StringVarP(&debateRoster, "roster", "r", "", "Roster key from config")
	debateCmd.Flags().StringVarP(&debateProposition, "proposition", "P", "", "Proposition to debate")
	debateCmd.Flags().StringVar(&debatePropURL, "proposition-url", "", "Fetch the proposition from a web page")
	debateCmd.Flags().IntVar(&debateRounds, "rounds", 1, "Number of rounds")
	debateCmd.Flags().IntVar(&debateMaxAgents, "max-agents", 5, "Response budget per round")
	debateCmd.Flags().Float64VarP(&debateTemperature, "temperature", "t", 0.7, "Sampling temperature")
	debateCmd.Flags().StringVarP(&debateModel, "model", "m", "", "Model override (default: provider's first model)")
	debateCmd.Flags().BoolVarP(&debateStream, "stream", "s", false, "Stream responses as they arrive")
	debateCmd.Flags().StringVar(&debateGatewayURL, "gateway", "", "Route requests through an agora gateway instead of calling the provider directly")
}

func runDebate(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(config.ConfigPath())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	prop := debateProposition
	if prop == "" && debatePropURL != "" {
		fmt.Printf("Fetching proposition from %s...\n", debatePropURL)
		prop, err = proposition.FromURL(ctx, debatePropURL, 0)
		if err != nil {
			return err
		}
	}
	if prop == "" {
		return fmt.Errorf("a proposition is required: pass --proposition or --proposition-url")
	}

	_, roster, ok := cfg.Roster(debateRoster)
	if !ok {
		return fmt.Errorf("no rosters configured, run `agora init` first")
	}

	opts := []runner.Option{
		runner.WithObservers(consoleObservers(roster, debateStream)),
	}
	if debateGatewayURL != "" {
		opts = append(opts, runner.WithTransportFactory(
			func(key string, _ config.Provider) arena.Transport {
				return transport.Proxy(debateGatewayURL, key)
			}))
	}

	fmt.Printf("%s %s\n\n", logo, strings.Split(prop, "\n")[0])

	out, err := runner.New(cfg, opts...).Run(ctx, runner.Options{
		Provider:    debateProvider,
		Roster:      debateRoster,
		Proposition: prop,
		Rounds:      debateRounds,
		MaxAgents:   debateMaxAgents,
		Model:       debateModel,
		Temperature: debateTemperature,
		Stream:      debateStream,
	})
	if err != nil {
		return err
	}
	if out.Err != "" {
		return fmt.Errorf("debate aborted: %s", out.Err)
	}

	spoke := 0
	for _, n := range out.Responded {
		spoke += n
	}
	fmt.Printf("\n✓ %d rounds, %d responses, %d messages\n", len(out.Responded), spoke, len(out.Log))
	return nil
}

// consoleObservers prints the debate as it happens. In streaming mode each
// update appends the new suffix of the message; otherwise whole messages
// print on arrival.
func consoleObservers(roster schema.Roster, stream bool) arena.Observers {
	printed := map[string]int{} // message id -> chars already printed
	name := func(m schema.Message) string {
		if m.AgentID == nil {
			return "moderator"
		}
		if p := roster.FindAgent(*m.AgentID); p != nil {
			return p.Name
		}
		return *m.AgentID
	}

	obs := arena.Observers{}
	if stream {
		obs.OnMessageAdded = func(m schema.Message) {
			if m.AgentID == nil {
				return
			}
			fmt.Printf("%s: ", name(m))
			printed[m.ID] = 0
		}
		obs.OnMessageUpdated = func(m schema.Message) {
			n := printed[m.ID]
			if len(m.Content) > n {
				fmt.Print(m.Content[n:])
				printed[m.ID] = len(m.Content)
			}
		}
		obs.OnMessageRemoved = func(id string) {
			if _, ok := printed[id]; ok {
				fmt.Println(" [withdrawn]")
				delete(printed, id)
			}
		}
		obs.OnAgentSpoke = func(_ schema.Message) { fmt.Print("\n\n") }
	} else {
		obs.OnMessageAdded = func(m schema.Message) {
			if m.AgentID == nil {
				return
			}
			fmt.Printf("%s: %s\n\n", name(m), m.Content)
		}
	}
	obs.OnAgentStatus = func(agentID string, status agent.Status) {
		if status == agent.StatusThinking {
			fmt.Fprintf(os.Stderr, "  ↳ %s is thinking...\r", agentID)
		}
	}
	return obs
}
