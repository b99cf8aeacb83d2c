// Package arena implements the round orchestration engine: speaker selection,
// request dispatch through an injected transport, streaming and non-streaming
// response consumption, and the shared-log mutations of one debate round.
package arena

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/agorabot/agora/internal/agent"
	"github.com/agorabot/agora/internal/schema"
	"github.com/agorabot/agora/internal/shared/textutil"
)

// defaultAttemptFactor is the floor of the safety-cap multiplier. The formula
// maxAgents * max(factor, rosterSize) is a heuristic carried over for
// compatibility; tune it through Params.AttemptFactor, don't treat it as a
// proven bound.
const defaultAttemptFactor = 3

// Params configures one round. Not persisted; scoped to a single Run.
type Params struct {
	Model       string
	Temperature float64
	// MaxAgents is the response budget: how many agents may actually speak.
	// Attempts (turns taken, silent or not) are bounded separately.
	MaxAgents int
	Stream    bool
	Agents    []*agent.Agent
	// Log is the shared message log at round start. Run never aliases it.
	Log       []schema.Message
	Requester string
	// AttemptFactor tunes the safety cap; zero means the default of 3.
	AttemptFactor int
	// Rand drives the picker's shuffle; nil keeps roster order.
	Rand *rand.Rand
}

// Result of one round. Err is empty when the round ended by budget or
// safety cap; partial progress is preserved either way.
type Result struct {
	Log       []schema.Message
	Responded int
	Err       string
}

// Orchestrator drives rounds. One round is strictly sequential: exactly one
// request is in flight at any time, so speaking order stays observable and
// every streaming update is attributable to its speaker.
type Orchestrator struct {
	transport Transport
	obs       Observers
}

// NewOrchestrator creates an orchestrator with the given transport and
// observer set.
func NewOrchestrator(t Transport, obs Observers) *Orchestrator {
	return &Orchestrator{transport: t, obs: obs}
}

// Run executes one round: pick a speaker, request, consume, apply, repeat
// until the response budget is met, the attempt cap fires, or a transport
// error aborts the round. Rounds must not run concurrently against the same
// log; serializing invocations is the caller's job.
func (o *Orchestrator) Run(ctx context.Context, p Params) Result {
	log := schema.CloneLog(p.Log)

	profiles := make([]schema.AgentProfile, len(p.Agents))
	byID := make(map[string]*agent.Agent, len(p.Agents))
	for i, a := range p.Agents {
		profiles[i] = a.Profile()
		byID[a.ID()] = a
	}

	picker, err := NewPicker(profiles, p.Rand)
	if err != nil {
		return Result{Log: log, Err: err.Error()}
	}

	factor := p.AttemptFactor
	if factor <= 0 {
		factor = defaultAttemptFactor
	}
	if len(p.Agents) > factor {
		factor = len(p.Agents)
	}
	maxAttempts := p.MaxAgents * factor
	if maxAttempts < p.MaxAgents {
		maxAttempts = p.MaxAgents
	}

	slog.Info("round started",
		"requester", p.Requester,
		"model", p.Model,
		"roster_size", len(p.Agents),
		"max_agents", p.MaxAgents,
		"stream", p.Stream,
	)

	responded, attempts := 0, 0
	var roundErr string

	for responded < p.MaxAgents && attempts < maxAttempts {
		if err := ctx.Err(); err != nil {
			roundErr = err.Error()
			break
		}
		attempts++

		prof := picker.PickNext(lastSpeakerID(log))
		spoke, err := o.takeTurn(ctx, byID[prof.ID], p, &log)
		if err != nil {
			roundErr = err.Error()
			slog.Error("round aborted", "agent", prof.ID, "attempt", attempts, "err", err)
			break
		}
		if spoke {
			responded++
		}
	}

	slog.Info("round finished", "responded", responded, "attempts", attempts, "err", roundErr)
	if o.obs.OnRoundFinished != nil {
		o.obs.OnRoundFinished(responded, roundErr)
	}
	return Result{Log: log, Responded: responded, Err: roundErr}
}

// takeTurn runs one agent's turn against the live log. It returns whether the
// agent actually spoke. Any error aborts the round; the deferred status reset
// keeps the agent idle on every path.
func (o *Orchestrator) takeTurn(ctx context.Context, ag *agent.Agent, p Params, log *[]schema.Message) (bool, error) {
	o.setStatus(ag, agent.StatusThinking)
	defer o.setStatus(ag, agent.StatusIdle)

	ag.SyncContext(*log)
	req := ag.BuildChatCompletionRequest(p.Model, p.Temperature, p.Stream)

	resp, err := o.transport(ctx, req)
	if err != nil {
		return false, fmt.Errorf("agent %s: request: %w", ag.ID(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return false, fmt.Errorf("agent %s: HTTP %d: %s", ag.ID(), resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var text, placeholderID string
	if p.Stream {
		placeholderID = messageID(ag.ID())
		o.setStatus(ag, agent.StatusSpeaking)
		o.addMessage(p, log, schema.NewAgentMessage(placeholderID, ag.ID(), ""))

		text, err = consumeStream(ctx, resp.Body, func(accumulated string) {
			o.updateMessage(p, log, placeholderID, accumulated)
		})
		if err != nil {
			o.removeMessage(p, log, placeholderID)
			return false, fmt.Errorf("agent %s: stream: %w", ag.ID(), err)
		}
	} else {
		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return false, fmt.Errorf("agent %s: read body: %w", ag.ID(), err)
		}
		var comp schema.Completion
		if err := json.Unmarshal(raw, &comp); err != nil {
			return false, fmt.Errorf("agent %s: decode response: %w", ag.ID(), err)
		}
		text = comp.Text()
	}

	d := ag.ParseResponse(text)
	content := strings.TrimSpace(d.Content)

	if d.ShouldRespond && content != "" {
		var final schema.Message
		if placeholderID != "" {
			final = o.updateMessage(p, log, placeholderID, content)
		} else {
			final = schema.NewAgentMessage(messageID(ag.ID()), ag.ID(), content)
			o.addMessage(p, log, final)
		}
		slog.Info("agent spoke", "agent", ag.ID(), "content", textutil.Truncate(content, 80))
		if o.obs.OnAgentSpoke != nil {
			o.obs.OnAgentSpoke(final)
		}
		return true, nil
	}

	// Silence: a streaming placeholder must not linger as an empty bubble.
	if placeholderID != "" {
		o.removeMessage(p, log, placeholderID)
	}
	slog.Info("agent stayed silent", "agent", ag.ID())
	return false, nil
}

func (o *Orchestrator) setStatus(ag *agent.Agent, s agent.Status) {
	ag.SetStatus(s)
	if o.obs.OnAgentStatus != nil {
		o.obs.OnAgentStatus(ag.ID(), s)
	}
}

// addMessage appends m to the round log, every agent mirror, and observers.
func (o *Orchestrator) addMessage(p Params, log *[]schema.Message, m schema.Message) {
	*log = append(*log, m)
	for _, a := range p.Agents {
		a.ObserveMessageAdded(m)
	}
	if o.obs.OnMessageAdded != nil {
		o.obs.OnMessageAdded(m)
	}
}

// updateMessage rewrites the content of the log entry with the given id and
// propagates the change. Returns the updated message.
func (o *Orchestrator) updateMessage(p Params, log *[]schema.Message, id, content string) schema.Message {
	var updated schema.Message
	for i := range *log {
		if (*log)[i].ID == id {
			(*log)[i].Content = content
			(*log)[i].Time = time.Now()
			updated = (*log)[i].Clone()
			break
		}
	}
	for _, a := range p.Agents {
		a.ObserveMessageUpdated(updated)
	}
	if o.obs.OnMessageUpdated != nil {
		o.obs.OnMessageUpdated(updated)
	}
	return updated
}

// removeMessage drops the log entry with the given id and propagates.
func (o *Orchestrator) removeMessage(p Params, log *[]schema.Message, id string) {
	for i := range *log {
		if (*log)[i].ID == id {
			*log = append((*log)[:i], (*log)[i+1:]...)
			break
		}
	}
	for _, a := range p.Agents {
		a.ObserveMessageRemoved(id)
	}
	if o.obs.OnMessageRemoved != nil {
		o.obs.OnMessageRemoved(id)
	}
}

// lastSpeakerID scans from the tail for the most recent agent message.
func lastSpeakerID(log []schema.Message) string {
	for i := len(log) - 1; i >= 0; i-- {
		if log[i].Role == schema.RoleAgent && log[i].AgentID != nil {
			return *log[i].AgentID
		}
	}
	return ""
}

// messageID derives a log id from the speaker and the current time.
func messageID(agentID string) string {
	return fmt.Sprintf("%s-%d", agentID, time.Now().UnixNano())
}

// NewPropositionMessage renders the narrator message that seeds a session log
// with the debate topic.
func NewPropositionMessage(prompts schema.ArenaPrompts, proposition string) schema.Message {
	content := schema.Render(prompts.SystemProposition, map[string]string{"proposition": proposition})
	return schema.NewSystemMessage(messageID("system"), content)
}
