package runner

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/agorabot/agora/internal/arena"
	"github.com/agorabot/agora/internal/config"
	"github.com/agorabot/agora/internal/schema"
)

func testConfig() *config.Config {
	return &config.Config{
		Providers: map[string]config.Provider{
			"local": {Name: "Local", BaseURL: "http://localhost:9", Models: []string{"test-model"}},
		},
		Rosters: map[string]schema.Roster{
			"duo": {Name: "Duo", Agents: []schema.AgentProfile{
				{ID: "a", Name: "Alice", Persona: "argues for"},
				{ID: "b", Name: "Bob", Persona: "argues against"},
			}},
		},
		Prompts: schema.DefaultPrompts(),
	}
}

func replyTransport(calls *atomic.Int32) arena.Transport {
	return func(ctx context.Context, req schema.ChatRequest) (*http.Response, error) {
		n := calls.Add(1)
		body := fmt.Sprintf(`{"choices":[{"message":{"content":"{\"should_respond\":true,\"content\":\"point %d\"}"}}]}`, n)
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(bytes.NewReader([]byte(body))),
		}, nil
	}
}

func TestRunSeedsPropositionAndRunsRounds(t *testing.T) {
	var calls atomic.Int32
	r := New(testConfig(),
		WithTransportFactory(func(_ string, _ config.Provider) arena.Transport {
			return replyTransport(&calls)
		}),
		WithRand(nil))

	out, err := r.Run(context.Background(), Options{
		Proposition: "cities should ban cars",
		Rounds:      2,
		MaxAgents:   2,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Provider != "local" || out.Roster != "duo" || out.Model != "test-model" {
		t.Fatalf("resolution: %+v", out)
	}
	// Proposition plus two speakers per round.
	if len(out.Log) != 5 {
		t.Fatalf("log length = %d, want 5", len(out.Log))
	}
	if out.Log[0].Role != schema.RoleSystem {
		t.Fatalf("first message role = %q", out.Log[0].Role)
	}
	if got, want := len(out.Responded), 2; got != want {
		t.Fatalf("rounds completed = %d, want %d", got, want)
	}
	for i, n := range out.Responded {
		if n != 2 {
			t.Fatalf("round %d responded = %d, want 2", i, n)
		}
	}
	if out.Err != "" {
		t.Fatalf("unexpected error %q", out.Err)
	}
}

func TestRunRequiresProposition(t *testing.T) {
	r := New(testConfig())
	if _, err := r.Run(context.Background(), Options{}); err == nil {
		t.Fatal("expected error for empty proposition")
	}
}

func TestRunStopsAfterRoundError(t *testing.T) {
	var calls atomic.Int32
	r := New(testConfig(),
		WithTransportFactory(func(_ string, _ config.Provider) arena.Transport {
			return func(ctx context.Context, req schema.ChatRequest) (*http.Response, error) {
				calls.Add(1)
				return nil, fmt.Errorf("connection refused")
			}
		}),
		WithRand(nil))

	out, err := r.Run(context.Background(), Options{Proposition: "p", Rounds: 3})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Err == "" {
		t.Fatal("expected round error in outcome")
	}
	if len(out.Responded) != 1 {
		t.Fatalf("rounds attempted = %d, want 1", len(out.Responded))
	}
	if calls.Load() != 1 {
		t.Fatalf("transport calls = %d, want 1", calls.Load())
	}
	if len(out.Log) != 1 {
		t.Fatalf("log should keep the proposition, got %d messages", len(out.Log))
	}
}

func TestRunUnknownKeysFallBack(t *testing.T) {
	var calls atomic.Int32
	r := New(testConfig(),
		WithTransportFactory(func(_ string, _ config.Provider) arena.Transport {
			return replyTransport(&calls)
		}),
		WithRand(nil))

	out, err := r.Run(context.Background(), Options{
		Provider:    "nope",
		Roster:      "missing",
		Proposition: "p",
		MaxAgents:   1,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Provider != "local" || out.Roster != "duo" {
		t.Fatalf("fallback resolution: provider=%q roster=%q", out.Provider, out.Roster)
	}
}
