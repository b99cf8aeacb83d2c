package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/agorabot/agora/internal/bus"
	"github.com/agorabot/agora/internal/config"
	"github.com/agorabot/agora/internal/runner"
	"github.com/agorabot/agora/internal/schema"
)

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		Providers: map[string]config.Provider{
			"local": {Name: "Local", BaseURL: baseURL, APIKey: "sk-secret", Models: []string{"m1", "m2"}},
		},
		Rosters: map[string]schema.Roster{
			"duo": {Name: "Duo", Agents: []schema.AgentProfile{
				{ID: "a", Name: "Alice", Persona: "pro"},
				{ID: "b", Name: "Bob", Persona: "con"},
			}},
		},
		Prompts: schema.DefaultPrompts(),
	}
}

type fakeRunner struct {
	gotOpts runner.Options
	out     *runner.Outcome
	err     error
}

func (f *fakeRunner) Run(ctx context.Context, opts runner.Options) (*runner.Outcome, error) {
	f.gotOpts = opts
	return f.out, f.err
}

func TestProvidersRedactsKeys(t *testing.T) {
	srv := httptest.NewServer(NewServer(testConfig("http://x"), bus.New(), nil).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/providers")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if strings.Contains(string(body), "sk-secret") {
		t.Fatal("API key leaked in provider listing")
	}

	var got []providerInfo
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 || got[0].Key != "local" || !got[0].HasKey || len(got[0].Models) != 2 {
		t.Fatalf("providers = %+v", got)
	}
}

func TestRostersListing(t *testing.T) {
	srv := httptest.NewServer(NewServer(testConfig("http://x"), bus.New(), nil).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/rosters")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	var got []rosterInfo
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 || got[0].Key != "duo" || len(got[0].Agents) != 2 {
		t.Fatalf("rosters = %+v", got)
	}
}

func TestChatProxyAttachesCredentials(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("upstream path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-secret" {
			t.Errorf("Authorization = %q", got)
		}
		var req schema.ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		if req.Model != "m1" {
			t.Errorf("model = %q", req.Model)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"choices":[{"message":{"content":"ok"}}]}`)
	}))
	defer upstream.Close()

	srv := httptest.NewServer(NewServer(testConfig(upstream.URL+"/v1"), bus.New(), nil).Handler())
	defer srv.Close()

	body, _ := json.Marshal(chatRequest{
		Provider: "local",
		Payload:  schema.ChatRequest{Model: "m1", Messages: []schema.ChatMessage{{Role: "user", Content: "hi"}}},
	})
	resp, err := http.Post(srv.URL+"/api/chat", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type = %q", ct)
	}
	out, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(out), `"ok"`) {
		t.Fatalf("body = %s", out)
	}
}

func TestChatProxyPassesThroughUpstreamStatus(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer upstream.Close()

	srv := httptest.NewServer(NewServer(testConfig(upstream.URL), bus.New(), nil).Handler())
	defer srv.Close()

	body, _ := json.Marshal(chatRequest{Provider: "local"})
	resp, err := http.Post(srv.URL+"/api/chat", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", resp.StatusCode)
	}
}

func TestRoundsEndpoint(t *testing.T) {
	fr := &fakeRunner{out: &runner.Outcome{
		Provider:  "local",
		Roster:    "duo",
		Model:     "m1",
		Log:       []schema.Message{schema.NewSystemMessage("m-prop", "p")},
		Responded: []int{2},
	}}
	srv := httptest.NewServer(NewServer(testConfig("http://x"), bus.New(), fr).Handler())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/rounds", "application/json",
		strings.NewReader(`{"roster":"duo","proposition":"cities should ban cars","rounds":1}`))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if fr.gotOpts.Proposition != "cities should ban cars" || fr.gotOpts.Roster != "duo" {
		t.Fatalf("options = %+v", fr.gotOpts)
	}
	var out runner.Outcome
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Roster != "duo" || len(out.Log) != 1 {
		t.Fatalf("outcome = %+v", out)
	}
}

func TestRoundsWithoutRunner(t *testing.T) {
	srv := httptest.NewServer(NewServer(testConfig("http://x"), bus.New(), nil).Handler())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/rounds", "application/json", strings.NewReader(`{}`))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotImplemented {
		t.Fatalf("status = %d, want 501", resp.StatusCode)
	}
}

func TestWebsocketRelaysBusEvents(t *testing.T) {
	b := bus.New()
	srv := httptest.NewServer(NewServer(testConfig("http://x"), b, nil).Handler())
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Subscription races the publish; retry briefly.
	deadline := time.Now().Add(2 * time.Second)
	conn.SetReadDeadline(deadline)
	go func() {
		for time.Now().Before(deadline) {
			b.Publish(bus.Event{Type: bus.EventAgentSpoke, AgentID: "a"})
			time.Sleep(20 * time.Millisecond)
		}
	}()

	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var e bus.Event
	if err := json.Unmarshal(data, &e); err != nil {
		t.Fatalf("decode frame: %v", err)
	}
	if e.Type != bus.EventAgentSpoke || e.AgentID != "a" {
		t.Fatalf("event = %+v", e)
	}
}
