package agent

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/agorabot/agora/internal/schema"
)

func testRoster() schema.Roster {
	return schema.Roster{
		Name: "test",
		Agents: []schema.AgentProfile{
			{ID: "a1", Name: "Ada", Persona: "a pragmatic engineer"},
			{ID: "a2", Name: "Blaise", Persona: "a contrarian philosopher"},
		},
	}
}

func testLog() []schema.Message {
	return []schema.Message{
		schema.NewSystemMessage("m1", "Today's proposition: tabs or spaces?"),
		schema.NewAgentMessage("m2", "a2", "Spaces, obviously."),
	}
}

func TestNew_FreezesSystemPrompt(t *testing.T) {
	roster := testRoster()
	a := New(roster.Agents[0], roster, schema.DefaultPrompts(), nil)

	sp := a.SystemPrompt()
	if !strings.Contains(sp, "Ada") {
		t.Errorf("system prompt missing name: %q", sp)
	}
	if !strings.Contains(sp, "a pragmatic engineer") {
		t.Errorf("system prompt missing persona: %q", sp)
	}
	if strings.Contains(sp, "{{") {
		t.Errorf("unsubstituted template var in %q", sp)
	}
}

func TestBuildChatCompletionRequest(t *testing.T) {
	roster := testRoster()
	a := New(roster.Agents[0], roster, schema.DefaultPrompts(), testLog())

	req := a.BuildChatCompletionRequest("gpt-4o-mini", 0.7, true)
	if req.Model != "gpt-4o-mini" || req.Temperature != 0.7 || !req.Stream {
		t.Fatalf("unexpected request head: %+v", req)
	}
	if len(req.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(req.Messages))
	}
	if req.Messages[0].Role != "system" || req.Messages[0].Content != a.SystemPrompt() {
		t.Errorf("unexpected system message: %+v", req.Messages[0])
	}
	user := req.Messages[1]
	if user.Role != "user" {
		t.Errorf("unexpected user role %q", user.Role)
	}
	if !strings.Contains(user.Content, "Moderator: Today's proposition: tabs or spaces?") {
		t.Errorf("narrator line missing from user prompt:\n%s", user.Content)
	}
	if !strings.Contains(user.Content, "Blaise: Spaces, obviously.") {
		t.Errorf("agent line missing from user prompt:\n%s", user.Content)
	}
}

func TestRenderChatLog_UnknownSpeaker(t *testing.T) {
	roster := testRoster()
	log := []schema.Message{schema.NewAgentMessage("m1", "ghost", "boo")}
	got := renderChatLog(log, roster, schema.DefaultPrompts())
	if got != "Unknown: boo" {
		t.Errorf("got %q", got)
	}
}

func TestSyncContext_PatchesInPlace(t *testing.T) {
	roster := testRoster()
	log := testLog()
	a := New(roster.Agents[0], roster, schema.DefaultPrompts(), log)

	log[1].Content = "Spaces. Final answer."
	log[1].Time = log[1].Time.Add(time.Second)
	a.SyncContext(log)

	ctx := a.Context()
	if ctx[1].Content != "Spaces. Final answer." {
		t.Errorf("content not patched: %q", ctx[1].Content)
	}
	if ctx[0].ID != "m1" || ctx[1].ID != "m2" {
		t.Errorf("id sequence changed: %+v", ctx)
	}
}

func TestSyncContext_Idempotent(t *testing.T) {
	roster := testRoster()
	log := testLog()
	a := New(roster.Agents[0], roster, schema.DefaultPrompts(), log)

	a.SyncContext(log)
	first := a.Context()
	a.SyncContext(log)
	second := a.Context()

	if !reflect.DeepEqual(first, second) {
		t.Errorf("second sync mutated the mirror:\n%+v\n%+v", first, second)
	}
}

func TestSyncContext_FallsBackOnDivergence(t *testing.T) {
	roster := testRoster()
	a := New(roster.Agents[0], roster, schema.DefaultPrompts(), testLog())

	// Truncated log: identity sequence diverges, mirror must be replaced.
	truncated := []schema.Message{schema.NewSystemMessage("m9", "fresh start")}
	a.SyncContext(truncated)

	ctx := a.Context()
	if len(ctx) != 1 || ctx[0].ID != "m9" {
		t.Errorf("mirror not replaced: %+v", ctx)
	}
}

func TestObserveMutations(t *testing.T) {
	roster := testRoster()
	a := New(roster.Agents[0], roster, schema.DefaultPrompts(), nil)

	m := schema.NewAgentMessage("m1", "a2", "hello")
	a.ObserveMessageAdded(m)
	if got := a.Context(); len(got) != 1 || got[0].Content != "hello" {
		t.Fatalf("add not mirrored: %+v", got)
	}

	m.Content = "hello again"
	a.ObserveMessageUpdated(m)
	if got := a.Context(); got[0].Content != "hello again" {
		t.Fatalf("update not mirrored: %+v", got)
	}

	a.ObserveMessageRemoved("m1")
	if got := a.Context(); len(got) != 0 {
		t.Fatalf("remove not mirrored: %+v", got)
	}
}

func TestObserveAdded_CopiesMessage(t *testing.T) {
	roster := testRoster()
	a := New(roster.Agents[0], roster, schema.DefaultPrompts(), nil)

	m := schema.NewAgentMessage("m1", "a2", "original")
	a.ObserveMessageAdded(m)
	m.Content = "mutated by caller"

	if got := a.Context(); got[0].Content != "original" {
		t.Errorf("mirror aliased the caller's message: %q", got[0].Content)
	}
}

// upcaser exercises all four capability transform points.
type upcaser struct{ gotAgentID string }

func (u *upcaser) Name() string { return "upcaser" }

func (u *upcaser) TransformSystemPrompt(agentID, prompt string) string {
	u.gotAgentID = agentID
	return prompt + " SHOUT."
}

func (u *upcaser) TransformChatLog(_, chatLog string) string {
	return strings.ToUpper(chatLog)
}

func (u *upcaser) TransformUserPrompt(_, prompt string) string {
	return prompt + "\n(upcased)"
}

func (u *upcaser) TransformResponse(_ string, d Decision) Decision {
	d.Content = strings.ToUpper(d.Content)
	return d
}

func TestCapabilityHooks(t *testing.T) {
	roster := testRoster()
	hook := &upcaser{}
	a := New(roster.Agents[0], roster, schema.DefaultPrompts(), testLog(), hook)

	if hook.gotAgentID != "a1" {
		t.Errorf("hook did not receive agent id, got %q", hook.gotAgentID)
	}
	if !strings.HasSuffix(a.SystemPrompt(), "SHOUT.") {
		t.Errorf("system prompt hook not applied: %q", a.SystemPrompt())
	}

	req := a.BuildChatCompletionRequest("m", 0, false)
	user := req.Messages[1].Content
	if !strings.Contains(user, "BLAISE: SPACES, OBVIOUSLY.") {
		t.Errorf("chat log hook not applied:\n%s", user)
	}
	if !strings.HasSuffix(user, "(upcased)") {
		t.Errorf("user prompt hook not applied:\n%s", user)
	}

	d := a.ParseResponse(`{"should_respond": true, "content": "quiet words"}`)
	if d.Content != "QUIET WORDS" {
		t.Errorf("response hook not applied: %q", d.Content)
	}
}
