package arena

import (
	"context"
	"strings"
	"testing"
)

func TestConsumeStream_AccumulatesDeltas(t *testing.T) {
	body := strings.Join([]string{
		`data: {"choices":[{"delta":{"content":"Hel"}}]}`,
		``,
		`data: {"choices":[{"delta":{"content":"lo"}}]}`,
		`data: [DONE]`,
		`data: {"choices":[{"delta":{"content":"ignored after done"}}]}`,
	}, "\n")

	var updates []string
	got, err := consumeStream(context.Background(), strings.NewReader(body), func(acc string) {
		updates = append(updates, acc)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Hello" {
		t.Errorf("accumulated %q", got)
	}
	want := []string{"Hel", "Hello"}
	if len(updates) != len(want) {
		t.Fatalf("got %d updates: %v", len(updates), updates)
	}
	for i := range want {
		if updates[i] != want[i] {
			t.Errorf("update %d: got %q, want %q", i, updates[i], want[i])
		}
	}
}

func TestConsumeStream_SkipsMalformedLines(t *testing.T) {
	body := strings.Join([]string{
		`: heartbeat comment`,
		`data: {not json`,
		`data:`,
		`event: ping`,
		`data: {"choices":[{"delta":{"content":"ok"}}]}`,
	}, "\n")

	got, err := consumeStream(context.Background(), strings.NewReader(body), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ok" {
		t.Errorf("accumulated %q", got)
	}
}

func TestConsumeStream_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := consumeStream(ctx, strings.NewReader("data: [DONE]\n"), nil)
	if err == nil {
		t.Fatal("expected context error")
	}
}
