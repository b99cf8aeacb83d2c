package proposition

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const testPage = `<!DOCTYPE html>
<html><head><title>Should cities ban cars?</title></head>
<body>
<article>
<h1>Should cities ban cars?</h1>
<p>Urban planners have argued for decades about the role of the private
automobile in dense cities. Proponents of car-free zones point to air
quality, pedestrian safety, and reclaimed public space.</p>
<p>Opponents counter that bans burden commuters, tradespeople, and anyone
the transit network underserves, and that enforcement costs outweigh the
benefits in most mid-sized cities.</p>
</article>
</body></html>`

func TestFromURLExtractsReadableText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, testPage)
	}))
	defer srv.Close()

	text, err := FromURL(context.Background(), srv.URL, 0)
	if err != nil {
		t.Fatalf("FromURL: %v", err)
	}
	if !strings.HasPrefix(text, "Should cities ban cars?") {
		t.Fatalf("title missing: %q", text[:min(len(text), 60)])
	}
	if !strings.Contains(text, "air") || !strings.Contains(text, "enforcement") {
		t.Fatalf("body text missing: %q", text)
	}
	if strings.Contains(text, "<p>") {
		t.Fatal("markup leaked into proposition")
	}
}

func TestFromURLClampsLength(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprintf(w, "<html><body><article><p>%s</p></article></body></html>",
			strings.Repeat("word ", 500))
	}))
	defer srv.Close()

	text, err := FromURL(context.Background(), srv.URL, 100)
	if err != nil {
		t.Fatalf("FromURL: %v", err)
	}
	if len(text) > 100 {
		t.Fatalf("text length = %d, want <= 100", len(text))
	}
}

func TestFromURLRejectsBadInput(t *testing.T) {
	if _, err := FromURL(context.Background(), "ftp://example.com", 0); err == nil {
		t.Fatal("expected error for non-http scheme")
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()
	if _, err := FromURL(context.Background(), srv.URL, 0); err == nil {
		t.Fatal("expected error for 404")
	}
}

func TestCollapseWhitespace(t *testing.T) {
	in := "  a  \n\n\n\nb\n\n\nc  \n\n"
	want := "a\n\nb\n\nc"
	if got := collapseWhitespace(in); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
