// Package proposition turns a web page into debate material: the readable
// text of a URL becomes the proposition put before the roster.
package proposition

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
)

const (
	fetchTimeout = 30 * time.Second
	userAgent    = "Mozilla/5.0 (compatible; agora/1.0)"
	// DefaultMaxChars keeps fetched pages from blowing up the system prompt.
	DefaultMaxChars = 4000
)

// FromURL fetches rawURL and extracts its readable text. maxChars <= 0 uses
// DefaultMaxChars. The page title, when present, leads the text.
func FromURL(ctx context.Context, rawURL string, maxChars int) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return "", fmt.Errorf("invalid url %q", rawURL)
	}
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	client := &http.Client{Timeout: fetchTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: HTTP %d", rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	article, err := readability.FromReader(strings.NewReader(string(body)), parsed)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", rawURL, err)
	}

	text := collapseWhitespace(article.TextContent)
	if text == "" {
		return "", fmt.Errorf("no readable text at %s", rawURL)
	}
	if article.Title != "" {
		text = article.Title + "\n\n" + text
	}
	if len(text) > maxChars {
		text = text[:maxChars]
	}

	slog.Info("proposition fetched", "url", rawURL, "chars", len(text), "title", article.Title)
	return text, nil
}

// collapseWhitespace trims lines and squeezes blank-line runs.
func collapseWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	var out []string
	blank := false
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, l)
	}
	return strings.TrimRight(strings.Join(out, "\n"), "\n")
}
