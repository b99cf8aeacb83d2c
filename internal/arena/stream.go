package arena

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/agorabot/agora/internal/schema"
)

// consumeStream reads a server-sent-event body incrementally and returns the
// accumulated text. Each "data:" line is JSON-decoded; lines that fail to
// decode are skipped (partial frames, heartbeats); a literal [DONE] payload
// ends the read. onDelta is called with the full accumulated text after every
// extracted delta so observers see live growth. ctx is consulted between
// chunk reads.
func consumeStream(ctx context.Context, body io.Reader, onDelta func(accumulated string)) (string, error) {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var acc strings.Builder
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return acc.String(), err
		}
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(line[len("data:"):])
		if data == "" {
			continue
		}
		if data == "[DONE]" {
			break
		}
		var chunk schema.StreamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			continue
		}
		if delta := chunk.Delta(); delta != "" {
			acc.WriteString(delta)
			if onDelta != nil {
				onDelta(acc.String())
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return acc.String(), fmt.Errorf("read event stream: %w", err)
	}
	return acc.String(), nil
}
