package agent

import (
	"encoding/json"
	"strings"

	"github.com/agorabot/agora/internal/shared/textutil"
)

// Decision is the typed outcome of one model reply: speak or stay silent.
type Decision struct {
	ShouldRespond bool
	Content       string
}

// ParseDecision turns raw model output into a Decision. It strips code-fence
// wrappers and <think> blocks, then expects a JSON object with a
// "should_respond" bool and a "content" string. Missing or mistyped fields
// coerce to false / "".
//
// When the text is not a JSON object at all, the whole trimmed text is
// treated as something the agent wants to say: better to show malformed text
// verbatim than to silence a model that forgot the JSON contract.
// Never fails.
func ParseDecision(raw string) Decision {
	body := strings.TrimSpace(textutil.StripThink(raw))
	body = stripFences(body)

	var obj map[string]any
	if err := json.Unmarshal([]byte(body), &obj); err != nil || obj == nil {
		return Decision{ShouldRespond: true, Content: body}
	}

	var d Decision
	if b, ok := obj["should_respond"].(bool); ok {
		d.ShouldRespond = b
	}
	if s, ok := obj["content"].(string); ok {
		d.Content = s
	}
	return d
}

// stripFences removes a surrounding markdown code fence (``` or ```json).
func stripFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
