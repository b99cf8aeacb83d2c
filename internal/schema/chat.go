package schema

// ChatMessage is one entry in a chat-completion request.
// Role is "system", "user", or "assistant".
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the OpenAI-compatible chat-completion request body. This
// wire shape must be reproduced exactly for compatibility with existing
// providers and gateways.
type ChatRequest struct {
	Model       string        `json:"model"`
	Temperature float64       `json:"temperature"`
	Messages    []ChatMessage `json:"messages"`
	Stream      bool          `json:"stream,omitempty"`
}

// Completion is the subset of a non-streaming chat-completion response the
// arena cares about: the full text at choices[0].message.content.
type Completion struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Text returns the first choice's content, or "".
func (c Completion) Text() string {
	if len(c.Choices) == 0 {
		return ""
	}
	return c.Choices[0].Message.Content
}

// StreamChunk is one decoded SSE data line of a streaming response, carrying
// an incremental delta at choices[0].delta.content.
type StreamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// Delta returns the first choice's incremental text, or "".
func (c StreamChunk) Delta() string {
	if len(c.Choices) == 0 {
		return ""
	}
	return c.Choices[0].Delta.Content
}
