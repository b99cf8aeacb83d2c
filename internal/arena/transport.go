package arena

import (
	"context"
	"net/http"

	"github.com/agorabot/agora/internal/schema"
)

// Transport performs the network call for one chat-completion request and
// returns the raw HTTP response. The orchestrator owns response consumption:
// a non-streaming body is one JSON document with the full text at
// choices[0].message.content; a streaming body is a server-sent-event stream
// of "data: <json-or-[DONE]>" lines with deltas at choices[0].delta.content.
//
// Injecting the transport keeps the arena free of provider and credential
// concerns; see the transport package for the direct and proxy
// implementations.
type Transport func(ctx context.Context, req schema.ChatRequest) (*http.Response, error)
