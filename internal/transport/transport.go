// Package transport provides the built-in arena transports: a direct
// provider call with local credentials, and a proxy call through an agora
// gateway that attaches credentials server-side.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/agorabot/agora/internal/arena"
	"github.com/agorabot/agora/internal/config"
	"github.com/agorabot/agora/internal/schema"
)

const requestTimeout = 120 * time.Second

// Direct returns a transport that POSTs to the provider's /chat/completions
// endpoint with bearer auth and any configured extra headers.
func Direct(p config.Provider) arena.Transport {
	client := &http.Client{Timeout: requestTimeout}
	base := strings.TrimRight(p.BaseURL, "/")

	return func(ctx context.Context, req schema.ChatRequest) (*http.Response, error) {
		data, err := json.Marshal(req)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
			base+"/chat/completions", bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		httpReq.Header.Set("Content-Type", "application/json")
		if p.APIKey != "" {
			httpReq.Header.Set("Authorization", "Bearer "+p.APIKey)
		}
		if req.Stream {
			httpReq.Header.Set("Accept", "text/event-stream")
		}
		for k, v := range p.ExtraHeaders {
			httpReq.Header.Set(k, v)
		}

		resp, err := client.Do(httpReq)
		if err != nil {
			return nil, fmt.Errorf("HTTP request: %w", err)
		}
		return resp, nil
	}
}

// proxyRequest is the body of a gateway proxy call. The gateway resolves the
// provider's credentials and forwards the payload unchanged.
type proxyRequest struct {
	Provider string             `json:"provider"`
	Payload  schema.ChatRequest `json:"payload"`
}

// Proxy returns a transport that POSTs {provider, payload} to a gateway's
// /api/chat route. API keys never leave the gateway host.
func Proxy(gatewayURL, providerKey string) arena.Transport {
	client := &http.Client{Timeout: requestTimeout}
	url := strings.TrimRight(gatewayURL, "/") + "/api/chat"

	return func(ctx context.Context, req schema.ChatRequest) (*http.Response, error) {
		data, err := json.Marshal(proxyRequest{Provider: providerKey, Payload: req})
		if err != nil {
			return nil, fmt.Errorf("marshal proxy request: %w", err)
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("build proxy request: %w", err)
		}
		httpReq.Header.Set("Content-Type", "application/json")

		resp, err := client.Do(httpReq)
		if err != nil {
			return nil, fmt.Errorf("proxy request: %w", err)
		}
		return resp, nil
	}
}
