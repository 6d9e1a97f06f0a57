package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"CheeseAgent/internal/config"
	"CheeseAgent/internal/ports"
)

// AssistantClient posts the pending-upload digest to an OpenAI-compatible
// chat endpoint so an external assistant performs the publishing. The
// pipeline itself never uploads anything.
type AssistantClient struct {
	endpoint     string
	model        string
	apiKey       string
	systemPrompt string
	httpClient   *http.Client
}

var _ ports.AssistantClient = (*AssistantClient)(nil)

// NewAssistantClient builds a client from configuration.
func NewAssistantClient(cfg config.AssistantConfig) *AssistantClient {
	return &AssistantClient{
		endpoint:     cfg.Endpoint,
		model:        cfg.Model,
		apiKey:       cfg.APIKey,
		systemPrompt: cfg.SystemPrompt,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

// SendQueueDigest posts the JSON digest as a user message.
func (c *AssistantClient) SendQueueDigest(ctx context.Context, payload []byte) error {
	if c == nil {
		return fmt.Errorf("assistant client is nil")
	}
	if c.apiKey == "" || c.endpoint == "" || c.model == "" {
		return fmt.Errorf("assistant client misconfigured")
	}

	body, err := json.Marshal(map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": safePrompt(c.systemPrompt)},
			{"role": "user", "content": string(payload)},
		},
	})
	if err != nil {
		return fmt.Errorf("marshal assistant payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send digest: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("assistant error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	return nil
}

func safePrompt(prompt string) string {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "You manage an image collection and receive upload queues."
	}
	return prompt
}
