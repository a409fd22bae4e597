package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const anthropicVersion = "2023-06-01"

// AnthropicProvider speaks the system-field messages envelope: the system
// instruction is a separate request field, not a message entry.
type AnthropicProvider struct {
	BaseURL string
	APIKey  string
	Model   string
	Client  *http.Client
}

type anthropicMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicChatReq struct {
	Model       string         `json:"model"`
	MaxTokens   int            `json:"max_tokens"`
	System      string         `json:"system,omitempty"`
	Messages    []anthropicMsg `json:"messages"`
	Temperature float64        `json:"temperature"`
}

type anthropicChatResp struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func NewAnthropicProvider(baseURL, apiKey, model string) *AnthropicProvider {
	if baseURL == "" {
		baseURL = "https://api.anthropic.com/v1"
	}
	if model == "" {
		model = "claude-3-sonnet-20240229"
	}
	return &AnthropicProvider{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Model:   model,
		Client:  &http.Client{Timeout: 90 * time.Second},
	}
}

func (p *AnthropicProvider) Complete(ctx context.Context, system string, messages []Message) (string, error) {
	if p.Client == nil {
		return "", errors.New("anthropic: http client is nil")
	}
	if strings.TrimSpace(p.APIKey) == "" {
		return "", errors.New("anthropic: api key is required")
	}

	msgs := make([]anthropicMsg, 0, len(messages))
	for _, m := range messages {
		msgs = append(msgs, anthropicMsg{Role: m.Role, Content: m.Content})
	}

	reqBody := anthropicChatReq{
		Model:       p.Model,
		MaxTokens:   2000,
		System:      system,
		Messages:    msgs,
		Temperature: 0.7,
	}

	content, err := p.post(ctx, reqBody)
	if err != nil {
		return "", err
	}
	return content, nil
}

// TestConnection sends a one-word message with a tiny token budget.
func (p *AnthropicProvider) TestConnection(ctx context.Context) bool {
	if p.Client == nil || strings.TrimSpace(p.APIKey) == "" {
		return false
	}
	_, err := p.post(ctx, anthropicChatReq{
		Model:     p.Model,
		MaxTokens: 10,
		Messages:  []anthropicMsg{{Role: "user", Content: "Test"}},
	})
	return err == nil
}

func (p *AnthropicProvider) post(ctx context.Context, reqBody anthropicChatReq) (string, error) {
	b, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/messages", strings.TrimRight(p.BaseURL, "/"))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", p.APIKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := p.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var decoded anthropicChatResp
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_ = json.NewDecoder(resp.Body).Decode(&decoded)
		if decoded.Error != nil && decoded.Error.Message != "" {
			return "", fmt.Errorf("anthropic: %s", decoded.Error.Message)
		}
		return "", fmt.Errorf("anthropic: status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", err
	}
	if decoded.Error != nil && decoded.Error.Message != "" {
		return "", errors.New(decoded.Error.Message)
	}
	if len(decoded.Content) == 0 {
		return "", errors.New("anthropic: empty response")
	}
	return decoded.Content[0].Text, nil
}
