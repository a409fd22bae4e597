package tutor

import (
	"context"
	"log"

	"github.com/larklabs/gastutor/internal/ai"
)

const (
	// RemoteConfidence tags answers from the remote model. The model reports
	// no calibrated confidence, so a fixed high constant is used.
	RemoteConfidence = 0.95
	// FallbackConfidence tags locally synthesized answers. Strictly below
	// RemoteConfidence so callers can tell the paths apart.
	FallbackConfidence = 0.85
	// WelcomeConfidence tags the synthesized session welcome message.
	WelcomeConfidence = 1.0

	defaultContextWindow = 10
)

// Response is a fully post-processed tutoring answer.
type Response struct {
	Content          string            `json:"content"`
	Confidence       float64           `json:"confidence"`
	Sources          []string          `json:"sources"`
	CodeReferences   []CodeReference   `json:"code_references"`
	ModuleReferences []ModuleReference `json:"module_references"`
}

// Responder builds the tier prompt, calls the configured provider and
// post-processes the completion. Every remote failure is recovered here:
// callers always get an answer, never an error.
type Responder struct {
	provider      ai.Provider
	contextWindow int
}

// NewResponder wraps a provider. A nil provider means no credential is
// configured; every turn then takes the fallback path.
func NewResponder(provider ai.Provider, contextWindow int) *Responder {
	if contextWindow <= 0 || contextWindow > 100 {
		contextWindow = defaultContextWindow
	}
	return &Responder{provider: provider, contextWindow: contextWindow}
}

// GenerateResponse answers one tutoring turn. history is the conversation so
// far, oldest first; only the trailing non-system window is forwarded to the
// provider.
func (r *Responder) GenerateResponse(ctx context.Context, message string, level Level, history []ai.Message) *Response {
	if r.provider == nil {
		return r.fallback(message, level)
	}

	cfg := Lookup(level)
	system := BuildSystemPrompt(cfg.Level, cfg)

	msgs := r.windowed(history)
	msgs = append(msgs, ai.Message{Role: "user", Content: message})

	content, err := r.provider.Complete(ctx, system, msgs)
	if err != nil {
		log.Printf("tutor: provider call failed level=%s err=%v", level, err)
		return r.fallback(message, level)
	}

	return &Response{
		Content:          content,
		Confidence:       RemoteConfidence,
		Sources:          Sources(cfg.Level),
		CodeReferences:   ExtractCodeReferences(content, cfg.Level),
		ModuleReferences: ExtractModuleReferences(content),
	}
}

// TestConnection probes the configured provider without touching any session.
func (r *Responder) TestConnection(ctx context.Context) bool {
	if r.provider == nil {
		return false
	}
	return r.provider.TestConnection(ctx)
}

func (r *Responder) windowed(history []ai.Message) []ai.Message {
	filtered := make([]ai.Message, 0, len(history))
	for _, m := range history {
		if m.Role == "system" {
			continue
		}
		role := "user"
		if m.Role == "assistant" {
			role = "assistant"
		}
		filtered = append(filtered, ai.Message{Role: role, Content: m.Content})
	}
	if len(filtered) > r.contextWindow {
		filtered = filtered[len(filtered)-r.contextWindow:]
	}
	return filtered
}

func (r *Responder) fallback(message string, level Level) *Response {
	cfg := Lookup(level)
	return &Response{
		Content:          FallbackAnswer(message, cfg.Level),
		Confidence:       FallbackConfidence,
		Sources:          Sources(cfg.Level),
		CodeReferences:   []CodeReference{},
		ModuleReferences: []ModuleReference{},
	}
}
