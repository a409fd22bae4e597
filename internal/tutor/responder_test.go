package tutor

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/larklabs/gastutor/internal/ai"
)

type recordingProvider struct {
	system string
	last   []ai.Message
	reply  string
}

func (p *recordingProvider) Complete(ctx context.Context, system string, messages []ai.Message) (string, error) {
	_ = ctx
	p.system = system
	// copy to avoid mutations
	p.last = append([]ai.Message(nil), messages...)
	return p.reply, nil
}

func (p *recordingProvider) TestConnection(ctx context.Context) bool { return true }

type failingProvider struct{}

func (failingProvider) Complete(ctx context.Context, system string, messages []ai.Message) (string, error) {
	return "", errors.New("boom")
}

func (failingProvider) TestConnection(ctx context.Context) bool { return false }

func TestGenerateResponse_RemotePath(t *testing.T) {
	prov := &recordingProvider{reply: "Check CSA B149.1-25, Section 5.2 and Module 8."}
	r := NewResponder(prov, 10)

	resp := r.GenerateResponse(context.Background(), "pipe sizing?", LevelG3, nil)

	if resp.Confidence != RemoteConfidence {
		t.Fatalf("expected remote confidence, got %v", resp.Confidence)
	}
	if resp.Content != prov.reply {
		t.Fatalf("unexpected content: %q", resp.Content)
	}
	if len(resp.CodeReferences) != 1 || resp.CodeReferences[0].Section != "5.2" {
		t.Fatalf("expected extracted code ref, got %+v", resp.CodeReferences)
	}
	if len(resp.ModuleReferences) != 1 || resp.ModuleReferences[0].ModuleNumber != 8 {
		t.Fatalf("expected extracted module ref, got %+v", resp.ModuleReferences)
	}
	if !strings.Contains(prov.system, "G3") {
		t.Fatalf("system prompt missing tier: %q", prov.system)
	}
	if n := len(prov.last); n == 0 || prov.last[n-1].Content != "pipe sizing?" {
		t.Fatalf("provider did not receive the user message last: %+v", prov.last)
	}
}

func TestGenerateResponse_WindowsHistoryAndDropsSystem(t *testing.T) {
	prov := &recordingProvider{reply: "ok"}
	window := 3
	r := NewResponder(prov, window)

	history := []ai.Message{
		{Role: "system", Content: "welcome"},
		{Role: "user", Content: "q1"},
		{Role: "assistant", Content: "a1"},
		{Role: "user", Content: "q2"},
		{Role: "assistant", Content: "a2"},
	}
	r.GenerateResponse(context.Background(), "q3", LevelG2, history)

	// window of history plus the new user message
	if len(prov.last) != window+1 {
		t.Fatalf("expected %d messages, got %d: %+v", window+1, len(prov.last), prov.last)
	}
	for _, m := range prov.last {
		if m.Role == "system" {
			t.Fatalf("system role leaked into provider input")
		}
	}
	if prov.last[0].Content != "a1" {
		t.Fatalf("expected window to start at a1, got %q", prov.last[0].Content)
	}
}

func TestGenerateResponse_ProviderFailureFallsBack(t *testing.T) {
	r := NewResponder(failingProvider{}, 10)

	resp := r.GenerateResponse(context.Background(), "how to vent", LevelG3, nil)
	if resp.Confidence != FallbackConfidence {
		t.Fatalf("expected fallback confidence, got %v", resp.Confidence)
	}

	pool := FallbackResponses(LevelG3)
	found := false
	for _, p := range pool {
		if resp.Content == p {
			found = true
		}
	}
	if !found {
		t.Fatalf("fallback content not from the pool: %q", resp.Content)
	}
	if resp.CodeReferences == nil || resp.ModuleReferences == nil {
		t.Fatalf("reference slices must be non-nil on the fallback path")
	}
}

func TestGenerateResponse_NilProviderFallsBack(t *testing.T) {
	r := NewResponder(nil, 10)
	resp := r.GenerateResponse(context.Background(), "hello", LevelG2, nil)
	if resp.Confidence != FallbackConfidence {
		t.Fatalf("expected fallback confidence, got %v", resp.Confidence)
	}
	if r.TestConnection(context.Background()) {
		t.Fatalf("nil provider should report disconnected")
	}
}

func TestConfidenceOrdering(t *testing.T) {
	if !(FallbackConfidence < RemoteConfidence && RemoteConfidence < WelcomeConfidence) {
		t.Fatalf("confidence constants out of order")
	}
}
