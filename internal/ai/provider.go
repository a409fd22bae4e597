package ai

import "context"

// Message is a single conversation turn in provider-neutral form.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Provider generates one completion given a system instruction and the
// trailing conversation window. Implementations differ only in the wire
// envelope they speak.
type Provider interface {
	Complete(ctx context.Context, system string, messages []Message) (string, error)

	// TestConnection issues a minimal request and reports reachability.
	// It never mutates state; it only drives the status indicator.
	TestConnection(ctx context.Context) bool
}
