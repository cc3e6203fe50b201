package ai

import "context"

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Options carries the per-call token budget and sampling parameters.
type Options struct {
	MaxTokens        int
	Temperature      float32
	PresencePenalty  float32
	FrequencyPenalty float32
}

// Provider generates one assistant reply from an ordered message list.
type Provider interface {
	Chat(ctx context.Context, messages []Message, opts Options) (string, error)
}
