package model

import "context"

// Provider abstracts LLM completion backends (OpenAI, Anthropic, OpenRouter)
// using provider-agnostic types from the model layer.
//
// The interface is defined in the model package (not provider package) to
// avoid import cycles: provider implementations import model, and consumers
// of the interface never need to import provider.
type Provider interface {
	// Chat sends the transcript and streams the assistant reply back via
	// callback, one chunk at a time. A non-nil callback error aborts the
	// stream. Cancelling ctx releases the underlying connection; no
	// further chunks are delivered after cancellation.
	Chat(ctx context.Context, messages []Message, callback StreamCallback) error
}

// StreamCallback is called for each chunk of streamed response text.
type StreamCallback func(chunk string) error
