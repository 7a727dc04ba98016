package testutil

import (
	"context"

	"scrapingai/model"
)

// MockProvider implements model.Provider for testing.
type MockProvider struct {
	// ChatFunc is called by Chat; replace it to script provider behavior.
	ChatFunc func(ctx context.Context, messages []model.Message, callback model.StreamCallback) error

	// Calls records the transcripts passed to Chat, in order.
	Calls [][]model.Message
}

// NewMockProvider creates a mock that streams the given chunks, in order.
func NewMockProvider(chunks ...string) *MockProvider {
	m := &MockProvider{}
	m.ChatFunc = func(ctx context.Context, messages []model.Message, callback model.StreamCallback) error {
		for _, chunk := range chunks {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			if callback != nil {
				if err := callback(chunk); err != nil {
					return err
				}
			}
		}
		return nil
	}
	return m
}

// NewFailingProvider creates a mock whose Chat always returns err.
func NewFailingProvider(err error) *MockProvider {
	return &MockProvider{
		ChatFunc: func(ctx context.Context, messages []model.Message, callback model.StreamCallback) error {
			return err
		},
	}
}

func (m *MockProvider) Chat(ctx context.Context, messages []model.Message, callback model.StreamCallback) error {
	m.Calls = append(m.Calls, messages)
	return m.ChatFunc(ctx, messages, callback)
}
