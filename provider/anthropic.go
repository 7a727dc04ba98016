package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"scrapingai/model"
)

// AnthropicProvider streams completions from the Anthropic API using the
// official Go SDK. It serves every model identifier with the "claude" prefix.
type AnthropicProvider struct {
	client anthropic.Client
	model  anthropic.Model
}

// NewAnthropicProvider creates an Anthropic provider for the given model.
// The API key is required; routing guarantees it is non-empty by the time
// a provider is constructed.
func NewAnthropicProvider(apiKey, modelID string) (*AnthropicProvider, error) {
	if apiKey == "" {
		return nil, model.ErrMissingAPIKey
	}

	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
	)

	return &AnthropicProvider{
		client: client,
		model:  anthropic.Model(modelID),
	}, nil
}

// Chat implements model.Provider. The system directive is prepended before
// dispatch; Anthropic takes system text as a separate parameter rather than
// a message, so the transcript is split accordingly.
func (p *AnthropicProvider) Chat(ctx context.Context, messages []model.Message, callback model.StreamCallback) error {
	anthropicMessages, systemBlocks := convertToAnthropicMessages(withDirective(messages))

	params := anthropic.MessageNewParams{
		Model:       p.model,
		Messages:    anthropicMessages,
		MaxTokens:   MaxOutputTokens,
		Temperature: anthropic.Float(Temperature),
	}
	if len(systemBlocks) > 0 {
		params.System = systemBlocks
	}

	stream := p.client.Messages.NewStreaming(ctx, params)

	for stream.Next() {
		event := stream.Current()

		switch eventVariant := event.AsAny().(type) {
		case anthropic.ContentBlockDeltaEvent:
			switch deltaVariant := eventVariant.Delta.AsAny().(type) {
			case anthropic.TextDelta:
				if callback != nil {
					if err := callback(deltaVariant.Text); err != nil {
						return err
					}
				}
			}
		}
	}

	if err := stream.Err(); err != nil {
		return wrapAnthropicError(err)
	}

	return nil
}

// convertToAnthropicMessages converts transcript messages to Anthropic
// format. Returns the message array and any system blocks found.
func convertToAnthropicMessages(messages []model.Message) ([]anthropic.MessageParam, []anthropic.TextBlockParam) {
	var systemBlocks []anthropic.TextBlockParam
	anthropicMsgs := make([]anthropic.MessageParam, 0, len(messages))

	for _, msg := range messages {
		switch msg.Role {
		case model.RoleSystem:
			systemBlocks = append(systemBlocks, anthropic.TextBlockParam{
				Text: msg.Content,
			})

		case model.RoleAssistant:
			anthropicMsgs = append(anthropicMsgs,
				anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)),
			)

		default:
			anthropicMsgs = append(anthropicMsgs,
				anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)),
			)
		}
	}

	return anthropicMsgs, systemBlocks
}

// wrapAnthropicError converts an SDK error into a model.CompletionError,
// surfacing the upstream HTTP status when the SDK exposes one.
func wrapAnthropicError(err error) error {
	var apierr *anthropic.Error
	if errors.As(err, &apierr) {
		return &model.CompletionError{Provider: "Anthropic", Status: apierr.StatusCode, Err: err}
	}
	return &model.CompletionError{Provider: "Anthropic", Err: fmt.Errorf("streaming error: %w", err)}
}
