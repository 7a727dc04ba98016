package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"scrapingai/model"
)

// OpenAIProvider streams completions from the OpenAI API using the official
// Go SDK. It is the default branch of the router: any model identifier that
// is neither claude-prefixed nor vendor-qualified lands here.
type OpenAIProvider struct {
	client openai.Client
	model  string
}

// NewOpenAIProvider creates an OpenAI provider for the given model.
func NewOpenAIProvider(apiKey, modelID string) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, model.ErrMissingAPIKey
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
	)

	return &OpenAIProvider{
		client: client,
		model:  modelID,
	}, nil
}

// Chat implements model.Provider.
func (p *OpenAIProvider) Chat(ctx context.Context, messages []model.Message, callback model.StreamCallback) error {
	return streamChatCompletions(ctx, p.client, "OpenAI", p.model, messages, callback)
}

// streamChatCompletions runs one streamed chat-completion request against an
// OpenAI-protocol endpoint. Shared by the OpenAI and OpenRouter providers,
// which differ only in client configuration.
func streamChatCompletions(ctx context.Context, client openai.Client, providerName, modelID string, messages []model.Message, callback model.StreamCallback) error {
	params := openai.ChatCompletionNewParams{
		Messages:    convertToOpenAIMessages(withDirective(messages)),
		Model:       openai.ChatModel(modelID),
		Temperature: openai.Float(Temperature),
		MaxTokens:   openai.Int(MaxOutputTokens),
	}

	stream := client.Chat.Completions.NewStreaming(ctx, params)

	for stream.Next() {
		chunk := stream.Current()

		if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" {
			if callback != nil {
				if err := callback(chunk.Choices[0].Delta.Content); err != nil {
					return err
				}
			}
		}
	}

	if err := stream.Err(); err != nil {
		return wrapOpenAIError(providerName, err)
	}

	return nil
}

// convertToOpenAIMessages converts transcript messages to OpenAI format.
func convertToOpenAIMessages(messages []model.Message) []openai.ChatCompletionMessageParamUnion {
	result := make([]openai.ChatCompletionMessageParamUnion, len(messages))

	for i, msg := range messages {
		switch msg.Role {
		case model.RoleSystem:
			result[i] = openai.SystemMessage(msg.Content)
		case model.RoleAssistant:
			result[i] = openai.AssistantMessage(msg.Content)
		default:
			result[i] = openai.UserMessage(msg.Content)
		}
	}

	return result
}

// wrapOpenAIError converts an SDK error into a model.CompletionError,
// surfacing the upstream HTTP status when the SDK exposes one.
func wrapOpenAIError(providerName string, err error) error {
	var apierr *openai.Error
	if errors.As(err, &apierr) {
		return &model.CompletionError{Provider: providerName, Status: apierr.StatusCode, Err: err}
	}
	return &model.CompletionError{Provider: providerName, Err: fmt.Errorf("streaming error: %w", err)}
}
