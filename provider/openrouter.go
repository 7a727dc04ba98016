package provider

import (
	"context"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"scrapingai/model"
)

// openRouterBaseURL is OpenRouter's OpenAI-compatible endpoint.
const openRouterBaseURL = "https://openrouter.ai/api/v1"

// OpenRouterProvider streams completions through the OpenRouter aggregation
// gateway, which is OpenAI-protocol compatible. It serves vendor-qualified
// model identifiers such as "meta-llama/llama-3-70b-instruct".
//
// OpenRouter asks clients to identify themselves with two headers: a
// referer-style site URL and a display title.
type OpenRouterProvider struct {
	client openai.Client
	model  string
}

// NewOpenRouterProvider creates an OpenRouter provider for the given model.
func NewOpenRouterProvider(apiKey, modelID, siteURL, appTitle string) (*OpenRouterProvider, error) {
	if apiKey == "" {
		return nil, model.ErrMissingAPIKey
	}
	if siteURL == "" {
		siteURL = DefaultSiteURL
	}
	if appTitle == "" {
		appTitle = DefaultAppTitle
	}

	client := openai.NewClient(
		option.WithBaseURL(openRouterBaseURL),
		option.WithAPIKey(apiKey),
		option.WithHeader("HTTP-Referer", siteURL),
		option.WithHeader("X-Title", appTitle),
	)

	return &OpenRouterProvider{
		client: client,
		model:  modelID,
	}, nil
}

// Chat implements model.Provider.
func (p *OpenRouterProvider) Chat(ctx context.Context, messages []model.Message, callback model.StreamCallback) error {
	return streamChatCompletions(ctx, p.client, "OpenRouter", p.model, messages, callback)
}
