package provider

import (
	"errors"
	"reflect"
	"testing"

	"scrapingai/model"
)

func TestRouterResolve(t *testing.T) {
	router := NewRouter("", "")

	tests := []struct {
		name     string
		modelID  string
		apiKey   string
		wantType model.Provider
		wantErr  error
	}{
		{
			name:     "claude prefix resolves to Anthropic",
			modelID:  "claude-3-opus-20240229",
			apiKey:   "test-key",
			wantType: &AnthropicProvider{},
		},
		{
			name:     "vendor-qualified id resolves to OpenRouter",
			modelID:  "meta-llama/llama-3-70b-instruct",
			apiKey:   "test-key",
			wantType: &OpenRouterProvider{},
		},
		{
			name:     "plain id resolves to OpenAI",
			modelID:  "gpt-4o",
			apiKey:   "test-key",
			wantType: &OpenAIProvider{},
		},
		{
			name:     "claude prefix wins over slash",
			modelID:  "claude-x/y",
			apiKey:   "test-key",
			wantType: &AnthropicProvider{},
		},
		{
			name:    "empty key short-circuits before resolution",
			modelID: "gpt-4o",
			apiKey:  "",
			wantErr: model.ErrMissingAPIKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := router.Resolve(tt.modelID, tt.apiKey)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Resolve() error = %v, want %v", err, tt.wantErr)
				}
				if p != nil {
					t.Errorf("Resolve() = %T, want nil provider", p)
				}
				return
			}

			if err != nil {
				t.Fatalf("Resolve() unexpected error: %v", err)
			}
			if reflect.TypeOf(p) != reflect.TypeOf(tt.wantType) {
				t.Errorf("Resolve() = %T, want %T", p, tt.wantType)
			}
		})
	}
}

func TestRouterResolveDeterministic(t *testing.T) {
	router := NewRouter("", "")

	first, err := router.Resolve("claude-3-haiku-20240307", "k")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	second, err := router.Resolve("claude-3-haiku-20240307", "k")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	a, ok := first.(*AnthropicProvider)
	if !ok {
		t.Fatalf("Resolve() = %T, want *AnthropicProvider", first)
	}
	b, ok := second.(*AnthropicProvider)
	if !ok {
		t.Fatalf("Resolve() = %T, want *AnthropicProvider", second)
	}
	if a.model != b.model {
		t.Errorf("Resolve() configured models differ: %q vs %q", a.model, b.model)
	}
}

func TestServiceName(t *testing.T) {
	tests := []struct {
		modelID string
		want    string
	}{
		{"claude-3-opus-20240229", ServiceAnthropic},
		{"claude-x/y", ServiceAnthropic},
		{"gpt-4o", ServiceOpenAI},
		{"mistral/mistral-large-latest", ServiceOpenAI},
	}

	for _, tt := range tests {
		if got := ServiceName(tt.modelID); got != tt.want {
			t.Errorf("ServiceName(%q) = %q, want %q", tt.modelID, got, tt.want)
		}
	}
}
