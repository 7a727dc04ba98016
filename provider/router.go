// Package provider routes chat requests to LLM completion backends and
// streams replies back as text chunks.
//
// Providers are distinguished purely by a naming convention on the model
// identifier, not by an explicit provider field:
//
//   - "claude*"        → Anthropic (official SDK)
//   - contains "/"     → OpenRouter (OpenAI-compatible aggregation gateway)
//   - anything else    → OpenAI
//
// The claude check runs before the slash check, so an identifier like
// "claude-x/y" resolves to Anthropic.
package provider

import (
	"strings"

	"scrapingai/model"
)

const (
	// ServiceOpenAI and ServiceAnthropic are the service names under which
	// user credentials are stored. Every non-claude model family shares the
	// OpenAI key slot, OpenRouter included.
	ServiceOpenAI    = "OpenAI"
	ServiceAnthropic = "Anthropic"

	// DefaultSiteURL identifies this deployment to OpenRouter when no site
	// URL is configured.
	DefaultSiteURL = "https://scrapingai.vercel.app"

	// DefaultAppTitle is sent to OpenRouter as the X-Title header.
	DefaultAppTitle = "ScrapingAI"
)

// rule pairs a predicate on the model identifier with a provider factory.
type rule struct {
	matches func(modelID string) bool
	build   func(modelID, apiKey string) (model.Provider, error)
}

// Router resolves model identifiers to configured providers. Resolution is
// a pure, deterministic mapping: rules are evaluated in fixed order and the
// first match wins. No state, no I/O.
type Router struct {
	siteURL  string
	appTitle string
	rules    []rule
}

// NewRouter creates a router. siteURL and appTitle identify this client to
// the OpenRouter gateway; empty values fall back to the defaults.
func NewRouter(siteURL, appTitle string) *Router {
	if siteURL == "" {
		siteURL = DefaultSiteURL
	}
	if appTitle == "" {
		appTitle = DefaultAppTitle
	}

	r := &Router{siteURL: siteURL, appTitle: appTitle}
	r.rules = []rule{
		{
			matches: func(modelID string) bool { return strings.HasPrefix(modelID, "claude") },
			build: func(modelID, apiKey string) (model.Provider, error) {
				return NewAnthropicProvider(apiKey, modelID)
			},
		},
		{
			matches: func(modelID string) bool { return strings.Contains(modelID, "/") },
			build: func(modelID, apiKey string) (model.Provider, error) {
				return NewOpenRouterProvider(apiKey, modelID, r.siteURL, r.appTitle)
			},
		},
		{
			matches: func(modelID string) bool { return true },
			build: func(modelID, apiKey string) (model.Provider, error) {
				return NewOpenAIProvider(apiKey, modelID)
			},
		},
	}
	return r
}

// Resolve maps a model identifier to a configured provider. An empty
// credential fails with model.ErrMissingAPIKey before any rule is
// consulted; the request must never proceed unauthenticated.
func (r *Router) Resolve(modelID, apiKey string) (model.Provider, error) {
	if apiKey == "" {
		return nil, model.ErrMissingAPIKey
	}

	for _, ru := range r.rules {
		if ru.matches(modelID) {
			return ru.build(modelID, apiKey)
		}
	}

	// Unreachable: the final rule matches every identifier.
	return NewOpenAIProvider(apiKey, modelID)
}

// ServiceName returns the stored-credential service for a model identifier:
// "Anthropic" for claude models, "OpenAI" for everything else.
func ServiceName(modelID string) string {
	if strings.HasPrefix(modelID, "claude") {
		return ServiceAnthropic
	}
	return ServiceOpenAI
}
