package provider

import "scrapingai/model"

// Generation options are fixed for the whole system, not user-tunable.
const (
	Temperature     = 0.7
	MaxOutputTokens = 2000
)

// systemDirective steers every model toward the fenced-block file contract
// the extract package parses. The ```lang file="path" shape is load-bearing:
// changing it here without changing the extractor breaks file creation.
const systemDirective = `You are an AI Scraping Assistant that helps users create web scraping projects.
When providing code, use markdown code blocks with the file path, like:
` + "```" + `javascript file="app/scraper.js"
// code here
` + "```" + `

Focus on helping users with:
1. Creating scraping solutions for various websites
2. Writing clean, well-documented code
3. Setting up configurations and handling rate limits
4. Explaining web scraping concepts and best practices
5. Ensuring compliance with website terms of service

The user can create these files in their project by clicking a button.`

// withDirective prepends the system directive to a transcript. Prior
// messages are never mutated; the caller's slice is left untouched.
func withDirective(messages []model.Message) []model.Message {
	directive := model.Message{
		Role:    model.RoleSystem,
		Content: systemDirective,
	}
	return append([]model.Message{directive}, messages...)
}
