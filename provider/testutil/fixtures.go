package testutil

import "scrapingai/model"

// SingleUserMessage returns a one-message transcript for simple tests.
func SingleUserMessage(content string) []model.Message {
	return []model.Message{
		{Role: model.RoleUser, Content: content},
	}
}

// TestTranscript returns a short sample conversation for testing.
func TestTranscript() []model.Message {
	return []model.Message{
		{Role: model.RoleUser, Content: "How do I scrape a product listing page?"},
		{Role: model.RoleAssistant, Content: "Start by checking the site's robots.txt and terms of service."},
		{Role: model.RoleUser, Content: "Write the scraper for me in app/scraper.py"},
	}
}

// AssistantReplyWithFiles is a canned assistant message containing two
// file-annotated fenced blocks, for extractor and orchestrator tests.
const AssistantReplyWithFiles = "Here are the files:\n\n" +
	"```python file=\"app/scraper.py\"\nimport requests\n\nprint(requests.get(\"https://example.com\").status_code)\n```\n\n" +
	"And the config:\n\n" +
	"```toml file=\"config.toml\"\nrate_limit = 5\n```\n"
