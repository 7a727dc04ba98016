package provider

import (
	"strings"
	"testing"

	"scrapingai/model"
)

func TestWithDirective(t *testing.T) {
	original := []model.Message{
		{Role: model.RoleUser, Content: "hello"},
	}

	got := withDirective(original)

	if len(got) != 2 {
		t.Fatalf("withDirective() returned %d messages, want 2", len(got))
	}
	if got[0].Role != model.RoleSystem {
		t.Errorf("first message role = %q, want system", got[0].Role)
	}
	if !strings.Contains(got[0].Content, `file="app/scraper.js"`) {
		t.Error("directive does not demonstrate the file attribute contract")
	}
	if got[1] != original[0] {
		t.Error("user message was altered by withDirective()")
	}

	// The caller's slice must not be mutated.
	if len(original) != 1 || original[0].Role != model.RoleUser {
		t.Error("withDirective() mutated its input")
	}
}

func TestConvertToAnthropicMessages(t *testing.T) {
	messages := withDirective([]model.Message{
		{Role: model.RoleUser, Content: "first"},
		{Role: model.RoleAssistant, Content: "reply"},
		{Role: model.RoleUser, Content: "second"},
	})

	anthropicMsgs, systemBlocks := convertToAnthropicMessages(messages)

	// Anthropic carries system text out-of-band, not in the message array.
	if len(systemBlocks) != 1 {
		t.Fatalf("got %d system blocks, want 1", len(systemBlocks))
	}
	if !strings.Contains(systemBlocks[0].Text, "AI Scraping Assistant") {
		t.Error("system block does not carry the directive")
	}
	if len(anthropicMsgs) != 3 {
		t.Errorf("got %d messages, want 3", len(anthropicMsgs))
	}
}
