package tokencount

import "testing"

func TestCountTokens(t *testing.T) {
	c := NewCounter()
	n, err := c.CountTokens("Dear Hiring Manager, I am writing to apply.", "gpt-4o-mini")
	if err != nil {
		t.Fatalf("CountTokens: %v", err)
	}
	if n <= 0 {
		t.Fatalf("expected positive count, got %d", n)
	}
}

func TestCountChatTokens_IncludesOverhead(t *testing.T) {
	c := NewCounter()
	bare, err := c.CountTokens("hello", "gpt-4o-mini")
	if err != nil {
		t.Fatalf("CountTokens: %v", err)
	}
	chat, err := c.CountChatTokens("hello", "hello", "gpt-4o-mini")
	if err != nil {
		t.Fatalf("CountChatTokens: %v", err)
	}
	if chat <= 2*bare {
		t.Fatalf("chat count %d should exceed 2x bare count %d", chat, bare)
	}
}

func TestNormalizeModelName(t *testing.T) {
	if got := normalizeModelName("GPT-4o-mini"); got != "gpt-4" {
		t.Fatalf("got %q", got)
	}
	if got := normalizeModelName("gpt-3.5-turbo-0125"); got != "gpt-3.5-turbo" {
		t.Fatalf("got %q", got)
	}
	if got := normalizeModelName("unknown-model"); got != "gpt-4" {
		t.Fatalf("got %q", got)
	}
}

func TestEstimateChatTokens_NeverZeroForText(t *testing.T) {
	c := NewCounter()
	if n := c.EstimateChatTokens("system prompt", "user prompt", "gpt-4o-mini"); n <= 0 {
		t.Fatalf("expected positive estimate, got %d", n)
	}
}
