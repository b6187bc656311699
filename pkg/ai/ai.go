package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"
	openai "github.com/sashabaranov/go-openai"

	"github.com/rowdybard/banterbox/pkg/types"
)

type ModelName struct {
	ChatModel string `toml:"chat_model"`
}

// Classifier is the advisory classification service. Every judgment is
// best-effort: callers impose a timeout and fall back on any error. A
// Classifier is never authoritative on its own.
type Classifier interface {
	// NeedsContext judges whether the current message needs recent context
	// injected into response generation.
	NeedsContext(ctx context.Context, message string, recentDigest string) (Judgment, error)
	// IsDirectQuestion judges whether the message references something the
	// bot previously said.
	IsDirectQuestion(ctx context.Context, message string, recentDigest string) (Judgment, error)
}

type Judgment struct {
	Verdict bool          `json:"verdict"`
	Model   string        `json:"model"`
	Usage   *openai.Usage `json:"usage,omitempty"`
}

const PROMPT_NEEDS_CONTEXT_EN = `You decide whether a chat message needs recent conversation context to answer well.
You will receive the message and a digest of recent events. Answer via the provided function with a single boolean.
Only answer true when the message plausibly refers to or continues the recent conversation.`

const PROMPT_DIRECT_QUESTION_EN = `You decide whether a chat message is a direct question about something the assistant previously said or discussed.
You will receive the message and a digest of the assistant's recent responses and recent events.
Answer via the provided function with a single boolean. General conversation is false.`

// EventDigest renders a short textual digest of recent context events for a
// classifier prompt.
func EventDigest(events []*types.ContextEvent, maxItems, maxChars int) string {
	if len(events) == 0 {
		return ""
	}
	if len(events) > maxItems {
		events = events[:maxItems]
	}
	lines := lo.Map(events, func(item *types.ContextEvent, _ int) string {
		text := item.OriginalText
		if text == "" {
			text = item.Summary
		}
		return "- " + truncate(text, maxChars)
	})
	return strings.Join(lines, "\n")
}

// ResponseDigest renders a short textual digest of recent bot responses.
func ResponseDigest(responses []*types.PriorResponse, maxItems, maxChars int) string {
	if len(responses) == 0 {
		return ""
	}
	if len(responses) > maxItems {
		responses = responses[:maxItems]
	}
	lines := lo.Map(responses, func(item *types.PriorResponse, _ int) string {
		return fmt.Sprintf("- (%s) %s", item.ResponseKind, truncate(item.ResponseText, maxChars))
	})
	return strings.Join(lines, "\n")
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
