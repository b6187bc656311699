package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/rowdybard/banterbox/pkg/ai"
)

const (
	NAME = "openai"
)

type Driver struct {
	client *openai.Client
	model  ai.ModelName
}

func New(token, proxy string, model ai.ModelName) *Driver {
	cfg := openai.DefaultConfig(token)
	if proxy != "" {
		cfg.BaseURL = proxy
	}

	if model.ChatModel == "" {
		model.ChatModel = openai.GPT4oMini
	}

	return &Driver{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

const judgeFuncName = "judge"

// judgeCall describes the single-boolean function the model must answer
// through, which keeps the response machine-parseable.
func judgeCall(description string) openai.Tool {
	params := jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"verdict": {
				Type:        jsonschema.Boolean,
				Description: description,
			},
		},
		Required: []string{"verdict"},
	}

	return openai.Tool{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        judgeFuncName,
			Description: description,
			Parameters:  params,
		},
	}
}

func (s *Driver) judge(ctx context.Context, systemPrompt, verdictDesc, message, recentDigest string) (ai.Judgment, error) {
	slog.Debug("Judge", slog.String("driver", NAME))

	userContent := message
	if recentDigest != "" {
		userContent = fmt.Sprintf("Message:\n%s\n\nRecent:\n%s", message, recentDigest)
	}

	dialogue := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: userContent},
	}

	result := ai.Judgment{
		Model: s.model.ChatModel,
	}
	resp, err := s.client.CreateChatCompletion(ctx,
		openai.ChatCompletionRequest{
			Model:       s.model.ChatModel,
			Messages:    dialogue,
			Temperature: 0.1,
			MaxTokens:   50,
			Tools:       []openai.Tool{judgeCall(verdictDesc)},
		},
	)
	if err != nil || len(resp.Choices) != 1 {
		return result, fmt.Errorf("Completion error: err:%v len(choices):%v", err, len(resp.Choices))
	}

	answered := false
	for _, v := range resp.Choices[0].Message.ToolCalls {
		if v.Function.Name != judgeFuncName {
			continue
		}
		if err = json.Unmarshal([]byte(v.Function.Arguments), &result); err != nil {
			return result, fmt.Errorf("failed to unmarshal func call arguments of Judgment, %w", err)
		}
		answered = true
	}
	if !answered {
		return result, fmt.Errorf("classifier returned no %s call", judgeFuncName)
	}

	result.Usage = &resp.Usage
	return result, nil
}

func (s *Driver) NeedsContext(ctx context.Context, message string, recentDigest string) (ai.Judgment, error) {
	return s.judge(ctx, ai.PROMPT_NEEDS_CONTEXT_EN,
		"True when the message needs recent conversation context to answer well.",
		message, recentDigest)
}

func (s *Driver) IsDirectQuestion(ctx context.Context, message string, recentDigest string) (ai.Judgment, error) {
	return s.judge(ctx, ai.PROMPT_DIRECT_QUESTION_EN,
		"True when the message directly asks about something the assistant previously said or discussed.",
		message, recentDigest)
}
