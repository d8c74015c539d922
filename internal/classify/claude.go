package classify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// ClaudeProvider calls the Anthropic Messages API. Claude has no constrained
// JSON output mode, so its replies may wrap the JSON object in prose; the
// classifier extracts the first object-shaped substring downstream.
type ClaudeProvider struct {
	client  anthropic.Client
	model   string
	timeout time.Duration
}

func NewClaudeProvider(apiKey, model string, timeout time.Duration) *ClaudeProvider {
	return &ClaudeProvider{
		client:  anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:   model,
		timeout: timeout,
	}
}

func (c *ClaudeProvider) Name() string {
	return "claude"
}

// Complete sends the prompt to Claude and returns the concatenated text blocks.
func (c *ClaudeProvider) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: 1024,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("messages API failed: %w", err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("no text content in response")
	}
	return sb.String(), nil
}
