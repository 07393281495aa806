package recommend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/danghuy/secondcell/internal/domain"
)

// Client turns a shopper's free-text request plus the current catalog
// window into a short suggestion. Opaque prompt in, text out.
type Client struct {
	api *openai.Client
}

func New(apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY not set")
	}
	return &Client{api: openai.NewClient(apiKey)}, nil
}

func (c *Client) Recommend(ctx context.Context, query string, window []domain.Product) (string, error) {
	lines := make([]string, 0, len(window))
	for _, p := range window {
		price := p.Price
		if p.NewPrice != nil {
			price = *p.NewPrice
		}
		lines = append(lines, fmt.Sprintf("- %s | %s %s | %d", p.Name, p.Brand, p.Storage, price))
	}

	prompt := fmt.Sprintf(`A customer of a second-hand phone shop asks:
%s

Current stock:
%s

Suggest at most 3 items from the stock above, with one short reason each.
Answer in plain text, no markdown.`, strings.TrimSpace(query), strings.Join(lines, "\n"))

	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: "gpt-4o-mini",
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a helpful shop assistant. Only recommend items that are in the provided stock list.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature: 0.3,
		MaxTokens:   500,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty completion")
	}

	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	out = strings.TrimPrefix(out, "```")
	out = strings.TrimSuffix(out, "```")
	return strings.TrimSpace(out), nil
}
