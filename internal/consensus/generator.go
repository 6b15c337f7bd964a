package consensus

import (
	"context"

	"github.com/sells-group/sentiment-cli/pkg/anthropic"
)

// AnthropicGenerator adapts an Anthropic client to Generator.
type AnthropicGenerator struct {
	Client      anthropic.Client
	Model       string
	Temperature float64
}

// Generate sends prompt as a single user message and returns the text reply.
func (g *AnthropicGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	temp := g.Temperature
	resp, err := g.Client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       g.Model,
		MaxTokens:   256,
		Messages:    []anthropic.Message{{Role: "user", Content: prompt}},
		Temperature: &temp,
	})
	if err != nil {
		return "", err
	}
	resp.Usage.LogCost(resp.Model, "consensus")
	return resp.Text(), nil
}
