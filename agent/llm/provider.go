// Package llm adapts the OpenAI chat completion API to the provider contract
// used by the chat service.
package llm

import (
	"context"
	"fmt"
	"strings"

	openaisdk "github.com/openai/openai-go"

	contractx "github.com/avamind/ava-core/agent/contract"
)

// OpenAIProvider generates replies from the bounded session history plus a
// mode-specific system prompt.
type OpenAIProvider struct {
	client      *openaisdk.Client
	model       string
	temperature float64
}

type Option func(*OpenAIProvider)

// WithTemperature overrides the sampling temperature.
func WithTemperature(t float64) Option {
	return func(p *OpenAIProvider) { p.temperature = t }
}

func NewOpenAIProvider(client *openaisdk.Client, model string, opts ...Option) *OpenAIProvider {
	p := &OpenAIProvider{
		client:      client,
		model:       model,
		temperature: 0.8,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var _ contractx.LLMProvider = (*OpenAIProvider)(nil)

func (p *OpenAIProvider) Complete(ctx context.Context, history []contractx.Turn, systemPrompt string) (string, error) {
	messages := make([]openaisdk.ChatCompletionMessageParamUnion, 0, len(history)+1)
	messages = append(messages, openaisdk.SystemMessage(systemPrompt))
	for _, turn := range history {
		switch turn.Role {
		case contractx.RoleAssistant:
			messages = append(messages, openaisdk.AssistantMessage(turn.Content))
		default:
			messages = append(messages, openaisdk.UserMessage(turn.Content))
		}
	}

	resp, err := p.client.Chat.Completions.New(ctx, openaisdk.ChatCompletionNewParams{
		Model:       p.model,
		Messages:    messages,
		Temperature: openaisdk.Float(p.temperature),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", contractx.ErrModelInvoke, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty completion", contractx.ErrModelInvoke)
	}

	reply := strings.TrimSpace(resp.Choices[0].Message.Content)
	if reply == "" {
		return "", fmt.Errorf("%w: blank completion", contractx.ErrModelInvoke)
	}
	return reply, nil
}
