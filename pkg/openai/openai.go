package openaix

import (
	"strings"
	"time"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type Config struct {
	BaseURL     string        `envconfig:"BASE_URL" split_words:"true"`
	APIKey      string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model       string        `envconfig:"MODEL" split_words:"true" default:"gpt-4.1-mini"`
	IntentModel string        `envconfig:"INTENT_MODEL" split_words:"true"`
	MaxRetries  int           `envconfig:"MAX_RETRIES" split_words:"true" default:"1"`
	Timeout     time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
}

// IntentModelName returns the model used for intent classification, falling
// back to the main chat model when unset.
func (c Config) IntentModelName() string {
	if v := strings.TrimSpace(c.IntentModel); v != "" {
		return v
	}
	return strings.TrimSpace(c.Model)
}

// NewClient creates an OpenAI SDK client. A custom BaseURL points the client
// at any OpenAI-compatible endpoint.
func NewClient(cfg Config) *openaisdk.Client {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil
	}

	opts := []option.RequestOption{
		option.WithAPIKey(strings.TrimSpace(cfg.APIKey)),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if trimmed := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); trimmed != "" {
		opts = append(opts, option.WithBaseURL(trimmed))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	client := openaisdk.NewClient(opts...)
	return &client
}
