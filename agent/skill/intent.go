package skill

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openaisdk "github.com/openai/openai-go"
	"github.com/rs/zerolog/log"

	contractx "github.com/avamind/ava-core/agent/contract"
)

const intentClassifierPrompt = `You are an intent classifier for a personal assistant bot.
Classify the user's message into exactly one of these intents:
- "calendar_add": user wants to add, schedule, or book a meeting/event/appointment
- "calendar_view": user wants to see their schedule, upcoming events, calendar, or agenda
- "research": user wants to look up information, get a factual answer, or learn about a topic
- "chat": general conversation, questions about the bot, or anything else

For calendar_add: also extract the event title and the date/time string exactly as the user stated.
For research: also extract the core search query.
Be bilingual — handle English and French naturally.

Examples:
- "Add dentist appointment Tuesday at 2pm" -> calendar_add, title="dentist appointment", date="Tuesday at 2pm"
- "Ajoute une réunion d'équipe mardi à 15h" -> calendar_add, title="réunion d'équipe", date="mardi à 15h"
- "What's on my calendar?" -> calendar_view
- "What is quantum mechanics?" -> research, query="quantum mechanics"
- "How are you?" -> chat`

var intentSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"intent": map[string]any{
			"type": "string",
			"enum": []string{
				contractx.SkillCalendarAdd,
				contractx.SkillCalendarView,
				contractx.SkillResearch,
				contractx.SkillChat,
			},
		},
		"extracted_date":  map[string]any{"type": []string{"string", "null"}},
		"extracted_title": map[string]any{"type": []string{"string", "null"}},
		"query":           map[string]any{"type": []string{"string", "null"}},
	},
	"required":             []string{"intent", "extracted_date", "extracted_title", "query"},
	"additionalProperties": false,
}

type intentPayload struct {
	Intent         string `json:"intent"`
	ExtractedDate  string `json:"extracted_date"`
	ExtractedTitle string `json:"extracted_title"`
	Query          string `json:"query"`
}

// Classifier maps free text to a ParsedIntent via a structured-output model
// call. On any failure it returns the neutral chat intent along with the
// error, so the message is always handled.
type Classifier struct {
	client *openaisdk.Client
	model  string
}

func NewClassifier(client *openaisdk.Client, model string) *Classifier {
	return &Classifier{client: client, model: model}
}

var _ contractx.IntentClassifier = (*Classifier)(nil)

func (c *Classifier) Classify(ctx context.Context, text string) (contractx.ParsedIntent, error) {
	fallback := contractx.ParsedIntent{Skill: contractx.SkillChat, RawText: text}

	resp, err := c.client.Chat.Completions.New(ctx, openaisdk.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.SystemMessage(intentClassifierPrompt),
			openaisdk.UserMessage(text),
		},
		ResponseFormat: openaisdk.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openaisdk.ResponseFormatJSONSchemaParam{
				JSONSchema: openaisdk.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   "intent_result",
					Schema: intentSchema,
					Strict: openaisdk.Bool(true),
				},
			},
		},
	})
	if err != nil {
		return fallback, fmt.Errorf("%w: %v", contractx.ErrClassification, err)
	}
	if len(resp.Choices) == 0 {
		return fallback, fmt.Errorf("%w: empty completion", contractx.ErrClassification)
	}

	var payload intentPayload
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &payload); err != nil {
		return fallback, fmt.Errorf("%w: decode payload: %v", contractx.ErrClassification, err)
	}

	skillName := strings.TrimSpace(payload.Intent)
	switch skillName {
	case contractx.SkillCalendarAdd, contractx.SkillCalendarView, contractx.SkillResearch, contractx.SkillChat:
	default:
		log.Warn().Str("intent", skillName).Msg("classifier returned unknown intent, defaulting to chat")
		return fallback, nil
	}

	return contractx.ParsedIntent{
		Skill:          skillName,
		RawText:        text,
		ExtractedDate:  strings.TrimSpace(payload.ExtractedDate),
		ExtractedTitle: strings.TrimSpace(payload.ExtractedTitle),
		Query:          strings.TrimSpace(payload.Query),
	}, nil
}
