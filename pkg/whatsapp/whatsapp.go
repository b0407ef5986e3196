// Package whatsapp is a thin client for the Meta Cloud API: outbound text
// messages plus webhook payload parsing and verification. Transport only, no
// business logic.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultGraphBaseURL = "https://graph.facebook.com/v19.0"

type Config struct {
	AccessToken   string        `split_words:"true"`
	PhoneNumberID string        `envconfig:"PHONE_NUMBER_ID" split_words:"true"`
	VerifyToken   string        `split_words:"true"`
	BaseURL       string        `split_words:"true"`
	Timeout       time.Duration `split_words:"true" default:"10s"`
}

type Client struct {
	baseURL     string
	accessToken string
	verifyToken string
	httpClient  *http.Client
}

func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.AccessToken) == "" {
		return nil, errors.New("whatsapp access token is required")
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultGraphBaseURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL:     baseURL,
		accessToken: strings.TrimSpace(cfg.AccessToken),
		verifyToken: strings.TrimSpace(cfg.VerifyToken),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

func MustNew(cfg Config) *Client {
	client, err := NewClient(cfg)
	if err != nil {
		panic(err)
	}
	return client
}

// VerifySubscription implements the webhook registration handshake: Meta calls
// GET with hub.* query params and expects the challenge echoed back.
func (c *Client) VerifySubscription(mode, verifyToken string) bool {
	return mode == "subscribe" && verifyToken != "" && verifyToken == c.verifyToken
}

type sendTextRequest struct {
	MessagingProduct string   `json:"messaging_product"`
	RecipientType    string   `json:"recipient_type"`
	To               string   `json:"to"`
	Type             string   `json:"type"`
	Text             textBody `json:"text"`
}

type textBody struct {
	Body string `json:"body"`
}

// SendText delivers a text message through the given business phone number.
func (c *Client) SendText(ctx context.Context, phoneNumberID, to, text string) error {
	if strings.TrimSpace(phoneNumberID) == "" {
		return errors.New("phone number id is required")
	}
	if strings.TrimSpace(to) == "" {
		return errors.New("recipient is required")
	}

	payload, err := json.Marshal(sendTextRequest{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               to,
		Type:             "text",
		Text:             textBody{Body: text},
	})
	if err != nil {
		return fmt.Errorf("marshal whatsapp payload: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", c.baseURL, phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build whatsapp request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute whatsapp request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("whatsapp http status=%d body=%s", resp.StatusCode, string(raw))
	}
	return nil
}

// IncomingText is the text-message subset of a webhook delivery.
type IncomingText struct {
	SenderPhone   string
	Text          string
	PhoneNumberID string
}

type webhookPayload struct {
	Entry []struct {
		Changes []struct {
			Value struct {
				Metadata struct {
					PhoneNumberID string `json:"phone_number_id"`
				} `json:"metadata"`
				Messages []struct {
					From string `json:"from"`
					Type string `json:"type"`
					Text struct {
						Body string `json:"body"`
					} `json:"text"`
				} `json:"messages"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

// ParseIncoming extracts the first text message from a webhook delivery.
// Returns (nil, nil) for status updates, receipts, and non-text messages.
func ParseIncoming(body []byte) (*IncomingText, error) {
	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode webhook payload: %w", err)
	}
	if len(payload.Entry) == 0 || len(payload.Entry[0].Changes) == 0 {
		return nil, nil
	}

	value := payload.Entry[0].Changes[0].Value
	if len(value.Messages) == 0 {
		return nil, nil
	}

	msg := value.Messages[0]
	if msg.Type != "text" {
		return nil, nil
	}

	return &IncomingText{
		SenderPhone:   msg.From,
		Text:          msg.Text.Body,
		PhoneNumberID: value.Metadata.PhoneNumberID,
	}, nil
}
