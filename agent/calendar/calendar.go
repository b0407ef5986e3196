// Package calendar is the HTTP client for the calendar connector service,
// which fronts the user's external calendar and holds their OAuth tokens.
package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	contractx "github.com/avamind/ava-core/agent/contract"
)

type Config struct {
	BaseURL string        `envconfig:"BASE_URL" required:"true"`
	APIKey  string        `envconfig:"API_KEY" required:"true"`
	AuthURL string        `envconfig:"AUTH_URL" required:"true"`
	Timeout time.Duration `envconfig:"TIMEOUT" default:"10s"`
}

// Client implements the calendar contract. The connector's 401 means the
// user's grant was revoked; 404 on the events collection means the user never
// connected a calendar.
type Client struct {
	baseURL    string
	apiKey     string
	authURL    string
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		authURL:    cfg.AuthURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

var _ contractx.CalendarClient = (*Client)(nil)

type eventPayload struct {
	Title    string    `json:"title"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Timezone string    `json:"timezone,omitempty"`
}

func (c *Client) AuthURL() string {
	return c.authURL
}

// CheckConflicts lists events overlapping the window and returns their titles.
func (c *Client) CheckConflicts(ctx context.Context, userID string, window contractx.TimeWindow) ([]string, error) {
	events, err := c.listEvents(ctx, userID, window)
	if err != nil {
		return nil, err
	}
	titles := make([]string, 0, len(events))
	for _, event := range events {
		titles = append(titles, event.Title)
	}
	return titles, nil
}

func (c *Client) CreateEvent(ctx context.Context, userID, title string, window contractx.TimeWindow, timezone string) error {
	body, err := json.Marshal(eventPayload{
		Title:    title,
		Start:    window.Start,
		End:      window.End,
		Timezone: timezone,
	})
	if err != nil {
		return fmt.Errorf("%w: encode event: %v", contractx.ErrCalendarUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.eventsURL(userID, nil), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", contractx.ErrCalendarUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return c.checkStatus(resp, http.StatusCreated, http.StatusOK)
}

func (c *Client) ListUpcoming(ctx context.Context, userID string, window contractx.TimeWindow) ([]contractx.CalendarEvent, error) {
	events, err := c.listEvents(ctx, userID, window)
	if err != nil {
		return nil, err
	}
	out := make([]contractx.CalendarEvent, len(events))
	for i, event := range events {
		out[i] = contractx.CalendarEvent{Title: event.Title, Start: event.Start}
	}
	return out, nil
}

func (c *Client) DeleteTokens(ctx context.Context, userID string) error {
	endpoint := fmt.Sprintf("%s/v1/users/%s/tokens", c.baseURL, url.PathEscape(userID))
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", contractx.ErrCalendarUnavailable, err)
	}

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	// 404 here just means nothing to delete.
	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	return c.checkStatus(resp, http.StatusNoContent, http.StatusOK)
}

func (c *Client) listEvents(ctx context.Context, userID string, window contractx.TimeWindow) ([]eventPayload, error) {
	query := url.Values{
		"start": {window.Start.UTC().Format(time.RFC3339)},
		"end":   {window.End.UTC().Format(time.RFC3339)},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.eventsURL(userID, query), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrCalendarUnavailable, err)
	}

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if err := c.checkStatus(resp, http.StatusOK); err != nil {
		return nil, err
	}

	var payload struct {
		Events []eventPayload `json:"events"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode events: %v", contractx.ErrCalendarUnavailable, err)
	}
	return payload.Events, nil
}

func (c *Client) eventsURL(userID string, query url.Values) string {
	endpoint := fmt.Sprintf("%s/v1/users/%s/events", c.baseURL, url.PathEscape(userID))
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	return endpoint
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrCalendarUnavailable, err)
	}
	return resp, nil
}

func (c *Client) checkStatus(resp *http.Response, accepted ...int) error {
	for _, code := range accepted {
		if resp.StatusCode == code {
			return nil
		}
	}
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return contractx.ErrCalendarRevoked
	case http.StatusNotFound:
		return contractx.ErrCalendarNotConnected
	default:
		return fmt.Errorf("%w: status %d", contractx.ErrCalendarUnavailable, resp.StatusCode)
	}
}
