// Package adapter holds the channel surfaces: the normalized message
// envelope, the preferred-platform router, and the web and WhatsApp inbound
// handlers. Adapters normalize inbound traffic and deliver replies; all
// conversational logic stays in the chat service.
package adapter

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// Platform identifies an inbound channel.
const (
	PlatformWeb      = "web"
	PlatformWhatsApp = "whatsapp"
)

// NormalizedMessage is the channel-independent inbound envelope.
type NormalizedMessage struct {
	UserID   string
	Text     string
	Platform string
}

// redirectTemplate is the in-character reply sent when a message arrives on a
// channel the user has opted out of.
const redirectTemplate = "Hey 😊 I mostly hang out on %s — come find me there! (You can change this in settings)"

var platformLabels = map[string]string{
	PlatformWhatsApp: "WhatsApp",
	PlatformWeb:      "the web app",
}

// ChatHandler is the orchestration entry point the router dispatches into.
type ChatHandler interface {
	HandleMessage(ctx context.Context, userID, text string) string
}

// PreferenceSource resolves a user's preferred channel; empty means no
// preference.
type PreferenceSource interface {
	PreferredPlatform(ctx context.Context, userID string) (string, error)
}

// Router enforces the preferred-platform policy in one place, shared by every
// adapter, then dispatches to the chat service.
type Router struct {
	chat        ChatHandler
	preferences PreferenceSource
}

func NewRouter(chat ChatHandler, preferences PreferenceSource) *Router {
	return &Router{chat: chat, preferences: preferences}
}

// Route checks the user's platform preference and either redirects or hands
// the message to the chat service. Preference lookup failures let the message
// through; routing must never drop traffic.
func (r *Router) Route(ctx context.Context, msg NormalizedMessage) string {
	preferred := ""
	if r.preferences != nil {
		var err error
		preferred, err = r.preferences.PreferredPlatform(ctx, msg.UserID)
		if err != nil {
			log.Error().Err(err).Str("user_id", msg.UserID).Msg("preferred platform lookup failed")
			preferred = ""
		}
	}

	if preferred != "" && preferred != msg.Platform {
		label, ok := platformLabels[preferred]
		if !ok {
			label = preferred
		}
		return fmt.Sprintf(redirectTemplate, label)
	}

	return r.chat.HandleMessage(ctx, msg.UserID, msg.Text)
}
