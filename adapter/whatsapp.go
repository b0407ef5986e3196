package adapter

import (
	"context"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	whatsappx "github.com/avamind/ava-core/pkg/whatsapp"
)

const maxWebhookBodyBytes = 256 << 10

// UserResolver maps a WhatsApp sender phone number to an account. ok is false
// for numbers that have not been linked.
type UserResolver interface {
	UserIDForPhone(ctx context.Context, phone string) (userID string, ok bool, err error)
}

// WhatsAppAdapter receives Meta Cloud API webhook deliveries and sends
// replies back out of band. The webhook always answers 200: Meta retries
// non-2xx deliveries, and a retried message would be processed twice.
type WhatsAppAdapter struct {
	router *Router
	client *whatsappx.Client
	users  UserResolver
}

func NewWhatsAppAdapter(router *Router, client *whatsappx.Client, users UserResolver) *WhatsAppAdapter {
	return &WhatsAppAdapter{router: router, client: client, users: users}
}

// Mount registers the webhook routes on a chi router.
func (a *WhatsAppAdapter) Mount(r chi.Router) {
	r.Get("/v1/webhook/whatsapp", a.handleVerify)
	r.Post("/v1/webhook/whatsapp", a.handleDelivery)
}

// handleVerify is Meta's registration handshake: echo hub.challenge when the
// verify token matches.
func (a *WhatsAppAdapter) handleVerify(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if !a.client.VerifySubscription(query.Get("hub.mode"), query.Get("hub.verify_token")) {
		w.WriteHeader(http.StatusForbidden)
		return
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(query.Get("hub.challenge"))); err != nil {
		log.Error().Err(err).Msg("webhook challenge write failed")
	}
}

func (a *WhatsAppAdapter) handleDelivery(w http.ResponseWriter, r *http.Request) {
	// Acknowledge unconditionally, whatever happens below.
	defer w.WriteHeader(http.StatusOK)

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBodyBytes))
	if err != nil {
		log.Error().Err(err).Msg("webhook body read failed")
		return
	}

	incoming, err := whatsappx.ParseIncoming(body)
	if err != nil {
		log.Error().Err(err).Msg("webhook payload parse failed")
		return
	}
	if incoming == nil {
		// Status update or non-text message.
		return
	}

	ctx := r.Context()
	userID, ok, err := a.users.UserIDForPhone(ctx, incoming.SenderPhone)
	if err != nil {
		log.Error().Err(err).Str("phone", incoming.SenderPhone).Msg("phone lookup failed")
		return
	}
	if !ok {
		log.Warn().Str("phone", incoming.SenderPhone).Msg("message from unlinked number dropped")
		return
	}

	reply := a.router.Route(ctx, NormalizedMessage{
		UserID:   userID,
		Text:     incoming.Text,
		Platform: PlatformWhatsApp,
	})

	if err := a.client.SendText(ctx, incoming.PhoneNumberID, incoming.SenderPhone, reply); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("whatsapp reply delivery failed")
	}
}
