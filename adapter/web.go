package adapter

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	contractx "github.com/avamind/ava-core/agent/contract"
)

const maxRequestBodyBytes = 64 << 10

// ProfileWriter is the persistence surface behind the settings endpoints.
type ProfileWriter interface {
	SaveProfile(ctx context.Context, userID string, profile contractx.Profile) error
	SavePreferredPlatform(ctx context.Context, userID, platform string) error
}

// SessionInvalidator drops a session's memoized profile after a settings
// change, so the next message sees the fresh row.
type SessionInvalidator interface {
	InvalidateCachedProfile(userID string)
}

// WebAdapter serves the browser client: the chat endpoint plus the profile
// and preference settings. Authentication happens upstream; the authenticated
// user id arrives in the X-User-ID header.
type WebAdapter struct {
	router   *Router
	profiles ProfileWriter
	sessions SessionInvalidator
}

func NewWebAdapter(router *Router, profiles ProfileWriter, sessions SessionInvalidator) *WebAdapter {
	return &WebAdapter{router: router, profiles: profiles, sessions: sessions}
}

// Mount registers the web routes on a chi router.
func (a *WebAdapter) Mount(r chi.Router) {
	r.Post("/v1/chat", a.handleChat)
	r.Put("/v1/profile", a.handleSaveProfile)
	r.Put("/v1/preferences", a.handleSavePreferences)
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

func (a *WebAdapter) handleChat(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUser(w, r)
	if !ok {
		return
	}

	var req chatRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	reply := a.router.Route(r.Context(), NormalizedMessage{
		UserID:   userID,
		Text:     req.Message,
		Platform: PlatformWeb,
	})
	writeJSON(w, http.StatusOK, chatResponse{Reply: reply})
}

type profileRequest struct {
	Name     string `json:"name"`
	Persona  string `json:"persona"`
	Timezone string `json:"timezone"`
}

func (a *WebAdapter) handleSaveProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUser(w, r)
	if !ok {
		return
	}

	var req profileRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	profile := contractx.Profile{
		Name:     strings.TrimSpace(req.Name),
		Persona:  strings.ToLower(strings.TrimSpace(req.Persona)),
		Timezone: strings.TrimSpace(req.Timezone),
	}
	if err := a.profiles.SaveProfile(r.Context(), userID, profile); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("profile save failed")
		writeError(w, http.StatusInternalServerError, "could not save profile")
		return
	}
	a.sessions.InvalidateCachedProfile(userID)
	w.WriteHeader(http.StatusNoContent)
}

type preferencesRequest struct {
	PreferredPlatform string `json:"preferred_platform"`
}

func (a *WebAdapter) handleSavePreferences(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUser(w, r)
	if !ok {
		return
	}

	var req preferencesRequest
	if !decodeBody(w, r, &req) {
		return
	}
	platform := strings.ToLower(strings.TrimSpace(req.PreferredPlatform))
	switch platform {
	case PlatformWeb, PlatformWhatsApp, "":
	default:
		writeError(w, http.StatusBadRequest, "unknown platform")
		return
	}

	if err := a.profiles.SavePreferredPlatform(r.Context(), userID, platform); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("preference save failed")
		writeError(w, http.StatusInternalServerError, "could not save preferences")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func authenticatedUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := strings.TrimSpace(r.Header.Get("X-User-ID"))
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "missing user identity")
		return "", false
	}
	return userID, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	defer r.Body.Close()
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes))
	if err := decoder.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("response encoding failed")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
