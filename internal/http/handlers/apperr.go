package handlers

import (
	"errors"
	"net/http"

	"donatello/internal/domain"
	"donatello/internal/middleware"
)

// User-facing messages, keyed by error code and locale. The original
// frontend is Spanish-first, so every code carries both translations.
var messages = map[string]map[string]string{
	"not_found":         {"es": "No encontrada", "en": "Not found"},
	"forbidden":         {"es": "No autorizado", "en": "Not allowed"},
	"unauthorized":      {"es": "Credenciales inválidas", "en": "Invalid credentials"},
	"invalid_state":     {"es": "Estado inválido", "en": "Invalid state for this transition"},
	"self_proposal":     {"es": "No puedes postularte a tu propia publicación", "en": "You cannot propose on your own listing"},
	"email_taken":       {"es": "Email ya registrado", "en": "Email already registered"},
	"missing_fields":    {"es": "Faltan campos obligatorios", "en": "Required fields are missing"},
	"nothing_to_update": {"es": "Nada para actualizar", "en": "Nothing to update"},
	"bad_request":       {"es": "Solicitud inválida", "en": "Invalid request"},
	"internal":          {"es": "Error interno", "en": "Internal error"},
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (a *App) error(w http.ResponseWriter, r *http.Request, status int, code string) {
	locale := middleware.LocaleFromContext(r.Context())
	msg := messages[code][locale]
	if msg == "" {
		msg = messages[code]["en"]
	}
	if msg == "" {
		msg = code
	}
	a.json(w, status, errorResponse{Error: msg, Code: code})
}

// fail translates a domain error into an HTTP response. Precondition
// failures never leave partial state behind, so a plain mapping is all
// that is needed here.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, r, http.StatusNotFound, "not_found")
	case errors.Is(err, domain.ErrForbidden):
		a.error(w, r, http.StatusForbidden, "forbidden")
	case errors.Is(err, domain.ErrUnauthorized):
		a.error(w, r, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrInvalidState):
		a.error(w, r, http.StatusBadRequest, "invalid_state")
	case errors.Is(err, domain.ErrInvalidOperation):
		a.error(w, r, http.StatusBadRequest, "self_proposal")
	case errors.Is(err, domain.ErrConflict):
		a.error(w, r, http.StatusConflict, "email_taken")
	default:
		a.Logger.Error().Err(err).Str("request_id", middleware.RequestIDFromContext(r.Context())).Msg("request failed")
		a.error(w, r, http.StatusInternalServerError, "internal")
	}
}
