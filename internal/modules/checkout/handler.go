package checkout

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	stripe "github.com/stripe/stripe-go/v74"
)

// Handler exposes checkout HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/checkout", func(r chi.Router) {
		r.Post("/sessions", h.createSession)
		r.Get("/sessions/{id}", h.getSession)
	})
}

func (h *Handler) createSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	session, err := h.service.CreateSession(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, session)
}

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.GetSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{"session": session})
}

// respondError maps validation errors to 400, provider errors to the
// provider's own message (404 when the resource is missing), the rest to 500.
func respondError(w http.ResponseWriter, err error) {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		code := http.StatusBadRequest
		if stripeErr.Code == stripe.ErrorCodeResourceMissing {
			code = http.StatusNotFound
		}
		respond(w, code, map[string]string{
			"error": stripeErr.Msg,
			"type":  string(stripeErr.Type),
		})
		return
	}
	msg := err.Error()
	if strings.Contains(msg, "required") || strings.Contains(msg, "invalid") {
		respond(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}
	respond(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
