package shipping

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// Handler exposes shipping HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/shipping", func(r chi.Router) {
		r.Post("/rates/quote", h.quoteRates)
		r.Post("/rates", h.getRates)
		r.Post("/validate-address", h.validateAddress)
	})
}

func (h *Handler) quoteRates(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	quote, err := h.service.QuoteRates(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, quote)
}

func (h *Handler) getRates(w http.ResponseWriter, r *http.Request) {
	var req RatesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	rates, err := h.service.GetRates(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, rates)
}

func (h *Handler) validateAddress(w http.ResponseWriter, r *http.Request) {
	var req Address
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	result, err := h.service.ValidateAddress(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, result)
}

func respondError(w http.ResponseWriter, err error) {
	var provErr *ProviderError
	switch {
	case errors.Is(err, ErrNoRates):
		respond(w, http.StatusNotFound, map[string]string{"error": "No rates found"})
	case errors.As(err, &provErr):
		respond(w, http.StatusBadRequest, map[string]string{"error": provErr.Detail})
	case strings.Contains(err.Error(), "required"):
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		respond(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
