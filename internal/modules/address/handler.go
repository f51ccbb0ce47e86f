package address

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// Handler exposes seller address HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r *chi.Mux, admin func(http.Handler) http.Handler) {
	r.Route("/api/v1/seller-address", func(r chi.Router) {
		r.Get("/", h.getAddress)
		r.With(admin).Put("/", h.setAddress)
	})
}

func (h *Handler) getAddress(w http.ResponseWriter, r *http.Request) {
	a, err := h.service.GetSellerAddress(r.Context())
	if err != nil {
		respond(w, http.StatusNotFound, map[string]string{"error": "seller address not set"})
		return
	}
	respond(w, http.StatusOK, a)
}

func (h *Handler) setAddress(w http.ResponseWriter, r *http.Request) {
	var req SellerAddress
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	a, err := h.service.SetSellerAddress(r.Context(), req)
	if err != nil {
		code := http.StatusInternalServerError
		if strings.Contains(err.Error(), "required") {
			code = http.StatusBadRequest
		}
		respond(w, code, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, a)
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
