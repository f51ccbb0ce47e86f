package order

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	stripe "github.com/stripe/stripe-go/v74"
)

// Handler exposes order HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r *chi.Mux, admin func(http.Handler) http.Handler) {
	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Post("/from-payment", h.createFromPayment)
		r.Get("/{id}", h.getOrder)
		r.Get("/customer/{email}", h.listCustomerOrders)
		r.With(admin).Patch("/{id}/status", h.updateStatus)
	})
}

func (h *Handler) createFromPayment(w http.ResponseWriter, r *http.Request) {
	var req CreateFromPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	o, created, err := h.service.CreateFromPayment(r.Context(), req)
	if err != nil {
		respondReconcileError(w, err)
		return
	}
	if created {
		respond(w, http.StatusCreated, map[string]interface{}{"order": o})
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{
		"order":   o,
		"message": "order already exists",
	})
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.service.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond(w, http.StatusNotFound, map[string]string{"error": "order not found"})
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{"order": o})
}

func (h *Handler) listCustomerOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.ListCustomerOrders(r.Context(), chi.URLParam(r, "email"))
	if err != nil {
		respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if orders == nil {
		orders = []*Order{}
	}
	respond(w, http.StatusOK, map[string]interface{}{"orders": orders})
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	o, err := h.service.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		code := http.StatusInternalServerError
		if strings.Contains(err.Error(), "cannot transition") {
			code = http.StatusUnprocessableEntity
		} else if strings.Contains(err.Error(), "not found") {
			code = http.StatusNotFound
		}
		respond(w, code, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{"order": o})
}

func respondReconcileError(w http.ResponseWriter, err error) {
	var stripeErr *stripe.Error
	switch {
	case errors.Is(err, ErrPaymentNotFound):
		respond(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, ErrPaymentNotSucceeded):
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.As(err, &stripeErr):
		code := http.StatusBadRequest
		if stripeErr.Code == stripe.ErrorCodeResourceMissing {
			code = http.StatusNotFound
		}
		respond(w, code, map[string]string{
			"error": stripeErr.Msg,
			"type":  string(stripeErr.Type),
		})
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
