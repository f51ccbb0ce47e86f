package order

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	stripe "github.com/stripe/stripe-go/v74"
)

type stubService struct {
	order   *Order
	created bool
	err     error
}

func (s *stubService) CreateFromPayment(context.Context, CreateFromPaymentRequest) (*Order, bool, error) {
	return s.order, s.created, s.err
}

func (s *stubService) GetOrder(context.Context, string) (*Order, error) {
	return s.order, s.err
}

func (s *stubService) ListCustomerOrders(context.Context, string) ([]*Order, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.order == nil {
		return nil, nil
	}
	return []*Order{s.order}, nil
}

func (s *stubService) UpdateStatus(context.Context, string, UpdateStatusRequest) (*Order, error) {
	return s.order, s.err
}

func passthrough(next http.Handler) http.Handler { return next }

func newRouter(svc Service) *chi.Mux {
	r := chi.NewRouter()
	NewHandler(svc).RegisterRoutes(r, passthrough)
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestCreateFromPaymentHandler_NewOrderIs201(t *testing.T) {
	router := newRouter(&stubService{order: &Order{PaymentIntentID: "pi_1"}, created: true})

	rec := doJSON(t, router, http.MethodPost, "/api/v1/orders/from-payment", `{"paymentIntentId":"pi_1"}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"pi_1"`)
}

func TestCreateFromPaymentHandler_ExistingOrderIs200WithMessage(t *testing.T) {
	router := newRouter(&stubService{order: &Order{PaymentIntentID: "pi_1"}, created: false})

	rec := doJSON(t, router, http.MethodPost, "/api/v1/orders/from-payment", `{"paymentIntentId":"pi_1"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "order already exists")
}

func TestCreateFromPaymentHandler_ErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"payment not found", ErrPaymentNotFound, http.StatusNotFound},
		{"not succeeded", ErrPaymentNotSucceeded, http.StatusBadRequest},
		{"missing reference", errors.New("sessionId or paymentIntentId is required"), http.StatusBadRequest},
		{"provider missing resource", &stripe.Error{Code: stripe.ErrorCodeResourceMissing, Msg: "No such session"}, http.StatusNotFound},
		{"provider rejection", &stripe.Error{Msg: "bad request"}, http.StatusBadRequest},
		{"storage failure", errors.New("connection refused"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := newRouter(&stubService{err: tc.err})
			rec := doJSON(t, router, http.MethodPost, "/api/v1/orders/from-payment", `{"sessionId":"cs_1"}`)
			assert.Equal(t, tc.code, rec.Code)
		})
	}
}

func TestCreateFromPaymentHandler_InternalDetailNotLeaked(t *testing.T) {
	router := newRouter(&stubService{err: errors.New("pq: connection refused")})

	rec := doJSON(t, router, http.MethodPost, "/api/v1/orders/from-payment", `{"sessionId":"cs_1"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "pq:")
	assert.Contains(t, rec.Body.String(), "internal server error")
}

func TestGetOrderHandler_UnknownIDIs404(t *testing.T) {
	router := newRouter(&stubService{err: errors.New("sql: no rows in result set")})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/not-a-real-id", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "order not found")
}

func TestListCustomerOrdersHandler_EmptyHistoryIsEmptyArray(t *testing.T) {
	router := newRouter(&stubService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/customer/nobody@example.com", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"orders":[]}`, rec.Body.String())
}

func TestUpdateStatusHandler_InvalidTransitionIs422(t *testing.T) {
	router := newRouter(&stubService{err: errors.New("cannot transition order from delivered to paid")})

	rec := doJSON(t, router, http.MethodPatch, "/api/v1/orders/abc/status", `{"status":"paid"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestUpdateStatusHandler_MissingOrderIs404(t *testing.T) {
	router := newRouter(&stubService{err: errors.New("order not found: sql: no rows in result set")})

	rec := doJSON(t, router, http.MethodPatch, "/api/v1/orders/abc/status", `{"status":"shipped"}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
