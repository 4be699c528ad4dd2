package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"deliverytrack/internal/handler"
	appmw "deliverytrack/internal/middleware"
	"deliverytrack/internal/model"
	"deliverytrack/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubOrderService struct {
	order *model.Order
	err   error
}

func (s *stubOrderService) Create(context.Context, *model.User, []string) (*model.Order, error) {
	return s.order, s.err
}
func (s *stubOrderService) List(context.Context, *model.User) ([]model.Order, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []model.Order{*s.order}, nil
}
func (s *stubOrderService) AssociateBuyer(context.Context, *model.User, string, string) (*model.Order, error) {
	return s.order, s.err
}
func (s *stubOrderService) AssignSeller(context.Context, *model.User, string, string) (*model.Order, error) {
	return s.order, s.err
}
func (s *stubOrderService) AdvanceStage(context.Context, *model.User, string) (*model.Order, error) {
	return s.order, s.err
}
func (s *stubOrderService) MarkNotDelivered(context.Context, *model.User, string) (*model.Order, error) {
	return s.order, s.err
}
func (s *stubOrderService) SoftDelete(context.Context, *model.User, string) (*model.Order, error) {
	return s.order, s.err
}
func (s *stubOrderService) Details(context.Context, string) (*model.Order, error) {
	return s.order, s.err
}

type stubStats struct{}

func (stubStats) Stats(context.Context) (*service.Stats, error) {
	return &service.Stats{TotalOrders: 2, OrdersByStage: map[int]int64{1: 2}}, nil
}

type stubDirectory struct{}

func (stubDirectory) ListByRole(_ context.Context, role model.Role) ([]model.User, error) {
	return []model.User{{ID: "u-1", Name: "Buyer One", Email: "buyer@example.com", Role: role}}, nil
}

func newTestOrder() *model.Order {
	buyerID := "buyer-1"
	return &model.Order{
		ID:           "order-1",
		Items:        []string{"A"},
		CurrentStage: 1,
		BuyerID:      &buyerID,
		History:      []model.HistoryEntry{{Stage: "Order Placed"}},
	}
}

func doRequest(t *testing.T, svc service.OrderService, method, path, body string, fn func(h *handler.OrderHandler, c echo.Context) error) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("order-1")
	c.Set(appmw.ContextUserKey, &model.User{ID: "actor-1", Name: "Actor", Role: model.RoleSeller})

	h := handler.NewOrderHandler(svc, stubStats{}, stubDirectory{})
	require.NoError(t, fn(h, c))
	return rec
}

func TestCreateStatusMapping(t *testing.T) {
	t.Run("success returns the order document", func(t *testing.T) {
		rec := doRequest(t, &stubOrderService{order: newTestOrder()}, http.MethodPost, "/api/orders", `{"items":["A"]}`,
			func(h *handler.OrderHandler, c echo.Context) error { return h.Create(c) })

		require.Equal(t, http.StatusOK, rec.Code)
		var resp handler.OrderResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "order-1", resp.ID)
		assert.Equal(t, "Order Placed", resp.StageName)
	})

	t.Run("active order conflict is a 400", func(t *testing.T) {
		rec := doRequest(t, &stubOrderService{err: service.ErrActiveOrderExists}, http.MethodPost, "/api/orders", `{"items":["A"]}`,
			func(h *handler.OrderHandler, c echo.Context) error { return h.Create(c) })
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("empty items are rejected before the service runs", func(t *testing.T) {
		rec := doRequest(t, &stubOrderService{}, http.MethodPost, "/api/orders", `{"items":[]}`,
			func(h *handler.OrderHandler, c echo.Context) error { return h.Create(c) })
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "validation_error")
	})
}

func TestMutationStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", service.ErrNotFound, http.StatusNotFound},
		{"not the assigned seller", service.ErrForbidden, http.StatusForbidden},
		{"already delivered", service.ErrAlreadyDelivered, http.StatusBadRequest},
		{"deleted order", service.ErrInvalidState, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(t, &stubOrderService{err: tc.err}, http.MethodPut, "/api/orders/order-1/next-stage", "",
				func(h *handler.OrderHandler, c echo.Context) error { return h.NextStage(c) })
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestDeleteReturnsMessage(t *testing.T) {
	rec := doRequest(t, &stubOrderService{order: newTestOrder()}, http.MethodDelete, "/api/orders/order-1", "",
		func(h *handler.OrderHandler, c echo.Context) error { return h.Delete(c) })

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Order deleted"}`, rec.Body.String())
}

func TestDetailsIncludesStageTimes(t *testing.T) {
	o := newTestOrder()
	o.History = append(o.History, model.HistoryEntry{Stage: "Seller Assigned"})

	rec := doRequest(t, &stubOrderService{order: o}, http.MethodGet, "/api/orders/order-1/details", "",
		func(h *handler.OrderHandler, c echo.Context) error { return h.Details(c) })

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Order      handler.OrderResponse `json:"order"`
		StageTimes []service.StageTime   `json:"stageTimes"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "order-1", resp.Order.ID)
	require.Len(t, resp.StageTimes, 1)
	assert.Equal(t, "Order Placed", resp.StageTimes[0].From)
	assert.Equal(t, "Seller Assigned", resp.StageTimes[0].To)
}

func TestAssociateRequiresBuyerID(t *testing.T) {
	rec := doRequest(t, &stubOrderService{order: newTestOrder()}, http.MethodPut, "/api/orders/order-1/associate", `{}`,
		func(h *handler.OrderHandler, c echo.Context) error { return h.AssociateBuyer(c) })
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
