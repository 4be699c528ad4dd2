package handler

import (
	"net/http"
	"time"

	appmw "deliverytrack/internal/middleware"
	"deliverytrack/internal/model"
	"deliverytrack/internal/service"
	"github.com/labstack/echo/v4"
)

type OrderHandler struct {
	svc   service.OrderService
	stats service.StatsService
	users service.UserDirectory
}

func NewOrderHandler(svc service.OrderService, stats service.StatsService, users service.UserDirectory) *OrderHandler {
	return &OrderHandler{svc: svc, stats: stats, users: users}
}

// OrderResponse is the order document shape shared by the REST responses.
// Buyer and seller appear twice on purpose: the plain id is always present,
// the expanded object only when the lookup projection loaded it.
type OrderResponse struct {
	ID           string               `json:"id"`
	Items        []string             `json:"items"`
	CurrentStage int                  `json:"currentStage"`
	StageName    string               `json:"stageName"`
	BuyerID      *string              `json:"buyerId"`
	SellerID     *string              `json:"sellerId"`
	Buyer        *UserResponse        `json:"buyer,omitempty"`
	Seller       *UserResponse        `json:"seller,omitempty"`
	History      []model.HistoryEntry `json:"history"`
	IsDeleted    bool                 `json:"isDeleted"`
	CreatedAt    string               `json:"createdAt"`
	UpdatedAt    string               `json:"updatedAt"`
}

func toOrderResponse(o *model.Order) OrderResponse {
	resp := OrderResponse{
		ID:           o.ID,
		Items:        o.Items,
		CurrentStage: o.CurrentStage,
		StageName:    o.StageName(),
		BuyerID:      o.BuyerID,
		SellerID:     o.SellerID,
		History:      o.History,
		IsDeleted:    o.IsDeleted,
		CreatedAt:    o.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    o.UpdatedAt.Format(time.RFC3339),
	}
	if o.Buyer != nil {
		u := toUserResponse(o.Buyer)
		resp.Buyer = &u
	}
	if o.Seller != nil {
		u := toUserResponse(o.Seller)
		resp.Seller = &u
	}
	return resp
}

func orderErrorResponse(c echo.Context, err error) error {
	switch err {
	case service.ErrNotFound:
		return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "Order not found"))
	case service.ErrForbidden:
		return c.JSON(http.StatusForbidden, NewErrorResponse("forbidden", "Not your order"))
	case service.ErrActiveOrderExists:
		return c.JSON(http.StatusBadRequest, NewErrorResponse("active_order_exists", "Buyer already has an active order"))
	case service.ErrInvalidBuyer:
		return c.JSON(http.StatusBadRequest, NewErrorResponse("invalid_buyer", "Buyer not found or invalid role"))
	case service.ErrInvalidSeller:
		return c.JSON(http.StatusBadRequest, NewErrorResponse("invalid_seller", "Seller not found or invalid role"))
	case service.ErrAlreadyDelivered:
		return c.JSON(http.StatusBadRequest, NewErrorResponse("already_delivered", "Order already delivered"))
	case service.ErrInvalidState:
		return c.JSON(http.StatusBadRequest, NewErrorResponse("invalid_state", "Operation not valid for order state"))
	default:
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "Server error"))
	}
}

type createOrderRequest struct {
	Items []string `json:"items"`
}

func (h *OrderHandler) Create(c echo.Context) error {
	actor := appmw.UserFrom(c)
	var req createOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid body"))
	}
	if len(req.Items) == 0 {
		return c.JSON(http.StatusBadRequest, NewValidationErrorResponse(FieldError{Field: "items", Message: "items must be a non-empty array"}))
	}
	o, err := h.svc.Create(c.Request().Context(), actor, req.Items)
	if err != nil {
		if err == service.ErrActiveOrderExists {
			return c.JSON(http.StatusBadRequest, NewErrorResponse("active_order_exists", "You already have an active order"))
		}
		return orderErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, toOrderResponse(o))
}

func (h *OrderHandler) List(c echo.Context) error {
	actor := appmw.UserFrom(c)
	orders, err := h.svc.List(c.Request().Context(), actor)
	if err != nil {
		return orderErrorResponse(c, err)
	}
	resp := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		resp = append(resp, toOrderResponse(&orders[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

type associateBuyerRequest struct {
	BuyerID string `json:"buyerId"`
}

func (h *OrderHandler) AssociateBuyer(c echo.Context) error {
	actor := appmw.UserFrom(c)
	var req associateBuyerRequest
	if err := c.Bind(&req); err != nil || req.BuyerID == "" {
		return c.JSON(http.StatusBadRequest, NewValidationErrorResponse(FieldError{Field: "buyerId", Message: "buyerId is required"}))
	}
	o, err := h.svc.AssociateBuyer(c.Request().Context(), actor, c.Param("id"), req.BuyerID)
	if err != nil {
		return orderErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, toOrderResponse(o))
}

type assignSellerRequest struct {
	SellerID string `json:"sellerId"`
}

func (h *OrderHandler) AssignSeller(c echo.Context) error {
	actor := appmw.UserFrom(c)
	var req assignSellerRequest
	if err := c.Bind(&req); err != nil || req.SellerID == "" {
		return c.JSON(http.StatusBadRequest, NewValidationErrorResponse(FieldError{Field: "sellerId", Message: "sellerId is required"}))
	}
	o, err := h.svc.AssignSeller(c.Request().Context(), actor, c.Param("id"), req.SellerID)
	if err != nil {
		return orderErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, toOrderResponse(o))
}

func (h *OrderHandler) NextStage(c echo.Context) error {
	actor := appmw.UserFrom(c)
	o, err := h.svc.AdvanceStage(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return orderErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, toOrderResponse(o))
}

func (h *OrderHandler) NotDelivered(c echo.Context) error {
	actor := appmw.UserFrom(c)
	o, err := h.svc.MarkNotDelivered(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return orderErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, toOrderResponse(o))
}

func (h *OrderHandler) Delete(c echo.Context) error {
	actor := appmw.UserFrom(c)
	if _, err := h.svc.SoftDelete(c.Request().Context(), actor, c.Param("id")); err != nil {
		return orderErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Order deleted"})
}

type orderDetailsResponse struct {
	Order      OrderResponse        `json:"order"`
	StageTimes []service.StageTime  `json:"stageTimes"`
	History    []model.HistoryEntry `json:"history"`
}

func (h *OrderHandler) Details(c echo.Context) error {
	o, err := h.svc.Details(c.Request().Context(), c.Param("id"))
	if err != nil {
		return orderErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, orderDetailsResponse{
		Order:      toOrderResponse(o),
		StageTimes: service.StageTimes(o.History),
		History:    o.History,
	})
}

func (h *OrderHandler) Stats(c echo.Context) error {
	stats, err := h.stats.Stats(c.Request().Context())
	if err != nil {
		return orderErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *OrderHandler) ListBuyers(c echo.Context) error {
	return h.listUsersByRole(c, model.RoleBuyer)
}

func (h *OrderHandler) ListSellers(c echo.Context) error {
	return h.listUsersByRole(c, model.RoleSeller)
}

func (h *OrderHandler) listUsersByRole(c echo.Context, role model.Role) error {
	users, err := h.users.ListByRole(c.Request().Context(), role)
	if err != nil {
		return orderErrorResponse(c, err)
	}
	resp := make([]UserResponse, 0, len(users))
	for i := range users {
		resp = append(resp, toUserResponse(&users[i]))
	}
	return c.JSON(http.StatusOK, resp)
}
