package handler

import (
	"net/http"
	"strings"

	"deliverytrack/internal/model"
	"deliverytrack/internal/service"
	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	svc service.AuthService
}

func NewAuthHandler(svc service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func toUserResponse(u *model.User) UserResponse {
	return UserResponse{ID: u.ID, Name: u.Name, Email: u.Email, Role: string(u.Role)}
}

func (r registerRequest) validate() []FieldError {
	var fields []FieldError
	if strings.TrimSpace(r.Name) == "" {
		fields = append(fields, FieldError{Field: "name", Message: "name is required"})
	}
	if !strings.Contains(r.Email, "@") {
		fields = append(fields, FieldError{Field: "email", Message: "invalid email"})
	}
	if len(r.Password) < 6 {
		fields = append(fields, FieldError{Field: "password", Message: "password must be at least 6 characters"})
	}
	if !model.Role(r.Role).Valid() {
		fields = append(fields, FieldError{Field: "role", Message: "role must be buyer, seller or admin"})
	}
	return fields
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid body"))
	}
	if fields := req.validate(); len(fields) > 0 {
		return c.JSON(http.StatusBadRequest, NewValidationErrorResponse(fields...))
	}
	_, err := h.svc.Register(c.Request().Context(), req.Name, req.Email, req.Password, model.Role(req.Role))
	if err != nil {
		switch err {
		case service.ErrEmailTaken:
			return c.JSON(http.StatusBadRequest, NewErrorResponse("email_taken", "Email already registered"))
		default:
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "Server error"))
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "User registered"})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid body"))
	}
	tok, u, err := h.svc.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		switch err {
		case service.ErrInvalidCredentials:
			return c.JSON(http.StatusBadRequest, NewErrorResponse("invalid_credentials", "Invalid credentials"))
		default:
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "Server error"))
		}
	}
	return c.JSON(http.StatusOK, map[string]any{
		"token": tok,
		"user":  toUserResponse(u),
	})
}
