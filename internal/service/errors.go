package service

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrActiveOrderExists  = errors.New("active order exists")
	ErrInvalidBuyer       = errors.New("buyer not found or invalid role")
	ErrInvalidSeller      = errors.New("seller not found or invalid role")
	ErrAlreadyDelivered   = errors.New("order already delivered")
	ErrInvalidState       = errors.New("operation not valid for order state")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
