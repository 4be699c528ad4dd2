package service

import (
	"context"

	"deliverytrack/internal/model"
	"deliverytrack/internal/repository"
)

// UserDirectory backs the admin pickers that list buyers and sellers for
// association and assignment.
type UserDirectory interface {
	ListByRole(ctx context.Context, role model.Role) ([]model.User, error)
}

type userDirectory struct {
	users repository.UserRepository
}

func NewUserDirectory(users repository.UserRepository) UserDirectory {
	return &userDirectory{users: users}
}

func (s *userDirectory) ListByRole(ctx context.Context, role model.Role) ([]model.User, error) {
	return s.users.ListByRole(ctx, role)
}
