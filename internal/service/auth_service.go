package service

import (
	"context"
	"errors"
	"strings"

	"deliverytrack/internal/model"
	"deliverytrack/internal/repository"
	"deliverytrack/internal/token"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuthService interface {
	Register(ctx context.Context, name, email, password string, role model.Role) (*model.User, error)
	Login(ctx context.Context, email, password string) (string, *model.User, error)
}

type authService struct {
	users  repository.UserRepository
	tokens *token.Manager
}

func NewAuthService(users repository.UserRepository, tokens *token.Manager) AuthService {
	return &authService{users: users, tokens: tokens}
}

func (s *authService) Register(ctx context.Context, name, email, password string, role model.Role) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	u := &model.User{
		ID:    uuid.NewString(),
		Name:  name,
		Email: email,
		Role:  role,
	}
	if err := u.SetPassword(password); err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if !u.CheckPassword(password) {
		return "", nil, ErrInvalidCredentials
	}
	tok, err := s.tokens.Generate(u.ID, string(u.Role))
	if err != nil {
		return "", nil, err
	}
	return tok, u, nil
}
