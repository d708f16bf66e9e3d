package service

import (
	"context"
	"errors"

	"github.com/wardenauth/warden/internal/auth/domain"
	"github.com/wardenauth/warden/internal/auth/store"
)

var ErrInvalidRole = errors.New("invalid_role")

// UserService covers the admin-facing user operations.
type UserService struct {
	Store store.Store
}

// ListUsers returns the public view of every user.
func (s *UserService) ListUsers(ctx context.Context) ([]domain.UserView, error) {
	users, err := s.Store.Users().ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]domain.UserView, 0, len(users))
	for _, u := range users {
		views = append(views, u.View())
	}
	return views, nil
}

// SetRole assigns a role to a user. Only the known roles are accepted.
func (s *UserService) SetRole(ctx context.Context, userID, role string) error {
	if role != domain.RoleUser && role != domain.RoleAdmin {
		return ErrInvalidRole
	}
	return s.Store.Users().UpdateRole(ctx, userID, role)
}
