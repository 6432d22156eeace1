package user

import (
	"context"
	"fmt"

	"github.com/go-watchlist-api/internal/domain"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldRole = "role"
)

// Service exposes account administration on top of the user store. All
// mutations here are admin operations; the self guards keep an admin from
// locking themselves out.
type Service interface {
	Profile(ctx context.Context, userID string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Get(ctx context.Context, userID string) (*domain.User, error)
	UpdateRole(ctx context.Context, actorID, userID, role string) (*domain.User, error)
	Delete(ctx context.Context, actorID, userID string) error
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, email string, updates map[string]interface{}) error
	Delete(ctx context.Context, email string) error
}

type service struct {
	userRepo userStore
}

type ServiceDeps struct {
	UserRepo userStore
}

func NewService(deps ServiceDeps) Service {
	return &service{userRepo: deps.UserRepo}
}

func (s *service) Profile(ctx context.Context, userID string) (*domain.User, error) {
	return s.userRepo.Get(ctx, userID)
}

func (s *service) List(ctx context.Context) ([]domain.User, error) {
	return s.userRepo.List(ctx)
}

func (s *service) Get(ctx context.Context, userID string) (*domain.User, error) {
	return s.userRepo.Get(ctx, userID)
}

func (s *service) UpdateRole(ctx context.Context, actorID, userID, role string) (*domain.User, error) {
	if actorID == userID {
		return nil, fmt.Errorf("cannot change your own role: %w", domain.ErrForbidden)
	}
	u, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	// The store is keyed by email, so the lookup above doubles as the key fetch.
	if err := s.userRepo.Update(ctx, u.Email, map[string]interface{}{fieldRole: role}); err != nil {
		return nil, err
	}
	u.Role = role
	return u, nil
}

func (s *service) Delete(ctx context.Context, actorID, userID string) error {
	if actorID == userID {
		return fmt.Errorf("cannot delete your own account: %w", domain.ErrForbidden)
	}
	u, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return err
	}
	return s.userRepo.Delete(ctx, u.Email)
}
