package services

import (
	"context"
	"errors"

	"github.com/milhasdesk/points-admin/internal/model"
	"github.com/milhasdesk/points-admin/internal/repository"
)

var ErrNoSession = errors.New("missing or invalid session")

type sessionUserRepository interface {
	GetByAPIKey(ctx context.Context, apiKey string) (*model.User, error)
}

// SessionService resolves the acting back-office user from the API key
// carried on the request. Release refuses to run without one.
type SessionService struct {
	users sessionUserRepository
}

func NewSessionService(users sessionUserRepository) *SessionService {
	return &SessionService{users: users}
}

func (s *SessionService) Resolve(ctx context.Context, apiKey string) (*model.User, error) {
	if apiKey == "" {
		return nil, ErrNoSession
	}
	u, err := s.users.GetByAPIKey(ctx, apiKey)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrNoSession
		}
		return nil, err
	}
	return u, nil
}
