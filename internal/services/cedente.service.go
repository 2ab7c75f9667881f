package services

import (
	"context"
	"errors"
	"strings"

	"github.com/milhasdesk/points-admin/internal/model"
	"github.com/milhasdesk/points-admin/internal/repository"
)

var (
	ErrCedenteNotFound   = errors.New("cedente not found")
	ErrDuplicateDocument = errors.New("cedente document already registered")
)

type cedenteRepository interface {
	Create(ctx context.Context, c *model.Cedente) (*model.Cedente, error)
	Get(ctx context.Context, id int64) (*model.Cedente, error)
	List(ctx context.Context, f model.CedenteFilter) ([]*model.Cedente, int64, error)
	SetBalances(ctx context.Context, cedenteID int64, balances map[model.Program]int64) error
}

type CedenteService struct {
	repo cedenteRepository
}

func NewCedenteService(repo cedenteRepository) *CedenteService {
	return &CedenteService{repo: repo}
}

func (s *CedenteService) Create(ctx context.Context, p model.CedenteCreateRequest) (*model.Cedente, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	c, err := s.repo.Create(ctx, &model.Cedente{
		Name:     strings.TrimSpace(p.Name),
		Document: strings.TrimSpace(p.Document),
		Phone:    strings.TrimSpace(p.Phone),
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateCedente) {
			return nil, ErrDuplicateDocument
		}
		return nil, err
	}
	return c, nil
}

func (s *CedenteService) Get(ctx context.Context, id int64) (*model.Cedente, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCedenteNotFound) {
			return nil, ErrCedenteNotFound
		}
		return nil, err
	}
	return c, nil
}

func (s *CedenteService) List(ctx context.Context, f model.CedenteFilter) ([]*model.Cedente, int64, error) {
	return s.repo.List(ctx, f)
}

// SetBalances is the admin balance edit: an independent writer next to
// the release transaction. Values are clamped at the repository.
func (s *CedenteService) SetBalances(ctx context.Context, id int64, balances map[model.Program]int64) (*model.Cedente, error) {
	if err := s.repo.SetBalances(ctx, id, balances); err != nil {
		if errors.Is(err, repository.ErrCedenteNotFound) {
			return nil, ErrCedenteNotFound
		}
		return nil, err
	}
	return s.repo.Get(ctx, id)
}
