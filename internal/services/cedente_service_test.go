package services

import (
	"context"
	"testing"

	"github.com/milhasdesk/points-admin/internal/model"
	"github.com/milhasdesk/points-admin/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCedenteStoreRepo struct {
	mock.Mock
}

func (m *MockCedenteStoreRepo) Create(ctx context.Context, c *model.Cedente) (*model.Cedente, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Cedente), args.Error(1)
}

func (m *MockCedenteStoreRepo) Get(ctx context.Context, id int64) (*model.Cedente, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Cedente), args.Error(1)
}

func (m *MockCedenteStoreRepo) List(ctx context.Context, f model.CedenteFilter) ([]*model.Cedente, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*model.Cedente), args.Get(1).(int64), args.Error(2)
}

func (m *MockCedenteStoreRepo) SetBalances(ctx context.Context, cedenteID int64, balances map[model.Program]int64) error {
	args := m.Called(ctx, cedenteID, balances)
	return args.Error(0)
}

func TestCedenteService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("trims and stores", func(t *testing.T) {
		repo := new(MockCedenteStoreRepo)
		service := NewCedenteService(repo)

		repo.On("Create", ctx, mock.MatchedBy(func(c *model.Cedente) bool {
			return c.Name == "Maria Souza" && c.Document == "123"
		})).Return(&model.Cedente{ID: 1, Name: "Maria Souza", Document: "123"}, nil)

		c, err := service.Create(ctx, model.CedenteCreateRequest{
			Name:     "  Maria Souza ",
			Document: " 123 ",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), c.ID)
	})

	t.Run("validation failure", func(t *testing.T) {
		repo := new(MockCedenteStoreRepo)
		service := NewCedenteService(repo)

		_, err := service.Create(ctx, model.CedenteCreateRequest{Document: "123"})
		assert.Error(t, err)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("duplicate document maps to sentinel", func(t *testing.T) {
		repo := new(MockCedenteStoreRepo)
		service := NewCedenteService(repo)

		repo.On("Create", ctx, mock.Anything).Return(nil, repository.ErrDuplicateCedente)

		_, err := service.Create(ctx, model.CedenteCreateRequest{
			Name:     "Outro Nome",
			Document: "123",
		})
		assert.ErrorIs(t, err, ErrDuplicateDocument)
	})
}

func TestCedenteService_Get(t *testing.T) {
	ctx := context.Background()

	repo := new(MockCedenteStoreRepo)
	service := NewCedenteService(repo)

	repo.On("Get", ctx, int64(404)).Return(nil, repository.ErrCedenteNotFound)

	_, err := service.Get(ctx, 404)
	assert.ErrorIs(t, err, ErrCedenteNotFound)
}
