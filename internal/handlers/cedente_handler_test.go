package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/milhasdesk/points-admin/internal/model"
	"github.com/milhasdesk/points-admin/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCedenteService struct {
	mock.Mock
}

func (m *MockCedenteService) Create(ctx context.Context, p model.CedenteCreateRequest) (*model.Cedente, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Cedente), args.Error(1)
}

func (m *MockCedenteService) Get(ctx context.Context, id int64) (*model.Cedente, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Cedente), args.Error(1)
}

func (m *MockCedenteService) List(ctx context.Context, f model.CedenteFilter) ([]*model.Cedente, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*model.Cedente), args.Get(1).(int64), args.Error(2)
}

func (m *MockCedenteService) SetBalances(ctx context.Context, id int64, balances map[model.Program]int64) (*model.Cedente, error) {
	args := m.Called(ctx, id, balances)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Cedente), args.Error(1)
}

type MockCommissionService struct {
	mock.Mock
}

func (m *MockCommissionService) List(ctx context.Context, f model.CommissionFilter) ([]*model.Commission, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*model.Commission), args.Get(1).(int64), args.Error(2)
}

func TestCedenteHandler_CreateCedente(t *testing.T) {
	t.Run("successful creation", func(t *testing.T) {
		svc := new(MockCedenteService)
		handler := NewCedenteHandler(svc, new(MockCommissionService))

		expected := &model.Cedente{ID: 1, Name: "Maria Souza", Document: "123"}
		svc.On("Create", mock.Anything, mock.MatchedBy(func(p model.CedenteCreateRequest) bool {
			return p.Name == "Maria Souza" && p.Document == "123"
		})).Return(expected, nil)

		body := []byte(`{"name":"Maria Souza","document":"123"}`)
		ctx := setupTestContext("POST", "/cedentes", body)
		handler.CreateCedente(ctx)

		assert.Equal(t, 201, ctx.Response.StatusCode())

		var response struct {
			OK   bool          `json:"ok"`
			Data model.Cedente `json:"data"`
		}
		err := json.Unmarshal(ctx.Response.Body(), &response)
		require.NoError(t, err)
		assert.True(t, response.OK)
		assert.Equal(t, int64(1), response.Data.ID)
	})

	t.Run("duplicate document", func(t *testing.T) {
		svc := new(MockCedenteService)
		handler := NewCedenteHandler(svc, new(MockCommissionService))

		svc.On("Create", mock.Anything, mock.Anything).Return(nil, services.ErrDuplicateDocument)

		body := []byte(`{"name":"Outro Nome","document":"123"}`)
		ctx := setupTestContext("POST", "/cedentes", body)
		handler.CreateCedente(ctx)

		assert.Equal(t, 409, ctx.Response.StatusCode())
		assert.Contains(t, string(ctx.Response.Body()), "already registered")
	})

	t.Run("validation failure", func(t *testing.T) {
		svc := new(MockCedenteService)
		handler := NewCedenteHandler(svc, new(MockCommissionService))

		svc.On("Create", mock.Anything, mock.Anything).Return(nil, errors.New("name is required"))

		body := []byte(`{"document":"123"}`)
		ctx := setupTestContext("POST", "/cedentes", body)
		handler.CreateCedente(ctx)

		assert.Equal(t, 400, ctx.Response.StatusCode())
	})
}

func TestCedenteHandler_GetCedente(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		svc := new(MockCedenteService)
		handler := NewCedenteHandler(svc, new(MockCommissionService))

		svc.On("Get", mock.Anything, int64(1)).Return(&model.Cedente{ID: 1}, nil)

		ctx := setupTestContext("GET", "/cedentes/1", nil)
		ctx.SetUserValue("id", "1")
		handler.GetCedente(ctx)

		assert.Equal(t, 200, ctx.Response.StatusCode())
	})

	t.Run("not found", func(t *testing.T) {
		svc := new(MockCedenteService)
		handler := NewCedenteHandler(svc, new(MockCommissionService))

		svc.On("Get", mock.Anything, int64(404)).Return(nil, services.ErrCedenteNotFound)

		ctx := setupTestContext("GET", "/cedentes/404", nil)
		ctx.SetUserValue("id", "404")
		handler.GetCedente(ctx)

		assert.Equal(t, 404, ctx.Response.StatusCode())
	})
}

func TestCedenteHandler_SetBalances(t *testing.T) {
	t.Run("full nine-counter write", func(t *testing.T) {
		svc := new(MockCedenteService)
		handler := NewCedenteHandler(svc, new(MockCommissionService))

		svc.On("SetBalances", mock.Anything, int64(1), mock.MatchedBy(func(b map[model.Program]int64) bool {
			return b[model.ProgramLatam] == 100 && b[model.ProgramFlyingBlue] == 50 && len(b) == 9
		})).Return(&model.Cedente{ID: 1, Latam: 100, FlyingBlue: 50}, nil)

		body := []byte(`{"latam":100,"flyingBlue":50}`)
		ctx := setupTestContext("PUT", "/cedentes/1/balances", body)
		ctx.SetUserValue("id", "1")
		handler.SetBalances(ctx)

		assert.Equal(t, 200, ctx.Response.StatusCode())
		svc.AssertExpectations(t)
	})

	t.Run("unknown cedente", func(t *testing.T) {
		svc := new(MockCedenteService)
		handler := NewCedenteHandler(svc, new(MockCommissionService))

		svc.On("SetBalances", mock.Anything, int64(404), mock.Anything).Return(nil, services.ErrCedenteNotFound)

		ctx := setupTestContext("PUT", "/cedentes/404/balances", []byte(`{}`))
		ctx.SetUserValue("id", "404")
		handler.SetBalances(ctx)

		assert.Equal(t, 404, ctx.Response.StatusCode())
	})
}

func TestCedenteHandler_ListCommissions(t *testing.T) {
	svc := new(MockCedenteService)
	commissions := new(MockCommissionService)
	handler := NewCedenteHandler(svc, commissions)

	commissions.On("List", mock.Anything, mock.MatchedBy(func(f model.CommissionFilter) bool {
		return f.CedenteID != nil && *f.CedenteID == 2 &&
			len(f.Statuses) == 1 && f.Statuses[0] == model.CommissionStatusPending
	})).Return([]*model.Commission{{ID: 1, CedenteID: 2}}, int64(1), nil)

	ctx := setupTestContext("GET", "/commissions?cedente_id=2&status=PENDING", nil)
	handler.ListCommissions(ctx)

	assert.Equal(t, 200, ctx.Response.StatusCode())
	commissions.AssertExpectations(t)
}
