package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/fasthttp/router"
	"github.com/milhasdesk/points-admin/internal/model"
	"github.com/milhasdesk/points-admin/internal/services"
	xhttp "github.com/milhasdesk/points-admin/pkg/http"
)

type CedenteService interface {
	Create(ctx context.Context, p model.CedenteCreateRequest) (*model.Cedente, error)
	Get(ctx context.Context, id int64) (*model.Cedente, error)
	List(ctx context.Context, f model.CedenteFilter) ([]*model.Cedente, int64, error)
	SetBalances(ctx context.Context, id int64, balances map[model.Program]int64) (*model.Cedente, error)
}

type CommissionService interface {
	List(ctx context.Context, f model.CommissionFilter) ([]*model.Commission, int64, error)
}

type CedenteHandler struct {
	svc         CedenteService
	commissions CommissionService
}

func RegisterCedenteRoutes(e *router.Group, h *CedenteHandler) {
	e.POST("/cedentes", h.CreateCedente)
	e.GET("/cedentes", h.ListCedentes)
	e.GET("/cedentes/{id}", h.GetCedente)
	e.PUT("/cedentes/{id}/balances", h.SetBalances)
	e.GET("/commissions", h.ListCommissions)
}

func NewCedenteHandler(svc CedenteService, commissions CommissionService) *CedenteHandler {
	return &CedenteHandler{
		svc:         svc,
		commissions: commissions,
	}
}

type createCedenteRequest struct {
	Name     string `json:"name"`
	Document string `json:"document"`
	Phone    string `json:"phone"`
}

// setBalancesRequest carries the full nine-counter edit. Values arrive
// as untyped numbers and are clamped downstream.
type setBalancesRequest struct {
	Latam      int64 `json:"latam"`
	Smiles     int64 `json:"smiles"`
	Livelo     int64 `json:"livelo"`
	Esfera     int64 `json:"esfera"`
	Azul       int64 `json:"azul"`
	Iberia     int64 `json:"iberia"`
	AA         int64 `json:"aa"`
	Tap        int64 `json:"tap"`
	FlyingBlue int64 `json:"flyingBlue"`
}

type cedenteListResponse struct {
	Items []*model.Cedente `json:"items"`
	Total int64            `json:"total"`
}

type commissionListResponse struct {
	Items []*model.Commission `json:"items"`
	Total int64               `json:"total"`
}

/* --------------------------------- Routes ----------------------------------- */

func (h *CedenteHandler) CreateCedente(ctx *xhttp.RequestCtx) {
	var req createCedenteRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	c, err := h.svc.Create(ctx, model.CedenteCreateRequest{
		Name:     req.Name,
		Document: req.Document,
		Phone:    req.Phone,
	})
	if err != nil {
		if errors.Is(err, services.ErrDuplicateDocument) {
			writeError(ctx, xhttp.StatusConflict, err.Error())
			return
		}
		writeError(ctx, xhttp.StatusBadRequest, err.Error())
		return
	}
	writeData(ctx, xhttp.StatusCreated, c)
}

func (h *CedenteHandler) GetCedente(ctx *xhttp.RequestCtx) {
	id, err := paramID(ctx)
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid cedente id")
		return
	}

	c, err := h.svc.Get(ctx, id)
	if err != nil {
		if errors.Is(err, services.ErrCedenteNotFound) {
			writeError(ctx, xhttp.StatusNotFound, err.Error())
			return
		}
		writeError(ctx, xhttp.StatusInternalServerError, "failed to load cedente")
		return
	}
	writeData(ctx, xhttp.StatusOK, c)
}

func (h *CedenteHandler) ListCedentes(ctx *xhttp.RequestCtx) {
	var f model.CedenteFilter

	if v := query(ctx, "name"); v != "" {
		f.Name = &v
	}
	if v := query(ctx, "document"); v != "" {
		f.Document = &v
	}
	if v := query(ctx, "limit"); v != "" {
		if n, e := strconv.Atoi(v); e == nil {
			f.Limit = n
		}
	}
	if v := query(ctx, "offset"); v != "" {
		if n, e := strconv.Atoi(v); e == nil {
			f.Offset = n
		}
	}

	items, total, err := h.svc.List(ctx, f)
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, err.Error())
		return
	}
	writeData(ctx, xhttp.StatusOK, cedenteListResponse{Items: items, Total: total})
}

func (h *CedenteHandler) SetBalances(ctx *xhttp.RequestCtx) {
	id, err := paramID(ctx)
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid cedente id")
		return
	}

	var req setBalancesRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	c, err := h.svc.SetBalances(ctx, id, map[model.Program]int64{
		model.ProgramLatam:      req.Latam,
		model.ProgramSmiles:     req.Smiles,
		model.ProgramLivelo:     req.Livelo,
		model.ProgramEsfera:     req.Esfera,
		model.ProgramAzul:       req.Azul,
		model.ProgramIberia:     req.Iberia,
		model.ProgramAA:         req.AA,
		model.ProgramTap:        req.Tap,
		model.ProgramFlyingBlue: req.FlyingBlue,
	})
	if err != nil {
		if errors.Is(err, services.ErrCedenteNotFound) {
			writeError(ctx, xhttp.StatusNotFound, err.Error())
			return
		}
		writeError(ctx, xhttp.StatusInternalServerError, "failed to update balances")
		return
	}
	writeData(ctx, xhttp.StatusOK, c)
}

func (h *CedenteHandler) ListCommissions(ctx *xhttp.RequestCtx) {
	var f model.CommissionFilter

	if v := query(ctx, "cedente_id"); v != "" {
		if id, e := strconv.ParseInt(v, 10, 64); e == nil {
			f.CedenteID = &id
		}
	}
	if v := query(ctx, "status"); v != "" {
		f.Statuses = append(f.Statuses, model.CommissionStatus(v))
	}
	if v := query(ctx, "limit"); v != "" {
		if n, e := strconv.Atoi(v); e == nil {
			f.Limit = n
		}
	}
	if v := query(ctx, "offset"); v != "" {
		if n, e := strconv.Atoi(v); e == nil {
			f.Offset = n
		}
	}

	items, total, err := h.commissions.List(ctx, f)
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, err.Error())
		return
	}
	writeData(ctx, xhttp.StatusOK, commissionListResponse{Items: items, Total: total})
}
