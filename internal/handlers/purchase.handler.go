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
	"github.com/milhasdesk/points-admin/pkg/logger"
)

type PurchaseService interface {
	Create(ctx context.Context, p model.PurchaseCreateRequest) (*model.Purchase, error)
	Get(ctx context.Context, id int64) (*model.Purchase, error)
	List(ctx context.Context, f model.PurchaseFilter) ([]*model.Purchase, int64, error)
}

type ReleaseService interface {
	Release(ctx context.Context, purchaseID int64, userID int64, overrides *model.AppliedOverrides) (*services.ReleaseResult, error)
}

type RecomputeService interface {
	Recompute(ctx context.Context, purchaseID int64) error
}

type SessionService interface {
	Resolve(ctx context.Context, apiKey string) (*model.User, error)
}

type PurchaseHandler struct {
	svc       PurchaseService
	release   ReleaseService
	recompute RecomputeService
	session   SessionService
}

func RegisterPurchaseRoutes(e *router.Group, h *PurchaseHandler) {
	e.POST("/purchases", h.CreatePurchase)
	e.GET("/purchases", h.ListPurchases)
	e.GET("/purchases/{id}", h.GetPurchase)
	e.POST("/purchases/{id}/release", h.ReleasePurchase)
	e.POST("/purchases/{id}/recompute", h.RecomputePurchase)
}

func NewPurchaseHandler(svc PurchaseService, release ReleaseService, recompute RecomputeService, session SessionService) *PurchaseHandler {
	return &PurchaseHandler{
		svc:       svc,
		release:   release,
		recompute: recompute,
		session:   session,
	}
}

type purchaseItemRequest struct {
	ProgramFrom             *string `json:"program_from"`
	ProgramTo               *string `json:"program_to"`
	PointsFinal             float64 `json:"points_final"`
	PointsDebitedFromOrigin float64 `json:"points_debited_from_origin"`
}

type createPurchaseRequest struct {
	CedenteID       int64                 `json:"cedente_id"`
	CedentePayCents int64                 `json:"cedente_pay_cents"`
	Items           []purchaseItemRequest `json:"items"`
}

type releasePurchaseRequest struct {
	SaldosAplicados *model.AppliedOverrides `json:"saldosAplicados"`
}

type releaseResponse struct {
	Compra     *model.Purchase   `json:"compra"`
	Commission *model.Commission `json:"commission"`
}

type purchaseListResponse struct {
	Items []*model.Purchase `json:"items"`
	Total int64             `json:"total"`
}

/* --------------------------------- Routes ----------------------------------- */

// ReleasePurchase closes an open purchase and applies its balances.
// Body is optional; when present it may carry per-program override
// balances under saldosAplicados.
func (h *PurchaseHandler) ReleasePurchase(ctx *xhttp.RequestCtx) {
	id, err := paramID(ctx)
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid purchase id")
		return
	}

	user, err := h.session.Resolve(ctx, apiKey(ctx))
	if err != nil {
		if errors.Is(err, services.ErrNoSession) {
			writeError(ctx, xhttp.StatusBadRequest, "missing or invalid session")
			return
		}
		logger.Error("session resolution failed", "error", err)
		writeError(ctx, xhttp.StatusInternalServerError, "failed to release purchase")
		return
	}

	var req releasePurchaseRequest
	if body := ctx.PostBody(); len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
			return
		}
	}

	result, err := h.release.Release(ctx, id, user.ID, req.SaldosAplicados)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPurchaseNotFound):
			writeError(ctx, xhttp.StatusNotFound, err.Error())
		case errors.Is(err, services.ErrPurchaseNotOpen), errors.Is(err, services.ErrCedenteMissing):
			writeError(ctx, xhttp.StatusBadRequest, err.Error())
		default:
			logger.Error("release failed", "purchase_id", id, "error", err)
			writeError(ctx, xhttp.StatusInternalServerError, "failed to release purchase")
		}
		return
	}

	writeData(ctx, xhttp.StatusOK, releaseResponse{
		Compra:     result.Purchase,
		Commission: result.Commission,
	})
}

func (h *PurchaseHandler) RecomputePurchase(ctx *xhttp.RequestCtx) {
	id, err := paramID(ctx)
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid purchase id")
		return
	}

	if err := h.recompute.Recompute(ctx, id); err != nil {
		switch {
		case errors.Is(err, services.ErrPurchaseNotFound):
			writeError(ctx, xhttp.StatusNotFound, err.Error())
		case errors.Is(err, services.ErrPurchaseNotOpen), errors.Is(err, services.ErrCedenteMissing):
			writeError(ctx, xhttp.StatusBadRequest, err.Error())
		default:
			logger.Error("recompute failed", "purchase_id", id, "error", err)
			writeError(ctx, xhttp.StatusInternalServerError, "failed to recompute purchase")
		}
		return
	}

	writeData(ctx, xhttp.StatusOK, map[string]int64{"purchase_id": id})
}

func (h *PurchaseHandler) CreatePurchase(ctx *xhttp.RequestCtx) {
	var req createPurchaseRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	p := model.PurchaseCreateRequest{
		CedenteID:       req.CedenteID,
		CedentePayCents: req.CedentePayCents,
	}
	for _, item := range req.Items {
		p.Items = append(p.Items, model.PurchaseItemInput{
			ProgramFrom:             item.ProgramFrom,
			ProgramTo:               item.ProgramTo,
			PointsFinal:             item.PointsFinal,
			PointsDebitedFromOrigin: item.PointsDebitedFromOrigin,
		})
	}

	purchase, err := h.svc.Create(ctx, p)
	if err != nil {
		if errors.Is(err, services.ErrCedenteNotFound) {
			writeError(ctx, xhttp.StatusNotFound, err.Error())
			return
		}
		writeError(ctx, xhttp.StatusBadRequest, err.Error())
		return
	}
	writeData(ctx, xhttp.StatusCreated, purchase)
}

func (h *PurchaseHandler) GetPurchase(ctx *xhttp.RequestCtx) {
	id, err := paramID(ctx)
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid purchase id")
		return
	}

	purchase, err := h.svc.Get(ctx, id)
	if err != nil {
		if errors.Is(err, services.ErrPurchaseNotFound) {
			writeError(ctx, xhttp.StatusNotFound, err.Error())
			return
		}
		writeError(ctx, xhttp.StatusInternalServerError, "failed to load purchase")
		return
	}
	writeData(ctx, xhttp.StatusOK, purchase)
}

func (h *PurchaseHandler) ListPurchases(ctx *xhttp.RequestCtx) {
	var f model.PurchaseFilter

	if v := query(ctx, "cedente_id"); v != "" {
		if id, e := strconv.ParseInt(v, 10, 64); e == nil {
			f.CedenteID = &id
		}
	}
	if v := query(ctx, "status"); v != "" {
		f.Statuses = append(f.Statuses, model.PurchaseStatus(v))
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
	if query(ctx, "order") == "desc" {
		f.Desc = true
	}

	items, total, err := h.svc.List(ctx, f)
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, err.Error())
		return
	}
	writeData(ctx, xhttp.StatusOK, purchaseListResponse{Items: items, Total: total})
}
