package model

import (
	"errors"
	"strings"
	"time"
)

// PurchaseStatus is the lifecycle state of a purchase. The transition
// OPEN -> CLOSED happens exactly once, inside the release transaction.
type PurchaseStatus string

const (
	PurchaseStatusOpen   PurchaseStatus = "OPEN"
	PurchaseStatusClosed PurchaseStatus = "CLOSED"
)

// ItemStatus is the lifecycle state of a purchase line item.
type ItemStatus string

const (
	ItemStatusPending  ItemStatus = "PENDING"
	ItemStatusReleased ItemStatus = "RELEASED"
	ItemStatusCanceled ItemStatus = "CANCELED"
)

type Purchase struct {
	ID        int64          `json:"id"`
	CedenteID int64          `json:"cedente_id"`
	Cedente   *Cedente       `json:"cedente,omitempty"`
	Status    PurchaseStatus `json:"status"`

	// Predicted balances, maintained by recompute while the purchase is
	// open. Only the four legacy programs carry them.
	PredictedLatam  *int64 `json:"predicted_latam"`
	PredictedSmiles *int64 `json:"predicted_smiles"`
	PredictedLivelo *int64 `json:"predicted_livelo"`
	PredictedEsfera *int64 `json:"predicted_esfera"`

	// Applied balances, stamped at close time for audit.
	AppliedLatam  *int64 `json:"applied_latam"`
	AppliedSmiles *int64 `json:"applied_smiles"`
	AppliedLivelo *int64 `json:"applied_livelo"`
	AppliedEsfera *int64 `json:"applied_esfera"`

	CedentePayCents int64           `json:"cedente_pay_cents"`
	ReleasedAt      *time.Time      `json:"released_at"`
	ReleasedByID    *int64          `json:"released_by_id"`
	ReleasedBy      *User           `json:"released_by,omitempty"`
	Items           []*PurchaseItem `json:"items"`
	CreatedAt       time.Time       `json:"created_at"`
}

func (Purchase) TableName() string { return "purchases" }

// IsOpen reports whether the purchase can still be released.
func (p *Purchase) IsOpen() bool { return p.Status == PurchaseStatusOpen }

// PredictedBalance returns the stored predicted balance for a legacy
// program, if any. The other five programs never have one.
func (p *Purchase) PredictedBalance(program Program) (int64, bool) {
	var v *int64
	switch program {
	case ProgramLatam:
		v = p.PredictedLatam
	case ProgramSmiles:
		v = p.PredictedSmiles
	case ProgramLivelo:
		v = p.PredictedLivelo
	case ProgramEsfera:
		v = p.PredictedEsfera
	}
	if v == nil {
		return 0, false
	}
	return *v, true
}

type PurchaseItem struct {
	ID          int64      `json:"id"`
	PurchaseID  int64      `json:"purchase_id"`
	ProgramFrom *string    `json:"program_from"`
	ProgramTo   *string    `json:"program_to"`
	// Points credited to the destination program.
	PointsFinal float64 `json:"points_final"`
	// Points debited from the origin program.
	PointsDebitedFromOrigin float64    `json:"points_debited_from_origin"`
	Status                  ItemStatus `json:"status"`
	CreatedAt               time.Time  `json:"created_at"`
}

func (PurchaseItem) TableName() string { return "purchase_items" }

// IsCanceled normalizes the stored status case-insensitively. Canceled
// items never contribute to deltas.
func (i *PurchaseItem) IsCanceled() bool {
	return strings.EqualFold(string(i.Status), string(ItemStatusCanceled))
}

// ComputeDeltas folds a purchase's line items into a net signed point
// delta per program. Pure: no side effects, no errors. Items with an
// unresolvable program name are skipped on that side; this leniency is
// deliberate, imported data carries names we do not track.
func ComputeDeltas(items []*PurchaseItem) map[Program]int64 {
	deltas := make(map[Program]int64, len(AllPrograms))
	for _, p := range AllPrograms {
		deltas[p] = 0
	}
	for _, item := range items {
		if item == nil || item.IsCanceled() {
			continue
		}
		if item.ProgramTo != nil {
			if p, ok := ParseProgram(*item.ProgramTo); ok {
				deltas[p] += Clamp(item.PointsFinal)
			}
		}
		if item.ProgramFrom != nil {
			if p, ok := ParseProgram(*item.ProgramFrom); ok {
				deltas[p] -= Clamp(item.PointsDebitedFromOrigin)
			}
		}
	}
	return deltas
}

// AppliedOverrides carries per-program balance overrides supplied by the
// caller of a release. A nil field means no override for that program.
type AppliedOverrides struct {
	Latam      *int64 `json:"latam"`
	Smiles     *int64 `json:"smiles"`
	Livelo     *int64 `json:"livelo"`
	Esfera     *int64 `json:"esfera"`
	Azul       *int64 `json:"azul"`
	Iberia     *int64 `json:"iberia"`
	AA         *int64 `json:"aa"`
	Tap        *int64 `json:"tap"`
	FlyingBlue *int64 `json:"flyingBlue"`
}

// Get returns the override for a program, if one was supplied.
func (o *AppliedOverrides) Get(program Program) (int64, bool) {
	if o == nil {
		return 0, false
	}
	var v *int64
	switch program {
	case ProgramLatam:
		v = o.Latam
	case ProgramSmiles:
		v = o.Smiles
	case ProgramLivelo:
		v = o.Livelo
	case ProgramEsfera:
		v = o.Esfera
	case ProgramAzul:
		v = o.Azul
	case ProgramIberia:
		v = o.Iberia
	case ProgramAA:
		v = o.AA
	case ProgramTap:
		v = o.Tap
	case ProgramFlyingBlue:
		v = o.FlyingBlue
	}
	if v == nil {
		return 0, false
	}
	return *v, true
}

// PurchaseItemInput is one line of a purchase creation request. Point
// amounts arrive as untyped numbers and are clamped at this boundary.
type PurchaseItemInput struct {
	ProgramFrom             *string
	ProgramTo               *string
	PointsFinal             float64
	PointsDebitedFromOrigin float64
}

// PurchaseCreateRequest is the input for opening a purchase.
type PurchaseCreateRequest struct {
	CedenteID       int64
	CedentePayCents int64
	Items           []PurchaseItemInput
}

func (p PurchaseCreateRequest) Validate() error {
	if p.CedenteID == 0 {
		return errors.New("cedente_id is required")
	}
	if p.CedentePayCents < 0 {
		return errors.New("cedente_pay_cents must not be negative")
	}
	return nil
}

// PurchaseFilter controls List queries.
type PurchaseFilter struct {
	CedenteID *int64
	Statuses  []PurchaseStatus
	Limit     int
	Offset    int
	Desc      bool
}
