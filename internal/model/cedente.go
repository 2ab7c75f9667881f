package model

import (
	"errors"
	"time"
)

// Cedente is a points-account holder managed by the brokerage. The nine
// counters are kept non-negative at all times; every writer clamps.
type Cedente struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Document   string    `json:"document"`
	Phone      string    `json:"phone"`
	Latam      int64     `json:"latam"`
	Smiles     int64     `json:"smiles"`
	Livelo     int64     `json:"livelo"`
	Esfera     int64     `json:"esfera"`
	Azul       int64     `json:"azul"`
	Iberia     int64     `json:"iberia"`
	AA         int64     `json:"aa"`
	Tap        int64     `json:"tap"`
	FlyingBlue int64     `json:"flyingBlue"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (Cedente) TableName() string { return "cedentes" }

// Balances returns the nine counters as a map, clamped.
func (c *Cedente) Balances() map[Program]int64 {
	return map[Program]int64{
		ProgramLatam:      ClampInt(c.Latam),
		ProgramSmiles:     ClampInt(c.Smiles),
		ProgramLivelo:     ClampInt(c.Livelo),
		ProgramEsfera:     ClampInt(c.Esfera),
		ProgramAzul:       ClampInt(c.Azul),
		ProgramIberia:     ClampInt(c.Iberia),
		ProgramAA:         ClampInt(c.AA),
		ProgramTap:        ClampInt(c.Tap),
		ProgramFlyingBlue: ClampInt(c.FlyingBlue),
	}
}

// SetBalances applies a full nine-program balance map, clamping each
// value. Missing programs are treated as zero.
func (c *Cedente) SetBalances(b map[Program]int64) {
	c.Latam = ClampInt(b[ProgramLatam])
	c.Smiles = ClampInt(b[ProgramSmiles])
	c.Livelo = ClampInt(b[ProgramLivelo])
	c.Esfera = ClampInt(b[ProgramEsfera])
	c.Azul = ClampInt(b[ProgramAzul])
	c.Iberia = ClampInt(b[ProgramIberia])
	c.AA = ClampInt(b[ProgramAA])
	c.Tap = ClampInt(b[ProgramTap])
	c.FlyingBlue = ClampInt(b[ProgramFlyingBlue])
}

// CedenteCreateRequest is the input for registering a cedente.
type CedenteCreateRequest struct {
	Name     string
	Document string
	Phone    string
}

func (p CedenteCreateRequest) Validate() error {
	if p.Name == "" {
		return errors.New("name is required")
	}
	if p.Document == "" {
		return errors.New("document is required")
	}
	return nil
}

// CedenteFilter controls List queries.
type CedenteFilter struct {
	Name     *string // substring match
	Document *string // equals
	Limit    int     // default 50
	Offset   int
}
