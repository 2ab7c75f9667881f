package model

import (
	"math"
	"strings"
)

// Program is one of the loyalty point systems tracked per cedente.
type Program string

const (
	ProgramLatam      Program = "latam"
	ProgramSmiles     Program = "smiles"
	ProgramLivelo     Program = "livelo"
	ProgramEsfera     Program = "esfera"
	ProgramAzul       Program = "azul"
	ProgramIberia     Program = "iberia"
	ProgramAA         Program = "aa"
	ProgramTap        Program = "tap"
	ProgramFlyingBlue Program = "flyingBlue"
)

// AllPrograms is the canonical iteration order for balance maps.
var AllPrograms = []Program{
	ProgramLatam,
	ProgramSmiles,
	ProgramLivelo,
	ProgramEsfera,
	ProgramAzul,
	ProgramIberia,
	ProgramAA,
	ProgramTap,
	ProgramFlyingBlue,
}

// LegacyPrograms are the four original programs that still carry
// predicted-balance fields on a purchase. The other five never had them.
var LegacyPrograms = []Program{
	ProgramLatam,
	ProgramSmiles,
	ProgramLivelo,
	ProgramEsfera,
}

// ParseProgram resolves a free-form program name case-insensitively.
// "FLYING_BLUE" is accepted as the wire form of flyingBlue. Unknown
// names return ok=false; callers that feed line items are expected to
// ignore them rather than fail.
func ParseProgram(s string) (Program, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "latam":
		return ProgramLatam, true
	case "smiles":
		return ProgramSmiles, true
	case "livelo":
		return ProgramLivelo, true
	case "esfera":
		return ProgramEsfera, true
	case "azul":
		return ProgramAzul, true
	case "iberia":
		return ProgramIberia, true
	case "aa":
		return ProgramAA, true
	case "tap":
		return ProgramTap, true
	case "flyingblue", "flying_blue":
		return ProgramFlyingBlue, true
	}
	return "", false
}

// Clamp normalizes an untyped external number into the non-negative
// integer domain used internally: non-finite values become 0, the rest
// is truncated toward zero and floored at 0.
func Clamp(v float64) int64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	n := int64(math.Trunc(v))
	if n < 0 {
		return 0
	}
	return n
}

// ClampInt floors an integer at zero.
func ClampInt(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}
