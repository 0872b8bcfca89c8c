package game

import (
	"fmt"

	"github.com/element-fusion/element-fusion-go/internal/catalog"
)

// Reason classifies the outcome of a fusion decision.
type Reason string

const (
	// ReasonOK means the fusion can proceed.
	ReasonOK Reason = "ok"
	// ReasonNoNextElement means the catalog has no element one above the
	// current one. Checked before energy: the highest element is always
	// rejected this way regardless of how much energy the player holds.
	ReasonNoNextElement Reason = "no_next_element"
	// ReasonInsufficientEnergy means the player cannot pay the fusion cost.
	ReasonInsufficientEnergy Reason = "insufficient_energy"
)

// Outcome is the decision of ComputeFusionResult. On ReasonOK, Result is the
// produced element and Cost the energy to deduct. On ReasonInsufficientEnergy,
// Cost carries the required amount for display.
type Outcome struct {
	Reason Reason
	Result *catalog.Element
	Cost   int64
}

// Accepted reports whether the fusion may proceed.
func (o Outcome) Accepted() bool {
	return o.Reason == ReasonOK
}

// Message returns a player-facing description of a rejected outcome.
func (o Outcome) Message(symbol string) string {
	switch o.Reason {
	case ReasonNoNextElement:
		return fmt.Sprintf("%s cannot be fused further!", symbol)
	case ReasonInsufficientEnergy:
		return fmt.Sprintf("Not enough fusion energy! Need %d", o.Cost)
	default:
		return ""
	}
}

// CanFuse reports whether two symbols form a valid fusion pair. Only
// identical elements fuse; both must exist in the catalog.
func CanFuse(cat *catalog.Catalog, a, b string) bool {
	return a == b && cat.BySymbol(a) != nil
}

// ComputeFusionResult decides the outcome of fusing two copies of symbol with
// the energy available. Pure: no state is touched, the caller applies the
// result.
func ComputeFusionResult(cat *catalog.Catalog, symbol string, energy float64) Outcome {
	current := cat.BySymbol(symbol)
	if current == nil {
		return Outcome{Reason: ReasonNoNextElement}
	}

	next := cat.ByNumber(current.Number + 1)
	if next == nil {
		return Outcome{Reason: ReasonNoNextElement}
	}

	cost := current.FusionCost()
	if energy < float64(cost) {
		return Outcome{Reason: ReasonInsufficientEnergy, Cost: cost}
	}

	return Outcome{Reason: ReasonOK, Result: next, Cost: cost}
}
