// Package game implements the fusion progression core: the player's mutable
// state, the pure fusion rules, the reactor economy, and the score model.
// All state mutation flows through explicit transition methods so the
// presentation layer can re-render after each one.
package game

import (
	"errors"
	"fmt"

	"github.com/element-fusion/element-fusion-go/internal/catalog"
	"github.com/google/uuid"
)

// StartingElements is the discovered set every new game begins with. The
// discovered set is monotonic and always a superset of this.
var StartingElements = []string{"H", "He", "Li", "Be", "B", "C", "N", "O", "F", "Ne"}

// StartingEnergy is the fusion energy a new game begins with.
const StartingEnergy = 100

var (
	// ErrFusionInProgress is returned when a transition is attempted while a
	// fusion is still resolving. Concurrent fusions are rejected outright,
	// never queued.
	ErrFusionInProgress = errors.New("game: fusion already in progress")
	// ErrNotPlaced is returned when a workspace record id is unknown.
	ErrNotPlaced = errors.New("game: element not on workspace")
	// ErrNotDiscovered is returned when placing an element the player has not
	// discovered yet.
	ErrNotDiscovered = errors.New("game: element not discovered")
	// ErrMismatchedPair is returned when the two workspace records do not
	// form a valid fusion pair.
	ErrMismatchedPair = errors.New("game: elements cannot be fused together")
)

// PlacedElement is one item on the fusion workspace.
type PlacedElement struct {
	ID     string  `json:"id"`
	Symbol string  `json:"symbol"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// Progression is the mutable player state. It is owned by a single session;
// nothing mutates it except its own transition methods.
type Progression struct {
	Discovered    map[string]bool
	ElementsFound int
	MergeCount    int
	FusionEnergy  float64
	Workspace     []PlacedElement

	merging bool
}

// NewProgression returns a fresh game with the starting element set and
// starting energy.
func NewProgression() *Progression {
	p := &Progression{
		Discovered:   make(map[string]bool, len(StartingElements)),
		FusionEnergy: StartingEnergy,
	}
	for _, sym := range StartingElements {
		p.Discovered[sym] = true
	}
	p.ElementsFound = len(p.Discovered)
	return p
}

// Merging reports whether a fusion is currently resolving.
func (p *Progression) Merging() bool {
	return p.merging
}

// Place puts a discovered element onto the workspace at the given position
// and returns the new record.
func (p *Progression) Place(cat *catalog.Catalog, symbol string, x, y float64) (PlacedElement, error) {
	if p.merging {
		return PlacedElement{}, ErrFusionInProgress
	}
	if cat.BySymbol(symbol) == nil {
		return PlacedElement{}, fmt.Errorf("game: unknown element %q", symbol)
	}
	if !p.Discovered[symbol] {
		return PlacedElement{}, ErrNotDiscovered
	}

	rec := PlacedElement{
		ID:     "merge-" + uuid.NewString(),
		Symbol: symbol,
		X:      x,
		Y:      y,
	}
	p.Workspace = append(p.Workspace, rec)
	return rec, nil
}

// MoveTo updates a workspace record's position.
func (p *Progression) MoveTo(id string, x, y float64) error {
	for i := range p.Workspace {
		if p.Workspace[i].ID == id {
			p.Workspace[i].X = x
			p.Workspace[i].Y = y
			return nil
		}
	}
	return ErrNotPlaced
}

// FusionResult describes a completed ApplyFusion call. When the outcome is a
// rejection the remaining fields are zero and the state is untouched.
type FusionResult struct {
	Outcome      Outcome
	NewDiscovery bool
	Placed       PlacedElement
	Consumed     [2]string
}

// ApplyFusion fuses the two workspace records identified by idA and idB.
// The transition is atomic: either every effect applies (energy deducted,
// records replaced by the result at their midpoint, merge count bumped,
// discovery recorded) or none does. The merging latch brackets the whole
// transition and is cleared on every exit path.
func (p *Progression) ApplyFusion(cat *catalog.Catalog, idA, idB string) (FusionResult, error) {
	if p.merging {
		return FusionResult{}, ErrFusionInProgress
	}
	p.merging = true
	defer func() { p.merging = false }()

	if idA == idB {
		return FusionResult{}, ErrMismatchedPair
	}
	a, okA := p.lookup(idA)
	b, okB := p.lookup(idB)
	if !okA || !okB {
		return FusionResult{}, ErrNotPlaced
	}
	if !CanFuse(cat, a.Symbol, b.Symbol) {
		return FusionResult{}, ErrMismatchedPair
	}

	outcome := ComputeFusionResult(cat, a.Symbol, p.FusionEnergy)
	if !outcome.Accepted() {
		return FusionResult{Outcome: outcome}, nil
	}

	p.FusionEnergy -= float64(outcome.Cost)
	p.removePair(idA, idB)

	rec := PlacedElement{
		ID:     "merge-" + uuid.NewString(),
		Symbol: outcome.Result.Symbol,
		X:      (a.X + b.X) / 2,
		Y:      (a.Y + b.Y) / 2,
	}
	p.Workspace = append(p.Workspace, rec)
	p.MergeCount++

	newDiscovery := !p.Discovered[outcome.Result.Symbol]
	if newDiscovery {
		p.Discovered[outcome.Result.Symbol] = true
		p.ElementsFound = len(p.Discovered)
	}

	return FusionResult{
		Outcome:      outcome,
		NewDiscovery: newDiscovery,
		Placed:       rec,
		Consumed:     [2]string{a.Symbol, b.Symbol},
	}, nil
}

// AddEnergy grants fusion energy (reactor harvest is the only caller).
func (p *Progression) AddEnergy(amount int64) {
	p.FusionEnergy += float64(amount)
}

// ClearWorkspace removes every placed element and releases the merge latch.
func (p *Progression) ClearWorkspace() {
	p.Workspace = nil
	p.merging = false
}

// Reset restores the starting state in place.
func (p *Progression) Reset() {
	fresh := NewProgression()
	*p = *fresh
}

// IsComplete reports whether every catalog element has been discovered.
// Advisory only; nothing mechanical changes once the table is full.
func (p *Progression) IsComplete(cat *catalog.Catalog) bool {
	return p.ElementsFound >= cat.Size()
}

func (p *Progression) lookup(id string) (PlacedElement, bool) {
	for _, rec := range p.Workspace {
		if rec.ID == id {
			return rec, true
		}
	}
	return PlacedElement{}, false
}

func (p *Progression) removePair(idA, idB string) {
	kept := p.Workspace[:0]
	for _, rec := range p.Workspace {
		if rec.ID != idA && rec.ID != idB {
			kept = append(kept, rec)
		}
	}
	p.Workspace = kept
}
