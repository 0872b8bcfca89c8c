package game

import (
	"math"
	"time"
)

// HarvestMinimum is the stored energy below which harvesting is refused.
const HarvestMinimum = 10

// Reactor generates fusion energy passively. Stored energy accrues against
// wall-clock time so the reactor catches up correctly after the game has been
// closed and reopened.
type Reactor struct {
	Level          int
	EnergyStored   float64
	MaxStorage     int
	ProductionRate int
	UpgradeCost    int64
	LastUpdate     time.Time
}

// NewReactor returns a level-1 reactor.
func NewReactor(now time.Time) *Reactor {
	r := &Reactor{Level: 1, UpgradeCost: 50, LastUpdate: now}
	r.recompute()
	return r
}

// Tick accrues energy for the wall-clock time elapsed since the last update
// and clamps to storage capacity. Safe at arbitrary intervals; a repeated
// call with the same now is a no-op.
func (r *Reactor) Tick(now time.Time) {
	elapsed := now.Sub(r.LastUpdate).Seconds()
	if elapsed > 0 {
		r.EnergyStored = math.Min(
			float64(r.MaxStorage),
			r.EnergyStored+elapsed*float64(r.ProductionRate),
		)
	}
	r.LastUpdate = now
}

// Harvest moves floor(stored) energy into the progression's fusion energy and
// empties the reactor. Returns the harvested amount and false when below the
// minimum, leaving both states untouched.
func (r *Reactor) Harvest(p *Progression) (int64, bool) {
	if r.EnergyStored < HarvestMinimum {
		return 0, false
	}
	harvested := int64(math.Floor(r.EnergyStored))
	p.AddEnergy(harvested)
	r.EnergyStored = 0
	return harvested, true
}

// Upgrade raises the reactor level, paying the upgrade cost out of the
// progression's fusion energy. Returns false without changes when the player
// cannot afford it.
func (r *Reactor) Upgrade(p *Progression) bool {
	if p.FusionEnergy < float64(r.UpgradeCost) {
		return false
	}
	p.FusionEnergy -= float64(r.UpgradeCost)
	r.Level++
	r.recompute()
	r.UpgradeCost = int64(math.Floor(float64(r.UpgradeCost) * 1.5))
	return true
}

// recompute derives rate and storage from the level.
func (r *Reactor) recompute() {
	r.ProductionRate = int(math.Floor(float64(r.Level) * 1.5))
	r.MaxStorage = r.Level * 50
}
