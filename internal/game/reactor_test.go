package game

import (
	"testing"
	"time"
)

func TestNewReactorDerivedStats(t *testing.T) {
	r := NewReactor(time.Now())
	if r.Level != 1 {
		t.Errorf("Level = %d, want 1", r.Level)
	}
	if r.ProductionRate != 1 {
		t.Errorf("ProductionRate = %d, want floor(1*1.5) = 1", r.ProductionRate)
	}
	if r.MaxStorage != 50 {
		t.Errorf("MaxStorage = %d, want 50", r.MaxStorage)
	}
	if r.UpgradeCost != 50 {
		t.Errorf("UpgradeCost = %d, want 50", r.UpgradeCost)
	}
}

func TestTickAccrualAndClamp(t *testing.T) {
	start := time.Unix(1_700_000_000, 0)
	r := NewReactor(start)

	r.Tick(start.Add(10 * time.Second))
	if r.EnergyStored != 10 {
		t.Errorf("stored after 10s at rate 1 = %v, want 10", r.EnergyStored)
	}

	// A long absence clamps to capacity instead of overflowing.
	r.Tick(start.Add(24 * time.Hour))
	if r.EnergyStored != float64(r.MaxStorage) {
		t.Errorf("stored after long absence = %v, want %d", r.EnergyStored, r.MaxStorage)
	}
}

func TestTickIdempotentAtSameInstant(t *testing.T) {
	start := time.Unix(1_700_000_000, 0)
	r := NewReactor(start)
	now := start.Add(5 * time.Second)

	r.Tick(now)
	first := r.EnergyStored
	r.Tick(now)
	if r.EnergyStored != first {
		t.Errorf("repeated Tick at same instant changed stored: %v -> %v", first, r.EnergyStored)
	}
}

func TestTickIgnoresClockGoingBackwards(t *testing.T) {
	start := time.Unix(1_700_000_000, 0)
	r := NewReactor(start)
	r.Tick(start.Add(10 * time.Second))

	r.Tick(start.Add(5 * time.Second))
	if r.EnergyStored != 10 {
		t.Errorf("backwards tick drained stored to %v", r.EnergyStored)
	}
}

func TestHarvest(t *testing.T) {
	p := NewProgression()
	r := NewReactor(time.Now())

	r.EnergyStored = 9.9
	if got, ok := r.Harvest(p); ok || got != 0 {
		t.Errorf("Harvest below minimum = (%d, %v), want (0, false)", got, ok)
	}
	if p.FusionEnergy != StartingEnergy {
		t.Errorf("energy changed on refused harvest: %v", p.FusionEnergy)
	}

	r.EnergyStored = 10.7
	got, ok := r.Harvest(p)
	if !ok || got != 10 {
		t.Fatalf("Harvest = (%d, %v), want (10, true)", got, ok)
	}
	if p.FusionEnergy != StartingEnergy+10 {
		t.Errorf("energy after harvest = %v, want %d", p.FusionEnergy, StartingEnergy+10)
	}
	if r.EnergyStored != 0 {
		t.Errorf("stored after harvest = %v, want 0", r.EnergyStored)
	}
}

func TestUpgrade(t *testing.T) {
	p := NewProgression()
	r := NewReactor(time.Now())

	// StartingEnergy 100 covers the first upgrade at 50.
	if !r.Upgrade(p) {
		t.Fatal("first upgrade refused")
	}
	if p.FusionEnergy != StartingEnergy-50 {
		t.Errorf("energy after upgrade = %v, want %d", p.FusionEnergy, StartingEnergy-50)
	}
	if r.Level != 2 {
		t.Errorf("Level = %d, want 2", r.Level)
	}
	if r.ProductionRate != 3 {
		t.Errorf("ProductionRate = %d, want floor(2*1.5) = 3", r.ProductionRate)
	}
	if r.MaxStorage != 100 {
		t.Errorf("MaxStorage = %d, want 100", r.MaxStorage)
	}
	if r.UpgradeCost != 75 {
		t.Errorf("UpgradeCost = %d, want floor(50*1.5) = 75", r.UpgradeCost)
	}

	// 50 remaining cannot cover 75; nothing changes.
	if r.Upgrade(p) {
		t.Fatal("upgrade accepted without funds")
	}
	if r.Level != 2 || p.FusionEnergy != StartingEnergy-50 {
		t.Errorf("state changed on refused upgrade: level=%d energy=%v", r.Level, p.FusionEnergy)
	}
}

func TestUpgradeCostSequence(t *testing.T) {
	p := NewProgression()
	p.FusionEnergy = 1e9
	r := NewReactor(time.Now())

	want := []int64{75, 112, 168, 252}
	for i, w := range want {
		if !r.Upgrade(p) {
			t.Fatalf("upgrade %d refused", i+1)
		}
		if r.UpgradeCost != w {
			t.Fatalf("cost after upgrade %d = %d, want %d", i+1, r.UpgradeCost, w)
		}
	}
}
