package save

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/element-fusion/element-fusion-go/internal/catalog"
	"github.com/element-fusion/element-fusion-go/internal/game"
)

func playedState(t *testing.T) (*game.Progression, *game.Reactor) {
	t.Helper()
	cat := catalog.Default()
	p := game.NewProgression()
	r := game.NewReactor(time.Unix(1_700_000_000, 0))

	p.FusionEnergy = 5000
	if _, err := p.Place(cat, "Ne", 10, 10); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Place(cat, "Ne", 30, 50); err != nil {
		t.Fatal(err)
	}
	a, b := p.Workspace[0].ID, p.Workspace[1].ID
	if _, err := p.ApplyFusion(cat, a, b); err != nil {
		t.Fatal(err)
	}
	r.Upgrade(p)
	r.EnergyStored = 33.3
	return p, r
}

func TestCaptureApplyRoundTrip(t *testing.T) {
	p, r := playedState(t)
	now := time.Unix(1_700_001_000, 0)

	snap := Capture(p, r, "Marie", "device_abc", now)
	raw, err := snap.Encode()
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := Decode(raw)
	if err != nil {
		t.Fatal(err)
	}

	p2 := game.NewProgression()
	r2 := game.NewReactor(now)
	decoded.Apply(p2, r2, now)

	if p2.ElementsFound != p.ElementsFound {
		t.Errorf("ElementsFound = %d, want %d", p2.ElementsFound, p.ElementsFound)
	}
	if p2.MergeCount != p.MergeCount {
		t.Errorf("MergeCount = %d, want %d", p2.MergeCount, p.MergeCount)
	}
	if p2.FusionEnergy != p.FusionEnergy {
		t.Errorf("FusionEnergy = %v, want %v", p2.FusionEnergy, p.FusionEnergy)
	}
	if !p2.Discovered["Na"] {
		t.Error("Na lost in round trip")
	}
	if len(p2.Workspace) != len(p.Workspace) {
		t.Fatalf("workspace = %d records, want %d", len(p2.Workspace), len(p.Workspace))
	}
	if p2.Workspace[0] != p.Workspace[0] {
		t.Errorf("workspace record = %+v, want %+v", p2.Workspace[0], p.Workspace[0])
	}
	if r2.Level != r.Level || r2.UpgradeCost != r.UpgradeCost {
		t.Errorf("reactor = level %d cost %d, want level %d cost %d",
			r2.Level, r2.UpgradeCost, r.Level, r.UpgradeCost)
	}
	if r2.EnergyStored != r.EnergyStored {
		t.Errorf("EnergyStored = %v, want %v", r2.EnergyStored, r.EnergyStored)
	}
	if !r2.LastUpdate.Equal(r.LastUpdate) {
		t.Errorf("LastUpdate = %v, want %v", r2.LastUpdate, r.LastUpdate)
	}
	if decoded.PlayerName != "Marie" || decoded.DeviceID != "device_abc" {
		t.Errorf("identity fields = %q/%q", decoded.PlayerName, decoded.DeviceID)
	}
	if decoded.Timestamp != now.UnixMilli() {
		t.Errorf("timestamp = %d, want %d", decoded.Timestamp, now.UnixMilli())
	}
}

func TestCaptureDeterministicDiscoveryOrder(t *testing.T) {
	p, r := playedState(t)
	now := time.Now()
	a := Capture(p, r, "x", "", now)
	b := Capture(p, r, "x", "", now)
	rawA, _ := a.Encode()
	rawB, _ := b.Encode()
	if string(rawA) != string(rawB) {
		t.Error("identical states encoded differently")
	}
}

func TestApplyDefaultsForMissingFields(t *testing.T) {
	// A bare-minimum document from an early client: version only.
	decoded, err := Decode([]byte(`{"version":"1.0","timestamp":1}`))
	if err != nil {
		t.Fatal(err)
	}
	now := time.Unix(1_700_000_000, 0)
	p := game.NewProgression()
	r := game.NewReactor(now)
	decoded.Apply(p, r, now)

	if p.ElementsFound != len(game.StartingElements) {
		t.Errorf("ElementsFound = %d, want %d", p.ElementsFound, len(game.StartingElements))
	}
	if p.FusionEnergy != game.StartingEnergy {
		t.Errorf("FusionEnergy = %v, want %d", p.FusionEnergy, game.StartingEnergy)
	}
	if r.Level != 1 || r.MaxStorage != 50 || r.ProductionRate != 1 || r.UpgradeCost != 50 {
		t.Errorf("reactor defaults = %+v", r)
	}
	if !r.LastUpdate.Equal(now) {
		t.Errorf("LastUpdate = %v, want now", r.LastUpdate)
	}
}

func TestApplyReleasesFusionLatch(t *testing.T) {
	cat := catalog.Default()
	p := game.NewProgression()
	r := game.NewReactor(time.Now())
	snap := Capture(p, r, "x", "", time.Now())

	// A crash mid-fusion can leave the latch held; loading must clear it.
	p.ClearWorkspace()
	snap.Apply(p, r, time.Now())
	if p.Merging() {
		t.Error("latch held after Apply")
	}
	if _, err := p.Place(cat, "H", 0, 0); err != nil {
		t.Errorf("Place after Apply: %v", err)
	}
}

func TestDecodeRejectsMalformed(t *testing.T) {
	if _, err := Decode([]byte("{not json")); err == nil {
		t.Error("accepted invalid JSON")
	}
	if _, err := Decode([]byte(`{"timestamp":5,"gameState":{}}`)); err == nil {
		t.Error("accepted snapshot without a version")
	}
}

func TestSnapshotWireShape(t *testing.T) {
	p, r := playedState(t)
	snap := Capture(p, r, "Marie", "device_abc", time.Unix(1_700_001_000, 0))
	raw, err := snap.Encode()
	if err != nil {
		t.Fatal(err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"version", "timestamp", "playerName", "gameState", "mergeElements"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("document missing %q", key)
		}
	}
	gs, ok := doc["gameState"].(map[string]any)
	if !ok {
		t.Fatal("gameState is not an object")
	}
	for _, key := range []string{"elementsFound", "mergeCount", "discoveredElements", "fusionEnergy",
		"reactorLevel", "reactorEnergyStored", "reactorMaxStorage", "reactorProductionRate",
		"reactorUpgradeCost", "lastUpdateTime"} {
		if _, ok := gs[key]; !ok {
			t.Errorf("gameState missing %q", key)
		}
	}
}
