// Package save serializes game state into versioned snapshots and decides
// between conflicting snapshots during cloud sync. A snapshot is a plain JSON
// document: the same bytes go to the local store and to the cloud endpoint.
package save

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/element-fusion/element-fusion-go/internal/game"
)

// Version identifies the snapshot format. Snapshots without a version are
// rejected as malformed.
const Version = "1.0"

// GameState is the serialized progression and reactor state. Timestamps are
// unix milliseconds to stay interchangeable with saves written by earlier
// clients.
type GameState struct {
	ElementsFound         int      `json:"elementsFound"`
	MergeCount            int      `json:"mergeCount"`
	DiscoveredElements    []string `json:"discoveredElements"`
	FusionEnergy          float64  `json:"fusionEnergy"`
	ReactorLevel          int      `json:"reactorLevel"`
	ReactorEnergyStored   float64  `json:"reactorEnergyStored"`
	ReactorMaxStorage     int      `json:"reactorMaxStorage"`
	ReactorProductionRate int      `json:"reactorProductionRate"`
	ReactorUpgradeCost    int64    `json:"reactorUpgradeCost"`
	LastUpdateTime        int64    `json:"lastUpdateTime"`
}

// Snapshot is one complete save document.
type Snapshot struct {
	Version       string               `json:"version"`
	Timestamp     int64                `json:"timestamp"`
	PlayerName    string               `json:"playerName"`
	DeviceID      string               `json:"deviceId,omitempty"`
	GameState     GameState            `json:"gameState"`
	MergeElements []game.PlacedElement `json:"mergeElements"`
}

// Capture builds a snapshot of the current state. Discovered elements are
// sorted so identical states produce identical bytes.
func Capture(p *game.Progression, r *game.Reactor, playerName, deviceID string, now time.Time) Snapshot {
	discovered := make([]string, 0, len(p.Discovered))
	for sym := range p.Discovered {
		discovered = append(discovered, sym)
	}
	sort.Strings(discovered)

	workspace := make([]game.PlacedElement, len(p.Workspace))
	copy(workspace, p.Workspace)

	return Snapshot{
		Version:    Version,
		Timestamp:  now.UnixMilli(),
		PlayerName: playerName,
		DeviceID:   deviceID,
		GameState: GameState{
			ElementsFound:         p.ElementsFound,
			MergeCount:            p.MergeCount,
			DiscoveredElements:    discovered,
			FusionEnergy:          p.FusionEnergy,
			ReactorLevel:          r.Level,
			ReactorEnergyStored:   r.EnergyStored,
			ReactorMaxStorage:     r.MaxStorage,
			ReactorProductionRate: r.ProductionRate,
			ReactorUpgradeCost:    r.UpgradeCost,
			LastUpdateTime:        r.LastUpdate.UnixMilli(),
		},
		MergeElements: workspace,
	}
}

// Apply restores a snapshot into the given progression and reactor, replacing
// their state. Missing or zero fields fall back to new-game defaults
// field-by-field, so a truncated save still loads instead of wiping the run.
// Restoring always leaves the fusion latch released.
func (s *Snapshot) Apply(p *game.Progression, r *game.Reactor, now time.Time) {
	gs := s.GameState

	discovered := gs.DiscoveredElements
	if len(discovered) == 0 {
		discovered = game.StartingElements
	}
	p.Discovered = make(map[string]bool, len(discovered))
	for _, sym := range discovered {
		p.Discovered[sym] = true
	}
	p.ElementsFound = len(p.Discovered)
	p.MergeCount = gs.MergeCount
	p.FusionEnergy = gs.FusionEnergy
	if p.FusionEnergy == 0 {
		p.FusionEnergy = game.StartingEnergy
	}

	p.ClearWorkspace()
	p.Workspace = make([]game.PlacedElement, len(s.MergeElements))
	copy(p.Workspace, s.MergeElements)

	r.Level = gs.ReactorLevel
	if r.Level == 0 {
		r.Level = 1
	}
	r.EnergyStored = gs.ReactorEnergyStored
	r.MaxStorage = gs.ReactorMaxStorage
	if r.MaxStorage == 0 {
		r.MaxStorage = r.Level * 50
	}
	r.ProductionRate = gs.ReactorProductionRate
	if r.ProductionRate == 0 {
		r.ProductionRate = 1
	}
	r.UpgradeCost = gs.ReactorUpgradeCost
	if r.UpgradeCost == 0 {
		r.UpgradeCost = 50
	}
	if gs.LastUpdateTime > 0 {
		r.LastUpdate = time.UnixMilli(gs.LastUpdateTime)
	} else {
		r.LastUpdate = now
	}
}

// Encode marshals the snapshot to JSON.
func (s *Snapshot) Encode() ([]byte, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("save: encode snapshot: %w", err)
	}
	return raw, nil
}

// Decode parses and validates a snapshot document. Documents without a
// version or game state are rejected.
func Decode(raw []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("save: decode snapshot: %w", err)
	}
	if s.Version == "" {
		return nil, fmt.Errorf("save: snapshot has no version")
	}
	return &s, nil
}
