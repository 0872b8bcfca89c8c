// Package session ties the game core to its persistence and network
// collaborators. A Session owns the single mutable Progression and Reactor;
// every mutation goes through its methods under one lock, so transitions
// never interleave. Network calls are made off the lock against a snapshot
// copy — a slow sync can never block play.
package session

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/element-fusion/element-fusion-go/internal/catalog"
	"github.com/element-fusion/element-fusion-go/internal/cloudsave"
	"github.com/element-fusion/element-fusion-go/internal/game"
	"github.com/element-fusion/element-fusion-go/internal/leaderboard"
	"github.com/element-fusion/element-fusion-go/internal/localstore"
	"github.com/element-fusion/element-fusion-go/internal/save"
	"github.com/element-fusion/element-fusion-go/internal/settings"
)

// Status is a persistence state surfaced to the presentation layer.
type Status string

const (
	StatusSaved   Status = "saved"
	StatusLoaded  Status = "loaded"
	StatusSyncing Status = "syncing"
	StatusSynced  Status = "synced"
	StatusError   Status = "error"
)

// StatusEvent is one save-indicator update.
type StatusEvent struct {
	Status  Status
	Message string
	At      time.Time
}

// Config wires a Session's collaborators.
type Config struct {
	// Catalog is the element reference data. Required.
	Catalog *catalog.Catalog

	// Store is the local persistence layer. Required.
	Store *localstore.Store

	// Cloud pushes and pulls snapshots. Optional; when nil and cloud sync is
	// enabled, a client is built from the settings endpoint.
	Cloud *cloudsave.Client

	// Boards submits and fetches leaderboards. Optional.
	Boards *leaderboard.Client

	// Settings are normalized during NewSession.
	Settings settings.Settings

	// OnStatus receives save-indicator updates. Optional. Called without the
	// session lock held.
	OnStatus func(StatusEvent)

	// Clock overrides wall-clock time in tests.
	Clock func() time.Time

	// TickInterval overrides the reactor accrual interval. Defaults to one
	// second.
	TickInterval time.Duration
}

// Session is one player's running game.
type Session struct {
	mu  sync.Mutex
	cfg Config
	log *log.Logger

	progression *game.Progression
	reactor     *game.Reactor

	playerName string
	deviceID   string
	country    string

	winSurfaced bool

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// FuseOutcome is a fusion result plus session-level effects.
type FuseOutcome struct {
	game.FusionResult
	// Won is true exactly once: on the fusion that completes the catalog.
	Won bool
}

// NewSession builds a session, restoring the local save if one exists.
func NewSession(cfg Config) (*Session, error) {
	if cfg.Catalog == nil {
		return nil, fmt.Errorf("session: catalog is required")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("session: store is required")
	}
	if err := cfg.Settings.Normalize(); err != nil {
		return nil, err
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}
	if cfg.Cloud == nil && cfg.Settings.CloudSyncEnabled {
		cfg.Cloud = cloudsave.NewClient(cloudsave.Config{BaseURL: cfg.Settings.CloudEndpoint})
	}

	deviceID, err := cfg.Store.DeviceID()
	if err != nil {
		return nil, err
	}
	playerName, err := cfg.Store.PlayerName()
	if err != nil {
		return nil, err
	}
	country, err := cfg.Store.Country()
	if err != nil {
		return nil, err
	}

	now := cfg.Clock()
	s := &Session{
		cfg:         cfg,
		log:         log.New(os.Stdout, "[SESSION] ", log.LstdFlags),
		progression: game.NewProgression(),
		reactor:     game.NewReactor(now),
		playerName:  playerName,
		deviceID:    deviceID,
		country:     country,
	}

	raw, _, err := cfg.Store.GetSnapshot(localstore.DefaultSlot)
	if err != nil {
		return nil, err
	}
	if raw != nil {
		snap, err := save.Decode(raw)
		if err != nil {
			// A corrupt local save starts a fresh game instead of blocking.
			s.log.Printf("local save unreadable, starting fresh: %v", err)
		} else {
			snap.Apply(s.progression, s.reactor, now)
			if snap.PlayerName != "" {
				s.playerName = snap.PlayerName
			}
			s.emit(StatusLoaded, "game loaded")
		}
	}
	return s, nil
}

func (s *Session) emit(status Status, message string) {
	if s.cfg.OnStatus == nil {
		return
	}
	s.cfg.OnStatus(StatusEvent{Status: status, Message: message, At: s.cfg.Clock()})
}

// Start launches the background loops: reactor accrual, autosave, and cloud
// sync when enabled. Stop tears them down.
func (s *Session) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go s.tickLoop(ctx)

	s.wg.Add(1)
	go s.autosaveLoop(ctx)

	if s.cfg.Cloud != nil && s.cfg.Settings.CloudSyncEnabled {
		s.wg.Add(1)
		go s.syncLoop(ctx)
	}
}

// Stop halts the background loops and writes a final local save.
func (s *Session) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	if err := s.SaveNow(); err != nil {
		s.log.Printf("final save failed: %v", err)
	}
}

func (s *Session) tickLoop(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.TickReactor()
		}
	}
}

func (s *Session) autosaveLoop(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.cfg.Settings.AutosaveInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.SaveNow(); err != nil {
				s.log.Printf("autosave failed: %v", err)
			}
		}
	}
}

func (s *Session) syncLoop(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.cfg.Settings.CloudSyncInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.SyncNow(ctx); err != nil {
				s.log.Printf("cloud sync failed: %v", err)
			}
		}
	}
}

// Place puts a discovered element on the workspace.
func (s *Session) Place(symbol string, x, y float64) (game.PlacedElement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progression.Place(s.cfg.Catalog, symbol, x, y)
}

// Move updates a workspace record's position.
func (s *Session) Move(id string, x, y float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progression.MoveTo(id, x, y)
}

// Fuse fuses two workspace records. The win flag fires on the fusion that
// completes the table, and only that one.
func (s *Session) Fuse(idA, idB string) (FuseOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.progression.ApplyFusion(s.cfg.Catalog, idA, idB)
	if err != nil {
		return FuseOutcome{}, err
	}
	out := FuseOutcome{FusionResult: res}
	if res.Outcome.Accepted() && !s.winSurfaced && s.progression.IsComplete(s.cfg.Catalog) {
		s.winSurfaced = true
		out.Won = true
	}
	return out, nil
}

// TickReactor accrues reactor energy against the wall clock.
func (s *Session) TickReactor() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reactor.Tick(s.cfg.Clock())
}

// Harvest moves stored reactor energy into fusion energy.
func (s *Session) Harvest() (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reactor.Harvest(s.progression)
}

// UpgradeReactor raises the reactor level if the player can pay.
func (s *Session) UpgradeReactor() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reactor.Upgrade(s.progression)
}

// ClearWorkspace empties the workspace and releases the fusion latch.
func (s *Session) ClearWorkspace() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progression.ClearWorkspace()
}

// SetPlayerName validates and persists the display name.
func (s *Session) SetPlayerName(name string) error {
	name, err := settings.ValidatePlayerName(name)
	if err != nil {
		return err
	}
	if err := s.cfg.Store.SetPlayerName(name); err != nil {
		return err
	}
	s.mu.Lock()
	s.playerName = name
	s.mu.Unlock()
	return nil
}

// PlayerName returns the current display name.
func (s *Session) PlayerName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playerName
}

// Score computes the current total score.
func (s *Session) Score() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return game.ComputeScore(s.progression, s.reactor, s.cfg.Catalog.Size())
}

// Snapshot captures the current state for display or persistence.
func (s *Session) Snapshot() save.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() save.Snapshot {
	return save.Capture(s.progression, s.reactor, s.playerName, s.deviceID, s.cfg.Clock())
}

// SaveNow writes the current state to the local store and tracks the energy
// record.
func (s *Session) SaveNow() error {
	s.mu.Lock()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	raw, err := snap.Encode()
	if err != nil {
		s.emit(StatusError, err.Error())
		return err
	}
	if err := s.cfg.Store.PutSnapshot(localstore.DefaultSlot, raw, snap.Timestamp); err != nil {
		s.emit(StatusError, err.Error())
		return err
	}
	if _, err := s.cfg.Store.RecordEnergy(snap.GameState.FusionEnergy); err != nil {
		s.log.Printf("record energy: %v", err)
	}
	s.emit(StatusSaved, "game saved")
	return nil
}

// LoadNow replaces the running state with the local save. Returns false with
// no error when there is no save.
func (s *Session) LoadNow() (bool, error) {
	raw, _, err := s.cfg.Store.GetSnapshot(localstore.DefaultSlot)
	if err != nil {
		return false, err
	}
	if raw == nil {
		return false, nil
	}
	snap, err := save.Decode(raw)
	if err != nil {
		s.emit(StatusError, err.Error())
		return false, err
	}

	s.mu.Lock()
	snap.Apply(s.progression, s.reactor, s.cfg.Clock())
	if snap.PlayerName != "" {
		s.playerName = snap.PlayerName
	}
	s.mu.Unlock()

	s.emit(StatusLoaded, "game loaded")
	return true, nil
}

// SyncNow reconciles the local state against the cloud copy using the
// configured conflict policy, applies the winner, and pushes it back up. The
// snapshot travels by value; the lock is never held across a network call.
func (s *Session) SyncNow(ctx context.Context) error {
	if s.cfg.Cloud == nil {
		return fmt.Errorf("session: cloud sync is not configured")
	}
	s.emit(StatusSyncing, "syncing")

	s.mu.Lock()
	local := s.snapshotLocked()
	s.mu.Unlock()

	remote, _, err := s.cfg.Cloud.Pull(ctx, s.deviceID)
	if err != nil {
		s.emit(StatusError, err.Error())
		return err
	}

	winner := save.Reconcile(&local, remote, s.cfg.Settings.ConflictPolicy)
	if winner == remote && remote != nil {
		s.mu.Lock()
		// A fusion completed after the snapshot was taken outranks the
		// in-flight remote copy.
		current := s.snapshotLocked()
		if current.Timestamp <= remote.Timestamp || s.cfg.Settings.ConflictPolicy == save.PolicyRemote {
			remote.Apply(s.progression, s.reactor, s.cfg.Clock())
			if remote.PlayerName != "" {
				s.playerName = remote.PlayerName
			}
		} else {
			winner = &current
		}
		s.mu.Unlock()
	}

	if _, err := s.cfg.Cloud.Push(ctx, s.deviceID, winner); err != nil {
		s.emit(StatusError, err.Error())
		return err
	}
	if err := s.SaveNow(); err != nil {
		return err
	}
	s.emit(StatusSynced, "cloud synced")
	return nil
}

// SubmitScores posts every positive category score to the leaderboards.
func (s *Session) SubmitScores(ctx context.Context) (leaderboard.Report, error) {
	if s.cfg.Boards == nil {
		return leaderboard.Report{}, fmt.Errorf("session: leaderboards are not configured")
	}

	s.mu.Lock()
	name := s.playerName
	scores := game.CategoryScores(s.progression, s.reactor, s.cfg.Catalog.Size())
	id := leaderboard.Identity{PlayerName: name, DeviceID: s.deviceID, Country: s.country}
	s.mu.Unlock()

	if _, err := settings.ValidatePlayerName(name); err != nil {
		return leaderboard.Report{}, err
	}
	return s.cfg.Boards.SubmitAll(ctx, scores, id), nil
}
