// Package localstore is the on-device persistence layer: the save slot, the
// player profile, and cached leaderboard pages all live in one SQLite file so
// the game works fully offline.
package localstore

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// DefaultSlot is the save slot used when none is named.
const DefaultSlot = "default"

// Store persists local game data in SQLite.
type Store struct {
	db *sql.DB
}

// New opens the local DB and enables WAL.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("localstore: open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("localstore: enable WAL: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the DB.
func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate creates tables and indexes.
func (s *Store) Migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS profile (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL DEFAULT '',
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS saves (
			slot TEXT PRIMARY KEY,
			data TEXT NOT NULL,
			saved_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS leaderboard_cache (
			category TEXT PRIMARY KEY,
			data TEXT NOT NULL,
			fetched_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS local_boards (
			category TEXT PRIMARY KEY,
			data TEXT NOT NULL,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	}
	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("localstore: migrate: %w", err)
		}
	}
	return nil
}

// PutSnapshot writes the save document into a slot, replacing any previous
// save. savedAt is unix milliseconds.
func (s *Store) PutSnapshot(slot string, data []byte, savedAt int64) error {
	if slot == "" {
		slot = DefaultSlot
	}
	_, err := s.db.Exec(
		`INSERT INTO saves (slot, data, saved_at) VALUES (?, ?, ?)
		 ON CONFLICT(slot) DO UPDATE SET data = excluded.data, saved_at = excluded.saved_at`,
		slot, string(data), savedAt,
	)
	if err != nil {
		return fmt.Errorf("localstore: put snapshot: %w", err)
	}
	return nil
}

// GetSnapshot returns the save document and its timestamp, or (nil, 0, nil)
// when the slot is empty. An empty slot is not an error.
func (s *Store) GetSnapshot(slot string) ([]byte, int64, error) {
	if slot == "" {
		slot = DefaultSlot
	}
	var data string
	var savedAt int64
	err := s.db.QueryRow(`SELECT data, saved_at FROM saves WHERE slot = ?`, slot).
		Scan(&data, &savedAt)
	if err == sql.ErrNoRows {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("localstore: get snapshot: %w", err)
	}
	return []byte(data), savedAt, nil
}

// DeleteSnapshot clears a save slot. Deleting an empty slot is a no-op.
func (s *Store) DeleteSnapshot(slot string) error {
	if slot == "" {
		slot = DefaultSlot
	}
	if _, err := s.db.Exec(`DELETE FROM saves WHERE slot = ?`, slot); err != nil {
		return fmt.Errorf("localstore: delete snapshot: %w", err)
	}
	return nil
}

// PutCachedLeaderboard stores a fetched leaderboard page for offline display.
func (s *Store) PutCachedLeaderboard(category string, data []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO leaderboard_cache (category, data, fetched_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(category) DO UPDATE SET data = excluded.data, fetched_at = CURRENT_TIMESTAMP`,
		category, string(data),
	)
	if err != nil {
		return fmt.Errorf("localstore: cache leaderboard: %w", err)
	}
	return nil
}

// GetCachedLeaderboard returns the cached page for a category, or (nil, zero
// time, nil) when none has been cached yet.
func (s *Store) GetCachedLeaderboard(category string) ([]byte, time.Time, error) {
	var data string
	var fetchedAt time.Time
	err := s.db.QueryRow(
		`SELECT data, fetched_at FROM leaderboard_cache WHERE category = ?`, category,
	).Scan(&data, &fetchedAt)
	if err == sql.ErrNoRows {
		return nil, time.Time{}, nil
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("localstore: get cached leaderboard: %w", err)
	}
	return []byte(data), fetchedAt, nil
}

// PutLocalBoard stores the offline backup board for a category. The board is
// rewritten on every score submission, so it survives even when the service
// never answers.
func (s *Store) PutLocalBoard(category string, data []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO local_boards (category, data, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(category) DO UPDATE SET data = excluded.data, updated_at = CURRENT_TIMESTAMP`,
		category, string(data),
	)
	if err != nil {
		return fmt.Errorf("localstore: put local board: %w", err)
	}
	return nil
}

// GetLocalBoard returns the stored backup board for a category, or (nil, nil)
// when none has been written yet.
func (s *Store) GetLocalBoard(category string) ([]byte, error) {
	var data string
	err := s.db.QueryRow(`SELECT data FROM local_boards WHERE category = ?`, category).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("localstore: get local board: %w", err)
	}
	return []byte(data), nil
}

func (s *Store) getProfile(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM profile WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("localstore: get %s: %w", key, err)
	}
	return value, nil
}

func (s *Store) setProfile(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO profile (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("localstore: set %s: %w", key, err)
	}
	return nil
}

// PlayerName returns the stored player name, or "" when none is set.
func (s *Store) PlayerName() (string, error) {
	return s.getProfile("player_name")
}

// SetPlayerName stores the player name.
func (s *Store) SetPlayerName(name string) error {
	return s.setProfile("player_name", strings.TrimSpace(name))
}

// DeviceID returns the stable per-install identifier, generating and storing
// one on first call.
func (s *Store) DeviceID() (string, error) {
	id, err := s.getProfile("device_id")
	if err != nil {
		return "", err
	}
	if id != "" {
		return id, nil
	}
	id = "device_" + uuid.NewString()
	if err := s.setProfile("device_id", id); err != nil {
		return "", err
	}
	return id, nil
}

// Country returns the stored country code, defaulting to the unknown marker.
func (s *Store) Country() (string, error) {
	country, err := s.getProfile("country")
	if err != nil {
		return "", err
	}
	if country == "" {
		return "??", nil
	}
	return country, nil
}

// SetCountry stores the country code.
func (s *Store) SetCountry(code string) error {
	return s.setProfile("country", code)
}

// HighestEnergy returns the highest fusion energy ever recorded.
func (s *Store) HighestEnergy() (float64, error) {
	raw, err := s.getProfile("highest_energy")
	if err != nil || raw == "" {
		return 0, err
	}
	var v float64
	if _, err := fmt.Sscanf(raw, "%g", &v); err != nil {
		return 0, fmt.Errorf("localstore: parse highest_energy %q: %w", raw, err)
	}
	return v, nil
}

// RecordEnergy raises the stored highest energy when the given value exceeds
// it, and reports whether a new record was set.
func (s *Store) RecordEnergy(energy float64) (bool, error) {
	current, err := s.HighestEnergy()
	if err != nil {
		return false, err
	}
	if energy <= current {
		return false, nil
	}
	if err := s.setProfile("highest_energy", fmt.Sprintf("%g", energy)); err != nil {
		return false, err
	}
	return true, nil
}
