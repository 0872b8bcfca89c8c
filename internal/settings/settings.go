// Package settings holds player-tunable configuration: cloud sync options
// and player identity rules. The cloud credential itself lives in the OS
// keychain, not here.
package settings

import (
	"fmt"
	"strings"
	"time"

	"github.com/element-fusion/element-fusion-go/internal/save"
)

// Player name limits.
const (
	MinNameLength = 3
	MaxNameLength = 20
)

// Sync intervals.
const (
	DefaultAutosaveInterval  = 30 * time.Second
	DefaultCloudSyncInterval = 5 * time.Minute
)

// Settings is the mutable configuration block. The zero value disables cloud
// sync; call Normalize before use to fill remaining defaults.
type Settings struct {
	CloudSyncEnabled  bool          `json:"cloudSyncEnabled"`
	CloudEndpoint     string        `json:"cloudEndpoint,omitempty"`
	ConflictPolicy    save.Policy   `json:"conflictPolicy,omitempty"`
	AutosaveInterval  time.Duration `json:"autosaveInterval,omitempty"`
	CloudSyncInterval time.Duration `json:"cloudSyncInterval,omitempty"`
}

// Normalize fills zero fields with defaults and validates the conflict
// policy.
func (s *Settings) Normalize() error {
	if s.ConflictPolicy == "" {
		s.ConflictPolicy = save.PolicyNewest
	}
	if _, err := save.ParsePolicy(string(s.ConflictPolicy)); err != nil {
		return err
	}
	if s.AutosaveInterval <= 0 {
		s.AutosaveInterval = DefaultAutosaveInterval
	}
	if s.CloudSyncInterval <= 0 {
		s.CloudSyncInterval = DefaultCloudSyncInterval
	}
	if s.CloudSyncEnabled && strings.TrimSpace(s.CloudEndpoint) == "" {
		return fmt.Errorf("settings: cloud sync enabled without an endpoint")
	}
	return nil
}

// ValidatePlayerName checks the display-name rules used everywhere a name is
// accepted: trimmed, 3 to 20 characters.
func ValidatePlayerName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if len(name) < MinNameLength {
		return "", fmt.Errorf("settings: player name must be at least %d characters", MinNameLength)
	}
	if len(name) > MaxNameLength {
		return "", fmt.Errorf("settings: player name must be at most %d characters", MaxNameLength)
	}
	return name, nil
}
