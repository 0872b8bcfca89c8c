package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/zalando/go-keyring"
)

const secretCredential = "credential"

// CredentialStore keeps the cloud-save credential in the OS keychain with an
// optional file fallback. Fallback is intended for environments where no
// system keyring is available.
type CredentialStore struct {
	service      string
	fallbackPath string
	mu           sync.Mutex
}

// NewCredentialStore creates a keychain wrapper for the given service name.
func NewCredentialStore(serviceName, fallbackPath string) *CredentialStore {
	if strings.TrimSpace(serviceName) == "" {
		serviceName = "element-fusion"
	}
	return &CredentialStore{
		service:      serviceName,
		fallbackPath: fallbackPath,
	}
}

func (c *CredentialStore) key(deviceID string) string {
	return fmt.Sprintf("%s/%s", deviceID, secretCredential)
}

// SetCredential stores the cloud credential for a device.
func (c *CredentialStore) SetCredential(deviceID, value string) error {
	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" {
		return fmt.Errorf("settings: device id is required")
	}

	if err := keyring.Set(c.service, c.key(deviceID), value); err == nil {
		return nil
	} else if !isKeyringUnavailable(err) {
		return fmt.Errorf("settings: keyring set: %w", err)
	}

	return c.setFallback(deviceID, value)
}

// Credential returns the stored cloud credential for a device. Returns
// keyring.ErrNotFound when none has been stored.
func (c *CredentialStore) Credential(deviceID string) (string, error) {
	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" {
		return "", fmt.Errorf("settings: device id is required")
	}

	val, err := keyring.Get(c.service, c.key(deviceID))
	if err == nil {
		return val, nil
	}
	if !isKeyringUnavailable(err) && !errors.Is(err, keyring.ErrNotFound) {
		return "", fmt.Errorf("settings: keyring get: %w", err)
	}

	fallback, ferr := c.getFallback(deviceID)
	if ferr == nil {
		return fallback, nil
	}

	if errors.Is(err, keyring.ErrNotFound) {
		return "", keyring.ErrNotFound
	}
	return "", ferr
}

// DeleteCredential removes the stored credential for a device.
func (c *CredentialStore) DeleteCredential(deviceID string) error {
	err := keyring.Delete(c.service, c.key(deviceID))
	if err != nil && !errors.Is(err, keyring.ErrNotFound) && !isKeyringUnavailable(err) {
		return fmt.Errorf("settings: keyring delete: %w", err)
	}
	return c.deleteFallback(deviceID)
}

func isKeyringUnavailable(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "secret service") ||
		strings.Contains(msg, "dbus") ||
		strings.Contains(msg, "the specified item could not be found in the keychain") ||
		strings.Contains(msg, "no keychain") ||
		strings.Contains(msg, "keyring backend not available")
}

type fallbackSecrets map[string]string

func (c *CredentialStore) setFallback(deviceID, value string) error {
	if strings.TrimSpace(c.fallbackPath) == "" {
		return fmt.Errorf("settings: keyring unavailable and no fallback path configured")
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := c.readFallbackUnlocked()
	if err != nil {
		return err
	}
	data[deviceID] = value
	return c.writeFallbackUnlocked(data)
}

func (c *CredentialStore) getFallback(deviceID string) (string, error) {
	if strings.TrimSpace(c.fallbackPath) == "" {
		return "", fmt.Errorf("settings: fallback path not configured")
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := c.readFallbackUnlocked()
	if err != nil {
		return "", err
	}
	val, ok := data[deviceID]
	if !ok {
		return "", keyring.ErrNotFound
	}
	return val, nil
}

func (c *CredentialStore) deleteFallback(deviceID string) error {
	if strings.TrimSpace(c.fallbackPath) == "" {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := c.readFallbackUnlocked()
	if err != nil {
		return err
	}
	delete(data, deviceID)
	return c.writeFallbackUnlocked(data)
}

func (c *CredentialStore) readFallbackUnlocked() (fallbackSecrets, error) {
	out := fallbackSecrets{}
	raw, err := os.ReadFile(c.fallbackPath)
	if err != nil {
		if os.IsNotExist(err) {
			return out, nil
		}
		return nil, fmt.Errorf("settings: read fallback secrets: %w", err)
	}
	if len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("settings: decode fallback secrets: %w", err)
	}
	return out, nil
}

func (c *CredentialStore) writeFallbackUnlocked(data fallbackSecrets) error {
	dir := filepath.Dir(c.fallbackPath)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("settings: mkdir fallback dir: %w", err)
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("settings: encode fallback secrets: %w", err)
	}
	if err := os.WriteFile(c.fallbackPath, raw, 0o600); err != nil {
		return fmt.Errorf("settings: write fallback secrets: %w", err)
	}
	return nil
}
