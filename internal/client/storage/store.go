// Package storage is the client's local key/value store. Values are opaque
// strings; callers own their encoding and must treat a missing or malformed
// value as "not present".
package storage

import (
	"fmt"
	"path/filepath"

	"github.com/kamikazebr/iskra-desktop/pkg/utils"
)

// Stable keys shared with the editor integration.
const (
	KeyToken          = "iskra.auth.token"
	KeyUser           = "iskra.auth.user"
	KeyDeviceID       = "iskra.deviceId"
	KeyPaymentSuccess = "iskra.payment.success"
)

const stateFile = "state.json"

// Store is implemented by FileStore and MemoryStore.
// Set and Remove apply all keys in one write.
type Store interface {
	Get(key string) (string, bool)
	Set(values map[string]string) error
	Remove(keys ...string) error
}

// DefaultDir returns ~/.iskra of the invoking user (sudo aware).
func DefaultDir() (string, error) {
	home, err := utils.HomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user directory: %w", err)
	}
	return filepath.Join(home, ".iskra"), nil
}
