// Package keyring keeps encryption keys in the OS keyring, keyed by store id.
package keyring

import (
	"errors"

	"github.com/zalando/go-keyring"
)

const serviceName = "locknote"

// ErrNotFound is returned when no key is stored for the store
var ErrNotFound = keyring.ErrNotFound

// SaveKey stores an encryption key in the OS keyring
func SaveKey(storeID string, key string) error {
	return keyring.Set(serviceName, storeID, key)
}

// GetKey retrieves an encryption key from the OS keyring
func GetKey(storeID string) (string, error) {
	return keyring.Get(serviceName, storeID)
}

// DeleteKey removes an encryption key from the keyring.
// Deleting a missing key is not an error.
func DeleteKey(storeID string) error {
	err := keyring.Delete(serviceName, storeID)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

// HasKey checks if a key is stored for the store
func HasKey(storeID string) bool {
	_, err := keyring.Get(serviceName, storeID)
	return err == nil
}
