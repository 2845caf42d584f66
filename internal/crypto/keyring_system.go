//go:build darwin || windows

package crypto

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// systemKeyring stores the key in the macOS Keychain or the Windows
// Credential Manager
type systemKeyring struct{}

func newPlatformKeyring() Keyring {
	return &systemKeyring{}
}

func (k *systemKeyring) GetKey() (string, error) {
	key, err := keyring.Get(ServiceName, KeyName)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", fmt.Errorf("database key not found in keyring: %w", err)
		}
		return "", fmt.Errorf("failed to retrieve key from keyring: %w", err)
	}

	if key == "" {
		return "", errors.New("database key is empty")
	}

	return key, nil
}

func (k *systemKeyring) SetKey(password string) error {
	if password == "" {
		return errors.New("password cannot be empty")
	}

	if err := keyring.Set(ServiceName, KeyName, password); err != nil {
		return fmt.Errorf("failed to store key in keyring: %w", err)
	}

	return nil
}

func (k *systemKeyring) DeleteKey() error {
	err := keyring.Delete(ServiceName, KeyName)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("database key not found in keyring: %w", err)
		}
		return fmt.Errorf("failed to delete key from keyring: %w", err)
	}

	return nil
}

// IsAvailable writes and removes a throwaway entry
func (k *systemKeyring) IsAvailable() bool {
	testKey := "__facturas_availability_test__"
	if err := keyring.Set(ServiceName, testKey, "test"); err != nil {
		return false
	}

	_ = keyring.Delete(ServiceName, testKey)
	return true
}
