package crypto

import (
	"errors"
	"fmt"
	"os"
)

// envKeyring reads the key from FACTURAS_DB_KEY. It cannot store anything.
type envKeyring struct{}

func (k *envKeyring) GetKey() (string, error) {
	key := os.Getenv(KeyEnvVar)
	if key == "" {
		return "", fmt.Errorf("%s environment variable not set", KeyEnvVar)
	}

	return key, nil
}

func (k *envKeyring) SetKey(password string) error {
	if password == "" {
		return errors.New("password cannot be empty")
	}

	return fmt.Errorf("keyring not available on this platform: set the %s environment variable instead", KeyEnvVar)
}

func (k *envKeyring) DeleteKey() error {
	return fmt.Errorf("keyring not available on this platform: unset %s manually", KeyEnvVar)
}

func (k *envKeyring) IsAvailable() bool {
	return os.Getenv(KeyEnvVar) != ""
}
