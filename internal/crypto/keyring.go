package crypto

import "os"

// Keyring provides secure storage for the sqlcipher database key
type Keyring interface {
	GetKey() (string, error)
	SetKey(password string) error
	DeleteKey() error
	IsAvailable() bool
}

const (
	ServiceName = "facturas"
	KeyName     = "db-encryption-key"

	// KeyEnvVar overrides the stored key on every platform
	KeyEnvVar = "FACTURAS_DB_KEY"
)

// NewKeyring returns the best available keyring implementation
func NewKeyring() Keyring {
	if os.Getenv(KeyEnvVar) != "" {
		return &envKeyring{}
	}
	return newPlatformKeyring()
}
