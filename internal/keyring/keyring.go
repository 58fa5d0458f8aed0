package keyring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/hsplan/internal/constants"
)

var (
	ErrNotFound           = errors.New("connection string not found in keyring")
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
	ErrEmptyConnection    = errors.New("connection string cannot be empty")
)

const availabilityUser = "availability-check"

// GetConnectionString reads the PostgreSQL connection string stored for hsplan.
func GetConnectionString() (string, error) {
	connStr, err := keyring.Get(constants.AppName, constants.DefaultKeyringUser)
	switch {
	case errors.Is(err, keyring.ErrNotFound):
		return "", ErrNotFound
	case err != nil:
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return connStr, nil
}

func SetConnectionString(connStr string) error {
	if connStr == "" {
		return ErrEmptyConnection
	}
	if err := keyring.Set(constants.AppName, constants.DefaultKeyringUser, connStr); err != nil {
		return fmt.Errorf("storing connection string in keyring: %w", err)
	}
	return nil
}

func DeleteConnectionString() error {
	err := keyring.Delete(constants.AppName, constants.DefaultKeyringUser)
	switch {
	case errors.Is(err, keyring.ErrNotFound):
		return ErrNotFound
	case err != nil:
		return fmt.Errorf("removing connection string from keyring: %w", err)
	}
	return nil
}

// IsAvailable checks the keyring with a read. A missing entry still counts as available.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, availabilityUser)
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}
