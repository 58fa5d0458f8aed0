package system

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/hsplan/internal/cli"
	"github.com/julianstephens/hsplan/internal/keyring"
	"github.com/julianstephens/hsplan/internal/storage"
	"github.com/julianstephens/hsplan/internal/storage/postgres"
)

// SetConnectionCmd stores a PostgreSQL connection string in the OS keyring
type SetConnectionCmd struct {
	ConnectionString string `arg:"" help:"PostgreSQL connection string to store in the keyring."`
}

func (cmd *SetConnectionCmd) Run(ctx *cli.Context) error {
	if !storage.IsPostgres(cmd.ConnectionString) {
		return errors.New("connection string must be a valid PostgreSQL connection string")
	}

	if err := postgres.ValidateConnString(cmd.ConnectionString); err != nil {
		if !errors.Is(err, postgres.ErrEmbeddedCredentials) {
			return fmt.Errorf("invalid connection string: %w", err)
		}
		// The keyring is encrypted, so a password is tolerated here.
		ctx.Println(cli.WarningStyle.Render("Warning: connection string contains embedded credentials."))
		ctx.Println("  It will be stored as-is in the encrypted OS keyring.")
	}

	if err := keyring.SetConnectionString(cmd.ConnectionString); err != nil {
		return fmt.Errorf("failed to store connection string in keyring: %w", err)
	}

	ctx.Println("✓ Connection string stored in OS keyring")
	ctx.Println("  Use --config postgres to connect with it")
	return nil
}

// DeleteConnectionCmd removes the stored connection string
type DeleteConnectionCmd struct{}

func (cmd *DeleteConnectionCmd) Run(ctx *cli.Context) error {
	if err := keyring.DeleteConnectionString(); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.New("no connection string found in keyring")
		}
		return fmt.Errorf("failed to delete connection string from keyring: %w", err)
	}
	ctx.Println("✓ Connection string deleted from OS keyring")
	return nil
}

type ConnectionStatusCmd struct{}

func (cmd *ConnectionStatusCmd) Run(ctx *cli.Context) error {
	if !keyring.IsAvailable() {
		return keyring.ErrKeyringUnavailable
	}
	ctx.Println("✓ OS keyring is available")

	connStr, err := keyring.GetConnectionString()
	switch {
	case errors.Is(err, keyring.ErrNotFound):
		ctx.Println("ℹ No connection string stored in keyring")
	case err != nil:
		return err
	default:
		ctx.Printf("✓ Stored connection string: %s\n", MaskPassword(connStr))
	}
	return nil
}

// MaskPassword hides the password of a URL or keyword/value connection string.
func MaskPassword(connStr string) string {
	if i := strings.Index(connStr, "://"); i != -1 && storage.IsPostgres(connStr[:i+3]) {
		rest := connStr[i+3:]
		if at := strings.LastIndex(rest, "@"); at != -1 {
			if colon := strings.Index(rest[:at], ":"); colon != -1 {
				return connStr[:i+3] + rest[:colon] + ":****" + rest[at:]
			}
		}
		return connStr
	}
	parts := strings.Fields(connStr)
	for i, part := range parts {
		if key, _, ok := strings.Cut(part, "="); ok && strings.EqualFold(key, "password") {
			parts[i] = "password=****"
		}
	}
	return strings.Join(parts, " ")
}
