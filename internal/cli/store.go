package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/julianstephens/hsplan/internal/constants"
	"github.com/julianstephens/hsplan/internal/keyring"
	"github.com/julianstephens/hsplan/internal/logger"
	"github.com/julianstephens/hsplan/internal/storage"
	"github.com/julianstephens/hsplan/internal/storage/postgres"
	"github.com/julianstephens/hsplan/internal/storage/sqlite"
	"github.com/julianstephens/hsplan/internal/utils"
)

// ErrNoConnection is returned when --config selects PostgreSQL but no
// connection string is available from the environment or the keyring.
var ErrNoConnection = errors.New("no PostgreSQL connection string configured")

// OpenStore picks a storage backend for config:
//
//   - "postgres" or "postgresql": the connection string comes from
//     HSPLAN_DB_CONNECTION, then the OS keyring. Stored strings may carry a password.
//   - a PostgreSQL URL or keyword/value DSN: used as-is, but must not embed a password.
//   - anything else: a SQLite file path, with ~ expanded.
func OpenStore(config string) (storage.Provider, error) {
	config = strings.TrimSpace(config)
	switch {
	case strings.EqualFold(config, "postgres") || strings.EqualFold(config, "postgresql"):
		connStr, err := resolveConnection()
		if err != nil {
			return nil, err
		}
		if err := postgres.ValidateConnString(connStr); err != nil && !errors.Is(err, postgres.ErrEmbeddedCredentials) {
			return nil, err
		}
		return postgres.New(connStr), nil

	case storage.IsPostgres(config):
		if err := postgres.ValidateConnString(config); err != nil {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return nil, fmt.Errorf("%w: store it with 'hsplan config set-connection' or export %s instead",
					err, constants.EnvDBConnection)
			}
			return nil, err
		}
		return postgres.New(config), nil

	default:
		path, err := utils.ExpandHome(config)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve database path: %w", err)
		}
		return sqlite.NewStore(path), nil
	}
}

func resolveConnection() (string, error) {
	if connStr := strings.TrimSpace(os.Getenv(constants.EnvDBConnection)); connStr != "" {
		logger.Debug("using connection string from environment", "var", constants.EnvDBConnection)
		return connStr, nil
	}
	connStr, err := keyring.GetConnectionString()
	switch {
	case errors.Is(err, keyring.ErrNotFound):
		return "", fmt.Errorf("%w: set %s or run 'hsplan config set-connection'", ErrNoConnection, constants.EnvDBConnection)
	case err != nil:
		return "", err
	}
	logger.Debug("using connection string from keyring")
	return connStr, nil
}
