package storage

import (
	"errors"
	"net/url"
	"strings"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrNotInitialized      = errors.New("storage not initialized, run 'hsplan init' first")
	ErrOccurrenceCompleted = errors.New("occurrence has completion logs and cannot be removed")
)

// IsPostgres reports whether config is a PostgreSQL URL or keyword/value DSN
// rather than a SQLite file path.
func IsPostgres(config string) bool {
	if strings.HasPrefix(config, "postgres://") || strings.HasPrefix(config, "postgresql://") {
		return true
	}
	return strings.Contains(config, "host=") || strings.Contains(config, "dbname=")
}

// HasEmbeddedCredentials reports whether a PostgreSQL connection string carries a password.
func HasEmbeddedCredentials(connStr string) bool {
	if strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://") {
		u, err := url.Parse(connStr)
		if err != nil || u.User == nil {
			return false
		}
		_, set := u.User.Password()
		return set
	}
	for _, pair := range strings.Fields(connStr) {
		key, _, ok := strings.Cut(pair, "=")
		if ok && strings.EqualFold(strings.TrimSpace(key), "password") {
			return true
		}
	}
	return false
}
