// Package repoerr defines the sentinel errors the repository layer returns
// so callers can branch on error class instead of matching message text.
package repoerr

import (
	"context"
	"errors"
	"net"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned when a required row does not exist.
	ErrNotFound = errors.New("repository: record not found")

	// ErrUnavailable is returned when the store cannot be reached. Callers
	// that degrade gracefully branch on this instead of failing hard.
	ErrUnavailable = errors.New("repository: store unavailable")

	// ErrConflict is returned when a write loses a uniqueness race.
	ErrConflict = errors.New("repository: conflict")
)

// Classify wraps a driver error with the matching sentinel. Connection
// level failures become ErrUnavailable, unique violations become
// ErrConflict, anything else passes through unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return errors.Join(ErrUnavailable, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return errors.Join(ErrUnavailable, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "23505":
			return errors.Join(ErrConflict, err)
		case pgErr.Code[:2] == "08" || pgErr.Code == "57P01":
			return errors.Join(ErrUnavailable, err)
		}
		return err
	}
	if pgconn.Timeout(err) {
		return errors.Join(ErrUnavailable, err)
	}

	return err
}
