package repository

import (
	"errors"

	apperrors "github.com/LiverNeZelc/vikaproject/backend/services/common/errors"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// SQLSTATEs Postgres uses when it aborts a transaction that lost a race.
const (
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
)

// translate maps driver-level errors onto application errors. Anything it does
// not recognise is returned untouched.
func translate(err error, notFound *apperrors.Error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return notFound.Wrap(err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperrors.ErrConflict.Wrap(err)
	default:
		return lockConflict(err)
	}
}

// lockConflict reports a transaction aborted by a deadlock or serialization
// failure as a concurrent modification.
func lockConflict(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) &&
		(pgErr.Code == sqlStateDeadlockDetected || pgErr.Code == sqlStateSerializationFailure) {
		if _, ok := apperrors.From(err); !ok {
			return apperrors.ErrConcurrentModification.Wrap(err)
		}
	}
	return err
}
