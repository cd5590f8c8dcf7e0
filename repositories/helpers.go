package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// Postgres error codes the repositories tell apart.
const (
	pqUniqueViolation       = "23505"
	pqForeignKeyViolation   = "23503"
	pqNotNullViolation      = "23502"
	pqInvalidTextRepr       = "22P02"
	pqInvalidDatetimeFormat = "22007"
	pqDatetimeFieldOverflow = "22008"
	pqNumericOutOfRange     = "22003"
)

func checkAffectedRows(result sql.Result, notFoundError error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return notFoundError
	}
	return nil
}

func asPQError(err error) (*pq.Error, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr, true
	}
	return nil, false
}
