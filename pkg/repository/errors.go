package repository

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL SQLSTATE codes mapped by Errors.
const (
	codeUniqueViolation     = "23505"
	codeCheckViolation      = "23514"
	codeNotNullViolation    = "23502"
	codeInvalidTextRepr     = "22P02"
	codeStringDataTruncated = "22001"
)

// Errors names the domain errors a repository reports in place of
// driver errors. A nil field leaves the matching driver error unchanged.
type Errors struct {
	NotFound  error
	Duplicate error
	Invalid   error
}

// Map translates err. No rows becomes NotFound, a unique violation becomes
// Duplicate, and constraint or input-format violations become Invalid.
// Anything else is returned as is.
func (e Errors) Map(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return or(e.NotFound, err)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case codeUniqueViolation:
		return or(e.Duplicate, err)
	case codeCheckViolation, codeNotNullViolation, codeInvalidTextRepr, codeStringDataTruncated:
		return or(e.Invalid, err)
	}
	return err
}

func or(domain, fallback error) error {
	if domain == nil {
		return fallback
	}
	return domain
}
