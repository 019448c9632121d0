package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/stock-ledger/internal/domain"
)

// Códigos SQLSTATE que el motor trata de forma especial.
const (
	codeUniqueViolation      = "23505"
	codeCheckViolation       = "23514"
	codeLockNotAvailable     = "55P03"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeNumericOutOfRange    = "22003"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// mapPgError traduce errores de PostgreSQL a errores de dominio; el resto se envuelve con op.
func mapPgError(op string, err error) error {
	switch pgCode(err) {
	case codeLockNotAvailable, codeSerializationFailure, codeDeadlockDetected:
		return &domain.ConcurrencyConflictError{Op: op, Err: err}
	case codeCheckViolation:
		return fmt.Errorf("%s: %w", op, errors.Join(domain.ErrInsufficientStock, err))
	case codeNumericOutOfRange:
		return fmt.Errorf("%s: %w", op, errors.Join(domain.NewValidationError("quantity", "valor fuera del rango admitido"), err))
	case codeUniqueViolation:
		return fmt.Errorf("%s: %w", op, errors.Join(domain.ErrDuplicate, err))
	}
	return fmt.Errorf("%s: %w", op, err)
}
