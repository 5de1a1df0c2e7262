package database

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/lib/pq"

	apperror "stockledger/internal/errors"
)

// Códigos SQLSTATE tratados explicitamente.
const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
	codeQueryCanceled        = "57014"
	codeNumericOutOfRange    = "22003"
	codeCheckViolation       = "23514"
)

// TranslateError converte erros do driver em erros da aplicação.
// Conflitos de lock, timeouts e quedas de conexão viram TransientError (503);
// violação de unicidade vira ConflictError; valores fora da faixa ou que violam
// CHECK viram ValidationError; o resto vira erro interno de DB.
func TranslateError(msg string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || errors.Is(err, sql.ErrConnDone) {
		return apperror.NewTransientError(msg, err)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		code := string(pqErr.Code)
		switch {
		case code == codeUniqueViolation:
			return apperror.NewConflictError(msg)
		case code == codeForeignKeyViolation:
			return apperror.NewNotFoundError(msg)
		case code == codeNumericOutOfRange, code == codeCheckViolation:
			return apperror.NewValidationError(msg)
		case code == codeSerializationFailure, code == codeDeadlockDetected,
			code == codeLockNotAvailable, code == codeQueryCanceled,
			strings.HasPrefix(code, "08"):
			return apperror.NewTransientError(msg, err)
		}
	}
	return apperror.NewDBError(msg, err)
}
