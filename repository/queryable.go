package repository

import (
	"context"
	"errors"

	"betroom/service"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// queryable is satisfied by both *pgxpool.Pool and pgx.Tx
type queryable interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	pgUniqueViolation   = "23505"
	pgCheckViolation    = "23514"
	pgLockNotAvailable  = "55P03"
	pgDeadlockDetected  = "40P01"
	pgSerializationFail = "40001"
)

var uniqueConstraintErrors = map[string]error{
	"rooms_code_key":       service.ErrDuplicateRoomCode,
	"wagers_user_room_key": service.ErrDuplicateWager,
	"users_nickname_key":   service.ErrDuplicateNickname,
}

// translateError maps PostgreSQL failures onto domain errors.
// Errors it does not recognise are returned unchanged.
func translateError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgUniqueViolation:
		if domainErr, ok := uniqueConstraintErrors[pgErr.ConstraintName]; ok {
			return domainErr
		}
	case pgCheckViolation:
		if pgErr.ConstraintName == "users_balance_non_negative" {
			return service.ErrInsufficientBalance
		}
	case pgLockNotAvailable, pgDeadlockDetected, pgSerializationFail:
		return service.ErrRoomBusy
	}
	return err
}
