package repository

import (
	"errors"

	"researchhub/pkg/apperr"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// mapErr converts driver errors into apperr kinds. what names the record
// for not-found messages.
func mapErr(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound(what)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return apperr.Wrap(apperr.KindConflict, what+" already exists", err)
		case pgForeignKeyViolation:
			return apperr.Wrap(apperr.KindNotFound, "referenced record not found", err)
		case pgCheckViolation:
			return apperr.Wrap(apperr.KindValidation, "invalid "+what, err)
		}
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperr.Internal("database error", err)
}
