package infra

import (
	"context"
	"errors"

	"github.com/amirasaad/iebank/pkg/domain"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// PostgreSQL SQLSTATE codes the repositories translate.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// MapGormErrorToDomain converts GORM and driver errors to domain errors.
// Errors that are already classified pass through unchanged; anything
// unrecognised is reported as domain.ErrPersistence.
func MapGormErrorToDomain(err error) error {
	if err == nil {
		return nil
	}
	if domain.IsKnown(err) {
		return err
	}

	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return domain.Wrap(domain.ErrAlreadyExists, err)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.Wrap(domain.ErrNotFound, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated), errors.Is(err, gorm.ErrCheckConstraintViolated):
		return domain.Wrap(domain.ErrValidation, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return domain.Wrap(domain.ErrPersistence, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return domain.Wrap(domain.ErrAlreadyExists, err)
		case pgForeignKeyViolation, pgCheckViolation:
			return domain.Wrap(domain.ErrValidation, err)
		}
	}

	return domain.Wrap(domain.ErrPersistence, err)
}
