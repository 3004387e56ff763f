package infra

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/amirasaad/iebank/pkg/domain"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestMapGormErrorToDomain(t *testing.T) {
	t.Parallel()

	alreadyClassified := domain.NewError(domain.ErrForbidden, "not yours")

	tests := []struct {
		name     string
		input    error
		expected error
	}{
		{"duplicate key", gorm.ErrDuplicatedKey, domain.ErrAlreadyExists},
		{"record not found", gorm.ErrRecordNotFound, domain.ErrNotFound},
		{"wrapped duplicate key", errors.Join(errors.New("outer"), gorm.ErrDuplicatedKey), domain.ErrAlreadyExists},
		{"pg unique violation", &pgconn.PgError{Code: "23505"}, domain.ErrAlreadyExists},
		{"pg check violation", fmt.Errorf("exec: %w", &pgconn.PgError{Code: "23514"}), domain.ErrValidation},
		{"pg foreign key", &pgconn.PgError{Code: "23503"}, domain.ErrValidation},
		{"deadline", context.DeadlineExceeded, domain.ErrPersistence},
		{"unknown", errors.New("driver: bad connection"), domain.ErrPersistence},
		{"domain error passes through", alreadyClassified, domain.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			result := MapGormErrorToDomain(tt.input)
			assert.ErrorIs(t, result, tt.expected)
			assert.ErrorIs(t, result, tt.input)
		})
	}

	assert.NoError(t, MapGormErrorToDomain(nil))
}
