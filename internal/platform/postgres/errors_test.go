package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/taskflow-api/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
	}{
		{"no rows", sql.ErrNoRows, store.ErrNotFound},
		{"unique violation", &pgconn.PgError{Code: uniqueViolationCode}, store.ErrDuplicate},
		{"foreign key violation", &pgconn.PgError{Code: foreignKeyViolationCode, ConstraintName: "tasks_user_id_fkey"}, store.ErrInvalidEntity},
		{"check violation", &pgconn.PgError{Code: checkViolationCode, ConstraintName: "tasks_order_non_negative"}, store.ErrInvalidEntity},
		{"not null violation", &pgconn.PgError{Code: notNullViolationCode, ColumnName: "title"}, store.ErrInvalidEntity},
		{"numeric out of range", &pgconn.PgError{Code: numericOutOfRangeCode}, store.ErrInvalidEntity},
		{"wrapped unique violation", fmt.Errorf("exec: %w", &pgconn.PgError{Code: uniqueViolationCode}), store.ErrDuplicate},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, MapError(tc.err), tc.target)
		})
	}

	t.Run("nil", func(t *testing.T) {
		assert.NoError(t, MapError(nil))
	})

	t.Run("unmapped errors pass through", func(t *testing.T) {
		orig := errors.New("connection refused")
		assert.Same(t, orig, MapError(orig))
	})
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: uniqueViolationCode}))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: checkViolationCode}))
	assert.False(t, IsUniqueViolation(errors.New("23505")))
}

func TestCheckRowsAffected(t *testing.T) {
	assert.NoError(t, CheckRowsAffected(sqlmock.NewResult(0, 1), store.ErrTaskNotFound))
	assert.Equal(t, store.ErrTaskNotFound, CheckRowsAffected(sqlmock.NewResult(0, 0), store.ErrTaskNotFound))
	assert.Equal(t, store.ErrNotFound, CheckRowsAffected(sqlmock.NewResult(0, 0), nil))

	rowsErr := errors.New("driver does not support RowsAffected")
	err := CheckRowsAffected(sqlmock.NewErrorResult(rowsErr), store.ErrTaskNotFound)
	assert.ErrorIs(t, err, rowsErr)

	assert.Error(t, CheckRowsAffected(nil, nil))
}
