package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jhoicas/ledger-api/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestTranslateError(t *testing.T) {
	cases := []struct {
		name        string
		err         error
		conflict    bool
		unavailable bool
	}{
		{"Caso 1: secuencia duplicada", &pgconn.PgError{Code: "23505"}, true, false},
		{"Caso 2: fallo de serialización", &pgconn.PgError{Code: "40001"}, true, false},
		{"Caso 3: deadlock", &pgconn.PgError{Code: "40P01"}, true, false},
		{"Caso 4: conexión perdida", &pgconn.PgError{Code: "08006"}, false, true},
		{"Caso 5: servidor apagándose", &pgconn.PgError{Code: "57P01"}, false, true},
		{"Caso 6: demasiadas conexiones", &pgconn.PgError{Code: "53300"}, false, true},
		{"Caso 7: violación de check", &pgconn.PgError{Code: "23514"}, false, false},
		{"Caso 8: error genérico", errors.New("boom"), false, false},
		{"Caso 9: contexto cancelado", context.Canceled, false, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := translateError("append", fmt.Errorf("exec: %w", tc.err))
			assert.Equal(t, tc.conflict, errors.Is(got, domain.ErrConcurrentAppendConflict))
			assert.Equal(t, tc.unavailable, errors.Is(got, domain.ErrStorageUnavailable))
			assert.True(t, errors.Is(got, tc.err), "conserva el error original")
			assert.Contains(t, got.Error(), "append")
		})
	}
	assert.Nil(t, translateError("noop", nil))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
}
