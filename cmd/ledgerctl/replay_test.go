package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/jhoicas/ledger-api/internal/domain"
	"github.com/jhoicas/ledger-api/internal/domain/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenarioA = `[
	{"id": 1, "in_amount": "100", "out_amount": "0", "kind": "IN"},
	{"id": 2, "in_amount": "0", "out_amount": "30", "kind": "OUT"},
	{"id": 3, "in_amount": "50", "out_amount": "0", "kind": "IN"}
]`

func TestRunReplay_NormalDebit(t *testing.T) {
	var out bytes.Buffer
	err := runReplay(strings.NewReader(scenarioA), &out, entity.PolarityNormalDebit, decimal.Zero, false)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "saldo final 120 (as_of=3, 3 movimientos)")
}

func TestRunReplay_NormalCreditWithOpening(t *testing.T) {
	var out bytes.Buffer
	err := runReplay(strings.NewReader(scenarioA), &out, entity.PolarityNormalCredit, decimal.NewFromInt(10), false)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "saldo final -110 ")
}

func TestRunReplay_Ordering(t *testing.T) {
	unordered := `[{"id": 2, "in_amount": "5", "kind": "IN"}, {"id": 1, "in_amount": "7", "kind": "IN"}]`

	err := runReplay(strings.NewReader(unordered), &bytes.Buffer{}, entity.PolarityNormalDebit, decimal.Zero, false)
	assert.True(t, errors.Is(err, domain.ErrOrdering))

	var out bytes.Buffer
	require.NoError(t, runReplay(strings.NewReader(unordered), &out, entity.PolarityNormalDebit, decimal.Zero, true))
	assert.Contains(t, out.String(), "saldo final 12 (as_of=2, 2 movimientos)")
}

func TestRunReplay_InvalidJSON(t *testing.T) {
	err := runReplay(strings.NewReader("{"), &bytes.Buffer{}, entity.PolarityNormalDebit, decimal.Zero, false)
	assert.Error(t, err)
}
