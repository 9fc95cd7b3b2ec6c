package infra

import (
	"math/big"
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOddsToNumeric_ZeroIsNull(t *testing.T) {
	n := OddsToNumeric(0)
	assert.False(t, n.Valid)

	v, err := NumericToOdds(n)
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)
}

func TestOddsToNumeric_Scale(t *testing.T) {
	n := OddsToNumeric(2.1)
	require.True(t, n.Valid)
	assert.Equal(t, int32(-3), n.Exp)
	assert.Equal(t, int64(2100), n.Int.Int64())
}

func TestOddsToNumeric_RoundsToThreePlaces(t *testing.T) {
	n := OddsToNumeric(1.23456)
	assert.Equal(t, int64(1235), n.Int.Int64())
}

func TestNumericToOdds_Roundtrip(t *testing.T) {
	for _, v := range []float64{1.01, 1.5, 2.25, 3.4, 12.75, 101} {
		got, err := NumericToOdds(OddsToNumeric(v))
		require.NoError(t, err, "value: %v", v)
		assert.InDelta(t, v, got, 1e-9, "value: %v", v)
	}
}

func TestNumericToOdds_PositiveExponent(t *testing.T) {
	// 2 * 10^1 = 20
	got, err := NumericToOdds(pgtype.Numeric{Int: big.NewInt(2), Exp: 1, Valid: true})
	require.NoError(t, err)
	assert.InDelta(t, 20.0, got, 1e-9)
}

func TestNumericToOdds_NaN(t *testing.T) {
	_, err := NumericToOdds(pgtype.Numeric{NaN: true, Valid: true})
	assert.Error(t, err)
}

func TestNumericToOdds_Negative(t *testing.T) {
	_, err := NumericToOdds(pgtype.Numeric{Int: big.NewInt(-1500), Exp: -3, Valid: true})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "negative")
}
