package infra

import (
	"fmt"
	"math"
	"math/big"

	"github.com/jackc/pgx/v5/pgtype"
)

// OddsScale is the number of decimal places odds are stored with (numeric(8,3)).
const OddsScale = 3

// OddsToNumeric converts decimal odds to pgtype.Numeric, rounding to OddsScale places.
// Zero means the feed carried no odds and is written as NULL.
func OddsToNumeric(v float64) pgtype.Numeric {
	if v == 0 {
		return pgtype.Numeric{}
	}
	scaled := math.Round(v * math.Pow10(OddsScale))
	return pgtype.Numeric{
		Int:              big.NewInt(int64(scaled)),
		Exp:              -OddsScale,
		InfinityModifier: pgtype.Finite,
		Valid:            true,
	}
}

// NumericToOdds converts a numeric odds column back to float64. NULL reads as 0.
func NumericToOdds(n pgtype.Numeric) (float64, error) {
	if !n.Valid {
		return 0, nil
	}
	if n.NaN || n.InfinityModifier != pgtype.Finite {
		return 0, fmt.Errorf("numeric odds value is not finite")
	}
	f, err := n.Float64Value()
	if err != nil {
		return 0, fmt.Errorf("convert odds: %w", err)
	}
	if f.Float64 < 0 {
		return 0, fmt.Errorf("numeric odds value %v is negative", f.Float64)
	}
	return f.Float64, nil
}
