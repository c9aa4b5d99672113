/*
This file contains common utility functions for converting between chain-side
integer amounts (uint128 liquidity, wei gas values) and the float64 domain the
solver operates in, with strict precision and finiteness checks.
*/

package utils

import (
	"errors"
	"fmt"
	"math"

	sdkmath "cosmossdk.io/math"
)

// Error definitions for zero-tolerance error handling
var (
	ErrInvalidPrecision = errors.New("precision is invalid")
	ErrAmountNil        = errors.New("amount is nil")
	ErrAmountNegative   = errors.New("amount is negative")
	ErrNotFinite        = errors.New("value is not finite")
	ErrConversionFailed = errors.New("conversion failed")
	ErrRateOutOfRange   = errors.New("fee rate is outside [0, 1]")
)

// WeiPrecision is the number of decimals separating wei from the native unit.
const WeiPrecision = 18

// SDKIntToFloat64 converts an SDK Int to float64, dividing by 10^precision.
// Used to unit-normalize raw chain amounts before they enter the solver.
func SDKIntToFloat64(amount sdkmath.Int, precision int) (float64, error) {
	if precision < 0 || precision > 18 {
		return 0, fmt.Errorf("%w: %d (must be between 0 and 18)", ErrInvalidPrecision, precision)
	}
	if amount.IsNil() {
		return 0, ErrAmountNil
	}
	if amount.IsNegative() {
		return 0, ErrAmountNegative
	}

	decAmount := sdkmath.LegacyNewDecFromInt(amount)
	factor := sdkmath.LegacyNewDec(1)
	for i := 0; i < precision; i++ {
		factor = factor.Mul(sdkmath.LegacyNewDec(10))
	}

	result := decAmount.Quo(factor)
	resultFloat, err := result.Float64()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrConversionFailed, err)
	}

	if math.IsNaN(resultFloat) || math.IsInf(resultFloat, 0) {
		return 0, fmt.Errorf("%w: result is %f", ErrNotFinite, resultFloat)
	}

	return resultFloat, nil
}

// WeiToUnit converts a wei amount to the native unit as float64.
func WeiToUnit(amount sdkmath.Int) (float64, error) {
	return SDKIntToFloat64(amount, WeiPrecision)
}

// FeeRateToPips converts a fractional fee rate to fee pips (millionths),
// rounding half away from zero. The rate must be a finite value in [0, 1].
func FeeRateToPips(phi float64) (uint32, error) {
	if math.IsNaN(phi) || math.IsInf(phi, 0) {
		return 0, fmt.Errorf("%w: rate is %f", ErrNotFinite, phi)
	}
	if phi < 0 || phi > 1 {
		return 0, fmt.Errorf("%w: %f", ErrRateOutOfRange, phi)
	}
	return uint32(math.Round(phi * 1_000_000)), nil
}

// ScaleIntByFloat multiplies an SDK Int by a non-negative float factor,
// truncating to an integer result. Used for fee-cap headroom on gas prices.
func ScaleIntByFloat(amount sdkmath.Int, factor float64) (sdkmath.Int, error) {
	if amount.IsNil() {
		return sdkmath.ZeroInt(), ErrAmountNil
	}
	if math.IsNaN(factor) || math.IsInf(factor, 0) {
		return sdkmath.ZeroInt(), fmt.Errorf("%w: factor is %f", ErrNotFinite, factor)
	}
	if factor < 0 {
		return sdkmath.ZeroInt(), ErrAmountNegative
	}

	dec, err := sdkmath.LegacyNewDecFromStr(fmt.Sprintf("%.8f", factor))
	if err != nil {
		return sdkmath.ZeroInt(), fmt.Errorf("%w: failed to create decimal from factor: %w", ErrConversionFailed, err)
	}

	result := sdkmath.LegacyNewDecFromInt(amount).Mul(dec).TruncateInt()
	if result.IsNegative() {
		return sdkmath.ZeroInt(), ErrAmountNegative
	}
	return result, nil
}
