package utils

import (
	"math"
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeeRateToPips(t *testing.T) {
	cases := []struct {
		name string
		phi  float64
		want uint32
	}{
		{"lower search bound", 0.0005, 500},
		{"upper search bound", 0.1, 100_000},
		{"zero", 0, 0},
		{"full rate", 1, 1_000_000},
		{"rounds down", 0.0123454, 12_345},
		{"rounds half up", 0.0123455, 12_346},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := FeeRateToPips(tc.phi)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFeeRateToPipsRejectsInvalidRates(t *testing.T) {
	for _, phi := range []float64{-0.01, 1.01, math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := FeeRateToPips(phi)
		assert.Error(t, err, "rate %f must be rejected", phi)
	}
}

func TestSDKIntToFloat64(t *testing.T) {
	value, err := SDKIntToFloat64(sdkmath.NewInt(1_500_000), 6)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, value, 1e-12)

	value, err = SDKIntToFloat64(sdkmath.NewInt(42), 0)
	require.NoError(t, err)
	assert.Equal(t, 42.0, value)
}

func TestSDKIntToFloat64Errors(t *testing.T) {
	_, err := SDKIntToFloat64(sdkmath.NewInt(1), -1)
	assert.ErrorIs(t, err, ErrInvalidPrecision)

	_, err = SDKIntToFloat64(sdkmath.NewInt(1), 19)
	assert.ErrorIs(t, err, ErrInvalidPrecision)

	_, err = SDKIntToFloat64(sdkmath.NewInt(-5), 6)
	assert.ErrorIs(t, err, ErrAmountNegative)

	_, err = SDKIntToFloat64(sdkmath.Int{}, 6)
	assert.ErrorIs(t, err, ErrAmountNil)
}

func TestWeiToUnit(t *testing.T) {
	oneAndAHalf, ok := sdkmath.NewIntFromString("1500000000000000000")
	require.True(t, ok)

	value, err := WeiToUnit(oneAndAHalf)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, value, 1e-12)
}

func TestScaleIntByFloat(t *testing.T) {
	scaled, err := ScaleIntByFloat(sdkmath.NewInt(30_000_000_000), 1.2)
	require.NoError(t, err)
	assert.Equal(t, sdkmath.NewInt(36_000_000_000), scaled)

	scaled, err = ScaleIntByFloat(sdkmath.NewInt(100), 0)
	require.NoError(t, err)
	assert.True(t, scaled.IsZero())
}

func TestScaleIntByFloatErrors(t *testing.T) {
	_, err := ScaleIntByFloat(sdkmath.Int{}, 1.2)
	assert.ErrorIs(t, err, ErrAmountNil)

	_, err = ScaleIntByFloat(sdkmath.NewInt(1), -1)
	assert.ErrorIs(t, err, ErrAmountNegative)

	_, err = ScaleIntByFloat(sdkmath.NewInt(1), math.NaN())
	assert.ErrorIs(t, err, ErrNotFinite)
}
