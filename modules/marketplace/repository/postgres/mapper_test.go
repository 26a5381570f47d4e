package postgres

import (
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumericDecimalRoundTrip(t *testing.T) {
	type testcase struct {
		name  string
		value string
	}
	testcases := []testcase{
		{name: "zero", value: "0"},
		{name: "integer", value: "123456789"},
		{name: "fractional", value: "1234.5678"},
		{name: "negative", value: "-42"},
		{name: "large", value: "340282366920938463463374607431768211455"},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			src, err := decimal.NewFromString(tc.value)
			require.NoError(t, err)

			numeric, err := numericFromDecimal(src)
			require.NoError(t, err)
			assert.True(t, numeric.Valid)

			result, err := decimalFromNumeric(numeric)
			require.NoError(t, err)
			assert.True(t, result.Equal(src))
		})
	}
}

func TestNumericFromDecimalPtrNil(t *testing.T) {
	numeric, err := numericFromDecimalPtr(nil)
	require.NoError(t, err)
	assert.False(t, numeric.Valid)
}

func TestDecimalPtrFromNumericInvalid(t *testing.T) {
	result, err := decimalPtrFromNumeric(pgtype.Numeric{})
	require.NoError(t, err)
	assert.Nil(t, result)
}
