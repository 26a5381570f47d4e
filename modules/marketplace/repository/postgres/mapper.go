package postgres

import (
	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

func numericFromDecimal(src decimal.Decimal) (pgtype.Numeric, error) {
	var result pgtype.Numeric
	if err := result.UnmarshalJSON([]byte(src.String())); err != nil {
		return pgtype.Numeric{}, errors.WithStack(err)
	}
	return result, nil
}

func numericFromDecimalPtr(src *decimal.Decimal) (pgtype.Numeric, error) {
	if src == nil {
		return pgtype.Numeric{}, nil
	}
	return numericFromDecimal(*src)
}

func decimalFromNumeric(src pgtype.Numeric) (decimal.Decimal, error) {
	if !src.Valid {
		return decimal.Decimal{}, nil
	}
	bytes, err := src.MarshalJSON()
	if err != nil {
		return decimal.Decimal{}, errors.WithStack(err)
	}
	result, err := decimal.NewFromString(string(bytes))
	if err != nil {
		return decimal.Decimal{}, errors.WithStack(err)
	}
	return result, nil
}

func decimalPtrFromNumeric(src pgtype.Numeric) (*decimal.Decimal, error) {
	if !src.Valid {
		return nil, nil
	}
	result, err := decimalFromNumeric(src)
	if err != nil {
		return nil, err
	}
	return &result, nil
}
