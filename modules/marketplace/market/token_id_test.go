package market

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenDataIDString(t *testing.T) {
	id := TokenDataID{
		Creator:    "0xabc",
		Collection: "Aptos Monkeys",
		Name:       "Monkey #1",
	}
	assert.Equal(t, "0xabc::Aptos Monkeys::Monkey #1", id.String())
}

func TestTokenDataIDHash(t *testing.T) {
	id := TokenDataID{
		Creator:    "0xabc",
		Collection: "Aptos Monkeys",
		Name:       "Monkey #1",
	}
	sum := sha256.Sum256([]byte("0xabc::Aptos Monkeys::Monkey #1"))
	assert.Equal(t, hex.EncodeToString(sum[:]), id.Hash())
}

func TestCollectionDataID(t *testing.T) {
	id := TokenDataID{
		Creator:    "0xabc",
		Collection: "Aptos Monkeys",
		Name:       "Monkey #1",
	}
	collection := id.CollectionDataID()
	assert.Equal(t, "0xabc::Aptos Monkeys", collection.String())

	sum := sha256.Sum256([]byte("0xabc::Aptos Monkeys"))
	assert.Equal(t, hex.EncodeToString(sum[:]), collection.Hash())
}

func TestNameTruncation(t *testing.T) {
	longName := strings.Repeat("a", 200)
	id := TokenDataID{
		Creator:    "0xabc",
		Collection: strings.Repeat("b", 129),
		Name:       longName,
	}
	assert.Len(t, id.NameTrunc(), 128)
	assert.Len(t, id.CollectionNameTrunc(), 128)
	// identity hash is always computed over the untruncated display form
	sum := sha256.Sum256([]byte(id.String()))
	assert.Equal(t, hex.EncodeToString(sum[:]), id.Hash())

	short := TokenDataID{Creator: "0xabc", Collection: "col", Name: "name"}
	assert.Equal(t, "name", short.NameTrunc())
	assert.Equal(t, "col", short.CollectionNameTrunc())
}

func TestTruncateStringMultibyte(t *testing.T) {
	s := strings.Repeat("日", 130)
	truncated := truncateString(s, 128)
	assert.Equal(t, 128, len([]rune(truncated)))
	assert.Equal(t, strings.Repeat("日", 128), truncated)
}

func TestTokenDataIDUnmarshalJSON(t *testing.T) {
	type testcase struct {
		name        string
		input       string
		expected    TokenDataID
		shouldError bool
	}
	testcases := []testcase{
		{
			name:  "valid",
			input: `{"creator":"0xabc","collection":"col","name":"token"}`,
			expected: TokenDataID{
				Creator:    "0xabc",
				Collection: "col",
				Name:       "token",
			},
		},
		{
			name:  "empty values are valid",
			input: `{"creator":"","collection":"","name":""}`,
		},
		{
			name:        "missing creator",
			input:       `{"collection":"col","name":"token"}`,
			shouldError: true,
		},
		{
			name:        "missing name",
			input:       `{"creator":"0xabc","collection":"col"}`,
			shouldError: true,
		},
		{
			name:        "not an object",
			input:       `"0xabc::col::token"`,
			shouldError: true,
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			var id TokenDataID
			err := json.Unmarshal([]byte(tc.input), &id)
			if tc.shouldError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, id)
		})
	}
}

func TestTokenIDUnmarshalJSON(t *testing.T) {
	type testcase struct {
		name        string
		input       string
		expected    TokenID
		shouldError bool
	}
	testcases := []testcase{
		{
			name:  "valid",
			input: `{"token_data_id":{"creator":"0xabc","collection":"col","name":"token"},"property_version":"3"}`,
			expected: TokenID{
				TokenDataID: TokenDataID{
					Creator:    "0xabc",
					Collection: "col",
					Name:       "token",
				},
				PropertyVersion: decimal.NewFromInt(3),
			},
		},
		{
			name:        "missing token_data_id",
			input:       `{"property_version":"3"}`,
			shouldError: true,
		},
		{
			name:        "missing property_version",
			input:       `{"token_data_id":{"creator":"0xabc","collection":"col","name":"token"}}`,
			shouldError: true,
		},
		{
			name:        "invalid property_version",
			input:       `{"token_data_id":{"creator":"0xabc","collection":"col","name":"token"},"property_version":"abc"}`,
			shouldError: true,
		},
		{
			name:        "malformed token_data_id",
			input:       `{"token_data_id":{"creator":"0xabc"},"property_version":"3"}`,
			shouldError: true,
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			var id TokenID
			err := json.Unmarshal([]byte(tc.input), &id)
			if tc.shouldError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected.TokenDataID, id.TokenDataID)
			assert.True(t, tc.expected.PropertyVersion.Equal(id.PropertyVersion))
		})
	}
}

func TestTypeInfoString(t *testing.T) {
	typeInfo := TypeInfo{
		AccountAddress: "0x1",
		ModuleName:     "aptos_coin",
		StructName:     "AptosCoin",
	}
	assert.Equal(t, "0x1::aptos_coin::AptosCoin", typeInfo.String())
}
