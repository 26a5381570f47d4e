package market

import (
	"encoding/json"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEventUnrecognized(t *testing.T) {
	type testcase struct {
		name      string
		eventType string
	}
	testcases := []testcase{
		{
			name:      "unknown module",
			eventType: "0x1::coin::DepositEvent",
		},
		{
			name:      "known struct at wrong address",
			eventType: "0xdeadbeef::marketplaceV2::ListEvent",
		},
		{
			name:      "unknown struct at known address",
			eventType: TopazModuleAddress + "::events::UnknownEvent",
		},
		{
			name:      "empty",
			eventType: "",
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			event, err := DecodeEvent(tc.eventType, json.RawMessage(`{}`), 100)
			assert.NoError(t, err)
			assert.Nil(t, event)
		})
	}
}

func TestDecodeEventMalformed(t *testing.T) {
	eventType := BlueMoveModuleAddress + "::marketplaceV2::ListEvent"
	payload := json.RawMessage(`{"id":{"token_data_id":{"creator":"0xabc"}}}`)

	event, err := DecodeEvent(eventType, payload, 42)
	assert.Nil(t, event)
	require.Error(t, err)

	var malformedErr MalformedEventError
	require.True(t, errors.As(err, &malformedErr))
	assert.Equal(t, int64(42), malformedErr.TxnVersion)
	assert.Equal(t, eventType, malformedErr.EventType)
	assert.Equal(t, payload, malformedErr.Payload)
	assert.Contains(t, malformedErr.Error(), "version 42")
}

func TestDecodeEventInvalidJSON(t *testing.T) {
	event, err := DecodeEvent(TokenModuleAddress+"::token::DepositEvent", json.RawMessage(`{not json`), 7)
	assert.Nil(t, event)
	var malformedErr MalformedEventError
	require.True(t, errors.As(err, &malformedErr))
}

func TestDecodeEventEmptyPayload(t *testing.T) {
	// A recognized tag with an empty payload must fail instead of decoding to
	// a zero-value event, a zero TokenDataID hashes to a valid-looking key.
	for eventType := range eventDecoders {
		t.Run(eventType, func(t *testing.T) {
			event, err := DecodeEvent(eventType, json.RawMessage(`{}`), 9)
			assert.Nil(t, event)
			var malformedErr MalformedEventError
			require.True(t, errors.As(err, &malformedErr))
			assert.Equal(t, int64(9), malformedErr.TxnVersion)
		})
	}
}

func TestDecodeEventMissingField(t *testing.T) {
	type testcase struct {
		name      string
		eventType string
		payload   string
	}
	testcases := []testcase{
		{
			name:      "mint without id",
			eventType: TokenModuleAddress + "::token::MintTokenEvent",
			payload:   `{"amount":"5"}`,
		},
		{
			name:      "bluemove list without seller",
			eventType: BlueMoveModuleAddress + "::marketplaceV2::ListEvent",
			payload: `{
				"id": {
					"token_data_id": {"creator": "0xabc", "collection": "col", "name": "token"},
					"property_version": "0"
				},
				"amount": "1",
				"royalty_payee": "0xroyalty",
				"royalty_numerator": "5",
				"royalty_denominator": "100"
			}`,
		},
		{
			name:      "topaz buy without price",
			eventType: TopazModuleAddress + "::events::BuyEvent",
			payload: `{
				"timestamp": "1680000000000000",
				"listing_id": "123",
				"token_id": {
					"token_data_id": {"creator": "0xabc", "collection": "col", "name": "token"},
					"property_version": "0"
				},
				"amount": "1",
				"seller": "0xseller",
				"buyer": "0xbuyer"
			}`,
		},
		{
			name:      "null payload",
			eventType: TokenModuleAddress + "::token::DepositEvent",
			payload:   `null`,
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			event, err := DecodeEvent(tc.eventType, json.RawMessage(tc.payload), 9)
			assert.Nil(t, event)
			var malformedErr MalformedEventError
			require.True(t, errors.As(err, &malformedErr))
		})
	}
}

func TestDecodeMintTokenEvent(t *testing.T) {
	payload := json.RawMessage(`{
		"amount": "5",
		"id": {"creator": "0xabc", "collection": "col", "name": "token"}
	}`)
	event, err := DecodeEvent(TokenModuleAddress+"::token::MintTokenEvent", payload, 1)
	require.NoError(t, err)
	mint, ok := event.(MintTokenEvent)
	require.True(t, ok)
	assert.True(t, decimal.NewFromInt(5).Equal(mint.Amount))
	assert.Equal(t, TokenDataID{Creator: "0xabc", Collection: "col", Name: "token"}, mint.ID)
}

func TestDecodeDepositTokenEvent(t *testing.T) {
	payload := json.RawMessage(`{
		"amount": "1",
		"id": {
			"token_data_id": {"creator": "0xabc", "collection": "col", "name": "token"},
			"property_version": "2"
		}
	}`)
	event, err := DecodeEvent(TokenModuleAddress+"::token::DepositEvent", payload, 1)
	require.NoError(t, err)
	deposit, ok := event.(DepositTokenEvent)
	require.True(t, ok)
	assert.True(t, decimal.NewFromInt(2).Equal(deposit.ID.PropertyVersion))
}

func TestDecodeBlueMoveListEvent(t *testing.T) {
	payload := json.RawMessage(`{
		"id": {
			"token_data_id": {"creator": "0xabc", "collection": "col", "name": "token"},
			"property_version": "0"
		},
		"amount": "1",
		"seller_address": "0xseller",
		"royalty_payee": "0xroyalty",
		"royalty_numerator": "5",
		"royalty_denominator": "100"
	}`)
	event, err := DecodeEvent(BlueMoveModuleAddress+"::marketplaceV2::ListEvent", payload, 1)
	require.NoError(t, err)
	list, ok := event.(BlueMoveListEvent)
	require.True(t, ok)
	assert.Equal(t, "0xseller", list.SellerAddress)
	assert.True(t, decimal.NewFromInt(1).Equal(list.Amount))
	assert.True(t, decimal.NewFromInt(5).Equal(list.RoyaltyNumerator))
}

func TestDecodeTopazSellEvent(t *testing.T) {
	payload := json.RawMessage(`{
		"timestamp": "1680000000000000",
		"bid_id": "123",
		"token_id": {
			"token_data_id": {"creator": "0xabc", "collection": "col", "name": "token"},
			"property_version": "0"
		},
		"deadline": "1690000000000000",
		"price": "1000000",
		"coin_type": {"account_address": "0x1", "module_name": "aptos_coin", "struct_name": "AptosCoin"},
		"amount": "1",
		"buyer": "0xbuyer",
		"seller": "0xseller"
	}`)
	event, err := DecodeEvent(TopazModuleAddress+"::events::SellEvent", payload, 1)
	require.NoError(t, err)
	sell, ok := event.(TopazSellEvent)
	require.True(t, ok)
	assert.Equal(t, "0xbuyer", sell.Buyer)
	assert.Equal(t, "0xseller", sell.Seller)
	assert.Equal(t, "0x1::aptos_coin::AptosCoin", sell.CoinType.String())
	assert.True(t, decimal.NewFromInt(1000000).Equal(sell.Price))
}

func TestDecodeTopazCollectionBidEvent(t *testing.T) {
	payload := json.RawMessage(`{
		"timestamp": "1680000000000000",
		"bid_id": "55",
		"creator": "0xabc",
		"collection_name": "col",
		"buyer": "0xbuyer",
		"price": "777",
		"coin_type": {"account_address": "0x1", "module_name": "aptos_coin", "struct_name": "AptosCoin"},
		"amount": "2",
		"deadline": "1690000000000000"
	}`)
	event, err := DecodeEvent(TopazModuleAddress+"::events::CollectionBidEvent", payload, 1)
	require.NoError(t, err)
	bid, ok := event.(TopazCollectionBidEvent)
	require.True(t, ok)
	assert.Equal(t, "0xabc", bid.Creator)
	assert.Equal(t, "col", bid.CollectionName)
}

func TestDecodeSouffl3BuyTokenEvent(t *testing.T) {
	payload := json.RawMessage(`{
		"id": {"market_address": "0xmarket", "name": "main"},
		"token_id": {
			"token_data_id": {"creator": "0xabc", "collection": "col", "name": "token"},
			"property_version": "0"
		},
		"token_amount": "1",
		"buyer": "0xbuyer",
		"token_owner": "0xowner",
		"coin_per_token": "500"
	}`)
	event, err := DecodeEvent(Souffl3ModuleAddress+"::FixedPriceMarket::BuyTokenEvent", payload, 1)
	require.NoError(t, err)
	buy, ok := event.(Souffl3BuyTokenEvent)
	require.True(t, ok)
	assert.Equal(t, "0xmarket", buy.ID.MarketAddress)
	assert.Equal(t, "0xowner", buy.TokenOwner)
	assert.True(t, decimal.NewFromInt(500).Equal(buy.CoinPerToken))
}

func TestDecodeSouffl3TokenSwapEvent(t *testing.T) {
	payload := json.RawMessage(`{
		"token_id": {
			"token_data_id": {"creator": "0xabc", "collection": "col", "name": "token"},
			"property_version": "0"
		},
		"token_buyer": "0xbuyer",
		"token_amount": "1",
		"coin_amount": "900",
		"coin_type_info": {"account_address": "0x1", "module_name": "aptos_coin", "struct_name": "AptosCoin"}
	}`)
	event, err := DecodeEvent(Souffl3ModuleAddress+"::TokenCoinSwap::TokenSwapEvent", payload, 1)
	require.NoError(t, err)
	swap, ok := event.(Souffl3TokenSwapEvent)
	require.True(t, ok)
	assert.Equal(t, "0xbuyer", swap.TokenBuyer)
	assert.True(t, decimal.NewFromInt(900).Equal(swap.CoinAmount))
}

func TestEventDecoderCount(t *testing.T) {
	assert.Len(t, eventDecoders, 31)
}
