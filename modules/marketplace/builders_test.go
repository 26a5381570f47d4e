package marketplace

import (
	"strings"
	"testing"
	"time"

	"github.com/marketlens/aptos-indexer/core/types"
	"github.com/marketlens/aptos-indexer/modules/marketplace/market"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func testResolvedEvent() market.ResolvedEvent {
	return market.ResolvedEvent{
		TokenDataID: market.TokenDataID{
			Creator:    "0xc0ffee",
			Collection: "Aptos Monkeys",
			Name:       "Monkey #1",
		},
		PropertyVersion: decimal.NewFromInt(2),
		FromAddress:     lo.ToPtr("0xseller"),
		ToAddress:       lo.ToPtr("0xbuyer"),
		TokenAmount:     decimal.NewFromInt(1),
		CoinType:        lo.ToPtr("0x1::aptos_coin::AptosCoin"),
		CoinAmount:      lo.ToPtr(decimal.NewFromInt(5000)),
	}
}

func TestAffectsListing(t *testing.T) {
	type testcase struct {
		name      string
		eventType string
		affects   bool
		active    bool
	}
	testcases := []testcase{
		{
			name:      "bluemove_list",
			eventType: market.BlueMoveModuleAddress + "::marketplaceV2::ListEvent",
			affects:   true,
			active:    true,
		},
		{
			name:      "bluemove_delist",
			eventType: market.BlueMoveModuleAddress + "::marketplaceV2::DelistEvent",
			affects:   true,
			active:    false,
		},
		{
			name:      "bluemove_auction",
			eventType: market.BlueMoveModuleAddress + "::marketplaceV2::AuctionEvent",
			affects:   true,
			active:    true,
		},
		{
			name:      "topaz_buy",
			eventType: market.TopazModuleAddress + "::events::BuyEvent",
			affects:   true,
			active:    false,
		},
		{
			name:      "topaz_sell",
			eventType: market.TopazModuleAddress + "::events::SellEvent",
			affects:   true,
			active:    false,
		},
		{
			name:      "topaz_send",
			eventType: market.TopazModuleAddress + "::events::SendEvent",
			affects:   true,
			active:    false,
		},
		{
			name:      "souffl3_cancel_list",
			eventType: market.Souffl3ModuleAddress + "::FixedPriceMarket::CancelListTokenEvent",
			affects:   true,
			active:    false,
		},
		{
			name:      "souffl3_token_listing",
			eventType: market.Souffl3ModuleAddress + "::TokenCoinSwap::TokenListingEvent",
			affects:   true,
			active:    true,
		},
		{
			name:      "mint_token",
			eventType: market.TokenModuleAddress + "::token::MintTokenEvent",
			affects:   false,
		},
		{
			name:      "token_offer",
			eventType: market.TokenModuleAddress + "::token_transfers::TokenOfferEvent",
			affects:   false,
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.affects, affectsListing(tc.eventType))
			if tc.affects {
				assert.Equal(t, tc.active, listingActive(tc.eventType))
			}
		})
	}
}

func TestBuildListing(t *testing.T) {
	now := time.Now().UTC()
	resolved := testResolvedEvent()

	t.Run("active listing", func(t *testing.T) {
		event := types.Event{
			Type:           market.TopazModuleAddress + "::events::ListEvent",
			AccountAddress: "0xacc",
		}
		listing := buildListing(42, now, event, resolved)
		if !assert.NotNil(t, listing) {
			return
		}
		assert.Equal(t, resolved.TokenDataID.Hash(), listing.TokenDataIDHash)
		assert.Equal(t, resolved.TokenDataID.CollectionDataID().Hash(), listing.CollectionDataIDHash)
		assert.Equal(t, market.TopazModuleAddress, listing.MarketAddress)
		assert.Equal(t, "0xseller", listing.Seller)
		assert.True(t, listing.Price.Equal(decimal.NewFromInt(5000)))
		assert.Equal(t, event.Type, listing.EventType)
		assert.Equal(t, int64(42), listing.LastTransactionVersion)
		// listing rows keep the raw collection and token names
		assert.Equal(t, "Aptos Monkeys", listing.CollectionName)
		assert.Equal(t, "Monkey #1", listing.Name)
	})

	t.Run("delist clears market address", func(t *testing.T) {
		event := types.Event{
			Type:           market.TopazModuleAddress + "::events::DelistEvent",
			AccountAddress: "0xacc",
		}
		listing := buildListing(42, now, event, resolved)
		if !assert.NotNil(t, listing) {
			return
		}
		assert.Equal(t, "", listing.MarketAddress)
	})

	t.Run("seller and price default to zero values", func(t *testing.T) {
		event := types.Event{
			Type:           market.BlueMoveModuleAddress + "::marketplaceV2::BuyEvent",
			AccountAddress: "0xacc",
		}
		bare := resolved
		bare.FromAddress = nil
		bare.CoinAmount = nil
		listing := buildListing(42, now, event, bare)
		if !assert.NotNil(t, listing) {
			return
		}
		assert.Equal(t, "", listing.Seller)
		assert.True(t, listing.Price.IsZero())
	})

	t.Run("non-listing event yields nil", func(t *testing.T) {
		event := types.Event{
			Type:           market.TokenModuleAddress + "::token::DepositEvent",
			AccountAddress: "0xacc",
		}
		assert.Nil(t, buildListing(42, now, event, resolved))
	})
}

func TestBuildTokenActivity(t *testing.T) {
	now := time.Now().UTC()
	resolved := testResolvedEvent()

	event := types.Event{
		Type:           market.TopazModuleAddress + "::events::SellEvent",
		AccountAddress: "0xacc",
		CreationNumber: 7,
		SequenceNumber: 11,
	}

	activity := buildTokenActivity(42, now, event, resolved)
	assert.Equal(t, int64(42), activity.TransactionVersion)
	assert.Equal(t, "0xacc", activity.EventAccountAddress)
	assert.Equal(t, int64(7), activity.EventCreationNumber)
	assert.Equal(t, int64(11), activity.EventSequenceNumber)
	assert.Equal(t, resolved.TokenDataID.Hash(), activity.TokenDataIDHash)
	assert.Equal(t, event.Type, activity.TransferType)
	assert.Equal(t, now, activity.TransactionTimestamp)
	assert.Equal(t, now, activity.InsertedAt)
}

func TestBuildTokenActivityTruncatesNames(t *testing.T) {
	now := time.Now().UTC()
	longName := strings.Repeat("x", 200)
	resolved := testResolvedEvent()
	resolved.TokenDataID.Name = longName

	event := types.Event{
		Type:           market.TopazModuleAddress + "::events::SellEvent",
		AccountAddress: "0xacc",
	}

	activity := buildTokenActivity(42, now, event, resolved)
	assert.Len(t, activity.Name, 128)
	// the hash stays derived from the untruncated identity
	assert.Equal(t, resolved.TokenDataID.Hash(), activity.TokenDataIDHash)
}

func TestBuildVolumeSample(t *testing.T) {
	now := time.Now().UTC()
	resolved := testResolvedEvent()

	type testcase struct {
		name      string
		eventType string
		isSale    bool
	}
	testcases := []testcase{
		{name: "topaz_buy", eventType: market.TopazModuleAddress + "::events::BuyEvent", isSale: true},
		{name: "topaz_sell", eventType: market.TopazModuleAddress + "::events::SellEvent", isSale: true},
		{name: "souffl3_swap", eventType: market.Souffl3ModuleAddress + "::TokenCoinSwap::TokenSwapEvent", isSale: true},
		{name: "topaz_list", eventType: market.TopazModuleAddress + "::events::ListEvent", isSale: false},
		{name: "topaz_bid", eventType: market.TopazModuleAddress + "::events::BidEvent", isSale: false},
		{name: "deposit", eventType: market.TokenModuleAddress + "::token::DepositEvent", isSale: false},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			event := types.Event{Type: tc.eventType, AccountAddress: "0xacc", CreationNumber: 4, SequenceNumber: 9}
			sample := buildVolumeSample(42, now, event, resolved)
			if !tc.isSale {
				assert.Nil(t, sample)
				return
			}
			if !assert.NotNil(t, sample) {
				return
			}
			assert.Equal(t, resolved.TokenDataID.CollectionDataID().Hash(), sample.CollectionDataIDHash)
			assert.Equal(t, resolved.TokenDataID.Hash(), sample.TokenDataIDHash)
			assert.True(t, sample.Volume.Equal(decimal.NewFromInt(5000)))
			assert.Equal(t, int64(42), sample.TxnVersion)
			assert.Equal(t, "0xacc", sample.EventAccountAddress)
			assert.Equal(t, int64(4), sample.EventCreationNumber)
			assert.Equal(t, int64(9), sample.EventSequenceNumber)
		})
	}
}

func TestBuildVolumeSampleDefaultsToZero(t *testing.T) {
	resolved := testResolvedEvent()
	resolved.CoinAmount = nil
	sample := buildVolumeSample(42, time.Now().UTC(), types.Event{
		Type: market.BlueMoveModuleAddress + "::marketplaceV2::BuyEvent",
	}, resolved)
	if assert.NotNil(t, sample) {
		assert.True(t, sample.Volume.IsZero())
	}
}
