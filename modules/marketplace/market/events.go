package market

import (
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/marketlens/aptos-indexer/common/errs"
	"github.com/shopspring/decimal"
)

// Marketplace contract addresses on mainnet. Event type tags are matched
// against these exactly, events emitted by forks at other addresses are not
// recognized.
const (
	TokenModuleAddress    = "0x3"
	BlueMoveModuleAddress = "0xd1fd99c1944b84d1670a2536417e997864ad12303d19eac725891691b04d614e"
	TopazModuleAddress    = "0x2c7bccf7b31baf770fdbcc768d9e9cb3d87805e255355df5db32ac9a669010a2"
	Souffl3ModuleAddress  = "0xf6994988bd40261af9431cd6dd3fcf765569719e66322c7a05cc78a89cd366d4"
)

// TokenEvent is a decoded marketplace or token event. Resolve flattens the
// variant-specific payload into the uniform attribute bundle used by all
// downstream builders, accountAddress is the address of the event's emitting
// account.
type TokenEvent interface {
	Resolve(accountAddress string) ResolvedEvent
}

// MalformedEventError reports an event whose type tag is recognized but whose
// payload does not decode into the expected shape. Callers are expected to
// log and skip, a malformed event must never halt the batch.
type MalformedEventError struct {
	TxnVersion int64
	EventType  string
	Payload    json.RawMessage
	err        error
}

func (e MalformedEventError) Error() string {
	return fmt.Sprintf("malformed event %s at version %d: %v", e.EventType, e.TxnVersion, e.err)
}

func (e MalformedEventError) Unwrap() error {
	return e.err
}

// 0x3::token events

type MintTokenEvent struct {
	Amount decimal.Decimal `json:"amount"`
	ID     TokenDataID     `json:"id"`
}

type BurnTokenEvent struct {
	Amount decimal.Decimal `json:"amount"`
	ID     TokenID         `json:"id"`
}

type MutateTokenPropertyMapEvent struct {
	OldID TokenID `json:"old_id"`
	NewID TokenID `json:"new_id"`
}

type WithdrawTokenEvent struct {
	Amount decimal.Decimal `json:"amount"`
	ID     TokenID         `json:"id"`
}

type DepositTokenEvent struct {
	Amount decimal.Decimal `json:"amount"`
	ID     TokenID         `json:"id"`
}

// 0x3::token_transfers events

type OfferTokenEvent struct {
	Amount    decimal.Decimal `json:"amount"`
	ToAddress string          `json:"to_address"`
	TokenID   TokenID         `json:"token_id"`
}

type CancelTokenOfferEvent struct {
	Amount    decimal.Decimal `json:"amount"`
	ToAddress string          `json:"to_address"`
	TokenID   TokenID         `json:"token_id"`
}

type ClaimTokenEvent struct {
	Amount    decimal.Decimal `json:"amount"`
	ToAddress string          `json:"to_address"`
	TokenID   TokenID         `json:"token_id"`
}

// BlueMove marketplaceV2 events

type BlueMoveAuctionEvent struct {
	ID              TokenID         `json:"id"`
	MinSellingPrice decimal.Decimal `json:"min_selling_price"`
	Duration        decimal.Decimal `json:"duration"`
	StartTime       decimal.Decimal `json:"start_time"`
	OwnerAddress    string          `json:"owner_address"`
}

type BlueMoveBidEvent struct {
	ID           TokenID         `json:"id"`
	Bid          decimal.Decimal `json:"bid"`
	BiderAddress string          `json:"bider_address"`
}

type BlueMoveBuyEvent struct {
	ID           TokenID `json:"id"`
	BuyerAddress string  `json:"buyer_address"`
}

type BlueMoveChangePriceEvent struct {
	ID            TokenID         `json:"id"`
	Amount        decimal.Decimal `json:"amount"`
	SellerAddress string          `json:"seller_address"`
}

type BlueMoveClaimCoinsEvent struct {
	ID         TokenID `json:"id"`
	OwnerToken string  `json:"owner_token"`
}

type BlueMoveClaimTokenEvent struct {
	ID           TokenID `json:"id"`
	BiderAddress string  `json:"bider_address"`
}

type BlueMoveDelistEvent struct {
	ID            TokenID `json:"id"`
	SellerAddress string  `json:"seller_address"`
}

type BlueMoveListEvent struct {
	ID                 TokenID         `json:"id"`
	Amount             decimal.Decimal `json:"amount"`
	SellerAddress      string          `json:"seller_address"`
	RoyaltyPayee       string          `json:"royalty_payee"`
	RoyaltyNumerator   decimal.Decimal `json:"royalty_numerator"`
	RoyaltyDenominator decimal.Decimal `json:"royalty_denominator"`
}

// Topaz events

type TopazBidEvent struct {
	Timestamp decimal.Decimal `json:"timestamp"`
	BidID     string          `json:"bid_id"`
	TokenID   TokenID         `json:"token_id"`
	Deadline  decimal.Decimal `json:"deadline"`
	Price     decimal.Decimal `json:"price"`
	CoinType  TypeInfo        `json:"coin_type"`
	Amount    decimal.Decimal `json:"amount"`
	Buyer     string          `json:"buyer"`
}

type TopazBuyEvent struct {
	Timestamp decimal.Decimal `json:"timestamp"`
	ListingID string          `json:"listing_id"`
	TokenID   TokenID         `json:"token_id"`
	Price     decimal.Decimal `json:"price"`
	Amount    decimal.Decimal `json:"amount"`
	Seller    string          `json:"seller"`
	Buyer     string          `json:"buyer"`
}

type TopazCancelBidEvent struct {
	Timestamp decimal.Decimal `json:"timestamp"`
	BidID     string          `json:"bid_id"`
	TokenID   TokenID         `json:"token_id"`
	Deadline  decimal.Decimal `json:"deadline"`
	Price     decimal.Decimal `json:"price"`
	CoinType  TypeInfo        `json:"coin_type"`
	Amount    decimal.Decimal `json:"amount"`
	Buyer     string          `json:"buyer"`
}

type TopazCancelCollectionBidEvent struct {
	Timestamp      decimal.Decimal `json:"timestamp"`
	BidID          string          `json:"bid_id"`
	Creator        string          `json:"creator"`
	CollectionName string          `json:"collection_name"`
	Buyer          string          `json:"buyer"`
	Price          decimal.Decimal `json:"price"`
	CoinType       TypeInfo        `json:"coin_type"`
	Amount         decimal.Decimal `json:"amount"`
	Deadline       decimal.Decimal `json:"deadline"`
}

type TopazClaimEvent struct {
	Timestamp decimal.Decimal `json:"timestamp"`
	TokenID   TokenID         `json:"token_id"`
	Receiver  string          `json:"receiver"`
}

type TopazCollectionBidEvent struct {
	Timestamp      decimal.Decimal `json:"timestamp"`
	BidID          string          `json:"bid_id"`
	Creator        string          `json:"creator"`
	CollectionName string          `json:"collection_name"`
	Buyer          string          `json:"buyer"`
	Price          decimal.Decimal `json:"price"`
	CoinType       TypeInfo        `json:"coin_type"`
	Amount         decimal.Decimal `json:"amount"`
	Deadline       decimal.Decimal `json:"deadline"`
}

type TopazDelistEvent struct {
	Timestamp decimal.Decimal `json:"timestamp"`
	ListingID string          `json:"listing_id"`
	TokenID   TokenID         `json:"token_id"`
	Price     decimal.Decimal `json:"price"`
	Amount    decimal.Decimal `json:"amount"`
	Seller    string          `json:"seller"`
}

type TopazListEvent struct {
	Timestamp decimal.Decimal `json:"timestamp"`
	ListingID string          `json:"listing_id"`
	TokenID   TokenID         `json:"token_id"`
	Price     decimal.Decimal `json:"price"`
	Amount    decimal.Decimal `json:"amount"`
	Seller    string          `json:"seller"`
}

type TopazSellEvent struct {
	Timestamp decimal.Decimal `json:"timestamp"`
	BidID     string          `json:"bid_id"`
	TokenID   TokenID         `json:"token_id"`
	Deadline  decimal.Decimal `json:"deadline"`
	Price     decimal.Decimal `json:"price"`
	CoinType  TypeInfo        `json:"coin_type"`
	Amount    decimal.Decimal `json:"amount"`
	Buyer     string          `json:"buyer"`
	Seller    string          `json:"seller"`
}

type TopazSendEvent struct {
	Timestamp decimal.Decimal `json:"timestamp"`
	TokenID   TokenID         `json:"token_id"`
	Amount    decimal.Decimal `json:"amount"`
	Sender    string          `json:"sender"`
	Receiver  string          `json:"receiver"`
}

// Souffl3 events

// MarketID identifies a Souffl3 market instance.
type MarketID struct {
	MarketAddress string `json:"market_address"`
	Name          string `json:"name"`
}

type Souffl3BuyTokenEvent struct {
	ID           MarketID        `json:"id"`
	TokenID      TokenID         `json:"token_id"`
	TokenAmount  decimal.Decimal `json:"token_amount"`
	Buyer        string          `json:"buyer"`
	TokenOwner   string          `json:"token_owner"`
	CoinPerToken decimal.Decimal `json:"coin_per_token"`
}

type Souffl3CancelListTokenEvent struct {
	ID          MarketID        `json:"id"`
	TokenID     TokenID         `json:"token_id"`
	TokenAmount decimal.Decimal `json:"token_amount"`
}

type Souffl3ListTokenEvent struct {
	ID           MarketID        `json:"id"`
	TokenID      TokenID         `json:"token_id"`
	TokenOwner   string          `json:"token_owner"`
	TokenAmount  decimal.Decimal `json:"token_amount"`
	CoinPerToken decimal.Decimal `json:"coin_per_token"`
}

type Souffl3TokenListEvent struct {
	TokenID      TokenID         `json:"token_id"`
	Amount       decimal.Decimal `json:"amount"`
	MinPrice     decimal.Decimal `json:"min_price"`
	CoinTypeInfo TypeInfo        `json:"coin_type_info"`
}

type Souffl3TokenSwapEvent struct {
	TokenID      TokenID         `json:"token_id"`
	TokenBuyer   string          `json:"token_buyer"`
	TokenAmount  decimal.Decimal `json:"token_amount"`
	CoinAmount   decimal.Decimal `json:"coin_amount"`
	CoinTypeInfo TypeInfo        `json:"coin_type_info"`
}

// decodeAs builds a decoder for one event variant. The required field names
// must all be present at the top level of the payload, a recognized tag with a
// partial payload must fail loudly instead of decoding to zero values.
func decodeAs[T TokenEvent](required ...string) func(json.RawMessage) (TokenEvent, error) {
	return func(data json.RawMessage) (TokenEvent, error) {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(data, &fields); err != nil {
			return nil, errors.WithStack(err)
		}
		for _, field := range required {
			if _, ok := fields[field]; !ok {
				return nil, errors.Wrapf(errs.InvalidArgument, "missing field %q", field)
			}
		}
		var event T
		if err := json.Unmarshal(data, &event); err != nil {
			return nil, errors.WithStack(err)
		}
		return event, nil
	}
}

var eventDecoders = map[string]func(json.RawMessage) (TokenEvent, error){
	TokenModuleAddress + "::token::MintTokenEvent":                    decodeAs[MintTokenEvent]("amount", "id"),
	TokenModuleAddress + "::token::BurnTokenEvent":                    decodeAs[BurnTokenEvent]("amount", "id"),
	TokenModuleAddress + "::token::MutateTokenPropertyMapEvent":       decodeAs[MutateTokenPropertyMapEvent]("old_id", "new_id"),
	TokenModuleAddress + "::token::WithdrawEvent":                     decodeAs[WithdrawTokenEvent]("amount", "id"),
	TokenModuleAddress + "::token::DepositEvent":                      decodeAs[DepositTokenEvent]("amount", "id"),
	TokenModuleAddress + "::token_transfers::TokenOfferEvent":         decodeAs[OfferTokenEvent]("amount", "to_address", "token_id"),
	TokenModuleAddress + "::token_transfers::TokenCancelOfferEvent":   decodeAs[CancelTokenOfferEvent]("amount", "to_address", "token_id"),
	TokenModuleAddress + "::token_transfers::TokenClaimEvent":         decodeAs[ClaimTokenEvent]("amount", "to_address", "token_id"),
	BlueMoveModuleAddress + "::marketplaceV2::AuctionEvent":           decodeAs[BlueMoveAuctionEvent]("id", "min_selling_price", "duration", "start_time", "owner_address"),
	BlueMoveModuleAddress + "::marketplaceV2::BidEvent":               decodeAs[BlueMoveBidEvent]("id", "bid", "bider_address"),
	BlueMoveModuleAddress + "::marketplaceV2::BuyEvent":               decodeAs[BlueMoveBuyEvent]("id", "buyer_address"),
	BlueMoveModuleAddress + "::marketplaceV2::ChangePriceEvent":       decodeAs[BlueMoveChangePriceEvent]("id", "amount", "seller_address"),
	BlueMoveModuleAddress + "::marketplaceV2::ClaimCoinsEvent":        decodeAs[BlueMoveClaimCoinsEvent]("id", "owner_token"),
	BlueMoveModuleAddress + "::marketplaceV2::ClaimTokenEvent":        decodeAs[BlueMoveClaimTokenEvent]("id", "bider_address"),
	BlueMoveModuleAddress + "::marketplaceV2::DelistEvent":            decodeAs[BlueMoveDelistEvent]("id", "seller_address"),
	BlueMoveModuleAddress + "::marketplaceV2::ListEvent":              decodeAs[BlueMoveListEvent]("id", "amount", "seller_address", "royalty_payee", "royalty_numerator", "royalty_denominator"),
	TopazModuleAddress + "::events::BidEvent":                         decodeAs[TopazBidEvent]("timestamp", "bid_id", "token_id", "deadline", "price", "coin_type", "amount", "buyer"),
	TopazModuleAddress + "::events::BuyEvent":                         decodeAs[TopazBuyEvent]("timestamp", "listing_id", "token_id", "price", "amount", "seller", "buyer"),
	TopazModuleAddress + "::events::CancelBidEvent":                   decodeAs[TopazCancelBidEvent]("timestamp", "bid_id", "token_id", "deadline", "price", "coin_type", "amount", "buyer"),
	TopazModuleAddress + "::events::CancelCollectionBidEvent":         decodeAs[TopazCancelCollectionBidEvent]("timestamp", "bid_id", "creator", "collection_name", "buyer", "price", "coin_type", "amount", "deadline"),
	TopazModuleAddress + "::events::ClaimEvent":                       decodeAs[TopazClaimEvent]("timestamp", "token_id", "receiver"),
	TopazModuleAddress + "::events::CollectionBidEvent":               decodeAs[TopazCollectionBidEvent]("timestamp", "bid_id", "creator", "collection_name", "buyer", "price", "coin_type", "amount", "deadline"),
	TopazModuleAddress + "::events::DelistEvent":                      decodeAs[TopazDelistEvent]("timestamp", "listing_id", "token_id", "price", "amount", "seller"),
	TopazModuleAddress + "::events::ListEvent":                        decodeAs[TopazListEvent]("timestamp", "listing_id", "token_id", "price", "amount", "seller"),
	TopazModuleAddress + "::events::SellEvent":                        decodeAs[TopazSellEvent]("timestamp", "bid_id", "token_id", "deadline", "price", "coin_type", "amount", "buyer", "seller"),
	TopazModuleAddress + "::events::SendEvent":                        decodeAs[TopazSendEvent]("timestamp", "token_id", "amount", "sender", "receiver"),
	Souffl3ModuleAddress + "::FixedPriceMarket::BuyTokenEvent":        decodeAs[Souffl3BuyTokenEvent]("id", "token_id", "token_amount", "buyer", "token_owner", "coin_per_token"),
	Souffl3ModuleAddress + "::FixedPriceMarket::CancelListTokenEvent": decodeAs[Souffl3CancelListTokenEvent]("id", "token_id", "token_amount"),
	Souffl3ModuleAddress + "::FixedPriceMarket::ListTokenEvent":       decodeAs[Souffl3ListTokenEvent]("id", "token_id", "token_owner", "token_amount", "coin_per_token"),
	Souffl3ModuleAddress + "::TokenCoinSwap::TokenListingEvent":       decodeAs[Souffl3TokenListEvent]("token_id", "amount", "min_price", "coin_type_info"),
	Souffl3ModuleAddress + "::TokenCoinSwap::TokenSwapEvent":          decodeAs[Souffl3TokenSwapEvent]("token_id", "token_buyer", "token_amount", "coin_amount", "coin_type_info"),
}

// DecodeEvent decodes an on-chain event payload by its type tag. Unrecognized
// tags return (nil, nil), recognized tags with payloads that fail to decode
// return a MalformedEventError carrying the transaction version and raw
// payload for diagnostics.
func DecodeEvent(eventType string, data json.RawMessage, txnVersion int64) (TokenEvent, error) {
	decode, ok := eventDecoders[eventType]
	if !ok {
		return nil, nil
	}
	event, err := decode(data)
	if err != nil {
		return nil, MalformedEventError{
			TxnVersion: txnVersion,
			EventType:  eventType,
			Payload:    data,
			err:        err,
		}
	}
	return event, nil
}
