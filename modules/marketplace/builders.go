package marketplace

import (
	"strings"
	"time"

	"github.com/marketlens/aptos-indexer/core/types"
	"github.com/marketlens/aptos-indexer/modules/marketplace/internal/entity"
	"github.com/marketlens/aptos-indexer/modules/marketplace/market"
	"github.com/shopspring/decimal"
)

// buildTokenActivity produces the append-only activity row for any recognized
// event. Collection and token names are truncated here, listing rows keep the
// raw values.
func buildTokenActivity(txnVersion int64, txnTimestamp time.Time, event types.Event, resolved market.ResolvedEvent) *entity.TokenActivity {
	return &entity.TokenActivity{
		TransactionVersion:   txnVersion,
		EventAccountAddress:  event.AccountAddress,
		EventCreationNumber:  event.CreationNumber,
		EventSequenceNumber:  event.SequenceNumber,
		CollectionDataIDHash: resolved.TokenDataID.CollectionDataID().Hash(),
		TokenDataIDHash:      resolved.TokenDataID.Hash(),
		PropertyVersion:      resolved.PropertyVersion,
		CreatorAddress:       resolved.TokenDataID.Creator,
		CollectionName:       resolved.TokenDataID.CollectionNameTrunc(),
		Name:                 resolved.TokenDataID.NameTrunc(),
		TransferType:         event.Type,
		FromAddress:          resolved.FromAddress,
		ToAddress:            resolved.ToAddress,
		TokenAmount:          resolved.TokenAmount,
		CoinType:             resolved.CoinType,
		CoinAmount:           resolved.CoinAmount,
		TransactionTimestamp: txnTimestamp,
		InsertedAt:           txnTimestamp,
	}
}

var listingEventMarkers = []string{"List", "Delist", "Buy", "Sell", "Change", "CancelList", "Fill", "Send", "Auction"}

func affectsListing(eventType string) bool {
	for _, marker := range listingEventMarkers {
		if strings.Contains(eventType, marker) {
			return true
		}
	}
	return false
}

// listingActive reports whether the event leaves the token actively listed.
// Inactive listings keep their row but have the market address cleared.
func listingActive(eventType string) bool {
	if strings.Contains(eventType, "CancelList") || strings.Contains(eventType, "Delist") {
		return false
	}
	return strings.Contains(eventType, "List") || strings.Contains(eventType, "Auction")
}

// buildListing produces the current-listing row for an event, or nil when the
// event does not affect listing state.
func buildListing(txnVersion int64, txnTimestamp time.Time, event types.Event, resolved market.ResolvedEvent) *entity.CurrentMarketplaceListing {
	if !affectsListing(event.Type) {
		return nil
	}
	marketAddress := ""
	if listingActive(event.Type) {
		marketAddress = strings.SplitN(event.Type, "::", 2)[0]
	}
	seller := ""
	if resolved.FromAddress != nil {
		seller = *resolved.FromAddress
	}
	price := decimal.Decimal{}
	if resolved.CoinAmount != nil {
		price = *resolved.CoinAmount
	}
	return &entity.CurrentMarketplaceListing{
		TokenDataIDHash:        resolved.TokenDataID.Hash(),
		CollectionDataIDHash:   resolved.TokenDataID.CollectionDataID().Hash(),
		PropertyVersion:        resolved.PropertyVersion,
		CreatorAddress:         resolved.TokenDataID.Creator,
		CollectionName:         resolved.TokenDataID.Collection,
		Name:                   resolved.TokenDataID.Name,
		MarketAddress:          marketAddress,
		Seller:                 seller,
		Price:                  price,
		Amount:                 resolved.TokenAmount,
		EventType:              event.Type,
		InsertedAt:             txnTimestamp,
		LastTransactionVersion: txnVersion,
	}
}

func affectsVolume(eventType string) bool {
	return strings.Contains(eventType, "Buy") ||
		strings.Contains(eventType, "Sell") ||
		strings.Contains(eventType, "Swap")
}

// volumeSample is one trade's contribution to the collection and token volume
// tables. The event identity keys the append-only rows, two sales in the same
// transaction must not collapse into one sample.
type volumeSample struct {
	CollectionDataIDHash string
	TokenDataIDHash      string
	Volume               decimal.Decimal
	Timestamp            time.Time
	TxnVersion           int64
	EventAccountAddress  string
	EventCreationNumber  int64
	EventSequenceNumber  int64
}

// buildVolumeSample extracts the traded volume from a sale event, or nil when
// the event is not a sale.
func buildVolumeSample(txnVersion int64, txnTimestamp time.Time, event types.Event, resolved market.ResolvedEvent) *volumeSample {
	if !affectsVolume(event.Type) {
		return nil
	}
	volume := decimal.Decimal{}
	if resolved.CoinAmount != nil {
		volume = *resolved.CoinAmount
	}
	return &volumeSample{
		CollectionDataIDHash: resolved.TokenDataID.CollectionDataID().Hash(),
		TokenDataIDHash:      resolved.TokenDataID.Hash(),
		Volume:               volume,
		Timestamp:            txnTimestamp,
		TxnVersion:           txnVersion,
		EventAccountAddress:  event.AccountAddress,
		EventCreationNumber:  event.CreationNumber,
		EventSequenceNumber:  event.SequenceNumber,
	}
}
