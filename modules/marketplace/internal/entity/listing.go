package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// CurrentMarketplaceListing is the latest listing state for a token, keyed by
// TokenDataIDHash. A row with an empty MarketAddress means the token is no
// longer actively listed, the remaining attributes record the event that
// ended the listing.
type CurrentMarketplaceListing struct {
	TokenDataIDHash        string
	CollectionDataIDHash   string
	PropertyVersion        decimal.Decimal
	CreatorAddress         string
	CollectionName         string
	Name                   string
	MarketAddress          string
	Seller                 string
	Price                  decimal.Decimal
	Amount                 decimal.Decimal
	EventType              string
	InsertedAt             time.Time
	LastTransactionVersion int64
}

func (l *CurrentMarketplaceListing) Sanitize() {
	l.TokenDataIDHash = sanitizeString(l.TokenDataIDHash)
	l.CollectionDataIDHash = sanitizeString(l.CollectionDataIDHash)
	l.CreatorAddress = sanitizeString(l.CreatorAddress)
	l.CollectionName = sanitizeString(l.CollectionName)
	l.Name = sanitizeString(l.Name)
	l.MarketAddress = sanitizeString(l.MarketAddress)
	l.Seller = sanitizeString(l.Seller)
	l.EventType = sanitizeString(l.EventType)
}
