package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TokenActivity is one row of the append-only activity log, one row per
// recognized event. The composite key is (TransactionVersion,
// EventAccountAddress, EventCreationNumber, EventSequenceNumber).
type TokenActivity struct {
	TransactionVersion   int64
	EventAccountAddress  string
	EventCreationNumber  int64
	EventSequenceNumber  int64
	CollectionDataIDHash string
	TokenDataIDHash      string
	PropertyVersion      decimal.Decimal
	CreatorAddress       string
	CollectionName       string
	Name                 string
	TransferType         string
	FromAddress          *string
	ToAddress            *string
	TokenAmount          decimal.Decimal
	CoinType             *string
	CoinAmount           *decimal.Decimal
	TransactionTimestamp time.Time
	InsertedAt           time.Time
}

func (a *TokenActivity) Sanitize() {
	a.EventAccountAddress = sanitizeString(a.EventAccountAddress)
	a.CollectionDataIDHash = sanitizeString(a.CollectionDataIDHash)
	a.TokenDataIDHash = sanitizeString(a.TokenDataIDHash)
	a.CreatorAddress = sanitizeString(a.CreatorAddress)
	a.CollectionName = sanitizeString(a.CollectionName)
	a.Name = sanitizeString(a.Name)
	a.TransferType = sanitizeString(a.TransferType)
	a.FromAddress = sanitizeStringPtr(a.FromAddress)
	a.ToAddress = sanitizeStringPtr(a.ToAddress)
	a.CoinType = sanitizeStringPtr(a.CoinType)
}
