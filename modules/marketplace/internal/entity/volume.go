package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// CollectionVolume is one append-only volume sample for a collection, keyed
// by the identity of the sale event that produced it. Two sales in the same
// transaction are distinct samples.
type CollectionVolume struct {
	TransactionVersion   int64
	EventAccountAddress  string
	EventCreationNumber  int64
	EventSequenceNumber  int64
	CollectionDataIDHash string
	Volume               decimal.Decimal
	InsertedAt           time.Time
}

func (v *CollectionVolume) Sanitize() {
	v.EventAccountAddress = sanitizeString(v.EventAccountAddress)
	v.CollectionDataIDHash = sanitizeString(v.CollectionDataIDHash)
}

// TokenVolume is one append-only volume sample for a token, keyed by the
// identity of the sale event that produced it.
type TokenVolume struct {
	TransactionVersion  int64
	EventAccountAddress string
	EventCreationNumber int64
	EventSequenceNumber int64
	TokenDataIDHash     string
	Volume              decimal.Decimal
	InsertedAt          time.Time
}

func (v *TokenVolume) Sanitize() {
	v.EventAccountAddress = sanitizeString(v.EventAccountAddress)
	v.TokenDataIDHash = sanitizeString(v.TokenDataIDHash)
}

// CurrentCollectionVolume is the running all-time traded volume for a
// collection, keyed by CollectionDataIDHash. Persisting it adds to the stored
// volume rather than replacing it.
type CurrentCollectionVolume struct {
	CollectionDataIDHash   string
	Volume                 decimal.Decimal
	InsertedAt             time.Time
	LastTransactionVersion int64
}

func (v *CurrentCollectionVolume) Sanitize() {
	v.CollectionDataIDHash = sanitizeString(v.CollectionDataIDHash)
}

// CurrentTokenVolume is the running all-time traded volume for a token, keyed
// by TokenDataIDHash.
type CurrentTokenVolume struct {
	TokenDataIDHash        string
	Volume                 decimal.Decimal
	InsertedAt             time.Time
	LastTransactionVersion int64
}

func (v *CurrentTokenVolume) Sanitize() {
	v.TokenDataIDHash = sanitizeString(v.TokenDataIDHash)
}
