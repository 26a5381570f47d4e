package types

import (
	"encoding/json"
	"time"
)

// Transaction is a committed ledger transaction with the events it emitted.
// Versions are assigned by consensus and are strictly increasing, so a
// transaction is final once it is committed.
type Transaction struct {
	Version   int64
	Hash      string
	Success   bool
	Timestamp time.Time
	Events    []Event
}

// TransactionVersion returns the ledger version of the transaction.
func (t Transaction) TransactionVersion() int64 {
	return t.Version
}

// Event is a single event emitted by a transaction. The event key
// (account address, creation number) together with the sequence number
// uniquely identifies an event in the ledger.
type Event struct {
	// Type is the fully qualified move type tag of the event,
	// e.g. "0x3::token::DepositEvent".
	Type string

	AccountAddress string
	CreationNumber int64
	SequenceNumber int64

	// Data is the raw event payload, decoded lazily by each module.
	Data json.RawMessage
}
