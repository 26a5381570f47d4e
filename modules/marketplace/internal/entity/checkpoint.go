package entity

import "time"

// Checkpoint marks a fully persisted batch of transactions. The latest
// EndVersion is the resume point after a restart.
type Checkpoint struct {
	StartVersion int64
	EndVersion   int64
	CreatedAt    time.Time
}
