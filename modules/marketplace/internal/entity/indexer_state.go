package entity

import "time"

// IndexerState records the schema version the database was created with.
// Used on startup to refuse running against a database migrated for a
// different release.
type IndexerState struct {
	DBVersion int32
	CreatedAt time.Time
}
