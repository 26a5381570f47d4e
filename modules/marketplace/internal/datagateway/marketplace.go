package datagateway

import (
	"context"

	"github.com/marketlens/aptos-indexer/modules/marketplace/internal/entity"
)

type MarketplaceDataGateway interface {
	MarketplaceReaderDataGateway
	MarketplaceWriterDataGateway

	// Begin starts a DB transaction on this datagateway. All write operations
	// performed afterwards must be committed to persist changes.
	Begin(ctx context.Context) error
	// Commit commits the DB transaction. All changes made after Begin() will be persisted. Calling Commit() will close the current transaction.
	// If Commit() is called without a prior Begin(), it must be a no-op.
	Commit(ctx context.Context) error
	// Rollback rolls back the DB transaction. All changes made after Begin() will be discarded.
	// Rollback() must be safe to call even if no transaction is active. Hence, a defer Rollback() is safe, even if Commit() was called prior with non-error conditions.
	Rollback(ctx context.Context) error
}

type MarketplaceReaderDataGateway interface {
	// GetLatestCheckpoint returns the most recent checkpoint. Returns errs.NotFound if no batch has been persisted yet.
	GetLatestCheckpoint(ctx context.Context) (entity.Checkpoint, error)
	// GetListingByTokenDataIDHash returns the current listing state for a token. Returns errs.NotFound if the token has never been listed.
	GetListingByTokenDataIDHash(ctx context.Context, tokenDataIDHash string) (*entity.CurrentMarketplaceListing, error)
	// GetListingsByCollectionDataIDHash returns active listings in a collection, most recent first.
	GetListingsByCollectionDataIDHash(ctx context.Context, collectionDataIDHash string, limit, offset int32) ([]*entity.CurrentMarketplaceListing, error)
	// GetCollectionVolume returns the all-time traded volume of a collection. Returns errs.NotFound if the collection has no recorded trades.
	GetCollectionVolume(ctx context.Context, collectionDataIDHash string) (*entity.CurrentCollectionVolume, error)
	// GetTokenVolume returns the all-time traded volume of a token. Returns errs.NotFound if the token has no recorded trades.
	GetTokenVolume(ctx context.Context, tokenDataIDHash string) (*entity.CurrentTokenVolume, error)
	// GetTokenActivities returns activity rows for a token, newest first.
	GetTokenActivities(ctx context.Context, tokenDataIDHash string, limit, offset int32) ([]*entity.TokenActivity, error)
}

type MarketplaceWriterDataGateway interface {
	CreateTokenActivities(ctx context.Context, activities []*entity.TokenActivity) error
	UpsertListings(ctx context.Context, listings []*entity.CurrentMarketplaceListing) error
	AddCurrentCollectionVolumes(ctx context.Context, volumes []*entity.CurrentCollectionVolume) error
	AddCurrentTokenVolumes(ctx context.Context, volumes []*entity.CurrentTokenVolume) error
	CreateCollectionVolumes(ctx context.Context, volumes []*entity.CollectionVolume) error
	CreateTokenVolumes(ctx context.Context, volumes []*entity.TokenVolume) error
	CreateCheckpoint(ctx context.Context, checkpoint entity.Checkpoint) error
}
