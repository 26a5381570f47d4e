package marketplace

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/marketlens/aptos-indexer/core/types"
	"github.com/marketlens/aptos-indexer/modules/marketplace/internal/entity"
	"github.com/marketlens/aptos-indexer/modules/marketplace/market"
	"github.com/marketlens/aptos-indexer/pkg/logger"
	"github.com/marketlens/aptos-indexer/pkg/logger/slogx"
	"github.com/samber/lo"
)

// batch is everything derived from one ordered slice of transactions,
// deduplicated and ready to persist in a single DB transaction.
type batch struct {
	activities               []*entity.TokenActivity
	listings                 []*entity.CurrentMarketplaceListing
	currentCollectionVolumes []*entity.CurrentCollectionVolume
	currentTokenVolumes      []*entity.CurrentTokenVolume
	collectionVolumes        []*entity.CollectionVolume
	tokenVolumes             []*entity.TokenVolume
	checkpoint               entity.Checkpoint
}

func (b *batch) sanitize() {
	for _, a := range b.activities {
		a.Sanitize()
	}
	for _, l := range b.listings {
		l.Sanitize()
	}
	for _, v := range b.currentCollectionVolumes {
		v.Sanitize()
	}
	for _, v := range b.currentTokenVolumes {
		v.Sanitize()
	}
	for _, v := range b.collectionVolumes {
		v.Sanitize()
	}
	for _, v := range b.tokenVolumes {
		v.Sanitize()
	}
}

func (p *Processor) Process(ctx context.Context, transactions []*types.Transaction) error {
	if len(transactions) == 0 {
		return nil
	}

	b := p.buildBatch(ctx, transactions)

	if err := p.persistBatch(ctx, b); err != nil {
		// a single row with unstorable text (e.g. null bytes) aborts the
		// whole insert, scrub every string field and retry once
		logger.WarnContext(ctx, "Failed to persist batch, sanitizing rows and retrying", slogx.Error(err))
		b.sanitize()
		if err := p.persistBatch(ctx, b); err != nil {
			return errors.Wrap(err, "failed to persist batch after sanitizing")
		}
	}
	return nil
}

// buildBatch decodes and resolves every event in the slice and merges the
// derived rows. Listings are merged last-wins per token, running volumes are
// summed per collection and token.
func (p *Processor) buildBatch(ctx context.Context, transactions []*types.Transaction) *batch {
	b := &batch{
		checkpoint: entity.Checkpoint{
			StartVersion: transactions[0].Version,
			EndVersion:   transactions[len(transactions)-1].Version,
			CreatedAt:    time.Now().UTC(),
		},
	}

	listingByToken := make(map[string]*entity.CurrentMarketplaceListing)
	listingOrder := make([]string, 0)
	collectionVolumeByHash := make(map[string]*entity.CurrentCollectionVolume)
	collectionVolumeOrder := make([]string, 0)
	tokenVolumeByHash := make(map[string]*entity.CurrentTokenVolume)
	tokenVolumeOrder := make([]string, 0)

	for _, transaction := range transactions {
		if !transaction.Success {
			continue
		}
		for _, event := range transaction.Events {
			decoded, err := market.DecodeEvent(event.Type, event.Data, transaction.Version)
			if err != nil {
				// recognized tag with a broken payload, skip the event but
				// keep the batch going
				logger.WarnContext(ctx, "Skipping malformed event", slogx.Error(err),
					slogx.Int64("transaction_version", transaction.Version),
					slogx.String("event_type", event.Type),
				)
				continue
			}
			if decoded == nil {
				continue
			}
			resolved := decoded.Resolve(event.AccountAddress)

			b.activities = append(b.activities, buildTokenActivity(transaction.Version, transaction.Timestamp, event, resolved))

			if listing := buildListing(transaction.Version, transaction.Timestamp, event, resolved); listing != nil {
				if _, ok := listingByToken[listing.TokenDataIDHash]; !ok {
					listingOrder = append(listingOrder, listing.TokenDataIDHash)
				}
				listingByToken[listing.TokenDataIDHash] = listing
			}

			sample := buildVolumeSample(transaction.Version, transaction.Timestamp, event, resolved)
			if sample == nil {
				continue
			}
			if current, ok := collectionVolumeByHash[sample.CollectionDataIDHash]; ok {
				current.Volume = current.Volume.Add(sample.Volume)
				current.InsertedAt = sample.Timestamp
				current.LastTransactionVersion = sample.TxnVersion
			} else {
				collectionVolumeByHash[sample.CollectionDataIDHash] = &entity.CurrentCollectionVolume{
					CollectionDataIDHash:   sample.CollectionDataIDHash,
					Volume:                 sample.Volume,
					InsertedAt:             sample.Timestamp,
					LastTransactionVersion: sample.TxnVersion,
				}
				collectionVolumeOrder = append(collectionVolumeOrder, sample.CollectionDataIDHash)
			}
			if current, ok := tokenVolumeByHash[sample.TokenDataIDHash]; ok {
				current.Volume = current.Volume.Add(sample.Volume)
				current.InsertedAt = sample.Timestamp
				current.LastTransactionVersion = sample.TxnVersion
			} else {
				tokenVolumeByHash[sample.TokenDataIDHash] = &entity.CurrentTokenVolume{
					TokenDataIDHash:        sample.TokenDataIDHash,
					Volume:                 sample.Volume,
					InsertedAt:             sample.Timestamp,
					LastTransactionVersion: sample.TxnVersion,
				}
				tokenVolumeOrder = append(tokenVolumeOrder, sample.TokenDataIDHash)
			}
			b.collectionVolumes = append(b.collectionVolumes, &entity.CollectionVolume{
				TransactionVersion:   sample.TxnVersion,
				EventAccountAddress:  sample.EventAccountAddress,
				EventCreationNumber:  sample.EventCreationNumber,
				EventSequenceNumber:  sample.EventSequenceNumber,
				CollectionDataIDHash: sample.CollectionDataIDHash,
				Volume:               sample.Volume,
				InsertedAt:           sample.Timestamp,
			})
			b.tokenVolumes = append(b.tokenVolumes, &entity.TokenVolume{
				TransactionVersion:  sample.TxnVersion,
				EventAccountAddress: sample.EventAccountAddress,
				EventCreationNumber: sample.EventCreationNumber,
				EventSequenceNumber: sample.EventSequenceNumber,
				TokenDataIDHash:     sample.TokenDataIDHash,
				Volume:              sample.Volume,
				InsertedAt:          sample.Timestamp,
			})
		}
	}

	b.listings = lo.Map(listingOrder, func(hash string, _ int) *entity.CurrentMarketplaceListing {
		return listingByToken[hash]
	})
	b.currentCollectionVolumes = lo.Map(collectionVolumeOrder, func(hash string, _ int) *entity.CurrentCollectionVolume {
		return collectionVolumeByHash[hash]
	})
	b.currentTokenVolumes = lo.Map(tokenVolumeOrder, func(hash string, _ int) *entity.CurrentTokenVolume {
		return tokenVolumeByHash[hash]
	})
	return b
}

// persistBatch writes all derived rows and the checkpoint in one DB
// transaction.
func (p *Processor) persistBatch(ctx context.Context, b *batch) error {
	if err := p.marketplaceDg.Begin(ctx); err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer func() {
		if err := p.marketplaceDg.Rollback(ctx); err != nil {
			logger.ErrorContext(ctx, "Failed to rollback transaction", slogx.Error(err))
		}
	}()

	if err := p.marketplaceDg.CreateTokenActivities(ctx, b.activities); err != nil {
		return errors.Wrap(err, "failed to create token activities")
	}
	if err := p.marketplaceDg.UpsertListings(ctx, b.listings); err != nil {
		return errors.Wrap(err, "failed to upsert listings")
	}
	if err := p.marketplaceDg.AddCurrentCollectionVolumes(ctx, b.currentCollectionVolumes); err != nil {
		return errors.Wrap(err, "failed to add current collection volumes")
	}
	if err := p.marketplaceDg.AddCurrentTokenVolumes(ctx, b.currentTokenVolumes); err != nil {
		return errors.Wrap(err, "failed to add current token volumes")
	}
	if err := p.marketplaceDg.CreateCollectionVolumes(ctx, b.collectionVolumes); err != nil {
		return errors.Wrap(err, "failed to create collection volumes")
	}
	if err := p.marketplaceDg.CreateTokenVolumes(ctx, b.tokenVolumes); err != nil {
		return errors.Wrap(err, "failed to create token volumes")
	}
	if err := p.marketplaceDg.CreateCheckpoint(ctx, b.checkpoint); err != nil {
		return errors.Wrap(err, "failed to create checkpoint")
	}

	if err := p.marketplaceDg.Commit(ctx); err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}
	return nil
}
