package marketplace

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/marketlens/aptos-indexer/common"
	"github.com/marketlens/aptos-indexer/common/errs"
	"github.com/marketlens/aptos-indexer/core/indexer"
	"github.com/marketlens/aptos-indexer/core/types"
	"github.com/marketlens/aptos-indexer/modules/marketplace/internal/datagateway"
	"github.com/marketlens/aptos-indexer/modules/marketplace/internal/entity"
)

var _ indexer.Processor[*types.Transaction] = (*Processor)(nil)

type Processor struct {
	marketplaceDg datagateway.MarketplaceDataGateway
	indexerInfoDg datagateway.IndexerInfoDataGateway
	network       common.Network
	cleanupFuncs  []func(context.Context) error
}

func NewProcessor(marketplaceDg datagateway.MarketplaceDataGateway, indexerInfoDg datagateway.IndexerInfoDataGateway, network common.Network, cleanupFuncs ...func(context.Context) error) *Processor {
	return &Processor{
		marketplaceDg: marketplaceDg,
		indexerInfoDg: indexerInfoDg,
		network:       network,
		cleanupFuncs:  cleanupFuncs,
	}
}

func (p *Processor) Name() string {
	return "Marketplace"
}

func (p *Processor) VerifyStates(ctx context.Context) error {
	if err := p.ensureValidState(ctx); err != nil {
		return errors.Wrap(err, "error during ensureValidState")
	}
	return nil
}

func (p *Processor) ensureValidState(ctx context.Context) error {
	indexerState, err := p.indexerInfoDg.GetLatestIndexerState(ctx)
	if err != nil && !errors.Is(err, errs.NotFound) {
		return errors.Wrap(err, "failed to get latest indexer state")
	}
	// if not found, set indexer state
	if errors.Is(err, errs.NotFound) {
		if err := p.indexerInfoDg.SetIndexerState(ctx, entity.IndexerState{
			DBVersion: DBVersion,
		}); err != nil {
			return errors.Wrap(err, "failed to set indexer state")
		}
	} else if indexerState.DBVersion != DBVersion {
		return errors.Wrapf(errs.ConflictSetting, "db version mismatch: current version is %d. Please migrate to version %d", indexerState.DBVersion, DBVersion)
	}

	_, network, err := p.indexerInfoDg.GetLatestIndexerStats(ctx)
	if err != nil && !errors.Is(err, errs.NotFound) {
		return errors.Wrap(err, "failed to get latest indexer stats")
	}
	// if found, verify indexer stats
	if err == nil {
		if network != p.network {
			return errors.Wrapf(errs.ConflictSetting, "network mismatch: latest indexed network is %s, configured network is %s. If you want to change the network, please reset the database", network, p.network)
		}
	}
	if err := p.indexerInfoDg.UpdateIndexerStats(ctx, Version, p.network); err != nil {
		return errors.Wrap(err, "failed to update indexer stats")
	}
	return nil
}

// CurrentVersion returns the transaction version of the latest persisted
// checkpoint. Returns errs.NotFound when nothing has been indexed yet, the
// indexer then starts from the genesis version.
func (p *Processor) CurrentVersion(ctx context.Context) (int64, error) {
	checkpoint, err := p.marketplaceDg.GetLatestCheckpoint(ctx)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return 0, errors.WithStack(errs.NotFound)
		}
		return 0, errors.Wrap(err, "failed to get latest checkpoint")
	}
	return checkpoint.EndVersion, nil
}

func (p *Processor) Shutdown(ctx context.Context) error {
	for _, cleanup := range p.cleanupFuncs {
		if err := cleanup(ctx); err != nil {
			return errors.Wrap(err, "error during cleanup")
		}
	}
	return nil
}
