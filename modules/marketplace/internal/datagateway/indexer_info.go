package datagateway

import (
	"context"

	"github.com/marketlens/aptos-indexer/common"
	"github.com/marketlens/aptos-indexer/modules/marketplace/internal/entity"
)

type IndexerInfoDataGateway interface {
	GetLatestIndexerState(ctx context.Context) (entity.IndexerState, error)
	GetLatestIndexerStats(ctx context.Context) (version string, network common.Network, err error)
	SetIndexerState(ctx context.Context, state entity.IndexerState) error
	UpdateIndexerStats(ctx context.Context, clientVersion string, network common.Network) error
}
