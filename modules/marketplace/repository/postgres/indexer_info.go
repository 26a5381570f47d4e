package postgres

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/marketlens/aptos-indexer/common"
	"github.com/marketlens/aptos-indexer/common/errs"
	"github.com/marketlens/aptos-indexer/modules/marketplace/internal/datagateway"
	"github.com/marketlens/aptos-indexer/modules/marketplace/internal/entity"
)

var _ datagateway.IndexerInfoDataGateway = (*Repository)(nil)

func (r *Repository) GetLatestIndexerState(ctx context.Context) (entity.IndexerState, error) {
	query := `SELECT db_version, created_at FROM marketplace_indexer_states ORDER BY created_at DESC LIMIT 1`
	var state entity.IndexerState
	err := r.queryable().QueryRow(ctx, query).Scan(&state.DBVersion, &state.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entity.IndexerState{}, errors.WithStack(errs.NotFound)
		}
		return entity.IndexerState{}, errors.Wrap(err, "error during query")
	}
	return state, nil
}

func (r *Repository) SetIndexerState(ctx context.Context, state entity.IndexerState) error {
	query := `INSERT INTO marketplace_indexer_states (db_version) VALUES ($1)`
	if _, err := r.queryable().Exec(ctx, query, state.DBVersion); err != nil {
		return errors.Wrap(err, "error during exec")
	}
	return nil
}

func (r *Repository) GetLatestIndexerStats(ctx context.Context) (string, common.Network, error) {
	query := `SELECT client_version, network FROM marketplace_indexer_stats ORDER BY updated_at DESC LIMIT 1`
	var (
		clientVersion string
		network       string
	)
	err := r.queryable().QueryRow(ctx, query).Scan(&clientVersion, &network)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", "", errors.WithStack(errs.NotFound)
		}
		return "", "", errors.Wrap(err, "error during query")
	}
	return clientVersion, common.Network(network), nil
}

func (r *Repository) UpdateIndexerStats(ctx context.Context, clientVersion string, network common.Network) error {
	query := `INSERT INTO marketplace_indexer_stats (client_version, network, updated_at) VALUES ($1, $2, NOW())`
	if _, err := r.queryable().Exec(ctx, query, clientVersion, string(network)); err != nil {
		return errors.Wrap(err, "error during exec")
	}
	return nil
}
