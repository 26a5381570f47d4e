package postgres

import (
	"context"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/marketlens/aptos-indexer/common/errs"
	"github.com/marketlens/aptos-indexer/modules/marketplace/internal/datagateway"
	"github.com/marketlens/aptos-indexer/modules/marketplace/internal/entity"
	"github.com/samber/lo"
)

var _ datagateway.MarketplaceDataGateway = (*Repository)(nil)

// maxQueryParams is the Postgres wire-protocol limit on bind parameters per
// statement. Batch inserts are chunked so that rows*fields stays below it.
const maxQueryParams = 65535

// valuesPlaceholders renders "($1,$2,...),($n+1,...)" for a multi-row insert.
func valuesPlaceholders(numRows, numFields int) string {
	var sb strings.Builder
	for row := 0; row < numRows; row++ {
		if row > 0 {
			sb.WriteString(",")
		}
		sb.WriteString("(")
		for field := 0; field < numFields; field++ {
			if field > 0 {
				sb.WriteString(",")
			}
			sb.WriteString("$")
			sb.WriteString(strconv.Itoa(row*numFields + field + 1))
		}
		sb.WriteString(")")
	}
	return sb.String()
}

func (r *Repository) CreateTokenActivities(ctx context.Context, activities []*entity.TokenActivity) error {
	if len(activities) == 0 {
		return nil
	}
	// sort by primary key to keep lock acquisition order stable across
	// concurrent writers
	activities = slices.Clone(activities)
	sort.Slice(activities, func(i, j int) bool {
		a, b := activities[i], activities[j]
		if a.TransactionVersion != b.TransactionVersion {
			return a.TransactionVersion < b.TransactionVersion
		}
		if a.EventAccountAddress != b.EventAccountAddress {
			return a.EventAccountAddress < b.EventAccountAddress
		}
		if a.EventCreationNumber != b.EventCreationNumber {
			return a.EventCreationNumber < b.EventCreationNumber
		}
		return a.EventSequenceNumber < b.EventSequenceNumber
	})

	const numFields = 18
	for _, chunk := range lo.Chunk(activities, maxQueryParams/numFields) {
		args := make([]any, 0, len(chunk)*numFields)
		for _, a := range chunk {
			propertyVersion, err := numericFromDecimal(a.PropertyVersion)
			if err != nil {
				return errors.Wrap(err, "failed to map property version")
			}
			tokenAmount, err := numericFromDecimal(a.TokenAmount)
			if err != nil {
				return errors.Wrap(err, "failed to map token amount")
			}
			coinAmount, err := numericFromDecimalPtr(a.CoinAmount)
			if err != nil {
				return errors.Wrap(err, "failed to map coin amount")
			}
			args = append(args,
				a.TransactionVersion,
				a.EventAccountAddress,
				a.EventCreationNumber,
				a.EventSequenceNumber,
				a.CollectionDataIDHash,
				a.TokenDataIDHash,
				propertyVersion,
				a.CreatorAddress,
				a.CollectionName,
				a.Name,
				a.TransferType,
				a.FromAddress,
				a.ToAddress,
				tokenAmount,
				a.CoinType,
				coinAmount,
				a.TransactionTimestamp,
				a.InsertedAt,
			)
		}
		query := `INSERT INTO marketplace_token_activities (transaction_version, event_account_address, event_creation_number, event_sequence_number, collection_data_id_hash, token_data_id_hash, property_version, creator_address, collection_name, name, transfer_type, from_address, to_address, token_amount, coin_type, coin_amount, transaction_timestamp, inserted_at) VALUES ` +
			valuesPlaceholders(len(chunk), numFields) +
			` ON CONFLICT (transaction_version, event_account_address, event_creation_number, event_sequence_number) DO NOTHING`
		if _, err := r.queryable().Exec(ctx, query, args...); err != nil {
			return errors.Wrap(err, "error during exec")
		}
	}
	return nil
}

func (r *Repository) UpsertListings(ctx context.Context, listings []*entity.CurrentMarketplaceListing) error {
	if len(listings) == 0 {
		return nil
	}
	listings = slices.Clone(listings)
	sort.Slice(listings, func(i, j int) bool {
		return listings[i].TokenDataIDHash < listings[j].TokenDataIDHash
	})

	const numFields = 13
	for _, chunk := range lo.Chunk(listings, maxQueryParams/numFields) {
		args := make([]any, 0, len(chunk)*numFields)
		for _, l := range chunk {
			propertyVersion, err := numericFromDecimal(l.PropertyVersion)
			if err != nil {
				return errors.Wrap(err, "failed to map property version")
			}
			price, err := numericFromDecimal(l.Price)
			if err != nil {
				return errors.Wrap(err, "failed to map price")
			}
			amount, err := numericFromDecimal(l.Amount)
			if err != nil {
				return errors.Wrap(err, "failed to map amount")
			}
			args = append(args,
				l.TokenDataIDHash,
				l.CollectionDataIDHash,
				propertyVersion,
				l.CreatorAddress,
				l.CollectionName,
				l.Name,
				l.MarketAddress,
				l.Seller,
				price,
				amount,
				l.EventType,
				l.InsertedAt,
				l.LastTransactionVersion,
			)
		}
		query := `INSERT INTO marketplace_current_listings (token_data_id_hash, collection_data_id_hash, property_version, creator_address, collection_name, name, market_address, seller, price, amount, event_type, inserted_at, last_transaction_version) VALUES ` +
			valuesPlaceholders(len(chunk), numFields) + `
			ON CONFLICT (token_data_id_hash) DO UPDATE SET
				collection_data_id_hash = EXCLUDED.collection_data_id_hash,
				property_version = EXCLUDED.property_version,
				creator_address = EXCLUDED.creator_address,
				collection_name = EXCLUDED.collection_name,
				name = EXCLUDED.name,
				market_address = EXCLUDED.market_address,
				seller = EXCLUDED.seller,
				price = EXCLUDED.price,
				amount = EXCLUDED.amount,
				event_type = EXCLUDED.event_type,
				inserted_at = EXCLUDED.inserted_at,
				last_transaction_version = EXCLUDED.last_transaction_version
			WHERE marketplace_current_listings.last_transaction_version <= EXCLUDED.last_transaction_version`
		if _, err := r.queryable().Exec(ctx, query, args...); err != nil {
			return errors.Wrap(err, "error during exec")
		}
	}
	return nil
}

func (r *Repository) AddCurrentCollectionVolumes(ctx context.Context, volumes []*entity.CurrentCollectionVolume) error {
	if len(volumes) == 0 {
		return nil
	}
	volumes = slices.Clone(volumes)
	sort.Slice(volumes, func(i, j int) bool {
		return volumes[i].CollectionDataIDHash < volumes[j].CollectionDataIDHash
	})

	const numFields = 4
	for _, chunk := range lo.Chunk(volumes, maxQueryParams/numFields) {
		args := make([]any, 0, len(chunk)*numFields)
		for _, v := range chunk {
			volume, err := numericFromDecimal(v.Volume)
			if err != nil {
				return errors.Wrap(err, "failed to map volume")
			}
			args = append(args, v.CollectionDataIDHash, volume, v.InsertedAt, v.LastTransactionVersion)
		}
		// strict guard: samples are pre-summed per hash within a range, so an
		// equal version means the range was already applied
		query := `INSERT INTO marketplace_current_collection_volumes (collection_data_id_hash, volume, inserted_at, last_transaction_version) VALUES ` +
			valuesPlaceholders(len(chunk), numFields) + `
			ON CONFLICT (collection_data_id_hash) DO UPDATE SET
				volume = marketplace_current_collection_volumes.volume + EXCLUDED.volume,
				inserted_at = EXCLUDED.inserted_at,
				last_transaction_version = EXCLUDED.last_transaction_version
			WHERE marketplace_current_collection_volumes.last_transaction_version < EXCLUDED.last_transaction_version`
		if _, err := r.queryable().Exec(ctx, query, args...); err != nil {
			return errors.Wrap(err, "error during exec")
		}
	}
	return nil
}

func (r *Repository) AddCurrentTokenVolumes(ctx context.Context, volumes []*entity.CurrentTokenVolume) error {
	if len(volumes) == 0 {
		return nil
	}
	volumes = slices.Clone(volumes)
	sort.Slice(volumes, func(i, j int) bool {
		return volumes[i].TokenDataIDHash < volumes[j].TokenDataIDHash
	})

	const numFields = 4
	for _, chunk := range lo.Chunk(volumes, maxQueryParams/numFields) {
		args := make([]any, 0, len(chunk)*numFields)
		for _, v := range chunk {
			volume, err := numericFromDecimal(v.Volume)
			if err != nil {
				return errors.Wrap(err, "failed to map volume")
			}
			args = append(args, v.TokenDataIDHash, volume, v.InsertedAt, v.LastTransactionVersion)
		}
		query := `INSERT INTO marketplace_current_token_volumes (token_data_id_hash, volume, inserted_at, last_transaction_version) VALUES ` +
			valuesPlaceholders(len(chunk), numFields) + `
			ON CONFLICT (token_data_id_hash) DO UPDATE SET
				volume = marketplace_current_token_volumes.volume + EXCLUDED.volume,
				inserted_at = EXCLUDED.inserted_at,
				last_transaction_version = EXCLUDED.last_transaction_version
			WHERE marketplace_current_token_volumes.last_transaction_version < EXCLUDED.last_transaction_version`
		if _, err := r.queryable().Exec(ctx, query, args...); err != nil {
			return errors.Wrap(err, "error during exec")
		}
	}
	return nil
}

func (r *Repository) CreateCollectionVolumes(ctx context.Context, volumes []*entity.CollectionVolume) error {
	if len(volumes) == 0 {
		return nil
	}
	volumes = slices.Clone(volumes)
	sort.Slice(volumes, func(i, j int) bool {
		a, b := volumes[i], volumes[j]
		if a.TransactionVersion != b.TransactionVersion {
			return a.TransactionVersion < b.TransactionVersion
		}
		if a.EventAccountAddress != b.EventAccountAddress {
			return a.EventAccountAddress < b.EventAccountAddress
		}
		if a.EventCreationNumber != b.EventCreationNumber {
			return a.EventCreationNumber < b.EventCreationNumber
		}
		return a.EventSequenceNumber < b.EventSequenceNumber
	})

	const numFields = 7
	for _, chunk := range lo.Chunk(volumes, maxQueryParams/numFields) {
		args := make([]any, 0, len(chunk)*numFields)
		for _, v := range chunk {
			volume, err := numericFromDecimal(v.Volume)
			if err != nil {
				return errors.Wrap(err, "failed to map volume")
			}
			args = append(args,
				v.TransactionVersion,
				v.EventAccountAddress,
				v.EventCreationNumber,
				v.EventSequenceNumber,
				v.CollectionDataIDHash,
				volume,
				v.InsertedAt,
			)
		}
		query := `INSERT INTO marketplace_collection_volumes (transaction_version, event_account_address, event_creation_number, event_sequence_number, collection_data_id_hash, volume, inserted_at) VALUES ` +
			valuesPlaceholders(len(chunk), numFields) +
			` ON CONFLICT (transaction_version, event_account_address, event_creation_number, event_sequence_number) DO NOTHING`
		if _, err := r.queryable().Exec(ctx, query, args...); err != nil {
			return errors.Wrap(err, "error during exec")
		}
	}
	return nil
}

func (r *Repository) CreateTokenVolumes(ctx context.Context, volumes []*entity.TokenVolume) error {
	if len(volumes) == 0 {
		return nil
	}
	volumes = slices.Clone(volumes)
	sort.Slice(volumes, func(i, j int) bool {
		a, b := volumes[i], volumes[j]
		if a.TransactionVersion != b.TransactionVersion {
			return a.TransactionVersion < b.TransactionVersion
		}
		if a.EventAccountAddress != b.EventAccountAddress {
			return a.EventAccountAddress < b.EventAccountAddress
		}
		if a.EventCreationNumber != b.EventCreationNumber {
			return a.EventCreationNumber < b.EventCreationNumber
		}
		return a.EventSequenceNumber < b.EventSequenceNumber
	})

	const numFields = 7
	for _, chunk := range lo.Chunk(volumes, maxQueryParams/numFields) {
		args := make([]any, 0, len(chunk)*numFields)
		for _, v := range chunk {
			volume, err := numericFromDecimal(v.Volume)
			if err != nil {
				return errors.Wrap(err, "failed to map volume")
			}
			args = append(args,
				v.TransactionVersion,
				v.EventAccountAddress,
				v.EventCreationNumber,
				v.EventSequenceNumber,
				v.TokenDataIDHash,
				volume,
				v.InsertedAt,
			)
		}
		query := `INSERT INTO marketplace_token_volumes (transaction_version, event_account_address, event_creation_number, event_sequence_number, token_data_id_hash, volume, inserted_at) VALUES ` +
			valuesPlaceholders(len(chunk), numFields) +
			` ON CONFLICT (transaction_version, event_account_address, event_creation_number, event_sequence_number) DO NOTHING`
		if _, err := r.queryable().Exec(ctx, query, args...); err != nil {
			return errors.Wrap(err, "error during exec")
		}
	}
	return nil
}

func (r *Repository) CreateCheckpoint(ctx context.Context, checkpoint entity.Checkpoint) error {
	query := `INSERT INTO marketplace_checkpoints (start_version, end_version, created_at) VALUES ($1, $2, $3) ON CONFLICT (end_version) DO NOTHING`
	if _, err := r.queryable().Exec(ctx, query, checkpoint.StartVersion, checkpoint.EndVersion, checkpoint.CreatedAt); err != nil {
		return errors.Wrap(err, "error during exec")
	}
	return nil
}

func (r *Repository) GetLatestCheckpoint(ctx context.Context) (entity.Checkpoint, error) {
	query := `SELECT start_version, end_version, created_at FROM marketplace_checkpoints ORDER BY end_version DESC LIMIT 1`
	var checkpoint entity.Checkpoint
	err := r.queryable().QueryRow(ctx, query).Scan(&checkpoint.StartVersion, &checkpoint.EndVersion, &checkpoint.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entity.Checkpoint{}, errors.WithStack(errs.NotFound)
		}
		return entity.Checkpoint{}, errors.Wrap(err, "error during query")
	}
	return checkpoint, nil
}

func scanListing(row pgx.Row) (*entity.CurrentMarketplaceListing, error) {
	var (
		listing         entity.CurrentMarketplaceListing
		propertyVersion pgtype.Numeric
		price           pgtype.Numeric
		amount          pgtype.Numeric
	)
	err := row.Scan(
		&listing.TokenDataIDHash,
		&listing.CollectionDataIDHash,
		&propertyVersion,
		&listing.CreatorAddress,
		&listing.CollectionName,
		&listing.Name,
		&listing.MarketAddress,
		&listing.Seller,
		&price,
		&amount,
		&listing.EventType,
		&listing.InsertedAt,
		&listing.LastTransactionVersion,
	)
	if err != nil {
		return nil, err
	}
	if listing.PropertyVersion, err = decimalFromNumeric(propertyVersion); err != nil {
		return nil, errors.Wrap(err, "failed to map property version")
	}
	if listing.Price, err = decimalFromNumeric(price); err != nil {
		return nil, errors.Wrap(err, "failed to map price")
	}
	if listing.Amount, err = decimalFromNumeric(amount); err != nil {
		return nil, errors.Wrap(err, "failed to map amount")
	}
	return &listing, nil
}

const listingColumns = `token_data_id_hash, collection_data_id_hash, property_version, creator_address, collection_name, name, market_address, seller, price, amount, event_type, inserted_at, last_transaction_version`

func (r *Repository) GetListingByTokenDataIDHash(ctx context.Context, tokenDataIDHash string) (*entity.CurrentMarketplaceListing, error) {
	query := `SELECT ` + listingColumns + ` FROM marketplace_current_listings WHERE token_data_id_hash = $1`
	listing, err := scanListing(r.queryable().QueryRow(ctx, query, tokenDataIDHash))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.WithStack(errs.NotFound)
		}
		return nil, errors.Wrap(err, "error during query")
	}
	return listing, nil
}

func (r *Repository) GetListingsByCollectionDataIDHash(ctx context.Context, collectionDataIDHash string, limit, offset int32) ([]*entity.CurrentMarketplaceListing, error) {
	query := `SELECT ` + listingColumns + ` FROM marketplace_current_listings WHERE collection_data_id_hash = $1 AND market_address != '' ORDER BY last_transaction_version DESC LIMIT $2 OFFSET $3`
	rows, err := r.queryable().Query(ctx, query, collectionDataIDHash, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "error during query")
	}
	defer rows.Close()

	listings := make([]*entity.CurrentMarketplaceListing, 0)
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, errors.Wrap(err, "error during scan")
		}
		listings = append(listings, listing)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error during iteration")
	}
	return listings, nil
}

func (r *Repository) GetCollectionVolume(ctx context.Context, collectionDataIDHash string) (*entity.CurrentCollectionVolume, error) {
	query := `SELECT collection_data_id_hash, volume, inserted_at, last_transaction_version FROM marketplace_current_collection_volumes WHERE collection_data_id_hash = $1`
	var (
		result entity.CurrentCollectionVolume
		volume pgtype.Numeric
	)
	err := r.queryable().QueryRow(ctx, query, collectionDataIDHash).Scan(&result.CollectionDataIDHash, &volume, &result.InsertedAt, &result.LastTransactionVersion)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.WithStack(errs.NotFound)
		}
		return nil, errors.Wrap(err, "error during query")
	}
	if result.Volume, err = decimalFromNumeric(volume); err != nil {
		return nil, errors.Wrap(err, "failed to map volume")
	}
	return &result, nil
}

func (r *Repository) GetTokenVolume(ctx context.Context, tokenDataIDHash string) (*entity.CurrentTokenVolume, error) {
	query := `SELECT token_data_id_hash, volume, inserted_at, last_transaction_version FROM marketplace_current_token_volumes WHERE token_data_id_hash = $1`
	var (
		result entity.CurrentTokenVolume
		volume pgtype.Numeric
	)
	err := r.queryable().QueryRow(ctx, query, tokenDataIDHash).Scan(&result.TokenDataIDHash, &volume, &result.InsertedAt, &result.LastTransactionVersion)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.WithStack(errs.NotFound)
		}
		return nil, errors.Wrap(err, "error during query")
	}
	if result.Volume, err = decimalFromNumeric(volume); err != nil {
		return nil, errors.Wrap(err, "failed to map volume")
	}
	return &result, nil
}

func (r *Repository) GetTokenActivities(ctx context.Context, tokenDataIDHash string, limit, offset int32) ([]*entity.TokenActivity, error) {
	query := `SELECT transaction_version, event_account_address, event_creation_number, event_sequence_number, collection_data_id_hash, token_data_id_hash, property_version, creator_address, collection_name, name, transfer_type, from_address, to_address, token_amount, coin_type, coin_amount, transaction_timestamp, inserted_at
		FROM marketplace_token_activities WHERE token_data_id_hash = $1 ORDER BY transaction_version DESC, event_sequence_number DESC LIMIT $2 OFFSET $3`
	rows, err := r.queryable().Query(ctx, query, tokenDataIDHash, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "error during query")
	}
	defer rows.Close()

	activities := make([]*entity.TokenActivity, 0)
	for rows.Next() {
		var (
			activity        entity.TokenActivity
			propertyVersion pgtype.Numeric
			tokenAmount     pgtype.Numeric
			coinAmount      pgtype.Numeric
		)
		err := rows.Scan(
			&activity.TransactionVersion,
			&activity.EventAccountAddress,
			&activity.EventCreationNumber,
			&activity.EventSequenceNumber,
			&activity.CollectionDataIDHash,
			&activity.TokenDataIDHash,
			&propertyVersion,
			&activity.CreatorAddress,
			&activity.CollectionName,
			&activity.Name,
			&activity.TransferType,
			&activity.FromAddress,
			&activity.ToAddress,
			&tokenAmount,
			&activity.CoinType,
			&coinAmount,
			&activity.TransactionTimestamp,
			&activity.InsertedAt,
		)
		if err != nil {
			return nil, errors.Wrap(err, "error during scan")
		}
		if activity.PropertyVersion, err = decimalFromNumeric(propertyVersion); err != nil {
			return nil, errors.Wrap(err, "failed to map property version")
		}
		if activity.TokenAmount, err = decimalFromNumeric(tokenAmount); err != nil {
			return nil, errors.Wrap(err, "failed to map token amount")
		}
		if activity.CoinAmount, err = decimalPtrFromNumeric(coinAmount); err != nil {
			return nil, errors.Wrap(err, "failed to map coin amount")
		}
		activities = append(activities, &activity)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error during iteration")
	}
	return activities, nil
}
