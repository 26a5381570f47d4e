package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/marketlens/aptos-indexer/internal/postgres"
	"github.com/marketlens/aptos-indexer/modules/marketplace/internal/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ postgres.DB = (*execRecorderDB)(nil)

// execRecorderDB captures every Exec statement so tests can assert on the
// generated SQL and bind arguments without a live database.
type execRecorderDB struct {
	queries []string
	args    [][]any
}

func (d *execRecorderDB) Exec(_ context.Context, query string, args ...interface{}) (pgconn.CommandTag, error) {
	d.queries = append(d.queries, query)
	d.args = append(d.args, args)
	return pgconn.CommandTag{}, nil
}

func (d *execRecorderDB) Query(context.Context, string, ...interface{}) (pgx.Rows, error) {
	return nil, pgx.ErrNoRows
}

func (d *execRecorderDB) QueryRow(context.Context, string, ...interface{}) pgx.Row {
	return nil
}

func (d *execRecorderDB) Begin(context.Context) (pgx.Tx, error) {
	return nil, pgx.ErrTxClosed
}

func (d *execRecorderDB) BeginTx(context.Context, pgx.TxOptions) (pgx.Tx, error) {
	return nil, pgx.ErrTxClosed
}

func (d *execRecorderDB) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults {
	return nil
}

func (d *execRecorderDB) Ping(context.Context) error {
	return nil
}

func TestValuesPlaceholders(t *testing.T) {
	type testcase struct {
		name      string
		numRows   int
		numFields int
		expected  string
	}
	testcases := []testcase{
		{
			name:      "single row single field",
			numRows:   1,
			numFields: 1,
			expected:  "($1)",
		},
		{
			name:      "single row",
			numRows:   1,
			numFields: 3,
			expected:  "($1,$2,$3)",
		},
		{
			name:      "multiple rows",
			numRows:   2,
			numFields: 3,
			expected:  "($1,$2,$3),($4,$5,$6)",
		},
		{
			name:      "placeholder numbering continues across rows",
			numRows:   3,
			numFields: 2,
			expected:  "($1,$2),($3,$4),($5,$6)",
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, valuesPlaceholders(tc.numRows, tc.numFields))
		})
	}
}

func TestAddCurrentVolumesStrictGuard(t *testing.T) {
	// an equal version means the range was already applied, the additive
	// merge must not run again on a re-delivered batch
	db := &execRecorderDB{}
	r := NewRepository(db)
	now := time.Now().UTC()

	err := r.AddCurrentCollectionVolumes(context.Background(), []*entity.CurrentCollectionVolume{
		{CollectionDataIDHash: "aaa", Volume: decimal.NewFromInt(100), InsertedAt: now, LastTransactionVersion: 21},
	})
	require.NoError(t, err)
	err = r.AddCurrentTokenVolumes(context.Background(), []*entity.CurrentTokenVolume{
		{TokenDataIDHash: "bbb", Volume: decimal.NewFromInt(7), InsertedAt: now, LastTransactionVersion: 21},
	})
	require.NoError(t, err)

	require.Len(t, db.queries, 2)
	for _, query := range db.queries {
		assert.Contains(t, query, "last_transaction_version < EXCLUDED.last_transaction_version")
		assert.NotContains(t, query, "last_transaction_version <= EXCLUDED.last_transaction_version")
	}
}

func TestUpsertListingsGuardKeepsEqualVersion(t *testing.T) {
	// listings are last-wins, the later event in the same version must still
	// replace the row
	db := &execRecorderDB{}
	r := NewRepository(db)

	err := r.UpsertListings(context.Background(), []*entity.CurrentMarketplaceListing{
		{TokenDataIDHash: "aaa", LastTransactionVersion: 21},
	})
	require.NoError(t, err)

	require.Len(t, db.queries, 1)
	assert.Contains(t, db.queries[0], "last_transaction_version <= EXCLUDED.last_transaction_version")
}

func TestCreateVolumesKeyedByEventIdentity(t *testing.T) {
	db := &execRecorderDB{}
	r := NewRepository(db)
	now := time.Now().UTC()

	// two trades in the same transaction, distinguished by sequence number
	err := r.CreateCollectionVolumes(context.Background(), []*entity.CollectionVolume{
		{TransactionVersion: 21, EventAccountAddress: "0xacc", EventSequenceNumber: 1, CollectionDataIDHash: "aaa", Volume: decimal.NewFromInt(7), InsertedAt: now},
		{TransactionVersion: 21, EventAccountAddress: "0xacc", EventSequenceNumber: 0, CollectionDataIDHash: "aaa", Volume: decimal.NewFromInt(50), InsertedAt: now},
	})
	require.NoError(t, err)

	require.Len(t, db.queries, 1)
	assert.Contains(t, db.queries[0], "ON CONFLICT (transaction_version, event_account_address, event_creation_number, event_sequence_number) DO NOTHING")

	// both rows survive in one statement, sorted by event identity
	require.Len(t, db.args[0], 14)
	assert.Equal(t, int64(0), db.args[0][3])
	assert.Equal(t, int64(1), db.args[0][10])
}

func TestCreateTokenVolumesKeyedByEventIdentity(t *testing.T) {
	db := &execRecorderDB{}
	r := NewRepository(db)
	now := time.Now().UTC()

	err := r.CreateTokenVolumes(context.Background(), []*entity.TokenVolume{
		{TransactionVersion: 21, EventAccountAddress: "0xacc", EventSequenceNumber: 0, TokenDataIDHash: "bbb", Volume: decimal.NewFromInt(50), InsertedAt: now},
		{TransactionVersion: 21, EventAccountAddress: "0xacc", EventSequenceNumber: 1, TokenDataIDHash: "bbb", Volume: decimal.NewFromInt(7), InsertedAt: now},
	})
	require.NoError(t, err)

	require.Len(t, db.queries, 1)
	assert.Contains(t, db.queries[0], "ON CONFLICT (transaction_version, event_account_address, event_creation_number, event_sequence_number) DO NOTHING")
	require.Len(t, db.args[0], 14)
}
