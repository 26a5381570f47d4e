package marketplace

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/marketlens/aptos-indexer/common"
	"github.com/marketlens/aptos-indexer/common/errs"
	"github.com/marketlens/aptos-indexer/core/types"
	"github.com/marketlens/aptos-indexer/modules/marketplace/internal/datagateway"
	"github.com/marketlens/aptos-indexer/modules/marketplace/internal/entity"
	"github.com/marketlens/aptos-indexer/modules/marketplace/market"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ datagateway.MarketplaceDataGateway = (*fakeMarketplaceDg)(nil)

// fakeMarketplaceDg records every write so tests can assert on the merged
// batch. failWrites makes the next n write calls fail to exercise the
// sanitize-and-retry path.
type fakeMarketplaceDg struct {
	beginCount    int
	commitCount   int
	rollbackCount int
	failWrites    int

	activities               []*entity.TokenActivity
	listings                 []*entity.CurrentMarketplaceListing
	currentCollectionVolumes []*entity.CurrentCollectionVolume
	currentTokenVolumes      []*entity.CurrentTokenVolume
	collectionVolumes        []*entity.CollectionVolume
	tokenVolumes             []*entity.TokenVolume
	checkpoints              []entity.Checkpoint
}

func (f *fakeMarketplaceDg) failNextWrite() error {
	if f.failWrites > 0 {
		f.failWrites--
		return errors.New("write failed")
	}
	return nil
}

func (f *fakeMarketplaceDg) Begin(ctx context.Context) error {
	f.beginCount++
	return nil
}

func (f *fakeMarketplaceDg) Commit(ctx context.Context) error {
	f.commitCount++
	return nil
}

func (f *fakeMarketplaceDg) Rollback(ctx context.Context) error {
	f.rollbackCount++
	return nil
}

func (f *fakeMarketplaceDg) CreateTokenActivities(ctx context.Context, activities []*entity.TokenActivity) error {
	if err := f.failNextWrite(); err != nil {
		return err
	}
	f.activities = activities
	return nil
}

func (f *fakeMarketplaceDg) UpsertListings(ctx context.Context, listings []*entity.CurrentMarketplaceListing) error {
	if err := f.failNextWrite(); err != nil {
		return err
	}
	f.listings = listings
	return nil
}

func (f *fakeMarketplaceDg) AddCurrentCollectionVolumes(ctx context.Context, volumes []*entity.CurrentCollectionVolume) error {
	if err := f.failNextWrite(); err != nil {
		return err
	}
	f.currentCollectionVolumes = volumes
	return nil
}

func (f *fakeMarketplaceDg) AddCurrentTokenVolumes(ctx context.Context, volumes []*entity.CurrentTokenVolume) error {
	if err := f.failNextWrite(); err != nil {
		return err
	}
	f.currentTokenVolumes = volumes
	return nil
}

func (f *fakeMarketplaceDg) CreateCollectionVolumes(ctx context.Context, volumes []*entity.CollectionVolume) error {
	if err := f.failNextWrite(); err != nil {
		return err
	}
	f.collectionVolumes = volumes
	return nil
}

func (f *fakeMarketplaceDg) CreateTokenVolumes(ctx context.Context, volumes []*entity.TokenVolume) error {
	if err := f.failNextWrite(); err != nil {
		return err
	}
	f.tokenVolumes = volumes
	return nil
}

func (f *fakeMarketplaceDg) CreateCheckpoint(ctx context.Context, checkpoint entity.Checkpoint) error {
	if err := f.failNextWrite(); err != nil {
		return err
	}
	f.checkpoints = append(f.checkpoints, checkpoint)
	return nil
}

func (f *fakeMarketplaceDg) GetLatestCheckpoint(ctx context.Context) (entity.Checkpoint, error) {
	if len(f.checkpoints) == 0 {
		return entity.Checkpoint{}, errors.WithStack(errs.NotFound)
	}
	return f.checkpoints[len(f.checkpoints)-1], nil
}

func (f *fakeMarketplaceDg) GetListingByTokenDataIDHash(ctx context.Context, tokenDataIDHash string) (*entity.CurrentMarketplaceListing, error) {
	return nil, errors.WithStack(errs.NotFound)
}

func (f *fakeMarketplaceDg) GetListingsByCollectionDataIDHash(ctx context.Context, collectionDataIDHash string, limit, offset int32) ([]*entity.CurrentMarketplaceListing, error) {
	return nil, nil
}

func (f *fakeMarketplaceDg) GetCollectionVolume(ctx context.Context, collectionDataIDHash string) (*entity.CurrentCollectionVolume, error) {
	return nil, errors.WithStack(errs.NotFound)
}

func (f *fakeMarketplaceDg) GetTokenVolume(ctx context.Context, tokenDataIDHash string) (*entity.CurrentTokenVolume, error) {
	return nil, errors.WithStack(errs.NotFound)
}

func (f *fakeMarketplaceDg) GetTokenActivities(ctx context.Context, tokenDataIDHash string, limit, offset int32) ([]*entity.TokenActivity, error) {
	return nil, nil
}

func testTokenIDJSON(name string) string {
	quoted, _ := json.Marshal(name)
	return fmt.Sprintf(`{"token_data_id":{"creator":"0xc0ffee","collection":"Aptos Monkeys","name":%s},"property_version":"0"}`, quoted)
}

func topazListEvent(name string, price int64) types.Event {
	return types.Event{
		Type:           market.TopazModuleAddress + "::events::ListEvent",
		AccountAddress: "0xacc",
		Data: json.RawMessage(fmt.Sprintf(
			`{"timestamp":"0","listing_id":"1","token_id":%s,"price":"%d","amount":"1","seller":"0xseller"}`,
			testTokenIDJSON(name), price,
		)),
	}
}

func topazDelistEvent(name string) types.Event {
	return types.Event{
		Type:           market.TopazModuleAddress + "::events::DelistEvent",
		AccountAddress: "0xacc",
		Data: json.RawMessage(fmt.Sprintf(
			`{"timestamp":"0","listing_id":"1","token_id":%s,"price":"0","amount":"1","seller":"0xseller"}`,
			testTokenIDJSON(name),
		)),
	}
}

func topazBuyEvent(name string, price int64) types.Event {
	return types.Event{
		Type:           market.TopazModuleAddress + "::events::BuyEvent",
		AccountAddress: "0xacc",
		Data: json.RawMessage(fmt.Sprintf(
			`{"timestamp":"0","listing_id":"1","token_id":%s,"price":"%d","amount":"1","seller":"0xseller","buyer":"0xbuyer"}`,
			testTokenIDJSON(name), price,
		)),
	}
}

func depositEvent(name string) types.Event {
	return types.Event{
		Type:           market.TokenModuleAddress + "::token::DepositEvent",
		AccountAddress: "0xacc",
		Data:           json.RawMessage(fmt.Sprintf(`{"amount":"1","id":%s}`, testTokenIDJSON(name))),
	}
}

func newTestProcessor(dg *fakeMarketplaceDg) *Processor {
	return NewProcessor(dg, nil, common.NetworkMainnet)
}

func TestProcessEmptyBatch(t *testing.T) {
	dg := &fakeMarketplaceDg{}
	p := newTestProcessor(dg)

	err := p.Process(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, dg.beginCount)
}

func TestProcessListingLastWins(t *testing.T) {
	dg := &fakeMarketplaceDg{}
	p := newTestProcessor(dg)
	now := time.Now().UTC()

	transactions := []*types.Transaction{
		{Version: 10, Success: true, Timestamp: now, Events: []types.Event{topazListEvent("Monkey #1", 100)}},
		{Version: 11, Success: true, Timestamp: now, Events: []types.Event{topazDelistEvent("Monkey #1")}},
		{Version: 12, Success: true, Timestamp: now, Events: []types.Event{topazListEvent("Monkey #2", 200)}},
	}

	err := p.Process(context.Background(), transactions)
	require.NoError(t, err)

	// one row per token, only the latest event per token survives
	require.Len(t, dg.listings, 2)
	delisted := dg.listings[0]
	assert.Equal(t, "", delisted.MarketAddress)
	assert.Equal(t, int64(11), delisted.LastTransactionVersion)
	listed := dg.listings[1]
	assert.Equal(t, market.TopazModuleAddress, listed.MarketAddress)
	assert.Equal(t, int64(12), listed.LastTransactionVersion)
	assert.True(t, listed.Price.Equal(decimal.NewFromInt(200)))

	assert.Len(t, dg.activities, 3)
	require.Len(t, dg.checkpoints, 1)
	assert.Equal(t, int64(10), dg.checkpoints[0].StartVersion)
	assert.Equal(t, int64(12), dg.checkpoints[0].EndVersion)
	assert.Equal(t, 1, dg.beginCount)
	assert.Equal(t, 1, dg.commitCount)
}

func TestProcessVolumeSum(t *testing.T) {
	dg := &fakeMarketplaceDg{}
	p := newTestProcessor(dg)
	now := time.Now().UTC()

	secondBuy := topazBuyEvent("Monkey #2", 7)
	secondBuy.SequenceNumber = 1
	transactions := []*types.Transaction{
		{Version: 20, Success: true, Timestamp: now, Events: []types.Event{topazBuyEvent("Monkey #1", 100)}},
		{Version: 21, Success: true, Timestamp: now, Events: []types.Event{
			topazBuyEvent("Monkey #1", 50),
			secondBuy,
		}},
	}

	err := p.Process(context.Background(), transactions)
	require.NoError(t, err)

	// collection volumes are summed across the batch
	require.Len(t, dg.currentCollectionVolumes, 1)
	assert.True(t, dg.currentCollectionVolumes[0].Volume.Equal(decimal.NewFromInt(157)))
	assert.Equal(t, int64(21), dg.currentCollectionVolumes[0].LastTransactionVersion)

	// token volumes are summed per token
	require.Len(t, dg.currentTokenVolumes, 2)
	assert.True(t, dg.currentTokenVolumes[0].Volume.Equal(decimal.NewFromInt(150)))
	assert.True(t, dg.currentTokenVolumes[1].Volume.Equal(decimal.NewFromInt(7)))

	// the append-only tables keep one row per trade, two trades in the same
	// transaction stay distinct through the event identity
	require.Len(t, dg.collectionVolumes, 3)
	require.Len(t, dg.tokenVolumes, 3)
	assert.Equal(t, int64(21), dg.collectionVolumes[1].TransactionVersion)
	assert.Equal(t, int64(0), dg.collectionVolumes[1].EventSequenceNumber)
	assert.Equal(t, int64(21), dg.collectionVolumes[2].TransactionVersion)
	assert.Equal(t, int64(1), dg.collectionVolumes[2].EventSequenceNumber)
	assert.True(t, dg.tokenVolumes[2].Volume.Equal(decimal.NewFromInt(7)))
}

func TestProcessSkipsFailedTransactions(t *testing.T) {
	dg := &fakeMarketplaceDg{}
	p := newTestProcessor(dg)
	now := time.Now().UTC()

	transactions := []*types.Transaction{
		{Version: 30, Success: false, Timestamp: now, Events: []types.Event{topazBuyEvent("Monkey #1", 100)}},
		{Version: 31, Success: true, Timestamp: now, Events: []types.Event{depositEvent("Monkey #1")}},
	}

	err := p.Process(context.Background(), transactions)
	require.NoError(t, err)

	assert.Len(t, dg.activities, 1)
	assert.Empty(t, dg.currentCollectionVolumes)
	// the checkpoint still covers the full range, including failed transactions
	require.Len(t, dg.checkpoints, 1)
	assert.Equal(t, int64(30), dg.checkpoints[0].StartVersion)
	assert.Equal(t, int64(31), dg.checkpoints[0].EndVersion)
}

func TestProcessSkipsMalformedEvents(t *testing.T) {
	dg := &fakeMarketplaceDg{}
	p := newTestProcessor(dg)
	now := time.Now().UTC()

	malformed := types.Event{
		Type:           market.TokenModuleAddress + "::token::DepositEvent",
		AccountAddress: "0xacc",
		Data:           json.RawMessage(`{"amount":"1","id":5}`),
	}
	unrecognized := types.Event{
		Type:           "0x1::coin::DepositEvent",
		AccountAddress: "0xacc",
		Data:           json.RawMessage(`{"amount":"1"}`),
	}

	transactions := []*types.Transaction{
		{Version: 40, Success: true, Timestamp: now, Events: []types.Event{
			malformed,
			unrecognized,
			depositEvent("Monkey #1"),
		}},
	}

	err := p.Process(context.Background(), transactions)
	require.NoError(t, err)

	// only the well-formed recognized event produces a row
	assert.Len(t, dg.activities, 1)
	assert.Len(t, dg.checkpoints, 1)
}

func TestProcessSanitizeRetry(t *testing.T) {
	dg := &fakeMarketplaceDg{failWrites: 1}
	p := newTestProcessor(dg)
	now := time.Now().UTC()

	transactions := []*types.Transaction{
		{Version: 50, Success: true, Timestamp: now, Events: []types.Event{depositEvent("Monkey\x00 #1")}},
	}

	err := p.Process(context.Background(), transactions)
	require.NoError(t, err)

	assert.Equal(t, 2, dg.beginCount)
	assert.Equal(t, 1, dg.commitCount)
	assert.Equal(t, 2, dg.rollbackCount)

	// the retried rows have null bytes scrubbed
	require.Len(t, dg.activities, 1)
	assert.Equal(t, "Monkey #1", dg.activities[0].Name)
	assert.False(t, strings.Contains(dg.activities[0].Name, "\x00"))
}

func TestProcessPersistFailureAfterRetry(t *testing.T) {
	dg := &fakeMarketplaceDg{failWrites: 2}
	p := newTestProcessor(dg)
	now := time.Now().UTC()

	transactions := []*types.Transaction{
		{Version: 60, Success: true, Timestamp: now, Events: []types.Event{depositEvent("Monkey #1")}},
	}

	err := p.Process(context.Background(), transactions)
	require.Error(t, err)
	assert.Equal(t, 2, dg.beginCount)
	assert.Zero(t, dg.commitCount)
}
