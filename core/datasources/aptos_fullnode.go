package datasources

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/marketlens/aptos-indexer/common/errs"
	"github.com/marketlens/aptos-indexer/core/types"
	"github.com/marketlens/aptos-indexer/internal/subscription"
	"github.com/marketlens/aptos-indexer/pkg/httpclient"
	"github.com/marketlens/aptos-indexer/pkg/logger"
	"github.com/marketlens/aptos-indexer/pkg/logger/slogx"
)

// Make sure to implement the Datasource interface
var _ Datasource[*types.Transaction] = (*AptosFullnodeDatasource)(nil)

// fetchBatchSize is the page size for the fullnode /v1/transactions endpoint.
// The fullnode caps the limit parameter at 100.
const fetchBatchSize = 100

// AptosFullnodeDatasource fetches committed transactions from an Aptos
// fullnode REST API, paged by ledger version.
type AptosFullnodeDatasource struct {
	client *httpclient.Client
}

func NewAptosFullnode(fullnodeURL string) (*AptosFullnodeDatasource, error) {
	client, err := httpclient.New(fullnodeURL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create http client")
	}
	return &AptosFullnodeDatasource{client: client}, nil
}

func (d *AptosFullnodeDatasource) Name() string {
	return "aptos_fullnode"
}

type ledgerInfo struct {
	ChainID       int    `json:"chain_id"`
	LedgerVersion string `json:"ledger_version"`
}

type fullnodeEventGUID struct {
	CreationNumber string `json:"creation_number"`
	AccountAddress string `json:"account_address"`
}

type fullnodeEvent struct {
	GUID           fullnodeEventGUID `json:"guid"`
	SequenceNumber string            `json:"sequence_number"`
	Type           string            `json:"type"`
	Data           json.RawMessage   `json:"data"`
}

type fullnodeTransaction struct {
	Type      string          `json:"type"`
	Version   string          `json:"version"`
	Hash      string          `json:"hash"`
	Success   bool            `json:"success"`
	Timestamp string          `json:"timestamp"`
	Events    []fullnodeEvent `json:"events"`
}

func (t fullnodeTransaction) ToTransaction() (*types.Transaction, error) {
	version, err := strconv.ParseInt(t.Version, 10, 64)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid transaction version %q", t.Version)
	}
	// timestamp is in microseconds since epoch
	timestampMicro, err := strconv.ParseInt(t.Timestamp, 10, 64)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid transaction timestamp %q", t.Timestamp)
	}
	events := make([]types.Event, 0, len(t.Events))
	for _, event := range t.Events {
		creationNumber, err := strconv.ParseInt(event.GUID.CreationNumber, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid event creation number %q", event.GUID.CreationNumber)
		}
		sequenceNumber, err := strconv.ParseInt(event.SequenceNumber, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid event sequence number %q", event.SequenceNumber)
		}
		events = append(events, types.Event{
			Type:           event.Type,
			AccountAddress: event.GUID.AccountAddress,
			CreationNumber: creationNumber,
			SequenceNumber: sequenceNumber,
			Data:           event.Data,
		})
	}
	return &types.Transaction{
		Version:   version,
		Hash:      t.Hash,
		Success:   t.Success,
		Timestamp: time.UnixMicro(timestampMicro).UTC(),
		Events:    events,
	}, nil
}

// GetLatestVersion returns the latest committed ledger version of the fullnode.
func (d *AptosFullnodeDatasource) GetLatestVersion(ctx context.Context) (int64, error) {
	resp, err := d.client.Get(ctx, "/v1", httpclient.RequestOptions{})
	if err != nil {
		return -1, errors.Wrap(err, "failed to get ledger info")
	}
	var info ledgerInfo
	if err := resp.UnmarshalBody(&info); err != nil {
		return -1, errors.Wrap(err, "failed to unmarshal ledger info")
	}
	version, err := strconv.ParseInt(info.LedgerVersion, 10, 64)
	if err != nil {
		return -1, errors.Wrapf(err, "invalid ledger version %q", info.LedgerVersion)
	}
	return version, nil
}

// Fetch fetches transactions from the fullnode, blocking until the requested
// range is complete.
//
//   - from: ledger version to start fetching, if -1, it will start from version 0
//   - to: ledger version to stop fetching, if -1, it will fetch until the latest version
func (d *AptosFullnodeDatasource) Fetch(ctx context.Context, from, to int64) ([]*types.Transaction, error) {
	ch := make(chan []*types.Transaction)
	subscription, err := d.FetchAsync(ctx, from, to, ch)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer subscription.Unsubscribe()

	txs := make([]*types.Transaction, 0)
	for {
		select {
		case batch := <-ch:
			txs = append(txs, batch...)
		case <-subscription.Done():
			return txs, nil
		case err := <-subscription.Err():
			if err != nil {
				return nil, errors.WithStack(err)
			}
		case <-ctx.Done():
			return nil, errors.Wrap(ctx.Err(), "context done")
		}
	}
}

// FetchAsync fetches transactions from the fullnode asynchronously (non-blocking)
func (d *AptosFullnodeDatasource) FetchAsync(ctx context.Context, from, to int64, ch chan<- []*types.Transaction) (*subscription.ClientSubscription[[]*types.Transaction], error) {
	ctx = logger.WithContext(ctx,
		slogx.String("package", "datasources"),
		slogx.String("datasource", d.Name()),
	)

	from, to, skip, err := d.prepareRange(ctx, from, to)
	if err != nil {
		return nil, errors.Wrap(err, "failed to prepare fetch range")
	}

	sub := subscription.NewSubscription(ch)
	if skip {
		if err := sub.UnsubscribeWithContext(ctx); err != nil {
			return nil, errors.Wrap(err, "failed to unsubscribe")
		}
		return sub.Client(), nil
	}

	go func() {
		defer sub.Unsubscribe()

		for start := from; start <= to; start += fetchBatchSize {
			limit := min(int64(fetchBatchSize), to-start+1)
			txs, err := d.fetchPage(ctx, start, limit)
			if err != nil {
				logger.ErrorContext(ctx, "Failed to fetch transactions page from fullnode",
					slogx.Int64("start", start),
					slogx.Error(err),
				)
				if err := sub.SendError(ctx, errors.WithStack(err)); err != nil {
					logger.WarnContext(ctx, "Failed to send datasource error to subscription client", slogx.Error(err))
				}
				return
			}

			// fullnode may prune old transactions, fail loudly instead of
			// silently skipping versions
			if len(txs) < int(limit) {
				if err := sub.SendError(ctx, errors.Wrapf(errs.InternalError, "fullnode returned incomplete page, start: %d, expected: %d, got: %d", start, limit, len(txs))); err != nil {
					logger.WarnContext(ctx, "Failed to send datasource error to subscription client", slogx.Error(err))
				}
				return
			}

			if err := sub.Send(ctx, txs); err != nil {
				if errors.Is(err, errs.Closed) {
					return
				}
				logger.WarnContext(ctx, "Failed to send transactions to subscription client",
					slogx.Int64("start", start),
					slogx.Error(err),
				)
				return
			}
		}
	}()

	return sub.Client(), nil
}

func (d *AptosFullnodeDatasource) fetchPage(ctx context.Context, start, limit int64) ([]*types.Transaction, error) {
	query := url.Values{}
	query.Set("start", strconv.FormatInt(start, 10))
	query.Set("limit", strconv.FormatInt(limit, 10))

	resp, err := d.client.Get(ctx, "/v1/transactions", httpclient.RequestOptions{Query: query})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transactions")
	}

	var rawTxs []fullnodeTransaction
	if err := resp.UnmarshalBody(&rawTxs); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal transactions")
	}

	txs := make([]*types.Transaction, 0, len(rawTxs))
	for _, rawTx := range rawTxs {
		tx, err := rawTx.ToTransaction()
		if err != nil {
			return nil, errors.Wrapf(err, "failed to convert transaction, version: %s", rawTx.Version)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

func (d *AptosFullnodeDatasource) prepareRange(ctx context.Context, fromVersion, toVersion int64) (start, end int64, skip bool, err error) {
	start = fromVersion
	end = toVersion

	latestVersion, err := d.GetLatestVersion(ctx)
	if err != nil {
		return -1, -1, false, errors.Wrap(err, "failed to get latest ledger version")
	}

	// set start to genesis version
	if start < 0 {
		start = 0
	}

	// set end to latest ledger version if
	// - end is -1
	// - end is greater than latest ledger version
	if end < 0 || end > latestVersion {
		end = latestVersion
	}

	// if start is greater than end, skip this round
	if start > end {
		return -1, -1, true, nil
	}

	return start, end, false, nil
}
