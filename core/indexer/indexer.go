package indexer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/marketlens/aptos-indexer/common/errs"
	"github.com/marketlens/aptos-indexer/core/datasources"
	"github.com/marketlens/aptos-indexer/pkg/logger"
	"github.com/marketlens/aptos-indexer/pkg/logger/slogx"
)

// pollingInterval is the default polling interval for the indexer polling worker
const pollingInterval = 15 * time.Second

// Indexer generic indexer for fetching and processing data. Ledger versions
// are final once committed, so the indexer only ever moves forward.
type Indexer[T Input] struct {
	Processor      Processor[T]
	Datasource     datasources.Datasource[T]
	currentVersion int64

	quitOnce sync.Once
	quit     chan struct{}
	done     chan struct{}
}

// New create new generic indexer
func New[T Input](processor Processor[T], datasource datasources.Datasource[T]) *Indexer[T] {
	return &Indexer[T]{
		Processor:  processor,
		Datasource: datasource,

		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
}

func (i *Indexer[T]) Shutdown() error {
	return i.ShutdownWithContext(context.Background())
}

func (i *Indexer[T]) ShutdownWithTimeout(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return i.ShutdownWithContext(ctx)
}

func (i *Indexer[T]) ShutdownWithContext(ctx context.Context) (err error) {
	i.quitOnce.Do(func() {
		close(i.quit)
		select {
		case <-i.done:
		case <-time.After(180 * time.Second):
			err = errors.Wrap(errs.Timeout, "indexer shutdown timeout")
		case <-ctx.Done():
			err = errors.Wrap(ctx.Err(), "indexer shutdown context canceled")
		}
	})
	return
}

func (i *Indexer[T]) Run(ctx context.Context) (err error) {
	defer close(i.done)

	ctx = logger.WithContext(ctx,
		slog.String("package", "indexer"),
		slog.String("processor", i.Processor.Name()),
		slog.String("datasource", i.Datasource.Name()),
	)

	// set to -1 to start from genesis version
	i.currentVersion, err = i.Processor.CurrentVersion(ctx)
	if err != nil {
		if !errors.Is(err, errs.NotFound) {
			return errors.Wrap(err, "can't init state, failed to get indexer current version")
		}
		i.currentVersion = -1
	}

	ticker := time.NewTicker(pollingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-i.quit:
			logger.InfoContext(ctx, "Got quit signal, stopping indexer")
			if err := i.Processor.Shutdown(ctx); err != nil {
				logger.ErrorContext(ctx, "Failed to shutdown processor", slogx.Error(err))
				return errors.Wrap(err, "processor shutdown failed")
			}
			return nil
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := i.process(ctx); err != nil {
				logger.ErrorContext(ctx, "Indexer failed while processing", slogx.Error(err))
				return errors.Wrap(err, "process failed")
			}
			logger.DebugContext(ctx, "Waiting for next polling interval")
		}
	}
}

func (i *Indexer[T]) process(ctx context.Context) (err error) {
	// version range to fetch data
	from, to := i.currentVersion+1, int64(-1)

	logger.InfoContext(ctx, "Start fetching input data", slog.Int64("from", from))
	ch := make(chan []T)
	subscription, err := i.Datasource.FetchAsync(ctx, from, to, ch)
	if err != nil {
		return errors.Wrap(err, "failed to fetch input data")
	}
	defer subscription.Unsubscribe()

	for {
		select {
		case <-i.quit:
			return nil
		case inputs := <-ch:
			// empty inputs
			if len(inputs) == 0 {
				continue
			}

			startAt := time.Now()
			ctx := logger.WithContext(ctx,
				slogx.Int64("from", inputs[0].TransactionVersion()),
				slogx.Int64("to", inputs[len(inputs)-1].TransactionVersion()),
			)

			// validate inputs are ordered and follow the current state,
			// versions can have gaps (the datasource may filter transactions)
			// but must never go backwards
			if first := inputs[0].TransactionVersion(); first <= i.currentVersion {
				return errors.Wrapf(errs.InternalError, "input version went backwards, current version: %d, input version: %d", i.currentVersion, first)
			}
			for idx := 1; idx < len(inputs); idx++ {
				prev, cur := inputs[idx-1].TransactionVersion(), inputs[idx].TransactionVersion()
				if cur <= prev {
					return errors.Wrapf(errs.InternalError, "input is not ordered, input[%d] version: %d, input[%d] version: %d", idx-1, prev, idx, cur)
				}
			}

			ctx = logger.WithContext(ctx, slog.Int("total_inputs", len(inputs)))

			// Start processing input
			logger.InfoContext(ctx, "Processing inputs")
			if err := i.Processor.Process(ctx, inputs); err != nil {
				return errors.WithStack(err)
			}

			// Update current state
			i.currentVersion = inputs[len(inputs)-1].TransactionVersion()

			logger.InfoContext(ctx, "Processed inputs successfully",
				slogx.String("event", "processed_inputs"),
				slogx.Int64("current_version", i.currentVersion),
				slogx.Duration("duration", time.Since(startAt)),
			)
		case <-subscription.Done():
			// end current round
			if err := ctx.Err(); err != nil {
				return errors.Wrap(err, "context done")
			}
			return nil
		case <-ctx.Done():
			return errors.WithStack(ctx.Err())
		case err := <-subscription.Err():
			if err != nil {
				return errors.Wrap(err, "got error while fetch async")
			}
		}
	}
}
