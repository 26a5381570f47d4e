package indexer

import "context"

// IndexerWorker is a long-running worker that drives one processor.
type IndexerWorker interface {
	Run(ctx context.Context) error
}

// Input is the unit of data consumed by the indexer. Inputs arrive in
// batches ordered by ledger version.
type Input interface {
	TransactionVersion() int64
}

type Processor[T Input] interface {
	Name() string

	// Process processes the input data and indexes it.
	Process(ctx context.Context, inputs []T) error

	// CurrentVersion returns the latest indexed ledger version.
	CurrentVersion(ctx context.Context) (int64, error)

	// Shutdown gracefully stops the processor and releases its resources.
	Shutdown(ctx context.Context) error
}
