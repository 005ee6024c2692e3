package interfaces

import (
	"context"

	"market-breadth/src/models"
)

// -----------------------------------------------------------------------------
// IQuoteSource fetches raw quote data from the upstream feed.
// -----------------------------------------------------------------------------

type IQuoteSource interface {

	// Name returns the unique identifier of the source
	Name() string

	// FetchBatch issues one request for the symbols and returns the decoded body.
	FetchBatch(ctx context.Context, symbols []string) (string, error)

	// FetchIndex returns the reference index quote.
	FetchIndex(ctx context.Context) (models.MIndexQuote, error)

	// FetchQuotes looks up full quotes for plain or prefixed stock codes.
	FetchQuotes(ctx context.Context, codes []string) ([]models.MQuoteRecord, error)
}

// -----------------------------------------------------------------------------
// ICollector produces one breadth snapshot per call.
// -----------------------------------------------------------------------------

type ICollector interface {
	CollectSnapshot(ctx context.Context) (models.MBreadthSnapshot, error)
}
