package interfaces

import (
	"context"
	"time"
)

// -----------------------------------------------------------------------------
// INetworkManager defines the contract for HTTP requests with potential proxy/retry logic.
// -----------------------------------------------------------------------------

type INetworkManager interface {

	// Get performs a GET request against the full URL, bounded by timeout per
	// attempt. Returns the raw response body or an error.
	Get(ctx context.Context, url string, timeout time.Duration) ([]byte, error)
}
