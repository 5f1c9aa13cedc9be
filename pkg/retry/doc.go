// Package retry provides bounded, logged retries for network operations.
//
// Retrying is opt-in: DefaultConfig performs a single attempt, and the fetcher
// only retries when network.max_retries is above zero. Only errors of the
// network family are retried; every retry is logged at warn level.
//
// Basic usage:
//
//	cfg := retry.FromRetries("fetch archive", 2, time.Second, log)
//	page, err := retry.DoWithResult(ctx, func() ([]byte, error) {
//		return client.get(url)
//	}, cfg)
package retry
