// Package paging triggers previous/next page fetches when the visible window
// nears either end of the row sequence.
//
// The trigger reads the caller's page info but owns its own in-flight guards,
// one per direction, so a direction is never fetched twice concurrently:
//   - A guard is set before the fetch callback starts
//   - The guard is cleared when the callback returns, whatever the outcome
//   - Callback errors are returned to the caller unchanged
//
// There is no retry backoff; the next qualifying scroll simply tries again.
package paging
