// Package tasks runs the long-running operations behind homedeck's commands and reports progress over channels.
//
// # Download Poller
//
// [Poller] drives a score download through the states
// Idle → Submitted → Polling → Completed | Error:
//
//  1. [Poller.Submit] stops any poll still running, posts the request and disables the trigger
//  2. once a task id arrives, the status endpoint is polled on a fixed interval (1s by default)
//  3. progress and message are applied verbatim; completed, error and not_found stop the interval
//
// # Bulk Device Actions
//
// [BulkAction] wakes or shuts down many devices through a small worker pool behind a token-bucket limiter.
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
// The [ProgressUpdate] struct carries phase, step counters, a message, and optional data for richer UIs.
// Updates use select with default so a slow consumer never stalls the work.
package tasks
