// Package retry runs an operation with exponential backoff.
//
// It is used where edgeipc waits on something outside the process, mainly the
// NATS connection in natsclient.ConnectWithRetry:
//
//	err := retry.Do(ctx, retry.Quick(), func() error {
//	    return client.Connect(ctx)
//	})
//
// Errors wrapped with NonRetryable, and errors the errors package classifies
// as fatal or invalid, stop the loop at once: a configuration mistake does
// not get better by waiting. Everything else is retried until the attempts
// run out or the context is done.
//
// Presets:
//
//   - DefaultConfig(): 3 attempts, 100ms-5s
//   - Quick(): 10 attempts, 50ms-1s
//   - Persistent(): 30 attempts, 200ms-10s
package retry
