// Package forward issues the outbound call to a resolved backend and
// classifies its outcome as success, downstream client error (4xx),
// downstream server error (5xx or transport failure) or timeout.
//
// Multipart file payloads are buffered in memory up to the inbound body
// limit, because a retried call must be able to resend them; the outbound
// multipart encoding is streamed through a pipe.
//
// A successful body larger than Config.MaxResponseBytes is never returned
// truncated: the call fails with ErrResponseTooLarge. For GET calls, object
// and array-of-object input values are JSON-encoded into the query string.
package forward
