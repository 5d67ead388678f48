// Package dispatch turns inbound gateway calls, whether JSON, multipart or
// bare query parameters, into one canonical Request.
package dispatch
