package dispatch

import (
	"net/http"
	"strings"
)

// Payload is the forwarded input of a dispatch request. It is either Fields
// or Bytes; the concrete type is chosen once during normalization.
type Payload interface {
	isPayload()
}

// Fields is a key/value input, sent as query parameters for bodyless
// methods and as a JSON object otherwise.
type Fields map[string]any

func (Fields) isPayload() {}

// Bytes is an opaque input. When Name is set it is forwarded as a multipart
// file part together with Form; otherwise Data is sent as the raw body with
// ContentType.
type Bytes struct {
	// Name is the multipart form field of the file part.
	Name string

	// Filename is the client-supplied file name.
	Filename string

	// ContentType is the media type of Data.
	ContentType string

	// Data holds the content, buffered so that retries can resend it.
	Data []byte

	// Form holds the remaining multipart fields.
	Form map[string][]string
}

func (*Bytes) isPayload() {}

// Request is the canonical form of an inbound call, independent of how it
// was encoded.
type Request struct {
	// Impl is the logical service name.
	Impl string

	// Path is the backend path appended to the service base URL.
	Path string

	// Method is the outbound HTTP method.
	Method string

	// Input is the forwarded payload. It is never nil after Normalize.
	Input Payload
}

var allowedMethods = map[string]bool{
	http.MethodGet:     true,
	http.MethodHead:    true,
	http.MethodPost:    true,
	http.MethodPut:     true,
	http.MethodPatch:   true,
	http.MethodDelete:  true,
	http.MethodOptions: true,
}

// IsBodyless reports whether payloads for method travel in the query string.
func IsBodyless(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// Validate checks the invariants every request must satisfy before it is
// routed.
func (r *Request) Validate() error {
	if strings.TrimSpace(r.Impl) == "" {
		return invalid("missing impl")
	}
	if strings.TrimSpace(r.Path) == "" {
		return invalid("missing path")
	}
	if !allowedMethods[r.Method] {
		return invalid("unsupported method %q", r.Method)
	}
	if _, isBytes := r.Input.(*Bytes); isBytes && IsBodyless(r.Method) {
		return invalid("%s cannot carry an opaque body", r.Method)
	}
	return nil
}
