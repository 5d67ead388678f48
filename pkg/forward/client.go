package forward

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"sort"
	"strings"
	"time"

	"estech/inference-gateway/pkg/dispatch"
)

// TraceHeader carries the gateway trace identifier to backends.
const TraceHeader = "X-Trace-Id"

// DefaultMaxResponseBytes bounds how much of a backend response is read.
const DefaultMaxResponseBytes = 64 << 20

// Config contains the forwarding client settings.
type Config struct {
	// Timeout bounds each call. Zero means no per-call timeout.
	Timeout time.Duration

	// Transport overrides the HTTP transport (tests, tracing).
	Transport http.RoundTripper

	// MaxResponseBytes bounds the backend body read into memory.
	MaxResponseBytes int64

	// MaxIdleConnsPerHost sizes the connection pool per backend.
	MaxIdleConnsPerHost int
}

// Call is a single outbound request.
type Call struct {
	Method  string
	URL     string
	TraceID string

	// Header holds extra outbound headers (e.g. trace propagation).
	Header http.Header

	// Input is the payload; nil sends no body.
	Input dispatch.Payload
}

// Response is a successful backend reply.
type Response struct {
	StatusCode int

	// ContentType is the backend Content-Type header, empty when unset.
	ContentType string

	Body []byte
}

// Client forwards calls to backends and classifies the outcome.
// Client is safe for concurrent use.
type Client struct {
	http        *http.Client
	timeout     time.Duration
	maxResponse int64
}

// NewClient creates a Client with connection pooling.
func NewClient(cfg Config) *Client {
	transport := cfg.Transport
	if transport == nil {
		perHost := cfg.MaxIdleConnsPerHost
		if perHost == 0 {
			perHost = 32
		}
		transport = &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        perHost * 4,
			MaxIdleConnsPerHost: perHost,
			IdleConnTimeout:     90 * time.Second,
			ForceAttemptHTTP2:   true,
		}
	}
	maxResponse := cfg.MaxResponseBytes
	if maxResponse == 0 {
		maxResponse = DefaultMaxResponseBytes
	}

	return &Client{
		http:        &http.Client{Transport: transport},
		timeout:     cfg.Timeout,
		maxResponse: maxResponse,
	}
}

// Forward sends call and returns the backend reply on a 2xx response.
// Failures are a *DownstreamClientError (4xx), a *DownstreamServerError
// (5xx, oversized body or transport failure) or a *TimeoutError.
// Cancellation of ctx by the caller is returned as the context error.
func (c *Client) Forward(ctx context.Context, call Call) (*Response, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := c.newRequest(ctx, call)
	if err != nil {
		return nil, err
	}

	slog.DebugContext(ctx, "forwarding request",
		"method", req.Method,
		"url", req.URL.Redacted(),
	)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.classifyTransport(ctx, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxResponse+1))
	if err != nil {
		return nil, c.classifyTransport(ctx, err)
	}
	tooLarge := int64(len(body)) > c.maxResponse
	if tooLarge {
		body = body[:c.maxResponse]
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if tooLarge {
			return nil, &DownstreamServerError{
				StatusCode: resp.StatusCode,
				Cause:      fmt.Errorf("%w: limit is %d bytes", ErrResponseTooLarge, c.maxResponse),
			}
		}
		return &Response{
			StatusCode:  resp.StatusCode,
			ContentType: resp.Header.Get("Content-Type"),
			Body:        body,
		}, nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return nil, &DownstreamClientError{StatusCode: resp.StatusCode, Body: body}
	default:
		return nil, &DownstreamServerError{StatusCode: resp.StatusCode, Body: body}
	}
}

func (c *Client) classifyTransport(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return &TimeoutError{Timeout: c.timeout, Cause: ctxErr}
		}
		return ctxErr
	}
	return &DownstreamServerError{Cause: err}
}

func (c *Client) newRequest(ctx context.Context, call Call) (*http.Request, error) {
	method := strings.ToUpper(call.Method)
	target := call.URL
	var (
		body        io.Reader
		contentType string
	)

	switch in := call.Input.(type) {
	case nil:
	case dispatch.Fields:
		if dispatch.IsBodyless(method) {
			u, err := url.Parse(target)
			if err != nil {
				return nil, fmt.Errorf("invalid target URL %q: %w", target, err)
			}
			q := u.Query()
			if err := addQuery(q, in); err != nil {
				return nil, err
			}
			u.RawQuery = q.Encode()
			target = u.String()
		} else {
			data, err := json.Marshal(in)
			if err != nil {
				return nil, fmt.Errorf("failed to encode input: %w", err)
			}
			body = bytes.NewReader(data)
			contentType = "application/json"
		}
	case *dispatch.Bytes:
		if in == nil {
			break
		}
		if dispatch.IsBodyless(method) {
			return nil, ErrBodyNotAllowed
		}
		if in.Name == "" {
			body = bytes.NewReader(in.Data)
			contentType = in.ContentType
		} else {
			body, contentType = streamMultipart(in)
		}
	default:
		return nil, fmt.Errorf("unsupported payload type %T", call.Input)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		if rc, ok := body.(io.Closer); ok {
			rc.Close()
		}
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, vs := range call.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if call.TraceID != "" {
		req.Header.Set(TraceHeader, call.TraceID)
	}
	return req, nil
}

// addQuery encodes fields as query parameters. Scalars are written as-is;
// objects and arrays holding objects are JSON-encoded.
func addQuery(q url.Values, fields dispatch.Fields) error {
	for k, v := range fields {
		switch vv := v.(type) {
		case []string:
			for _, s := range vv {
				q.Add(k, s)
			}
		case []any:
			for _, item := range vv {
				s, err := queryValue(k, item)
				if err != nil {
					return err
				}
				q.Add(k, s)
			}
		default:
			s, err := queryValue(k, vv)
			if err != nil {
				return err
			}
			q.Add(k, s)
		}
	}
	return nil
}

func queryValue(key string, v any) (string, error) {
	switch vv := v.(type) {
	case nil:
		return "", nil
	case string:
		return vv, nil
	case json.Number:
		return vv.String(), nil
	case bool, float64, int, int64:
		return fmt.Sprint(vv), nil
	default:
		data, err := json.Marshal(vv)
		if err != nil {
			return "", &dispatch.InvalidRequestError{Reason: fmt.Sprintf("field %q cannot be sent as a query parameter", key), Err: err}
		}
		return string(data), nil
	}
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// streamMultipart encodes the file part and its form fields through a pipe
// so the outbound body is written while it is sent. The source bytes stay
// buffered in the payload for retries.
func streamMultipart(in *dispatch.Bytes) (io.Reader, string) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		pw.CloseWithError(writeMultipart(mw, in))
	}()

	return pr, mw.FormDataContentType()
}

func writeMultipart(mw *multipart.Writer, in *dispatch.Bytes) error {
	keys := make([]string, 0, len(in.Form))
	for k := range in.Form {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, v := range in.Form[k] {
			if err := mw.WriteField(k, v); err != nil {
				return err
			}
		}
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(in.Name), quoteEscaper.Replace(in.Filename)))
	ct := in.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h.Set("Content-Type", ct)
	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := part.Write(in.Data); err != nil {
		return err
	}
	return mw.Close()
}
