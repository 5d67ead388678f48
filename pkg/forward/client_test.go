package forward

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"estech/inference-gateway/pkg/dispatch"
)

func TestForward_GetSendsQuery(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	client := NewClient(Config{Timeout: time.Second})
	resp, err := client.Forward(context.Background(), Call{
		Method:  http.MethodGet,
		URL:     srv.URL + "/predict?fixed=1",
		TraceID: "trace-123",
		Input:   dispatch.Fields{"topK": "5", "tags": []string{"a", "b"}},
	})
	if err != nil {
		t.Fatalf("Forward() error = %v", err)
	}
	if string(resp.Body) != `{"ok":true}` {
		t.Errorf("body = %q", resp.Body)
	}
	if resp.ContentType != "application/json" {
		t.Errorf("ContentType = %q", resp.ContentType)
	}

	q := got.URL.Query()
	if q.Get("topK") != "5" || q.Get("fixed") != "1" || len(q["tags"]) != 2 {
		t.Errorf("unexpected query: %v", q)
	}
	if got.Header.Get(TraceHeader) != "trace-123" {
		t.Errorf("trace header = %q", got.Header.Get(TraceHeader))
	}
}

func TestForward_PostSendsJSON(t *testing.T) {
	var (
		contentType string
		decoded     map[string]any
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		json.NewDecoder(r.Body).Decode(&decoded)
		w.Write([]byte("done"))
	}))
	defer srv.Close()

	client := NewClient(Config{Timeout: time.Second})
	_, err := client.Forward(context.Background(), Call{
		Method: http.MethodPost,
		URL:    srv.URL + "/run",
		Input:  dispatch.Fields{"text": "hello", "n": float64(3)},
	})
	if err != nil {
		t.Fatalf("Forward() error = %v", err)
	}
	if contentType != "application/json" {
		t.Errorf("Content-Type = %q", contentType)
	}
	if decoded["text"] != "hello" || decoded["n"] != float64(3) {
		t.Errorf("unexpected body: %v", decoded)
	}
}

func TestForward_PostKeepsLargeIntegers(t *testing.T) {
	var received string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		received = string(data)
	}))
	defer srv.Close()

	req := httptest.NewRequest(http.MethodPost, "/v1/run",
		strings.NewReader(`{"impl":"svc","path":"/p","input":{"id":12345678901234567890,"seq":9007199254740993}}`))
	req.Header.Set("Content-Type", "application/json")
	normalized, err := dispatch.Normalize(req, 1<<20)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	_, err = NewClient(Config{Timeout: time.Second}).Forward(context.Background(), Call{
		Method: normalized.Method,
		URL:    srv.URL + "/p",
		Input:  normalized.Input,
	})
	if err != nil {
		t.Fatalf("Forward() error = %v", err)
	}
	if received != `{"id":12345678901234567890,"seq":9007199254740993}` {
		t.Errorf("backend received %s", received)
	}
}

func TestForward_GetEncodesNestedValues(t *testing.T) {
	var q map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q = r.URL.Query()
	}))
	defer srv.Close()

	_, err := NewClient(Config{Timeout: time.Second}).Forward(context.Background(), Call{
		Method: http.MethodGet,
		URL:    srv.URL,
		Input: dispatch.Fields{
			"filter": map[string]any{"a": json.Number("1")},
			"ids":    []any{json.Number("12345678901234567890"), map[string]any{"b": true}},
			"flag":   true,
			"empty":  nil,
		},
	})
	if err != nil {
		t.Fatalf("Forward() error = %v", err)
	}

	tests := []struct {
		key  string
		want []string
	}{
		{"filter", []string{`{"a":1}`}},
		{"ids", []string{"12345678901234567890", `{"b":true}`}},
		{"flag", []string{"true"}},
		{"empty", []string{""}},
	}
	for _, tt := range tests {
		got := q[tt.key]
		if strings.Join(got, "|") != strings.Join(tt.want, "|") {
			t.Errorf("query %s = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestForward_ResponseTooLarge(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		size    int
		wantErr error
	}{
		{"within limit", http.StatusOK, 10, nil},
		{"oversized success", http.StatusOK, 100, ErrResponseTooLarge},
		{"oversized client error", http.StatusBadRequest, 100, ErrDownstreamClient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(strings.Repeat("x", tt.size)))
			}))
			defer srv.Close()

			resp, err := NewClient(Config{Timeout: time.Second, MaxResponseBytes: 10}).Forward(context.Background(), Call{Method: http.MethodGet, URL: srv.URL})
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if len(resp.Body) != tt.size {
					t.Errorf("body length = %d, want %d", len(resp.Body), tt.size)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if tt.wantErr == ErrResponseTooLarge && !errors.Is(err, ErrDownstreamServer) {
				t.Errorf("oversized body is not a downstream server error: %v", err)
			}
		})
	}
}

func TestForward_Multipart(t *testing.T) {
	var (
		fileData  string
		fileName  string
		threshold string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		fileData, fileName = string(data), hdr.Filename
		threshold = r.FormValue("threshold")
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	payload := &dispatch.Bytes{
		Name:        "file",
		Filename:    "cat.png",
		ContentType: "image/png",
		Data:        []byte("PNGDATA"),
		Form:        map[string][]string{"threshold": {"0.5"}},
	}
	client := NewClient(Config{Timeout: time.Second})

	// Twice: the payload must be replayable
	for i := 0; i < 2; i++ {
		if _, err := client.Forward(context.Background(), Call{Method: http.MethodPost, URL: srv.URL, Input: payload}); err != nil {
			t.Fatalf("Forward() attempt %d error = %v", i, err)
		}
		if fileData != "PNGDATA" || fileName != "cat.png" || threshold != "0.5" {
			t.Errorf("attempt %d: backend saw file=%q name=%q threshold=%q", i, fileData, fileName, threshold)
		}
	}
}

func TestForward_RawBytes(t *testing.T) {
	var body, ct string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		body, ct = string(data), r.Header.Get("Content-Type")
	}))
	defer srv.Close()

	client := NewClient(Config{})
	_, err := client.Forward(context.Background(), Call{
		Method: http.MethodPut,
		URL:    srv.URL,
		Input:  &dispatch.Bytes{ContentType: "application/json", Data: []byte(`[1,2]`)},
	})
	if err != nil {
		t.Fatalf("Forward() error = %v", err)
	}
	if body != `[1,2]` || ct != "application/json" {
		t.Errorf("backend saw body=%q content-type=%q", body, ct)
	}
}

func TestForward_GetRejectsBytes(t *testing.T) {
	client := NewClient(Config{})
	_, err := client.Forward(context.Background(), Call{
		Method: http.MethodGet,
		URL:    "http://127.0.0.1:1",
		Input:  &dispatch.Bytes{Data: []byte("x")},
	})
	if !errors.Is(err, ErrBodyNotAllowed) {
		t.Fatalf("expected ErrBodyNotAllowed, got %v", err)
	}
}

func TestForward_Classification(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{"ok", http.StatusOK, nil},
		{"created", http.StatusCreated, nil},
		{"bad request", http.StatusBadRequest, ErrDownstreamClient},
		{"not found", http.StatusNotFound, ErrDownstreamClient},
		{"internal", http.StatusInternalServerError, ErrDownstreamServer},
		{"unavailable", http.StatusServiceUnavailable, ErrDownstreamServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte("backend says no"))
			}))
			defer srv.Close()

			_, err := NewClient(Config{Timeout: time.Second}).Forward(context.Background(), Call{Method: http.MethodPost, URL: srv.URL})
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if !strings.Contains(err.Error(), "backend says no") {
				t.Errorf("error does not carry backend message: %v", err)
			}
		})
	}
}

func TestForward_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewClient(Config{Timeout: time.Second}).Forward(context.Background(), Call{Method: http.MethodGet, URL: url})
	var dse *DownstreamServerError
	if !errors.As(err, &dse) {
		t.Fatalf("expected *DownstreamServerError, got %v", err)
	}
	if dse.StatusCode != 0 || dse.Cause == nil {
		t.Errorf("unexpected transport error detail: %+v", dse)
	}
}

func TestForward_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	start := time.Now()
	_, err := NewClient(Config{Timeout: 50 * time.Millisecond}).Forward(context.Background(), Call{Method: http.MethodGet, URL: srv.URL})
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("timeout did not cancel the call promptly: %v", elapsed)
	}
}

func TestForward_CallerCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := NewClient(Config{Timeout: 5 * time.Second}).Forward(ctx, Call{Method: http.MethodGet, URL: srv.URL})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
