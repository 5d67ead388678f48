package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"estech/inference-gateway/pkg/config"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		level     string
		wantDebug bool
		wantInfo  bool
		wantErr   bool
	}{
		{"debug", true, true, false},
		{"", false, true, false},
		{"INFO", false, true, false},
		{"warn", false, false, false},
		{"error", false, false, false},
		{"verbose", false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger, err := New(Config{Level: tt.level, Writer: &buf})
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}

			logger.Debug("debug line")
			logger.Info("info line")
			out := buf.String()
			if got := strings.Contains(out, "debug line"); got != tt.wantDebug {
				t.Errorf("debug logged = %v, want %v", got, tt.wantDebug)
			}
			if got := strings.Contains(out, "info line"); got != tt.wantInfo {
				t.Errorf("info logged = %v, want %v", got, tt.wantInfo)
			}
		})
	}
}

func TestNew_Formats(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Format: "json", Writer: &buf})
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("hello", "n", 1)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("json output not parseable: %v (%s)", err, buf.String())
	}
	if rec["msg"] != "hello" {
		t.Errorf("msg = %v", rec["msg"])
	}

	buf.Reset()
	logger, err = New(Config{Format: "text", Writer: &buf})
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("hello", "n", 1)
	if !strings.Contains(buf.String(), "msg=hello") {
		t.Errorf("text output = %q", buf.String())
	}

	if _, err := New(Config{Format: "xml"}); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestContextHandler_InjectsFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Writer: &buf})
	if err != nil {
		t.Fatal(err)
	}

	ctx := WithTraceID(context.Background(), "trace-abc")
	ctx = WithUser(ctx, "alice")
	ctx = WithService(ctx, "summarizer")
	logger.With("component", "test").InfoContext(ctx, "dispatched")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatal(err)
	}
	want := map[string]string{
		"trace_id":  "trace-abc",
		"user":      "alice",
		"service":   "summarizer",
		"component": "test",
	}
	for k, v := range want {
		if rec[k] != v {
			t.Errorf("%s = %v, want %q", k, rec[k], v)
		}
	}
}

func TestContextHandler_NoContextFields(t *testing.T) {
	var buf bytes.Buffer
	logger, _ := New(Config{Writer: &buf})
	logger.InfoContext(context.Background(), "plain")
	if strings.Contains(buf.String(), "trace_id") {
		t.Errorf("unexpected trace_id in %s", buf.String())
	}
}

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	if GetTraceID(ctx) != "" || GetUser(ctx) != "" || GetService(ctx) != "" {
		t.Error("empty context should yield empty values")
	}
	ctx = WithTraceID(ctx, "t1")
	if GetTraceID(ctx) != "t1" {
		t.Errorf("GetTraceID() = %q", GetTraceID(ctx))
	}
}

func TestValidTraceID(t *testing.T) {
	if !ValidTraceID(NewTraceID()) {
		t.Error("generated trace id rejected")
	}
	for _, id := range []string{"", "req_1234abcd", "not a uuid", "{" + NewTraceID() + "}"} {
		if ValidTraceID(id) {
			t.Errorf("ValidTraceID(%q) = true", id)
		}
	}
}

func TestRedactor(t *testing.T) {
	cfg := ConfigFrom(config.LoggingConfig{Level: "warn", Format: "text"})
	if !cfg.RedactCredentials || cfg.Level != "warn" || cfg.Format != "text" {
		t.Fatalf("ConfigFrom() = %+v", cfg)
	}

	var buf bytes.Buffer
	logger, err := New(Config{Writer: &buf, RedactCredentials: true})
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("auth failed",
		"authorization", "Bearer abc.def.ghi",
		"detail", "header was Bearer sk123456",
		"api_key", "k-1",
		"path", "/v1/run",
	)

	out := buf.String()
	for _, leaked := range []string{"abc.def.ghi", "sk123456", "k-1"} {
		if strings.Contains(out, leaked) {
			t.Errorf("credential %q leaked: %s", leaked, out)
		}
	}
	if !strings.Contains(out, "/v1/run") {
		t.Errorf("non-sensitive value was masked: %s", out)
	}
}

func TestRedactor_JWT(t *testing.T) {
	r := NewRedactor()
	got := r.RedactString("token=eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiJ4In0.c2ln rest")
	if strings.Contains(got, "eyJ") {
		t.Errorf("RedactString() = %q", got)
	}
	if !strings.HasSuffix(got, " rest") {
		t.Errorf("RedactString() dropped surrounding text: %q", got)
	}

	a := r.ReplaceAttr(nil, slog.Int("status", 401))
	if a.Value.Int64() != 401 {
		t.Errorf("non-string attr changed: %v", a)
	}
}
