package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"estech/inference-gateway/pkg/config"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func testConfigYAML(backendURL string) string {
	return `
server:
  listen_address: "127.0.0.1:0"
routes:
  providers:
    echo: "` + backendURL + `"
security:
  auth:
    mode: "apikey"
    api_keys:
      - key: "${secret:ci-key}"
        user_id: "ci"
        enabled: true
resilience:
  max_attempts: 1
telemetry:
  logging:
    level: "error"
`
}

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		validateFlags.checkRoutes = false
		routesFlags.output = "text"
		verbose = false
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	if !strings.Contains(out, "inference-gateway "+Version) || !strings.Contains(out, "Go Version:") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestValidateCommand(t *testing.T) {
	t.Setenv("GATEWAY_SECRET_CI_KEY", "unused")
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.yaml", testConfigYAML("http://echo.internal:8000"))

	out, err := execute(t, "validate", "--config", cfgPath, "--env-file", filepath.Join(dir, "missing.env"), "--check-routes")
	if err != nil {
		t.Fatalf("validate error = %v\n%s", err, out)
	}
	if !strings.Contains(out, "Configuration valid") || !strings.Contains(out, "(1 services)") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestValidateCommand_Invalid(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.yaml", `
gateway:
  max_concurrent: -1
security:
  auth:
    mode: "apikey"
`)

	out, err := execute(t, "validate", "--config", cfgPath, "--env-file", filepath.Join(dir, "missing.env"))
	if err == nil {
		t.Fatalf("expected validation error, output:\n%s", out)
	}
	if !strings.Contains(out, "gateway.max_concurrent") {
		t.Errorf("output does not name the invalid field:\n%s", out)
	}
}

func TestRoutesCommand_JSON(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.yaml", testConfigYAML("http://echo.internal:8000"))

	out, err := execute(t, "routes", "--config", cfgPath, "--env-file", filepath.Join(dir, "missing.env"), "--output", "json")
	if err != nil {
		t.Fatalf("routes error = %v\n%s", err, out)
	}
	var got struct {
		Count     int               `json:"count"`
		Providers map[string]string `json:"providers"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if got.Count != 1 || got.Providers["echo"] != "http://echo.internal:8000" {
		t.Errorf("got %+v", got)
	}
}

func TestNewApp_ServesDispatch(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"path":"` + r.URL.Path + `"}`))
	}))
	defer backend.Close()

	t.Setenv("GATEWAY_SECRET_CI_KEY", "ci-token")
	cfg, err := config.Parse([]byte(testConfigYAML(backend.URL)))
	if err != nil {
		t.Fatal(err)
	}
	if err := config.Validate(cfg); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	a, err := newApp(context.Background(), cfg, logger)
	if err != nil {
		t.Fatalf("newApp() error = %v", err)
	}
	defer a.close(context.Background())

	req := httptest.NewRequest(http.MethodGet, "/v1/run?impl=echo&path=predict", nil)
	req.Header.Set("Authorization", "Bearer ci-token")
	w := httptest.NewRecorder()
	a.server.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK || w.Body.String() != `{"path":"/predict"}` {
		t.Fatalf("status = %d, body = %q", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	a.server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(w.Body.String(), `outcome="success"`) {
		t.Errorf("metrics missing success outcome:\n%s", w.Body.String())
	}
}

func TestNewApp_UnresolvedSecret(t *testing.T) {
	cfg, err := config.Parse([]byte(testConfigYAML("http://echo.internal")))
	if err != nil {
		t.Fatal(err)
	}
	cfg.Security.Secrets.EnvPrefix = "GATEWAY_TEST_ABSENT_"

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if _, err := newApp(context.Background(), cfg, logger); err == nil || !strings.Contains(err.Error(), "resolving credentials") {
		t.Errorf("newApp() error = %v, want credential resolution failure", err)
	}
}

func TestNewApp_RouteFileMissing(t *testing.T) {
	t.Setenv("GATEWAY_SECRET_CI_KEY", "ci-token")
	cfg, err := config.Parse([]byte(testConfigYAML("http://echo.internal")))
	if err != nil {
		t.Fatal(err)
	}
	cfg.Routes.Source = "file"
	cfg.Routes.FilePath = filepath.Join(t.TempDir(), "routes.yaml")

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if _, err := newApp(context.Background(), cfg, logger); err == nil || !strings.Contains(err.Error(), "loading routes") {
		t.Errorf("newApp() error = %v, want route load failure", err)
	}
}
