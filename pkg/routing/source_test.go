package routing

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"estech/inference-gateway/pkg/config"
)

func writeRouteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write route file: %v", err)
	}
}

func TestFileSource_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routes.yaml")
	writeRouteFile(t, path, `
providers:
  classifier: "http://classifier:8000"
  moderation: "http://moderation:8001/"
`)

	table, err := FileSource{Path: path}.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if table.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", table.Len())
	}
	if got, _ := table.Lookup("moderation"); got != "http://moderation:8001/" {
		t.Errorf("Lookup(moderation) = %q", got)
	}
}

func TestFileSource_Errors(t *testing.T) {
	dir := t.TempDir()

	if _, err := (FileSource{Path: filepath.Join(dir, "missing.yaml")}).Load(context.Background()); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got %v", err)
	}

	empty := filepath.Join(dir, "empty.yaml")
	writeRouteFile(t, empty, "providers: {}\n")
	if _, err := (FileSource{Path: empty}).Load(context.Background()); !errors.Is(err, ErrNoRoutes) {
		t.Errorf("expected ErrNoRoutes, got %v", err)
	}

	bad := filepath.Join(dir, "bad.yaml")
	writeRouteFile(t, bad, "providers:\n  a: \"not a url\"\n")
	if _, err := (FileSource{Path: bad}).Load(context.Background()); !errors.Is(err, ErrInvalidRoute) {
		t.Errorf("expected ErrInvalidRoute, got %v", err)
	}
}

func TestSQLiteSource_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routes.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	defer db.Close()

	stmts := []string{
		`CREATE TABLE backends (name TEXT PRIMARY KEY, base_url TEXT NOT NULL)`,
		`INSERT INTO backends (name, base_url) VALUES ('classifier', 'http://classifier:8000')`,
		`INSERT INTO backends (name, base_url) VALUES ('grpc-facade', 'http://facade:9000/')`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("exec %q: %v", stmt, err)
		}
	}

	table, err := SQLiteSource{Path: path, Table: "backends"}.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got, ok := table.Lookup("grpc-facade"); !ok || got != "http://facade:9000/" {
		t.Errorf("Lookup(grpc-facade) = %q, %v", got, ok)
	}

	if _, err := (SQLiteSource{Path: path, Table: "routes; DROP TABLE backends"}).Load(context.Background()); err == nil {
		t.Error("expected error for invalid table name")
	}
}

func TestNewSource(t *testing.T) {
	tests := []struct {
		cfg     config.RoutesConfig
		want    string
		wantErr bool
	}{
		{config.RoutesConfig{Source: "inline", Providers: map[string]string{"a": "http://a"}}, "inline", false},
		{config.RoutesConfig{Source: "file", FilePath: "/etc/routes.yaml"}, "file:/etc/routes.yaml", false},
		{config.RoutesConfig{Source: "sqlite", SQLite: config.RoutesSQLiteConfig{Path: "r.db"}}, "sqlite:r.db", false},
		{config.RoutesConfig{Source: "consul"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.cfg.Source, func(t *testing.T) {
			src, err := NewSource(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewSource() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && src.Name() != tt.want {
				t.Errorf("Name() = %q, want %q", src.Name(), tt.want)
			}
		})
	}
}

func TestReload_KeepsTableOnFailure(t *testing.T) {
	initial, _ := NewTable(map[string]string{"a": "http://a"})
	store := NewStore(initial)

	if _, err := Reload(context.Background(), StaticSource{}, store); !errors.Is(err, ErrNoRoutes) {
		t.Fatalf("expected ErrNoRoutes, got %v", err)
	}
	if store.Load() != initial {
		t.Error("store changed after failed reload")
	}

	next, err := Reload(context.Background(), StaticSource{Routes: map[string]string{"b": "http://b"}}, store)
	if err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if store.Load() != next {
		t.Error("store not swapped after successful reload")
	}
}

func TestWatcher_ReloadsOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routes.yaml")
	writeRouteFile(t, path, "providers:\n  a: \"http://a\"\n")

	src := FileSource{Path: path}
	initial, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	store := NewStore(initial)

	reloaded := make(chan *Table, 4)
	w := NewWatcher(path, src, store, nil)
	w.OnReload = func(tbl *Table, err error) {
		if err == nil {
			reloaded <- tbl
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer w.Stop()

	writeRouteFile(t, path, "providers:\n  a: \"http://a\"\n  b: \"http://b\"\n")

	select {
	case tbl := <-reloaded:
		if _, ok := tbl.Lookup("b"); !ok {
			t.Errorf("reloaded table missing new route")
		}
		if store.Load() != tbl {
			t.Errorf("store does not hold reloaded table")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
}

func TestScheduler_InvalidSpec(t *testing.T) {
	s := NewScheduler("not a schedule", StaticSource{}, NewStore(nil), nil)
	if err := s.Start(context.Background()); err == nil {
		t.Fatal("expected error for invalid schedule")
	}
	if s.NextRun() != nil {
		t.Error("NextRun() should be nil when not running")
	}
}

func TestScheduler_StartStop(t *testing.T) {
	src := StaticSource{Routes: map[string]string{"a": "http://a"}}
	s := NewScheduler("@every 1h", src, NewStore(nil), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	next := s.NextRun()
	if next == nil || next.Before(time.Now()) {
		t.Fatalf("NextRun() = %v, want a future time", next)
	}

	s.Stop()
	if s.NextRun() != nil {
		t.Error("NextRun() should be nil after Stop")
	}
}

func TestScheduler_EmptySpecIsNoop(t *testing.T) {
	s := NewScheduler("", StaticSource{}, NewStore(nil), nil)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	s.Stop()
}
