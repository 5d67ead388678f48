package routing

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
	_ "modernc.org/sqlite" // SQLite driver

	"estech/inference-gateway/pkg/config"
)

// Source loads a route table from an external resource.
type Source interface {
	// Load reads the routes and returns a freshly built Table.
	Load(ctx context.Context) (*Table, error)

	// Name identifies the source in logs.
	Name() string
}

// StaticSource serves a fixed in-memory mapping.
type StaticSource struct {
	Routes map[string]string
}

// Load implements Source.
func (s StaticSource) Load(_ context.Context) (*Table, error) {
	if len(s.Routes) == 0 {
		return nil, ErrNoRoutes
	}
	return NewTable(s.Routes)
}

// Name implements Source.
func (s StaticSource) Name() string { return "inline" }

// routeFile is the on-disk layout of a route file.
type routeFile struct {
	Providers map[string]string `yaml:"providers"`
}

// FileSource reads routes from a YAML file with a top-level "providers"
// mapping:
//
//	providers:
//	  classifier: "http://classifier:8000"
//	  moderation: "http://moderation:8001/"
type FileSource struct {
	Path string
}

// Load implements Source.
func (s FileSource) Load(_ context.Context) (*Table, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read route file %q: %w", s.Path, err)
	}

	var rf routeFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("failed to parse route file %q: %w", s.Path, err)
	}
	if len(rf.Providers) == 0 {
		return nil, fmt.Errorf("route file %q: %w", s.Path, ErrNoRoutes)
	}

	return NewTable(rf.Providers)
}

// Name implements Source.
func (s FileSource) Name() string { return "file:" + s.Path }

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLiteSource reads routes from a SQLite table with "name" and "base_url"
// columns.
type SQLiteSource struct {
	Path  string
	Table string
}

// Load implements Source. The database is opened per load so that reloads
// pick up changes written by other processes.
func (s SQLiteSource) Load(ctx context.Context) (*Table, error) {
	table := s.Table
	if table == "" {
		table = config.DefaultRoutesSQLiteTable
	}
	if !identifierPattern.MatchString(table) {
		return nil, fmt.Errorf("invalid route table name %q", table)
	}

	db, err := sql.Open("sqlite", s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open route database: %w", err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, fmt.Sprintf("SELECT name, base_url FROM %s", table))
	if err != nil {
		return nil, fmt.Errorf("failed to query routes: %w", err)
	}
	defer rows.Close()

	routes := make(map[string]string)
	for rows.Next() {
		var name, base string
		if err := rows.Scan(&name, &base); err != nil {
			return nil, fmt.Errorf("failed to scan route: %w", err)
		}
		routes[name] = base
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read routes: %w", err)
	}
	if len(routes) == 0 {
		return nil, fmt.Errorf("route table %q: %w", table, ErrNoRoutes)
	}

	return NewTable(routes)
}

// Name implements Source.
func (s SQLiteSource) Name() string { return "sqlite:" + s.Path }

// NewSource builds the Source selected by the routes configuration.
func NewSource(cfg config.RoutesConfig) (Source, error) {
	switch cfg.Source {
	case "inline":
		return StaticSource{Routes: cfg.Providers}, nil
	case "file":
		return FileSource{Path: cfg.FilePath}, nil
	case "sqlite":
		return SQLiteSource{Path: cfg.SQLite.Path, Table: cfg.SQLite.Table}, nil
	default:
		return nil, fmt.Errorf("unsupported route source %q", cfg.Source)
	}
}

// Reload loads a table from src and swaps it into store. On failure the
// store keeps its current table.
func Reload(ctx context.Context, src Source, store *Store) (*Table, error) {
	t, err := src.Load(ctx)
	if err != nil {
		return nil, err
	}
	store.Swap(t)
	return t, nil
}
