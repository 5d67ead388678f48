package routing

import (
	"errors"
	"sync"
	"testing"
)

func TestComposePath(t *testing.T) {
	tests := []struct {
		base, path, want string
	}{
		{"http://x/", "/y", "http://x/y"},
		{"http://x", "y", "http://x/y"},
		{"http://x/", "y", "http://x/y"},
		{"http://x", "/y", "http://x/y"},
		{"http://x///", "///y/z", "http://x/y/z"},
		{"http://x/api/", "/v1/predict", "http://x/api/v1/predict"},
		{"http://x", "/", "http://x/"},
	}

	for _, tt := range tests {
		t.Run(tt.base+"+"+tt.path, func(t *testing.T) {
			if got := ComposePath(tt.base, tt.path); got != tt.want {
				t.Errorf("ComposePath(%q, %q) = %q, want %q", tt.base, tt.path, got, tt.want)
			}
		})
	}
}

func TestNewTable(t *testing.T) {
	tests := []struct {
		name    string
		routes  map[string]string
		wantErr bool
	}{
		{"valid", map[string]string{"a": "http://a", "b": "https://b:8443/"}, false},
		{"empty name", map[string]string{" ": "http://a"}, true},
		{"relative url", map[string]string{"a": "a.internal"}, true},
		{"bad scheme", map[string]string{"a": "grpc://a"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTable(tt.routes)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewTable() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidRoute) {
				t.Errorf("expected ErrInvalidRoute, got %v", err)
			}
		})
	}
}

func TestTable_CopiesInput(t *testing.T) {
	in := map[string]string{"a": "http://a"}
	table, err := NewTable(in)
	if err != nil {
		t.Fatalf("NewTable() error = %v", err)
	}
	in["a"] = "http://mutated"
	in["b"] = "http://b"

	if got, _ := table.Lookup("a"); got != "http://a" {
		t.Errorf("table observed caller mutation: %q", got)
	}
	if table.Len() != 1 {
		t.Errorf("Len() = %d, want 1", table.Len())
	}
}

func TestRouter_Resolve(t *testing.T) {
	table, err := NewTable(map[string]string{"svc": "http://svc:8000/", "other": "http://o"})
	if err != nil {
		t.Fatalf("NewTable() error = %v", err)
	}
	router := NewRouter(NewStore(table))

	base, err := router.Resolve("svc")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if base != "http://svc:8000/" {
		t.Errorf("Resolve() = %q", base)
	}

	_, err = router.Resolve("nonexistent")
	if !errors.Is(err, ErrUnknownService) {
		t.Fatalf("expected ErrUnknownService, got %v", err)
	}
	var use *UnknownServiceError
	if !errors.As(err, &use) {
		t.Fatalf("expected *UnknownServiceError, got %T", err)
	}
	if use.Service != "nonexistent" || len(use.Available) != 2 {
		t.Errorf("unexpected error detail: %+v", use)
	}

	target, err := router.Target("svc", "/predict")
	if err != nil {
		t.Fatalf("Target() error = %v", err)
	}
	if target != "http://svc:8000/predict" {
		t.Errorf("Target() = %q", target)
	}
}

func TestRouter_EmptyStore(t *testing.T) {
	router := NewRouter(NewStore(nil))
	if _, err := router.Resolve("svc"); !errors.Is(err, ErrUnknownService) {
		t.Errorf("expected ErrUnknownService on empty store, got %v", err)
	}
}

func TestStore_SwapIsAtomicForReaders(t *testing.T) {
	t1, _ := NewTable(map[string]string{"a": "http://one", "b": "http://one"})
	t2, _ := NewTable(map[string]string{"a": "http://two", "b": "http://two"})
	store := NewStore(t1)
	router := NewRouter(store)

	var wg sync.WaitGroup
	stop := make(chan struct{})
	errs := make(chan string, 1)

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				table := router.Table()
				a, _ := table.Lookup("a")
				b, _ := table.Lookup("b")
				if a != b {
					select {
					case errs <- a + " != " + b:
					default:
					}
					return
				}
			}
		}()
	}

	for i := 0; i < 1000; i++ {
		if i%2 == 0 {
			store.Swap(t2)
		} else {
			store.Swap(t1)
		}
	}
	close(stop)
	wg.Wait()

	select {
	case msg := <-errs:
		t.Fatalf("reader observed mixed table: %s", msg)
	default:
	}
}
