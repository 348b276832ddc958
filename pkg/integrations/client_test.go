package integrations

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/matzehuels/cratepatch/pkg/httputil"
)

func testCache(t *testing.T) *httputil.Cache {
	t.Helper()
	c, err := httputil.NewCache(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestNewClient(t *testing.T) {
	c := testCache(t)
	client := NewClient(c, map[string]string{"User-Agent": UserAgent})

	if client.http == nil {
		t.Error("NewClient() http client is nil")
	}
	if client.cache != c {
		t.Error("NewClient() cache not set correctly")
	}
	if client.headers["User-Agent"] != UserAgent {
		t.Error("NewClient() headers not set correctly")
	}
}

func TestClientGet(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		gotUA = r.Header.Get("User-Agent")
		_ = json.NewEncoder(w).Encode(map[string]string{"name": "serde"})
	}))
	defer server.Close()

	client := NewClient(nil, map[string]string{"User-Agent": UserAgent}).WithHTTPClient(server.Client())

	var resp map[string]string
	if err := client.Get(context.Background(), server.URL, &resp); err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if resp["name"] != "serde" {
		t.Errorf("Get() name = %q, want serde", resp["name"])
	}
	if gotUA != UserAgent {
		t.Errorf("User-Agent = %q, want %q", gotUA, UserAgent)
	}
}

func TestClientGet_Status(t *testing.T) {
	tests := []struct {
		name      string
		code      int
		wantIs    error
		retryable bool
	}{
		{"not found", http.StatusNotFound, ErrNotFound, false},
		{"server error", http.StatusInternalServerError, ErrNetwork, true},
		{"rate limited", http.StatusTooManyRequests, ErrNetwork, true},
		{"forbidden", http.StatusForbidden, ErrNetwork, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.code)
			}))
			defer server.Close()

			client := NewClient(nil, nil).WithHTTPClient(server.Client())
			var resp map[string]string
			err := client.Get(context.Background(), server.URL, &resp)
			if !errors.Is(err, tt.wantIs) {
				t.Errorf("Get() error = %v, want %v", err, tt.wantIs)
			}
			if got := httputil.IsRetryable(err); got != tt.retryable {
				t.Errorf("retryable = %v, want %v", got, tt.retryable)
			}
		})
	}
}

func TestClientCached(t *testing.T) {
	client := NewClient(testCache(t), nil)
	ctx := context.Background()

	fetches := 0
	fetch := func(v *[]string) func() error {
		return func() error {
			fetches++
			*v = []string{"critical-section"}
			return nil
		}
	}

	var first []string
	if err := client.Cached(ctx, "atomic-core", false, &first, fetch(&first)); err != nil {
		t.Fatal(err)
	}
	var second []string
	if err := client.Cached(ctx, "atomic-core", false, &second, fetch(&second)); err != nil {
		t.Fatal(err)
	}
	if fetches != 1 {
		t.Errorf("fetches = %d, want 1 (second call should hit cache)", fetches)
	}
	if len(second) != 1 || second[0] != "critical-section" {
		t.Errorf("cached value = %v", second)
	}

	var third []string
	if err := client.Cached(ctx, "atomic-core", true, &third, fetch(&third)); err != nil {
		t.Fatal(err)
	}
	if fetches != 2 {
		t.Errorf("refresh should bypass cache, fetches = %d", fetches)
	}
}

func TestClientCached_FetchError(t *testing.T) {
	client := NewClient(nil, nil)

	var v string
	err := client.Cached(context.Background(), "missing", false, &v, func() error {
		return ErrNotFound
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Cached() error = %v, want ErrNotFound", err)
	}
}

func TestNewHTTPClient(t *testing.T) {
	if got := NewHTTPClient().Timeout; got != httpTimeout {
		t.Errorf("Timeout = %v, want %v", got, httpTimeout)
	}
}
