package commands

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/systmms/storectl/internal/api"
	"github.com/systmms/storectl/internal/config"
	"github.com/systmms/storectl/internal/logging"
	"gopkg.in/yaml.v3"
)

// fakeBackend is an in-memory provisioning control plane for command tests.
type fakeBackend struct {
	url string

	mu       sync.Mutex
	stores   []api.Store
	audits   map[string][]api.AuditLogEntry
	requests int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{audits: map[string][]api.AuditLogEntry{}}
}

func (f *fakeBackend) addStore(s api.Store) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stores = append(f.stores, s)
}

func (f *fakeBackend) store(id string) (api.Store, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.stores {
		if s.ID == id {
			return s, true
		}
	}
	return api.Store{}, false
}

func (f *fakeBackend) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests
}

func (f *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()

	count := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			f.mu.Lock()
			f.requests++
			f.mu.Unlock()
			next(w, r)
		}
	}

	mux.HandleFunc("GET /stores", count(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		stores := f.stores
		if stores == nil {
			stores = []api.Store{}
		}
		_ = json.NewEncoder(w).Encode(stores)
	}))

	mux.HandleFunc("POST /stores", count(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name   string `json:"name"`
			Engine string `json:"engine"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)

		f.mu.Lock()
		defer f.mu.Unlock()
		for _, s := range f.stores {
			if s.Name == req.Name {
				w.WriteHeader(http.StatusBadRequest)
				_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Store name already taken"})
				return
			}
		}

		store := api.Store{
			ID:     "s-" + req.Name,
			Name:   req.Name,
			Engine: api.Engine(req.Engine),
			Status: "QUEUED",
		}
		f.stores = append(f.stores, store)

		_ = json.NewEncoder(w).Encode(api.CreateResult{
			Store: store,
			InitialCredentials: api.Credentials{
				Username: "admin",
				Password: "pw-" + req.Name,
			},
		})
	}))

	mux.HandleFunc("GET /stores/{id}", count(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		for _, s := range f.stores {
			if s.ID == r.PathValue("id") {
				_ = json.NewEncoder(w).Encode(s)
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Store not found"})
	}))

	mux.HandleFunc("DELETE /stores/{id}", count(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		for i, s := range f.stores {
			if s.ID == r.PathValue("id") {
				f.stores[i].Status = "DELETING"
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Store not found"})
	}))

	mux.HandleFunc("GET /stores/{id}/audit", count(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		entries := f.audits[r.PathValue("id")]
		if entries == nil {
			entries = []api.AuditLogEntry{}
		}
		_ = json.NewEncoder(w).Encode(entries)
	}))

	return mux
}

// syncBuffer is a bytes.Buffer safe for concurrent writers and readers.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// testConfig writes a config file pointing at the fake backend and returns a
// Config whose logger output is captured in the returned buffer.
func testConfig(t *testing.T, apiURL string) (*config.Config, *bytes.Buffer) {
	t.Helper()

	configPath := filepath.Join(t.TempDir(), "storectl.yaml")
	def := &config.Definition{
		APIURL:           apiURL,
		PollIntervalMS:   20,
		RequestTimeoutMS: 2000,
	}
	data, err := yaml.Marshal(def)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(configPath, data, 0644))

	var logBuf bytes.Buffer
	return &config.Config{
		Path:    configPath,
		Logger:  logging.NewWithWriter(&logBuf, false, true),
		NoColor: true,
	}, &logBuf
}

func startBackend(t *testing.T) *fakeBackend {
	t.Helper()
	backend := newFakeBackend()
	server := httptest.NewServer(backend.handler())
	t.Cleanup(server.Close)
	backend.url = server.URL
	return backend
}
