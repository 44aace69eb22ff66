package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/systmms/storectl/internal/api"
)

func newTestClient(t *testing.T, handler http.Handler) (*api.Client, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := api.NewClient(api.ClientConfig{BaseURL: server.URL})
	require.NoError(t, err)
	return client, server
}

func TestNewClientRequiresURL(t *testing.T) {
	t.Parallel()

	_, err := api.NewClient(api.ClientConfig{BaseURL: "   "})
	assert.Error(t, err)
}

func TestListStores(t *testing.T) {
	t.Parallel()

	url := "https://demo-1.example"
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/stores", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("X-Request-Id"))

		_ = json.NewEncoder(w).Encode([]api.Store{
			{ID: "s-1", Name: "demo-1", Engine: api.EngineWooCommerce, Status: "READY", URL: &url},
			{ID: "s-2", Name: "demo-2", Engine: api.EngineMedusa, Status: "PROVISIONING"},
		})
	}))

	stores, err := client.List(context.Background())
	require.NoError(t, err)
	require.Len(t, stores, 2)
	assert.Equal(t, "demo-1", stores[0].Name)
	require.NotNil(t, stores[0].URL)
	assert.Equal(t, "https://demo-1.example", *stores[0].URL)
	assert.Nil(t, stores[1].URL)
}

func TestCreateStoreReturnsOneTimeCredentials(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/stores", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "demo-1", body["name"])
		assert.Equal(t, "woocommerce", body["engine"])

		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "s-1",
			"name":   "demo-1",
			"engine": "woocommerce",
			"status": "QUEUED",
			"initial_credentials": map[string]string{
				"username": "admin",
				"password": "wp-pass-123",
			},
		})
	}))

	result, err := client.Create(context.Background(), "demo-1", api.EngineWooCommerce)
	require.NoError(t, err)
	assert.Equal(t, "QUEUED", result.Status)
	assert.Equal(t, "admin", result.InitialCredentials.Username)
	assert.Equal(t, "wp-pass-123", result.InitialCredentials.Password)
}

func TestCreateDuplicateNameSurfacesAPIError(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Store name already taken"})
	}))

	_, err := client.Create(context.Background(), "demo-1", api.EngineWooCommerce)
	require.Error(t, err)

	var apiErr *api.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Store name already taken", apiErr.Message)
	assert.Equal(t, "create", apiErr.Op)
}

func TestCreateRejectsInvalidNameLocally(t *testing.T) {
	t.Parallel()

	called := false
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	_, err := client.Create(context.Background(), "Demo Store!", api.EngineWooCommerce)
	assert.Error(t, err)
	assert.False(t, called, "invalid name must not reach the server")
}

func TestGetStoreNotFound(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Store not found"})
	}))

	_, err := client.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, api.IsNotFound(err))

	var apiErr *api.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestDeleteStore(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/stores/s-1", r.URL.Path)
		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "s-1", "status": "DELETING"})
	}))

	assert.NoError(t, client.Delete(context.Background(), "s-1"))
}

func TestAuditLogOrderPreserved(t *testing.T) {
	t.Parallel()

	details := `{"exitCode":1}`
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stores/s-1/audit", r.URL.Path)
		_ = json.NewEncoder(w).Encode([]api.AuditLogEntry{
			{Event: "Queued", Timestamp: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)},
			{Event: "Helm Deploy Failed", Details: &details, Timestamp: time.Date(2026, 3, 1, 10, 1, 0, 0, time.UTC)},
		})
	}))

	entries, err := client.AuditLog(context.Background(), "s-1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Queued", entries[0].Event)
	assert.Nil(t, entries[0].Details)
	require.NotNil(t, entries[1].Details)
	assert.Equal(t, details, *entries[1].Details)
}

func TestTransportErrorOnUnreachableServer(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	server.Close() // connection refused from here on

	client, err := api.NewClient(api.ClientConfig{BaseURL: server.URL, Timeout: time.Second})
	require.NoError(t, err)

	_, err = client.List(context.Background())
	require.Error(t, err)
	assert.True(t, api.IsTransport(err))

	var te *api.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "list", te.Op)
}

func TestBearerTokenSentWhenConfigured(t *testing.T) {
	t.Parallel()

	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode([]api.Store{})
	}))
	t.Cleanup(server.Close)

	client, err := api.NewClient(api.ClientConfig{BaseURL: server.URL, Token: "tok-123"})
	require.NoError(t, err)

	_, err = client.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", gotAuth)
}
