// Package dashboard composes the provisioning API client and the polling
// cache into the data layer behind every storectl view. Reads go through
// cache keys; mutations go to the API and invalidate the affected keys so
// user-initiated changes show up before the next poll tick.
package dashboard

import (
	"context"
	"errors"
	"sync"

	"github.com/systmms/storectl/internal/api"
	"github.com/systmms/storectl/internal/credentials"
	"github.com/systmms/storectl/internal/logging"
	"github.com/systmms/storectl/internal/metrics"
	"github.com/systmms/storectl/internal/syncache"
)

// ErrDeleteInFlight marks a delete that was suppressed because one is
// already running for the same store. The server-side operation is
// idempotent; the guard only avoids redundant calls and duplicate
// confirmation prompts.
var ErrDeleteInFlight = errors.New("delete already in flight for this store")

// KeyStores is the cache key for the store collection.
const KeyStores = "stores"

// KeyStore returns the cache key for a single store.
func KeyStore(id string) string { return "store:" + id }

// KeyAudit returns the cache key for a store's audit log.
func KeyAudit(id string) string { return KeyStore(id) + ":audit" }

// Service is the stateful client-side view of the control plane.
type Service struct {
	client *api.Client
	cache  *syncache.Cache
	logger *logging.Logger

	mu       sync.Mutex
	deleting map[string]bool
}

// New creates a dashboard service. The store collection key is registered
// immediately; per-store keys are registered on first use.
func New(client *api.Client, cache *syncache.Cache, logger *logging.Logger) *Service {
	s := &Service{
		client:   client,
		cache:    cache,
		logger:   logger,
		deleting: make(map[string]bool),
	}

	cache.Register(KeyStores, func(ctx context.Context) (interface{}, error) {
		return s.client.List(ctx)
	})

	return s
}

// Cache exposes the underlying cache for render loops (updates channel,
// staleness probes).
func (s *Service) Cache() *syncache.Cache { return s.cache }

// SubscribeStores starts polling the store collection.
func (s *Service) SubscribeStores() (func(), error) {
	return s.cache.Subscribe(KeyStores)
}

// Stores returns the latest known store collection. ok is false only before
// the first successful fetch.
func (s *Service) Stores() ([]api.Store, bool) {
	value, ok := s.cache.Get(KeyStores)
	if !ok || value == nil {
		return nil, ok
	}
	return value.([]api.Store), true
}

// SubscribeStore starts polling a single store. A store that disappears
// server-side (deleted and unlisted) becomes an empty cached value, not an
// error.
func (s *Service) SubscribeStore(id string) (func(), error) {
	s.cache.Register(KeyStore(id), func(ctx context.Context) (interface{}, error) {
		store, err := s.client.Get(ctx, id)
		if api.IsNotFound(err) {
			return nil, syncache.ErrGone
		}
		if err != nil {
			return nil, err
		}
		return store, nil
	})
	return s.cache.Subscribe(KeyStore(id))
}

// Store returns the latest known state of one store. gone is true when the
// server no longer lists the id.
func (s *Service) Store(id string) (store *api.Store, gone bool, ok bool) {
	value, ok := s.cache.Get(KeyStore(id))
	if !ok {
		return nil, false, false
	}
	if value == nil {
		return nil, true, true
	}
	return value.(*api.Store), false, true
}

// SubscribeAudit starts polling a store's audit log.
func (s *Service) SubscribeAudit(id string) (func(), error) {
	s.cache.Register(KeyAudit(id), func(ctx context.Context) (interface{}, error) {
		entries, err := s.client.AuditLog(ctx, id)
		if api.IsNotFound(err) {
			return nil, syncache.ErrGone
		}
		if err != nil {
			return nil, err
		}
		return entries, nil
	})
	return s.cache.Subscribe(KeyAudit(id))
}

// Audit returns the latest known audit log for a store.
func (s *Service) Audit(id string) ([]api.AuditLogEntry, bool) {
	value, ok := s.cache.Get(KeyAudit(id))
	if !ok || value == nil {
		return nil, ok
	}
	return value.([]api.AuditLogEntry), true
}

// Create provisions a new store. The returned OneTime is the only place the
// initial credentials exist client-side: they are captured before the result
// is returned and never enter the cache. The collection key is invalidated
// so the new store shows up immediately.
func (s *Service) Create(ctx context.Context, name string, engine api.Engine) (*api.Store, *credentials.OneTime, error) {
	result, err := s.client.Create(ctx, name, engine)
	if err != nil {
		metrics.RecordMutation("create", "error")
		return nil, nil, err
	}

	onetime := credentials.Capture(result.InitialCredentials)
	// Credentials only ever enter logging as Secret.
	s.logger.Debug("store %s created, credentials %s captured for one-time reveal",
		result.ID, logging.Secret(result.InitialCredentials.Password))
	// Drop the plaintext copy that rode in on the response.
	result.InitialCredentials = api.Credentials{}

	metrics.RecordMutation("create", "ok")

	store := result.Store
	s.cache.Invalidate(KeyStores)
	return &store, onetime, nil
}

// Delete tears down a store. While a delete for the same id is in flight,
// further calls return ErrDeleteInFlight instead of reissuing the request.
func (s *Service) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	if s.deleting[id] {
		s.mu.Unlock()
		return ErrDeleteInFlight
	}
	s.deleting[id] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.deleting, id)
		s.mu.Unlock()
	}()

	if err := s.client.Delete(ctx, id); err != nil {
		metrics.RecordMutation("delete", "error")
		return err
	}

	metrics.RecordMutation("delete", "ok")
	s.cache.Invalidate(KeyStores)
	s.cache.Invalidate(KeyStore(id))
	return nil
}

// DeleteInFlight reports whether a delete is currently running for id.
func (s *Service) DeleteInFlight(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleting[id]
}
