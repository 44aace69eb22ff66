package api

import "time"

// Engine identifies the commerce backend a store runs on.
type Engine string

const (
	EngineWooCommerce Engine = "woocommerce"
	EngineMedusa      Engine = "medusa"
)

// KnownEngine reports whether e is an engine the control plane can provision.
func KnownEngine(e Engine) bool {
	return e == EngineWooCommerce || e == EngineMedusa
}

// Store is one provisioned (or provisioning) commerce environment as the
// control plane reports it. URL and StoreAdminURL are nil until the backend
// has something meaningful to report, typically once the store is READY.
type Store struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Engine        Engine  `json:"engine"`
	Status        string  `json:"status"`
	URL           *string `json:"url"`
	StoreAdminURL *string `json:"store_admin_url"`
}

// Credentials is the store admin login produced exactly once at creation
// time. The server never exposes it again through any read endpoint.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// CreateResult is the POST /stores response: the new store plus its
// one-time initial credentials.
type CreateResult struct {
	Store
	InitialCredentials Credentials `json:"initial_credentials"`
}

// AuditLogEntry is a single provisioning event for a store. Details is an
// opaque string that may itself carry serialized JSON or plain prose; the
// server guarantees nothing about its inner shape.
type AuditLogEntry struct {
	Event     string    `json:"event"`
	Details   *string   `json:"details"`
	Timestamp time.Time `json:"timestamp"`
}
