// Package credentials holds create-time store credentials for exactly one
// disclosure. The secret lives in an encrypted memguard enclave, never
// enters the synchronization cache, and is gone for good once revealed or
// discarded. There is no "show again" path; the server never re-exposes the
// credentials either.
package credentials

import (
	"errors"
	"strings"
	"sync"

	"github.com/awnumar/memguard"
	"github.com/systmms/storectl/internal/api"
)

// Disclosure errors
var (
	ErrAlreadyRevealed = errors.New("credentials already revealed")
	ErrDiscarded       = errors.New("credentials discarded without reveal")
)

// OneTime is the single-use holder for a store's initial credentials.
// Reveal succeeds exactly once; afterwards the plaintext is wiped and only
// errors remain.
type OneTime struct {
	mu       sync.Mutex
	enclave  *memguard.Enclave
	revealed bool
}

// Capture moves freshly created credentials into a protected buffer. The
// memguard enclave encrypts the secret at rest in memory and mlocks it
// against swapping where the platform allows.
func Capture(creds api.Credentials) *OneTime {
	payload := []byte(creds.Username + "\n" + creds.Password)
	enclave := memguard.NewEnclave(payload)
	return &OneTime{enclave: enclave}
}

// Reveal returns the credentials and burns the holder. The second call
// reports ErrAlreadyRevealed (or ErrDiscarded after Destroy).
func (o *OneTime) Reveal() (api.Credentials, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.enclave == nil {
		if o.revealed {
			return api.Credentials{}, ErrAlreadyRevealed
		}
		return api.Credentials{}, ErrDiscarded
	}

	locked, err := o.enclave.Open()
	if err != nil {
		return api.Credentials{}, err
	}
	defer locked.Destroy()

	// string() copies; locked.String() would alias memory wiped on Destroy.
	username, password, found := strings.Cut(string(locked.Bytes()), "\n")
	if !found {
		o.enclave = nil
		o.revealed = true
		return api.Credentials{}, errors.New("malformed credential payload")
	}

	o.enclave = nil
	o.revealed = true
	return api.Credentials{Username: username, Password: password}, nil
}

// Destroy discards the credentials without revealing them. Idempotent; safe
// to call after Reveal.
func (o *OneTime) Destroy() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.enclave = nil
}
