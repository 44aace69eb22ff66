package config

import (
	"os"

	"github.com/zalando/go-keyring"
)

// keyringService is the OS keyring namespace for storectl secrets.
const keyringService = "storectl"

// keyringTokenAccount is the account name the API token is filed under.
const keyringTokenAccount = "api-token"

// ResolveToken returns the control-plane API token, if any. Precedence:
// environment, then config file, then OS keyring. A missing token is not an
// error; the API may run without auth in local setups.
func (c *Config) ResolveToken() string {
	if v := os.Getenv(EnvAPIToken); v != "" {
		return v
	}
	if c.Definition != nil && c.Definition.APIToken != "" {
		return c.Definition.APIToken
	}
	token, err := keyring.Get(keyringService, keyringTokenAccount)
	if err != nil {
		// Keyring unavailable or no entry: run unauthenticated.
		return ""
	}
	return token
}

// StoreToken saves the API token in the OS keyring.
func StoreToken(token string) error {
	return keyring.Set(keyringService, keyringTokenAccount, token)
}

// ForgetToken removes the API token from the OS keyring.
func ForgetToken() error {
	err := keyring.Delete(keyringService, keyringTokenAccount)
	if err == keyring.ErrNotFound {
		return nil
	}
	return err
}
