package errors_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/systmms/storectl/internal/errors"
)

// TestUserErrorFormatting verifies UserError displays properly
func TestUserErrorFormatting(t *testing.T) {
	t.Parallel()

	err := errors.UserError{
		Message:    "Store creation failed",
		Details:    "name 'demo-1' is already taken",
		Suggestion: "Pick a different subdomain name",
	}

	errMsg := err.Error()

	assert.Contains(t, errMsg, "Store creation failed")
	assert.Contains(t, errMsg, "name 'demo-1' is already taken")
	assert.Contains(t, errMsg, "Pick a different subdomain name")
	assert.Contains(t, errMsg, "💡")
}

// TestUserErrorFallsBackToWrapped verifies the wrapped error is shown when
// no message is set
func TestUserErrorFallsBackToWrapped(t *testing.T) {
	t.Parallel()

	inner := fmt.Errorf("connection refused")
	err := errors.UserError{Err: inner}

	assert.Contains(t, err.Error(), "connection refused")
	assert.ErrorIs(t, err, inner)
}

// TestConfigErrorFormatting verifies ConfigError displays with context
func TestConfigErrorFormatting(t *testing.T) {
	t.Parallel()

	err := errors.ConfigError{
		Field:      "api_url",
		Value:      "not-a-url",
		Message:    "Invalid URL format",
		Suggestion: "Use format: http://hostname:port",
	}

	errMsg := err.Error()

	assert.Contains(t, errMsg, "api_url")
	assert.Contains(t, errMsg, "not-a-url")
	assert.Contains(t, errMsg, "Invalid URL format")
	assert.Contains(t, errMsg, "http://hostname:port")
}
