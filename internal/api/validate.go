package api

import (
	"fmt"
	"regexp"

	sterrors "github.com/systmms/storectl/internal/errors"
)

// namePattern mirrors the server-side subdomain rule: lowercase ASCII
// letters, digits, and hyphens only.
var namePattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// maxNameLength matches the DNS label limit since the name becomes a
// subdomain.
const maxNameLength = 63

// ValidateName checks a store name against the subdomain contract before the
// request ever leaves the client. The server enforces the same rule.
func ValidateName(name string) error {
	if name == "" {
		return sterrors.UserError{
			Message:    "Store name is required",
			Suggestion: "Pick a name like 'demo-1' (lowercase letters, digits, hyphens)",
		}
	}
	if len(name) > maxNameLength {
		return sterrors.UserError{
			Message:    fmt.Sprintf("Store name '%s' is too long (%d chars, max %d)", name, len(name), maxNameLength),
			Suggestion: "Subdomain labels are limited to 63 characters",
		}
	}
	if !namePattern.MatchString(name) {
		return sterrors.UserError{
			Message:    fmt.Sprintf("Store name '%s' is not a valid subdomain", name),
			Details:    "only lowercase letters, digits, and hyphens are allowed",
			Suggestion: "Use a name like 'demo-store-1'",
		}
	}
	return nil
}

// SubdomainURL returns the storefront address a name will resolve to under
// the given base domain, e.g. SubdomainURL("127.0.0.1.nip.io", "demo-1").
func SubdomainURL(baseDomain, name string) string {
	return fmt.Sprintf("http://%s.%s", name, baseDomain)
}
