// Package auth classifies presented API keys into access tiers.
package auth

import (
	"crypto/subtle"
	"errors"

	"remotedb/internal/config"
)

// Tier is the access level derived from the presented API key.
type Tier string

const (
	// TierStandard may run SELECT/INSERT/UPDATE/DELETE subject to query
	// validation.
	TierStandard Tier = "standard"

	// TierPrivileged has full SQL access and bypasses query validation.
	TierPrivileged Tier = "privileged"
)

var (
	ErrMissingKey = errors.New("missing API key")
	ErrInvalidKey = errors.New("invalid API key")
)

// CheckKey classifies the presented key against the configured credentials.
// The privileged key wins when both are configured and match. Comparisons
// are constant-time so response timing leaks nothing about either key.
// CheckKey does not log; the caller decides what failures are worth noting.
func CheckKey(provided string, cfg *config.Config) (Tier, error) {
	if provided == "" {
		return "", ErrMissingKey
	}
	if cfg.AdminAPIKey != "" && equal(provided, cfg.AdminAPIKey) {
		return TierPrivileged, nil
	}
	if equal(provided, cfg.APIKey) {
		return TierStandard, nil
	}
	return "", ErrInvalidKey
}

func equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
