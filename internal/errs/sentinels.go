// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across ledger/gate layers. Quota exhaustion is not an
// error: expected denials travel as decision values, not errors.
var (
	// ErrIdentityUnavailable indicates neither an authenticated user nor a visitor key was supplied.
	ErrIdentityUnavailable = errors.New("identity unavailable")

	// ErrInvalidRequest indicates an action/asset-type combination that is not policy-valid.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrUnavailable indicates a ledger or entitlement backend failure.
	ErrUnavailable = errors.New("service unavailable")
)
