// Package entitlement reads subscription tiers for authenticated users.
package entitlement

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/moonuidesign/quotagate/internal/model"
)

// Store supplies the tier for an authenticated identity. Owned by the
// subscription subsystem; the gate only reads it. Anonymous identities never
// reach the store, their tier is fixed by policy.
type Store interface {
	// TierFor returns the user's tier; users without a row are free tier.
	TierFor(ctx context.Context, userID uuid.UUID) (model.Tier, error)
	// SetTier upserts the user's tier. Used by subscription webhooks and ops tooling.
	SetTier(ctx context.Context, userID uuid.UUID, tier model.Tier) error
}
