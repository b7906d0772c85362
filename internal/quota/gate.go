// Package quota implements the rate-limit gate for download and copy actions.
package quota

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/moonuidesign/quotagate/internal/entitlement"
	"github.com/moonuidesign/quotagate/internal/errs"
	"github.com/moonuidesign/quotagate/internal/identity"
	"github.com/moonuidesign/quotagate/internal/ledger"
	"github.com/moonuidesign/quotagate/internal/model"
	"github.com/moonuidesign/quotagate/internal/policy"
)

// Gate decides whether a copy/download action may proceed for an identity.
// Check has no side effects; callers invoke Record only after the gated action
// itself succeeded, so failed downloads never charge quota. Callers must call
// Record at most once per completed action — the ledger has no dedup key.
type Gate struct {
	ledger ledger.Ledger
	tiers  entitlement.Store
	policy *policy.Policy
	log    *zap.Logger
	now    func() time.Time
}

// NewGate constructs a gate with required dependencies.
func NewGate(l ledger.Ledger, tiers entitlement.Store, pol *policy.Policy, log *zap.Logger) *Gate {
	return &Gate{ledger: l, tiers: tiers, policy: pol, log: log, now: time.Now}
}

const genericDenial = "Something went wrong. Please try again."

// Check evaluates one access request and reports the decision plus remaining
// quota. Expected denials are return values, never errors; infrastructure
// failures are logged and folded into a fail-closed generic denial so callers
// have a single uniform handling path.
func (g *Gate) Check(ctx context.Context, req model.AccessRequest) model.LimitDecision {
	if msg, ok := validate(req); !ok {
		return model.LimitDecision{
			Reason:  model.ReasonInvalidRequest,
			Message: msg,
		}
	}

	if !req.Identity.Resolvable() {
		// No fingerprint and no session: blocking beats free unlimited access.
		return model.LimitDecision{
			Reason:        model.ReasonIdentityUnavailable,
			Message:       "Sign in to continue.",
			RequiresLogin: true,
		}
	}

	tier := model.TierAnonymous
	if req.Identity.Authenticated() {
		var err error
		tier, err = g.tiers.TierFor(ctx, req.Identity.UserID)
		if err != nil {
			g.log.Error("entitlement lookup failed",
				zap.String("action", string(req.Action)),
				zap.Error(err),
			)
			return unavailable()
		}
	}

	limit, unlimited := g.policy.Limit(tier, req.Action)
	if unlimited {
		return model.LimitDecision{Allowed: true, Reason: model.ReasonOK}
	}

	key := identity.LedgerKey(req.Identity)
	window := ledger.WindowFor(g.now())
	count, err := g.ledger.Count(ctx, key, req.Action, window)
	if err != nil {
		g.log.Error("ledger count failed",
			zap.String("action", string(req.Action)),
			zap.Error(err),
		)
		return unavailable()
	}

	if count >= limit {
		return denied(tier)
	}

	// Remaining reflects the increment the caller performs next.
	remaining := limit - count - 1
	return model.LimitDecision{
		Allowed:   true,
		Reason:    model.ReasonOK,
		Remaining: &remaining,
	}
}

// Record charges one use against the identity's current window. Invoked by
// callers after the gated side effect succeeded; a failed increment is
// returned, not swallowed.
func (g *Gate) Record(ctx context.Context, req model.AccessRequest) error {
	if msg, ok := validate(req); !ok {
		return fmt.Errorf("%w: %s", errs.ErrInvalidRequest, msg)
	}
	if !req.Identity.Resolvable() {
		return errs.ErrIdentityUnavailable
	}

	key := identity.LedgerKey(req.Identity)
	window := ledger.WindowFor(g.now())
	if _, err := g.ledger.Increment(ctx, key, req.Action, window); err != nil {
		return fmt.Errorf("%w: record usage: %v", errs.ErrUnavailable, err)
	}
	return nil
}

func validate(req model.AccessRequest) (string, bool) {
	if req.AssetID == "" {
		return "missing asset id", false
	}
	if !req.Action.AllowedOn(req.AssetType) {
		return fmt.Sprintf("%s is not available for %s assets", req.Action, req.AssetType), false
	}
	return "", true
}

func denied(tier model.Tier) model.LimitDecision {
	d := model.LimitDecision{
		Reason:  model.ReasonQuotaExceeded,
		Message: "Daily limit reached.",
	}
	switch tier {
	case model.TierAnonymous:
		d.RequiresLogin = true
		d.Message = "Daily limit reached. Sign in for a higher limit."
	case model.TierFree:
		d.RequiresUpgrade = true
		d.Message = "Daily limit reached. Upgrade for a higher limit."
	}
	return d
}

func unavailable() model.LimitDecision {
	return model.LimitDecision{
		Reason:  model.ReasonUnavailable,
		Message: genericDenial,
	}
}
