// Package model defines domain entities used by the gate, ledger and transport.
package model

import (
	"fmt"

	"github.com/gofrs/uuid/v5"
)

// ActionKind is a gated user action on an asset.
type ActionKind string

const (
	ActionCopy     ActionKind = "copy"
	ActionDownload ActionKind = "download"
)

// ParseActionKind validates a wire string against the closed action set.
func ParseActionKind(s string) (ActionKind, error) {
	switch ActionKind(s) {
	case ActionCopy, ActionDownload:
		return ActionKind(s), nil
	}
	return "", fmt.Errorf("unknown action kind %q", s)
}

// AssetType is a marketplace asset category.
type AssetType string

const (
	AssetComponent AssetType = "component"
	AssetTemplate  AssetType = "template"
	AssetDesign    AssetType = "design"
	AssetGradient  AssetType = "gradient"
)

// ParseAssetType validates a wire string against the closed asset-type set.
func ParseAssetType(s string) (AssetType, error) {
	switch AssetType(s) {
	case AssetComponent, AssetTemplate, AssetDesign, AssetGradient:
		return AssetType(s), nil
	}
	return "", fmt.Errorf("unknown asset type %q", s)
}

// AllowedOn reports whether the action is policy-valid for the asset type.
// Only components expose source code to copy; every type can be downloaded.
func (a ActionKind) AllowedOn(t AssetType) bool {
	switch a {
	case ActionCopy:
		return t == AssetComponent
	case ActionDownload:
		return t == AssetComponent || t == AssetTemplate || t == AssetDesign || t == AssetGradient
	}
	return false
}

// Tier is a subscription level governing quota limits.
type Tier string

const (
	TierAnonymous Tier = "anonymous"
	TierFree      Tier = "free"
	TierPro       Tier = "pro"
	TierProPlus   Tier = "pro_plus"
)

// ParseTier validates a wire string against the closed tier set.
func ParseTier(s string) (Tier, error) {
	switch Tier(s) {
	case TierAnonymous, TierFree, TierPro, TierProPlus:
		return Tier(s), nil
	}
	return "", fmt.Errorf("unknown tier %q", s)
}

// Identity names the caller for quota accounting. An authenticated user ID
// strictly takes precedence over the visitor key; fingerprint history is
// never merged with account history.
type Identity struct {
	UserID     uuid.UUID // Nil when anonymous
	VisitorKey string    // fingerprint token or hashed network address; may be empty
}

// Authenticated reports whether the identity carries a user ID.
func (id Identity) Authenticated() bool { return id.UserID != uuid.Nil }

// Resolvable reports whether any usable identity is present.
func (id Identity) Resolvable() bool { return id.Authenticated() || id.VisitorKey != "" }

// AccessRequest is the per-call tuple the gate evaluates. Ephemeral, never persisted.
type AccessRequest struct {
	Action    ActionKind
	AssetID   string
	AssetType AssetType
	Identity  Identity
}

// Reason classifies a gate decision for callers and tests.
type Reason string

const (
	ReasonOK                  Reason = "ok"
	ReasonQuotaExceeded       Reason = "quota_exceeded"
	ReasonIdentityUnavailable Reason = "identity_unavailable"
	ReasonInvalidRequest      Reason = "invalid_request"
	ReasonUnavailable         Reason = "unavailable"
)

// LimitDecision is the gate's answer to a single access request.
type LimitDecision struct {
	Allowed bool
	Reason  Reason
	Message string // human-readable denial reason, empty when allowed

	// RequiresLogin directs anonymous callers to sign-in; RequiresUpgrade
	// directs exhausted free-tier users to the pricing page.
	RequiresLogin   bool
	RequiresUpgrade bool

	// Remaining is the quota left after the increment the caller is expected
	// to perform next. Nil when unlimited or not determinable.
	Remaining *int64
}
