// Package policy holds per-tier quota limits loaded from configuration.
package policy

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/moonuidesign/quotagate/internal/model"
)

// Unlimited marks a tier/action pair with no daily cap.
const Unlimited int64 = -1

// TierLimits is the daily cap per action kind for one tier.
type TierLimits struct {
	Copy     int64 `yaml:"copy"`
	Download int64 `yaml:"download"`
}

func (l TierLimits) limit(a model.ActionKind) int64 {
	if a == model.ActionCopy {
		return l.Copy
	}
	return l.Download
}

// Policy maps tiers to their daily limits. Limits are policy constants owned
// by deployment configuration, not by the gate.
type Policy struct {
	Tiers map[model.Tier]TierLimits `yaml:"tiers"`
}

// Default returns the built-in policy. The ordering anonymous < free < pro
// creates the sign-in/upgrade incentive ladder; pro_plus is unlimited.
func Default() *Policy {
	return &Policy{Tiers: map[model.Tier]TierLimits{
		model.TierAnonymous: {Copy: 3, Download: 3},
		model.TierFree:      {Copy: 10, Download: 10},
		model.TierPro:       {Copy: 100, Download: 100},
		model.TierProPlus:   {Copy: Unlimited, Download: Unlimited},
	}}
}

// Load reads a YAML policy file and validates it.
func Load(path string) (*Policy, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy: %w", err)
	}
	var p Policy
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("parse policy: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Limit returns the daily cap for (tier, action) and whether it is unlimited.
// Unknown tiers fall back to the anonymous limits.
func (p *Policy) Limit(tier model.Tier, a model.ActionKind) (limit int64, unlimited bool) {
	l, ok := p.Tiers[tier]
	if !ok {
		l = p.Tiers[model.TierAnonymous]
	}
	n := l.limit(a)
	if n == Unlimited {
		return 0, true
	}
	return n, false
}

// Validate enforces the tier ladder: every tier must be present, the anonymous
// cap must be strictly lower than free, and free must not exceed pro.
func (p *Policy) Validate() error {
	for _, tier := range []model.Tier{model.TierAnonymous, model.TierFree, model.TierPro, model.TierProPlus} {
		if _, ok := p.Tiers[tier]; !ok {
			return fmt.Errorf("policy: missing tier %q", tier)
		}
	}
	for _, a := range []model.ActionKind{model.ActionCopy, model.ActionDownload} {
		anon, free, pro := p.Tiers[model.TierAnonymous].limit(a), p.Tiers[model.TierFree].limit(a), p.Tiers[model.TierPro].limit(a)
		if anon == Unlimited || anon <= 0 {
			return fmt.Errorf("policy: anonymous %s limit must be a positive finite cap", a)
		}
		if free != Unlimited && anon >= free {
			return fmt.Errorf("policy: anonymous %s limit must be below free tier", a)
		}
		if free != Unlimited && pro != Unlimited && free > pro {
			return fmt.Errorf("policy: free %s limit must not exceed pro tier", a)
		}
	}
	return nil
}
