// Package policy holds the per-workflow moderation configuration: which tiers
// run, what each tier does on a violation, and tier-specific parameters like
// blocklists and classifier thresholds. Policies are read on every moderation
// call and mutated only through the admin surface.
package policy

import (
	"fmt"
	"time"

	"github.com/haven-social/guardian/lexicon"
)

// Tier identifiers, in execution order. Cheap local checks always precede
// network-bound checks.
const (
	TierLexicon = "lexicon"
	TierAttack  = "attack"
	TierLinks   = "links"
	TierAI      = "ai"
)

// TierOrder is the canonical execution order of tiers within a policy.
var TierOrder = []string{TierLexicon, TierAttack, TierLinks, TierAI}

// what a tier does when it finds a violation
const (
	OnViolationBlock  = "block"
	OnViolationReview = "review"
	OnViolationFlag   = "flag"
)

// what a tier does when its external dependency is unreachable
const (
	OnErrorAllow = "allow"
	OnErrorBlock = "block"
)

// TierConfig configures one tier within a workflow policy. Only the fields
// relevant to the tier are populated; the rest are zero.
type TierConfig struct {
	Tier        string `json:"tier"`
	Enabled     bool   `json:"enabled"`
	OnViolation string `json:"onViolation"`
	OnError     string `json:"onError,omitempty"`

	// lexicon tier
	BlockedTerms   []lexicon.Entry `json:"blockedTerms,omitempty"`
	BlockedDomains []string        `json:"blockedDomains,omitempty"`

	// links tier
	SafeDomains      []string `json:"safeDomains,omitempty"`
	BlockOnMalicious bool     `json:"blockOnMalicious,omitempty"`
	FlagOnSuspicious bool     `json:"flagOnSuspicious,omitempty"`

	// ai tier
	Thresholds map[string]int `json:"thresholds,omitempty"`
}

// Policy is the full moderation configuration for one workflow.
type Policy struct {
	Workflow  string       `json:"workflow"`
	Enabled   bool         `json:"enabled"`
	Tiers     []TierConfig `json:"tiers"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// TierConfig returns the configuration for the named tier, or nil when the
// policy does not mention it (treated as disabled by callers).
func (p *Policy) TierConfig(tier string) *TierConfig {
	for i := range p.Tiers {
		if p.Tiers[i].Tier == tier {
			return &p.Tiers[i]
		}
	}
	return nil
}

// Validate checks the structural invariants: known and unique tier ids, valid
// action values, and canonical tier ordering (local checks before network).
func (p *Policy) Validate() error {
	if p.Workflow == "" {
		return fmt.Errorf("policy missing workflow identifier")
	}
	rank := map[string]int{}
	for i, t := range TierOrder {
		rank[t] = i
	}
	seen := map[string]bool{}
	prev := -1
	for _, tc := range p.Tiers {
		r, known := rank[tc.Tier]
		if !known {
			return fmt.Errorf("unknown tier id: %s", tc.Tier)
		}
		if seen[tc.Tier] {
			return fmt.Errorf("duplicate tier id: %s", tc.Tier)
		}
		seen[tc.Tier] = true
		if r < prev {
			return fmt.Errorf("tier out of order: %s", tc.Tier)
		}
		prev = r
		switch tc.OnViolation {
		case OnViolationBlock, OnViolationReview, OnViolationFlag:
		default:
			return fmt.Errorf("tier %s: invalid onViolation: %q", tc.Tier, tc.OnViolation)
		}
		switch tc.OnError {
		case "", OnErrorAllow, OnErrorBlock:
		default:
			return fmt.Errorf("tier %s: invalid onError: %q", tc.Tier, tc.OnError)
		}
	}
	return nil
}
