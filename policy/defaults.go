package policy

import "time"

// Built-in workflow identifiers. Deployments can add more via the admin
// surface; these three are seeded on startup if absent.
const (
	WorkflowPublicChannel = "public_channel"
	WorkflowPrivateGroup  = "private_group"
	WorkflowAgentOutput   = "agent_output"
)

// DefaultPolicy returns the seed policy for a workflow. Public channels get
// the full pipeline; private groups skip the AI tier; agent output is scanned
// aggressively for injection but not lexicon-filtered.
func DefaultPolicy(workflow string) *Policy {
	now := time.Now().UTC()
	switch workflow {
	case WorkflowPrivateGroup:
		return &Policy{
			Workflow: workflow,
			Enabled:  true,
			Tiers: []TierConfig{
				{Tier: TierLexicon, Enabled: true, OnViolation: OnViolationBlock},
				{Tier: TierAttack, Enabled: true, OnViolation: OnViolationBlock},
				{Tier: TierLinks, Enabled: true, OnViolation: OnViolationReview, BlockOnMalicious: true, FlagOnSuspicious: true},
				{Tier: TierAI, Enabled: false, OnViolation: OnViolationReview},
			},
			UpdatedAt: now,
		}
	case WorkflowAgentOutput:
		return &Policy{
			Workflow: workflow,
			Enabled:  true,
			Tiers: []TierConfig{
				{Tier: TierLexicon, Enabled: false, OnViolation: OnViolationReview},
				{Tier: TierAttack, Enabled: true, OnViolation: OnViolationBlock},
				{Tier: TierLinks, Enabled: true, OnViolation: OnViolationBlock, BlockOnMalicious: true, FlagOnSuspicious: true},
				{Tier: TierAI, Enabled: true, OnViolation: OnViolationReview},
			},
			UpdatedAt: now,
		}
	default:
		return &Policy{
			Workflow: workflow,
			Enabled:  true,
			Tiers: []TierConfig{
				{Tier: TierLexicon, Enabled: true, OnViolation: OnViolationBlock},
				{Tier: TierAttack, Enabled: true, OnViolation: OnViolationBlock},
				{Tier: TierLinks, Enabled: true, OnViolation: OnViolationReview, BlockOnMalicious: true, FlagOnSuspicious: true},
				{Tier: TierAI, Enabled: true, OnViolation: OnViolationBlock},
			},
			UpdatedAt: now,
		}
	}
}
