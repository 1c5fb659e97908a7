// Package pipeline is the moderation orchestrator: it runs the configured
// tiers for a workflow in a fixed order (lexicon, attack signatures, link
// safety, AI classification), short-circuits on a blocking result, and
// produces a final verdict with a tier-by-tier trace. Blocked and flagged
// content is written to the review queue.
package pipeline

import (
	"github.com/haven-social/guardian/attack"
	"github.com/haven-social/guardian/classifier"
	"github.com/haven-social/guardian/lexicon"
	"github.com/haven-social/guardian/linksafety"
)

// content types
const (
	ContentText  = "text"
	ContentImage = "image"
)

// final verdict actions
const (
	ActionAllow   = "allow"
	ActionBlock   = "block"
	ActionPending = "pending"
)

// per-tier actions recorded in the trace
const (
	TierActionAllow  = "allow"
	TierActionBlock  = "block"
	TierActionReview = "review"
	TierActionSkip   = "skip"
)

// verdict reason codes
const (
	ReasonNone             = ""
	ReasonWorkflowDisabled = "workflow_disabled"
	ReasonLexiconMatch     = "blocked_term"
	ReasonAttackDetected   = "attack_detected"
	ReasonUnsafeLink       = "unsafe_link"
	ReasonAIViolation      = "ai_policy_violation"
	ReasonPendingReview    = "pending_review"
	ReasonModerationError  = "moderation_error"
)

// Content is one unit submitted for moderation.
type Content struct {
	Type          string `json:"type"`
	Text          string `json:"text,omitempty"`
	Image         []byte `json:"image,omitempty"`
	AuthorID      string `json:"authorId"`
	AuthorContact string `json:"authorContact,omitempty"`
	ContentID     string `json:"contentId,omitempty"`
	ChannelID     string `json:"channelId,omitempty"`
	GroupID       string `json:"groupId,omitempty"`
	Workflow      string `json:"workflow"`
}

// CheckResult is one audit line within a tier: what was checked, whether it
// passed, and a human-readable message. Messages only ever contain defanged
// URLs and category-level descriptions, never the raw matched term.
type CheckResult struct {
	Name    string `json:"name"`
	Passed  bool   `json:"passed"`
	Message string `json:"message,omitempty"`
}

// TierResult is one tier's contribution to the trace. Only the finding slice
// matching the tier is populated.
type TierResult struct {
	Tier       string                       `json:"tier"`
	Passed     bool                         `json:"passed"`
	Action     string                       `json:"action"`
	Checks     []CheckResult                `json:"checks,omitempty"`
	Matches    []lexicon.Match              `json:"matches,omitempty"`
	Attacks    []attack.Hit                 `json:"attacks,omitempty"`
	URLs       []linksafety.URLFinding      `json:"urls,omitempty"`
	Categories []classifier.CategoryFinding `json:"categories,omitempty"`
}

// Verdict is the pipeline's final output. Immutable once returned; it is the
// sole input to review-queue entry creation.
type Verdict struct {
	Allowed        bool         `json:"allowed"`
	Action         string       `json:"action"`
	NeedsReview    bool         `json:"needsReview"`
	Reason         string       `json:"reason,omitempty"`
	PendingMessage string       `json:"pendingMessageText,omitempty"`
	Tiers          []TierResult `json:"tiers"`
}

// message shown to the author while their content awaits review
const pendingMessageText = "Your content has been submitted for review and will be visible once approved."

func skipResult(tier, why string) TierResult {
	return TierResult{
		Tier:   tier,
		Passed: true,
		Action: TierActionSkip,
		Checks: []CheckResult{{Name: "skipped", Passed: true, Message: why}},
	}
}
