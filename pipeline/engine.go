package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/haven-social/guardian/attack"
	"github.com/haven-social/guardian/classifier"
	"github.com/haven-social/guardian/lexicon"
	"github.com/haven-social/guardian/linksafety"
	"github.com/haven-social/guardian/policy"
	"github.com/haven-social/guardian/queue"
	"github.com/haven-social/guardian/usage"
)

// AI category severity at or above which a queue entry is considered
// high-priority
const aiHighSeverity = 6

// Engine is the moderation orchestrator. All dependencies are injected;
// Classifier, Queue, Notifier, Usage, and BaseLexicon are optional and a nil
// value disables that collaborator (never errors).
type Engine struct {
	Logger     *slog.Logger
	Policies   policy.Store
	Matcher    *lexicon.Matcher
	Links      *linksafety.Analyzer
	Classifier classifier.Client
	Queue      queue.Store
	Notifier   Notifier
	Usage      usage.Tracker

	// site-wide blocklist merged into every workflow's lexicon tier
	BaseLexicon *lexicon.Lexicon
}

// Moderate runs the full tier pipeline for one piece of content and returns
// the verdict synchronously. It never returns an error: an unexpected
// internal failure fails open with reason `moderation_error` unless an
// earlier tier already decided to block, in which case the block stands.
func (eng *Engine) Moderate(ctx context.Context, c Content) (verdict *Verdict) {
	logger := eng.Logger.With("workflow", c.Workflow, "authorId", c.AuthorID)
	start := time.Now()

	var trace []TierResult
	blockReason := ""

	defer func() {
		moderationDuration.WithLabelValues(c.Workflow).Observe(time.Since(start).Seconds())
		if r := recover(); r != nil {
			logger.Error("moderation internal error", "err", r)
			if blockReason != "" {
				// an earlier tier already blocked; a later bug never unblocks
				verdict = &Verdict{Action: ActionBlock, Reason: blockReason, Tiers: trace}
				moderationDecisions.WithLabelValues(c.Workflow, ActionBlock).Inc()
				return
			}
			trace = append(trace, TierResult{
				Tier:   "internal",
				Passed: false,
				Action: TierActionAllow,
				Checks: []CheckResult{{Name: "internal_error", Passed: false, Message: fmt.Sprint(r)}},
			})
			verdict = &Verdict{Allowed: true, Action: ActionAllow, Reason: ReasonModerationError, Tiers: trace}
			moderationDecisions.WithLabelValues(c.Workflow, ActionAllow).Inc()
		}
	}()

	pol, err := eng.Policies.GetPolicy(ctx, c.Workflow)
	if err != nil {
		logger.Error("policy fetch failed, using defaults", "err", err)
	}
	if pol == nil {
		pol = policy.DefaultPolicy(c.Workflow)
	}

	if !pol.Enabled {
		for _, tier := range policy.TierOrder {
			trace = append(trace, skipResult(tier, "workflow moderation disabled"))
		}
		moderationDecisions.WithLabelValues(c.Workflow, ActionAllow).Inc()
		return &Verdict{Allowed: true, Action: ActionAllow, Reason: ReasonWorkflowDisabled, Tiers: trace}
	}

	needsReview := false
	for _, tier := range policy.TierOrder {
		if blockReason != "" {
			trace = append(trace, skipResult(tier, "earlier tier blocked"))
			continue
		}
		tc := pol.TierConfig(tier)
		if tc == nil || !tc.Enabled {
			trace = append(trace, skipResult(tier, "disabled in policy"))
			continue
		}

		var res TierResult
		switch tier {
		case policy.TierLexicon:
			res = eng.runLexicon(c, tc)
		case policy.TierAttack:
			res = eng.runAttack(c, tc)
		case policy.TierLinks:
			res = eng.runLinks(ctx, c, tc)
		case policy.TierAI:
			res = eng.runClassifier(ctx, c, tc)
		}
		trace = append(trace, res)

		switch res.Action {
		case TierActionBlock:
			blockReason = reasonForTier(tier)
			tierBlocks.WithLabelValues(c.Workflow, tier).Inc()
		case TierActionReview:
			needsReview = true
		}
	}

	return eng.finalize(ctx, logger, c, trace, blockReason, needsReview)
}

func (eng *Engine) runLexicon(c Content, tc *policy.TierConfig) TierResult {
	res := TierResult{Tier: policy.TierLexicon, Passed: true, Action: TierActionAllow}
	if c.Text == "" {
		res.Checks = append(res.Checks, CheckResult{Name: "blocklist", Passed: true, Message: "no text content"})
		return res
	}

	terms := tc.BlockedTerms
	domains := tc.BlockedDomains
	if eng.BaseLexicon != nil {
		terms = append(append([]lexicon.Entry{}, eng.BaseLexicon.Terms...), terms...)
		domains = append(append([]string{}, eng.BaseLexicon.Domains...), domains...)
	}

	matches := eng.Matcher.MatchText(c.Text, terms)
	matches = append(matches, eng.Matcher.MatchDomains(c.Text, domains)...)
	if len(matches) == 0 {
		res.Checks = append(res.Checks, CheckResult{Name: "blocklist", Passed: true})
		return res
	}

	res.Passed = false
	res.Action = violationAction(tc.OnViolation)
	res.Matches = matches
	res.Checks = append(res.Checks, CheckResult{
		Name:    "blocklist",
		Passed:  false,
		Message: fmt.Sprintf("matched %d blocked term(s)", len(matches)),
	})
	return res
}

func (eng *Engine) runAttack(c Content, tc *policy.TierConfig) TierResult {
	res := TierResult{Tier: policy.TierAttack, Passed: true, Action: TierActionAllow}
	if c.Text == "" {
		res.Checks = append(res.Checks, CheckResult{Name: "signatures", Passed: true, Message: "no text content"})
		return res
	}

	scan := attack.Scan(c.Text)
	if scan.Safe {
		res.Checks = append(res.Checks, CheckResult{Name: "signatures", Passed: true})
		return res
	}

	cats := make([]string, len(scan.Attacks))
	for i, hit := range scan.Attacks {
		cats[i] = hit.Category
	}
	res.Passed = false
	res.Action = violationAction(tc.OnViolation)
	res.Attacks = scan.Attacks
	res.Checks = append(res.Checks, CheckResult{
		Name:    "signatures",
		Passed:  false,
		Message: fmt.Sprintf("detected %s severity attack patterns: %s", scan.Severity, strings.Join(cats, ", ")),
	})
	return res
}

func (eng *Engine) runLinks(ctx context.Context, c Content, tc *policy.TierConfig) TierResult {
	res := TierResult{Tier: policy.TierLinks, Passed: true, Action: TierActionAllow}
	if c.Text == "" {
		res.Checks = append(res.Checks, CheckResult{Name: "links", Passed: true, Message: "no text content"})
		return res
	}

	analysis := eng.Links.Analyze(ctx, c.Text, tc.SafeDomains)
	res.URLs = analysis.URLs
	if !analysis.HasLinks {
		res.Checks = append(res.Checks, CheckResult{Name: "links", Passed: true, Message: "no links found"})
		return res
	}

	for _, f := range analysis.URLs {
		res.Checks = append(res.Checks, CheckResult{
			Name:    "url_reputation",
			Passed:  f.Safe && !f.NeedsReview,
			Message: fmt.Sprintf("%s risk=%s", f.Defanged, f.Risk),
		})
	}

	switch {
	case analysis.AnyMalicious() && tc.BlockOnMalicious:
		res.Passed = false
		res.Action = TierActionBlock
	case analysis.AnyMalicious():
		res.Passed = false
		res.Action = violationAction(tc.OnViolation)
	case analysis.AnySuspicious() && tc.FlagOnSuspicious:
		res.Passed = false
		res.Action = TierActionReview
	}
	return res
}

func (eng *Engine) runClassifier(ctx context.Context, c Content, tc *policy.TierConfig) TierResult {
	res := TierResult{Tier: policy.TierAI, Passed: true, Action: TierActionAllow}
	if eng.Classifier == nil {
		res.Checks = append(res.Checks, CheckResult{Name: "classifier", Passed: true, Message: "no classifier configured, skipped"})
		return res
	}

	var cats []classifier.Category
	var err error
	switch {
	case c.Type == ContentImage && len(c.Image) > 0:
		cats, err = eng.Classifier.ClassifyImage(ctx, c.Image)
		eng.recordUsage(ctx, "classifier", "classify-image", err == nil)
	case c.Text != "":
		cats, err = eng.Classifier.ClassifyText(ctx, c.Text)
		eng.recordUsage(ctx, "classifier", "classify-text", err == nil)
	default:
		res.Checks = append(res.Checks, CheckResult{Name: "classifier", Passed: true, Message: "no content to classify"})
		return res
	}

	if err != nil {
		eng.Logger.Warn("classifier call failed", "err", err, "workflow", c.Workflow)
		if tc.OnError == policy.OnErrorBlock {
			res.Passed = false
			res.Action = TierActionBlock
			res.Checks = append(res.Checks, CheckResult{Name: "classifier_call", Passed: false, Message: "classifier unreachable, failing closed per policy"})
			return res
		}
		res.Checks = append(res.Checks, CheckResult{Name: "classifier_call", Passed: false, Message: "classifier unreachable, failing open"})
		return res
	}

	findings, passed := classifier.Evaluate(cats, tc.Thresholds)
	res.Categories = findings
	if passed {
		res.Checks = append(res.Checks, CheckResult{Name: "classifier", Passed: true})
		return res
	}

	var failing []string
	for _, f := range findings {
		if !f.Passed {
			failing = append(failing, f.Category)
		}
	}
	res.Passed = false
	res.Action = violationAction(tc.OnViolation)
	res.Checks = append(res.Checks, CheckResult{
		Name:    "classifier",
		Passed:  false,
		Message: fmt.Sprintf("severity over threshold for: %s", strings.Join(failing, ", ")),
	})
	return res
}

func (eng *Engine) finalize(ctx context.Context, logger *slog.Logger, c Content, trace []TierResult, blockReason string, needsReview bool) *Verdict {
	v := &Verdict{Tiers: trace}
	switch {
	case blockReason != "":
		v.Action = ActionBlock
		v.Reason = blockReason
	case needsReview:
		v.Action = ActionPending
		v.NeedsReview = true
		v.Reason = ReasonPendingReview
		v.PendingMessage = pendingMessageText
	default:
		v.Allowed = true
		v.Action = ActionAllow
	}
	moderationDecisions.WithLabelValues(c.Workflow, v.Action).Inc()

	if v.Action != ActionAllow {
		eng.enqueue(ctx, logger, c, v)
	}
	if v.Action == ActionBlock && eng.Notifier != nil {
		// fire-and-forget; the author learns the category, never the term
		go func() {
			nctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := eng.Notifier.SendBlocked(nctx, c, v.Reason); err != nil {
				logger.Warn("author notification failed", "err", err)
			}
		}()
	}

	logger.Info("moderation verdict", "action", v.Action, "reason", v.Reason, "needsReview", v.NeedsReview)
	return v
}

func (eng *Engine) recordUsage(ctx context.Context, provider, operation string, ok bool) {
	if eng.Usage == nil {
		return
	}
	if err := eng.Usage.RecordCall(ctx, provider, operation, ok); err != nil {
		eng.Logger.Warn("usage tracking failed", "err", err, "provider", provider)
	}
}

func violationAction(onViolation string) string {
	switch onViolation {
	case policy.OnViolationBlock:
		return TierActionBlock
	default:
		// review and flag both route through human review
		return TierActionReview
	}
}

func reasonForTier(tier string) string {
	switch tier {
	case policy.TierLexicon:
		return ReasonLexiconMatch
	case policy.TierAttack:
		return ReasonAttackDetected
	case policy.TierLinks:
		return ReasonUnsafeLink
	case policy.TierAI:
		return ReasonAIViolation
	}
	return ReasonNone
}
