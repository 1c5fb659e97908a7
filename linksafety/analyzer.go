package linksafety

import (
	"context"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/haven-social/guardian/usage"
	"github.com/haven-social/guardian/util"
)

// at most this many distinct URLs are analyzed per text unit; anything beyond
// is already spam-shaped and the first few findings carry the decision
const maxURLsPerText = 8

const defaultLookupTimeout = 5 * time.Second
const defaultMaxConcurrent = 4

// the general URL regex requires a dot, so dangerous dotless URIs need their
// own extraction pass
var dangerousURIRegex = regexp.MustCompile(`(?i)\b(?:javascript|data):[^\s"'<>]+`)

// Analyzer combines local heuristics with the configured reputation providers.
// Zero providers is a valid configuration: heuristics still run, reputation
// signals are simply absent.
type Analyzer struct {
	Logger        *slog.Logger
	Providers     []Provider
	Usage         usage.Tracker
	LookupTimeout time.Duration
	MaxConcurrent int
}

func NewAnalyzer(logger *slog.Logger, providers []Provider, tracker usage.Tracker) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{
		Logger:        logger,
		Providers:     providers,
		Usage:         tracker,
		LookupTimeout: defaultLookupTimeout,
		MaxConcurrent: defaultMaxConcurrent,
	}
}

// Analyze discovers URLs in text and produces a merged finding per URL.
// Different URLs are analyzed concurrently with a bounded fan-out, so total
// latency tracks the slowest single lookup rather than the sum.
func (a *Analyzer) Analyze(ctx context.Context, text string, safeDomains []string) Result {

	urls := util.DedupeStrings(append(util.ExtractTextURLs(text), dangerousURIRegex.FindAllString(text, -1)...))
	if len(urls) > maxURLsPerText {
		a.Logger.Warn("capping URL analysis", "found", len(urls), "cap", maxURLsPerText)
		urls = urls[:maxURLsPerText]
	}
	if len(urls) == 0 {
		return Result{HasLinks: false}
	}

	findings := make([]URLFinding, len(urls))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.maxConcurrent())
	for i, raw := range urls {
		i, raw := i, raw
		g.Go(func() error {
			findings[i] = a.analyzeURL(gctx, raw, safeDomains)
			return nil
		})
	}
	_ = g.Wait()

	for _, f := range findings {
		analyzedURLCount.WithLabelValues(string(f.Risk)).Inc()
	}
	return Result{HasLinks: true, URLs: findings}
}

func (a *Analyzer) analyzeURL(ctx context.Context, raw string, safeDomains []string) URLFinding {

	finding := URLFinding{
		URL:      raw,
		Defanged: Defang(raw),
	}

	u := parseURL(raw)
	if u != nil {
		finding.Domain = strings.ToLower(u.Hostname())
	}

	// allowlist short-circuit: a performance and noise-reduction optimization,
	// not a security boundary
	if onSafeList(finding.Domain, safeDomains) {
		finding.Risk = RiskSafe
		finding.Safe = true
		return finding
	}

	threats := runHeuristics(raw, u)
	repThreats, pending := a.lookupReputations(ctx, raw)
	threats = append(threats, repThreats...)

	risk := RiskSafe
	malicious := false
	for _, t := range threats {
		risk = maxRisk(risk, t.Severity)
		if t.Severity == RiskCritical {
			malicious = true
		}
	}

	finding.Threats = threats
	finding.Risk = risk
	finding.Safe = !malicious
	// medium risk, or elevated-but-unconfirmed risk, goes to a human
	finding.NeedsReview = (!malicious && risk.Rank() >= RiskMedium.Rank()) || pending
	return finding
}

// lookupReputations queries all configured providers for one URL concurrently.
// A failed or timed-out lookup degrades to no signal; it is logged and counted
// but contributes nothing to the merge.
func (a *Analyzer) lookupReputations(ctx context.Context, raw string) ([]Threat, bool) {
	if len(a.Providers) == 0 {
		return nil, false
	}

	results := make([]*Lookup, len(a.Providers))
	var wg sync.WaitGroup
	for i, p := range a.Providers {
		wg.Add(1)
		go func(i int, p Provider) {
			defer wg.Done()
			callCtx, cancel := context.WithTimeout(ctx, a.lookupTimeout())
			defer cancel()
			lk, err := p.Lookup(callCtx, raw)
			if a.Usage != nil {
				if terr := a.Usage.RecordCall(ctx, p.Name(), "lookup", err == nil); terr != nil {
					a.Logger.Warn("usage tracking failed", "provider", p.Name(), "err", terr)
				}
			}
			if err != nil {
				a.Logger.Warn("reputation lookup failed", "provider", p.Name(), "err", err)
				return
			}
			results[i] = lk
		}(i, p)
	}
	wg.Wait()

	var threats []Threat
	pending := false
	for i, lk := range results {
		if lk == nil {
			continue
		}
		name := a.Providers[i].Name()
		switch {
		case lk.Malicious:
			threats = append(threats, Threat{Source: name, Severity: RiskCritical, Reason: lk.Detail})
		case lk.Suspicious:
			threats = append(threats, Threat{Source: name, Severity: RiskHigh, Reason: lk.Detail})
		case lk.Pending:
			pending = true
			threats = append(threats, Threat{Source: name, Severity: RiskLow, Reason: "pending analysis: " + lk.Detail})
		}
	}
	return threats, pending
}

func (a *Analyzer) lookupTimeout() time.Duration {
	if a.LookupTimeout > 0 {
		return a.LookupTimeout
	}
	return defaultLookupTimeout
}

func (a *Analyzer) maxConcurrent() int {
	if a.MaxConcurrent > 0 {
		return a.MaxConcurrent
	}
	return defaultMaxConcurrent
}

func parseURL(raw string) *url.URL {
	s := raw
	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "javascript:") || strings.HasPrefix(lower, "data:") {
		u, err := url.Parse(s)
		if err != nil {
			return nil
		}
		return u
	}
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil {
		return nil
	}
	return u
}

func onSafeList(host string, safeDomains []string) bool {
	if host == "" {
		return false
	}
	for _, d := range safeDomains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d == "" {
			continue
		}
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}
