// Package linksafety discovers URLs in text and scores them by combining local
// pattern heuristics with zero or more external reputation providers. Provider
// outages degrade individual signals to "unknown"; they never fail an analysis.
package linksafety

// RiskLevel for a single URL. Ordered; merging takes the maximum.
type RiskLevel string

const (
	RiskSafe     RiskLevel = "safe"
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

func (r RiskLevel) Rank() int {
	switch r {
	case RiskSafe:
		return 0
	case RiskLow:
		return 1
	case RiskMedium:
		return 2
	case RiskHigh:
		return 3
	case RiskCritical:
		return 4
	default:
		return 0
	}
}

func maxRisk(a, b RiskLevel) RiskLevel {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// Threat is one signal contributing to a URL's risk, from a heuristic or a
// reputation provider. Reason is human-readable, for moderator display only.
type Threat struct {
	Source   string    `json:"source"`
	Severity RiskLevel `json:"severity"`
	Reason   string    `json:"reason"`
}

// URLFinding is the merged analysis of one discovered URL. The defanged form
// is what every check message and queue record must display.
type URLFinding struct {
	URL         string    `json:"url"`
	Defanged    string    `json:"defanged"`
	Domain      string    `json:"domain"`
	Risk        RiskLevel `json:"riskLevel"`
	Threats     []Threat  `json:"threats,omitempty"`
	Safe        bool      `json:"safe"`
	NeedsReview bool      `json:"needsReview"`
}

// Result of analyzing one text unit.
type Result struct {
	HasLinks bool         `json:"hasLinks"`
	URLs     []URLFinding `json:"urls,omitempty"`
}

// AnyMalicious reports whether any URL was confirmed unsafe.
func (r *Result) AnyMalicious() bool {
	for _, f := range r.URLs {
		if !f.Safe {
			return true
		}
	}
	return false
}

// AnySuspicious reports whether any URL needs human review.
func (r *Result) AnySuspicious() bool {
	for _, f := range r.URLs {
		if f.NeedsReview {
			return true
		}
	}
	return false
}

// MaxRisk across all URL findings.
func (r *Result) MaxRisk() RiskLevel {
	out := RiskSafe
	for _, f := range r.URLs {
		out = maxRisk(out, f.Risk)
	}
	return out
}
