package linksafety

import (
	"fmt"
	"net"
	"net/url"
	"strings"
	"unicode"
)

// URL shortener hosts frequently used to hide a final destination. Not every
// shortened link is hostile, but a shortener plus no reputation data is enough
// to hold content for review.
var shortenerHosts = map[string]bool{
	"bit.ly":      true,
	"tinyurl.com": true,
	"goo.gl":      true,
	"t.co":        true,
	"is.gd":       true,
	"cutt.ly":     true,
	"rb.gy":       true,
	"shorturl.at": true,
	"tiny.cc":     true,
	"rebrand.ly":  true,
	"ow.ly":       true,
	"buff.ly":     true,
}

// subdomain labels typical of credential-phishing hosts
var phishyLabels = map[string]bool{
	"login":   true,
	"signin":  true,
	"secure":  true,
	"verify":  true,
	"account": true,
	"update":  true,
	"banking": true,
	"wallet":  true,
	"support": true,
}

// keywords whose density in a URL correlates with scam campaigns
var suspiciousKeywords = []string{
	"free", "win", "winner", "prize", "gift", "nitro", "airdrop",
	"claim", "bonus", "crypto", "giveaway", "urgent", "verify",
}

const maxReasonableURLLength = 200

// runHeuristics scores one URL with local patterns only. Pure function; no
// network access.
func runHeuristics(raw string, u *url.URL) []Threat {
	var threats []Threat
	lower := strings.ToLower(raw)
	host := ""
	if u != nil {
		host = strings.ToLower(u.Hostname())
	}

	switch {
	case strings.HasPrefix(lower, "javascript:"):
		threats = append(threats, Threat{
			Source:   "heuristic",
			Severity: RiskCritical,
			Reason:   "javascript: URI executes code on click",
		})
	case strings.HasPrefix(lower, "data:"):
		threats = append(threats, Threat{
			Source:   "heuristic",
			Severity: RiskCritical,
			Reason:   "data: URI smuggles inline content",
		})
	}

	if shortenerHosts[host] {
		threats = append(threats, Threat{
			Source:   "heuristic",
			Severity: RiskHigh,
			Reason:   fmt.Sprintf("link shortener host (%s) hides destination", host),
		})
	}

	if host != "" && net.ParseIP(host) != nil {
		threats = append(threats, Threat{
			Source:   "heuristic",
			Severity: RiskMedium,
			Reason:   "bare IP address instead of hostname",
		})
	}

	if labels := strings.Split(host, "."); len(labels) >= 3 {
		// only subdomain labels count; "login.example.com" is phishy,
		// "example-login.com" is not (that is the registrant's own name)
		for _, label := range labels[:len(labels)-2] {
			if phishyLabels[label] {
				threats = append(threats, Threat{
					Source:   "heuristic",
					Severity: RiskMedium,
					Reason:   fmt.Sprintf("phishing-shaped subdomain label (%s)", label),
				})
				break
			}
		}
	}

	if n := countKeywords(lower); n >= 2 {
		threats = append(threats, Threat{
			Source:   "heuristic",
			Severity: RiskMedium,
			Reason:   fmt.Sprintf("high scam-keyword density (%d keywords)", n),
		})
	} else if n == 1 {
		threats = append(threats, Threat{
			Source:   "heuristic",
			Severity: RiskLow,
			Reason:   "scam keyword present in URL",
		})
	}

	if len(raw) > maxReasonableURLLength {
		threats = append(threats, Threat{
			Source:   "heuristic",
			Severity: RiskLow,
			Reason:   fmt.Sprintf("unusually long URL (%d chars)", len(raw)),
		})
	}

	if hasNonASCII(host) {
		threats = append(threats, Threat{
			Source:   "heuristic",
			Severity: RiskHigh,
			Reason:   "non-ASCII characters in host (possible homograph)",
		})
	}

	return threats
}

func countKeywords(lower string) int {
	n := 0
	for _, kw := range suspiciousKeywords {
		if strings.Contains(lower, kw) {
			n++
		}
	}
	return n
}

func hasNonASCII(host string) bool {
	for _, r := range host {
		if r > unicode.MaxASCII {
			return true
		}
	}
	return false
}
