// Package attack detects security-attack-shaped text (injection families,
// prompt injection, protocol abuse) against a static, versioned signature
// catalog. Scanning is a pure function of the input text and the catalog;
// unlike the lexicon, the catalog is shipped with the code and is not editable
// at runtime.
package attack

import (
	"net/url"
	"strings"
)

// Severity of a matched signature category. Only two levels exist: everything
// in the catalog is worth flagging, the split is about how loudly.
type Severity string

const (
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Scanning regex work is bounded by capping input length; text beyond this is
// ignored. Long content should be scanned in application-level chunks.
const MaxScanLength = 8192

// Hit records one matched signature category. A category is reported at most
// once per scan, no matter how many of its patterns matched.
type Hit struct {
	Category    string   `json:"category"`
	Severity    Severity `json:"severity"`
	Description string   `json:"description"`
}

// Result of one scan.
type Result struct {
	Safe     bool     `json:"safe"`
	Severity Severity `json:"severity,omitempty"`
	Attacks  []Hit    `json:"attacks,omitempty"`
}

// Scan tests text (plus a URL-decoded variant and a lower-cased variant)
// against every pattern in the catalog. The result severity is the maximum
// across matched categories.
func Scan(text string) Result {
	if len(text) > MaxScanLength {
		text = text[:MaxScanLength]
	}

	variants := []string{text, strings.ToLower(text)}
	// decode failure means "use original text only", never an error
	if decoded, err := url.QueryUnescape(text); err == nil && decoded != text {
		variants = append(variants, decoded, strings.ToLower(decoded))
	}

	res := Result{Safe: true}
	for _, sig := range catalog {
		if sigMatches(sig, variants) {
			res.Safe = false
			res.Attacks = append(res.Attacks, Hit{
				Category:    sig.category,
				Severity:    sig.severity,
				Description: sig.description,
			})
			if res.Severity != SeverityCritical {
				res.Severity = sig.severity
			}
		}
	}
	return res
}

func sigMatches(sig signature, variants []string) bool {
	for _, pat := range sig.patterns {
		for _, v := range variants {
			if pat.MatchString(v) {
				return true
			}
		}
	}
	return false
}
