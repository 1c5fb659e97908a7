package classifier

import "strings"

// severity at which each category blocks by default, on the classifier's
// 0-7 scale. Self-harm is deliberately stricter than the rest.
var defaultThresholds = map[string]int{
	"hate":      4,
	"violence":  4,
	"sexual":    4,
	"self-harm": 2,
}

// fallback for categories the classifier returns that we have no opinion on
const defaultThreshold = 4

// known alias spellings across classifier API versions
var categoryAliases = map[string]string{
	"selfharm":       "self-harm",
	"self_harm":      "self-harm",
	"sexualcontent":  "sexual",
	"sexual_content": "sexual",
	"hatespeech":     "hate",
	"hate_speech":    "hate",
	"graphic":        "violence",
}

// NormalizeCategory lower-cases a classifier category name and folds known
// aliases, so threshold lookup is stable across classifier API versions.
func NormalizeCategory(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if canonical, ok := categoryAliases[n]; ok {
		return canonical
	}
	return n
}

// ThresholdFor resolves the effective threshold for a (normalized) category:
// per-workflow configuration first, then built-in defaults.
func ThresholdFor(category string, configured map[string]int) int {
	if configured != nil {
		if t, ok := configured[category]; ok {
			return t
		}
	}
	if t, ok := defaultThresholds[category]; ok {
		return t
	}
	return defaultThreshold
}

// Evaluate maps raw classifier categories against thresholds. A finding passes
// only when severity is strictly below its threshold; severity equal to the
// threshold is a violation.
func Evaluate(categories []Category, configured map[string]int) ([]CategoryFinding, bool) {
	findings := make([]CategoryFinding, 0, len(categories))
	passed := true
	for _, cat := range categories {
		name := NormalizeCategory(cat.Name)
		threshold := ThresholdFor(name, configured)
		ok := cat.Severity < threshold
		if !ok {
			passed = false
		}
		findings = append(findings, CategoryFinding{
			Category:  name,
			Severity:  cat.Severity,
			Threshold: threshold,
			Passed:    ok,
		})
	}
	return findings, passed
}
