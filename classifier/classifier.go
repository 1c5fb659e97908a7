// Package classifier adapts a remote category-severity content classifier
// (text and image) to the moderation pipeline. The wire taxonomy is not ours:
// category names are normalized and mapped against configurable per-category
// severity thresholds, with built-in defaults.
package classifier

import "context"

// Category is one classifier verdict: a named category with an integer
// severity on the classifier's own scale (0 = none, higher = worse).
type Category struct {
	Name     string `json:"category"`
	Severity int    `json:"severity"`
}

// CategoryFinding is a Category mapped against its configured threshold.
// Severity at or above the threshold is a violation (strict less-than passes).
type CategoryFinding struct {
	Category  string `json:"category"`
	Severity  int    `json:"severity"`
	Threshold int    `json:"threshold"`
	Passed    bool   `json:"passed"`
}

// Client is the remote classifier transport. Implementations must honor
// context cancellation; callers treat errors as a fail-open signal.
type Client interface {
	ClassifyText(ctx context.Context, text string) ([]Category, error)
	ClassifyImage(ctx context.Context, data []byte) ([]Category, error)
}
