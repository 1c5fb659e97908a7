package linksafety

import "context"

// Lookup is the normalized answer from one reputation provider for one URL.
//
// Pending means the provider had not analyzed the URL yet and queued it for
// async analysis; that is a valid answer distinct from both malicious and
// clean, and typically holds the URL for human review.
type Lookup struct {
	Checked    bool
	Pending    bool
	Malicious  bool
	Suspicious bool
	Detail     string
}

// Provider is one external URL reputation source. Implementations must honor
// context cancellation and return errors rather than blocking indefinitely;
// the analyzer treats any error as "unknown".
type Provider interface {
	Name() string
	Lookup(ctx context.Context, rawURL string) (*Lookup, error)
}
