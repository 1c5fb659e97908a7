package linksafety

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/haven-social/guardian/usage"
)

type stubProvider struct {
	name   string
	lookup *Lookup
	err    error
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) Lookup(ctx context.Context, rawURL string) (*Lookup, error) {
	return p.lookup, p.err
}

func TestAnalyzeNoLinks(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	a := NewAnalyzer(nil, nil, nil)
	res := a.Analyze(ctx, "no links in this text at all", nil)
	assert.False(res.HasLinks)
	assert.Empty(res.URLs)
}

func TestAnalyzeSafeListShortCircuit(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	// provider failure concurrent with an allowlisted URL must not matter
	broken := &stubProvider{name: "urlvote", err: fmt.Errorf("connection refused")}
	a := NewAnalyzer(nil, []Provider{broken}, nil)

	res := a.Analyze(ctx, "see https://docs.example.com/guide", []string{"example.com"})
	if assert.Len(res.URLs, 1) {
		f := res.URLs[0]
		assert.Equal(RiskSafe, f.Risk)
		assert.True(f.Safe)
		assert.False(f.NeedsReview)
		assert.Empty(f.Threats)
	}
}

func TestAnalyzeFailOpenOnProviderOutage(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	tracker := usage.NewMemTracker()
	a := NewAnalyzer(nil, []Provider{
		&stubProvider{name: "urlvote", err: fmt.Errorf("timeout")},
		&stubProvider{name: "threatlist", err: fmt.Errorf("503")},
	}, tracker)

	// nothing heuristically suspicious about this URL
	res := a.Analyze(ctx, "read https://example.org/blog/post", nil)
	if assert.Len(res.URLs, 1) {
		f := res.URLs[0]
		assert.True(f.Safe)
		assert.False(f.NeedsReview)
		assert.Less(f.Risk.Rank(), RiskMedium.Rank())
	}

	// both failures were tracked for quota monitoring
	c, err := tracker.GetCount(ctx, "urlvote", "lookup", usage.OutcomeFailed, usage.PeriodTotal)
	assert.NoError(err)
	assert.Equal(1, c)
	c, err = tracker.GetCount(ctx, "threatlist", "lookup", usage.OutcomeFailed, usage.PeriodTotal)
	assert.NoError(err)
	assert.Equal(1, c)
}

func TestAnalyzeMaliciousProvider(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	a := NewAnalyzer(nil, []Provider{
		&stubProvider{name: "urlvote", lookup: &Lookup{Checked: true, Malicious: true, Detail: "engine votes: 9 malicious"}},
	}, nil)

	res := a.Analyze(ctx, "click https://evil.example/payload", nil)
	if assert.Len(res.URLs, 1) {
		f := res.URLs[0]
		assert.False(f.Safe)
		assert.Equal(RiskCritical, f.Risk)
		assert.False(f.NeedsReview) // confirmed, not reviewable
	}
	assert.True(res.AnyMalicious())
}

func TestAnalyzeSuspiciousProviderNeedsReview(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	a := NewAnalyzer(nil, []Provider{
		&stubProvider{name: "urlvote", lookup: &Lookup{Checked: true, Suspicious: true, Detail: "engine votes: 1 malicious"}},
	}, nil)

	res := a.Analyze(ctx, "click https://sketchy.example/thing", nil)
	if assert.Len(res.URLs, 1) {
		f := res.URLs[0]
		assert.True(f.Safe)
		assert.Equal(RiskHigh, f.Risk)
		assert.True(f.NeedsReview)
	}
	assert.True(res.AnySuspicious())
}

func TestAnalyzePendingProviderNeedsReview(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	a := NewAnalyzer(nil, []Provider{
		&stubProvider{name: "urlvote", lookup: &Lookup{Pending: true, Detail: "URL submitted for analysis"}},
	}, nil)

	res := a.Analyze(ctx, "see https://brandnew.example/page", nil)
	if assert.Len(res.URLs, 1) {
		f := res.URLs[0]
		assert.True(f.Safe)
		assert.True(f.NeedsReview)
	}
}

func TestAnalyzeShortenerHighRisk(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	a := NewAnalyzer(nil, nil, nil)
	res := a.Analyze(ctx, "Check out bit.ly/x now", nil)
	if assert.Len(res.URLs, 1) {
		f := res.URLs[0]
		assert.Equal(RiskHigh, f.Risk)
		assert.True(f.NeedsReview)
		assert.Equal("bit[.]ly/x", f.Defanged)
	}
	assert.Equal(RiskHigh, res.MaxRisk())
}

// records the high-water mark of simultaneous lookups
type gaugeProvider struct {
	mu      sync.Mutex
	current int
	peak    int
	total   int
}

func (p *gaugeProvider) Name() string { return "gauge" }

func (p *gaugeProvider) Lookup(ctx context.Context, rawURL string) (*Lookup, error) {
	p.mu.Lock()
	p.current++
	p.total++
	if p.current > p.peak {
		p.peak = p.current
	}
	p.mu.Unlock()

	time.Sleep(20 * time.Millisecond)

	p.mu.Lock()
	p.current--
	p.mu.Unlock()
	return &Lookup{Checked: true}, nil
}

func TestAnalyzeBoundedFanOut(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	gauge := &gaugeProvider{}
	a := NewAnalyzer(nil, []Provider{gauge}, nil)
	a.MaxConcurrent = 2

	text := "links: a.example/1 b.example/2 c.example/3 d.example/4 e.example/5 f.example/6"
	res := a.Analyze(ctx, text, nil)

	assert.Len(res.URLs, 6)
	gauge.mu.Lock()
	defer gauge.mu.Unlock()
	assert.Equal(6, gauge.total)
	assert.LessOrEqual(gauge.peak, 2)
	assert.GreaterOrEqual(gauge.peak, 1)
}

func TestAnalyzeDefangedEverywhere(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	a := NewAnalyzer(nil, nil, nil)
	res := a.Analyze(ctx, "https://evil.example/x", nil)
	if assert.Len(res.URLs, 1) {
		assert.NotContains(res.URLs[0].Defanged, "https://")
		assert.Equal(res.URLs[0].URL, Refang(res.URLs[0].Defanged))
	}
}
