package pipeline

import (
	"context"
	"log/slog"

	"github.com/haven-social/guardian/lexicon"
	"github.com/haven-social/guardian/linksafety"
	"github.com/haven-social/guardian/policy"
	"github.com/haven-social/guardian/queue"
	"github.com/haven-social/guardian/usage"
)

// EngineTestFixture returns a fully in-memory engine with a seeded
// public-channel policy, for tests.
func EngineTestFixture() *Engine {
	logger := slog.Default()
	tracker := usage.NewMemTracker()

	policies := policy.NewMemStore()
	pol := policy.DefaultPolicy(policy.WorkflowPublicChannel)
	lexCfg := pol.TierConfig(policy.TierLexicon)
	lexCfg.BlockedTerms = []lexicon.Entry{
		{Value: "free-nitro", Pattern: true},
		{Value: "hateful"},
	}
	lexCfg.BlockedDomains = []string{"evil.example"}
	if err := policies.SavePolicy(context.Background(), pol); err != nil {
		panic(err)
	}

	return &Engine{
		Logger:   logger,
		Policies: policies,
		Matcher:  lexicon.NewMatcher(logger),
		Links:    linksafety.NewAnalyzer(logger, nil, tracker),
		Queue:    queue.NewMemStore(),
		Usage:    tracker,
	}
}
