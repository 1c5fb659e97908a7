package policy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/haven-social/guardian/lexicon"
)

func TestValidate(t *testing.T) {
	assert := assert.New(t)

	p := DefaultPolicy(WorkflowPublicChannel)
	assert.NoError(p.Validate())

	bad := DefaultPolicy(WorkflowPublicChannel)
	bad.Tiers[0].Tier = "bogus"
	assert.Error(bad.Validate())

	dup := DefaultPolicy(WorkflowPublicChannel)
	dup.Tiers[1].Tier = TierLexicon
	assert.Error(dup.Validate())

	reversed := DefaultPolicy(WorkflowPublicChannel)
	reversed.Tiers[0], reversed.Tiers[3] = reversed.Tiers[3], reversed.Tiers[0]
	assert.Error(reversed.Validate())

	badAction := DefaultPolicy(WorkflowPublicChannel)
	badAction.Tiers[0].OnViolation = "explode"
	assert.Error(badAction.Validate())

	noName := DefaultPolicy("")
	assert.Error(noName.Validate())
}

func TestDefaults(t *testing.T) {
	assert := assert.New(t)

	pub := DefaultPolicy(WorkflowPublicChannel)
	assert.True(pub.Enabled)
	assert.True(pub.TierConfig(TierAI).Enabled)

	grp := DefaultPolicy(WorkflowPrivateGroup)
	assert.False(grp.TierConfig(TierAI).Enabled)

	agent := DefaultPolicy(WorkflowAgentOutput)
	assert.False(agent.TierConfig(TierLexicon).Enabled)
	assert.True(agent.TierConfig(TierAttack).Enabled)
}

func TestMemStoreRoundTrip(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	s := NewMemStore()

	missing, err := s.GetPolicy(ctx, "nope")
	assert.NoError(err)
	assert.Nil(missing)

	p := DefaultPolicy(WorkflowPublicChannel)
	p.Tiers[0].BlockedTerms = []lexicon.Entry{{Value: "free-nitro", Pattern: true}}
	assert.NoError(s.SavePolicy(ctx, p))

	got, err := s.GetPolicy(ctx, WorkflowPublicChannel)
	assert.NoError(err)
	if assert.NotNil(got) {
		assert.Equal("free-nitro", got.TierConfig(TierLexicon).BlockedTerms[0].Value)
	}

	// mutations on the returned copy must not leak back into the store
	got.TierConfig(TierLexicon).BlockedTerms[0].Value = "changed"
	again, err := s.GetPolicy(ctx, WorkflowPublicChannel)
	assert.NoError(err)
	assert.Equal("free-nitro", again.TierConfig(TierLexicon).BlockedTerms[0].Value)

	all, err := s.ListPolicies(ctx)
	assert.NoError(err)
	assert.Len(all, 1)
}

func TestMemStoreRejectsInvalid(t *testing.T) {
	assert := assert.New(t)
	s := NewMemStore()

	p := DefaultPolicy(WorkflowPublicChannel)
	p.Tiers[0].Tier = "bogus"
	assert.Error(s.SavePolicy(context.Background(), p))
}
