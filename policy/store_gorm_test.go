package policy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/haven-social/guardian/lexicon"
)

func testGormStore(t *testing.T) *GormStore {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatal(err)
	}
	s, err := NewGormStore(db)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestGormStoreRoundTrip(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	s := testGormStore(t)

	missing, err := s.GetPolicy(ctx, "nope")
	assert.NoError(err)
	assert.Nil(missing)

	p := DefaultPolicy(WorkflowPublicChannel)
	p.Tiers[0].BlockedTerms = []lexicon.Entry{
		{Value: "free-nitro", Pattern: true},
		{Value: "hateful"},
	}
	assert.NoError(s.SavePolicy(ctx, p))

	got, err := s.GetPolicy(ctx, WorkflowPublicChannel)
	assert.NoError(err)
	if assert.NotNil(got) {
		assert.True(got.Enabled)
		terms := got.TierConfig(TierLexicon).BlockedTerms
		if assert.Len(terms, 2) {
			assert.Equal("free-nitro", terms[0].Value)
			assert.True(terms[0].Pattern)
			assert.Equal("hateful", terms[1].Value)
			assert.False(terms[1].Pattern)
		}
	}
}

func TestGormStoreUpsert(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	s := testGormStore(t)

	p := DefaultPolicy(WorkflowPrivateGroup)
	assert.NoError(s.SavePolicy(ctx, p))

	p.Enabled = false
	p.TierConfig(TierLinks).SafeDomains = []string{"example.com"}
	assert.NoError(s.SavePolicy(ctx, p))

	got, err := s.GetPolicy(ctx, WorkflowPrivateGroup)
	assert.NoError(err)
	if assert.NotNil(got) {
		assert.False(got.Enabled)
		assert.Equal([]string{"example.com"}, got.TierConfig(TierLinks).SafeDomains)
	}

	all, err := s.ListPolicies(ctx)
	assert.NoError(err)
	assert.Len(all, 1)
}
