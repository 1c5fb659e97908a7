package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func testStore(t *testing.T) *GormStore {
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

func TestEnqueueDefaults(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	s := testStore(t)

	id, err := s.Enqueue(ctx, &Entry{
		Workflow:        "public_channel",
		ContentType:     "text",
		Content:         "visit http://bad.example/x",
		DefangedContent: "visit hxxp[://]bad[.]example/x",
		AuthorID:        "user-1",
	})
	assert.NoError(err)
	assert.NotEmpty(id)

	e, err := s.Get(ctx, id)
	assert.NoError(err)
	if assert.NotNil(e) {
		assert.Equal(StatusPending, e.Status)
		assert.Equal(PriorityMedium, e.Priority)
		assert.False(e.CreatedAt.IsZero())
		assert.Nil(e.ResolvedAt)
		assert.Contains(e.DefangedContent, "[.]")
	}
}

func TestListFilteringAndOrder(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	s := testStore(t)

	base := time.Now().UTC().Add(-time.Hour)
	for i, wf := range []string{"public_channel", "public_channel", "private_group"} {
		_, err := s.Enqueue(ctx, &Entry{
			Workflow:  wf,
			Content:   "msg",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		assert.NoError(err)
	}

	entries, err := s.List(ctx, StatusPending, "public_channel", 10)
	assert.NoError(err)
	if assert.Len(entries, 2) {
		// newest first
		assert.True(entries[0].CreatedAt.After(entries[1].CreatedAt))
	}

	entries, err = s.List(ctx, "", "", 1)
	assert.NoError(err)
	assert.Len(entries, 1)
}

func TestResolveLastWriteWins(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	s := testStore(t)

	id, err := s.Enqueue(ctx, &Entry{Workflow: "public_channel", Content: "msg"})
	assert.NoError(err)

	e, err := s.Resolve(ctx, id, StatusApproved, "mod-1", "looks fine")
	assert.NoError(err)
	assert.Equal(StatusApproved, e.Status)
	assert.Equal("mod-1", e.ReviewerID)
	assert.NotNil(e.ResolvedAt)

	// a second resolution overwrites the first
	e, err = s.Resolve(ctx, id, StatusRejected, "mod-2", "actually not")
	assert.NoError(err)
	assert.Equal(StatusRejected, e.Status)
	assert.Equal("mod-2", e.ReviewerID)
	assert.Equal("actually not", e.ReviewerNotes)

	_, err = s.Resolve(ctx, id, "bogus", "mod-2", "")
	assert.Error(err)

	_, err = s.Resolve(ctx, "no-such-id", StatusApproved, "mod-1", "")
	assert.Error(err)
}

func TestStats(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	s := testStore(t)

	var ids []string
	for i := 0; i < 3; i++ {
		id, err := s.Enqueue(ctx, &Entry{Workflow: "public_channel", Content: "msg"})
		assert.NoError(err)
		ids = append(ids, id)
	}
	// one created yesterday
	_, err := s.Enqueue(ctx, &Entry{
		Workflow:  "public_channel",
		Content:   "old",
		CreatedAt: time.Now().UTC().Add(-48 * time.Hour),
	})
	assert.NoError(err)

	_, err = s.Resolve(ctx, ids[0], StatusApproved, "mod-1", "")
	assert.NoError(err)
	_, err = s.Resolve(ctx, ids[1], StatusRejected, "mod-1", "")
	assert.NoError(err)

	stats, err := s.Stats(ctx)
	assert.NoError(err)
	assert.EqualValues(2, stats.Pending)
	assert.EqualValues(1, stats.Approved)
	assert.EqualValues(1, stats.Rejected)
	assert.EqualValues(3, stats.TodayTotal)
}
