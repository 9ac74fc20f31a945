package queue

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/imob-crm/internal/entity"
)

func TestMemoryFeedDeliversMatchingChanges(t *testing.T) {
	feed := NewMemoryFeed()
	var got []entity.LeadChange

	unsubscribe := feed.Subscribe(entity.ChangeFilter{LeadID: "lead-1"}, func(c entity.LeadChange) {
		got = append(got, c)
	})

	ctx := context.Background()
	require.NoError(t, feed.PublishLeadChange(ctx, entity.LeadChange{LeadID: "lead-1", Kind: entity.ChangeFollowupSet}))
	require.NoError(t, feed.PublishLeadChange(ctx, entity.LeadChange{LeadID: "lead-2", Kind: entity.ChangeFollowupSet}))

	require.Len(t, got, 1)
	assert.Equal(t, "lead-1", got[0].LeadID)

	unsubscribe()
	unsubscribe()
	require.NoError(t, feed.PublishLeadChange(ctx, entity.LeadChange{LeadID: "lead-1", Kind: entity.ChangeInteraction}))
	assert.Len(t, got, 1)
}

func TestChangeFilterKinds(t *testing.T) {
	f := entity.ChangeFilter{Kinds: []entity.ChangeKind{entity.ChangeFollowupSet, entity.ChangeFollowupRemoved}}

	assert.True(t, f.Match(entity.LeadChange{Kind: entity.ChangeFollowupRemoved}))
	assert.False(t, f.Match(entity.LeadChange{Kind: entity.ChangeStage}))
}
