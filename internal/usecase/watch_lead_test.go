package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/imob-crm/internal/aging"
	"github.com/xavierca1/imob-crm/internal/entity"
	"github.com/xavierca1/imob-crm/internal/infra/database"
	"github.com/xavierca1/imob-crm/internal/infra/queue"
)

func nextCard(t *testing.T, cards <-chan aging.Card) aging.Card {
	t.Helper()
	select {
	case c := <-cards:
		return c
	case <-time.After(time.Second):
		t.Fatal("no card rendered")
		return aging.Card{}
	}
}

func TestWatchLeadRendersOnTickAndOnChange(t *testing.T) {
	clock := clockwork.NewFakeClockAt(validationNow)
	last := validationNow.Add(-12 * time.Hour)
	repo := database.NewMemoryLeadRepository(clock.Now,
		&entity.Lead{ID: "lead-1", Name: "Marcos", Stage: entity.StageNovo, LastInteractionAt: &last})
	feed := queue.NewMemoryFeed()
	uc := NewWatchLeadUseCase(repo, feed, clock, aging.NewFormatter(time.UTC), time.Minute, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cards := make(chan aging.Card, 8)
	done := make(chan error, 1)
	go func() { done <- uc.Execute(ctx, "lead-1", func(c aging.Card) { cards <- c }) }()

	first := nextCard(t, cards)
	assert.Equal(t, 0, first.DaysDiff)
	assert.Equal(t, 20, first.FillWidth)
	assert.Nil(t, first.Followup)

	due := validationNow.Add(-time.Minute)
	require.NoError(t, repo.UpdateFollowup(ctx, "lead-1", due, "ligar", "Ana"))
	require.NoError(t, feed.PublishLeadChange(ctx, entity.LeadChange{LeadID: "lead-1", Kind: entity.ChangeFollowupSet}))

	changed := nextCard(t, cards)
	require.NotNil(t, changed.Followup)
	assert.True(t, changed.IsOverdue)
	assert.Equal(t, 100, changed.FillWidth)

	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(24 * time.Hour)
	ticked := nextCard(t, cards)
	assert.Equal(t, 1, ticked.DaysDiff)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("watch did not stop after cancel")
	}
	for len(cards) > 0 {
		<-cards
	}

	require.NoError(t, feed.PublishLeadChange(context.Background(), entity.LeadChange{LeadID: "lead-1", Kind: entity.ChangeInteraction}))
	assert.Empty(t, cards)
}

func TestWatchLeadUnknownLead(t *testing.T) {
	clock := clockwork.NewFakeClockAt(validationNow)
	uc := NewWatchLeadUseCase(database.NewMemoryLeadRepository(clock.Now), nil, clock, aging.NewFormatter(time.UTC), time.Minute, nil)

	err := uc.Execute(context.Background(), "ghost", func(aging.Card) { t.Fatal("unexpected render") })

	assert.Equal(t, CodeLeadNotFound, ErrorCode(err))
}
