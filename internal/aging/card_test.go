package aging

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/imob-crm/internal/entity"
)

func TestRenderOverdueChipIsHighlighted(t *testing.T) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	due := time.Date(2026, 3, 10, 13, 0, 0, 0, time.UTC)
	lead := &entity.Lead{
		ID:                "lead-9",
		Name:              "Maria",
		Stage:             entity.StageDocumentacao,
		LastInteractionAt: ptr(refNow.Add(-day)),
		FollowupAt:        &due,
		FollowupNote:      "ligar sobre a matrícula",
	}

	res := Compute(Input{LastInteractionAt: *lead.LastInteractionAt, FollowupAt: lead.FollowupAt, Stage: lead.Stage}, refNow)
	card := Render(lead, res, NewFormatter(loc))

	assert.Equal(t, 100, card.FillWidth)
	assert.Equal(t, res.Color, card.Color)
	require.NotNil(t, card.Followup)
	assert.True(t, card.Followup.Highlight)
	assert.Equal(t, "10/03 10:00", card.Followup.Text)
	assert.Equal(t, "ligar sobre a matrícula", card.Followup.Note)
}

func TestRenderWithoutFollowupHasNoChip(t *testing.T) {
	lead := &entity.Lead{ID: "lead-1", Stage: entity.StageNovo, CreatedAt: refNow}

	card := Render(lead, Compute(Input{LastInteractionAt: refNow, Stage: lead.Stage}, refNow), NewFormatter(nil))

	assert.Nil(t, card.Followup)
	assert.Equal(t, 20, card.FillWidth)
}

func TestWatchRecomputesOnEachTickAndStopsOnCancel(t *testing.T) {
	clock := clockwork.NewFakeClockAt(refNow)
	due := refNow.Add(30 * time.Second)

	var current atomic.Pointer[entity.Lead]
	current.Store(&entity.Lead{
		ID:                "lead-1",
		Stage:             entity.StageEmAtendimento,
		LastInteractionAt: ptr(refNow.Add(-time.Hour)),
		FollowupAt:        &due,
	})

	cards := make(chan Card, 4)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		Watch(ctx, clock, time.Minute, NewFormatter(time.UTC), current.Load, func(c Card) { cards <- c })
		close(done)
	}()

	first := <-cards
	assert.False(t, first.IsOverdue)

	clock.Advance(time.Minute)
	second := <-cards
	assert.True(t, second.IsOverdue)
	assert.Equal(t, 100, second.FillWidth)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}
