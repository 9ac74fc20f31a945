package aging

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"

	"github.com/xavierca1/imob-crm/internal/entity"
)

var refNow = time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)

func ptr(t time.Time) *time.Time { return &t }

func TestComputeRecentLeadWithoutFollowup(t *testing.T) {
	res := Compute(Input{
		LastInteractionAt: refNow.Add(-2 * day),
		Stage:             entity.StageEmEspera,
	}, refNow)

	assert.Equal(t, 2, res.DaysDiff)
	assert.Equal(t, 40, res.Percentage)
	assert.False(t, res.IsOverdue)
	assert.Equal(t, "Atenção", res.Label)
	assert.Equal(t, TierAttention, res.Tier)
}

func TestComputeStaleLeadWithFutureFollowup(t *testing.T) {
	res := Compute(Input{
		LastInteractionAt: refNow.Add(-10 * day),
		FollowupAt:        ptr(refNow.Add(day)),
		Stage:             entity.StageEmAtendimento,
	}, refNow)

	assert.Equal(t, 10, res.DaysDiff)
	assert.False(t, res.IsOverdue)
	assert.GreaterOrEqual(t, res.Percentage, StalenessPercentage(10))
	assert.Less(t, res.Percentage, 100)
}

func TestComputeOverdueFollowupSaturates(t *testing.T) {
	res := Compute(Input{
		LastInteractionAt: refNow.Add(-5 * time.Minute),
		FollowupAt:        ptr(refNow.Add(-time.Hour)),
		Stage:             entity.StageDocumentacao,
	}, refNow)

	assert.True(t, res.IsOverdue)
	assert.Equal(t, 100, res.Percentage)
	assert.Equal(t, TierCritical, res.Tier)
	assert.Equal(t, "Crítico", res.Label)
	assert.Equal(t, "#ef4444", res.Color)
}

func TestComputeFollowupExactlyAtNowIsNotOverdue(t *testing.T) {
	res := Compute(Input{
		LastInteractionAt: refNow.Add(-time.Hour),
		FollowupAt:        ptr(refNow),
		Stage:             entity.StageNovo,
	}, refNow)

	assert.False(t, res.IsOverdue)
	assert.Equal(t, 100, res.Percentage)
}

func TestComputeClosedStagesFreeze(t *testing.T) {
	for _, stage := range []entity.Stage{entity.StageComprou, entity.StageRemovido} {
		res := Compute(Input{
			LastInteractionAt: refNow.Add(-30 * day),
			FollowupAt:        ptr(refNow.Add(-2 * day)),
			Stage:             stage,
		}, refNow)

		assert.Equal(t, 0, res.Percentage, stage)
		assert.False(t, res.IsOverdue, stage)
		assert.Equal(t, "Encerrado", res.Label, stage)
		assert.Equal(t, 30, res.DaysDiff, stage)
	}
}

func TestComputeClampsFutureInteraction(t *testing.T) {
	res := Compute(Input{
		LastInteractionAt: refNow.Add(3 * time.Hour),
		Stage:             entity.StageNovo,
	}, refNow)

	assert.Equal(t, 0, res.DaysDiff)
	assert.Equal(t, 20, res.Percentage)
}

func TestComputeMissingInteractionDefaultsToNow(t *testing.T) {
	res := Compute(Input{Stage: entity.StageNovo}, refNow)

	assert.Equal(t, 0, res.DaysDiff)
	assert.Equal(t, 20, res.Percentage)
	assert.Equal(t, TierRecent, res.Tier)
}

func TestComputeFloorsPartialDays(t *testing.T) {
	res := Compute(Input{
		LastInteractionAt: refNow.Add(-(3*day - time.Second)),
		Stage:             entity.StageNovo,
	}, refNow)

	assert.Equal(t, 2, res.DaysDiff)
}

func TestComputeIsMonotonicInStaleness(t *testing.T) {
	prevPct, prevRank := -1, -2
	for days := 0; days <= 45; days++ {
		res := Compute(Input{
			LastInteractionAt: refNow.Add(-time.Duration(days) * day),
			Stage:             entity.StageEmEspera,
		}, refNow)

		assert.GreaterOrEqual(t, res.Percentage, prevPct, "days=%d", days)
		assert.GreaterOrEqual(t, res.Tier.Rank(), prevRank, "days=%d", days)
		prevPct, prevRank = res.Percentage, res.Tier.Rank()
	}
}

func TestTierForIsMonotonic(t *testing.T) {
	prev := -1
	for pct := 0; pct <= 100; pct++ {
		rank := TierFor(pct).Rank()
		assert.GreaterOrEqual(t, rank, prev, "pct=%d", pct)
		prev = rank
	}
}

func TestFollowupNeverLowersStaleness(t *testing.T) {
	for days := 0; days <= 20; days++ {
		last := refNow.Add(-time.Duration(days) * day)
		plain := Compute(Input{LastInteractionAt: last, Stage: entity.StageNovo}, refNow)
		withFollowup := Compute(Input{
			LastInteractionAt: last,
			FollowupAt:        ptr(refNow.Add(30 * day)),
			Stage:             entity.StageNovo,
		}, refNow)

		assert.GreaterOrEqual(t, withFollowup.Percentage, plain.Percentage, "days=%d", days)
	}
}

func TestComputeIsDeterministic(t *testing.T) {
	in := Input{
		LastInteractionAt: refNow.Add(-4*day - 7*time.Hour),
		FollowupAt:        ptr(refNow.Add(6 * time.Hour)),
		Stage:             entity.StageEmAtendimento,
	}

	assert.Equal(t, Compute(in, refNow), Compute(in, refNow))
}

func TestComputeLeadFallsBackToCreatedAt(t *testing.T) {
	clock := clockwork.NewFakeClockAt(refNow)
	lead := &entity.Lead{
		ID:        "lead-1",
		Stage:     entity.StageNovo,
		CreatedAt: refNow.Add(-8 * day),
	}

	res := ComputeLead(lead, clock)

	assert.Equal(t, 8, res.DaysDiff)
	assert.Equal(t, 80, res.Percentage)
}
