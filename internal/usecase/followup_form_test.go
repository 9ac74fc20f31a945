package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/imob-crm/internal/entity"
)

func TestFollowupFormStartsIdleAndPrefilled(t *testing.T) {
	due := time.Date(2026, 3, 12, 13, 0, 0, 0, time.UTC)
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	form := NewFollowupForm(&entity.Lead{ID: "lead-1", FollowupAt: &due, FollowupNote: "visita"}, "Ana", loc, nil, nil, nil)

	assert.Equal(t, FormIdle, form.State())
	assert.True(t, form.HasFollowup())
	assert.Equal(t, FollowupInput{Date: "2026-03-12", Time: "10:00", Note: "visita", ActorName: "Ana"}, form.Values())
	assert.Equal(t, 494, form.NoteRemaining())
}

func TestFollowupFormRejectsLongNoteAtInput(t *testing.T) {
	form := NewFollowupForm(&entity.Lead{ID: "lead-1"}, "Ana", nil, nil, nil, nil)

	err := form.Edit("2026-03-12", "10:00", strings.Repeat("x", 501))

	require.Error(t, err)
	assert.Equal(t, FormEditing, form.State())
	assert.Equal(t, "", form.Values().Note)

	require.NoError(t, form.Edit("2026-03-12", "10:00", strings.Repeat("x", 500)))
	assert.Equal(t, 0, form.NoteRemaining())
}

func TestFollowupFormSubmitSuccessReturnsToIdle(t *testing.T) {
	ctx := context.Background()
	scheduler := new(MockScheduler)
	scheduler.On("Execute", ctx, "lead-1", FollowupInput{Date: "2026-03-12", Time: "10:00", Note: "ok", ActorName: "Ana"}).
		Return(&FollowupOutput{LeadID: "lead-1", FollowupAt: "2026-03-12T10:00:00Z", Note: "ok"}, nil)

	refreshed := 0
	form := NewFollowupForm(&entity.Lead{ID: "lead-1"}, "Ana", time.UTC, scheduler, nil, func() { refreshed++ })
	require.NoError(t, form.Edit("2026-03-12", "10:00", "ok"))

	require.NoError(t, form.Submit(ctx))

	assert.Equal(t, FormIdle, form.State())
	assert.True(t, form.HasFollowup())
	assert.Nil(t, form.Err())
	assert.Equal(t, 1, refreshed)
}

func TestFollowupFormSubmitFailureKeepsFieldsForRetry(t *testing.T) {
	ctx := context.Background()
	scheduler := new(MockScheduler)
	boom := &TechnicalError{Code: CodePersistence, Message: "timeout"}
	scheduler.On("Execute", ctx, "lead-1", mock.Anything).Return(nil, boom)

	refreshed := 0
	form := NewFollowupForm(&entity.Lead{ID: "lead-1"}, "Ana", time.UTC, scheduler, nil, func() { refreshed++ })
	require.NoError(t, form.Edit("2026-03-12", "10:00", "manter"))

	err := form.Submit(ctx)

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, FormEditing, form.State())
	assert.Equal(t, boom, form.Err())
	assert.Equal(t, "manter", form.Values().Note)
	assert.Equal(t, 0, refreshed)
}

func TestFollowupFormBlocksResubmitWhileInFlight(t *testing.T) {
	ctx := context.Background()
	scheduler := new(MockScheduler)
	started := make(chan struct{})
	unblock := make(chan struct{})
	scheduler.On("Execute", ctx, "lead-1", mock.Anything).
		Run(func(mock.Arguments) {
			close(started)
			<-unblock
		}).
		Return(&FollowupOutput{LeadID: "lead-1", FollowupAt: "2026-03-12T10:00:00Z"}, nil).Once()

	form := NewFollowupForm(&entity.Lead{ID: "lead-1"}, "Ana", time.UTC, scheduler, nil, nil)
	require.NoError(t, form.Edit("2026-03-12", "10:00", ""))

	done := make(chan error, 1)
	go func() { done <- form.Submit(ctx) }()
	<-started

	assert.Equal(t, FormSubmitting, form.State())
	assert.ErrorIs(t, form.Submit(ctx), entity.ErrFollowupInFlight)
	assert.ErrorIs(t, form.Edit("2026-03-13", "10:00", ""), entity.ErrFollowupInFlight)

	close(unblock)
	require.NoError(t, <-done)
	scheduler.AssertNumberOfCalls(t, "Execute", 1)
}

func TestFollowupFormIgnoresResultAfterClose(t *testing.T) {
	ctx := context.Background()
	scheduler := new(MockScheduler)
	started := make(chan struct{})
	unblock := make(chan struct{})
	scheduler.On("Execute", ctx, "lead-1", mock.Anything).
		Run(func(mock.Arguments) {
			close(started)
			<-unblock
		}).
		Return(&FollowupOutput{LeadID: "lead-1", FollowupAt: "2026-03-12T10:00:00Z"}, nil)

	refreshed := false
	form := NewFollowupForm(&entity.Lead{ID: "lead-1"}, "Ana", time.UTC, scheduler, nil, func() { refreshed = true })
	require.NoError(t, form.Edit("2026-03-12", "10:00", ""))

	done := make(chan error, 1)
	go func() { done <- form.Submit(ctx) }()
	<-started
	form.Close()
	close(unblock)

	require.NoError(t, <-done)
	assert.False(t, refreshed)
	assert.False(t, form.HasFollowup())
}

func TestFollowupFormRemoveOnlyWithExistingFollowup(t *testing.T) {
	ctx := context.Background()
	remover := new(MockRemover)

	form := NewFollowupForm(&entity.Lead{ID: "lead-1"}, "Ana", time.UTC, nil, remover, nil)
	err := form.Remove(ctx)

	assert.Equal(t, CodeFollowupNotFound, ErrorCode(err))
	remover.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything, mock.Anything)
}

func TestFollowupFormRemoveClearsBothFields(t *testing.T) {
	ctx := context.Background()
	due := time.Date(2026, 3, 12, 10, 0, 0, 0, time.UTC)
	remover := new(MockRemover)
	remover.On("Execute", ctx, "lead-1", "Ana").Return(nil)

	form := NewFollowupForm(&entity.Lead{ID: "lead-1", FollowupAt: &due, FollowupNote: "visita"}, "Ana", time.UTC, nil, remover, nil)

	require.NoError(t, form.Remove(ctx))
	assert.False(t, form.HasFollowup())
	assert.Equal(t, FollowupInput{ActorName: "Ana"}, form.Values())
	assert.Equal(t, FormIdle, form.State())
}

func TestFollowupFormRemoveFailureKeepsFollowup(t *testing.T) {
	ctx := context.Background()
	due := time.Date(2026, 3, 12, 10, 0, 0, 0, time.UTC)
	remover := new(MockRemover)
	remover.On("Execute", ctx, "lead-1", "Ana").Return(errors.New("network down"))

	form := NewFollowupForm(&entity.Lead{ID: "lead-1", FollowupAt: &due}, "Ana", time.UTC, nil, remover, nil)

	require.Error(t, form.Remove(ctx))
	assert.True(t, form.HasFollowup())
	assert.Equal(t, FormEditing, form.State())
}

func TestFollowupFormCancelRestoresCurrentValue(t *testing.T) {
	due := time.Date(2026, 3, 12, 10, 0, 0, 0, time.UTC)
	form := NewFollowupForm(&entity.Lead{ID: "lead-1", FollowupAt: &due, FollowupNote: "visita"}, "Ana", time.UTC, nil, nil, nil)

	require.NoError(t, form.Edit("2026-03-20", "08:00", "outra"))
	form.Cancel()

	assert.Equal(t, FormIdle, form.State())
	assert.Equal(t, "2026-03-12", form.Values().Date)
	assert.Equal(t, "visita", form.Values().Note)
}
