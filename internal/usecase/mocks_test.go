package usecase

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/xavierca1/imob-crm/internal/entity"
)

type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) FetchLeadsForAging(ctx context.Context, filter entity.LeadFilter) ([]*entity.Lead, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) FetchOverdueFollowups(ctx context.Context, now time.Time) ([]*entity.Lead, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) UpdateFollowup(ctx context.Context, leadID string, at time.Time, note, actorName string) error {
	args := m.Called(ctx, leadID, at, note, actorName)
	return args.Error(0)
}

func (m *MockLeadRepository) RemoveFollowup(ctx context.Context, leadID, actorName string) error {
	args := m.Called(ctx, leadID, actorName)
	return args.Error(0)
}

func (m *MockLeadRepository) RecordInteraction(ctx context.Context, leadID string, at time.Time, actorName string) error {
	args := m.Called(ctx, leadID, at, actorName)
	return args.Error(0)
}

func (m *MockLeadRepository) UpdateStage(ctx context.Context, leadID string, stage entity.Stage, actorName string) error {
	args := m.Called(ctx, leadID, stage, actorName)
	return args.Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishLeadChange(ctx context.Context, change entity.LeadChange) error {
	args := m.Called(ctx, change)
	return args.Error(0)
}

type MockSubmitLock struct {
	mock.Mock
}

func (m *MockSubmitLock) Acquire(ctx context.Context, leadID string) (func(), error) {
	args := m.Called(ctx, leadID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(func()), args.Error(1)
}

type MockScheduler struct {
	mock.Mock
}

func (m *MockScheduler) Execute(ctx context.Context, leadID string, input FollowupInput) (*FollowupOutput, error) {
	args := m.Called(ctx, leadID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*FollowupOutput), args.Error(1)
}

type MockRemover struct {
	mock.Mock
}

func (m *MockRemover) Execute(ctx context.Context, leadID, actorName string) error {
	args := m.Called(ctx, leadID, actorName)
	return args.Error(0)
}
