package testhelpers

import (
	"context"
	"time"

	"pension720/domain/entities"
	"pension720/domain/interfaces"
	"pension720/events"

	"github.com/stretchr/testify/mock"
)

// MockDrawHistoryRepository is a mock implementation of DrawHistoryRepository
type MockDrawHistoryRepository struct {
	mock.Mock
}

func (m *MockDrawHistoryRepository) Load(ctx context.Context) ([]entities.DrawRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.DrawRecord), args.Error(1)
}

func (m *MockDrawHistoryRepository) Save(ctx context.Context, records []entities.DrawRecord) error {
	args := m.Called(ctx, records)
	return args.Error(0)
}

// MockFrequencyRepository is a mock implementation of FrequencyRepository
type MockFrequencyRepository struct {
	mock.Mock
}

func (m *MockFrequencyRepository) Save(ctx context.Context, table *entities.FrequencyTable) error {
	args := m.Called(ctx, table)
	return args.Error(0)
}

// MockPageFetcher is a mock implementation of PageFetcher
type MockPageFetcher struct {
	mock.Mock
}

func (m *MockPageFetcher) Fetch(ctx context.Context) (*interfaces.SourceDocument, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*interfaces.SourceDocument), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	args := m.Called(event)
	return args.Error(0)
}

// MockPipelineMetrics is a mock implementation of PipelineMetrics.
// Use AllowAnyMetrics when a test does not care about measurements.
type MockPipelineMetrics struct {
	mock.Mock
}

func (m *MockPipelineMetrics) RecordRecordsExtracted(count int, bonusAttached int) {
	m.Called(count, bonusAttached)
}

func (m *MockPipelineMetrics) RecordHistorySize(rounds int) {
	m.Called(rounds)
}

func (m *MockPipelineMetrics) RecordTicketsGenerated(count int) {
	m.Called(count)
}

func (m *MockPipelineMetrics) RecordStageDuration(stage string, duration time.Duration) {
	m.Called(stage, duration)
}

func (m *MockPipelineMetrics) RecordRunResult(result string) {
	m.Called(result)
}

// AllowAnyMetrics accepts every metrics call without asserting on it
func (m *MockPipelineMetrics) AllowAnyMetrics() *MockPipelineMetrics {
	m.On("RecordRecordsExtracted", mock.Anything, mock.Anything).Maybe()
	m.On("RecordHistorySize", mock.Anything).Maybe()
	m.On("RecordTicketsGenerated", mock.Anything).Maybe()
	m.On("RecordStageDuration", mock.Anything, mock.Anything).Maybe()
	m.On("RecordRunResult", mock.Anything).Maybe()
	return m
}
