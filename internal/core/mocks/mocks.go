package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/lorrc/service-desk-dashboard/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

// MockRecordSource is a mock implementation of ports.RecordSource
type MockRecordSource struct {
	mock.Mock
}

func NewMockRecordSource() *MockRecordSource {
	return &MockRecordSource{}
}

func (m *MockRecordSource) LoadRecords(ctx context.Context) ([]domain.Record, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Record), args.Error(1)
}

// MockOperatorDirectory is a mock implementation of ports.OperatorDirectory
type MockOperatorDirectory struct {
	mock.Mock
}

func NewMockOperatorDirectory() *MockOperatorDirectory {
	return &MockOperatorDirectory{}
}

func (m *MockOperatorDirectory) FindByEmail(ctx context.Context, email string) (*domain.Operator, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Operator), args.Error(1)
}

// MockSectionRenderer is a mock implementation of ports.SectionRenderer. It
// also records every view it was refreshed with.
type MockSectionRenderer struct {
	mock.Mock
	section domain.Section

	mu    sync.Mutex
	views []*domain.DerivedView
}

func NewMockSectionRenderer(section domain.Section) *MockSectionRenderer {
	return &MockSectionRenderer{section: section}
}

func (m *MockSectionRenderer) Section() domain.Section {
	return m.section
}

func (m *MockSectionRenderer) Refresh(ctx context.Context, view *domain.DerivedView) error {
	m.mu.Lock()
	m.views = append(m.views, view)
	m.mu.Unlock()

	args := m.Called(ctx, view)
	return args.Error(0)
}

// Views returns the views passed to Refresh, in call order.
func (m *MockSectionRenderer) Views() []*domain.DerivedView {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*domain.DerivedView(nil), m.views...)
}

// MockHighlightRenderer is a MockSectionRenderer that also implements
// ports.SectionHighlighter.
type MockHighlightRenderer struct {
	*MockSectionRenderer
}

func NewMockHighlightRenderer(section domain.Section) *MockHighlightRenderer {
	return &MockHighlightRenderer{MockSectionRenderer: NewMockSectionRenderer(section)}
}

func (m *MockHighlightRenderer) Highlight(ctx context.Context, h domain.Highlight) error {
	args := m.Called(ctx, h)
	return args.Error(0)
}

// MockEventBroadcaster is a mock implementation of ports.EventBroadcaster
type MockEventBroadcaster struct {
	mock.Mock
}

func NewMockEventBroadcaster() *MockEventBroadcaster {
	return &MockEventBroadcaster{}
}

func (m *MockEventBroadcaster) Broadcast(event domain.Event) {
	m.Called(event)
}

// MockAuthService is a mock implementation of ports.AuthService
type MockAuthService struct {
	mock.Mock
}

func NewMockAuthService() *MockAuthService {
	return &MockAuthService{}
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*domain.Operator, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Operator), args.Error(1)
}

// MockDashboardService is a mock implementation of ports.DashboardService
type MockDashboardService struct {
	mock.Mock
}

func NewMockDashboardService() *MockDashboardService {
	return &MockDashboardService{}
}

func (m *MockDashboardService) Load(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockDashboardService) Ready() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockDashboardService) Failure() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockDashboardService) SelectPeriod(ctx context.Context, start, end time.Time) (*domain.RefreshTicket, error) {
	return m.ticket(m.Called(ctx, start, end))
}

func (m *MockDashboardService) ClearPeriod(ctx context.Context) (*domain.RefreshTicket, error) {
	return m.ticket(m.Called(ctx))
}

func (m *MockDashboardService) ClickFilter(ctx context.Context, field, value string) (*domain.RefreshTicket, error) {
	return m.ticket(m.Called(ctx, field, value))
}

func (m *MockDashboardService) ApplyFilter(ctx context.Context, field, value string) (*domain.RefreshTicket, error) {
	return m.ticket(m.Called(ctx, field, value))
}

func (m *MockDashboardService) ClearFilter(ctx context.Context, field string) (*domain.RefreshTicket, error) {
	return m.ticket(m.Called(ctx, field))
}

func (m *MockDashboardService) Snapshot(ctx context.Context) (*domain.DerivedView, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DerivedView), args.Error(1)
}

func (m *MockDashboardService) Rules() domain.SectionRules {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(domain.SectionRules)
}

func (m *MockDashboardService) Shutdown() {
	m.Called()
}

func (m *MockDashboardService) ticket(args mock.Arguments) (*domain.RefreshTicket, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RefreshTicket), args.Error(1)
}
