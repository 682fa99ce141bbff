// Package mocks provides testify mocks of the ports interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/jsamuelsen/zapallo-backoffice/internal/domain"
)

// testingT is the subset of *testing.T the constructors need.
type testingT interface {
	mock.TestingT
	Cleanup(func())
}

func ret[T any](args mock.Arguments, i int) T {
	var zero T

	if v, ok := args.Get(i).(T); ok {
		return v
	}

	return zero
}

// MockExchangeClient mocks ports.ExchangeClient.
type MockExchangeClient struct {
	mock.Mock
}

// NewMockExchangeClient creates a mock that asserts its expectations on cleanup.
func NewMockExchangeClient(t testingT) *MockExchangeClient {
	m := &MockExchangeClient{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

// MockExchangeClientExpecter sets expectations on MockExchangeClient.
type MockExchangeClientExpecter struct {
	mock *mock.Mock
}

// EXPECT returns the expecter.
func (m *MockExchangeClient) EXPECT() *MockExchangeClientExpecter {
	return &MockExchangeClientExpecter{mock: &m.Mock}
}

func (m *MockExchangeClient) List(ctx context.Context) ([]domain.Exchange, error) {
	args := m.Called(ctx)
	return ret[[]domain.Exchange](args, 0), args.Error(1)
}

func (e *MockExchangeClientExpecter) List(ctx any) *mock.Call {
	return e.mock.On("List", ctx)
}

func (m *MockExchangeClient) Get(ctx context.Context, id string) (*domain.Exchange, error) {
	args := m.Called(ctx, id)
	return ret[*domain.Exchange](args, 0), args.Error(1)
}

func (e *MockExchangeClientExpecter) Get(ctx, id any) *mock.Call {
	return e.mock.On("Get", ctx, id)
}

func (m *MockExchangeClient) Create(ctx context.Context, in domain.ExchangeInput) (*domain.Exchange, error) {
	args := m.Called(ctx, in)
	return ret[*domain.Exchange](args, 0), args.Error(1)
}

func (e *MockExchangeClientExpecter) Create(ctx, in any) *mock.Call {
	return e.mock.On("Create", ctx, in)
}

func (m *MockExchangeClient) Update(ctx context.Context, id string, patch domain.ExchangePatch) (*domain.Exchange, error) {
	args := m.Called(ctx, id, patch)
	return ret[*domain.Exchange](args, 0), args.Error(1)
}

func (e *MockExchangeClientExpecter) Update(ctx, id, patch any) *mock.Call {
	return e.mock.On("Update", ctx, id, patch)
}

func (m *MockExchangeClient) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (e *MockExchangeClientExpecter) Delete(ctx, id any) *mock.Call {
	return e.mock.On("Delete", ctx, id)
}

// MockExchangeUserClient mocks ports.ExchangeUserClient.
type MockExchangeUserClient struct {
	mock.Mock
}

// NewMockExchangeUserClient creates a mock that asserts its expectations on cleanup.
func NewMockExchangeUserClient(t testingT) *MockExchangeUserClient {
	m := &MockExchangeUserClient{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

// MockExchangeUserClientExpecter sets expectations on MockExchangeUserClient.
type MockExchangeUserClientExpecter struct {
	mock *mock.Mock
}

// EXPECT returns the expecter.
func (m *MockExchangeUserClient) EXPECT() *MockExchangeUserClientExpecter {
	return &MockExchangeUserClientExpecter{mock: &m.Mock}
}

func (m *MockExchangeUserClient) List(ctx context.Context, filter domain.ExchangeUserFilter) ([]domain.ExchangeUser, error) {
	args := m.Called(ctx, filter)
	return ret[[]domain.ExchangeUser](args, 0), args.Error(1)
}

func (e *MockExchangeUserClientExpecter) List(ctx, filter any) *mock.Call {
	return e.mock.On("List", ctx, filter)
}

func (m *MockExchangeUserClient) Get(ctx context.Context, id string) (*domain.ExchangeUser, error) {
	args := m.Called(ctx, id)
	return ret[*domain.ExchangeUser](args, 0), args.Error(1)
}

func (e *MockExchangeUserClientExpecter) Get(ctx, id any) *mock.Call {
	return e.mock.On("Get", ctx, id)
}

func (m *MockExchangeUserClient) Create(ctx context.Context, in domain.ExchangeUserInput) (*domain.ExchangeUser, error) {
	args := m.Called(ctx, in)
	return ret[*domain.ExchangeUser](args, 0), args.Error(1)
}

func (e *MockExchangeUserClientExpecter) Create(ctx, in any) *mock.Call {
	return e.mock.On("Create", ctx, in)
}

func (m *MockExchangeUserClient) Update(
	ctx context.Context,
	id string,
	patch domain.ExchangeUserPatch,
) (*domain.ExchangeUser, error) {
	args := m.Called(ctx, id, patch)
	return ret[*domain.ExchangeUser](args, 0), args.Error(1)
}

func (e *MockExchangeUserClientExpecter) Update(ctx, id, patch any) *mock.Call {
	return e.mock.On("Update", ctx, id, patch)
}

func (m *MockExchangeUserClient) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (e *MockExchangeUserClientExpecter) Delete(ctx, id any) *mock.Call {
	return e.mock.On("Delete", ctx, id)
}

// MockExchangeCardClient mocks ports.ExchangeCardClient.
type MockExchangeCardClient struct {
	mock.Mock
}

// NewMockExchangeCardClient creates a mock that asserts its expectations on cleanup.
func NewMockExchangeCardClient(t testingT) *MockExchangeCardClient {
	m := &MockExchangeCardClient{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

// MockExchangeCardClientExpecter sets expectations on MockExchangeCardClient.
type MockExchangeCardClientExpecter struct {
	mock *mock.Mock
}

// EXPECT returns the expecter.
func (m *MockExchangeCardClient) EXPECT() *MockExchangeCardClientExpecter {
	return &MockExchangeCardClientExpecter{mock: &m.Mock}
}

func (m *MockExchangeCardClient) List(ctx context.Context) ([]domain.ExchangeCard, error) {
	args := m.Called(ctx)
	return ret[[]domain.ExchangeCard](args, 0), args.Error(1)
}

func (e *MockExchangeCardClientExpecter) List(ctx any) *mock.Call {
	return e.mock.On("List", ctx)
}

func (m *MockExchangeCardClient) Get(ctx context.Context, id string) (*domain.ExchangeCard, error) {
	args := m.Called(ctx, id)
	return ret[*domain.ExchangeCard](args, 0), args.Error(1)
}

func (e *MockExchangeCardClientExpecter) Get(ctx, id any) *mock.Call {
	return e.mock.On("Get", ctx, id)
}

func (m *MockExchangeCardClient) Create(ctx context.Context, in domain.ExchangeCardInput) (*domain.ExchangeCard, error) {
	args := m.Called(ctx, in)
	return ret[*domain.ExchangeCard](args, 0), args.Error(1)
}

func (e *MockExchangeCardClientExpecter) Create(ctx, in any) *mock.Call {
	return e.mock.On("Create", ctx, in)
}

func (m *MockExchangeCardClient) Update(
	ctx context.Context,
	id string,
	patch domain.ExchangeCardPatch,
) (*domain.ExchangeCard, error) {
	args := m.Called(ctx, id, patch)
	return ret[*domain.ExchangeCard](args, 0), args.Error(1)
}

func (e *MockExchangeCardClientExpecter) Update(ctx, id, patch any) *mock.Call {
	return e.mock.On("Update", ctx, id, patch)
}

func (m *MockExchangeCardClient) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (e *MockExchangeCardClientExpecter) Delete(ctx, id any) *mock.Call {
	return e.mock.On("Delete", ctx, id)
}
