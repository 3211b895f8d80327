package events

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/mock"
)

// mockLogSource is a mock implementation of LogSource for testing
type mockLogSource struct {
	mock.Mock
}

func (m *mockLogSource) BlockNumber(ctx context.Context) (uint64, error) {
	args := m.Called(ctx)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *mockLogSource) FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
	args := m.Called(ctx, q)
	if logs := args.Get(0); logs != nil {
		return logs.([]types.Log), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockLogSource) SubscribeFilterLogs(ctx context.Context, q ethereum.FilterQuery, ch chan<- types.Log) (ethereum.Subscription, error) {
	args := m.Called(ctx, q, ch)
	if sub := args.Get(0); sub != nil {
		return sub.(ethereum.Subscription), args.Error(1)
	}
	return nil, args.Error(1)
}

// fakeSubscription is a transport subscription whose failure the test controls.
type fakeSubscription struct {
	errc         chan error
	once         sync.Once
	unsubscribed chan struct{}
}

func newFakeSubscription() *fakeSubscription {
	return &fakeSubscription{
		errc:         make(chan error, 1),
		unsubscribed: make(chan struct{}),
	}
}

func (s *fakeSubscription) Unsubscribe() {
	s.once.Do(func() { close(s.unsubscribed) })
}

func (s *fakeSubscription) Err() <-chan error {
	return s.errc
}
